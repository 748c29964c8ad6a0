package provider

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// StatePayload is encoded into the OAuth state parameter. The attempt ID
// ties the callback back to the attempt record created when the auth URL
// was issued; the nonce defeats replay of a fixed state string.
type StatePayload struct {
	Provider  Name      `json:"provider"`
	AttemptID uuid.UUID `json:"attempt_id"`
	UserID    string    `json:"user_id"`
	Nonce     string    `json:"nonce"`
}

// EncodeState encodes a StatePayload as a base64 JSON string.
func EncodeState(name Name, attemptID uuid.UUID, userID string) (string, error) {
	nonce, err := generateNonce()
	if err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	payload := StatePayload{
		Provider:  name,
		AttemptID: attemptID,
		UserID:    userID,
		Nonce:     nonce,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// DecodeState decodes and returns the StatePayload from an OAuth callback state param.
func DecodeState(state string) (*StatePayload, error) {
	b, err := base64.URLEncoding.DecodeString(state)
	if err != nil {
		return nil, errors.New("invalid state encoding")
	}
	var payload StatePayload
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, errors.New("invalid state payload")
	}
	if payload.Provider == "" || payload.AttemptID == uuid.Nil || payload.Nonce == "" {
		return nil, errors.New("incomplete state payload")
	}
	return &payload, nil
}

func generateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
