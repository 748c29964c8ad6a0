package socialgate

import "fmt"

// APIError is returned when the gateway responds with a non-success status.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("socialgate: HTTP %d: %s", e.StatusCode, e.Message)
}
