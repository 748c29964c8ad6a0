package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestGetJSON_ReturnsStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tiktok/auth-url" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"detail":"brewing"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	status, body, err := c.GetJSON(context.Background(), "/api/tiktok/auth-url")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusTeapot {
		t.Errorf("expected 418, got %d", status)
	}
	if string(body) != `{"detail":"brewing"}` {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestPostJSON_SendsPayload(t *testing.T) {
	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	_, _, err := c.PostJSON(context.Background(), "/api/tiktok/login", map[string]string{"code": "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got %s", gotContentType)
	}
	if !strings.Contains(gotBody, `"code":"abc"`) {
		t.Errorf("expected payload forwarded, got %s", gotBody)
	}
}

func TestPostMultipart_ForwardsFileAndFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart form: %v", err)
			return
		}
		if r.FormValue("user_id") != "u1" {
			t.Errorf("expected user_id field, got %q", r.FormValue("user_id"))
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected file part: %v", err)
			return
		}
		defer f.Close()
		if hdr.Filename != "clip.mp4" {
			t.Errorf("expected original filename, got %s", hdr.Filename)
		}
		b, _ := io.ReadAll(f)
		if string(b) != "video bytes" {
			t.Errorf("file content mangled: %q", b)
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	status, _, err := c.PostMultipart(context.Background(), "/api/tiktok/upload-video",
		map[string]string{"user_id": "u1"}, "file", "clip.mp4", strings.NewReader("video bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}
}

func TestDo_TransportFailure_ReturnsWrappedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, zap.NewNop())
	_, _, err := c.GetJSON(context.Background(), "/anything")
	if err == nil {
		t.Fatal("expected error for unreachable backend")
	}
	if !strings.Contains(err.Error(), "backend gateway:") {
		t.Errorf("expected wrapped transport error, got %v", err)
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:8000/", zap.NewNop())
	if c.BaseURL() != "http://localhost:8000" {
		t.Errorf("expected trailing slash trimmed, got %s", c.BaseURL())
	}
}

func TestErrorDetail(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"detail":"invalid_code"}`, "invalid_code"},
		{`{"error":"expired token"}`, "expired token"},
		{`{"detail":"d","error":"e"}`, "d"},
		{`{"message":"other shape"}`, ""},
		{`not json`, ""},
	}
	for _, tc := range cases {
		if got := ErrorDetail([]byte(tc.body)); got != tc.want {
			t.Errorf("ErrorDetail(%s) = %q, want %q", tc.body, got, tc.want)
		}
	}
}
