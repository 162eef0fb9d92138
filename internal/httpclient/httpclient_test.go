package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestUserAgentIsSet(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("user-agent")
	}))
	defer server.Close()

	client := New(Options{UserAgent: "artlens-test", Timeout: 5 * time.Second})
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if got != "artlens-test" {
		t.Errorf("expected user agent artlens-test, got %q", got)
	}
}

func TestDefaultTimeout(t *testing.T) {
	client := New(Options{})
	if client.Timeout != 180*time.Second {
		t.Errorf("expected default timeout 180s, got %s", client.Timeout)
	}
}
