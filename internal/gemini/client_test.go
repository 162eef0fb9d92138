package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestClient creates a Client pointing at a test HTTP server.
func newTestClient(server *httptest.Server) *Client {
	return New(Options{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
}

func TestGenerateContentSendsImageAndPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash-image:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}

		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
			t.Errorf("expected one content with two parts, got %+v", req.Contents)
			return
		}
		img := req.Contents[0].Parts[0].InlineData
		if img == nil || img.MimeType != "image/jpeg" || img.Data != base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")) {
			t.Errorf("unexpected inline data: %+v", img)
		}
		if req.Contents[0].Parts[1].Text != "make it neon" {
			t.Errorf("unexpected text part: %q", req.Contents[0].Parts[1].Text)
		}
		if req.GenerationConfig == nil || strings.Join(req.GenerationConfig.ResponseModalities, ",") != "IMAGE,TEXT" {
			t.Errorf("unexpected generation config: %+v", req.GenerationConfig)
		}

		json.NewEncoder(w).Encode(generateContentResponse{
			Candidates: []candidate{{Content: content{Parts: []part{
				{Text: "here you go"},
				{InlineData: &blob{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString([]byte("png-bytes"))}},
			}}}},
		})
	}))
	defer server.Close()

	resp, err := newTestClient(server).GenerateContent(context.Background(), Request{
		Parts: []Part{
			{InlineData: &Blob{Data: []byte("jpeg-bytes"), MimeType: "image/jpeg"}},
			{Text: "make it neon"},
		},
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(resp.Parts))
	}
	if resp.Parts[0].Text != "here you go" {
		t.Errorf("unexpected text: %q", resp.Parts[0].Text)
	}
	if got := resp.Parts[1].InlineData; got == nil || string(got.Data) != "png-bytes" {
		t.Errorf("unexpected image part: %+v", got)
	}
}

func TestGenerateContentHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).GenerateContent(context.Background(), Request{Parts: []Part{{Text: "x"}}})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "API key not valid" {
		t.Errorf("unexpected message: %q", apiErr.Message)
	}
}

func TestGenerateContentNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server).GenerateContent(context.Background(), Request{Parts: []Part{{Text: "x"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Parts) != 0 {
		t.Errorf("expected no parts, got %d", len(resp.Parts))
	}
}

func TestGenerateContentBadInlineData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"%%%"}}]}}]}`))
	}))
	defer server.Close()

	if _, err := newTestClient(server).GenerateContent(context.Background(), Request{}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestGenerateContentNilHTTPClient(t *testing.T) {
	c := New(Options{APIKey: "k"})
	if _, err := c.GenerateContent(context.Background(), Request{}); err == nil {
		t.Fatal("expected error for nil http client")
	}
}
