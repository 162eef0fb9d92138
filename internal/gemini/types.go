package gemini

import (
	"context"
	"fmt"
)

const DefaultImageModel = "gemini-2.5-flash-image"

type Blob struct {
	Data     []byte
	MimeType string
}

type Part struct {
	Text       string
	InlineData *Blob
}

type Request struct {
	Model              string
	Parts              []Part
	ResponseModalities []string
}

// Response holds the parts of the first candidate.
type Response struct {
	Parts []Part
}

// Transport sends one generateContent call. Implementations must not retry.
type Transport interface {
	GenerateContent(ctx context.Context, req Request) (Response, error)
}

type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini API %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("gemini API %d: %s", e.StatusCode, e.Message)
}
