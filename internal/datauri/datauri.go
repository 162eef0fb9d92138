// Package datauri converts between binary image blobs and
// "data:<mime>;base64,<payload>" strings.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const DefaultMimeType = "image/jpeg"

var ErrMalformed = errors.New("malformed data uri")

type Blob struct {
	Data     []byte
	MimeType string
}

// Parse decodes s. The mime type is the first field of the header; parameters
// and the ";base64" flag after it are ignored. A string without a "data:" header
// is treated as a bare base64 payload of DefaultMimeType.
func Parse(s string) (Blob, error) {
	s = strings.TrimSpace(s)

	mime := DefaultMimeType
	payload := s
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		header, data, found := strings.Cut(rest, ",")
		if !found {
			return Blob{}, fmt.Errorf("%w: missing comma", ErrMalformed)
		}
		if v, _, _ := strings.Cut(header, ";"); strings.TrimSpace(v) != "" {
			mime = strings.ToLower(strings.TrimSpace(v))
		}
		payload = data
	} else if idx := strings.IndexByte(s, ','); idx >= 0 {
		payload = s[idx+1:]
	}

	if payload == "" {
		return Blob{}, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Blob{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return Blob{Data: data, MimeType: mime}, nil
}

func Encode(b Blob) string {
	mime := b.MimeType
	if mime == "" {
		mime = DefaultMimeType
	}
	return EncodeBase64(mime, base64.StdEncoding.EncodeToString(b.Data))
}

// EncodeBase64 wraps an already-encoded payload.
func EncodeBase64(mime, payload string) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, payload)
}
