// Package upload validates user-supplied images before they enter the session.
package upload

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"

	"artlens-pro/internal/datauri"
)

const DefaultMaxBytes = 10 << 20

type Reason int

const (
	UnsupportedType Reason = iota
	TooLarge
)

// InvalidFileError is shown next to the upload control. The user recovers by
// choosing another file.
type InvalidFileError struct {
	Reason   Reason
	MimeType string
	Size     int64
	Limit    int64 // ceiling in bytes; 0 means DefaultMaxBytes
	Err      error
}

func (e *InvalidFileError) Error() string {
	return e.Message()
}

func (e *InvalidFileError) Unwrap() error {
	return e.Err
}

// Message is the user-facing text.
func (e *InvalidFileError) Message() string {
	if e.Reason == TooLarge {
		return "File size too large. Please keep it under " + FormatLimit(e.Limit) + "."
	}
	return "Please upload a valid image file (JPG, PNG or WEBP)."
}

var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type Validator struct {
	MaxBytes int64
}

// FormatLimit renders a byte ceiling the way the upload messages show it.
func FormatLimit(limit int64) string {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if limit >= 1<<20 && limit%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", limit>>20)
	}
	if limit >= 1<<20 {
		return fmt.Sprintf("%.1fMB", float64(limit)/(1<<20))
	}
	return fmt.Sprintf("%dKB", (limit+1023)/1024)
}

// Limit is the effective ceiling in bytes.
func (v Validator) Limit() int64 {
	return v.maxBytes()
}

func (v Validator) maxBytes() int64 {
	if v.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return v.MaxBytes
}

// Validate checks data and returns it as a blob with its detected mime type.
func (v Validator) Validate(data []byte, declaredMime string) (datauri.Blob, error) {
	size := int64(len(data))
	if size > v.maxBytes() {
		return datauri.Blob{}, &InvalidFileError{Reason: TooLarge, Size: size, Limit: v.maxBytes()}
	}

	mime := detectMime(data, declaredMime)
	if !accepted[mime] {
		return datauri.Blob{}, &InvalidFileError{Reason: UnsupportedType, MimeType: mime, Size: size}
	}

	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return datauri.Blob{}, &InvalidFileError{
			Reason:   UnsupportedType,
			MimeType: mime,
			Size:     size,
			Err:      fmt.Errorf("decode %s header: %w", mime, err),
		}
	} else if "image/"+format != mime {
		return datauri.Blob{}, &InvalidFileError{
			Reason:   UnsupportedType,
			MimeType: mime,
			Size:     size,
			Err:      fmt.Errorf("content is %s, declared %s", format, mime),
		}
	}

	return datauri.Blob{Data: data, MimeType: mime}, nil
}

// Validate uses the default 10 MiB ceiling.
func Validate(data []byte, declaredMime string) (datauri.Blob, error) {
	return Validator{}.Validate(data, declaredMime)
}

func detectMime(data []byte, declared string) string {
	sniffed := normalizeMime(http.DetectContentType(data))
	if sniffed != "" && sniffed != "application/octet-stream" && !strings.HasPrefix(sniffed, "text/") {
		return sniffed
	}
	return normalizeMime(declared)
}

func normalizeMime(value string) string {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, ';'); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	value = strings.ToLower(value)
	if value == "image/jpg" || value == "image/pjpeg" {
		return "image/jpeg"
	}
	return value
}
