package datauri

import (
	"bytes"
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantMime string
		wantData []byte
	}{
		{"png", "data:image/png;base64,aGVsbG8=", "image/png", []byte("hello")},
		{"no mime", "data:;base64,aGVsbG8=", DefaultMimeType, []byte("hello")},
		{"bare payload", "aGVsbG8=", DefaultMimeType, []byte("hello")},
		{"without base64 flag", "data:image/webp,aGVsbG8=", "image/webp", []byte("hello")},
		{"parameter before flag", "data:image/png;name=a.png;base64,aGVsbG8=", "image/png", []byte("hello")},
		{"charset parameter", "data:IMAGE/PNG;charset=binary;base64,aGVsbG8=", "image/png", []byte("hello")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.MimeType != tt.wantMime {
				t.Errorf("mime = %q, want %q", got.MimeType, tt.wantMime)
			}
			if !bytes.Equal(got.Data, tt.wantData) {
				t.Errorf("data = %q, want %q", got.Data, tt.wantData)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{"", "data:image/png;base64,", "data:image/png;base64,!!!", "data:image/png;base64"} {
		if _, err := Parse(in); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformed", in, err)
		}
	}
}

func TestEncode(t *testing.T) {
	got := Encode(Blob{Data: []byte("hello"), MimeType: "image/png"})
	if got != "data:image/png;base64,aGVsbG8=" {
		t.Errorf("unexpected encoding: %s", got)
	}

	back, err := Parse(got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(back.Data) != "hello" || back.MimeType != "image/png" {
		t.Errorf("unexpected blob: %+v", back)
	}
}
