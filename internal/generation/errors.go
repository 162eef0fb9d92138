package generation

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential = errors.New("missing API credential")
	ErrMalformedInput    = errors.New("malformed source image")
	ErrNoImageReturned   = errors.New("no image data returned from the model")
	ErrRemote            = errors.New("remote generation failed")
)

// RemoteError wraps a transport or service failure. errors.Is(err, ErrRemote)
// reports true for it.
type RemoteError struct {
	StatusCode int // 0 when the failure happened before a response
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Err == nil {
		return ErrRemote.Error()
	}
	return fmt.Sprintf("%s: %v", ErrRemote, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}
