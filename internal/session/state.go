package session

import (
	"time"

	"artlens-pro/internal/artstyle"
)

type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseReady           Phase = "ready"
	PhaseGenerating      Phase = "generating"
	PhaseReadyWithResult Phase = "ready_with_result"
	PhaseReadyWithError  Phase = "ready_with_error"
)

type ErrorKind string

const (
	ErrorNone              ErrorKind = ""
	ErrorMissingCredential ErrorKind = "missing_credential"
	ErrorRemote            ErrorKind = "remote"
	ErrorInvalidInput      ErrorKind = "invalid_input"
)

// State is the whole session. Images are data URIs; "" means absent.
type State struct {
	OriginalImage  string
	GeneratedImage string
	Style          artstyle.ID
	Intensity      int
	IsGenerating   bool
	LastError      string
	ErrorKind      ErrorKind

	// Seq identifies the latest generation request. Results carrying an older
	// value are discarded.
	Seq uint64

	UpdatedAt time.Time
}

func (s State) Phase() Phase {
	switch {
	case s.OriginalImage == "":
		return PhaseIdle
	case s.IsGenerating:
		return PhaseGenerating
	case s.LastError != "":
		return PhaseReadyWithError
	case s.GeneratedImage != "":
		return PhaseReadyWithResult
	default:
		return PhaseReady
	}
}

func (s State) HasImage() bool {
	return s.OriginalImage != ""
}

// CanGenerate mirrors the enabled state of the generate button.
func (s State) CanGenerate() bool {
	return s.OriginalImage != "" && !s.IsGenerating
}

func defaultState() State {
	return State{
		Style:     artstyle.DefaultID,
		Intensity: artstyle.DefaultIntensity,
		UpdatedAt: time.Now(),
	}
}
