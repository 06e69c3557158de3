package gait

import "fmt"

// InputError reports a precondition failure on the caller-supplied
// sequence: the clip is empty or too short to fill a single model window.
// The host should translate it into an actionable message ("select a
// longer or clearer video") rather than a hard failure. It is never
// retried internally.
type InputError struct {
	Reason    string
	Frames    int
	MinFrames int
}

func (e *InputError) Error() string {
	if e.MinFrames > 0 {
		return fmt.Sprintf("%s: got %d frames, need at least %d", e.Reason, e.Frames, e.MinFrames)
	}
	return e.Reason
}

// errEmptySequence builds the InputError for a zero-frame sequence.
func errEmptySequence() error {
	return &InputError{Reason: "pose sequence has no frames"}
}

// errTooShort builds the InputError for a sequence shorter than one window.
func errTooShort(frames, min int) error {
	return &InputError{Reason: "pose sequence too short for analysis window", Frames: frames, MinFrames: min}
}
