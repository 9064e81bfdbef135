package transcribe

import (
	"errors"
	"fmt"
)

// Sentinel errors for transcription.
var (
	ErrConflictingLanguage = errors.New("transcribe: both an explicit language and auto-detect were requested")
	ErrNoLanguage          = errors.New("transcribe: neither a language nor auto-detect was requested")
	ErrWhisperNotInstalled = errors.New("transcribe: whisper not installed")
	ErrNoCaptions          = errors.New("transcribe: no caption track available")
	ErrMissingAudio        = errors.New("transcribe: audio file not found")
)

// Stage names the part of transcription that failed.
type Stage string

const (
	// StageLoad covers input validation and engine start-up.
	StageLoad Stage = "load"
	// StageInference covers the engine run itself.
	StageInference Stage = "inference"
	// StageWrite covers persisting the transcript artifact.
	StageWrite Stage = "write"
)

// TranscriptionError wraps a failed transcription with its video and stage.
//
//	var trErr *transcribe.TranscriptionError
//	if errors.As(err, &trErr) && trErr.Stage == transcribe.StageInference {
//		...
//	}
type TranscriptionError struct {
	VideoID string
	Stage   Stage
	Err     error
}

// Error returns a string representation of the transcription error.
func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcribe: %s %s: %v", e.Stage, e.VideoID, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *TranscriptionError) Unwrap() error { return e.Err }
