package pipeline

import (
	"fmt"
	"io"
	"time"
)

// State is the position of one video in the per-item state machine.
type State string

const (
	StatePending      State = "pending"
	StateAcquiring    State = "acquiring"
	StateTranscribing State = "transcribing"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// FailureKind says which step a video failed in.
type FailureKind string

const (
	FailureAcquisition   FailureKind = "acquisition"
	FailureTranscription FailureKind = "transcription"
	// FailureCanceled marks a step interrupted by cancellation.
	FailureCanceled FailureKind = "canceled"
)

// FailureRecord is one failed video and why.
type FailureRecord struct {
	VideoID string      `json:"video_id"`
	Kind    FailureKind `json:"kind"`
	Reason  string      `json:"reason"`
	Err     error       `json:"-"`
}

// Item is the outcome of processing one video.
type Item struct {
	VideoID        string
	State          State
	AudioPath      string
	TranscriptPath string
	Failure        *FailureRecord
}

// Result is a video that reached Done.
type Result struct {
	VideoID        string `json:"video_id"`
	TranscriptPath string `json:"transcript_path"`
}

// Summary is the outcome of a batch.
type Summary struct {
	RunID string `json:"run_id"`
	// Processed counts videos that were attempted.
	Processed int `json:"processed"`
	// Done lists completed videos in list order.
	Done []Result `json:"done"`
	// Failed lists failures in the order they occurred.
	Failed []FailureRecord `json:"failed"`
	// Unprocessed lists videos not reached because the batch was canceled.
	Unprocessed []string      `json:"unprocessed,omitempty"`
	Canceled    bool          `json:"canceled"`
	Elapsed     time.Duration `json:"elapsed"`
}

func (s *Summary) record(item Item) {
	s.Processed++
	switch item.State {
	case StateDone:
		s.Done = append(s.Done, Result{VideoID: item.VideoID, TranscriptPath: item.TranscriptPath})
	case StateFailed:
		s.Failed = append(s.Failed, *item.Failure)
	}
}

// FailedIDs returns the failed identifiers in failure order.
func (s *Summary) FailedIDs() []string {
	ids := make([]string, 0, len(s.Failed))
	for _, f := range s.Failed {
		ids = append(ids, f.VideoID)
	}
	return ids
}

// RetryIDs returns the identifiers a follow-up batch should process: the
// failed ones followed by any left unprocessed.
func (s *Summary) RetryIDs() []string {
	return append(s.FailedIDs(), s.Unprocessed...)
}

// Report writes the human-readable batch summary to w.
func (s *Summary) Report(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "\nProcessed %d video(s): %d done, %d failed",
		s.Processed, len(s.Done), len(s.Failed)); err != nil {
		return err
	}
	if s.Canceled {
		if _, err := fmt.Fprintf(w, ", %d not processed (canceled)", len(s.Unprocessed)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	if len(s.Failed) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Failed videos:"); err != nil {
		return err
	}
	for _, f := range s.Failed {
		if _, err := fmt.Fprintf(w, "  %s (%s): %s\n", f.VideoID, f.Kind, f.Reason); err != nil {
			return err
		}
	}
	return nil
}
