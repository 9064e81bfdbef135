// Package youtube provides the YouTube-facing collaborators of a batch run:
// the video identifier list, yt-dlp audio acquisition and Data API metadata.
// ChannelLister turns a channel into an identifier list.
package youtube

import (
	"errors"
	"fmt"
)

// Sentinel errors for YouTube operations.
var (
	ErrEmptyVideoID      = errors.New("youtube: empty video id")
	ErrNoVideoIDs        = errors.New("youtube: no video IDs found")
	ErrAPIKeyRequired    = errors.New("youtube: api key required")
	ErrYtdlpNotInstalled = errors.New("youtube: yt-dlp not installed")
	ErrAudioMissing      = errors.New("youtube: yt-dlp finished but audio file is missing")
)

// AcquisitionError wraps a failed audio acquisition with the video it was for.
// Use errors.As() to extract it:
//
//	var acqErr *youtube.AcquisitionError
//	if errors.As(err, &acqErr) {
//		fmt.Printf("download of %s failed: %v\n", acqErr.VideoID, acqErr.Err)
//	}
type AcquisitionError struct {
	// VideoID is the identifier whose audio could not be acquired.
	VideoID string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the acquisition error.
func (e *AcquisitionError) Error() string {
	return "youtube: acquire " + e.VideoID + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *AcquisitionError) Unwrap() error { return e.Err }

// MetadataError describes one failed videos.list chunk. It is logged by the
// fetcher and never returned to callers.
type MetadataError struct {
	// Chunk is the zero-based index of the failed chunk.
	Chunk int
	// IDs are the identifiers the chunk asked for.
	IDs []string
	// Err is the underlying API error.
	Err error
}

// Error returns a string representation of the metadata error.
func (e *MetadataError) Error() string {
	return fmt.Sprintf("youtube: metadata chunk %d (%d ids): %v", e.Chunk, len(e.IDs), e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *MetadataError) Unwrap() error { return e.Err }
