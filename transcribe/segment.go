// Package transcribe turns acquired audio into transcript files. A
// Transcriber owns the idempotency check, device selection and persistence;
// the speech recognition itself is delegated to an Engine.
package transcribe

import (
	"bufio"
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/storage"
)

// Segment is one timed piece of recognized text.
type Segment struct {
	Text  string
	Start time.Duration
	End   time.Duration
}

// Input is what an Engine needs for one recognition run. Language has been
// validated before an Engine sees it.
type Input struct {
	VideoID   string
	AudioPath string
	Language  Language
	Device    Device
}

// Engine produces chronologically ordered segments for one input.
type Engine interface {
	Recognize(ctx context.Context, in Input) ([]Segment, error)
}

// TranscriptPath returns the deterministic transcript artifact path for videoID.
func TranscriptPath(outputDir, videoID string) string {
	return filepath.Join(outputDir, videoID+"_transcription.txt")
}

// WriteSegments writes the text of each segment as one UTF-8 line, in order,
// replacing path atomically. Line breaks inside a segment become spaces so
// the one-line-per-segment layout holds.
func WriteSegments(path string, segs []Segment) error {
	return storage.WriteFile(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, s := range segs {
			if _, err := bw.WriteString(flatten(s.Text) + "\n"); err != nil {
				return err
			}
		}
		return bw.Flush()
	})
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func flatten(text string) string {
	return lineBreaks.Replace(text)
}
