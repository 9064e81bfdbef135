package transcribe

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/horiagug/youtube-transcript-api-go/pkg/yt_transcript"
	"github.com/horiagug/youtube-transcript-api-go/pkg/yt_transcript_models"
)

// captionSource is the part of the transcript client CaptionEngine uses.
type captionSource interface {
	GetTranscripts(videoID string, languages []string) ([]yt_transcript_models.Transcript, error)
}

// Pacer delays a request to url until the caller's rate budget allows it.
type Pacer interface {
	Wait(ctx context.Context, url string) error
}

// CaptionEngine fetches a caption track YouTube already has instead of
// running local inference. It needs no audio and ignores the device.
type CaptionEngine struct {
	// Pacer spaces caption requests. Nil means no pacing.
	Pacer Pacer
	// Logger receives the chosen track. Nil means slog.Default().
	Logger *slog.Logger

	source captionSource
}

// NewCaptionEngine returns a CaptionEngine backed by the public transcript
// endpoints.
func NewCaptionEngine(pacer Pacer) *CaptionEngine {
	return &CaptionEngine{
		Pacer:  pacer,
		source: yt_transcript.NewClient(),
	}
}

// Recognize returns the lines of the best caption track for in.VideoID.
// Manually created tracks win over auto-generated ones. With an explicit
// language only tracks in that language are considered.
func (e *CaptionEngine) Recognize(ctx context.Context, in Input) ([]Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.Pacer != nil {
		if err := e.Pacer.Wait(ctx, "https://www.youtube.com/watch?v="+in.VideoID); err != nil {
			return nil, err
		}
	}

	var languages []string
	if !in.Language.AutoDetect {
		languages = []string{in.Language.Code}
	}

	tracks, err := e.source.GetTranscripts(in.VideoID, languages)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCaptions, err)
	}

	track, ok := pickTrack(tracks)
	if !ok {
		return nil, ErrNoCaptions
	}

	e.logger().Info("using caption track",
		slog.String("video_id", in.VideoID),
		slog.String("language", track.LanguageCode),
		slog.Bool("generated", !isManual(track)),
	)
	return captionSegments(track), nil
}

// pickTrack prefers manually created tracks, then the first track in a
// stable order. Tracks without lines are ignored.
func pickTrack(tracks []yt_transcript_models.Transcript) (yt_transcript_models.Transcript, bool) {
	candidates := slices.DeleteFunc(slices.Clone(tracks), func(t yt_transcript_models.Transcript) bool {
		return len(t.Lines) == 0
	})
	if len(candidates) == 0 {
		return yt_transcript_models.Transcript{}, false
	}

	slices.SortStableFunc(candidates, func(a, b yt_transcript_models.Transcript) int {
		if ma, mb := isManual(a), isManual(b); ma != mb {
			if ma {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.LanguageCode, b.LanguageCode)
	})
	return candidates[0], true
}

// isManual reports whether t was created by the uploader. The transcript
// client marks speech recognition ("asr") tracks with IsGenerated false and
// every other track with IsGenerated true, so the flag reads inverted.
func isManual(t yt_transcript_models.Transcript) bool {
	return t.IsGenerated
}

// captionSegments normalizes caption lines into segments.
func captionSegments(t yt_transcript_models.Transcript) []Segment {
	segs := make([]Segment, 0, len(t.Lines))
	for _, line := range t.Lines {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		segs = append(segs, Segment{
			Text:  text,
			Start: seconds(line.Start),
			End:   seconds(line.Start + line.Duration),
		})
	}
	return segs
}

func (e *CaptionEngine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
