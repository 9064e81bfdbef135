// Package pipeline drives a batch of videos through audio acquisition and
// transcription, one video at a time. A failing video is recorded and the
// batch moves on; the Summary lists failures in the order they happened.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/transcribe"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/youtube"
)

// Acquirer materializes the audio artifact for a video.
type Acquirer interface {
	Acquire(ctx context.Context, videoID, outputDir string) (string, error)
}

// Transcriber materializes the transcript artifact for a video.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcribe.Request) (string, error)
}

// Config configures a Pipeline.
type Config struct {
	// OutputDir receives {id}.mp3 and {id}_transcription.txt.
	OutputDir string
	// Language is passed to every transcription. It must name exactly one mode.
	Language transcribe.Language
	// Device is the requested inference device.
	Device transcribe.Device

	// Acquirer downloads audio. Nil skips acquisition, for engines that
	// do not read audio.
	Acquirer Acquirer
	// Transcriber is required.
	Transcriber Transcriber

	// Metadata adds titles to log lines. Optional.
	Metadata map[string]youtube.VideoMetadata
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// RunID tags every log line. A random one is generated when empty.
	RunID string
}

// Pipeline processes video identifiers sequentially.
type Pipeline struct {
	cfg Config
	log *slog.Logger
}

// New validates cfg and returns a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Transcriber == nil {
		return nil, errors.New("pipeline: transcriber required")
	}
	if err := cfg.Language.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg: cfg,
		log: logger.With(slog.String("run_id", cfg.RunID)),
	}, nil
}

// RunID returns the identifier attached to this pipeline's log lines.
func (p *Pipeline) RunID() string {
	return p.cfg.RunID
}

// Run processes ids in order and returns the batch summary. Per-video
// failures never stop the batch. Cancelling ctx stops it before the next
// video; the videos not reached are listed as unprocessed.
func (p *Pipeline) Run(ctx context.Context, ids []string) *Summary {
	start := time.Now()
	sum := &Summary{RunID: p.cfg.RunID}

	p.log.Info("batch started", slog.Int("videos", len(ids)), slog.String("output", p.cfg.OutputDir))

	for i, id := range ids {
		if ctx.Err() != nil {
			sum.Canceled = true
			sum.Unprocessed = append(sum.Unprocessed, ids[i:]...)
			p.log.Warn("batch canceled", slog.Int("unprocessed", len(ids)-i))
			break
		}

		item := p.process(ctx, id, i+1, len(ids))
		sum.record(item)
	}

	sum.Elapsed = time.Since(start)
	p.log.Info("batch finished",
		slog.Int("processed", sum.Processed),
		slog.Int("done", len(sum.Done)),
		slog.Int("failed", len(sum.Failed)),
		slog.Duration("elapsed", sum.Elapsed),
	)
	return sum
}

// process moves one video from Pending to Done or Failed.
func (p *Pipeline) process(ctx context.Context, id string, pos, total int) Item {
	item := Item{VideoID: id, State: StatePending}
	log := p.log.With(slog.String("video_id", id))
	if md, ok := p.cfg.Metadata[id]; ok && md.Title != "" {
		log = log.With(slog.String("title", md.Title))
	}
	log.Info("processing video", slog.Int("position", pos), slog.Int("total", total))

	if p.cfg.Acquirer != nil {
		item.State = StateAcquiring
		path, err := p.cfg.Acquirer.Acquire(ctx, id, p.cfg.OutputDir)
		if err == nil && path == "" {
			err = errors.New("acquisition returned no path")
		}
		if err != nil {
			return p.fail(log, item, FailureAcquisition, err)
		}
		item.AudioPath = path
	}

	item.State = StateTranscribing
	path, err := p.cfg.Transcriber.Transcribe(ctx, transcribe.Request{
		VideoID:   id,
		AudioPath: item.AudioPath,
		OutputDir: p.cfg.OutputDir,
		Language:  p.cfg.Language,
		Device:    p.cfg.Device,
	})
	if err != nil {
		return p.fail(log, item, FailureTranscription, err)
	}

	item.TranscriptPath = path
	item.State = StateDone
	log.Info("video done", slog.String("path", path))
	return item
}

func (p *Pipeline) fail(log *slog.Logger, item Item, step FailureKind, err error) Item {
	kind := classify(err, step)
	item.State = StateFailed
	item.Failure = &FailureRecord{
		VideoID: item.VideoID,
		Kind:    kind,
		Reason:  err.Error(),
		Err:     err,
	}
	log.Error("video failed", slog.String("kind", string(kind)), slog.Any("err", err))
	return item
}

// classify maps err to a FailureKind, falling back to the step that failed
// when err carries no step type.
func classify(err error, step FailureKind) FailureKind {
	if kind := KindOf(err); kind != "" {
		return kind
	}
	return step
}

// KindOf reports the step err belongs to, or "" when err carries no step
// type.
func KindOf(err error) FailureKind {
	var acqErr *youtube.AcquisitionError
	var trErr *transcribe.TranscriptionError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled
	case errors.As(err, &acqErr):
		return FailureAcquisition
	case errors.As(err, &trErr):
		return FailureTranscription
	default:
		return ""
	}
}
