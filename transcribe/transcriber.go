package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/storage"
)

// Request describes one transcription.
type Request struct {
	VideoID string
	// AudioPath is the acquired audio. Engines that fetch existing captions
	// ignore it.
	AudioPath string
	OutputDir string
	Language  Language
	Device    Device
}

// Transcriber produces the transcript artifact for a video, running the
// Engine only when the artifact does not exist yet.
type Transcriber struct {
	Engine Engine
	// Probe reports available accelerators. When nil the requested device
	// is passed to the engine unchanged.
	Probe DeviceProbe
	// Logger receives one line per step. Nil means slog.Default().
	Logger *slog.Logger

	probeOnce sync.Once
	accels    []Accelerator
	probeErr  error
}

// NewTranscriber returns a Transcriber over engine that falls back to CPU
// when probe does not report the requested GPU.
func NewTranscriber(engine Engine, probe DeviceProbe) *Transcriber {
	return &Transcriber{Engine: engine, Probe: probe}
}

// Transcribe returns the transcript path for req.VideoID. An existing file
// at that path is returned unchanged without invoking the engine. Failures
// are returned as *TranscriptionError.
func (t *Transcriber) Transcribe(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.VideoID) == "" {
		return "", &TranscriptionError{VideoID: req.VideoID, Stage: StageLoad, Err: errors.New("empty video id")}
	}
	if err := req.Language.Validate(); err != nil {
		return "", &TranscriptionError{VideoID: req.VideoID, Stage: StageLoad, Err: err}
	}
	if t.Engine == nil {
		return "", &TranscriptionError{VideoID: req.VideoID, Stage: StageLoad, Err: errors.New("no engine configured")}
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	log := t.logger().With(slog.String("video_id", req.VideoID), slog.String("step", "transcribe"))

	path := TranscriptPath(outputDir, req.VideoID)
	if storage.Exists(path) {
		log.Info("transcript already exists, skipping", slog.String("path", path))
		return path, nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", &TranscriptionError{VideoID: req.VideoID, Stage: StageWrite, Err: fmt.Errorf("create output directory: %w", err)}
	}

	device := t.selectDevice(ctx, req.Device, log)
	log.Info("transcribing", slog.String("device", device.String()), slog.String("language", req.Language.String()))

	segs, err := t.Engine.Recognize(ctx, Input{
		VideoID:   req.VideoID,
		AudioPath: req.AudioPath,
		Language:  req.Language,
		Device:    device,
	})
	if err != nil {
		var trErr *TranscriptionError
		if errors.As(err, &trErr) {
			return "", err
		}
		return "", &TranscriptionError{VideoID: req.VideoID, Stage: StageInference, Err: err}
	}

	if err := WriteSegments(path, segs); err != nil {
		return "", &TranscriptionError{VideoID: req.VideoID, Stage: StageWrite, Err: err}
	}

	log.Info("transcript written", slog.String("path", path), slog.Int("segments", len(segs)))
	return path, nil
}

// selectDevice resolves want against the probed accelerators, probing once
// per Transcriber.
func (t *Transcriber) selectDevice(ctx context.Context, want Device, log *slog.Logger) Device {
	if !want.GPU || t.Probe == nil {
		return want
	}

	t.probeOnce.Do(func() {
		t.accels, t.probeErr = t.Probe.Accelerators(ctx)
	})
	if t.probeErr != nil {
		log.Warn("device probe failed, using CPU", slog.Any("err", t.probeErr))
		return CPU
	}

	got := ResolveDevice(want, t.accels)
	if got != want {
		log.Warn("requested GPU unavailable, using CPU", slog.String("requested", want.String()))
	}
	return got
}

func (t *Transcriber) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}
