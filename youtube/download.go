package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/command"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/storage"
)

// DefaultAudioQuality is the MP3 bitrate in kbps requested from yt-dlp.
const DefaultAudioQuality = 192

// AudioPath returns the deterministic audio artifact path for videoID.
func AudioPath(outputDir, videoID string) string {
	return filepath.Join(outputDir, videoID+".mp3")
}

// AudioDownloader acquires MP3 audio for a video using yt-dlp.
type AudioDownloader struct {
	// YtdlpPath is the path to the yt-dlp executable.
	// If empty, uses "yt-dlp" from PATH.
	YtdlpPath string
	// AudioQuality is the MP3 bitrate in kbps. Defaults to 192.
	AudioQuality int
	// Logger receives one line per step. Nil means slog.Default().
	Logger *slog.Logger

	runner command.Runner
}

// NewAudioDownloader creates an AudioDownloader with default settings.
func NewAudioDownloader() *AudioDownloader {
	return &AudioDownloader{
		YtdlpPath:    "yt-dlp",
		AudioQuality: DefaultAudioQuality,
		runner:       command.ExecRunner{},
	}
}

// Acquire returns the path of the audio artifact for videoID inside
// outputDir, creating the directory if needed. An existing file at that path
// is returned as is and yt-dlp is not invoked; its contents are not checked.
// Failures are returned as *AcquisitionError.
func (d *AudioDownloader) Acquire(ctx context.Context, videoID, outputDir string) (string, error) {
	if strings.TrimSpace(videoID) == "" {
		return "", &AcquisitionError{VideoID: videoID, Err: ErrEmptyVideoID}
	}
	if outputDir == "" {
		outputDir = "."
	}
	log := d.logger().With(slog.String("video_id", videoID), slog.String("step", "acquire"))

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", &AcquisitionError{VideoID: videoID, Err: fmt.Errorf("create output directory: %w", err)}
	}

	path := AudioPath(outputDir, videoID)
	if storage.Exists(path) {
		log.Info("audio already exists, skipping download", slog.String("path", path))
		return path, nil
	}

	ytdlp := d.YtdlpPath
	if ytdlp == "" {
		ytdlp = "yt-dlp"
	}
	args := d.buildArgs(videoID, outputDir)

	log.Info("downloading audio")
	log.Debug("exec", slog.String("cmd", command.String(ytdlp, args)))

	res, err := d.run(ctx, ytdlp, args)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			err = fmt.Errorf("%w: %w", ErrYtdlpNotInstalled, err)
		}
		return "", &AcquisitionError{VideoID: videoID, Err: command.Wrap(ytdlp, args, res, err)}
	}

	if !storage.Exists(path) {
		return "", &AcquisitionError{VideoID: videoID, Err: ErrAudioMissing}
	}

	log.Info("audio downloaded", slog.String("path", path))
	return path, nil
}

// buildArgs asks yt-dlp to extract audio to {outputDir}/{videoID}.mp3.
func (d *AudioDownloader) buildArgs(videoID, outputDir string) []string {
	quality := d.AudioQuality
	if quality <= 0 {
		quality = DefaultAudioQuality
	}
	return []string{
		"-o", filepath.Join(outputDir, videoID+".%(ext)s"),
		"--no-warnings",
		"--no-playlist",
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", strconv.Itoa(quality) + "K",
		"--",
		videoID,
	}
}

func (d *AudioDownloader) run(ctx context.Context, name string, args []string) (command.Result, error) {
	runner := d.runner
	if runner == nil {
		runner = command.ExecRunner{}
	}
	return runner.Run(ctx, name, args...)
}

func (d *AudioDownloader) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
