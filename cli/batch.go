package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/config"
	ythttp "github.com/Shailesh0209/whole-youtube-channel-transcription/http"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/storage"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/pipeline"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/transcribe"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/youtube"
)

// lockTimeout bounds how long a second batch waits for an output directory
// another batch is using.
const lockTimeout = 2 * time.Second

// metadataSource looks up titles and durations for a batch.
type metadataSource interface {
	Fetch(ctx context.Context, ids []string) map[string]youtube.VideoMetadata
}

// idLister lists the video IDs of a channel or playlist.
type idLister interface {
	ListIDs(ctx context.Context, url string, limit int) ([]string, error)
}

// deps builds the external collaborators. Tests replace them with fakes.
type deps struct {
	probe    func() transcribe.DeviceProbe
	lister   func(ytdlpPath string, log *slog.Logger) idLister
	metadata func(ctx context.Context, apiKey string, client *http.Client, log *slog.Logger) (metadataSource, error)
	stages   func(cfg *config.Config, limiter *ythttp.RateLimiter, log *slog.Logger) (pipeline.Acquirer, transcribe.Engine)
}

func defaultDeps() deps {
	return deps{
		probe: func() transcribe.DeviceProbe {
			return transcribe.NewNvidiaSMIProbe()
		},
		lister: func(ytdlpPath string, log *slog.Logger) idLister {
			l := youtube.NewChannelLister()
			l.YtdlpPath = ytdlpPath
			l.Logger = log
			return l
		},
		metadata: func(ctx context.Context, apiKey string, client *http.Client, log *slog.Logger) (metadataSource, error) {
			apiClient, err := youtube.NewAPIClient(ctx, apiKey, client.Transport)
			if err != nil {
				return nil, err
			}
			apiClient.Timeout = client.Timeout
			f, err := youtube.NewMetadataFetcher(ctx, apiKey, option.WithHTTPClient(apiClient))
			if err != nil {
				return nil, err
			}
			f.Logger = log
			return f, nil
		},
		stages: defaultStages,
	}
}

// defaultStages returns the acquirer and engine for cfg.Backend. The
// captions backend reads no audio, so it has no acquirer.
func defaultStages(cfg *config.Config, limiter *ythttp.RateLimiter, log *slog.Logger) (pipeline.Acquirer, transcribe.Engine) {
	if cfg.Backend == config.BackendCaptions {
		engine := transcribe.NewCaptionEngine(limiter)
		engine.Logger = log
		return nil, engine
	}

	dl := youtube.NewAudioDownloader()
	dl.YtdlpPath = cfg.YtdlpPath
	dl.AudioQuality = cfg.AudioQuality
	dl.Logger = log

	engine := transcribe.NewWhisperEngine(cfg.WhisperPath, cfg.WhisperModel)
	engine.Logger = log
	return dl, engine
}

// runBatch resolves configuration and processes every listed video.
func (a *app) runBatch(cmd *cobra.Command, opts *options, flags *config.Config) error {
	ctx := cmd.Context()

	cfg, lang, err := a.resolveConfig(cmd, opts, flags)
	if err != nil {
		return err
	}
	log := a.newLogger(opts.verbose)

	ids, err := youtube.ReadVideoIDs(cfg.VideoIDsFile)
	if err != nil {
		return &config.Error{Key: "video_ids_file", Err: err}
	}
	if len(ids) == 0 {
		return &config.Error{Key: "video_ids_file", Err: fmt.Errorf("%w in %s", youtube.ErrNoVideoIDs, cfg.VideoIDsFile)}
	}
	fmt.Fprintf(a.stdout, "Found %d video ID(s) in %s\n", len(ids), cfg.VideoIDsFile)
	fmt.Fprintf(a.stdout, "Transcription language: %s\n", config.LanguageName(lang))

	if err := os.MkdirAll(cfg.OutputPath, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	lock := storage.NewFileLock(filepath.Join(cfg.OutputPath, ".ytscribe"))
	if err := lock.Lock(ctx, lockTimeout); err != nil {
		if errors.Is(err, storage.ErrLockTimeout) {
			return fmt.Errorf("output directory %s is in use by another batch: %w", cfg.OutputPath, err)
		}
		if errors.Is(err, context.Canceled) {
			return errCanceled
		}
		return err
	}
	defer lock.Unlock()

	client, limiter := a.newHTTPClient(cfg)

	var meta map[string]youtube.VideoMetadata
	if !opts.noMetadata {
		meta = a.fetchMetadata(ctx, cfg, client, ids, log)
		if err := printVideoTable(a.stderr, ids, meta); err != nil {
			return err
		}
	}

	acquirer, engine := a.deps.stages(cfg, limiter, log)

	var probe transcribe.DeviceProbe
	device := transcribe.CPU
	if cfg.Backend == config.BackendWhisper {
		probe = a.deps.probe()
		device = transcribe.CUDA(cfg.GPUID)
	}
	tr := transcribe.NewTranscriber(engine, probe)
	tr.Logger = log

	pcfg := pipeline.Config{
		OutputDir:   cfg.OutputPath,
		Language:    lang,
		Device:      device,
		Acquirer:    acquirer,
		Transcriber: tr,
		Metadata:    meta,
		Logger:      log,
	}
	p, err := pipeline.New(pcfg)
	if err != nil {
		return err
	}

	sum := p.Run(ctx, ids)
	if err := sum.Report(a.stdout); err != nil {
		return err
	}

	if cfg.FailedOut != "" {
		retry := sum.RetryIDs()
		if err := youtube.WriteVideoIDs(cfg.FailedOut, retry); err != nil {
			return fmt.Errorf("write failed IDs: %w", err)
		}
		fmt.Fprintf(a.stdout, "Wrote %d ID(s) to retry to %s\n", len(retry), cfg.FailedOut)
	}

	if sum.Canceled {
		return errCanceled
	}
	return nil
}

// resolveConfig layers changed flags over the loaded configuration, prompts
// for what is still missing and validates the result.
func (a *app) resolveConfig(cmd *cobra.Command, opts *options, flags *config.Config) (*config.Config, transcribe.Language, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			return nil, transcribe.Language{}, err
		}
		return nil, transcribe.Language{}, &config.Error{Key: "config", Err: err}
	}
	applyFlags(cmd, cfg, flags)

	if a.interactive && !opts.noPrompt {
		p := newPrompter(a.stdin, a.stdout)
		if cfg.VideoIDsFile == "" {
			if cfg.VideoIDsFile, err = p.inputFile(); err != nil {
				return nil, transcribe.Language{}, err
			}
		}
		if !cmd.Flags().Changed("language") && cfg.Language == "" {
			if cfg.Language, err = p.language(); err != nil {
				return nil, transcribe.Language{}, err
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, transcribe.Language{}, err
	}
	lang, err := config.ParseLanguage(cfg.Language)
	if err != nil {
		return nil, transcribe.Language{}, &config.Error{Key: "language", Err: err}
	}
	return cfg, lang, nil
}

// applyFlags copies the flags the user set onto cfg. Unset flags leave the
// file and environment values alone.
func applyFlags(cmd *cobra.Command, cfg, flags *config.Config) {
	changed := cmd.Flags().Changed
	if changed("video-ids-file") {
		cfg.VideoIDsFile = flags.VideoIDsFile
	}
	if changed("output-path") {
		cfg.OutputPath = flags.OutputPath
	}
	if changed("api-key") {
		cfg.APIKey = flags.APIKey
	}
	if changed("language") {
		cfg.Language = flags.Language
	}
	if changed("gpu-id") {
		cfg.GPUID = flags.GPUID
	}
	if changed("backend") {
		cfg.Backend = flags.Backend
	}
	if changed("whisper-path") {
		cfg.WhisperPath = flags.WhisperPath
	}
	if changed("whisper-model") {
		cfg.WhisperModel = flags.WhisperModel
	}
	if changed("ytdlp-path") {
		cfg.YtdlpPath = flags.YtdlpPath
	}
	if changed("audio-quality") {
		cfg.AudioQuality = flags.AudioQuality
	}
	if changed("api-rps") {
		cfg.APIRPS = flags.APIRPS
	}
	if changed("failed-out") {
		cfg.FailedOut = flags.FailedOut
	}
}

// newLogger installs a text handler on stderr as the default logger.
func (a *app) newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log
}

// newHTTPClient returns the shared client with Data API pacing from cfg.
func (a *app) newHTTPClient(cfg *config.Config) (*http.Client, *ythttp.RateLimiter) {
	hcfg := ythttp.DefaultConfig()
	hcfg.RateLimiter.DataAPIRPS = cfg.APIRPS
	return ythttp.New(hcfg)
}

// fetchMetadata returns what the Data API knows about ids. Lookup problems
// are logged and never fail the batch.
func (a *app) fetchMetadata(ctx context.Context, cfg *config.Config, client *http.Client, ids []string, log *slog.Logger) map[string]youtube.VideoMetadata {
	src, err := a.deps.metadata(ctx, cfg.APIKey, client, log)
	if err != nil {
		log.Warn("metadata lookup unavailable", slog.Any("err", err))
		return nil
	}
	return src.Fetch(ctx, ids)
}
