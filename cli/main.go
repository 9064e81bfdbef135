// Command ytscribe downloads audio for a list of YouTube videos and writes
// one transcript file per video.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/config"
)

// Exit codes.
const (
	exitOK       = 0
	exitError    = 1
	exitCanceled = 130
)

var errCanceled = errors.New("batch canceled")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	a.interactive = isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

	os.Exit(a.run(ctx, os.Args[1:]))
}

// app carries the process streams and the collaborators commands build on.
type app struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	interactive bool
	deps        deps
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		deps:   defaultDeps(),
	}
}

// run executes the command line and maps the outcome to an exit code.
func (a *app) run(ctx context.Context, args []string) int {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errCanceled):
		fmt.Fprintln(a.stderr, "Canceled.")
		return exitCanceled
	default:
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(a.stderr, "Error: %v\n", cfgErr.Err)
		} else {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
		return exitError
	}
}

// options holds flag values that are not configuration keys.
type options struct {
	configPath string
	verbose    bool
	noPrompt   bool
	noMetadata bool
}

func (a *app) newRootCmd() *cobra.Command {
	var opts options
	cfgFlags := &config.Config{}

	root := &cobra.Command{
		Use:   "ytscribe",
		Short: "Batch-download YouTube audio and transcribe it",
		Long: `ytscribe reads a .txt file of YouTube video IDs, downloads each video's
audio as {id}.mp3 and writes its transcript to {id}_transcription.txt.
Existing files are reused, so re-running a batch only redoes failed videos.`,
		Example: `  # Transcribe in Hindi on GPU 0 (defaults)
  ytscribe --video-ids-file ids.txt

  # Let whisper detect the language, write failures for a retry run
  ytscribe -i ids.txt -l auto --failed-out failed.txt

  # Use YouTube's own captions instead of local inference
  ytscribe -i ids.txt --backend captions -l kn

  # Transcribe a whole channel
  ytscribe list https://www.youtube.com/@somechannel --out ids.txt
  ytscribe -i ids.txt`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBatch(cmd, &opts, cfgFlags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default: ./ytscribe.json or ~/.config/ytscribe/ytscribe.json)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&opts.noPrompt, "no-prompt", false, "never prompt for missing values")
	pf.StringVarP(&cfgFlags.VideoIDsFile, "video-ids-file", "i", "", "path to video IDs .txt file (one ID per line)")
	pf.StringVarP(&cfgFlags.OutputPath, "output-path", "o", "", `directory for audio and transcripts (default "audio_files")`)
	pf.StringVar(&cfgFlags.APIKey, "api-key", "", "YouTube Data API key (default: YT_API_KEY from environment or .env)")
	pf.StringVarP(&cfgFlags.Language, "language", "l", "", `transcription language name or code, or "auto" (default Hindi)`)
	pf.IntVar(&cfgFlags.GPUID, "gpu-id", 0, "GPU index for transcription; falls back to CPU if unavailable")
	pf.StringVar(&cfgFlags.Backend, "backend", "", `transcription backend: "whisper" or "captions" (default "whisper")`)
	pf.StringVar(&cfgFlags.WhisperPath, "whisper-path", "", "whisper executable")
	pf.StringVar(&cfgFlags.WhisperModel, "whisper-model", "", `whisper model (default "large")`)
	pf.StringVar(&cfgFlags.YtdlpPath, "ytdlp-path", "", "yt-dlp executable")
	pf.IntVar(&cfgFlags.AudioQuality, "audio-quality", 0, "MP3 bitrate in kbps (default 192)")
	pf.Float64Var(&cfgFlags.APIRPS, "api-rps", 0, "Data API requests per second (default 1)")
	pf.StringVar(&cfgFlags.FailedOut, "failed-out", "", "write failed video IDs to this file, one per line")
	root.Flags().BoolVar(&opts.noMetadata, "no-metadata", false, "skip the metadata lookup")

	root.AddCommand(a.newInfoCmd(&opts, cfgFlags), a.newDevicesCmd(), a.newListCmd(&opts, cfgFlags))
	return root
}
