package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/command"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/storage"
)

// DefaultWhisperModel is the model loaded when none is configured.
const DefaultWhisperModel = "large"

// WhisperEngine runs the openai-whisper command line tool on local audio.
type WhisperEngine struct {
	// Path is the whisper executable. Defaults to "whisper".
	Path string
	// Model is the whisper model name. Defaults to DefaultWhisperModel.
	Model string
	// Logger receives the command line at debug level. Nil means slog.Default().
	Logger *slog.Logger

	runner    command.Runner
	mkdirTemp func(dir, pattern string) (string, error)
	readFile  func(name string) ([]byte, error)
}

// NewWhisperEngine returns a WhisperEngine using whisper from PATH.
func NewWhisperEngine(path, model string) *WhisperEngine {
	return &WhisperEngine{
		Path:      path,
		Model:     model,
		runner:    command.ExecRunner{},
		mkdirTemp: os.MkdirTemp,
		readFile:  os.ReadFile,
	}
}

// whisperOutput is the subset of whisper's JSON output we consume.
type whisperOutput struct {
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Recognize transcribes in.AudioPath on in.Device. With an explicit language
// whisper is constrained to it; otherwise whisper detects the language.
func (e *WhisperEngine) Recognize(ctx context.Context, in Input) ([]Segment, error) {
	if !storage.Exists(in.AudioPath) {
		return nil, &TranscriptionError{VideoID: in.VideoID, Stage: StageLoad, Err: fmt.Errorf("%w: %s", ErrMissingAudio, in.AudioPath)}
	}

	mkdirTemp := e.mkdirTemp
	if mkdirTemp == nil {
		mkdirTemp = os.MkdirTemp
	}
	tempDir, err := mkdirTemp("", "ytscribe-whisper-*")
	if err != nil {
		return nil, &TranscriptionError{VideoID: in.VideoID, Stage: StageLoad, Err: fmt.Errorf("create temporary workspace: %w", err)}
	}
	defer os.RemoveAll(tempDir)

	path := e.Path
	if path == "" {
		path = "whisper"
	}
	args := e.buildArgs(in, tempDir)
	e.logger().Debug("exec", slog.String("video_id", in.VideoID), slog.String("cmd", command.String(path, args)))

	runner := e.runner
	if runner == nil {
		runner = command.ExecRunner{}
	}
	res, err := runner.Run(ctx, path, args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &TranscriptionError{VideoID: in.VideoID, Stage: StageLoad, Err: fmt.Errorf("%w: %w", ErrWhisperNotInstalled, err)}
		}
		return nil, command.Wrap(path, args, res, err)
	}

	readFile := e.readFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	base := strings.TrimSuffix(filepath.Base(in.AudioPath), filepath.Ext(in.AudioPath))
	raw, err := readFile(filepath.Join(tempDir, base+".json"))
	if err != nil {
		return nil, fmt.Errorf("whisper completed but output is missing: %w", err)
	}

	segs, lang, err := parseWhisperJSON(raw)
	if err != nil {
		return nil, err
	}
	if in.Language.AutoDetect && lang != "" {
		e.logger().Info("detected language", slog.String("video_id", in.VideoID), slog.String("language", lang))
	}
	return segs, nil
}

func (e *WhisperEngine) buildArgs(in Input, outputDir string) []string {
	model := e.Model
	if model == "" {
		model = DefaultWhisperModel
	}
	args := []string{
		in.AudioPath,
		"--model", model,
		"--device", in.Device.String(),
		"--task", "transcribe",
		"--output_format", "json",
		"--output_dir", outputDir,
		"--verbose", "False",
	}
	if !in.Device.GPU {
		args = append(args, "--fp16", "False")
	}
	if !in.Language.AutoDetect {
		args = append(args, "--language", in.Language.Code)
	}
	return args
}

// parseWhisperJSON converts whisper output into segments, keeping its order.
func parseWhisperJSON(raw []byte) ([]Segment, string, error) {
	var out whisperOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, "", fmt.Errorf("parse whisper output: %w", err)
	}

	segs := make([]Segment, 0, len(out.Segments))
	for _, s := range out.Segments {
		segs = append(segs, Segment{
			Text:  strings.TrimSpace(s.Text),
			Start: seconds(s.Start),
			End:   seconds(s.End),
		})
	}
	return segs, out.Language, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (e *WhisperEngine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
