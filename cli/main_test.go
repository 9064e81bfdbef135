package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/config"
	ythttp "github.com/Shailesh0209/whole-youtube-channel-transcription/http"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/storage"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/pipeline"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/transcribe"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/youtube"
)

var envKeys = []string{
	"YTSCRIBE_VIDEO_IDS_FILE", "YTSCRIBE_OUTPUT_PATH", "YT_API_KEY", "YTSCRIBE_LANGUAGE",
	"YTSCRIBE_GPU_ID", "YTSCRIBE_BACKEND", "YTSCRIBE_WHISPER_PATH", "YTSCRIBE_WHISPER_MODEL",
	"YTSCRIBE_YTDLP_PATH", "YTSCRIBE_AUDIO_QUALITY", "YTSCRIBE_API_RPS", "YTSCRIBE_FAILED_OUT",
}

// isolate runs the test from an empty directory with no ytscribe settings in
// the environment, so neither .env nor ytscribe.json leak in.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	return dir
}

func writeIDs(t *testing.T, dir string, ids ...string) string {
	t.Helper()
	path := filepath.Join(dir, "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(ids, "\n")+"\n"), 0o644))
	return path
}

type fakeProbe struct {
	accels []transcribe.Accelerator
	err    error
	calls  int
}

func (p *fakeProbe) Accelerators(context.Context) ([]transcribe.Accelerator, error) {
	p.calls++
	return p.accels, p.err
}

type fakeMetadata map[string]youtube.VideoMetadata

func (f fakeMetadata) Fetch(_ context.Context, ids []string) map[string]youtube.VideoMetadata {
	out := make(map[string]youtube.VideoMetadata)
	for _, id := range ids {
		if m, ok := f[id]; ok {
			out[id] = m
		}
	}
	return out
}

// fakeAcquirer writes {id}.mp3 unless the id is listed in fail.
type fakeAcquirer struct {
	fail map[string]bool
}

func (f *fakeAcquirer) Acquire(_ context.Context, videoID, outputDir string) (string, error) {
	if f.fail[videoID] {
		return "", &youtube.AcquisitionError{VideoID: videoID, Err: errors.New("video unavailable")}
	}
	path := youtube.AudioPath(outputDir, videoID)
	return path, os.WriteFile(path, []byte("mp3"), 0o644)
}

type fakeEngine struct {
	mu     sync.Mutex
	inputs []transcribe.Input
}

func (f *fakeEngine) Recognize(_ context.Context, in transcribe.Input) ([]transcribe.Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return []transcribe.Segment{{Text: "hello " + in.VideoID}, {Text: "world"}}, nil
}

type fakeLister struct {
	ids       []string
	err       error
	gotURL    string
	gotLimit  int
	ytdlpPath string
}

func (f *fakeLister) ListIDs(_ context.Context, url string, limit int) ([]string, error) {
	f.gotURL, f.gotLimit = url, limit
	return f.ids, f.err
}

type harness struct {
	app    *app
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	probe  *fakeProbe
	engine *fakeEngine
	acq    *fakeAcquirer
	lister *fakeLister
	// stagesCfg is the configuration the stages factory was built with.
	stagesCfg *config.Config
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()
	h := &harness{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		probe:  &fakeProbe{accels: []transcribe.Accelerator{{Index: 0, Name: "Tesla T4"}}},
		engine: &fakeEngine{},
		acq:    &fakeAcquirer{fail: map[string]bool{}},
		lister: &fakeLister{},
	}
	h.app = newApp(strings.NewReader(stdin), h.stdout, h.stderr)
	h.app.deps = deps{
		probe: func() transcribe.DeviceProbe { return h.probe },
		lister: func(ytdlpPath string, _ *slog.Logger) idLister {
			h.lister.ytdlpPath = ytdlpPath
			return h.lister
		},
		metadata: func(context.Context, string, *http.Client, *slog.Logger) (metadataSource, error) {
			return fakeMetadata{
				"vid1": {ID: "vid1", Title: "First talk", Duration: "PT4M13S",
					PublishedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
			}, nil
		},
		stages: func(cfg *config.Config, _ *ythttp.RateLimiter, _ *slog.Logger) (pipeline.Acquirer, transcribe.Engine) {
			h.stagesCfg = cfg
			if cfg.Backend == config.BackendCaptions {
				return nil, h.engine
			}
			return h.acq, h.engine
		},
	}
	return h
}

func TestRun_MissingInputFileIsConfigError(t *testing.T) {
	isolate(t)
	h := newHarness(t, "")

	code := h.app.run(context.Background(), []string{"--api-key", "k"})

	assert.Equal(t, exitError, code)
	assert.Contains(t, h.stderr.String(), "Error: video IDs file is required")
}

func TestRun_ConfigErrors(t *testing.T) {
	dir := isolate(t)
	ids := writeIDs(t, dir, "vid1")
	csv := filepath.Join(dir, "ids.csv")
	require.NoError(t, os.WriteFile(csv, []byte("vid1\n"), 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"wrong extension", []string{"-i", csv, "--api-key", "k"}, "must be a .txt file"},
		{"missing file", []string{"-i", filepath.Join(dir, "nope.txt"), "--api-key", "k"}, "not found"},
		{"missing api key", []string{"-i", ids}, "API key is required"},
		{"unknown language", []string{"-i", ids, "--api-key", "k", "-l", "Klingon"}, "unknown language"},
		{"unknown backend", []string{"-i", ids, "--api-key", "k", "--backend", "cloud"}, "unknown backend"},
		{"negative gpu", []string{"-i", ids, "--api-key", "k", "--gpu-id", "-1"}, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "")
			code := h.app.run(context.Background(), tt.args)
			assert.Equal(t, exitError, code)
			assert.Contains(t, h.stderr.String(), tt.want)
			assert.Empty(t, h.engine.inputs)
		})
	}
}

func TestRun_EmptyIDListIsFatal(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n  \n"), 0o644))
	h := newHarness(t, "")

	code := h.app.run(context.Background(), []string{"-i", path, "--api-key", "k"})

	assert.Equal(t, exitError, code)
	assert.Contains(t, h.stderr.String(), "no video IDs found")
}

func TestRun_BatchWithFailure(t *testing.T) {
	dir := isolate(t)
	ids := writeIDs(t, dir, "vid1", "bad", "vid3")
	out := filepath.Join(dir, "out")
	failed := filepath.Join(dir, "failed.txt")
	h := newHarness(t, "")
	h.acq.fail["bad"] = true

	code := h.app.run(context.Background(), []string{
		"-i", ids, "-o", out, "--api-key", "k", "--failed-out", failed,
	})

	// Per-item failures do not change the exit status.
	require.Equal(t, exitOK, code, h.stderr.String())

	for _, id := range []string{"vid1", "vid3"} {
		data, err := os.ReadFile(transcribe.TranscriptPath(out, id))
		require.NoError(t, err)
		assert.Equal(t, "hello "+id+"\nworld\n", string(data))
	}
	assert.NoFileExists(t, transcribe.TranscriptPath(out, "bad"))

	stdout := h.stdout.String()
	assert.Contains(t, stdout, "Found 3 video ID(s)")
	assert.Contains(t, stdout, "Transcription language: Hindi")
	assert.Contains(t, stdout, "Processed 3 video(s): 2 done, 1 failed")
	assert.Contains(t, stdout, "bad (acquisition)")

	stderr := h.stderr.String()
	assert.Contains(t, stderr, "Videos to process (3):")
	assert.Contains(t, stderr, "First talk")
	assert.Contains(t, stderr, "4:13")
	assert.Contains(t, stderr, "2024-03-01")

	data, err := os.ReadFile(failed)
	require.NoError(t, err)
	assert.Equal(t, "bad\n", string(data))

	require.Len(t, h.engine.inputs, 2)
	assert.Equal(t, transcribe.Explicit("hi"), h.engine.inputs[0].Language)
	assert.Equal(t, transcribe.CUDA(0), h.engine.inputs[0].Device)
	assert.Equal(t, 1, h.probe.calls)
	assert.FileExists(t, filepath.Join(out, ".ytscribe.lock"))
}

func TestRun_GPUFallsBackToCPU(t *testing.T) {
	dir := isolate(t)
	ids := writeIDs(t, dir, "vid1")
	h := newHarness(t, "")

	code := h.app.run(context.Background(), []string{
		"-i", ids, "-o", filepath.Join(dir, "out"), "--api-key", "k", "--gpu-id", "3", "--no-metadata",
	})

	require.Equal(t, exitOK, code, h.stderr.String())
	require.Len(t, h.engine.inputs, 1)
	assert.Equal(t, transcribe.CPU, h.engine.inputs[0].Device)
	assert.NotContains(t, h.stderr.String(), "Videos to process")
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	dir := isolate(t)
	ids := writeIDs(t, dir, "vid1", "vid2")
	args := []string{"-i", ids, "-o", filepath.Join(dir, "out"), "--api-key", "k", "--no-metadata"}

	first := newHarness(t, "")
	require.Equal(t, exitOK, first.app.run(context.Background(), args))
	require.Len(t, first.engine.inputs, 2)

	second := newHarness(t, "")
	require.Equal(t, exitOK, second.app.run(context.Background(), args))
	assert.Empty(t, second.engine.inputs)
	assert.Contains(t, second.stdout.String(), "2 done, 0 failed")
}

func TestRun_CaptionsBackend(t *testing.T) {
	dir := isolate(t)
	ids := writeIDs(t, dir, "vid1")
	out := filepath.Join(dir, "out")
	h := newHarness(t, "")

	code := h.app.run(context.Background(), []string{
		"-i", ids, "-o", out, "--api-key", "k", "--backend", "captions", "-l", "auto",
	})

	require.Equal(t, exitOK, code, h.stderr.String())
	assert.Equal(t, config.BackendCaptions, h.stagesCfg.Backend)
	assert.Zero(t, h.probe.calls)
	require.Len(t, h.engine.inputs, 1)
	assert.Equal(t, transcribe.Auto(), h.engine.inputs[0].Language)
	assert.Equal(t, transcribe.CPU, h.engine.inputs[0].Device)
	assert.NoFileExists(t, youtube.AudioPath(out, "vid1"))
	assert.FileExists(t, transcribe.TranscriptPath(out, "vid1"))
}

func TestRun_FlagsOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	ids := writeIDs(t, dir, "vid1")
	t.Setenv("YT_API_KEY", "from-env")
	t.Setenv("YTSCRIBE_OUTPUT_PATH", filepath.Join(dir, "env-out"))
	t.Setenv("YTSCRIBE_LANGUAGE", "Tamil")
	t.Setenv("YTSCRIBE_WHISPER_MODEL", "medium")
	h := newHarness(t, "")

	code := h.app.run(context.Background(), []string{
		"-i", ids, "-o", filepath.Join(dir, "flag-out"), "--no-metadata",
	})

	require.Equal(t, exitOK, code, h.stderr.String())
	assert.FileExists(t, transcribe.TranscriptPath(filepath.Join(dir, "flag-out"), "vid1"))
	assert.NoDirExists(t, filepath.Join(dir, "env-out"))
	assert.Equal(t, "from-env", h.stagesCfg.APIKey)
	assert.Equal(t, "medium", h.stagesCfg.WhisperModel)
	assert.Equal(t, transcribe.Explicit("ta"), h.engine.inputs[0].Language)
}

func TestRun_DotEnvSuppliesAPIKey(t *testing.T) {
	dir := isolate(t)
	ids := writeIDs(t, dir, "vid1")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("YT_API_KEY=from-dotenv\n"), 0o644))
	h := newHarness(t, "")

	code := h.app.run(context.Background(), []string{"-i", ids, "-o", filepath.Join(dir, "out"), "--no-metadata"})

	require.Equal(t, exitOK, code, h.stderr.String())
	assert.Equal(t, "from-dotenv", h.stagesCfg.APIKey)
}

func TestRun_CanceledBeforeStart(t *testing.T) {
	dir := isolate(t)
	ids := writeIDs(t, dir, "vid1", "vid2")
	failed := filepath.Join(dir, "retry.txt")
	h := newHarness(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code := h.app.run(ctx, []string{
		"-i", ids, "-o", filepath.Join(dir, "out"), "--api-key", "k", "--no-metadata", "--failed-out", failed,
	})

	assert.Equal(t, exitCanceled, code)
	assert.Contains(t, h.stdout.String(), "2 not processed (canceled)")
	assert.Contains(t, h.stderr.String(), "Canceled.")
	data, err := os.ReadFile(failed)
	require.NoError(t, err)
	assert.Equal(t, "vid1\nvid2\n", string(data))
	assert.Empty(t, h.engine.inputs)
}

func TestRun_InteractivePrompts(t *testing.T) {
	dir := isolate(t)
	ids := writeIDs(t, dir, "vid1")
	h := newHarness(t, "\n"+ids+"\n2\n")
	h.app.interactive = true

	code := h.app.run(context.Background(), []string{"-o", filepath.Join(dir, "out"), "--api-key", "k", "--no-metadata"})

	require.Equal(t, exitOK, code, h.stderr.String())
	stdout := h.stdout.String()
	assert.Equal(t, 2, strings.Count(stdout, "Enter path to video IDs .txt file: "))
	assert.Contains(t, stdout, "1. Auto-detect language")
	assert.Contains(t, stdout, "Transcription language: Kannada")
	assert.Equal(t, transcribe.Explicit("kn"), h.engine.inputs[0].Language)
}

func TestRun_NoPromptWhenDisabled(t *testing.T) {
	isolate(t)
	h := newHarness(t, "ids.txt\n")
	h.app.interactive = true

	code := h.app.run(context.Background(), []string{"--api-key", "k", "--no-prompt"})

	assert.Equal(t, exitError, code)
	assert.NotContains(t, h.stdout.String(), "Enter path")
}

func TestInfoCommand(t *testing.T) {
	dir := isolate(t)
	ids := writeIDs(t, dir, "vid1", "vid2")
	h := newHarness(t, "")

	code := h.app.run(context.Background(), []string{"info", "-i", ids, "--api-key", "k"})

	require.Equal(t, exitOK, code, h.stderr.String())
	stdout := h.stdout.String()
	assert.Contains(t, stdout, "VIDEO ID")
	assert.Contains(t, stdout, "First talk")
	assert.Contains(t, stdout, "(no metadata)")
	assert.Empty(t, h.engine.inputs)
}

func TestDevicesCommand(t *testing.T) {
	isolate(t)

	t.Run("gpus", func(t *testing.T) {
		h := newHarness(t, "")
		h.probe.accels = []transcribe.Accelerator{{Index: 0, Name: "Tesla T4"}, {Index: 1, Name: "A100"}}
		require.Equal(t, exitOK, h.app.run(context.Background(), []string{"devices"}))
		assert.Equal(t, "GPU 0: Tesla T4\nGPU 1: A100\n", h.stdout.String())
	})

	t.Run("cpu only", func(t *testing.T) {
		h := newHarness(t, "")
		h.probe.accels = nil
		require.Equal(t, exitOK, h.app.run(context.Background(), []string{"devices"}))
		assert.Contains(t, h.stdout.String(), "run on CPU")
	})

	t.Run("probe error", func(t *testing.T) {
		h := newHarness(t, "")
		h.probe.err = errors.New("nvidia-smi exited 9")
		assert.Equal(t, exitError, h.app.run(context.Background(), []string{"devices"}))
		assert.Contains(t, h.stderr.String(), "list devices")
	})
}

func TestRun_UnexpectedArgument(t *testing.T) {
	isolate(t)
	h := newHarness(t, "")
	assert.Equal(t, exitError, h.app.run(context.Background(), []string{"stray"}))
}

func TestListCommand(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "channel.txt")
	h := newHarness(t, "")
	h.lister.ids = []string{"aaa", "bbb"}

	code := h.app.run(context.Background(), []string{
		"list", "https://www.youtube.com/@somechannel", "--out", out, "--max", "2", "--ytdlp-path", "/opt/yt-dlp",
	})

	require.Equal(t, exitOK, code, h.stderr.String())
	assert.Equal(t, "https://www.youtube.com/@somechannel", h.lister.gotURL)
	assert.Equal(t, 2, h.lister.gotLimit)
	assert.Equal(t, "/opt/yt-dlp", h.lister.ytdlpPath)

	ids, err := youtube.ReadVideoIDs(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"aaa", "bbb"}, ids)
	assert.Contains(t, h.stdout.String(), "Wrote 2 video ID(s)")
}

func TestListCommand_Errors(t *testing.T) {
	isolate(t)

	t.Run("no videos", func(t *testing.T) {
		h := newHarness(t, "")
		assert.Equal(t, exitError, h.app.run(context.Background(), []string{"list", "UCx"}))
		assert.Contains(t, h.stderr.String(), "no video IDs found")
	})

	t.Run("lister failure", func(t *testing.T) {
		h := newHarness(t, "")
		h.lister.err = youtube.ErrChannelNotFound
		assert.Equal(t, exitError, h.app.run(context.Background(), []string{"list", "UCx"}))
		assert.Contains(t, h.stderr.String(), "channel not found")
	})

	t.Run("missing url", func(t *testing.T) {
		h := newHarness(t, "")
		assert.Equal(t, exitError, h.app.run(context.Background(), []string{"list"}))
	})
}

func TestRun_OutputDirectoryInUse(t *testing.T) {
	dir := isolate(t)
	ids := writeIDs(t, dir, "vid1")
	out := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(out, 0o755))

	held := storage.NewFileLock(filepath.Join(out, ".ytscribe"))
	require.NoError(t, held.Lock(context.Background(), time.Second))
	defer held.Unlock()

	h := newHarness(t, "")
	code := h.app.run(context.Background(), []string{"-i", ids, "-o", out, "--api-key", "k", "--no-metadata"})

	assert.Equal(t, exitError, code)
	assert.Contains(t, h.stderr.String(), "in use by another batch")
	assert.Empty(t, h.engine.inputs)
}
