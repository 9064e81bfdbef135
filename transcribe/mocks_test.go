package transcribe

import (
	"context"

	"github.com/horiagug/youtube-transcript-api-go/pkg/yt_transcript_models"
	"github.com/stretchr/testify/mock"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/command"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Recognize(ctx context.Context, in Input) ([]Segment, error) {
	ret := m.Called(ctx, in)
	segs, _ := ret.Get(0).([]Segment)
	return segs, ret.Error(1)
}

type mockProbe struct {
	mock.Mock
}

func (m *mockProbe) Accelerators(ctx context.Context) ([]Accelerator, error) {
	ret := m.Called(ctx)
	accels, _ := ret.Get(0).([]Accelerator)
	return accels, ret.Error(1)
}

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) (command.Result, error) {
	ret := m.Called(ctx, name, args)
	return ret.Get(0).(command.Result), ret.Error(1)
}

type mockCaptionSource struct {
	mock.Mock
}

func (m *mockCaptionSource) GetTranscripts(videoID string, languages []string) ([]yt_transcript_models.Transcript, error) {
	ret := m.Called(videoID, languages)
	tracks, _ := ret.Get(0).([]yt_transcript_models.Transcript)
	return tracks, ret.Error(1)
}

type mockPacer struct {
	mock.Mock
}

func (m *mockPacer) Wait(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}
