package youtube

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/command"
)

// mockRunner records external tool invocations.
type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) (command.Result, error) {
	ret := m.Called(ctx, name, args)
	return ret.Get(0).(command.Result), ret.Error(1)
}
