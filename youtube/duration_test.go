package youtube

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"PT4M13S", 4*time.Minute + 13*time.Second},
		{"PT1H2M3S", time.Hour + 2*time.Minute + 3*time.Second},
		{"PT45S", 45 * time.Second},
		{"PT2H", 2 * time.Hour},
		{"P1DT2H", 26 * time.Hour},
		{"P0D", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseISODuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseISODuration_Invalid(t *testing.T) {
	for _, in := range []string{"", "P", "PT", "4M13S", "PT4X", "1:02"} {
		_, err := ParseISODuration(in)
		assert.Error(t, err, in)
	}
}

func TestVideoMetadataLength(t *testing.T) {
	assert.Equal(t, 90*time.Second, VideoMetadata{Duration: "PT1M30S"}.Length())
	assert.Zero(t, VideoMetadata{}.Length())
}
