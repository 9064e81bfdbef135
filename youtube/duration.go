package youtube

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// isoDurationRe matches the ISO 8601 durations the Data API reports for
// videos, e.g. "PT1H2M3S" or "P1DT2H".
var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts an ISO 8601 video duration to a time.Duration.
func ParseISODuration(s string) (time.Duration, error) {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, fmt.Errorf("youtube: invalid ISO 8601 duration %q", s)
	}

	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("youtube: invalid ISO 8601 duration %q: %w", s, err)
		}
		d += time.Duration(n) * unit
	}
	return d, nil
}

// Length returns the parsed Duration, or zero when the API omitted it or
// reported something unparseable (live streams report "P0D").
func (m VideoMetadata) Length() time.Duration {
	d, err := ParseISODuration(m.Duration)
	if err != nil {
		return 0
	}
	return d
}
