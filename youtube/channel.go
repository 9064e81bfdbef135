package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/command"
)

const defaultListTimeout = 10 * time.Minute

// ErrChannelNotFound is returned when yt-dlp reports the channel missing.
var ErrChannelNotFound = errors.New("youtube: channel not found")

var channelIDRegex = regexp.MustCompile(`^UC[\w-]{22}$`)

// ChannelLister lists the video IDs of a channel with yt-dlp, producing the
// input for a batch that transcribes a whole channel.
type ChannelLister struct {
	// YtdlpPath is the yt-dlp executable. Defaults to "yt-dlp".
	YtdlpPath string
	// Timeout bounds the listing. Defaults to 10 minutes.
	Timeout time.Duration
	// Logger receives the resolved URL. Nil means slog.Default().
	Logger *slog.Logger

	runner command.Runner
}

// NewChannelLister creates a ChannelLister using yt-dlp from PATH.
func NewChannelLister() *ChannelLister {
	return &ChannelLister{
		YtdlpPath: "yt-dlp",
		Timeout:   defaultListTimeout,
		runner:    command.ExecRunner{},
	}
}

// ListIDs returns the IDs on the channel's videos tab, newest first. A
// positive limit caps the count. Playlist URLs are listed as given.
func (l *ChannelLister) ListIDs(ctx context.Context, channelURL string, limit int) ([]string, error) {
	channelURL = strings.TrimSpace(channelURL)
	if channelURL == "" {
		return nil, fmt.Errorf("youtube: empty channel URL")
	}

	url := normalizeChannelURL(channelURL)
	args := []string{"--flat-playlist", "-J", "--no-warnings"}
	if limit > 0 {
		args = append(args, "--playlist-end", strconv.Itoa(limit))
	}
	args = append(args, url)

	timeout := l.Timeout
	if timeout == 0 {
		timeout = defaultListTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	path := l.YtdlpPath
	if path == "" {
		path = "yt-dlp"
	}
	runner := l.runner
	if runner == nil {
		runner = command.ExecRunner{}
	}

	l.logger().Info("listing channel", slog.String("url", url))
	res, err := runner.Run(cmdCtx, path, args...)
	if err != nil {
		switch {
		case errors.Is(err, exec.ErrNotFound):
			return nil, ErrYtdlpNotInstalled
		case cmdCtx.Err() != nil && ctx.Err() == nil:
			return nil, fmt.Errorf("youtube: list %s: timed out after %s", url, timeout)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case strings.Contains(res.Stderr, "does not exist") || strings.Contains(res.Stderr, "404"):
			return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelURL)
		}
		return nil, command.Wrap(path, args, res, err)
	}

	ids, err := parseFlatPlaylist([]byte(res.Stdout))
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (l *ChannelLister) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// normalizeChannelURL points channel URLs at the videos tab. Bare channel
// IDs and @handles become full URLs; playlist URLs are left alone.
func normalizeChannelURL(url string) string {
	if channelIDRegex.MatchString(url) {
		return "https://www.youtube.com/channel/" + url + "/videos"
	}
	if strings.Contains(url, "list=") {
		return url
	}

	if strings.HasPrefix(url, "@") {
		url = "https://www.youtube.com/" + url
	}

	url = strings.TrimSuffix(url, "/")
	for _, tab := range []string{"/videos", "/streams", "/shorts", "/featured"} {
		if strings.HasSuffix(url, tab) {
			url = strings.TrimSuffix(url, tab)
			break
		}
	}
	return url + "/videos"
}

// flatPlaylist is the part of yt-dlp's --flat-playlist JSON we read.
type flatPlaylist struct {
	Entries []struct {
		ID   string `json:"id"`
		Type string `json:"_type"`
		// Entries is set when yt-dlp returns tabs instead of videos.
		Entries []struct {
			ID string `json:"id"`
		} `json:"entries"`
	} `json:"entries"`
}

// parseFlatPlaylist returns the video IDs in playlist order, descending one
// level into tab entries.
func parseFlatPlaylist(data []byte) ([]string, error) {
	var pl flatPlaylist
	if err := json.Unmarshal(data, &pl); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}

	var ids []string
	for _, e := range pl.Entries {
		if e.Type == "playlist" || len(e.Entries) > 0 {
			for _, sub := range e.Entries {
				if sub.ID != "" {
					ids = append(ids, sub.ID)
				}
			}
			continue
		}
		if e.ID != "" {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}
