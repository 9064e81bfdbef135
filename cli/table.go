package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/youtube"
)

// printVideoTable writes the "Videos to process" table in input order.
// Videos the metadata lookup did not return keep their row with blank
// columns.
func printVideoTable(out io.Writer, ids []string, meta map[string]youtube.VideoMetadata) error {
	fmt.Fprintf(out, "Videos to process (%d):\n", len(ids))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VIDEO ID\tTITLE\tDURATION\tPUBLISHED")
	for _, id := range ids {
		m, ok := meta[id]
		if !ok {
			fmt.Fprintf(w, "%s\t%s\t\t\n", id, "(no metadata)")
			continue
		}
		published := ""
		if !m.PublishedAt.IsZero() {
			published = m.PublishedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			id,
			truncate(m.Title, 50),
			formatDuration(m.Length()),
			published,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
