package youtube

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/storage"
)

// ReadVideoIDs reads a newline-delimited list of video identifiers from path.
// Blank lines are discarded and surrounding whitespace is trimmed. Order and
// duplicates are preserved.
func ReadVideoIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open video ids: %w", err)
	}
	defer f.Close()

	ids, err := ParseVideoIDs(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ids, nil
}

// ParseVideoIDs parses identifiers from r, one per line. A leading UTF-8 byte
// order mark is ignored.
func ParseVideoIDs(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// WriteVideoIDs writes ids to path in the format ReadVideoIDs accepts, so a
// list of failed identifiers can be fed back as the next batch.
func WriteVideoIDs(path string, ids []string) error {
	return storage.WriteFile(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, id := range ids {
			if _, err := bw.WriteString(id + "\n"); err != nil {
				return err
			}
		}
		return bw.Flush()
	})
}
