package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
	"google.golang.org/api/youtube/v3"
)

// MetadataChunkSize is the videos.list ceiling on identifiers per request.
const MetadataChunkSize = 50

// VideoMetadata is the descriptive information shown to the operator before
// and during a batch. It never gates processing.
type VideoMetadata struct {
	// ID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	ID string `json:"id"`
	// Title is the video title.
	Title string `json:"title"`
	// PublishedAt is when the video was published. Zero if the API omitted it.
	PublishedAt time.Time `json:"published_at"`
	// Duration is the ISO 8601 duration reported by the API (e.g., "PT4M13S").
	Duration string `json:"duration"`
}

// MetadataFetcher looks up video metadata with the YouTube Data API v3.
type MetadataFetcher struct {
	service *youtube.Service
	// Logger receives per-chunk failures. Nil means slog.Default().
	Logger *slog.Logger
}

// NewMetadataFetcher creates a fetcher authenticated with apiKey. Extra
// options are appended after the key, so tests can point the service at a
// local endpoint.
func NewMetadataFetcher(ctx context.Context, apiKey string, opts ...option.ClientOption) (*MetadataFetcher, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &MetadataFetcher{service: service}, nil
}

// NewAPIClient wraps base with API key authentication so the key survives
// when the client is handed to NewMetadataFetcher via option.WithHTTPClient.
func NewAPIClient(ctx context.Context, apiKey string, base http.RoundTripper) (*http.Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	tr, err := htransport.NewTransport(ctx, base, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create api transport: %w", err)
	}
	return &http.Client{Transport: tr}, nil
}

// Fetch returns metadata for ids, requesting at most MetadataChunkSize per
// call. A failed chunk is logged and contributes no entries; identifiers the
// API does not return are simply absent from the map.
func (f *MetadataFetcher) Fetch(ctx context.Context, ids []string) map[string]VideoMetadata {
	result := make(map[string]VideoMetadata, len(ids))
	log := f.logger()

	for i, chunk := range chunkIDs(ids, MetadataChunkSize) {
		if ctx.Err() != nil {
			log.Warn("metadata fetch canceled", slog.Int("chunk", i))
			break
		}

		log.Debug("fetching metadata chunk", slog.Int("chunk", i), slog.Int("size", len(chunk)))
		items, err := f.fetchChunk(ctx, chunk)
		if err != nil {
			mErr := &MetadataError{Chunk: i, IDs: chunk, Err: err}
			log.Warn("metadata chunk failed", slog.Int("chunk", i), slog.Any("err", mErr))
			continue
		}

		for _, md := range items {
			result[md.ID] = md
		}
	}

	return result
}

func (f *MetadataFetcher) fetchChunk(ctx context.Context, ids []string) ([]VideoMetadata, error) {
	resp, err := f.service.Videos.List([]string{"snippet", "contentDetails"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	out := make([]VideoMetadata, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Id == "" {
			continue
		}
		md := VideoMetadata{ID: item.Id}
		if item.Snippet != nil {
			md.Title = item.Snippet.Title
			// Parse RFC3339 published date
			if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
				md.PublishedAt = t
			}
		}
		if item.ContentDetails != nil {
			md.Duration = item.ContentDetails.Duration
		}
		out = append(out, md)
	}
	return out, nil
}

func (f *MetadataFetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// chunkIDs splits ids into consecutive slices of at most size elements.
func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
