package transcription

import (
	"errors"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/config"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/storage"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/pipeline"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/transcribe"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/youtube"
)

// Error handling types exported for library users.
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, transcription.ErrYtdlpNotInstalled) {
//		fmt.Println("install yt-dlp first")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var trErr *transcription.TranscriptionError
//	if errors.As(err, &trErr) {
//		fmt.Printf("%s failed at %s: %v\n", trErr.VideoID, trErr.Stage, trErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// AcquisitionError wraps a failed audio download.
	AcquisitionError = youtube.AcquisitionError
	// MetadataError wraps a failed metadata chunk. It is logged, never fatal.
	MetadataError = youtube.MetadataError
	// TranscriptionError wraps a failed transcription with its stage.
	TranscriptionError = transcribe.TranscriptionError
	// ConfigError is a configuration problem found before any work starts.
	ConfigError = config.Error
	// StorageError wraps errors during file operations.
	StorageError = storage.StorageError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrNoVideoIDs indicates the video IDs file lists nothing to do.
	ErrNoVideoIDs = youtube.ErrNoVideoIDs
	// ErrYtdlpNotInstalled indicates yt-dlp binary was not found.
	ErrYtdlpNotInstalled = youtube.ErrYtdlpNotInstalled
	// ErrAudioMissing indicates yt-dlp succeeded without producing the MP3.
	ErrAudioMissing = youtube.ErrAudioMissing
	// ErrWhisperNotInstalled indicates the whisper binary was not found.
	ErrWhisperNotInstalled = transcribe.ErrWhisperNotInstalled
	// ErrNoCaptions indicates the video has no usable caption track.
	ErrNoCaptions = transcribe.ErrNoCaptions
	// ErrConflictingLanguage indicates both an explicit language and
	// auto-detect were requested.
	ErrConflictingLanguage = transcribe.ErrConflictingLanguage
	// ErrLockTimeout indicates another batch holds the output directory.
	ErrLockTimeout = storage.ErrLockTimeout
)

// FailureKind reports which step err belongs to: acquisition, transcription
// or canceled. Errors from neither step report an empty kind.
func FailureKind(err error) pipeline.FailureKind {
	return pipeline.KindOf(err)
}

// IsConfigError reports whether err is a configuration problem, which ends
// the process with a non-zero status before any video is processed.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
