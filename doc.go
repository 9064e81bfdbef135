// Package transcription batch-downloads YouTube audio and writes one
// transcript file per video.
//
// Overview
//
// A batch reads a .txt file of video IDs and, for each ID in order:
//
//   - acquires the audio as {id}.mp3 in the output directory (yt-dlp),
//   - transcribes it to {id}_transcription.txt, one segment per line.
//
// Both artifacts are checked for existence first, so re-running a batch
// only redoes the videos that failed. A failure on one video is recorded
// and the batch moves on; the summary lists failures in the order they
// happened.
//
// Quick Start
//
//	cfg, err := config.Load("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	lang, _ := config.ParseLanguage(cfg.Language)
//
//	tr := transcribe.NewTranscriber(
//		transcribe.NewWhisperEngine(cfg.WhisperPath, cfg.WhisperModel),
//		transcribe.NewNvidiaSMIProbe(),
//	)
//	p, err := pipeline.New(pipeline.Config{
//		OutputDir:   cfg.OutputPath,
//		Language:    lang,
//		Device:      transcribe.CUDA(cfg.GPUID),
//		Acquirer:    youtube.NewAudioDownloader(),
//		Transcriber: tr,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	sum := p.Run(ctx, ids)
//	sum.Report(os.Stdout)
//
// Configuration
//
// Settings are layered, lowest priority first: defaults, ytscribe.json (in
// the working directory or ~/.config/ytscribe), .env, the environment and
// finally command-line flags. Environment variables:
//
//   - YT_API_KEY: YouTube Data API key
//   - YTSCRIBE_VIDEO_IDS_FILE: video IDs .txt file
//   - YTSCRIBE_OUTPUT_PATH: output directory (default audio_files)
//   - YTSCRIBE_LANGUAGE: language name or code, or "auto" (default Hindi)
//   - YTSCRIBE_GPU_ID: accelerator index (default 0)
//   - YTSCRIBE_BACKEND: whisper or captions (default whisper)
//   - YTSCRIBE_WHISPER_PATH, YTSCRIBE_WHISPER_MODEL, YTSCRIBE_YTDLP_PATH
//   - YTSCRIBE_AUDIO_QUALITY: MP3 bitrate in kbps (default 192)
//   - YTSCRIBE_API_RPS: Data API requests per second (default 1)
//   - YTSCRIBE_FAILED_OUT: file that receives the IDs to retry
//
// Error Handling
//
// Step failures carry the video they belong to:
//
//	var acqErr *transcription.AcquisitionError
//	if errors.As(err, &acqErr) {
//		fmt.Printf("download of %s failed: %v\n", acqErr.VideoID, acqErr.Err)
//	}
//
// Sub-packages
//
//   - youtube: video ID files, audio acquisition, Data API metadata
//   - transcribe: transcript artifacts, whisper and caption engines, devices
//   - pipeline: the batch loop and its summary
//   - config: configuration and the language table
//
// Dependencies
//
// The whisper backend needs yt-dlp, ffmpeg and the openai-whisper command
// on PATH (or configured paths). nvidia-smi is used to list GPUs when
// present.
package transcription
