package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shortforge/internal/content"
	"shortforge/internal/media"
	"shortforge/internal/speech"
	"shortforge/internal/storage"
	"shortforge/internal/store"
	"shortforge/internal/topics"
	"shortforge/internal/upload"
	"shortforge/internal/video"
	"shortforge/pkg/config"
	"shortforge/pkg/httputil"
)

// BuildResult bundles the service with the handles callers close.
type BuildResult struct {
	Service *Service
	Store   *store.Store
}

// BuildService wires every component from configuration. Optional
// integrations (LLM, upload, GCS music) degrade to nil and the
// pipeline works around them.
func BuildService(ctx context.Context, cfg *config.Config, verbose bool) (*BuildResult, error) {
	logger := slog.Default()

	db, err := store.Open(cfg.Database.Path, verbose)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	retryClient := httputil.NewRetryClient(nil, httputil.DefaultRetryConfig())

	var llm content.LLM
	if cfg.GroqAPIKey != "" {
		llm, err = content.NewGroqLLM(cfg.GroqAPIKey, cfg.Content.Model)
		if err != nil {
			return nil, fmt.Errorf("groq client: %w", err)
		}
	} else {
		logger.Warn("no Groq API key, content falls back to templates")
	}
	generator := content.NewGenerator(llm, cfg.Content.WordCount, cfg.Video.TargetDuration, logger)

	var providers []media.Provider
	if cfg.PexelsAPIKey != "" {
		providers = append(providers, media.NewPexelsProvider(cfg.PexelsAPIKey, retryClient))
	}
	if cfg.PixabayAPIKey != "" {
		providers = append(providers, media.NewPixabayProvider(cfg.PixabayAPIKey, retryClient))
	}
	fetcher := media.NewFetcher(providers, logger)

	ffmpeg := video.NewFFmpeg("", "")

	var backends []speech.Backend
	for _, name := range cfg.Speech.Backends {
		switch name {
		case "elevenlabs":
			if cfg.ElevenLabsAPIKey != "" {
				backends = append(backends, speech.NewElevenLabsBackend(cfg.ElevenLabsAPIKey, cfg.Speech.ElevenLabsModel, cfg.Speech.ElevenLabsVoice))
			}
		case "edge":
			backends = append(backends, speech.NewEdgeBackend(""))
		default:
			logger.Warn("unknown speech backend", "name", name)
		}
	}
	synthesizer := speech.NewSynthesizer(backends, ffmpeg.ProbeDuration,
		time.Duration(cfg.Speech.TimeoutSeconds)*time.Second, logger)

	compositor := video.NewCompositor(video.CompositorOptions{
		FFmpeg:     ffmpeg,
		Client:     retryClient,
		Resolution: cfg.Video.Resolution,
		FPS:        cfg.Video.FPS,
		Preset:     cfg.Video.Preset,
		WorkDir:    cfg.Video.TempDir,
		Logger:     logger,
	})

	assembler := video.NewAssembler(video.AssemblerOptions{
		FFmpeg: ffmpeg,
		Captions: video.NewCaptionGenerator(video.CaptionOptions{
			FontName:     cfg.Captions.FontName,
			FontSize:     cfg.Captions.FontSize,
			PrimaryColor: cfg.Captions.PrimaryColor,
			OutlineColor: cfg.Captions.OutlineColor,
			OutlineSize:  cfg.Captions.OutlineSize,
			ShadowSize:   cfg.Captions.ShadowSize,
			Bold:         cfg.Captions.Bold,
		}),
		OutputDir:    cfg.Video.OutputDir,
		FPS:          cfg.Video.FPS,
		Preset:       cfg.Video.Preset,
		VideoBitrate: cfg.Video.Bitrate,
		AudioBitrate: cfg.Video.AudioBitrate,
		MusicVolume:  cfg.Music.Volume,
		MusicFadeIn:  cfg.Music.FadeIn,
		MusicFadeOut: cfg.Music.FadeOut,
	})

	var scorer *topics.Scorer
	if llm != nil && cfg.Content.LLMScoring {
		scorer = topics.NewScorer(llm, cfg.Content.MaxAnalyzed)
	}

	discovery := topics.NewDiscovery(topics.DiscoveryOptions{
		Reddit:     topics.NewRedditClient(),
		Trends:     db,
		Scorer:     scorer,
		Subreddits: cfg.Topics.Subreddits,
		PostLimit:  cfg.Topics.PostLimit,
		MinScore:   cfg.Topics.MinScore,
		Logger:     logger,
	})

	var uploader Uploader
	if cfg.YouTubeClientID != "" && cfg.YouTubeClientSecret != "" && cfg.YouTubeRefreshToken != "" {
		provider, err := upload.NewYouTubeProvider(upload.YouTubeCredentials{
			ClientID:     cfg.YouTubeClientID,
			ClientSecret: cfg.YouTubeClientSecret,
			RefreshToken: cfg.YouTubeRefreshToken,
		})
		if err != nil {
			return nil, fmt.Errorf("youtube provider: %w", err)
		}
		uploader = upload.NewMachine(upload.MachineOptions{
			Provider:      provider,
			Recorder:      db,
			MaxRetries:    cfg.YouTube.MaxRetries,
			Logger:        logger,
			Tags:          cfg.YouTube.DefaultTags,
			CategoryID:    cfg.YouTube.CategoryID,
			PrivacyStatus: cfg.YouTube.PrivacyStatus,
		})
	} else {
		logger.Warn("no YouTube credentials, videos stay local")
	}

	var music storage.MusicProvider
	if cfg.GCSAssets.Enabled && cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSMusic(ctx, cfg.GCSBucket, cfg.GCSAssets.MusicDir, cfg.GCSAssets.CacheDir)
		if err != nil {
			logger.Warn("gcs music unavailable, using local dir", "error", err)
			music = storage.NewLocalMusic(cfg.Music.Dir)
		} else {
			music = gcs
		}
	} else {
		music = storage.NewLocalMusic(cfg.Music.Dir)
	}

	service := NewService(ServiceOptions{
		Config:    cfg,
		Library:   db,
		Topics:    discovery,
		Content:   generator,
		Narrator:  synthesizer,
		Fetcher:   fetcher,
		Renderer:  compositor,
		Assembler: assembler,
		Uploader:  uploader,
		Music:     music,
		Logger:    logger,
	})

	return &BuildResult{
		Service: service,
		Store:   db,
	}, nil
}
