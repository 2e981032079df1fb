package app

import (
	"context"
	"log/slog"

	"shortforge/internal/content"
	"shortforge/internal/media"
	"shortforge/internal/plan"
	"shortforge/internal/speech"
	"shortforge/internal/store"
	"shortforge/internal/storage"
	"shortforge/internal/topics"
	"shortforge/internal/video"
	"shortforge/pkg/config"
)

// TopicSource supplies the next topic worth a video.
type TopicSource interface {
	Next(ctx context.Context) topics.Candidate
}

// ContentGenerator produces the script/title/description package.
type ContentGenerator interface {
	Generate(ctx context.Context, topic string) *content.Package
}

// Narrator turns a script into an audio track on disk.
type Narrator interface {
	Synthesize(ctx context.Context, text string, profile speech.VoiceProfile, outPath string) (*speech.Track, error)
}

// MediaFetcher collects stock assets for the script keywords.
type MediaFetcher interface {
	Fetch(ctx context.Context, keywords []string, count int, kind media.Kind) []media.Asset
}

// ClipRenderer renders one planned segment into a clip.
type ClipRenderer interface {
	RenderSegment(ctx context.Context, seg plan.Segment, asset *media.Asset) video.Clip
}

// VideoAssembler produces the final video file.
type VideoAssembler interface {
	Assemble(ctx context.Context, req video.AssembleRequest) (string, error)
}

// Uploader pushes a finished record to the platform.
type Uploader interface {
	Upload(ctx context.Context, rec *store.Video) (string, error)
}

// Library is the slice of the store the pipeline touches.
type Library interface {
	CreateVideo(v *store.Video) error
	VideoByID(videoID string) (*store.Video, error)
	FailedUploads(maxRetries int) ([]store.Video, error)
	BumpDailyStats(date string, created, uploaded int) error
}

type Service struct {
	cfg       *config.Config
	library   Library
	topics    TopicSource
	content   ContentGenerator
	narrator  Narrator
	fetcher   MediaFetcher
	renderer  ClipRenderer
	assembler VideoAssembler
	uploader  Uploader
	music     storage.MusicProvider
	logger    *slog.Logger
}

type ServiceOptions struct {
	Config    *config.Config
	Library   Library
	Topics    TopicSource
	Content   ContentGenerator
	Narrator  Narrator
	Fetcher   MediaFetcher
	Renderer  ClipRenderer
	Assembler VideoAssembler
	Uploader  Uploader
	Music     storage.MusicProvider
	Logger    *slog.Logger
}

func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       opts.Config,
		library:   opts.Library,
		topics:    opts.Topics,
		content:   opts.Content,
		narrator:  opts.Narrator,
		fetcher:   opts.Fetcher,
		renderer:  opts.Renderer,
		assembler: opts.Assembler,
		uploader:  opts.Uploader,
		music:     opts.Music,
		logger:    logger,
	}
}
