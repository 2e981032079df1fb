package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath     = "config.yaml"
	defaultOutputDir      = "./output"
	defaultTempDir        = "./temp"
	defaultMusicDir       = "./assets/music"
	defaultDatabasePath   = "./shortforge.db"
	defaultResolution     = "1080x1920"
	defaultMinDuration    = 30
	defaultMaxDuration    = 60
	defaultTargetDuration = 35
	defaultVideosPerDay   = 3
	defaultFPS            = 30
	defaultVideoBitrate   = "8000k"
	defaultAudioBitrate   = "192k"
	defaultPreset         = "fast"
	defaultMusicVolume    = 0.15
	defaultMusicFadeIn    = 1.0
	defaultMusicFadeOut   = 2.0
	defaultMaxRetries     = 3
	defaultTokenPath      = "./youtube_token.json"
	defaultGroqModel      = "llama-3.1-8b-instant"
	defaultVoiceStyle     = "casual"
	defaultFontName       = "Montserrat Black"
	defaultFontSize       = 96
	defaultOutlineSize    = 5
	defaultShadowSize     = 2
	defaultPrimaryColor   = "#FFFFFF"
	defaultOutlineColor   = "#000000"
	defaultListenAddr     = ":8080"
	defaultPrivacyStatus  = "public"
)

// Config is built once at process start and handed to component
// constructors. Nothing reads it through package-level state.
type Config struct {
	GroqAPIKey          string
	ElevenLabsAPIKey    string
	PexelsAPIKey        string
	PixabayAPIKey       string
	YouTubeClientID     string
	YouTubeClientSecret string
	YouTubeRefreshToken string
	YouTubeTokenPath    string
	GCSBucket           string
	SecretProject       string

	Content   ContentConfig   `yaml:"content"`
	Video     VideoConfig     `yaml:"video"`
	Music     MusicConfig     `yaml:"music"`
	Captions  CaptionsConfig  `yaml:"captions"`
	Speech    SpeechConfig    `yaml:"speech"`
	Topics    TopicsConfig    `yaml:"topics"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Database  DatabaseConfig  `yaml:"database"`
	API       APIConfig       `yaml:"api"`
	GCSAssets GCSAssetsConfig `yaml:"gcs_assets"`
}

type ContentConfig struct {
	Model       string `yaml:"model"`
	WordCount   int    `yaml:"word_count"`
	VoiceStyle  string `yaml:"voice_style"`
	LLMScoring  bool   `yaml:"llm_scoring"`
	MaxAnalyzed int    `yaml:"max_analyzed"`
}

type VideoConfig struct {
	OutputDir      string `yaml:"output_dir"`
	TempDir        string `yaml:"temp_dir"`
	Resolution     string `yaml:"resolution"`
	MinDuration    int    `yaml:"min_duration"`
	MaxDuration    int    `yaml:"max_duration"`
	TargetDuration int    `yaml:"target_duration"`
	FPS            int    `yaml:"fps"`
	Bitrate        string `yaml:"bitrate"`
	AudioBitrate   string `yaml:"audio_bitrate"`
	Preset         string `yaml:"preset"`
}

type MusicConfig struct {
	Enabled bool    `yaml:"enabled"`
	Dir     string  `yaml:"dir"`
	Volume  float64 `yaml:"volume"`
	FadeIn  float64 `yaml:"fade_in"`
	FadeOut float64 `yaml:"fade_out"`
}

type CaptionsConfig struct {
	FontName     string `yaml:"font_name"`
	FontSize     int    `yaml:"font_size"`
	PrimaryColor string `yaml:"primary_color"`
	OutlineColor string `yaml:"outline_color"`
	OutlineSize  int    `yaml:"outline_size"`
	ShadowSize   int    `yaml:"shadow_size"`
	Bold         bool   `yaml:"bold"`
}

type SpeechConfig struct {
	Backends        []string `yaml:"backends"`
	ElevenLabsVoice string   `yaml:"elevenlabs_voice"`
	ElevenLabsModel string   `yaml:"elevenlabs_model"`
	TimeoutSeconds  int      `yaml:"timeout_seconds"`
}

type TopicsConfig struct {
	Subreddits []string `yaml:"subreddits"`
	PostLimit  int      `yaml:"post_limit"`
	MinScore   float64  `yaml:"min_score"`
}

type YouTubeConfig struct {
	DefaultTags   []string `yaml:"default_tags"`
	PrivacyStatus string   `yaml:"privacy_status"`
	CategoryID    string   `yaml:"category_id"`
	MaxRetries    int      `yaml:"max_retries"`
}

type ScheduleConfig struct {
	VideosPerDay int `yaml:"videos_per_day"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type GCSAssetsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	MusicDir string `yaml:"music_dir"`
	CacheDir string `yaml:"cache_dir"`
}

// Load reads .env, config.yaml and optionally GCP Secret Manager,
// in that order of precedence.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GroqAPIKey:          os.Getenv("GROQ_API_KEY"),
		ElevenLabsAPIKey:    os.Getenv("ELEVENLABS_API_KEY"),
		PexelsAPIKey:        os.Getenv("PEXELS_API_KEY"),
		PixabayAPIKey:       os.Getenv("PIXABAY_API_KEY"),
		YouTubeClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		YouTubeRefreshToken: os.Getenv("YOUTUBE_REFRESH_TOKEN"),
		YouTubeTokenPath:    getEnvOrDefault("YOUTUBE_TOKEN_PATH", defaultTokenPath),
		GCSBucket:           os.Getenv("GCS_BUCKET"),
		SecretProject:       os.Getenv("GOOGLE_SECRET_PROJECT"),
	}

	loadYAML(cfg)

	if cfg.SecretProject != "" {
		if err := resolveSecrets(ctx, cfg); err != nil {
			slog.Warn("Secret Manager lookup failed, continuing with env values", "error", err)
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func loadYAML(cfg *Config) {
	path := getEnvOrDefault("SHORTFORGE_CONFIG", defaultConfigPath)
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("No config.yaml found, using defaults")
		return
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Content.Model == "" {
		cfg.Content.Model = defaultGroqModel
	}
	if cfg.Content.WordCount == 0 {
		cfg.Content.WordCount = 110
	}
	if cfg.Content.VoiceStyle == "" {
		cfg.Content.VoiceStyle = defaultVoiceStyle
	}
	if cfg.Content.MaxAnalyzed == 0 {
		cfg.Content.MaxAnalyzed = 20
	}
	if cfg.Video.OutputDir == "" {
		cfg.Video.OutputDir = defaultOutputDir
	}
	if cfg.Video.TempDir == "" {
		cfg.Video.TempDir = defaultTempDir
	}
	if cfg.Video.Resolution == "" {
		cfg.Video.Resolution = defaultResolution
	}
	if cfg.Video.MinDuration == 0 {
		cfg.Video.MinDuration = defaultMinDuration
	}
	if cfg.Video.MaxDuration == 0 {
		cfg.Video.MaxDuration = defaultMaxDuration
	}
	if cfg.Video.TargetDuration == 0 {
		cfg.Video.TargetDuration = defaultTargetDuration
	}
	if cfg.Video.FPS == 0 {
		cfg.Video.FPS = defaultFPS
	}
	if cfg.Video.Bitrate == "" {
		cfg.Video.Bitrate = defaultVideoBitrate
	}
	if cfg.Video.AudioBitrate == "" {
		cfg.Video.AudioBitrate = defaultAudioBitrate
	}
	if cfg.Video.Preset == "" {
		cfg.Video.Preset = defaultPreset
	}
	if cfg.Music.Dir == "" {
		cfg.Music.Dir = defaultMusicDir
	}
	if cfg.Music.Volume == 0 {
		cfg.Music.Volume = defaultMusicVolume
	}
	if cfg.Music.FadeIn == 0 {
		cfg.Music.FadeIn = defaultMusicFadeIn
	}
	if cfg.Music.FadeOut == 0 {
		cfg.Music.FadeOut = defaultMusicFadeOut
	}
	if cfg.Captions.FontName == "" {
		cfg.Captions.FontName = defaultFontName
	}
	if cfg.Captions.FontSize == 0 {
		cfg.Captions.FontSize = defaultFontSize
	}
	if cfg.Captions.PrimaryColor == "" {
		cfg.Captions.PrimaryColor = defaultPrimaryColor
	}
	if cfg.Captions.OutlineColor == "" {
		cfg.Captions.OutlineColor = defaultOutlineColor
	}
	if cfg.Captions.OutlineSize == 0 {
		cfg.Captions.OutlineSize = defaultOutlineSize
	}
	if cfg.Captions.ShadowSize == 0 {
		cfg.Captions.ShadowSize = defaultShadowSize
	}
	if len(cfg.Speech.Backends) == 0 {
		cfg.Speech.Backends = []string{"elevenlabs", "edge"}
	}
	if cfg.Speech.ElevenLabsModel == "" {
		cfg.Speech.ElevenLabsModel = "eleven_flash_v2_5"
	}
	if cfg.Speech.TimeoutSeconds == 0 {
		cfg.Speech.TimeoutSeconds = 60
	}
	if len(cfg.Topics.Subreddits) == 0 {
		cfg.Topics.Subreddits = []string{"todayilearned", "Showerthoughts", "interestingasfuck"}
	}
	if cfg.Topics.PostLimit == 0 {
		cfg.Topics.PostLimit = 10
	}
	if cfg.Topics.MinScore == 0 {
		cfg.Topics.MinScore = 7.0
	}
	if cfg.YouTube.PrivacyStatus == "" {
		cfg.YouTube.PrivacyStatus = defaultPrivacyStatus
	}
	if cfg.YouTube.CategoryID == "" {
		cfg.YouTube.CategoryID = "22"
	}
	if cfg.YouTube.MaxRetries == 0 {
		cfg.YouTube.MaxRetries = defaultMaxRetries
	}
	if cfg.Schedule.VideosPerDay == 0 {
		cfg.Schedule.VideosPerDay = defaultVideosPerDay
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = defaultDatabasePath
	}
	if cfg.API.Addr == "" {
		cfg.API.Addr = defaultListenAddr
	}
	if cfg.GCSAssets.MusicDir == "" {
		cfg.GCSAssets.MusicDir = "music"
	}
	if cfg.GCSAssets.CacheDir == "" {
		cfg.GCSAssets.CacheDir = "./.cache"
	}
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
