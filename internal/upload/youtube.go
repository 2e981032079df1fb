package upload

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Metadata is what the viewer sees on the published video.
type Metadata struct {
	Title         string
	Description   string
	Tags          []string
	CategoryID    string
	PrivacyStatus string
}

// Provider pushes a rendered video to a hosting platform.
type Provider interface {
	Upload(ctx context.Context, filePath string, meta Metadata) (string, error)
	RefreshCredentials(ctx context.Context) error
}

// YouTubeCredentials is the OAuth installed-app triple.
type YouTubeCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// YouTubeProvider uploads through the YouTube Data API v3 with
// resumable media and a refresh-token OAuth flow.
type YouTubeProvider struct {
	creds       YouTubeCredentials
	tokenSource oauth2.TokenSource
}

func NewYouTubeProvider(creds YouTubeCredentials) (*YouTubeProvider, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return nil, fmt.Errorf("youtube: client id, secret and refresh token required")
	}
	p := &YouTubeProvider{creds: creds}
	p.resetTokenSource()
	return p, nil
}

func (p *YouTubeProvider) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.creds.ClientID,
		ClientSecret: p.creds.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
}

func (p *YouTubeProvider) resetTokenSource() {
	token := &oauth2.Token{RefreshToken: p.creds.RefreshToken}
	p.tokenSource = p.oauthConfig().TokenSource(context.Background(), token)
}

// RefreshCredentials drops any cached access token and forces a fresh
// exchange of the refresh token.
func (p *YouTubeProvider) RefreshCredentials(ctx context.Context) error {
	p.resetTokenSource()
	if _, err := p.tokenSource.Token(); err != nil {
		return fmt.Errorf("refresh token exchange: %w", err)
	}
	return nil
}

// Upload sends the file with a resumable media session and returns the
// watch URL.
func (p *YouTubeProvider) Upload(ctx context.Context, filePath string, meta Metadata) (string, error) {
	svc, err := youtube.NewService(ctx, option.WithTokenSource(p.tokenSource))
	if err != nil {
		return "", fmt.Errorf("youtube service: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  meta.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           meta.PrivacyStatus,
			SelfDeclaredMadeForKids: false,
		},
	}

	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer func() { _ = f.Close() }()

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(f)

	uploaded, err := call.Context(ctx).Do()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id), nil
}
