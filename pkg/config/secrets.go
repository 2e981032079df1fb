package config

import (
	"context"
	"fmt"
	"log/slog"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// resolveSecrets fills API keys that are missing from the environment
// from GCP Secret Manager. Secret names mirror the env var names.
func resolveSecrets(ctx context.Context, cfg *Config) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	targets := []struct {
		name string
		dest *string
	}{
		{"GROQ_API_KEY", &cfg.GroqAPIKey},
		{"ELEVENLABS_API_KEY", &cfg.ElevenLabsAPIKey},
		{"PEXELS_API_KEY", &cfg.PexelsAPIKey},
		{"PIXABAY_API_KEY", &cfg.PixabayAPIKey},
		{"YOUTUBE_CLIENT_ID", &cfg.YouTubeClientID},
		{"YOUTUBE_CLIENT_SECRET", &cfg.YouTubeClientSecret},
		{"YOUTUBE_REFRESH_TOKEN", &cfg.YouTubeRefreshToken},
	}

	for _, target := range targets {
		if *target.dest != "" {
			continue
		}
		value, err := accessSecret(ctx, client, cfg.SecretProject, target.name)
		if err != nil {
			slog.Debug("Secret not available", "name", target.name, "error", err)
			continue
		}
		*target.dest = value
	}

	return nil
}

func accessSecret(ctx context.Context, client *secretmanager.Client, project, name string) (string, error) {
	resource := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, name)
	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resource,
	})
	if err != nil {
		return "", fmt.Errorf("access %s: %w", name, err)
	}
	return string(result.Payload.Data), nil
}
