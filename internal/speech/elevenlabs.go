package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	elevenLabsBaseURL  = "https://api.elevenlabs.io/v1/text-to-speech"
	elevenLabsTimeout  = 60 * time.Second
	defaultStability   = 0.5
	defaultSimilarity  = 0.75
	defaultElevenModel = "eleven_multilingual_v2"
)

// Voice IDs from the public ElevenLabs premade voice library.
var elevenLabsVoices = map[string]string{
	StyleEnergetic: "pNInz6obpgDQGcFmaJgB",
	StyleCalm:      "onwK4e9ZLuTAKqWW03F9",
	StyleFormal:    "21m00Tcm4TlvDq8ikWAM",
	StyleCasual:    "EXAVITQu4vr4xnSDxMaL",
	StyleDramatic:  "ErXwobaYiN019PkySvjV",
}

type elevenLabsRequest struct {
	Text          string             `json:"text"`
	ModelID       string             `json:"model_id"`
	VoiceSettings elevenLabsSettings `json:"voice_settings"`
}

type elevenLabsSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenLabsError struct {
	Detail struct {
		Message string `json:"message"`
	} `json:"detail"`
}

// ElevenLabsBackend synthesizes speech through the ElevenLabs HTTP API.
type ElevenLabsBackend struct {
	apiKey     string
	model      string
	voiceID    string
	httpClient *http.Client
	baseURL    string
}

// NewElevenLabsBackend builds a backend. A non-empty voiceID pins every
// style to that voice; otherwise the style map picks one.
func NewElevenLabsBackend(apiKey, model, voiceID string) *ElevenLabsBackend {
	if model == "" {
		model = defaultElevenModel
	}
	return &ElevenLabsBackend{
		apiKey:  apiKey,
		model:   model,
		voiceID: voiceID,
		httpClient: &http.Client{
			Timeout: elevenLabsTimeout,
		},
		baseURL: elevenLabsBaseURL,
	}
}

func (b *ElevenLabsBackend) Name() string {
	return "elevenlabs"
}

// SetBaseURL overrides the API endpoint for testing.
func (b *ElevenLabsBackend) SetBaseURL(url string) {
	b.baseURL = url
}

func (b *ElevenLabsBackend) Synthesize(ctx context.Context, text string, profile VoiceProfile, outPath string) error {
	voiceID := b.voiceID
	if voiceID == "" {
		var ok bool
		if voiceID, ok = elevenLabsVoices[profile.Style]; !ok {
			voiceID = elevenLabsVoices[StyleCasual]
		}
	}

	reqBody := elevenLabsRequest{
		Text:    text,
		ModelID: b.model,
		VoiceSettings: elevenLabsSettings{
			Stability:       defaultStability,
			SimilarityBoost: defaultSimilarity,
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", b.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var errResp elevenLabsError
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Detail.Message != "" {
			return fmt.Errorf("elevenlabs: %s", errResp.Detail.Message)
		}
		return fmt.Errorf("elevenlabs: %s", resp.Status)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	return nil
}
