package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for Shortforge",
	Long:  `Configure API keys, create directories, and set up the environment for Shortforge.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("🎬 Shortforge Setup"))

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Checking tools", checkTools},
		{"Creating directories", createDirectories},
		{"Configuring environment", configureEnv},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	return nil
}

func checkTools() error {
	err := runWithSpinner("Checking ffmpeg", func() error {
		for _, tool := range []string{"ffmpeg", "ffprobe"} {
			if !commandExists(tool) {
				return fmt.Errorf("%s not found - install it from https://ffmpeg.org/download.html", tool)
			}
			if err := runSetupCmd(tool, "-version"); err != nil {
				return fmt.Errorf("%s is not runnable: %w", tool, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ ffmpeg and ffprobe found"))

	if !commandExists("edge-tts") {
		fmt.Println(warnStyle.Render("edge-tts not found - install with: pip install edge-tts"))
		fmt.Println(infoStyle.Render("  Without it narration needs an ElevenLabs API key"))
	} else {
		fmt.Println(successStyle.Render("✓ edge-tts found"))
	}

	return nil
}

func createDirectories() error {
	dirs := []string{"assets/music", "output", "temp"}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	fmt.Println(successStyle.Render("✓ Created directories"))
	return nil
}

func configureEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing .env file").
			Description("Overwrite?").
			Value(&overwrite).
			Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing .env"))
			return nil
		}
	}

	env := make(map[string]string)

	if err := configureRequiredKeys(env); err != nil {
		return err
	}

	if err := configureStockFootage(env); err != nil {
		return err
	}

	if err := configureYouTube(env); err != nil {
		return err
	}

	if err := configureOptionalKeys(env); err != nil {
		return err
	}

	return writeEnvFile(env)
}

func configureRequiredKeys(env map[string]string) error {
	var groqKey string

	if err := huh.NewInput().
		Title("GROQ API Key").
		Description("https://console.groq.com/keys - scripts fall back to templates without it").
		Value(&groqKey).
		Run(); err != nil {
		return err
	}

	groqKey = strings.TrimSpace(groqKey)
	if groqKey != "" {
		env["GROQ_API_KEY"] = groqKey
	}
	return nil
}

func configureStockFootage(env map[string]string) error {
	var pexelsKey, pixabayKey string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Pexels API Key").
				Description("https://www.pexels.com/api/").
				Value(&pexelsKey),
			huh.NewInput().
				Title("Pixabay API Key").
				Description("https://pixabay.com/api/docs/").
				Value(&pixabayKey),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	pexelsKey = strings.TrimSpace(pexelsKey)
	pixabayKey = strings.TrimSpace(pixabayKey)

	if pexelsKey != "" {
		env["PEXELS_API_KEY"] = pexelsKey
	}
	if pixabayKey != "" {
		env["PIXABAY_API_KEY"] = pixabayKey
	}

	if pexelsKey == "" && pixabayKey == "" {
		fmt.Println(warnStyle.Render("No footage provider configured - videos will use solid color backgrounds"))
	}
	return nil
}

func configureYouTube(env map[string]string) error {
	var setup bool
	if err := huh.NewConfirm().
		Title("Setup YouTube OAuth?").
		Description("Required for uploading videos to YouTube").
		Value(&setup).
		Run(); err != nil || !setup {
		return err
	}

	fmt.Println(infoStyle.Render(`
To create OAuth credentials:
1. Go to https://console.cloud.google.com/apis/credentials
2. Click "Create Credentials" → "OAuth client ID"
3. Choose "Desktop app" as application type
4. Copy the Client ID and Client Secret
`))

	var clientID, clientSecret string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("YouTube Client ID").
				Value(&clientID),
			huh.NewInput().
				Title("YouTube Client Secret").
				EchoMode(huh.EchoModePassword).
				Value(&clientSecret),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)

	if clientID != "" {
		env["YOUTUBE_CLIENT_ID"] = clientID
	}
	if clientSecret != "" {
		env["YOUTUBE_CLIENT_SECRET"] = clientSecret
	}

	if clientID != "" && clientSecret != "" {
		var authenticate bool
		if err := huh.NewConfirm().
			Title("Authenticate with YouTube now?").
			Description("Opens browser to complete OAuth flow").
			Value(&authenticate).
			Run(); err != nil {
			return err
		}

		if authenticate {
			if err := runYouTubeAuth(clientID, clientSecret, "./youtube_token.json"); err != nil {
				fmt.Println(warnStyle.Render(fmt.Sprintf("OAuth flow failed: %v", err)))
				fmt.Println(infoStyle.Render("You can retry later with: shortforge auth youtube"))
			}
		}
	}

	return nil
}

func configureOptionalKeys(env map[string]string) error {
	var setup bool
	if err := huh.NewConfirm().
		Title("Setup ElevenLabs voices?").
		Description("Higher quality narration than edge-tts (optional)").
		Value(&setup).
		Run(); err != nil {
		return err
	}

	if setup {
		var apiKey string
		if err := huh.NewInput().
			Title("ElevenLabs API Key").
			Description("https://elevenlabs.io/app/settings/api-keys").
			EchoMode(huh.EchoModePassword).
			Value(&apiKey).
			Run(); err != nil {
			return err
		}

		apiKey = strings.TrimSpace(apiKey)
		if apiKey != "" {
			env["ELEVENLABS_API_KEY"] = apiKey
		}
	}

	var setupGCS bool
	if err := huh.NewConfirm().
		Title("Setup GCS music bucket?").
		Description("Pull background music from Cloud Storage (optional)").
		Value(&setupGCS).
		Run(); err != nil {
		return err
	}

	if setupGCS {
		var bucket string
		if err := huh.NewInput().
			Title("GCS Bucket").
			Placeholder("my-music-bucket").
			Value(&bucket).
			Run(); err != nil {
			return err
		}

		bucket = strings.TrimSpace(bucket)
		if bucket != "" {
			env["GCS_BUCKET"] = bucket
		}
	}

	return nil
}

func writeEnvFile(env map[string]string) error {
	f, err := os.Create(".env")
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	order := []string{
		"GROQ_API_KEY",
		"ELEVENLABS_API_KEY",
		"PEXELS_API_KEY",
		"PIXABAY_API_KEY",
		"YOUTUBE_CLIENT_ID",
		"YOUTUBE_CLIENT_SECRET",
		"YOUTUBE_REFRESH_TOKEN",
		"GCS_BUCKET",
	}

	for _, key := range order {
		if val, ok := env[key]; ok && val != "" {
			_, _ = fmt.Fprintf(f, "%s=%s\n", key, val)
		}
	}

	fmt.Println(successStyle.Render("✓ Created .env file"))
	printNextSteps()
	return nil
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Add music (optional) to: assets/music/")
	fmt.Println("  2. Run: shortforge generate -t \"your topic\"")
	fmt.Println("  3. Or run the daily schedule: shortforge schedule")
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runSetupCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %s", err, stderr.String())
	}
	return nil
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	return err
}
