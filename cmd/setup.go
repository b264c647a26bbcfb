package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"videoxt/domain/extraction"
	"videoxt/infrastructure/config"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var errPromptCancelled = fmt.Errorf("prompt cancelled")

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up the ffmpeg location, the frame
reader, output defaults and optional Google Drive upload settings.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out io.Writer) error {
	if configPath == "" {
		configPath = config.DefaultPath
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(configPath+" already exists. Overwrite?", false)
		if err != nil {
			return errPromptCancelled
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to videoxt setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptFFmpeg(prompter, cfg); err != nil {
		return err
	}
	if err := promptDefaults(prompter, cfg); err != nil {
		return err
	}
	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptFFmpeg(prompter Prompter, cfg *config.Config) error {
	path, err := prompter.Input("Path to the ffmpeg executable?", cfg.FFmpeg.Path)
	if err != nil {
		return errPromptCancelled
	}
	if path != "" {
		cfg.FFmpeg.Path = path
	}

	timeout, err := prompter.Input("Seconds to wait for ffprobe?", strconv.Itoa(cfg.FFmpeg.ProbeTimeoutSeconds))
	if err != nil {
		return errPromptCancelled
	}
	if timeout != "" {
		n, err := extraction.PositiveInt(timeout)
		if err != nil {
			return fmt.Errorf("probe timeout: %w", err)
		}
		cfg.FFmpeg.ProbeTimeoutSeconds = n
	}

	backend, err := prompter.Select("How should frames be read?", []string{config.BackendFFmpeg, config.BackendOpenCV}, cfg.Frames.Backend)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Frames.Backend = backend
	return nil
}

func promptDefaults(prompter Prompter, cfg *config.Config) error {
	destdir, err := prompter.Input("Default output directory? (empty writes next to the video)", "")
	if err != nil {
		return errPromptCancelled
	}
	cfg.Defaults.DestDir = destdir

	audio, err := prompter.Select("Default audio format?", extraction.SupportedAudioFormats.List(), cfg.Defaults.AudioFormat)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Defaults.AudioFormat = audio

	image, err := prompter.Select("Default image format?", extraction.SupportedImageFormats.List(), cfg.Defaults.ImageFormat)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Defaults.ImageFormat = image

	overwrite, err := prompter.Confirm("Overwrite existing outputs instead of numbering new ones?", false)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Defaults.Overwrite = overwrite
	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	enable, err := prompter.Confirm("Set up Google Drive uploads?", false)
	if err != nil {
		return errPromptCancelled
	}
	if !enable {
		return nil
	}

	credentials, err := prompter.Input("Path to Google credentials file?", "credentials.json")
	if err != nil {
		return errPromptCancelled
	}
	if credentials == "" {
		credentials = "credentials.json"
	}
	cfg.Google.CredentialsFile = credentials

	oauth, err := prompter.Confirm("Sign in with your Google account (OAuth) instead of a service account?", true)
	if err != nil {
		return errPromptCancelled
	}
	if oauth {
		token, err := prompter.Input("Where should the OAuth token be stored?", "config/token.json")
		if err != nil {
			return errPromptCancelled
		}
		cfg.Google.TokenFile = token
	}

	folder, err := prompter.Input("Google Drive folder ID for uploads?", "")
	if err != nil {
		return errPromptCancelled
	}
	if folder == "" {
		return fmt.Errorf("folder ID is required")
	}
	cfg.Google.FolderID = folder

	if oauth {
		return promptEmail(prompter, cfg)
	}
	return nil
}

// promptEmail asks for the Gmail sender used by --notify; Gmail sends with
// the OAuth sign-in, so it is only offered after OAuth was chosen
func promptEmail(prompter Prompter, cfg *config.Config) error {
	enable, err := prompter.Confirm("Email share links with Gmail after uploads?", false)
	if err != nil {
		return errPromptCancelled
	}
	if !enable {
		return nil
	}

	address, err := prompter.Input("Your Gmail address?", "")
	if err != nil {
		return errPromptCancelled
	}
	if address == "" {
		return fmt.Errorf("a from address is required to email share links")
	}
	cfg.Email.FromAddress = address

	name, err := prompter.Input("Name shown as the sender?", "")
	if err != nil {
		return errPromptCancelled
	}
	cfg.Email.FromName = name

	signature, err := prompter.Input("Name to sign emails with?", name)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Email.SenderName = signature
	return nil
}
