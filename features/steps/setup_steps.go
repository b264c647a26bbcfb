//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"videoxt/cmd"
	"videoxt/infrastructure/config"
)

type setupContext struct {
	tempDir         string
	configPath      string
	originalContent string
	output          *bytes.Buffer
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter by replaying answers in prompt order
type MockPrompter struct {
	answers []string
	index   int
}

func NewMockPrompter(answers []string) *MockPrompter {
	return &MockPrompter{answers: answers}
}

func (m *MockPrompter) next(message string) (string, error) {
	if m.index >= len(m.answers) {
		return "", fmt.Errorf("no more answers available for prompt: %s", message)
	}
	answer := m.answers[m.index]
	m.index++
	return answer, nil
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	answer, err := m.next(message)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	answer, err := m.next(message)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	case "":
		return defaultValue, nil
	}
	return false, fmt.Errorf("answer %q to %q is not yes or no", answer, message)
}

func (m *MockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	answer, err := m.next(message)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return defaultValue, nil
	}
	for _, opt := range options {
		if opt == answer {
			return answer, nil
		}
	}
	return "", fmt.Errorf("answer %q to %q is not one of %v", answer, message, options)
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		// Create temp directory for each scenario
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.originalContent = ""
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedSetupContext = &setupContext{}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, testCtx.noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, testCtx.aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup with answers:$`, testCtx.iRunTheSetupWithAnswers)
	ctx.Step(`^a config file should exist$`, testCtx.aConfigFileShouldExist)
	ctx.Step(`^the config should have ffmpeg path "([^"]*)"$`, testCtx.theConfigShouldHaveFFmpegPath)
	ctx.Step(`^the config should have frames backend "([^"]*)"$`, testCtx.theConfigShouldHaveFramesBackend)
	ctx.Step(`^the config should have default audio format "([^"]*)"$`, testCtx.theConfigShouldHaveDefaultAudioFormat)
	ctx.Step(`^the config should have Google folder "([^"]*)"$`, testCtx.theConfigShouldHaveGoogleFolder)
	ctx.Step(`^the config should not have a Google folder$`, testCtx.theConfigShouldNotHaveAGoogleFolder)
	ctx.Step(`^the config should have token file "([^"]*)"$`, testCtx.theConfigShouldHaveTokenFile)
	ctx.Step(`^the config should not send email$`, testCtx.theConfigShouldNotSendEmail)
	ctx.Step(`^the config should send email from "([^"]*)" signed "([^"]*)"$`, testCtx.theConfigShouldSendEmailFromSigned)
	ctx.Step(`^the setup should be cancelled$`, testCtx.theSetupShouldBeCancelled)
	ctx.Step(`^the setup should fail with "([^"]*)"$`, testCtx.theSetupShouldFailWith)
	ctx.Step(`^the existing config should be unchanged$`, testCtx.theExistingConfigShouldBeUnchanged)
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	return os.MkdirAll(filepath.Dir(s.configPath), 0755)
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}
	content := "ffmpeg:\n  path: /opt/ffmpeg/bin/ffmpeg\n"
	if err := os.WriteFile(s.configPath, []byte(content), 0644); err != nil {
		return err
	}
	s.originalContent = content
	return nil
}

func (s *setupContext) iRunTheSetupWithAnswers(table *godog.Table) error {
	var answers []string
	for _, row := range table.Rows {
		answers = append(answers, strings.TrimSpace(row.Cells[0].Value))
	}
	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(answers), s.configPath, s.output)
	return nil
}

func (s *setupContext) load() (*config.Config, error) {
	if s.err != nil {
		return nil, fmt.Errorf("setup failed: %w", s.err)
	}
	return config.Load(s.configPath)
}

func (s *setupContext) aConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); err != nil {
		return fmt.Errorf("config file does not exist at %s (setup error: %v)", s.configPath, s.err)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveFFmpegPath(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.FFmpeg.Path != expected {
		return fmt.Errorf("expected ffmpeg path %q, got %q", expected, cfg.FFmpeg.Path)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveFramesBackend(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Frames.Backend != expected {
		return fmt.Errorf("expected frames backend %q, got %q", expected, cfg.Frames.Backend)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveDefaultAudioFormat(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Defaults.AudioFormat != expected {
		return fmt.Errorf("expected audio format %q, got %q", expected, cfg.Defaults.AudioFormat)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveGoogleFolder(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Google.FolderID != expected {
		return fmt.Errorf("expected folder ID %q, got %q", expected, cfg.Google.FolderID)
	}
	return nil
}

func (s *setupContext) theConfigShouldNotHaveAGoogleFolder() error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Google.FolderID != "" {
		return fmt.Errorf("expected no folder ID, got %q", cfg.Google.FolderID)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveTokenFile(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Google.TokenFile != expected {
		return fmt.Errorf("expected token file %q, got %q", expected, cfg.Google.TokenFile)
	}
	return nil
}

func (s *setupContext) theConfigShouldNotSendEmail() error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Email.Enabled() {
		return fmt.Errorf("expected email to be off, got sender %q", cfg.Email.FromAddress)
	}
	return nil
}

func (s *setupContext) theConfigShouldSendEmailFromSigned(address, signature string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Email.FromAddress != address {
		return fmt.Errorf("expected sender %q, got %q", address, cfg.Email.FromAddress)
	}
	if cfg.Email.SenderName != signature {
		return fmt.Errorf("expected signature %q, got %q", signature, cfg.Email.SenderName)
	}
	return nil
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if s.err != nil {
		return fmt.Errorf("expected a clean cancel, got error: %v", s.err)
	}
	if !strings.Contains(s.output.String(), "Setup cancelled.") {
		return fmt.Errorf("expected setup to be cancelled, output:\n%s", s.output.String())
	}
	return nil
}

func (s *setupContext) theSetupShouldFailWith(msg string) error {
	if s.err == nil {
		return fmt.Errorf("expected an error containing %q, got success", msg)
	}
	if !strings.Contains(s.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got: %v", msg, s.err)
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}
	if string(content) != s.originalContent {
		return fmt.Errorf("config file was modified")
	}
	return nil
}
