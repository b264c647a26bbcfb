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

type presetContext struct {
	tempDir    string
	configPath string
	config     *config.Config
	output     *bytes.Buffer
	err        error
}

// SharedPresetContext is reset after each scenario
var SharedPresetContext = &presetContext{}

func InitializePresetScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedPresetContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "preset-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config.yaml")
		testCtx.config = nil
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedPresetContext = &presetContext{}
		return c, nil
	})

	ctx.Step(`^a config file exists with no presets$`, testCtx.aConfigFileExistsWithNoPresets)
	ctx.Step(`^preset "([^"]*)" exists with method "([^"]*)"$`, testCtx.presetExistsWithMethod)
	ctx.Step(`^I run config add preset "([^"]*)" with method "([^"]*)" and options:$`, testCtx.iRunConfigAddPreset)
	ctx.Step(`^I run config list$`, testCtx.iRunConfigList)
	ctx.Step(`^I run config show "([^"]*)"$`, testCtx.iRunConfigShow)
	ctx.Step(`^I run config remove "([^"]*)"$`, testCtx.iRunConfigRemove)
	ctx.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	ctx.Step(`^the command should fail with "([^"]*)"$`, testCtx.theCommandShouldFailWith)
	ctx.Step(`^the output should mention "((?:[^"\\]|\\.)*)"$`, testCtx.theOutputShouldMention)
	ctx.Step(`^the saved config should contain preset "([^"]*)" with method "([^"]*)"$`, testCtx.theSavedConfigShouldContainPreset)
	ctx.Step(`^the saved config should not contain preset "([^"]*)"$`, testCtx.theSavedConfigShouldNotContainPreset)
}

func (p *presetContext) aConfigFileExistsWithNoPresets() error {
	p.config = config.Default()
	return config.Save(p.config, p.configPath)
}

func (p *presetContext) presetExistsWithMethod(name, method string) error {
	return config.NewConfigManager(p.config, p.configPath).AddPreset(name, config.PresetConfig{Method: method})
}

func (p *presetContext) iRunConfigAddPreset(name, method string, table *godog.Table) error {
	preset, err := presetFromTable(method, table)
	if err != nil {
		return err
	}
	p.err = cmd.RunConfigAddWithDependencies(p.config, p.configPath, name, preset, p.output)
	return nil
}

func (p *presetContext) iRunConfigList() error {
	p.err = cmd.RunConfigListWithDependencies(p.config, p.configPath, p.output)
	return nil
}

func (p *presetContext) iRunConfigShow(name string) error {
	p.err = cmd.RunConfigShowWithDependencies(p.config, p.configPath, name, p.output)
	return nil
}

func (p *presetContext) iRunConfigRemove(name string) error {
	p.err = cmd.RunConfigRemoveWithDependencies(p.config, p.configPath, name, p.output)
	return nil
}

func (p *presetContext) theCommandShouldSucceed() error {
	if p.err != nil {
		return fmt.Errorf("expected success, got error: %v", p.err)
	}
	return nil
}

func (p *presetContext) theCommandShouldFailWith(msg string) error {
	if p.err == nil {
		return fmt.Errorf("expected an error containing %q, got success", msg)
	}
	if !strings.Contains(p.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got: %v", msg, p.err)
	}
	return nil
}

func (p *presetContext) theOutputShouldMention(text string) error {
	text = strings.ReplaceAll(text, `\"`, `"`)
	if !strings.Contains(p.output.String(), text) {
		return fmt.Errorf("expected output to mention %q, got:\n%s", text, p.output.String())
	}
	return nil
}

// reload reads the config back from disk so assertions see what was saved
func (p *presetContext) reload() (*config.Config, error) {
	cfg, err := config.Load(p.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to reload config: %w", err)
	}
	return cfg, nil
}

func (p *presetContext) theSavedConfigShouldContainPreset(name, method string) error {
	cfg, err := p.reload()
	if err != nil {
		return err
	}
	preset, ok := cfg.Presets[name]
	if !ok {
		return fmt.Errorf("preset %q not found in saved config", name)
	}
	if preset.Method != method {
		return fmt.Errorf("expected preset %q method %q, got %q", name, method, preset.Method)
	}
	return nil
}

func (p *presetContext) theSavedConfigShouldNotContainPreset(name string) error {
	cfg, err := p.reload()
	if err != nil {
		return err
	}
	if _, ok := cfg.Presets[name]; ok {
		return fmt.Errorf("preset %q should not be in saved config", name)
	}
	return nil
}
