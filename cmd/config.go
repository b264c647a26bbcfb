package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"videoxt/domain/extraction"
	"videoxt/infrastructure/config"
)

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage extraction presets",
	Long: `Manage named extraction presets in the configuration file.

A preset stores options for one method. Pass it to an extraction with
--preset; flags given on the command line still win.

Examples:
  videoxt config add thumbs --method frames --capture-rate 30 --image-format png
  videoxt config list
  videoxt config show thumbs
  videoxt config remove thumbs`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configRemoveCmd)
	configCmd.AddCommand(configValidateCmd)
}

func loadConfigForEdit() (*config.Config, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// --- ADD command ---

var presetFlags struct {
	method      string
	start       string
	stop        string
	destdir     string
	filename    string
	overwrite   bool
	fps         string
	audioFormat string
	imageFormat string
	captureRate string
	dimensions  string
	resize      string
	rotate      string
	speed       string
	volume      string
	bounce      bool
	reverse     bool
	monochrome  bool
	normalize   bool
}

var configAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new preset",
	Long: `Add a named preset for one extraction method.

Examples:
  videoxt config add thumbs --method frames --capture-rate 30 --image-format png
  videoxt config add podcast --method audio --audio-format m4a --normalize
  videoxt config add loop --method gif --resize 0.3 --bounce`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigAdd,
}

func init() {
	f := configAddCmd.Flags()
	f.StringVar(&presetFlags.method, "method", "", "Extraction method: audio, clip, frames or gif (required)")
	f.StringVar(&presetFlags.start, "start", "", "Start time")
	f.StringVar(&presetFlags.stop, "stop", "", "Stop time")
	f.StringVar(&presetFlags.destdir, "destdir", "", "Output directory")
	f.StringVar(&presetFlags.filename, "filename", "", "Output file name")
	f.BoolVar(&presetFlags.overwrite, "overwrite", false, "Overwrite existing outputs")
	f.StringVar(&presetFlags.fps, "fps", "", "Frame rate override")
	f.StringVar(&presetFlags.audioFormat, "audio-format", "", "Audio format")
	f.StringVar(&presetFlags.imageFormat, "image-format", "", "Image format")
	f.StringVar(&presetFlags.captureRate, "capture-rate", "", "Save every Nth frame")
	f.StringVar(&presetFlags.dimensions, "dimensions", "", "Output size as WxH")
	f.StringVar(&presetFlags.resize, "resize", "", "Scale factor")
	f.StringVar(&presetFlags.rotate, "rotate", "", "Clockwise rotation: 0, 90, 180 or 270")
	f.StringVar(&presetFlags.speed, "speed", "", "Playback speed factor")
	f.StringVar(&presetFlags.volume, "volume", "", "Volume factor")
	f.BoolVar(&presetFlags.bounce, "bounce", false, "Play forward then backward")
	f.BoolVar(&presetFlags.reverse, "reverse", false, "Play backward")
	f.BoolVar(&presetFlags.monochrome, "monochrome", false, "Convert to black and white")
	f.BoolVar(&presetFlags.normalize, "normalize", false, "Normalize loudness")
	configAddCmd.MarkFlagRequired("method")
}

func runConfigAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigForEdit()
	if err != nil {
		return err
	}
	preset, err := presetFromFlags()
	if err != nil {
		return err
	}
	return RunConfigAddWithDependencies(cfg, cfgFile, args[0], preset, DefaultOutput)
}

// presetFromFlags validates the add flags into a preset
func presetFromFlags() (config.PresetConfig, error) {
	p := config.PresetConfig{
		Method:      presetFlags.method,
		StartTime:   presetFlags.start,
		StopTime:    presetFlags.stop,
		DestDir:     presetFlags.destdir,
		Filename:    presetFlags.filename,
		Overwrite:   presetFlags.overwrite,
		AudioFormat: presetFlags.audioFormat,
		ImageFormat: presetFlags.imageFormat,
		Dimensions:  presetFlags.dimensions,
		Bounce:      presetFlags.bounce,
		Reverse:     presetFlags.reverse,
		Monochrome:  presetFlags.monochrome,
		Normalize:   presetFlags.normalize,
	}

	floats := []struct {
		name  string
		value string
		parse func(string) (float64, error)
		dst   **float64
	}{
		{"fps", presetFlags.fps, extraction.ValidFPS, &p.FPS},
		{"resize", presetFlags.resize, extraction.ValidResize, &p.Resize},
		{"speed", presetFlags.speed, extraction.ValidSpeed, &p.Speed},
		{"volume", presetFlags.volume, extraction.ValidVolume, &p.Volume},
	}
	for _, f := range floats {
		if f.value == "" {
			continue
		}
		v, err := f.parse(f.value)
		if err != nil {
			return p, fmt.Errorf("--%s: %w", f.name, err)
		}
		*f.dst = &v
	}

	ints := []struct {
		name  string
		value string
		parse func(string) (int, error)
		dst   **int
	}{
		{"capture-rate", presetFlags.captureRate, extraction.ValidCaptureRate, &p.CaptureRate},
		{"rotate", presetFlags.rotate, extraction.ValidRotate, &p.Rotate},
	}
	for _, f := range ints {
		if f.value == "" {
			continue
		}
		v, err := f.parse(f.value)
		if err != nil {
			return p, fmt.Errorf("--%s: %w", f.name, err)
		}
		*f.dst = &v
	}

	return p, nil
}

// RunConfigAddWithDependencies runs the add command with injected dependencies
func RunConfigAddWithDependencies(cfg *config.Config, configPath, name string, preset config.PresetConfig, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.AddPreset(name, preset); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added %s preset %q\n", strings.ToLower(preset.Method), strings.ToLower(strings.TrimSpace(name)))
	return nil
}

// --- LIST command ---

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

func runConfigList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigForEdit()
	if err != nil {
		return err
	}
	return RunConfigListWithDependencies(cfg, cfgFile, DefaultOutput)
}

// RunConfigListWithDependencies runs the list command with injected dependencies
func RunConfigListWithDependencies(cfg *config.Config, configPath string, out OutputWriter) error {
	presets := config.NewConfigManager(cfg, configPath).ListPresets()
	if len(presets) == 0 {
		fmt.Fprintln(out, "No presets configured.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMETHOD\tRANGE")
	for _, p := range presets {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Method, presetRange(p.PresetConfig))
	}
	return w.Flush()
}

func presetRange(p config.PresetConfig) string {
	start, stop := p.StartTime, p.StopTime
	if start == "" {
		start = "0"
	}
	if stop == "" {
		stop = "end"
	}
	return start + "-" + stop
}

// --- SHOW command ---

var configShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a preset's options",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigForEdit()
	if err != nil {
		return err
	}
	return RunConfigShowWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
}

// RunConfigShowWithDependencies prints a preset as YAML
func RunConfigShowWithDependencies(cfg *config.Config, configPath, name string, out OutputWriter) error {
	preset, err := config.NewConfigManager(cfg, configPath).GetPreset(name)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(preset.PresetConfig)
	if err != nil {
		return fmt.Errorf("failed to render preset: %w", err)
	}
	fmt.Fprintf(out, "%s:\n", preset.Name)
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		fmt.Fprintf(out, "  %s\n", line)
	}
	return nil
}

// --- REMOVE command ---

var configRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigRemove,
}

func runConfigRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigForEdit()
	if err != nil {
		return err
	}
	return RunConfigRemoveWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
}

// RunConfigRemoveWithDependencies runs the remove command with injected dependencies
func RunConfigRemoveWithDependencies(cfg *config.Config, configPath, name string, out OutputWriter) error {
	if err := config.NewConfigManager(cfg, configPath).RemovePreset(name); err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed preset %q\n", strings.ToLower(strings.TrimSpace(name)))
	return nil
}

// --- VALIDATE command ---

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := GetConfig(); err != nil {
			return err
		}
		fmt.Fprintf(DefaultOutput, "%s is valid.\n", cfgFile)
		return nil
	},
}
