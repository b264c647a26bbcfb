package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"videoxt/infrastructure/config"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	cfgErr   error
)

var rootCmd = &cobra.Command{
	Use:   "videoxt",
	Short: "Extract audio, clips, frames and gifs from videos",
	Long: `videoxt pulls media out of a video file:

  - audio   the audio track as mp3, m4a, ogg or wav
  - clip    a trimmed, edited mp4
  - frames  individual frames as images
  - gif     an animated gif

Every method takes a start and stop time and can upload its result to
Google Drive.

Example:
  videoxt clip match.mp4 --start 1:05 --stop 1:20 --resize 0.5
  videoxt frames match.mp4 --capture-rate 30 --image-format png`,
	SilenceUsage: true,
}

// Execute runs the root command, cancelling on interrupt
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default from config or info)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	// A missing file falls back to defaults; a broken one is reported by
	// the commands that need it
	cfg, cfgErr = config.LoadOrDefault(cfgFile)
	if cfgErr == nil {
		cfgErr = cfg.Validate()
	}
}

// GetConfig returns the loaded configuration
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", cfgFile, cfgErr)
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

// newLogger builds a production logger at the flag's level, or the config's
func newLogger(c *config.Config) (*zap.Logger, error) {
	level, err := c.LogLevel()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		if level, err = zapcore.ParseLevel(logLevel); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}
