package cmd

import (
	"github.com/spf13/cobra"

	"videoxt/domain/extraction"
	"videoxt/infrastructure/config"
)

var (
	audioFlags     commonFlags
	audioFormat    string
	audioSpeed     string
	audioVolume    string
	audioBounce    bool
	audioReverse   bool
	audioNormalize bool
)

var audioCmd = &cobra.Command{
	Use:   "audio <video>",
	Short: "Extract the audio track from a video",
	Long: `Extract the audio track between --start and --stop.

The audio is written at 44.1 kHz. Speed, volume, reverse and bounce edits
are applied after normalization.

Example:
  videoxt audio lecture.mp4 --audio-format wav --normalize
  videoxt audio match.mp4 --start 00:01:05 --stop 00:01:20 --volume 1.5`,
	Args: cobra.ExactArgs(1),
	RunE: runAudio,
}

func init() {
	rootCmd.AddCommand(audioCmd)
	addCommonFlags(audioCmd, &audioFlags)
	audioCmd.Flags().StringVarP(&audioFormat, "audio-format", "F", "", "Audio format: m4a, mp3, ogg or wav (default from config or mp3)")
	audioCmd.Flags().StringVar(&audioSpeed, "speed", "", "Playback speed factor (default 1.0)")
	audioCmd.Flags().StringVar(&audioVolume, "volume", "", "Volume factor, 0 mutes (default 1.0)")
	audioCmd.Flags().BoolVar(&audioBounce, "bounce", false, "Play forward then backward")
	audioCmd.Flags().BoolVar(&audioReverse, "reverse", false, "Play backward")
	audioCmd.Flags().BoolVar(&audioNormalize, "normalize", false, "Normalize loudness")
}

func runAudio(cmd *cobra.Command, args []string) error {
	c, err := GetConfig()
	if err != nil {
		return err
	}
	req, err := buildAudioRequest(cmd, c)
	if err != nil {
		return err
	}
	return runExtract(cmd, &audioFlags, c, extraction.MethodAudio, args[0], req)
}

func buildAudioRequest(cmd *cobra.Command, c *config.Config) (*extraction.AudioRequest, error) {
	req := &extraction.AudioRequest{}
	base, err := presetRequest(c, audioFlags.preset, extraction.MethodAudio)
	if err != nil {
		return nil, err
	}
	if base != nil {
		req = base.(*extraction.AudioRequest)
	}

	if err := applyCommon(cmd, &audioFlags, c, &req.Options); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("audio-format") {
		req.AudioFormat = audioFormat
	} else if req.AudioFormat == "" {
		req.AudioFormat = c.Defaults.AudioFormat
	}
	if err := floatFlag(cmd, "speed", audioSpeed, extraction.ValidSpeed, &req.Speed); err != nil {
		return nil, err
	}
	if err := floatFlag(cmd, "volume", audioVolume, extraction.ValidVolume, &req.Volume); err != nil {
		return nil, err
	}
	boolFlag(cmd, "bounce", audioBounce, &req.Bounce)
	boolFlag(cmd, "reverse", audioReverse, &req.Reverse)
	boolFlag(cmd, "normalize", audioNormalize, &req.Normalize)
	return req, nil
}
