package cmd

import (
	"github.com/spf13/cobra"

	"videoxt/domain/extraction"
	"videoxt/infrastructure/config"
)

var (
	gifFlags      commonFlags
	gifDimensions string
	gifResize     string
	gifRotate     string
	gifSpeed      string
	gifBounce     bool
	gifReverse    bool
	gifMonochrome bool
)

var gifCmd = &cobra.Command{
	Use:   "gif <video>",
	Short: "Create an animated gif from a video",
	Long: `Create a looping gif of the section between --start and --stop.

Gifs are large; --resize is usually wanted.

Example:
  videoxt gif dance.mp4 --start 3 --stop 6 --resize 0.3 --bounce`,
	Args: cobra.ExactArgs(1),
	RunE: runGif,
}

func init() {
	rootCmd.AddCommand(gifCmd)
	addCommonFlags(gifCmd, &gifFlags)
	addImageFlags(gifCmd, &gifDimensions, &gifResize, &gifRotate, &gifMonochrome)
	gifCmd.Flags().StringVar(&gifSpeed, "speed", "", "Playback speed factor (default 1.0)")
	gifCmd.Flags().BoolVar(&gifBounce, "bounce", false, "Play forward then backward")
	gifCmd.Flags().BoolVar(&gifReverse, "reverse", false, "Play backward")
}

func runGif(cmd *cobra.Command, args []string) error {
	c, err := GetConfig()
	if err != nil {
		return err
	}
	req, err := buildGifRequest(cmd, c)
	if err != nil {
		return err
	}
	return runExtract(cmd, &gifFlags, c, extraction.MethodGif, args[0], req)
}

func buildGifRequest(cmd *cobra.Command, c *config.Config) (*extraction.GifRequest, error) {
	req := &extraction.GifRequest{}
	base, err := presetRequest(c, gifFlags.preset, extraction.MethodGif)
	if err != nil {
		return nil, err
	}
	if base != nil {
		req = base.(*extraction.GifRequest)
	}

	if err := applyCommon(cmd, &gifFlags, c, &req.Options); err != nil {
		return nil, err
	}
	if err := dimensionsFlag(cmd, gifDimensions, &req.Dimensions); err != nil {
		return nil, err
	}
	if err := floatFlag(cmd, "resize", gifResize, extraction.ValidResize, &req.Resize); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "rotate", gifRotate, extraction.ValidRotate, &req.Rotate); err != nil {
		return nil, err
	}
	if err := floatFlag(cmd, "speed", gifSpeed, extraction.ValidSpeed, &req.Speed); err != nil {
		return nil, err
	}
	boolFlag(cmd, "bounce", gifBounce, &req.Bounce)
	boolFlag(cmd, "reverse", gifReverse, &req.Reverse)
	boolFlag(cmd, "monochrome", gifMonochrome, &req.Monochrome)
	return req, nil
}
