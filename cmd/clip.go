package cmd

import (
	"github.com/spf13/cobra"

	"videoxt/domain/extraction"
	"videoxt/infrastructure/config"
)

var (
	clipFlags      commonFlags
	clipDimensions string
	clipResize     string
	clipRotate     string
	clipSpeed      string
	clipVolume     string
	clipBounce     bool
	clipReverse    bool
	clipMonochrome bool
	clipNormalize  bool
)

var clipCmd = &cobra.Command{
	Use:   "clip <video>",
	Short: "Extract a short mp4 clip from a video",
	Long: `Extract the section between --start and --stop as an h264 mp4.

Image edits (resize, rotate, monochrome) apply to the picture and motion
edits (speed, reverse, bounce) to both picture and sound.

Example:
  videoxt clip match.mp4 --start 1:05 --stop 1:20 --resize 0.5
  videoxt clip dance.mp4 --bounce --speed 2 --monochrome`,
	Args: cobra.ExactArgs(1),
	RunE: runClip,
}

func init() {
	rootCmd.AddCommand(clipCmd)
	addCommonFlags(clipCmd, &clipFlags)
	addImageFlags(clipCmd, &clipDimensions, &clipResize, &clipRotate, &clipMonochrome)
	clipCmd.Flags().StringVar(&clipSpeed, "speed", "", "Playback speed factor (default 1.0)")
	clipCmd.Flags().StringVar(&clipVolume, "volume", "", "Volume factor, 0 mutes (default 1.0)")
	clipCmd.Flags().BoolVar(&clipBounce, "bounce", false, "Play forward then backward")
	clipCmd.Flags().BoolVar(&clipReverse, "reverse", false, "Play backward")
	clipCmd.Flags().BoolVar(&clipNormalize, "normalize", false, "Normalize loudness")
}

// addImageFlags registers the flags shared by methods that produce pictures
func addImageFlags(cmd *cobra.Command, dimensions, resize, rotate *string, monochrome *bool) {
	cmd.Flags().StringVar(dimensions, "dimensions", "", "Output size as WxH (default video size)")
	cmd.Flags().StringVarP(resize, "resize", "r", "", "Scale factor applied to the dimensions (default 1.0)")
	cmd.Flags().StringVar(rotate, "rotate", "", "Clockwise rotation: 0, 90, 180 or 270")
	cmd.Flags().BoolVarP(monochrome, "monochrome", "m", false, "Convert to black and white")
}

func runClip(cmd *cobra.Command, args []string) error {
	c, err := GetConfig()
	if err != nil {
		return err
	}
	req, err := buildClipRequest(cmd, c)
	if err != nil {
		return err
	}
	return runExtract(cmd, &clipFlags, c, extraction.MethodClip, args[0], req)
}

func buildClipRequest(cmd *cobra.Command, c *config.Config) (*extraction.ClipRequest, error) {
	req := &extraction.ClipRequest{}
	base, err := presetRequest(c, clipFlags.preset, extraction.MethodClip)
	if err != nil {
		return nil, err
	}
	if base != nil {
		req = base.(*extraction.ClipRequest)
	}

	if err := applyCommon(cmd, &clipFlags, c, &req.Options); err != nil {
		return nil, err
	}
	if err := dimensionsFlag(cmd, clipDimensions, &req.Dimensions); err != nil {
		return nil, err
	}
	if err := floatFlag(cmd, "resize", clipResize, extraction.ValidResize, &req.Resize); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "rotate", clipRotate, extraction.ValidRotate, &req.Rotate); err != nil {
		return nil, err
	}
	if err := floatFlag(cmd, "speed", clipSpeed, extraction.ValidSpeed, &req.Speed); err != nil {
		return nil, err
	}
	if err := floatFlag(cmd, "volume", clipVolume, extraction.ValidVolume, &req.Volume); err != nil {
		return nil, err
	}
	boolFlag(cmd, "bounce", clipBounce, &req.Bounce)
	boolFlag(cmd, "reverse", clipReverse, &req.Reverse)
	boolFlag(cmd, "monochrome", clipMonochrome, &req.Monochrome)
	boolFlag(cmd, "normalize", clipNormalize, &req.Normalize)
	return req, nil
}
