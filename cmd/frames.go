package cmd

import (
	"github.com/spf13/cobra"

	"videoxt/domain/extraction"
	"videoxt/infrastructure/config"
)

var (
	framesFlags      commonFlags
	framesFormat     string
	framesRate       string
	framesDimensions string
	framesResize     string
	framesRotate     string
	framesMonochrome bool
)

var framesCmd = &cobra.Command{
	Use:   "frames <video>",
	Short: "Save frames of a video as images",
	Long: `Save every --capture-rate'th frame between --start and --stop as an image.

Images are written to <video>_frames next to the video (or under --destdir)
and named <filename>_<frame>.<format>.

Example:
  videoxt frames match.mp4 --capture-rate 30
  videoxt frames match.mp4 --start 10 --stop 20 --image-format png --resize 0.25`,
	Args: cobra.ExactArgs(1),
	RunE: runFrames,
}

func init() {
	rootCmd.AddCommand(framesCmd)
	addCommonFlags(framesCmd, &framesFlags)
	addImageFlags(framesCmd, &framesDimensions, &framesResize, &framesRotate, &framesMonochrome)
	framesCmd.Flags().StringVarP(&framesFormat, "image-format", "F", "", "Image format, e.g. jpg or png (default from config or jpg)")
	framesCmd.Flags().StringVarP(&framesRate, "capture-rate", "c", "", "Save every Nth frame (default 1)")
}

func runFrames(cmd *cobra.Command, args []string) error {
	c, err := GetConfig()
	if err != nil {
		return err
	}
	req, err := buildFramesRequest(cmd, c)
	if err != nil {
		return err
	}
	return runExtract(cmd, &framesFlags, c, extraction.MethodFrames, args[0], req)
}

func buildFramesRequest(cmd *cobra.Command, c *config.Config) (*extraction.FramesRequest, error) {
	req := &extraction.FramesRequest{}
	base, err := presetRequest(c, framesFlags.preset, extraction.MethodFrames)
	if err != nil {
		return nil, err
	}
	if base != nil {
		req = base.(*extraction.FramesRequest)
	}

	if err := applyCommon(cmd, &framesFlags, c, &req.Options); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("image-format") {
		req.ImageFormat = framesFormat
	} else if req.ImageFormat == "" {
		req.ImageFormat = c.Defaults.ImageFormat
	}
	if err := intFlag(cmd, "capture-rate", framesRate, extraction.ValidCaptureRate, &req.CaptureRate); err != nil {
		return nil, err
	}
	if err := dimensionsFlag(cmd, framesDimensions, &req.Dimensions); err != nil {
		return nil, err
	}
	if err := floatFlag(cmd, "resize", framesResize, extraction.ValidResize, &req.Resize); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "rotate", framesRotate, extraction.ValidRotate, &req.Rotate); err != nil {
		return nil, err
	}
	boolFlag(cmd, "monochrome", framesMonochrome, &req.Monochrome)
	return req, nil
}
