package extraction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Dimensions is a frame size in pixels
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String returns the dimensions as WxH
func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Properties are the stream properties read from a video file by a Prober
type Properties struct {
	Dimensions Dimensions
	FPS        float64
	FrameCount int
	HasAudio   bool
}

// Prober reads stream properties from a video file.
// This is a port implemented by the ffmpeg and opencv adapters.
type Prober interface {
	Probe(ctx context.Context, path string) (*Properties, error)
}

// Video is a validated input video and its properties
type Video struct {
	Path              string        `json:"filepath"`
	Dimensions        Dimensions    `json:"dimensions"`
	FPS               float64       `json:"fps"`
	FrameCount        int           `json:"frame_count"`
	Duration          time.Duration `json:"-"`
	DurationSeconds   float64       `json:"duration_seconds"`
	DurationTimestamp string        `json:"duration_timestamp"`
	HasAudio          bool          `json:"has_audio"`
	FileSizeBytes     int64         `json:"filesize_bytes"`
	FileSize          string        `json:"filesize"`
}

// NewVideo validates the file at path and reads its properties through prober
func NewVideo(ctx context.Context, path string, prober Prober) (*Video, error) {
	path, err := ValidFilepath(path, true)
	if err != nil {
		return nil, err
	}

	v := &Video{Path: path}

	info, err := os.Stat(path)
	if err != nil || info.Size() <= 0 {
		return nil, fmt.Errorf("%w: the video file size could not be read, please check the file", ErrVideoValidation)
	}
	v.FileSizeBytes = info.Size()
	v.FileSize, _ = FormatBytes(v.FileSizeBytes)

	props, err := prober.Probe(ctx, path)
	if err != nil {
		if errors.Is(err, ErrClosedCapture) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrVideoValidation, err)
	}
	if props == nil {
		return nil, fmt.Errorf("%w: no properties could be read from the video file, please check the file", ErrVideoValidation)
	}

	if _, err := ValidDimensions(props.Dimensions); err != nil {
		return nil, fmt.Errorf("%w: the video dimensions are invalid, please check the file: %v", ErrVideoValidation, err)
	}
	if props.FPS <= 0 {
		return nil, fmt.Errorf("%w: the video fps was read as a non-positive number (%v), please check the file", ErrVideoValidation, props.FPS)
	}
	if props.FrameCount <= 0 {
		return nil, fmt.Errorf("%w: the video frame count was read as a non-positive integer (%d), please check the file", ErrVideoValidation, props.FrameCount)
	}

	v.Dimensions = props.Dimensions
	v.FPS = props.FPS
	v.FrameCount = props.FrameCount
	v.HasAudio = props.HasAudio

	v.Duration, err = CalculateDuration(v.FrameCount, v.FPS)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVideoValidation, err)
	}
	v.DurationSeconds = v.Duration.Seconds()
	v.DurationTimestamp = SecondsToTimestamp(v.DurationSeconds)

	return v, nil
}

// Stem returns the video filename without its extension
func (v *Video) Stem() string {
	return videoStem(v.Path)
}
