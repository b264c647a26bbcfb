package config

import (
	"fmt"

	"videoxt/domain/extraction"
)

// PresetConfig is a named set of extraction options stored in the config file
type PresetConfig struct {
	Method      string   `yaml:"method"`
	StartTime   string   `yaml:"start_time,omitempty"`
	StopTime    string   `yaml:"stop_time,omitempty"`
	DestDir     string   `yaml:"destdir,omitempty"`
	Filename    string   `yaml:"filename,omitempty"`
	Overwrite   bool     `yaml:"overwrite,omitempty"`
	FPS         *float64 `yaml:"fps,omitempty"`
	AudioFormat string   `yaml:"audio_format,omitempty"`
	ImageFormat string   `yaml:"image_format,omitempty"`
	CaptureRate *int     `yaml:"capture_rate,omitempty"`
	Dimensions  string   `yaml:"dimensions,omitempty"`
	Resize      *float64 `yaml:"resize,omitempty"`
	Rotate      *int     `yaml:"rotate,omitempty"`
	Speed       *float64 `yaml:"speed,omitempty"`
	Volume      *float64 `yaml:"volume,omitempty"`
	Bounce      bool     `yaml:"bounce,omitempty"`
	Reverse     bool     `yaml:"reverse,omitempty"`
	Monochrome  bool     `yaml:"monochrome,omitempty"`
	Normalize   bool     `yaml:"normalize,omitempty"`
}

// Request builds the extraction request the preset describes. Options that
// do not apply to the preset's method are ignored.
func (p PresetConfig) Request() (extraction.Request, error) {
	method, err := extraction.ParseMethod(p.Method)
	if err != nil {
		return nil, err
	}

	var dims *extraction.Dimensions
	if p.Dimensions != "" {
		d, err := extraction.ParseDimensions(p.Dimensions)
		if err != nil {
			return nil, err
		}
		dims = &d
	}

	opts := extraction.Options{
		StartTime: p.StartTime,
		StopTime:  p.StopTime,
		DestDir:   p.DestDir,
		Filename:  p.Filename,
		Overwrite: p.Overwrite,
		FPS:       p.FPS,
	}

	switch method {
	case extraction.MethodAudio:
		return &extraction.AudioRequest{
			Options:     opts,
			AudioFormat: p.AudioFormat,
			Speed:       p.Speed,
			Bounce:      p.Bounce,
			Reverse:     p.Reverse,
			Volume:      p.Volume,
			Normalize:   p.Normalize,
		}, nil
	case extraction.MethodClip:
		return &extraction.ClipRequest{
			Options:    opts,
			Dimensions: dims,
			Resize:     p.Resize,
			Rotate:     p.Rotate,
			Speed:      p.Speed,
			Bounce:     p.Bounce,
			Reverse:    p.Reverse,
			Monochrome: p.Monochrome,
			Volume:     p.Volume,
			Normalize:  p.Normalize,
		}, nil
	case extraction.MethodFrames:
		return &extraction.FramesRequest{
			Options:     opts,
			ImageFormat: p.ImageFormat,
			CaptureRate: p.CaptureRate,
			Dimensions:  dims,
			Resize:      p.Resize,
			Rotate:      p.Rotate,
			Monochrome:  p.Monochrome,
		}, nil
	case extraction.MethodGif:
		return &extraction.GifRequest{
			Options:    opts,
			Dimensions: dims,
			Resize:     p.Resize,
			Rotate:     p.Rotate,
			Speed:      p.Speed,
			Bounce:     p.Bounce,
			Reverse:    p.Reverse,
			Monochrome: p.Monochrome,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", extraction.ErrInvalidMethod, p.Method)
}

// Validate checks the preset's options the way an extraction would
func (p PresetConfig) Validate() error {
	req, err := p.Request()
	if err != nil {
		return err
	}
	return req.Validate()
}
