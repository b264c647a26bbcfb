package extraction

import (
	"fmt"
	"math"
)

// Request holds the user supplied options for one extraction method.
// Validate checks only the options that are set; Prepare resolves every option
// against a video into a Prepared plan.
type Request interface {
	Method() Method
	Validate() error
	Validated() bool
	SkipValidation()
	Prepare(video *Video) (Prepared, error)
}

// Prepared is a fully resolved extraction plan
type Prepared interface {
	Method() Method
	Destination() string
	IsVerbose() bool
}

// NewRequest returns an empty request for method; every option takes its default
func NewRequest(method Method) (Request, error) {
	switch method {
	case MethodAudio:
		return &AudioRequest{}, nil
	case MethodClip:
		return &ClipRequest{}, nil
	case MethodFrames:
		return &FramesRequest{}, nil
	case MethodGif:
		return &GifRequest{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
}

// Float returns a pointer to v, for optional request fields
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for optional request fields
func Int(v int) *int { return &v }

// Options are shared by every extraction method. Empty strings and nil
// pointers mean "use the default".
type Options struct {
	StartTime string   `json:"start_time,omitempty"`
	StopTime  string   `json:"stop_time,omitempty"`
	DestDir   string   `json:"destdir,omitempty"`
	Filename  string   `json:"filename,omitempty"`
	Verbose   bool     `json:"verbose"`
	Overwrite bool     `json:"overwrite"`
	FPS       *float64 `json:"fps,omitempty"`

	validated      bool
	skipValidation bool
}

// Validated reports whether the request passed validation
func (o *Options) Validated() bool {
	return o.validated
}

// SkipValidation makes Prepare trust the options as given
func (o *Options) SkipValidation() {
	o.skipValidation = true
}

func (o *Options) needsValidation() bool {
	return !o.validated && !o.skipValidation
}

func (o *Options) validate() error {
	if o.StartTime != "" {
		v, err := ValidStartTime(o.StartTime)
		if err != nil {
			return err
		}
		o.StartTime = v
	}
	if o.StopTime != "" {
		v, err := ValidStopTime(o.StopTime)
		if err != nil {
			return err
		}
		o.StopTime = v
	}
	if o.FPS != nil {
		v, err := positiveFloat(*o.FPS)
		if err != nil {
			return fmt.Errorf("%w: invalid fps, got %v; FPS must be a positive number", ErrValidation, *o.FPS)
		}
		o.FPS = &v
	}
	if o.DestDir != "" {
		v, err := ValidDir(o.DestDir)
		if err != nil {
			return err
		}
		o.DestDir = v
	}
	if o.Filename != "" {
		v, err := ValidFilename(o.Filename)
		if err != nil {
			return err
		}
		o.Filename = v
	}
	return nil
}

func (o *Options) prepare(video *Video) (PreparedBase, error) {
	if video == nil {
		return PreparedBase{}, fmt.Errorf("%w: video is nil", ErrPreparation)
	}

	start := o.StartTime
	if start == "" {
		start = "0"
	}
	stop := o.StopTime
	if stop == "" {
		stop = formatSeconds(video.DurationSeconds)
	}
	fps := video.FPS
	if o.FPS != nil {
		fps = *o.FPS
	}

	r, err := NewExtractionRange(video.DurationSeconds, video.FrameCount, start, stop, fps)
	if err != nil {
		return PreparedBase{}, err
	}

	return PreparedBase{
		Video:     video,
		StartTime: start,
		StopTime:  stop,
		FPS:       fps,
		Verbose:   o.Verbose,
		Overwrite: o.Overwrite,
		Range:     r,
	}, nil
}

func validSpeed(p *float64) error {
	if p == nil {
		return nil
	}
	if _, err := positiveFloat(*p); err != nil {
		return fmt.Errorf("%w: invalid speed value, got %v; speed value must be a positive number", ErrValidation, *p)
	}
	return nil
}

func validVolume(p *float64) (*float64, error) {
	if p == nil {
		return nil, nil
	}
	if math.IsNaN(*p) {
		return nil, fmt.Errorf("%w: volume expects numeric value, got %v", ErrValidation, *p)
	}
	v := clampVolume(*p)
	return &v, nil
}

func validResize(p *float64) error {
	if p == nil {
		return nil
	}
	if _, err := positiveFloat(*p); err != nil {
		return fmt.Errorf("%w: invalid resize value, got %v; resize value must be a positive number", ErrValidation, *p)
	}
	return nil
}

func validGeometry(dims *Dimensions, resize *float64, rotate *int) error {
	if dims != nil {
		if _, err := ValidDimensions(*dims); err != nil {
			return err
		}
	}
	if err := validResize(resize); err != nil {
		return err
	}
	if rotate != nil {
		if _, err := ValidRotateValue(*rotate); err != nil {
			return err
		}
	}
	return nil
}

func orFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func orInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func orString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func prepareImageEdits(video *Video, dims *Dimensions, resize *float64, rotate *int, monochrome bool) ImageEdits {
	r := orFloat(resize, 1.0)
	return ImageEdits{
		Dimensions: PrepareDimensions(video.Dimensions, dims, r),
		Resize:     r,
		Rotate:     orInt(rotate, 0),
		Monochrome: monochrome,
	}
}

func prepareMotionEdits(speed *float64, bounce, reverse bool) MotionEdits {
	return MotionEdits{
		Speed:   orFloat(speed, 1.0),
		Bounce:  bounce,
		Reverse: reverse,
	}
}

func prepareAudioEdits(volume *float64, normalize bool) AudioEdits {
	return AudioEdits{
		Volume:    orFloat(volume, 1.0),
		Normalize: normalize,
	}
}

// AudioRequest extracts the audio track
type AudioRequest struct {
	Options
	AudioFormat string   `json:"audio_format,omitempty"`
	Speed       *float64 `json:"speed,omitempty"`
	Bounce      bool     `json:"bounce"`
	Reverse     bool     `json:"reverse"`
	Volume      *float64 `json:"volume,omitempty"`
	Normalize   bool     `json:"normalize"`
}

var _ Request = (*AudioRequest)(nil)

func (r *AudioRequest) Method() Method { return MethodAudio }

func (r *AudioRequest) Validate() error {
	if err := r.Options.validate(); err != nil {
		return err
	}
	if r.AudioFormat != "" {
		v, err := ValidAudioFormat(r.AudioFormat)
		if err != nil {
			return err
		}
		r.AudioFormat = v
	}
	if err := validSpeed(r.Speed); err != nil {
		return err
	}
	v, err := validVolume(r.Volume)
	if err != nil {
		return err
	}
	r.Volume = v

	r.validated = true
	return nil
}

func (r *AudioRequest) Prepare(video *Video) (Prepared, error) {
	return r.PrepareAudio(video)
}

// PrepareAudio resolves the request against video. A video without audio is rejected.
func (r *AudioRequest) PrepareAudio(video *Video) (*PreparedAudio, error) {
	if r.needsValidation() {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	base, err := r.Options.prepare(video)
	if err != nil {
		return nil, err
	}
	if !video.HasAudio {
		return nil, fmt.Errorf("%w: %s", ErrNoAudio, video.Path)
	}

	p := &PreparedAudio{
		PreparedBase: base,
		AudioFormat:  orString(r.AudioFormat, "mp3"),
		MotionEdits:  prepareMotionEdits(r.Speed, r.Bounce, r.Reverse),
		AudioEdits:   prepareAudioEdits(r.Volume, r.Normalize),
	}
	p.DestPath, err = PrepareDestpath(video.Path, r.Filename, r.DestDir, p.AudioFormat, p.Overwrite)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ClipRequest extracts a short video clip
type ClipRequest struct {
	Options
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	Resize     *float64    `json:"resize,omitempty"`
	Rotate     *int        `json:"rotate,omitempty"`
	Speed      *float64    `json:"speed,omitempty"`
	Bounce     bool        `json:"bounce"`
	Reverse    bool        `json:"reverse"`
	Monochrome bool        `json:"monochrome"`
	Volume     *float64    `json:"volume,omitempty"`
	Normalize  bool        `json:"normalize"`
}

var _ Request = (*ClipRequest)(nil)

func (r *ClipRequest) Method() Method { return MethodClip }

func (r *ClipRequest) Validate() error {
	if err := r.Options.validate(); err != nil {
		return err
	}
	if err := validGeometry(r.Dimensions, r.Resize, r.Rotate); err != nil {
		return err
	}
	if err := validSpeed(r.Speed); err != nil {
		return err
	}
	v, err := validVolume(r.Volume)
	if err != nil {
		return err
	}
	r.Volume = v

	r.validated = true
	return nil
}

func (r *ClipRequest) Prepare(video *Video) (Prepared, error) {
	return r.PrepareClip(video)
}

// PrepareClip resolves the request against video. Clips are always written as mp4.
func (r *ClipRequest) PrepareClip(video *Video) (*PreparedClip, error) {
	if r.needsValidation() {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	base, err := r.Options.prepare(video)
	if err != nil {
		return nil, err
	}

	p := &PreparedClip{
		PreparedBase: base,
		ImageEdits:   prepareImageEdits(video, r.Dimensions, r.Resize, r.Rotate, r.Monochrome),
		MotionEdits:  prepareMotionEdits(r.Speed, r.Bounce, r.Reverse),
		AudioEdits:   prepareAudioEdits(r.Volume, r.Normalize),
	}
	p.DestPath, err = PrepareDestpath(video.Path, r.Filename, r.DestDir, "mp4", p.Overwrite)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FramesRequest extracts individual frames as images
type FramesRequest struct {
	Options
	ImageFormat string      `json:"image_format,omitempty"`
	CaptureRate *int        `json:"capture_rate,omitempty"`
	Dimensions  *Dimensions `json:"dimensions,omitempty"`
	Resize      *float64    `json:"resize,omitempty"`
	Rotate      *int        `json:"rotate,omitempty"`
	Monochrome  bool        `json:"monochrome"`
}

var _ Request = (*FramesRequest)(nil)

func (r *FramesRequest) Method() Method { return MethodFrames }

func (r *FramesRequest) Validate() error {
	if err := r.Options.validate(); err != nil {
		return err
	}
	if r.ImageFormat != "" {
		v, err := ValidImageFormat(r.ImageFormat)
		if err != nil {
			return err
		}
		r.ImageFormat = v
	}
	if r.CaptureRate != nil && *r.CaptureRate <= 0 {
		return fmt.Errorf("%w: invalid capture rate, got %d; capture rate must be a positive integer", ErrValidation, *r.CaptureRate)
	}
	if err := validGeometry(r.Dimensions, r.Resize, r.Rotate); err != nil {
		return err
	}

	r.validated = true
	return nil
}

func (r *FramesRequest) Prepare(video *Video) (Prepared, error) {
	return r.PrepareFrames(video)
}

// PrepareFrames resolves the request against video, including the output
// directory and the number of images the range yields
func (r *FramesRequest) PrepareFrames(video *Video) (*PreparedFrames, error) {
	if r.needsValidation() {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	base, err := r.Options.prepare(video)
	if err != nil {
		return nil, err
	}

	p := &PreparedFrames{
		PreparedBase: base,
		ImageEdits:   prepareImageEdits(video, r.Dimensions, r.Resize, r.Rotate, r.Monochrome),
		ImageFormat:  orString(r.ImageFormat, "jpg"),
		CaptureRate:  orInt(r.CaptureRate, 1),
		Filename:     orString(r.Filename, video.Stem()),
	}
	p.DestPath, err = PrepareFramesDestdir(video.Path, r.DestDir, p.Overwrite)
	if err != nil {
		return nil, err
	}
	p.ImagesExpected, err = PrepareImagesExpected(p.Range.StartFrame, p.Range.StopFrame, p.CaptureRate)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GifRequest extracts an animated gif
type GifRequest struct {
	Options
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	Resize     *float64    `json:"resize,omitempty"`
	Rotate     *int        `json:"rotate,omitempty"`
	Speed      *float64    `json:"speed,omitempty"`
	Bounce     bool        `json:"bounce"`
	Reverse    bool        `json:"reverse"`
	Monochrome bool        `json:"monochrome"`
}

var _ Request = (*GifRequest)(nil)

func (r *GifRequest) Method() Method { return MethodGif }

func (r *GifRequest) Validate() error {
	if err := r.Options.validate(); err != nil {
		return err
	}
	if err := validGeometry(r.Dimensions, r.Resize, r.Rotate); err != nil {
		return err
	}
	if err := validSpeed(r.Speed); err != nil {
		return err
	}

	r.validated = true
	return nil
}

func (r *GifRequest) Prepare(video *Video) (Prepared, error) {
	return r.PrepareGif(video)
}

// PrepareGif resolves the request against video
func (r *GifRequest) PrepareGif(video *Video) (*PreparedGif, error) {
	if r.needsValidation() {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	base, err := r.Options.prepare(video)
	if err != nil {
		return nil, err
	}

	p := &PreparedGif{
		PreparedBase: base,
		ImageEdits:   prepareImageEdits(video, r.Dimensions, r.Resize, r.Rotate, r.Monochrome),
		MotionEdits:  prepareMotionEdits(r.Speed, r.Bounce, r.Reverse),
	}
	p.DestPath, err = PrepareDestpath(video.Path, r.Filename, r.DestDir, "gif", p.Overwrite)
	if err != nil {
		return nil, err
	}
	return p, nil
}
