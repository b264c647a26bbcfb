package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"videoxt/domain/extraction"
)

// DefaultProbeTimeout bounds a single ffprobe call
const DefaultProbeTimeout = 10 * time.Second

// ProbeFunc returns ffprobe's JSON description of a file
type ProbeFunc func(path string, timeout time.Duration) (string, error)

func defaultProbe(path string, timeout time.Duration) (string, error) {
	return ffmpeg.ProbeWithTimeout(path, timeout, ffmpeg.KwArgs{})
}

// Prober implements extraction.Prober with ffprobe
type Prober struct {
	probe   ProbeFunc
	timeout time.Duration
	logger  *zap.Logger
}

// ProberOption is a functional option for configuring Prober
type ProberOption func(*Prober)

// WithProbeFunc replaces the ffprobe call (for testing)
func WithProbeFunc(fn ProbeFunc) ProberOption {
	return func(p *Prober) {
		p.probe = fn
	}
}

// WithProbeTimeout bounds each ffprobe call
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithProberLogger sets the logger
func WithProberLogger(logger *zap.Logger) ProberOption {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProber creates a new ffprobe-based prober
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		probe:   defaultProbe,
		timeout: DefaultProbeTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	Duration     string `json:"duration"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe implements extraction.Prober
func (p *Prober) Probe(ctx context.Context, path string) (*extraction.Properties, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	raw, err := p.probe(path, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe could not open %s: %v", extraction.ErrClosedCapture, path, err)
	}

	props, err := parseProbe(raw)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("probed video",
		zap.String("path", path),
		zap.String("dimensions", props.Dimensions.String()),
		zap.Float64("fps", props.FPS),
		zap.Int("frame_count", props.FrameCount),
		zap.Bool("has_audio", props.HasAudio),
	)
	return props, nil
}

// parseProbe reads the first video stream's geometry, rate and frame count and
// whether any audio stream is present
func parseProbe(raw string) (*extraction.Properties, error) {
	var out probeOutput
	if err := sonic.UnmarshalString(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decode ffprobe output")
	}

	var video *probeStream
	props := &extraction.Properties{}
	for i := range out.Streams {
		s := &out.Streams[i]
		switch s.CodecType {
		case "video":
			if video == nil {
				video = s
			}
		case "audio":
			props.HasAudio = true
		}
	}
	if video == nil {
		return nil, fmt.Errorf("%w: no video stream found", extraction.ErrClosedCapture)
	}

	props.Dimensions = extraction.Dimensions{Width: video.Width, Height: video.Height}

	props.FPS = parseRate(video.RFrameRate)
	if props.FPS <= 0 {
		props.FPS = parseRate(video.AvgFrameRate)
	}

	if n, err := strconv.Atoi(strings.TrimSpace(video.NbFrames)); err == nil && n > 0 {
		props.FrameCount = n
	} else {
		duration := parseFloat(video.Duration)
		if duration <= 0 {
			duration = parseFloat(out.Format.Duration)
		}
		props.FrameCount = int(math.Round(duration * props.FPS))
	}

	return props, nil
}

// parseRate reads ffprobe rates such as "30000/1001" or "25"
func parseRate(s string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n := parseFloat(num)
	if !found {
		return n
	}
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Ensure Prober implements extraction.Prober
var _ extraction.Prober = (*Prober)(nil)
