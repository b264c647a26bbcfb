package ffmpeg

import (
	"context"
	"errors"
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"videoxt/domain/extraction"
)

// Editor implements extraction.MediaEditor by compiling ffmpeg-go stream
// graphs and running them through a CommandRunner
type Editor struct {
	ffmpegPath string
	runner     CommandRunner
	logger     *zap.Logger
}

// Option is a functional option shared by the ffmpeg adapters
type Option func(*settings)

type settings struct {
	ffmpegPath string
	runner     CommandRunner
	logger     *zap.Logger
}

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) Option {
	return func(s *settings) {
		if path != "" {
			s.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) Option {
	return func(s *settings) {
		s.runner = runner
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewEditor creates a new ffmpeg-based media editor
func NewEditor(opts ...Option) *Editor {
	s := newSettings(opts)
	return &Editor{
		ffmpegPath: s.ffmpegPath,
		runner:     s.runner,
		logger:     s.logger,
	}
}

// ExtractAudio writes the trimmed and edited audio track at 44.1 kHz
func (e *Editor) ExtractAudio(ctx context.Context, p *extraction.PreparedAudio) error {
	a := trimmedInput(&p.PreparedBase).Audio()
	a = applyAudioEdits(a, p.AudioEdits)
	a = applyAudioMotion(a, p.MotionEdits)

	kwargs := ffmpeg.KwArgs{"vn": "", "ar": 44100}
	if codec, ok := audioCodecs[p.AudioFormat]; ok {
		kwargs["c:a"] = codec
	}

	if err := e.run(ctx, a.Output(p.DestPath, kwargs)); err != nil {
		return wrapWriteError(extraction.ErrAudioWrite, p.DestPath, err)
	}
	return nil
}

// ExtractClip writes the trimmed and edited clip as h264/aac mp4
func (e *Editor) ExtractClip(ctx context.Context, p *extraction.PreparedClip) error {
	in := trimmedInput(&p.PreparedBase)

	v := applyVideoMotion(in.Video(), p.MotionEdits)
	v = applyImageEdits(v, p.ImageEdits, p.Video.Dimensions)
	streams := []*ffmpeg.Stream{v}

	kwargs := ffmpeg.KwArgs{"c:v": "libx264", "pix_fmt": "yuv420p", "movflags": "+faststart"}
	if p.Video.HasAudio {
		a := applyAudioEdits(in.Audio(), p.AudioEdits)
		a = applyAudioMotion(a, p.MotionEdits)
		streams = append(streams, a)
		kwargs["c:a"] = "aac"
	}

	if err := e.run(ctx, ffmpeg.Output(streams, p.DestPath, kwargs)); err != nil {
		return wrapWriteError(extraction.ErrClipWrite, p.DestPath, err)
	}
	return nil
}

// ExtractGif writes the trimmed and edited video stream as a looping gif
func (e *Editor) ExtractGif(ctx context.Context, p *extraction.PreparedGif) error {
	v := trimmedInput(&p.PreparedBase).Video()
	v = applyImageEdits(v, p.ImageEdits, p.Video.Dimensions)
	v = applyVideoMotion(v, p.MotionEdits)

	if err := e.run(ctx, v.Output(p.DestPath, ffmpeg.KwArgs{"loop": 0})); err != nil {
		return wrapWriteError(extraction.ErrGifWrite, p.DestPath, err)
	}
	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (e *Editor) VerifyInstalled(ctx context.Context) error {
	return verifyInstalled(ctx, e.runner, e.ffmpegPath)
}

func (e *Editor) run(ctx context.Context, stream *ffmpeg.Stream) error {
	args := append(append([]string{}, baseArgs...), stream.OverWriteOutput().GetArgs()...)
	e.logger.Debug("running ffmpeg", zap.Strings("args", args))
	return e.runner.Run(ctx, e.ffmpegPath, args...)
}

// wrapWriteError keeps cancellation distinguishable from encoder failures
func wrapWriteError(sentinel error, dest string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", sentinel, dest, err)
}

// Ensure Editor implements extraction.MediaEditor
var _ extraction.MediaEditor = (*Editor)(nil)
