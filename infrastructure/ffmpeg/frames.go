package ffmpeg

import (
	"context"
	"fmt"
	"os"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"videoxt/domain/extraction"
)

// FrameWriter implements extraction.FrameWriter by seeking to the frame's
// timestamp and writing a single video frame. Frame numbers index the video's
// own frames, so the seek uses the probed rate even when the request
// overrides fps.
type FrameWriter struct {
	ffmpegPath string
	runner     CommandRunner
	logger     *zap.Logger
	stat       func(string) (os.FileInfo, error)
	remove     func(string) error
}

// NewFrameWriter creates a new ffmpeg-based frame writer
func NewFrameWriter(opts ...Option) *FrameWriter {
	s := newSettings(opts)
	return &FrameWriter{
		ffmpegPath: s.ffmpegPath,
		runner:     s.runner,
		logger:     s.logger,
		stat:       os.Stat,
		remove:     os.Remove,
	}
}

// WriteFrame implements extraction.FrameWriter
func (w *FrameWriter) WriteFrame(ctx context.Context, p *extraction.PreparedFrames, frame int, dst string) error {
	fps := p.Video.FPS
	if fps <= 0 {
		fps = p.FPS
	}
	if fps <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %v", extraction.ErrCaptureSet, fps)
	}

	if p.Video.FrameCount > 0 && frame >= p.Video.FrameCount {
		return fmt.Errorf("%w: frame %d is past the end of the video", extraction.ErrFrameRead, frame)
	}
	second := float64(frame) / fps
	if second >= p.Video.DurationSeconds {
		return fmt.Errorf("%w: frame %d is past the end of the video", extraction.ErrFrameRead, frame)
	}

	// a stale image from an earlier overwrite run would hide an empty decode
	if err := w.remove(dst); err != nil && !os.IsNotExist(err) {
		return wrapWriteError(extraction.ErrFrameWrite, dst, err)
	}

	v := ffmpeg.Input(p.Video.Path, ffmpeg.KwArgs{"ss": factor(second)}).Video()
	v = applyImageEdits(v, p.ImageEdits, p.Video.Dimensions)
	stream := v.Output(dst, ffmpeg.KwArgs{"frames:v": 1})

	args := append(append([]string{}, baseArgs...), stream.OverWriteOutput().GetArgs()...)
	if err := w.runner.Run(ctx, w.ffmpegPath, args...); err != nil {
		return wrapWriteError(extraction.ErrFrameWrite, dst, err)
	}

	// ffmpeg exits cleanly without output when the seek lands past the last decodable frame
	if _, err := w.stat(dst); err != nil {
		w.logger.Debug("no frame decoded", zap.Int("frame", frame), zap.Float64("second", second))
		return fmt.Errorf("%w: frame %d", extraction.ErrFrameRead, frame)
	}
	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (w *FrameWriter) VerifyInstalled(ctx context.Context) error {
	return verifyInstalled(ctx, w.runner, w.ffmpegPath)
}

// Ensure FrameWriter implements extraction.FrameWriter
var _ extraction.FrameWriter = (*FrameWriter)(nil)
