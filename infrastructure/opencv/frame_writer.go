//go:build opencv

package opencv

import (
	"context"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"videoxt/domain/extraction"
)

// Available reports whether the OpenCV frame writer was compiled in
const Available = true

// FrameWriter implements extraction.FrameWriter by reading frames from a
// single OpenCV capture kept open across calls
type FrameWriter struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
	path    string
	logger  *zap.Logger
}

// NewFrameWriter creates a GoCV-backed frame writer. Call Close when done.
func NewFrameWriter(opts ...Option) *FrameWriter {
	s := newSettings(opts)
	return &FrameWriter{logger: s.logger}
}

// WriteFrame implements extraction.FrameWriter
func (w *FrameWriter) WriteFrame(ctx context.Context, p *extraction.PreparedFrames, frame int, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	capture, err := w.open(p.Video.Path)
	if err != nil {
		return err
	}

	capture.Set(gocv.VideoCapturePosFrames, float64(frame))
	if pos := int(capture.Get(gocv.VideoCapturePosFrames)); pos != frame {
		w.logger.Debug("capture position differs", zap.Int("want", frame), zap.Int("got", pos))
		if err := checkSeek(frame, pos); err != nil {
			return err
		}
	}

	img := gocv.NewMat()
	defer img.Close()
	if ok := capture.Read(&img); !ok || img.Empty() {
		return fmt.Errorf("%w: frame %d", extraction.ErrFrameRead, frame)
	}

	edited := applyImageEdits(img, p.ImageEdits, p.Video.Dimensions)
	defer edited.Close()

	if ok := gocv.IMWrite(dst, edited); !ok {
		return fmt.Errorf("%w: %s", extraction.ErrFrameWrite, dst)
	}
	return nil
}

// Close releases the open capture
func (w *FrameWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.capture != nil {
		w.capture.Close()
		w.capture = nil
		w.path = ""
	}
}

func (w *FrameWriter) open(path string) (*gocv.VideoCapture, error) {
	if w.capture != nil && w.path == path {
		return w.capture, nil
	}
	if w.capture != nil {
		w.capture.Close()
		w.capture = nil
	}

	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", extraction.ErrClosedCapture, path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s", extraction.ErrClosedCapture, path)
	}

	w.capture = capture
	w.path = path
	return capture, nil
}

// applyImageEdits resizes, rotates clockwise and converts to grayscale, in
// that order. The caller owns the returned Mat.
func applyImageEdits(src gocv.Mat, e extraction.ImageEdits, source extraction.Dimensions) gocv.Mat {
	out := src.Clone()

	if e.Resized(source) {
		resized := gocv.NewMat()
		gocv.Resize(out, &resized, image.Pt(e.Dimensions.Width, e.Dimensions.Height), 0, 0, gocv.InterpolationArea)
		out.Close()
		out = resized
	}

	if code, ok := rotations[e.Rotate]; ok {
		rotated := gocv.NewMat()
		gocv.Rotate(out, &rotated, code)
		out.Close()
		out = rotated
	}

	if e.Monochrome {
		gray := gocv.NewMat()
		gocv.CvtColor(out, &gray, gocv.ColorBGRToGray)
		out.Close()
		out = gray
	}

	return out
}

var rotations = map[int]gocv.RotateFlag{
	90:  gocv.Rotate90Clockwise,
	180: gocv.Rotate180Clockwise,
	270: gocv.Rotate90CounterClockwise,
}

// Ensure FrameWriter implements extraction.FrameWriter
var _ extraction.FrameWriter = (*FrameWriter)(nil)
