//go:build !opencv

package opencv

import (
	"context"
	"errors"

	"videoxt/domain/extraction"
)

// Available reports whether the OpenCV frame writer was compiled in
const Available = false

// ErrUnavailable is returned by the stub frame writer
var ErrUnavailable = errors.New("opencv frame writer not available: build with '-tags=opencv' and install OpenCV/GoCV")

// FrameWriter is a stub when GoCV/OpenCV is not available
type FrameWriter struct{}

// NewFrameWriter creates a stub frame writer (requires building with -tags=opencv)
func NewFrameWriter(opts ...Option) *FrameWriter {
	newSettings(opts)
	return &FrameWriter{}
}

// WriteFrame returns an error indicating OpenCV is not available
func (w *FrameWriter) WriteFrame(ctx context.Context, p *extraction.PreparedFrames, frame int, dst string) error {
	return ErrUnavailable
}

// Close is a no-op in stub mode
func (w *FrameWriter) Close() {}

// Ensure FrameWriter implements extraction.FrameWriter
var _ extraction.FrameWriter = (*FrameWriter)(nil)
