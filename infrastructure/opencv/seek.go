package opencv

import (
	"fmt"

	"videoxt/domain/extraction"
)

// checkSeek interprets the capture position after seeking to frame. A
// capture that stops short has run out of stream, which ends the frame loop
// like a failed read. Landing after the frame is accepted.
func checkSeek(frame, pos int) error {
	if pos < frame {
		return fmt.Errorf("%w: frame %d is past the end of the stream (capture at %d)", extraction.ErrFrameRead, frame, pos)
	}
	return nil
}
