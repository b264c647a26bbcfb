package extraction

import "context"

// MediaEditor renders audio, clips and gifs.
// This is a port implemented by the ffmpeg adapter.
type MediaEditor interface {
	ExtractAudio(ctx context.Context, p *PreparedAudio) error
	ExtractClip(ctx context.Context, p *PreparedClip) error
	ExtractGif(ctx context.Context, p *PreparedGif) error
}

// FrameWriter writes a single frame of the video as an image at dst.
// It returns an error wrapping ErrFrameRead when the frame is past the end of
// the stream.
type FrameWriter interface {
	WriteFrame(ctx context.Context, p *PreparedFrames, frame int, dst string) error
}

// FileChecker checks for the presence of files
type FileChecker interface {
	Exists(path string) bool
}
