package extraction

import "errors"

var (
	// ErrInvalidMethod is returned when an unknown extraction method is requested
	ErrInvalidMethod = errors.New("invalid extraction method")

	// ErrClosedCapture is returned when a video capture cannot be opened or kept open
	ErrClosedCapture = errors.New("video capture closed")

	// ErrVideoValidation is returned when a video file fails a validation step
	ErrVideoValidation = errors.New("video validation failed")

	// ErrPreparation is returned when a request cannot be prepared
	ErrPreparation = errors.New("request preparation failed")

	// ErrValidation is returned when a user input fails validation
	ErrValidation = errors.New("validation failed")

	// ErrNoAudio is returned when the video has no audio but the operation needs it
	ErrNoAudio = errors.New("video does not have audio")

	// ErrFrameRead is returned when a frame cannot be read from the video
	ErrFrameRead = errors.New("frame read failed")

	// ErrCaptureSet is returned when a capture property cannot be set
	ErrCaptureSet = errors.New("video capture set failed")

	// ErrFrameWrite is returned when a frame cannot be written to disk
	ErrFrameWrite = errors.New("frame write failed")

	// ErrGifWrite is returned when a gif cannot be written
	ErrGifWrite = errors.New("gif write failed")

	// ErrAudioWrite is returned when an audio file cannot be written
	ErrAudioWrite = errors.New("audio write failed")

	// ErrClipWrite is returned when a clip cannot be written
	ErrClipWrite = errors.New("clip write failed")

	// ErrBuildImagePath is returned when a frame image path cannot be built
	ErrBuildImagePath = errors.New("build image path failed")
)
