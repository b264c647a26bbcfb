package extraction

// PreparedBase holds the resolved options shared by every method
type PreparedBase struct {
	Video     *Video          `json:"video"`
	StartTime string          `json:"start_time"`
	StopTime  string          `json:"stop_time"`
	FPS       float64         `json:"fps"`
	Verbose   bool            `json:"verbose"`
	Overwrite bool            `json:"overwrite"`
	Range     ExtractionRange `json:"extraction_range"`
	DestPath  string          `json:"destpath"`
}

// Destination returns the output file, or the output directory for frames
func (p *PreparedBase) Destination() string {
	return p.DestPath
}

// IsVerbose reports whether the plan and result should be printed
func (p *PreparedBase) IsVerbose() bool {
	return p.Verbose
}

// ImageEdits are applied to every output frame
type ImageEdits struct {
	Dimensions Dimensions `json:"dimensions"`
	Resize     float64    `json:"resize"`
	Rotate     int        `json:"rotate"`
	Monochrome bool       `json:"monochrome"`
}

// Resized reports whether the output size differs from the source size
func (e ImageEdits) Resized(source Dimensions) bool {
	return e.Dimensions != source
}

// MotionEdits change playback direction and speed. They apply in the order
// reverse, bounce, speed.
type MotionEdits struct {
	Speed   float64 `json:"speed"`
	Bounce  bool    `json:"bounce"`
	Reverse bool    `json:"reverse"`
}

// AudioEdits change loudness
type AudioEdits struct {
	Volume    float64 `json:"volume"`
	Normalize bool    `json:"normalize"`
}

// PreparedAudio is a resolved audio extraction
type PreparedAudio struct {
	PreparedBase
	MotionEdits
	AudioEdits
	AudioFormat string `json:"audio_format"`
}

func (p *PreparedAudio) Method() Method { return MethodAudio }

// PreparedClip is a resolved clip extraction
type PreparedClip struct {
	PreparedBase
	ImageEdits
	MotionEdits
	AudioEdits
}

func (p *PreparedClip) Method() Method { return MethodClip }

// PreparedFrames is a resolved frames extraction. DestPath is the directory
// images are written to.
type PreparedFrames struct {
	PreparedBase
	ImageEdits
	ImageFormat    string `json:"image_format"`
	CaptureRate    int    `json:"capture_rate"`
	Filename       string `json:"filename"`
	ImagesExpected int    `json:"images_expected"`
}

func (p *PreparedFrames) Method() Method { return MethodFrames }

// ImagePath returns where the image for frame is written
func (p *PreparedFrames) ImagePath(frame int) (string, error) {
	return FrameImagePath(p.DestPath, p.Filename, frame, p.ImageFormat)
}

// PreparedGif is a resolved gif extraction
type PreparedGif struct {
	PreparedBase
	ImageEdits
	MotionEdits
}

func (p *PreparedGif) Method() Method { return MethodGif }

var (
	_ Prepared = (*PreparedAudio)(nil)
	_ Prepared = (*PreparedClip)(nil)
	_ Prepared = (*PreparedFrames)(nil)
	_ Prepared = (*PreparedGif)(nil)
)
