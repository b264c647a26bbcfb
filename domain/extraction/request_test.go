package extraction

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNewRequest(t *testing.T) {
	for _, m := range Methods {
		req, err := NewRequest(m)
		if err != nil {
			t.Fatalf("NewRequest(%s) unexpected error: %v", m, err)
		}
		if req.Method() != m {
			t.Errorf("NewRequest(%s).Method() = %s", m, req.Method())
		}
	}

	if _, err := NewRequest(Method("video")); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("NewRequest(video) error = %v, want ErrInvalidMethod", err)
	}
}

func TestAudioRequest_PrepareDefaults(t *testing.T) {
	video := newTestVideo(t, hdProperties())
	dir := filepath.Dir(video.Path)

	p, err := (&AudioRequest{}).PrepareAudio(video)
	if err != nil {
		t.Fatalf("PrepareAudio() unexpected error: %v", err)
	}

	if p.AudioFormat != "mp3" {
		t.Errorf("AudioFormat = %q, want mp3", p.AudioFormat)
	}
	if p.Speed != 1.0 || p.Volume != 1.0 || p.Bounce || p.Reverse || p.Normalize {
		t.Errorf("edits = %+v %+v, want defaults", p.MotionEdits, p.AudioEdits)
	}
	if p.StartTime != "0" || p.StopTime != "20" || p.FPS != 30 {
		t.Errorf("base = start %q stop %q fps %v", p.StartTime, p.StopTime, p.FPS)
	}
	if p.Range.StopFrame != 600 || p.Range.StopTimestamp != "0:00:20" {
		t.Errorf("Range = %+v", p.Range)
	}
	if want := filepath.Join(dir, "video.mp3"); p.Destination() != want {
		t.Errorf("Destination() = %q, want %q", p.Destination(), want)
	}
	if p.Method() != MethodAudio || p.IsVerbose() {
		t.Errorf("Method() = %s, IsVerbose() = %v", p.Method(), p.IsVerbose())
	}
}

func TestAudioRequest_Prepare(t *testing.T) {
	tests := []struct {
		name    string
		req     *AudioRequest
		props   *Properties
		check   func(t *testing.T, p *PreparedAudio)
		wantIs  error
		wantMsg string
	}{
		{
			name: "options carried through",
			req: &AudioRequest{
				Options:     Options{StartTime: "0:05", StopTime: "15", Filename: "song", Verbose: true},
				AudioFormat: ".WAV",
				Speed:       Float(2),
				Reverse:     true,
				Volume:      Float(0.5),
				Normalize:   true,
			},
			props: hdProperties(),
			check: func(t *testing.T, p *PreparedAudio) {
				if p.AudioFormat != "wav" || p.Speed != 2 || !p.Reverse || p.Volume != 0.5 || !p.Normalize {
					t.Errorf("prepared = %+v", p)
				}
				if p.Range.StartSecond != 5 || p.Range.StopSecond != 15 {
					t.Errorf("Range = %+v", p.Range)
				}
				if filepath.Base(p.DestPath) != "song.wav" {
					t.Errorf("DestPath = %q, want song.wav", p.DestPath)
				}
				if !p.IsVerbose() {
					t.Error("IsVerbose() = false")
				}
			},
		},
		{
			name:  "negative volume muted",
			req:   &AudioRequest{Volume: Float(-1)},
			props: hdProperties(),
			check: func(t *testing.T, p *PreparedAudio) {
				if p.Volume != 0 {
					t.Errorf("Volume = %v, want 0", p.Volume)
				}
			},
		},
		{
			name:  "fps override moves frames",
			req:   &AudioRequest{Options: Options{StartTime: "1", FPS: Float(60)}},
			props: hdProperties(),
			check: func(t *testing.T, p *PreparedAudio) {
				if p.FPS != 60 || p.Range.StartFrame != 60 {
					t.Errorf("FPS = %v, StartFrame = %d", p.FPS, p.Range.StartFrame)
				}
			},
		},
		{
			name: "video without audio",
			req:  &AudioRequest{},
			props: &Properties{
				Dimensions: Dimensions{Width: 640, Height: 480},
				FPS:        30,
				FrameCount: 600,
			},
			wantIs: ErrNoAudio,
		},
		{
			name:    "unsupported format",
			req:     &AudioRequest{AudioFormat: "flac"},
			props:   hdProperties(),
			wantIs:  ErrValidation,
			wantMsg: "unsupported audio format",
		},
		{
			name:    "zero speed",
			req:     &AudioRequest{Speed: Float(0)},
			props:   hdProperties(),
			wantIs:  ErrValidation,
			wantMsg: "invalid speed value",
		},
		{
			name:    "start after duration",
			req:     &AudioRequest{Options: Options{StartTime: "30"}},
			props:   hdProperties(),
			wantIs:  ErrValidation,
			wantMsg: ">= video duration",
		},
		{
			name:    "bad filename",
			req:     &AudioRequest{Options: Options{Filename: "a/b"}},
			props:   hdProperties(),
			wantIs:  ErrValidation,
			wantMsg: "invalid filename",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			video := newTestVideo(t, tt.props)
			p, err := tt.req.PrepareAudio(video)

			if tt.wantIs != nil {
				if !errors.Is(err, tt.wantIs) {
					t.Fatalf("PrepareAudio() error = %v, want %v", err, tt.wantIs)
				}
				if tt.wantMsg != "" && !contains(err.Error(), tt.wantMsg) {
					t.Errorf("PrepareAudio() error = %v, want containing %q", err, tt.wantMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("PrepareAudio() unexpected error: %v", err)
			}
			if !tt.req.Validated() {
				t.Error("Validated() = false after Prepare")
			}
			tt.check(t, p)
		})
	}
}

func TestRequest_ValidateNormalizes(t *testing.T) {
	req := &FramesRequest{
		Options:     Options{StartTime: "1:30.5", StopTime: "02:00.9"},
		ImageFormat: "PNG",
	}

	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if req.StartTime != "1:30" || req.StopTime != "02:00" {
		t.Errorf("times = %q, %q", req.StartTime, req.StopTime)
	}
	if req.ImageFormat != "png" {
		t.Errorf("ImageFormat = %q, want png", req.ImageFormat)
	}
	if !req.Validated() {
		t.Error("Validated() = false")
	}
}

func TestRequest_SkipValidation(t *testing.T) {
	video := newTestVideo(t, hdProperties())
	req := &GifRequest{Rotate: Int(45)}
	req.SkipValidation()

	p, err := req.PrepareGif(video)
	if err != nil {
		t.Fatalf("PrepareGif() unexpected error: %v", err)
	}
	if req.Validated() {
		t.Error("Validated() = true for skipped validation")
	}
	if p.Rotate != 45 {
		t.Errorf("Rotate = %d, want 45 passed through", p.Rotate)
	}

	if err := (&GifRequest{Rotate: Int(45)}).Validate(); err == nil {
		t.Error("Validate() expected error for rotate 45")
	}
}

func TestClipRequest_Prepare(t *testing.T) {
	video := newTestVideo(t, hdProperties())
	dir := filepath.Dir(video.Path)

	req := &ClipRequest{
		Options:    Options{StopTime: "0:10"},
		Dimensions: &Dimensions{Width: 640, Height: 480},
		Resize:     Float(0.5),
		Rotate:     Int(90),
		Bounce:     true,
		Monochrome: true,
	}
	p, err := req.PrepareClip(video)
	if err != nil {
		t.Fatalf("PrepareClip() unexpected error: %v", err)
	}

	if p.Dimensions != (Dimensions{Width: 320, Height: 240}) {
		t.Errorf("Dimensions = %v, want 320x240", p.Dimensions)
	}
	if p.Rotate != 90 || !p.Monochrome || !p.Bounce || p.Speed != 1 || p.Volume != 1 {
		t.Errorf("prepared = %+v", p)
	}
	if want := filepath.Join(dir, "video_vxt.mp4"); p.DestPath != want {
		t.Errorf("DestPath = %q, want %q", p.DestPath, want)
	}
	if p.Range.StopSecond != 10 {
		t.Errorf("StopSecond = %v, want 10", p.Range.StopSecond)
	}

	if _, err := (&ClipRequest{Dimensions: &Dimensions{Width: 0, Height: 10}}).PrepareClip(video); !errors.Is(err, ErrValidation) {
		t.Errorf("PrepareClip(0x10) error = %v, want ErrValidation", err)
	}
	if _, err := (&ClipRequest{Resize: Float(-1)}).PrepareClip(video); !errors.Is(err, ErrValidation) {
		t.Errorf("PrepareClip(resize -1) error = %v, want ErrValidation", err)
	}
}

func TestFramesRequest_Prepare(t *testing.T) {
	video := newTestVideo(t, hdProperties())

	p, err := (&FramesRequest{CaptureRate: Int(30)}).PrepareFrames(video)
	if err != nil {
		t.Fatalf("PrepareFrames() unexpected error: %v", err)
	}

	if p.ImageFormat != "jpg" || p.CaptureRate != 30 || p.Filename != "video" {
		t.Errorf("prepared = %+v", p)
	}
	if p.ImagesExpected != 20 {
		t.Errorf("ImagesExpected = %d, want 20", p.ImagesExpected)
	}
	if p.DestPath != video.Path+FramesDirTag {
		t.Errorf("DestPath = %q, want %q", p.DestPath, video.Path+FramesDirTag)
	}
	if p.Dimensions != video.Dimensions {
		t.Errorf("Dimensions = %v, want %v", p.Dimensions, video.Dimensions)
	}

	path, err := p.ImagePath(90)
	if err != nil {
		t.Fatalf("ImagePath() unexpected error: %v", err)
	}
	if want := filepath.Join(p.DestPath, "video_90.jpg"); path != want {
		t.Errorf("ImagePath(90) = %q, want %q", path, want)
	}

	if _, err := (&FramesRequest{CaptureRate: Int(0)}).PrepareFrames(video); !errors.Is(err, ErrValidation) {
		t.Errorf("PrepareFrames(rate 0) error = %v, want ErrValidation", err)
	}
}

func TestGifRequest_Prepare(t *testing.T) {
	video := newTestVideo(t, hdProperties())
	destDir := t.TempDir()

	req := &GifRequest{
		Options: Options{StartTime: "2", StopTime: "4", DestDir: destDir, Filename: "loop"},
		Resize:  Float(0.25),
		Speed:   Float(0.5),
		Reverse: true,
	}
	var r Request = req
	prepared, err := r.Prepare(video)
	if err != nil {
		t.Fatalf("Prepare() unexpected error: %v", err)
	}

	p, ok := prepared.(*PreparedGif)
	if !ok {
		t.Fatalf("Prepare() returned %T, want *PreparedGif", prepared)
	}
	if p.Dimensions != (Dimensions{Width: 480, Height: 270}) {
		t.Errorf("Dimensions = %v, want 480x270", p.Dimensions)
	}
	if p.Speed != 0.5 || !p.Reverse || p.Bounce {
		t.Errorf("motion = %+v", p.MotionEdits)
	}
	if want := filepath.Join(destDir, "loop.gif"); p.Destination() != want {
		t.Errorf("Destination() = %q, want %q", p.Destination(), want)
	}
}
