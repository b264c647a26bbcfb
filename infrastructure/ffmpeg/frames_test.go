package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"videoxt/domain/extraction"
)

func testFrames() *extraction.PreparedFrames {
	return &extraction.PreparedFrames{
		PreparedBase: testBase("/out/in.mp4_frames"),
		ImageEdits:   noImageEdits(),
		ImageFormat:  "jpg",
		CaptureRate:  1,
		Filename:     "in",
	}
}

func statOK(string) (os.FileInfo, error) { return nil, nil }

func statMissing(string) (os.FileInfo, error) { return nil, os.ErrNotExist }

func removeMissing(string) error { return os.ErrNotExist }

func imagePath(t *testing.T, p *extraction.PreparedFrames, frame int) string {
	t.Helper()
	path, err := p.ImagePath(frame)
	if err != nil {
		t.Fatalf("ImagePath(%d) unexpected error: %v", frame, err)
	}
	return path
}

func TestFrameWriter_WriteFrame(t *testing.T) {
	tests := []struct {
		name      string
		frame     int
		runErr    error
		stat      func(string) (os.FileInfo, error)
		wantErr   error
		wantRun   bool
		wantInArg []string
	}{
		{
			name:      "writes a single frame at its timestamp",
			frame:     60,
			stat:      statOK,
			wantRun:   true,
			wantInArg: []string{"-ss 2", "-i /videos/in.mp4", "-frames:v 1", "/out/in.mp4_frames/in_60.jpg"},
		},
		{
			name:    "past the end of the video",
			frame:   600,
			stat:    statOK,
			wantErr: extraction.ErrFrameRead,
		},
		{
			name:    "nothing decoded",
			frame:   599,
			stat:    statMissing,
			wantErr: extraction.ErrFrameRead,
			wantRun: true,
		},
		{
			name:    "encoder failure",
			frame:   30,
			runErr:  errors.New("exit status 1"),
			stat:    statOK,
			wantErr: extraction.ErrFrameWrite,
			wantRun: true,
		},
		{
			name:    "cancelled",
			frame:   30,
			runErr:  context.Canceled,
			stat:    statOK,
			wantErr: context.Canceled,
			wantRun: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockCommandRunner{runErr: tt.runErr}
			w := NewFrameWriter(WithCommandRunner(runner))
			w.stat = tt.stat
			w.remove = removeMissing

			p := testFrames()
			err := w.WriteFrame(context.Background(), p, tt.frame, imagePath(t, p, tt.frame))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("WriteFrame() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("WriteFrame() unexpected error: %v", err)
			}

			if (runner.calls > 0) != tt.wantRun {
				t.Errorf("runner called = %v, want %v", runner.calls > 0, tt.wantRun)
			}
			got := runner.joined()
			for _, want := range tt.wantInArg {
				if !strings.Contains(got, want) {
					t.Errorf("args missing %q: %s", want, got)
				}
			}
		})
	}
}

func TestFrameWriter_AppliesImageEdits(t *testing.T) {
	runner := &mockCommandRunner{}
	w := NewFrameWriter(WithCommandRunner(runner))
	w.stat = statOK
	w.remove = removeMissing

	p := testFrames()
	p.ImageEdits = extraction.ImageEdits{
		Dimensions: extraction.Dimensions{Width: 960, Height: 540},
		Resize:     0.5,
		Rotate:     270,
		Monochrome: true,
	}

	if err := w.WriteFrame(context.Background(), p, 0, imagePath(t, p, 0)); err != nil {
		t.Fatalf("WriteFrame() unexpected error: %v", err)
	}
	got := runner.joined()
	for _, want := range []string{"scale=960:540", "transpose=2", "hue=s=0"} {
		if !strings.Contains(got, want) {
			t.Errorf("args missing %q: %s", want, got)
		}
	}
}

func TestFrameWriter_RejectsZeroFPS(t *testing.T) {
	runner := &mockCommandRunner{}
	w := NewFrameWriter(WithCommandRunner(runner))

	p := testFrames()
	p.FPS = 0
	p.Video.FPS = 0
	err := w.WriteFrame(context.Background(), p, 0, imagePath(t, p, 0))
	if !errors.Is(err, extraction.ErrCaptureSet) {
		t.Errorf("WriteFrame() error = %v, want ErrCaptureSet", err)
	}
	if runner.calls != 0 {
		t.Errorf("runner called %d times, want 0", runner.calls)
	}
}

func TestFrameWriter_SeeksByVideoFrameWithFPSOverride(t *testing.T) {
	video := &extraction.Video{
		Path:            filepath.Join(t.TempDir(), "in.mp4"),
		Dimensions:      extraction.Dimensions{Width: 1920, Height: 1080},
		FPS:             30,
		FrameCount:      600,
		DurationSeconds: 20,
	}
	req := &extraction.FramesRequest{Options: extraction.Options{FPS: extraction.Float(60)}}

	p, err := req.PrepareFrames(video)
	if err != nil {
		t.Fatalf("PrepareFrames() unexpected error: %v", err)
	}
	if p.Range.StopFrame != 600 {
		t.Fatalf("StopFrame = %d, want 600", p.Range.StopFrame)
	}

	tests := []struct {
		name    string
		frame   int
		wantSS  string
		wantErr error
	}{
		{name: "frame 450 is 15 seconds in", frame: 450, wantSS: "-ss 15 "},
		{name: "last frame is near the end", frame: 599, wantSS: "-ss 19.96"},
		{name: "frame count is the end", frame: 600, wantErr: extraction.ErrFrameRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockCommandRunner{}
			w := NewFrameWriter(WithCommandRunner(runner))
			w.stat = statOK
			w.remove = removeMissing

			err := w.WriteFrame(context.Background(), p, tt.frame, imagePath(t, p, tt.frame))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("WriteFrame() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("WriteFrame() unexpected error: %v", err)
			}
			if got := runner.joined(); !strings.Contains(got, tt.wantSS) {
				t.Errorf("args missing %q: %s", tt.wantSS, got)
			}
		})
	}
}

func TestFrameWriter_StaleImageDoesNotHideEmptyDecode(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "in_599.jpg")
	if err := os.WriteFile(dst, []byte("old image"), 0644); err != nil {
		t.Fatal(err)
	}

	// the runner exits cleanly without writing, as ffmpeg does past the last decodable frame
	runner := &mockCommandRunner{}
	w := NewFrameWriter(WithCommandRunner(runner))

	err := w.WriteFrame(context.Background(), testFrames(), 599, dst)
	if !errors.Is(err, extraction.ErrFrameRead) {
		t.Errorf("WriteFrame() error = %v, want ErrFrameRead", err)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Errorf("stale image still at %s", dst)
	}
}

func TestFrameWriter_RemoveFailure(t *testing.T) {
	runner := &mockCommandRunner{}
	w := NewFrameWriter(WithCommandRunner(runner))
	w.remove = func(string) error { return os.ErrPermission }

	p := testFrames()
	err := w.WriteFrame(context.Background(), p, 30, imagePath(t, p, 30))
	if !errors.Is(err, extraction.ErrFrameWrite) {
		t.Errorf("WriteFrame() error = %v, want ErrFrameWrite", err)
	}
	if runner.calls != 0 {
		t.Errorf("runner called %d times, want 0", runner.calls)
	}
}
