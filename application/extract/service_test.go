package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"videoxt/domain/extraction"
)

type mockProber struct {
	props *extraction.Properties
	err   error
}

func (m *mockProber) Probe(ctx context.Context, path string) (*extraction.Properties, error) {
	return m.props, m.err
}

type mockEditor struct {
	audioErr error
	clipErr  error
	gifErr   error
	audio    *extraction.PreparedAudio
	clip     *extraction.PreparedClip
	gif      *extraction.PreparedGif
	touch    bool
}

func (m *mockEditor) write(path string) {
	if m.touch {
		_ = os.WriteFile(path, []byte("out"), 0644)
	}
}

func (m *mockEditor) ExtractAudio(ctx context.Context, p *extraction.PreparedAudio) error {
	m.audio = p
	if m.audioErr == nil {
		m.write(p.DestPath)
	}
	return m.audioErr
}

func (m *mockEditor) ExtractClip(ctx context.Context, p *extraction.PreparedClip) error {
	m.clip = p
	if m.clipErr == nil {
		m.write(p.DestPath)
	}
	return m.clipErr
}

func (m *mockEditor) ExtractGif(ctx context.Context, p *extraction.PreparedGif) error {
	m.gif = p
	if m.gifErr == nil {
		m.write(p.DestPath)
	}
	return m.gifErr
}

type mockFrameWriter struct {
	frames   []int
	paths    []string
	endAt    int
	failAt   int
	cancel   context.CancelFunc
	cancelAt int
}

func (m *mockFrameWriter) WriteFrame(ctx context.Context, p *extraction.PreparedFrames, frame int, dst string) error {
	if m.endAt > 0 && frame >= m.endAt {
		return fmt.Errorf("%w: frame %d", extraction.ErrFrameRead, frame)
	}
	if m.failAt > 0 && frame == m.failAt {
		return fmt.Errorf("%w: disk full", extraction.ErrFrameWrite)
	}
	m.frames = append(m.frames, frame)
	m.paths = append(m.paths, dst)
	if m.cancel != nil && len(m.frames) == m.cancelAt {
		m.cancel()
	}
	return nil
}

type mockProgress struct {
	total    int
	advanced int
	finished bool
}

func (m *mockProgress) Start(total int) { m.total = total }
func (m *mockProgress) Advance()        { m.advanced++ }
func (m *mockProgress) Finish()         { m.finished = true }

func hdProperties() *extraction.Properties {
	return &extraction.Properties{
		Dimensions: extraction.Dimensions{Width: 1920, Height: 1080},
		FPS:        30,
		FrameCount: 600,
		HasAudio:   true,
	}
}

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fixedClock() func() time.Time {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		ts = ts.Add(1500 * time.Millisecond)
		return ts
	}
}

func TestService_ExecuteMediaMethods(t *testing.T) {
	tests := []struct {
		name     string
		method   extraction.Method
		req      extraction.Request
		editor   *mockEditor
		wantOK   bool
		wantMsg  string
		wantDest string
	}{
		{
			name:     "audio defaults",
			method:   extraction.MethodAudio,
			editor:   &mockEditor{touch: true},
			wantOK:   true,
			wantMsg:  "Extraction successful.",
			wantDest: "video.mp3",
		},
		{
			name:     "clip with request",
			method:   extraction.MethodClip,
			req:      &extraction.ClipRequest{Options: extraction.Options{StopTime: "5"}},
			editor:   &mockEditor{touch: true},
			wantOK:   true,
			wantMsg:  "Extraction successful.",
			wantDest: "video_vxt.mp4",
		},
		{
			name:     "gif",
			method:   extraction.MethodGif,
			req:      &extraction.GifRequest{Options: extraction.Options{Filename: "loop"}},
			editor:   &mockEditor{touch: true},
			wantOK:   true,
			wantMsg:  "Extraction successful.",
			wantDest: "loop.gif",
		},
		{
			name:    "editor failure",
			method:  extraction.MethodAudio,
			editor:  &mockEditor{audioErr: fmt.Errorf("%w: exit status 1", extraction.ErrAudioWrite)},
			wantMsg: "Extraction failed: audio write failed: exit status 1",
		},
		{
			name:    "editor cancelled",
			method:  extraction.MethodGif,
			editor:  &mockEditor{gifErr: context.Canceled},
			wantMsg: "Extraction cancelled.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			video := writeVideo(t)
			svc := NewService(&mockProber{props: hdProperties()}, tt.editor, &mockFrameWriter{}, WithClock(fixedClock()))

			result, err := svc.Execute(context.Background(), tt.method, video, tt.req, ExecuteOptions{})
			if err != nil {
				t.Fatalf("Execute() unexpected error: %v", err)
			}

			if result.Success != tt.wantOK {
				t.Errorf("Success = %v, want %v", result.Success, tt.wantOK)
			}
			if result.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", result.Message, tt.wantMsg)
			}
			if result.Method != tt.method {
				t.Errorf("Method = %s, want %s", result.Method, tt.method)
			}
			if result.ElapsedTime != "1.5s" {
				t.Errorf("ElapsedTime = %q, want 1.5s", result.ElapsedTime)
			}
			if tt.wantDest == "" {
				if result.DestPath != "" {
					t.Errorf("DestPath = %q, want empty for missing output", result.DestPath)
				}
			} else if filepath.Base(result.DestPath) != tt.wantDest {
				t.Errorf("DestPath = %q, want %q", result.DestPath, tt.wantDest)
			}
		})
	}
}

func TestService_ExecuteErrors(t *testing.T) {
	video := writeVideo(t)

	tests := []struct {
		name   string
		method extraction.Method
		path   string
		req    extraction.Request
		props  *extraction.Properties
		wantIs error
	}{
		{
			name:   "missing video",
			method: extraction.MethodAudio,
			path:   filepath.Join(t.TempDir(), "missing.mp4"),
			props:  hdProperties(),
			wantIs: extraction.ErrValidation,
		},
		{
			name:   "no audio track",
			method: extraction.MethodAudio,
			path:   video,
			props: &extraction.Properties{
				Dimensions: extraction.Dimensions{Width: 10, Height: 10},
				FPS:        30,
				FrameCount: 600,
			},
			wantIs: extraction.ErrNoAudio,
		},
		{
			name:   "invalid option",
			method: extraction.MethodFrames,
			path:   video,
			req:    &extraction.FramesRequest{ImageFormat: "gif"},
			props:  hdProperties(),
			wantIs: extraction.ErrValidation,
		},
		{
			name:   "request for another method",
			method: extraction.MethodClip,
			path:   video,
			req:    &extraction.GifRequest{},
			props:  hdProperties(),
			wantIs: extraction.ErrInvalidMethod,
		},
		{
			name:   "unknown method",
			method: extraction.Method("video"),
			path:   video,
			props:  hdProperties(),
			wantIs: extraction.ErrInvalidMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&mockProber{props: tt.props}, &mockEditor{}, &mockFrameWriter{})

			result, err := svc.Execute(context.Background(), tt.method, tt.path, tt.req, ExecuteOptions{})
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("Execute() error = %v, want %v", err, tt.wantIs)
			}
			if result != nil {
				t.Errorf("Execute() result = %+v, want nil", result)
			}
		})
	}
}

func TestService_ExecuteSkipValidation(t *testing.T) {
	video := writeVideo(t)
	editor := &mockEditor{}
	svc := NewService(&mockProber{props: hdProperties()}, editor, &mockFrameWriter{})

	req := &extraction.ClipRequest{Rotate: extraction.Int(45)}
	if _, err := svc.Execute(context.Background(), extraction.MethodClip, video, req, ExecuteOptions{SkipValidation: true}); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if editor.clip == nil || editor.clip.Rotate != 45 {
		t.Errorf("editor received %+v, want rotate 45", editor.clip)
	}
}

func TestService_ExtractFrames(t *testing.T) {
	tests := []struct {
		name       string
		req        *extraction.FramesRequest
		writer     *mockFrameWriter
		wantFrames []int
		wantOK     bool
		wantMsg    string
	}{
		{
			name:       "every 150th frame",
			req:        &extraction.FramesRequest{CaptureRate: extraction.Int(150)},
			writer:     &mockFrameWriter{},
			wantFrames: []int{0, 150, 300, 450},
			wantOK:     true,
			wantMsg:    "Extraction successful.",
		},
		{
			name: "range with rate",
			req: &extraction.FramesRequest{
				Options:     extraction.Options{StartTime: "1", StopTime: "2"},
				CaptureRate: extraction.Int(10),
			},
			writer:     &mockFrameWriter{},
			wantFrames: []int{30, 40, 50},
			wantOK:     true,
			wantMsg:    "Extraction successful.",
		},
		{
			name:       "stream ends early",
			req:        &extraction.FramesRequest{CaptureRate: extraction.Int(100)},
			writer:     &mockFrameWriter{endAt: 250},
			wantFrames: []int{0, 100, 200},
			wantOK:     true,
			wantMsg:    "Extraction successful.",
		},
		{
			name:       "write failure",
			req:        &extraction.FramesRequest{CaptureRate: extraction.Int(100)},
			writer:     &mockFrameWriter{failAt: 200},
			wantFrames: []int{0, 100},
			wantMsg:    "Extraction failed: frame write failed: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			video := writeVideo(t)
			progress := &mockProgress{}
			svc := NewService(&mockProber{props: hdProperties()}, &mockEditor{}, tt.writer, WithProgress(progress))

			result, err := svc.ExtractFrames(context.Background(), video, tt.req)
			if err != nil {
				t.Fatalf("ExtractFrames() unexpected error: %v", err)
			}

			if result.Success != tt.wantOK || result.Message != tt.wantMsg {
				t.Errorf("result = %v %q, want %v %q", result.Success, result.Message, tt.wantOK, tt.wantMsg)
			}
			if fmt.Sprint(tt.writer.frames) != fmt.Sprint(tt.wantFrames) {
				t.Errorf("frames = %v, want %v", tt.writer.frames, tt.wantFrames)
			}
			if progress.advanced != len(tt.wantFrames) || !progress.finished {
				t.Errorf("progress = %+v, want %d advances and finished", progress, len(tt.wantFrames))
			}
			if result.DestPath != video+"_frames" {
				t.Errorf("DestPath = %q, want %q", result.DestPath, video+"_frames")
			}
			if len(tt.writer.paths) > 0 && tt.writer.paths[0] != filepath.Join(video+"_frames", fmt.Sprintf("video_%d.jpg", tt.wantFrames[0])) {
				t.Errorf("first image path = %q", tt.writer.paths[0])
			}
		})
	}
}

func TestService_ExtractFramesCancelled(t *testing.T) {
	video := writeVideo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := &mockFrameWriter{cancel: cancel, cancelAt: 2}
	svc := NewService(&mockProber{props: hdProperties()}, &mockEditor{}, writer)

	result, err := svc.ExtractFrames(ctx, video, &extraction.FramesRequest{CaptureRate: extraction.Int(30)})
	if err != nil {
		t.Fatalf("ExtractFrames() unexpected error: %v", err)
	}
	if result.Success || result.Message != "Extraction cancelled." {
		t.Errorf("result = %v %q, want cancelled", result.Success, result.Message)
	}
	if len(writer.frames) != 2 {
		t.Errorf("wrote %d frames, want 2", len(writer.frames))
	}
}

func TestService_Extract(t *testing.T) {
	video := writeVideo(t)
	editor := &mockEditor{touch: true}
	svc := NewService(&mockProber{props: hdProperties()}, editor, &mockFrameWriter{})

	result, err := svc.Extract(context.Background(), "AUDIO", video, nil)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if !result.Success || editor.audio == nil {
		t.Errorf("Extract() result = %+v", result)
	}
	if result.ID.String() == "" {
		t.Error("result ID is empty")
	}

	if _, err := svc.Extract(context.Background(), "mp4", video, nil); !errors.Is(err, extraction.ErrInvalidMethod) {
		t.Errorf("Extract(mp4) error = %v, want ErrInvalidMethod", err)
	}
}

func TestService_VerboseOutput(t *testing.T) {
	video := writeVideo(t)
	var out bytes.Buffer
	svc := NewService(&mockProber{props: hdProperties()}, &mockEditor{touch: true}, &mockFrameWriter{}, WithOutput(&out))

	req := &extraction.AudioRequest{Options: extraction.Options{Verbose: true}}
	if _, err := svc.ExtractAudio(context.Background(), video, req); err != nil {
		t.Fatalf("ExtractAudio() unexpected error: %v", err)
	}

	got := out.String()
	for _, want := range []string{`"audio_format": "mp3"`, `"extraction_range"`, `"message": "Extraction successful."`, `"elapsed_time"`} {
		if !strings.Contains(got, want) {
			t.Errorf("verbose output missing %s:\n%s", want, got)
		}
	}

	out.Reset()
	if _, err := svc.ExtractAudio(context.Background(), video, nil); err != nil {
		t.Fatalf("ExtractAudio() unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("non-verbose run printed %q", out.String())
	}
}
