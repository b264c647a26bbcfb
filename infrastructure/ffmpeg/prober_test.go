package ffmpeg

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"videoxt/domain/extraction"
)

const ntscProbe = `{
  "streams": [
    {"codec_type": "video", "width": 1280, "height": 720, "r_frame_rate": "30000/1001", "avg_frame_rate": "30000/1001", "nb_frames": "300", "duration": "10.010000"},
    {"codec_type": "audio", "duration": "10.000000"}
  ],
  "format": {"duration": "10.010000"}
}`

const webmProbe = `{
  "streams": [
    {"codec_type": "video", "width": 640, "height": 360, "r_frame_rate": "0/0", "avg_frame_rate": "25/1"}
  ],
  "format": {"duration": "4.000000"}
}`

const audioOnlyProbe = `{"streams": [{"codec_type": "audio"}], "format": {"duration": "3.0"}}`

func TestParseProbe(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      *extraction.Properties
		wantErrIs error
		wantErr   bool
	}{
		{
			name: "ntsc rate with frame count",
			raw:  ntscProbe,
			want: &extraction.Properties{
				Dimensions: extraction.Dimensions{Width: 1280, Height: 720},
				FPS:        30000.0 / 1001.0,
				FrameCount: 300,
				HasAudio:   true,
			},
		},
		{
			name: "frame count from format duration",
			raw:  webmProbe,
			want: &extraction.Properties{
				Dimensions: extraction.Dimensions{Width: 640, Height: 360},
				FPS:        25,
				FrameCount: 100,
			},
		},
		{
			name:      "no video stream",
			raw:       audioOnlyProbe,
			wantErrIs: extraction.ErrClosedCapture,
		},
		{
			name:    "invalid json",
			raw:     "not json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbe(tt.raw)

			if tt.wantErrIs != nil || tt.wantErr {
				if err == nil {
					t.Fatal("parseProbe() expected error, got nil")
				}
				if tt.wantErrIs != nil && !errors.Is(err, tt.wantErrIs) {
					t.Errorf("parseProbe() error = %v, want %v", err, tt.wantErrIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProbe() unexpected error: %v", err)
			}

			if got.Dimensions != tt.want.Dimensions {
				t.Errorf("Dimensions = %v, want %v", got.Dimensions, tt.want.Dimensions)
			}
			if math.Abs(got.FPS-tt.want.FPS) > 1e-9 {
				t.Errorf("FPS = %v, want %v", got.FPS, tt.want.FPS)
			}
			if got.FrameCount != tt.want.FrameCount {
				t.Errorf("FrameCount = %d, want %d", got.FrameCount, tt.want.FrameCount)
			}
			if got.HasAudio != tt.want.HasAudio {
				t.Errorf("HasAudio = %v, want %v", got.HasAudio, tt.want.HasAudio)
			}
		})
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{in: "25", want: 25},
		{in: "30/1", want: 30},
		{in: "24000/1001", want: 24000.0 / 1001.0},
		{in: "0/0", want: 0},
		{in: "", want: 0},
		{in: "abc", want: 0},
	}

	for _, tt := range tests {
		if got := parseRate(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("parseRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProber_Probe(t *testing.T) {
	var gotPath string
	var gotTimeout time.Duration
	prober := NewProber(
		WithProbeTimeout(5*time.Second),
		WithProbeFunc(func(path string, timeout time.Duration) (string, error) {
			gotPath = path
			gotTimeout = timeout
			return ntscProbe, nil
		}),
	)

	props, err := prober.Probe(context.Background(), "/videos/in.mp4")
	if err != nil {
		t.Fatalf("Probe() unexpected error: %v", err)
	}
	if gotPath != "/videos/in.mp4" {
		t.Errorf("probed %q, want /videos/in.mp4", gotPath)
	}
	if gotTimeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", gotTimeout)
	}
	if props.FrameCount != 300 {
		t.Errorf("FrameCount = %d, want 300", props.FrameCount)
	}
}

func TestProber_ProbeErrors(t *testing.T) {
	t.Run("ffprobe failure is a closed capture", func(t *testing.T) {
		prober := NewProber(WithProbeFunc(func(string, time.Duration) (string, error) {
			return "", errors.New("exit status 1")
		}))
		_, err := prober.Probe(context.Background(), "/videos/broken.mp4")
		if !errors.Is(err, extraction.ErrClosedCapture) {
			t.Errorf("Probe() error = %v, want ErrClosedCapture", err)
		}
	})

	t.Run("cancelled context skips ffprobe", func(t *testing.T) {
		called := false
		prober := NewProber(WithProbeFunc(func(string, time.Duration) (string, error) {
			called = true
			return ntscProbe, nil
		}))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := prober.Probe(ctx, "/videos/in.mp4")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Probe() error = %v, want context.Canceled", err)
		}
		if called {
			t.Error("ffprobe ran after cancellation")
		}
	})

	t.Run("deadline shortens timeout", func(t *testing.T) {
		var gotTimeout time.Duration
		prober := NewProber(WithProbeFunc(func(_ string, timeout time.Duration) (string, error) {
			gotTimeout = timeout
			return ntscProbe, nil
		}))
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if _, err := prober.Probe(ctx, "/videos/in.mp4"); err != nil {
			t.Fatalf("Probe() unexpected error: %v", err)
		}
		if gotTimeout > time.Second || gotTimeout <= 0 {
			t.Errorf("timeout = %v, want at most 1s", gotTimeout)
		}
	})
}
