package extraction

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Timestamp
		wantErr bool
		errMsg  string
	}{
		{
			name:  "hours minutes seconds",
			input: "01:30:45",
			want:  Timestamp{Hours: 1, Minutes: 30, Seconds: 45},
		},
		{
			name:  "single digit hours",
			input: "1:30:45",
			want:  Timestamp{Hours: 1, Minutes: 30, Seconds: 45},
		},
		{
			name:  "minutes and seconds only",
			input: "1:30",
			want:  Timestamp{Minutes: 1, Seconds: 30},
		},
		{
			name:  "fraction dropped",
			input: "0:00:59.9",
			want:  Timestamp{Seconds: 59},
		},
		{
			name:  "all zeros",
			input: "00:00:00",
			want:  Timestamp{},
		},
		{
			name:    "seconds too high",
			input:   "01:30:60",
			wantErr: true,
			errMsg:  "invalid timestamp format",
		},
		{
			name:    "wrong separator",
			input:   "01-30-45",
			wantErr: true,
			errMsg:  "invalid timestamp format",
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
			errMsg:  "timestamp string is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTimestamp(%q) expected error, got nil", tt.input)
					return
				}
				if tt.errMsg != "" && !contains(err.Error(), tt.errMsg) {
					t.Errorf("ParseTimestamp(%q) error = %v, want error containing %q", tt.input, err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Errorf("ParseTimestamp(%q) unexpected error: %v", tt.input, err)
				return
			}
			if got != tt.want {
				t.Errorf("ParseTimestamp(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimestamp_String(t *testing.T) {
	tests := []struct {
		ts   Timestamp
		want string
	}{
		{Timestamp{Hours: 1, Minutes: 30, Seconds: 45}, "01:30:45"},
		{Timestamp{}, "00:00:00"},
		{Timestamp{Hours: 10, Minutes: 5, Seconds: 3}, "10:05:03"},
	}

	for _, tt := range tests {
		if got := tt.ts.String(); got != tt.want {
			t.Errorf("Timestamp.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTimestamp_Comparisons(t *testing.T) {
	earlier := Timestamp{Minutes: 1}
	later := TimestampFromSeconds(61)

	if later.TotalSeconds() != 61 {
		t.Errorf("TotalSeconds() = %d, want 61", later.TotalSeconds())
	}
	if !earlier.Before(later) {
		t.Error("expected earlier to be before later")
	}
	if earlier.After(later) {
		t.Error("expected earlier to not be after later")
	}
	if later.Before(later) || later.After(later) {
		t.Error("expected timestamp to be neither before nor after itself")
	}
	if !(Timestamp{}).IsZero() || later.IsZero() {
		t.Error("IsZero() mismatch")
	}
	if got := TimestampFromSeconds(-10); !got.IsZero() {
		t.Errorf("TimestampFromSeconds(-10) = %+v, want zero", got)
	}
}

func TestTimestampToSeconds(t *testing.T) {
	tests := map[string]float64{
		"0:00":        0,
		"0:59":        59,
		"1:01":        61,
		"0:01:00":     60,
		"1:00:00":     3600,
		"1:01:01":     3661,
		"1:1:1":       3661,
		"61":          61,
		"61.1":        61,
		"1:01:01.1.1": 3661,
	}

	for input, want := range tests {
		if got := TimestampToSeconds(input); got != want {
			t.Errorf("TimestampToSeconds(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestSecondsToTimestamp(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{-1, "0:00:00"},
		{0, "0:00:00"},
		{0.999, "0:00:00"},
		{1, "0:00:01"},
		{59.999, "0:00:59"},
		{60, "0:01:00"},
		{61.5, "0:01:01"},
		{3600, "1:00:00"},
		{3661.999, "1:01:01"},
		{90000, "25:00:00"},
	}

	for _, tt := range tests {
		if got := SecondsToTimestamp(tt.input); got != tt.want {
			t.Errorf("SecondsToTimestamp(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	got, err := FormatDuration(90*time.Minute + 5*time.Second)
	if err != nil {
		t.Fatalf("FormatDuration() unexpected error: %v", err)
	}
	if got != "01:30:05" {
		t.Errorf("FormatDuration() = %q, want %q", got, "01:30:05")
	}

	if _, err := FormatDuration(-time.Second); err == nil {
		t.Error("FormatDuration(-1s) expected error")
	}
}

func TestCalculateDuration(t *testing.T) {
	tests := []struct {
		name       string
		frameCount int
		fps        float64
		want       time.Duration
		wantErr    bool
	}{
		{name: "twenty seconds", frameCount: 600, fps: 30, want: 20 * time.Second},
		{name: "half second", frameCount: 12, fps: 24, want: 500 * time.Millisecond},
		{name: "zero frames", frameCount: 0, fps: 30, wantErr: true},
		{name: "zero fps", frameCount: 600, fps: 0, wantErr: true},
		{name: "negative fps", frameCount: 600, fps: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateDuration(tt.frameCount, tt.fps)
			if tt.wantErr {
				if err == nil {
					t.Errorf("CalculateDuration() expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("CalculateDuration() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CalculateDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}
