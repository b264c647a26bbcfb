package extraction

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Timestamp represents a position in a video as hours, minutes and seconds
type Timestamp struct {
	Hours   int
	Minutes int
	Seconds int
}

// ParseTimestamp parses a playback-style timestamp (M:SS, MM:SS, H:MM:SS or HH:MM:SS).
// Fractional seconds are dropped.
func ParseTimestamp(s string) (Timestamp, error) {
	ts, err := ValidTimestamp(s)
	if err != nil {
		return Timestamp{}, err
	}

	parts := strings.Split(ts, ":")
	values := make([]int, 3)
	offset := 3 - len(parts)
	for i, p := range parts {
		values[offset+i], _ = strconv.Atoi(p)
	}

	return Timestamp{
		Hours:   values[0],
		Minutes: values[1],
		Seconds: values[2],
	}, nil
}

// TimestampFromSeconds converts whole seconds into a Timestamp
func TimestampFromSeconds(seconds int) Timestamp {
	if seconds < 0 {
		seconds = 0
	}
	return Timestamp{
		Hours:   seconds / 3600,
		Minutes: (seconds % 3600) / 60,
		Seconds: seconds % 60,
	}
}

// String returns the timestamp in HH:MM:SS format
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// TotalSeconds returns the timestamp as total seconds
func (t Timestamp) TotalSeconds() int {
	return t.Hours*3600 + t.Minutes*60 + t.Seconds
}

// IsZero returns true if the timestamp is 00:00:00
func (t Timestamp) IsZero() bool {
	return t.Hours == 0 && t.Minutes == 0 && t.Seconds == 0
}

// Before returns true if t is before other
func (t Timestamp) Before(other Timestamp) bool {
	return t.TotalSeconds() < other.TotalSeconds()
}

// After returns true if t is after other
func (t Timestamp) After(other Timestamp) bool {
	return t.TotalSeconds() > other.TotalSeconds()
}

// TimestampToSeconds sums the colon-separated parts of a timestamp. It does not
// validate; pass the output of ValidTimestamp.
func TimestampToSeconds(ts string) float64 {
	parts := strings.Split(truncateFraction(ts), ":")
	var total float64
	for exp, i := 0, len(parts)-1; i >= 0; exp, i = exp+1, i-1 {
		v, _ := strconv.ParseFloat(parts[i], 64)
		total += v * math.Pow(60, float64(exp))
	}
	return total
}

// SecondsToTimestamp renders whole seconds as H:MM:SS. Zero and negative values give "0:00:00".
func SecondsToTimestamp(seconds float64) string {
	if seconds <= 0 {
		return "0:00:00"
	}
	t := TimestampFromSeconds(int(seconds))
	return fmt.Sprintf("%d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// FormatDuration renders a non-negative duration as HH:MM:SS
func FormatDuration(d time.Duration) (string, error) {
	if d < 0 {
		return "", fmt.Errorf("invalid duration: must be non-negative: %s", d)
	}
	return TimestampFromSeconds(int(d.Seconds())).String(), nil
}

// CalculateDuration returns the playing time of frameCount frames at fps
func CalculateDuration(frameCount int, fps float64) (time.Duration, error) {
	if frameCount <= 0 {
		return 0, fmt.Errorf("%w: expected positive integer, got %d", ErrValidation, frameCount)
	}
	if _, err := positiveFloat(fps); err != nil {
		return 0, err
	}
	return time.Duration(float64(frameCount) / fps * float64(time.Second)), nil
}

// Seconds formats a number of seconds as a start or stop time value
func Seconds(s float64) string {
	return formatSeconds(s)
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// timeToSeconds resolves a validated time value (seconds or timestamp) to seconds
func timeToSeconds(v string) float64 {
	if f, ok := parseNumber(v); ok {
		return f
	}
	return TimestampToSeconds(v)
}
