package extraction

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// wholeNumber reports whether v is an integer that converts to int without
// overflowing. float64(math.MaxInt) rounds up to 2^63, hence the strict bound.
func wholeNumber(v float64) bool {
	return v == math.Trunc(v) && v < float64(math.MaxInt) && v > float64(math.MinInt)
}

// PositiveInt parses s as a whole number greater than zero ("42" and "42.0" are accepted)
func PositiveInt(s string) (int, error) {
	v, ok := parseNumber(s)
	if !ok {
		return 0, fmt.Errorf("%w: expected integer, got %q", ErrValidation, s)
	}
	if !wholeNumber(v) {
		return 0, fmt.Errorf("%w: expected integer, got %s", ErrValidation, s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: expected positive integer, got %s", ErrValidation, s)
	}
	return int(v), nil
}

// NonNegativeInt parses s as a whole number greater than or equal to zero
func NonNegativeInt(s string) (int, error) {
	v, ok := parseNumber(s)
	if !ok {
		return 0, fmt.Errorf("%w: expected integer, got %q", ErrValidation, s)
	}
	if !wholeNumber(v) {
		return 0, fmt.Errorf("%w: expected integer, got %s", ErrValidation, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: expected non-negative integer, got %s", ErrValidation, s)
	}
	return int(v), nil
}

// PositiveFloat parses s as a number greater than zero
func PositiveFloat(s string) (float64, error) {
	v, ok := parseNumber(s)
	if !ok {
		return 0, fmt.Errorf("%w: expected numeric value, got %q", ErrValidation, s)
	}
	return positiveFloat(v)
}

func positiveFloat(v float64) (float64, error) {
	if math.IsNaN(v) || v <= 0 {
		return 0, fmt.Errorf("%w: expected positive number, got %v", ErrValidation, v)
	}
	return v, nil
}

// NonNegativeFloat parses s as a number greater than or equal to zero
func NonNegativeFloat(s string) (float64, error) {
	v, ok := parseNumber(s)
	if !ok {
		return 0, fmt.Errorf("%w: expected numeric value, got %q", ErrValidation, s)
	}
	return nonNegativeFloat(v)
}

func nonNegativeFloat(v float64) (float64, error) {
	if math.IsNaN(v) || v < 0 {
		return 0, fmt.Errorf("%w: expected non-negative number, got %v", ErrValidation, v)
	}
	return v, nil
}

// ValidDir checks that dir exists and is a directory. The filesystem root is
// rejected; "." and ".." resolve to the working directory and its parent.
func ValidDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: directory cannot be empty", ErrValidation)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: directory not found, got %q", ErrValidation, dir)
	}

	switch filepath.Clean(dir) {
	case string(filepath.Separator):
		return "", fmt.Errorf("%w: invalid directory, got %q", ErrValidation, dir)
	case ".":
		return os.Getwd()
	case "..":
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Dir(wd), nil
	}

	return dir, nil
}

// ValidFilepath checks that path is an existing regular file. When isVideo is
// set the suffix must also be a supported video format.
func ValidFilepath(path string, isVideo bool) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: filepath cannot be empty", ErrValidation)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: file not found, got %q", ErrValidation, path)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: filepath provided is not a file, got %q", ErrValidation, path)
	}

	if isVideo {
		if _, err := ValidVideoSuffix(filepath.Ext(path)); err != nil {
			return "", err
		}
	}

	return path, nil
}

// invalidFilenameChars are rejected in output file stems
const invalidFilenameChars = `\/:*?"<>|`

// ValidFilename checks that a file stem is non-empty and portable
func ValidFilename(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: invalid filename, got %q", ErrValidation, name)
	}
	if strings.ContainsAny(name, invalidFilenameChars) {
		return "", fmt.Errorf("%w: invalid filename, got %q; filename can't contain any of the following characters: %s",
			ErrValidation, name, invalidFilenameChars)
	}
	return name, nil
}

// timestampRegex matches M:SS, MM:SS, H:MM:SS and HH:MM:SS
var timestampRegex = regexp.MustCompile(`^([0-9]|[0-5][0-9])(:[0-5][0-9]){1,2}$`)

// ValidTimestamp checks a playback-style timestamp and returns it with any
// fractional seconds removed
func ValidTimestamp(ts string) (string, error) {
	if ts == "" {
		return "", fmt.Errorf("%w: timestamp string is empty", ErrValidation)
	}

	ts = truncateFraction(ts)
	if !timestampRegex.MatchString(ts) {
		return "", fmt.Errorf("%w: invalid timestamp format, got %q; allowed: 'M:SS', 'MM:SS', 'H:MM:SS', 'HH:MM:SS'",
			ErrValidation, ts)
	}
	return ts, nil
}

func truncateFraction(ts string) string {
	if i := strings.Index(ts, "."); i >= 0 {
		return ts[:i]
	}
	return ts
}

// ValidStartTime accepts a non-negative number of seconds or a timestamp
func ValidStartTime(v string) (string, error) {
	if f, ok := parseNumber(v); ok {
		if _, err := nonNegativeFloat(f); err != nil {
			return "", invalidStartTime(v)
		}
		return formatSeconds(f), nil
	}

	ts, err := ValidTimestamp(v)
	if err != nil {
		return "", invalidStartTime(v)
	}
	return ts, nil
}

func invalidStartTime(v string) error {
	return fmt.Errorf("%w: invalid start time, got %q; start time must be a non-negative number or a properly formatted timestamp (Ex: 'HH:MM:SS')",
		ErrValidation, v)
}

// ValidStopTime accepts a positive number of seconds or a timestamp with a positive value
func ValidStopTime(v string) (string, error) {
	if f, ok := parseNumber(v); ok {
		if _, err := positiveFloat(f); err != nil {
			return "", invalidStopTime(v)
		}
		return formatSeconds(f), nil
	}

	ts, err := ValidTimestamp(v)
	if err != nil || TimestampToSeconds(ts) <= 0 {
		return "", invalidStopTime(v)
	}
	return ts, nil
}

func invalidStopTime(v string) error {
	return fmt.Errorf("%w: invalid stop time, got %q; stop time must be a positive number or a properly formatted timestamp (Ex: 'HH:MM:SS')",
		ErrValidation, v)
}

// ValidExtractionRange clamps stop to the duration and start to zero, then
// checks the range is not empty
func ValidExtractionRange(start, stop, duration float64) (float64, float64, error) {
	if stop > duration {
		stop = duration
	}
	if start < 0 {
		start = 0
	}
	if start >= duration {
		return 0, 0, fmt.Errorf("%w: start second (%v) is >= video duration (%v)", ErrValidation, start, duration)
	}
	if stop <= start {
		return 0, 0, fmt.Errorf("%w: stop second (%v) must be greater than start second (%v)", ErrValidation, stop, start)
	}
	return start, stop, nil
}

// ValidDimensions checks both sides are positive
func ValidDimensions(d Dimensions) (Dimensions, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return Dimensions{}, fmt.Errorf("%w: invalid dimensions, got %s", ErrValidation, d)
	}
	return d, nil
}

// ParseDimensions parses "WxH" (Ex: "1920x1080")
func ParseDimensions(s string) (Dimensions, error) {
	const expected = "expected format: 'WxH' (Ex: '1920x1080')"

	if s == "" {
		return Dimensions{}, fmt.Errorf("%w: empty dimensions provided; %s", ErrValidation, expected)
	}
	if strings.Count(s, "x") > 1 {
		return Dimensions{}, fmt.Errorf("%w: too many dimensions provided, got %q; %s", ErrValidation, s, expected)
	}

	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return Dimensions{}, fmt.Errorf("%w: invalid dimensions, got %q; %s", ErrValidation, s, expected)
	}

	w, errW := PositiveInt(parts[0])
	h, errH := PositiveInt(parts[1])
	if errW != nil || errH != nil {
		return Dimensions{}, fmt.Errorf("%w: invalid dimensions, got %q; dimensions must be positive integers; %s",
			ErrValidation, s, expected)
	}

	return Dimensions{Width: w, Height: h}, nil
}

// ValidRotate parses a rotation angle of 0, 90, 180 or 270
func ValidRotate(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid rotate value, got %q; allowed values: %v", ErrValidation, s, ValidRotateValues)
	}
	return ValidRotateValue(n)
}

// ValidRotateValue checks n is an allowed rotation angle
func ValidRotateValue(n int) (int, error) {
	for _, v := range ValidRotateValues {
		if n == v {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: invalid rotate value, got %d; allowed values: %v", ErrValidation, n, ValidRotateValues)
}

// ValidAudioFormat normalizes and checks an audio format ("Mp3" and ".mp3" become "mp3")
func ValidAudioFormat(format string) (string, error) {
	if !SupportedAudioFormats.Contains(format) {
		return "", fmt.Errorf("%w: unsupported audio format, got %q; supported formats: %s",
			ErrValidation, format, SupportedAudioFormats)
	}
	return normalizeFormat(format), nil
}

// ValidImageFormat normalizes and checks an image format
func ValidImageFormat(format string) (string, error) {
	if !SupportedImageFormats.Contains(format) {
		return "", fmt.Errorf("%w: invalid image format, got %q; supported image formats: %s",
			ErrValidation, format, SupportedImageFormats)
	}
	return normalizeFormat(format), nil
}

// ValidVideoSuffix normalizes and checks a video file suffix
func ValidVideoSuffix(suffix string) (string, error) {
	if !SupportedVideoFormats.Contains(suffix) {
		return "", fmt.Errorf("%w: invalid video file suffix, got %q; supported: %s",
			ErrValidation, suffix, SupportedVideoFormats)
	}
	return normalizeFormat(suffix), nil
}

// ValidVolume parses a volume factor. Negative values are treated as muted.
func ValidVolume(s string) (float64, error) {
	v, ok := parseNumber(s)
	if !ok {
		return 0, fmt.Errorf("%w: volume expects numeric value, got %q", ErrValidation, s)
	}
	return clampVolume(v), nil
}

func clampVolume(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}

// ValidFPS parses a frame rate override
func ValidFPS(s string) (float64, error) {
	v, err := PositiveFloat(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid fps, got %q; FPS must be a positive number", ErrValidation, s)
	}
	return v, nil
}

// ValidResize parses a resize factor
func ValidResize(s string) (float64, error) {
	v, err := PositiveFloat(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid resize value, got %q; resize value must be a positive number", ErrValidation, s)
	}
	return v, nil
}

// ValidSpeed parses a playback speed factor
func ValidSpeed(s string) (float64, error) {
	v, err := PositiveFloat(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid speed value, got %q; speed value must be a positive number", ErrValidation, s)
	}
	return v, nil
}

// ValidCaptureRate parses the "every Nth frame" capture rate
func ValidCaptureRate(s string) (int, error) {
	v, err := PositiveInt(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid capture rate, got %q; capture rate must be a positive integer", ErrValidation, s)
	}
	return v, nil
}
