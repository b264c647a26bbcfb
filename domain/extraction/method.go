package extraction

import (
	"fmt"
	"sort"
	"strings"
)

// Method identifies what is pulled out of a video
type Method string

const (
	// MethodAudio extracts the audio track
	MethodAudio Method = "audio"

	// MethodClip extracts a short mp4 clip
	MethodClip Method = "clip"

	// MethodFrames saves individual frames as images
	MethodFrames Method = "frames"

	// MethodGif creates an animated gif
	MethodGif Method = "gif"
)

// Methods lists every supported method in display order
var Methods = []Method{MethodAudio, MethodClip, MethodFrames, MethodGif}

// ParseMethod resolves a case-insensitive method name
func ParseMethod(s string) (Method, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, m := range Methods {
		if string(m) == name {
			return m, nil
		}
	}

	choices := make([]string, len(Methods))
	for i, m := range Methods {
		choices[i] = string(m)
	}
	return "", fmt.Errorf("%w: %s. Choices are %s", ErrInvalidMethod, s, strings.Join(choices, ", "))
}

// String returns the method name
func (m Method) String() string {
	return string(m)
}

// SupportedVideoFormats are the video file suffixes accepted as input
var SupportedVideoFormats = newFormatSet(
	"3gp", "asf", "avi", "divx", "flv", "m4v", "mkv", "mov", "mp4",
	"mpeg", "mpg", "ogv", "rm", "ts", "vob", "webm", "wmv",
)

// SupportedAudioFormats are the audio formats that can be extracted
var SupportedAudioFormats = newFormatSet("m4a", "mp3", "ogg", "wav")

// SupportedImageFormats are the formats frames can be saved as
var SupportedImageFormats = newFormatSet(
	"bmp", "dib", "jp2", "jpeg", "jpg", "png", "tif", "tiff", "webp",
)

// ValidRotateValues are the allowed rotation angles in degrees
var ValidRotateValues = []int{0, 90, 180, 270}

// FormatSet is a set of lower-case file format names
type FormatSet map[string]struct{}

func newFormatSet(formats ...string) FormatSet {
	s := make(FormatSet, len(formats))
	for _, f := range formats {
		s[f] = struct{}{}
	}
	return s
}

// Contains reports whether the normalized format is in the set
func (s FormatSet) Contains(format string) bool {
	_, ok := s[normalizeFormat(format)]
	return ok
}

// List returns the formats sorted alphabetically
func (s FormatSet) List() []string {
	out := make([]string, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// String renders the set for error messages
func (s FormatSet) String() string {
	return "{" + strings.Join(s.List(), ", ") + "}"
}

func normalizeFormat(format string) string {
	return strings.TrimLeft(strings.ToLower(format), ".")
}
