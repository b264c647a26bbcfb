package extraction

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// DestinationTag is appended to output names that would otherwise collide
const DestinationTag = "_vxt"

// FramesDirTag is appended to the video name to form the default frames directory
const FramesDirTag = "_frames"

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// appendEnumeration returns the suffix for the index-th candidate name.
// Without a tag every candidate is numbered; with a tag the first candidate
// is the bare tag.
func appendEnumeration(index int, tag string) (string, error) {
	if index < 1 {
		index = 1
	}
	if tag == "" {
		return fmt.Sprintf(" (%d)", index), nil
	}
	if _, err := ValidFilename(tag); err != nil {
		return "", err
	}
	if index > 1 {
		return fmt.Sprintf("%s (%d)", tag, index), nil
	}
	return tag, nil
}

// EnumerateFilepath returns path if nothing exists there, otherwise the first
// free "<stem><tag> (n)<ext>" alternative
func EnumerateFilepath(path, tag string) (string, error) {
	if !pathExists(path) {
		return path, nil
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	dir := filepath.Dir(path)

	for index := 1; ; index++ {
		suffix, err := appendEnumeration(index, tag)
		if err != nil {
			return "", err
		}
		candidate := filepath.Join(dir, stem+suffix+ext)
		if !pathExists(candidate) {
			return candidate, nil
		}
	}
}

// EnumerateDir returns dir if nothing exists there, otherwise the first free
// "<name><tag> (n)" alternative
func EnumerateDir(dir, tag string) (string, error) {
	if !pathExists(dir) {
		return dir, nil
	}

	for index := 1; ; index++ {
		suffix, err := appendEnumeration(index, tag)
		if err != nil {
			return "", err
		}
		candidate := dir + suffix
		if !pathExists(candidate) {
			return candidate, nil
		}
	}
}

// FormatBytes renders a positive byte count with a binary unit ("1.50 KB")
func FormatBytes(n int64) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("%w: expected positive integer, got %d", ErrValidation, n)
	}

	v := float64(n)
	for _, unit := range []string{"bytes", "KB", "MB", "GB", "TB"} {
		if v < 1024 {
			return fmt.Sprintf("%.2f %s", v, unit), nil
		}
		v /= 1024
	}
	return fmt.Sprintf("%.2f PB", v), nil
}

// PrepareDimensions picks the requested dimensions (or the video's) and scales
// them by resize, truncating to whole pixels
func PrepareDimensions(video Dimensions, requested *Dimensions, resize float64) Dimensions {
	dims := video
	if requested != nil {
		dims = *requested
	}
	if resize != 1.0 && resize > 0 {
		dims = Dimensions{
			Width:  int(float64(dims.Width) * resize),
			Height: int(float64(dims.Height) * resize),
		}
	}
	return dims
}

// PrepareDestpath resolves the output file for audio, clip and gif extraction.
// Without overwrite, or when the target would replace the source video, the
// path is enumerated.
func PrepareDestpath(videoPath, filename, destDir, suffix string, overwrite bool) (string, error) {
	if suffix == "" {
		return "", fmt.Errorf("%w: suffix is empty", ErrPreparation)
	}

	baseDir := destDir
	if baseDir == "" {
		baseDir = filepath.Dir(videoPath)
	}
	if !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	if filename == "" {
		filename = videoStem(videoPath)
	}

	dest := filepath.Join(baseDir, filename+suffix)
	if overwrite && filepath.Clean(dest) != filepath.Clean(videoPath) {
		return dest, nil
	}
	return EnumerateFilepath(dest, DestinationTag)
}

// PrepareFramesDestdir resolves the directory frame images are written to.
// A requested directory is used as is; otherwise "<video name>_frames" next
// to the video, enumerated unless overwriting.
func PrepareFramesDestdir(videoPath, destDir string, overwrite bool) (string, error) {
	if destDir != "" && filepath.Clean(destDir) != filepath.Clean(videoPath) {
		return destDir, nil
	}

	if overwrite {
		return videoPath + FramesDirTag, nil
	}
	return EnumerateDir(videoPath, FramesDirTag)
}

// PrepareImagesExpected returns how many frames a capture rate yields over [start, stop)
func PrepareImagesExpected(startFrame, stopFrame, captureRate int) (int, error) {
	if captureRate <= 0 {
		return 0, fmt.Errorf("%w: capture rate must be positive, got %d", ErrPreparation, captureRate)
	}
	return int(math.Ceil(float64(stopFrame-startFrame) / float64(captureRate))), nil
}

// FrameImagePath builds "<dir>/<stem>_<frame>.<format>"
func FrameImagePath(dir, stem string, frame int, format string) (string, error) {
	if dir == "" || stem == "" || format == "" {
		return "", fmt.Errorf("%w: directory, filename and format are required", ErrBuildImagePath)
	}
	if frame < 0 {
		return "", fmt.Errorf("%w: negative frame number %d", ErrBuildImagePath, frame)
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%d.%s", stem, frame, normalizeFormat(format))), nil
}

func videoStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
