package extraction

import (
	"fmt"
	"math"
)

// ExtractionRange is a resolved start/stop pair in seconds, timestamps and frame numbers
type ExtractionRange struct {
	StartSecond    float64 `json:"start_second"`
	StopSecond     float64 `json:"stop_second"`
	StartTimestamp string  `json:"start_timestamp"`
	StopTimestamp  string  `json:"stop_timestamp"`
	StartFrame     int     `json:"start_frame"`
	StopFrame      int     `json:"stop_frame"`
}

// NewExtractionRange resolves validated start and stop values (seconds or
// timestamps) against the video duration. The stop is clamped to the duration.
func NewExtractionRange(duration float64, frameCount int, start, stop string, fps float64) (ExtractionRange, error) {
	if start == "" || stop == "" || fps <= 0 {
		return ExtractionRange{}, fmt.Errorf("%w: start time, stop time or fps are missing", ErrPreparation)
	}

	startSecond, stopSecond, err := ValidExtractionRange(timeToSeconds(start), timeToSeconds(stop), duration)
	if err != nil {
		return ExtractionRange{}, err
	}

	r := ExtractionRange{
		StartSecond:    startSecond,
		StopSecond:     stopSecond,
		StartTimestamp: SecondsToTimestamp(startSecond),
		StopTimestamp:  SecondsToTimestamp(stopSecond),
		StartFrame:     int(math.Floor(startSecond * fps)),
		StopFrame:      int(math.Floor(stopSecond * fps)),
	}
	if r.StopFrame > frameCount && frameCount > 0 {
		r.StopFrame = frameCount
	}

	return r, nil
}

// Seconds returns the length of the range in seconds
func (r ExtractionRange) Seconds() float64 {
	return r.StopSecond - r.StartSecond
}
