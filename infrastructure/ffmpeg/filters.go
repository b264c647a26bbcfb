package ffmpeg

import (
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"videoxt/domain/extraction"
)

// atempo accepts factors between 0.5 and 2 per instance
const (
	minAtempo = 0.5
	maxAtempo = 2.0
)

func factor(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// trimmedInput opens the video seeked to the start of the range and limited to its length
func trimmedInput(p *extraction.PreparedBase) *ffmpeg.Stream {
	return ffmpeg.Input(p.Video.Path, ffmpeg.KwArgs{
		"ss": factor(p.Range.StartSecond),
		"t":  factor(p.Range.Seconds()),
	})
}

// applyAudioEdits normalizes loudness first, then scales the volume
func applyAudioEdits(a *ffmpeg.Stream, e extraction.AudioEdits) *ffmpeg.Stream {
	if e.Normalize {
		a = a.Filter("loudnorm", ffmpeg.Args{})
	}
	if e.Volume != 1.0 {
		a = a.Filter("volume", ffmpeg.Args{factor(e.Volume)})
	}
	return a
}

// applyVideoMotion reverses, bounces and changes the speed of a video stream, in that order
func applyVideoMotion(v *ffmpeg.Stream, e extraction.MotionEdits) *ffmpeg.Stream {
	if e.Reverse {
		v = v.Filter("reverse", ffmpeg.Args{})
	}
	if e.Bounce {
		split := v.Split()
		forward := split.Get("0")
		backward := split.Get("1").Filter("reverse", ffmpeg.Args{})
		v = ffmpeg.Concat([]*ffmpeg.Stream{forward, backward}, ffmpeg.KwArgs{"v": 1, "a": 0})
	}
	if e.Speed != 1.0 && e.Speed > 0 {
		v = v.Filter("setpts", ffmpeg.Args{"PTS/" + factor(e.Speed)})
	}
	return v
}

// applyAudioMotion mirrors applyVideoMotion for an audio stream
func applyAudioMotion(a *ffmpeg.Stream, e extraction.MotionEdits) *ffmpeg.Stream {
	if e.Reverse {
		a = a.Filter("areverse", ffmpeg.Args{})
	}
	if e.Bounce {
		split := a.ASplit()
		forward := split.Get("0")
		backward := split.Get("1").Filter("areverse", ffmpeg.Args{})
		a = ffmpeg.Concat([]*ffmpeg.Stream{forward, backward}, ffmpeg.KwArgs{"v": 0, "a": 1})
	}
	if e.Speed != 1.0 && e.Speed > 0 {
		for _, f := range atempoChain(e.Speed) {
			a = a.Filter("atempo", ffmpeg.Args{factor(f)})
		}
	}
	return a
}

// atempoChain splits speed into factors atempo accepts whose product is speed
func atempoChain(speed float64) []float64 {
	var chain []float64
	for speed > maxAtempo {
		chain = append(chain, maxAtempo)
		speed /= maxAtempo
	}
	for speed < minAtempo {
		chain = append(chain, minAtempo)
		speed /= minAtempo
	}
	return append(chain, speed)
}

// applyImageEdits resizes, rotates clockwise and drops colour, in that order
func applyImageEdits(v *ffmpeg.Stream, e extraction.ImageEdits, source extraction.Dimensions) *ffmpeg.Stream {
	if e.Resized(source) {
		v = v.Filter("scale", ffmpeg.Args{strconv.Itoa(e.Dimensions.Width), strconv.Itoa(e.Dimensions.Height)})
	}
	switch e.Rotate {
	case 90:
		v = v.Filter("transpose", ffmpeg.Args{"1"})
	case 180:
		v = v.Filter("transpose", ffmpeg.Args{"1"}).Filter("transpose", ffmpeg.Args{"1"})
	case 270:
		v = v.Filter("transpose", ffmpeg.Args{"2"})
	}
	if e.Monochrome {
		v = v.Filter("hue", ffmpeg.Args{}, ffmpeg.KwArgs{"s": 0})
	}
	return v
}

// audioCodecs maps supported audio formats to their encoders
var audioCodecs = map[string]string{
	"mp3": "libmp3lame",
	"m4a": "aac",
	"ogg": "libvorbis",
	"wav": "pcm_s16le",
}
