//go:build integration

package steps

import (
	"fmt"
	"strconv"

	"github.com/cucumber/godog"

	"videoxt/infrastructure/config"
)

// presetFromTable reads a two column option table into a preset. Keys use
// the config file's names.
func presetFromTable(method string, table *godog.Table) (config.PresetConfig, error) {
	p := config.PresetConfig{Method: method}
	if table == nil {
		return p, nil
	}

	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return p, fmt.Errorf("expected key and value, got %d cells", len(row.Cells))
		}
		key, value := row.Cells[0].Value, row.Cells[1].Value

		var err error
		switch key {
		case "start_time":
			p.StartTime = value
		case "stop_time":
			p.StopTime = value
		case "destdir":
			p.DestDir = value
		case "filename":
			p.Filename = value
		case "audio_format":
			p.AudioFormat = value
		case "image_format":
			p.ImageFormat = value
		case "dimensions":
			p.Dimensions = value
		case "fps":
			p.FPS, err = floatValue(value)
		case "resize":
			p.Resize, err = floatValue(value)
		case "speed":
			p.Speed, err = floatValue(value)
		case "volume":
			p.Volume, err = floatValue(value)
		case "capture_rate":
			p.CaptureRate, err = intValue(value)
		case "rotate":
			p.Rotate, err = intValue(value)
		case "overwrite":
			p.Overwrite, err = strconv.ParseBool(value)
		case "bounce":
			p.Bounce, err = strconv.ParseBool(value)
		case "reverse":
			p.Reverse, err = strconv.ParseBool(value)
		case "monochrome":
			p.Monochrome, err = strconv.ParseBool(value)
		case "normalize":
			p.Normalize, err = strconv.ParseBool(value)
		default:
			return p, fmt.Errorf("unknown option %q", key)
		}
		if err != nil {
			return p, fmt.Errorf("option %s: %w", key, err)
		}
	}
	return p, nil
}

func floatValue(s string) (*float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func intValue(s string) (*int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
