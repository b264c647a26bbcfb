package cmd

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"videoxt/application/extract"
)

// progressReporter draws frame extraction progress as a terminal bar
type progressReporter struct {
	out         io.Writer
	description string
	bar         *progressbar.ProgressBar
}

func newProgressReporter(out io.Writer, description string) *progressReporter {
	return &progressReporter{out: out, description: description}
}

func (p *progressReporter) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(p.description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { io.WriteString(p.out, "\n") }),
	)
}

func (p *progressReporter) Advance() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *progressReporter) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

var _ extract.ProgressReporter = (*progressReporter)(nil)
