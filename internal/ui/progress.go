package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar shows catalog build progress. It satisfies discovery.Progress.
type ProgressBar struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
}

// NewProgressBar creates a progress bar writing to stderr. The bar itself is
// created by Start, once the number of candidate files is known.
func NewProgressBar() *ProgressBar {
	return &ProgressBar{writer: os.Stderr}
}

// Start sizes the bar to total files
func (p *ProgressBar) Start(total int) {
	w := p.writer
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(describe(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update updates the progress bar with classified and failed counts
func (p *ProgressBar) Update(classified, failed int) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Set(classified + failed)
	p.bar.Describe(describe(classified, failed))
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

func describe(classified, failed int) string {
	return color.CyanString("Classifying tests: ") +
		color.GreenString("[classified: %d", classified) +
		" | " +
		color.RedString("failed: %d]", failed)
}
