// Package progress draws terminal progress bars for long unmeasured phases.
package progress

import (
	"io"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/minio/pkg/console"
)

const barTemplate = `{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{speed . }}`

// Bar wraps a pb progress bar.
type Bar struct {
	*pb.ProgressBar
}

// New starts a bar writing to w that expects total increments.
func New(w io.Writer, total int64, caption string) *Bar {
	console.SetColor("Bar", color.New(color.FgGreen, color.Bold))

	bar := pb.New64(total)
	bar.SetWriter(w)
	bar.SetRefreshRate(125 * time.Millisecond)
	bar.SetTemplateString(barTemplate)
	bar.Set("prefix", console.Colorize("Bar", caption))
	bar.Start()

	return &Bar{ProgressBar: bar}
}

// Add advances the bar by n. Safe for concurrent use.
func (b *Bar) Add(n int64) {
	b.ProgressBar.Add64(n)
}
