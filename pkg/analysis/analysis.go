// Package analysis renders the chart views over normalized videos.
//
// Each chart runs independently: a failing or panicking chart is recorded as
// skipped in the returned summary and the remaining charts still render.
package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/logging"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/record"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/report"
	"github.com/rs/zerolog"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg"
)

// Renderer writes charts as PNG files into Dir. Existing files are
// overwritten.
type Renderer struct {
	Dir    string
	Width  vg.Length
	Height vg.Length
	Charts []Chart
	logger zerolog.Logger
}

// NewRenderer creates a renderer for the default chart set.
func NewRenderer(dir string) *Renderer {
	return &Renderer{
		Dir:    dir,
		Width:  10 * vg.Inch,
		Height: 6 * vg.Inch,
		Charts: Charts,
		logger: logging.NewLogger("analysis"),
	}
}

// Render builds and saves every chart. It returns an error only when the
// output directory cannot be created; chart failures go to the summary.
func (r *Renderer) Render(ctx context.Context, videos []record.NormalizedVideoRecord) (*report.Summary, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create plots dir: %w", err)
	}

	summary := report.NewSummary("analyze")
	for _, c := range r.Charts {
		if err := ctx.Err(); err != nil {
			summary.Skip(c.File, err)
			continue
		}

		if err := catch(func() error { return r.render(c, videos) }); err != nil {
			r.logger.Warn().Err(err).Str("chart", c.Name).Msg("Chart skipped")
			summary.Skip(c.File, err)
			continue
		}
		r.logger.Info().Str("chart", c.Name).Str("file", c.File).Msg("Chart saved")
		summary.OK(c.File)
	}
	return summary, nil
}

func (r *Renderer) render(c Chart, videos []record.NormalizedVideoRecord) error {
	p, err := c.Build(videos)
	if err != nil {
		return fmt.Errorf("build %s: %w", c.Name, err)
	}
	if err := p.Save(r.Width, r.Height, filepath.Join(r.Dir, c.File)); err != nil {
		return fmt.Errorf("save %s: %w", c.File, err)
	}
	return nil
}

// catch runs fn and converts a panic into an error.
func catch(fn func() error) (err error) {
	defer func() {
		if ex := recover(); ex != nil {
			if e, ok := ex.(error); ok {
				err = fmt.Errorf("chart panicked: %w", e)
			} else {
				err = fmt.Errorf("chart panicked: %v", ex)
			}
		}
	}()
	return fn()
}
