package render

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"KeplerLens/internal/model"
)

// Labels are the texts drawn on a plot.
type Labels struct {
	Title  string
	XLabel string
	YLabel string
}

// ScatterRenderer draws a light curve as a scatter plot and writes it as PNG.
type ScatterRenderer struct {
	Style Style
}

// NewScatterRenderer validates style and returns a renderer.
func NewScatterRenderer(style Style) (*ScatterRenderer, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	return &ScatterRenderer{Style: style}, nil
}

// Render writes lc to path, replacing any existing file. Samples with a
// non-finite time or flux are not drawn. A curve with nothing to draw yields
// model.ErrEmptyDataset; a path that cannot be written yields
// model.ErrWriteError.
func (r *ScatterRenderer) Render(lc *model.LightCurve, labels Labels, path string) error {
	if lc.IsEmpty() {
		return errors.Wrap(model.ErrEmptyDataset, "nothing to plot")
	}
	pts := make(plotter.XYs, 0, lc.Len())
	for i := 0; i < lc.Len(); i++ {
		t, f := lc.At(i)
		if !finite(t) || !finite(f) {
			continue
		}
		pts = append(pts, plotter.XY{X: t, Y: f})
	}
	if len(pts) == 0 {
		return errors.Wrap(model.ErrEmptyDataset, "no finite samples to plot")
	}

	markerColor, err := r.Style.MarkerColor()
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = labels.Title
	p.X.Label.Text = labels.XLabel
	p.Y.Label.Text = labels.YLabel
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "build scatter")
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Color = markerColor
	scatter.GlyphStyle.Radius = vg.Points(r.Style.Radius)
	p.Add(scatter)

	wt, err := p.WriterTo(vg.Length(r.Style.WidthIn)*vg.Inch, vg.Length(r.Style.HeightIn)*vg.Inch, "png")
	if err != nil {
		return errors.Wrap(err, "draw plot")
	}

	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(model.ErrWriteError, "create %s: %v", path, err)
	}
	if _, err := wt.WriteTo(out); err != nil {
		out.Close()
		return errors.Wrapf(model.ErrWriteError, "write %s: %v", path, err)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(model.ErrWriteError, "close %s: %v", path, err)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
