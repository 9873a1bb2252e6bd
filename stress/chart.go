package stress

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	Title       = "2D Stress Visualization around Tunnel"
	XLabel      = "Distance (m)"
	YLabel      = "Stress (MPa)"
	LegendLabel = "Stress Distribution"

	chartWidth  = 10 * vg.Inch
	chartHeight = 6 * vg.Inch
)

// Format is an image encoding supported by Render.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

var ErrUnsupportedFormat = errors.New("unsupported chart format")

// ParseFormat accepts "svg" or "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case SVG, PNG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type of the encoded chart.
func (f Format) ContentType() string {
	switch f {
	case SVG:
		return "image/svg+xml"
	case PNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// NewPlot builds the line chart for c with the fixed title, labels and legend.
func NewPlot(c Curve) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(c)
	if err != nil {
		return nil, fmt.Errorf("build line: %w", err)
	}
	p.Add(line)
	p.Legend.Add(LegendLabel, line)
	p.Legend.Top = true
	return p, nil
}

// Render writes c as a 10x6 inch chart in the given format.
func Render(w io.Writer, c Curve, format Format) error {
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}
	p, err := NewPlot(c)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(chartWidth, chartHeight, string(format))
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}
