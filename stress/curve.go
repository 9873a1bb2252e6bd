// Package stress computes and draws the illustrative stress curve shown next
// to each recommendation. The curve is a fixed synthetic function of the
// slider readings, not a geomechanical model.
package stress

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"rockmass/ml"
)

const (
	// Samples is the number of points in every curve.
	Samples = 100
	// MinDistance and MaxDistance bound the sampled x range in metres.
	MinDistance = 0.0
	MaxDistance = 10.0
)

// Curve is an ordered set of (distance, stress) samples. It satisfies
// plotter.XYer.
type Curve struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Compute samples y = rmr*sin(rqd*x) + gsi*cos(ucs*x) at Samples evenly
// spaced points on [MinDistance, MaxDistance], both ends included. BTS does
// not enter the formula.
func Compute(f ml.FeatureVector) Curve {
	xs := floats.Span(make([]float64, Samples), MinDistance, MaxDistance)
	ys := make([]float64, Samples)

	rmr, rqd := float64(f.RMR), float64(f.RQD)
	gsi, ucs := float64(f.GSI), float64(f.UCS)
	for i, x := range xs {
		ys[i] = rmr*math.Sin(rqd*x) + gsi*math.Cos(ucs*x)
	}
	return Curve{X: xs, Y: ys}
}

func (c Curve) Len() int { return len(c.X) }

func (c Curve) XY(i int) (x, y float64) { return c.X[i], c.Y[i] }
