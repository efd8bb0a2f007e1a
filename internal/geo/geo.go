// Package geo converts trajectories to and from simplefeatures geometries.
//
// Trajectories are stored as LineStringZM: X, Y, Z are arena coordinates and
// M is the sample's game time in seconds. Points are XYZ. The arena is a flat
// local frame, so geometries carry no SRID.
package geo

import (
	"errors"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/strikerbot/planner/internal/vmath"
	"github.com/strikerbot/planner/pkg/core"
)

var (
	// ErrTooFewSamples is returned when a line string would have fewer than two points.
	ErrTooFewSamples = errors.New("trajectory needs at least two samples")
	// ErrNotLineString is returned when a geometry holds something other than a line string.
	ErrNotLineString = errors.New("geometry is not a line string")
)

// LineStringFromSamples builds a LineStringZM from body states.
func LineStringFromSamples(samples []core.BodyState) (geom.LineString, error) {
	if len(samples) < 2 {
		return geom.LineString{}, fmt.Errorf("%w: got %d", ErrTooFewSamples, len(samples))
	}
	coords := make([]float64, 0, len(samples)*4)
	for _, s := range samples {
		coords = append(coords, s.Position.X, s.Position.Y, s.Position.Z, s.Time.Seconds())
	}
	seq := geom.NewSequence(coords, geom.DimXYZM)
	ls, err := geom.NewLineString(seq)
	if err != nil {
		return geom.LineString{}, fmt.Errorf("invalid trajectory geometry: %w", err)
	}
	return ls, nil
}

// SamplesFromGeometry reads positions and times back out of a LineStringZM.
// Velocity and spin are not stored in the geometry and come back zero.
func SamplesFromGeometry(g geom.Geometry) ([]core.BodyState, error) {
	if g.IsEmpty() {
		return nil, nil
	}
	ls, ok := g.AsLineString()
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotLineString, g.Type())
	}
	seq := ls.Coordinates()
	out := make([]core.BodyState, seq.Length())
	for i := range out {
		c := seq.Get(i)
		out[i] = core.BodyState{
			Position: vmath.V3(c.X, c.Y, c.Z),
			Time:     core.GameTimeFromSeconds(c.M),
		}
	}
	return out, nil
}

// PointFromVector creates an XYZ point. Non-finite coordinates are rejected.
func PointFromVector(v vmath.Vector3) (geom.Point, error) {
	p, err := geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: v.X, Y: v.Y},
		Z:    v.Z,
		Type: geom.DimXYZ,
	})
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid point %v: %w", v, err)
	}
	return p, nil
}

// VectorFromPoint is the inverse of PointFromVector. An empty point yields
// the zero vector and false.
func VectorFromPoint(p geom.Point) (vmath.Vector3, bool) {
	c, ok := p.Coordinates()
	if !ok {
		return vmath.Vector3{}, false
	}
	return vmath.V3(c.X, c.Y, c.Z), true
}
