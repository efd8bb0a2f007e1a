package planning

import "github.com/strikerbot/planner/internal/vmath"

// Polygon is a closed outline on the ground plane.
type Polygon []vmath.Vector2

// Contains uses ray casting; points on an edge may fall either way.
func (p Polygon) Contains(pt vmath.Vector2) bool {
	inside := false
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// MainZone splits the field lengthwise.
type MainZone int

const (
	NoneZone MainZone = iota
	BlueZone
	MidZone
	OrangeZone
)

func (z MainZone) String() string {
	return [...]string{"none", "blue", "mid", "orange"}[z]
}

// SubZone splits the field across.
type SubZone int

const (
	NoneSubZone SubZone = iota
	TopSubZone
	BottomSubZone
	TopCornerSubZone
	BottomCornerSubZone
	BlueBoxSubZone
	OrangeBoxSubZone
)

func (z SubZone) String() string {
	return [...]string{"none", "top", "bottom", "top corner", "bottom corner", "blue box", "orange box"}[z]
}

// Zone names where a point is.
type Zone struct {
	Main MainZone
	Sub  SubZone
}

func (z Zone) String() string { return z.Main.String() + "/" + z.Sub.String() }

// Field outlines. Some boundaries are rounded outwards past the walls.
var (
	FullField = Polygon{
		{X: -81.93, Y: -78.3}, {X: -58.36, Y: -102.4}, {X: -17.27, Y: -102.4}, {X: -17.27, Y: -119.9},
		{X: 17.27, Y: -119.9}, {X: 17.27, Y: -102.4}, {X: 58.36, Y: -102.4}, {X: 81.93, Y: -78.3},
		{X: 81.93, Y: 78.3}, {X: 58.36, Y: 102.4}, {X: 17.27, Y: 102.4}, {X: 17.27, Y: 119.9},
		{X: -17.27, Y: 119.9}, {X: -17.27, Y: 102.4}, {X: -58.36, Y: 102.4}, {X: -81.93, Y: 78.3},
	}

	orangeZone = Polygon{{X: -82, Y: 34}, {X: 82, Y: 34}, {X: 82, Y: 120}, {X: -82, Y: 120}}
	midZone    = Polygon{{X: -82, Y: -34}, {X: 82, Y: -34}, {X: 82, Y: 34}, {X: -82, Y: 34}}
	blueZone   = Polygon{{X: -82, Y: -34}, {X: 82, Y: -34}, {X: 82, Y: -120}, {X: -82, Y: -120}}

	topZone    = Polygon{{X: 0, Y: -120}, {X: -82, Y: -120}, {X: -82, Y: 120}, {X: 0, Y: 120}}
	bottomZone = Polygon{{X: 0, Y: -120}, {X: 82, Y: -120}, {X: 82, Y: 120}, {X: 0, Y: 120}}

	topCorners = []Polygon{
		{{X: -82, Y: -53.5}, {X: -66.5, Y: -61.6}, {X: -43.25, Y: -85.9}, {X: -35.5, Y: -102.1}, {X: -35.5, Y: -120}, {X: -82, Y: -120}},
		{{X: -82, Y: 53.5}, {X: -66.5, Y: 61.6}, {X: -43.25, Y: 85.9}, {X: -35.5, Y: 102.1}, {X: -35.5, Y: 120}, {X: -82, Y: 120}},
	}
	bottomCorners = []Polygon{
		{{X: 82, Y: -53.5}, {X: 66.5, Y: -61.6}, {X: 43.25, Y: -85.9}, {X: 35.5, Y: -102.1}, {X: 35.5, Y: -120}, {X: 82, Y: -120}},
		{{X: 82, Y: 53.5}, {X: 66.5, Y: 61.6}, {X: 43.25, Y: 85.9}, {X: 35.5, Y: 102.1}, {X: 35.5, Y: 120}, {X: 82, Y: 120}},
	}

	BlueBox   = Polygon{{X: 50, Y: -70}, {X: 50, Y: -120}, {X: -50, Y: -120}, {X: -50, Y: -70}}
	OrangeBox = Polygon{{X: 50, Y: 70}, {X: 50, Y: 120}, {X: -50, Y: 120}, {X: -50, Y: 70}}
)

// ZoneOf classifies a ground position. Boxes win over corners, corners over
// halves.
func ZoneOf(p vmath.Vector2) Zone {
	var z Zone
	switch {
	case orangeZone.Contains(p):
		z.Main = OrangeZone
	case midZone.Contains(p):
		z.Main = MidZone
	case blueZone.Contains(p):
		z.Main = BlueZone
	}

	switch {
	case BlueBox.Contains(p):
		z.Sub = BlueBoxSubZone
	case OrangeBox.Contains(p):
		z.Sub = OrangeBoxSubZone
	case containsAny(topCorners, p):
		z.Sub = TopCornerSubZone
	case containsAny(bottomCorners, p):
		z.Sub = BottomCornerSubZone
	case topZone.Contains(p):
		z.Sub = TopSubZone
	case bottomZone.Contains(p):
		z.Sub = BottomSubZone
	}
	return z
}

func containsAny(polys []Polygon, p vmath.Vector2) bool {
	for _, poly := range polys {
		if poly.Contains(p) {
			return true
		}
	}
	return false
}
