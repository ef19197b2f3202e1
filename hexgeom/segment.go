// Package hexgeom decomposes the hexagon outline into drawable segments, splitting the
// selected side into thirds so the active position can be highlighted.
package hexgeom

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/lixenwraith/coral-compass/compass"
)

// Kind tags how a segment is drawn
type Kind uint8

const (
	KindSide      Kind = iota // Whole neutral edge
	KindGray                  // Neutral remainder of the highlighted edge
	KindHighlight             // Active third, or whole edge when no position is set
)

func (k Kind) String() string {
	switch k {
	case KindSide:
		return "side"
	case KindGray:
		return "gray"
	case KindHighlight:
		return "highlight"
	}
	return "unknown"
}

// Segment is a directed line on the hexagon perimeter
type Segment struct {
	Start r2.Point
	End   r2.Point
	Kind  Kind
	Edge  compass.Side
}

// Length returns the euclidean length of the segment
func (s Segment) Length() float64 {
	return s.End.Sub(s.Start).Norm()
}

// Vertices returns the six perimeter points at i*60 degrees around center
func Vertices(center r2.Point, radius float64) [compass.SideCount]r2.Point {
	var pts [compass.SideCount]r2.Point
	for i := range pts {
		angle := float64(i) * math.Pi / 3
		pts[i] = r2.Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	return pts
}

// Lerp interpolates between a and b at fraction t
func Lerp(a, b r2.Point, t float64) r2.Point {
	return r2.Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// Segments returns the hexagon outline with side highlighted
// position outside [1,18] flags the whole side; otherwise the third selected by
// (position-1) mod 3 is highlighted in reverse order: 0 is the final third, 2 the first
// side NoSide highlights nothing
func Segments(center r2.Point, radius float64, side compass.Side, position int) []Segment {
	pts := Vertices(center, radius)
	segs := make([]Segment, 0, compass.SideCount+2)

	for i := 0; i < compass.SideCount; i++ {
		edge := compass.Side(i)
		start := pts[i]
		end := pts[(i+1)%compass.SideCount]

		if edge != side {
			segs = append(segs, Segment{Start: start, End: end, Kind: KindSide, Edge: edge})
			continue
		}

		sub := compass.SubSlot(position)
		if sub < 0 {
			segs = append(segs, Segment{Start: start, End: end, Kind: KindHighlight, Edge: edge})
			continue
		}

		segs = append(segs, splitEdge(start, end, edge, sub)...)
	}

	return segs
}

// splitEdge emits the highlighted third first, then the gray remainder before and after it
func splitEdge(start, end r2.Point, edge compass.Side, sub int) []Segment {
	oneThird := Lerp(start, end, 1.0/3)
	twoThirds := Lerp(start, end, 2.0/3)

	var hiStart, hiEnd r2.Point
	switch sub {
	case 0:
		hiStart, hiEnd = twoThirds, end
	case 1:
		hiStart, hiEnd = oneThird, twoThirds
	default:
		hiStart, hiEnd = start, oneThird
	}

	out := make([]Segment, 0, 3)
	out = append(out, Segment{Start: hiStart, End: hiEnd, Kind: KindHighlight, Edge: edge})
	if sub != 2 {
		out = append(out, Segment{Start: start, End: hiStart, Kind: KindGray, Edge: edge})
	}
	if sub != 0 {
		out = append(out, Segment{Start: hiEnd, End: end, Kind: KindGray, Edge: edge})
	}
	return out
}

// Highlighted returns the first highlighted segment
func Highlighted(segs []Segment) (Segment, bool) {
	for _, s := range segs {
		if s.Kind == KindHighlight {
			return s, true
		}
	}
	return Segment{}, false
}
