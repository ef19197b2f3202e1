package compass

import "fmt"

// Side identifies one of six 60-degree hexagon edges, indexed with increasing screen angle
type Side int

const (
	// NoSide marks an unset side; resolves as SideBottom
	NoSide Side = -1

	SideBottom Side = 3
)

const (
	SideCount     = 6
	ColumnCount   = 3
	RowCount      = 4
	PositionCount = SideCount * ColumnCount
)

// Valid reports whether s is an edge index in [0,5]
func (s Side) Valid() bool {
	return s >= 0 && s < SideCount
}

// Resolve maps a side and column to the position number 1-18, numbering from the bottom side
// Panics on out-of-domain input; NoSide is treated as the bottom side
func Resolve(side Side, column int) int {
	return ResolveFrom(SideBottom, side, column)
}

// ResolveFrom numbers positions starting with 1-3 on origin, then three per side
// counterclockwise on screen (decreasing side index)
func ResolveFrom(origin, side Side, column int) int {
	if side == NoSide {
		side = SideBottom
	}
	if !origin.Valid() {
		panic(fmt.Sprintf("compass: origin %d out of range [0,%d]", origin, SideCount-1))
	}
	if !side.Valid() {
		panic(fmt.Sprintf("compass: side %d out of range [0,%d]", side, SideCount-1))
	}
	if column < 0 || column >= ColumnCount {
		panic(fmt.Sprintf("compass: column %d out of range [0,%d]", column, ColumnCount-1))
	}

	group := wrap(int(origin-side), SideCount)
	return group*ColumnCount + column + 1
}

// SubSlot returns the third of a side (0-2) addressed by a position number, or -1 when
// the position is outside [1,18]
func SubSlot(position int) int {
	if position < 1 || position > PositionCount {
		return -1
	}
	return (position - 1) % ColumnCount
}

// wrap is a non-negative modulo
func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
