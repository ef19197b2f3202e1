package compass

import (
	"errors"
	"fmt"
	"math"
)

// sideArc is the angular width of one hexagon edge
const sideArc = math.Pi / 3

// DefaultDeadzone is the minimum stick deflection on either axis that re-aims the side
const DefaultDeadzone = 0.2

// Selection is the operator-chosen state
// Position is derived from Side and Column; Row is tracked independently
type Selection struct {
	Side     Side
	Column   int
	Row      int
	Position int

	// Origin is the side carrying positions 1-3
	Origin Side
}

// NewSelection returns the startup selection: bottom side, first column, first row
func NewSelection() Selection {
	return NewSelectionFrom(SideBottom)
}

// NewSelectionFrom returns the startup selection numbered from origin
func NewSelectionFrom(origin Side) Selection {
	return Selection{
		Side:     SideBottom,
		Column:   0,
		Row:      0,
		Position: ResolveFrom(origin, SideBottom, 0),
		Origin:   origin,
	}
}

// StepColumn cycles the column slot by delta
func (s Selection) StepColumn(delta int) Selection {
	s.Column = wrap(s.Column+delta, ColumnCount)
	s.Position = ResolveFrom(s.Origin, s.Side, s.Column)
	return s
}

// StepRow cycles the row slot by delta
// Row runs top to bottom on screen: "up" is -1, "down" is +1
func (s Selection) StepRow(delta int) Selection {
	s.Row = wrap(s.Row+delta, RowCount)
	return s
}

// WithSide selects a hexagon side directly
func (s Selection) WithSide(side Side) Selection {
	if side == NoSide {
		side = SideBottom
	}
	s.Side = side
	s.Position = ResolveFrom(s.Origin, s.Side, s.Column)
	return s
}

// AimAngle selects the side containing angle (radians, any range)
func (s Selection) AimAngle(angle float64) Selection {
	return s.WithSide(SideFromAngle(angle))
}

// AimStick re-aims the side from an analog vector in screen convention (y down)
// Vectors inside the deadzone on both axes leave the selection unchanged
func (s Selection) AimStick(x, y, deadzone float64) Selection {
	if math.Abs(x) <= deadzone && math.Abs(y) <= deadzone {
		return s
	}
	return s.AimAngle(math.Atan2(y, x))
}

// Validate reports fields outside their declared domains
func (s Selection) Validate() error {
	var errs []error
	if !s.Origin.Valid() {
		errs = append(errs, fmt.Errorf("origin %d out of range", s.Origin))
	}
	if !s.Side.Valid() {
		errs = append(errs, fmt.Errorf("side %d out of range", s.Side))
	}
	if s.Column < 0 || s.Column >= ColumnCount {
		errs = append(errs, fmt.Errorf("column %d out of range", s.Column))
	}
	if s.Row < 0 || s.Row >= RowCount {
		errs = append(errs, fmt.Errorf("row %d out of range", s.Row))
	}
	if len(errs) == 0 && s.Position != ResolveFrom(s.Origin, s.Side, s.Column) {
		errs = append(errs, fmt.Errorf("position %d does not match side %d column %d", s.Position, s.Side, s.Column))
	}
	return errors.Join(errs...)
}

// SideFromAngle maps an angle in radians to the edge whose 60-degree arc contains it
// Exact multiples of pi/3 belong to the edge that starts there
func SideFromAngle(angle float64) Side {
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return Side(wrap(int(math.Floor(angle/sideArc)), SideCount))
}

// SideCenterAngle returns the angle of the midpoint of a side's arc
func SideCenterAngle(side Side) float64 {
	return (float64(side) + 0.5) * sideArc
}
