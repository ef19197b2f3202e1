// Package render draws controller snapshots onto a tcell screen
package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/golang/geo/r2"
	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/coral-compass/compass"
	"github.com/lixenwraith/coral-compass/engine"
	"github.com/lixenwraith/coral-compass/hexgeom"
)

const (
	glyphFlat   = '─'
	glyphFall   = '╲' // Down-right on screen
	glyphRise   = '╱'
	glyphSlot   = '□'
	glyphSlotOn = '■'

	rowGutter  = 8 // Cells right of the hexagon reserved for row slots
	footer     = 4 // Column slots, labels and status line
	minRadius  = 2
	slotStride = 4

	// NoDeviceBanner is shown while no controller is connected
	NoDeviceBanner = "No controller detected"
)

var sqrt3 = math.Sqrt(3)

// Renderer draws snapshots to a screen
// One geometry unit spans two columns and one row, since cells are twice as tall as wide
type Renderer struct {
	screen  tcell.Screen
	palette Palette
	radius  float64
}

// NewRenderer creates a renderer; radius <= 0 fits the hexagon to the screen
func NewRenderer(screen tcell.Screen, palette Palette, radius float64) *Renderer {
	return &Renderer{
		screen:  screen,
		palette: palette,
		radius:  radius,
	}
}

// Layout returns the hexagon center and radius for the current screen size
func (r *Renderer) Layout() (r2.Point, float64) {
	w, h := r.screen.Size()
	availW := float64(w-rowGutter) / 2
	availH := float64(h - footer)

	radius := r.radius
	if radius <= 0 {
		radius = math.Floor(math.Min((availW-1)/2, (availH-1)/sqrt3))
	}
	if radius < minRadius {
		radius = minRadius
	}
	return r2.Point{X: math.Floor(availW / 2), Y: math.Floor(availH / 2)}, radius
}

// Draw renders one frame and shows it
func (r *Renderer) Draw(s engine.Snapshot) {
	pal := r.palette
	if !s.Armed {
		pal = pal.Dimmed()
	}

	r.screen.Fill(' ', style(pal.Text, pal.Background))

	center, radius := r.Layout()

	// Highlight last so shared endpoints keep its colour
	for _, seg := range s.Segments {
		switch seg.Kind {
		case hexgeom.KindSide:
			r.line(seg, style(pal.Side, pal.Background))
		case hexgeom.KindGray:
			r.line(seg, style(pal.Gray, pal.Background))
		}
	}
	for _, seg := range s.Segments {
		if seg.Kind == hexgeom.KindHighlight {
			r.line(seg, style(pal.Highlight, pal.Background).Bold(true))
		}
	}

	r.drawColumns(s.Selection, center, radius, pal)
	r.drawRows(s.Selection, center, radius, pal)
	r.drawStatus(s, pal)

	if !s.Present {
		w, _ := r.screen.Size()
		y := int(center.Y)
		x := (w - runewidth.StringWidth(NoDeviceBanner)) / 2
		r.text(x, y, NoDeviceBanner, style(pal.Warning, pal.Background).Bold(true))
	}

	r.screen.Show()
}

// CellOf maps a geometry point to its screen cell
func CellOf(p r2.Point) (int, int) {
	return int(math.Round(p.X * 2)), int(math.Round(p.Y))
}

// line rasterises a segment by stepping along its longer axis
func (r *Renderer) line(seg hexgeom.Segment, st tcell.Style) {
	x0, y0 := seg.Start.X*2, seg.Start.Y
	dx, dy := seg.End.X*2-x0, seg.End.Y-y0
	glyph := edgeGlyph(dx, dy)

	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		x, y := CellOf(seg.Start)
		r.screen.SetContent(x, y, glyph, nil, st)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(x0 + dx*t))
		y := int(math.Round(y0 + dy*t))
		r.screen.SetContent(x, y, glyph, nil, st)
	}
}

func edgeGlyph(dx, dy float64) rune {
	if math.Abs(dy)*4 < math.Abs(dx) {
		return glyphFlat
	}
	if (dx > 0) == (dy > 0) {
		return glyphFall
	}
	return glyphRise
}

// drawColumns puts one slot per column below the hexagon with its position number
func (r *Renderer) drawColumns(sel compass.Selection, center r2.Point, radius float64, pal Palette) {
	cx, _ := CellOf(center)
	y := int(math.Ceil(center.Y+radius*sqrt3/2)) + 1

	for c := 0; c < compass.ColumnCount; c++ {
		x := cx + (c-1)*slotStride
		glyph, st := glyphSlot, style(pal.Slot, pal.Background)
		if c == sel.Column {
			glyph, st = glyphSlotOn, style(pal.SlotActive, pal.Background)
		}
		r.screen.SetContent(x, y, glyph, nil, st)

		label := fmt.Sprint(compass.ResolveFrom(sel.Origin, sel.Side, c))
		r.text(x-runewidth.StringWidth(label)/2, y+1, label, style(pal.Text, pal.Background))
	}
}

// drawRows stacks one slot per row right of the hexagon, row 0 on top
func (r *Renderer) drawRows(sel compass.Selection, center r2.Point, radius float64, pal Palette) {
	x, _ := CellOf(r2.Point{X: center.X + radius})
	x += 3
	top := int(center.Y) - compass.RowCount + 1

	for row := 0; row < compass.RowCount; row++ {
		glyph, st := glyphSlot, style(pal.Slot, pal.Background)
		if row == sel.Row {
			glyph, st = glyphSlotOn, style(pal.SlotActive, pal.Background)
		}
		y := top + row*2
		r.screen.SetContent(x, y, glyph, nil, st)
		r.text(x+2, y, fmt.Sprint(row), style(pal.Text, pal.Background))
	}
}

func (r *Renderer) drawStatus(s engine.Snapshot, pal Palette) {
	_, h := r.screen.Size()

	state := "ARMED"
	switch {
	case !s.Present:
		state = "no device"
	case !s.Armed:
		state = "disarmed"
	}

	line := fmt.Sprintf(" position %-2d  column %d  row %d  %s",
		s.Selection.Position, s.Selection.Column, s.Selection.Row, state)
	r.text(0, h-1, line, style(pal.Text, pal.Background))
}

// text writes s starting at x, advancing by each rune's display width
func (r *Renderer) text(x, y int, s string, st tcell.Style) {
	for _, ch := range s {
		r.screen.SetContent(x, y, ch, nil, st)
		x += runewidth.RuneWidth(ch)
	}
}
