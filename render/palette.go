package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the base colours; dimmed variants are derived while unarmed
type Palette struct {
	Background colorful.Color
	Side       colorful.Color
	Gray       colorful.Color
	Highlight  colorful.Color
	Slot       colorful.Color
	SlotActive colorful.Color
	Text       colorful.Color
	Warning    colorful.Color
}

// DefaultPalette returns the dark-background scheme
func DefaultPalette() Palette {
	return Palette{
		Background: rgb(26, 27, 38),    // Tokyo Night background
		Side:       rgb(120, 170, 220), // Steel blue
		Gray:       rgb(110, 110, 110),
		Highlight:  rgb(255, 127, 80), // Coral
		Slot:       rgb(90, 90, 100),
		SlotActive: rgb(255, 165, 0),
		Text:       rgb(220, 220, 220),
		Warning:    rgb(255, 80, 80),
	}
}

// dimAmount is how far colours move toward the background while unarmed
const dimAmount = 0.6

// Dimmed returns the palette blended toward its background
func (p Palette) Dimmed() Palette {
	dim := func(c colorful.Color) colorful.Color {
		return c.BlendLab(p.Background, dimAmount).Clamped()
	}
	return Palette{
		Background: p.Background,
		Side:       dim(p.Side),
		Gray:       dim(p.Gray),
		Highlight:  dim(p.Highlight),
		Slot:       dim(p.Slot),
		SlotActive: dim(p.SlotActive),
		Text:       dim(p.Text),
		Warning:    p.Warning,
	}
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// toTcell converts a colorful colour to a tcell RGB colour
func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func style(fg, bg colorful.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(toTcell(fg)).Background(toTcell(bg))
}
