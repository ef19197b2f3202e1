// Command input-test shows raw controller axes and buttons next to the decoded frame,
// for working out the axis map of a new controller
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/coral-compass/device"
	"github.com/lixenwraith/coral-compass/input"
)

var (
	indexFlag  = flag.Int("device", 0, "Joystick index")
	invertFlag = flag.Bool("invert-hat-y", true, "Flip the hat vertical axis")
)

const maxLog = 10

func main() {
	flag.Parse()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	cfg := device.DefaultConfig()
	cfg.Index = *indexFlag
	cfg.InvertHatY = *invertFlag
	js := device.NewJoystick(cfg)
	defer js.Close()

	// Button edge log (last N changes)
	eventLog := make([]string, 0, maxLog)
	addLog := func(s string) {
		if len(eventLog) >= maxLog {
			copy(eventLog, eventLog[1:])
			eventLog = eventLog[:maxLog-1]
		}
		eventLog = append(eventLog, s)
	}

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	var lastButtons uint32
	wasPresent := false

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case now := <-ticker.C:
			f, present := js.Poll(now)
			if present != wasPresent {
				if present {
					addLog("CONNECTED: " + js.Name())
				} else {
					addLog("DISCONNECTED")
				}
				wasPresent = present
			}
			if changed := f.Buttons ^ lastButtons; changed != 0 {
				for b := 0; b < 32; b++ {
					if changed&(1<<b) == 0 {
						continue
					}
					state := "up"
					if f.Held(b) {
						state = "down"
					}
					addLog(fmt.Sprintf("BUTTON %d %s", b, state))
				}
				lastButtons = f.Buttons
			}
			draw(screen, js, f, present, eventLog)
		}
	}
}

func draw(screen tcell.Screen, js *device.Joystick, f input.Frame, present bool, eventLog []string) {
	_, h := screen.Size()
	bg := tcell.StyleDefault.Background(tcell.NewRGBColor(20, 20, 30))
	text := bg.Foreground(tcell.NewRGBColor(180, 180, 180))
	title := bg.Foreground(tcell.NewRGBColor(200, 200, 200)).Bold(true)

	screen.Fill(' ', bg)
	put(screen, 1, 0, "Controller probe - press q to quit", title)

	if !present {
		put(screen, 1, 2, fmt.Sprintf("No controller at index %d", *indexFlag), text.Foreground(tcell.NewRGBColor(255, 80, 80)))
	} else {
		raw := js.Raw()
		put(screen, 1, 2, "Device: "+js.Name(), text)
		for i, v := range raw.AxisData {
			put(screen, 1, 3+i, fmt.Sprintf("axis %2d  %6d  %s", i, v, bar(v, 20)), text)
		}
		row := 4 + len(raw.AxisData)
		put(screen, 1, row, fmt.Sprintf("buttons  %032b", raw.Buttons), text)
		put(screen, 1, row+1, fmt.Sprintf("frame    dpad (%d,%d)  stick (%+.2f,%+.2f)", f.DPadX, f.DPadY, f.StickX, f.StickY), text)
	}

	for i, entry := range eventLog {
		y := h - maxLog - 1 + i
		if y > 1 && y < h {
			put(screen, 1, y, entry, text)
		}
	}
	screen.Show()
}

// bar draws a centered gauge of width n for an axis value
func bar(v, n int) string {
	pos := (v + 32768) * n / 65536
	if pos < 0 {
		pos = 0
	}
	if pos >= n {
		pos = n - 1
	}
	return "[" + strings.Repeat("-", pos) + "|" + strings.Repeat("-", n-1-pos) + "]"
}

func put(screen tcell.Screen, x, y int, s string, st tcell.Style) {
	for _, ch := range s {
		screen.SetContent(x, y, ch, nil, st)
		x++
	}
}
