package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/coral-compass/config"
	"github.com/lixenwraith/coral-compass/engine"
	"github.com/lixenwraith/coral-compass/render"
	"github.com/lixenwraith/coral-compass/telemetry"
)

var (
	configFlag   = flag.String("config", "", "YAML config file")
	debugFlag    = flag.Bool("debug", false, "Write logs to logs/coral-compass.log")
	sourceFlag   = flag.String("source", "", "Input source: joystick, keyboard")
	deviceFlag   = flag.Int("device", -1, "Joystick index")
	debounceFlag = flag.Duration("debounce", 0, "Per-direction debounce interval")
	noAudioFlag  = flag.Bool("no-audio", false, "Disable feedback tones")
	tcpFlag      = flag.String("tcp", "", "Enable the TCP table transport at this address")
	redisFlag    = flag.String("redis", "", "Enable the Redis publisher for this server")
	wsFlag       = flag.String("ws", "", "Enable the WebSocket feed at this address")
)

func main() {
	flag.Parse()

	logFile := setupLogging(*debugFlag)
	if logFile != nil {
		defer logFile.Close()
	}

	cfg := config.Default()
	if *configFlag != "" {
		var err error
		if cfg, err = config.Load(*configFlag); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}
	overrides{
		source:   *sourceFlag,
		device:   *deviceFlag,
		debounce: *debounceFlag,
		noAudio:  *noAudioFlag,
		tcp:      *tcpFlag,
		redis:    *redisFlag,
		ws:       *wsFlag,
	}.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	table := telemetry.NewTable(cfg.Telemetry.Table)
	hub, feedback, err := buildServices(cfg, table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "services: %v\n", err)
		os.Exit(1)
	}
	if err := hub.StartAll(); err != nil {
		fmt.Fprintf(os.Stderr, "services: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := hub.StopAll(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}

	// Panic recovery: reset the terminal so the trace is readable
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mCORAL COMPASS CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			hub.StopAll()
			os.Exit(1)
		}
	}()
	defer screen.Fini()

	run(screen, cfg, table, feedback)
}

// run owns the controller and renderer until the operator quits
func run(screen tcell.Screen, cfg *config.Config, table *telemetry.Table, cues cuePlayer) {
	src, keyboard := buildSource(cfg)
	defer src.Close()

	renderer := render.NewRenderer(screen, render.DefaultPalette(), float64(cfg.Display.Radius))
	ctrl := engine.NewController(controllerOptions(cfg), engine.NewMonotonicTimeProvider())
	ctrl.SetLayout(renderer.Layout())
	keys := telemetryKeys(cfg)

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	ticker := time.NewTicker(cfg.Tick())
	defer ticker.Stop()

	renderer.Draw(ctrl.Last())
	log.Printf("coral-compass started: source=%s table=%s", cfg.Input.Source, table.Name())

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok {
				return
			}
			if _, resized := ev.(*tcell.EventResize); resized {
				screen.Sync()
				ctrl.SetLayout(renderer.Layout())
			}
			if !keyboard.HandleEvent(ev) {
				return
			}

		case <-ticker.C:
			snap := ctrl.Step(src)
			ctrl.Report(table, keys)
			playCues(cues, snap)
			renderer.Draw(snap)
		}
	}
}
