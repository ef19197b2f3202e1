// Package audio plays short cues for selection changes
package audio

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// Cue parameters
const (
	stepFreq     = 880.0
	stepDuration = 40 * time.Millisecond
	sideFreq     = 523.25
	sideDuration = 90 * time.Millisecond
	armFrom      = 330.0
	armTo        = 990.0
	armDuration  = 200 * time.Millisecond
	cueAmplitude = 0.3
)

var speakerInit = speaker.Init

// Feedback plays cues through the speaker
// All Play methods are no-ops until Init succeeds
type Feedback struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	output      beep.Streamer
	initialized bool
	disabled    bool
}

// NewFeedback creates a feedback player; volume is 0..1
func NewFeedback(enabled bool, volume float64) *Feedback {
	f := &Feedback{
		mixer:    &beep.Mixer{},
		disabled: !enabled,
	}
	f.output = &effects.Gain{Streamer: f.mixer, Gain: clampVolume(volume) - 1}
	return f
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Init opens the speaker
// A missing backend disables feedback and is reported for logging only
func (f *Feedback) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.initialized || f.disabled {
		return nil
	}

	if err := speakerInit(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		f.disabled = true
		return err
	}
	speaker.Play(f.output)
	f.initialized = true
	return nil
}

// Close stops every cue and releases the speaker
func (f *Feedback) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized {
		return
	}
	speaker.Lock()
	f.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	f.initialized = false
}

// Name implements service.Service
func (f *Feedback) Name() string {
	return "audio"
}

// Dependencies implements service.Service
func (f *Feedback) Dependencies() []string {
	return nil
}

// Start implements service.Service; a failed backend leaves cues silent
func (f *Feedback) Start() error {
	if err := f.Init(); err != nil {
		log.Printf("audio: speaker unavailable, continuing without feedback: %v", err)
	}
	return nil
}

// Stop implements service.Service
func (f *Feedback) Stop() error {
	f.Close()
	return nil
}

// Enabled reports whether cues reach the speaker
func (f *Feedback) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initialized
}

// PlayStep plays the short tick for a column or row change
func (f *Feedback) PlayStep() {
	f.add(NewToneGenerator(sampleRate, stepFreq, cueAmplitude, stepDuration))
}

// PlaySide plays the lower tone for a side change
func (f *Feedback) PlaySide() {
	f.add(NewToneGenerator(sampleRate, sideFreq, cueAmplitude, sideDuration))
}

// PlayArmed plays a rising chirp when input becomes live
func (f *Feedback) PlayArmed() {
	f.add(NewChirpGenerator(sampleRate, armFrom, armTo, cueAmplitude, armDuration))
}

func (f *Feedback) add(s beep.Streamer) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized {
		return
	}
	speaker.Lock()
	f.mixer.Add(s)
	speaker.Unlock()
}
