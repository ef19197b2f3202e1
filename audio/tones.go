package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

const sampleRate = beep.SampleRate(48000)

// ToneGenerator produces a sine tone with a linear attack and exponential decay
// It ends after its duration, so it can be added to a mixer without Take
type ToneGenerator struct {
	sr      beep.SampleRate
	freq    float64
	amp     float64
	attack  int
	decay   float64
	samples int
	pos     int
}

// NewToneGenerator creates a tone of freq Hz lasting d
func NewToneGenerator(sr beep.SampleRate, freq, amp float64, d time.Duration) *ToneGenerator {
	return &ToneGenerator{
		sr:      sr,
		freq:    freq,
		amp:     amp,
		attack:  sr.N(5 * time.Millisecond),
		decay:   6 / d.Seconds(),
		samples: sr.N(d),
	}
}

func (g *ToneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	if g.pos >= g.samples {
		return 0, false
	}
	for i := range samples {
		if g.pos >= g.samples {
			return i, true
		}
		t := float64(g.pos) / float64(g.sr)

		env := math.Exp(-t * g.decay)
		if g.pos < g.attack {
			env *= float64(g.pos) / float64(g.attack)
		}
		sample := g.amp * env * math.Sin(2*math.Pi*g.freq*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ToneGenerator) Err() error {
	return nil
}

// ChirpGenerator sweeps linearly from one frequency to another
type ChirpGenerator struct {
	sr      beep.SampleRate
	from    float64
	to      float64
	amp     float64
	samples int
	pos     int
	phase   float64
}

// NewChirpGenerator creates a sweep from one frequency to another over d
func NewChirpGenerator(sr beep.SampleRate, from, to, amp float64, d time.Duration) *ChirpGenerator {
	return &ChirpGenerator{
		sr:      sr,
		from:    from,
		to:      to,
		amp:     amp,
		samples: sr.N(d),
	}
}

func (g *ChirpGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	if g.pos >= g.samples {
		return 0, false
	}
	for i := range samples {
		if g.pos >= g.samples {
			return i, true
		}
		frac := float64(g.pos) / float64(g.samples)
		freq := g.from + (g.to-g.from)*frac

		// Fade the last quarter to avoid a click
		env := 1.0
		if frac > 0.75 {
			env = (1 - frac) * 4
		}
		sample := g.amp * env * math.Sin(2*math.Pi*g.phase)

		g.phase += freq / float64(g.sr)
		if g.phase >= 1 {
			g.phase -= 1
		}

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ChirpGenerator) Err() error {
	return nil
}
