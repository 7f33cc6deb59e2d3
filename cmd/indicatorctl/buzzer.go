package main

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	buzzerRate = beep.SampleRate(44100)
	buzzerFreq = 880.0
	buzzerGain = 0.2
)

// startBuzzer plays a tone whenever lit is set and silence otherwise.
func startBuzzer(lit *atomic.Bool) (stop func(), err error) {
	if err := speaker.Init(buzzerRate, buzzerRate.N(time.Second/20)); err != nil {
		return nil, err
	}
	step := 2 * math.Pi * buzzerFreq / float64(buzzerRate)
	var phase float64
	speaker.Play(beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		on := lit.Load()
		for i := range samples {
			v := 0.0
			if on {
				v = buzzerGain * math.Sin(phase)
			}
			phase = math.Mod(phase+step, 2*math.Pi)
			samples[i][0], samples[i][1] = v, v
		}
		return len(samples), true
	}))
	return speaker.Clear, nil
}
