package testbed

import (
	"github.com/spaghettifunk/anima-blend/engine/math"
)

// rateDriver stands in for a slider: it sweeps a value between 0 and 1, or
// follows manual nudges until the sweep is resumed.
type rateDriver struct {
	period  float32
	elapsed float32
	manual  bool
	rate    float32
}

func newRateDriver(period float32) *rateDriver {
	if period <= 0 {
		period = 1
	}
	return &rateDriver{period: period}
}

// Update advances the sweep by dt seconds. A non-zero nudge (units per
// second) switches to manual control.
func (d *rateDriver) Update(dt float32, nudge float32) float32 {
	if nudge != 0 {
		d.manual = true
		d.rate = math.Clamp(d.rate+nudge*dt, 0, 1)
		return d.rate
	}
	if d.manual {
		return d.rate
	}
	d.elapsed += dt
	for d.elapsed >= d.period {
		d.elapsed -= d.period
	}
	// 0 -> 1 -> 0 over one period
	d.rate = 0.5 - 0.5*math.Cos(d.elapsed/d.period*math.K_PI_2)
	return d.rate
}

// Resume hands control back to the sweep.
func (d *rateDriver) Resume() {
	d.manual = false
}

func (d *rateDriver) Rate() float32 { return d.rate }
