package animation

import (
	"fmt"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/scene"
)

// fader is implemented by actions that can finish early by fading out.
type fader interface {
	FadedOut() bool
}

// RepeatForever restarts its inner action each time it completes. It only
// ends when stopped, or when the inner controller has been faded out.
type RepeatForever struct {
	inner  IntervalAction
	target *scene.Node
	loops  int
}

func NewRepeatForever(inner IntervalAction) (*RepeatForever, error) {
	if inner == nil {
		return nil, fmt.Errorf("repeat forever: %w", core.ErrNilResource)
	}
	return &RepeatForever{inner: inner}, nil
}

func (r *RepeatForever) Inner() IntervalAction { return r.inner }

// Loops counts completed runs of the inner action.
func (r *RepeatForever) Loops() int { return r.loops }

func (r *RepeatForever) attach(s *Scheduler) {
	if sa, ok := r.inner.(schedulerAware); ok {
		sa.attach(s)
	}
}

func (r *RepeatForever) StartWithTarget(target *scene.Node) {
	r.target = target
	r.loops = 0
	r.inner.StartWithTarget(target)
}

func (r *RepeatForever) Step(dt float32) {
	if r.target == nil {
		return
	}
	r.inner.Step(dt)
	if r.fadedOut() || !r.inner.IsDone() {
		return
	}
	r.loops++
	overshoot := r.inner.Elapsed() - r.inner.Duration()
	r.inner.StartWithTarget(r.target)
	// the restart tick samples t=0, the next one carries the overshoot
	r.inner.Step(0)
	if overshoot > 0 {
		r.inner.Step(overshoot)
	}
}

func (r *RepeatForever) IsDone() bool { return r.fadedOut() }

func (r *RepeatForever) fadedOut() bool {
	f, ok := r.inner.(fader)
	return ok && f.FadedOut()
}

func (r *RepeatForever) Stop() {
	r.inner.Stop()
	r.target = nil
}

func (r *RepeatForever) Target() *scene.Node { return r.target }
