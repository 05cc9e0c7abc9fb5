package animation

import (
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/scene"
)

// Action is anything the Scheduler can drive frame by frame.
type Action interface {
	StartWithTarget(target *scene.Node)
	Step(dt float32)
	IsDone() bool
	Stop()
	Target() *scene.Node
}

// IntervalAction is an action with a fixed duration driven by Update(t), t in [0, 1].
type IntervalAction interface {
	Action
	Update(t float32)
	Duration() float32
	Elapsed() float32
}

// schedulerAware actions receive the scheduler that runs them.
type schedulerAware interface {
	attach(s *Scheduler)
}

// interval is the timing shared by every IntervalAction.
type interval struct {
	target    *scene.Node
	duration  float32
	elapsed   float32
	firstTick bool
}

func (i *interval) start(target *scene.Node) {
	i.target = target
	i.elapsed = 0
	i.firstTick = true
}

// advance returns the normalized time after adding dt. The first tick of a
// run always reports 0.
func (i *interval) advance(dt float32) float32 {
	if i.firstTick {
		i.firstTick = false
		i.elapsed = 0
	} else {
		i.elapsed += dt
	}
	d := i.duration
	if d < math.K_FLOAT_EPSILON {
		d = math.K_FLOAT_EPSILON
	}
	return math.Clamp(i.elapsed/d, 0, 1)
}

func (i *interval) Target() *scene.Node { return i.target }
func (i *interval) Duration() float32   { return i.duration }
func (i *interval) Elapsed() float32    { return i.elapsed }

func (i *interval) SetDuration(d float32) { i.duration = d }

func (i *interval) IsDone() bool {
	return i.elapsed >= i.duration
}
