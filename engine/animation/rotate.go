package animation

import "github.com/spaghettifunk/anima-blend/engine/scene"

// RotateBy spins the target about Z by a fixed number of degrees.
type RotateBy struct {
	interval
	delta float32
	from  float32
}

func NewRotateBy(duration, degrees float32) *RotateBy {
	r := &RotateBy{delta: degrees}
	r.duration = duration
	return r
}

func (r *RotateBy) StartWithTarget(target *scene.Node) {
	r.interval.start(target)
	if target != nil {
		r.from = target.Rotation()
	}
}

func (r *RotateBy) Step(dt float32) {
	r.Update(r.advance(dt))
}

func (r *RotateBy) Update(t float32) {
	if r.target == nil {
		return
	}
	r.target.SetRotation(r.from + r.delta*t)
}

func (r *RotateBy) Stop() {
	r.target = nil
}
