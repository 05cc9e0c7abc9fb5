package animation

import (
	"fmt"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/scene"
)

type State uint8

const (
	StateStopped State = iota
	StateRunning
	StateFadeIn
	StateFadeOut
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateFadeIn:
		return "fade-in"
	case StateFadeOut:
		return "fade-out"
	default:
		return "stopped"
	}
}

/**
 * @brief Plays an Animation3D on a node's skeleton bones or child nodes.
 * Starting it on a target that already runs another controller cross-fades
 * from that controller over the scheduler's transition time.
 */
type Animate3D struct {
	interval

	animation *Animation3D
	scheduler *Scheduler

	// start and length of the played range, as fractions of the animation
	start float32
	last  float32

	originInterval float32
	absSpeed       float32
	playReverse    bool
	weight         float32

	quality       Quality
	qualitySet    bool
	translateEval EvaluateType
	rotateEval    EvaluateType
	scaleEval     EvaluateType

	state        State
	accTransTime float32
	lastTime     float32
	fadedOut     bool

	bindings []binding
	boundTo  *scene.Node
}

func NewAnimate3D(anim *Animation3D) (*Animate3D, error) {
	if anim == nil {
		return nil, fmt.Errorf("animate3d: %w", core.ErrNilResource)
	}
	return NewAnimate3DRange(anim, 0, anim.Duration())
}

// NewAnimate3DRange plays duration seconds starting at fromTime. The duration
// is clamped to what remains of the animation.
func NewAnimate3DRange(anim *Animation3D, fromTime, duration float32) (*Animate3D, error) {
	if anim == nil {
		return nil, fmt.Errorf("animate3d: %w", core.ErrNilResource)
	}
	full := anim.Duration()
	if fromTime < 0 || fromTime >= full {
		return nil, fmt.Errorf("animate3d '%s': start %f outside [0, %f)", anim.Name(), fromTime, full)
	}
	if duration > full-fromTime {
		duration = full - fromTime
	}
	if duration <= 0 {
		return nil, fmt.Errorf("animate3d '%s': duration must be > 0", anim.Name())
	}

	a := &Animate3D{
		animation:      anim,
		start:          fromTime / full,
		last:           duration / full,
		originInterval: duration,
		absSpeed:       1,
		weight:         1,
	}
	a.duration = duration
	a.applyQuality(QualityHigh)
	return a, nil
}

// NewAnimate3DFrames plays frames [startFrame, endFrame) at frameRate.
func NewAnimate3DFrames(anim *Animation3D, startFrame, endFrame int, frameRate float32) (*Animate3D, error) {
	if frameRate <= 0 {
		return nil, fmt.Errorf("animate3d: frame rate must be > 0, got %f", frameRate)
	}
	perFrame := 1 / frameRate
	return NewAnimate3DRange(anim, float32(startFrame)*perFrame, float32(endFrame-startFrame)*perFrame)
}

// Clone copies the playback settings; the copy is not started.
func (a *Animate3D) Clone() *Animate3D {
	c := &Animate3D{
		animation:      a.animation,
		start:          a.start,
		last:           a.last,
		originInterval: a.originInterval,
		absSpeed:       a.absSpeed,
		playReverse:    a.playReverse,
		weight:         a.weight,
		qualitySet:     a.qualitySet,
	}
	c.duration = a.duration
	c.elapsed = a.elapsed
	c.applyQuality(a.quality)
	return c
}

// Reverse returns a clone playing in the opposite direction.
func (a *Animate3D) Reverse() *Animate3D {
	c := a.Clone()
	c.playReverse = !c.playReverse
	return c
}

func (a *Animate3D) Animation() *Animation3D { return a.animation }
func (a *Animate3D) State() State            { return a.state }
func (a *Animate3D) Weight() float32         { return a.weight }
func (a *Animate3D) Quality() Quality        { return a.quality }
func (a *Animate3D) OriginInterval() float32 { return a.originInterval }

// FadedOut reports whether a cross-fade has taken this controller to zero weight.
func (a *Animate3D) FadedOut() bool { return a.fadedOut }

// SetWeight sets the blend weight used while running.
func (a *Animate3D) SetWeight(weight float32) error {
	if weight < 0 {
		return fmt.Errorf("animate3d weight %f: %w", weight, core.ErrInvalidWeight)
	}
	a.weight = weight
	return nil
}

func (a *Animate3D) Speed() float32 {
	if a.playReverse {
		return -a.absSpeed
	}
	return a.absSpeed
}

// SetSpeed scales playback; a negative speed plays backwards.
func (a *Animate3D) SetSpeed(speed float32) error {
	if speed == 0 {
		return fmt.Errorf("animate3d speed: %w", core.ErrInvalidSpeed)
	}
	a.absSpeed = math.Abs(speed)
	a.playReverse = speed < 0
	a.duration = a.originInterval / a.absSpeed
	return nil
}

func (a *Animate3D) SetQuality(q Quality) {
	a.qualitySet = true
	a.applyQuality(q)
}

func (a *Animate3D) applyQuality(q Quality) {
	a.quality = q
	if q != QualityNone {
		a.translateEval, a.rotateEval, a.scaleEval = q.evaluators()
	}
}

func (a *Animate3D) attach(s *Scheduler) {
	a.scheduler = s
	if !a.qualitySet {
		a.applyQuality(s.quality)
	}
}

func (a *Animate3D) transitionTime() float32 {
	if a.scheduler == nil {
		return 0
	}
	return a.scheduler.transitionTime
}

/**
 * @brief Binds the curves (once per target) and takes over the target's
 * registry slot, fading out the controller fading in or running there.
 */
func (a *Animate3D) StartWithTarget(target *scene.Node) {
	if target == nil {
		core.LogWarn("animate3d '%s' started without a target", a.animation.Name())
		return
	}
	if a.scheduler == nil {
		core.LogWarn("animate3d '%s' started outside a scheduler; cross-fading disabled", a.animation.Name())
	}
	a.interval.start(target)
	a.lastTime = 0
	a.fadedOut = false

	if a.boundTo != target {
		a.bindings = bind(a.animation, target)
		a.boundTo = target
		if len(a.bindings) == 0 {
			core.LogWarn("animate3d '%s': no curve matches a bone or node of '%s'", a.animation.Name(), target.Name())
		}
	}

	s := a.scheduler
	if s == nil {
		a.state = StateRunning
		a.weight = 1
		return
	}

	// a looping controller restarting mid fade-out keeps fading
	if a.state == StateFadeOut && s.fadeOut[target] == a {
		return
	}

	// the incumbent is the controller fading in, else the one running
	incumbent := s.fadeIn[target]
	if incumbent == nil {
		incumbent = s.running[target]
	}
	if incumbent == a {
		return
	}
	if incumbent == nil {
		s.running[target] = a
		a.state = StateRunning
		a.weight = 1
		return
	}

	delete(s.fadeIn, target)
	delete(s.running, target)
	if previous := s.fadeOut[target]; previous != nil {
		delete(s.fadeOut, target)
		previous.retire()
	}

	if s.transitionTime < minTransitionTime {
		incumbent.retire()
		s.running[target] = a
		a.state = StateRunning
		a.weight = 1
		return
	}

	// a controller still fading in fades out from the weight it reached
	from := float32(1)
	if incumbent.state == StateFadeIn {
		from = incumbent.weight
	}
	s.fadeOut[target] = incumbent
	incumbent.state = StateFadeOut
	incumbent.weight = from
	incumbent.accTransTime = (1 - from) * s.transitionTime
	incumbent.lastTime = 0

	s.fadeIn[target] = a
	a.accTransTime = 0
	a.state = StateFadeIn
	a.weight = 0
	a.lastTime = 0
}

// retire takes a controller that lost its registry slot to zero weight. It is
// never sampled again and the scheduler drops it on the next update.
func (a *Animate3D) retire() {
	a.state = StateStopped
	a.weight = 0
	a.fadedOut = true
}

func (a *Animate3D) Step(dt float32) {
	a.Update(a.advance(dt))
}

// IsDone is true once the range has played, or a fade-out has reached zero weight.
func (a *Animate3D) IsDone() bool {
	return a.fadedOut || a.interval.IsDone()
}

// Stop releases the registry slots this controller holds for its target.
func (a *Animate3D) Stop() {
	if a.target != nil && a.scheduler != nil {
		a.scheduler.unregister(a.target, a)
	}
	a.state = StateStopped
	a.target = nil
}

/**
 * @brief Advances the fade and samples every bound curve at normalized time t.
 */
func (a *Animate3D) Update(t float32) {
	if a.target == nil {
		return
	}
	s := a.scheduler
	transTime := a.transitionTime()

	switch {
	case a.state == StateFadeIn && a.lastTime > 0:
		a.accTransTime += (t - a.lastTime) * a.duration
		a.weight = a.accTransTime / transTime
		if a.weight >= 1 {
			a.accTransTime = transTime
			a.weight = 1
			a.state = StateRunning
			if s != nil && s.fadeIn[a.target] == a {
				delete(s.fadeIn, a.target)
				s.running[a.target] = a
			}
		}
	case a.state == StateFadeOut && a.lastTime > 0:
		a.accTransTime += (t - a.lastTime) * a.duration
		a.weight = 1 - a.accTransTime/transTime
		if a.weight <= 0 {
			a.accTransTime = transTime
			a.weight = 0
			a.fadedOut = true
			if s != nil && s.fadeOut[a.target] == a {
				delete(s.fadeOut, a.target)
			}
		}
	}
	a.lastTime = t

	if a.quality == QualityNone || a.weight <= 0 {
		return
	}
	if a.playReverse {
		t = 1 - t
	}
	t = a.start + t*a.last
	a.sample(t)
}

func (a *Animate3D) sample(t float32) {
	for _, b := range a.bindings {
		var trans, scale *math.Vec3
		var rot *math.Quaternion
		if b.curve.Translate != nil {
			v := b.curve.Translate.Evaluate(t, a.translateEval)
			trans = &v
		}
		if b.curve.Rotate != nil {
			q := b.curve.Rotate.Evaluate(t, a.rotateEval)
			rot = &q
		}
		if b.curve.Scale != nil {
			v := b.curve.Scale.Evaluate(t, a.scaleEval)
			scale = &v
		}
		b.target.apply(trans, rot, scale, a, a.weight)
	}
}
