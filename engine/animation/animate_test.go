package animation

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/scene"
)

// Binary fractions keep the fade arithmetic exact in float32.
const (
	tick       = float32(1.0 / 16.0)
	transition = float32(1.0 / 8.0)
)

func newHero(t *testing.T) (*scene.Sprite3D, *scene.Bone) {
	core.SetLogOutput(io.Discard)
	sk := scene.NewSkeleton()
	root := scene.NewBone("root", math.NewVec3Zero(), math.NewQuatIdentity(), math.NewVec3One())
	require.NoError(t, sk.AddBone(root, nil))
	return scene.NewSprite3D("hero", sk), root
}

// slide moves the "root" curve along x from `from` to `to` over one second.
func slide(t *testing.T, name string, from, to float32) *Animation3D {
	return slideCurve(t, name, "root", from, to)
}

func slideCurve(t *testing.T, name, curve string, from, to float32) *Animation3D {
	anim, err := NewAnimation3D(name, 1)
	require.NoError(t, err)
	c, err := NewVec3Curve([]float32{0, 1}, []math.Vec3{math.NewVec3(from, 0, 0), math.NewVec3(to, 0, 0)})
	require.NoError(t, err)
	anim.AddCurve(curve, &Curve{Translate: c})
	return anim
}

func newLoop(t *testing.T, anim *Animation3D) (*RepeatForever, *Animate3D) {
	a, err := NewAnimate3D(anim)
	require.NoError(t, err)
	loop, err := NewRepeatForever(a)
	require.NoError(t, err)
	return loop, a
}

func newScheduler(t *testing.T, transitionTime float32) *Scheduler {
	s, err := NewScheduler(&core.AnimationConfig{TransitionTime: transitionTime, Quality: "high"})
	require.NoError(t, err)
	return s
}

func TestSchedulerConfigValidation(t *testing.T) {
	core.SetLogOutput(io.Discard)

	_, err := NewScheduler(&core.AnimationConfig{TransitionTime: -1})
	assert.Error(t, err)

	_, err = NewScheduler(&core.AnimationConfig{Quality: "ultra"})
	assert.Error(t, err)

	s, err := NewScheduler(nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, s.TransitionTime(), 1e-6)
	assert.Error(t, s.SetTransitionTime(-0.5))
}

func TestSchedulerRunRejectsNil(t *testing.T) {
	hero, _ := newHero(t)
	s := newScheduler(t, transition)

	assert.ErrorIs(t, s.Run(nil, hero.Node), core.ErrNilResource)

	a, err := NewAnimate3D(slide(t, "walk", 0, 10))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Run(a, nil), core.ErrNilTarget)
}

func TestCrossFade(t *testing.T) {
	hero, root := newHero(t)
	s := newScheduler(t, transition)

	walk, err := NewAnimate3D(slide(t, "walk", 0, 10))
	require.NoError(t, err)
	run, err := NewAnimate3D(slide(t, "run", 100, 200))
	require.NoError(t, err)

	require.NoError(t, s.Run(walk, hero.Node))
	assert.Equal(t, walk, s.Running(hero.Node))
	assert.Equal(t, StateRunning, walk.State())
	s.Update(tick)

	require.NoError(t, s.Run(run, hero.Node))
	assert.Nil(t, s.Running(hero.Node), "the outgoing controller only holds the fading-out slot")
	assert.Equal(t, walk, s.FadingOut(hero.Node))
	assert.Equal(t, run, s.FadingIn(hero.Node))
	assert.Equal(t, StateFadeOut, walk.State())
	assert.Equal(t, StateFadeIn, run.State())
	assert.Equal(t, float32(1), walk.Weight())
	assert.Equal(t, float32(0), run.Weight())

	s.Update(tick)
	s.Update(tick)
	assert.Equal(t, float32(0.5), walk.Weight())

	s.Update(tick)
	assert.True(t, walk.FadedOut())
	assert.Equal(t, StateStopped, walk.State())
	assert.Equal(t, float32(0.5), run.Weight())
	assert.Nil(t, s.FadingOut(hero.Node))
	assert.Nil(t, s.Running(hero.Node))
	assert.Equal(t, 1, s.ActionCount())

	root.ResetPose()
	s.Update(tick)
	assert.Equal(t, StateRunning, run.State())
	assert.Equal(t, float32(1), run.Weight())
	assert.Equal(t, run, s.Running(hero.Node))
	assert.Nil(t, s.FadingIn(hero.Node))
	assert.Nil(t, s.FadingOut(hero.Node))

	states := root.BlendStates()
	require.Len(t, states, 1, "only the incoming animation contributes once the other faded out")
	assert.Equal(t, run, states[0].Owner)
}

func TestZeroTransitionReplaces(t *testing.T) {
	hero, _ := newHero(t)
	s := newScheduler(t, 0)

	walk, err := NewAnimate3D(slide(t, "walk", 0, 10))
	require.NoError(t, err)
	run, err := NewAnimate3D(slide(t, "run", 100, 200))
	require.NoError(t, err)

	require.NoError(t, s.Run(walk, hero.Node))
	require.NoError(t, s.Run(run, hero.Node))

	assert.Equal(t, run, s.Running(hero.Node))
	assert.Equal(t, StateRunning, run.State())
	assert.Equal(t, float32(1), run.Weight())
	assert.Nil(t, s.FadingIn(hero.Node))
	assert.Nil(t, s.FadingOut(hero.Node))
	assert.Equal(t, StateStopped, walk.State())
	assert.Equal(t, float32(0), walk.Weight())

	// stopping the replaced controller must not evict its successor
	s.StopAction(walk)
	assert.Equal(t, run, s.Running(hero.Node))
	assert.Equal(t, 1, s.ActionCount())
}

func TestZeroTransitionDropsReplacedController(t *testing.T) {
	hero, root := newHero(t)
	s := newScheduler(t, 0)

	walkLoop, walk := newLoop(t, slide(t, "walk", 0, 10))
	runLoop, run := newLoop(t, slide(t, "run", 100, 200))
	require.NoError(t, s.Run(walkLoop, hero.Node))
	require.NoError(t, s.Run(runLoop, hero.Node))

	s.Update(tick)
	assert.True(t, walk.FadedOut())
	assert.Equal(t, 1, s.ActionCount())

	for i := 0; i < 40; i++ {
		root.ResetPose()
		s.Update(tick)
	}
	assert.Equal(t, run, s.Running(hero.Node))
	states := root.BlendStates()
	require.Len(t, states, 1)
	assert.Equal(t, run, states[0].Owner)
}

func TestStartDuringFadeTakesOverFromIncoming(t *testing.T) {
	hero, root := newHero(t)
	s := newScheduler(t, transition)

	walkLoop, walk := newLoop(t, slide(t, "walk", 0, 10))
	runLoop, run := newLoop(t, slide(t, "run", 100, 200))
	sprintLoop, sprint := newLoop(t, slide(t, "sprint", 300, 400))

	require.NoError(t, s.Run(walkLoop, hero.Node))
	s.Update(tick)
	require.NoError(t, s.Run(runLoop, hero.Node))
	s.Update(tick)
	require.NoError(t, s.Run(sprintLoop, hero.Node))

	assert.Equal(t, sprint, s.FadingIn(hero.Node))
	assert.Equal(t, run, s.FadingOut(hero.Node), "the controller fading in is the one that fades out")
	assert.Nil(t, s.Running(hero.Node))
	assert.Equal(t, StateFadeOut, run.State())
	assert.Equal(t, float32(0), run.Weight(), "fades out from the weight it had reached")
	assert.True(t, walk.FadedOut(), "the earlier fade-out is dropped")
	assert.Equal(t, StateStopped, walk.State())

	for i := 0; i < 200; i++ {
		root.ResetPose()
		s.Update(tick)
	}
	assert.Equal(t, sprint, s.Running(hero.Node))
	assert.Nil(t, s.FadingIn(hero.Node))
	assert.Nil(t, s.FadingOut(hero.Node))
	assert.Equal(t, StateRunning, sprint.State())
	assert.Equal(t, float32(1), sprint.Weight())
	assert.Equal(t, 1, s.ActionCount())
	assert.Greater(t, sprintLoop.Loops(), 0)

	states := root.BlendStates()
	require.Len(t, states, 1)
	assert.Equal(t, sprint, states[0].Owner)
}

func TestLoopRestartingWhileFadingOutKeepsFading(t *testing.T) {
	hero, _ := newHero(t)
	s := newScheduler(t, 0.5)

	walkLoop, walk := newLoop(t, slide(t, "walk", 0, 10))
	runLoop, run := newLoop(t, slide(t, "run", 100, 200))

	require.NoError(t, s.Run(walkLoop, hero.Node))
	for i := 0; i < 15; i++ {
		s.Update(tick)
	}
	require.NoError(t, s.Run(runLoop, hero.Node))
	s.Update(tick)
	s.Update(tick)

	require.Equal(t, 1, walkLoop.Loops(), "walk wrapped around mid fade")
	assert.Equal(t, StateFadeOut, walk.State())
	assert.Equal(t, walk, s.FadingOut(hero.Node))
	assert.Equal(t, run, s.FadingIn(hero.Node))
	assert.Nil(t, s.Running(hero.Node))

	for i := 0; i < 20; i++ {
		s.Update(tick)
	}
	assert.True(t, walk.FadedOut())
	assert.Equal(t, run, s.Running(hero.Node))
	assert.Nil(t, s.FadingOut(hero.Node))
	assert.Equal(t, 1, s.ActionCount())
}

func TestRunRejectsScheduledAction(t *testing.T) {
	hero, _ := newHero(t)
	s := newScheduler(t, transition)

	walk, err := NewAnimate3D(slide(t, "walk", 0, 10))
	require.NoError(t, err)
	require.NoError(t, s.Run(walk, hero.Node))
	assert.ErrorIs(t, s.Run(walk, hero.Node), core.ErrAlreadyScheduled)
	assert.Equal(t, 1, s.ActionCount())

	s.StopAction(walk)
	assert.NoError(t, s.Run(walk, hero.Node), "a stopped action can be scheduled again")
}

func TestNodeTargetHonoursWeight(t *testing.T) {
	hero, _ := newHero(t)
	flag := scene.NewNode("flag")
	hero.AddChild(flag)

	a, err := NewAnimate3D(slideCurve(t, "raise", "flag", 0, 10))
	require.NoError(t, err)
	a.StartWithTarget(hero.Node)
	require.NoError(t, a.SetWeight(0.25))
	a.Update(1)

	m, ok := flag.AdditionalTransform()
	require.True(t, ok)
	assert.InDelta(t, 2.5, m.Data[12], 1e-5, "the missing weight blends toward identity")
}

func TestNodeTargetCrossFadeBlends(t *testing.T) {
	hero, _ := newHero(t)
	flag := scene.NewNode("flag")
	hero.AddChild(flag)
	s := newScheduler(t, 0.25)

	low, err := NewAnimate3D(slideCurve(t, "low", "flag", 10, 10))
	require.NoError(t, err)
	high, err := NewAnimate3D(slideCurve(t, "high", "flag", 20, 20))
	require.NoError(t, err)

	frame := func() {
		s.Update(tick)
		hero.Visit(nil, math.NewMat4Identity(), false)
	}
	require.NoError(t, s.Run(low, hero.Node))
	frame()
	require.NoError(t, s.Run(high, hero.Node))

	frame()
	frame()
	frame()
	require.Equal(t, float32(0.5), low.Weight())
	require.Equal(t, float32(0.25), high.Weight())
	m, _ := flag.AdditionalTransform()
	assert.InDelta(t, 10, m.Data[12], 1e-4, "0.5*10 + 0.25*20 + 0.25*identity")

	s.Update(tick)
	require.Equal(t, float32(0.25), low.Weight())
	require.Equal(t, float32(0.5), high.Weight())
	assert.Len(t, flag.AnimationStates(), 2)
	m, _ = flag.AdditionalTransform()
	assert.InDelta(t, 12.5, m.Data[12], 1e-4)
	hero.Visit(nil, math.NewMat4Identity(), false)

	for i := 0; i < 4; i++ {
		frame()
	}
	assert.Equal(t, high, s.Running(hero.Node))
	m, _ = flag.AdditionalTransform()
	assert.InDelta(t, 20, m.Data[12], 1e-4)
}

func TestAnimationFinishes(t *testing.T) {
	hero, root := newHero(t)
	s := newScheduler(t, transition)

	walk, err := NewAnimate3D(slide(t, "walk", 0, 10))
	require.NoError(t, err)
	require.NoError(t, s.Run(walk, hero.Node))

	s.Update(0.5)
	s.Update(0.5)
	assert.True(t, root.BlendStates()[0].Translation.Compare(math.NewVec3(5, 0, 0), 1e-4))

	s.Update(0.5)
	assert.Equal(t, 0, s.ActionCount())
	assert.Nil(t, s.Running(hero.Node))
	assert.Nil(t, walk.Target())
}

func TestBindingPrefersBones(t *testing.T) {
	hero, _ := newHero(t)
	flag := scene.NewNode("flag")
	shadow := scene.NewNode("root")
	hero.AddChild(flag)
	hero.AddChild(shadow)

	anim, err := NewAnimation3D("wave", 1)
	require.NoError(t, err)
	c, err := NewVec3Curve([]float32{0, 1}, []math.Vec3{math.NewVec3(5, 0, 0), math.NewVec3(5, 0, 0)})
	require.NoError(t, err)
	anim.AddCurve("root", &Curve{Translate: c})
	anim.AddCurve("flag", &Curve{Translate: c})
	anim.AddCurve("missing", &Curve{Translate: c})

	b := bind(anim, hero.Node)
	require.Len(t, b, 2)
	assert.IsType(t, nodeTarget{}, b[0].target)
	assert.Equal(t, "flag", b[0].target.name())
	assert.IsType(t, boneTarget{}, b[1].target)
	assert.Equal(t, "root", b[1].target.name())

	a, err := NewAnimate3D(anim)
	require.NoError(t, err)
	a.StartWithTarget(hero.Node)
	a.Update(0.5)

	m, ok := flag.AdditionalTransform()
	require.True(t, ok)
	assert.InDelta(t, 5, m.Data[12], 1e-5)
	_, ok = shadow.AdditionalTransform()
	assert.False(t, ok, "a node named like a bone is shadowed by the bone")
}

func TestQualityNoneSkipsSampling(t *testing.T) {
	hero, root := newHero(t)
	s, err := NewScheduler(&core.AnimationConfig{TransitionTime: transition, Quality: "none"})
	require.NoError(t, err)

	walk, err := NewAnimate3D(slide(t, "walk", 0, 10))
	require.NoError(t, err)
	require.NoError(t, s.Run(walk, hero.Node))
	assert.Equal(t, QualityNone, walk.Quality())

	s.Update(tick)
	s.Update(tick)
	assert.Empty(t, root.BlendStates())
}

func TestQualityLowSnapsToKeys(t *testing.T) {
	hero, root := newHero(t)

	walk, err := NewAnimate3D(slide(t, "walk", 0, 10))
	require.NoError(t, err)
	walk.SetQuality(QualityLow)
	walk.StartWithTarget(hero.Node)

	walk.Update(0.25)
	assert.Equal(t, float32(0), root.BlendStates()[0].Translation.X)
	walk.Update(0.75)
	assert.Equal(t, float32(10), root.BlendStates()[0].Translation.X)
}

func TestExplicitQualityWinsOverScheduler(t *testing.T) {
	hero, _ := newHero(t)
	s, err := NewScheduler(&core.AnimationConfig{Quality: "low"})
	require.NoError(t, err)

	a, err := NewAnimate3D(slide(t, "walk", 0, 10))
	require.NoError(t, err)
	b := a.Clone()
	b.SetQuality(QualityHigh)

	require.NoError(t, s.Run(a, hero.Node))
	require.NoError(t, s.Run(b, hero.Node))
	assert.Equal(t, QualityLow, a.Quality())
	assert.Equal(t, QualityHigh, b.Quality())
}

func TestSpeedAndWeight(t *testing.T) {
	a, err := NewAnimate3D(slide(t, "walk", 0, 10))
	require.NoError(t, err)

	require.NoError(t, a.SetSpeed(2))
	assert.Equal(t, float32(0.5), a.Duration())
	assert.Equal(t, float32(1), a.OriginInterval())

	require.NoError(t, a.SetSpeed(-4))
	assert.Equal(t, float32(-4), a.Speed())
	assert.Equal(t, float32(0.25), a.Duration())

	assert.ErrorIs(t, a.SetSpeed(0), core.ErrInvalidSpeed)
	assert.ErrorIs(t, a.SetWeight(-1), core.ErrInvalidWeight)
	require.NoError(t, a.SetWeight(0.3))
	assert.Equal(t, float32(0.3), a.Weight())
}

func TestReversePlaysBackwards(t *testing.T) {
	hero, root := newHero(t)

	a, err := NewAnimate3D(slide(t, "walk", 0, 10))
	require.NoError(t, err)
	r := a.Reverse()
	assert.Equal(t, float32(-1), r.Speed())
	assert.Equal(t, float32(1), a.Speed(), "reversing returns a copy")

	r.StartWithTarget(hero.Node)
	r.Update(0)
	assert.Equal(t, float32(10), root.BlendStates()[0].Translation.X)
}

func TestRangeAndFrames(t *testing.T) {
	core.SetLogOutput(io.Discard)
	anim, err := NewAnimation3D("idle", 2)
	require.NoError(t, err)

	a, err := NewAnimate3DRange(anim, 0.5, 5)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), a.Duration(), "duration clamps to the remaining time")
	assert.Equal(t, float32(0.25), a.start)
	assert.Equal(t, float32(0.75), a.last)

	_, err = NewAnimate3DRange(anim, 2, 1)
	assert.Error(t, err)

	f, err := NewAnimate3DFrames(anim, 30, 60, 30)
	require.NoError(t, err)
	assert.InDelta(t, 1, f.Duration(), 1e-5)
	assert.InDelta(t, 0.5, f.start, 1e-5)

	_, err = NewAnimate3DFrames(anim, 0, 10, 0)
	assert.Error(t, err)
}

func TestRangeSamplesInsideWindow(t *testing.T) {
	hero, root := newHero(t)
	anim := slide(t, "walk", 0, 10)

	a, err := NewAnimate3DRange(anim, 0.5, 0.25)
	require.NoError(t, err)
	a.StartWithTarget(hero.Node)

	a.Update(0)
	assert.InDelta(t, 5, root.BlendStates()[0].Translation.X, 1e-4)
	a.Update(1)
	assert.InDelta(t, 7.5, root.BlendStates()[0].Translation.X, 1e-4)
}

func TestStoppedControllerIsInert(t *testing.T) {
	hero, root := newHero(t)
	a, err := NewAnimate3D(slide(t, "walk", 0, 10))
	require.NoError(t, err)
	a.StartWithTarget(hero.Node)
	a.Stop()

	a.Update(0.5)
	assert.Empty(t, root.BlendStates())
	assert.Equal(t, StateStopped, a.State())
}
