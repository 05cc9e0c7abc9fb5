package animation

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/scene"
)

func TestRotateBy(t *testing.T) {
	node := scene.NewNode("spinner")
	s := newScheduler(t, transition)

	require.NoError(t, s.Run(NewRotateBy(1, 90), node))
	s.Update(0.5)
	assert.Equal(t, float32(0), node.Rotation())
	s.Update(0.5)
	assert.InDelta(t, 45, node.Rotation(), 1e-4)
	s.Update(0.5)
	assert.InDelta(t, 90, node.Rotation(), 1e-4)
	assert.Equal(t, 0, s.ActionCount())
}

func TestRepeatForeverCarriesOvershoot(t *testing.T) {
	core.SetLogOutput(io.Discard)
	node := scene.NewNode("spinner")
	s := newScheduler(t, transition)

	rep, err := NewRepeatForever(NewRotateBy(1, 90))
	require.NoError(t, err)
	require.NoError(t, s.Run(rep, node))

	s.Update(0.75)
	s.Update(0.75)
	assert.InDelta(t, 67.5, node.Rotation(), 1e-4)

	s.Update(0.75)
	assert.Equal(t, 1, rep.Loops())
	assert.InDelta(t, 135, node.Rotation(), 1e-4)
	assert.False(t, rep.IsDone())
	assert.Equal(t, 1, s.ActionCount())

	s.StopAllForTarget(node)
	assert.Equal(t, 0, s.ActionCount())
	assert.Nil(t, rep.Target())
}

func TestRepeatForeverRejectsNil(t *testing.T) {
	_, err := NewRepeatForever(nil)
	assert.ErrorIs(t, err, core.ErrNilResource)
}

func TestRepeatedAnimationLoopsAndFadesOut(t *testing.T) {
	hero, _ := newHero(t)
	s := newScheduler(t, transition)

	walk, err := NewAnimate3D(slide(t, "walk", 0, 10))
	require.NoError(t, err)
	loop, err := NewRepeatForever(walk)
	require.NoError(t, err)
	require.NoError(t, s.Run(loop, hero.Node))

	for i := 0; i < 20; i++ {
		s.Update(0.125)
	}
	assert.Equal(t, 2, loop.Loops())
	assert.Equal(t, walk, s.Running(hero.Node))

	run, err := NewAnimate3D(slide(t, "run", 100, 200))
	require.NoError(t, err)
	require.NoError(t, s.Run(run, hero.Node))
	for i := 0; i < 8; i++ {
		s.Update(tick)
	}
	assert.True(t, loop.IsDone())
	assert.Equal(t, run, s.Running(hero.Node))
	assert.Equal(t, 1, s.ActionCount())
}
