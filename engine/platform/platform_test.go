package platform

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/anima-blend/engine/core"
)

func TestKeyCode(t *testing.T) {
	cases := []struct {
		key  ebiten.Key
		want core.KeyCode
	}{
		{ebiten.KeyA, core.KEY_A},
		{ebiten.KeyZ, core.KEY_Z},
		{ebiten.KeyDigit0, core.KEY_0},
		{ebiten.KeyDigit9, core.KEY_9},
		{ebiten.KeyEscape, core.KEY_ESCAPE},
		{ebiten.KeySpace, core.KEY_SPACE},
		{ebiten.KeyShiftRight, core.KEY_SHIFT},
		{ebiten.KeyArrowUp, core.KEY_UP},
	}
	for _, c := range cases {
		got, ok := keyCode(c.key)
		assert.True(t, ok, c.key.String())
		assert.Equal(t, c.want, got, c.key.String())
	}

	_, ok := keyCode(ebiten.KeyF1)
	assert.False(t, ok)
}

func TestNewDerivesTicksFromFixedStep(t *testing.T) {
	w := New(&core.ApplicationConfig{Name: "demo", Width: 320, Height: 200, FixedStep: 1.0 / 30.0})
	assert.Equal(t, 30, w.tps)
	assert.Equal(t, 320, w.width)

	w = New(&core.ApplicationConfig{Name: "demo", Width: 320, Height: 200})
	assert.Equal(t, 60, w.tps)
}

func TestRunRejectsNilCallbacks(t *testing.T) {
	w := New(&core.ApplicationConfig{Name: "demo", Width: 8, Height: 8})
	assert.ErrorIs(t, w.Run(nil, nil), core.ErrNilResource)
}

func TestClampU16(t *testing.T) {
	assert.Equal(t, uint16(0), clampU16(-4))
	assert.Equal(t, uint16(12), clampU16(12))
	assert.Equal(t, uint16(0xFFFF), clampU16(1<<20))
}
