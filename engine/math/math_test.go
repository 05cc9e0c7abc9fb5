package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const tol = float32(1e-5)

func TestVec2Helpers(t *testing.T) {
	v := NewVec2(3, 4)
	assert.Equal(t, float32(5), v.Length())
	assert.Equal(t, NewVec2(-4, 3), v.Perp())
	assert.Equal(t, float32(0), v.Dot(v.Perp()))
	assert.True(t, v.Normalize().Compare(NewVec2(0.6, 0.8), tol))
	assert.Equal(t, NewVec2Zero(), NewVec2Zero().Normalize(), "zero vector must not produce NaN")
}

func TestQuaternionToMat4MatchesEulerZ(t *testing.T) {
	angle := DegToRad(30)
	q := NewQuatFromAxisAngle(NewVec3(0, 0, 1), angle, true)
	assert.True(t, q.ToMat4().Compare(NewMat4EulerZ(angle), tol))

	p := NewVec3(1, 0, 0).Transform(NewMat4EulerZ(K_HALF_PI))
	assert.True(t, p.Compare(NewVec3(0, 1, 0), tol))
}

func TestMat4FromTRSOrder(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3(0, 0, 1), K_HALF_PI, true)
	m := NewMat4FromTRS(NewVec3(10, 0, 0), q, NewVec3(2, 2, 2))

	// scale (1,0)->(2,0), rotate -> (0,2), translate -> (10,2)
	p := NewVec3(1, 0, 0).Transform(m)
	assert.True(t, p.Compare(NewVec3(10, 2, 0), tol), "got %v", p)
}

func TestSlerpEndpoints(t *testing.T) {
	a := NewQuatIdentity()
	b := NewQuatFromAxisAngle(NewVec3(0, 1, 0), K_HALF_PI, true)

	assert.True(t, a.Slerp(b, 0).Compare(a, tol))
	assert.True(t, a.Slerp(b, 1).Compare(b, tol))

	half := a.Slerp(b, 0.5)
	expected := NewQuatFromAxisAngle(NewVec3(0, 1, 0), K_HALF_PI/2, true)
	assert.True(t, half.Compare(expected, tol))
}

func TestTransformWorldChain(t *testing.T) {
	parent := TransformCreate()
	parent.SetPosition(NewVec3(5, 0, 0))
	child := TransformCreate()
	child.SetPosition(NewVec3(0, 3, 0))
	child.Parent = parent

	p := NewVec3Zero().Transform(child.GetWorld())
	assert.True(t, p.Compare(NewVec3(5, 3, 0), tol))
}

func TestColorConversionClamps(t *testing.T) {
	c := NewColor4F(2, -1, 0.5, 1).ToColor4B()
	assert.Equal(t, Color4B{255, 0, 128, 255}, c)
	assert.Equal(t, 3, Clamp(5, 0, 3))
}
