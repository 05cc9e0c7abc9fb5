package animation

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/anima-blend/engine/math"
)

// EvaluateType selects how a curve interpolates between two keys.
type EvaluateType uint8

const (
	EvaluateLinear EvaluateType = iota
	EvaluateNear
	EvaluateQuatSlerp
	EvaluateQuatNlerp
)

// locate finds the key segment containing t. Keys are normalized times in
// ascending order; t outside the keys clamps to the end values.
func locate(keys []float32, t float32) (int, float32) {
	last := len(keys) - 1
	if t <= keys[0] {
		return 0, 0
	}
	if t >= keys[last] {
		return last, 0
	}
	j := sort.Search(len(keys), func(k int) bool { return keys[k] > t })
	i := j - 1
	span := keys[j] - keys[i]
	if span <= 0 {
		return i, 0
	}
	return i, (t - keys[i]) / span
}

func validateKeys(keys []float32, values int) error {
	if len(keys) == 0 {
		return fmt.Errorf("curve needs at least one key")
	}
	if len(keys) != values {
		return fmt.Errorf("curve has %d keys but %d values", len(keys), values)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i] < keys[i-1] {
			return fmt.Errorf("curve keys must be ascending, key %d is %f after %f", i, keys[i], keys[i-1])
		}
	}
	return nil
}

type Vec3Curve struct {
	keys   []float32
	values []math.Vec3
}

func NewVec3Curve(keys []float32, values []math.Vec3) (*Vec3Curve, error) {
	if err := validateKeys(keys, len(values)); err != nil {
		return nil, err
	}
	return &Vec3Curve{keys: keys, values: values}, nil
}

func (c *Vec3Curve) Evaluate(t float32, mode EvaluateType) math.Vec3 {
	i, frac := locate(c.keys, t)
	if frac == 0 {
		return c.values[i]
	}
	from, to := c.values[i], c.values[i+1]
	if mode == EvaluateNear {
		if frac < 0.5 {
			return from
		}
		return to
	}
	return from.Lerp(to, frac)
}

type QuatCurve struct {
	keys   []float32
	values []math.Quaternion
}

func NewQuatCurve(keys []float32, values []math.Quaternion) (*QuatCurve, error) {
	if err := validateKeys(keys, len(values)); err != nil {
		return nil, err
	}
	return &QuatCurve{keys: keys, values: values}, nil
}

func (c *QuatCurve) Evaluate(t float32, mode EvaluateType) math.Quaternion {
	i, frac := locate(c.keys, t)
	if frac == 0 {
		return c.values[i]
	}
	from, to := c.values[i], c.values[i+1]
	switch mode {
	case EvaluateNear:
		if frac < 0.5 {
			return from
		}
		return to
	case EvaluateQuatSlerp:
		return from.Slerp(to, frac)
	default:
		if from.Dot(to) < 0 {
			to = math.Quaternion{X: -to.X, Y: -to.Y, Z: -to.Z, W: -to.W}
		}
		return math.Quaternion{
			X: from.X + (to.X-from.X)*frac,
			Y: from.Y + (to.Y-from.Y)*frac,
			Z: from.Z + (to.Z-from.Z)*frac,
			W: from.W + (to.W-from.W)*frac,
		}.Normalize()
	}
}
