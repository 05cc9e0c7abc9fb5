package animation

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/anima-blend/engine/core"
)

// Curve bundles the channels animating one bone or node. Any channel may be nil.
type Curve struct {
	Translate *Vec3Curve
	Rotate    *QuatCurve
	Scale     *Vec3Curve
}

/**
 * @brief A named set of curves sharing one duration. Curve keys are
 * normalized to [0, 1] over that duration.
 */
type Animation3D struct {
	name     string
	duration float32
	curves   map[string]*Curve
}

func NewAnimation3D(name string, duration float32) (*Animation3D, error) {
	if duration <= 0 {
		err := fmt.Errorf("animation '%s' duration must be > 0, got %f", name, duration)
		core.LogError(err.Error())
		return nil, err
	}
	return &Animation3D{
		name:     name,
		duration: duration,
		curves:   make(map[string]*Curve),
	}, nil
}

func (a *Animation3D) Name() string       { return a.name }
func (a *Animation3D) Duration() float32 { return a.duration }

func (a *Animation3D) AddCurve(boneName string, curve *Curve) {
	a.curves[boneName] = curve
}

func (a *Animation3D) CurveByName(boneName string) *Curve {
	return a.curves[boneName]
}

func (a *Animation3D) BoneCurves() map[string]*Curve {
	return a.curves
}

// CurveNames returns the curve names in lexical order.
func (a *Animation3D) CurveNames() []string {
	names := make([]string, 0, len(a.curves))
	for name := range a.curves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
