package testbed

import (
	"github.com/spaghettifunk/anima-blend/engine/animation"
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/scene"
)

func rotationZ(degrees float32) math.Quaternion {
	return math.NewQuatFromAxisAngle(math.NewVec3(0, 0, 1), math.DegToRad(degrees), false)
}

// newHeroSkeleton builds a three bone rig: pelvis, spine on top of it and an
// arm hanging off the spine. Units are pixels.
func newHeroSkeleton() (*scene.Skeleton, error) {
	sk := scene.NewSkeleton()
	pelvis := scene.NewBone("pelvis", math.NewVec3Zero(), math.NewQuatIdentity(), math.NewVec3One())
	if err := sk.AddBone(pelvis, nil); err != nil {
		return nil, err
	}
	spine := scene.NewBone("spine", math.NewVec3(0, 60, 0), math.NewQuatIdentity(), math.NewVec3One())
	if err := sk.AddBone(spine, pelvis); err != nil {
		return nil, err
	}
	arm := scene.NewBone("arm", math.NewVec3(40, 50, 0), rotationZ(-60), math.NewVec3One())
	if err := sk.AddBone(arm, spine); err != nil {
		return nil, err
	}
	return sk, nil
}

func rotateCurve(keys []float32, degrees ...float32) (*animation.QuatCurve, error) {
	values := make([]math.Quaternion, len(degrees))
	for i, d := range degrees {
		values[i] = rotationZ(d)
	}
	return animation.NewQuatCurve(keys, values)
}

// newIdle sways the spine a little over two seconds.
func newIdle() (*animation.Animation3D, error) {
	anim, err := animation.NewAnimation3D("idle", 2)
	if err != nil {
		return nil, err
	}
	sway, err := rotateCurve([]float32{0, 0.5, 1}, -8, 8, -8)
	if err != nil {
		return nil, err
	}
	anim.AddCurve("spine", &animation.Curve{Rotate: sway})
	return anim, nil
}

// newWave lifts the arm and bobs the pelvis once a second.
func newWave() (*animation.Animation3D, error) {
	anim, err := animation.NewAnimation3D("wave", 1)
	if err != nil {
		return nil, err
	}
	lift, err := rotateCurve([]float32{0, 0.5, 1}, -60, 70, -60)
	if err != nil {
		return nil, err
	}
	anim.AddCurve("arm", &animation.Curve{Rotate: lift})

	bob, err := animation.NewVec3Curve([]float32{0, 0.5, 1}, []math.Vec3{
		math.NewVec3Zero(),
		math.NewVec3(0, 12, 0),
		math.NewVec3Zero(),
	})
	if err != nil {
		return nil, err
	}
	anim.AddCurve("pelvis", &animation.Curve{Translate: bob})
	return anim, nil
}
