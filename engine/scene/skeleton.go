package scene

import (
	"fmt"

	"github.com/spaghettifunk/anima-blend/engine/math"
)

// BoneBlendState is one animation's contribution to a bone for the current frame.
type BoneBlendState struct {
	Translation math.Vec3
	Rotation    math.Quaternion
	Scale       math.Vec3
	Weight      float32
	Owner       interface{}
}

type Bone struct {
	name     string
	parent   *Bone
	children []*Bone

	// rest pose
	oriTranslation math.Vec3
	oriRotation    math.Quaternion
	oriScale       math.Vec3

	blendStates []BoneBlendState
	local       math.Mat4
	world       math.Mat4
}

func NewBone(name string, translation math.Vec3, rotation math.Quaternion, scale math.Vec3) *Bone {
	b := &Bone{
		name:           name,
		oriTranslation: translation,
		oriRotation:    rotation,
		oriScale:       scale,
	}
	b.local = math.NewMat4FromTRS(translation, rotation, scale)
	b.world = b.local
	return b
}

func (b *Bone) Name() string      { return b.name }
func (b *Bone) Parent() *Bone     { return b.parent }
func (b *Bone) Children() []*Bone { return b.children }

// LocalTransform is the blended pose relative to the parent bone.
func (b *Bone) LocalTransform() math.Mat4 { return b.local }

// WorldTransform is the pose in skeleton space after UpdateBoneTransforms.
func (b *Bone) WorldTransform() math.Mat4 { return b.world }

// WorldPosition is the bone origin in skeleton space.
func (b *Bone) WorldPosition() math.Vec3 {
	return math.NewVec3Zero().Transform(b.world)
}

/**
 * @brief Records an animation sample for this frame. nil channels keep the
 * rest pose value. A second call with the same owner replaces the first.
 */
func (b *Bone) SetAnimationValue(trans *math.Vec3, rot *math.Quaternion, scale *math.Vec3, owner interface{}, weight float32) {
	state := BoneBlendState{
		Translation: b.oriTranslation,
		Rotation:    b.oriRotation,
		Scale:       b.oriScale,
		Weight:      weight,
		Owner:       owner,
	}
	if trans != nil {
		state.Translation = *trans
	}
	if rot != nil {
		state.Rotation = *rot
	}
	if scale != nil {
		state.Scale = *scale
	}

	b.blendStates = setBlendState(b.blendStates, state)
}

// BlendStates returns the samples recorded since the last update.
func (b *Bone) BlendStates() []BoneBlendState {
	return b.blendStates
}

// updateLocal folds pending blend states into the local pose. Bones without
// pending states keep their previous pose.
func (b *Bone) updateLocal() {
	if len(b.blendStates) == 0 {
		return
	}
	if translation, rotation, scale, ok := blendPose(b.blendStates); ok {
		b.local = math.NewMat4FromTRS(translation, rotation, scale)
	}
	b.blendStates = b.blendStates[:0]
}

/**
 * @brief Blends weighted samples into one pose. Weights are normalised;
 * translation and scale are weighted sums, rotation is slerped incrementally.
 * ok is false when the weights sum to zero.
 */
func blendPose(states []BoneBlendState) (translation math.Vec3, rotation math.Quaternion, scale math.Vec3, ok bool) {
	total := float32(0)
	for _, s := range states {
		total += s.Weight
	}
	if total <= 0 {
		return translation, rotation, scale, false
	}

	rotation = states[0].Rotation
	acc := float32(0)
	for _, s := range states {
		w := s.Weight / total
		translation = translation.Add(s.Translation.MulScalar(w))
		scale = scale.Add(s.Scale.MulScalar(w))
		acc += w
		if acc > 0 {
			rotation = rotation.Slerp(s.Rotation, w/acc)
		}
	}
	return translation, rotation, scale, true
}

// setBlendState replaces the state recorded for state.Owner or appends it.
func setBlendState(states []BoneBlendState, state BoneBlendState) []BoneBlendState {
	for i := range states {
		if states[i].Owner == state.Owner {
			states[i] = state
			return states
		}
	}
	return append(states, state)
}

func (b *Bone) updateWorld(parent math.Mat4, hasParent bool) {
	b.updateLocal()
	if hasParent {
		b.world = b.local.Mul(parent)
	} else {
		b.world = b.local
	}
	for _, c := range b.children {
		c.updateWorld(b.world, true)
	}
}

// ResetPose drops pending states and returns to the rest pose.
func (b *Bone) ResetPose() {
	b.blendStates = b.blendStates[:0]
	b.local = math.NewMat4FromTRS(b.oriTranslation, b.oriRotation, b.oriScale)
}

type Skeleton struct {
	bones  []*Bone
	roots  []*Bone
	byName map[string]*Bone
}

func NewSkeleton() *Skeleton {
	return &Skeleton{
		bones:  make([]*Bone, 0),
		roots:  make([]*Bone, 0),
		byName: make(map[string]*Bone),
	}
}

// AddBone attaches bone under parent, or as a root when parent is nil.
func (s *Skeleton) AddBone(bone *Bone, parent *Bone) error {
	if bone == nil {
		return fmt.Errorf("skeleton AddBone: nil bone")
	}
	if _, exists := s.byName[bone.name]; exists {
		return fmt.Errorf("skeleton already has a bone named '%s'", bone.name)
	}
	if parent != nil {
		if s.byName[parent.name] != parent {
			return fmt.Errorf("parent bone '%s' is not part of this skeleton", parent.name)
		}
		bone.parent = parent
		parent.children = append(parent.children, bone)
	} else {
		s.roots = append(s.roots, bone)
	}
	s.bones = append(s.bones, bone)
	s.byName[bone.name] = bone
	return nil
}

func (s *Skeleton) BoneByName(name string) *Bone {
	if s == nil {
		return nil
	}
	return s.byName[name]
}

func (s *Skeleton) Bones() []*Bone { return s.bones }
func (s *Skeleton) Roots() []*Bone { return s.roots }
func (s *Skeleton) BoneCount() int { return len(s.bones) }

// UpdateBoneTransforms blends every pending sample and recomputes world poses.
func (s *Skeleton) UpdateBoneTransforms() {
	for _, r := range s.roots {
		r.updateWorld(math.NewMat4Identity(), false)
	}
}
