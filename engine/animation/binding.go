package animation

import (
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/scene"
)

// poseTarget receives one evaluated sample. Channels the curve lacks are nil.
type poseTarget interface {
	apply(trans *math.Vec3, rot *math.Quaternion, scale *math.Vec3, owner interface{}, weight float32)
	name() string
}

// boneTarget feeds the skeleton's weighted blend.
type boneTarget struct {
	bone *scene.Bone
}

func (b boneTarget) apply(trans *math.Vec3, rot *math.Quaternion, scale *math.Vec3, owner interface{}, weight float32) {
	b.bone.SetAnimationValue(trans, rot, scale, owner, weight)
}

func (b boneTarget) name() string { return b.bone.Name() }

// nodeTarget blends into the node's additional transform.
type nodeTarget struct {
	node *scene.Node
}

func (n nodeTarget) apply(trans *math.Vec3, rot *math.Quaternion, scale *math.Vec3, owner interface{}, weight float32) {
	n.node.SetAnimationValue(trans, rot, scale, owner, weight)
}

func (n nodeTarget) name() string { return n.node.Name() }

type binding struct {
	curve  *Curve
	target poseTarget
}

/**
 * @brief Resolves every curve of anim against target. A bone of the target's
 * skeleton wins; otherwise the first node with that exact name in a
 * depth-first walk of the target subtree. Unresolved curves are dropped.
 */
func bind(anim *Animation3D, target *scene.Node) []binding {
	bindings := make([]binding, 0, len(anim.curves))
	skeleton := target.Skeleton()
	for _, name := range anim.CurveNames() {
		curve := anim.CurveByName(name)
		if curve == nil {
			continue
		}
		if bone := skeleton.BoneByName(name); bone != nil {
			bindings = append(bindings, binding{curve: curve, target: boneTarget{bone: bone}})
			continue
		}
		if node := target.FindByName(name); node != nil {
			bindings = append(bindings, binding{curve: curve, target: nodeTarget{node: node}})
		}
	}
	return bindings
}
