package scene

import (
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/renderer"
)

// Sprite3D is a node carrying a skeleton that animations can pose.
type Sprite3D struct {
	*Node
}

func NewSprite3D(name string, skeleton *Skeleton) *Sprite3D {
	s := &Sprite3D{Node: NewNode(name)}
	s.SetSkeleton(skeleton)
	s.SetDrawable(s)
	return s
}

// Draw refreshes the bone matrices; mesh skinning is outside this engine.
func (s *Sprite3D) Draw(r *renderer.Renderer, transform math.Mat4) {
	if sk := s.Skeleton(); sk != nil {
		sk.UpdateBoneTransforms()
	}
}
