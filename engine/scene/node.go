package scene

import (
	"sort"

	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/renderer"
)

// Drawable is implemented by anything a node renders for itself.
// transform is the node's model-to-world matrix for this frame.
type Drawable interface {
	Draw(r *renderer.Renderer, transform math.Mat4)
}

// Visitor overrides the default traversal of a node, the way a render
// texture redirects its subtree into an offscreen target.
type Visitor interface {
	Visit(r *renderer.Renderer, parentTransform math.Mat4, parentDirty bool)
}

/**
 * @brief A node of the scene tree. Position, rotation and scale are kept in
 * a math.Transform; the anchor is expressed as a fraction of the content size.
 */
type Node struct {
	name     string
	tag      int
	parent   *Node
	children []*Node

	transform   *math.Transform
	rotationZ   float32
	anchor      math.Vec2
	contentSize math.Vec2

	additional    math.Mat4
	hasAdditional bool
	animStates    []BoneBlendState

	visible        bool
	localZ         int
	globalZ        float32
	orderOfArrival uint64
	reorderDirty   bool

	transformDirty bool
	worldDirty     bool
	toParent       math.Mat4
	modelView      math.Mat4

	drawable Drawable
	visitor  Visitor
	skeleton *Skeleton
}

var arrivalCounter uint64

func NewNode(name string) *Node {
	return &Node{
		name:           name,
		children:       make([]*Node, 0),
		transform:      math.TransformCreate(),
		visible:        true,
		transformDirty: true,
		worldDirty:     true,
		toParent:       math.NewMat4Identity(),
		modelView:      math.NewMat4Identity(),
		additional:     math.NewMat4Identity(),
	}
}

func (n *Node) Name() string        { return n.name }
func (n *Node) SetName(name string) { n.name = name }
func (n *Node) Tag() int            { return n.tag }
func (n *Node) SetTag(tag int)      { n.tag = tag }
func (n *Node) Parent() *Node       { return n.parent }
func (n *Node) Children() []*Node   { return n.children }

// SetDrawable attaches the renderable payload of the node.
func (n *Node) SetDrawable(d Drawable) { n.drawable = d }

// SetVisitor replaces the default traversal for this node.
func (n *Node) SetVisitor(v Visitor) { n.visitor = v }

// Skeleton returns the node's skeleton, nil for plain nodes.
func (n *Node) Skeleton() *Skeleton { return n.skeleton }

func (n *Node) SetSkeleton(s *Skeleton) { n.skeleton = s }

func (n *Node) AddChild(child *Node) {
	n.AddChildWithZ(child, child.localZ)
}

func (n *Node) AddChildWithZ(child *Node, localZ int) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	arrivalCounter++
	child.orderOfArrival = arrivalCounter
	child.localZ = localZ
	child.parent = n
	child.markDirty()
	n.children = append(n.children, child)
	n.reorderDirty = true
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// FindByName searches depth-first, the node itself first.
func (n *Node) FindByName(name string) *Node {
	if n.name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.FindByName(name); found != nil {
			return found
		}
	}
	return nil
}

func (n *Node) Position() math.Vec2 {
	return math.NewVec2(n.transform.Position.X, n.transform.Position.Y)
}

func (n *Node) SetPosition(position math.Vec2) {
	n.transform.SetPosition(math.NewVec3(position.X, position.Y, n.transform.Position.Z))
	n.markDirty()
}

func (n *Node) SetPosition3D(position math.Vec3) {
	n.transform.SetPosition(position)
	n.markDirty()
}

// SetRotation rotates the node counter-clockwise about Z by degrees.
func (n *Node) SetRotation(degrees float32) {
	n.transform.SetRotation(math.NewQuatFromAxisAngle(math.NewVec3(0, 0, 1), math.DegToRad(degrees), true))
	n.rotationZ = degrees
	n.markDirty()
}

func (n *Node) Rotation() float32 { return n.rotationZ }

func (n *Node) SetRotationQuat(q math.Quaternion) {
	n.transform.SetRotation(q)
	n.markDirty()
}

func (n *Node) Scale() math.Vec3 { return n.transform.Scale }

func (n *Node) SetScale(s float32) {
	n.SetScale3D(math.NewVec3(s, s, s))
}

func (n *Node) SetScaleXY(x, y float32) {
	n.SetScale3D(math.NewVec3(x, y, n.transform.Scale.Z))
}

func (n *Node) SetScale3D(s math.Vec3) {
	n.transform.SetScale(s)
	n.markDirty()
}

func (n *Node) AnchorPoint() math.Vec2 { return n.anchor }

func (n *Node) SetAnchorPoint(anchor math.Vec2) {
	n.anchor = anchor
	n.markDirty()
}

func (n *Node) ContentSize() math.Vec2 { return n.contentSize }

func (n *Node) SetContentSize(size math.Vec2) {
	n.contentSize = size
	n.markDirty()
}

/**
 * @brief Sets a matrix applied before the node's own transform.
 * Animations use it to move nodes without touching position, rotation or scale.
 */
func (n *Node) SetAdditionalTransform(m math.Mat4) {
	n.additional = m
	n.hasAdditional = true
	n.markDirty()
}

func (n *Node) ClearAdditionalTransform() {
	n.additional = math.NewMat4Identity()
	n.hasAdditional = false
	n.markDirty()
}

func (n *Node) AdditionalTransform() (math.Mat4, bool) {
	return n.additional, n.hasAdditional
}

/**
 * @brief Records an animation sample and rebuilds the additional transform
 * from every sample recorded since the last visit. Missing channels are
 * identity, and when the weights sum to less than 1 the remainder blends
 * toward identity. A second call with the same owner replaces the first.
 */
func (n *Node) SetAnimationValue(trans *math.Vec3, rot *math.Quaternion, scale *math.Vec3, owner interface{}, weight float32) {
	state := BoneBlendState{
		Translation: math.NewVec3Zero(),
		Rotation:    math.NewQuatIdentity(),
		Scale:       math.NewVec3One(),
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
	n.animStates = setBlendState(n.animStates, state)

	total := float32(0)
	for _, s := range n.animStates {
		total += s.Weight
	}
	states := n.animStates
	if total < 1 {
		states = append(make([]BoneBlendState, 0, len(n.animStates)+1), n.animStates...)
		states = append(states, BoneBlendState{
			Translation: math.NewVec3Zero(),
			Rotation:    math.NewQuatIdentity(),
			Scale:       math.NewVec3One(),
			Weight:      1 - total,
		})
	}
	if translation, rotation, scale, ok := blendPose(states); ok {
		n.SetAdditionalTransform(math.NewMat4FromTRS(translation, rotation, scale))
	}
}

// AnimationStates returns the samples recorded since the last visit.
func (n *Node) AnimationStates() []BoneBlendState { return n.animStates }

func (n *Node) IsVisible() bool        { return n.visible }
func (n *Node) SetVisible(visible bool) { n.visible = visible }

func (n *Node) LocalZOrder() int { return n.localZ }

func (n *Node) SetLocalZOrder(z int) {
	n.localZ = z
	if n.parent != nil {
		n.parent.reorderDirty = true
	}
}

func (n *Node) GlobalZOrder() float32     { return n.globalZ }
func (n *Node) SetGlobalZOrder(z float32) { n.globalZ = z }

func (n *Node) markDirty() {
	n.transformDirty = true
	n.worldDirty = true
}

// NodeToParentTransform returns additional * anchor * scale * rotate * translate.
func (n *Node) NodeToParentTransform() math.Mat4 {
	if n.transformDirty {
		anchorInPoints := n.anchor.Mul(n.contentSize)
		m := math.NewMat4Translation(math.NewVec3(-anchorInPoints.X, -anchorInPoints.Y, 0))
		m = m.Mul(n.transform.GetLocal())
		if n.hasAdditional {
			m = n.additional.Mul(m)
		}
		n.toParent = m
		n.transformDirty = false
	}
	return n.toParent
}

// ModelViewTransform is the world matrix computed by the last Visit.
func (n *Node) ModelViewTransform() math.Mat4 {
	return n.modelView
}

// NodeToWorldTransform walks the ancestors without relying on a previous Visit.
func (n *Node) NodeToWorldTransform() math.Mat4 {
	m := n.NodeToParentTransform()
	for p := n.parent; p != nil; p = p.parent {
		m = m.Mul(p.NodeToParentTransform())
	}
	return m
}

func (n *Node) sortChildren() {
	if !n.reorderDirty {
		return
	}
	sort.SliceStable(n.children, func(i, j int) bool {
		a, b := n.children[i], n.children[j]
		if a.localZ != b.localZ {
			return a.localZ < b.localZ
		}
		return a.orderOfArrival < b.orderOfArrival
	})
	n.reorderDirty = false
}

/**
 * @brief Draws the subtree: children with negative local z first, then the
 * node itself, then the remaining children.
 */
func (n *Node) Visit(r *renderer.Renderer, parentTransform math.Mat4, parentDirty bool) {
	// samples last for one frame; the transform they built stays
	n.animStates = n.animStates[:0]
	if n.visitor != nil {
		n.visitor.Visit(r, parentTransform, parentDirty)
		return
	}
	n.VisitDefault(r, parentTransform, parentDirty)
}

// VisitDefault is the traversal used when no Visitor is set.
func (n *Node) VisitDefault(r *renderer.Renderer, parentTransform math.Mat4, parentDirty bool) {
	if !n.visible {
		return
	}
	dirty := parentDirty || n.worldDirty
	if dirty {
		n.modelView = n.NodeToParentTransform().Mul(parentTransform)
		n.worldDirty = false
	}

	n.sortChildren()
	i := 0
	for ; i < len(n.children); i++ {
		if n.children[i].localZ >= 0 {
			break
		}
		n.children[i].Visit(r, n.modelView, dirty)
	}
	if n.drawable != nil {
		n.drawable.Draw(r, n.modelView)
	}
	for ; i < len(n.children); i++ {
		n.children[i].Visit(r, n.modelView, dirty)
	}
}
