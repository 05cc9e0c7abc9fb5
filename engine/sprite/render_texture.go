package sprite

import (
	"fmt"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/renderer"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-blend/engine/scene"
	"github.com/spaghettifunk/anima-blend/engine/systems"
)

const renderTexturePrefix = "render-texture"

/**
 * @brief Renders the subtree under Content into an offscreen texture every
 * frame and shows that texture through Sprite. Content is laid out in the
 * texture's pixel space, origin bottom-left; it is never drawn on screen
 * directly.
 */
type RenderTexture struct {
	*scene.Node

	content *scene.Node
	target  *metadata.RenderTarget
	sprite  *Sprite
}

func NewRenderTexture(name string, ts *systems.TextureSystem, r *renderer.Renderer, width, height uint32) (*RenderTexture, error) {
	if ts == nil || r == nil {
		err := fmt.Errorf("render texture '%s': %w", name, core.ErrNilResource)
		core.LogError(err.Error())
		return nil, err
	}
	tex, err := ts.RegisterGenerated(renderTexturePrefix, width, height)
	if err != nil {
		return nil, err
	}
	target := &metadata.RenderTarget{
		Texture:   tex,
		AutoClear: true,
	}
	if err := r.RenderTargetCreate(target); err != nil {
		core.LogError("render texture '%s': %s", name, err.Error())
		return nil, err
	}

	rt := &RenderTexture{
		Node:    scene.NewNode(name),
		content: scene.NewNode(name + ".content"),
		target:  target,
		sprite:  New(name+".sprite", tex),
	}
	rt.AddChild(rt.sprite.Node)
	rt.SetVisitor(rt)
	return rt, nil
}

// Content is the root of the captured subtree.
func (rt *RenderTexture) Content() *scene.Node { return rt.content }

// Sprite shows the captured texture; it follows the render texture's transform.
func (rt *RenderTexture) Sprite() *Sprite { return rt.sprite }

func (rt *RenderTexture) Texture() *metadata.Texture { return rt.target.Texture }

func (rt *RenderTexture) Target() *metadata.RenderTarget { return rt.target }

// SetClearColor sets the colour the texture is cleared to each frame.
func (rt *RenderTexture) SetClearColor(c math.Color4F) {
	rt.target.ClearColor = [4]float32{c.R, c.G, c.B, c.A}
}

// SetAutoClear disables clearing to accumulate frames in the texture.
func (rt *RenderTexture) SetAutoClear(clear bool) {
	rt.target.AutoClear = clear
}

// Visit captures the content into the target, then draws the node and its sprite as usual.
func (rt *RenderTexture) Visit(r *renderer.Renderer, parentTransform math.Mat4, parentDirty bool) {
	if !rt.IsVisible() {
		return
	}
	r.PushTarget(rt.target)
	rt.content.Visit(r, math.NewMat4Identity(), false)
	r.PopTarget()

	rt.VisitDefault(r, parentTransform, parentDirty)
}
