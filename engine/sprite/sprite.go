package sprite

import (
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/renderer"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-blend/engine/scene"
	"github.com/spaghettifunk/anima-blend/engine/systems"
)

/**
 * @brief A textured quad node. The quad spans the content size with the
 * anchor at its centre; a nil texture draws a plain coloured quad.
 */
type Sprite struct {
	*scene.Node

	texture *metadata.Texture
	// region of the texture in pixels, origin top-left
	rect    math.Extents2D
	color   math.Color4F
	opacity float32
	flipX   bool
	flipY   bool

	blend    metadata.BlendFunc
	blendSet bool

	shader   string
	uniforms map[string]interface{}

	vertices metadata.VertexSlice
	dirty    bool
}

func New(name string, tex *metadata.Texture) *Sprite {
	s := &Sprite{
		Node:     scene.NewNode(name),
		color:    math.ColorWhite,
		opacity:  1,
		shader:   metadata.ShaderPositionTextureColor,
		uniforms: make(map[string]interface{}),
		vertices: make(metadata.VertexSlice, 6),
	}
	s.SetAnchorPoint(math.NewVec2(0.5, 0.5))
	s.SetTexture(tex)
	s.SetDrawable(s)
	return s
}

// NewFromFile acquires file from the texture system; a missing file shows the default texture.
func NewFromFile(name string, ts *systems.TextureSystem, file string) (*Sprite, error) {
	tex, err := ts.Acquire(file, false)
	if err != nil {
		return nil, err
	}
	return New(name, tex), nil
}

func (s *Sprite) Texture() *metadata.Texture { return s.texture }

// SetTexture shows the whole of tex and resizes the sprite to it.
func (s *Sprite) SetTexture(tex *metadata.Texture) {
	s.texture = tex
	size := math.NewVec2(1, 1)
	if tex != nil {
		size = math.NewVec2(float32(tex.Width), float32(tex.Height))
	}
	s.SetTextureRect(math.Extents2D{Min: math.NewVec2Zero(), Max: size})
}

func (s *Sprite) TextureRect() math.Extents2D { return s.rect }

// SetTextureRect selects the region of the texture to show, in pixels from
// the top-left corner. The content size follows the region.
func (s *Sprite) SetTextureRect(rect math.Extents2D) {
	s.rect = rect
	s.SetContentSize(rect.Max.Sub(rect.Min))
	s.dirty = true
}

func (s *Sprite) Color() math.Color4F { return s.color }

func (s *Sprite) SetColor(c math.Color4F) {
	s.color = c
	s.dirty = true
}

func (s *Sprite) Opacity() float32 { return s.opacity }

func (s *Sprite) SetOpacity(opacity float32) {
	s.opacity = math.Clamp(opacity, 0, 1)
	s.dirty = true
}

func (s *Sprite) FlipX() bool { return s.flipX }
func (s *Sprite) FlipY() bool { return s.flipY }

func (s *Sprite) SetFlipX(flip bool) {
	s.flipX = flip
	s.dirty = true
}

func (s *Sprite) SetFlipY(flip bool) {
	s.flipY = flip
	s.dirty = true
}

/**
 * @brief Blend function of the sprite. Unless set explicitly it follows the
 * texture: premultiplied alpha blending for premultiplied textures,
 * straight alpha otherwise.
 */
func (s *Sprite) BlendFunc() metadata.BlendFunc {
	if s.blendSet {
		return s.blend
	}
	if s.texture == nil || s.texture.HasPremultipliedAlpha() {
		return metadata.BlendAlphaPremultiplied
	}
	return metadata.BlendAlphaNonPremultiplied
}

func (s *Sprite) SetBlendFunc(blend metadata.BlendFunc) {
	s.blend = blend
	s.blendSet = true
}

func (s *Sprite) Shader() string { return s.shader }

// SetUniform sets a value handed to the program with every draw.
func (s *Sprite) SetUniform(name string, value interface{}) {
	s.uniforms[name] = value
}

func (s *Sprite) Uniform(name string) (interface{}, bool) {
	v, ok := s.uniforms[name]
	return v, ok
}

// Vertices returns the two triangles of the quad in node space.
func (s *Sprite) Vertices() []metadata.ColorVertex {
	if s.dirty {
		s.updateQuad()
	}
	return s.vertices
}

func (s *Sprite) vertexColor() math.Color4B {
	c := s.color
	c.A *= s.opacity
	if s.texture == nil || s.texture.HasPremultipliedAlpha() {
		c.R *= c.A
		c.G *= c.A
		c.B *= c.A
	}
	return c.ToColor4B()
}

func (s *Sprite) updateQuad() {
	size := s.ContentSize()

	var left, right, top, bottom float32 = 0, 1, 0, 1
	if s.texture != nil && s.texture.Width > 0 && s.texture.Height > 0 {
		w, h := float32(s.texture.Width), float32(s.texture.Height)
		left, right = s.rect.Min.X/w, s.rect.Max.X/w
		top, bottom = s.rect.Min.Y/h, s.rect.Max.Y/h
	}
	if s.flipX {
		left, right = right, left
	}
	if s.flipY {
		top, bottom = bottom, top
	}

	col := s.vertexColor()
	bl := metadata.ColorVertex{Position: math.NewVec2(0, 0), Colour: col, Texcoord: math.NewVec2(left, bottom)}
	br := metadata.ColorVertex{Position: math.NewVec2(size.X, 0), Colour: col, Texcoord: math.NewVec2(right, bottom)}
	tl := metadata.ColorVertex{Position: math.NewVec2(0, size.Y), Colour: col, Texcoord: math.NewVec2(left, top)}
	tr := metadata.ColorVertex{Position: math.NewVec2(size.X, size.Y), Colour: col, Texcoord: math.NewVec2(right, top)}

	s.vertices[0], s.vertices[1], s.vertices[2] = bl, br, tl
	s.vertices[3], s.vertices[4], s.vertices[5] = tl, br, tr
	s.dirty = false
}

// Draw queues the quad as one triangle command.
func (s *Sprite) Draw(r *renderer.Renderer, transform math.Mat4) {
	vertices := s.Vertices()
	var uniforms map[string]interface{}
	if len(s.uniforms) > 0 || s.texture != nil {
		uniforms = make(map[string]interface{}, len(s.uniforms)+1)
		for k, v := range s.uniforms {
			uniforms[k] = v
		}
		if s.texture != nil {
			uniforms["u_texture"] = s.texture
		}
	}
	r.AddCommand(&metadata.RenderCommand{
		Primitive: metadata.PrimitiveTriangles,
		Shader:    s.shader,
		Blend:     s.BlendFunc(),
		GlobalZ:   s.GlobalZOrder(),
		Transform: transform,
		Texture:   s.texture,
		Source:    metadata.VertexSlice(vertices),
		Uniforms:  uniforms,
	})
}
