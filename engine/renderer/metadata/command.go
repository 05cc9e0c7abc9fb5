package metadata

import "github.com/spaghettifunk/anima-blend/engine/math"

type PrimitiveType uint8

const (
	PrimitiveTriangles PrimitiveType = iota
	PrimitiveLines
	PrimitivePoints
)

func (p PrimitiveType) String() string {
	switch p {
	case PrimitiveLines:
		return "lines"
	case PrimitivePoints:
		return "points"
	default:
		return "triangles"
	}
}

type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

/** @brief Source and destination factors of the fixed blend equation src*Src + dst*Dst. */
type BlendFunc struct {
	Src BlendFactor
	Dst BlendFactor
}

var (
	BlendDisable               = BlendFunc{BlendOne, BlendZero}
	BlendAlphaPremultiplied    = BlendFunc{BlendOne, BlendOneMinusSrcAlpha}
	BlendAlphaNonPremultiplied = BlendFunc{BlendSrcAlpha, BlendOneMinusSrcAlpha}
	BlendAdditive              = BlendFunc{BlendSrcAlpha, BlendOne}
)

/**
 * @brief A single draw submitted to the renderer. Vertices are pulled from
 * Source when the command executes, not when it is queued.
 */
type RenderCommand struct {
	Primitive PrimitiveType
	Shader    string
	Blend     BlendFunc
	GlobalZ   float32
	/** @brief Model-to-world transform applied to every vertex. */
	Transform math.Mat4
	/** @brief Sampled texture; nil for untextured programs. */
	Texture   *Texture
	Source    VertexSource
	LineWidth float32
	Uniforms  map[string]interface{}
	/** @brief Set by the renderer from the active render target. nil means the framebuffer. */
	Target *RenderTarget
}
