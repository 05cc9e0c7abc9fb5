package software

import (
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

// fragment carries the interpolated vertex attributes of one pixel.
type fragment struct {
	colour [4]float32
	uv     math.Vec2
}

// program shades a fragment. ok=false discards it.
type program func(f fragment, cmd *metadata.RenderCommand) (out [4]float32, ok bool)

// radialBlurTaps is the number of samples taken toward the texture centre.
const radialBlurTaps = 8

var programs = map[string]program{
	metadata.ShaderPositionTextureColor:        positionTextureColor,
	metadata.ShaderPositionLengthTextureColor:  positionLengthTextureColor,
	metadata.ShaderPositionColorTexAsPointSize: positionColorPointSize,
	metadata.ShaderRadialBlur:                  radialBlur,
}

func textureOf(cmd *metadata.RenderCommand) *surface {
	if cmd.Texture == nil {
		return nil
	}
	s, _ := cmd.Texture.InternalData.(*surface)
	return s
}

func modulate(a, b [4]float32) [4]float32 {
	return [4]float32{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

func positionTextureColor(f fragment, cmd *metadata.RenderCommand) ([4]float32, bool) {
	return modulate(f.colour, textureOf(cmd).sample(f.uv.X, f.uv.Y)), true
}

// positionLengthTextureColor keeps fragments whose texcoord lies inside the
// unit circle, which turns the dot quads into round dots.
func positionLengthTextureColor(f fragment, _ *metadata.RenderCommand) ([4]float32, bool) {
	if f.uv.LengthSquared() > 1 {
		return [4]float32{}, false
	}
	return f.colour, true
}

func positionColorPointSize(f fragment, _ *metadata.RenderCommand) ([4]float32, bool) {
	return f.colour, true
}

/**
 * @brief Averages samples taken from the fragment toward the texture centre.
 * u_rate in [0, 1] scales the blur length; 0 is a plain textured draw.
 */
func radialBlur(f fragment, cmd *metadata.RenderCommand) ([4]float32, bool) {
	tex := textureOf(cmd)
	rate := float32(0)
	if r, ok := cmd.Uniforms["u_rate"].(float32); ok {
		rate = math.Clamp(r, 0, 1)
	}

	center := math.NewVec2(0.5, 0.5)
	step := center.Sub(f.uv).MulScalar(rate * 0.1 / radialBlurTaps)
	var acc [4]float32
	uv := f.uv
	for i := 0; i < radialBlurTaps; i++ {
		s := tex.sample(uv.X, uv.Y)
		acc[0] += s[0]
		acc[1] += s[1]
		acc[2] += s[2]
		acc[3] += s[3]
		uv = uv.Add(step)
	}
	for i := range acc {
		acc[i] /= radialBlurTaps
	}
	return modulate(f.colour, acc), true
}
