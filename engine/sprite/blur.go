package sprite

import (
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

const rateUniform = "u_rate"

// BlurSprite draws its texture through the radial blur program. The blend
// rate scales the blur from none (0) to full (1).
type BlurSprite struct {
	*Sprite
	rate float32
}

func NewBlurSprite(name string, tex *metadata.Texture) *BlurSprite {
	b := &BlurSprite{Sprite: New(name, tex)}
	b.shader = metadata.ShaderRadialBlur
	b.SetRate(0)
	return b
}

func (b *BlurSprite) Rate() float32 { return b.rate }

// SetRate clamps rate to [0, 1].
func (b *BlurSprite) SetRate(rate float32) {
	b.rate = math.Clamp(rate, 0, 1)
	b.SetUniform(rateUniform, b.rate)
}
