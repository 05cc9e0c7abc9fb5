package software

import (
	gomath "math"

	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

// rasterVertex is a vertex in pixel space, y up.
type rasterVertex struct {
	x, y   float32
	colour [4]float32
	uv     math.Vec2
}

type pipeline struct {
	dst   *surface
	prog  program
	cmd   *metadata.RenderCommand
	blend metadata.BlendFunc
}

func toRaster(v metadata.ColorVertex, m math.Mat4) rasterVertex {
	p := v.Position.Transform(m)
	return rasterVertex{
		x: p.X,
		y: p.Y,
		colour: [4]float32{
			float32(v.Colour.R) / 255,
			float32(v.Colour.G) / 255,
			float32(v.Colour.B) / 255,
			float32(v.Colour.A) / 255,
		},
		uv: v.Texcoord,
	}
}

/**
 * @brief Fills a triangle using barycentric weights at pixel centres.
 * Both windings are accepted. Attributes are interpolated linearly.
 */
func (p *pipeline) triangle(a, b, c rasterVertex) {
	det := (b.y-c.y)*(a.x-c.x) + (c.x-b.x)*(a.y-c.y)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1 / det

	minX := int(gomath.Floor(float64(min(a.x, b.x, c.x))))
	maxX := int(gomath.Ceil(float64(max(a.x, b.x, c.x))))
	minY := int(gomath.Floor(float64(min(a.y, b.y, c.y))))
	maxY := int(gomath.Ceil(float64(max(a.y, b.y, c.y))))
	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, p.dst.width-1)
	maxY = min(maxY, p.dst.height-1)
	if minX > maxX || minY > maxY {
		return
	}

	dy12 := b.y - c.y
	dx21 := c.x - b.x
	dy20 := c.y - a.y
	dx02 := a.x - c.x

	for py := minY; py <= maxY; py++ {
		sy := float32(py) + 0.5 - c.y
		for px := minX; px <= maxX; px++ {
			sx := float32(px) + 0.5 - c.x
			w0 := (dy12*sx + dx21*sy) * invDet
			w1 := (dy20*sx + dx02*sy) * invDet
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			f := fragment{
				uv: math.NewVec2(
					w0*a.uv.X+w1*b.uv.X+w2*c.uv.X,
					w0*a.uv.Y+w1*b.uv.Y+w2*c.uv.Y,
				),
			}
			for i := 0; i < 4; i++ {
				f.colour[i] = w0*a.colour[i] + w1*b.colour[i] + w2*c.colour[i]
			}
			p.shade(px, py, f)
		}
	}
}

func (p *pipeline) shade(px, py int, f fragment) {
	src, ok := p.prog(f, p.cmd)
	if !ok {
		return
	}
	row := p.dst.height - 1 - py
	dst := p.dst.at(px, row)
	p.dst.set(px, row, blend(p.blend, src, dst))
}

// line draws the segment as a quad lineWidth pixels wide.
func (p *pipeline) line(a, b rasterVertex, width float32) {
	dir := math.NewVec2(b.x-a.x, b.y-a.y)
	if dir.LengthSquared() < 1e-12 {
		return
	}
	n := dir.Normalize().Perp().MulScalar(max(width, 1) / 2)

	a0, a1, b0, b1 := a, a, b, b
	a0.x, a0.y = a.x+n.X, a.y+n.Y
	a1.x, a1.y = a.x-n.X, a.y-n.Y
	b0.x, b0.y = b.x+n.X, b.y+n.Y
	b1.x, b1.y = b.x-n.X, b.y-n.Y
	p.triangle(a0, b0, b1)
	p.triangle(a0, b1, a1)
}

// point draws a square of side size centred on v; size comes from the texcoord x.
func (p *pipeline) point(v rasterVertex) {
	half := max(v.uv.X, 1) / 2
	v.uv = math.NewVec2Zero()
	tl, tr, br, bl := v, v, v, v
	tl.x, tl.y = v.x-half, v.y+half
	tr.x, tr.y = v.x+half, v.y+half
	br.x, br.y = v.x+half, v.y-half
	bl.x, bl.y = v.x-half, v.y-half
	p.triangle(tl, tr, br)
	p.triangle(tl, br, bl)
}

func blendFactor(f metadata.BlendFactor, src, dst [4]float32) float32 {
	switch f {
	case metadata.BlendZero:
		return 0
	case metadata.BlendOne:
		return 1
	case metadata.BlendSrcAlpha:
		return src[3]
	case metadata.BlendOneMinusSrcAlpha:
		return 1 - src[3]
	case metadata.BlendDstAlpha:
		return dst[3]
	case metadata.BlendOneMinusDstAlpha:
		return 1 - dst[3]
	default:
		return 1
	}
}

// blend applies src*Src + dst*Dst on every channel, clamped to [0, 1].
func blend(fn metadata.BlendFunc, src, dst [4]float32) [4]float32 {
	sf := blendFactor(fn.Src, src, dst)
	df := blendFactor(fn.Dst, src, dst)
	var out [4]float32
	for i := range out {
		out[i] = math.Clamp(src[i]*sf+dst[i]*df, 0, 1)
	}
	return out
}
