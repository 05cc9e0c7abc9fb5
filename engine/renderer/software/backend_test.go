package software

import (
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

var (
	red   = math.Color4B{R: 255, A: 255}
	black = color.NRGBA{A: 255}
)

func newBackend(t *testing.T, w, h uint32) *Backend {
	core.SetLogOutput(io.Discard)
	b := New()
	require.NoError(t, b.Initialize("test", w, h))
	for _, cfg := range metadata.BuiltinShaders {
		require.NoError(t, b.ShaderCreate(metadata.NewShader(0, cfg)))
	}
	require.NoError(t, b.BeginFrame(0))
	return b
}

func v(x, y float32, c math.Color4B) metadata.ColorVertex {
	return metadata.ColorVertex{Position: math.NewVec2(x, y), Colour: c}
}

func rect(x0, y0, x1, y1 float32, c math.Color4B) []metadata.ColorVertex {
	return []metadata.ColorVertex{
		v(x0, y0, c), v(x1, y0, c), v(x1, y1, c),
		v(x0, y0, c), v(x1, y1, c), v(x0, y1, c),
	}
}

func solid(blend metadata.BlendFunc) *metadata.RenderCommand {
	return &metadata.RenderCommand{
		Primitive: metadata.PrimitiveTriangles,
		Shader:    metadata.ShaderPositionLengthTextureColor,
		Blend:     blend,
		Transform: math.NewMat4Identity(),
	}
}

func TestTriangleFill(t *testing.T) {
	b := newBackend(t, 4, 4)
	require.NoError(t, b.Draw(solid(metadata.BlendDisable), rect(0, 0, 4, 4, red)))

	img := b.Framebuffer()
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestOriginIsBottomLeft(t *testing.T) {
	b := newBackend(t, 4, 4)
	require.NoError(t, b.Draw(solid(metadata.BlendDisable), rect(0, 0, 4, 2, red)))

	img := b.Framebuffer()
	assert.Equal(t, black, img.NRGBAAt(0, 0))
	assert.Equal(t, black, img.NRGBAAt(3, 1))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(0, 3))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(3, 2))
}

func TestTransformMovesVertices(t *testing.T) {
	b := newBackend(t, 4, 4)
	cmd := solid(metadata.BlendDisable)
	cmd.Transform = math.NewMat4Translation(math.NewVec3(2, 0, 0))
	require.NoError(t, b.Draw(cmd, rect(0, 0, 2, 4, red)))

	img := b.Framebuffer()
	assert.Equal(t, black, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(2, 0))
}

func TestStraightAlphaBlend(t *testing.T) {
	b := newBackend(t, 2, 2)
	half := math.Color4B{R: 255, A: 128}
	require.NoError(t, b.Draw(solid(metadata.BlendAlphaNonPremultiplied), rect(0, 0, 2, 2, half)))

	px := b.Framebuffer().NRGBAAt(0, 0)
	assert.InDelta(t, 128, int(px.R), 1)
	assert.Equal(t, uint8(0), px.G)
}

func TestLengthMaskDiscardsOutsideUnitCircle(t *testing.T) {
	b := newBackend(t, 2, 2)
	verts := rect(0, 0, 2, 2, red)
	for i := range verts {
		verts[i].Texcoord = math.NewVec2(2, 2)
	}
	require.NoError(t, b.Draw(solid(metadata.BlendDisable), verts))
	assert.Equal(t, black, b.Framebuffer().NRGBAAt(0, 0))
}

func TestLinesAndPoints(t *testing.T) {
	b := newBackend(t, 8, 8)
	lines := &metadata.RenderCommand{
		Primitive: metadata.PrimitiveLines,
		Shader:    metadata.ShaderPositionLengthTextureColor,
		Blend:     metadata.BlendDisable,
		Transform: math.NewMat4Identity(),
		LineWidth: 2,
	}
	require.NoError(t, b.Draw(lines, []metadata.ColorVertex{v(0, 4, red), v(8, 4, red)}))

	img := b.Framebuffer()
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(3, 3))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(3, 4))
	assert.Equal(t, black, img.NRGBAAt(3, 0))

	points := &metadata.RenderCommand{
		Primitive: metadata.PrimitivePoints,
		Shader:    metadata.ShaderPositionColorTexAsPointSize,
		Blend:     metadata.BlendDisable,
		Transform: math.NewMat4Identity(),
	}
	green := math.Color4B{G: 255, A: 255}
	p := v(1, 1, green)
	p.Texcoord = math.NewVec2(2, 0)
	require.NoError(t, b.Draw(points, []metadata.ColorVertex{p}))

	img = b.Framebuffer()
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, img.NRGBAAt(0, 7))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, img.NRGBAAt(1, 6))
	assert.Equal(t, black, img.NRGBAAt(2, 5))
}

func TestUnknownShader(t *testing.T) {
	b := newBackend(t, 2, 2)
	cmd := solid(metadata.BlendDisable)
	cmd.Shader = "Shader.Custom.Missing"
	assert.ErrorIs(t, b.Draw(cmd, rect(0, 0, 1, 1, red)), core.ErrUnknownShader)
	assert.ErrorIs(t, b.ShaderCreate(metadata.NewShader(9, metadata.ShaderConfig{Name: "nope"})), core.ErrUnknownShader)
}

func TestTexturedDraw(t *testing.T) {
	b := newBackend(t, 2, 2)
	tex := &metadata.Texture{Name: "checker", Width: 2, Height: 1, ChannelCount: 4}
	require.NoError(t, b.TextureCreate([]uint8{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}, tex))
	assert.Error(t, b.TextureCreate([]uint8{1, 2, 3}, &metadata.Texture{Width: 2, Height: 2}))

	white := math.Color4B{R: 255, G: 255, B: 255, A: 255}
	verts := rect(0, 0, 2, 2, white)
	uvs := []math.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	for i := range verts {
		verts[i].Texcoord = uvs[i]
	}
	cmd := solid(metadata.BlendDisable)
	cmd.Shader = metadata.ShaderPositionTextureColor
	cmd.Texture = tex
	require.NoError(t, b.Draw(cmd, verts))

	img := b.Framebuffer()
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, img.NRGBAAt(1, 1))

	cmd.Shader = metadata.ShaderRadialBlur
	cmd.Uniforms = map[string]interface{}{"u_rate": float32(0)}
	require.NoError(t, b.BeginFrame(0))
	require.NoError(t, b.Draw(cmd, verts))
	assert.Equal(t, img.Pix, b.Framebuffer().Pix, "a zero rate blur is a plain textured draw")
}

func TestRenderTarget(t *testing.T) {
	b := newBackend(t, 4, 4)
	target := &metadata.RenderTarget{
		Texture:    &metadata.Texture{Name: "rt", Width: 2, Height: 2, ChannelCount: 4},
		ClearColor: [4]float32{0, 1, 0, 1},
		AutoClear:  true,
	}
	require.NoError(t, b.RenderTargetCreate(target))
	assert.True(t, target.Texture.Flags.Has(metadata.TextureFlagIsWriteable))

	require.NoError(t, b.RenderTargetBegin(target))
	require.NoError(t, b.Draw(solid(metadata.BlendDisable), rect(0, 0, 1, 1, red)))
	require.NoError(t, b.RenderTargetEnd(target))

	img, err := b.TextureImage(target.Texture)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(0, 1))
	assert.Equal(t, black, b.Framebuffer().NRGBAAt(0, 3), "the framebuffer is untouched")

	assert.Error(t, b.RenderTargetBegin(&metadata.RenderTarget{}))
}

func TestCapture(t *testing.T) {
	b := newBackend(t, 4, 4)
	require.NoError(t, b.Draw(solid(metadata.BlendDisable), rect(0, 0, 4, 4, red)))
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "frames", "last.png")
	require.NoError(t, b.Capture(pngPath))
	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	r, _, _, _ := img.At(2, 2).RGBA()
	assert.Equal(t, uint32(0xffff), r)

	webpPath := filepath.Join(dir, "last.webp")
	require.NoError(t, b.Capture(webpPath))
	info, err := os.Stat(webpPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, b.Capture(filepath.Join(dir, "last.gif")))
}
