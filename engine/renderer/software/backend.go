// Package software is a CPU renderer backend. World units map 1:1 to pixels
// with the origin at the bottom-left corner of the framebuffer or target.
package software

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

type Backend struct {
	FrameNumber uint64
	ClearColor  [4]float32

	screen  *surface
	current *surface

	nextTextureID uint32
	shaders       map[string]program
}

func New() *Backend {
	return &Backend{
		ClearColor: [4]float32{0, 0, 0, 1},
		shaders:    make(map[string]program),
	}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	if appWidth == 0 || appHeight == 0 {
		return fmt.Errorf("software backend needs a non-empty framebuffer, got %dx%d", appWidth, appHeight)
	}
	b.screen = newSurface(int(appWidth), int(appHeight))
	b.current = b.screen
	core.LogInfo("software renderer initialized for '%s' at %dx%d", appName, appWidth, appHeight)
	return nil
}

func (b *Backend) Shutdown() error {
	b.screen = nil
	b.current = nil
	b.shaders = make(map[string]program)
	core.LogInfo("software renderer shut down")
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	if width == 0 || height == 0 {
		// minimized; keep the last framebuffer
		return nil
	}
	b.screen = newSurface(int(width), int(height))
	b.current = b.screen
	return nil
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	if b.screen == nil {
		return fmt.Errorf("software backend BeginFrame: %w", core.ErrNotInitialized)
	}
	b.screen.clear(b.ClearColor)
	b.current = b.screen
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	b.FrameNumber++
	return nil
}

func (b *Backend) TextureCreate(pixels []uint8, texture *metadata.Texture) error {
	s, err := surfaceFromRGBA8(int(texture.Width), int(texture.Height), pixels)
	if err != nil {
		return fmt.Errorf("texture '%s': %w", texture.Name, err)
	}
	b.nextTextureID++
	texture.ID = b.nextTextureID
	texture.InternalData = s
	return nil
}

func (b *Backend) TextureCreateWriteable(texture *metadata.Texture) error {
	if texture.Width == 0 || texture.Height == 0 {
		return fmt.Errorf("writeable texture '%s' needs a size", texture.Name)
	}
	b.nextTextureID++
	texture.ID = b.nextTextureID
	texture.Flags |= metadata.TextureFlagBits(metadata.TextureFlagIsWriteable)
	texture.InternalData = newSurface(int(texture.Width), int(texture.Height))
	return nil
}

func (b *Backend) TextureWriteData(texture *metadata.Texture, pixels []uint8) error {
	s, ok := texture.InternalData.(*surface)
	if !ok {
		return fmt.Errorf("texture '%s': %w", texture.Name, core.ErrTextureNotLoaded)
	}
	if len(pixels) != len(s.pix) {
		return fmt.Errorf("texture '%s' expects %d bytes, got %d", texture.Name, len(s.pix), len(pixels))
	}
	s.write(pixels)
	return nil
}

func (b *Backend) TextureDestroy(texture *metadata.Texture) {
	texture.InternalData = nil
}

func (b *Backend) ShaderCreate(shader *metadata.Shader) error {
	prog, ok := programs[shader.Name]
	if !ok {
		return fmt.Errorf("shader '%s': %w", shader.Name, core.ErrUnknownShader)
	}
	b.shaders[shader.Name] = prog
	shader.InternalData = prog
	shader.State = metadata.SHADER_STATE_INITIALIZED
	return nil
}

func (b *Backend) ShaderDestroy(shader *metadata.Shader) {
	delete(b.shaders, shader.Name)
	shader.InternalData = nil
	shader.State = metadata.SHADER_STATE_NOT_CREATED
}

func (b *Backend) RenderTargetCreate(target *metadata.RenderTarget) error {
	if target.Texture == nil {
		return fmt.Errorf("render target: %w", core.ErrNilResource)
	}
	if _, ok := target.Texture.InternalData.(*surface); !ok {
		if err := b.TextureCreateWriteable(target.Texture); err != nil {
			return err
		}
	}
	target.InternalFramebuffer = target.Texture.InternalData
	return nil
}

func (b *Backend) RenderTargetDestroy(target *metadata.RenderTarget) {
	target.InternalFramebuffer = nil
}

func (b *Backend) RenderTargetBegin(target *metadata.RenderTarget) error {
	if target == nil {
		b.current = b.screen
		return nil
	}
	s, ok := target.InternalFramebuffer.(*surface)
	if !ok {
		return fmt.Errorf("render target was not created: %w", core.ErrNotInitialized)
	}
	if target.AutoClear {
		s.clear(target.ClearColor)
	}
	b.current = s
	return nil
}

func (b *Backend) RenderTargetEnd(target *metadata.RenderTarget) error {
	b.current = b.screen
	return nil
}

/**
 * @brief Rasterizes the vertices of one command into the bound surface.
 * Triangles come in threes, lines in pairs; trailing vertices are ignored.
 */
func (b *Backend) Draw(command *metadata.RenderCommand, vertices []metadata.ColorVertex) error {
	if b.current == nil {
		return fmt.Errorf("software backend Draw: %w", core.ErrNotInitialized)
	}
	prog, ok := b.shaders[command.Shader]
	if !ok {
		return fmt.Errorf("draw with '%s': %w", command.Shader, core.ErrUnknownShader)
	}

	p := &pipeline{dst: b.current, prog: prog, cmd: command, blend: command.Blend}
	m := command.Transform
	switch command.Primitive {
	case metadata.PrimitiveTriangles:
		for i := 0; i+2 < len(vertices); i += 3 {
			p.triangle(toRaster(vertices[i], m), toRaster(vertices[i+1], m), toRaster(vertices[i+2], m))
		}
	case metadata.PrimitiveLines:
		for i := 0; i+1 < len(vertices); i += 2 {
			p.line(toRaster(vertices[i], m), toRaster(vertices[i+1], m), command.LineWidth)
		}
	case metadata.PrimitivePoints:
		for _, v := range vertices {
			p.point(toRaster(v, m))
		}
	default:
		return fmt.Errorf("unsupported primitive %d", command.Primitive)
	}
	return nil
}

// Framebuffer returns a copy of the last rendered frame.
func (b *Backend) Framebuffer() *image.NRGBA {
	if b.screen == nil {
		return nil
	}
	return b.screen.image()
}

// TextureImage returns a copy of a texture's pixels, e.g. a render target.
func (b *Backend) TextureImage(texture *metadata.Texture) (*image.NRGBA, error) {
	s, ok := texture.InternalData.(*surface)
	if !ok {
		return nil, fmt.Errorf("texture '%s': %w", texture.Name, core.ErrTextureNotLoaded)
	}
	return s.image(), nil
}

// Capture writes the framebuffer to path as PNG or WebP, chosen by extension.
func (b *Backend) Capture(path string) error {
	img := b.Framebuffer()
	if img == nil {
		return fmt.Errorf("capture: %w", core.ErrNotInitialized)
	}

	var encode func(w io.Writer, img image.Image) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encode = png.Encode
	case ".webp":
		encode = func(w io.Writer, img image.Image) error {
			return nativewebp.Encode(w, img, nil)
		}
	default:
		return fmt.Errorf("unsupported capture format '%s'", filepath.Ext(path))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := encode(f, img); err != nil {
		return fmt.Errorf("capture '%s': %w", path, err)
	}
	core.LogInfo("captured frame %d to '%s'", b.FrameNumber, path)
	return nil
}
