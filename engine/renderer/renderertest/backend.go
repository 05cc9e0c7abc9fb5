// Package renderertest provides a backend that records what it is asked to do.
package renderertest

import (
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

type DrawCall struct {
	Command  *metadata.RenderCommand
	Target   *metadata.RenderTarget
	Vertices []metadata.ColorVertex
}

type Backend struct {
	Width, Height uint32
	Frames        int
	Draws         []DrawCall
	Textures      map[string]*metadata.Texture
	Shaders       map[string]*metadata.Shader
	TargetsBegun  []*metadata.RenderTarget
	// DrawErr, when set, is returned by every Draw.
	DrawErr error

	nextTextureID uint32
	current       *metadata.RenderTarget
}

func NewBackend() *Backend {
	return &Backend{
		Textures: make(map[string]*metadata.Texture),
		Shaders:  make(map[string]*metadata.Shader),
	}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	b.Width, b.Height = appWidth, appHeight
	return nil
}

func (b *Backend) Shutdown() error { return nil }

func (b *Backend) Resized(width, height uint32) error {
	b.Width, b.Height = width, height
	return nil
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	b.Draws = b.Draws[:0]
	b.TargetsBegun = b.TargetsBegun[:0]
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	b.Frames++
	return nil
}

func (b *Backend) TextureCreate(pixels []uint8, texture *metadata.Texture) error {
	b.nextTextureID++
	texture.ID = b.nextTextureID
	data := make([]uint8, len(pixels))
	copy(data, pixels)
	texture.InternalData = data
	b.Textures[texture.Name] = texture
	return nil
}

func (b *Backend) TextureCreateWriteable(texture *metadata.Texture) error {
	return b.TextureCreate(make([]uint8, texture.Width*texture.Height*4), texture)
}

func (b *Backend) TextureWriteData(texture *metadata.Texture, pixels []uint8) error {
	data := make([]uint8, len(pixels))
	copy(data, pixels)
	texture.InternalData = data
	return nil
}

func (b *Backend) TextureDestroy(texture *metadata.Texture) {
	delete(b.Textures, texture.Name)
	texture.InternalData = nil
}

func (b *Backend) ShaderCreate(shader *metadata.Shader) error {
	shader.State = metadata.SHADER_STATE_INITIALIZED
	b.Shaders[shader.Name] = shader
	return nil
}

func (b *Backend) ShaderDestroy(shader *metadata.Shader) {
	delete(b.Shaders, shader.Name)
}

func (b *Backend) RenderTargetCreate(target *metadata.RenderTarget) error {
	return b.TextureCreateWriteable(target.Texture)
}

func (b *Backend) RenderTargetDestroy(target *metadata.RenderTarget) {
	b.TextureDestroy(target.Texture)
}

func (b *Backend) RenderTargetBegin(target *metadata.RenderTarget) error {
	b.current = target
	b.TargetsBegun = append(b.TargetsBegun, target)
	return nil
}

func (b *Backend) RenderTargetEnd(target *metadata.RenderTarget) error {
	b.current = nil
	return nil
}

func (b *Backend) Draw(command *metadata.RenderCommand, vertices []metadata.ColorVertex) error {
	if b.DrawErr != nil {
		return b.DrawErr
	}
	v := make([]metadata.ColorVertex, len(vertices))
	copy(v, vertices)
	b.Draws = append(b.Draws, DrawCall{Command: command, Target: b.current, Vertices: v})
	return nil
}

// DrawsWith returns the recorded draws of the given primitive type.
func (b *Backend) DrawsWith(primitive metadata.PrimitiveType) []DrawCall {
	out := make([]DrawCall, 0)
	for _, d := range b.Draws {
		if d.Command.Primitive == primitive {
			out = append(out, d)
		}
	}
	return out
}
