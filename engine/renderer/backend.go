package renderer

import "github.com/spaghettifunk/anima-blend/engine/renderer/metadata"

type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	TextureCreate(pixels []uint8, texture *metadata.Texture) error
	TextureCreateWriteable(texture *metadata.Texture) error
	TextureWriteData(texture *metadata.Texture, pixels []uint8) error
	TextureDestroy(texture *metadata.Texture)
	ShaderCreate(shader *metadata.Shader) error
	ShaderDestroy(shader *metadata.Shader)
	RenderTargetCreate(target *metadata.RenderTarget) error
	RenderTargetDestroy(target *metadata.RenderTarget)
	// RenderTargetBegin binds target for the following draws; nil binds the framebuffer.
	RenderTargetBegin(target *metadata.RenderTarget) error
	RenderTargetEnd(target *metadata.RenderTarget) error
	Draw(command *metadata.RenderCommand, vertices []metadata.ColorVertex) error
}
