package renderer

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

type Renderer struct {
	backend  RendererBackend
	commands []*metadata.RenderCommand
	// stack of targets opened by render textures during the scene visit
	targets     []*metadata.RenderTarget
	frameNumber uint64
}

func New(backend RendererBackend) *Renderer {
	return &Renderer{
		backend:  backend,
		commands: make([]*metadata.RenderCommand, 0, 64),
	}
}

func (r *Renderer) Initialize(appName string, appWidth, appHeight uint32) error {
	if r.backend == nil {
		err := fmt.Errorf("renderer initialize: %w", core.ErrNilResource)
		core.LogError(err.Error())
		return err
	}
	return r.backend.Initialize(appName, appWidth, appHeight)
}

func (r *Renderer) Shutdown() error {
	r.commands = r.commands[:0]
	return r.backend.Shutdown()
}

func (r *Renderer) Backend() RendererBackend {
	return r.backend
}

func (r *Renderer) OnResize(width, height uint32) error {
	return r.backend.Resized(width, height)
}

func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

// AddCommand queues a command for the current frame. The active render
// target, if any, is recorded on the command.
func (r *Renderer) AddCommand(command *metadata.RenderCommand) {
	if command == nil || command.Source == nil {
		return
	}
	if n := len(r.targets); n > 0 {
		command.Target = r.targets[n-1]
	}
	r.commands = append(r.commands, command)
}

// PendingCommands returns the commands queued since the last Flush.
func (r *Renderer) PendingCommands() []*metadata.RenderCommand {
	return r.commands
}

func (r *Renderer) PushTarget(target *metadata.RenderTarget) {
	r.targets = append(r.targets, target)
}

func (r *Renderer) PopTarget() {
	if n := len(r.targets); n > 0 {
		r.targets = r.targets[:n-1]
	}
}

/**
 * @brief Executes every queued command and presents the frame.
 * Offscreen targets run first, in the order they were first used, so
 * their textures are ready when the framebuffer pass samples them.
 * Within a pass commands are ordered by global z, keeping submission
 * order for equal z.
 */
func (r *Renderer) Flush(deltaTime float64) error {
	if err := r.backend.BeginFrame(deltaTime); err != nil {
		core.LogError(err.Error())
		return err
	}

	order := make([]*metadata.RenderTarget, 0, 2)
	groups := make(map[*metadata.RenderTarget][]*metadata.RenderCommand)
	for _, c := range r.commands {
		if _, ok := groups[c.Target]; !ok {
			if c.Target != nil {
				order = append(order, c.Target)
			}
		}
		groups[c.Target] = append(groups[c.Target], c)
	}
	order = append(order, nil)

	var drawErr error
	for _, target := range order {
		if err := r.executePass(target, groups[target]); err != nil && drawErr == nil {
			drawErr = err
		}
	}
	r.commands = r.commands[:0]
	r.targets = r.targets[:0]

	if err := r.backend.EndFrame(deltaTime); err != nil {
		core.LogError("renderer EndFrame failed: %s", err.Error())
		return err
	}
	r.frameNumber++
	return drawErr
}

func (r *Renderer) executePass(target *metadata.RenderTarget, commands []*metadata.RenderCommand) error {
	if err := r.backend.RenderTargetBegin(target); err != nil {
		core.LogError(err.Error())
		return err
	}
	sort.SliceStable(commands, func(i, j int) bool {
		return commands[i].GlobalZ < commands[j].GlobalZ
	})

	var drawErr error
	for _, c := range commands {
		vertices := c.Source.Upload()
		if len(vertices) == 0 {
			continue
		}
		if err := r.backend.Draw(c, vertices); err != nil {
			core.LogError("draw %s with '%s' failed: %s", c.Primitive, c.Shader, err.Error())
			if drawErr == nil {
				drawErr = err
			}
			continue
		}
		core.MetricsAddDrawn(len(vertices))
	}

	if err := r.backend.RenderTargetEnd(target); err != nil {
		core.LogError(err.Error())
		return err
	}
	return drawErr
}

func (r *Renderer) TextureCreate(pixels []uint8, texture *metadata.Texture) error {
	return r.backend.TextureCreate(pixels, texture)
}

func (r *Renderer) TextureCreateWriteable(texture *metadata.Texture) error {
	return r.backend.TextureCreateWriteable(texture)
}

func (r *Renderer) TextureWriteData(texture *metadata.Texture, pixels []uint8) error {
	return r.backend.TextureWriteData(texture, pixels)
}

func (r *Renderer) TextureDestroy(texture *metadata.Texture) {
	r.backend.TextureDestroy(texture)
}

func (r *Renderer) ShaderCreate(shader *metadata.Shader) error {
	return r.backend.ShaderCreate(shader)
}

func (r *Renderer) ShaderDestroy(shader *metadata.Shader) {
	r.backend.ShaderDestroy(shader)
}

func (r *Renderer) RenderTargetCreate(target *metadata.RenderTarget) error {
	return r.backend.RenderTargetCreate(target)
}

func (r *Renderer) RenderTargetDestroy(target *metadata.RenderTarget) {
	r.backend.RenderTargetDestroy(target)
}
