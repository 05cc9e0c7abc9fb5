package draw

import (
	"fmt"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/renderer"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-blend/engine/scene"
)

/**
 * @brief A scene node that accumulates immediate-mode primitives into three
 * vertex buffers (triangles, lines, points) and renders each with one command.
 * Primitives persist across frames until Clear is called.
 */
type DrawNode struct {
	*scene.Node

	triangles *VertexBuffer
	lines     *VertexBuffer
	points    *VertexBuffer

	blend     metadata.BlendFunc
	lineWidth float32
}

func NewDrawNode(name string, config *core.DrawConfig) (*DrawNode, error) {
	if config == nil {
		config = &core.DefaultConfig().Draw
	}
	triangles, err := NewVertexBuffer(metadata.PrimitiveTriangles, config.TriangleCapacity)
	if err != nil {
		err = fmt.Errorf("draw node '%s' triangles: %w", name, err)
		core.LogError(err.Error())
		return nil, err
	}
	lines, err := NewVertexBuffer(metadata.PrimitiveLines, config.LineCapacity)
	if err != nil {
		err = fmt.Errorf("draw node '%s' lines: %w", name, err)
		core.LogError(err.Error())
		return nil, err
	}
	points, err := NewVertexBuffer(metadata.PrimitivePoints, config.PointCapacity)
	if err != nil {
		err = fmt.Errorf("draw node '%s' points: %w", name, err)
		core.LogError(err.Error())
		return nil, err
	}

	lineWidth := config.LineWidth
	if lineWidth <= 0 {
		lineWidth = 1
	}

	dn := &DrawNode{
		Node:      scene.NewNode(name),
		triangles: triangles,
		lines:     lines,
		points:    points,
		blend:     metadata.BlendAlphaPremultiplied,
		lineWidth: lineWidth,
	}
	dn.SetDrawable(dn)
	return dn, nil
}

func (dn *DrawNode) Triangles() *VertexBuffer { return dn.triangles }
func (dn *DrawNode) Lines() *VertexBuffer     { return dn.lines }
func (dn *DrawNode) Points() *VertexBuffer    { return dn.points }

func (dn *DrawNode) BlendFunc() metadata.BlendFunc        { return dn.blend }
func (dn *DrawNode) SetBlendFunc(blend metadata.BlendFunc) { dn.blend = blend }

func (dn *DrawNode) LineWidth() float32 { return dn.lineWidth }

func (dn *DrawNode) SetLineWidth(width float32) {
	if width > 0 {
		dn.lineWidth = width
	}
}

// EnsureCapacity reserves room for n more triangle vertices.
func (dn *DrawNode) EnsureCapacity(n int) error {
	return dn.triangles.EnsureCapacity(n)
}

// Clear drops every primitive; the allocations are kept for reuse.
func (dn *DrawNode) Clear() {
	dn.triangles.Clear()
	dn.lines.Clear()
	dn.points.Clear()
}

// Draw queues one command per non-empty buffer. Vertices upload when the
// renderer executes the command, so primitives added later this frame still show.
func (dn *DrawNode) Draw(r *renderer.Renderer, transform math.Mat4) {
	if dn.triangles.Count() > 0 {
		r.AddCommand(dn.command(dn.triangles, metadata.ShaderPositionLengthTextureColor, transform))
	}
	if dn.points.Count() > 0 {
		r.AddCommand(dn.command(dn.points, metadata.ShaderPositionColorTexAsPointSize, transform))
	}
	if dn.lines.Count() > 0 {
		cmd := dn.command(dn.lines, metadata.ShaderPositionLengthTextureColor, transform)
		cmd.LineWidth = dn.lineWidth
		r.AddCommand(cmd)
	}
}

func (dn *DrawNode) command(vb *VertexBuffer, shader string, transform math.Mat4) *metadata.RenderCommand {
	return &metadata.RenderCommand{
		Primitive: vb.Primitive(),
		Shader:    shader,
		Blend:     dn.blend,
		GlobalZ:   dn.GlobalZOrder(),
		Transform: transform,
		Source:    vb,
	}
}
