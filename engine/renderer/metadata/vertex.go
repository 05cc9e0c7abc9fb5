package metadata

import "github.com/spaghettifunk/anima-blend/engine/math"

// ColorVertex is the vertex layout shared by the draw layer and sprites.
// For point sprites Texcoord carries (pointSize, 0).
type ColorVertex struct {
	Position math.Vec2
	Colour   math.Color4B
	Texcoord math.Vec2
}

// VertexSource supplies the vertices of a command at execution time.
// Upload copies pending CPU data to the mirror the backend reads, if it
// changed since the last call, and returns that mirror.
type VertexSource interface {
	Upload() []ColorVertex
}

// VertexSlice is a VertexSource over a fixed slice, used by sprites.
type VertexSlice []ColorVertex

func (v VertexSlice) Upload() []ColorVertex {
	return v
}
