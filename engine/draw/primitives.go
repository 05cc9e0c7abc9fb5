package draw

import (
	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/math"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

const (
	// MiterEpsilon is the smallest 1+n1·n2 a stroke join divides by.
	MiterEpsilon float32 = 1e-3
	// MiterLimit caps a join's offset, in border widths. Joins sharper than
	// about 29 degrees use the outgoing edge normal instead of a miter.
	MiterLimit float32 = 4
)

func vertex(pos math.Vec2, colour math.Color4B, texcoord math.Vec2) metadata.ColorVertex {
	return metadata.ColorVertex{Position: pos, Colour: colour, Texcoord: texcoord}
}

func (dn *DrawNode) push(vb *VertexBuffer, vertices ...metadata.ColorVertex) {
	if err := vb.Append(vertices...); err != nil {
		core.LogError("draw node '%s': %s", dn.Name(), err.Error())
	}
}

func (dn *DrawNode) DrawPoint(position math.Vec2, pointSize float32, color math.Color4F) {
	dn.push(dn.points, vertex(position, color.ToColor4B(), math.NewVec2(pointSize, 0)))
}

func (dn *DrawNode) DrawPoints(positions []math.Vec2, pointSize float32, color math.Color4F) {
	if len(positions) == 0 {
		return
	}
	c := color.ToColor4B()
	size := math.NewVec2(pointSize, 0)
	vertices := make([]metadata.ColorVertex, len(positions))
	for i, p := range positions {
		vertices[i] = vertex(p, c, size)
	}
	dn.push(dn.points, vertices...)
}

func (dn *DrawNode) DrawLine(origin, destination math.Vec2, color math.Color4F) {
	c := color.ToColor4B()
	dn.push(dn.lines,
		vertex(origin, c, math.NewVec2Zero()),
		vertex(destination, c, math.NewVec2Zero()),
	)
}

// DrawRect outlines the axis-aligned rectangle spanned by two corners.
func (dn *DrawNode) DrawRect(origin, destination math.Vec2, color math.Color4F) {
	dn.DrawQuad(
		origin,
		math.NewVec2(destination.X, origin.Y),
		destination,
		math.NewVec2(origin.X, destination.Y),
		color,
	)
}

// DrawQuad outlines p1 -> p2 -> p3 -> p4 -> p1.
func (dn *DrawNode) DrawQuad(p1, p2, p3, p4 math.Vec2, color math.Color4F) {
	dn.DrawLine(p1, p2, color)
	dn.DrawLine(p2, p3, color)
	dn.DrawLine(p3, p4, color)
	dn.DrawLine(p4, p1, color)
}

/**
 * @brief Appends a polyline as line segments: 2*(n-1) vertices when open,
 * 2*n when closed, the last pair joining the final point back to the first.
 */
func (dn *DrawNode) DrawPoly(points []math.Vec2, closePolygon bool, color math.Color4F) {
	n := len(points)
	if n == 0 || (!closePolygon && n < 2) {
		return
	}

	vertexCount := 2 * (n - 1)
	if closePolygon {
		vertexCount = 2 * n
	}
	c := color.ToColor4B()
	zero := math.NewVec2Zero()

	vertices := make([]metadata.ColorVertex, 0, vertexCount)
	for i := 0; i < n-1; i++ {
		vertices = append(vertices, vertex(points[i], c, zero), vertex(points[i+1], c, zero))
	}
	if closePolygon {
		vertices = append(vertices, vertex(points[n-1], c, zero), vertex(points[0], c, zero))
	}
	dn.push(dn.lines, vertices...)
}

// ellipse returns count samples of an ellipse divided into segments steps per turn.
func ellipse(center math.Vec2, radius, angle float32, count int, segments int, scaleX, scaleY float32) []math.Vec2 {
	coef := math.K_PI_2 / float32(segments)
	points := make([]math.Vec2, count)
	for i := 0; i < count; i++ {
		rads := float32(i) * coef
		points[i] = math.NewVec2(
			radius*math.Cos(rads+angle)*scaleX+center.X,
			radius*math.Sin(rads+angle)*scaleY+center.Y,
		)
	}
	return points
}

/**
 * @brief Outlines an ellipse with segments+1 samples, optionally adding a
 * spoke to the centre, as a closed polyline.
 */
func (dn *DrawNode) DrawCircle(center math.Vec2, radius, angle float32, segments int, drawLineToCenter bool, scaleX, scaleY float32, color math.Color4F) {
	if segments < 1 {
		return
	}
	points := ellipse(center, radius, angle, segments+1, segments, scaleX, scaleY)
	if drawLineToCenter {
		points = append(points, center)
	}
	dn.DrawPoly(points, true, color)
}

func (dn *DrawNode) DrawCircleUniform(center math.Vec2, radius, angle float32, segments int, drawLineToCenter bool, color math.Color4F) {
	dn.DrawCircle(center, radius, angle, segments, drawLineToCenter, 1, 1, color)
}

// DrawTriangle appends the three corners as given; winding is not corrected.
func (dn *DrawNode) DrawTriangle(p1, p2, p3 math.Vec2, color math.Color4F) {
	c := color.ToColor4B()
	zero := math.NewVec2Zero()
	dn.push(dn.triangles,
		vertex(p1, c, zero),
		vertex(p2, c, zero),
		vertex(p3, c, zero),
	)
}

/**
 * @brief A quad whose texcoords run from (-1,-1) to (1,1); the length shader
 * masks everything outside the unit circle, leaving a round dot.
 */
func (dn *DrawNode) DrawDot(position math.Vec2, radius float32, color math.Color4F) {
	c := color.ToColor4B()
	a := vertex(math.NewVec2(position.X-radius, position.Y-radius), c, math.NewVec2(-1, -1))
	b := vertex(math.NewVec2(position.X-radius, position.Y+radius), c, math.NewVec2(-1, 1))
	d := vertex(math.NewVec2(position.X+radius, position.Y+radius), c, math.NewVec2(1, 1))
	e := vertex(math.NewVec2(position.X+radius, position.Y-radius), c, math.NewVec2(1, -1))
	dn.push(dn.triangles, a, b, d, a, d, e)
}

type extrude struct {
	offset math.Vec2
	n      math.Vec2
}

/**
 * @brief Fills a polygon as a fan from the first vertex (n-2 triangles) and,
 * when the border is visible, strokes it with two triangles per edge.
 * Concave input is not tessellated and fills incorrectly.
 */
func (dn *DrawNode) DrawPolygon(verts []math.Vec2, fillColor math.Color4F, borderWidth float32, borderColor math.Color4F) {
	count := len(verts)
	if count < 3 {
		return
	}
	outline := borderColor.A > 0 && borderWidth > 0

	triangleCount := count - 2
	if outline {
		triangleCount = 3*count - 2
	}
	vertices := make([]metadata.ColorVertex, 0, 3*triangleCount)

	fill := fillColor.ToColor4B()
	zero := math.NewVec2Zero()
	for i := 0; i < count-2; i++ {
		vertices = append(vertices,
			vertex(verts[0], fill, zero),
			vertex(verts[i+1], fill, zero),
			vertex(verts[i+2], fill, zero),
		)
	}

	if outline {
		extrusions := make([]extrude, count)
		for i := 0; i < count; i++ {
			v0 := verts[(i-1+count)%count]
			v1 := verts[i]
			v2 := verts[(i+1)%count]

			n1 := v1.Sub(v0).Perp().Normalize()
			n2 := v2.Sub(v1).Perp().Normalize()

			extrusions[i] = extrude{offset: miter(n1, n2), n: n2}
		}

		border := borderColor.ToColor4B()
		for i := 0; i < count; i++ {
			j := (i + 1) % count
			v0 := verts[i]
			v1 := verts[j]

			n0 := extrusions[i].n
			offset0 := extrusions[i].offset
			offset1 := extrusions[j].offset

			inner0 := v0.Sub(offset0.MulScalar(borderWidth))
			inner1 := v1.Sub(offset1.MulScalar(borderWidth))
			outer0 := v0.Add(offset0.MulScalar(borderWidth))
			outer1 := v1.Add(offset1.MulScalar(borderWidth))

			vertices = append(vertices,
				vertex(inner0, border, n0.Neg()),
				vertex(inner1, border, n0.Neg()),
				vertex(outer1, border, n0),

				vertex(inner0, border, n0.Neg()),
				vertex(outer0, border, n0),
				vertex(outer1, border, n0),
			)
		}
	}

	dn.push(dn.triangles, vertices...)
}

// miter returns (n1+n2)/(1+n1·n2), or n2 when the join is too sharp for a
// miter within MiterLimit.
func miter(n1, n2 math.Vec2) math.Vec2 {
	denominator := n1.Dot(n2) + 1
	if denominator < MiterEpsilon {
		return n2
	}
	offset := n1.Add(n2).MulScalar(1 / denominator)
	if offset.LengthSquared() > MiterLimit*MiterLimit {
		return n2
	}
	return offset
}

func (dn *DrawNode) DrawSolidPoly(points []math.Vec2, color math.Color4F) {
	dn.DrawPolygon(points, color, 0, math.ColorClear)
}

func (dn *DrawNode) DrawSolidRect(origin, destination math.Vec2, color math.Color4F) {
	dn.DrawSolidPoly([]math.Vec2{
		origin,
		math.NewVec2(destination.X, origin.Y),
		destination,
		math.NewVec2(origin.X, destination.Y),
	}, color)
}

func (dn *DrawNode) DrawSolidCircle(center math.Vec2, radius, angle float32, segments int, scaleX, scaleY float32, color math.Color4F) {
	if segments < 1 {
		return
	}
	dn.DrawSolidPoly(ellipse(center, radius, angle, segments, segments, scaleX, scaleY), color)
}
