package draw

import (
	"fmt"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

/**
 * @brief A growable CPU vertex array for one primitive type plus the mirror
 * the renderer reads. Writes mark it dirty; Upload copies to the mirror at
 * most once per change.
 */
type VertexBuffer struct {
	primitive metadata.PrimitiveType
	data      []metadata.ColorVertex
	count     int
	dirty     bool

	mirror        []metadata.ColorVertex
	uploads       int
	reallocations int
}

func NewVertexBuffer(primitive metadata.PrimitiveType, capacity int) (*VertexBuffer, error) {
	vb := &VertexBuffer{primitive: primitive}
	if err := vb.EnsureCapacity(capacity); err != nil {
		return nil, err
	}
	vb.dirty = true
	return vb, nil
}

func (vb *VertexBuffer) Primitive() metadata.PrimitiveType { return vb.primitive }
func (vb *VertexBuffer) Capacity() int                     { return len(vb.data) }
func (vb *VertexBuffer) Count() int                        { return vb.count }
func (vb *VertexBuffer) Dirty() bool                       { return vb.dirty }

// Uploads counts how many times the mirror was refreshed.
func (vb *VertexBuffer) Uploads() int { return vb.uploads }

// Reallocations counts how many times the backing array was replaced.
func (vb *VertexBuffer) Reallocations() int { return vb.reallocations }

// Vertices returns the written vertices. The slice aliases the buffer.
func (vb *VertexBuffer) Vertices() []metadata.ColorVertex {
	return vb.data[:vb.count]
}

/**
 * @brief Makes room for n more vertices. On growth the capacity increases by
 * max(capacity, n) and the vertices below count are carried over.
 */
func (vb *VertexBuffer) EnsureCapacity(n int) error {
	if n < 0 {
		return fmt.Errorf("ensure capacity %d: %w", n, core.ErrNegativeCount)
	}
	capacity := len(vb.data)
	if vb.count+n <= capacity {
		return nil
	}
	capacity += max(capacity, n)
	grown := make([]metadata.ColorVertex, capacity)
	copy(grown, vb.data[:vb.count])
	vb.data = grown
	vb.reallocations++
	return nil
}

// Append writes vertices after the current count, growing if needed.
func (vb *VertexBuffer) Append(vertices ...metadata.ColorVertex) error {
	if err := vb.EnsureCapacity(len(vertices)); err != nil {
		return err
	}
	copy(vb.data[vb.count:], vertices)
	vb.count += len(vertices)
	vb.dirty = true
	return nil
}

// Clear forgets the written vertices but keeps the allocation.
func (vb *VertexBuffer) Clear() {
	vb.count = 0
	vb.dirty = true
}

// Upload implements metadata.VertexSource.
func (vb *VertexBuffer) Upload() []metadata.ColorVertex {
	if vb.dirty {
		vb.mirror = append(vb.mirror[:0], vb.data[:vb.count]...)
		vb.dirty = false
		vb.uploads++
	}
	return vb.mirror
}
