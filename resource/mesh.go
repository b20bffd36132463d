package resource

import (
	"fmt"

	"github.com/icyseptember2237/nengine/gfx"
)

// Attribute slots shared by every shader.
const (
	SlotPosition uint32 = 0
	SlotTexCoord uint32 = 1
	SlotNormal   uint32 = 2
)

// MeshData is single-indexed geometry: Vertices holds xyz triples, TexCoords
// uv pairs and Normals xyz triples, all addressed by Indices.
type MeshData struct {
	Vertices  []float32
	Indices   []uint32
	Normals   []float32
	TexCoords []float32
}

func (m MeshData) VertexCount() int {
	return len(m.Vertices) / 3
}

func (m MeshData) Empty() bool {
	return len(m.Vertices) == 0
}

// UnitQuad spans (0,0) to (1,1) in the XY plane with matching texture
// coordinates. Glyphs and other overlay bitmaps are drawn with it.
func UnitQuad() MeshData {
	return MeshData{
		Vertices:  []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		TexCoords: []float32{0, 0, 1, 0, 1, 1, 0, 1},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 2, 2, 3, 0},
	}
}

type Mesh struct {
	VAO uint32
	VBO uint32
	TBO uint32
	NBO uint32
	EBO uint32

	count   int32
	indexed bool
	ctx     gfx.Context
}

// NewMesh uploads data into a vertex array with one buffer per attribute.
func NewMesh(ctx gfx.Context, data MeshData) (*Mesh, error) {
	m := &Mesh{ctx: ctx}
	if m.VAO = ctx.GenVertexArray(); m.VAO == 0 {
		return nil, fmt.Errorf("vertex array: %w", ErrAllocation)
	}
	ctx.BindVertexArray(m.VAO)
	defer ctx.BindVertexArray(0)

	var err error
	if m.VBO, err = m.attribute(SlotPosition, 3, data.Vertices); err != nil {
		m.Release()
		return nil, err
	}
	if len(data.TexCoords) > 0 {
		if m.TBO, err = m.attribute(SlotTexCoord, 2, data.TexCoords); err != nil {
			m.Release()
			return nil, err
		}
	}
	if len(data.Normals) > 0 {
		if m.NBO, err = m.attribute(SlotNormal, 3, data.Normals); err != nil {
			m.Release()
			return nil, err
		}
	}

	if len(data.Indices) > 0 {
		if m.EBO = ctx.GenBuffer(); m.EBO == 0 {
			m.Release()
			return nil, fmt.Errorf("element buffer: %w", ErrAllocation)
		}
		ctx.BindBuffer(gfx.ElementArrayBuffer, m.EBO)
		ctx.BufferUint32(gfx.ElementArrayBuffer, data.Indices, gfx.StaticDraw)
		m.count = int32(len(data.Indices))
		m.indexed = true
	} else {
		m.count = int32(data.VertexCount())
	}
	return m, nil
}

func (m *Mesh) attribute(slot uint32, size int32, values []float32) (uint32, error) {
	buf := m.ctx.GenBuffer()
	if buf == 0 {
		return 0, fmt.Errorf("buffer for slot %d: %w", slot, ErrAllocation)
	}
	m.ctx.BindBuffer(gfx.ArrayBuffer, buf)
	m.ctx.BufferFloat32(gfx.ArrayBuffer, values, gfx.StaticDraw)
	m.ctx.VertexAttribPointer(slot, size, size*4, 0)
	m.ctx.EnableVertexAttribArray(slot)
	return buf, nil
}

func (m *Mesh) Count() int32 {
	return m.count
}

func (m *Mesh) Draw() {
	m.ctx.BindVertexArray(m.VAO)
	if m.indexed {
		m.ctx.DrawElements(gfx.Triangles, m.count)
	} else {
		m.ctx.DrawArrays(gfx.Triangles, 0, m.count)
	}
	m.ctx.BindVertexArray(0)
}

func (m *Mesh) Release() {
	for _, buf := range []*uint32{&m.VBO, &m.TBO, &m.NBO, &m.EBO} {
		if *buf != 0 {
			m.ctx.DeleteBuffer(*buf)
			*buf = 0
		}
	}
	if m.VAO != 0 {
		m.ctx.DeleteVertexArray(m.VAO)
		m.VAO = 0
	}
}
