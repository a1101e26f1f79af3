package photon

// Vertex layout constants. The layout is the wire contract with every
// device: eight little-endian float32 per vertex.
const (
	FloatsPerVertex   = 8
	VertexStride      = FloatsPerVertex * 4
	VerticesPerSprite = 6
	QuadStride        = VerticesPerSprite * VertexStride
)

// Vertex is one interleaved vertex record.
type Vertex struct {
	X, Y       float32
	R, G, B, A float32
	U, V       float32
}

// Quad is the six vertices (two triangles) of one sprite slot.
type Quad [VerticesPerSprite]Vertex

// EncodeQuad builds the two triangles covering the axis-aligned rectangle
// at pos with the given size. The bottom edge samples T1 and the top edge T0,
// so images appear upright in the y-up world.
//
//	4 ---- 2,3
//	|    /  |
//	0,5 ---- 1
func EncodeQuad(pos, size Vec2, c RGBA, tc TexRect) Quad {
	x0, y0 := pos.X, pos.Y
	x1, y1 := pos.X+size.X, pos.Y+size.Y

	v := func(x, y, u, t float32) Vertex {
		return Vertex{X: x, Y: y, R: c.R, G: c.G, B: c.B, A: c.A, U: u, V: t}
	}
	return Quad{
		v(x0, y0, tc.S0, tc.T1),
		v(x1, y0, tc.S1, tc.T1),
		v(x1, y1, tc.S1, tc.T0),
		v(x1, y1, tc.S1, tc.T0),
		v(x0, y1, tc.S0, tc.T0),
		v(x0, y0, tc.S0, tc.T1),
	}
}

// Floats returns the vertex as its eight wire floats.
func (v Vertex) Floats() [FloatsPerVertex]float32 {
	return [FloatsPerVertex]float32{v.X, v.Y, v.R, v.G, v.B, v.A, v.U, v.V}
}
