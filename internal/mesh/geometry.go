package mesh

// Geometry is a complete per-chunk surface in world space. Enabled is false
// when the chunk produced no faces; such geometry must not be rendered,
// collided against or picked.
type Geometry struct {
	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex
	Colors    []float32 // rgba per vertex
	Indices   []uint32
	Enabled   bool
}

func (g *Geometry) FaceCount() int {
	if g == nil {
		return 0
	}
	return len(g.Indices) / indicesPerFace
}

func (g *Geometry) VertexCount() int {
	if g == nil {
		return 0
	}
	return len(g.Positions) / 3
}

func (g *Geometry) TriangleCount() int {
	if g == nil {
		return 0
	}
	return len(g.Indices) / 3
}

func (g *Geometry) reset() {
	g.Positions = g.Positions[:0]
	g.Normals = g.Normals[:0]
	g.Colors = g.Colors[:0]
	g.Indices = g.Indices[:0]
	g.Enabled = false
}

func (g *Geometry) clone() *Geometry {
	out := &Geometry{Enabled: len(g.Indices) > 0}
	if !out.Enabled {
		return out
	}
	out.Positions = append([]float32(nil), g.Positions...)
	out.Normals = append([]float32(nil), g.Normals...)
	out.Colors = append([]float32(nil), g.Colors...)
	out.Indices = append([]uint32(nil), g.Indices...)
	return out
}
