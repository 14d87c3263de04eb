package geom

// Vertex is a 3D point, grounded on the source's Vertex3.
//
// Attribute behavior (from the source's doc comment, carried over
// unchanged since it describes the attribute, not the teacher):
//   - binds to 0-cells,
//   - merge policy: the new vertex is placed at the midpoint of the two
//     existing ones,
//   - split policy: the current vertex is duplicated,
//   - merge-incomplete: the present value is adopted as-is, matching
//     the source's merge_undefined.
type Vertex struct {
	X, Y, Z float64
}

// Sub returns the vector from o to v.
func (v Vertex) Sub(o Vertex) Vector {
	return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Add returns v displaced by d.
func (v Vertex) Add(d Vector) Vertex {
	return Vertex{v.X + d.X, v.Y + d.Y, v.Z + d.Z}
}

// Average returns the midpoint of two vertices.
func Average(a, b Vertex) Vertex {
	return Vertex{(a.X + b.X) / 2, (a.Y + b.Y) / 2, (a.Z + b.Z) / 2}
}

// VertexLaws implements attribute.UpdateLaws[Vertex] per the merge/split
// policy documented on Vertex above.
type VertexLaws struct{}

// Merge places the new vertex at the midpoint of a and b.
func (VertexLaws) Merge(a, b Vertex) (Vertex, error) {
	return Average(a, b), nil
}

// Split duplicates v onto both resulting cells.
func (VertexLaws) Split(v Vertex) (Vertex, Vertex, error) {
	return v, v, nil
}

// MergeIncomplete adopts the one present vertex, matching the source's
// merge_undefined rather than rejecting the merge.
func (VertexLaws) MergeIncomplete(a Vertex) (Vertex, error) {
	return a, nil
}
