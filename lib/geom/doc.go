// Package geom provides the spatial attribute types used by
// combinatorial-map vertex data: a 3D point (Vertex) and a 3D
// direction/displacement (Vector), together with the merge/split laws
// that let Vertex be registered directly as a cmap attribute.
//
// Grounded on the source's geometry/dim3 module (Vertex3, Vector3):
// translated from a generic-over-CoordsFloat Rust type to a concrete
// float64 Go type, since Go generics cannot express the CoordsFloat
// trait bound (Float + AddAssign + ... ) as cleanly as a fixed-width
// float does for a workspace of this size.
package geom
