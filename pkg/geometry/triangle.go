package geometry

// TriangleArea returns the surface area of the triangle spanned by a, b and c
func TriangleArea(a, b, c Vector3) float64 {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	return edge1.Cross(edge2).Length() / 2.0
}

// TriangleNormal computes the unit normal of the triangle spanned by a, b
// and c, following the right-hand rule over the vertex order. Degenerate
// triangles yield the zero vector.
func TriangleNormal(a, b, c Vector3) Vector3 {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	return edge1.Cross(edge2).Normalize()
}

// SignedVolume returns the signed volume of the tetrahedron formed by the
// triangle (a, b, c) and the origin. Summed over a closed, consistently
// outward-wound surface these terms yield the enclosed volume (divergence
// theorem); on open or inconsistently wound surfaces the sum is only an
// approximation and may be zero or negative.
func SignedVolume(a, b, c Vector3) float64 {
	return a.Dot(b.Cross(c)) / 6.0
}
