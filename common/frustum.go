package common

import (
	"github.com/chewxy/math32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// SignedDistance returns the distance from p to the plane; positive on the normal side.
//
// Parameters:
//   - p: the point to test
//
// Returns:
//   - float32: signed distance
func (p Plane) SignedDistance(point [3]float32) float32 {
	return Dot3(p.Normal, point) + p.Distance
}

// Frustum represents the six clip planes of a view volume.
// Planes are oriented so that the positive half-space is inside.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts clip planes from a column-major view-projection matrix
// using the Gribb/Hartmann method. The projection is expected to map depth to [0, 1],
// so the near plane is row 2 on its own rather than row 3 + row 2.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined projection * view matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj Mat4) Frustum {
	row := func(i int) [4]float32 {
		return [4]float32{viewProj[i], viewProj[4+i], viewProj[8+i], viewProj[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)
	plane := func(a [4]float32, b [4]float32, sign float32) Plane {
		return Plane{
			Normal:   [3]float32{a[0] + sign*b[0], a[1] + sign*b[1], a[2] + sign*b[2]},
			Distance: a[3] + sign*b[3],
		}
	}

	var f Frustum
	f.Planes[FrustumLeft] = plane(r3, r0, 1)
	f.Planes[FrustumRight] = plane(r3, r0, -1)
	f.Planes[FrustumBottom] = plane(r3, r1, 1)
	f.Planes[FrustumTop] = plane(r3, r1, -1)
	f.Planes[FrustumNear] = plane(r2, r2, 0)
	f.Planes[FrustumFar] = plane(r3, r2, -1)

	for i := range f.Planes {
		f.normalizePlane(i)
	}
	return f
}

// ContainsSphere reports whether a sphere intersects or lies inside the frustum.
//
// Parameters:
//   - center: sphere center in world space
//   - radius: sphere radius
//
// Returns:
//   - bool: false only when the sphere is entirely outside one of the planes
func (f Frustum) ContainsSphere(center [3]float32, radius float32) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(center) < -radius {
			return false
		}
	}
	return true
}

// FrustumCorners returns the eight world-space corners of the volume described by an
// inverse view-projection matrix. Order: near (bl, br, tr, tl), then far (bl, br, tr, tl).
//
// Parameters:
//   - invViewProj: inverse of the combined view-projection matrix
//
// Returns:
//   - [8][3]float32: the corners
func FrustumCorners(invViewProj Mat4) [8][3]float32 {
	ndc := [8][3]float32{
		{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	var out [8][3]float32
	for i, c := range ndc {
		out[i] = TransformPoint(invViewProj, c)
	}
	return out
}

// FrustumEdges lists the 12 corner index pairs of a frustum's wireframe.
var FrustumEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := math32.Sqrt(Dot3(p.Normal, p.Normal))
	if length > 0 {
		inv := 1 / length
		p.Normal = Scale3(p.Normal, inv)
		p.Distance *= inv
	}
}
