// Package geom provides the point-in-polygon test used for tile footprints.
//
// Footprints are treated as planar polygons in (ra, dec) degree space.
// This is an accepted approximation: results degrade for polygons that
// straddle the 0/360 longitude seam or sit close to a celestial pole.
// No tile in the supported catalogs currently does either.
package geom

// ContainsPoint reports whether the point (x, y) lies inside the polygon
// described by vertices, a flat slice of alternating x/y coordinates in
// degrees. It uses the even-odd ray-crossing rule; behavior for points
// exactly on an edge is unspecified and callers must not rely on it.
//
// A slice with fewer than three vertex pairs describes no area and never
// contains anything.
func ContainsPoint(x, y float64, vertices []float64) bool {
	n := len(vertices) / 2
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := vertices[2*i], vertices[2*i+1]
		xj, yj := vertices[2*j], vertices[2*j+1]
		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}
