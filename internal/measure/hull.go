package measure

import "sort"

// convexHullArea computes the area of the convex hull of a point set with the
// monotone chain construction and the shoelace formula. Degenerate inputs
// (fewer than three distinct points, collinear sets) have zero area.
func convexHullArea(points [][2]int) float64 {
	if len(points) < 3 {
		return 0
	}

	pts := append([][2]int(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})

	cross := func(o, a, b [2]int) int {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}

	var hull [][2]int
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]

	area := 0.0
	for i := 0; i < len(hull); i++ {
		j := (i + 1) % len(hull)
		area += float64(hull[i][0]*hull[j][1] - hull[j][0]*hull[i][1])
	}
	if area < 0 {
		area = -area
	}
	return area / 2
}
