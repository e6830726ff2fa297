package world

import "math"

// Wrap maps a coordinate into [0, size) regardless of sign.
func Wrap(v, size float64) float64 {
	if size <= 0 {
		return v
	}
	wrapped := math.Mod(v, size)
	if wrapped < 0 {
		wrapped += size
	}
	return wrapped
}

// WrapDelta returns the shortest signed displacement from a to b on a wrapped
// axis of the given size. The result is always in [-size/2, size/2).
func WrapDelta(a, b, size float64) float64 {
	delta := math.Mod(b-a, size)
	if delta < -size/2 {
		delta += size
	} else if delta >= size/2 {
		delta -= size
	}
	return delta
}

// WrappedDistance computes the toroidal distance between two points.
func WrappedDistance(ax, az, bx, bz, width, height float64) float64 {
	dx := WrapDelta(ax, bx, width)
	dz := WrapDelta(az, bz, height)
	return math.Hypot(dx, dz)
}

// SegmentSphereHit reports whether the segment from (px,pz) with displacement
// (dx,dz) passes within radius of the center (cx,cz), treating both axes as
// wrapped. It solves |f + t*d|^2 = r^2 for t in [0,1], where f is the
// minimal-image offset from the segment start to the sphere center. The
// returned t is the earliest intersection parameter when hit is true.
func SegmentSphereHit(px, pz, dx, dz, cx, cz, radius, width, height float64) (float64, bool) {
	fx := WrapDelta(cx, px, width)
	fz := WrapDelta(cz, pz, height)

	a := dx*dx + dz*dz
	if a == 0 {
		if fx*fx+fz*fz <= radius*radius {
			return 0, true
		}
		return 0, false
	}
	b := 2 * (fx*dx + fz*dz)
	c := fx*fx + fz*fz - radius*radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sqrt := math.Sqrt(disc)
	t0 := (-b - sqrt) / (2 * a)
	t1 := (-b + sqrt) / (2 * a)
	if t0 >= 0 && t0 <= 1 {
		return t0, true
	}
	if t1 >= 0 && t1 <= 1 {
		// Segment starts inside the sphere.
		return 0, true
	}
	return 0, false
}

// Normalize scales (dx,dz) to unit length. A zero vector is reported as not
// normalizable so callers can ignore it instead of dividing by zero.
func Normalize(dx, dz float64) (float64, float64, bool) {
	length := math.Hypot(dx, dz)
	if length == 0 {
		return 0, 0, false
	}
	return dx / length, dz / length, true
}
