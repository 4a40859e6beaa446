package vec

// Box is an axis aligned bounding box stored as center and half extent.
type Box struct {
	Center Vec3
	Extent Vec3
}

// BoxAround returns the box that encloses a sphere.
func BoxAround(center Vec3, radius float32) Box {
	return Box{Center: center, Extent: Splat(radius)}
}

// BoxFromMinMax builds a box from two corners given in any order.
func BoxFromMinMax(a, b Vec3) Box {
	mn, mx := MinMax(a, b)
	return Box{
		Center: Lerp(mn, mx, 0.5),
		Extent: Sub(mx, mn).Scale(0.5),
	}
}

func (b *Box) Min() Vec3 {
	return Sub(b.Center, b.Extent)
}

func (b *Box) Max() Vec3 {
	return Add(b.Center, b.Extent)
}

// MaxExtent returns the largest half extent of the box.
func (b *Box) MaxExtent() float32 {
	return max(b.Extent.X, b.Extent.Y, b.Extent.Z)
}

// Contains reports whether p lies inside or on the surface of the box.
func (b *Box) Contains(p Vec3) bool {
	d := Sub(p, b.Center)
	return abs(d.X) <= b.Extent.X &&
		abs(d.Y) <= b.Extent.Y &&
		abs(d.Z) <= b.Extent.Z
}

// Intersects reports whether the two boxes overlap or touch.
func (b *Box) Intersects(o Box) bool {
	d := Sub(o.Center, b.Center)
	return abs(d.X) <= b.Extent.X+o.Extent.X &&
		abs(d.Y) <= b.Extent.Y+o.Extent.Y &&
		abs(d.Z) <= b.Extent.Z+o.Extent.Z
}

// Union returns the smallest box containing both boxes.
func Union(a, b Box) Box {
	amin, amax := a.Min(), a.Max()
	bmin, bmax := b.Min(), b.Max()
	return BoxFromMinMax(
		Vec3{min(amin.X, bmin.X), min(amin.Y, bmin.Y), min(amin.Z, bmin.Z)},
		Vec3{max(amax.X, bmax.X), max(amax.Y, bmax.Y), max(amax.Z, bmax.Z)})
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
