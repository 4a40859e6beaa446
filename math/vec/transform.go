package vec

// Transform is a rigid transform. Rows of Basis are the local right,
// up and forward axes expressed in world space.
type Transform struct {
	Basis  [3]Vec3
	Origin Vec3
}

func Identity() Transform {
	return Transform{
		Basis: [3]Vec3{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
	}
}

// Translation returns an identity rotation placed at p.
func Translation(p Vec3) Transform {
	t := Identity()
	t.Origin = p
	return t
}

// FromAngles builds a transform from pitch/yaw/roll degrees.
func FromAngles(origin, angles Vec3) Transform {
	forward, right, up := AngleVectors(angles)
	return Transform{
		Basis:  [3]Vec3{right, up, forward},
		Origin: origin,
	}
}

// LookAt places a transform at eye facing target, with up as the
// approximate up axis. It falls back to an unrotated transform when the
// view direction is zero or parallel to up.
func LookAt(eye, target, up Vec3) Transform {
	d := Sub(target, eye)
	forward := d.Normalize()
	r := Cross(forward, up)
	if forward == (Vec3{}) || r.Length2() == 0 {
		return Translation(eye)
	}
	right := r.Normalize()
	return Transform{
		Basis:  [3]Vec3{right, Cross(right, forward), forward},
		Origin: eye,
	}
}

func (t *Transform) Right() Vec3   { return t.Basis[0] }
func (t *Transform) Up() Vec3      { return t.Basis[1] }
func (t *Transform) Forward() Vec3 { return t.Basis[2] }

// ToLocal expresses the world point p in the space of t.
func (t *Transform) ToLocal(p Vec3) Vec3 {
	d := Sub(p, t.Origin)
	return Vec3{
		Dot(d, t.Basis[0]),
		Dot(d, t.Basis[1]),
		Dot(d, t.Basis[2]),
	}
}

// ToWorld maps the local point p out of the space of t.
func (t *Transform) ToWorld(p Vec3) Vec3 {
	r := t.Origin
	r = Add(r, t.Basis[0].Scale(p.X))
	r = Add(r, t.Basis[1].Scale(p.Y))
	r = Add(r, t.Basis[2].Scale(p.Z))
	return r
}

// Rotate maps the local direction d into world space, ignoring the origin.
func (t *Transform) Rotate(d Vec3) Vec3 {
	r := t.Basis[0].Scale(d.X)
	r = Add(r, t.Basis[1].Scale(d.Y))
	r = Add(r, t.Basis[2].Scale(d.Z))
	return r
}

// Mul returns the transform of child placed inside parent.
func Mul(parent, child Transform) Transform {
	return Transform{
		Basis: [3]Vec3{
			parent.Rotate(child.Basis[0]),
			parent.Rotate(child.Basis[1]),
			parent.Rotate(child.Basis[2]),
		},
		Origin: parent.ToWorld(child.Origin),
	}
}
