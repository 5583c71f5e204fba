package vector_math

type Vec2 struct {
	X, Y float32
}

func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

func (v Vec2) ScalarMul(factor float32) Vec2 {
	return Vec2{X: v.X * factor, Y: v.Y * factor}
}

type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

func (v Vec3) ScalarMul(factor float32) Vec3 {
	return Vec3{X: v.X * factor, Y: v.Y * factor, Z: v.Z * factor}
}

// XY drops the z component, mainly used to derive texture coordinates from flat positions.
func (v Vec3) XY() Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}
