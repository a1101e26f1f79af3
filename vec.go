package photon

// Vec2 is a 2D position or extent in world units.
type Vec2 struct {
	X, Y float32
}

// V2 is a convenience function to create a Vec2.
func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// TexRect is a normalized texture-coordinate rectangle. (S0, T0) is the
// top-left texel corner and (S1, T1) the bottom-right, with T growing
// downwards through the image rows.
type TexRect struct {
	S0, T0, S1, T1 float32
}

// FullTexRect covers the whole texture.
var FullTexRect = TexRect{S0: 0, T0: 0, S1: 1, T1: 1}
