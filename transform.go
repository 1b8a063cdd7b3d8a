package marionette

import "math"

// Transform is a decomposed 2D affine transform: translation, rotation in
// radians, and per-axis scale.
type Transform struct {
	X, Y     float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// Translate returns an identity transform moved to (x, y).
func Translate(x, y float64) Transform {
	return Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}
}

// Matrix is a 2D affine matrix laid out as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Matrix [6]float64

// identityMatrix is the identity affine matrix.
var identityMatrix = Matrix{1, 0, 0, 1, 0, 0}

// IdentityMatrix returns the identity affine matrix.
func IdentityMatrix() Matrix {
	return identityMatrix
}

// Matrix computes the affine matrix for t.
//
// Composition order:
//
//	Scale -> Rotate -> Translate(X, Y)
func (t Transform) Matrix() Matrix {
	sin, cos := math.Sincos(t.Rotation)
	return Matrix{
		cos * t.ScaleX,
		sin * t.ScaleX,
		-sin * t.ScaleY,
		cos * t.ScaleY,
		t.X,
		t.Y,
	}
}

// Compose returns t ∘ local: local expressed in the space of t. Shear that
// cannot be represented by a Transform (non-uniform scale under a rotated
// child) is dropped; use Matrix.Mul when the exact result matters.
func (t Transform) Compose(local Transform) Transform {
	return t.Matrix().Mul(local.Matrix()).Decompose()
}

// Get returns the value of a numeric parameter. ParamScale reports ScaleX.
func (t Transform) Get(p Param) float64 {
	switch p {
	case ParamX:
		return t.X
	case ParamY:
		return t.Y
	case ParamRotation:
		return t.Rotation
	case ParamScaleX, ParamScale:
		return t.ScaleX
	case ParamScaleY:
		return t.ScaleY
	}
	return 0
}

// With returns a copy of t with parameter p set to v. ParamScale sets both
// axes; ParamSprite is ignored.
func (t Transform) With(p Param, v float64) Transform {
	switch p {
	case ParamX:
		t.X = v
	case ParamY:
		t.Y = v
	case ParamRotation:
		t.Rotation = v
	case ParamScaleX:
		t.ScaleX = v
	case ParamScaleY:
		t.ScaleY = v
	case ParamScale:
		t.ScaleX = v
		t.ScaleY = v
	}
	return t
}

// Mul multiplies two affine matrices: result = m * c, i.e. c applied first,
// then m.
func (m Matrix) Mul(c Matrix) Matrix {
	return Matrix{
		m[0]*c[0] + m[2]*c[1],
		m[1]*c[0] + m[3]*c[1],
		m[0]*c[2] + m[2]*c[3],
		m[1]*c[2] + m[3]*c[3],
		m[0]*c[4] + m[2]*c[5] + m[4],
		m[1]*c[4] + m[3]*c[5] + m[5],
	}
}

// Invert computes the inverse of m.
// Returns the identity matrix if m is singular (determinant ≈ 0).
func (m Matrix) Invert() Matrix {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityMatrix
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Matrix{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms the point (x, y) by m.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Decompose extracts translation, rotation, and scale from m. A negative
// determinant is folded into ScaleY.
func (m Matrix) Decompose() Transform {
	sx := math.Hypot(m[0], m[1])
	if sx == 0 {
		return Transform{X: m[4], Y: m[5], ScaleY: math.Hypot(m[2], m[3])}
	}
	det := m[0]*m[3] - m[2]*m[1]
	return Transform{
		X:        m[4],
		Y:        m[5],
		Rotation: math.Atan2(m[1], m[0]),
		ScaleX:   sx,
		ScaleY:   det / sx,
	}
}
