package marionette

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want Matrix) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func assertTransform(t *testing.T, name string, got, want Transform) {
	t.Helper()
	assertNear(t, name+".X", got.X, want.X)
	assertNear(t, name+".Y", got.Y, want.Y)
	assertNear(t, name+".Rotation", got.Rotation, want.Rotation)
	assertNear(t, name+".ScaleX", got.ScaleX, want.ScaleX)
	assertNear(t, name+".ScaleY", got.ScaleY, want.ScaleY)
}

// --- Transform.Matrix ---

func TestMatrixIdentity(t *testing.T) {
	assertMatrix(t, "identity", Identity().Matrix(), Matrix{1, 0, 0, 1, 0, 0})
}

func TestMatrixTranslation(t *testing.T) {
	assertMatrix(t, "translation", Translate(10, 20).Matrix(), Matrix{1, 0, 0, 1, 10, 20})
}

func TestMatrixScale(t *testing.T) {
	tr := Transform{ScaleX: 2, ScaleY: 3}
	assertMatrix(t, "scale", tr.Matrix(), Matrix{2, 0, 0, 3, 0, 0})
}

func TestMatrixRotation90(t *testing.T) {
	tr := Transform{Rotation: math.Pi / 2, ScaleX: 1, ScaleY: 1}
	// cos(90)=0, sin(90)=1 → a=0, b=1, c=-1, d=0
	assertMatrix(t, "rot90", tr.Matrix(), Matrix{0, 1, -1, 0, 0, 0})
}

func TestMatrixScaleBeforeRotate(t *testing.T) {
	tr := Transform{Rotation: math.Pi / 2, ScaleX: 2, ScaleY: 1}
	// The X axis is stretched first, then rotated onto Y.
	x, y := tr.Matrix().Apply(1, 0)
	assertNear(t, "x", x, 0)
	assertNear(t, "y", y, 2)
}

// --- Matrix.Mul / Invert ---

func TestMulIdentity(t *testing.T) {
	m := Matrix{2, 1, 3, 4, 5, 6}
	assertMatrix(t, "id*m", IdentityMatrix().Mul(m), m)
	assertMatrix(t, "m*id", m.Mul(IdentityMatrix()), m)
}

func TestMulTranslations(t *testing.T) {
	a := Matrix{1, 0, 0, 1, 10, 20}
	b := Matrix{1, 0, 0, 1, 5, 3}
	assertMatrix(t, "translations", a.Mul(b), Matrix{1, 0, 0, 1, 15, 23})
}

func TestInvert(t *testing.T) {
	m := Matrix{2, 0, 0, 3, 10, 20}
	assertMatrix(t, "m*inv=id", m.Mul(m.Invert()), IdentityMatrix())
}

func TestInvertComplex(t *testing.T) {
	m := Transform{X: 7, Y: -3, Rotation: math.Pi / 3, ScaleX: 2, ScaleY: 1}.Matrix()
	assertMatrix(t, "m*inv=id", m.Mul(m.Invert()), IdentityMatrix())
}

func TestInvertSingularReturnsIdentity(t *testing.T) {
	m := Matrix{0, 0, 0, 0, 5, 5}
	assertMatrix(t, "singular", m.Invert(), IdentityMatrix())
}

// --- Compose / Decompose ---

func TestDecomposeRoundtrip(t *testing.T) {
	want := Transform{X: 12, Y: -4, Rotation: 0.7, ScaleX: 1.5, ScaleY: 0.5}
	assertTransform(t, "roundtrip", want.Matrix().Decompose(), want)
}

func TestDecomposeMirrored(t *testing.T) {
	got := Transform{ScaleX: 1, ScaleY: -2}.Matrix().Decompose()
	assertNear(t, "ScaleY", got.ScaleY, -2)
	assertNear(t, "ScaleX", got.ScaleX, 1)
}

func TestComposeTranslation(t *testing.T) {
	got := Translate(10, 0).Compose(Translate(0, -50))
	assertTransform(t, "composed", got, Translate(10, -50))
}

func TestComposeRotatedParent(t *testing.T) {
	parent := Transform{X: 100, Rotation: math.Pi / 2, ScaleX: 2, ScaleY: 2}
	got := parent.Compose(Translate(10, 0))
	// Child offset is scaled by 2 and rotated onto +Y.
	assertNear(t, "X", got.X, 100)
	assertNear(t, "Y", got.Y, 20)
	assertNear(t, "Rotation", got.Rotation, math.Pi/2)
	assertNear(t, "ScaleX", got.ScaleX, 2)
}

func TestComposeRotationsAdd(t *testing.T) {
	a := Transform{Rotation: 0.25, ScaleX: 1, ScaleY: 1}
	b := Transform{Rotation: 0.5, ScaleX: 1, ScaleY: 1}
	assertNear(t, "rotation", a.Compose(b).Rotation, 0.75)
}

// --- Parameter accessors ---

func TestGetWith(t *testing.T) {
	tr := Identity()
	tr = tr.With(ParamX, 3).With(ParamY, 4).With(ParamRotation, 0.5)
	tr = tr.With(ParamScale, 2)
	assertNear(t, "X", tr.Get(ParamX), 3)
	assertNear(t, "Y", tr.Get(ParamY), 4)
	assertNear(t, "Rotation", tr.Get(ParamRotation), 0.5)
	assertNear(t, "ScaleX", tr.Get(ParamScaleX), 2)
	assertNear(t, "ScaleY", tr.Get(ParamScaleY), 2)

	same := tr.With(ParamSprite, 99)
	if same != tr {
		t.Errorf("With(ParamSprite) changed the transform: %+v", same)
	}
}

// --- Benchmarks ---

func BenchmarkTransformMatrix(b *testing.B) {
	tr := Transform{X: 100, Y: 200, Rotation: 0.5, ScaleX: 2, ScaleY: 3}
	b.ReportAllocs()
	for b.Loop() {
		_ = tr.Matrix()
	}
}

func BenchmarkMatrixMul(b *testing.B) {
	a := Matrix{2, 0.1, 0.3, 3, 100, 200}
	c := Matrix{1.5, 0.2, 0.1, 2.5, 50, 30}
	b.ReportAllocs()
	for b.Loop() {
		_ = a.Mul(c)
	}
}
