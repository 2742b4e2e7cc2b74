package math

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{2, 4, 6}
	got := a.Lerp(b, 0.5)
	want := Vec3{1, 2, 3}
	if got != want {
		t.Errorf("Vec3.Lerp() = %v, want %v", got, want)
	}
}

func TestQuatSlerpEndpoints(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	r0 := q1.Slerp(q2, 0)
	if math.Abs(float64(r0.W-q1.W)) > 0.001 {
		t.Error("Slerp at t=0 should equal q1")
	}

	r1 := q1.Slerp(q2, 1)
	if math.Abs(float64(r1.W-q2.W)) > 0.001 {
		t.Error("Slerp at t=1 should equal q2")
	}
}

func TestQuatSlerpMidpoint(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	// Halfway along a 90 degree rotation is 45 degrees
	mid := q1.Slerp(q2, 0.5)
	expectedW := float32(math.Cos(math.Pi / 8))
	if math.Abs(float64(mid.W-expectedW)) > 0.01 {
		t.Errorf("Slerp at t=0.5: expected W ~%v, got %v", expectedW, mid.W)
	}
}

func TestQuatShorterArc(t *testing.T) {
	q1 := QuatFromAxisAngle(Vec3{Y: 1}, 0.1)
	// Same rotation, negated representation
	q2 := Quat{-q1.X, -q1.Y, -q1.Z, -q1.W}
	mid := q1.Slerp(q2, 0.5)
	// Interpolating between equivalent rotations must stay put
	if mid.Dot(q1) < 0.999 && mid.Dot(q2) < 0.999 {
		t.Errorf("Slerp did not take shorter arc: %v", mid)
	}
}

func TestQuatToMat4Identity(t *testing.T) {
	m := QuatIdentity().ToMat4()
	id := Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(float64(m[i]-id[i])) > 0.0001 {
			t.Fatalf("identity quat matrix element %d: got %v, want %v", i, m[i], id[i])
		}
	}
}

func TestQuatFromMat4RoundTrip(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{X: 0.6, Y: 0.8, Z: 0}, 1.3)
	got := QuatFromMat4(q.ToMat4())
	// Same rotation up to sign
	if math.Abs(float64(got.Dot(q))) < 0.9999 {
		t.Errorf("QuatFromMat4 round trip: got %v, want %v", got, q)
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())
	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestCompose(t *testing.T) {
	m := Compose(Vec3{1, 2, 3}, QuatIdentity(), Vec3{2, 2, 2})

	// Scale on the diagonal, translation in the last column
	if m[0] != 2 || m[5] != 2 || m[10] != 2 {
		t.Errorf("Compose scale diagonal: got (%f, %f, %f)", m[0], m[5], m[10])
	}
	if m[12] != 1 || m[13] != 2 || m[14] != 3 {
		t.Errorf("Compose translation: got (%f, %f, %f)", m[12], m[13], m[14])
	}
}

func TestComposeMatchesMul(t *testing.T) {
	trans := Vec3{1, 2, 3}
	rot := QuatFromAxisAngle(Vec3{Y: 1}, 0.7)
	scale := Vec3{2, 3, 4}

	composed := Compose(trans, rot, scale)
	multiplied := Translate(trans.X, trans.Y, trans.Z).Mul(rot.ToMat4()).Mul(Scale(scale.X, scale.Y, scale.Z))

	for i := 0; i < 16; i++ {
		if math.Abs(float64(composed[i]-multiplied[i])) > 0.0001 {
			t.Fatalf("Compose element %d: got %v, want %v", i, composed[i], multiplied[i])
		}
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformPoint(Vec3{1, 2, 3})
	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformDirection(Vec3{0, 0, 1})
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("TransformDirection: got %v, want %v", got, want)
	}
}

func TestInverse(t *testing.T) {
	m := Compose(Vec3{5, -3, 2}, QuatFromAxisAngle(Vec3{X: 1}, 0.4), Vec3{1, 1, 1})
	inv := m.Inverse()
	result := m.Mul(inv)

	id := Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(float64(result[i]-id[i])) > 0.0001 {
			t.Fatalf("M * M^-1 element %d: got %v, want %v", i, result[i], id[i])
		}
	}
}
