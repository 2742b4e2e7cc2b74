package model

import (
	gomath "math"
	"testing"

	"github.com/kelthar/rigview/pkg/math"
)

func almostEqual(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func twoBoneSkeleton() *Skeleton {
	root := IdentityTransform()
	child := IdentityTransform()
	child.Translation = math.Vec3{Y: 1}
	return &Skeleton{Bones: []Bone{
		{Name: "root", ParentIndex: -1, InverseBind: math.Identity(), Rest: root},
		{Name: "child", ParentIndex: 0, InverseBind: math.Identity(), Rest: child},
	}}
}

func TestSampleIntoInterpolatesBetweenKeys(t *testing.T) {
	clip := &AnimationClip{
		Name:     "Walk",
		Duration: 2,
		Channels: []Channel{{
			Bone: 0,
			PositionKeys: []VectorKey{
				{Time: 0, Value: math.Vec3{X: 0}},
				{Time: 2, Value: math.Vec3{X: 4}},
			},
		}},
	}

	skel := twoBoneSkeleton()
	pose := skel.RestPose()
	clip.SampleInto(1, pose)

	if !almostEqual(pose[0].Translation.X, 2) {
		t.Errorf("expected x=2 at midpoint, got %f", pose[0].Translation.X)
	}
}

func TestSampleIntoClampsOutsideTrack(t *testing.T) {
	clip := &AnimationClip{
		Duration: 1,
		Channels: []Channel{{
			Bone: 0,
			PositionKeys: []VectorKey{
				{Time: 0.25, Value: math.Vec3{X: 1}},
				{Time: 0.75, Value: math.Vec3{X: 3}},
			},
		}},
	}

	skel := twoBoneSkeleton()

	pose := skel.RestPose()
	clip.SampleInto(0, pose)
	if !almostEqual(pose[0].Translation.X, 1) {
		t.Errorf("before first key: expected x=1, got %f", pose[0].Translation.X)
	}

	clip.SampleInto(10, pose)
	if !almostEqual(pose[0].Translation.X, 3) {
		t.Errorf("after last key: expected x=3, got %f", pose[0].Translation.X)
	}
}

func TestSampleIntoLeavesUnanimatedBones(t *testing.T) {
	clip := &AnimationClip{
		Duration: 1,
		Channels: []Channel{{
			Bone:         0,
			RotationKeys: []QuatKey{{Time: 0, Value: math.QuatFromAxisAngle(math.Vec3{Z: 1}, gomath.Pi/2)}},
		}},
	}

	skel := twoBoneSkeleton()
	pose := skel.RestPose()
	clip.SampleInto(0.5, pose)

	if !almostEqual(pose[1].Translation.Y, 1) {
		t.Errorf("unanimated bone lost its rest translation: got %v", pose[1].Translation)
	}
}

func TestSampleIntoRotationSlerp(t *testing.T) {
	quarter := math.QuatFromAxisAngle(math.Vec3{Y: 1}, gomath.Pi/2)
	clip := &AnimationClip{
		Duration: 1,
		Channels: []Channel{{
			Bone: 0,
			RotationKeys: []QuatKey{
				{Time: 0, Value: math.QuatIdentity()},
				{Time: 1, Value: quarter},
			},
		}},
	}

	skel := twoBoneSkeleton()
	pose := skel.RestPose()
	clip.SampleInto(0.5, pose)

	want := math.QuatFromAxisAngle(math.Vec3{Y: 1}, gomath.Pi/4)
	got := pose[0].Rotation
	if !almostEqual(got.X, want.X) || !almostEqual(got.Y, want.Y) ||
		!almostEqual(got.Z, want.Z) || !almostEqual(got.W, want.W) {
		t.Errorf("expected halfway rotation %v, got %v", want, got)
	}
}

func TestSkinningMatricesChain(t *testing.T) {
	skel := twoBoneSkeleton()
	pose := skel.RestPose()
	pose[0].Translation = math.Vec3{X: 2}

	out := make([]math.Mat4, len(skel.Bones))
	skel.SkinningMatrices(pose, out)

	// Child inherits the root's translation on top of its own.
	p := out[1].TransformPoint(math.Vec3{})
	if !almostEqual(p.X, 2) || !almostEqual(p.Y, 1) {
		t.Errorf("expected child origin at (2,1,0), got %v", p)
	}
}

func TestSkinningMatricesInverseBindCancelsRest(t *testing.T) {
	skel := twoBoneSkeleton()
	// Inverse bind undoes the child's rest offset.
	skel.Bones[1].InverseBind = math.Translate(0, -1, 0)

	out := make([]math.Mat4, len(skel.Bones))
	skel.SkinningMatrices(skel.RestPose(), out)

	p := out[1].TransformPoint(math.Vec3{Y: 1})
	if !almostEqual(p.X, 0) || !almostEqual(p.Y, 1) || !almostEqual(p.Z, 0) {
		t.Errorf("rest pose should leave bound vertices in place, got %v", p)
	}
}
