// Package model holds the runtime representation of a loaded glTF model:
// skinned mesh data, the skeleton, and its animation clips.
package model

import (
	"github.com/kelthar/rigview/pkg/math"
)

// Transform is a local translation/rotation/scale triple.
type Transform struct {
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// IdentityTransform returns a no-op transform.
func IdentityTransform() Transform {
	return Transform{
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Matrix composes the transform into a matrix.
func (t Transform) Matrix() math.Mat4 {
	return math.Compose(t.Translation, t.Rotation, t.Scale)
}

// Bone is one joint of the skeleton. Bones are stored parent-first, so a
// single forward pass computes global transforms.
type Bone struct {
	Name        string
	ParentIndex int32 // -1 for roots
	InverseBind math.Mat4
	Rest        Transform
}

// Skeleton is the joint hierarchy of a skinned model.
type Skeleton struct {
	Bones []Bone
}

// Pose holds one local transform per bone, indexed like Skeleton.Bones.
type Pose []Transform

// RestPose returns a new pose initialized to the bind-time local transforms.
func (s *Skeleton) RestPose() Pose {
	pose := make(Pose, len(s.Bones))
	for i := range s.Bones {
		pose[i] = s.Bones[i].Rest
	}
	return pose
}

// CopyInto overwrites dst with the pose's transforms.
func (p Pose) CopyInto(dst Pose) {
	copy(dst, p)
}

// SkinningMatrices computes the per-bone skinning matrices for a pose:
// global transform times inverse bind. out must have len(s.Bones) entries.
func (s *Skeleton) SkinningMatrices(pose Pose, out []math.Mat4) {
	globals := make([]math.Mat4, len(s.Bones))
	for i := range s.Bones {
		local := pose[i].Matrix()
		if parent := s.Bones[i].ParentIndex; parent >= 0 {
			globals[i] = globals[parent].Mul(local)
		} else {
			globals[i] = local
		}
	}
	for i := range s.Bones {
		out[i] = globals[i].Mul(s.Bones[i].InverseBind)
	}
}

// VectorKey is a vector keyframe.
type VectorKey struct {
	Time  float32
	Value math.Vec3
}

// QuatKey is a rotation keyframe.
type QuatKey struct {
	Time  float32
	Value math.Quat
}

// Channel holds the keyframe tracks animating a single bone. Any of the
// three tracks may be empty.
type Channel struct {
	Bone         int32
	PositionKeys []VectorKey
	RotationKeys []QuatKey
	ScaleKeys    []VectorKey
}

// AnimationClip is an immutable named keyframe sequence. Timestamps are in
// seconds.
type AnimationClip struct {
	Name     string
	Duration float32
	Channels []Channel
}

// Vertex is the skinned vertex layout uploaded to the GPU.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	Joints   [4]uint16
	Weights  [4]float32
}

// Material holds the color data a primitive is drawn with. Texture, when
// non-nil, is still-encoded PNG/JPEG data from the asset.
type Material struct {
	Name        string
	BaseColor   [4]float32
	Texture     []byte
	TextureMime string
	DoubleSided bool
}

// Primitive is one drawable chunk of the model with a single material.
type Primitive struct {
	Vertices []Vertex
	Indices  []uint32
	Material Material
	Skinned  bool
}

// Bounds is the model's axis-aligned bounding box in bind pose.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Model is a loaded asset ready for upload: mesh primitives, the skeleton
// driving them, and the animation clips in document order.
type Model struct {
	Name       string
	Primitives []Primitive
	Skeleton   *Skeleton
	Clips      []*AnimationClip
	Bounds     Bounds
}

// ClipNames returns the clip names in document order.
func (m *Model) ClipNames() []string {
	names := make([]string, len(m.Clips))
	for i, c := range m.Clips {
		names[i] = c.Name
	}
	return names
}
