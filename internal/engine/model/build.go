package model

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/kelthar/rigview/internal/logger"
	"github.com/kelthar/rigview/pkg/formats"
	"github.com/kelthar/rigview/pkg/math"
)

// Build errors
var (
	ErrNoMesh        = errors.New("document contains no mesh")
	ErrJointCycle    = errors.New("skin joint hierarchy contains a cycle")
	ErrMissingJoints = errors.New("skinned primitive missing JOINTS_0 or WEIGHTS_0")
)

// Build converts a parsed glTF document into a runtime Model: skeleton from
// the first skin, every animation clip, and all mesh primitives with node
// transforms baked into unskinned geometry.
func Build(doc *formats.Document) (*Model, error) {
	if len(doc.Meshes) == 0 {
		return nil, ErrNoMesh
	}

	parents := nodeParents(doc)
	worlds := nodeWorldTransforms(doc, parents)

	m := &Model{
		Bounds: Bounds{
			Min: [3]float32{gomath.MaxFloat32, gomath.MaxFloat32, gomath.MaxFloat32},
			Max: [3]float32{-gomath.MaxFloat32, -gomath.MaxFloat32, -gomath.MaxFloat32},
		},
	}

	var nodeToBone map[int]int32
	if len(doc.Skins) > 0 {
		skeleton, mapping, err := buildSkeleton(doc, parents)
		if err != nil {
			return nil, fmt.Errorf("building skeleton: %w", err)
		}
		m.Skeleton = skeleton
		nodeToBone = mapping
	}

	clips, err := buildClips(doc, nodeToBone)
	if err != nil {
		return nil, fmt.Errorf("building clips: %w", err)
	}
	m.Clips = clips

	for nodeIdx := range doc.Nodes {
		node := &doc.Nodes[nodeIdx]
		if node.Mesh == nil {
			continue
		}
		if *node.Mesh < 0 || *node.Mesh >= len(doc.Meshes) {
			return nil, fmt.Errorf("node %d: mesh %d out of range", nodeIdx, *node.Mesh)
		}
		mesh := &doc.Meshes[*node.Mesh]
		if m.Name == "" {
			m.Name = firstNonEmpty(mesh.Name, node.Name)
		}

		skinned := node.Skin != nil
		for primIdx := range mesh.Primitives {
			prim, err := buildPrimitive(doc, &mesh.Primitives[primIdx], skinned, worlds[nodeIdx])
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", *node.Mesh, primIdx, err)
			}
			growBounds(&m.Bounds, prim.Vertices)
			m.Primitives = append(m.Primitives, *prim)
		}
	}

	if len(m.Primitives) == 0 {
		return nil, ErrNoMesh
	}

	logger.Sugar.Debugf("built model %q: %d primitives, %d bones, %d clips",
		m.Name, len(m.Primitives), boneCount(m.Skeleton), len(m.Clips))

	return m, nil
}

func boneCount(s *Skeleton) int {
	if s == nil {
		return 0
	}
	return len(s.Bones)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// nodeTransform returns a node's local transform, decomposing the matrix
// form when TRS fields are absent.
func nodeTransform(node *formats.Node) Transform {
	t := IdentityTransform()

	if node.Matrix != nil {
		m := math.Mat4(*node.Matrix)
		t.Translation = math.Vec3{X: m[12], Y: m[13], Z: m[14]}
		sx := math.Vec3{X: m[0], Y: m[1], Z: m[2]}.Length()
		sy := math.Vec3{X: m[4], Y: m[5], Z: m[6]}.Length()
		sz := math.Vec3{X: m[8], Y: m[9], Z: m[10]}.Length()
		t.Scale = math.Vec3{X: sx, Y: sy, Z: sz}
		if sx > 0 && sy > 0 && sz > 0 {
			r := m
			r[0] /= sx
			r[1] /= sx
			r[2] /= sx
			r[4] /= sy
			r[5] /= sy
			r[6] /= sy
			r[8] /= sz
			r[9] /= sz
			r[10] /= sz
			t.Rotation = math.QuatFromMat4(r)
		}
		return t
	}

	if node.Translation != nil {
		t.Translation = math.Vec3{X: node.Translation[0], Y: node.Translation[1], Z: node.Translation[2]}
	}
	if node.Rotation != nil {
		t.Rotation = math.Quat{X: node.Rotation[0], Y: node.Rotation[1], Z: node.Rotation[2], W: node.Rotation[3]}
	}
	if node.Scale != nil {
		t.Scale = math.Vec3{X: node.Scale[0], Y: node.Scale[1], Z: node.Scale[2]}
	}
	return t
}

// nodeParents maps each node index to its parent, -1 for roots.
func nodeParents(doc *formats.Document) []int {
	parents := make([]int, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i := range doc.Nodes {
		for _, child := range doc.Nodes[i].Children {
			if child >= 0 && child < len(parents) {
				parents[child] = i
			}
		}
	}
	return parents
}

// nodeWorldTransforms computes each node's world matrix by walking up the
// parent chain.
func nodeWorldTransforms(doc *formats.Document, parents []int) []math.Mat4 {
	worlds := make([]math.Mat4, len(doc.Nodes))
	resolved := make([]bool, len(doc.Nodes))

	var resolve func(i int) math.Mat4
	resolve = func(i int) math.Mat4 {
		if resolved[i] {
			return worlds[i]
		}
		resolved[i] = true // set before recursing; a cycle degrades to identity
		local := nodeTransform(&doc.Nodes[i]).Matrix()
		if p := parents[i]; p >= 0 {
			worlds[i] = resolve(p).Mul(local)
		} else {
			worlds[i] = local
		}
		return worlds[i]
	}

	for i := range doc.Nodes {
		worlds[i] = math.Identity()
	}
	for i := range doc.Nodes {
		resolved[i] = false
	}
	for i := range doc.Nodes {
		resolve(i)
	}
	return worlds
}

// buildSkeleton orders the first skin's joints parent-first and returns the
// skeleton plus the glTF-node-index to bone-index mapping.
func buildSkeleton(doc *formats.Document, parents []int) (*Skeleton, map[int]int32, error) {
	skin := &doc.Skins[0]

	jointSet := make(map[int]bool, len(skin.Joints))
	for _, j := range skin.Joints {
		if j < 0 || j >= len(doc.Nodes) {
			return nil, nil, fmt.Errorf("joint node %d out of range", j)
		}
		jointSet[j] = true
	}

	// Parent within the joint set; joints whose parent is a plain node are
	// skeleton roots.
	jointParent := func(node int) int {
		p := parents[node]
		if p >= 0 && jointSet[p] {
			return p
		}
		return -1
	}

	// Breadth-first from the roots gives a parent-first ordering.
	order := make([]int, 0, len(skin.Joints))
	for _, j := range skin.Joints {
		if jointParent(j) == -1 {
			order = append(order, j)
		}
	}
	for cursor := 0; cursor < len(order); cursor++ {
		for _, child := range doc.Nodes[order[cursor]].Children {
			if jointSet[child] {
				order = append(order, child)
			}
		}
	}
	if len(order) != len(skin.Joints) {
		return nil, nil, ErrJointCycle
	}

	nodeToBone := make(map[int]int32, len(order))
	for boneIdx, nodeIdx := range order {
		nodeToBone[nodeIdx] = int32(boneIdx)
	}

	var inverseBinds [][16]float32
	if skin.InverseBindMatrices != nil {
		var err error
		inverseBinds, err = doc.ReadMat4(*skin.InverseBindMatrices)
		if err != nil {
			return nil, nil, fmt.Errorf("reading inverse bind matrices: %w", err)
		}
	}

	// Inverse binds are indexed by the skin's joint order, not ours
	ibByNode := make(map[int]math.Mat4, len(skin.Joints))
	for i, j := range skin.Joints {
		if i < len(inverseBinds) {
			ibByNode[j] = math.Mat4(inverseBinds[i])
		} else {
			ibByNode[j] = math.Identity()
		}
	}

	skeleton := &Skeleton{Bones: make([]Bone, len(order))}
	for boneIdx, nodeIdx := range order {
		node := &doc.Nodes[nodeIdx]
		parent := int32(-1)
		if p := jointParent(nodeIdx); p >= 0 {
			parent = nodeToBone[p]
		}
		skeleton.Bones[boneIdx] = Bone{
			Name:        node.Name,
			ParentIndex: parent,
			InverseBind: ibByNode[nodeIdx],
			Rest:        nodeTransform(node),
		}
	}

	return skeleton, nodeToBone, nil
}

// buildClips extracts every animation, grouping channels per bone. Channels
// that target non-skeleton nodes (or morph weights) are skipped.
func buildClips(doc *formats.Document, nodeToBone map[int]int32) ([]*AnimationClip, error) {
	clips := make([]*AnimationClip, 0, len(doc.Animations))

	for animIdx := range doc.Animations {
		anim := &doc.Animations[animIdx]

		byBone := make(map[int32]*Channel)
		var duration float32

		for chIdx := range anim.Channels {
			ch := &anim.Channels[chIdx]
			if ch.Target.Node == nil || ch.Target.Path == formats.PathWeights {
				continue
			}
			bone, ok := nodeToBone[*ch.Target.Node]
			if !ok {
				continue
			}
			if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
				return nil, fmt.Errorf("animation %d channel %d: sampler %d out of range", animIdx, chIdx, ch.Sampler)
			}
			sampler := &anim.Samplers[ch.Sampler]

			times, err := doc.ReadFloats(sampler.Input)
			if err != nil {
				return nil, fmt.Errorf("animation %d channel %d: reading timestamps: %w", animIdx, chIdx, err)
			}
			if len(times) == 0 {
				continue
			}
			if last := times[len(times)-1]; last > duration {
				duration = last
			}

			track, ok := byBone[bone]
			if !ok {
				track = &Channel{Bone: bone}
				byBone[bone] = track
			}

			switch ch.Target.Path {
			case formats.PathTranslation, formats.PathScale:
				values, err := doc.ReadVec3(sampler.Output)
				if err != nil {
					return nil, fmt.Errorf("animation %d channel %d: reading values: %w", animIdx, chIdx, err)
				}
				keys := make([]VectorKey, minInt(len(times), len(values)))
				for i := range keys {
					keys[i] = VectorKey{Time: times[i], Value: math.Vec3{X: values[i][0], Y: values[i][1], Z: values[i][2]}}
				}
				if ch.Target.Path == formats.PathTranslation {
					track.PositionKeys = keys
				} else {
					track.ScaleKeys = keys
				}

			case formats.PathRotation:
				values, err := doc.ReadVec4(sampler.Output)
				if err != nil {
					return nil, fmt.Errorf("animation %d channel %d: reading values: %w", animIdx, chIdx, err)
				}
				keys := make([]QuatKey, minInt(len(times), len(values)))
				for i := range keys {
					keys[i] = QuatKey{Time: times[i], Value: math.Quat{X: values[i][0], Y: values[i][1], Z: values[i][2], W: values[i][3]}}
				}
				track.RotationKeys = keys
			}
		}

		channels := make([]Channel, 0, len(byBone))
		for _, track := range byBone {
			channels = append(channels, *track)
		}

		name := anim.Name
		if name == "" {
			name = fmt.Sprintf("animation_%d", animIdx)
		}
		clips = append(clips, &AnimationClip{
			Name:     name,
			Duration: duration,
			Channels: channels,
		})
	}

	return clips, nil
}

// buildPrimitive reads one primitive's vertex attributes. Unskinned
// geometry gets the node's world transform baked into positions and
// normals, and zero joint weights so the shader skips skinning.
func buildPrimitive(doc *formats.Document, prim *formats.Primitive, skinned bool, world math.Mat4) (*Primitive, error) {
	posAcc, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, errors.New("primitive has no POSITION attribute")
	}
	positions, err := doc.ReadVec3(posAcc)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	var normals [][3]float32
	if normAcc, ok := prim.Attributes["NORMAL"]; ok {
		normals, err = doc.ReadVec3(normAcc)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
	}

	var uvs [][2]float32
	if uvAcc, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err = doc.ReadVec2(uvAcc)
		if err != nil {
			return nil, fmt.Errorf("reading texcoords: %w", err)
		}
	}

	var joints [][4]uint16
	var weights [][4]float32
	if skinned {
		jointsAcc, okJ := prim.Attributes["JOINTS_0"]
		weightsAcc, okW := prim.Attributes["WEIGHTS_0"]
		if !okJ || !okW {
			return nil, ErrMissingJoints
		}
		joints, err = doc.ReadJoints(jointsAcc)
		if err != nil {
			return nil, fmt.Errorf("reading joints: %w", err)
		}
		weights, err = doc.ReadWeights(weightsAcc)
		if err != nil {
			return nil, fmt.Errorf("reading weights: %w", err)
		}
	}

	vertices := make([]Vertex, len(positions))
	for i := range vertices {
		v := &vertices[i]
		v.Position = positions[i]
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			v.TexCoord = uvs[i]
		}
		if skinned {
			if i < len(joints) {
				v.Joints = joints[i]
			}
			if i < len(weights) {
				v.Weights = weights[i]
			}
		} else {
			p := world.TransformPoint(math.Vec3{X: v.Position[0], Y: v.Position[1], Z: v.Position[2]})
			v.Position = [3]float32{p.X, p.Y, p.Z}
			n := world.TransformDirection(math.Vec3{X: v.Normal[0], Y: v.Normal[1], Z: v.Normal[2]}).Normalize()
			v.Normal = [3]float32{n.X, n.Y, n.Z}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = doc.ReadIndices(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	return &Primitive{
		Vertices: vertices,
		Indices:  indices,
		Material: buildMaterial(doc, prim.Material),
		Skinned:  skinned,
	}, nil
}

// buildMaterial resolves a primitive's material to a base color and
// optional still-encoded texture. Missing materials draw plain white.
func buildMaterial(doc *formats.Document, matIdx *int) Material {
	mat := Material{BaseColor: [4]float32{1, 1, 1, 1}}
	if matIdx == nil || *matIdx < 0 || *matIdx >= len(doc.Materials) {
		return mat
	}

	src := &doc.Materials[*matIdx]
	mat.Name = src.Name
	mat.DoubleSided = src.DoubleSided

	pbr := src.PBRMetallicRoughness
	if pbr == nil {
		return mat
	}
	if pbr.BaseColorFactor != nil {
		mat.BaseColor = *pbr.BaseColorFactor
	}
	if pbr.BaseColorTexture != nil {
		texIdx := pbr.BaseColorTexture.Index
		if texIdx >= 0 && texIdx < len(doc.Textures) && doc.Textures[texIdx].Source != nil {
			data, mime, err := doc.ImageData(*doc.Textures[texIdx].Source)
			if err != nil {
				logger.Sugar.Warnf("material %q: unreadable texture: %v", src.Name, err)
			} else {
				mat.Texture = data
				mat.TextureMime = mime
			}
		}
	}
	return mat
}

func growBounds(b *Bounds, vertices []Vertex) {
	for i := range vertices {
		for axis := 0; axis < 3; axis++ {
			if vertices[i].Position[axis] < b.Min[axis] {
				b.Min[axis] = vertices[i].Position[axis]
			}
			if vertices[i].Position[axis] > b.Max[axis] {
				b.Max[axis] = vertices[i].Position[axis]
			}
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
