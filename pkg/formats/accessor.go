package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Accessor errors
var (
	ErrSparseAccessor  = errors.New("sparse accessors not supported")
	ErrAccessorRange   = errors.New("accessor index out of range")
	ErrAccessorType    = errors.New("unexpected accessor type")
	ErrAccessorOverrun = errors.New("accessor data past end of buffer")
)

// componentSize returns the byte size of a component type, 0 if unknown.
func componentSize(componentType int) int {
	switch componentType {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	default:
		return 0
	}
}

// componentCount returns the number of components per element, 0 if unknown.
func componentCount(accessorType string) int {
	switch accessorType {
	case TypeScalar:
		return 1
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4:
		return 4
	case TypeMat4:
		return 16
	default:
		return 0
	}
}

// accessorBytes returns the accessor's raw element data with any interleaving
// stride removed, so elements are tightly packed.
func (d *Document) accessorBytes(index int) ([]byte, *Accessor, error) {
	if index < 0 || index >= len(d.Accessors) {
		return nil, nil, fmt.Errorf("%w: accessor %d", ErrAccessorRange, index)
	}
	acc := &d.Accessors[index]

	if len(acc.Sparse) > 0 {
		return nil, nil, ErrSparseAccessor
	}
	if acc.BufferView == nil {
		// Spec-legal (zero-filled accessor) but nothing in a GLB model uses it
		return nil, nil, fmt.Errorf("accessor %d has no bufferView", index)
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(d.BufferViews) {
		return nil, nil, fmt.Errorf("accessor %d: bufferView %d out of range", index, *acc.BufferView)
	}

	bv := &d.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(d.Buffers) {
		return nil, nil, fmt.Errorf("accessor %d: buffer %d out of range", index, bv.Buffer)
	}
	buf := d.Buffers[bv.Buffer].Data

	elemSize := componentSize(acc.ComponentType) * componentCount(acc.Type)
	if elemSize == 0 {
		return nil, nil, fmt.Errorf("%w: type=%s componentType=%d", ErrAccessorType, acc.Type, acc.ComponentType)
	}

	stride := elemSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	base := bv.ByteOffset + acc.ByteOffset
	if base < 0 {
		return nil, nil, fmt.Errorf("accessor %d: negative byte offset %d", index, base)
	}
	if acc.Count > 0 && base+(acc.Count-1)*stride+elemSize > len(buf) {
		return nil, nil, fmt.Errorf("accessor %d: %w", index, ErrAccessorOverrun)
	}

	if stride == elemSize {
		return buf[base : base+acc.Count*elemSize], acc, nil
	}

	packed := make([]byte, acc.Count*elemSize)
	for i := 0; i < acc.Count; i++ {
		copy(packed[i*elemSize:(i+1)*elemSize], buf[base+i*stride:base+i*stride+elemSize])
	}
	return packed, acc, nil
}

func f32(data []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
}

// ReadFloats reads a SCALAR FLOAT accessor (keyframe timestamps, weights).
func (d *Document) ReadFloats(index int) ([]float32, error) {
	data, acc, err := d.accessorBytes(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != TypeScalar || acc.ComponentType != ComponentFloat {
		return nil, fmt.Errorf("%w: want SCALAR FLOAT, got %s/%d", ErrAccessorType, acc.Type, acc.ComponentType)
	}

	out := make([]float32, acc.Count)
	for i := range out {
		out[i] = f32(data, i)
	}
	return out, nil
}

// ReadVec2 reads a VEC2 FLOAT accessor (texture coordinates).
func (d *Document) ReadVec2(index int) ([][2]float32, error) {
	data, acc, err := d.accessorBytes(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != TypeVec2 || acc.ComponentType != ComponentFloat {
		return nil, fmt.Errorf("%w: want VEC2 FLOAT, got %s/%d", ErrAccessorType, acc.Type, acc.ComponentType)
	}

	out := make([][2]float32, acc.Count)
	for i := range out {
		out[i] = [2]float32{f32(data, i*2), f32(data, i*2+1)}
	}
	return out, nil
}

// ReadVec3 reads a VEC3 FLOAT accessor (positions, normals, translations).
func (d *Document) ReadVec3(index int) ([][3]float32, error) {
	data, acc, err := d.accessorBytes(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != TypeVec3 || acc.ComponentType != ComponentFloat {
		return nil, fmt.Errorf("%w: want VEC3 FLOAT, got %s/%d", ErrAccessorType, acc.Type, acc.ComponentType)
	}

	out := make([][3]float32, acc.Count)
	for i := range out {
		out[i] = [3]float32{f32(data, i*3), f32(data, i*3+1), f32(data, i*3+2)}
	}
	return out, nil
}

// ReadVec4 reads a VEC4 FLOAT accessor (rotations, colors).
func (d *Document) ReadVec4(index int) ([][4]float32, error) {
	data, acc, err := d.accessorBytes(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != TypeVec4 || acc.ComponentType != ComponentFloat {
		return nil, fmt.Errorf("%w: want VEC4 FLOAT, got %s/%d", ErrAccessorType, acc.Type, acc.ComponentType)
	}

	out := make([][4]float32, acc.Count)
	for i := range out {
		out[i] = [4]float32{f32(data, i*4), f32(data, i*4+1), f32(data, i*4+2), f32(data, i*4+3)}
	}
	return out, nil
}

// ReadMat4 reads a MAT4 FLOAT accessor (inverse bind matrices).
func (d *Document) ReadMat4(index int) ([][16]float32, error) {
	data, acc, err := d.accessorBytes(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != TypeMat4 || acc.ComponentType != ComponentFloat {
		return nil, fmt.Errorf("%w: want MAT4 FLOAT, got %s/%d", ErrAccessorType, acc.Type, acc.ComponentType)
	}

	out := make([][16]float32, acc.Count)
	for i := range out {
		for j := 0; j < 16; j++ {
			out[i][j] = f32(data, i*16+j)
		}
	}
	return out, nil
}

// ReadIndices reads a SCALAR index accessor, widening u8/u16 to u32.
func (d *Document) ReadIndices(index int) ([]uint32, error) {
	data, acc, err := d.accessorBytes(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != TypeScalar {
		return nil, fmt.Errorf("%w: index accessor is %s, want SCALAR", ErrAccessorType, acc.Type)
	}

	out := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case ComponentUnsignedByte:
		for i := range out {
			out[i] = uint32(data[i])
		}
	case ComponentUnsignedShort:
		for i := range out {
			out[i] = uint32(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case ComponentUnsignedInt:
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	default:
		return nil, fmt.Errorf("%w: index componentType %d", ErrAccessorType, acc.ComponentType)
	}
	return out, nil
}

// ReadJoints reads a VEC4 joint-index accessor (u8 or u16 components).
func (d *Document) ReadJoints(index int) ([][4]uint16, error) {
	data, acc, err := d.accessorBytes(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != TypeVec4 {
		return nil, fmt.Errorf("%w: joints accessor is %s, want VEC4", ErrAccessorType, acc.Type)
	}

	out := make([][4]uint16, acc.Count)
	switch acc.ComponentType {
	case ComponentUnsignedByte:
		for i := range out {
			out[i] = [4]uint16{uint16(data[i*4]), uint16(data[i*4+1]), uint16(data[i*4+2]), uint16(data[i*4+3])}
		}
	case ComponentUnsignedShort:
		for i := range out {
			out[i] = [4]uint16{
				binary.LittleEndian.Uint16(data[i*8:]),
				binary.LittleEndian.Uint16(data[i*8+2:]),
				binary.LittleEndian.Uint16(data[i*8+4:]),
				binary.LittleEndian.Uint16(data[i*8+6:]),
			}
		}
	default:
		return nil, fmt.Errorf("%w: joints componentType %d", ErrAccessorType, acc.ComponentType)
	}
	return out, nil
}

// ReadWeights reads a VEC4 skin-weight accessor. Float weights are returned
// as-is; normalized u8/u16 weights are converted to floats.
func (d *Document) ReadWeights(index int) ([][4]float32, error) {
	data, acc, err := d.accessorBytes(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != TypeVec4 {
		return nil, fmt.Errorf("%w: weights accessor is %s, want VEC4", ErrAccessorType, acc.Type)
	}

	out := make([][4]float32, acc.Count)
	switch acc.ComponentType {
	case ComponentFloat:
		for i := range out {
			out[i] = [4]float32{f32(data, i*4), f32(data, i*4+1), f32(data, i*4+2), f32(data, i*4+3)}
		}
	case ComponentUnsignedByte:
		for i := range out {
			for j := 0; j < 4; j++ {
				out[i][j] = float32(data[i*4+j]) / 255.0
			}
		}
	case ComponentUnsignedShort:
		for i := range out {
			for j := 0; j < 4; j++ {
				out[i][j] = float32(binary.LittleEndian.Uint16(data[i*8+j*2:])) / 65535.0
			}
		}
	default:
		return nil, fmt.Errorf("%w: weights componentType %d", ErrAccessorType, acc.ComponentType)
	}
	return out, nil
}

// ImageData returns the raw bytes and MIME type of an image, resolving
// either its buffer view (GLB) or an embedded data URI.
func (d *Document) ImageData(index int) ([]byte, string, error) {
	if index < 0 || index >= len(d.Images) {
		return nil, "", fmt.Errorf("image index %d out of range", index)
	}
	img := &d.Images[index]

	if img.BufferView != nil {
		if *img.BufferView < 0 || *img.BufferView >= len(d.BufferViews) {
			return nil, "", fmt.Errorf("image %d: bufferView %d out of range", index, *img.BufferView)
		}
		bv := &d.BufferViews[*img.BufferView]
		if bv.Buffer < 0 || bv.Buffer >= len(d.Buffers) {
			return nil, "", fmt.Errorf("image %d: buffer %d out of range", index, bv.Buffer)
		}
		buf := d.Buffers[bv.Buffer].Data
		if bv.ByteOffset < 0 || bv.ByteOffset+bv.ByteLength > len(buf) {
			return nil, "", fmt.Errorf("image %d: %w", index, ErrAccessorOverrun)
		}
		return buf[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], img.MimeType, nil
	}

	if img.URI != "" {
		data, err := decodeDataURI(img.URI)
		if err != nil {
			return nil, "", fmt.Errorf("image %d: %w", index, err)
		}
		return data, img.MimeType, nil
	}

	return nil, "", fmt.Errorf("image %d has no data", index)
}
