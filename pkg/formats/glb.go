package formats

import (
	"encoding/binary"
	"errors"
)

// GLB parsing errors
var (
	ErrInvalidGLBMagic       = errors.New("invalid GLB magic: expected 'glTF'")
	ErrUnsupportedGLBVersion = errors.New("unsupported GLB version: expected 2")
	ErrTruncatedGLBData      = errors.New("truncated GLB data")
	ErrMissingJSONChunk      = errors.New("GLB file has no JSON chunk")
)

// GLB container constants.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
const (
	glbMagic     = 0x46546C67 // "glTF"
	glbVersion   = 2
	glbChunkJSON = 0x4E4F534A // "JSON"
	glbChunkBIN  = 0x004E4942 // "BIN\0"

	glbHeaderSize      = 12
	glbChunkHeaderSize = 8
)

// IsGLB reports whether data starts with the GLB magic number.
func IsGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == glbMagic
}

// ParseGLB parses a binary glTF (GLB) container and returns the resolved
// document. The embedded BIN chunk backs any buffer without a URI.
func ParseGLB(data []byte) (*Document, error) {
	jsonChunk, binChunk, err := splitGLBChunks(data)
	if err != nil {
		return nil, err
	}
	return parseDocument(jsonChunk, binChunk)
}

// splitGLBChunks validates the container header and returns the JSON and BIN
// chunk payloads. The BIN chunk is optional.
func splitGLBChunks(data []byte) (jsonChunk, binChunk []byte, err error) {
	if len(data) < glbHeaderSize {
		return nil, nil, ErrTruncatedGLBData
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	version := binary.LittleEndian.Uint32(data[4:8])
	totalLength := binary.LittleEndian.Uint32(data[8:12])

	if magic != glbMagic {
		return nil, nil, ErrInvalidGLBMagic
	}
	if version != glbVersion {
		return nil, nil, ErrUnsupportedGLBVersion
	}
	if int(totalLength) > len(data) {
		return nil, nil, ErrTruncatedGLBData
	}

	offset := glbHeaderSize
	for offset+glbChunkHeaderSize <= int(totalLength) {
		chunkLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += glbChunkHeaderSize

		if offset+chunkLen > len(data) {
			return nil, nil, ErrTruncatedGLBData
		}

		switch chunkType {
		case glbChunkJSON:
			jsonChunk = data[offset : offset+chunkLen]
		case glbChunkBIN:
			binChunk = data[offset : offset+chunkLen]
		}
		// Unknown chunk types are skipped per the GLB spec

		offset += chunkLen
	}

	if jsonChunk == nil {
		return nil, nil, ErrMissingJSONChunk
	}
	return jsonChunk, binChunk, nil
}
