package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// buildGLB assembles a GLB container from a JSON document and an optional
// binary chunk, with spec-mandated 4-byte chunk alignment.
func buildGLB(jsonDoc string, bin []byte) []byte {
	jsonChunk := []byte(jsonDoc)
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	binChunk := append([]byte(nil), bin...)
	for len(binChunk)%4 != 0 {
		binChunk = append(binChunk, 0)
	}

	var buf bytes.Buffer
	total := glbHeaderSize + glbChunkHeaderSize + len(jsonChunk)
	if len(binChunk) > 0 {
		total += glbChunkHeaderSize + len(binChunk)
	}

	binary.Write(&buf, binary.LittleEndian, uint32(glbMagic))
	binary.Write(&buf, binary.LittleEndian, uint32(glbVersion))
	binary.Write(&buf, binary.LittleEndian, uint32(total))

	binary.Write(&buf, binary.LittleEndian, uint32(len(jsonChunk)))
	binary.Write(&buf, binary.LittleEndian, uint32(glbChunkJSON))
	buf.Write(jsonChunk)

	if len(binChunk) > 0 {
		binary.Write(&buf, binary.LittleEndian, uint32(len(binChunk)))
		binary.Write(&buf, binary.LittleEndian, uint32(glbChunkBIN))
		buf.Write(binChunk)
	}

	return buf.Bytes()
}

const minimalDoc = `{"asset":{"version":"2.0"}}`

func TestParseGLB_InvalidMagic(t *testing.T) {
	data := buildGLB(minimalDoc, nil)
	data[0] = 'X'
	_, err := ParseGLB(data)
	if !errors.Is(err, ErrInvalidGLBMagic) {
		t.Errorf("expected ErrInvalidGLBMagic, got %v", err)
	}
}

func TestParseGLB_Truncated(t *testing.T) {
	_, err := ParseGLB([]byte("glTF"))
	if !errors.Is(err, ErrTruncatedGLBData) {
		t.Errorf("expected ErrTruncatedGLBData, got %v", err)
	}
}

func TestParseGLB_TruncatedChunk(t *testing.T) {
	data := buildGLB(minimalDoc, nil)
	// Shrink the payload but leave the declared total length intact
	_, err := ParseGLB(data[:len(data)-4])
	if !errors.Is(err, ErrTruncatedGLBData) {
		t.Errorf("expected ErrTruncatedGLBData, got %v", err)
	}
}

func TestParseGLB_UnsupportedVersion(t *testing.T) {
	data := buildGLB(minimalDoc, nil)
	binary.LittleEndian.PutUint32(data[4:8], 1)
	_, err := ParseGLB(data)
	if !errors.Is(err, ErrUnsupportedGLBVersion) {
		t.Errorf("expected ErrUnsupportedGLBVersion, got %v", err)
	}
}

func TestParseGLB_MissingJSONChunk(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(glbMagic))
	binary.Write(&buf, binary.LittleEndian, uint32(glbVersion))
	binary.Write(&buf, binary.LittleEndian, uint32(glbHeaderSize))
	_, err := ParseGLB(buf.Bytes())
	if !errors.Is(err, ErrMissingJSONChunk) {
		t.Errorf("expected ErrMissingJSONChunk, got %v", err)
	}
}

func TestParseGLB_UnsupportedGLTFVersion(t *testing.T) {
	data := buildGLB(`{"asset":{"version":"1.0"}}`, nil)
	_, err := ParseGLB(data)
	if !errors.Is(err, ErrUnsupportedGLTFVersion) {
		t.Errorf("expected ErrUnsupportedGLTFVersion, got %v", err)
	}
}

func TestParseGLB_Minimal(t *testing.T) {
	doc, err := ParseGLB(buildGLB(minimalDoc, nil))
	if err != nil {
		t.Fatalf("failed to parse minimal GLB: %v", err)
	}
	if doc.Asset.Version != "2.0" {
		t.Errorf("expected version 2.0, got %q", doc.Asset.Version)
	}
}

func TestParseGLB_BinChunkBacksBuffer(t *testing.T) {
	bin := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	doc, err := ParseGLB(buildGLB(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":8}]}`, bin))
	if err != nil {
		t.Fatalf("failed to parse GLB: %v", err)
	}
	if len(doc.Buffers) != 1 {
		t.Fatalf("expected 1 buffer, got %d", len(doc.Buffers))
	}
	if !bytes.Equal(doc.Buffers[0].Data[:8], bin) {
		t.Errorf("buffer data mismatch: %v", doc.Buffers[0].Data)
	}
}

func TestParseGLB_BufferWithoutBackingChunk(t *testing.T) {
	_, err := ParseGLB(buildGLB(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":8}]}`, nil))
	if err == nil {
		t.Error("expected error for URI-less buffer without BIN chunk")
	}
}

func TestParseGLB_BufferTooShort(t *testing.T) {
	_, err := ParseGLB(buildGLB(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":64}]}`, []byte{1, 2, 3, 4}))
	if !errors.Is(err, ErrBufferSizeMismatch) {
		t.Errorf("expected ErrBufferSizeMismatch, got %v", err)
	}
}

func TestParseGLTF_DataURIBuffer(t *testing.T) {
	// 4 bytes: 0x01 0x02 0x03 0x04 base64-encoded
	doc, err := ParseGLTF([]byte(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":4,"uri":"data:application/octet-stream;base64,AQIDBA=="}]}`))
	if err != nil {
		t.Fatalf("failed to parse glTF with data URI: %v", err)
	}
	want := []byte{1, 2, 3, 4}
	if !bytes.Equal(doc.Buffers[0].Data, want) {
		t.Errorf("buffer data = %v, want %v", doc.Buffers[0].Data, want)
	}
}

func TestParseGLTF_ExternalBufferRejected(t *testing.T) {
	_, err := ParseGLTF([]byte(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":4,"uri":"mesh.bin"}]}`))
	if !errors.Is(err, ErrInvalidBufferURI) {
		t.Errorf("expected ErrInvalidBufferURI, got %v", err)
	}
}

func TestIsGLB(t *testing.T) {
	if !IsGLB(buildGLB(minimalDoc, nil)) {
		t.Error("IsGLB should recognize GLB data")
	}
	if IsGLB([]byte(`{"asset":{"version":"2.0"}}`)) {
		t.Error("IsGLB should reject JSON data")
	}
}
