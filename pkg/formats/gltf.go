package formats

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// glTF document errors
var (
	ErrUnsupportedGLTFVersion = errors.New("unsupported glTF version: expected 2.x")
	ErrBufferSizeMismatch     = errors.New("buffer shorter than declared byteLength")
	ErrInvalidBufferURI       = errors.New("invalid buffer URI")
)

// Accessor component types (glTF 2.0 §3.6.2.2).
const (
	ComponentByte          = 5120
	ComponentUnsignedByte  = 5121
	ComponentShort         = 5122
	ComponentUnsignedShort = 5123
	ComponentUnsignedInt   = 5125
	ComponentFloat         = 5126
)

// Accessor element types.
const (
	TypeScalar = "SCALAR"
	TypeVec2   = "VEC2"
	TypeVec3   = "VEC3"
	TypeVec4   = "VEC4"
	TypeMat4   = "MAT4"
)

// Animation channel target paths.
const (
	PathTranslation = "translation"
	PathRotation    = "rotation"
	PathScale       = "scale"
	PathWeights     = "weights"
)

// Document is a parsed glTF 2.0 document with all buffers resolved.
type Document struct {
	Asset       Asset        `json:"asset"`
	Scene       *int         `json:"scene,omitempty"`
	Scenes      []Scene      `json:"scenes"`
	Nodes       []Node       `json:"nodes"`
	Meshes      []Mesh       `json:"meshes"`
	Skins       []Skin       `json:"skins"`
	Animations  []Animation  `json:"animations"`
	Materials   []Material   `json:"materials"`
	Textures    []Texture    `json:"textures"`
	Images      []Image      `json:"images"`
	Accessors   []Accessor   `json:"accessors"`
	BufferViews []BufferView `json:"bufferViews"`
	Buffers     []Buffer     `json:"buffers"`
}

// Asset holds the document version metadata.
type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

// Scene is a list of root node indices.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes"`
}

// Node is one element of the scene hierarchy. Either Matrix or the TRS
// fields are set, never both.
type Node struct {
	Name        string       `json:"name,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Skin        *int         `json:"skin,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"` // x, y, z, w
	Scale       *[3]float32  `json:"scale,omitempty"`
}

// Mesh is a set of primitives sharing a node transform.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is one drawable unit: vertex attributes, optional indices and
// material.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"`
}

// Skin binds mesh vertices to skeleton joints.
type Skin struct {
	Name                string `json:"name,omitempty"`
	InverseBindMatrices *int   `json:"inverseBindMatrices,omitempty"`
	Skeleton            *int   `json:"skeleton,omitempty"`
	Joints              []int  `json:"joints"`
}

// Animation is a named set of keyframe channels.
type Animation struct {
	Name     string             `json:"name,omitempty"`
	Channels []AnimationChannel `json:"channels"`
	Samplers []AnimationSampler `json:"samplers"`
}

// AnimationChannel routes a sampler's output to one node property.
type AnimationChannel struct {
	Sampler int                    `json:"sampler"`
	Target  AnimationChannelTarget `json:"target"`
}

// AnimationChannelTarget names the animated node and path.
type AnimationChannelTarget struct {
	Node *int   `json:"node,omitempty"`
	Path string `json:"path"`
}

// AnimationSampler pairs keyframe timestamps with output values.
type AnimationSampler struct {
	Input         int    `json:"input"`
	Output        int    `json:"output"`
	Interpolation string `json:"interpolation,omitempty"`
}

// Material holds the subset of PBR material data the viewer uses.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
	AlphaMode            string                `json:"alphaMode,omitempty"`
}

// PBRMetallicRoughness holds base color information.
type PBRMetallicRoughness struct {
	BaseColorFactor  *[4]float32  `json:"baseColorFactor,omitempty"`
	BaseColorTexture *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor   *float32     `json:"metallicFactor,omitempty"`
	RoughnessFactor  *float32     `json:"roughnessFactor,omitempty"`
}

// TextureInfo references a texture by index.
type TextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

// Texture references an image source.
type Texture struct {
	Source  *int `json:"source,omitempty"`
	Sampler *int `json:"sampler,omitempty"`
}

// Image is embedded image data (buffer view) or a data URI.
type Image struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

// Accessor describes a typed view into buffer data.
type Accessor struct {
	BufferView    *int            `json:"bufferView,omitempty"`
	ByteOffset    int             `json:"byteOffset,omitempty"`
	ComponentType int             `json:"componentType"`
	Normalized    bool            `json:"normalized,omitempty"`
	Count         int             `json:"count"`
	Type          string          `json:"type"`
	Min           []float32       `json:"min,omitempty"`
	Max           []float32       `json:"max,omitempty"`
	Sparse        json.RawMessage `json:"sparse,omitempty"`
}

// BufferView is a byte range within a buffer.
type BufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride,omitempty"`
	Target     *int `json:"target,omitempty"`
}

// Buffer is raw binary data. Data is populated during parsing.
type Buffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri,omitempty"`

	Data []byte `json:"-"`
}

// ParseGLTF parses a plain glTF JSON document. Buffers must be embedded as
// base64 data URIs; external buffer files are not resolved.
func ParseGLTF(data []byte) (*Document, error) {
	return parseDocument(data, nil)
}

// parseDocument unmarshals the JSON chunk and resolves buffer data.
// binChunk, when non-nil, backs the first URI-less buffer (the GLB case).
func parseDocument(jsonChunk, binChunk []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(jsonChunk, &doc); err != nil {
		return nil, fmt.Errorf("parsing glTF JSON: %w", err)
	}

	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, ErrUnsupportedGLTFVersion
	}

	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		if buf.URI == "" {
			if i == 0 && binChunk != nil {
				buf.Data = binChunk
				if len(buf.Data) < buf.ByteLength {
					return nil, fmt.Errorf("buffer %d: %w", i, ErrBufferSizeMismatch)
				}
				continue
			}
			return nil, fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		}

		data, err := decodeDataURI(buf.URI)
		if err != nil {
			return nil, fmt.Errorf("buffer %d: %w", i, err)
		}
		buf.Data = data
		if len(buf.Data) < buf.ByteLength {
			return nil, fmt.Errorf("buffer %d: %w", i, ErrBufferSizeMismatch)
		}
	}

	return &doc, nil
}

// decodeDataURI decodes a base64 data URI of the form
// data:[<mediatype>][;base64],<data>. File-path URIs are rejected: the
// viewer loads self-contained assets only.
func decodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("%w: external buffer %q not supported", ErrInvalidBufferURI, uri)
	}

	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, ErrInvalidBufferURI
	}
	if !strings.Contains(uri[5:commaIdx], "base64") {
		return nil, fmt.Errorf("%w: unsupported encoding", ErrInvalidBufferURI)
	}

	data, err := base64.StdEncoding.DecodeString(uri[commaIdx+1:])
	if err != nil {
		return nil, fmt.Errorf("decoding base64 buffer: %w", err)
	}
	return data, nil
}
