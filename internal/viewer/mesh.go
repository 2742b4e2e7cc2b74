package viewer

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	_ "image/jpeg" // texture decoder
	_ "image/png"  // texture decoder
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/kelthar/rigview/internal/engine/model"
	"github.com/kelthar/rigview/internal/logger"
	"github.com/kelthar/rigview/pkg/math"
)

// gpuVertex is the interleaved vertex layout uploaded to the GPU. Joints
// are widened to float so one attribute pointer covers them.
type gpuVertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	Joints   [4]float32
	Weights  [4]float32
}

// LoadModel uploads the model's primitives and textures and frames the
// camera on its bounds. Replaces any previously loaded model.
func (v *Viewer) LoadModel(m *model.Model) error {
	v.clearModel()

	if len(m.Primitives) == 0 {
		return errors.New("model has no primitives")
	}

	for i := range m.Primitives {
		prim := &m.Primitives[i]
		gp, err := v.uploadPrimitive(prim)
		if err != nil {
			return err
		}
		v.primitives = append(v.primitives, gp)
	}

	v.Camera.FitToBounds(
		math.Vec3{X: m.Bounds.Min[0], Y: m.Bounds.Min[1], Z: m.Bounds.Min[2]},
		math.Vec3{X: m.Bounds.Max[0], Y: m.Bounds.Max[1], Z: m.Bounds.Max[2]},
	)
	v.homeCenter = v.Camera.Center
	v.homeDistance = v.Camera.Distance

	logger.Sugar.Infof("uploaded model %q: %d primitives", m.Name, len(v.primitives))
	return nil
}

func (v *Viewer) uploadPrimitive(prim *model.Primitive) (gpuPrimitive, error) {
	vertices := make([]gpuVertex, len(prim.Vertices))
	for i := range prim.Vertices {
		src := &prim.Vertices[i]
		vertices[i] = gpuVertex{
			Position: src.Position,
			Normal:   src.Normal,
			TexCoord: src.TexCoord,
			Joints: [4]float32{
				float32(src.Joints[0]), float32(src.Joints[1]),
				float32(src.Joints[2]), float32(src.Joints[3]),
			},
			Weights: src.Weights,
		}
	}

	gp := gpuPrimitive{
		indexCount:  int32(len(prim.Indices)),
		baseColor:   prim.Material.BaseColor,
		doubleSided: prim.Material.DoubleSided,
	}

	gl.GenVertexArrays(1, &gp.vao)
	gl.BindVertexArray(gp.vao)

	gl.GenBuffers(1, &gp.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gp.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(unsafe.Sizeof(gpuVertex{})), unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &gp.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gp.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(prim.Indices)*4, unsafe.Pointer(&prim.Indices[0]), gl.STATIC_DRAW)

	stride := int32(unsafe.Sizeof(gpuVertex{}))
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 24)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(3, 4, gl.FLOAT, false, stride, 32)
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointerWithOffset(4, 4, gl.FLOAT, false, stride, 48)
	gl.EnableVertexAttribArray(4)

	gl.BindVertexArray(0)

	if prim.Material.Texture != nil {
		tex, err := decodeAndUploadTexture(prim.Material.Texture)
		if err != nil {
			logger.Sugar.Warnf("texture for material %q: %v", prim.Material.Name, err)
		} else {
			gp.texture = tex
		}
	}

	return gp, nil
}

func decodeAndUploadTexture(data []byte) (uint32, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(bounds.Dx()), int32(bounds.Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba.Pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	return texID, nil
}

func (v *Viewer) createFallbackTexture() {
	gl.GenTextures(1, &v.fallbackTexture)
	gl.BindTexture(gl.TEXTURE_2D, v.fallbackTexture)
	white := []uint8{255, 255, 255, 255}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&white[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
}
