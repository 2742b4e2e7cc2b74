// Package viewer renders the loaded model into an offscreen framebuffer
// that the UI displays as an image widget.
package viewer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/kelthar/rigview/internal/engine/camera"
	"github.com/kelthar/rigview/internal/engine/shader"
	"github.com/kelthar/rigview/pkg/math"
)

// Scene colors, matching a light studio backdrop.
var (
	backgroundColor = [3]float32{0.878, 0.878, 0.878}
	skyColor        = [3]float32{0.65, 0.65, 0.68}
	groundColor     = [3]float32{0.35, 0.33, 0.30}
	diffuseColor    = [3]float32{0.85, 0.85, 0.85}
	planeColor      = [4]float32{0.6, 0.6, 0.6, 1.0}
	gridColor       = [4]float32{0.0, 0.0, 0.0, 0.2}
)

// Viewer renders a skinned model to an offscreen framebuffer.
type Viewer struct {
	Camera *camera.OrbitCamera

	// Fog fades distant geometry into the background.
	FogEnabled bool
	fogNear    float32
	fogFar     float32

	width  int32
	height int32

	fbo          uint32
	colorTexture uint32
	depthRBO     uint32

	// Skinned mesh program
	meshProgram   uint32
	locModel      int32
	locView       int32
	locProjection int32
	locBones      int32
	locBaseColor  int32
	locTexture    int32
	locUseTexture int32
	locLightDir   int32
	locSky        int32
	locGround     int32
	locDiffuse    int32
	locFogColor   int32
	locFogNear    int32
	locFogFar     int32

	// Ground plane / grid program
	flatProgram    uint32
	locFlatView    int32
	locFlatProj    int32
	locFlatColor   int32
	locFlatFogCol  int32
	locFlatFogNear int32
	locFlatFogFar  int32

	primitives      []gpuPrimitive
	fallbackTexture uint32

	planeVAO, planeVBO uint32
	gridVAO, gridVBO   uint32
	gridVertexCount    int32

	// Framing captured when a model is loaded, restored by ResetView.
	homeCenter   math.Vec3
	homeDistance float32

	// Skinning matrices uploaded each frame; identity-padded.
	bones [maxBones]math.Mat4
}

// gpuPrimitive is one uploaded drawable chunk.
type gpuPrimitive struct {
	vao, vbo, ebo uint32
	indexCount    int32
	texture       uint32
	baseColor     [4]float32
	doubleSided   bool
}

// New creates a viewer with its framebuffer and shader programs. Must be
// called with a current GL context.
func New(width, height int32) (*Viewer, error) {
	v := &Viewer{
		Camera:     camera.NewOrbitCamera(),
		FogEnabled: true,
		fogNear:    20,
		fogFar:     100,
		width:      width,
		height:     height,
	}
	for i := range v.bones {
		v.bones[i] = math.Identity()
	}

	if err := v.createFramebuffer(); err != nil {
		return nil, fmt.Errorf("framebuffer: %w", err)
	}
	if err := v.createPrograms(); err != nil {
		v.Destroy()
		return nil, fmt.Errorf("shaders: %w", err)
	}
	v.createFallbackTexture()
	v.createGroundPlane()
	v.createGrid()

	return v, nil
}

// Size returns the framebuffer dimensions.
func (v *Viewer) Size() (int32, int32) { return v.width, v.height }

// ResetView restores the framing captured when the model was loaded.
func (v *Viewer) ResetView() {
	def := camera.NewOrbitCamera()
	v.Camera.RotationX = def.RotationX
	v.Camera.RotationY = def.RotationY
	if v.homeDistance > 0 {
		v.Camera.Center = v.homeCenter
		v.Camera.Distance = v.homeDistance
	}
}

func (v *Viewer) createFramebuffer() error {
	gl.GenFramebuffers(1, &v.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, v.fbo)

	gl.GenTextures(1, &v.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, v.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, v.width, v.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, v.colorTexture, 0)

	gl.GenRenderbuffers(1, &v.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, v.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, v.width, v.height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, v.depthRBO)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func (v *Viewer) createPrograms() error {
	program, err := shader.CompileProgram(skinnedVertexShader, skinnedFragmentShader)
	if err != nil {
		return fmt.Errorf("mesh program: %w", err)
	}
	v.meshProgram = program
	v.locModel = shader.GetUniform(program, "uModel")
	v.locView = shader.GetUniform(program, "uView")
	v.locProjection = shader.GetUniform(program, "uProjection")
	v.locBones = shader.GetUniform(program, "uBones")
	v.locBaseColor = shader.GetUniform(program, "uBaseColor")
	v.locTexture = shader.GetUniform(program, "uTexture")
	v.locUseTexture = shader.GetUniform(program, "uUseTexture")
	v.locLightDir = shader.GetUniform(program, "uLightDir")
	v.locSky = shader.GetUniform(program, "uSkyColor")
	v.locGround = shader.GetUniform(program, "uGroundColor")
	v.locDiffuse = shader.GetUniform(program, "uDiffuse")
	v.locFogColor = shader.GetUniform(program, "uFogColor")
	v.locFogNear = shader.GetUniform(program, "uFogNear")
	v.locFogFar = shader.GetUniform(program, "uFogFar")

	flat, err := shader.CompileProgram(flatVertexShader, flatFragmentShader)
	if err != nil {
		return fmt.Errorf("flat program: %w", err)
	}
	v.flatProgram = flat
	v.locFlatView = shader.GetUniform(flat, "uView")
	v.locFlatProj = shader.GetUniform(flat, "uProjection")
	v.locFlatColor = shader.GetUniform(flat, "uColor")
	v.locFlatFogCol = shader.GetUniform(flat, "uFogColor")
	v.locFlatFogNear = shader.GetUniform(flat, "uFogNear")
	v.locFlatFogFar = shader.GetUniform(flat, "uFogFar")

	return nil
}

// SetPose uploads the skinning matrices for the next render. Bones past
// len(matrices) keep identity.
func (v *Viewer) SetPose(matrices []math.Mat4) {
	n := len(matrices)
	if n > maxBones {
		n = maxBones
	}
	copy(v.bones[:n], matrices[:n])
}

// HandleMouseDrag rotates the orbit camera.
func (v *Viewer) HandleMouseDrag(deltaX, deltaY float32) {
	v.Camera.HandleDrag(deltaX, deltaY)
}

// HandleMouseWheel zooms the orbit camera.
func (v *Viewer) HandleMouseWheel(delta float32) {
	v.Camera.HandleZoom(delta)
}

// Render draws the scene to the framebuffer and returns the color
// texture ID for the UI to display.
func (v *Viewer) Render() uint32 {
	// Save GL state shared with the UI backend.
	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	var prevViewport [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, v.fbo)
	gl.Viewport(0, 0, v.width, v.height)

	gl.ClearColor(backgroundColor[0], backgroundColor[1], backgroundColor[2], 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	aspect := float32(v.width) / float32(v.height)
	projection := math.Perspective(0.785398, aspect, 0.1, 200.0)
	view := v.Camera.ViewMatrix()

	fogNear, fogFar := v.fogNear, v.fogFar
	if !v.FogEnabled {
		// Push the fog out past the far plane.
		fogNear, fogFar = 1e6, 2e6
	}

	v.drawGround(&view, &projection, fogNear, fogFar)
	v.drawModel(&view, &projection, fogNear, fogFar)

	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
	gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])

	return v.colorTexture
}

func (v *Viewer) drawModel(view, projection *math.Mat4, fogNear, fogFar float32) {
	if len(v.primitives) == 0 {
		return
	}

	gl.UseProgram(v.meshProgram)

	modelMat := math.Identity()
	gl.UniformMatrix4fv(v.locModel, 1, false, modelMat.Ptr())
	gl.UniformMatrix4fv(v.locView, 1, false, view.Ptr())
	gl.UniformMatrix4fv(v.locProjection, 1, false, projection.Ptr())
	gl.UniformMatrix4fv(v.locBones, maxBones, false, v.bones[0].Ptr())

	gl.Uniform3f(v.locLightDir, 0.4, 1.0, 0.6)
	gl.Uniform3f(v.locSky, skyColor[0], skyColor[1], skyColor[2])
	gl.Uniform3f(v.locGround, groundColor[0], groundColor[1], groundColor[2])
	gl.Uniform3f(v.locDiffuse, diffuseColor[0], diffuseColor[1], diffuseColor[2])
	gl.Uniform3f(v.locFogColor, backgroundColor[0], backgroundColor[1], backgroundColor[2])
	gl.Uniform1f(v.locFogNear, fogNear)
	gl.Uniform1f(v.locFogFar, fogFar)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(v.locTexture, 0)

	for i := range v.primitives {
		prim := &v.primitives[i]

		if prim.doubleSided {
			gl.Disable(gl.CULL_FACE)
		} else {
			gl.Enable(gl.CULL_FACE)
			gl.CullFace(gl.BACK)
		}

		gl.Uniform4f(v.locBaseColor, prim.baseColor[0], prim.baseColor[1], prim.baseColor[2], prim.baseColor[3])
		if prim.texture != 0 {
			gl.Uniform1i(v.locUseTexture, 1)
			gl.BindTexture(gl.TEXTURE_2D, prim.texture)
		} else {
			gl.Uniform1i(v.locUseTexture, 0)
			gl.BindTexture(gl.TEXTURE_2D, v.fallbackTexture)
		}

		gl.BindVertexArray(prim.vao)
		gl.DrawElements(gl.TRIANGLES, prim.indexCount, gl.UNSIGNED_INT, nil)
	}

	gl.BindVertexArray(0)
	gl.Disable(gl.CULL_FACE)
}

// Destroy releases all OpenGL resources.
func (v *Viewer) Destroy() {
	v.clearModel()

	if v.fallbackTexture != 0 {
		gl.DeleteTextures(1, &v.fallbackTexture)
	}
	if v.meshProgram != 0 {
		gl.DeleteProgram(v.meshProgram)
	}
	if v.flatProgram != 0 {
		gl.DeleteProgram(v.flatProgram)
	}
	if v.planeVAO != 0 {
		gl.DeleteVertexArrays(1, &v.planeVAO)
		gl.DeleteBuffers(1, &v.planeVBO)
	}
	if v.gridVAO != 0 {
		gl.DeleteVertexArrays(1, &v.gridVAO)
		gl.DeleteBuffers(1, &v.gridVBO)
	}
	if v.fbo != 0 {
		gl.DeleteFramebuffers(1, &v.fbo)
	}
	if v.colorTexture != 0 {
		gl.DeleteTextures(1, &v.colorTexture)
	}
	if v.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &v.depthRBO)
	}
}

func (v *Viewer) clearModel() {
	for i := range v.primitives {
		prim := &v.primitives[i]
		if prim.vao != 0 {
			gl.DeleteVertexArrays(1, &prim.vao)
			gl.DeleteBuffers(1, &prim.vbo)
			gl.DeleteBuffers(1, &prim.ebo)
		}
		if prim.texture != 0 && prim.texture != v.fallbackTexture {
			gl.DeleteTextures(1, &prim.texture)
		}
	}
	v.primitives = nil
}
