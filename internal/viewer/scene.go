package viewer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/kelthar/rigview/pkg/math"
)

const (
	planeExtent  = float32(100)
	gridExtent   = float32(10)
	gridDivision = float32(1)
)

func (v *Viewer) createGroundPlane() {
	e := planeExtent
	vertices := []float32{
		-e, 0, -e,
		-e, 0, e,
		e, 0, e,
		-e, 0, -e,
		e, 0, e,
		e, 0, -e,
	}

	gl.GenVertexArrays(1, &v.planeVAO)
	gl.BindVertexArray(v.planeVAO)
	gl.GenBuffers(1, &v.planeVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, v.planeVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 12, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
}

func (v *Viewer) createGrid() {
	var vertices []float32
	// Slight lift keeps the lines from z-fighting the plane.
	const y = 0.002
	for x := -gridExtent; x <= gridExtent; x += gridDivision {
		vertices = append(vertices, x, y, -gridExtent, x, y, gridExtent)
	}
	for z := -gridExtent; z <= gridExtent; z += gridDivision {
		vertices = append(vertices, -gridExtent, y, z, gridExtent, y, z)
	}
	v.gridVertexCount = int32(len(vertices) / 3)

	gl.GenVertexArrays(1, &v.gridVAO)
	gl.BindVertexArray(v.gridVAO)
	gl.GenBuffers(1, &v.gridVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, v.gridVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 12, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
}

func (v *Viewer) drawGround(view, projection *math.Mat4, fogNear, fogFar float32) {
	gl.UseProgram(v.flatProgram)
	gl.UniformMatrix4fv(v.locFlatView, 1, false, view.Ptr())
	gl.UniformMatrix4fv(v.locFlatProj, 1, false, projection.Ptr())
	gl.Uniform3f(v.locFlatFogCol, backgroundColor[0], backgroundColor[1], backgroundColor[2])
	gl.Uniform1f(v.locFlatFogNear, fogNear)
	gl.Uniform1f(v.locFlatFogFar, fogFar)

	gl.Uniform4f(v.locFlatColor, planeColor[0], planeColor[1], planeColor[2], planeColor[3])
	gl.BindVertexArray(v.planeVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)

	gl.Uniform4f(v.locFlatColor, gridColor[0], gridColor[1], gridColor[2], gridColor[3])
	gl.BindVertexArray(v.gridVAO)
	gl.DrawArrays(gl.LINES, 0, v.gridVertexCount)

	gl.BindVertexArray(0)
}
