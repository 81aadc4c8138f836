package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pathscope/internal/engine/geometry"
	"github.com/Faultbox/pathscope/internal/engine/scene"
)

var _ geometry.Device = (*Renderer)(nil)

// ErrEmptyUpload is returned for uploads without data.
var ErrEmptyUpload = errors.New("empty upload")

// lineBuffer is a line-list VAO owned by a batched primitive.
type lineBuffer struct {
	vao, vbo uint32
	vertices int32
}

// Release deletes the GL objects.
func (b *lineBuffer) Release() {
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
	b.vao, b.vbo = 0, 0
}

// instanceBuffer is a VAO binding the shared cylinder mesh with a per-instance
// transform buffer.
type instanceBuffer struct {
	vao, vbo  uint32
	instances int32
}

// Release deletes the VAO and the transform buffer. The mesh is shared.
func (b *instanceBuffer) Release() {
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
	b.vao, b.vbo = 0, 0
}

// UploadLines uploads an xyz line list.
func (r *Renderer) UploadLines(vertices []float32) (scene.Buffer, error) {
	if len(vertices) == 0 {
		return nil, ErrEmptyUpload
	}
	b := &lineBuffer{vertices: int32(len(vertices) / 3)}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	if err := glError("upload lines"); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// UploadInstances uploads one model matrix per cylinder instance.
func (r *Renderer) UploadInstances(transforms []mgl32.Mat4) (scene.Buffer, error) {
	if len(transforms) == 0 {
		return nil, ErrEmptyUpload
	}
	b := &instanceBuffer{instances: int32(len(transforms))}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	// Shared mesh: position (0) and normal (1).
	gl.BindBuffer(gl.ARRAY_BUFFER, r.cylinderVBO)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 6*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 6*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	// Per-instance mat4 spans locations 2..5, one column each.
	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(transforms)*16*4, unsafe.Pointer(&transforms[0][0]), gl.STATIC_DRAW)
	for col := uint32(0); col < 4; col++ {
		loc := 2 + col
		gl.VertexAttribPointer(loc, 4, gl.FLOAT, false, 16*4, unsafe.Pointer(uintptr(col*4*4)))
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribDivisor(loc, 1)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	if err := glError("upload instances"); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// glError drains the GL error queue and reports the first error.
func glError(op string) error {
	var first uint32
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		if first == 0 {
			first = code
		}
	}
	switch first {
	case 0:
		return nil
	case gl.OUT_OF_MEMORY:
		return fmt.Errorf("%s: out of GPU memory", op)
	default:
		return fmt.Errorf("%s: GL error 0x%04x", op, first)
	}
}
