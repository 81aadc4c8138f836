// Package renderer draws toolpath scenes with OpenGL and allocates their GPU
// buffers.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pathscope/internal/engine/bounds"
	"github.com/Faultbox/pathscope/internal/engine/camera"
	"github.com/Faultbox/pathscope/internal/engine/scene"
	"github.com/Faultbox/pathscope/internal/engine/shader"
	"github.com/Faultbox/pathscope/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ShowBounds bool
}

// FrameStats describes the last drawn frame.
type FrameStats struct {
	DrawCalls int
	Culled    int
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	lineProg     *shader.Program
	instanceProg *shader.Program
	overlayProg  *shader.Program

	// Shared unit cylinder for instanced primitives
	cylinderVBO      uint32
	cylinderVertices int32

	// Dynamic line buffer for bounding box wireframes
	boundsVAO, boundsVBO uint32
	boundsScratch        []float32

	// Tooltip quad and texture
	quadVAO, quadVBO uint32
	tooltipTex       uint32

	stats FrameStats
	log   *zap.Logger
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{config: cfg, log: logger.Named("renderer")}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	if err := compileAll(r.programs(), shader.Compile); err != nil {
		r.Close()
		return nil, err
	}

	r.createCylinder()
	r.createBoundsBuffer()
	r.createQuad()

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// programSource is one shader program and the field it is stored in.
type programSource struct {
	name     string
	vertex   string
	fragment string
	dst      **shader.Program
}

func (r *Renderer) programs() []programSource {
	return []programSource{
		{"line", lineVertexShader, lineFragmentShader, &r.lineProg},
		{"instance", instanceVertexShader, instanceFragmentShader, &r.instanceProg},
		{"overlay", overlayVertexShader, overlayFragmentShader, &r.overlayProg},
	}
}

// compileAll compiles the programs in order and stops at the first failure,
// leaving the programs compiled so far in place for Close.
func compileAll(srcs []programSource, compile func(name, vs, fs string) (*shader.Program, error)) error {
	for _, src := range srcs {
		p, err := compile(src.name, src.vertex, src.fragment)
		if err != nil {
			return err
		}
		*src.dst = p
	}
	return nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.lineProg.Delete()
	r.instanceProg.Delete()
	r.overlayProg.Delete()
	for _, vbo := range []*uint32{&r.cylinderVBO, &r.boundsVBO, &r.quadVBO} {
		if *vbo != 0 {
			gl.DeleteBuffers(1, vbo)
			*vbo = 0
		}
	}
	for _, vao := range []*uint32{&r.boundsVAO, &r.quadVAO} {
		if *vao != 0 {
			gl.DeleteVertexArrays(1, vao)
			*vao = 0
		}
	}
	if r.tooltipTex != 0 {
		gl.DeleteTextures(1, &r.tooltipTex)
		r.tooltipTex = 0
	}
}

// Resize handles window resize. width and height are in window pixels, which
// tooltips are placed in; the GL viewport covers the drawable, which is larger
// on HiDPI displays.
func (r *Renderer) Resize(width, height, drawableW, drawableH int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(drawableW), int32(drawableH))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("drawable_width", drawableW),
		zap.Int("drawable_height", drawableH),
	)
}

// SetShowBounds toggles the bounding box overlay.
func (r *Renderer) SetShowBounds(show bool) {
	r.config.ShowBounds = show
}

// Stats returns statistics of the last frame.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	r.stats = FrameStats{}
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {}

// Draw renders the visible primitives of g as seen from cam. Culling must have
// run before; Draw only reads Visible and the draw limits.
func (r *Renderer) Draw(g *scene.Graph, cam *camera.State) {
	if g == nil || cam == nil {
		return
	}
	vp := cam.ViewProjection()

	for _, p := range g.Primitives {
		if p.Disposed() || !p.Visible {
			if !p.Disposed() {
				r.stats.Culled++
			}
			continue
		}
		count := int32(p.DrawCount())
		if count == 0 {
			continue
		}
		switch buf := p.Buffer.(type) {
		case *lineBuffer:
			r.lineProg.Use()
			r.lineProg.SetMat4("uViewProj", vp)
			r.lineProg.SetVec4("uColor", p.Color)
			gl.BindVertexArray(buf.vao)
			gl.DrawArrays(gl.LINES, 0, count)
		case *instanceBuffer:
			r.instanceProg.Use()
			r.instanceProg.SetMat4("uViewProj", vp)
			r.instanceProg.SetVec4("uColor", p.Color)
			r.instanceProg.SetVec3("uLightDir", mgl32.Vec3{-0.3, -0.4, -0.85}.Normalize())
			gl.BindVertexArray(buf.vao)
			gl.DrawArraysInstanced(gl.TRIANGLES, 0, r.cylinderVertices, count)
		default:
			continue
		}
		r.stats.DrawCalls++
	}
	gl.BindVertexArray(0)

	if r.config.ShowBounds {
		r.drawBounds(g, vp)
	}
}

// drawBounds draws the cached bounding box of every visible primitive.
func (r *Renderer) drawBounds(g *scene.Graph, vp mgl32.Mat4) {
	r.boundsScratch = r.boundsScratch[:0]
	for _, p := range g.Primitives {
		if v := p.Bounds(); v != nil && p.Visible && !p.Disposed() {
			r.boundsScratch = append(r.boundsScratch, v.Box.WireframeVertices()...)
		}
	}
	if len(r.boundsScratch) == 0 {
		return
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, r.boundsVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.boundsScratch)*4, unsafe.Pointer(&r.boundsScratch[0]), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.lineProg.Use()
	r.lineProg.SetMat4("uViewProj", vp)
	r.lineProg.SetVec4("uColor", mgl32.Vec4{1, 1, 0, 0.6})
	gl.BindVertexArray(r.boundsVAO)
	gl.DrawArrays(gl.LINES, 0, int32(len(r.boundsScratch)/3))
	gl.BindVertexArray(0)
	r.stats.DrawCalls++
}

// DrawTooltip draws img with its top-left corner at (x, y) in window pixels.
func (r *Renderer) DrawTooltip(img *image.RGBA, x, y float32) {
	if img == nil || r.config.Width == 0 || r.config.Height == 0 {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.tooltipTex)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	rect := PixelRectToNDC(x, y, float32(w), float32(h), float32(r.config.Width), float32(r.config.Height))

	gl.Disable(gl.DEPTH_TEST)
	r.overlayProg.Use()
	r.overlayProg.SetVec4("uRect", rect)
	r.overlayProg.SetInt("uTexture", 0)
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
	r.stats.DrawCalls++
}

// ReadPixels reads the RGBA contents of the back buffer, bottom row first.
func (r *Renderer) ReadPixels(width, height int) []byte {
	if width <= 0 || height <= 0 {
		return nil
	}
	pixels := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels
}

// PixelRectToNDC converts a top-left anchored pixel rectangle to the
// bottom-left corner and size in normalized device coordinates.
func PixelRectToNDC(x, y, w, h, viewportW, viewportH float32) mgl32.Vec4 {
	return mgl32.Vec4{
		2*x/viewportW - 1,
		1 - 2*(y+h)/viewportH,
		2 * w / viewportW,
		2 * h / viewportH,
	}
}

func (r *Renderer) createCylinder() {
	mesh := CylinderMesh(cylinderSides)
	r.cylinderVertices = int32(len(mesh) / 6)
	gl.GenBuffers(1, &r.cylinderVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.cylinderVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh)*4, unsafe.Pointer(&mesh[0]), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (r *Renderer) createBoundsBuffer() {
	gl.GenVertexArrays(1, &r.boundsVAO)
	gl.BindVertexArray(r.boundsVAO)
	gl.GenBuffers(1, &r.boundsVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.boundsVBO)
	gl.BufferData(gl.ARRAY_BUFFER, bounds.WireframeVertexCount*3*4, nil, gl.DYNAMIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

func (r *Renderer) createQuad() {
	corners := []float32{0, 0, 1, 0, 0, 1, 1, 1}
	gl.GenVertexArrays(1, &r.quadVAO)
	gl.BindVertexArray(r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(corners)*4, unsafe.Pointer(&corners[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenTextures(1, &r.tooltipTex)
	gl.BindTexture(gl.TEXTURE_2D, r.tooltipTex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}
