// Package shader provides OpenGL shader compilation utilities.
package shader

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Program is a linked shader program with cached uniform locations.
type Program struct {
	ID       uint32
	name     string
	uniforms map[string]int32
}

// Compile compiles vertex and fragment shaders and links them into a program.
func Compile(name, vertexSrc, fragmentSrc string) (*Program, error) {
	id, err := link(
		stage{gl.VERTEX_SHADER, "vertex", vertexSrc},
		stage{gl.FRAGMENT_SHADER, "fragment", fragmentSrc},
	)
	if err != nil {
		return nil, fmt.Errorf("%s program: %w", name, err)
	}
	return &Program{ID: id, name: name, uniforms: make(map[string]int32)}, nil
}

// Use makes the program current.
func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

// Delete releases the program.
func (p *Program) Delete() {
	if p != nil && p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

// Uniform returns the cached location of a uniform, -1 if inactive.
func (p *Program) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.ID, gl.Str(name+"\x00"))
	p.uniforms[name] = loc
	return loc
}

// SetMat4 sets a mat4 uniform.
func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(p.Uniform(name), 1, false, &m[0])
}

// SetVec4 sets a vec4 uniform.
func (p *Program) SetVec4(name string, v mgl32.Vec4) {
	gl.Uniform4f(p.Uniform(name), v[0], v[1], v[2], v[3])
}

// SetVec3 sets a vec3 uniform.
func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	gl.Uniform3f(p.Uniform(name), v[0], v[1], v[2])
}

// SetInt sets an int or sampler uniform.
func (p *Program) SetInt(name string, v int32) {
	gl.Uniform1i(p.Uniform(name), v)
}

// stage is one shader stage of a program.
type stage struct {
	kind   uint32
	label  string
	source string
}

// link compiles every stage and links them into a program.
func link(stages ...stage) (uint32, error) {
	program := gl.CreateProgram()
	for _, st := range stages {
		sh, err := compileStage(st)
		if err != nil {
			gl.DeleteProgram(program)
			return 0, err
		}
		gl.AttachShader(program, sh)
		// Flagged for deletion; freed once the program is deleted.
		gl.DeleteShader(sh)
	}
	gl.LinkProgram(program)

	var ok int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &ok)
	if ok == gl.FALSE {
		msg := infoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", msg)
	}
	return program, nil
}

func compileStage(st stage) (uint32, error) {
	sh := gl.CreateShader(st.kind)
	src, free := gl.Strs(st.source + "\x00")
	gl.ShaderSource(sh, 1, src, nil)
	free()
	gl.CompileShader(sh)

	var ok int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &ok)
	if ok == gl.FALSE {
		msg := infoLog(sh, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("%s shader: %s", st.label, msg)
	}
	return sh, nil
}

// infoLog reads the info log of a shader or program object.
func infoLog(obj uint32,
	param func(uint32, uint32, *int32),
	read func(uint32, int32, *int32, *uint8),
) string {
	var n int32
	param(obj, gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return "unknown error"
	}
	buf := make([]byte, n)
	read(obj, n, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00\n")
}
