package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

// maxBindingsPerGroup spaces texture units and uniform block binding points
// so each bind group index owns a disjoint range.
const maxBindingsPerGroup = 8

// compileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	// Compile vertex shader
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	// Compile fragment shader
	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	// Link program
	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", string(log))
	}

	return program, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}

	return shader, nil
}

// bindProgramResources assigns every named resource of the pipeline layout
// to its binding point: uniform blocks via glUniformBlockBinding and
// samplers via their texture unit. Resources the linker optimized away are
// skipped.
func bindProgramResources(program uint32, layouts []*bindGroupLayout) {
	for group, layout := range layouts {
		for _, e := range layout.desc.Entries {
			slot := uint32(group)*maxBindingsPerGroup + layout.slots[e.Binding]
			name := gl.Str(e.Name + "\x00")

			switch e.Type {
			case gpu.BindingUniformBuffer:
				idx := gl.GetUniformBlockIndex(program, name)
				if idx != gl.INVALID_INDEX {
					gl.UniformBlockBinding(program, idx, slot)
				}
			case gpu.BindingSampledTexture:
				if loc := gl.GetUniformLocation(program, name); loc >= 0 {
					gl.ProgramUniform1i(program, loc, int32(slot))
				}
			}
		}
	}
}
