// Package shader embeds the engine's shader programs.
//
// Every program ships as one WGSL module and one GLSL 4.1 stage per entry
// point, named shaders/<program>.wgsl and shaders/<program>.<entry>.glsl.
package shader

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/gogpu/naga"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

//go:embed shaders
var sources embed.FS

// Program names.
const (
	Textured   = "textured"
	Procedural = "procedural"
)

// Entry points shared by all programs.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// Resource names used by the textured program. GLSL 4.1 has no binding
// qualifiers, so the OpenGL backend binds by these names.
const (
	TransformBlock = "Transform"
	DiffuseTexture = "t_diffuse"
	DiffuseSampler = "s_diffuse"
)

// Program is one shader program in all source languages.
type Program struct {
	Name string
	WGSL string
	GLSL map[string]string // entry point -> stage source
}

// Load reads an embedded program.
func Load(name string) (*Program, error) {
	wgsl, err := sources.ReadFile(path.Join("shaders", name+".wgsl"))
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", name, err)
	}

	p := &Program{
		Name: name,
		WGSL: string(wgsl),
		GLSL: make(map[string]string),
	}

	glsl, err := fs.Glob(sources, path.Join("shaders", name+".*.glsl"))
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", name, err)
	}
	for _, file := range glsl {
		entry := strings.TrimSuffix(strings.TrimPrefix(path.Base(file), name+"."), ".glsl")
		src, err := sources.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("shader %q entry %q: %w", name, entry, err)
		}
		p.GLSL[entry] = string(src)
	}

	for _, entry := range []string{VertexEntry, FragmentEntry} {
		if !strings.Contains(p.WGSL, "fn "+entry+"(") {
			return nil, fmt.Errorf("shader %q: WGSL has no entry point %q", name, entry)
		}
		if _, ok := p.GLSL[entry]; !ok {
			return nil, fmt.Errorf("shader %q: no GLSL stage for %q", name, entry)
		}
	}

	return p, nil
}

// Descriptor returns the module descriptor for the program.
func (p *Program) Descriptor() gpu.ShaderModuleDescriptor {
	return gpu.ShaderModuleDescriptor{
		Label: p.Name,
		WGSL:  p.WGSL,
		GLSL:  p.GLSL,
	}
}

// Validate compiles the WGSL source to SPIR-V to catch errors before a device
// is involved.
func (p *Program) Validate() error {
	if _, err := naga.Compile(p.WGSL); err != nil {
		return fmt.Errorf("shader %q: %w", p.Name, err)
	}
	return nil
}

// Names lists all embedded programs.
func Names() []string {
	return []string{Textured, Procedural}
}
