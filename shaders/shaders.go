// Package shaders holds the two fixed shader programs of the demo and turns their GLSL sources into SPIR-V.
package shaders

import (
	"embed"
	"fmt"
	"path"
)

//go:generate glslc -fshader-stage=vert glsl/color.vert -o ../shaders_spv/color.vert.spv
//go:generate glslc -fshader-stage=frag glsl/color.frag -o ../shaders_spv/color.frag.spv
//go:generate glslc -fshader-stage=vert glsl/textured.vert -o ../shaders_spv/textured.vert.spv
//go:generate glslc -fshader-stage=frag glsl/textured.frag -o ../shaders_spv/textured.frag.spv

//go:embed glsl/*.vert glsl/*.frag
var sources embed.FS

// Uniform slot names shared by both programs.
const (
	TransformUniform = "transform"
	TextureUniform   = "myTexture"

	TransformBinding = 0
	TextureBinding   = 1

	EntryPoint = "main"
)

type Stage int

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// ext is the file extension glslc uses to infer the stage.
func (s Stage) ext() string {
	if s == StageFragment {
		return "frag"
	}
	return "vert"
}

// Source is one GLSL shader stage.
type Source struct {
	Name  string
	Stage Stage
	GLSL  string
}

// FileName is the name of the compiled SPIR-V file, e.g. "color.vert.spv".
func (s Source) FileName() string {
	return s.Name + "." + s.Stage.ext() + ".spv"
}

// Program is a vertex and fragment shader pair linked into one pipeline.
type Program struct {
	Name     string
	Vertex   Source
	Fragment Source
	// Textured programs sample TextureUniform in the fragment stage.
	Textured bool
}

func (p Program) Stages() []Source {
	return []Source{p.Vertex, p.Fragment}
}

// ColorProgram colors each fragment with the interpolated vertex color.
func ColorProgram() Program {
	return mustProgram("color", false)
}

// TexturedProgram multiplies the sampled texture color with the vertex color.
func TexturedProgram() Program {
	return mustProgram("textured", true)
}

func mustProgram(name string, textured bool) Program {
	return Program{
		Name:     name,
		Vertex:   mustSource(name, StageVertex),
		Fragment: mustSource(name, StageFragment),
		Textured: textured,
	}
}

func mustSource(name string, stage Stage) Source {
	b, err := sources.ReadFile(path.Join("glsl", name+"."+stage.ext()))
	if err != nil {
		// embedded at build time, a miss is a programming error
		panic(err)
	}
	return Source{Name: name, Stage: stage, GLSL: string(b)}
}
