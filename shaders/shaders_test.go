package shaders

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimal word stream with a valid header: magic, version, generator, bound, schema
func fakeSPIRV() []byte {
	b := make([]byte, 20)
	binary.LittleEndian.PutUint32(b[0:], spirvMagic)
	binary.LittleEndian.PutUint32(b[4:], 0x00010000)
	binary.LittleEndian.PutUint32(b[12:], 1)
	return b
}

func TestProgramsUseFixedUniformNames(t *testing.T) {
	color := ColorProgram()
	assert.False(t, color.Textured)
	assert.Contains(t, color.Vertex.GLSL, TransformUniform)
	assert.NotContains(t, color.Fragment.GLSL, TextureUniform)
	assert.Equal(t, StageVertex, color.Vertex.Stage)
	assert.Equal(t, StageFragment, color.Fragment.Stage)

	tex := TexturedProgram()
	assert.True(t, tex.Textured)
	assert.Contains(t, tex.Vertex.GLSL, TransformUniform)
	assert.Contains(t, tex.Fragment.GLSL, "uniform sampler2D "+TextureUniform)
	assert.Contains(t, tex.Fragment.GLSL, "binding = 1")
	assert.Len(t, tex.Stages(), 2)
}

func TestSourceFileName(t *testing.T) {
	assert.Equal(t, "color.vert.spv", ColorProgram().Vertex.FileName())
	assert.Equal(t, "textured.frag.spv", TexturedProgram().Fragment.FileName())
}

func TestValidateSPIRV(t *testing.T) {
	assert.NoError(t, ValidateSPIRV(fakeSPIRV()))
	assert.Error(t, ValidateSPIRV(nil))
	assert.Error(t, ValidateSPIRV(fakeSPIRV()[:19]))
	assert.Error(t, ValidateSPIRV(make([]byte, 20)))
	assert.Error(t, ValidateSPIRV([]byte{1, 2, 3, 4}))
}

func TestPrecompiled(t *testing.T) {
	dir := t.TempDir()
	src := ColorProgram().Vertex
	require.NoError(t, os.WriteFile(filepath.Join(dir, src.FileName()), fakeSPIRV(), 0o644))

	code, err := Precompiled{Dir: dir}.Compile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, fakeSPIRV(), code)

	_, err = Precompiled{Dir: dir}.Compile(context.Background(), ColorProgram().Fragment)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, StageFragment, ce.Stage)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPrecompiledRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	src := TexturedProgram().Fragment
	require.NoError(t, os.WriteFile(filepath.Join(dir, src.FileName()), []byte("not spirv"), 0o644))
	_, err := Precompiled{Dir: dir}.Compile(context.Background(), src)
	assert.Error(t, err)
}

func TestGlslcMissingBinary(t *testing.T) {
	g := Glslc{Path: filepath.Join(t.TempDir(), "no-such-glslc")}
	_, err := g.Compile(context.Background(), ColorProgram().Vertex)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, StageVertex, ce.Stage)
	assert.True(t, strings.HasPrefix(ce.Error(), "vertex shader \"color\" compilation failed"))
}

type stubCompiler struct {
	code  []byte
	err   error
	calls int
}

func (s *stubCompiler) Compile(_ context.Context, _ Source) ([]byte, error) {
	s.calls++
	return s.code, s.err
}

func TestChainFirstSuccessWins(t *testing.T) {
	failing := &stubCompiler{err: errors.New("boom")}
	ok := &stubCompiler{code: fakeSPIRV()}
	unused := &stubCompiler{code: []byte{0}}

	code, err := Chain{failing, ok, unused}.Compile(context.Background(), ColorProgram().Vertex)
	require.NoError(t, err)
	assert.Equal(t, fakeSPIRV(), code)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
	assert.Zero(t, unused.calls)
}

func TestChainAggregatesErrors(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	_, err := Chain{&stubCompiler{err: first}, &stubCompiler{err: second}}.Compile(context.Background(), ColorProgram().Vertex)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)

	_, err = Chain{}.Compile(context.Background(), ColorProgram().Vertex)
	assert.Error(t, err)
}

func TestCompileProgramStopsAtFirstFailure(t *testing.T) {
	s := &stubCompiler{err: &CompileError{Stage: StageVertex, Name: "color", Log: "0:1: error"}}
	_, _, err := CompileProgram(context.Background(), s, ColorProgram())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0:1: error")
	assert.Equal(t, 1, s.calls)

	ok := &stubCompiler{code: fakeSPIRV()}
	vert, frag, err := CompileProgram(context.Background(), ok, TexturedProgram())
	require.NoError(t, err)
	assert.NotEmpty(t, vert)
	assert.NotEmpty(t, frag)
	assert.Equal(t, 2, ok.calls)
}
