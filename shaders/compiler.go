package shaders

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const spirvMagic = 0x07230203

// CompileError carries the diagnostic text of a failed shader stage.
type CompileError struct {
	Stage Stage
	Name  string
	Log   string
	Err   error
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("%s shader %q compilation failed", e.Stage, e.Name)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Log != "" {
		msg += "\n" + e.Log
	}
	return msg
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Compiler turns a GLSL source into SPIR-V words.
type Compiler interface {
	Compile(ctx context.Context, src Source) ([]byte, error)
}

// ValidateSPIRV checks the size alignment and magic number of a SPIR-V binary.
func ValidateSPIRV(code []byte) error {
	if len(code) == 0 {
		return errors.New("empty SPIR-V binary")
	}
	if len(code)%4 != 0 {
		return fmt.Errorf("SPIR-V size %d is not a multiple of 4", len(code))
	}
	if len(code) < 20 {
		return fmt.Errorf("SPIR-V binary of %d bytes is shorter than its header", len(code))
	}
	if binary.LittleEndian.Uint32(code) != spirvMagic {
		return fmt.Errorf("bad SPIR-V magic 0x%08x", binary.LittleEndian.Uint32(code))
	}
	return nil
}

// Precompiled loads SPIR-V files generated ahead of time into Dir.
type Precompiled struct {
	Dir string
}

func (p Precompiled) Compile(_ context.Context, src Source) ([]byte, error) {
	file := filepath.Join(p.Dir, src.FileName())
	code, err := os.ReadFile(file)
	if err != nil {
		return nil, &CompileError{Stage: src.Stage, Name: src.Name, Err: err}
	}
	if err := ValidateSPIRV(code); err != nil {
		return nil, &CompileError{Stage: src.Stage, Name: src.Name, Err: fmt.Errorf("%s: %w", file, err)}
	}
	log.Printf("Read shader file (%s) of size: %dByte", file, len(code))
	return code, nil
}

// Glslc compiles the embedded source with an external glslc binary.
type Glslc struct {
	Path    string
	Timeout time.Duration
}

func (g Glslc) Compile(ctx context.Context, src Source) ([]byte, error) {
	bin := g.Path
	if bin == "" {
		bin = "glslc"
	}
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, bin, "-fshader-stage="+src.Stage.ext(), "-o", "-", "-")
	cmd.Stdin = strings.NewReader(src.GLSL)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &CompileError{Stage: src.Stage, Name: src.Name, Log: strings.TrimSpace(stderr.String()), Err: err}
	}
	code := stdout.Bytes()
	if err := ValidateSPIRV(code); err != nil {
		return nil, &CompileError{Stage: src.Stage, Name: src.Name, Log: strings.TrimSpace(stderr.String()), Err: err}
	}
	log.Printf("Compiled %s shader %q with %s to %dByte of SPIR-V", src.Stage, src.Name, bin, len(code))
	return code, nil
}

// Chain tries each compiler in turn and returns the first success.
type Chain []Compiler

func (c Chain) Compile(ctx context.Context, src Source) ([]byte, error) {
	if len(c) == 0 {
		return nil, &CompileError{Stage: src.Stage, Name: src.Name, Err: errors.New("no shader compiler configured")}
	}
	var errs []error
	for _, comp := range c {
		code, err := comp.Compile(ctx, src)
		if err == nil {
			return code, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// CompileProgram compiles every stage of p in order. The first failing stage aborts.
func CompileProgram(ctx context.Context, c Compiler, p Program) (vert, frag []byte, err error) {
	for _, src := range p.Stages() {
		code, err := c.Compile(ctx, src)
		if err != nil {
			return nil, nil, err
		}
		switch src.Stage {
		case StageVertex:
			vert = code
		case StageFragment:
			frag = code
		}
	}
	return vert, frag, nil
}
