// Package app wires configuration, mesh, texture, renderer and frame driver into one of the two shuriken programs.
package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"shuriken/config"
	"shuriken/driver"
	"shuriken/model"
	"shuriken/renderer"
	"shuriken/shaders"
	"shuriken/texture"
)

const (
	ExitOK      = 0
	ExitFailure = -1
)

type flags struct {
	configPath string
	texture    string
	validation bool
	dumpConfig bool
}

func parseFlags(name string, args []string, out io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&f.configPath, "config", "", "YAML file overlaid onto the default configuration")
	fs.StringVar(&f.texture, "texture", "", "absolute texture path, replaces the relative lookup")
	fs.BoolVar(&f.validation, "validation", false, "enable the Khronos validation layer")
	fs.BoolVar(&f.dumpConfig, "dump-config", false, "print the effective configuration and exit")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	if fs.NArg() > 0 {
		return flags{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return f, nil
}

// loadConfig builds the effective configuration: variant defaults, then the YAML file, then flags.
func loadConfig(variant config.Variant, f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath, config.Default(variant))
	if err != nil {
		return config.Config{}, err
	}
	if f.texture != "" {
		cfg.Texture.AbsolutePath = f.texture
	}
	if f.validation {
		cfg.Render.Validation = true
	}
	return cfg, cfg.Validate()
}

// SDL and the presentation queue are driven from the main thread.
func init() {
	runtime.LockOSThread()
}

func setupLogging() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)
}

// Main runs the program of the given variant and returns its process exit code.
func Main(variant config.Variant, args []string) int {
	setupLogging()
	f, err := parseFlags("shuriken-"+variant.String(), args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		log.Printf("Invalid arguments: %v", err)
		return ExitFailure
	}
	cfg, err := loadConfig(variant, f)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return ExitFailure
	}
	if f.dumpConfig {
		out, err := config.Marshal(cfg)
		if err != nil {
			log.Printf("%v", err)
			return ExitFailure
		}
		fmt.Print(string(out))
		return ExitOK
	}

	log.Printf("Starting %s", cfg.Window.Title)
	log.Printf("Using GoLang: [%s]", runtime.Version())
	return run(variant, cfg)
}

func run(variant config.Variant, cfg config.Config) int {
	opts := coreOptions(variant, cfg)
	core, err := renderer.NewCore(opts)
	if err != nil {
		log.Printf("Failed to initialize: %v", err)
		return ExitFailure
	}

	d := driver.New(driverConfig(cfg, opts), renderer.NewEvents(), core)
	if err := d.Run(); err != nil {
		log.Printf("Frame loop stopped: %v", err)
		core.Release()
		return ExitFailure
	}
	log.Printf("Closed after %d frames", d.Frames())
	return ExitOK
}

func driverConfig(cfg config.Config, opts renderer.Options) driver.Config {
	return driver.Config{
		AngleStep:   cfg.Render.AngleStep,
		VertexCount: opts.Mesh.VertexCount(),
		ClearColor:  cfg.Render.ClearColor,
	}
}

// coreOptions selects mesh layout, shader program and texture for the variant.
func coreOptions(variant config.Variant, cfg config.Config) renderer.Options {
	opts := renderer.Options{
		Title:          cfg.Window.Title,
		Width:          cfg.Window.Width,
		Height:         cfg.Window.Height,
		Validation:     cfg.Render.Validation,
		FramesInFlight: cfg.Render.FramesInFlight,
		Compiler: shaders.Chain{
			shaders.Precompiled{Dir: cfg.Shaders.SPIRVDir},
			shaders.Glslc{Path: cfg.Shaders.Glslc},
		},
	}
	if variant != config.VariantTextured {
		opts.Mesh = model.NewShuriken(model.LayoutColor)
		opts.Program = shaders.ColorProgram()
		return opts
	}
	opts.Mesh = model.NewShuriken(model.LayoutTextured)
	opts.Program = shaders.TexturedProgram()
	opts.Texture = texture.White()
	if cfg.Texture.Enabled {
		// Setup logs and falls back to white on error.
		opts.Texture, _ = texture.Setup(texture.NewResolver(), texture.Options{
			Path:         cfg.Texture.Path,
			AbsolutePath: cfg.Texture.AbsolutePath,
			FlipVertical: cfg.Texture.FlipVertical,
		})
	}
	return opts
}
