package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Variant selects which of the two demo programs is configured.
type Variant int

const (
	// VariantColor colors the shuriken by vertex color only.
	VariantColor Variant = iota
	// VariantTextured additionally samples a texture loaded from disk.
	VariantTextured
)

func (v Variant) String() string {
	if v == VariantTextured {
		return "textured"
	}
	return "color"
}

const (
	DefaultWidth       int32 = 800
	DefaultHeight      int32 = 800
	DefaultAngleStep         = 0.002
	DefaultTexturePath       = "resources/basecolor.png"
	DefaultSPIRVDir          = "shaders_spv"
	DefaultGlslc             = "glslc"
	DefaultFramesInFlight    = 2
	MaxFramesInFlight        = 4
)

var DefaultClearColor = [4]float32{0.1, 0.1, 0.15, 1.0}

type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Texture TextureConfig `yaml:"texture"`
	Shaders ShaderConfig  `yaml:"shaders"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int32  `yaml:"width"`
	Height int32  `yaml:"height"`
}

type RenderConfig struct {
	ClearColor     [4]float32 `yaml:"clearColor,flow"`
	AngleStep      float64    `yaml:"angleStep"`
	Validation     bool       `yaml:"validation,omitempty"`
	FramesInFlight int        `yaml:"framesInFlight"`
}

type TextureConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	// AbsolutePath replaces the relative lookup entirely when set.
	AbsolutePath string `yaml:"absolutePath,omitempty"`
	FlipVertical bool   `yaml:"flipVertical"`
}

type ShaderConfig struct {
	SPIRVDir string `yaml:"spirvDir"`
	Glslc    string `yaml:"glslc"`
}

// Default returns the stock configuration of the given variant.
func Default(v Variant) Config {
	c := Config{
		Window: WindowConfig{
			Title:  "Shuriken Vulkan",
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Render: RenderConfig{
			ClearColor:     DefaultClearColor,
			AngleStep:      DefaultAngleStep,
			FramesInFlight: DefaultFramesInFlight,
		},
		Texture: TextureConfig{
			Path:         DefaultTexturePath,
			FlipVertical: true,
		},
		Shaders: ShaderConfig{
			SPIRVDir: DefaultSPIRVDir,
			Glslc:    DefaultGlslc,
		},
	}
	if v == VariantTextured {
		c.Window.Title = "Shuriken Vulkan (texture debug)"
		c.Texture.Enabled = true
	}
	return c
}

// normalize restores defaults for strings a YAML document explicitly left empty. Numbers are kept as written so
// Validate sees an explicit zero.
func (c *Config) normalize() {
	if c.Window.Title == "" {
		c.Window.Title = "Shuriken Vulkan"
	}
	if c.Texture.Path == "" {
		c.Texture.Path = DefaultTexturePath
	}
	if c.Shaders.SPIRVDir == "" {
		c.Shaders.SPIRVDir = DefaultSPIRVDir
	}
	if c.Shaders.Glslc == "" {
		c.Shaders.Glslc = DefaultGlslc
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Render.AngleStep <= 0 {
		return fmt.Errorf("angle step must be positive, got %v", c.Render.AngleStep)
	}
	for i, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("clear color component %d out of range [0,1]: %v", i, v)
		}
	}
	if c.Render.FramesInFlight < 1 || c.Render.FramesInFlight > MaxFramesInFlight {
		return fmt.Errorf("frames in flight must be within 1..%d, got %d", MaxFramesInFlight, c.Render.FramesInFlight)
	}
	return nil
}

// Load overlays the YAML document at path onto base. An empty path returns base unchanged.
func Load(path string, base Config) (Config, error) {
	if path == "" {
		return base, base.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, base)
}

// Parse overlays a YAML document onto base.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Marshal renders cfg as YAML, mainly used to dump the effective configuration.
func Marshal(cfg Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}
