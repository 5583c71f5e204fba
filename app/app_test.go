package app

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"shuriken/config"
	"shuriken/driver"
	"shuriken/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	f, err := parseFlags("test", []string{"-config", "a.yaml", "-texture", "/tmp/t.png", "-validation"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "a.yaml", f.configPath)
	assert.Equal(t, "/tmp/t.png", f.texture)
	assert.True(t, f.validation)

	_, err = parseFlags("test", []string{"-nope"}, io.Discard)
	assert.Error(t, err)
	_, err = parseFlags("test", []string{"extra"}, io.Discard)
	assert.Error(t, err)
}

func TestLoadConfigAppliesFlags(t *testing.T) {
	cfg, err := loadConfig(config.VariantTextured, flags{texture: "/abs/tex.png", validation: true})
	require.NoError(t, err)
	assert.Equal(t, "/abs/tex.png", cfg.Texture.AbsolutePath)
	assert.True(t, cfg.Render.Validation)
	assert.True(t, cfg.Texture.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shuriken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  title: custom\nrender:\n  angleStep: 0.01\n"), 0o644))
	cfg, err := loadConfig(config.VariantColor, flags{configPath: path})
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Window.Title)
	assert.Equal(t, 0.01, cfg.Render.AngleStep)
	assert.Equal(t, config.DefaultWidth, cfg.Window.Width)
}

func TestMainFailsOnBadConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	assert.Equal(t, ExitFailure, Main(config.VariantColor, []string{"-config", missing}))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("render:\n  framesInFlight: 99\n"), 0o644))
	assert.Equal(t, ExitFailure, Main(config.VariantColor, []string{"-config", bad}))

	assert.Equal(t, ExitFailure, Main(config.VariantColor, []string{"-bogus"}))
}

func TestMainDumpConfig(t *testing.T) {
	assert.Equal(t, ExitOK, Main(config.VariantColor, []string{"-dump-config"}))
}

func TestCoreOptionsPerVariant(t *testing.T) {
	color := coreOptions(config.VariantColor, config.Default(config.VariantColor))
	assert.False(t, color.Program.Textured)
	assert.Equal(t, model.LayoutColor, color.Mesh.Layout)
	assert.Nil(t, color.Texture)
	assert.Equal(t, uint32(18), color.Mesh.VertexCount())

	cfg := config.Default(config.VariantTextured)
	cfg.Texture.Path = "does/not/exist.png"
	textured := coreOptions(config.VariantTextured, cfg)
	assert.True(t, textured.Program.Textured)
	assert.Equal(t, model.LayoutTextured, textured.Mesh.Layout)
	require.NotNil(t, textured.Texture)
	assert.True(t, textured.Texture.IsWhiteFallback())
}

type closeAfter struct{ polls, limit int }

func (c *closeAfter) Poll() driver.Input {
	c.polls++
	return driver.Input{Close: c.polls > c.limit}
}

func (c *closeAfter) Wait() {}

type countingTarget struct{ counts []uint32 }

func (c *countingTarget) Draw(f driver.Frame) error {
	c.counts = append(c.counts, f.VertexCount)
	return nil
}

func (c *countingTarget) Resize()  {}
func (c *countingTarget) Release() {}

func writeTexture(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, G: 10, B: 10, A: 128})
	}
	path := filepath.Join(t.TempDir(), "basecolor.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestVertexCountIndependentOfTexture(t *testing.T) {
	loaded := config.Default(config.VariantTextured)
	loaded.Texture.AbsolutePath = writeTexture(t)
	missing := config.Default(config.VariantTextured)
	missing.Texture.AbsolutePath = filepath.Join(t.TempDir(), "missing.png")

	for name, cfg := range map[string]config.Config{"loaded": loaded, "missing": missing} {
		opts := coreOptions(config.VariantTextured, cfg)
		require.NotNil(t, opts.Texture, name)
		assert.Equal(t, name == "missing", opts.Texture.IsWhiteFallback(), name)

		tg := &countingTarget{}
		require.NoError(t, driver.New(driverConfig(cfg, opts), &closeAfter{limit: 3}, tg).Run(), name)
		require.Len(t, tg.counts, 3, name)
		for _, n := range tg.counts {
			assert.Equal(t, uint32(model.ShurikenVertexCount), n, name)
		}
	}
}
