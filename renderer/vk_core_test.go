package renderer

import (
	"errors"
	"testing"

	"shuriken/driver"
	"shuriken/model"
	"shuriken/shaders"
	"shuriken/texture"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"
)

func TestCoreSatisfiesTarget(t *testing.T) {
	var _ driver.Target = (*Core)(nil)
	var _ driver.Events = (*Events)(nil)
}

func TestNewCoreWithoutMesh(t *testing.T) {
	_, err := NewCore(Options{Title: "no mesh"})
	assert.True(t, errors.Is(err, ErrInitialization))
}

func TestReleaseIsIdempotentOnEmptyCore(t *testing.T) {
	c := &Core{}
	c.Release()
	c.Release()
	assert.True(t, c.released)
	assert.Error(t, c.Draw(driver.Frame{}))
}

func TestFlippedViewport(t *testing.T) {
	vp := flippedViewport(vk.Extent2D{Width: 800, Height: 600})
	assert.Equal(t, float32(600), vp.Y)
	assert.Equal(t, float32(-600), vp.Height)
	assert.Equal(t, float32(800), vp.Width)
	assert.Equal(t, float32(1), vp.MaxDepth)
}

func TestVertexDescriptions(t *testing.T) {
	color := vertexBindingDescription(model.LayoutColor)
	assert.Equal(t, uint32(24), color.Stride)
	attrs := vertexAttributeDescriptions(model.LayoutColor)
	require.Len(t, attrs, 2)
	assert.Equal(t, vk.FormatR32g32b32Sfloat, attrs[1].Format)
	assert.Equal(t, uint32(12), attrs[1].Offset)

	textured := vertexAttributeDescriptions(model.LayoutTextured)
	require.Len(t, textured, 3)
	assert.Equal(t, uint32(2), textured[2].Location)
	assert.Equal(t, vk.FormatR32g32Sfloat, textured[2].Format)
	assert.Equal(t, uint32(24), textured[2].Offset)
	assert.Equal(t, uint32(32), vertexBindingDescription(model.LayoutTextured).Stride)
}

func TestDescriptorBindings(t *testing.T) {
	plain := layoutBindings(false)
	require.Len(t, plain, 1)
	assert.Equal(t, uint32(shaders.TransformBinding), plain[0].Binding)
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, plain[0].DescriptorType)

	textured := layoutBindings(true)
	require.Len(t, textured, 2)
	assert.Equal(t, uint32(shaders.TextureBinding), textured[1].Binding)
	assert.Equal(t, vk.DescriptorTypeCombinedImageSampler, textured[1].DescriptorType)

	sizes := poolSizes(true, 3)
	require.Len(t, sizes, 2)
	assert.Equal(t, uint32(3), sizes[0].DescriptorCount)
	assert.Len(t, poolSizes(false, 2), 1)
}

func TestTextureFormat(t *testing.T) {
	tests := []struct {
		in           texture.Format
		rgbSupported bool
		want         vk.Format
		expand       bool
	}{
		{texture.FormatR8, false, vk.FormatR8Unorm, false},
		{texture.FormatRGB8, true, vk.FormatR8g8b8Unorm, false},
		{texture.FormatRGB8, false, vk.FormatR8g8b8a8Unorm, true},
		{texture.FormatRGBA8, false, vk.FormatR8g8b8a8Unorm, false},
	}
	for _, tt := range tests {
		got, expand, err := textureFormat(tt.in, tt.rgbSupported)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in.String())
		assert.Equal(t, tt.expand, expand, tt.in.String())
	}
	_, _, err := textureFormat(texture.Format(42), true)
	assert.Error(t, err)
}

func TestMipLevelsFor(t *testing.T) {
	all := blitFeatures | linearFeature | sampledFeatures
	assert.Equal(t, uint32(10), mipLevelsFor(512, 256, all))
	assert.Equal(t, uint32(1), mipLevelsFor(512, 256, sampledFeatures|blitFeatures))
	assert.Equal(t, uint32(1), mipLevelsFor(1, 1, all))
	assert.Equal(t, int32(1), mipExtent(1))
	assert.Equal(t, int32(3), mipExtent(7))
}

func TestTransitionFor(t *testing.T) {
	tr, ok := transitionFor(vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	require.True(t, ok)
	assert.Equal(t, vk.AccessFlags(vk.AccessTransferWriteBit), tr.dstAccess)

	_, ok = transitionFor(vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	assert.True(t, ok)
	_, ok = transitionFor(vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutUndefined)
	assert.False(t, ok)
}

func TestShaderStageBit(t *testing.T) {
	assert.Equal(t, vk.ShaderStageVertexBit, shaderStageBit(shaders.StageVertex))
	assert.Equal(t, vk.ShaderStageFragmentBit, shaderStageBit(shaders.StageFragment))
}

func TestTranslateEvent(t *testing.T) {
	var in driver.Input
	translateEvent(&sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Sym: sdl.K_ESCAPE}}, &in)
	assert.False(t, in.Close)
	translateEvent(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_a}}, &in)
	assert.False(t, in.Close)
	translateEvent(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_ESCAPE}}, &in)
	assert.True(t, in.Close)

	in = driver.Input{}
	translateEvent(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_SIZE_CHANGED}, &in)
	assert.True(t, in.Resized)
	translateEvent(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_MINIMIZED}, &in)
	assert.True(t, in.Minimized)
	translateEvent(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESTORED}, &in)
	assert.True(t, in.Restored)
	assert.False(t, in.Minimized)

	in = driver.Input{}
	translateEvent(&sdl.QuitEvent{}, &in)
	assert.True(t, in.Close)
}
