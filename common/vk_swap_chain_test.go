package common

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestChooseSwapExtent(t *testing.T) {
	fixed := vk.SurfaceCapabilities{CurrentExtent: vk.Extent2D{Width: 800, Height: 600}}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, chooseSwapExtent(fixed, 1024, 1024))

	free := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 16, Height: 16},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 2048},
	}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 800}, chooseSwapExtent(free, 800, 800))
	assert.Equal(t, vk.Extent2D{Width: 4096, Height: 16}, chooseSwapExtent(free, 5000, -3))
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 0}))
	assert.Equal(t, uint32(2), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
}

func TestSelectPresentModeFallsBackToFifo(t *testing.T) {
	d := SwapChainDetails{presentModes: []vk.PresentMode{vk.PresentModeImmediate}}
	assert.Equal(t, vk.PresentModeFifo, d.selectSwapPresentMode(vk.PresentModeMailbox))

	d.presentModes = append(d.presentModes, vk.PresentModeMailbox)
	assert.Equal(t, vk.PresentModeMailbox, d.selectSwapPresentMode(vk.PresentModeMailbox))
}

func TestSelectSurfaceFormat(t *testing.T) {
	d := SwapChainDetails{formats: []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}}
	got := d.selectSwapSurfaceFormat(vk.FormatB8g8r8a8Unorm, vk.ColorSpaceSrgbNonlinear)
	assert.Equal(t, vk.FormatB8g8r8a8Unorm, got.Format)

	got = d.selectSwapSurfaceFormat(vk.FormatR16g16b16a16Sfloat, vk.ColorSpaceSrgbNonlinear)
	assert.Equal(t, vk.FormatR8g8b8a8Srgb, got.Format)
}
