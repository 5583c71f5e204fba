package common

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissing(t *testing.T) {
	available := []string{"VK_KHR_surface", "VK_KHR_xlib_surface\x00", "VK_EXT_debug_utils"}
	assert.Empty(t, Missing([]string{"VK_KHR_surface\x00", "VK_KHR_xlib_surface"}, available))
	assert.Equal(t, []string{"VK_KHR_swapchain"}, Missing([]string{"VK_KHR_surface", "VK_KHR_swapchain"}, available))
	assert.True(t, AllOfAinB(nil, available))
	assert.False(t, AllOfAinB([]string{"VK_LAYER_KHRONOS_validation"}, nil))
}

func TestTerminatedStrs(t *testing.T) {
	in := []string{"a", "b\x00", ""}
	out := TerminatedStrs(in)
	assert.Equal(t, []string{"a\x00", "b\x00", "\x00"}, out)
	assert.Equal(t, "a", in[0], "input must not be modified")
	assert.Nil(t, TerminatedStrs(nil))
}

func TestAsUint32Arr(t *testing.T) {
	words, err := AsUint32Arr([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x07230203, 0x00010000}, words)

	_, err = AsUint32Arr([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDeviceStrings(t *testing.T) {
	assert.Equal(t, "NVIDIA", VendorName(0x10DE))
	assert.Equal(t, "unknown", VendorName(0x1234))
	assert.Equal(t, "1.2.3.4", DriverVersionName(0x10DE, 1<<22|2<<14|3<<6|4))
	assert.Equal(t, "discrete gpu", DeviceTypeName(vk.PhysicalDeviceTypeDiscreteGpu))

	flags := vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit)
	assert.Equal(t, []string{"VK_QUEUE_GRAPHICS_BIT", "VK_QUEUE_TRANSFER_BIT"}, QueueFlagNames(flags))
	assert.Nil(t, QueueFlagNames(0))
}

func TestFeatureNames(t *testing.T) {
	assert.Nil(t, FeatureNames(vk.PhysicalDeviceFeatures{}))
	f := vk.PhysicalDeviceFeatures{SamplerAnisotropy: vk.True, WideLines: vk.True}
	assert.Equal(t, []string{"samplerAnisotropy", "wideLines"}, FeatureNames(f))
}
