package common

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
)

// Human readable renditions of the device information read during device selection. Only used for logging.

// ToStringPhysicalDeviceTable renders name, properties and queue families of a physical device as a small tree.
func ToStringPhysicalDeviceTable(pdProps vk.PhysicalDeviceProperties, qFamilies []vk.QueueFamilyProperties) string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%s:\n", vk.ToString(pdProps.DeviceName[:]))
	fmt.Fprintf(&sb, "|_api: %s, driver: %s, vendor: %s, type: %s\n",
		vk.Version(pdProps.ApiVersion).String(),
		DriverVersionName(pdProps.VendorID, pdProps.DriverVersion),
		VendorName(pdProps.VendorID),
		DeviceTypeName(pdProps.DeviceType),
	)
	for i := range qFamilies {
		prefix := "| "
		if i == len(qFamilies)-1 {
			prefix = "|_"
		}
		fmt.Fprintf(&sb, "%sQfamily[%d] count: %2d, flags: %v\n", prefix, i, qFamilies[i].QueueCount, QueueFlagNames(qFamilies[i].QueueFlags))
	}
	return sb.String()
}

// VendorName maps the handful of known PCI vendor ids to a name.
func VendorName(vendorID uint32) string {
	switch vendorID {
	case 0x1002:
		return "AMD"
	case 0x1010:
		return "ImgTec"
	case 0x10DE:
		return "NVIDIA"
	case 0x13B5:
		return "ARM"
	case 0x5143:
		return "Qualcomm"
	case 0x8086:
		return "INTEL"
	case 0x10005:
		return "Mesa"
	default:
		return "unknown"
	}
}

// DriverVersionName decodes the driver version, NVIDIA packs it differently from everyone else.
func DriverVersionName(vendorID uint32, raw uint32) string {
	if vendorID == 0x10DE {
		return fmt.Sprintf("%d.%d.%d.%d", (raw>>22)&0x3ff, (raw>>14)&0x0ff, (raw>>6)&0x0ff, raw&0x003f)
	}
	return vk.Version(raw).String()
}

func DeviceTypeName(dt vk.PhysicalDeviceType) string {
	switch dt {
	case vk.PhysicalDeviceTypeOther:
		return "other"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated gpu"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete gpu"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual gpu"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "unknown"
	}
}

// QueueFlagNames lists the set queue capability bits by their Vulkan names.
func QueueFlagNames(bits vk.QueueFlags) []string {
	named := []struct {
		bit  vk.QueueFlagBits
		name string
	}{
		{vk.QueueGraphicsBit, "VK_QUEUE_GRAPHICS_BIT"},
		{vk.QueueComputeBit, "VK_QUEUE_COMPUTE_BIT"},
		{vk.QueueTransferBit, "VK_QUEUE_TRANSFER_BIT"},
		{vk.QueueSparseBindingBit, "VK_QUEUE_SPARSE_BINDING_BIT"},
		{vk.QueueProtectedBit, "VK_QUEUE_PROTECTED_BIT"},
	}
	var out []string
	for _, n := range named {
		if vk.QueueFlagBits(bits)&n.bit != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

// FeatureNames lists which of the optional features logged during device selection are set in f. None of them
// is required.
func FeatureNames(f vk.PhysicalDeviceFeatures) []string {
	named := []struct {
		set  vk.Bool32
		name string
	}{
		{f.GeometryShader, "geometryShader"},
		{f.SamplerAnisotropy, "samplerAnisotropy"},
		{f.FillModeNonSolid, "fillModeNonSolid"},
		{f.WideLines, "wideLines"},
	}
	var out []string
	for _, n := range named {
		if n.set == vk.True {
			out = append(out, n.name)
		}
	}
	return out
}
