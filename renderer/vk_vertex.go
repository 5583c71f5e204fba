package renderer

import (
	"shuriken/model"

	vk "github.com/goki/vulkan"
)

// Vertex input descriptions derived from the mesh layout. Everything lives in binding 0, interleaved.

func vertexBindingDescription(l model.Layout) vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    l.Stride(),
		InputRate: vk.VertexInputRateVertex,
	}
}

func vertexAttributeDescriptions(l model.Layout) []vk.VertexInputAttributeDescription {
	attrs := l.Attributes()
	desc := make([]vk.VertexInputAttributeDescription, len(attrs))
	for i, a := range attrs {
		desc[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  0,
			Format:   floatFormat(a.Components),
			Offset:   a.Offset,
		}
	}
	return desc
}

func floatFormat(components uint32) vk.Format {
	switch components {
	case 1:
		return vk.FormatR32Sfloat
	case 2:
		return vk.FormatR32g32Sfloat
	case 3:
		return vk.FormatR32g32b32Sfloat
	default:
		return vk.FormatR32g32b32a32Sfloat
	}
}
