package common

import (
	"errors"

	vk "github.com/goki/vulkan"
)

// QueueFamilyIndices holds the family indices of the queues we submit to. Either may be nil until found.
type QueueFamilyIndices struct {
	GraphicsFamily *uint32
	PresentFamily  *uint32
}

func findQueueFamilies(pd vk.PhysicalDevice, surf vk.Surface) (*QueueFamilyIndices, error) {
	indices := &QueueFamilyIndices{}
	qFamilies := ReadQueueFamilies(pd)
	for i := range qFamilies {
		idx := uint32(i)
		if indices.GraphicsFamily == nil && isBitSet(qFamilies[i], vk.QueueGraphicsBit) {
			indices.GraphicsFamily = &idx
		}
		if indices.PresentFamily == nil {
			var presentSupport vk.Bool32
			vk.GetPhysicalDeviceSurfaceSupport(pd, idx, surf, &presentSupport)
			if presentSupport == vk.True {
				indices.PresentFamily = &idx
			}
		}
		if indices.IsComplete() {
			break
		}
	}
	if indices.GraphicsFamily == nil {
		return nil, errors.New("unable to find graphics capable queue family")
	}
	if indices.PresentFamily == nil {
		return nil, errors.New("unable to find present capable queue family for given surface")
	}
	return indices, nil
}

func isBitSet(qFamily vk.QueueFamilyProperties, bit vk.QueueFlagBits) bool {
	return vk.QueueFlagBits(qFamily.QueueFlags)&bit != 0
}

// IsComplete reports whether both a graphics and a present family were found.
func (q *QueueFamilyIndices) IsComplete() bool {
	return q.GraphicsFamily != nil && q.PresentFamily != nil
}

// Shared is true when graphics and present run on the same family, which allows exclusive swap chain images.
func (q *QueueFamilyIndices) Shared() bool {
	return q.IsComplete() && *q.GraphicsFamily == *q.PresentFamily
}

// Unique returns the distinct family indices, graphics first.
func (q *QueueFamilyIndices) Unique() ([]uint32, error) {
	if !q.IsComplete() {
		return nil, errors.New("queue family indices incomplete")
	}
	if q.Shared() {
		return []uint32{*q.GraphicsFamily}, nil
	}
	return []uint32{*q.GraphicsFamily, *q.PresentFamily}, nil
}

func (q *QueueFamilyIndices) toQueueCreateInfos() ([]vk.DeviceQueueCreateInfo, error) {
	families, err := q.Unique()
	if err != nil {
		return nil, err
	}
	infos := make([]vk.DeviceQueueCreateInfo, len(families))
	for i, family := range families {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos, nil
}
