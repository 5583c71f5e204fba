package common

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
)

// Utility functions providing slightly altered versions of the raw go bindings and wrapped functions. These only
// hide default values that will not need to change for a single window, single pipeline renderer. Names are prefixed
// with VKS which stands for (V)ul(K)an (S)implified.

// VKSAllocateCommandBuffersPrimary allocates count primary command buffers from cmdPool.
func VKSAllocateCommandBuffersPrimary(device vk.Device, cmdPool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error) {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		PNext:              nil,
		CommandPool:        cmdPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}
	buffers := make([]vk.CommandBuffer, count)
	if err := vk.Error(vk.AllocateCommandBuffers(device, &allocInfo, buffers)); err != nil {
		return nil, err
	}
	return buffers, nil
}

// VKSCreateCommandPool implicitly instantiates the CreateInfo for the command pool as it only has two interesting
// values.
func VKSCreateCommandPool(device vk.Device, flags vk.CommandPoolCreateFlags, queueFamilyIndex uint32) (vk.CommandPool, error) {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		PNext:            nil,
		Flags:            flags,
		QueueFamilyIndex: queueFamilyIndex,
	}
	return VkCreateCommandPool(device, &poolInfo, nil)
}

// VKSCreate2DImageView creates a view covering all mip levels of a single layer 2D image.
func VKSCreate2DImageView(device vk.Device, image vk.Image, format vk.Format, aspectFlags vk.ImageAspectFlags, mipLevels uint32) (vk.ImageView, error) {
	createInfo := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		PNext:    nil,
		Flags:    0,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFlags,
			BaseMipLevel:   0,
			LevelCount:     mipLevels,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	return VkCreateImageView(device, createInfo, nil)
}

// VKSAllocateDescriptorSets allocates one set per layout from pool.
func VKSAllocateDescriptorSets(device vk.Device, pool vk.DescriptorPool, layouts []vk.DescriptorSetLayout) ([]vk.DescriptorSet, error) {
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		PNext:              nil,
		DescriptorPool:     pool,
		DescriptorSetCount: uint32(len(layouts)),
		PSetLayouts:        layouts,
	}
	sets := make([]vk.DescriptorSet, len(layouts))
	if err := vk.Error(vk.AllocateDescriptorSets(device, &allocInfo, &sets[0])); err != nil {
		return nil, err
	}
	return sets, nil
}

// VKBeginSingleTimeCommands allocates a primary command buffer and starts recording it for one submission.
func VKBeginSingleTimeCommands(device vk.Device, cmdPool vk.CommandPool) (vk.CommandBuffer, error) {
	buffers, err := VKSAllocateCommandBuffersPrimary(device, cmdPool, 1)
	if err != nil {
		return nil, fmt.Errorf("allocate single time command buffer: %w", err)
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := vk.Error(vk.BeginCommandBuffer(buffers[0], &beginInfo)); err != nil {
		vk.FreeCommandBuffers(device, cmdPool, 1, buffers)
		return nil, fmt.Errorf("begin single time command buffer: %w", err)
	}
	return buffers[0], nil
}

// VKEndSingleTimeCommands ends recording, submits to queue, waits for the queue to drain and frees the buffer.
func VKEndSingleTimeCommands(device vk.Device, cmdPool vk.CommandPool, queue vk.Queue, cmdBuf vk.CommandBuffer) error {
	buffers := []vk.CommandBuffer{cmdBuf}
	defer vk.FreeCommandBuffers(device, cmdPool, 1, buffers)

	if err := vk.Error(vk.EndCommandBuffer(cmdBuf)); err != nil {
		return fmt.Errorf("end single time command buffer: %w", err)
	}
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    buffers,
	}
	if err := vk.Error(vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, nil)); err != nil {
		return fmt.Errorf("submit single time command buffer: %w", err)
	}
	if err := vk.Error(vk.QueueWaitIdle(queue)); err != nil {
		return fmt.Errorf("wait for single time command buffer: %w", err)
	}
	return nil
}

// VKSWaitForFence waits without timeout on a single fence.
func VKSWaitForFence(device vk.Device, fence vk.Fence) error {
	return vk.Error(vk.WaitForFences(device, 1, []vk.Fence{fence}, vk.True, math.MaxUint64))
}
