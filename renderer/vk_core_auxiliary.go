package renderer

import (
	com "shuriken/common"

	vk "github.com/goki/vulkan"
)

// These auxiliary functions abstract from the raw Vulkan API by assuming some reasonable defaults where possible.
// They differ from the VKS functions in common by recording into a command buffer handed to them instead of
// owning one.

// singleTimeCommands records fn into a fresh command buffer, submits it to the graphics queue and waits for it.
func (c *Core) singleTimeCommands(fn func(cmdBuf vk.CommandBuffer)) error {
	cmdBuf, err := com.VKBeginSingleTimeCommands(c.device.Device, c.commandPool)
	if err != nil {
		return err
	}
	fn(cmdBuf)
	return com.VKEndSingleTimeCommands(c.device.Device, c.commandPool, c.device.GraphicsQ, cmdBuf)
}

func colorRange(baseMip, levels uint32) vk.ImageSubresourceRange {
	return vk.ImageSubresourceRange{
		AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
		BaseMipLevel:   baseMip,
		LevelCount:     levels,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}
}

func colorLayers(mip uint32) vk.ImageSubresourceLayers {
	return vk.ImageSubresourceLayers{
		AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
		MipLevel:       mip,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}
}

// layoutTransition holds access masks and stages for the layout changes of a texture upload.
type layoutTransition struct {
	srcAccess, dstAccess vk.AccessFlags
	srcStage, dstStage   vk.PipelineStageFlags
}

func transitionFor(old, new vk.ImageLayout) (layoutTransition, bool) {
	switch {
	case old == vk.ImageLayoutUndefined && new == vk.ImageLayoutTransferDstOptimal:
		return layoutTransition{
			srcAccess: 0,
			dstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		}, true
	case old == vk.ImageLayoutTransferDstOptimal && new == vk.ImageLayoutTransferSrcOptimal:
		return layoutTransition{
			srcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			dstAccess: vk.AccessFlags(vk.AccessTransferReadBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		}, true
	case old == vk.ImageLayoutTransferSrcOptimal && new == vk.ImageLayoutShaderReadOnlyOptimal:
		return layoutTransition{
			srcAccess: vk.AccessFlags(vk.AccessTransferReadBit),
			dstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		}, true
	case old == vk.ImageLayoutTransferDstOptimal && new == vk.ImageLayoutShaderReadOnlyOptimal:
		return layoutTransition{
			srcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			dstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		}, true
	}
	return layoutTransition{}, false
}

// transitionImageLayout records a barrier moving levels [baseMip, baseMip+levels) from old to new. Unsupported
// transitions are a programming error.
func transitionImageLayout(cmdBuf vk.CommandBuffer, img vk.Image, baseMip, levels uint32, old, new vk.ImageLayout) {
	t, ok := transitionFor(old, new)
	if !ok {
		panic("unsupported image layout transition")
	}
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       t.srcAccess,
		DstAccessMask:       t.dstAccess,
		OldLayout:           old,
		NewLayout:           new,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img,
		SubresourceRange:    colorRange(baseMip, levels),
	}
	vk.CmdPipelineBarrier(cmdBuf, t.srcStage, t.dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func copyBufferToImage(cmdBuf vk.CommandBuffer, buffer vk.Buffer, img vk.Image, w uint32, h uint32) {
	region := vk.BufferImageCopy{
		BufferOffset:     0,
		ImageSubresource: colorLayers(0),
		ImageOffset:      vk.Offset3D{X: 0, Y: 0, Z: 0},
		ImageExtent:      vk.Extent3D{Width: w, Height: h, Depth: 1},
	}
	vk.CmdCopyBufferToImage(cmdBuf, buffer, img, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
}

// mipExtent halves a dimension for the next level without going below 1.
func mipExtent(v int32) int32 {
	if v > 1 {
		return v / 2
	}
	return 1
}

// generateMipmaps expects every level in TransferDstOptimal with level 0 filled. Each level is blitted down into
// the next, all levels end up in ShaderReadOnlyOptimal.
func generateMipmaps(cmdBuf vk.CommandBuffer, img vk.Image, w, h uint32, levels uint32) {
	mipW, mipH := int32(w), int32(h)
	for i := uint32(1); i < levels; i++ {
		transitionImageLayout(cmdBuf, img, i-1, 1, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutTransferSrcOptimal)
		blit := vk.ImageBlit{
			SrcSubresource: colorLayers(i - 1),
			SrcOffsets:     [2]vk.Offset3D{{X: 0, Y: 0, Z: 0}, {X: mipW, Y: mipH, Z: 1}},
			DstSubresource: colorLayers(i),
			DstOffsets:     [2]vk.Offset3D{{X: 0, Y: 0, Z: 0}, {X: mipExtent(mipW), Y: mipExtent(mipH), Z: 1}},
		}
		vk.CmdBlitImage(cmdBuf,
			img, vk.ImageLayoutTransferSrcOptimal,
			img, vk.ImageLayoutTransferDstOptimal,
			1, []vk.ImageBlit{blit}, vk.FilterLinear)
		transitionImageLayout(cmdBuf, img, i-1, 1, vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
		mipW, mipH = mipExtent(mipW), mipExtent(mipH)
	}
	// the last level was only ever written to
	transitionImageLayout(cmdBuf, img, levels-1, 1, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
}
