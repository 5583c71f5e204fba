package common

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"
)

// This Code section contains allocation helper functions. It aims to simplify the allocation of buffers and
// images on the selected device.

var ErrNotHostVisible = errors.New("buffer memory is not host visible and coherent")

type Buffer struct {
	Handle    vk.Buffer
	DeviceMem vk.DeviceMemory
	Size      vk.DeviceSize
	Usage     vk.BufferUsageFlags
	props     vk.MemoryPropertyFlags
}

const hostVisibleCoherent = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

// CreateBuffer creates a buffer of the given size and binds freshly allocated memory with props to it.
func CreateBuffer(dc *Device, size vk.DeviceSize, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*Buffer, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	buf, err := VkCreateBuffer(dc.Device, &bufferInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("create buffer of %d bytes: %w", size, err)
	}

	bufRequirements := ReadBufferMemoryRequirements(dc.Device, buf)
	memType, err := MemoryTypeIndex(dc.PdMemoryProps, bufRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(dc.Device, buf, nil)
		return nil, err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  bufRequirements.Size,
		MemoryTypeIndex: memType,
	}
	deviceMem, err := VkAllocateMemory(dc.Device, &allocInfo, nil)
	if err != nil {
		vk.DestroyBuffer(dc.Device, buf, nil)
		return nil, fmt.Errorf("allocate buffer memory: %w", err)
	}
	if err := VkBindBufferMemory(dc.Device, buf, deviceMem, 0); err != nil {
		vk.DestroyBuffer(dc.Device, buf, nil)
		vk.FreeMemory(dc.Device, deviceMem, nil)
		return nil, fmt.Errorf("bind buffer memory: %w", err)
	}
	return &Buffer{
		Handle:    buf,
		DeviceMem: deviceMem,
		Size:      size,
		Usage:     usage,
		props:     props,
	}, nil
}

// Write maps the buffer memory, copies payload to offset 0 and unmaps again. The buffer has to be host visible
// and coherent and large enough to hold payload.
func (b *Buffer) Write(dc *Device, payload []byte) error {
	if b.props&hostVisibleCoherent != hostVisibleCoherent {
		return ErrNotHostVisible
	}
	if vk.DeviceSize(len(payload)) > b.Size {
		return fmt.Errorf("payload of %d bytes exceeds buffer size %d", len(payload), b.Size)
	}
	if len(payload) == 0 {
		return nil
	}
	pData, err := VkMapMemory(dc.Device, b.DeviceMem, 0, vk.DeviceSize(len(payload)), 0)
	if err != nil {
		return fmt.Errorf("map buffer memory: %w", err)
	}
	vk.Memcopy(pData, payload)
	vk.UnmapMemory(dc.Device, b.DeviceMem)
	return nil
}

// CreateStagingBuffer creates a host visible transfer source filled with payload.
func CreateStagingBuffer(dc *Device, payload []byte) (*Buffer, error) {
	staging, err := CreateBuffer(dc, vk.DeviceSize(len(payload)), vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), hostVisibleCoherent)
	if err != nil {
		return nil, err
	}
	if err := staging.Write(dc, payload); err != nil {
		DestroyBuffer(dc, staging)
		return nil, err
	}
	return staging, nil
}

// CreateDeviceLocalBuffer uploads payload into a device local buffer with the given usage through a staging buffer.
func CreateDeviceLocalBuffer(dc *Device, cmdPool vk.CommandPool, payload []byte, usage vk.BufferUsageFlags) (*Buffer, error) {
	staging, err := CreateStagingBuffer(dc, payload)
	if err != nil {
		return nil, err
	}
	defer DestroyBuffer(dc, staging)

	dst, err := CreateBuffer(dc, staging.Size, usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit), vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	cmdBuf, err := VKBeginSingleTimeCommands(dc.Device, cmdPool)
	if err != nil {
		DestroyBuffer(dc, dst)
		return nil, err
	}
	vk.CmdCopyBuffer(cmdBuf, staging.Handle, dst.Handle, 1, []vk.BufferCopy{{Size: staging.Size}})
	if err := VKEndSingleTimeCommands(dc.Device, cmdPool, dc.GraphicsQ, cmdBuf); err != nil {
		DestroyBuffer(dc, dst)
		return nil, err
	}
	return dst, nil
}

// DestroyBuffer releases handle and memory, a nil buffer is ignored.
func DestroyBuffer(dc *Device, buffer *Buffer) {
	if buffer == nil {
		return
	}
	vk.DestroyBuffer(dc.Device, buffer.Handle, nil)
	vk.FreeMemory(dc.Device, buffer.DeviceMem, nil)
}

// Image is a 2D single layer image with its backing memory.
type Image struct {
	Handle    vk.Image
	Mem       vk.DeviceMemory
	Format    vk.Format
	Width     uint32
	Height    uint32
	MipLevels uint32
}

// CreateImage creates an optimal or linear tiled 2D image with mipLevels levels and binds memory with props.
func CreateImage(dc *Device, w uint32, h uint32, mipLevels uint32, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, props vk.MemoryPropertyFlags) (*Image, error) {
	imageInfo := &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  w,
			Height: h,
			Depth:  1,
		},
		MipLevels:     mipLevels,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        tiling,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	img, err := VkCreateImage(dc.Device, imageInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("create %dx%d image: %w", w, h, err)
	}

	memRequirements := ReadImageMemoryRequirements(dc.Device, img)
	memType, err := MemoryTypeIndex(dc.PdMemoryProps, memRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyImage(dc.Device, img, nil)
		return nil, err
	}
	allocInfo := &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memType,
	}
	imgMemory, err := VkAllocateMemory(dc.Device, allocInfo, nil)
	if err != nil {
		vk.DestroyImage(dc.Device, img, nil)
		return nil, fmt.Errorf("allocate image memory: %w", err)
	}
	if err := VkBindImageMemory(dc.Device, img, imgMemory, 0); err != nil {
		vk.DestroyImage(dc.Device, img, nil)
		vk.FreeMemory(dc.Device, imgMemory, nil)
		return nil, fmt.Errorf("bind image memory: %w", err)
	}
	return &Image{
		Handle:    img,
		Mem:       imgMemory,
		Format:    format,
		Width:     w,
		Height:    h,
		MipLevels: mipLevels,
	}, nil
}

// DestroyImage releases handle and memory, a nil image is ignored.
func DestroyImage(dc *Device, img *Image) {
	if img == nil {
		return
	}
	vk.DestroyImage(dc.Device, img.Handle, nil)
	vk.FreeMemory(dc.Device, img.Mem, nil)
}

// MemoryTypeIndex finds the first memory type allowed by typeFilter that has all propFlags set.
func MemoryTypeIndex(memProps vk.PhysicalDeviceMemoryProperties, typeFilter uint32, propFlags vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < memProps.MemoryTypeCount && i < uint32(len(memProps.MemoryTypes)); i++ {
		ofType := typeFilter&(1<<i) != 0
		hasProperties := memProps.MemoryTypes[i].PropertyFlags&propFlags == propFlags
		if ofType && hasProperties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no memory type in filter %032b with properties %b", typeFilter, propFlags)
}
