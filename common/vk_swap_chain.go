package common

import (
	"errors"
	"fmt"
	"log"
	"math"

	vk "github.com/goki/vulkan"
)

// SwapChain owns the presentable images of the window surface, their views and the frame buffers bound to them.
type SwapChain struct {
	supDetails SwapChainDetails
	Handle     vk.Swapchain

	Format      vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D

	Images   []vk.Image
	ImgViews []vk.ImageView

	FrameBuffers []vk.Framebuffer
}

// NewSwapChain creates a swap chain matching the current drawable size of the window. Partially created objects
// are destroyed again on error.
func NewSwapChain(dc *Device, w *Window) (*SwapChain, error) {
	sc := &SwapChain{}
	if err := sc.chooseConfiguration(dc, w); err != nil {
		return nil, err
	}
	err := sc.createSwapChainHandle(dc, w)
	if err == nil {
		err = sc.readImages(dc)
	}
	if err == nil {
		err = sc.createImageViews(dc)
	}
	if err != nil {
		sc.Destroy(dc)
		return nil, err
	}
	return sc, nil
}

// CreateFrameBuffers creates one color only frame buffer per swap chain image.
func (sc *SwapChain) CreateFrameBuffers(dc *Device, renderPass vk.RenderPass) error {
	sc.FrameBuffers = make([]vk.Framebuffer, 0, len(sc.ImgViews))
	for i := range sc.ImgViews {
		framebufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{sc.ImgViews[i]},
			Width:           sc.Extent.Width,
			Height:          sc.Extent.Height,
			Layers:          1,
		}
		fb, err := VkCreateFrameBuffer(dc.Device, &framebufferInfo, nil)
		if err != nil {
			return fmt.Errorf("create frame buffer [%d]: %w", i, err)
		}
		sc.FrameBuffers = append(sc.FrameBuffers, fb)
	}
	log.Printf("Created %d frame buffers", len(sc.FrameBuffers))
	return nil
}

func (sc *SwapChain) chooseConfiguration(dc *Device, w *Window) error {
	sc.supDetails = ReadSwapChainSupportDetails(dc.PhysicalDevice, w.Surf)
	if !sc.supDetails.Adequate() {
		return errors.New("surface reports no formats or present modes")
	}
	sc.Format = sc.supDetails.selectSwapSurfaceFormat(vk.FormatB8g8r8a8Unorm, vk.ColorSpaceSrgbNonlinear)
	sc.PresentMode = sc.supDetails.selectSwapPresentMode(vk.PresentModeMailbox)
	width, height := w.DrawableSize()
	sc.Extent = chooseSwapExtent(sc.supDetails.capabilities, width, height)
	if sc.Extent.Width == 0 || sc.Extent.Height == 0 {
		return fmt.Errorf("surface extent %dx%d is empty", sc.Extent.Width, sc.Extent.Height)
	}
	return nil
}

func (sc *SwapChain) createSwapChainHandle(dc *Device, w *Window) error {
	imgCount := chooseImageCount(sc.supDetails.capabilities)

	// Images are shared between two families only when graphics and present queues differ.
	sharingMode := vk.SharingModeExclusive
	var qFamIndices []uint32
	if !dc.QFamilies.Shared() {
		sharingMode = vk.SharingModeConcurrent
		qFamIndices = []uint32{*dc.QFamilies.GraphicsFamily, *dc.QFamilies.PresentFamily}
	}

	createInfo := &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               w.Surf,
		MinImageCount:         imgCount,
		ImageFormat:           sc.Format.Format,
		ImageColorSpace:       sc.Format.ColorSpace,
		ImageExtent:           sc.Extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharingMode,
		QueueFamilyIndexCount: uint32(len(qFamIndices)),
		PQueueFamilyIndices:   qFamIndices,
		PreTransform:          sc.supDetails.capabilities.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           sc.PresentMode,
		Clipped:               vk.True,
		OldSwapchain:          nil,
	}
	handle, err := VkCreateSwapChain(dc.Device, createInfo, nil)
	if err != nil {
		return fmt.Errorf("create swap chain: %w", err)
	}
	sc.Handle = handle
	log.Printf("Created swap chain %dx%d with %d images, format %d, present mode %d",
		sc.Extent.Width, sc.Extent.Height, imgCount, sc.Format.Format, sc.PresentMode)
	return nil
}

func (sc *SwapChain) readImages(dc *Device) error {
	imgs, err := ReadSwapChainImages(dc.Device, sc.Handle)
	if err != nil {
		return err
	}
	sc.Images = imgs
	return nil
}

func (sc *SwapChain) createImageViews(dc *Device) error {
	sc.ImgViews = make([]vk.ImageView, 0, len(sc.Images))
	for i := range sc.Images {
		view, err := VKSCreate2DImageView(dc.Device, sc.Images[i], sc.Format.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit), 1)
		if err != nil {
			return fmt.Errorf("create swap chain image view [%d]: %w", i, err)
		}
		sc.ImgViews = append(sc.ImgViews, view)
	}
	return nil
}

// Destroy releases frame buffers, image views and the swap chain itself. The images belong to the swap chain.
func (sc *SwapChain) Destroy(dc *Device) {
	for i := range sc.FrameBuffers {
		vk.DestroyFramebuffer(dc.Device, sc.FrameBuffers[i], nil)
	}
	sc.FrameBuffers = nil
	for i := range sc.ImgViews {
		vk.DestroyImageView(dc.Device, sc.ImgViews[i], nil)
	}
	sc.ImgViews = nil
	sc.Images = nil
	if sc.Handle != nil {
		vk.DestroySwapchain(dc.Device, sc.Handle, nil)
		sc.Handle = nil
	}
}

type SwapChainDetails struct {
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
}

// Adequate is true when the surface offers at least one format and one present mode.
func (s *SwapChainDetails) Adequate() bool {
	return len(s.formats) > 0 && len(s.presentModes) > 0
}

func (s *SwapChainDetails) selectSwapSurfaceFormat(desiredFormat vk.Format, desiredColorSpace vk.ColorSpace) vk.SurfaceFormat {
	for _, af := range s.formats {
		if af.Format == desiredFormat && af.ColorSpace == desiredColorSpace {
			return af
		}
	}
	fallbackFormat := s.formats[0]
	log.Printf("Did not find preferred SurfaceFormat, selecting first one available. (%v)", fallbackFormat)
	return fallbackFormat
}

func (s *SwapChainDetails) selectSwapPresentMode(desiredMode vk.PresentMode) vk.PresentMode {
	for _, pm := range s.presentModes {
		if pm == desiredMode {
			return pm
		}
	}
	return vk.PresentModeFifo
}

// chooseSwapExtent takes the surface's current extent unless the surface leaves it to us (0xFFFFFFFF), in which
// case the drawable size is clamped into the supported range.
func chooseSwapExtent(caps vk.SurfaceCapabilities, drawableW int32, drawableH int32) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampU32(uint32(max(drawableW, 0)), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampU32(uint32(max(drawableH, 0)), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image more than the minimum, a MaxImageCount of 0 means unbounded.
func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	imgCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imgCount > caps.MaxImageCount {
		imgCount = caps.MaxImageCount
	}
	return imgCount
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func checkSwapChainAdequacy(pd vk.PhysicalDevice, surface vk.Surface) bool {
	scDetails := ReadSwapChainSupportDetails(pd, surface)
	return scDetails.Adequate()
}
