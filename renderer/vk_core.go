package renderer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"unsafe"

	com "shuriken/common"
	"shuriken/driver"
	"shuriken/model"
	"shuriken/shaders"
	"shuriken/texture"

	vk "github.com/goki/vulkan"
)

const DEFAULT_FRAMES_IN_FLIGHT = 2

// ErrInitialization marks failures that happen before the first frame: window, instance, device or any other
// resource the demo cannot run without.
var ErrInitialization = errors.New("renderer initialization failed")

// Options describes everything the core uploads once during setup.
type Options struct {
	Title          string
	Width, Height  int32
	Validation     bool
	FramesInFlight int

	Mesh     *model.Mesh
	Program  shaders.Program
	Compiler shaders.Compiler
	// Texture is sampled at binding 1 when Program is textured. A nil texture uses the white fallback.
	Texture *texture.Image
}

type Core struct {
	opts Options

	// OS/Window level
	Win    *com.Window
	device *com.Device

	// Target level
	swapChain *com.SwapChain
	resized   bool

	// Drawing infrastructure level
	renderPass     vk.RenderPass
	descriptors    *DescriptorProvisioner
	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline
	commandPool    vk.CommandPool

	// Frame level
	framesInFlight     int
	commandBuffers     []vk.CommandBuffer
	currentFrameIdx    int
	imageAvailableSems []vk.Semaphore
	renderFinishedSems []vk.Semaphore
	inFlightFens       *vkFences

	// Data level
	vertexBuffer         *com.Buffer
	uniformBuffers       []*com.Buffer
	uniformBuffersMapped []unsafe.Pointer

	tex *Texture

	released bool
}

// NewCore runs the whole setup sequence. Failures of the window, device and swap chain as well as any panic raised
// by the setup steps are returned wrapping ErrInitialization, with everything created so far released again.
// Shader or pipeline failures are not among them: the core is returned without a pipeline and only clears.
func NewCore(opts Options) (_ *Core, err error) {
	if opts.Mesh == nil {
		return nil, fmt.Errorf("%w: no mesh given", ErrInitialization)
	}
	if opts.FramesInFlight <= 0 {
		opts.FramesInFlight = DEFAULT_FRAMES_IN_FLIGHT
	}
	c := &Core{opts: opts, framesInFlight: opts.FramesInFlight}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInitialization, r)
		}
		if err != nil {
			c.Release()
		}
	}()

	if c.Win, err = com.NewWindow(opts.Title, opts.Width, opts.Height, opts.Validation); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitialization, err)
	}
	if c.device, err = com.NewDevice(c.Win); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitialization, err)
	}
	if c.swapChain, err = com.NewSwapChain(c.device, c.Win); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitialization, err)
	}

	c.createRenderPass()
	c.createDescriptorSetLayout()
	c.createPipelineLayout()
	if err := c.createGraphicsPipeline(context.Background()); err != nil {
		log.Printf("Shader program unavailable, frames will only be cleared: %v", err)
	}
	c.createFrameBuffers()
	c.createCommandPool()
	c.createVertexBuffer()
	if opts.Program.Textured {
		c.createTexture()
	}
	c.createUniformBuffers()
	c.createDescriptorSets()
	c.createCommandBuffers()
	c.createSyncObjects()
	log.Printf("Render core ready: %d vertices, %d frames in flight, pipeline: %t", opts.Mesh.VertexCount(), c.framesInFlight, c.HasPipeline())
	return c, nil
}

// HasPipeline reports whether the shader program could be built.
func (c *Core) HasPipeline() bool {
	return c.pipeline != nil
}

// Draw renders one frame. An out of date swap chain is recreated and the frame skipped.
func (c *Core) Draw(f driver.Frame) error {
	if c.released {
		return errors.New("draw on released render core")
	}
	if c.swapChain == nil {
		if err := c.recreateSwapChain(); err != nil {
			return err
		}
	}
	frame := c.currentFrameIdx
	if err := c.inFlightFens.Wait(frame); err != nil {
		return fmt.Errorf("wait for frame fence: %w", err)
	}

	var imgIdx uint32
	result := vk.AcquireNextImage(c.device.Device, c.swapChain.Handle, math.MaxUint64, c.imageAvailableSems[frame], nil, &imgIdx)
	if result == vk.ErrorOutOfDate {
		return c.recreateSwapChain()
	} else if result != vk.Success && result != vk.Suboptimal {
		return fmt.Errorf("acquire swap chain image: %w", vk.Error(result))
	}

	c.updateUniformBuffer(frame, f)

	cmd := c.commandBuffers[frame]
	record := func() error {
		vk.ResetCommandBuffer(cmd, 0)
		return c.recordDrawCommands(cmd, imgIdx, f)
	}
	submit := func(fence vk.Fence) error {
		submitInfo := vk.SubmitInfo{
			SType:              vk.StructureTypeSubmitInfo,
			WaitSemaphoreCount: 1,
			PWaitSemaphores:    []vk.Semaphore{c.imageAvailableSems[frame]},
			PWaitDstStageMask: []vk.PipelineStageFlags{
				vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			},
			CommandBufferCount:   1,
			PCommandBuffers:      []vk.CommandBuffer{cmd},
			SignalSemaphoreCount: 1,
			PSignalSemaphores:    []vk.Semaphore{c.renderFinishedSems[frame]},
		}
		if err := vk.Error(vk.QueueSubmit(c.device.GraphicsQ, 1, []vk.SubmitInfo{submitInfo}, fence)); err != nil {
			return fmt.Errorf("submit command buffer: %w", err)
		}
		return nil
	}
	if err := submitFrame(c.inFlightFens, frame, record, submit); err != nil {
		return err
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.renderFinishedSems[frame]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{c.swapChain.Handle},
		PImageIndices:      []uint32{imgIdx},
	}
	result = vk.QueuePresent(c.device.PresentQ, &presentInfo)
	c.currentFrameIdx = (c.currentFrameIdx + 1) % c.framesInFlight
	if result == vk.ErrorOutOfDate || result == vk.Suboptimal || c.resized {
		c.resized = false
		return c.recreateSwapChain()
	} else if result != vk.Success {
		return fmt.Errorf("present swap chain image: %w", vk.Error(result))
	}
	return nil
}

// Resize marks the swap chain for recreation after the next present.
func (c *Core) Resize() {
	c.resized = true
}

// Release waits for the device and destroys everything in reverse creation order. It is safe to call more than
// once and on a partially initialized core.
func (c *Core) Release() {
	if c == nil || c.released {
		return
	}
	c.released = true
	if c.device != nil && c.device.Device != nil {
		d := c.device.Device
		// We need to wait for the last asynchronous call to finish before tear down
		c.device.WaitIdle()

		c.destroySwapChain()
		c.destroyTexture()
		for i := range c.uniformBuffers {
			if i < len(c.uniformBuffersMapped) {
				vk.UnmapMemory(d, c.uniformBuffers[i].DeviceMem)
			}
			com.DestroyBuffer(c.device, c.uniformBuffers[i])
		}
		c.uniformBuffers, c.uniformBuffersMapped = nil, nil
		com.DestroyBuffer(c.device, c.vertexBuffer)
		c.vertexBuffer = nil
		if c.descriptors != nil {
			c.descriptors.Destroy()
		}

		for i := range c.imageAvailableSems {
			vk.DestroySemaphore(d, c.imageAvailableSems[i], nil)
		}
		for i := range c.renderFinishedSems {
			vk.DestroySemaphore(d, c.renderFinishedSems[i], nil)
		}
		if c.inFlightFens != nil {
			c.inFlightFens.Destroy()
		}
		if c.commandPool != nil {
			vk.DestroyCommandPool(d, c.commandPool, nil)
		}
		if c.pipeline != nil {
			vk.DestroyPipeline(d, c.pipeline, nil)
		}
		if c.pipelineLayout != nil {
			vk.DestroyPipelineLayout(d, c.pipelineLayout, nil)
		}
		if c.renderPass != nil {
			vk.DestroyRenderPass(d, c.renderPass, nil)
		}
		c.device.Destroy()
	}
	if c.Win != nil {
		c.Win.Destroy()
	}
	log.Println("Released render core")
}

func (c *Core) destroySwapChain() {
	if c.swapChain != nil {
		c.swapChain.Destroy(c.device)
		c.swapChain = nil
	}
}

func (c *Core) recreateSwapChain() error {
	c.device.WaitIdle()
	c.destroySwapChain()
	sc, err := com.NewSwapChain(c.device, c.Win)
	if err != nil {
		return fmt.Errorf("recreate swap chain: %w", err)
	}
	if err := sc.CreateFrameBuffers(c.device, c.renderPass); err != nil {
		sc.Destroy(c.device)
		return fmt.Errorf("recreate frame buffers: %w", err)
	}
	c.swapChain = sc
	return nil
}

func (c *Core) createFrameBuffers() {
	if err := c.swapChain.CreateFrameBuffers(c.device, c.renderPass); err != nil {
		log.Panicf("Failed to create frame buffers: %v", err)
	}
}

func (c *Core) createCommandPool() {
	commandPool, err := com.VKSCreateCommandPool(
		c.device.Device,
		vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		*c.device.QFamilies.GraphicsFamily,
	)
	if err != nil {
		log.Panicf("Failed to create command pool: %v", err)
	}
	log.Printf("Successfully created command pool")
	c.commandPool = commandPool
}

func (c *Core) createCommandBuffers() {
	buffers, err := com.VKSAllocateCommandBuffersPrimary(c.device.Device, c.commandPool, uint32(c.framesInFlight))
	if err != nil {
		log.Panicf("Failed to allocate command buffers: %v", err)
	}
	log.Printf("Successfully allocated %d command buffers", len(buffers))
	c.commandBuffers = buffers
}

func (c *Core) createSyncObjects() {
	semCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	for i := 0; i < c.framesInFlight; i++ {
		ias, err := com.VKCreateSemaphore(c.device.Device, &semCreateInfo, nil)
		if err != nil {
			log.Panicf("Failed to create image available semaphore: %v", err)
		}
		c.imageAvailableSems = append(c.imageAvailableSems, ias)
		rfs, err := com.VKCreateSemaphore(c.device.Device, &semCreateInfo, nil)
		if err != nil {
			log.Panicf("Failed to create render finished semaphore: %v", err)
		}
		c.renderFinishedSems = append(c.renderFinishedSems, rfs)
	}
	fences, err := newVkFences(c.device.Device, c.framesInFlight)
	if err != nil {
		log.Panicf("Failed to create in flight fences: %v", err)
	}
	c.inFlightFens = fences
}

func (c *Core) createVertexBuffer() {
	m := c.opts.Mesh
	buf, err := com.CreateDeviceLocalBuffer(c.device, c.commandPool, m.Bytes(), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		log.Panicf("Failed to upload vertex buffer for %q: %v", m.Name, err)
	}
	log.Printf("Created vertex buffer (\"%s\": %d vertices, layout %s, %d Byte)", m.Name, m.VertexCount(), m.Layout, buf.Size)
	c.vertexBuffer = buf
}

func (c *Core) createUniformBuffers() {
	uboBufSize := vk.DeviceSize(model.SizeOfTransformUBO())
	memProps := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	for i := 0; i < c.framesInFlight; i++ {
		uboBuf, err := com.CreateBuffer(c.device, uboBufSize, vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), memProps)
		if err != nil {
			log.Panicf("Failed to create uniform buffer [%d]: %v", i, err)
		}
		c.uniformBuffers = append(c.uniformBuffers, uboBuf)
		mapped, err := com.VkMapMemory(c.device.Device, uboBuf.DeviceMem, 0, uboBufSize, 0)
		if err != nil {
			log.Panicf("Failed to map uniform buffer [%d]: %v", i, err)
		}
		c.uniformBuffersMapped = append(c.uniformBuffersMapped, mapped)
	}
}

func (c *Core) updateUniformBuffer(frameIdx int, f driver.Frame) {
	ubo := model.TransformUBO{Transform: f.Transform}
	vk.Memcopy(c.uniformBuffersMapped[frameIdx], ubo.Bytes())
}

// Drawing and derivative functionality

func (c *Core) recordDrawCommands(buffer vk.CommandBuffer, imageIdx uint32, f driver.Frame) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if err := vk.Error(vk.BeginCommandBuffer(buffer, &beginInfo)); err != nil {
		return fmt.Errorf("begin recording command buffer: %w", err)
	}

	extent := c.swapChain.Extent
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  c.renderPass,
		Framebuffer: c.swapChain.FrameBuffers[imageIdx],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{vk.NewClearValue(f.ClearColor[:])},
	}
	vk.CmdBeginRenderPass(buffer, &renderPassInfo, vk.SubpassContentsInline)

	if c.pipeline != nil {
		vk.CmdBindPipeline(buffer, vk.PipelineBindPointGraphics, c.pipeline)
		vk.CmdSetViewport(buffer, 0, 1, []vk.Viewport{flippedViewport(extent)})
		vk.CmdSetScissor(buffer, 0, 1, []vk.Rect2D{{Offset: vk.Offset2D{X: 0, Y: 0}, Extent: extent}})
		vk.CmdBindDescriptorSets(buffer, vk.PipelineBindPointGraphics, c.pipelineLayout, 0, 1,
			[]vk.DescriptorSet{c.descriptors.Set(c.currentFrameIdx)}, 0, nil)
		vk.CmdBindVertexBuffers(buffer, 0, 1, []vk.Buffer{c.vertexBuffer.Handle}, []vk.DeviceSize{0})
		vk.CmdDraw(buffer, f.VertexCount, 1, 0, 0)
	}

	vk.CmdEndRenderPass(buffer)
	if err := vk.Error(vk.EndCommandBuffer(buffer)); err != nil {
		return fmt.Errorf("record command buffer: %w", err)
	}
	return nil
}

// flippedViewport covers the whole extent with a negative height so +Y points up in clip space.
func flippedViewport(extent vk.Extent2D) vk.Viewport {
	return vk.Viewport{
		X:        0,
		Y:        float32(extent.Height),
		Width:    float32(extent.Width),
		Height:   -float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}
