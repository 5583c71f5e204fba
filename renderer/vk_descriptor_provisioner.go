package renderer

import (
	"fmt"
	"log"

	com "shuriken/common"
	"shuriken/model"
	"shuriken/shaders"

	vk "github.com/goki/vulkan"
)

// DescriptorProvisioner owns the single descriptor set layout of the demo, its pool and one set per frame in
// flight. Binding 0 is the transform uniform buffer, binding 1 the texture sampler of textured programs.
type DescriptorProvisioner struct {
	device   vk.Device
	textured bool

	descriptorSetLayout vk.DescriptorSetLayout
	descriptorPool      vk.DescriptorPool
	descriptorSets      []vk.DescriptorSet
}

func NewDescriptorProvisioner(device vk.Device, textured bool) *DescriptorProvisioner {
	return &DescriptorProvisioner{
		device:   device,
		textured: textured,
	}
}

func (dp *DescriptorProvisioner) Layout() vk.DescriptorSetLayout {
	return dp.descriptorSetLayout
}

// Set returns the descriptor set used by frame i.
func (dp *DescriptorProvisioner) Set(i int) vk.DescriptorSet {
	return dp.descriptorSets[i]
}

func layoutBindings(textured bool) []vk.DescriptorSetLayoutBinding {
	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         shaders.TransformBinding,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
	}
	if textured {
		bindings = append(bindings, vk.DescriptorSetLayoutBinding{
			Binding:         shaders.TextureBinding,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		})
	}
	return bindings
}

func poolSizes(textured bool, frames uint32) []vk.DescriptorPoolSize {
	sizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: frames},
	}
	if textured {
		sizes = append(sizes, vk.DescriptorPoolSize{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: frames})
	}
	return sizes
}

func (dp *DescriptorProvisioner) createDescriptorSetLayout() error {
	bindings := layoutBindings(dp.textured)
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	dsl, err := com.VKCreateDescriptorSetLayout(dp.device, &layoutInfo, nil)
	if err != nil {
		return fmt.Errorf("create descriptor set layout: %w", err)
	}
	dp.descriptorSetLayout = dsl
	return nil
}

func (dp *DescriptorProvisioner) createDescriptorPool(frames int) error {
	sizes := poolSizes(dp.textured, uint32(frames))
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(frames),
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}
	pool, err := com.VKCreateDescriptorPool(dp.device, &poolInfo, nil)
	if err != nil {
		return fmt.Errorf("create descriptor pool: %w", err)
	}
	dp.descriptorPool = pool
	return nil
}

// createDescriptorSets allocates one set per uniform buffer and points it at that buffer and, for textured
// programs, at the texture.
func (dp *DescriptorProvisioner) createDescriptorSets(ubos []*com.Buffer, tex *Texture) error {
	if err := dp.createDescriptorPool(len(ubos)); err != nil {
		return err
	}
	layouts := make([]vk.DescriptorSetLayout, len(ubos))
	for i := range layouts {
		layouts[i] = dp.descriptorSetLayout
	}
	sets, err := com.VKSAllocateDescriptorSets(dp.device, dp.descriptorPool, layouts)
	if err != nil {
		return fmt.Errorf("allocate %d descriptor sets: %w", len(layouts), err)
	}
	dp.descriptorSets = sets

	for i := range sets {
		writes := []vk.WriteDescriptorSet{{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          sets[i],
			DstBinding:      shaders.TransformBinding,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			PBufferInfo: []vk.DescriptorBufferInfo{{
				Buffer: ubos[i].Handle,
				Offset: 0,
				Range:  vk.DeviceSize(model.SizeOfTransformUBO()),
			}},
		}}
		if dp.textured {
			writes = append(writes, vk.WriteDescriptorSet{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          sets[i],
				DstBinding:      shaders.TextureBinding,
				DescriptorCount: 1,
				DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
				PImageInfo: []vk.DescriptorImageInfo{{
					Sampler:     tex.Sampler,
					ImageView:   tex.View,
					ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
				}},
			})
		}
		vk.UpdateDescriptorSets(dp.device, uint32(len(writes)), writes, 0, nil)
	}
	log.Printf("Allocated %d descriptor sets (textured: %t)", len(sets), dp.textured)
	return nil
}

// Destroy frees pool (and with it the sets) and layout.
func (dp *DescriptorProvisioner) Destroy() {
	if dp.descriptorPool != nil {
		vk.DestroyDescriptorPool(dp.device, dp.descriptorPool, nil)
		dp.descriptorPool = nil
	}
	dp.descriptorSets = nil
	if dp.descriptorSetLayout != nil {
		vk.DestroyDescriptorSetLayout(dp.device, dp.descriptorSetLayout, nil)
		dp.descriptorSetLayout = nil
	}
}

func (c *Core) createDescriptorSetLayout() {
	c.descriptors = NewDescriptorProvisioner(c.device.Device, c.opts.Program.Textured)
	if err := c.descriptors.createDescriptorSetLayout(); err != nil {
		log.Panicf("Failed to create descriptor set layout: %v", err)
	}
}

func (c *Core) createDescriptorSets() {
	if err := c.descriptors.createDescriptorSets(c.uniformBuffers, c.tex); err != nil {
		log.Panicf("Failed to create descriptor sets: %v", err)
	}
}
