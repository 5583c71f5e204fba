package renderer

import (
	"fmt"
	"log"

	com "shuriken/common"
	"shuriken/shaders"

	vk "github.com/goki/vulkan"
)

// loadShaderStage turns compiled SPIR-V into a shader module and the stage info binding it to a pipeline. The
// module is only a container to move the code onto the device and can be deleted right after pipeline creation.
func loadShaderStage(d vk.Device, stage shaders.Stage, code []byte) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	mod, err := createShaderModule(d, code)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, fmt.Errorf("%s shader module: %w", stage, err)
	}
	log.Printf("Created %s shader module (%d Byte)", stage, len(code))
	stageInfo := vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  shaderStageBit(stage),
		Module: mod,
		PName:  com.TerminatedStr(shaders.EntryPoint),
	}
	return mod, stageInfo, nil
}

// DeleteShaderMod discards a shader module once the pipeline using it exists.
func DeleteShaderMod(d vk.Device, mod vk.ShaderModule) {
	if mod != nil {
		vk.DestroyShaderModule(d, mod, nil)
	}
}

func shaderStageBit(stage shaders.Stage) vk.ShaderStageFlagBits {
	if stage == shaders.StageFragment {
		return vk.ShaderStageFragmentBit
	}
	return vk.ShaderStageVertexBit
}

func createShaderModule(d vk.Device, code []byte) (vk.ShaderModule, error) {
	if err := shaders.ValidateSPIRV(code); err != nil {
		return nil, err
	}
	words, err := com.AsUint32Arr(code)
	if err != nil {
		return nil, err
	}
	createInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    words,
	}
	return com.VKCreateShaderModule(d, createInfo, nil)
}
