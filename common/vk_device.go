package common

import (
	"errors"
	"fmt"
	"log"

	vk "github.com/goki/vulkan"
)

var DEVICE_EXTENSIONS = []string{
	"VK_KHR_swapchain",
}

// MinAPIVersion is required for the negative viewport height used to flip clip space Y.
var MinAPIVersion = vk.MakeVersion(1, 1, 0)

// Device represents the interfacing objects between the SDL window, the Hardware running Vulkan
// and the rest of the rendering engine. Its main purpose is to encapsulate the corresponding objects
// to make the initialization and teardown of a given application neater.
type Device struct {
	PhysicalDevice vk.PhysicalDevice
	PdProps        vk.PhysicalDeviceProperties
	PdMemoryProps  vk.PhysicalDeviceMemoryProperties
	QFamilies      QueueFamilyIndices

	Device    vk.Device
	GraphicsQ vk.Queue
	PresentQ  vk.Queue
}

// NewDevice picks the best suitable GPU for the window's surface and creates the logical device and its queues.
func NewDevice(w *Window) (*Device, error) {
	dc := &Device{}
	if err := dc.selectPhysicalDevice(w.Inst, w.Surf); err != nil {
		return nil, err
	}
	if err := dc.createLogicalDevice(w.Layers); err != nil {
		dc.Destroy()
		return nil, err
	}
	return dc, nil
}

// Destroy destroys the logical device. It does not touch the window it was created for.
func (dc *Device) Destroy() {
	if dc.Device != nil {
		vk.DestroyDevice(dc.Device, nil)
		dc.Device = nil
	}
}

// WaitIdle blocks until the device finished all submitted work. Errors are only logged as this is called during
// teardown and resizes.
func (dc *Device) WaitIdle() {
	if dc.Device == nil {
		return
	}
	if err := vk.Error(vk.DeviceWaitIdle(dc.Device)); err != nil {
		log.Printf("Failed to wait for device idle: %v", err)
	}
}

func (dc *Device) selectPhysicalDevice(in vk.Instance, su vk.Surface) error {
	availableDevices, err := ReadPhysicalDevices(in)
	if err != nil {
		return err
	}
	var pd vk.PhysicalDevice
	best := -1
	for i := range availableDevices {
		props := ReadPhysicalDeviceProperties(availableDevices[i])
		log.Printf("Physical device\n%s", ToStringPhysicalDeviceTable(props, ReadQueueFamilies(availableDevices[i])))
		if err := isDeviceSuitable(availableDevices[i], props, su); err != nil {
			log.Printf("Skipping %s: %v", vk.ToString(props.DeviceName[:]), err)
			continue
		}
		if score := deviceScore(props); score > best {
			best = score
			pd = availableDevices[i]
		}
	}
	if pd == nil {
		return errors.New("no suitable physical device (GPU) found")
	}
	dc.PhysicalDevice = pd

	qf, err := findQueueFamilies(dc.PhysicalDevice, su)
	if err != nil {
		return fmt.Errorf("read queue families from selected device: %w", err)
	}
	dc.QFamilies = *qf
	dc.PdProps = ReadPhysicalDeviceProperties(dc.PhysicalDevice)
	dc.PdMemoryProps = ReadDeviceMemoryProperties(dc.PhysicalDevice)
	log.Printf("Selected physical device %s", vk.ToString(dc.PdProps.DeviceName[:]))
	return nil
}

// deviceScore ranks suitable devices, a discrete GPU wins over everything else.
func deviceScore(props vk.PhysicalDeviceProperties) int {
	switch props.DeviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 3
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 2
	case vk.PhysicalDeviceTypeVirtualGpu:
		return 1
	default:
		return 0
	}
}

func isDeviceSuitable(pd vk.PhysicalDevice, props vk.PhysicalDeviceProperties, su vk.Surface) error {
	if props.ApiVersion < MinAPIVersion {
		return fmt.Errorf("api version %s is below 1.1", vk.Version(props.ApiVersion).String())
	}
	if _, err := findQueueFamilies(pd, su); err != nil {
		return err
	}
	if err := checkDeviceExtensionSupport(pd, DEVICE_EXTENSIONS); err != nil {
		return err
	}
	if !checkSwapChainAdequacy(pd, su) {
		return errors.New("swap chain support inadequate")
	}
	log.Printf("%s optional features: %v", vk.ToString(props.DeviceName[:]), FeatureNames(ReadPhysicalDeviceFeatures(pd)))
	return nil
}

func (dc *Device) createLogicalDevice(layers []string) error {
	queueInfos, err := dc.QFamilies.toQueueCreateInfos()
	if err != nil {
		return err
	}
	deviceCreateInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     TerminatedStrs(layers),
		EnabledExtensionCount:   uint32(len(DEVICE_EXTENSIONS)),
		PpEnabledExtensionNames: TerminatedStrs(DEVICE_EXTENSIONS),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}
	dc.Device, err = VkCreateDevice(dc.PhysicalDevice, deviceCreateInfo, nil)
	if err != nil {
		return fmt.Errorf("create logical device: %w", err)
	}
	dc.GraphicsQ, err = VkGetDeviceQueue(dc.Device, dc.QFamilies.GraphicsFamily, 0)
	if err != nil {
		return fmt.Errorf("get graphics device queue: %w", err)
	}
	dc.PresentQ, err = VkGetDeviceQueue(dc.Device, dc.QFamilies.PresentFamily, 0)
	if err != nil {
		return fmt.Errorf("get present device queue: %w", err)
	}
	return nil
}

func checkDeviceExtensionSupport(pd vk.PhysicalDevice, requiredDeviceExt []string) error {
	supportedExtNames, err := ReadDeviceExtensionPropertyNames(pd)
	if err != nil {
		return err
	}
	if missing := Missing(requiredDeviceExt, supportedExtNames); len(missing) > 0 {
		return fmt.Errorf("unsupported device extensions: %v", missing)
	}
	return nil
}
