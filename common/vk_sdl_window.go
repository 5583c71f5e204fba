package common

import (
	"fmt"
	"log"

	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"
)

const APPLICATION_NAME = "Shuriken"
const APP_MAJOR, APP_MINOR, APP_PATCH = 1, 0, 0
const ENGINE_NAME = "No Engine"
const ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH = 1, 0, 0

const SDL_MAJOR, SDL_MINOR, SDL_PATCH = int(sdl.MAJOR_VERSION), int(sdl.MINOR_VERSION), int(sdl.PATCHLEVEL)

// Vulkan API version of the go bindings v1.0.7, as per: https://github.com/goki/vulkan = 1.3.239
const VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH int = 1, 3, 239

var VALIDATION_LAYERS = []string{
	"VK_LAYER_KHRONOS_validation",
}

// Window bundles the SDL window with the Vulkan instance and the surface presented to.
type Window struct {
	sdlVersion string
	vkVersion  string

	Win *sdl.Window

	Inst   vk.Instance
	Surf   vk.Surface
	Layers []string

	sdlUp bool
}

// NewWindow initializes SDL, opens a resizable Vulkan capable window and creates the instance and surface for it.
// Validation layers are only enabled when requested and supported. On error everything created so far is torn
// down again.
func NewWindow(title string, w int32, h int32, validation bool) (win *Window, err error) {
	window := &Window{
		sdlVersion: fmt.Sprintf("v%d.%d.%d", SDL_MAJOR, SDL_MINOR, SDL_PATCH),
		vkVersion:  fmt.Sprintf("v%d.%d.%d", VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH),
	}
	defer func() {
		if err != nil {
			window.Destroy()
		}
	}()
	if err = window.initSDLWindow(title, w, h); err != nil {
		return nil, err
	}
	if err = window.initVulkan(); err != nil {
		return nil, err
	}
	if err = window.createVulkanInstance(validation); err != nil {
		return nil, err
	}
	if err = window.createSdlVkSurface(); err != nil {
		return nil, err
	}
	log.Printf("Generated SDL/Vulkan window - SDL: %s Vulkan Spec: %s", window.sdlVersion, window.vkVersion)
	return window, nil
}

// Destroy tears down whatever part of surface, instance, window and SDL exists. It is safe to call twice.
func (w *Window) Destroy() {
	if w.Surf != nil && w.Inst != nil {
		vk.DestroySurface(w.Inst, w.Surf, nil)
		w.Surf = nil
	}
	if w.Inst != nil {
		vk.DestroyInstance(w.Inst, nil)
		w.Inst = nil
	}
	if w.Win != nil {
		if err := w.Win.Destroy(); err != nil {
			log.Printf("Failed to destroy SDL window: %v", err)
		}
		w.Win = nil
	}
	if w.sdlUp {
		sdl.Quit()
		w.sdlUp = false
	}
}

// DrawableSize is the framebuffer size in pixels, which can differ from the window size on high DPI displays.
func (w *Window) DrawableSize() (int32, int32) {
	return w.Win.VulkanGetDrawableSize()
}

func (w *Window) initSDLWindow(title string, width int32, height int32) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("initialize SDL: %w", err)
	}
	w.sdlUp = true
	log.Println("Initialized SDL")
	win, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		width,
		height,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE|sdl.WINDOW_VULKAN,
	)
	if err != nil {
		return fmt.Errorf("create SDL window for use with Vulkan: %w", err)
	}
	log.Printf("Created SDL window for use with Vulkan. Title: \"%s\", Width: %d, Height: %d", title, width, height)
	w.Win = win
	return nil
}

func (w *Window) initVulkan() error {
	// Find and load Vulkan addresses to be able to call driver level functions via provided mechanism
	vk.SetGetInstanceProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err := vk.Init(); err != nil {
		return fmt.Errorf("initialize Vulkan API: %w", err)
	}
	return nil
}

func (w *Window) createVulkanInstance(validation bool) error {
	requiredExtensions := w.Win.VulkanGetInstanceExtensions()
	if err := checkInstanceExtensionSupport(requiredExtensions); err != nil {
		return err
	}
	if validation {
		log.Printf("Validation enabled, checking layer support")
		if err := checkValidationLayerSupport(VALIDATION_LAYERS); err != nil {
			log.Printf("Continuing without validation: %v", err)
		} else {
			w.Layers = VALIDATION_LAYERS
		}
	}
	applicationInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PNext:              nil,
		PApplicationName:   TerminatedStr(APPLICATION_NAME),
		ApplicationVersion: vk.MakeVersion(APP_MAJOR, APP_MINOR, APP_PATCH),
		PEngineName:        TerminatedStr(ENGINE_NAME),
		EngineVersion:      vk.MakeVersion(ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH),
		ApiVersion:         vk.MakeVersion(VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH),
	}
	createInfo := &vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		PApplicationInfo:        applicationInfo,
		EnabledLayerCount:       uint32(len(w.Layers)),
		PpEnabledLayerNames:     TerminatedStrs(w.Layers),
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: TerminatedStrs(requiredExtensions),
	}
	ins, err := VkCreateInstance(createInfo, nil)
	if err != nil {
		return fmt.Errorf("create vk instance: %w", err)
	}
	w.Inst = ins
	return nil
}

func checkInstanceExtensionSupport(requiredInstanceExt []string) error {
	supportedExtNames, err := ReadInstanceExtensionPropertyNames()
	if err != nil {
		return err
	}
	log.Printf("Required instance extensions: %v", requiredInstanceExt)
	log.Printf("Available extensions (%d): %v", len(supportedExtNames), supportedExtNames)
	if missing := Missing(requiredInstanceExt, supportedExtNames); len(missing) > 0 {
		return fmt.Errorf("unsupported instance extensions: %v", missing)
	}
	log.Println("Success - All required instance extensions are supported")
	return nil
}

func checkValidationLayerSupport(requiredLayers []string) error {
	supportedLayerNames, err := ReadInstanceLayerPropertyNames()
	if err != nil {
		return err
	}
	log.Printf("Desired validation layers: %v", requiredLayers)
	log.Printf("Supported layers (%d): %v", len(supportedLayerNames), supportedLayerNames)
	if missing := Missing(requiredLayers, supportedLayerNames); len(missing) > 0 {
		return fmt.Errorf("unsupported validation layers: %v", missing)
	}
	log.Println("Success - All desired validation layers are supported")
	return nil
}

func (w *Window) createSdlVkSurface() error {
	surf, err := SdlCreateVkSurface(w.Win, w.Inst)
	if err != nil {
		return fmt.Errorf("create SDL window's Vulkan-surface: %w", err)
	}
	w.Surf = surf
	return nil
}
