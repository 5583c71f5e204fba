package renderer

import (
	"fmt"
	"log"

	com "shuriken/common"

	vk "github.com/goki/vulkan"
)

// frameFences guards reuse of the per-frame resources of Draw.
type frameFences interface {
	Wait(frame int) error
	Reset(frame int) error
	// Renew replaces the fence of frame with a signaled one.
	Renew(frame int) error
	Fence(frame int) vk.Fence
}

// submitFrame records and submits one frame. The fence is reset right before the submit and renewed when the submit
// fails, so a failed frame always leaves a signaled fence for the next Wait.
func submitFrame(fences frameFences, frame int, record func() error, submit func(vk.Fence) error) error {
	if err := record(); err != nil {
		return err
	}
	if err := fences.Reset(frame); err != nil {
		return fmt.Errorf("reset frame fence: %w", err)
	}
	if err := submit(fences.Fence(frame)); err != nil {
		if rerr := fences.Renew(frame); rerr != nil {
			log.Printf("Failed to renew fence of frame %d: %v", frame, rerr)
		}
		return err
	}
	return nil
}

type vkFences struct {
	device vk.Device
	fences []vk.Fence
}

func newVkFences(device vk.Device, count int) (*vkFences, error) {
	f := &vkFences{device: device}
	for i := 0; i < count; i++ {
		fence, err := createSignaledFence(device)
		if err != nil {
			f.Destroy()
			return nil, err
		}
		f.fences = append(f.fences, fence)
	}
	return f, nil
}

func createSignaledFence(device vk.Device) (vk.Fence, error) {
	info := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}
	fence, err := com.VKCreateFence(device, &info, nil)
	if err != nil {
		return nil, fmt.Errorf("create in flight fence: %w", err)
	}
	return fence, nil
}

func (f *vkFences) Wait(frame int) error {
	return com.VKSWaitForFence(f.device, f.fences[frame])
}

func (f *vkFences) Reset(frame int) error {
	return vk.Error(vk.ResetFences(f.device, 1, []vk.Fence{f.fences[frame]}))
}

// Renew is only valid while the fence has no pending submission.
func (f *vkFences) Renew(frame int) error {
	fence, err := createSignaledFence(f.device)
	if err != nil {
		return err
	}
	vk.DestroyFence(f.device, f.fences[frame], nil)
	f.fences[frame] = fence
	return nil
}

func (f *vkFences) Fence(frame int) vk.Fence {
	return f.fences[frame]
}

func (f *vkFences) Destroy() {
	for _, fence := range f.fences {
		vk.DestroyFence(f.device, fence, nil)
	}
	f.fences = nil
}
