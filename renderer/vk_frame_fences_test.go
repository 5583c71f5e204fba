package renderer

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFences tracks the signaled state of each frame fence. Wait fails where a real wait would block forever.
type fakeFences struct {
	signaled []bool
	renewed  int
}

func newFakeFences(n int) *fakeFences {
	f := &fakeFences{signaled: make([]bool, n)}
	for i := range f.signaled {
		f.signaled[i] = true
	}
	return f
}

var errWouldBlock = errors.New("wait on unsignaled fence")

func (f *fakeFences) Wait(frame int) error {
	if !f.signaled[frame] {
		return errWouldBlock
	}
	return nil
}

func (f *fakeFences) Reset(frame int) error {
	f.signaled[frame] = false
	return nil
}

func (f *fakeFences) Renew(frame int) error {
	f.renewed++
	f.signaled[frame] = true
	return nil
}

func (f *fakeFences) Fence(int) vk.Fence { return nil }

func TestFailedRecordKeepsFenceSignaled(t *testing.T) {
	fences := newFakeFences(2)
	recordErr := errors.New("record command buffer")
	submitted := false

	err := submitFrame(fences, 0, func() error { return recordErr }, func(vk.Fence) error {
		submitted = true
		return nil
	})
	assert.ErrorIs(t, err, recordErr)
	assert.False(t, submitted)
	require.NoError(t, fences.Wait(0))
}

func TestFailedSubmitRenewsFence(t *testing.T) {
	fences := newFakeFences(2)
	submitErr := errors.New("submit command buffer")

	err := submitFrame(fences, 1, func() error { return nil }, func(vk.Fence) error { return submitErr })
	assert.ErrorIs(t, err, submitErr)
	assert.Equal(t, 1, fences.renewed)
	require.NoError(t, fences.Wait(1))
}

func TestSubmittedFrameLeavesFenceToTheQueue(t *testing.T) {
	fences := newFakeFences(2)
	require.NoError(t, submitFrame(fences, 0, func() error { return nil }, func(vk.Fence) error { return nil }))
	// signaled again only once the GPU finishes
	assert.ErrorIs(t, fences.Wait(0), errWouldBlock)
	assert.Zero(t, fences.renewed)
}
