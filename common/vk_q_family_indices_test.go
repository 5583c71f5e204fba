package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32(v uint32) *uint32 { return &v }

func TestQueueFamilyIndices(t *testing.T) {
	incomplete := &QueueFamilyIndices{GraphicsFamily: u32(0)}
	assert.False(t, incomplete.IsComplete())
	_, err := incomplete.Unique()
	assert.Error(t, err)

	shared := &QueueFamilyIndices{GraphicsFamily: u32(1), PresentFamily: u32(1)}
	assert.True(t, shared.Shared())
	families, err := shared.Unique()
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, families)

	split := &QueueFamilyIndices{GraphicsFamily: u32(0), PresentFamily: u32(2)}
	assert.False(t, split.Shared())
	infos, err := split.toQueueCreateInfos()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, uint32(0), infos[0].QueueFamilyIndex)
	assert.Equal(t, uint32(2), infos[1].QueueFamilyIndex)
	assert.Equal(t, uint32(1), infos[1].QueueCount)
}
