//go:build linux

package drpai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPUCoreMask(t *testing.T) {

	assert.Equal(t, RZV2HAllCores, CPUCoreMask([]int{0, 1, 2, 3}))
	assert.Equal(t, uintptr(0b1100), CPUCoreMask([]int{2, 3}))
	assert.Equal(t, uintptr(0), CPUCoreMask(nil))
}

func TestPlatformCoreMask(t *testing.T) {

	mask, err := PlatformCoreMask(" RZV2H ")
	require.NoError(t, err)
	assert.Equal(t, RZV2HAllCores, mask)

	mask, err = PlatformCoreMask("rzv2l")
	require.NoError(t, err)
	assert.Equal(t, RZV2LAllCores, mask)

	_, err = PlatformCoreMask("rk3588")
	assert.Error(t, err)
}
