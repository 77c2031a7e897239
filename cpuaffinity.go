//go:build linux

package drpai

import (
	"strings"
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
)

const (
	// RZV2HAllCores is the cpu affinity mask of the four cortex A55 cores 0-3
	RZV2HAllCores = uintptr(0b00001111)
	// RZV2LAllCores is the cpu affinity mask of the two cortex A55 cores 0-1
	RZV2LAllCores = uintptr(0b00000011)
	// RZV2MAllCores is the cpu affinity mask of the two cortex A53 cores 0-1
	RZV2MAllCores = uintptr(0b00000011)
	// RZV2MAAllCores is the cpu affinity mask of the two cortex A53 cores 0-1
	RZV2MAAllCores = uintptr(0b00000011)
)

// coreMaskList defines the CPU core masks for lookup by platform
var coreMaskList = map[string]uintptr{
	"rzv2h":  RZV2HAllCores,
	"rzv2l":  RZV2LAllCores,
	"rzv2m":  RZV2MAllCores,
	"rzv2ma": RZV2MAAllCores,
}

// SetCPUAffinity sets the CPU Affinity mask of the calling thread to run on
// the specified cores
func SetCPUAffinity(mask uintptr) error {

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_SETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return errors.Wrap(err, "failed to set CPU affinity")
	}

	return nil
}

// GetCPUAffinity gets the current CPU Affinity mask of the calling thread
func GetCPUAffinity() (uintptr, error) {

	var mask uintptr

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_GETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return 0, errors.Wrap(err, "failed to get CPU affinity")
	}

	return mask, nil
}

// CPUCoreMask calculates the core mask by passing in the CPU core numbers as a
// slice, eg: []int{2,3}
func CPUCoreMask(cores []int) uintptr {

	var mask uintptr

	for _, core := range cores {
		mask |= 1 << core
	}

	return mask
}

// PlatformCoreMask returns the mask of all application cores for the given
// platform string of rzv2h|rzv2l|rzv2m|rzv2ma
func PlatformCoreMask(platform string) (uintptr, error) {

	platform = strings.ToLower(strings.TrimSpace(platform))

	mask, ok := coreMaskList[platform]

	if !ok {
		return 0, errors.Errorf("unknown platform: %s", platform)
	}

	return mask, nil
}

// SetCPUAffinityByPlatform sets the CPU Affinity mask of the calling thread to
// all application cores of the given platform
func SetCPUAffinityByPlatform(platform string) error {

	mask, err := PlatformCoreMask(platform)

	if err != nil {
		return err
	}

	return SetCPUAffinity(mask)
}
