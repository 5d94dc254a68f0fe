package system

import (
	"fmt"
	"log"
	"syscall"

	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open file limit so that preload workers and
// PDF renderers do not run out of descriptors on large sequences.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read the open file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not raise the open file limit: %v", err)
	} else {
		fmt.Printf("[*] Open file limit raised to %d\n", rLimit.Cur)
	}
}

// PreloadFootprint is the memory a fully preloaded cache holds: one RGBA
// image of the viewport size per frame.
func PreloadFootprint(frames, width, height int) uint64 {
	if frames <= 0 || width <= 0 || height <= 0 {
		return 0
	}
	return uint64(frames) * uint64(width) * uint64(height) * 4
}

// FitsInMemory reports whether need bytes stay below half of the available
// memory. The second value is the available memory itself.
func FitsInMemory(need uint64) (bool, uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return true, 0, fmt.Errorf("read memory stats: %w", err)
	}
	return need <= vm.Available/2, vm.Available, nil
}

// CheckPreload logs a warning when preloading every frame would take more
// than half of the available memory. It never blocks the preload.
func CheckPreload(frames, width, height int) {
	need := PreloadFootprint(frames, width, height)
	ok, avail, err := FitsInMemory(need)
	if err != nil {
		log.Printf("[!] %v", err)
		return
	}
	if !ok {
		log.Printf("[!] Preloading %d frames needs %s of %s available memory",
			frames, FormatBytes(need), FormatBytes(avail))
		return
	}
	fmt.Printf("[*] Preload: %d frames, %s\n", frames, FormatBytes(need))
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
