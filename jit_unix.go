// Completion: 100% - Platform-specific module complete
//go:build unix && !(darwin && arm64)

package main

import (
	"golang.org/x/sys/unix"
)

const nativeMappingSupported = true

func pageSize() int {
	return unix.Getpagesize()
}

// mapPages maps size bytes of anonymous read+write memory. Nothing in the
// mapping is executable until protectExec is called on its code pages.
func mapPages(size int) ([]byte, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, ResourceError("mmap of executable memory failed", err)
	}
	return mem, nil
}

// protectExec flips pages from read+write to read+execute.
// The kernel also synchronizes the instruction cache on arm64.
func protectExec(pages []byte) error {
	if err := unix.Mprotect(pages, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return ResourceError("mprotect of code pages failed", err)
	}
	return nil
}

func unmapPages(mem []byte) error {
	if err := unix.Munmap(mem); err != nil {
		return ResourceError("munmap failed", err)
	}
	return nil
}
