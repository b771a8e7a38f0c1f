// Completion: 100% - Platform-specific module complete
//go:build !unix || (darwin && arm64)

package main

import (
	"errors"
	"os"
	"runtime"
)

const nativeMappingSupported = false

// Apple silicon only executes pages mapped with MAP_JIT, which needs
// per-thread write protection toggling that is not wired up here.
var errNoMmap = errors.New("anonymous executable mappings are not supported on " + runtime.GOOS + "/" + runtime.GOARCH)

func pageSize() int {
	return os.Getpagesize()
}

func mapPages(size int) ([]byte, error) {
	return nil, ResourceError("mmap of executable memory failed", errNoMmap)
}

func protectExec(pages []byte) error {
	return ResourceError("mprotect of code pages failed", errNoMmap)
}

func unmapPages(mem []byte) error {
	return nil
}
