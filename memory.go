// Completion: 100% - Executable memory layout complete
package main

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/dustin/go-humanize"
)

// ExecMemory is the single region one compilation writes its machine code
// and data into. The layout is
//
//	[ code pages ][ environment table | cache slots ]
//
// Native memory comes from mmap and has its code pages sealed read+execute
// before it may be called. Heap memory has the same layout and is only ever
// run by an emulator.
type ExecMemory struct {
	mem      []byte
	codeSize int
	data     *DataArea
	native   bool
	sealed   bool
	closed   bool
}

// mapRegion is the page mapper behind MapExecMemory
var mapRegion = mapPages

// MapExecMemory maps a native region with codeSize bytes of code (rounded up
// to whole pages) and room for slots cache slots
func MapExecMemory(codeSize, slots int, trace io.Writer) (*ExecMemory, error) {
	codeBytes, dataBytes := layout(codeSize, slots)
	mem, err := mapRegion(codeBytes + dataBytes)
	if err != nil {
		return nil, err
	}
	if trace != nil {
		fmt.Fprintf(trace, "DEBUG: mapped %s at %#x (%s code, %s data)\n",
			humanize.IBytes(uint64(len(mem))), uintptr(unsafe.Pointer(&mem[0])),
			humanize.IBytes(uint64(codeBytes)), humanize.IBytes(uint64(dataBytes)))
	}
	m := &ExecMemory{mem: mem, codeSize: codeBytes, native: true}
	m.data = newDataArea(mem[codeBytes:], slots)
	return m, nil
}

// NewHeapMemory allocates an emulation-only region with the native layout
func NewHeapMemory(codeSize, slots int) *ExecMemory {
	codeBytes, dataBytes := layout(codeSize, slots)
	// Backed by words so the data area is 8-byte aligned
	words := make([]uint64, (codeBytes+dataBytes)/8)
	mem := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*8)
	m := &ExecMemory{mem: mem, codeSize: codeBytes}
	m.data = newDataArea(mem[codeBytes:], slots)
	return m
}

// layout rounds the code and data sections up to whole pages
func layout(codeSize, slots int) (codeBytes, dataBytes int) {
	page := pageSize()
	round := func(n int) int {
		if n < page {
			return page
		}
		return (n + page - 1) / page * page
	}
	return round(codeSize), round((EnvSlots + slots) * 8)
}

// Code returns the writable code pages. Writing after Seal faults natively.
func (m *ExecMemory) Code() []byte {
	return m.mem[:m.codeSize]
}

// CodeAddr returns the address of the first instruction
func (m *ExecMemory) CodeAddr() uintptr {
	return uintptr(unsafe.Pointer(&m.mem[0]))
}

// Data returns the environment table and cache slots
func (m *ExecMemory) Data() *DataArea {
	return m.data
}

// Size returns the total mapped size in bytes
func (m *ExecMemory) Size() int {
	return len(m.mem)
}

// Native returns true for an mmap region that can be called directly
func (m *ExecMemory) Native() bool {
	return m.native
}

// Sealed returns true once the code pages are read+execute
func (m *ExecMemory) Sealed() bool {
	return m.sealed
}

// Closed returns true once the region is released
func (m *ExecMemory) Closed() bool {
	return m.closed
}

// Seal makes the code pages read+execute. The data pages stay read+write.
func (m *ExecMemory) Seal() error {
	if m.closed {
		return FatalError("seal of released memory")
	}
	if m.sealed {
		return nil
	}
	if m.native {
		if err := protectExec(m.mem[:m.codeSize]); err != nil {
			return err
		}
	}
	m.sealed = true
	return nil
}

// Close releases the region. Calling it more than once is fine.
func (m *ExecMemory) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.data = nil
	if m.native {
		return unmapPages(m.mem)
	}
	m.mem = nil
	return nil
}

// DataArea is the read+write part of an ExecMemory: the environment table,
// indexed by slot, followed by the cache slots the accumulator backend
// stores shared values into.
type DataArea struct {
	words []int64
	base  uint64
	slots int
	next  int
}

func newDataArea(b []byte, slots int) *DataArea {
	words := unsafe.Slice((*int64)(unsafe.Pointer(&b[0])), len(b)/8)
	return &DataArea{
		words: words,
		base:  uint64(uintptr(unsafe.Pointer(&words[0]))),
		slots: slots,
	}
}

// Base returns the address of the environment table
func (d *DataArea) Base() uint64 {
	return d.base
}

// EnvAddr returns the address of an environment slot
func (d *DataArea) EnvAddr(slot byte) uint64 {
	return d.base + uint64(slot)*8
}

// EnvOffset returns the byte offset of an environment slot from Base
func (d *DataArea) EnvOffset(slot byte) int32 {
	return int32(slot) * 8
}

// AllocSlot reserves the next cache slot and returns its address
func (d *DataArea) AllocSlot() (uint64, error) {
	if d.next >= d.slots {
		return 0, CapacityError("cache slots", d.slots)
	}
	addr := d.base + uint64(EnvSlots+d.next)*8
	d.next++
	return addr, nil
}

// SlotsUsed returns the number of cache slots allocated so far
func (d *DataArea) SlotsUsed() int {
	return d.next
}

// LoadEnv copies env into the environment table
func (d *DataArea) LoadEnv(env *Environment) {
	copy(d.words[:EnvSlots], env[:])
}

// Load reads the word at addr. ok is false outside the data area.
func (d *DataArea) Load(addr uint64) (v int64, ok bool) {
	i, ok := d.index(addr)
	if !ok {
		return 0, false
	}
	return d.words[i], true
}

// Store writes the word at addr. ok is false outside the data area.
func (d *DataArea) Store(addr uint64, v int64) bool {
	i, ok := d.index(addr)
	if !ok {
		return false
	}
	d.words[i] = v
	return true
}

func (d *DataArea) index(addr uint64) (int, bool) {
	if addr < d.base || (addr-d.base)%8 != 0 {
		return 0, false
	}
	i := (addr - d.base) / 8
	if i >= uint64(len(d.words)) {
		return 0, false
	}
	return int(i), true
}
