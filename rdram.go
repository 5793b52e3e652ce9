// rdram.go - Physical address space and RDRAM for the N64 core

/*
rdram.go - Physical memory map and RDRAM backing store

This module implements the N64's 32-bit physical address map constants
and the main 8MB (plus 4MB expansion) RDRAM block; the region
dispatcher that routes a physical access to the owning device is
MachineBus in machine_bus.go. Bytes are stored in big-endian order
(encoding/binary.BigEndian), the console's actual bus order, so the
wire format does not depend on the host.

Thread safety mirrors the teacher's SystemBus: a RWMutex guards the
RDRAM slice because the GUI frontend and the headless test harness
both take read snapshots from outside the core goroutine (see
SPEC_FULL.md 5.2), even though the core itself is single-writer.
*/

package main

import (
	"encoding/binary"
	"sync"
)

const (
	RDRAM_SIZE       = 8 * 1024 * 1024 // 8MB base RDRAM
	RDRAM_EXP_SIZE   = 4 * 1024 * 1024 // 4MB expansion pak
	RDRAM_TOTAL_SIZE = RDRAM_SIZE + RDRAM_EXP_SIZE

	// Physical address regions (see spec.md 4.1)
	PA_RDRAM_BASE     = 0x0000_0000
	PA_RDRAM_END      = 0x007F_FFFF
	PA_RDRAM_REGS_LO  = 0x03F0_0000
	PA_RDRAM_REGS_HI  = 0x03FF_FFFF
	PA_SP_DMEM_BASE   = 0x0400_0000
	PA_SP_IMEM_BASE   = 0x0400_1000
	PA_SP_MEM_END     = 0x0400_1FFF
	PA_SP_REGS_BASE   = 0x0404_0000
	PA_SP_REGS_END    = 0x0404_001F
	PA_SP_PC_REG      = 0x0408_0000
	PA_DP_REGS_BASE   = 0x0410_0000
	PA_DP_REGS_END    = 0x041F_FFFF
	PA_MI_BASE        = 0x0430_0000
	PA_VI_BASE        = 0x0440_0000
	PA_AI_BASE        = 0x0450_0000
	PA_PI_BASE        = 0x0460_0000
	PA_RI_BASE        = 0x0470_0000
	PA_SI_BASE        = 0x0480_0000
	PA_CART_DOM2_BASE = 0x0500_0000
	PA_CART_DOM1_BASE = 0x0800_0000
	PA_PIF_ROM_BASE   = 0x1FC0_0000
	PA_PIF_RAM_BASE   = 0x1FC0_07C0
	PA_PIF_RAM_END    = 0x1FC0_07FF
	PA_CART_ROM_BASE  = 0x1000_0000
)

// Bus is the narrow interface other components use to reach physical
// memory; it never sees virtual addresses (translation happens in CP0/TLB).
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Read64(addr uint32) uint64
	Write8(addr uint32, val uint8)
	Write16(addr uint32, val uint16)
	Write32(addr uint32, val uint32)
	Write64(addr uint32, val uint64)
}

// RDRAM is the console's main DRAM, stored as a contiguous byte slice in
// big-endian order. ReadN/WriteN operate on big-endian wire semantics: the
// value returned to a caller is the value a MIPS big-endian load would
// see, regardless of host architecture.
type RDRAM struct {
	mu   sync.RWMutex
	data []byte
}

// NewRDRAM allocates the base+expansion RDRAM block, zeroed.
func NewRDRAM() *RDRAM {
	return &RDRAM{data: make([]byte, RDRAM_TOTAL_SIZE)}
}

func (r *RDRAM) mask(addr uint32) uint32 {
	return addr % RDRAM_TOTAL_SIZE
}

func (r *RDRAM) Read8(addr uint32) uint8 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data[r.mask(addr)]
}

func (r *RDRAM) Read16(addr uint32) uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a := r.mask(addr &^ 1)
	return binary.BigEndian.Uint16(r.data[a : a+2])
}

func (r *RDRAM) Read32(addr uint32) uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a := r.mask(addr &^ 3)
	return binary.BigEndian.Uint32(r.data[a : a+4])
}

func (r *RDRAM) Read64(addr uint32) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a := r.mask(addr &^ 7)
	return binary.BigEndian.Uint64(r.data[a : a+8])
}

func (r *RDRAM) Write8(addr uint32, val uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[r.mask(addr)] = val
}

func (r *RDRAM) Write16(addr uint32, val uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.mask(addr &^ 1)
	binary.BigEndian.PutUint16(r.data[a:a+2], val)
}

func (r *RDRAM) Write32(addr uint32, val uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.mask(addr &^ 3)
	binary.BigEndian.PutUint32(r.data[a:a+4], val)
}

func (r *RDRAM) Write64(addr uint32, val uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.mask(addr &^ 7)
	binary.BigEndian.PutUint64(r.data[a:a+8], val)
}

// Snapshot returns a copy of the RDRAM contents, safe to call from
// outside the core goroutine (GUI "copy frame", test harnesses).
func (r *RDRAM) Snapshot() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out
}

// CopyIn bulk-writes bytes starting at addr, wrapping modulo the RDRAM
// size; used by DMA and cart/PIF boot loading.
func (r *RDRAM) CopyIn(addr uint32, src []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range src {
		r.data[r.mask(addr+uint32(i))] = b
	}
}

// CopyOut bulk-reads n bytes starting at addr, wrapping modulo the
// RDRAM size.
func (r *RDRAM) CopyOut(addr uint32, n int) []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]byte, n)
	for i := range out {
		out[i] = r.data[r.mask(addr+uint32(i))]
	}
	return out
}

// Reset clears all of RDRAM to zero.
func (r *RDRAM) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.data {
		r.data[i] = 0
	}
}
