// machine_bus.go - Physical address region dispatcher

/*
machine_bus.go - MachineBus: routes a physical access to its owning device

Implements spec.md 4.1's region dispatch: RDRAM, RSP DMEM/IMEM, RSP
registers, RDP registers, MI, VI, AI, PI, RI, SI, cartridge domains and
PIF ROM/RAM each own a fixed physical window. A read or write of a
power-of-two size (1/2/4/8 bytes) is routed to the owning region;
64-bit accesses to RCP (non-RDRAM) registers are logged and treated as
a 32-bit low-word access (spec.md 4.1, and the Open Question in
spec.md 9 about the real hardware "lockup" behaviour - out of scope
here, a log line stands in for it).

Grounded on the teacher's machine_bus.go / memory_bus.go range-dispatch
shape, adapted from a page-keyed IORegion map (suited to the teacher's
32MB flat address space) to a fixed-window switch (suited to the N64's
small number of large, non-overlapping device windows).
*/

package main

import (
	"fmt"
	"os"
)

// MachineBus is the system's physical bus: RDRAM plus every
// memory-mapped peripheral region.
type MachineBus struct {
	RDRAM *RDRAM
	MI    *MI
	RSP   *RSP
	RDP   *RDP
	VI    *VI
	AI    *AI
	PI    *PI
	SI    *SI
	Cart  *CartImage
	PIF   *PIF

	log *os.File
}

// NewMachineBus wires up an empty system: callers populate the
// peripheral fields before use (mirrors the teacher's MapIO-at-startup
// pattern in main.go, just without the page-table indirection).
func NewMachineBus() *MachineBus {
	return &MachineBus{RDRAM: NewRDRAM()}
}

func (b *MachineBus) logUnmapped(op string, addr uint32) {
	fmt.Fprintf(os.Stderr, "machine_bus: %s to unmapped physical address 0x%08X\n", op, addr)
}

func (b *MachineBus) route(addr uint32) (region string) {
	switch {
	case addr <= PA_RDRAM_END:
		return "rdram"
	case addr >= PA_SP_DMEM_BASE && addr <= PA_SP_MEM_END:
		return "sp-mem"
	case addr >= PA_SP_REGS_BASE && addr <= PA_SP_REGS_END, addr == PA_SP_PC_REG:
		return "sp-regs"
	case addr >= PA_DP_REGS_BASE && addr <= PA_DP_REGS_END:
		return "dp-regs"
	case addr >= PA_MI_BASE && addr < PA_VI_BASE:
		return "mi"
	case addr >= PA_VI_BASE && addr < PA_AI_BASE:
		return "vi"
	case addr >= PA_AI_BASE && addr < PA_PI_BASE:
		return "ai"
	case addr >= PA_PI_BASE && addr < PA_RI_BASE:
		return "pi"
	case addr >= PA_RI_BASE && addr < PA_SI_BASE:
		return "ri"
	case addr >= PA_SI_BASE && addr < PA_CART_DOM2_BASE:
		return "si"
	case addr >= PA_CART_DOM1_BASE && addr < PA_PIF_ROM_BASE:
		return "cart"
	case addr >= PA_PIF_ROM_BASE && addr < 0x2000_0000:
		return "pif"
	default:
		return ""
	}
}

// Read32 is the canonical access path; Read8/16/64 and the Write
// family build on it, with RDRAM as the only region given its own
// sub-word path. RSP DMEM/IMEM and the cartridge (including its domain
// 1 rotation glitch in CartImage.Read32) are reached through Read32.
func (b *MachineBus) Read32(addr uint32) uint32 {
	switch b.route(addr) {
	case "rdram":
		return b.RDRAM.Read32(addr)
	case "sp-mem":
		return b.RSP.ReadMem32(addr)
	case "sp-regs":
		return b.RSP.HandleRead(addr)
	case "dp-regs":
		return b.RDP.HandleRead(addr)
	case "mi":
		return b.MI.HandleRead(addr - PA_MI_BASE)
	case "vi":
		return b.VI.HandleRead(addr - PA_VI_BASE)
	case "ai":
		return b.AI.HandleRead(addr - PA_AI_BASE)
	case "pi":
		return b.PI.HandleRead(addr - PA_PI_BASE)
	case "ri":
		return 0
	case "si":
		return b.SI.HandleRead(addr - PA_SI_BASE)
	case "cart":
		return b.Cart.Read32(addr)
	case "pif":
		return b.PIF.Read32(addr)
	default:
		b.logUnmapped("read32", addr)
		return 0
	}
}

func (b *MachineBus) Write32(addr uint32, val uint32) {
	switch b.route(addr) {
	case "rdram":
		b.RDRAM.Write32(addr, val)
	case "sp-mem":
		b.RSP.WriteMem32(addr, val)
	case "sp-regs":
		b.RSP.HandleWrite(addr, val)
	case "dp-regs":
		b.RDP.HandleWrite(addr, val)
	case "mi":
		b.MI.HandleWrite(addr-PA_MI_BASE, val)
	case "vi":
		b.VI.HandleWrite(addr-PA_VI_BASE, val)
	case "ai":
		b.AI.HandleWrite(addr-PA_AI_BASE, val)
	case "pi":
		b.PI.HandleWrite(addr-PA_PI_BASE, val)
	case "ri":
		// RI (RDRAM interface) tuning registers are modeled as a no-op sink.
	case "si":
		b.SI.HandleWrite(addr-PA_SI_BASE, val)
	case "cart":
		b.Cart.Write32(addr, val)
	case "pif":
		b.PIF.Write32(addr, val)
	default:
		b.logUnmapped("write32", addr)
	}
}

func (b *MachineBus) Read8(addr uint32) uint8 {
	if b.route(addr) == "rdram" {
		return b.RDRAM.Read8(addr)
	}
	shift := 24 - 8*(addr&3)
	return uint8(b.Read32(addr&^3) >> shift)
}

func (b *MachineBus) Read16(addr uint32) uint16 {
	if b.route(addr) == "rdram" {
		return b.RDRAM.Read16(addr)
	}
	shift := 16 - 16*((addr&3)/2)
	return uint16(b.Read32(addr&^3) >> shift)
}

// Read64 services a 64-bit access. For RDRAM it is a true 8-byte
// access; for every RCP register region it is, per spec.md 4.1, an
// unsupported "lockup" on real hardware - this core logs and returns
// the low 32 bits zero-extended, matching the Open Question's
// resolution in spec.md 9.
func (b *MachineBus) Read64(addr uint32) uint64 {
	if b.route(addr) == "rdram" {
		return b.RDRAM.Read64(addr)
	}
	b.logUnmapped("read64 (RCP register lockup)", addr)
	return uint64(b.Read32(addr &^ 4))
}

func (b *MachineBus) Write8(addr uint32, val uint8) {
	if b.route(addr) == "rdram" {
		b.RDRAM.Write8(addr, val)
		return
	}
	shift := 24 - 8*(addr&3)
	cur := b.Read32(addr &^ 3)
	cur = (cur &^ (0xFF << shift)) | (uint32(val) << shift)
	b.Write32(addr&^3, cur)
}

func (b *MachineBus) Write16(addr uint32, val uint16) {
	if b.route(addr) == "rdram" {
		b.RDRAM.Write16(addr, val)
		return
	}
	shift := 16 - 16*((addr&3)/2)
	cur := b.Read32(addr &^ 3)
	cur = (cur &^ (0xFFFF << shift)) | (uint32(val) << shift)
	b.Write32(addr&^3, cur)
}

func (b *MachineBus) Write64(addr uint32, val uint64) {
	if b.route(addr) == "rdram" {
		b.RDRAM.Write64(addr, val)
		return
	}
	b.logUnmapped("write64 (RCP register lockup)", addr)
	b.Write32(addr&^4, uint32(val))
}
