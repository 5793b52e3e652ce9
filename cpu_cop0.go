// cpu_cop0.go - COP0 instruction group: MFC0/MTC0, TLB maintenance, ERET

/*
cpu_cop0.go - System control coprocessor instruction dispatch

Decodes the COP0 opcode group (spec.md 4.6): MF/MTC0 register moves
gated by CU0/kernel-mode per spec.md 4.4, and the CO-format TLB
maintenance ops (TLBR/TLBWI/TLBWR/TLBP) plus ERET, wired to tlb.go and
exceptions.go. Grounded on
original_source/src/vr4300/Interpreter.cpp's `COP0` dispatch table.
*/

package main

const (
	cop0RS_MF   = 0x00
	cop0RS_MT   = 0x04
	cop0RS_CO   = 0x10 // bit 4 set: CO-format TLB/ERET instructions
)

const (
	cop0FN_TLBR  = 0x01
	cop0FN_TLBWI = 0x02
	cop0FN_TLBWR = 0x06
	cop0FN_TLBP  = 0x08
	cop0FN_ERET  = 0x18
)

func (c *CPU) cop0Usable() bool {
	return c.cp0.KernelMode() || c.cp0.Read(CP0_STATUS)&STATUS_CU0 != 0
}

func (c *CPU) execCop0(rs, rt, rd, word uint32) {
	if !c.cop0Usable() {
		c.raise(PendingException{Kind: ExcCoprocessorUnusable, CE: 0})
		return
	}
	if rs&0x10 != 0 {
		c.execCop0Function(word & 0x3F)
		return
	}
	switch rs {
	case cop0RS_MF:
		c.SetGPR(int(rt), signExt32(uint32(c.cp0.Read(int(rd)))))
	case cop0RS_MT:
		c.cp0.Write(int(rd), c.GetGPR(int(rt)))
	default:
		c.raise(PendingException{Kind: ExcReservedInstruction})
	}
}

func (c *CPU) entryHiASID() uint8   { return uint8(c.cp0.Read(CP0_ENTRYHI)) }
func (c *CPU) entryHiRegion() uint8 { return uint8(c.cp0.Read(CP0_ENTRYHI) >> 62) }

func (c *CPU) tlbEntryFromCP0() TLBEntry {
	pageMask := uint32(c.cp0.Read(CP0_PAGEMASK) >> 13)
	entryHi := c.cp0.Read(CP0_ENTRYHI)
	lo0 := c.cp0.Read(CP0_ENTRYLO0)
	lo1 := c.cp0.Read(CP0_ENTRYLO1)
	e := TLBEntry{
		PageMask: pageMask,
		VPN2:     entryHi >> 13,
		ASID:     uint8(entryHi),
		Global:   lo0&1 != 0 && lo1&1 != 0,
		Region:   uint8(entryHi >> 62),
		PFN0:     uint32(lo0>>6) & 0xF_FFFF,
		C0:       uint8(lo0>>3) & 0x7,
		D0:       lo0&0x4 != 0,
		V0:       lo0&0x2 != 0,
		PFN1:     uint32(lo1>>6) & 0xF_FFFF,
		C1:       uint8(lo1>>3) & 0x7,
		D1:       lo1&0x4 != 0,
		V1:       lo1&0x2 != 0,
	}
	return e
}

func (c *CPU) loadCP0FromTLBEntry(e TLBEntry) {
	entryHi := (uint64(e.Region) << 62) | (e.VPN2 << 13) | uint64(e.ASID)
	c.cp0.Write(CP0_ENTRYHI, entryHi)
	c.cp0.Write(CP0_PAGEMASK, uint64(e.PageMask)<<13)
	gbit := uint64(0)
	if e.Global {
		gbit = 1
	}
	lo0 := (uint64(e.PFN0) << 6) | (uint64(e.C0) << 3) | b2u(e.D0)<<2 | b2u(e.V0)<<1 | gbit
	lo1 := (uint64(e.PFN1) << 6) | (uint64(e.C1) << 3) | b2u(e.D1)<<2 | b2u(e.V1)<<1 | gbit
	c.cp0.Write(CP0_ENTRYLO0, lo0)
	c.cp0.Write(CP0_ENTRYLO1, lo1)
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (c *CPU) execCop0Function(fn uint32) {
	switch fn {
	case cop0FN_TLBR:
		idx := int(c.cp0.Read(CP0_INDEX)) & 0x1F
		e := c.tlb.ReadEntry(idx)
		c.loadCP0FromTLBEntry(e)
	case cop0FN_TLBWI:
		idx := int(c.cp0.Read(CP0_INDEX)) & 0x1F
		c.tlb.WriteEntry(idx, c.tlbEntryFromCP0())
	case cop0FN_TLBWR:
		idx := int(c.cp0.Read(CP0_RANDOM)) & 0x1F
		c.tlb.WriteEntry(idx, c.tlbEntryFromCP0())
	case cop0FN_TLBP:
		entryHi := c.cp0.Read(CP0_ENTRYHI)
		idx, found := c.tlb.Probe(entryHi>>13<<13, uint8(entryHi>>62), uint8(entryHi))
		if found {
			c.cp0.Write(CP0_INDEX, uint64(idx))
		} else {
			c.cp0.Write(CP0_INDEX, 1<<31)
		}
	case cop0FN_ERET:
		c.ERET()
	default:
		c.raise(PendingException{Kind: ExcReservedInstruction})
	}
}

// execCacheInstr implements the CACHE opcode's address generation and
// delegates the sub-operation to cache.go. CACHE with a TLB miss/
// invalid entry is defined (MIPS manual) to be silently skipped rather
// than raising a TLB exception when the operation is one of the "hit"
// family; this core treats every CACHE access as a translation like
// any other load for simplicity, per spec.md 4.5's Non-goal on
// precise CACHE-vs-TLB-miss interaction.
func (c *CPU) execCacheInstr(rs, rt uint32, imm16 uint16) {
	vaddr := c.effAddr(rs, imm16)
	tr, ok := c.translateForAccess(vaddr, false)
	if !ok {
		return
	}
	c.ExecuteCache(rt, vaddr, tr.Physical)
}
