// cpu_loadstore.go - VR4300 load/store family, LL/SC, unaligned merges

/*
cpu_loadstore.go - Load/store address generation and the unaligned
(LWL/LWR/SWL/SWR and doubleword LDL/LDR/SDL/SDR variants) merge instructions.

All accesses go through CPU.Translate, raising AddressError/TLBMiss/
TLBInvalid/TLBMod as translation reports them (spec.md 4.4), then route
through the data cache for cacheable physical pages or straight to the
bus otherwise (spec.md 4.5). LL/SC track a single reservation: SC
succeeds (and writes) only if LLbit is still set and the reservation's
physical address has not been invalidated by any intervening store
(spec.md 4.3). Grounded on
original_source/src/vr4300/Interpreter.cpp's `Load/Store` op family and
original_source/src/vr4300/MMU.cpp for the LWL/LWR byte-lane tables.
*/

package main

func (c *CPU) effAddr(rs uint32, imm16 uint16) uint64 {
	return c.GetGPR(int(rs)) + signExt16(imm16)
}

// translateForAccess resolves vaddr, raising the appropriate exception
// and returning ok=false if translation failed.
func (c *CPU) translateForAccess(vaddr uint64, isStore bool) (TranslateResult, bool) {
	tr := c.Translate(vaddr, isStore)
	if tr.AddrError {
		c.raiseAddrError(vaddr, isStore)
		return tr, false
	}
	if tr.TLBFault != TLBNone {
		c.raiseTLB(tr.TLBFault, vaddr, isStore, !c.cp0.AddressMode32())
		return tr, false
	}
	return tr, true
}

func (c *CPU) readPhys8(tr TranslateResult) byte {
	if tr.Cacheable {
		return c.dcache.ReadByte(tr.Physical, &c.cycles)
	}
	c.cycles += 1
	return c.bus.Read8(tr.Physical)
}

func (c *CPU) writePhys8(tr TranslateResult, val byte) {
	if tr.Cacheable {
		c.dcache.WriteByte(tr.Physical, val, &c.cycles)
		return
	}
	c.cycles += 1
	c.bus.Write8(tr.Physical, val)
}

func (c *CPU) readPhysN(tr TranslateResult, n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		v = (v << 8) | uint64(c.readPhys8(TranslateResult{Physical: tr.Physical + uint32(i), Cacheable: tr.Cacheable}))
	}
	return v
}

func (c *CPU) writePhysN(tr TranslateResult, n int, val uint64) {
	for i := 0; i < n; i++ {
		shift := uint((n - 1 - i) * 8)
		c.writePhys8(TranslateResult{Physical: tr.Physical + uint32(i), Cacheable: tr.Cacheable}, byte(val>>shift))
	}
}

func (c *CPU) execLoad(op uint32, rs, rt uint32, imm16 uint16) {
	vaddr := c.effAddr(rs, imm16)
	switch op {
	case OP_LB:
		if misaligned(vaddr, 1) {
			c.raiseAddrError(vaddr, false)
			return
		}
		tr, ok := c.translateForAccess(vaddr, false)
		if !ok {
			return
		}
		c.SetGPR(int(rt), uint64(int64(int8(c.readPhys8(tr)))))
	case OP_LBU:
		tr, ok := c.translateForAccess(vaddr, false)
		if !ok {
			return
		}
		c.SetGPR(int(rt), uint64(c.readPhys8(tr)))
	case OP_LH, OP_LHU:
		if misaligned(vaddr, 2) {
			c.raiseAddrError(vaddr, false)
			return
		}
		tr, ok := c.translateForAccess(vaddr, false)
		if !ok {
			return
		}
		v := c.readPhysN(tr, 2)
		if op == OP_LH {
			c.SetGPR(int(rt), uint64(int64(int16(v))))
		} else {
			c.SetGPR(int(rt), v)
		}
	case OP_LW, OP_LWU, OP_LL:
		if misaligned(vaddr, 4) {
			c.raiseAddrError(vaddr, false)
			return
		}
		tr, ok := c.translateForAccess(vaddr, false)
		if !ok {
			return
		}
		v := c.readPhysN(tr, 4)
		if op == OP_LW {
			c.SetGPR(int(rt), signExt32(uint32(v)))
		} else {
			c.SetGPR(int(rt), v)
		}
		if op == OP_LL {
			c.llbit = true
			c.llAddrPhys = tr.Physical
		}
	case OP_LD, OP_LLD:
		if misaligned(vaddr, 8) {
			c.raiseAddrError(vaddr, false)
			return
		}
		tr, ok := c.translateForAccess(vaddr, false)
		if !ok {
			return
		}
		c.SetGPR(int(rt), c.readPhysN(tr, 8))
		if op == OP_LLD {
			c.llbit = true
			c.llAddrPhys = tr.Physical
		}
	case OP_LWL:
		c.execUnalignedLoad(vaddr, rt, true, 4)
	case OP_LWR:
		c.execUnalignedLoad(vaddr, rt, false, 4)
	case OP_LDL:
		c.execUnalignedLoad(vaddr, rt, true, 8)
	case OP_LDR:
		c.execUnalignedLoad(vaddr, rt, false, 8)
	case OP_LWC1:
		tr, ok := c.translateForAccess(vaddr, false)
		if !ok {
			return
		}
		c.fpu.SetFPR32(int(rt), uint32(c.readPhysN(tr, 4)))
	case OP_LDC1:
		tr, ok := c.translateForAccess(vaddr, false)
		if !ok {
			return
		}
		c.fpu.SetFPR64(int(rt), c.readPhysN(tr, 8))
	}
}

// execUnalignedLoad implements LWL/LWR/LDL/LDR: merge `size` bytes
// from the aligned word/doubleword containing vaddr into the existing
// register value, replacing only the bytes a real memory system would
// have returned for that partial access.
func (c *CPU) execUnalignedLoad(vaddr uint64, rt uint32, left bool, size int) {
	alignMask := uint64(size - 1)
	base := vaddr &^ alignMask
	tr, ok := c.translateForAccess(base, false)
	if !ok {
		return
	}
	whole := c.readPhysN(TranslateResult{Physical: tr.Physical, Cacheable: tr.Cacheable}, size)
	offset := int(vaddr & alignMask)
	old := c.GetGPR(int(rt))

	var result uint64
	if left {
		shift := uint(offset) * 8
		keepMask := (uint64(1) << shift) - 1
		if size == 8 {
			if shift == 0 {
				result = whole
			} else {
				result = (whole << shift) | (old & keepMask)
			}
		} else {
			var w32 uint32
			if shift == 0 {
				w32 = uint32(whole)
			} else {
				w32 = uint32(whole)<<shift | uint32(old)&uint32(keepMask)
			}
			result = signExt32(w32)
		}
	} else {
		// the bytes at [0, nbytes) of `whole` (big-endian) go into the
		// low bytes of the register; high bytes of the register are kept
		nbytes := offset + 1
		keepShift := uint(nbytes) * 8
		var keepMask uint64
		if keepShift < 64 {
			keepMask = ^uint64(0) << keepShift
		}
		lowBits := extractLowBytes(whole, nbytes, size)
		if size == 8 {
			result = (old & keepMask) | lowBits
		} else {
			w32 := uint32(old)&uint32(keepMask) | uint32(lowBits)
			result = signExt32(w32)
		}
	}
	c.SetGPR(int(rt), result)
}

// extractLowBytes returns the first (most-significant) nbytes bytes of a
// big-endian `size`-byte quantity `whole`, right-justified so they can
// fill the low bytes of a register.
func extractLowBytes(whole uint64, nbytes, size int) uint64 {
	shift := uint(size-nbytes) * 8
	mask := uint64(0)
	if nbytes*8 < 64 {
		mask = (uint64(1) << uint(nbytes*8)) - 1
	} else {
		mask = ^uint64(0)
	}
	return (whole & (mask << shift)) >> shift
}

func (c *CPU) execStore(op uint32, rs, rt uint32, imm16 uint16) {
	vaddr := c.effAddr(rs, imm16)
	val := c.GetGPR(int(rt))
	switch op {
	case OP_SB:
		tr, ok := c.translateForAccess(vaddr, true)
		if !ok {
			return
		}
		c.writePhys8(tr, byte(val))
		c.invalidateReservationIfOverlap(tr.Physical, 1)
	case OP_SH:
		if misaligned(vaddr, 2) {
			c.raiseAddrError(vaddr, true)
			return
		}
		tr, ok := c.translateForAccess(vaddr, true)
		if !ok {
			return
		}
		c.writePhysN(tr, 2, val)
		c.invalidateReservationIfOverlap(tr.Physical, 2)
	case OP_SW:
		if misaligned(vaddr, 4) {
			c.raiseAddrError(vaddr, true)
			return
		}
		tr, ok := c.translateForAccess(vaddr, true)
		if !ok {
			return
		}
		c.writePhysN(tr, 4, val)
		c.invalidateReservationIfOverlap(tr.Physical, 4)
	case OP_SD:
		if misaligned(vaddr, 8) {
			c.raiseAddrError(vaddr, true)
			return
		}
		tr, ok := c.translateForAccess(vaddr, true)
		if !ok {
			return
		}
		c.writePhysN(tr, 8, val)
		c.invalidateReservationIfOverlap(tr.Physical, 8)
	case OP_SC:
		if !c.llbit {
			c.SetGPR(int(rt), 0)
			return
		}
		if misaligned(vaddr, 4) {
			c.raiseAddrError(vaddr, true)
			return
		}
		tr, ok := c.translateForAccess(vaddr, true)
		if !ok {
			return
		}
		c.writePhysN(tr, 4, val)
		c.llbit = false
		c.SetGPR(int(rt), 1)
	case OP_SCD:
		if !c.llbit {
			c.SetGPR(int(rt), 0)
			return
		}
		if misaligned(vaddr, 8) {
			c.raiseAddrError(vaddr, true)
			return
		}
		tr, ok := c.translateForAccess(vaddr, true)
		if !ok {
			return
		}
		c.writePhysN(tr, 8, val)
		c.llbit = false
		c.SetGPR(int(rt), 1)
	case OP_SWL:
		c.execUnalignedStore(vaddr, val, true, 4)
	case OP_SWR:
		c.execUnalignedStore(vaddr, val, false, 4)
	case OP_SDL:
		c.execUnalignedStore(vaddr, val, true, 8)
	case OP_SDR:
		c.execUnalignedStore(vaddr, val, false, 8)
	case OP_SWC1:
		tr, ok := c.translateForAccess(vaddr, true)
		if !ok {
			return
		}
		c.writePhysN(tr, 4, uint64(c.fpu.GetFPR32(int(rt))))
	case OP_SDC1:
		tr, ok := c.translateForAccess(vaddr, true)
		if !ok {
			return
		}
		c.writePhysN(tr, 8, c.fpu.GetFPR64(int(rt)))
	}
}

func (c *CPU) invalidateReservationIfOverlap(phys uint32, n uint32) {
	if c.llbit && phys <= c.llAddrPhys && c.llAddrPhys < phys+n {
		c.llbit = false
	}
}

func (c *CPU) execUnalignedStore(vaddr uint64, val uint64, left bool, size int) {
	alignMask := uint64(size - 1)
	base := vaddr &^ alignMask
	tr, ok := c.translateForAccess(base, true)
	if !ok {
		return
	}
	whole := c.readPhysN(TranslateResult{Physical: tr.Physical, Cacheable: tr.Cacheable}, size)
	offset := int(vaddr & alignMask)

	var result uint64
	if left {
		// the high nbytes bytes of val go into bytes [offset, size) of
		// `whole` (big-endian), i.e. its low nbytes bytes
		nbytes := size - offset
		mask := uint64(0)
		if nbytes*8 < 64 {
			mask = (uint64(1) << uint(nbytes*8)) - 1
		} else {
			mask = ^uint64(0)
		}
		keepMask := ^mask
		result = (whole & keepMask) | ((val >> (uint(offset) * 8)) & mask)
	} else {
		nbytes := offset + 1
		shift := uint(size-nbytes) * 8
		mask := uint64(0)
		if nbytes*8 < 64 {
			mask = (uint64(1) << uint(nbytes*8)) - 1
		} else {
			mask = ^uint64(0)
		}
		keepMask := ^(mask << shift)
		result = (whole & keepMask) | ((val & mask) << shift)
	}
	c.writePhysN(tr, size, result)
	c.invalidateReservationIfOverlap(tr.Physical, uint32(size))
}

func misaligned(vaddr uint64, size int) bool {
	return vaddr&uint64(size-1) != 0
}
