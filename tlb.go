// tlb.go - 32-entry software-managed TLB and address translation

/*
tlb.go - TLB and virtual-to-physical address translation

Implements spec.md 4.4: four virtual addressing modes selected by
Status.{KSU,EXL,ERL,KX,SX,UX}, unmapped cached/uncached regions
(KSEG0/KSEG1 in 32-bit kernel mode), and the 32-entry TLB with its
cached derived match fields (VPN2 mask, offset mask, pre-shifted
VPN2), recomputed whenever an entry is written. Grounded on
original_source/src/vr4300/MMU.cpp for the exact region partition and
match algorithm.
*/

package main

// TLBEntry holds one of the 32 software-managed TLB entries plus the
// derived fields cached at write time to accelerate matching.
type TLBEntry struct {
	PageMask uint32 // raw page mask bits (bits 24:13 significant)
	VPN2     uint64 // virtual page number / 2
	ASID     uint8
	Global   bool
	Region   uint8 // top two bits of the virtual address at entry-write time

	PFN0, PFN1           uint32
	C0, C1               uint8 // cache coherency bits
	D0, D1, V0, V1       bool

	// Cached derived fields, recomputed on write.
	vpn2Mask    uint64
	offsetMask  uint64
	vpn2Shifted uint64
}

// TranslateMode selects the four virtual addressing modes of spec.md 4.4.
type TranslateMode int

const (
	ModeUser32 TranslateMode = iota
	ModeUser64
	ModeSupervisor32
	ModeSupervisor64
	ModeKernel32
	ModeKernel64
)

// TLB is the VR4300's 32-entry translation lookaside buffer.
type TLB struct {
	entries [32]TLBEntry
}

func NewTLB() *TLB {
	t := &TLB{}
	// An entry that was never written matches no address: no VPN2
	// computed in Lookup can equal all ones.
	for i := range t.entries {
		t.entries[i].vpn2Shifted = ^uint64(0)
	}
	return t
}

// recomputeDerived recalculates the accelerator fields for entry i
// from its page mask; called whenever the entry is written.
func (t *TLB) recomputeDerived(i int) {
	e := &t.entries[i]
	mask := uint64(e.PageMask) << 13
	e.offsetMask = mask | 0x1FFF
	e.vpn2Mask = ^(mask | 0x1FFF) &^ 0x1 // VPN2 excludes the odd-page bit
	e.vpn2Shifted = e.VPN2 &^ (mask >> 13)
}

// WriteEntry installs entry values at index i (used by TLBWI/TLBWR).
func (t *TLB) WriteEntry(i int, e TLBEntry) {
	t.entries[i] = e
	t.recomputeDerived(i)
}

// ReadEntry returns a copy of entry i (used by TLBR).
func (t *TLB) ReadEntry(i int) TLBEntry {
	return t.entries[i]
}

// TLBExceptionKind distinguishes the three TLB-related faults.
type TLBExceptionKind int

const (
	TLBNone TLBExceptionKind = iota
	TLBMissFault
	TLBInvalidFault
	TLBModFault
)

// Lookup searches all 32 entries for a match on {region, ASID unless
// global, VPN2 masked by the entry's page size}. On a hit it returns
// the physical address, whether the page is cacheable, and TLBNone.
// On Invalid/Dirty violations or no match it returns the fault kind.
func (t *TLB) Lookup(vaddr uint64, region uint8, asid uint8, isWrite bool) (uint32, bool, TLBExceptionKind) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Region != region {
			continue
		}
		if !e.Global && e.ASID != asid {
			continue
		}
		vpn2 := (vaddr &^ e.offsetMask) >> 13
		if vpn2 != e.vpn2Shifted {
			continue
		}
		oddPageBit := (e.offsetMask + 1) >> 1 // the page-size bit within the pair, not the VPN2 bit above it
		odd := vaddr&oddPageBit != 0
		var pfn uint32
		var valid, dirty bool
		var c uint8
		if odd {
			pfn, valid, dirty, c = e.PFN1, e.V1, e.D1, e.C1
		} else {
			pfn, valid, dirty, c = e.PFN0, e.V0, e.D0, e.C0
		}
		if !valid {
			return 0, false, TLBInvalidFault
		}
		if isWrite && !dirty {
			return 0, false, TLBModFault
		}
		offset := vaddr & (e.offsetMask >> 1) // offset within one page of the pair
		phys := (uint32(pfn) << 12) | uint32(offset)
		cacheable := c != 2 // coherency value 2 == uncached
		return phys, cacheable, TLBNone
	}
	return 0, false, TLBMissFault
}

// Probe implements TLBP: returns (index, found).
func (t *TLB) Probe(vaddr uint64, region uint8, asid uint8) (int, bool) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Region != region {
			continue
		}
		if !e.Global && e.ASID != asid {
			continue
		}
		vpn2 := (vaddr &^ e.offsetMask) >> 13
		if vpn2 == e.vpn2Shifted {
			return i, true
		}
	}
	return 0, false
}

// Region bits used as the TLB match key: derived from the top bits of
// a 64-bit virtual address (00=user,01=supervisor,11=kernel in the
// XKPHYS/XKSEG numbering used by original_source/src/vr4300/MMU.cpp).
func regionOf(vaddr uint64) uint8 {
	return uint8(vaddr >> 62)
}

// --- Unmapped region classification (32-bit kernel addressing) ---

const (
	KSEG0_BASE = 0x8000_0000
	KSEG0_END  = 0x9FFF_FFFF
	KSEG1_BASE = 0xA000_0000
	KSEG1_END  = 0xBFFF_FFFF
	KSSEG_BASE = 0xC000_0000
	KSSEG_END  = 0xDFFF_FFFF
	KSEG3_BASE = 0xE000_0000
	KSEG3_END  = 0xFFFF_FFFF
	KUSEG_END  = 0x7FFF_FFFF
)

// TranslateResult carries the outcome of a virtual-to-physical
// translation attempt.
type TranslateResult struct {
	Physical  uint32
	Cacheable bool
	AddrError bool
	TLBFault  TLBExceptionKind
}

// Translate resolves a virtual address to a physical one per the mode
// partition of spec.md 4.4. isWrite affects TLB dirty-bit checking.
func (c *CPU) Translate(vaddr uint64, isWrite bool) TranslateResult {
	if c.cp0.AddressMode32() {
		v32 := uint32(vaddr)
		switch {
		case v32 <= KUSEG_END:
			if !c.cp0.KernelMode() && v32 > 0x7FFF_FFFF {
				return TranslateResult{AddrError: true}
			}
			return c.translateMapped(uint64(v32), isWrite)
		case v32 >= KSEG0_BASE && v32 <= KSEG0_END:
			if !c.cp0.KernelMode() {
				return TranslateResult{AddrError: true}
			}
			return TranslateResult{Physical: v32 - KSEG0_BASE, Cacheable: true}
		case v32 >= KSEG1_BASE && v32 <= KSEG1_END:
			if !c.cp0.KernelMode() {
				return TranslateResult{AddrError: true}
			}
			return TranslateResult{Physical: v32 - KSEG1_BASE, Cacheable: false}
		case v32 >= KSSEG_BASE && v32 <= KSSEG_END:
			if !c.cp0.KernelMode() {
				return TranslateResult{AddrError: true}
			}
			return c.translateMapped(uint64(v32), isWrite)
		default: // KSEG3
			if !c.cp0.KernelMode() {
				return TranslateResult{AddrError: true}
			}
			return c.translateMapped(uint64(v32), isWrite)
		}
	}
	// 64-bit addressing modes: mapped region only for simplicity beyond
	// the unmapped XKPHYS windows used by IPL/boot code.
	const xkphysBase = 0x9000_0000_0000_0000
	const xkphysEnd = 0x9FFF_FFFF_FFFF_FFFF
	if vaddr >= xkphysBase && vaddr <= xkphysEnd {
		cc := (vaddr >> 59) & 0x7
		return TranslateResult{Physical: uint32(vaddr & 0xFFFF_FFFF), Cacheable: cc != 2}
	}
	return c.translateMapped(vaddr, isWrite)
}

func (c *CPU) translateMapped(vaddr uint64, isWrite bool) TranslateResult {
	region := regionOf(vaddr)
	if c.cp0.AddressMode32() {
		region = uint8(vaddr>>30) & 0x3
	}
	asid := uint8(c.cp0.Read(CP0_ENTRYHI))
	phys, cacheable, fault := c.tlb.Lookup(vaddr, region, asid, isWrite)
	if fault != TLBNone {
		return TranslateResult{TLBFault: fault}
	}
	return TranslateResult{Physical: phys, Cacheable: cacheable}
}
