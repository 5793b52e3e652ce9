package main

import "testing"

func TestTLBLookupMissWithNoEntries(t *testing.T) {
	tlb := NewTLB()
	_, _, fault := tlb.Lookup(0x1000, 0, 0, false)
	if fault != TLBMissFault {
		t.Fatalf("empty TLB should miss, got fault %v", fault)
	}
}

func TestTLBLookupHitEvenPage(t *testing.T) {
	tlb := NewTLB()
	tlb.WriteEntry(0, TLBEntry{
		VPN2:   0x1, // page pair starting at vaddr 0x2000
		Region: 0,
		ASID:   5,
		PFN0:   0x10,
		V0:     true,
		D0:     true,
		C0:     3,
		PFN1:   0x11,
		V1:     true,
	})

	phys, cacheable, fault := tlb.Lookup(0x2000, 0, 5, false)
	if fault != TLBNone {
		t.Fatalf("expected a hit, got fault %v", fault)
	}
	if phys != 0x10<<12 {
		t.Fatalf("physical = %#x, want %#x", phys, 0x10<<12)
	}
	if !cacheable {
		t.Fatalf("C0=3 should be cacheable")
	}
}

func TestTLBLookupHitOddPage(t *testing.T) {
	tlb := NewTLB()
	tlb.WriteEntry(0, TLBEntry{
		VPN2:   0x1,
		Region: 0,
		ASID:   5,
		PFN0:   0x10,
		V0:     true,
		PFN1:   0x11,
		V1:     true,
		D1:     true,
		C1:     2, // uncached
	})

	phys, cacheable, fault := tlb.Lookup(0x3000, 0, 5, false)
	if fault != TLBNone {
		t.Fatalf("expected a hit on the odd page, got fault %v", fault)
	}
	if phys != 0x11<<12 {
		t.Fatalf("physical = %#x, want %#x", phys, 0x11<<12)
	}
	if cacheable {
		t.Fatalf("C1=2 should report uncached")
	}
}

func TestTLBLookupInvalidPage(t *testing.T) {
	tlb := NewTLB()
	tlb.WriteEntry(0, TLBEntry{VPN2: 0x1, Region: 0, ASID: 5, V0: false})

	_, _, fault := tlb.Lookup(0x2000, 0, 5, false)
	if fault != TLBInvalidFault {
		t.Fatalf("V0=false should raise TLBInvalidFault, got %v", fault)
	}
}

func TestTLBLookupModFaultOnWriteToCleanPage(t *testing.T) {
	tlb := NewTLB()
	tlb.WriteEntry(0, TLBEntry{VPN2: 0x1, Region: 0, ASID: 5, V0: true, D0: false})

	_, _, fault := tlb.Lookup(0x2000, 0, 5, true)
	if fault != TLBModFault {
		t.Fatalf("writing to a clean page should raise TLBModFault, got %v", fault)
	}
}

func TestTLBLookupIgnoresASIDForGlobalEntry(t *testing.T) {
	tlb := NewTLB()
	tlb.WriteEntry(0, TLBEntry{VPN2: 0x1, Region: 0, Global: true, PFN0: 0x7, V0: true})

	_, _, fault := tlb.Lookup(0x2000, 0, 0xFF, false)
	if fault != TLBNone {
		t.Fatalf("a global entry should match regardless of ASID, got fault %v", fault)
	}
}

func TestTLBLookupRejectsMismatchedASID(t *testing.T) {
	tlb := NewTLB()
	tlb.WriteEntry(0, TLBEntry{VPN2: 0x1, Region: 0, ASID: 5, PFN0: 0x7, V0: true})

	_, _, fault := tlb.Lookup(0x2000, 0, 6, false)
	if fault != TLBMissFault {
		t.Fatalf("non-global entry with a different ASID should miss, got %v", fault)
	}
}

func TestTLBProbeFindsMatchingEntry(t *testing.T) {
	tlb := NewTLB()
	tlb.WriteEntry(3, TLBEntry{VPN2: 0x1, Region: 0, ASID: 5})

	idx, found := tlb.Probe(0x2000, 0, 5)
	if !found || idx != 3 {
		t.Fatalf("Probe = (%d, %v), want (3, true)", idx, found)
	}
}

func TestTLBPageMaskWidensMatchRange(t *testing.T) {
	tlb := NewTLB()
	// PageMask 0x3 selects 16KB pages (4KB pages use 0): PageMask<<13 is
	// 0x6000, widening offsetMask from 0x1FFF to 0x7FFF, so one entry
	// covers a 32KB even/odd page pair.
	tlb.WriteEntry(0, TLBEntry{
		PageMask: 0x3, // widen offsetMask beyond the default 0x1FFF
		VPN2:     0x0,
		Region:   0,
		PFN0:     0x20,
		V0:       true,
	})

	// With PageMask=0x3, mask = 0x3<<13 = 0x6000, offsetMask = 0x7FFF,
	// and the odd/even select bit becomes 0x4000. 0x1000 stays within
	// the widened even-page range and below that bit.
	_, _, fault := tlb.Lookup(0x1000, 0, 0, false)
	if fault != TLBNone {
		t.Fatalf("widened page mask should still match, got fault %v", fault)
	}
}

func TestTranslateKSEG0IsUnmappedAndCacheable(t *testing.T) {
	m, _ := newTestMachine()
	result := m.CPU.Translate(0xFFFF_FFFF_8000_1000, false)
	if result.AddrError || result.TLBFault != TLBNone {
		t.Fatalf("KSEG0 translation should not fault: %+v", result)
	}
	if result.Physical != 0x1000 {
		t.Fatalf("KSEG0 physical = %#x, want 0x1000", result.Physical)
	}
	if !result.Cacheable {
		t.Fatalf("KSEG0 should be cacheable")
	}
}

func TestTranslateKSEG1IsUnmappedAndUncacheable(t *testing.T) {
	m, _ := newTestMachine()
	result := m.CPU.Translate(0xFFFF_FFFF_A000_1000, false)
	if result.AddrError || result.TLBFault != TLBNone {
		t.Fatalf("KSEG1 translation should not fault: %+v", result)
	}
	if result.Physical != 0x1000 {
		t.Fatalf("KSEG1 physical = %#x, want 0x1000", result.Physical)
	}
	if result.Cacheable {
		t.Fatalf("KSEG1 should be uncacheable")
	}
}

func TestTranslateKUSEGRequiresKernelModeAboveHalf(t *testing.T) {
	m, _ := newTestMachine()
	// Force user mode: KSU=user, EXL=ERL=0.
	m.CPU.cp0.Write(CP0_STATUS, uint64(KSU_USER)<<STATUS_KSU_SHIFT)

	result := m.CPU.Translate(0xFFFF_FFFF_8000_0000, false)
	if !result.AddrError {
		t.Fatalf("user mode accessing a KSEG0-range address as KUSEG should address-error")
	}
}

func TestTranslateMappedRegionMissesWithoutTLBEntry(t *testing.T) {
	m, _ := newTestMachine()
	m.CPU.cp0.Write(CP0_STATUS, uint64(KSU_USER)<<STATUS_KSU_SHIFT)

	result := m.CPU.Translate(0x1000, false)
	if result.TLBFault != TLBMissFault {
		t.Fatalf("mapped KUSEG address with no TLB entry should miss, got %+v", result)
	}
}
