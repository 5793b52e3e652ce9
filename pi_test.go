package main

import "testing"

func TestCartImageRead32NaturallyAligned(t *testing.T) {
	rom := []byte{0x11, 0x22, 0x33, 0x44}
	c := NewCartImage(rom)

	got := c.Read32(PA_CART_DOM1_BASE)
	if got != 0x1122_3344 {
		t.Fatalf("aligned read = %#x, want 0x11223344", got)
	}
}

func TestCartImageRead32BusRotationGlitch(t *testing.T) {
	rom := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	c := NewCartImage(rom)

	// Address is 16-bit aligned but not 32-bit aligned (offset 2): the
	// two halfwords of the naturally-aligned word at offset 2 come back
	// swapped.
	got := c.Read32(PA_CART_DOM1_BASE + 2)
	natural := uint32(0x33)<<24 | uint32(0x44)<<16 | uint32(0x55)<<8 | uint32(0x66)
	want := (natural << 16) | (natural >> 16)
	if got != want {
		t.Fatalf("rotated read = %#x, want %#x", got, want)
	}
}

func TestCartImageWriteDiscardedOnDomain1(t *testing.T) {
	rom := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	c := NewCartImage(rom)

	c.Write32(PA_CART_DOM1_BASE, 0xFFFF_FFFF)

	if c.Read32(PA_CART_DOM1_BASE) != 0xAABB_CCDD {
		t.Fatalf("writes to domain 1 (ROM) must be discarded")
	}
}

func TestCartImageWriteToDomain2LandsInSRAM(t *testing.T) {
	c := NewCartImage(make([]byte, 16))

	c.Write32(PA_CART_DOM2_BASE, 0x0102_0304)

	if c.sram[0] != 0x01 || c.sram[3] != 0x04 {
		t.Fatalf("domain 2 write should land in SRAM, got %v", c.sram[:4])
	}
}

func TestPIDMAReadTransfersCartToRDRAM(t *testing.T) {
	rdram := NewRDRAM()
	cart := NewCartImage([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	mi := NewMI()
	sched := NewScheduler()
	p := NewPI(rdram, mi, sched, cart)

	p.HandleWrite(PI_DRAM_ADDR_REG, 0x1000)
	p.HandleWrite(PI_CART_ADDR_REG, PA_CART_DOM1_BASE)
	p.HandleWrite(PI_RD_LEN_REG, 3) // length field is count-1: 4 bytes

	if p.status&PI_STATUS_DMA_BUSY == 0 {
		t.Fatalf("PI should report DMA busy immediately after starting a transfer")
	}

	sched.RunUntil(sched.Now() + CyclesFor(4) + 1)

	if p.status&PI_STATUS_DMA_BUSY != 0 {
		t.Fatalf("DMA busy should clear once the scheduled completion fires")
	}
	if got := rdram.Read32(0x1000); got != 0xDEAD_BEEF {
		t.Fatalf("RDRAM at 0x1000 = %#x, want 0xDEADBEEF", got)
	}
}

func TestPIStatusAckClearsInterrupt(t *testing.T) {
	mi := NewMI()
	mi.HandleWrite(MI_INTR_MASK_REG, 1<<(2*4+1)) // enable PI
	mi.SetInterrupt(MI_INTR_PI)
	p := NewPI(NewRDRAM(), mi, NewScheduler(), NewCartImage(make([]byte, 4)))

	if !mi.Asserted() {
		t.Fatalf("setup: PI interrupt should be asserted before ack")
	}
	p.HandleWrite(PI_STATUS_REG, 0x2)
	if mi.Asserted() {
		t.Fatalf("writing the clear-interrupt bit to PI_STATUS_REG should deassert PI")
	}
}
