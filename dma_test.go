package main

import "testing"

type fakeDevice struct {
	mem []byte
}

func (d *fakeDevice) ReadAt(addr uint32) byte    { return d.mem[int(addr)%len(d.mem)] }
func (d *fakeDevice) WriteAt(addr uint32, v byte) { d.mem[int(addr)%len(d.mem)] = v }

func TestRunDMADeviceToRDRAM(t *testing.T) {
	rdram := NewRDRAM()
	dev := &fakeDevice{mem: []byte{1, 2, 3, 4, 5, 6}}

	RunDMA(rdram, dev, DMARequest{Direction: DMAFromDevice, RDRAMAddr: 0x100, DeviceAddr: 0, BytesPerRow: 6, Rows: 1})

	for i := 0; i < 6; i++ {
		if got := rdram.Read8(uint32(0x100 + i)); got != byte(i+1) {
			t.Fatalf("byte %d = %d, want %d", i, got, i+1)
		}
	}
}

func TestRunDMARDRAMToDevice(t *testing.T) {
	rdram := NewRDRAM()
	for i := 0; i < 4; i++ {
		rdram.Write8(uint32(0x200+i), byte(0x10+i))
	}
	dev := &fakeDevice{mem: make([]byte, 4)}

	RunDMA(rdram, dev, DMARequest{Direction: DMAToDevice, RDRAMAddr: 0x200, DeviceAddr: 0, BytesPerRow: 4, Rows: 1})

	for i := 0; i < 4; i++ {
		if dev.mem[i] != byte(0x10+i) {
			t.Fatalf("device byte %d = %#x, want %#x", i, dev.mem[i], 0x10+i)
		}
	}
}

func TestRunDMARowSkipAdvancesRDRAMCursorOnly(t *testing.T) {
	rdram := NewRDRAM()
	dev := &fakeDevice{mem: []byte{0xAA, 0xBB, 0xCC, 0xDD}}

	// 2 rows of 2 bytes, skipping 2 bytes on the RDRAM side between rows.
	RunDMA(rdram, dev, DMARequest{Direction: DMAFromDevice, RDRAMAddr: 0, DeviceAddr: 0, BytesPerRow: 2, Rows: 2, Skip: 2})

	if rdram.Read8(0) != 0xAA || rdram.Read8(1) != 0xBB {
		t.Fatalf("row 0 mismatch: %#x %#x", rdram.Read8(0), rdram.Read8(1))
	}
	// Row 1 starts at 0 + bytesPerRow(2) + skip(2) = 4, from device offset 2.
	if rdram.Read8(4) != 0xCC || rdram.Read8(5) != 0xDD {
		t.Fatalf("row 1 mismatch: %#x %#x", rdram.Read8(4), rdram.Read8(5))
	}
	if rdram.Read8(2) != 0 || rdram.Read8(3) != 0 {
		t.Fatalf("skipped RDRAM bytes should be untouched")
	}
}

func TestDMARequestTotalBytes(t *testing.T) {
	req := DMARequest{BytesPerRow: 16, Rows: 4}
	if req.TotalBytes() != 64 {
		t.Fatalf("TotalBytes = %d, want 64", req.TotalBytes())
	}
}

func TestCyclesForScalesWithByteCount(t *testing.T) {
	if got := CyclesFor(100); got != 400 {
		t.Fatalf("CyclesFor(100) = %d, want 400", got)
	}
}
