package main

import "testing"

func TestPIFRunCommandsStatus(t *testing.T) {
	p := NewPIF(make([]byte, PIF_ROM_SIZE))
	ram := []byte{1, 3, JoybusStatus, 0, 0, 0, JoybusChannelEnd}
	for i, b := range ram {
		p.WriteAt(uint32(i), b)
	}

	p.RunCommands()

	if p.ram[3] != 0x05 || p.ram[4] != 0x00 || p.ram[5] != 0x01 {
		t.Fatalf("status response = %v, want [0x05 0x00 0x01]", p.ram[3:6])
	}
}

func TestPIFRunCommandsReadStateReflectsController(t *testing.T) {
	p := NewPIF(make([]byte, PIF_ROM_SIZE))
	p.SetController(0, ControllerState{A: true, Start: true, StickX: 10, StickY: -5})

	ram := []byte{1, 4, JoybusReadState, 0, 0, 0, 0, JoybusChannelEnd}
	for i, b := range ram {
		p.WriteAt(uint32(i), b)
	}

	p.RunCommands()

	wantB0 := byte(1<<7 | 1<<4) // A | Start
	if p.ram[3] != wantB0 {
		t.Fatalf("button byte = %#b, want %#b", p.ram[3], wantB0)
	}
	if int8(p.ram[5]) != 10 {
		t.Fatalf("stick X = %d, want 10", int8(p.ram[5]))
	}
	if int8(p.ram[6]) != -5 {
		t.Fatalf("stick Y = %d, want -5", int8(p.ram[6]))
	}
}

func TestPIFRunCommandsMultipleChannels(t *testing.T) {
	p := NewPIF(make([]byte, PIF_ROM_SIZE))
	p.SetController(1, ControllerState{B: true})

	ram := []byte{
		1, 3, JoybusStatus, 0, 0, 0, // channel 0: status
		1, 4, JoybusReadState, 0, 0, 0, 0, // channel 1: read state
		JoybusChannelEnd,
	}
	for i, b := range ram {
		p.WriteAt(uint32(i), b)
	}

	p.RunCommands()

	if p.ram[3] != 0x05 {
		t.Fatalf("channel 0 status byte = %#x, want 0x05", p.ram[3])
	}
	wantB0 := byte(1 << 6) // B
	if p.ram[9] != wantB0 {
		t.Fatalf("channel 1 button byte = %#b, want %#b", p.ram[9], wantB0)
	}
}

func TestPIFRunCommandsSkipsDisconnectedChannel(t *testing.T) {
	p := NewPIF(make([]byte, PIF_ROM_SIZE))
	p.SetController(1, ControllerState{A: true})

	ram := []byte{
		JoybusChannelSkip, // channel 0: no device present
		1, 3, JoybusStatus, 0, 0, 0,
		JoybusChannelEnd,
	}
	for i, b := range ram {
		p.WriteAt(uint32(i), b)
	}

	p.RunCommands()

	if p.ram[4] != 0x05 {
		t.Fatalf("channel 1 status should still be answered after a skip, got %v", p.ram[1:5])
	}
}

func TestPIFROMIsReadOnly(t *testing.T) {
	rom := make([]byte, PIF_ROM_SIZE)
	rom[0] = 0xAA
	p := NewPIF(rom)

	p.Write32(PA_PIF_ROM_BASE, 0xFFFF_FFFF)

	if p.Read32(PA_PIF_ROM_BASE)>>24 != 0xAA {
		t.Fatalf("writes to PIF ROM should be discarded")
	}
}
