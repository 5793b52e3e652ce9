// pif.go - PIF ROM/RAM: boot IPL and joybus controller emulation

/*
pif.go - PIF: boot-time IPL hand-off and the joybus command interpreter

Implements spec.md 4.11's PIF surface: a read-only 2KB PIF ROM image
(the console's boot code, which the VR4300 fetches from
0xFFFFFFFFBFC00000 at cold reset before RDRAM is even populated) and a
64-byte PIF RAM that doubles as the joybus command/response buffer and,
post-boot, the "0x01 means start the CIC/boot handshake" control byte.
RunCommands walks PIF RAM's channel-framed joybus protocol: each
channel starts with a {send length, receive length} pair followed by
that many command/response bytes, 0xFE terminates the channel list.
Only the status (0x00) and read-controller-state (0x01) commands are
implemented, matching spec.md's scope (no EEPROM/rumble-pak emulation).
Grounded on original_source/src/pif/PIF.cpp for the channel framing and
command byte values.
*/

package main

const (
	PIF_RAM_SIZE = 64
	PIF_ROM_SIZE = 2 * 1024
)

// JoybusCommand identifies the controller commands this core answers.
const (
	JoybusStatus        = 0x00
	JoybusReadState      = 0x01
	JoybusReadEEPROM     = 0x04
	JoybusChannelSkip    = 0x00
	JoybusChannelEnd     = 0xFE
	JoybusChannelDisable = 0xFF
)

// ControllerState is the host-independent N64 control pad snapshot an
// input frontend fills in; PIF reflects it back for JoybusReadState.
type ControllerState struct {
	A, B, Z, Start                 bool
	DUp, DDown, DLeft, DRight      bool
	L, R                           bool
	CUp, CDown, CLeft, CRight      bool
	StickX, StickY                 int8
}

// pack reassembles the joybus byte layout: byte0 = A B Z Start DU DD DL DR,
// byte1 = 0 0 L R CU CD CL CR.
func (s ControllerState) pack() (byte, byte, byte, byte) {
	var b0, b1 byte
	if s.A {
		b0 |= 1 << 7
	}
	if s.B {
		b0 |= 1 << 6
	}
	if s.Z {
		b0 |= 1 << 5
	}
	if s.Start {
		b0 |= 1 << 4
	}
	if s.DUp {
		b0 |= 1 << 3
	}
	if s.DDown {
		b0 |= 1 << 2
	}
	if s.DLeft {
		b0 |= 1 << 1
	}
	if s.DRight {
		b0 |= 1 << 0
	}
	b1 = 0
	if s.L {
		b1 |= 1 << 5
	}
	if s.R {
		b1 |= 1 << 4
	}
	if s.CUp {
		b1 |= 1 << 3
	}
	if s.CDown {
		b1 |= 1 << 2
	}
	if s.CLeft {
		b1 |= 1 << 1
	}
	if s.CRight {
		b1 |= 1 << 0
	}
	return b0, b1, byte(s.StickX), byte(s.StickY)
}

// PIF is the boot/joybus coprocessor.
type PIF struct {
	rom [PIF_ROM_SIZE]byte
	ram [PIF_RAM_SIZE]byte

	pads [4]ControllerState
}

func NewPIF(romImage []byte) *PIF {
	p := &PIF{}
	copy(p.rom[:], romImage)
	return p
}

// SetController latches the live state for port i (0-3), read back the
// next time a JoybusReadState command is processed.
func (p *PIF) SetController(i int, s ControllerState) {
	if i >= 0 && i < len(p.pads) {
		p.pads[i] = s
	}
}

func (p *PIF) ReadAt(addr uint32) byte {
	if addr < PIF_RAM_SIZE {
		return p.ram[addr]
	}
	return 0
}

func (p *PIF) WriteAt(addr uint32, val byte) {
	if addr < PIF_RAM_SIZE {
		p.ram[addr] = val
	}
}

func (p *PIF) Read32(addr uint32) uint32 {
	if addr >= PA_PIF_ROM_BASE && addr < PA_PIF_ROM_BASE+PIF_ROM_SIZE {
		off := addr - PA_PIF_ROM_BASE
		return uint32(p.rom[off])<<24 | uint32(p.rom[off+1])<<16 | uint32(p.rom[off+2])<<8 | uint32(p.rom[off+3])
	}
	off := addr - PA_PIF_RAM_BASE
	if int(off)+4 <= PIF_RAM_SIZE {
		return uint32(p.ram[off])<<24 | uint32(p.ram[off+1])<<16 | uint32(p.ram[off+2])<<8 | uint32(p.ram[off+3])
	}
	return 0
}

func (p *PIF) Write32(addr uint32, val uint32) {
	if addr >= PA_PIF_ROM_BASE && addr < PA_PIF_ROM_BASE+PIF_ROM_SIZE {
		return // ROM is read-only
	}
	off := addr - PA_PIF_RAM_BASE
	if int(off)+4 <= PIF_RAM_SIZE {
		p.ram[off] = byte(val >> 24)
		p.ram[off+1] = byte(val >> 16)
		p.ram[off+2] = byte(val >> 8)
		p.ram[off+3] = byte(val)
	}
}

// RunCommands walks PIF RAM's channel-framed joybus block and writes
// responses back in place, per spec.md 4.11.
func (p *PIF) RunCommands() {
	pos := 0
	channel := 0
	for pos < PIF_RAM_SIZE {
		sendLen := p.ram[pos]
		if sendLen == JoybusChannelEnd {
			break
		}
		if sendLen == JoybusChannelDisable || sendLen == JoybusChannelSkip {
			pos++
			channel++
			continue
		}
		if pos+1 >= PIF_RAM_SIZE {
			break
		}
		recvLen := p.ram[pos+1]
		cmdStart := pos + 2
		if cmdStart >= PIF_RAM_SIZE {
			break
		}
		cmd := p.ram[cmdStart]
		respStart := cmdStart + int(sendLen)
		if respStart+int(recvLen) > PIF_RAM_SIZE {
			break
		}
		p.runChannelCommand(channel, cmd, int(recvLen), respStart)
		pos = respStart + int(recvLen)
		channel++
	}
}

func (p *PIF) runChannelCommand(channel int, cmd byte, recvLen int, respStart int) {
	if channel >= len(p.pads) {
		return
	}
	switch cmd {
	case JoybusStatus:
		if recvLen >= 3 {
			p.ram[respStart] = 0x05
			p.ram[respStart+1] = 0x00
			p.ram[respStart+2] = 0x01
		}
	case JoybusReadState:
		if recvLen >= 4 {
			b0, b1, sx, sy := p.pads[channel].pack()
			p.ram[respStart] = b0
			p.ram[respStart+1] = b1
			p.ram[respStart+2] = sx
			p.ram[respStart+3] = sy
		}
	}
}
