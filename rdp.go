// rdp.go - RDP command front-end: FIFO intake, not the rasterizer

/*
rdp.go - Reality Display Processor command front-end

Implements spec.md 4.9's RDP surface: DP_START/END/CURRENT command
buffer pointers (in RDRAM or, via xbus, RSP DMEM), a 64-entry opcode
length table used to know how many bytes a partially-received command
needs before it can be dispatched, the SYNC_FULL (0x29) command which
raises the DP interrupt once the backend reports the frame complete,
and a freeze/stall flag. The actual pixel pipeline is out of scope
(spec.md Non-goals): commands are decoded only far enough to frame
them and hand them to a narrow RDPBackend capability interface.
Grounded on the teacher's CoprocessorManager completion-ticket pattern
(cpu_ie64.go) for the async "signal done later" shape, and
original_source/src/rdp/RDP.cpp for the opcode length table.
*/

package main

// DP register byte offsets.
const (
	DP_START_REG   = 0x00
	DP_END_REG     = 0x04
	DP_CURRENT_REG = 0x08
	DP_STATUS_REG  = 0x0C
	DP_CLOCK_REG   = 0x10
	DP_BUFBUSY_REG = 0x14
	DP_PIPEBUSY_REG = 0x18
	DP_TMEM_REG    = 0x1C
)

const (
	DP_STATUS_XBUS_DMEM_DMA = 1 << 0
	DP_STATUS_FREEZE        = 1 << 1
	DP_STATUS_FLUSH         = 1 << 2
	DP_STATUS_START_GCLK    = 1 << 3
	DP_STATUS_TMEM_BUSY     = 1 << 4
	DP_STATUS_PIPE_BUSY     = 1 << 5
	DP_STATUS_CMD_BUSY      = 1 << 6
	DP_STATUS_CBUF_READY    = 1 << 7
	DP_STATUS_DMA_BUSY      = 1 << 8
	DP_STATUS_END_VALID     = 1 << 9
	DP_STATUS_START_VALID   = 1 << 10
)

// rdpOpcodeWords gives the command length in 64-bit words for each of
// the 64 opcode values (bits 61:56 of the first doubleword); opcodes
// with no hardware meaning default to 1 (skip and resynchronize).
var rdpOpcodeWords = func() [64]int {
	var t [64]int
	for i := range t {
		t[i] = 1
	}
	t[0x08] = 4  // Non-Shaded Triangle
	t[0x09] = 6  // Non-Shaded, Z-Buffered Triangle
	t[0x0A] = 12 // Shaded Triangle
	t[0x0B] = 14
	t[0x0C] = 12 // Textured Triangle
	t[0x0D] = 14
	t[0x0E] = 20 // Shaded, Textured Triangle
	t[0x0F] = 22
	t[0x24] = 3 // Texture Rectangle
	t[0x25] = 3
	t[0x29] = 1 // Sync Full
	t[0x2D] = 2 // Set Scissor
	t[0x2E] = 1 // Set Prim Depth
	t[0x2F] = 1 // Set Other Modes
	t[0x3C] = 1 // Set Combine Mode
	t[0x3D] = 1 // Set Texture Image
	t[0x3E] = 1 // Set Z Image
	t[0x3F] = 1 // Set Color Image
	return t
}()

// RDPBackend is the narrow capability boundary to the (out-of-scope)
// rasterizer: this core frames commands and hands them across, never
// touching pixels itself.
type RDPBackend interface {
	SubmitCommands(cmds []uint64)
	FrameComplete() <-chan struct{}
}

// RDP is the command front-end: buffer pointers, status, and a pending
// command accumulator waiting for enough bytes to dispatch.
type RDP struct {
	start, end, current uint32
	status               uint32

	rdram   *RDRAM
	mi      *MI
	backend RDPBackend

	pending []uint64
}

func NewRDP(rdram *RDRAM, mi *MI) *RDP {
	return &RDP{rdram: rdram, mi: mi, status: DP_STATUS_CBUF_READY}
}

func (d *RDP) SetBackend(b RDPBackend) { d.backend = b }

func (d *RDP) HandleRead(addr uint32) uint32 {
	switch addr {
	case DP_START_REG:
		return d.start
	case DP_END_REG:
		return d.end
	case DP_CURRENT_REG:
		return d.current
	case DP_STATUS_REG:
		return d.status
	default:
		return 0
	}
}

func (d *RDP) HandleWrite(addr uint32, val uint32) {
	switch addr {
	case DP_START_REG:
		if d.status&DP_STATUS_START_VALID == 0 {
			d.start = val &^ 0x7
			d.status |= DP_STATUS_START_VALID
		}
	case DP_END_REG:
		d.end = val &^ 0x7
		d.status |= DP_STATUS_END_VALID
		d.run()
	case DP_STATUS_REG:
		d.writeStatus(val)
	}
}

func (d *RDP) writeStatus(val uint32) {
	if val&(1<<0) != 0 {
		d.status &^= DP_STATUS_XBUS_DMEM_DMA
	}
	if val&(1<<1) != 0 {
		d.status |= DP_STATUS_XBUS_DMEM_DMA
	}
	if val&(1<<2) != 0 {
		wasFrozen := d.status&DP_STATUS_FREEZE != 0
		d.status &^= DP_STATUS_FREEZE
		if wasFrozen {
			d.run()
		}
	}
	if val&(1<<3) != 0 {
		d.status |= DP_STATUS_FREEZE
	}
	if val&(1<<4) != 0 {
		d.status &^= DP_STATUS_FLUSH
	}
	if val&(1<<5) != 0 {
		d.status |= DP_STATUS_FLUSH
	}
	if val&(1<<9) != 0 { // clear TMEM/PIPE/BUFFER busy counters
		d.status &^= DP_STATUS_TMEM_BUSY | DP_STATUS_PIPE_BUSY | DP_STATUS_CMD_BUSY
	}
}

// run consumes the [start,end) command stream now that END has been
// written. If the freeze bit is set, the stream stalls and resumes
// from `current` on the next unfreeze (spec.md 4.9).
func (d *RDP) run() {
	if d.status&DP_STATUS_FREEZE != 0 {
		return
	}
	if d.current < d.start {
		d.current = d.start
	}
	var words []uint64
	for d.current < d.end {
		hi := uint64(d.rdram.Read32(d.current))
		lo := uint64(d.rdram.Read32(d.current + 4))
		words = append(words, hi<<32|lo)
		d.current += 8
	}
	d.dispatch(words)
}

// dispatch frames complete commands from the accumulated word stream
// and forwards them to the backend; SYNC_FULL raises the DP interrupt
// once the backend reports the frame complete.
func (d *RDP) dispatch(words []uint64) {
	d.pending = append(d.pending, words...)
	for len(d.pending) > 0 {
		opcode := int(d.pending[0]>>56) & 0x3F
		need := rdpOpcodeWords[opcode]
		if len(d.pending) < need {
			break
		}
		cmd := d.pending[:need]
		d.pending = d.pending[need:]
		if opcode == 0x29 { // Sync Full
			d.status |= DP_STATUS_PIPE_BUSY
			if d.backend != nil {
				d.backend.SubmitCommands(cmd)
				go d.awaitFrameComplete()
			} else {
				d.mi.SetInterrupt(MI_INTR_DP)
			}
			continue
		}
		if d.backend != nil {
			d.backend.SubmitCommands(cmd)
		}
	}
}

func (d *RDP) awaitFrameComplete() {
	<-d.backend.FrameComplete()
	d.status &^= DP_STATUS_PIPE_BUSY
	d.mi.SetInterrupt(MI_INTR_DP)
}
