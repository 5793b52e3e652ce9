// ai.go - Audio Interface: sample FIFO and DAC pacing

/*
ai.go - Audio Interface register block

Implements spec.md 4.10's AI surface: a two-deep pending-DMA queue (the
real AI_LEN/AI_DRAM_ADDR pair can be written again while a buffer is
still playing, per spec.md's "double-buffered" note), the
AI_DACRATE/AI_BITRATE registers (stored and read back; a buffer's
drain time is CyclesFor(length) and does not depend on them), and the
AI interrupt raised once a queued buffer finishes draining. Audio rendering itself is out
of scope: samples are handed to the narrow AudioOutput boundary.
Grounded on the teacher's audio_backend_oto.go capability split and
original_source/src/ai/AI.cpp for the register offsets and the
double-buffer busy/full semantics.
*/

package main

const (
	AI_DRAM_ADDR_REG = 0x00
	AI_LEN_REG        = 0x04
	AI_CONTROL_REG    = 0x08
	AI_STATUS_REG     = 0x0C
	AI_DACRATE_REG    = 0x10
	AI_BITRATE_REG    = 0x14
)

const (
	AI_STATUS_FIFO_FULL = 1 << 31
	AI_STATUS_DMA_BUSY  = 1 << 30
)

// AudioOutput is the narrow frontend boundary AI hands completed
// sample buffers to.
type AudioOutput interface {
	QueueSamples(pcm []byte)
}

type aiPendingBuffer struct {
	addr uint32
	len  uint32
}

// AI is the Audio Interface: a two-entry DMA queue whose head drains
// CyclesFor(len) cycles after it starts, raising the AI interrupt as
// each buffer finishes.
type AI struct {
	dramAddr uint32
	length   uint32
	control  uint32
	dacrate  uint32
	bitrate  uint32

	queue []aiPendingBuffer

	rdram *RDRAM
	mi    *MI
	sched *Scheduler
	out   AudioOutput
}

func NewAI(rdram *RDRAM, mi *MI, sched *Scheduler) *AI {
	return &AI{rdram: rdram, mi: mi, sched: sched}
}

func (a *AI) SetOutput(out AudioOutput) { a.out = out }

func (a *AI) HandleRead(addr uint32) uint32 {
	switch addr {
	case AI_LEN_REG:
		if len(a.queue) > 0 {
			return a.queue[0].len
		}
		return 0
	case AI_STATUS_REG:
		var st uint32
		if len(a.queue) >= 2 {
			st |= AI_STATUS_FIFO_FULL
		}
		if len(a.queue) > 0 {
			st |= AI_STATUS_DMA_BUSY
		}
		return st
	case AI_DACRATE_REG:
		return a.dacrate
	case AI_BITRATE_REG:
		return a.bitrate
	default:
		return 0
	}
}

func (a *AI) HandleWrite(addr uint32, val uint32) {
	switch addr {
	case AI_DRAM_ADDR_REG:
		a.dramAddr = val & 0xFF_FFF8
	case AI_LEN_REG:
		a.length = val & 0x3_FFFF
		a.enqueue()
	case AI_CONTROL_REG:
		a.control = val & 1
	case AI_STATUS_REG:
		a.mi.ClearInterrupt(MI_INTR_AI)
	case AI_DACRATE_REG:
		a.dacrate = val & 0x3FFF
	case AI_BITRATE_REG:
		a.bitrate = val & 0xF
	}
}

func (a *AI) enqueue() {
	if len(a.queue) >= 2 {
		return // real hardware would latch FIFO_FULL and drop the write
	}
	buf := aiPendingBuffer{addr: a.dramAddr, len: a.length}
	a.queue = append(a.queue, buf)
	cycles := CyclesFor(buf.len)
	a.sched.AddEvent(EventAudioSample, cycles, a.drainHead)
}

func (a *AI) drainHead() {
	if len(a.queue) == 0 {
		return
	}
	buf := a.queue[0]
	a.queue = a.queue[1:]
	if a.out != nil {
		pcm := a.rdram.CopyOut(buf.addr, int(buf.len))
		a.out.QueueSamples(pcm)
	}
	a.mi.SetInterrupt(MI_INTR_AI)
	if len(a.queue) > 0 {
		next := a.queue[0]
		a.sched.AddEvent(EventAudioSample, CyclesFor(next.len), a.drainHead)
	}
}
