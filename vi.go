// vi.go - Video Interface: scanout timing and register block

/*
vi.go - Video Interface register block and scanout cadence

Implements spec.md 4.10's VI surface: the origin/width/control
registers that select the framebuffer RDRAM presents for scanout, and
a per-field VI interrupt scheduled against VI_V_CURRENT_LINE so a
frontend can pace itself to the console's 50/60Hz field rate.
Presentation (turning bytes into pixels on screen) is out of scope
(spec.md Non-goals) and lives behind the narrow VideoOutput interface
this type hands frames to. Grounded on the teacher's
video_backend_ebiten.go capability boundary and
original_source/src/vi/VI.cpp for the register offsets.
*/

package main

const (
	VI_CTRL_REG    = 0x00
	VI_ORIGIN_REG  = 0x04
	VI_WIDTH_REG   = 0x08
	VI_V_INTR_REG  = 0x0C
	VI_CURRENT_REG = 0x10
	VI_BURST_REG   = 0x14
	VI_VSYNC_REG   = 0x18
	VI_HSYNC_REG   = 0x1C
	VI_LEAP_REG    = 0x20
	VI_H_START_REG = 0x24
	VI_V_START_REG = 0x28
	VI_V_BURST_REG = 0x2C
	VI_X_SCALE_REG = 0x30
	VI_Y_SCALE_REG = 0x34
)

const (
	VI_CTRL_TYPE_MASK  = 0x3
	VI_CTRL_TYPE_32BPP = 3
	VI_CTRL_TYPE_16BPP = 2
)

// VideoOutput is the narrow frontend boundary: VI hands it a
// completed field's framebuffer description, never pixels it
// interprets itself.
type VideoOutput interface {
	PresentField(origin uint32, width uint32, bpp int, rdram *RDRAM)
}

// VI is the Video Interface: scanout registers plus a per-field
// interrupt scheduled through the global scheduler.
type VI struct {
	regs [14]uint32

	mi    *MI
	sched *Scheduler
	rdram *RDRAM
	out   VideoOutput

	lineCount uint32
}

const viCyclesPerLine = 1500 // approximate NTSC line cadence in CPU cycles

func NewVI(rdram *RDRAM, mi *MI, sched *Scheduler) *VI {
	v := &VI{rdram: rdram, mi: mi, sched: sched}
	v.regs[VI_V_SYNC_IDX()] = 525
	sched.AddEvent(EventVBlank, viCyclesPerLine, v.onLine)
	return v
}

func VI_V_SYNC_IDX() int { return VI_VSYNC_REG / 4 }

func (v *VI) SetOutput(out VideoOutput) { v.out = out }

func (v *VI) HandleRead(addr uint32) uint32 {
	idx := addr / 4
	if int(idx) >= len(v.regs) {
		return 0
	}
	if addr == VI_CURRENT_REG {
		return v.lineCount
	}
	return v.regs[idx]
}

func (v *VI) HandleWrite(addr uint32, val uint32) {
	idx := addr / 4
	if int(idx) >= len(v.regs) {
		return
	}
	switch addr {
	case VI_CURRENT_REG:
		v.mi.ClearInterrupt(MI_INTR_VI)
	default:
		v.regs[idx] = val
	}
}

// onLine advances the scanline counter and, on reaching the bottom
// field line and the programmed V_INTR line, presents the frame and
// raises the VI interrupt.
func (v *VI) onLine() {
	v.lineCount++
	totalLines := v.regs[VI_VSYNC_REG/4]
	if totalLines == 0 {
		totalLines = 525
	}
	if v.lineCount >= totalLines {
		v.lineCount = 0
		v.presentField()
	}
	if v.lineCount == v.regs[VI_V_INTR_REG/4] {
		v.mi.SetInterrupt(MI_INTR_VI)
	}
	v.sched.AddEvent(EventVBlank, viCyclesPerLine, v.onLine)
}

func (v *VI) presentField() {
	if v.out == nil {
		return
	}
	bpp := 16
	if v.regs[VI_CTRL_REG/4]&VI_CTRL_TYPE_MASK == VI_CTRL_TYPE_32BPP {
		bpp = 32
	}
	v.out.PresentField(v.regs[VI_ORIGIN_REG/4], v.regs[VI_WIDTH_REG/4], bpp, v.rdram)
}
