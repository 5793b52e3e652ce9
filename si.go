// si.go - Serial Interface: PIF RAM DMA gateway

/*
si.go - Serial Interface register block

Implements spec.md 4.10/4.11's SI surface: the two DMA directions
between RDRAM and PIF RAM (PIF RAM is where the CPU posts joybus
command blocks and reads back controller/EEPROM responses), and the SI
interrupt raised on DMA completion. Grounded on
original_source/src/si/SI.cpp for the register offsets, and dma.go for
the shared row/skip transfer primitive (here always a single 64-byte
row, matching PIF RAM's fixed size).
*/

package main

const (
	SI_DRAM_ADDR_REG      = 0x00
	SI_PIF_ADDR_RD64B_REG = 0x04
	SI_PIF_ADDR_WR64B_REG = 0x10
	SI_STATUS_REG         = 0x18
)

const (
	SI_STATUS_DMA_BUSY  = 1 << 0
	SI_STATUS_IO_BUSY   = 1 << 1
	SI_STATUS_DMA_ERROR = 1 << 3
	SI_STATUS_INTERRUPT = 1 << 12
)

// SI is the Serial Interface: a fixed 64-byte DMA channel to PIF RAM.
type SI struct {
	dramAddr uint32
	status   uint32

	rdram *RDRAM
	mi    *MI
	sched *Scheduler
	pif   *PIF
}

func NewSI(rdram *RDRAM, mi *MI, sched *Scheduler, pif *PIF) *SI {
	return &SI{rdram: rdram, mi: mi, sched: sched, pif: pif}
}

func (s *SI) HandleRead(addr uint32) uint32 {
	switch addr {
	case SI_DRAM_ADDR_REG:
		return s.dramAddr
	case SI_STATUS_REG:
		return s.status
	default:
		return 0
	}
}

func (s *SI) HandleWrite(addr uint32, val uint32) {
	switch addr {
	case SI_DRAM_ADDR_REG:
		s.dramAddr = val & 0xFF_FFFF
	case SI_PIF_ADDR_RD64B_REG:
		s.runDMA(DMAFromDevice)
	case SI_PIF_ADDR_WR64B_REG:
		s.runDMA(DMAToDevice)
	case SI_STATUS_REG:
		s.status &^= SI_STATUS_INTERRUPT
		s.mi.ClearInterrupt(MI_INTR_SI)
	}
}

func (s *SI) runDMA(dir DMADirection) {
	req := DMARequest{
		Direction:   dir,
		RDRAMAddr:   s.dramAddr,
		BytesPerRow: 64,
		Rows:        1,
	}
	if dir == DMAToDevice {
		// RDRAM -> PIF RAM: the CPU posted a joybus command block; run
		// the PIF's command interpreter once the bytes land.
		RunDMA(s.rdram, s.pif, req)
		s.pif.RunCommands()
	} else {
		RunDMA(s.rdram, s.pif, req)
	}
	s.status |= SI_STATUS_INTERRUPT
	cycles := CyclesFor(64)
	s.sched.AddEvent(EventSiDmaFinish, cycles, func() {
		s.mi.SetInterrupt(MI_INTR_SI)
	})
}
