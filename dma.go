// dma.go - Row/skip block-copy DMA engine shared by PI, SI and the RSP

/*
dma.go - DMA engine

Implements the row/skip block-copy semantics shared by the PI cartridge
DMA, the SI PIF DMA, and the RSP SP-interface DMA (spec.md 2, 4.8,
4.10). A transfer copies `rows` rows of `bytesPerRow` bytes each,
advancing the RDRAM-side cursor by bytesPerRow+skip per row and the
device-side cursor by bytesPerRow per row (device-side wrap, if any, is
the caller's responsibility via the read/write functions it supplies).

Completion is reported through the scheduler so that callers observe
the DMA-finish event rather than a direct function return, matching
spec.md's "everything computed forward in time" concurrency model
(spec.md 5).
*/

package main

// DMADirection indicates which side is the source.
type DMADirection int

const (
	DMAToDevice   DMADirection = iota // RDRAM -> device
	DMAFromDevice                     // device -> RDRAM
)

// DMARequest describes one row/skip block copy.
type DMARequest struct {
	Direction   DMADirection
	RDRAMAddr   uint32
	DeviceAddr  uint32
	BytesPerRow uint32
	Rows        uint32
	Skip        uint32
}

// TotalBytes returns rows * bytesPerRow, the count of bytes actually
// transferred (skip bytes are not transferred, only skipped on the
// RDRAM side).
func (r DMARequest) TotalBytes() uint32 {
	return r.Rows * r.BytesPerRow
}

// CyclesFor estimates the DMA's running cost in CPU cycles, per
// spec.md 4.8's "~4 CPU cycles per byte" rule of thumb, applied
// uniformly to PI/SI/RSP DMA.
func CyclesFor(totalBytes uint32) uint64 {
	return uint64(totalBytes) * 4
}

// DeviceMem abstracts the non-RDRAM side of a DMA: RSP DMEM/IMEM, the
// cartridge ROM/SRAM image, or PIF RAM, each with its own addressing
// and wrap rules.
type DeviceMem interface {
	ReadAt(addr uint32) byte
	WriteAt(addr uint32, val byte)
}

// RunDMA performs a synchronous row/skip block copy between rdram and
// dev. The device-side address is advanced modulo whatever wrap dev's
// ReadAt/WriteAt implement (callers pass a DeviceMem that already masks
// addresses, e.g. SP DMEM/IMEM wrapping modulo 4096).
func RunDMA(rdram *RDRAM, dev DeviceMem, req DMARequest) {
	rAddr := req.RDRAMAddr
	dAddr := req.DeviceAddr
	for row := uint32(0); row < req.Rows; row++ {
		for b := uint32(0); b < req.BytesPerRow; b++ {
			switch req.Direction {
			case DMAToDevice:
				dev.WriteAt(dAddr+b, rdram.Read8(rAddr+b))
			case DMAFromDevice:
				rdram.Write8(rAddr+b, dev.ReadAt(dAddr+b))
			}
		}
		rAddr += req.BytesPerRow + req.Skip
		dAddr += req.BytesPerRow
	}
}
