// mi.go - MIPS Interface interrupt aggregator

/*
mi.go - Per-source interrupt latches feeding CPU IP2

The MI holds one pending bit and one enable bit per external source
(SP, SI, AI, VI, PI, DP - spec.md 3). The logical AND of pending and
enable across all sources is asserted into CP0 Cause bit 10 (IP2).
Peripherals never hold a reference to the CPU; they call SetInterrupt/
ClearInterrupt on MI by tag, and MI recomputes the aggregate each time,
matching the "no owning cycles" guidance of spec.md 9.
*/

package main

// MIInterrupt identifies one of the six external interrupt sources.
type MIInterrupt uint32

const (
	MI_INTR_SP MIInterrupt = 1 << 0
	MI_INTR_SI MIInterrupt = 1 << 1
	MI_INTR_AI MIInterrupt = 1 << 2
	MI_INTR_VI MIInterrupt = 1 << 3
	MI_INTR_PI MIInterrupt = 1 << 4
	MI_INTR_DP MIInterrupt = 1 << 5

	MI_INTR_MASK_ALL MIInterrupt = 0x3F
)

// MI register offsets, relative to PA_MI_BASE.
const (
	MI_MODE_REG       = 0x00
	MI_VERSION_REG    = 0x04
	MI_INTR_REG       = 0x08
	MI_INTR_MASK_REG  = 0x0C
	MI_MODE_INIT_LEN_MASK = 0x7F
	MI_MODE_INIT          = 1 << 7
	MI_MODE_EBUS          = 1 << 8
	MI_MODE_RDRAM         = 1 << 9
)

// MI is the MIPS interface: interrupt aggregation plus the tiny mode
// register used during RDRAM initialization handshakes.
type MI struct {
	pending MIInterrupt
	enabled MIInterrupt
	mode    uint32

	onIP2Change func(asserted bool)
}

// NewMI constructs an MI with all interrupts disabled.
func NewMI() *MI {
	return &MI{}
}

// SetInterrupt latches a source as pending and recomputes IP2.
func (m *MI) SetInterrupt(src MIInterrupt) {
	m.pending |= src
	m.recompute()
}

// ClearInterrupt clears a pending source. Peripherals call it when
// software acknowledges through the peripheral's own register (for
// example a write to PI_STATUS or AI_STATUS); writes to
// MI_INTR_MASK_REG only change which sources are enabled.
func (m *MI) ClearInterrupt(src MIInterrupt) {
	m.pending &^= src
	m.recompute()
}

func (m *MI) recompute() {
	asserted := m.pending&m.enabled != 0
	if m.onIP2Change != nil {
		m.onIP2Change(asserted)
	}
}

// Asserted reports whether IP2 should currently be set.
func (m *MI) Asserted() bool {
	return m.pending&m.enabled != 0
}

// SetIP2Callback registers the function MI calls whenever the
// aggregate interrupt line changes; the CPU wires this to its own
// Cause.IP2 recomputation.
func (m *MI) SetIP2Callback(cb func(asserted bool)) {
	m.onIP2Change = cb
}

// HandleRead services MI_* register reads.
func (m *MI) HandleRead(addr uint32) uint32 {
	switch addr & 0xF {
	case MI_MODE_REG:
		return m.mode
	case MI_VERSION_REG:
		return 0x0202_0102
	case MI_INTR_REG:
		return uint32(m.pending)
	case MI_INTR_MASK_REG:
		return uint32(m.enabled)
	default:
		return 0
	}
}

// Mask-write bit pairs for MI_INTR_MASK_REG: writing bit 2n clears the
// corresponding enable, bit 2n+1 sets it (same dual-bit convention the
// SP status register uses, spec.md 4.8).
func (m *MI) HandleWrite(addr uint32, val uint32) {
	switch addr & 0xF {
	case MI_MODE_REG:
		m.mode = val & 0x3FF
	case MI_INTR_MASK_REG:
		for i := 0; i < 6; i++ {
			clearBit := uint32(1) << (2 * i)
			setBit := uint32(1) << (2*i + 1)
			src := MIInterrupt(1 << i)
			if val&clearBit != 0 {
				m.enabled &^= src
			}
			if val&setBit != 0 {
				m.enabled |= src
			}
		}
		m.recompute()
	}
}
