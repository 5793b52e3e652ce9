// machine.go - Top-level system assembly: CPU + RSP + peripherals + scheduler

/*
machine.go - Machine wires every module into one runnable console

Constructs the RDRAM, MI, scheduler, PI/SI/AI/VI, PIF, cartridge image
and CPU+RSP cores and connects them through MachineBus, then drives the
cycle-budgeted main loop described in spec.md 5: step the CPU and
(when not halted) the RSP in lockstep, dispatching the scheduler's due
events after each CPU instruction. Grounded on the teacher's top-level
`NewComputer`-style constructor in main.go and the goroutine-per-core
wiring in cpu_ie64.go, adapted to spec.md 5's single-goroutine
deterministic stepping (no cross-core goroutines: the RSP and VR4300
share one driving loop so their relative cycle counts stay exact).
*/

package main

// Machine is one assembled N64 console: every chip plus the bus and
// scheduler tying them together.
type Machine struct {
	Bus   *MachineBus
	CPU   *CPU
	RSP   *RSP
	Sched *Scheduler
	MI    *MI

	rspCredit int64
}

// NewMachine builds a fully wired console from a loaded ROM image and
// optional PIF ROM/IPL image.
func NewMachine(romImage []byte, pifROM []byte) *Machine {
	bus := NewMachineBus()
	sched := NewScheduler()
	mi := NewMI()

	cart := NewCartImage(romImage)
	pif := NewPIF(pifROM)
	vi := NewVI(bus.RDRAM, mi, sched)
	ai := NewAI(bus.RDRAM, mi, sched)
	si := NewSI(bus.RDRAM, mi, sched, pif)
	pi := NewPI(bus.RDRAM, mi, sched, cart)
	rsp := NewRSP(bus.RDRAM, mi)
	rdp := NewRDP(bus.RDRAM, mi)

	bus.MI = mi
	bus.RSP = rsp
	bus.RDP = rdp
	bus.VI = vi
	bus.AI = ai
	bus.PI = pi
	bus.SI = si
	bus.Cart = cart
	bus.PIF = pif

	cpu := NewCPU(bus, sched, mi)
	cpu.Reset()

	return &Machine{Bus: bus, CPU: cpu, RSP: rsp, Sched: sched, MI: mi}
}

// RunCycles advances the machine by approximately n CPU cycles: the
// VR4300 always steps; the RSP steps roughly 3 scalar instructions for
// every 2 VR4300 cycles while it is not halted (its clock runs faster
// than the CPU's, spec.md 4.7), credited fractionally across calls so
// the ratio holds over many steps rather than rounding every call. The
// scheduler drains every event due by the new clock value (VI field
// boundaries, AI/PI/SI DMA completion, the Count/Compare timer).
func (m *Machine) RunCycles(n uint64) {
	var done uint64
	for done < n {
		cpuCycles := m.CPU.Step()
		done += cpuCycles
		m.Sched.RunUntil(m.Sched.Now() + cpuCycles)

		if !m.RSP.Halted() {
			m.rspCredit += int64(cpuCycles) * 3
			for m.rspCredit >= 2 && !m.RSP.Halted() {
				m.RSP.Step()
				m.rspCredit -= 2
			}
		}
	}
}

// SetControllerState forwards a frontend's polled input for port i to
// the PIF so the next joybus ReadState command reflects it.
func (m *Machine) SetControllerState(i int, s ControllerState) {
	m.Bus.PIF.SetController(i, s)
}
