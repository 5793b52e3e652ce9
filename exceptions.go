// exceptions.go - VR4300 exception taxonomy, priority and dispatch

/*
exceptions.go - Exception priority table, ExcCode assignment, vectors

Implements spec.md 4.4's closed exception taxonomy and the static
priority table: when more than one exception is signalled in a cycle,
the highest-priority one wins and the rest are discarded for that
cycle (spec.md 7). Grounded on
original_source/src/vr4300/Exceptions.cpp for ExcCode numbering and
vector selection.
*/

package main

// ExceptionKind enumerates the closed set of spec.md 7's exceptions,
// ordered here by ascending ExcCode where ExcCode applies.
type ExceptionKind int

const (
	ExcInterrupt ExceptionKind = iota
	ExcTlbModification
	ExcTlbInvalidLoad
	ExcTlbMissLoad
	ExcTlbInvalidStore
	ExcTlbMissStore
	ExcAddressErrorLoad
	ExcAddressErrorStore
	ExcBusErrorInstr
	ExcBusErrorData
	ExcSyscall
	ExcBreakpoint
	ExcReservedInstruction
	ExcCoprocessorUnusable
	ExcIntegerOverflow
	ExcTrap
	ExcFloatingPoint
	ExcWatch
	ExcXtlbMiss
	ExcColdReset
	ExcSoftReset
	ExcNmi
)

// priority returns the spec.md 4.4 priority value (higher wins).
func (e ExceptionKind) priority() int {
	switch e {
	case ExcColdReset:
		return 20
	case ExcSoftReset:
		return 19
	case ExcNmi:
		return 18
	case ExcAddressErrorLoad, ExcAddressErrorStore:
		return 17
	case ExcTlbMissLoad, ExcXtlbMiss:
		return 16
	case ExcTlbInvalidLoad:
		return 15
	case ExcBusErrorInstr:
		return 14
	case ExcSyscall:
		return 13
	case ExcBreakpoint:
		return 12
	case ExcCoprocessorUnusable:
		return 11
	case ExcReservedInstruction:
		return 10
	case ExcTrap:
		return 9
	case ExcIntegerOverflow:
		return 8
	case ExcFloatingPoint:
		return 7
	case ExcTlbMissStore:
		return 5
	case ExcTlbInvalidStore:
		return 4
	case ExcTlbModification:
		return 3
	case ExcWatch:
		return 2
	case ExcBusErrorData:
		return 1
	case ExcInterrupt:
		return 0
	default:
		return -1
	}
}

// excCode returns the 5-bit Cause.ExcCode for the exception.
func (e ExceptionKind) excCode() uint64 {
	switch e {
	case ExcInterrupt:
		return 0
	case ExcTlbModification:
		return 1
	case ExcTlbMissLoad, ExcTlbInvalidLoad, ExcXtlbMiss:
		return 2
	case ExcTlbMissStore, ExcTlbInvalidStore:
		return 3
	case ExcAddressErrorLoad:
		return 4
	case ExcAddressErrorStore:
		return 5
	case ExcBusErrorInstr:
		return 6
	case ExcBusErrorData:
		return 7
	case ExcSyscall:
		return 8
	case ExcBreakpoint:
		return 9
	case ExcReservedInstruction:
		return 10
	case ExcCoprocessorUnusable:
		return 11
	case ExcIntegerOverflow:
		return 12
	case ExcTrap:
		return 13
	case ExcFloatingPoint:
		return 15
	case ExcWatch:
		return 23
	default:
		return 0
	}
}

// PendingException carries a raised exception and the fields the
// handler needs before it calls Enter.
type PendingException struct {
	Kind       ExceptionKind
	BadVAddr   uint64
	CE         uint64 // coprocessor number for CoprocessorUnusable
	hasBadAddr bool
}

// raise records exc as pending if it outranks whatever is currently
// pending this cycle (spec.md 7: the highest-priority wins, others
// are discarded for that cycle).
func (c *CPU) raise(exc PendingException) {
	if c.pendingExc == nil || exc.Kind.priority() > c.pendingExc.Kind.priority() {
		e := exc
		c.pendingExc = &e
	}
}

func (c *CPU) raiseAddrError(vaddr uint64, isStore bool) {
	kind := ExcAddressErrorLoad
	if isStore {
		kind = ExcAddressErrorStore
	}
	c.raise(PendingException{Kind: kind, BadVAddr: vaddr, hasBadAddr: true})
}

func (c *CPU) raiseTLB(fault TLBExceptionKind, vaddr uint64, isStore bool, is64 bool) {
	var kind ExceptionKind
	switch fault {
	case TLBModFault:
		kind = ExcTlbModification
	case TLBInvalidFault:
		if isStore {
			kind = ExcTlbInvalidStore
		} else {
			kind = ExcTlbInvalidLoad
		}
	case TLBMissFault:
		if is64 {
			kind = ExcXtlbMiss
		} else if isStore {
			kind = ExcTlbMissStore
		} else {
			kind = ExcTlbMissLoad
		}
	default:
		return
	}
	c.raise(PendingException{Kind: kind, BadVAddr: vaddr, hasBadAddr: true})
}

// vectorFor picks the exception vector per the {BEV,EXL} 2x2 table
// of spec.md 4.4, plus the dedicated TLB-refill vector and the cold
// reset vector.
func (c *CPU) vectorFor(kind ExceptionKind) uint64 {
	bev := c.cp0.Read(CP0_STATUS)&(1<<22) != 0
	if kind == ExcColdReset || kind == ExcSoftReset || kind == ExcNmi {
		return 0xFFFF_FFFF_BFC0_0000
	}
	base := uint64(0xFFFF_FFFF_8000_0000)
	if bev {
		base = 0xFFFF_FFFF_BFC0_0200
	}
	switch kind {
	case ExcTlbMissLoad, ExcTlbMissStore:
		if c.cp0.Read(CP0_STATUS)&STATUS_EXL == 0 {
			if bev {
				return base + 0x000
			}
			return base + 0x000
		}
		return base + 0x180
	case ExcXtlbMiss:
		if c.cp0.Read(CP0_STATUS)&STATUS_EXL == 0 {
			return base + 0x080
		}
		return base + 0x180
	default:
		return base + 0x180
	}
}

// Enter transitions the CPU into exception state: latches Cause.BD,
// EPC, sets EXL, fills per-exception state (BadVAddr, Context,
// XContext, EntryHi, Cause.CE), and jumps to the chosen vector.
func (c *CPU) Enter(exc PendingException) {
	// The vector depends on EXL as it was before this exception set it.
	vector := c.vectorFor(exc.Kind)
	st := c.cp0.Read(CP0_STATUS)
	if st&STATUS_EXL == 0 {
		inBD := c.inDelaySlot
		cause := c.cp0.Read(CP0_CAUSE) &^ CAUSE_BD
		if inBD {
			cause |= CAUSE_BD
			c.cp0.Write(CP0_EPC, c.pc-4)
		} else {
			c.cp0.Write(CP0_EPC, c.pc)
		}
		c.cp0.setCauseHW(cause)
		c.cp0.Write(CP0_STATUS, st|STATUS_EXL)
	}
	if exc.Kind == ExcNmi || exc.Kind == ExcColdReset || exc.Kind == ExcSoftReset {
		c.cp0.Write(CP0_ERROREPC, c.pc)
		c.cp0.Write(CP0_STATUS, c.cp0.Read(CP0_STATUS)|STATUS_ERL)
	}

	cause := c.cp0.Read(CP0_CAUSE)
	cause = (cause &^ CAUSE_EXCCODE_MASK) | (exc.Kind.excCode() << CAUSE_EXCCODE_SHIFT)
	if exc.Kind == ExcCoprocessorUnusable {
		cause = (cause &^ CAUSE_CE_MASK) | (exc.CE << CAUSE_CE_SHIFT)
	}
	c.cp0.setCauseHW(cause)

	if exc.hasBadAddr {
		// BadVAddr and the BadVPN2 fields are hardware-written, so they
		// bypass the MTC0 write masks that CP0.Write applies.
		c.cp0.regs[CP0_BADVADDR] = exc.BadVAddr
		ctx := c.cp0.Read(CP0_CONTEXT)
		ctx = (ctx &^ 0x7FFFF0) | ((exc.BadVAddr >> 13) << 4 & 0x7FFFF0)
		c.cp0.regs[CP0_CONTEXT] = ctx
		xctx := c.cp0.Read(CP0_XCONTEXT)
		xctx = (xctx &^ 0xFFFF_FFFF0) | ((exc.BadVAddr >> 13) << 4 & 0xFFFF_FFFF0)
		c.cp0.regs[CP0_XCONTEXT] = xctx
		eh := c.cp0.Read(CP0_ENTRYHI)
		eh = (eh &^ 0xFFFF_E000) | (exc.BadVAddr & 0xFFFF_E000)
		c.cp0.Write(CP0_ENTRYHI, eh)
	}

	c.pc = vector
	c.inDelaySlot = false
	c.pendingJump = false
	c.pendingExc = nil
}

// ERET implements the ERET instruction: restores PC from ErrorEPC or
// EPC, clears ERL/EXL, clears LLbit, and raises AddressError if the
// returned PC is misaligned.
func (c *CPU) ERET() {
	st := c.cp0.Read(CP0_STATUS)
	if st&STATUS_ERL != 0 {
		c.pc = c.cp0.Read(CP0_ERROREPC)
		c.cp0.Write(CP0_STATUS, st&^uint64(STATUS_ERL))
	} else {
		c.pc = c.cp0.Read(CP0_EPC)
		c.cp0.Write(CP0_STATUS, st&^uint64(STATUS_EXL))
	}
	c.llbit = false
	if c.pc&0x3 != 0 {
		c.raiseAddrError(c.pc, false)
	}
	c.checkInterrupts()
}

// checkInterrupts re-evaluates Status/Cause for a pending interrupt
// and raises ExcInterrupt if one is now due; called after every write
// to Cause/Status/Compare/MI state (spec.md 5).
func (c *CPU) checkInterrupts() {
	if c.cp0 == nil {
		return
	}
	if c.cp0.PendingInterrupt() {
		c.interruptRequested = true
	} else {
		c.interruptRequested = false
	}
}
