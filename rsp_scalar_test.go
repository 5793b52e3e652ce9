package main

import "testing"

func newTestRSP() *RSP {
	r := NewRSP(NewRDRAM(), NewMI())
	r.writeStatus(1) // bit0 clear-select: unhalt the core
	return r
}

func (r *RSP) writeInstr(pc uint32, word uint32) {
	r.WriteMem32(PA_SP_DMEM_BASE+SP_DMEM_SIZE+pc, word)
}

func TestRSPLuiOriLoadsImmediate(t *testing.T) {
	r := newTestRSP()
	r.writeInstr(0, encodeI(OP_LUI, 0, 8, 0xABCD))
	r.writeInstr(4, encodeI(OP_ORI, 8, 8, 0x1234))

	r.Step()
	r.Step()

	if got := r.getGPR(8); got != 0xABCD_1234 {
		t.Fatalf("GPR8 = %#x, want 0xABCD1234", got)
	}
}

func TestRSPBranchNotTakenFallsThrough(t *testing.T) {
	r := newTestRSP()
	r.setGPR(1, 1) // $1=1, $2=0: not equal
	r.writeInstr(0, encodeI(OP_BEQ, 1, 2, 4))
	r.writeInstr(4, encodeI(OP_ADDIU, 0, 9, 5)) // delay slot
	r.writeInstr(8, encodeI(OP_ADDIU, 0, 10, 1))

	r.Step() // beq (not taken: 1 != 0)
	r.Step() // delay slot
	r.Step() // fall-through path

	if r.getGPR(10) != 1 {
		t.Fatalf("not-taken branch should fall through to pc+8, GPR10 = %d, want 1", r.getGPR(10))
	}
}

func TestRSPBranchTakenJumpsAfterDelaySlot(t *testing.T) {
	r := newTestRSP()
	r.writeInstr(0, encodeI(OP_BEQ, 0, 0, 3)) // always taken: $0==$0, target = 0+4+(3<<2) = 16
	r.writeInstr(4, encodeI(OP_ADDIU, 0, 9, 7))
	r.writeInstr(8, encodeI(OP_ADDIU, 0, 10, 99))  // skipped
	r.writeInstr(16, encodeI(OP_ADDIU, 0, 10, 11)) // branch target

	r.Step() // beq
	r.Step() // delay slot (always executes)
	r.Step() // branch target

	if r.getGPR(9) != 7 {
		t.Fatalf("delay slot should execute, GPR9 = %d, want 7", r.getGPR(9))
	}
	if r.getGPR(10) != 11 {
		t.Fatalf("taken branch should land on target, GPR10 = %d, want 11", r.getGPR(10))
	}
}

func TestRSPJumpAndLinkSetsReturnAddress(t *testing.T) {
	r := newTestRSP()
	r.writeInstr(0, encodeJ(OP_JAL, 32))
	r.writeInstr(4, encodeI(OP_ADDIU, 0, 9, 1)) // delay slot

	r.Step()
	r.Step()

	if r.getGPR(31) != 8 {
		t.Fatalf("$ra = %d, want 8", r.getGPR(31))
	}
}

func TestRSPCop2MoveRoundTrip(t *testing.T) {
	r := newTestRSP()
	r.vu.vpr[5][2] = 0x1234

	// MFC2 rt=8, rd=5, element encoded in fn bits [3:1]
	r.execCop2(cop2RS_MFC, 8, 5, 2<<1)
	if got := int16(r.getGPR(8)); got != 0x1234 {
		t.Fatalf("MFC2 = %#x, want 0x1234", got)
	}

	r.setGPR(9, 0xFFFF_5678)
	r.execCop2(cop2RS_MTC, 9, 6, 3<<1)
	if r.vu.vpr[6][3] != 0x5678 {
		t.Fatalf("MTC2 lane = %#x, want 0x5678", uint16(r.vu.vpr[6][3]))
	}
}

func TestRSPCop2VectorComputeDispatchesToVectorUnit(t *testing.T) {
	r := newTestRSP()
	// With rs=0x10 (bit4 set to select vector-compute form, low 4 bits
	// giving element 0), the simplified field layout reuses rs&0x1F as
	// vs, so the source register is 16 here, not rs's nominal value.
	r.vu.vpr[16] = [8]int16{1, 2, 3, 4, 5, 6, 7, 8}
	r.vu.vpr[2] = [8]int16{10, 20, 30, 40, 50, 60, 70, 80}

	r.execCop2(0x10, 2, 3, 0x10) // fn=0x10 is VADD

	if r.vu.vpr[3][0] != 11 {
		t.Fatalf("VADD via COP2 dispatch: lane 0 = %d, want 11", r.vu.vpr[3][0])
	}
}

func TestRSPBreakHaltsAndSignalsInterruptWhenEnabled(t *testing.T) {
	r := newTestRSP()
	r.writeStatus(1 << (2*6 + 1))           // enable INTR_ON_BREAK
	r.mi.HandleWrite(MI_INTR_MASK_REG, 1<<(2*0+1)) // enable SP interrupt in MI's mask

	r.writeInstr(0, encodeR(0, 0, 0, 0, FN_BREAK))
	r.Step()

	if !r.Halted() {
		t.Fatalf("BREAK should halt the RSP")
	}
	if r.status&SP_STATUS_BROKE == 0 {
		t.Fatalf("BREAK should set the BROKE status bit")
	}
	if !r.mi.Asserted() {
		t.Fatalf("BREAK with INTR_ON_BREAK enabled should assert the SP line")
	}
}
