// rsp_scalar.go - RSP scalar core: microcode fetch/decode/execute

/*
rsp_scalar.go - RSP's MIPS-I-subset scalar interpreter

The RSP runs a reduced MIPS-I instruction set out of its own 4KB IMEM:
no FPU, no TLB/cache, no exception/interrupt vectoring beyond BREAK,
12-bit (4KB-wrapping) instruction and data addresses, and a COP2
escape for the vector unit instead of VR4300's COP0/COP1. The VR4300's
OP_/FN_ opcode constants are shared, but the 32-bit ALU, shift and
branch semantics are implemented here in the RSP's own switch rather
than through cpu_alu.go. Grounded
on original_source/src/rsp/RSP.cpp's interpreter loop and
original_source/src/rsp/VU.cpp for the COP2 instruction encoding.
*/

package main

// OP_LWC2/OP_SWC2 are the RSP's vector load/store primary opcodes; the
// subfield normally carrying a COP's function code instead selects
// which of the twelve load/store shapes (LBV..LTV, SBV..STV) runs.
const (
	OP_LWC2 = 0x32
	OP_SWC2 = 0x3A
)

// COP2 (vector unit) function-field to VectorOp mapping, selected when
// the COP2 opcode's rs field has bit 4 set (the "VU compute" form).
var cop2FuncToOp = map[uint32]VectorOp{
	0x00: VOP_VMULF,
	0x01: VOP_VMULU,
	0x03: VOP_VMULQ,
	0x04: VOP_VMUDL,
	0x05: VOP_VMUDM,
	0x06: VOP_VMUDN,
	0x07: VOP_VMUDH,
	0x08: VOP_VMACF,
	0x09: VOP_VMACU,
	0x0B: VOP_VMACQ,
	0x0C: VOP_VMADL,
	0x0D: VOP_VMADM,
	0x0E: VOP_VMADN,
	0x0F: VOP_VMADH,
	0x10: VOP_VADD,
	0x11: VOP_VSUB,
	0x14: VOP_VADDC,
	0x15: VOP_VSUBC,
	0x28: VOP_VAND,
	0x29: VOP_VNAND,
	0x2A: VOP_VOR,
	0x2B: VOP_VNOR,
	0x2C: VOP_VXOR,
	0x2D: VOP_VNXOR,
	0x13: VOP_VABS,
	0x20: VOP_VLT,
	0x21: VOP_VEQ,
	0x22: VOP_VNE,
	0x23: VOP_VGE,
	0x24: VOP_VCL,
	0x25: VOP_VCH,
	0x26: VOP_VCR,
	0x27: VOP_VMRG,
	0x30: VOP_VRCP,
	0x31: VOP_VRCPL,
	0x32: VOP_VRCPH,
	0x33: VOP_VMOV,
	0x34: VOP_VRSQ,
	0x35: VOP_VRSQL,
	0x36: VOP_VRSQH,
}

// Step executes one RSP scalar instruction from IMEM. A taken branch or
// jump latches pendingJump/jumpTarget rather than moving pc directly:
// the instruction physically following it (the delay slot) still runs
// on the next Step call before the pc actually lands on the target,
// the same one-slot pipeline cpu_vr4300.go's Step uses.
func (r *RSP) Step() {
	if r.Halted() {
		return
	}
	word := r.ReadMem32(PA_SP_DMEM_BASE + SP_DMEM_SIZE + r.pc)
	op := word >> 26
	rs := (word >> 21) & 0x1F
	rt := (word >> 16) & 0x1F
	rd := (word >> 11) & 0x1F
	sa := (word >> 6) & 0x1F
	fn := word & 0x3F
	imm16 := uint16(word & 0xFFFF)
	target := word & 0x3FF_FFFF

	vecElement := (word >> 7) & 0xF
	vecOffsetRaw := word & 0x7F // bits 6:0
	vecOffset := int32(vecOffsetRaw)
	if vecOffsetRaw&0x40 != 0 {
		vecOffset -= 0x80
	}

	switch op {
	case OP_SPECIAL:
		r.execSpecial(rs, rt, rd, sa, fn)
	case OP_COP2:
		r.execCop2(rs, rt, rd, fn)
	case OP_LWC2:
		r.execVectorLoad(rd, rs, rt, vecElement, vecOffset)
	case OP_SWC2:
		r.execVectorStore(rd, rs, rt, vecElement, vecOffset)
	case OP_LUI:
		r.setGPR(rt, uint32(imm16)<<16)
	case OP_ADDI, OP_ADDIU:
		r.setGPR(rt, r.getGPR(rs)+uint32(int32(int16(imm16))))
	case OP_ANDI:
		r.setGPR(rt, r.getGPR(rs)&uint32(imm16))
	case OP_ORI:
		r.setGPR(rt, r.getGPR(rs)|uint32(imm16))
	case OP_XORI:
		r.setGPR(rt, r.getGPR(rs)^uint32(imm16))
	case OP_SLTI:
		if int32(r.getGPR(rs)) < int32(int16(imm16)) {
			r.setGPR(rt, 1)
		} else {
			r.setGPR(rt, 0)
		}
	case OP_BEQ:
		r.startBranch(r.getGPR(rs) == r.getGPR(rt), imm16)
	case OP_BNE:
		r.startBranch(r.getGPR(rs) != r.getGPR(rt), imm16)
	case OP_LW:
		r.setGPR(rt, r.ReadMem32(PA_SP_DMEM_BASE+(r.getGPR(rs)+uint32(int32(int16(imm16))))&0xFFC))
	case OP_SW:
		r.WriteMem32(PA_SP_DMEM_BASE+(r.getGPR(rs)+uint32(int32(int16(imm16))))&0xFFC, r.getGPR(rt))
	case OP_J:
		r.pendingJump = true
		r.jumpTarget = (target << 2) & 0xFFC
	case OP_JAL:
		r.setGPR(31, (r.pc+8)&0xFFC)
		r.pendingJump = true
		r.jumpTarget = (target << 2) & 0xFFC
	}

	wasInDelaySlot := r.inDelaySlot
	r.inDelaySlot = false
	switch {
	case r.pendingJump && wasInDelaySlot:
		r.pc = r.jumpTarget
		r.pendingJump = false
	case r.pendingJump:
		r.pc = (r.pc + 4) & 0xFFC
		r.inDelaySlot = true
	default:
		r.pc = (r.pc + 4) & 0xFFC
	}
}

func (r *RSP) getGPR(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return r.gpr[i]
}

func (r *RSP) setGPR(i uint32, v uint32) {
	if i != 0 {
		r.gpr[i] = v
	}
}

func (r *RSP) startBranch(taken bool, imm16 uint16) {
	if taken {
		r.pendingJump = true
		r.jumpTarget = (r.pc + 4 + uint32(int32(int16(imm16))<<2)) & 0xFFC
	}
}

func (r *RSP) execSpecial(rs, rt, rd, sa, fn uint32) {
	switch fn {
	case FN_SLL:
		r.setGPR(rd, r.getGPR(rt)<<sa)
	case FN_SRL:
		r.setGPR(rd, r.getGPR(rt)>>sa)
	case FN_SRA:
		r.setGPR(rd, uint32(int32(r.getGPR(rt))>>sa))
	case FN_ADD, FN_ADDU:
		r.setGPR(rd, r.getGPR(rs)+r.getGPR(rt))
	case FN_SUB, FN_SUBU:
		r.setGPR(rd, r.getGPR(rs)-r.getGPR(rt))
	case FN_AND:
		r.setGPR(rd, r.getGPR(rs)&r.getGPR(rt))
	case FN_OR:
		r.setGPR(rd, r.getGPR(rs)|r.getGPR(rt))
	case FN_XOR:
		r.setGPR(rd, r.getGPR(rs)^r.getGPR(rt))
	case FN_NOR:
		r.setGPR(rd, ^(r.getGPR(rs) | r.getGPR(rt)))
	case FN_SLT:
		if int32(r.getGPR(rs)) < int32(r.getGPR(rt)) {
			r.setGPR(rd, 1)
		} else {
			r.setGPR(rd, 0)
		}
	case FN_SLTU:
		if r.getGPR(rs) < r.getGPR(rt) {
			r.setGPR(rd, 1)
		} else {
			r.setGPR(rd, 0)
		}
	case FN_JR:
		r.pendingJump = true
		r.jumpTarget = r.getGPR(rs) & 0xFFC
	case FN_JALR:
		link := (r.pc + 8) & 0xFFC
		r.pendingJump = true
		r.jumpTarget = r.getGPR(rs) & 0xFFC
		r.setGPR(rd, link)
	case FN_BREAK:
		r.Break()
	}
}

// COP2 rs-field move codes (mirrors VR4300 COP1's MFC/MTC/CFC/CTC shape).
const (
	cop2RS_MFC = 0x00
	cop2RS_CFC = 0x02
	cop2RS_MTC = 0x04
	cop2RS_CTC = 0x06
)

// execCop2 dispatches either a scalar<->vector element move (rs<0x10)
// or a vector compute instruction (rs has bit 4 set, i.e. rs>=0x10).
func (r *RSP) execCop2(rs, rt, rd, fn uint32) {
	if rs < 0x10 {
		switch rs {
		case cop2RS_MFC:
			element := (fn >> 1) & 0x7
			lane0 := uint16(r.vu.vpr[rd][element])
			r.setGPR(rt, uint32(int32(int16(lane0))))
		case cop2RS_MTC:
			element := (fn >> 1) & 0x7
			r.vu.vpr[rd][element] = int16(r.getGPR(rt))
		}
		return
	}
	op, ok := cop2FuncToOp[fn]
	if !ok {
		return
	}
	// Simplified field layout: vd/vs/vt reuse the scalar rd/rs/rt slots
	// and the broadcast element comes from the instruction's low rs bits,
	// rather than the hardware's dedicated "e" field between rs and rt.
	element := int(rs & 0xF)
	r.vu.ExecuteVector(op, int(rd&0x1F), int(rs&0x1F), int(rt&0x1F), element)
}
