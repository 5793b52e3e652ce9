// cpu_alu.go - VR4300 SPECIAL/REGIMM integer arithmetic and logic

/*
cpu_alu.go - Integer ALU: SPECIAL group, REGIMM group, immediate ALU ops

Implements the add/sub overflow-trapping family (spec.md 4.3: ADD/SUB/
ADDI/DADD/DSUB/DADDI raise IntegerOverflow on signed overflow; the "U"
forms never trap), shifts (including the doubleword "+32" variants),
MULT/DIV/DMULT/DDIV with their HI/LO latch and divide-by-zero sentinel
behaviour, and the REGIMM trap-on-condition and branch-and-link forms.
Grounded on original_source/src/vr4300/Interpreter.cpp's `MUL_DIV` and
`Add/Sub` op families.
*/

package main

func overflowsAdd32(a, b, r uint32) bool {
	return (a^r)&(b^r)&0x8000_0000 != 0
}

func overflowsSub32(a, b, r uint32) bool {
	return (a^b)&(a^r)&0x8000_0000 != 0
}

func overflowsAdd64(a, b, r uint64) bool {
	return (a^r)&(b^r)&0x8000_0000_0000_0000 != 0
}

func overflowsSub64(a, b, r uint64) bool {
	return (a^b)&(a^r)&0x8000_0000_0000_0000 != 0
}

func (c *CPU) execAddi(rs, rt uint32, imm16 uint16, unsigned bool) {
	a := uint32(c.GetGPR(int(rs)))
	b := uint32(signExt16(imm16))
	r := a + b
	if !unsigned && overflowsAdd32(a, b, r) {
		c.raise(PendingException{Kind: ExcIntegerOverflow})
		return
	}
	c.SetGPR(int(rt), signExt32(r))
}

func (c *CPU) execDaddi(rs, rt uint32, imm16 uint16, unsigned bool) {
	a := c.GetGPR(int(rs))
	b := signExt16(imm16)
	r := a + b
	if !unsigned && overflowsAdd64(a, b, r) {
		c.raise(PendingException{Kind: ExcIntegerOverflow})
		return
	}
	c.SetGPR(int(rt), r)
}

func (c *CPU) execSpecial(rs, rt, rd, sa, fn uint32) {
	switch fn {
	case FN_SLL:
		c.SetGPR(int(rd), signExt32(uint32(c.GetGPR(int(rt)))<<sa))
	case FN_SRL:
		c.SetGPR(int(rd), signExt32(uint32(c.GetGPR(int(rt)))>>sa))
	case FN_SRA:
		c.SetGPR(int(rd), uint64(int64(int32(c.GetGPR(int(rt))))>>sa))
	case FN_SLLV:
		sh := c.GetGPR(int(rs)) & 0x1F
		c.SetGPR(int(rd), signExt32(uint32(c.GetGPR(int(rt)))<<sh))
	case FN_SRLV:
		sh := c.GetGPR(int(rs)) & 0x1F
		c.SetGPR(int(rd), signExt32(uint32(c.GetGPR(int(rt)))>>sh))
	case FN_SRAV:
		sh := c.GetGPR(int(rs)) & 0x1F
		c.SetGPR(int(rd), uint64(int64(int32(c.GetGPR(int(rt))))>>sh))
	case FN_JR:
		c.startBranch(c.GetGPR(int(rs)))
	case FN_JALR:
		link := c.linkAddress()
		c.startBranch(c.GetGPR(int(rs)))
		linkReg := rd
		if linkReg == 0 {
			linkReg = 31
		}
		c.SetGPR(int(linkReg), link)
	case FN_SYSCALL:
		c.raise(PendingException{Kind: ExcSyscall})
	case FN_BREAK:
		c.raise(PendingException{Kind: ExcBreakpoint})
	case FN_SYNC:
		// No-op: single-core in-order model has no memory reordering to fence.
	case FN_MFHI:
		c.SetGPR(int(rd), c.hi)
	case FN_MTHI:
		c.hi = c.GetGPR(int(rs))
	case FN_MFLO:
		c.SetGPR(int(rd), c.lo)
	case FN_MTLO:
		c.lo = c.GetGPR(int(rs))
	case FN_DSLLV:
		sh := c.GetGPR(int(rs)) & 0x3F
		c.SetGPR(int(rd), c.GetGPR(int(rt))<<sh)
	case FN_DSRLV:
		sh := c.GetGPR(int(rs)) & 0x3F
		c.SetGPR(int(rd), c.GetGPR(int(rt))>>sh)
	case FN_DSRAV:
		sh := c.GetGPR(int(rs)) & 0x3F
		c.SetGPR(int(rd), uint64(int64(c.GetGPR(int(rt)))>>sh))
	case FN_MULT:
		a := int64(int32(c.GetGPR(int(rs))))
		b := int64(int32(c.GetGPR(int(rt))))
		r := a * b
		c.lo = signExt32(uint32(r))
		c.hi = signExt32(uint32(r >> 32))
		c.cycles += cycleMultiply
	case FN_MULTU:
		a := uint64(uint32(c.GetGPR(int(rs))))
		b := uint64(uint32(c.GetGPR(int(rt))))
		r := a * b
		c.lo = signExt32(uint32(r))
		c.hi = signExt32(uint32(r >> 32))
		c.cycles += cycleMultiply
	case FN_DIV:
		a := int32(c.GetGPR(int(rs)))
		b := int32(c.GetGPR(int(rt)))
		if b == 0 {
			if a >= 0 {
				c.lo = signExt32(0xFFFF_FFFF) // -1
			} else {
				c.lo = 1
			}
			c.hi = signExt32(uint32(a))
		} else {
			c.lo = signExt32(uint32(a / b))
			c.hi = signExt32(uint32(a % b))
		}
		c.cycles += cycleDivide
	case FN_DIVU:
		a := uint32(c.GetGPR(int(rs)))
		b := uint32(c.GetGPR(int(rt)))
		if b == 0 {
			c.lo = signExt32(0xFFFF_FFFF)
			c.hi = signExt32(a)
		} else {
			c.lo = signExt32(a / b)
			c.hi = signExt32(a % b)
		}
		c.cycles += cycleDivide
	case FN_DMULT:
		a := int64(c.GetGPR(int(rs)))
		b := int64(c.GetGPR(int(rt)))
		hi, lo := mul128Signed(a, b)
		c.hi, c.lo = hi, lo
		c.cycles += cycleMultiply
	case FN_DMULTU:
		a := c.GetGPR(int(rs))
		b := c.GetGPR(int(rt))
		hi, lo := mul128Unsigned(a, b)
		c.hi, c.lo = hi, lo
		c.cycles += cycleMultiply
	case FN_DDIV:
		a := int64(c.GetGPR(int(rs)))
		b := int64(c.GetGPR(int(rt)))
		if b == 0 {
			if a >= 0 {
				c.lo = ^uint64(0)
			} else {
				c.lo = 1
			}
			c.hi = uint64(a)
		} else {
			c.lo = uint64(a / b)
			c.hi = uint64(a % b)
		}
		c.cycles += cycleDivide
	case FN_DDIVU:
		a := c.GetGPR(int(rs))
		b := c.GetGPR(int(rt))
		if b == 0 {
			c.lo = ^uint64(0)
			c.hi = a
		} else {
			c.lo = a / b
			c.hi = a % b
		}
		c.cycles += cycleDivide
	case FN_ADD:
		a := uint32(c.GetGPR(int(rs)))
		b := uint32(c.GetGPR(int(rt)))
		r := a + b
		if overflowsAdd32(a, b, r) {
			c.raise(PendingException{Kind: ExcIntegerOverflow})
			return
		}
		c.SetGPR(int(rd), signExt32(r))
	case FN_ADDU:
		c.SetGPR(int(rd), signExt32(uint32(c.GetGPR(int(rs)))+uint32(c.GetGPR(int(rt)))))
	case FN_SUB:
		a := uint32(c.GetGPR(int(rs)))
		b := uint32(c.GetGPR(int(rt)))
		r := a - b
		if overflowsSub32(a, b, r) {
			c.raise(PendingException{Kind: ExcIntegerOverflow})
			return
		}
		c.SetGPR(int(rd), signExt32(r))
	case FN_SUBU:
		c.SetGPR(int(rd), signExt32(uint32(c.GetGPR(int(rs)))-uint32(c.GetGPR(int(rt)))))
	case FN_AND:
		c.SetGPR(int(rd), c.GetGPR(int(rs))&c.GetGPR(int(rt)))
	case FN_OR:
		c.SetGPR(int(rd), c.GetGPR(int(rs))|c.GetGPR(int(rt)))
	case FN_XOR:
		c.SetGPR(int(rd), c.GetGPR(int(rs))^c.GetGPR(int(rt)))
	case FN_NOR:
		c.SetGPR(int(rd), ^(c.GetGPR(int(rs)) | c.GetGPR(int(rt))))
	case FN_SLT:
		if int64(c.GetGPR(int(rs))) < int64(c.GetGPR(int(rt))) {
			c.SetGPR(int(rd), 1)
		} else {
			c.SetGPR(int(rd), 0)
		}
	case FN_SLTU:
		if c.GetGPR(int(rs)) < c.GetGPR(int(rt)) {
			c.SetGPR(int(rd), 1)
		} else {
			c.SetGPR(int(rd), 0)
		}
	case FN_DADD:
		a := c.GetGPR(int(rs))
		b := c.GetGPR(int(rt))
		r := a + b
		if overflowsAdd64(a, b, r) {
			c.raise(PendingException{Kind: ExcIntegerOverflow})
			return
		}
		c.SetGPR(int(rd), r)
	case FN_DADDU:
		c.SetGPR(int(rd), c.GetGPR(int(rs))+c.GetGPR(int(rt)))
	case FN_DSUB:
		a := c.GetGPR(int(rs))
		b := c.GetGPR(int(rt))
		r := a - b
		if overflowsSub64(a, b, r) {
			c.raise(PendingException{Kind: ExcIntegerOverflow})
			return
		}
		c.SetGPR(int(rd), r)
	case FN_DSUBU:
		c.SetGPR(int(rd), c.GetGPR(int(rs))-c.GetGPR(int(rt)))
	case FN_TGE:
		c.trapIf(int64(c.GetGPR(int(rs))) >= int64(c.GetGPR(int(rt))))
	case FN_TGEU:
		c.trapIf(c.GetGPR(int(rs)) >= c.GetGPR(int(rt)))
	case FN_TLT:
		c.trapIf(int64(c.GetGPR(int(rs))) < int64(c.GetGPR(int(rt))))
	case FN_TLTU:
		c.trapIf(c.GetGPR(int(rs)) < c.GetGPR(int(rt)))
	case FN_TEQ:
		c.trapIf(c.GetGPR(int(rs)) == c.GetGPR(int(rt)))
	case FN_TNE:
		c.trapIf(c.GetGPR(int(rs)) != c.GetGPR(int(rt)))
	case FN_DSLL:
		c.SetGPR(int(rd), c.GetGPR(int(rt))<<sa)
	case FN_DSRL:
		c.SetGPR(int(rd), c.GetGPR(int(rt))>>sa)
	case FN_DSRA:
		c.SetGPR(int(rd), uint64(int64(c.GetGPR(int(rt)))>>sa))
	case FN_DSLL32:
		c.SetGPR(int(rd), c.GetGPR(int(rt))<<(sa+32))
	case FN_DSRL32:
		c.SetGPR(int(rd), c.GetGPR(int(rt))>>(sa+32))
	case FN_DSRA32:
		c.SetGPR(int(rd), uint64(int64(c.GetGPR(int(rt)))>>(sa+32)))
	default:
		c.raise(PendingException{Kind: ExcReservedInstruction})
	}
}

func (c *CPU) trapIf(cond bool) {
	if cond {
		c.raise(PendingException{Kind: ExcTrap})
	}
}

func (c *CPU) execRegimm(rs, rt uint32, imm16 uint16) {
	switch rt {
	case RT_BLTZ:
		c.branchIf(int64(c.GetGPR(int(rs))) < 0, imm16, false)
	case RT_BGEZ:
		c.branchIf(int64(c.GetGPR(int(rs))) >= 0, imm16, false)
	case RT_BLTZL:
		c.branchIf(int64(c.GetGPR(int(rs))) < 0, imm16, true)
	case RT_BGEZL:
		c.branchIf(int64(c.GetGPR(int(rs))) >= 0, imm16, true)
	case RT_BLTZAL:
		c.SetGPR(31, c.linkAddress())
		c.branchIf(int64(c.GetGPR(int(rs))) < 0, imm16, false)
	case RT_BGEZAL:
		c.SetGPR(31, c.linkAddress())
		c.branchIf(int64(c.GetGPR(int(rs))) >= 0, imm16, false)
	case RT_BLTZALL:
		c.SetGPR(31, c.linkAddress())
		c.branchIf(int64(c.GetGPR(int(rs))) < 0, imm16, true)
	case RT_BGEZALL:
		c.SetGPR(31, c.linkAddress())
		c.branchIf(int64(c.GetGPR(int(rs))) >= 0, imm16, true)
	case RT_TGEI:
		c.trapIf(int64(c.GetGPR(int(rs))) >= int64(signExt16(imm16)))
	case RT_TGEIU:
		c.trapIf(c.GetGPR(int(rs)) >= signExt16(imm16))
	case RT_TLTI:
		c.trapIf(int64(c.GetGPR(int(rs))) < int64(signExt16(imm16)))
	case RT_TLTIU:
		c.trapIf(c.GetGPR(int(rs)) < signExt16(imm16))
	case RT_TEQI:
		c.trapIf(c.GetGPR(int(rs)) == signExt16(imm16))
	case RT_TNEI:
		c.trapIf(c.GetGPR(int(rs)) != signExt16(imm16))
	default:
		c.raise(PendingException{Kind: ExcReservedInstruction})
	}
}

// mul128Unsigned returns (hi,lo) of the full 128-bit product of two
// unsigned 64-bit operands via schoolbook multiplication on 32-bit limbs.
func mul128Unsigned(a, b uint64) (hi, lo uint64) {
	aLo, aHi := a&0xFFFF_FFFF, a>>32
	bLo, bHi := b&0xFFFF_FFFF, b>>32

	t0 := aLo * bLo
	t1 := aHi*bLo + t0>>32
	t2 := aLo*bHi + t1&0xFFFF_FFFF
	carry := t1>>32 + t2>>32
	lo = (t2 << 32) | (t0 & 0xFFFF_FFFF)
	hi = aHi*bHi + carry
	return
}

// mul128Signed computes the signed 128-bit product via the unsigned
// routine plus sign correction.
func mul128Signed(a, b int64) (hi, lo uint64) {
	ua, ub := uint64(a), uint64(b)
	hi, lo = mul128Unsigned(ua, ub)
	if a < 0 {
		hi -= ub
	}
	if b < 0 {
		hi -= ua
	}
	return
}
