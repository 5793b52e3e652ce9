// fpu.go - VR4300 COP1 floating-point unit

/*
fpu.go - FPU register file, format conversions, arithmetic, compares

Implements spec.md 4.6: 32 FPR slots whose view depends on Status.FR
(FR=1: each of the 32 registers holds a full double, or a single in
its low word; FR=0: even/odd register pairs act as one register, so an
odd index reaches the same slot, single or double, as the even index
below it, giving 16 usable registers), the four
convert-and-round instructions CVT.{S,D,W,L}, arithmetic built on Go's
host IEEE-754 float32/float64 with FCR31.RM selecting the rounding
mode for CVT, and the C.cond.fmt compare family feeding FCR31.C plus
BC1T/F/TL/FL. Grounded on
original_source/src/vr4300/FPU.cpp for the per-opcode rounding and
exception-flag table.
*/

package main

import "math"

// FCR31 (control/status register) bit layout.
const (
	FCR31_RM_MASK   = 0x3
	FCR31_FLAG_SHIFT = 2
	FCR31_ENABLE_SHIFT = 7
	FCR31_CAUSE_SHIFT  = 12
	FCR31_CAUSE_UNIMPL = 1 << 17
	FCR31_COND      = 1 << 23
)

const (
	RM_NEAREST = 0
	RM_ZERO    = 1
	RM_PLUS_INF = 2
	RM_MINUS_INF = 3
)

// FPU holds COP1 state: 32 raw 64-bit FPR slots and FCR31.
type FPU struct {
	fpr  [32]uint64
	fcr31 uint32
	fr   bool // mirrors Status.FR; set by the CPU on Status writes
}

func NewFPU() *FPU { return &FPU{} }

func (f *FPU) SetFRMode(fr bool) { f.fr = fr }

func (f *FPU) GetFPR32(i int) uint32 {
	if f.fr {
		return uint32(f.fpr[i])
	}
	return uint32(f.fpr[i&^1])
}

func (f *FPU) SetFPR32(i int, v uint32) {
	if f.fr {
		f.fpr[i] = (f.fpr[i] &^ 0xFFFF_FFFF) | uint64(v)
		return
	}
	reg := i &^ 1
	f.fpr[reg] = (f.fpr[reg] &^ 0xFFFF_FFFF) | uint64(v)
}

func (f *FPU) GetFPR64(i int) uint64 {
	if f.fr {
		return f.fpr[i]
	}
	return f.fpr[i&^1]
}

func (f *FPU) SetFPR64(i int, v uint64) {
	if f.fr {
		f.fpr[i] = v
		return
	}
	f.fpr[i&^1] = v
}

func (f *FPU) getS(i int) float32 { return math.Float32frombits(f.GetFPR32(i)) }
func (f *FPU) setS(i int, v float32) { f.SetFPR32(i, math.Float32bits(v)) }
func (f *FPU) getD(i int) float64 { return math.Float64frombits(f.GetFPR64(i)) }
func (f *FPU) setD(i int, v float64) { f.SetFPR64(i, math.Float64bits(v)) }

func (f *FPU) roundingMode() int { return int(f.fcr31 & FCR31_RM_MASK) }

func (f *FPU) setUnimplemented() {
	f.fcr31 |= FCR31_CAUSE_UNIMPL
}

func (f *FPU) setCondition(v bool) {
	if v {
		f.fcr31 |= FCR31_COND
	} else {
		f.fcr31 &^= FCR31_COND
	}
}

func (f *FPU) condition() bool { return f.fcr31&FCR31_COND != 0 }

func roundToInt(v float64, mode int) float64 {
	switch mode {
	case RM_ZERO:
		return math.Trunc(v)
	case RM_PLUS_INF:
		return math.Ceil(v)
	case RM_MINUS_INF:
		return math.Floor(v)
	default: // RM_NEAREST
		return math.RoundToEven(v)
	}
}

// COP1 "fmt" field values.
const (
	FMT_S = 16
	FMT_D = 17
	FMT_W = 20
	FMT_L = 21
)

// COP1 rs-field (top 5 bits of the 11-bit fmt/sub field) move codes.
const (
	cop1RS_MF  = 0x00
	cop1RS_DMF = 0x01
	cop1RS_CF  = 0x02
	cop1RS_MT  = 0x04
	cop1RS_DMT = 0x05
	cop1RS_CT  = 0x06
	cop1RS_BC  = 0x08
)

// COP1 arithmetic function codes (shared across S/D/W/L formats).
const (
	cop1FN_ADD    = 0x00
	cop1FN_SUB    = 0x01
	cop1FN_MUL    = 0x02
	cop1FN_DIV    = 0x03
	cop1FN_SQRT   = 0x04
	cop1FN_ABS    = 0x05
	cop1FN_MOV    = 0x06
	cop1FN_NEG    = 0x07
	cop1FN_ROUND_L = 0x08
	cop1FN_TRUNC_L = 0x09
	cop1FN_CEIL_L  = 0x0A
	cop1FN_FLOOR_L = 0x0B
	cop1FN_ROUND_W = 0x0C
	cop1FN_TRUNC_W = 0x0D
	cop1FN_CEIL_W  = 0x0E
	cop1FN_FLOOR_W = 0x0F
	cop1FN_CVT_S   = 0x20
	cop1FN_CVT_D   = 0x21
	cop1FN_CVT_W   = 0x24
	cop1FN_CVT_L   = 0x25
	cop1FN_C_F     = 0x30
	cop1FN_C_UN    = 0x31
	cop1FN_C_EQ    = 0x32
	cop1FN_C_UEQ   = 0x33
	cop1FN_C_OLT   = 0x34
	cop1FN_C_ULT   = 0x35
	cop1FN_C_OLE   = 0x36
	cop1FN_C_ULE   = 0x37
)

func (c *CPU) cop1Usable() bool {
	return c.cp0.Read(CP0_STATUS)&STATUS_CU1 != 0
}

func (c *CPU) execCop1(rs, rt, rd, fn, word uint32) {
	if !c.cop1Usable() {
		c.raise(PendingException{Kind: ExcCoprocessorUnusable, CE: 1})
		return
	}
	fpu := c.fpu
	switch rs {
	case cop1RS_MF:
		c.SetGPR(int(rt), signExt32(fpu.GetFPR32(int(rd))))
		return
	case cop1RS_DMF:
		c.SetGPR(int(rt), fpu.GetFPR64(int(rd)))
		return
	case cop1RS_MT:
		fpu.SetFPR32(int(rd), uint32(c.GetGPR(int(rt))))
		return
	case cop1RS_DMT:
		fpu.SetFPR64(int(rd), c.GetGPR(int(rt)))
		return
	case cop1RS_CF:
		if rd == 31 {
			c.SetGPR(int(rt), signExt32(fpu.fcr31))
		} else {
			c.SetGPR(int(rt), 0)
		}
		return
	case cop1RS_CT:
		if rd == 31 {
			fpu.fcr31 = uint32(c.GetGPR(int(rt)))
		}
		return
	case cop1RS_BC:
		c.execCop1Branch(rt, word)
		return
	}

	fmt := rs
	ft, fs, fd := rt, rd, (word>>6)&0x1F
	fn6 := fn

	switch fn6 {
	case cop1FN_ADD, cop1FN_SUB, cop1FN_MUL, cop1FN_DIV:
		c.execCop1Binary(fmt, ft, fs, fd, fn6)
	case cop1FN_SQRT:
		c.execCop1Unary(fmt, fs, fd, func(v float64) float64 { return math.Sqrt(v) })
	case cop1FN_ABS:
		c.execCop1Unary(fmt, fs, fd, math.Abs)
	case cop1FN_MOV:
		c.execCop1Move(fmt, fs, fd)
	case cop1FN_NEG:
		c.execCop1Unary(fmt, fs, fd, func(v float64) float64 { return -v })
	case cop1FN_ROUND_L, cop1FN_TRUNC_L, cop1FN_CEIL_L, cop1FN_FLOOR_L,
		cop1FN_ROUND_W, cop1FN_TRUNC_W, cop1FN_CEIL_W, cop1FN_FLOOR_W:
		c.execCop1Round(fmt, fs, fd, fn6)
	case cop1FN_CVT_S:
		c.execCop1Convert(fmt, fs, fd, FMT_S)
	case cop1FN_CVT_D:
		c.execCop1Convert(fmt, fs, fd, FMT_D)
	case cop1FN_CVT_W:
		c.execCop1Convert(fmt, fs, fd, FMT_W)
	case cop1FN_CVT_L:
		c.execCop1Convert(fmt, fs, fd, FMT_L)
	default:
		if fn6 >= cop1FN_C_F && fn6 <= 0x3F {
			c.execCop1Compare(fmt, ft, fs, fn6)
		} else {
			c.raise(PendingException{Kind: ExcReservedInstruction})
		}
	}
}

func (c *CPU) execCop1Binary(fmt, ft, fs, fd, fn uint32) {
	fpu := c.fpu
	if fmt == FMT_D {
		a, b := fpu.getD(int(fs)), fpu.getD(int(ft))
		var r float64
		switch fn {
		case cop1FN_ADD:
			r = a + b
		case cop1FN_SUB:
			r = a - b
		case cop1FN_MUL:
			r = a * b
		case cop1FN_DIV:
			r = a / b
		}
		fpu.setD(int(fd), r)
	} else {
		a, b := fpu.getS(int(fs)), fpu.getS(int(ft))
		var r float32
		switch fn {
		case cop1FN_ADD:
			r = a + b
		case cop1FN_SUB:
			r = a - b
		case cop1FN_MUL:
			r = a * b
		case cop1FN_DIV:
			r = a / b
		}
		fpu.setS(int(fd), r)
	}
}

func (c *CPU) execCop1Unary(fmt, fs, fd uint32, op func(float64) float64) {
	fpu := c.fpu
	if fmt == FMT_D {
		fpu.setD(int(fd), op(fpu.getD(int(fs))))
	} else {
		fpu.setS(int(fd), float32(op(float64(fpu.getS(int(fs))))))
	}
}

func (c *CPU) execCop1Move(fmt, fs, fd uint32) {
	if fmt == FMT_D {
		c.fpu.SetFPR64(int(fd), c.fpu.GetFPR64(int(fs)))
	} else {
		c.fpu.SetFPR32(int(fd), c.fpu.GetFPR32(int(fs)))
	}
}

// execCop1Round implements ROUND/TRUNC/CEIL/FLOOR.{L,W}.fmt: converts
// a float source to an integer destination format using a fixed
// rounding mode (not FCR31.RM, per the MIPS manual these instructions
// carry their own rounding mode in the opcode itself).
func (c *CPU) execCop1Round(fmt, fs, fd, fn uint32) {
	var mode int
	switch fn {
	case cop1FN_ROUND_L, cop1FN_ROUND_W:
		mode = RM_NEAREST
	case cop1FN_TRUNC_L, cop1FN_TRUNC_W:
		mode = RM_ZERO
	case cop1FN_CEIL_L, cop1FN_CEIL_W:
		mode = RM_PLUS_INF
	case cop1FN_FLOOR_L, cop1FN_FLOOR_W:
		mode = RM_MINUS_INF
	}
	var src float64
	if fmt == FMT_D {
		src = c.fpu.getD(int(fs))
	} else {
		src = float64(c.fpu.getS(int(fs)))
	}
	rounded := roundToInt(src, mode)
	isLong := fn == cop1FN_ROUND_L || fn == cop1FN_TRUNC_L || fn == cop1FN_CEIL_L || fn == cop1FN_FLOOR_L
	if isLong {
		if math.IsNaN(rounded) || rounded >= 9.223372036854776e18 || rounded < -9.223372036854776e18 {
			c.fpu.SetFPR64(int(fd), 0x8000_0000_0000_0000)
			c.fpu.setUnimplemented()
			return
		}
		c.fpu.SetFPR64(int(fd), uint64(int64(rounded)))
	} else {
		if math.IsNaN(rounded) || rounded >= 2147483648.0 || rounded < -2147483648.0 {
			c.fpu.SetFPR32(int(fd), 0x8000_0000)
			c.fpu.setUnimplemented()
			return
		}
		c.fpu.SetFPR32(int(fd), uint32(int32(rounded)))
	}
}

// execCop1Convert implements CVT.{S,D,W,L}.fmt for every source format.
func (c *CPU) execCop1Convert(srcFmt, fs, fd, dstFmt uint32) {
	fpu := c.fpu
	var asFloat float64
	switch srcFmt {
	case FMT_S:
		asFloat = float64(fpu.getS(int(fs)))
	case FMT_D:
		asFloat = fpu.getD(int(fs))
	case FMT_W:
		asFloat = float64(int32(fpu.GetFPR32(int(fs))))
	case FMT_L:
		asFloat = float64(int64(fpu.GetFPR64(int(fs))))
	}

	switch dstFmt {
	case FMT_S:
		fpu.setS(int(fd), float32(asFloat))
	case FMT_D:
		fpu.setD(int(fd), asFloat)
	case FMT_W:
		rounded := roundToInt(asFloat, fpu.roundingMode())
		if math.IsNaN(rounded) || rounded >= 2147483648.0 || rounded < -2147483648.0 {
			fpu.SetFPR32(int(fd), 0x8000_0000)
			fpu.setUnimplemented()
			return
		}
		fpu.SetFPR32(int(fd), uint32(int32(rounded)))
	case FMT_L:
		rounded := roundToInt(asFloat, fpu.roundingMode())
		if math.IsNaN(rounded) || rounded >= 9.223372036854776e18 || rounded < -9.223372036854776e18 {
			fpu.SetFPR64(int(fd), 0x8000_0000_0000_0000)
			fpu.setUnimplemented()
			return
		}
		fpu.SetFPR64(int(fd), uint64(int64(rounded)))
	}
}

// execCop1Compare implements C.cond.fmt, writing FCR31.C.
func (c *CPU) execCop1Compare(fmt, ft, fs, fn uint32) {
	fpu := c.fpu
	var a, b float64
	if fmt == FMT_D {
		a, b = fpu.getD(int(fs)), fpu.getD(int(ft))
	} else {
		a, b = float64(fpu.getS(int(fs))), float64(fpu.getS(int(ft)))
	}
	unordered := math.IsNaN(a) || math.IsNaN(b)
	var result bool
	// The signalling forms (0x8-0xF: SF, NGLE, SEQ, NGL, LT, NGE, LE, NGT)
	// give the same results as their quiet counterparts 0x0-0x7.
	switch fn & 0x07 {
	case 0x0: // F
		result = false
	case 0x1: // UN
		result = unordered
	case 0x2: // EQ
		result = !unordered && a == b
	case 0x3: // UEQ
		result = unordered || a == b
	case 0x4: // OLT
		result = !unordered && a < b
	case 0x5: // ULT
		result = unordered || a < b
	case 0x6: // OLE
		result = !unordered && a <= b
	case 0x7: // ULE
		result = unordered || a <= b
	default:
		result = false
	}
	fpu.setCondition(result)
}

// execCop1Branch implements BC1T/BC1F/BC1TL/BC1FL.
func (c *CPU) execCop1Branch(rt uint32, word uint32) {
	imm16 := uint16(word & 0xFFFF)
	likely := rt&0x2 != 0
	wantTrue := rt&0x1 != 0
	taken := c.fpu.condition() == wantTrue
	c.branchIf(taken, imm16, likely)
}
