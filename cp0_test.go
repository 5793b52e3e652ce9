package main

import "testing"

func TestCP0TickCountAdvancesEveryOtherCycle(t *testing.T) {
	sched := NewScheduler()
	c := NewCP0(sched, NewMI())

	c.TickCount(1)
	if got := c.Read(CP0_COUNT); got != 0 {
		t.Fatalf("Count should not advance on an odd cycle, got %d", got)
	}
	c.TickCount(1)
	if got := c.Read(CP0_COUNT); got != 1 {
		t.Fatalf("Count should advance by 1 after 2 cycles total, got %d", got)
	}
	c.TickCount(10)
	if got := c.Read(CP0_COUNT); got != 6 {
		t.Fatalf("Count should advance by 5 after 10 more cycles, got %d", got)
	}
}

func TestCP0CompareMatchRaisesIP7(t *testing.T) {
	sched := NewScheduler()
	c := NewCP0(sched, NewMI())
	c.Write(CP0_COUNT, 0)
	c.Write(CP0_COMPARE, 5)

	sched.RunUntil(sched.Now() + 20)
	if c.IP()&(1<<7) == 0 {
		t.Fatalf("Compare match should set Cause.IP7")
	}
}

func TestCP0WriteMasksReservedBits(t *testing.T) {
	c := NewCP0(NewScheduler(), NewMI())
	c.Write(CP0_CAUSE, 0xFFFF_FFFF)
	got := c.Read(CP0_CAUSE)
	if got&^uint64(0x300) != 0 {
		t.Fatalf("Cause write should only latch the two software-interrupt bits, got %#x", got)
	}
}

func TestCP0InterruptsEnabled(t *testing.T) {
	c := NewCP0(NewScheduler(), NewMI())
	c.Write(CP0_STATUS, 0)
	if c.InterruptsEnabled() {
		t.Fatalf("IE=0 should disable interrupts")
	}
	c.Write(CP0_STATUS, STATUS_IE)
	if !c.InterruptsEnabled() {
		t.Fatalf("IE=1,EXL=0,ERL=0 should enable interrupts")
	}
	c.Write(CP0_STATUS, STATUS_IE|STATUS_EXL)
	if c.InterruptsEnabled() {
		t.Fatalf("EXL=1 should mask interrupts even with IE=1")
	}
}

func TestCP0KernelModeFromKSU(t *testing.T) {
	c := NewCP0(NewScheduler(), NewMI())
	c.Write(CP0_STATUS, uint64(KSU_USER)<<STATUS_KSU_SHIFT)
	if c.KernelMode() {
		t.Fatalf("KSU=user should not report kernel mode")
	}
	c.Write(CP0_STATUS, STATUS_ERL)
	if !c.KernelMode() {
		t.Fatalf("ERL=1 should force kernel mode regardless of KSU")
	}
}
