package main

import (
	"testing"
	"time"
)

func waitForCondition(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within timeout")
}

type fakeRDPBackend struct {
	submitted [][]uint64
	done      chan struct{}
}

func newFakeRDPBackend() *fakeRDPBackend {
	return &fakeRDPBackend{done: make(chan struct{}, 1)}
}

func (f *fakeRDPBackend) SubmitCommands(cmds []uint64) {
	cp := make([]uint64, len(cmds))
	copy(cp, cmds)
	f.submitted = append(f.submitted, cp)
}

func (f *fakeRDPBackend) FrameComplete() <-chan struct{} { return f.done }

func TestRDPStartRegisterLatchesOnlyOnce(t *testing.T) {
	rdram := NewRDRAM()
	d := NewRDP(rdram, NewMI())

	d.HandleWrite(DP_START_REG, 0x1000)
	d.HandleWrite(DP_START_REG, 0x2000) // should be ignored: START_VALID already set

	if d.start != 0x1000 {
		t.Fatalf("start = %#x, want 0x1000 (second write should be ignored)", d.start)
	}
}

func TestRDPEndWriteDrainsFullCommand(t *testing.T) {
	rdram := NewRDRAM()
	// Set Other Modes (0x2F) is a single 64-bit word command.
	word := uint64(0x2F) << 56
	rdram.Write32(0x1000, uint32(word>>32))
	rdram.Write32(0x1004, uint32(word))

	backend := newFakeRDPBackend()
	d := NewRDP(rdram, NewMI())
	d.SetBackend(backend)

	d.HandleWrite(DP_START_REG, 0x1000)
	d.HandleWrite(DP_END_REG, 0x1008)

	if len(backend.submitted) != 1 {
		t.Fatalf("expected one dispatched command, got %d", len(backend.submitted))
	}
	if backend.submitted[0][0] != word {
		t.Fatalf("dispatched word = %#x, want %#x", backend.submitted[0][0], word)
	}
	if d.current != 0x1008 {
		t.Fatalf("current should advance to end, got %#x", d.current)
	}
}

func TestRDPPartialCommandWaitsForMoreWords(t *testing.T) {
	rdram := NewRDRAM()
	// Set Scissor (0x2D) needs 2 words; only supply one doubleword.
	word := uint64(0x2D) << 56
	rdram.Write32(0x1000, uint32(word>>32))
	rdram.Write32(0x1004, uint32(word))

	backend := newFakeRDPBackend()
	d := NewRDP(rdram, NewMI())
	d.SetBackend(backend)

	d.HandleWrite(DP_START_REG, 0x1000)
	d.HandleWrite(DP_END_REG, 0x1008)

	if len(backend.submitted) != 0 {
		t.Fatalf("a 2-word command with only 1 word available should not dispatch yet")
	}
	if len(d.pending) != 1 {
		t.Fatalf("the partial word should remain buffered, got %d pending words", len(d.pending))
	}
}

func TestRDPFreezeStallsCommandStream(t *testing.T) {
	rdram := NewRDRAM()
	backend := newFakeRDPBackend()
	d := NewRDP(rdram, NewMI())
	d.SetBackend(backend)
	d.writeStatus(1 << 3) // set FREEZE

	d.HandleWrite(DP_START_REG, 0x1000)
	d.HandleWrite(DP_END_REG, 0x1008)

	if len(backend.submitted) != 0 {
		t.Fatalf("a frozen RDP should not dispatch commands")
	}
	if d.current != 0 {
		t.Fatalf("current should not advance while frozen, got %#x", d.current)
	}
}

func TestRDPSyncFullRaisesInterruptOnFrameComplete(t *testing.T) {
	rdram := NewRDRAM()
	word := uint64(0x29) << 56 // Sync Full
	rdram.Write32(0x1000, uint32(word>>32))
	rdram.Write32(0x1004, uint32(word))

	mi := NewMI()
	mi.HandleWrite(MI_INTR_MASK_REG, 1<<(2*5+1)) // enable DP interrupt bit
	backend := newFakeRDPBackend()
	d := NewRDP(rdram, mi)
	d.SetBackend(backend)

	d.HandleWrite(DP_START_REG, 0x1000)
	d.HandleWrite(DP_END_REG, 0x1008)

	if d.status&DP_STATUS_PIPE_BUSY == 0 {
		t.Fatalf("SYNC_FULL should set PIPE_BUSY until the backend reports completion")
	}

	backend.done <- struct{}{}
	waitForCondition(t, func() bool { return mi.Asserted() })

	if d.status&DP_STATUS_PIPE_BUSY != 0 {
		t.Fatalf("PIPE_BUSY should clear once the frame completes")
	}
}

func TestRDPWriteStatusClearsBusyCounters(t *testing.T) {
	d := NewRDP(NewRDRAM(), NewMI())
	d.status |= DP_STATUS_TMEM_BUSY | DP_STATUS_PIPE_BUSY | DP_STATUS_CMD_BUSY

	d.writeStatus(1 << 9)

	if d.status&(DP_STATUS_TMEM_BUSY|DP_STATUS_PIPE_BUSY|DP_STATUS_CMD_BUSY) != 0 {
		t.Fatalf("bit 9 should clear the busy counters, got status %#x", d.status)
	}
}
