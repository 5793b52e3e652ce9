// terminal_host.go - raw-mode terminal status line for headless runs

/*
terminal_host.go - CLI status host

When run without a GUI frontend, puts stdin/stdout into raw mode and
prints a single overwritten status line (cycle count, PC, VI field
count) instead of scrolling output. Only instantiated from
main.go for interactive headless use, never from tests. Grounded on
the teacher's TerminalHost raw-mode stdin adapter in terminal_host.go,
narrowed to output-only status since this core has no terminal MMIO
device of its own. Libraries: golang.org/x/term.
*/

package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// TerminalHost prints a periodically refreshed status line while the
// machine runs headless.
type TerminalHost struct {
	machine      *Machine
	video        *HeadlessVideoOutput
	fd           int
	oldTermState *term.State
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
}

// NewTerminalHost builds a status host over machine and its headless
// video sink (used for the field-count readout).
func NewTerminalHost(m *Machine, v *HeadlessVideoOutput) *TerminalHost {
	return &TerminalHost{machine: m, video: v, stopCh: make(chan struct{}), done: make(chan struct{})}
}

// Start enters raw mode and begins the status refresh loop. Failing to
// enter raw mode (e.g. stdout is not a tty) degrades to plain newline
// status lines rather than aborting the run.
func (h *TerminalHost) Start() {
	h.fd = int(os.Stdout.Fd())
	if term.IsTerminal(h.fd) {
		if old, err := term.MakeRaw(h.fd); err == nil {
			h.oldTermState = old
		}
	}

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-h.stopCh:
				return
			case <-ticker.C:
				h.printStatus()
			}
		}
	}()
}

func (h *TerminalHost) printStatus() {
	fields := uint64(0)
	if h.video != nil {
		fields = h.video.FieldCount()
	}
	line := fmt.Sprintf("\rcycles=%d pc=0x%016X fields=%d", h.machine.CPU.cycles, h.machine.CPU.pc, fields)
	if h.oldTermState != nil {
		line += "\r\n"
	} else {
		line += "\n"
	}
	fmt.Fprint(os.Stdout, line)
}

// Stop restores the terminal and waits for the status goroutine to exit.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
		<-h.done
		if h.oldTermState != nil {
			_ = term.Restore(h.fd, h.oldTermState)
		}
	})
}
