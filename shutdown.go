// shutdown.go - coordinated shutdown for the headless run loop

/*
shutdown.go - errgroup-based coordinated shutdown

The headless run path has three concurrently-running pieces: the
machine's own cycle loop, the terminal status host's refresh
goroutine, and (optionally) an audio backend's player goroutine.
Rather than the teacher's ad hoc `done chan struct{}` plus `select`
pattern repeated per component (coprocessor_manager.go), this collects
shutdown into one errgroup so a single Ctrl+C cancels every goroutine
and main waits on one Wait() call. Libraries: golang.org/x/sync/errgroup.
*/

package main

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunSupervisor drives the machine's cycle loop until ctx is cancelled,
// then stops the terminal host and audio backend in step.
type RunSupervisor struct {
	machine  *Machine
	terminal *TerminalHost
	audio    interface{ Close() error }
}

func NewRunSupervisor(m *Machine, term *TerminalHost, audio interface{ Close() error }) *RunSupervisor {
	return &RunSupervisor{machine: m, terminal: term, audio: audio}
}

// Run blocks until ctx is cancelled, stepping the machine in fixed
// slices so cancellation is observed promptly.
func (s *RunSupervisor) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		const slice = 100_000
		for {
			select {
			case <-gctx.Done():
				return nil
			default:
				s.machine.RunCycles(slice)
			}
		}
	})

	<-gctx.Done()
	if s.terminal != nil {
		s.terminal.Stop()
	}
	if s.audio != nil {
		_ = s.audio.Close()
	}
	return g.Wait()
}
