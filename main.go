// main.go - command-line entry point

/*
main.go - load a ROM and a PIF image, wire peripherals, run the machine

Grounded on the teacher's main.go: flag parsing, peripheral/backend
construction, GUIFrontend selection, then start-and-run. Unlike the
teacher's two-CPU-mode dispatch (-ie32 / -m68k), this core has a single
fixed architecture, so the flags instead select GUI vs headless and
audio backend.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: n64core [-headless] [-info] <rom.z64> <pifrom.bin>")
}

func main() {
	args := os.Args[1:]
	headless := false
	info := false

	var positional []string
	for _, a := range args {
		switch a {
		case "-headless":
			headless = true
		case "-info":
			info = true
		default:
			positional = append(positional, a)
		}
	}

	if info {
		PrintHostInfo()
	}

	if len(positional) != 2 {
		usage()
		os.Exit(1)
	}

	romPath, pifPath := positional[0], positional[1]

	rom, err := os.ReadFile(romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "n64core: reading rom: %v\n", err)
		os.Exit(1)
	}
	pifROM, err := os.ReadFile(pifPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "n64core: reading pif rom: %v\n", err)
		os.Exit(1)
	}

	m := NewMachine(rom, pifROM)

	if headless {
		runHeadless(m)
		return
	}
	runWindowed(m)
}

// runHeadless drives the machine under a terminal status host, with
// its AI output discarded to a counting sink, until interrupted.
func runHeadless(m *Machine) {
	video := NewHeadlessVideoOutput()
	m.Bus.VI.SetOutput(video)
	audio := NewHeadlessAudioOutput()
	m.Bus.AI.SetOutput(audio)

	term := NewTerminalHost(m, video)
	term.Start()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sup := NewRunSupervisor(m, term, noopCloser{})
	if err := sup.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "n64core: %v\n", err)
	}
}

// runWindowed opens an ebiten window, wires real audio through oto
// when available, and blocks in the GUI event loop.
func runWindowed(m *Machine) {
	out := NewEbitenOutput(m)
	m.Bus.VI.SetOutput(out)

	if otoOut, err := NewOtoAudioOutput(44100); err == nil {
		m.Bus.AI.SetOutput(otoOut)
	} else {
		fmt.Fprintf(os.Stderr, "n64core: audio disabled: %v\n", err)
		m.Bus.AI.SetOutput(NewHeadlessAudioOutput())
	}

	gui := NewEbitenGUI(out)
	if err := gui.Initialize(GUIConfig{Width: 640, Height: 480, Title: "n64core"}); err != nil {
		fmt.Fprintf(os.Stderr, "n64core: gui init: %v\n", err)
		os.Exit(1)
	}
	if err := gui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "n64core: %v\n", err)
	}
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }
