// gui_interface.go - host window lifecycle boundary

/*
gui_interface.go - GUIFrontend: the host-lifecycle capability

VideoOutput (vi.go) is the narrow per-field scanout boundary the VI
writes through; GUIFrontend is the broader boundary main.go drives to
open a window, pump its event loop, and tear it down. Keeping the two
separate lets a backend offer both (EbitenOutput implements
VideoOutput directly and is driven by ebiten's own RunGame loop) while
a headless run only needs the narrower one. Grounded on the teacher's
GUIFrontend interface in gui_interface.go (Initialize/Show/Close
lifecycle), narrowed to this core's single-window, single-surface use.
*/

package main

import "fmt"

// GUIConfig describes the window a frontend should open.
type GUIConfig struct {
	Width  int
	Height int
	Title  string
}

// GUIFrontend is the host window lifecycle boundary: open a window,
// run its event loop until closed, and report shutdown.
type GUIFrontend interface {
	Initialize(config GUIConfig) error
	Run() error
	Close() error
}

// EbitenGUI drives an EbitenOutput through ebiten's RunGame loop.
type EbitenGUI struct {
	out    *EbitenOutput
	config GUIConfig
}

func NewEbitenGUI(out *EbitenOutput) *EbitenGUI {
	return &EbitenGUI{out: out}
}

func (g *EbitenGUI) Initialize(config GUIConfig) error {
	g.config = config
	return nil
}

func (g *EbitenGUI) Run() error {
	setupEbitenWindow(g.config)
	if err := runEbitenGame(g.out); err != nil {
		return fmt.Errorf("gui: %w", err)
	}
	return nil
}

func (g *EbitenGUI) Close() error {
	return nil
}

// HeadlessGUI satisfies GUIFrontend without opening a window, driving
// the machine directly from main's own loop instead of an event pump.
type HeadlessGUI struct{}

func NewHeadlessGUI() *HeadlessGUI { return &HeadlessGUI{} }

func (h *HeadlessGUI) Initialize(config GUIConfig) error { return nil }
func (h *HeadlessGUI) Run() error                        { return nil }
func (h *HeadlessGUI) Close() error                      { return nil }
