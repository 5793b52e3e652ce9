// video_backend_headless.go - no-op VideoOutput for tests and CI

/*
video_backend_headless.go - scanout sink with no window

Implements VideoOutput (vi.go) by recording the last presented field's
metadata without touching a display, so machine tests and CI runs can
drive VI field output without a GUI toolkit. Grounded on the teacher's
HeadlessVideoOutput in video_backend_headless.go.
*/

package main

import "sync"

// HeadlessVideoOutput discards pixel data but counts fields, useful for
// throughput tests and headless automation.
type HeadlessVideoOutput struct {
	mu         sync.Mutex
	fieldCount uint64
	lastOrigin uint32
	lastWidth  uint32
	lastBpp    int
}

func NewHeadlessVideoOutput() *HeadlessVideoOutput {
	return &HeadlessVideoOutput{}
}

func (h *HeadlessVideoOutput) PresentField(origin uint32, width uint32, bpp int, rdram *RDRAM) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fieldCount++
	h.lastOrigin, h.lastWidth, h.lastBpp = origin, width, bpp
}

func (h *HeadlessVideoOutput) FieldCount() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fieldCount
}
