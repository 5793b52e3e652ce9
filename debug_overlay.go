// debug_overlay.go - bitmap-font debug text blitted onto the scanout image

/*
debug_overlay.go - cycle counter / halted-flag overlay

Draws a small bitmap-font status string (cycle count, halted flag)
directly into an ebiten.Image using golang.org/x/image's basicfont,
the same "stamp pixels with a fixed-width bitmap font" pattern the
pack's video/GUI code uses for on-screen text rather than pulling in a
TTF renderer for a handful of debug characters. Grounded on the
teacher's bitmap-font text rendering in its video/GUI family (the same
fixed-width stamping approach, generalized from terminal character
cells to an arbitrary overlay string). Libraries:
golang.org/x/image/font/basicfont, golang.org/x/image/math/fixed.
*/

package main

import (
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

var debugFace = basicfont.Face7x13

// DrawDebugOverlay stamps a status string into the top-left corner of
// dst using a fixed 7x13 bitmap font.
func DrawDebugOverlay(dst *ebiten.Image, m *Machine) {
	if dst == nil || m == nil {
		return
	}
	status := "running"
	if m.CPU.halted {
		status = "halted"
	}
	line := fmtOverlay(m.CPU.cycles, status)
	text.Draw(dst, line, debugFace, 4, 14, color.RGBA{0x20, 0xFF, 0x40, 0xFF})
}

func fmtOverlay(cycles uint64, status string) string {
	return "cyc=" + strconv.FormatUint(cycles, 10) + " " + status
}
