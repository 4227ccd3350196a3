// Package display renders the S1603 framebuffer window.
//
// The framebuffer has no storage of its own: it is the VRAM_START to
// VRAM_END window of memory, one packed RGB word per pixel in raster
// order. The canvas is larger than the window, so only the first
// VRAM_SIZE raster positions are ever drawn.
package display

import (
	"fmt"
	"image/color"
	"iter"
	"maps"

	"github.com/ezrec/s1603/cpu"
)

const (
	WINDOW_WIDTH  = 640 // Canvas width, in pixels.
	WINDOW_HEIGHT = 480 // Canvas height, in pixels.
)

var _display_defines = map[string]string{
	"WINDOW_WIDTH":  fmt.Sprintf("%v", WINDOW_WIDTH),
	"WINDOW_HEIGHT": fmt.Sprintf("%v", WINDOW_HEIGHT),
	"VRAM_SIZE":     fmt.Sprintf("0x%x", cpu.VRAM_SIZE),
}

// Memory is the word store the framebuffer window aliases.
type Memory interface {
	Read(addr uint32) (value uint16, err error)
	Write(addr uint32, value uint16) (err error)
}

// Renderer receives the pixels of a render pass.
type Renderer interface {
	SetPixel(x, y int32, red, green, blue, alpha byte) error
}

// Framebuffer adapts memory to a pixel canvas.
type Framebuffer struct {
	Memory Memory
}

// Defines returns an iter of defines for the display.
func (fb *Framebuffer) Defines() iter.Seq2[string, string] {
	return maps.All(_display_defines)
}

// Unpack splits a pixel word into color channels.
func Unpack(pixel uint16) (red, green, blue byte) {
	red = byte((pixel & 0xF800) >> 8)
	green = byte((pixel & 0x07E0) >> 3)
	blue = byte(pixel & 0x001F)
	return
}

// index returns the window offset of a canvas position.
func index(x, y int) (offset int, ok bool) {
	if x < 0 || x >= WINDOW_WIDTH || y < 0 || y >= WINDOW_HEIGHT {
		return
	}

	offset = y*WINDOW_WIDTH + x
	ok = offset < cpu.VRAM_SIZE
	return
}

// Pixel returns the color at a canvas position. Positions outside
// of the framebuffer window are not ok.
func (fb *Framebuffer) Pixel(x, y int) (rgba color.RGBA, ok bool, err error) {
	offset, ok := index(x, y)
	if !ok {
		return
	}

	pixel, err := fb.Memory.Read(uint32(cpu.VRAM_START + offset))
	if err != nil {
		ok = false
		return
	}

	red, green, blue := Unpack(pixel)
	rgba = color.RGBA{R: red, G: green, B: blue, A: 255}

	return
}

// Render one pass of the canvas. Positions outside of the framebuffer
// window are neither read nor drawn.
func (fb *Framebuffer) Render(r Renderer) (err error) {
	for y := range WINDOW_HEIGHT {
		for x := range WINDOW_WIDTH {
			var rgba color.RGBA
			var ok bool
			rgba, ok, err = fb.Pixel(x, y)
			if err != nil {
				return
			}
			if !ok {
				continue
			}
			err = r.SetPixel(int32(x), int32(y), rgba.R, rgba.G, rgba.B, rgba.A)
			if err != nil {
				return
			}
		}
	}

	return
}

// SetPixelData stores a pixel word at an absolute address. Addresses
// outside of the framebuffer window are ignored.
func (fb *Framebuffer) SetPixelData(address uint16, value uint16) (err error) {
	if address < cpu.VRAM_START || address > cpu.VRAM_END {
		return
	}

	err = fb.Memory.Write(uint32(address), value)
	return
}
