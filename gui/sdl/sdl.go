// Package sdl presents the S1603 framebuffer in an SDL window.
package sdl

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/ezrec/s1603/display"
)

const FRAMES_PER_SECOND = 60

const windowTitle = "S1603"

// GUI is the SDL implementation of a display.Renderer.
type GUI struct {
	window   *sdl.Window
	renderer *sdl.Renderer

	// regulates how often the screen is presented
	fpsLimiter *fpsLimiter

	running bool
}

// NewGUI opens a window for the canvas, scaled by an integer factor.
// Must be called from the main thread.
func NewGUI(scale int) (gui *GUI, err error) {
	if scale < 1 {
		scale = 1
	}

	err = sdl.Init(sdl.INIT_VIDEO)
	if err != nil {
		return
	}

	gui = &GUI{running: true}

	gui.window, err = sdl.CreateWindow(windowTitle,
		int32(sdl.WINDOWPOS_UNDEFINED), int32(sdl.WINDOWPOS_UNDEFINED),
		int32(display.WINDOW_WIDTH*scale), int32(display.WINDOW_HEIGHT*scale),
		uint32(sdl.WINDOW_SHOWN))
	if err != nil {
		gui.Destroy()
		gui = nil
		return
	}

	gui.renderer, err = sdl.CreateRenderer(gui.window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		gui.Destroy()
		gui = nil
		return
	}

	err = gui.renderer.SetScale(float32(scale), float32(scale))
	if err != nil {
		gui.Destroy()
		gui = nil
		return
	}

	gui.fpsLimiter = newFPSLimiter(FRAMES_PER_SECOND)

	err = gui.clear()
	if err != nil {
		gui.Destroy()
		gui = nil
		return
	}

	return
}

// Destroy the window, and shut down SDL.
func (gui *GUI) Destroy() {
	if gui.fpsLimiter != nil {
		gui.fpsLimiter.stop()
		gui.fpsLimiter = nil
	}
	if gui.renderer != nil {
		gui.renderer.Destroy()
		gui.renderer = nil
	}
	if gui.window != nil {
		gui.window.Destroy()
		gui.window = nil
	}
	sdl.Quit()
}

// Service drains pending window events. Returns false once the window
// has been asked to close.
func (gui *GUI) Service() (running bool) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev.(type) {
		case *sdl.QuitEvent:
			gui.running = false
		}
	}

	return gui.running
}

// SetPixel implements display.Renderer interface
func (gui *GUI) SetPixel(x, y int32, red, green, blue, alpha byte) (err error) {
	err = gui.renderer.SetDrawColor(red, green, blue, alpha)
	if err != nil {
		return
	}

	err = gui.renderer.DrawPoint(x, y)

	return
}

// Present the rendered frame, paced to FRAMES_PER_SECOND, and clear
// for the next one.
func (gui *GUI) Present() (err error) {
	gui.fpsLimiter.wait()

	gui.renderer.Present()

	err = gui.clear()

	return
}

func (gui *GUI) clear() (err error) {
	err = gui.renderer.SetDrawColor(0, 0, 0, 255)
	if err != nil {
		return
	}

	err = gui.renderer.Clear()

	return
}
