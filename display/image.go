package display

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// Image is a Renderer which captures a frame in memory, and saves it
// as a PNG on request.
type Image struct {
	Scale int // Pixel scale factor; values below 1 are treated as 1.

	frame *image.NRGBA
}

func (img *Image) scale() int {
	if img.Scale < 1 {
		return 1
	}
	return img.Scale
}

// Frame returns the captured frame, allocating a blank one if needed.
func (img *Image) Frame() *image.NRGBA {
	if img.frame == nil {
		scale := img.scale()
		img.frame = image.NewNRGBA(image.Rect(0, 0, WINDOW_WIDTH*scale, WINDOW_HEIGHT*scale))
	}
	return img.frame
}

// SetPixel implements the Renderer interface.
func (img *Image) SetPixel(x, y int32, red, green, blue, alpha byte) error {
	frame := img.Frame()
	scale := img.scale()

	col := color.NRGBA{R: red, G: green, B: blue, A: alpha}
	for dy := range scale {
		for dx := range scale {
			frame.Set(int(x)*scale+dx, int(y)*scale+dy, col)
		}
	}

	return nil
}

// Save the captured frame to a PNG file.
func (img *Image) Save(filename string) (err error) {
	out, err := os.Create(filename)
	if err != nil {
		return
	}

	err = png.Encode(out, img.Frame())
	if err != nil {
		out.Close()
		return
	}

	err = out.Close()

	return
}
