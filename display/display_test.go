package display

import (
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/s1603/cpu"
)

type pixel struct {
	x, y                    int32
	red, green, blue, alpha byte
}

// recorder captures every pixel drawn.
type recorder struct {
	pixels []pixel
}

func (rec *recorder) SetPixel(x, y int32, red, green, blue, alpha byte) error {
	rec.pixels = append(rec.pixels, pixel{x, y, red, green, blue, alpha})
	return nil
}

// failing is a memory that rejects every access.
type failing struct {
	writes int
}

var errFailing = errors.New("failing memory")

func (mem *failing) Read(addr uint32) (value uint16, err error) {
	err = errFailing
	return
}

func (mem *failing) Write(addr uint32, value uint16) (err error) {
	mem.writes++
	err = errFailing
	return
}

// pack is the inverse of Unpack, for channel values Unpack can produce.
func pack(red, green, blue byte) (pixel uint16) {
	pixel = (uint16(red) << 8) & 0xF800
	pixel |= (uint16(green) << 3) & 0x07E0
	pixel |= uint16(blue) & 0x001F
	return
}

func TestUnpack(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		pixel uint16
		red   byte
		green byte
		blue  byte
	}){
		{0x0000, 0x00, 0x00, 0x00},
		{0xf800, 0xf8, 0x00, 0x00},
		{0x07e0, 0x00, 0xfc, 0x00},
		{0x001f, 0x00, 0x00, 0x1f},
		{0xffff, 0xf8, 0xfc, 0x1f},
	}

	for _, entry := range table {
		red, green, blue := Unpack(entry.pixel)
		assert.Equal(entry.red, red)
		assert.Equal(entry.green, green)
		assert.Equal(entry.blue, blue)
		assert.Equal(entry.pixel, pack(red, green, blue))
	}
}

func TestFramebuffer_Render(t *testing.T) {
	assert := assert.New(t)

	mem := &cpu.Memory{}
	mem[cpu.VRAM_START] = 0xf800
	mem[cpu.VRAM_START+WINDOW_WIDTH+1] = 0x07e0
	mem[cpu.VRAM_END] = 0x001f
	mem[cpu.O_PORT_FLAG] = 0xffff

	fb := &Framebuffer{Memory: mem}
	rec := &recorder{}

	err := fb.Render(rec)
	assert.NoError(err)
	assert.Equal(cpu.VRAM_SIZE, len(rec.pixels))

	assert.Equal(pixel{0, 0, 0xf8, 0, 0, 255}, rec.pixels[0])
	assert.Equal(pixel{1, 1, 0, 0xfc, 0, 255}, rec.pixels[WINDOW_WIDTH+1])

	// The last framebuffer word is on the seventh row.
	last := rec.pixels[len(rec.pixels)-1]
	assert.Equal(pixel{int32((cpu.VRAM_SIZE - 1) % WINDOW_WIDTH), int32((cpu.VRAM_SIZE - 1) / WINDOW_WIDTH), 0, 0, 0x1f, 255}, last)
	assert.Equal(pixel{252, 6, 0, 0, 0x1f, 255}, last)
}

func TestFramebuffer_Pixel(t *testing.T) {
	assert := assert.New(t)

	mem := &cpu.Memory{}
	mem[cpu.VRAM_START+5] = 0xffff

	fb := &Framebuffer{Memory: mem}

	rgba, ok, err := fb.Pixel(5, 0)
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(color.RGBA{R: 0xf8, G: 0xfc, B: 0x1f, A: 255}, rgba)

	_, ok, err = fb.Pixel(0, 7)
	assert.NoError(err)
	assert.False(ok)

	_, ok, _ = fb.Pixel(-1, 0)
	assert.False(ok)

	_, ok, _ = fb.Pixel(WINDOW_WIDTH, 0)
	assert.False(ok)
}

func TestFramebuffer_SetPixelData(t *testing.T) {
	assert := assert.New(t)

	mem := &cpu.Memory{}
	fb := &Framebuffer{Memory: mem}

	table := [](struct {
		address uint16
		stored  bool
	}){
		{0x0000, false},
		{cpu.VRAM_START - 1, false},
		{cpu.VRAM_START, true},
		{0xf800, true},
		{cpu.VRAM_END, true},
		{cpu.O_PORT_FLAG, false},
		{cpu.I_PORT, false},
	}

	for _, entry := range table {
		assert.NoError(fb.SetPixelData(entry.address, 0xabcd), "0x%04x", entry.address)
		if entry.stored {
			assert.Equal(uint16(0xabcd), mem[entry.address], "0x%04x", entry.address)
		} else {
			assert.Equal(uint16(0), mem[entry.address], "0x%04x", entry.address)
		}
	}

	// Stored pixels are visible to a render.
	rgba, ok, err := fb.Pixel(0, 0)
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(uint8(0xa8), rgba.R)
}

func TestFramebuffer_SetPixelData_Error(t *testing.T) {
	assert := assert.New(t)

	mem := &failing{}
	fb := &Framebuffer{Memory: mem}

	err := fb.SetPixelData(cpu.VRAM_START, 0xabcd)
	assert.ErrorIs(err, errFailing)
	assert.Equal(1, mem.writes)

	// Out of window writes never reach memory.
	err = fb.SetPixelData(cpu.VRAM_START-1, 0xabcd)
	assert.NoError(err)
	assert.Equal(1, mem.writes)

	// Read failures stop a render.
	err = fb.Render(&recorder{})
	assert.ErrorIs(err, errFailing)
}

func TestFramebuffer_Defines(t *testing.T) {
	assert := assert.New(t)

	fb := &Framebuffer{}

	defines := map[string]string{}
	for key, value := range fb.Defines() {
		defines[key] = value
	}

	assert.Equal("640", defines["WINDOW_WIDTH"])
	assert.Equal("480", defines["WINDOW_HEIGHT"])
	assert.Equal("0xffd", defines["VRAM_SIZE"])
}

func TestImage(t *testing.T) {
	assert := assert.New(t)

	mem := &cpu.Memory{}
	mem[cpu.VRAM_START+1] = 0xf800

	fb := &Framebuffer{Memory: mem}
	img := &Image{Scale: 2}

	assert.NoError(fb.Render(img))

	frame := img.Frame()
	assert.Equal(WINDOW_WIDTH*2, frame.Bounds().Dx())
	assert.Equal(WINDOW_HEIGHT*2, frame.Bounds().Dy())
	assert.Equal(color.NRGBA{R: 0xf8, A: 255}, frame.NRGBAAt(2, 0))
	assert.Equal(color.NRGBA{R: 0xf8, A: 255}, frame.NRGBAAt(3, 1))
	assert.Equal(color.NRGBA{A: 255}, frame.NRGBAAt(0, 0))
	assert.Equal(color.NRGBA{}, frame.NRGBAAt(0, 20))

	filename := filepath.Join(t.TempDir(), "frame.png")
	assert.NoError(img.Save(filename))

	inf, err := os.Open(filename)
	if !assert.NoError(err) {
		return
	}
	defer inf.Close()

	decoded, err := png.Decode(inf)
	assert.NoError(err)
	assert.Equal(frame.Bounds(), decoded.Bounds())
}
