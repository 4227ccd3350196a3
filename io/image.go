// Package io provides program image encoding for the S1603.
//
// A program image is a flat sequence of little-endian 16-bit words,
// loaded into memory starting at address 0.
package io

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/ezrec/s1603/cpu"
)

// Image is a program image.
type Image struct {
	Data []uint16
}

// Unmarshal reads an image. A trailing odd byte is ignored.
func (img *Image) Unmarshal(input io.Reader) (err error) {
	// Read one word past the limit, to detect oversize images.
	raw, err := io.ReadAll(io.LimitReader(input, 2*(cpu.MEMORY_SIZE+1)))
	if err != nil {
		return
	}

	words := len(raw) / 2
	if words == 0 {
		err = ErrImageEmpty
		return
	}
	if words > cpu.MEMORY_SIZE {
		err = ErrImageSize
		return
	}

	img.Data = make([]uint16, words)
	for n := range img.Data {
		img.Data[n] = binary.LittleEndian.Uint16(raw[n*2:])
	}

	return
}

// Marshal writes the image.
func (img *Image) Marshal(output io.Writer) (err error) {
	if len(img.Data) > cpu.MEMORY_SIZE {
		err = ErrImageSize
		return
	}

	err = binary.Write(output, binary.LittleEndian, img.Data)

	return
}

// ReadFile reads an image from a file.
func ReadFile(filename string) (img *Image, err error) {
	inf, err := os.Open(filename)
	if err != nil {
		return
	}
	defer inf.Close()

	img = &Image{}
	err = img.Unmarshal(inf)
	if err != nil {
		img = nil
	}

	return
}

// WriteFile writes an image to a file.
func (img *Image) WriteFile(filename string) (err error) {
	ouf, err := os.Create(filename)
	if err != nil {
		return
	}

	err = img.Marshal(ouf)
	if err != nil {
		ouf.Close()
		return
	}

	err = ouf.Close()

	return
}
