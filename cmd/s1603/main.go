// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"github.com/ezrec/s1603/cpu"
	"github.com/ezrec/s1603/display"
	"github.com/ezrec/s1603/emulator"
	"github.com/ezrec/s1603/gui/sdl"
	"github.com/ezrec/s1603/io"
	"github.com/ezrec/s1603/translate"
)

func init() {
	// SDL calls must stay on the main thread.
	runtime.LockOSThread()
}

func usage() {
	translate.Fprintf(flag.CommandLine.Output(), "usage: %v [flags] <image>\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	var compile string
	var save bool
	var mode string
	var ticks int
	var strict bool
	var verbose bool
	var scale int
	var capture string
	var frames int

	flag.StringVar(&compile, "c", "", ".s file to assemble, instead of loading the image")
	flag.BoolVar(&save, "s", false, "Save the assembled image, do not execute")
	flag.StringVar(&mode, "m", emulator.MODE_REPLAY.String(), "Run mode: replay or continuous")
	flag.IntVar(&ticks, "t", 0, "Maximum ticks per pass (0 is unlimited)")
	flag.BoolVar(&strict, "strict", false, "Unknown opcodes are fatal")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.IntVar(&scale, "x", 1, "Window scale factor")
	flag.StringVar(&capture, "png", "", "Run headless, and write the last frame to this .png file")
	flag.IntVar(&frames, "frames", 1, "Frames to run when headless")

	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
	}

	image := flag.Arg(0)

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.MaxTicks = ticks
	emu.Cpu.Strict = strict

	var err error
	emu.Mode, err = emulator.ParseMode(mode)
	if err != nil {
		translate.Fprintf(flag.CommandLine.Output(), "%v: %v\n", os.Args[0], err)
		usage()
	}

	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}

		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		if save {
			bins, err := prog.Binary()
			if err != nil {
				log.Fatalf("%v: %v", compile, err)
			}
			err = (&io.Image{Data: bins}).WriteFile(image)
			if err != nil {
				log.Fatalf("%v: %v", image, err)
			}
			return
		}

		err = emu.LoadProgram(prog)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	} else {
		img, err := io.ReadFile(image)
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}

		err = emu.Load(img.Data)
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
	}

	if len(capture) != 0 {
		frame := &display.Image{Scale: scale}
		for range frames {
			err = emu.Frame(frame)
			if err != nil {
				log.Fatalf("%v\n%v", err, emu.Cpu.String())
			}
		}

		err = frame.Save(capture)
		if err != nil {
			log.Fatalf("%v: %v", capture, err)
		}
		return
	}

	gui, err := sdl.NewGUI(scale)
	if err != nil {
		log.Fatalf("sdl: %v", err)
	}
	defer gui.Destroy()

	for gui.Service() {
		err = emu.Frame(gui)
		if err != nil {
			gui.Destroy()
			log.Fatalf("%v\n%v", err, emu.Cpu.String())
		}

		err = gui.Present()
		if err != nil {
			gui.Destroy()
			log.Fatalf("sdl: %v", err)
		}
	}
}
