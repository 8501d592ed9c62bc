package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"runtime/pprof"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"
	"golang.org/x/image/bmp"

	"pica/emu"
	"pica/emu/log"
	"pica/hw/gpu"
)

// runMain loads the memory images, submits the command lists in order then
// runs the requested number of frames.
func runMain(args Run, cfg emu.Config) (err error) {
	switch args.GPU {
	case "serial":
		cfg.Video.AsyncGPU = false
	case "parallel":
		cfg.Video.AsyncGPU = true
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		if err != nil {
			return errors.Wrap(err, "create cpu profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return errors.Wrap(err, "start cpu profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	e := emu.PowerUp(cfg)
	defer func() {
		if cerr := e.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "shutdown")
		}
	}()

	if args.Trace != nil {
		defer args.Trace.Close()
		e.SetTraceOutput(args.Trace, cfg.General.MaxTraceData)
	}

	images := make([]emu.MemImage, len(args.Mem))
	for i, m := range args.Mem {
		images[i] = emu.MemImage(m)
	}
	if err := e.LoadImages(context.Background(), images); err != nil {
		return err
	}

	for _, l := range args.Lists {
		log.ModEmu.InfoZ("submit command list").Hex32("addr", l.Addr).Hex32("size", l.Size).End()
		e.SubmitCommandList(l.Addr, l.Size)
	}
	e.RunFrames(args.Frames)

	log.ModEmu.InfoZ("done").
		Uint("frames", e.Video.Frames()).
		Uint("triangles", e.Renderer.Triangles.Load()).
		Uint("draws", e.Renderer.Draws.Load()).
		Uint("command_lists", e.Interrupts(gpu.P3D)).
		Int("pica_regs", e.Video.Pica.State.Written.Count()).
		End()

	if args.DumpFB != "" {
		if err := dumpFramebuffer(e, args.DumpFB, args.Sub); err != nil {
			return err
		}
	}
	return nil
}

func dumpFramebuffer(e *emu.Emulator, path string, sub bool) error {
	img, err := e.Video.Screenshot(sub)
	if err != nil {
		return errors.Wrap(err, "screenshot")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create framebuffer dump")
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrap(err, "encode framebuffer dump")
	}
	return f.Close()
}

var registers = []struct {
	name  string
	index uint32
}{
	{"memory fill 0", gpu.RegMemoryFill0},
	{"memory fill 1", gpu.RegMemoryFill1},
	{"framebuffer top", gpu.RegFramebufferTop},
	{"framebuffer sub", gpu.RegFramebufferSub},
	{"display transfer", gpu.RegDisplayTransfer},
	{"command list", gpu.RegCommandList},
}

// infoMain prints the physical memory map, the GPU register map and the
// effective configuration.
func infoMain(w io.Writer, cfg emu.Config, cfgPath string) error {
	e := emu.PowerUp(cfg)
	defer e.Close()

	fmt.Fprintln(w, "Memory map:")
	for _, r := range e.Bus.Regions() {
		kind := "mem"
		if r.IO {
			kind = "io"
		}
		fmt.Fprintf(w, "  %08x-%08x  %-4s %s\n", r.Base, r.Base+r.Size-1, kind, r.Name)
	}

	fmt.Fprintln(w, "\nGPU registers:")
	for _, r := range registers {
		fmt.Fprintf(w, "  %08x  %s\n", gpu.PAddr+r.index*4, r.name)
	}

	fmt.Fprintf(w, "\nConfiguration (%s):\n", cfgPath)
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return errors.Wrap(err, "encode config")
	}
	return nil
}

func versionMain(w io.Writer) {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Fprintln(w, "pica", version)
}
