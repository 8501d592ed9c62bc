package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/go-faster/errors"

	"pica/emu"
	"pica/emu/log"
)

type mode byte

const (
	runMode     mode = iota // Run command lists
	infoMode                // Show memory map and configuration
	versionMode             // Show pica version
)

type (
	CLI struct {
		Run     Run     `cmd:"" help:"Run command lists over memory images." default:"withargs"`
		Info    Info    `cmd:"" help:"Show memory map, register map and configuration."`
		Version Version `cmd:"" help:"Show pica version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `name:"config" help:"${config_help}" type:"existingfile"`

		mode mode
	}

	Run struct {
		Lists []cmdList `arg:"" name:"list" help:"${list_help}" optional:""`

		Mem        []memImage `name:"mem" short:"m" help:"${mem_help}" placeholder:"ADDR=FILE" sep:"none"`
		Frames     int        `name:"frames" help:"Number of frames to run after the lists were submitted." default:"1"`
		GPU        string     `name:"gpu" help:"${gpu_help}" enum:"config,serial,parallel" default:"config"`
		DumpFB     string     `name:"dump-fb" help:"Write the displayed framebuffer to a BMP file." type:"path"`
		Sub        bool       `name:"sub" help:"Dump the bottom screen framebuffer instead of the top one."`
		Trace      *outfile   `name:"trace" help:"Write register and memory trace." placeholder:"FILE|stdout|stderr"`
		CPUProfile string     `name:"cpuprofile" help:"Write CPU profile to file." type:"path"`
	}

	Info struct{}

	Version struct{}
)

var vars = kong.Vars{
	"log_help":    "Enable logging for specified modules.",
	"config_help": "Configuration file (default: config.toml in the pica config directory).",
	"list_help":   "Command list to submit, as ADDR:SIZE (physical address, size in bytes).",
	"mem_help":    "Load FILE into physical memory at ADDR before running. Can be repeated.",
	"gpu_help":    "GPU backend: serial, parallel or as set in the configuration.",
}

func parseArgs(args []string) (CLI, error) {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("pica"),
		kong.Description("PICA200 GPU command processor."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return cfg, err
	}
	if ctx.Error != nil {
		return cfg, ctx.Error
	}

	switch ctx.Command() {
	case "info":
		cfg.mode = infoMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg, nil
}

// loadConfig loads the config file given on the command line, or the one
// in the config directory.
func (c *CLI) loadConfig() (emu.Config, error) {
	if c.Config == "" {
		return emu.LoadConfigOrDefault(), nil
	}
	return emu.LoadConfig(c.Config)
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

func parseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid address %q", s)
	}
	return uint32(v), nil
}

// memImage is a memory image given as ADDR=FILE.
type memImage emu.MemImage

// Decode implements kong.MapperValue interface.
func (m *memImage) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	s, ok := tok.Value.(string)
	if !ok {
		return errors.Errorf("expected ADDR=FILE, got %v", tok.Value)
	}
	addr, path, found := strings.Cut(s, "=")
	if !found || path == "" {
		return errors.Errorf("expected ADDR=FILE, got %q", s)
	}
	a, err := parseAddr(addr)
	if err != nil {
		return err
	}
	*m = memImage{Addr: a, Path: path}
	return nil
}

// cmdList is a command list given as ADDR:SIZE.
type cmdList struct {
	Addr uint32
	Size uint32
}

// Decode implements kong.MapperValue interface.
func (l *cmdList) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	s, ok := tok.Value.(string)
	if !ok {
		return errors.Errorf("expected ADDR:SIZE, got %v", tok.Value)
	}
	addr, size, found := strings.Cut(s, ":")
	if !found {
		return errors.Errorf("expected ADDR:SIZE, got %q", s)
	}
	a, err := parseAddr(addr)
	if err != nil {
		return err
	}
	n, err := strconv.ParseUint(size, 0, 32)
	if err != nil || n == 0 {
		return errors.Errorf("invalid command list size %q", size)
	}
	*l = cmdList{Addr: a, Size: uint32(n)}
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
