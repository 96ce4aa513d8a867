// Command octopy assembles an Octo (CHIP-8/XO-CHIP) source file into a
// ROM image plus a symbol file, and optionally a binary source map.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jblebrun/octopy/asm"
	"github.com/jblebrun/octopy/internal/config"
)

func main() {
	verbose := flag.Bool("v", false, "verbose assembly trace")
	writeMap := flag.Bool("m", false, "also emit a binary source map")
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: octopy <infile.8o> [out.ch8] [out.sym]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "octopy: %v\n", err)
		os.Exit(1)
	}

	inPath := args[0]
	romPath, symPath := outputPaths(inPath, args, cfg)

	if err := run(inPath, romPath, symPath, *verbose || cfg.Diagnostics.Verbose, *writeMap || cfg.Output.AlwaysMap, cfg); err != nil {
		for _, line := range asm.Chain(err) {
			fmt.Fprintln(os.Stderr, line)
		}
		os.Exit(1)
	}
}

func outputPaths(inPath string, args []string, cfg *config.Config) (romPath, symPath string) {
	base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
	romPath = base + cfg.Output.ROMSuffix
	symPath = base + cfg.Output.SymbolSuffix
	if len(args) > 1 {
		romPath = args[1]
	}
	if len(args) > 2 {
		symPath = args[2]
	}
	return romPath, symPath
}

func run(inPath, romPath, symPath string, verbose, writeMap bool, cfg *config.Config) error {
	src, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer src.Close()

	layout := keypadLayout(cfg)

	result, err := asm.Assemble(src, verbose, layout)
	if err != nil {
		return err
	}

	if err := os.WriteFile(romPath, result.Code, 0644); err != nil {
		return err
	}
	if err := writeSymbolFile(symPath, result); err != nil {
		return err
	}
	if writeMap {
		mapPath := strings.TrimSuffix(symPath, filepath.Ext(symPath)) + cfg.Output.MapSuffix
		if err := writeSourceMapFile(mapPath, result, inPath); err != nil {
			return err
		}
	}
	return nil
}

func keypadLayout(cfg *config.Config) asm.KeypadLayout {
	if len(cfg.Keypad.Layout) != 16 {
		return asm.DefaultKeypadLayout()
	}
	var layout asm.KeypadLayout
	copy(layout[:], cfg.Keypad.Layout)
	return layout
}

// writeSymbolFile emits the plain-text symbol file: one "NAME = 0xAAAA"
// line per label, one "NAME = VALUE" line per named constant, a
// breakpoint line per breakpoint, and trailing breakpoints=[...] and
// monitors=[...] summary lines.
func writeSymbolFile(path string, r *asm.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	names := make([]string, 0, len(r.Labels))
	for name := range r.Labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(f, "%s = 0x%04X\n", name, r.Labels[name])
	}

	constNames := make([]string, 0, len(r.Consts))
	for name := range r.Consts {
		constNames = append(constNames, name)
	}
	sort.Strings(constNames)
	for _, name := range constNames {
		fmt.Fprintf(f, "%s = %v\n", name, r.Consts[name])
	}

	bpNames := make([]string, 0, len(r.Breakpoints))
	for name := range r.Breakpoints {
		bpNames = append(bpNames, name)
	}
	sort.Strings(bpNames)
	addrs := make([]string, 0, len(bpNames))
	for _, name := range bpNames {
		bp := r.Breakpoints[name]
		fmt.Fprintf(f, "%s = 0x%04X   # breakpoint: %s\n", name, bp.PC, bp.Token)
		addrs = append(addrs, fmt.Sprintf("0x%04X", bp.PC))
	}
	fmt.Fprintf(f, "breakpoints=[%s]\n", strings.Join(addrs, ", "))

	monitors := make([]string, 0, len(r.Monitors))
	for _, m := range r.Monitors {
		monitors = append(monitors, fmt.Sprintf("(0x%04X, %d)", m.Address, m.Length))
	}
	fmt.Fprintf(f, "monitors=[%s]\n", strings.Join(monitors, ", "))

	return nil
}

func writeSourceMapFile(path string, r *asm.Result, srcName string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m := asm.NewSourceMapFromResult(r, filepath.Base(srcName))
	_, err = m.WriteTo(f)
	return err
}
