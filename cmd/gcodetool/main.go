// gcodetool is a CLI utility for inspecting G-code toolpaths.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/pathscope/internal/engine/geometry"
	"github.com/Faultbox/pathscope/internal/engine/picking"
	"github.com/Faultbox/pathscope/internal/engine/tooltip"
	"github.com/Faultbox/pathscope/pkg/gcode"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	err := run(os.Args[1], os.Args[2:], os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "info":
		return cmdInfo(args, out)
	case "segments", "ls":
		return cmdSegments(args, out)
	case "point":
		return cmdPoint(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, `gcodetool - G-code toolpath utility

Usage:
  gcodetool <command> [options]

Commands:
  info <file>                          Show toolpath statistics
  segments [-n N] [-line L] <file>     List segments (optionally of one source line)
  point <file> <segment> [start|end]   Show the tooltip of a segment endpoint

Examples:
  gcodetool info part.nc
  gcodetool segments -n 20 part.nc
  gcodetool segments -line 42 part.nc
  gcodetool point part.nc 17 end`)
}

func load(path string) (*gcode.Toolpath, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return gcode.Parse(string(data))
}

func cmdInfo(args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: gcodetool info <file>", errUsage)
	}
	tp, err := load(args[0])
	if err != nil {
		return err
	}

	var length float64
	for i := range tp.Segments {
		length += tp.Segments[i].Length()
	}
	kind := geometry.NewBuilder(nil, geometry.DefaultPolicy()).Choose(tp.Len())

	fmt.Fprintf(out, "File:       %s\n", args[0])
	fmt.Fprintf(out, "Lines:      %d\n", tp.LineCount)
	fmt.Fprintf(out, "Segments:   %d\n", tp.Len())
	fmt.Fprintf(out, "Units:      %s\n", tp.Units)
	fmt.Fprintf(out, "Length:     %s %s\n", tooltip.FormatCoordinate(length), tp.Units)
	fmt.Fprintf(out, "Primitives: %s\n", kind)
	if tp.Bounds.Valid {
		fmt.Fprintf(out, "Bounds:     %s .. %s\n", formatVec(tp.Bounds.Min), formatVec(tp.Bounds.Max))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Segments by mode:")
	for _, m := range gcode.Modes {
		if n := tp.Counts.Get(m); n > 0 {
			fmt.Fprintf(out, "  %-8s %-4s %d\n", m, m.Mnemonic(), n)
		}
	}
	return nil
}

func cmdSegments(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("segments", flag.ContinueOnError)
	fs.SetOutput(out)
	limit := fs.Int("n", 0, "Limit output to N segments (0 = all)")
	line := fs.Int("line", 0, "Only segments of this 1-based source line")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: gcodetool segments [-n N] [-line L] <file>", errUsage)
	}
	tp, err := load(fs.Arg(0))
	if err != nil {
		return err
	}

	first, end := 0, tp.Len()
	if *line > 0 {
		first, end = tp.SegmentsForLine(*line - 1)
	}
	count := 0
	for i := first; i < end; i++ {
		if *limit > 0 && count >= *limit {
			fmt.Fprintf(out, "... (%d more)\n", end-i)
			break
		}
		s := &tp.Segments[i]
		fmt.Fprintf(out, "%6d  line %-6d %-4s %s -> %s\n",
			i, s.Line+1, s.Mode.Mnemonic(), formatVec(s.Start), formatVec(s.End))
		count++
	}
	if count == 0 {
		fmt.Fprintln(out, "No segments")
	}
	return nil
}

func cmdPoint(args []string, out io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: gcodetool point <file> <segment> [start|end]", errUsage)
	}
	tp, err := load(args[0])
	if err != nil {
		return err
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil || idx < 0 || idx >= tp.Len() {
		return fmt.Errorf("segment %q out of range [0, %d)", args[1], tp.Len())
	}
	end := true
	if len(args) > 2 {
		switch strings.ToLower(args[2]) {
		case "start":
			end = false
		case "end":
		default:
			return fmt.Errorf("%w: endpoint must be start or end, got %q", errUsage, args[2])
		}
	}

	d := picking.NewDetector(picking.DefaultPixelRadius)
	d.UpdateToolpath(tp)
	defer d.Dispose()

	fmt.Fprintln(out, tooltip.Format(d.Sample(idx, end)).String())
	return nil
}

func formatVec(v [3]float64) string {
	return "(" + tooltip.FormatCoordinate(v[0]) +
		", " + tooltip.FormatCoordinate(v[1]) +
		", " + tooltip.FormatCoordinate(v[2]) + ")"
}
