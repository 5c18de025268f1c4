// The fbxconv command converts FBX files between the binary and ASCII
// variants.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fbxtools/fbxfile/convert"
	"github.com/fbxtools/fbxfile/fbxio"
)

const banner = `================================================
FBX File Format Converter
================================================
2020 - Bobby Anguelov - MIT License

`

const usage = "Convert: -c <input fbx> [-o <output fbx>] {-binary|-ascii}\n"

func printErrorAndHelp(w io.Writer, msg string) {
	fmt.Fprint(w, banner)
	if msg != "" {
		fmt.Fprintf(w, "Error! %s\n\n", msg)
	}
	fmt.Fprint(w, usage)
}

// run executes the command with the given arguments, and returns the exit
// code.
func run(args []string, stdout, stderr io.Writer) int {
	var input, output, config string
	var asBinary, asASCII bool

	flags := flag.NewFlagSet("fbxconv", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&input, "c", "", "input file")
	flags.StringVar(&input, "convert", "", "input file")
	flags.StringVar(&output, "o", "", "output file")
	flags.StringVar(&output, "output", "", "output file")
	flags.BoolVar(&asBinary, "binary", false, "write the binary variant")
	flags.BoolVar(&asASCII, "ascii", false, "write the ASCII variant")
	flags.StringVar(&config, "config", "", "config file (default: ./fbxconv.yaml or ~/.config/fbxconv/fbxconv.yaml)")
	if err := flags.Parse(args); err != nil {
		printErrorAndHelp(stdout, "")
		return 1
	}

	switch {
	case input == "":
		printErrorAndHelp(stdout, "")
		return 1
	case asASCII && asBinary:
		printErrorAndHelp(stdout, "Having both -ascii and -binary arguments is not allowed.")
		return 1
	case !asASCII && !asBinary:
		printErrorAndHelp(stdout, "Either -ascii or -binary required!")
		return 1
	}

	manager := fbxio.NewManager()
	if err := loadConfig(config, manager.Settings(), stderr); err != nil {
		manager.Destroy()
		fmt.Fprintln(stderr, fmt.Errorf("load config: %w", err))
		return 1
	}
	converter, err := convert.New(manager, stdout)
	if err != nil {
		manager.Destroy()
		fmt.Fprintln(stderr, fmt.Errorf("fatal: %w", err))
		return 1
	}
	defer converter.Close()
	converter.Warn = stderr

	format := convert.ASCII
	if asBinary {
		format = convert.Binary
	}
	if err := converter.ConvertFile(input, output, format); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
