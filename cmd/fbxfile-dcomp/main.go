// The fbxfile-dcomp command rewrites a binary FBX file with uncompressed
// arrays.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fbxtools/fbxfile/bin"
)

const usage = `usage: fbxfile-dcomp [-verify] [INPUT] [OUTPUT]

Reads a binary FBX file from INPUT, and writes to OUTPUT the same file, but
with every array property stored uncompressed. With -verify, the result is
decoded again and compared against the input before anything is written.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Nothing is
written to OUTPUT when the input cannot be decoded. Warnings and errors are
written to stderr.
`

// decompress rewrites the binary file in src. If verify is set, the node
// trees of src and the result must have the same digest.
func decompress(src []byte, verify bool) (out []byte, warn, err error) {
	var buf bytes.Buffer
	if warn, err = (bin.Decoder{}).Decompress(&buf, bytes.NewReader(src)); err != nil {
		return nil, warn, err
	}
	if verify {
		before, _, err := bin.Decoder{}.Decode(bytes.NewReader(src))
		if err != nil {
			return nil, warn, err
		}
		after, _, err := bin.Decoder{}.Decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, warn, fmt.Errorf("decode result: %w", err)
		}
		if before.Digest() != after.Digest() {
			return nil, warn, fmt.Errorf("result does not match input")
		}
	}
	return buf.Bytes(), warn, nil
}

func writeOutput(path string, b []byte, stdout io.Writer) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(b)
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	if _, err := out.Write(b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync output: %w", err)
	}
	return nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var verify bool
	flags := flag.NewFlagSet("fbxfile-dcomp", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { fmt.Fprint(stderr, usage) }
	flags.BoolVar(&verify, "verify", false, "compare the result against the input")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	args = flags.Args()

	input := stdin
	if len(args) >= 1 && args[0] != "-" {
		in, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(stderr, fmt.Errorf("open input: %w", err))
			return 1
		}
		defer in.Close()
		input = in
	}
	src, err := io.ReadAll(input)
	if err != nil {
		fmt.Fprintln(stderr, fmt.Errorf("read input: %w", err))
		return 1
	}

	out, warn, err := decompress(src, verify)
	if warn != nil {
		fmt.Fprintln(stderr, fmt.Errorf("warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(stderr, fmt.Errorf("error: %w", err))
		return 1
	}

	var path string
	if len(args) >= 2 {
		path = args[1]
	}
	if err := writeOutput(path, out, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
