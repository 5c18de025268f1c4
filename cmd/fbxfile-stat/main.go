// The fbxfile-stat command displays stats for an FBX file.
package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fbxtools/fbxfile"
	"github.com/fbxtools/fbxfile/ascii"
	"github.com/fbxtools/fbxfile/bin"
)

const usage = `usage: fbxfile-stat [INPUT] [OUTPUT]

Reads a binary or ASCII FBX file from INPUT, and writes to OUTPUT statistics
for the file.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.
`

type ArrayLen struct {
	Node   string
	Type   string
	Length int
}

func (a ArrayLen) String() string {
	return fmt.Sprintf("%s:%s(%d)", a.Node, a.Type, a.Length)
}

type ArrayLenCount map[ArrayLen]int

func (a ArrayLenCount) MarshalJSON() ([]byte, error) {
	list := []ArrayLen{}
	for k := range a {
		list = append(list, k)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Length == list[j].Length {
			return list[i].String() < list[j].String()
		}
		return list[i].Length > list[j].Length
	})
	if len(list) > 20 {
		list = list[:20]
	}
	return json.Marshal(list)
}

type Stats struct {
	// Variant of the format, either "binary" or "ascii".
	Format string

	Version uint32

	// Digest of the node tree, as hex.
	Digest string

	// Number of nodes overall.
	NodeCount int

	// Number of properties overall.
	PropertyCount int

	// Number of nodes per name.
	NameCount map[string]int

	// Number of properties per type.
	TypeCount map[string]int

	// Number of Objects children per class.
	ObjectCount map[string]int `json:",omitempty"`

	LargestArrays ArrayLenCount `json:",omitempty"`
}

func (s *Stats) Fill(scene *fbxfile.Scene) {
	if scene == nil {
		return
	}
	s.Version = scene.Version
	digest := scene.Digest()
	s.Digest = hex.EncodeToString(digest[:])

	s.NodeCount = 0
	s.PropertyCount = 0
	s.NameCount = map[string]int{}
	s.TypeCount = map[string]int{}
	s.LargestArrays = ArrayLenCount{}
	scene.Walk(func(parent, node *fbxfile.Node) bool {
		s.NodeCount++
		s.NameCount[node.Name]++
		for _, v := range node.Properties {
			s.PropertyCount++
			s.TypeCount[v.Type().String()]++
			if n := fbxfile.ArrayLen(v); n >= 0 {
				s.LargestArrays[ArrayLen{Node: node.Name, Type: v.Type().String(), Length: n}]++
			}
		}
		return true
	})

	s.ObjectCount = map[string]int{}
	if objects := scene.Find("Objects"); objects != nil {
		for _, obj := range objects.Children {
			s.ObjectCount[obj.Name]++
		}
	}
}

func decode(r io.Reader) (format string, scene *fbxfile.Scene, warn, err error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(64)
	switch {
	case bin.Detect(head):
		scene, warn, err = bin.Decoder{}.Decode(br)
		return "binary", scene, warn, err
	case ascii.Detect(head):
		scene, warn, err = ascii.Decoder{}.Decode(br)
		return "ascii", scene, warn, err
	}
	return "", nil, nil, fmt.Errorf("unrecognized file format")
}

func main() {
	var input io.Reader = os.Stdin
	var output io.Writer = os.Stdout

	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()
	args := flag.Args()
	if len(args) >= 1 && args[0] != "-" {
		in, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("open input: %w", err))
			os.Exit(1)
		}
		input = in
		defer in.Close()
	}
	if len(args) >= 2 && args[1] != "-" {
		out, err := os.Create(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("create output: %w", err))
			os.Exit(1)
		}
		defer out.Close()
		defer func() {
			if err := out.Sync(); err != nil {
				fmt.Fprintln(os.Stderr, fmt.Errorf("sync output: %w", err))
			}
		}()
		output = out
	}

	var stats Stats
	format, scene, warn, err := decode(input)
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("decode warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("decode error: %w", err))
		return
	}

	stats.Format = format
	stats.Fill(scene)

	je := json.NewEncoder(output)
	je.SetEscapeHTML(false)
	je.SetIndent("", "\t")
	if err := je.Encode(stats); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("write error: %w", err))
	}
}
