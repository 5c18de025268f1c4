package ascii

// The ASCII variant is a line-oriented text format. A node is written as its
// name followed by a colon, an optional comma-separated list of properties,
// and an optional block of child nodes enclosed in braces. Arrays are written
// as "*N { a: v,v,... }". Comments begin with a semicolon and run to the end
// of the line.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// tokenKind identifies the kind of a property token.
type tokenKind uint8

const (
	tokNumber tokenKind = iota
	tokString
	tokWord
	tokArray
)

// token is an untyped property value as it appears in the document.
type token struct {
	kind tokenKind
	// text is the literal text of a number or word, or the unescaped content
	// of a string.
	text string
	// elems contains the literal text of each element of an array.
	elems []string
	// line is the line on which the token starts.
	line int
}

// element is a node as parsed from a document, before property types are
// resolved.
type element struct {
	name     string
	props    []token
	children []*element
	line     int
}

// document is a parsed ASCII file.
type document struct {
	// header is the first comment of the file, without the semicolon.
	header   string
	elements []*element
}

// SyntaxError indicates malformed content in an ASCII document.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return "fbx ascii: syntax error on line " + strconv.Itoa(e.Line) + ": " + e.Msg
}

type decoder struct {
	r    *bufio.Reader
	line int
	err  error

	// Set when the first comment of the file has been read.
	sawComment bool
	header     string
}

func (d *decoder) syntaxError(format string, a ...interface{}) error {
	return &SyntaxError{Line: d.line, Msg: fmt.Sprintf(format, a...)}
}

func (d *decoder) getc() (b byte, ok bool) {
	if d.err != nil {
		return 0, false
	}
	b, d.err = d.r.ReadByte()
	if d.err != nil {
		return 0, false
	}
	if b == '\n' {
		d.line++
	}
	return b, true
}

func (d *decoder) ungetc(b byte) {
	if b == '\n' {
		d.line--
	}
	d.r.UnreadByte()
}

// comment consumes the rest of a comment line.
func (d *decoder) comment() {
	var buf bytes.Buffer
	for {
		b, ok := d.getc()
		if !ok || b == '\n' {
			break
		}
		buf.WriteByte(b)
	}
	if !d.sawComment {
		d.sawComment = true
		d.header = strings.TrimSpace(strings.TrimRight(buf.String(), "\r"))
	}
}

// space skips whitespace and comments, and returns the next byte without
// consuming it. ok is false at the end of input.
func (d *decoder) space() (b byte, ok bool) {
	for {
		b, ok = d.getc()
		if !ok {
			return 0, false
		}
		switch b {
		case ' ', '\t', '\r', '\n', '\f', '\v':
			continue
		case ';':
			d.comment()
			continue
		}
		d.ungetc(b)
		return b, true
	}
}

func isNameByte(c byte) bool {
	return 'A' <= c && c <= 'Z' ||
		'a' <= c && c <= 'z' ||
		'0' <= c && c <= '9' ||
		c == '_' || c == '|' || c == '-' || c == '.'
}

func isNumberStart(c byte) bool {
	return '0' <= c && c <= '9' || c == '-' || c == '+' || c == '.'
}

func isNumberByte(c byte) bool {
	return '0' <= c && c <= '9' ||
		c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' ||
		c == '#' || c == 'I' || c == 'N' || c == 'F' || c == 'D' || c == 'Q' || c == 'A'
}

// word reads a sequence of bytes accepted by valid.
func (d *decoder) word(valid func(byte) bool) string {
	var buf bytes.Buffer
	for {
		b, ok := d.getc()
		if !ok {
			break
		}
		if !valid(b) {
			d.ungetc(b)
			break
		}
		buf.WriteByte(b)
	}
	return buf.String()
}

// str reads a quoted string. The opening quote has already been consumed.
func (d *decoder) str() (s string, ok bool) {
	line := d.line
	var buf bytes.Buffer
	for {
		b, ok := d.getc()
		if !ok {
			if d.err == io.EOF {
				d.err = &SyntaxError{Line: line, Msg: "unterminated string"}
			}
			return "", false
		}
		if b == '"' {
			break
		}
		buf.WriteByte(b)
	}
	return unescapeString(buf.String()), true
}

// expect consumes the next non-space byte, which must be c.
func (d *decoder) expect(c byte) bool {
	b, ok := d.space()
	if !ok {
		if d.err == io.EOF {
			d.err = d.syntaxError("expected %q, found end of file", c)
		}
		return false
	}
	if b != c {
		d.err = d.syntaxError("expected %q, found %q", c, b)
		return false
	}
	d.getc()
	return true
}

// prop reads a single property value.
func (d *decoder) prop() (t token, ok bool) {
	b, ok := d.space()
	if !ok {
		if d.err == io.EOF {
			d.err = d.syntaxError("expected property, found end of file")
		}
		return t, false
	}
	t.line = d.line
	switch {
	case b == '"':
		d.getc()
		t.kind = tokString
		t.text, ok = d.str()
		return t, ok
	case b == '*':
		d.getc()
		return d.array(t)
	case isNumberStart(b):
		t.kind = tokNumber
		t.text = d.word(isNumberByte)
		return t, true
	case isNameByte(b):
		t.kind = tokWord
		t.text = d.word(isNameByte)
		return t, true
	}
	d.err = d.syntaxError("unexpected %q in property list", b)
	return t, false
}

// array reads an array of the form "N { a: v,v,... }". The leading '*' has
// already been consumed.
func (d *decoder) array(t token) (token, bool) {
	t.kind = tokArray
	n, err := strconv.ParseUint(d.word(isNumberByte), 10, 32)
	if err != nil {
		d.err = d.syntaxError("invalid array length")
		return t, false
	}
	if !d.expect('{') {
		return t, false
	}

	b, ok := d.space()
	if !ok {
		return t, d.eof("array")
	}
	if b != '}' {
		if key := d.word(isNameByte); key != "a" {
			d.err = d.syntaxError("expected array content \"a:\", found %q", key)
			return t, false
		}
		if !d.expect(':') {
			return t, false
		}
		for {
			b, ok := d.space()
			if !ok {
				return t, d.eof("array")
			}
			if b == '}' {
				break
			}
			if !isNumberStart(b) {
				d.err = d.syntaxError("unexpected %q in array", b)
				return t, false
			}
			t.elems = append(t.elems, d.word(isNumberByte))
			if uint64(len(t.elems)) > n {
				d.err = &SyntaxError{Line: t.line, Msg: fmt.Sprintf("array declares %d elements, found more", n)}
				return t, false
			}
			if b, ok = d.space(); !ok {
				return t, d.eof("array")
			}
			if b == ',' {
				d.getc()
			}
		}
	}
	d.getc()
	if uint64(len(t.elems)) != n {
		d.err = &SyntaxError{Line: t.line, Msg: fmt.Sprintf("array declares %d elements, found %d", n, len(t.elems))}
		return t, false
	}
	return t, true
}

func (d *decoder) eof(what string) bool {
	if d.err == io.EOF {
		d.err = d.syntaxError("unexpected end of file in %s", what)
	}
	return false
}

// peekName returns whether the next token is a name followed by a colon,
// without consuming anything other than whitespace.
func (d *decoder) peekName() bool {
	b, ok := d.space()
	if !ok || !isNameStart(b) {
		return false
	}
	// Names are short enough to be found within the buffered data.
	for n := 1; ; n++ {
		p, _ := d.r.Peek(n)
		if len(p) < n {
			return false
		}
		switch c := p[n-1]; {
		case c == ':':
			return true
		case !isNameByte(c):
			return false
		}
	}
}

func isNameStart(c byte) bool {
	return 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || c == '_'
}

// element reads a node, its properties, and its children. The next token
// must be the name of the node.
func (d *decoder) element() (e *element, ok bool) {
	if _, ok := d.space(); !ok {
		return nil, d.eof("node")
	}
	e = &element{line: d.line}
	e.name = d.word(isNameByte)
	if e.name == "" {
		b, _ := d.getc()
		d.err = d.syntaxError("expected node name, found %q", b)
		return nil, false
	}
	if !d.expect(':') {
		return nil, false
	}

	// Property list.
	b, ok := d.space()
	if ok && b == ',' {
		// Some writers emit an empty first property, as in "Content: ,".
		d.getc()
		b, ok = d.space()
	}
	if ok && b != '{' && b != '}' && !d.peekName() {
		for {
			t, ok := d.prop()
			if !ok {
				return nil, false
			}
			e.props = append(e.props, t)
			b, ok = d.space()
			if !ok || b != ',' {
				break
			}
			d.getc()
		}
	}

	// Children.
	if b, ok = d.space(); ok && b == '{' {
		d.getc()
		for {
			b, ok := d.space()
			if !ok {
				return nil, d.eof("node " + strconv.Quote(e.name))
			}
			if b == '}' {
				d.getc()
				break
			}
			child, ok := d.element()
			if !ok {
				return nil, false
			}
			e.children = append(e.children, child)
		}
	}
	return e, true
}

// readDocument parses an entire document from r.
func readDocument(r io.Reader) (doc *document, err error) {
	d := &decoder{r: bufio.NewReader(r), line: 1}
	doc = &document{}
	for {
		b, ok := d.space()
		if !ok {
			break
		}
		if b == '}' {
			return nil, d.syntaxError("unexpected '}' at top level")
		}
		e, ok := d.element()
		if !ok {
			break
		}
		doc.elements = append(doc.elements, e)
	}
	if d.err != io.EOF {
		return nil, d.err
	}
	doc.header = d.header
	return doc, nil
}

////////////////////////////////////////////////////////////////

// unescapeString decodes the entity used by the format to represent a quote
// within a string.
func unescapeString(s string) string {
	if !strings.Contains(s, "&quot;") {
		return s
	}
	return strings.ReplaceAll(s, "&quot;", `"`)
}

func escapeString(s string) string {
	if !strings.Contains(s, `"`) {
		return s
	}
	return strings.ReplaceAll(s, `"`, "&quot;")
}
