// The fbxfile package handles the decoding, encoding, and manipulation of FBX
// scene data structures.
//
// An FBX file, in either of its binary or ASCII variants, is a tree of named
// node records. Each node has a list of typed property values and a list of
// child nodes. This package represents that tree with the Scene and Node
// types; it does not interpret the meaning of any node.
//
// Scenes can be decoded from and encoded to both variants. The "bin"
// sub-package handles the binary variant, and the "ascii" sub-package handles
// the ASCII variant. The "fbxio" sub-package combines them into a plugin
// registry with importers and exporters.
//
// Besides decoding from a format, scenes can also be created manually. The
// best way to do this is through the "declare" sub-package.
package fbxfile

import (
	"encoding/binary"
	"math"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Scene represents the root of an FBX node tree. Scene is not itself a node,
// but a container for the top-level nodes of a file.
type Scene struct {
	// Name is an informational name given to the scene when it was created.
	Name string

	// Version is the FBX file version, such as 7400 or 7500. A value of 0
	// indicates that the version is unknown.
	Version uint32

	// Nodes contains the top-level nodes of the tree.
	Nodes []*Node
}

// Node represents a single FBX node record.
type Node struct {
	// Name is the name of the node, such as "Objects" or "Vertices".
	Name string

	// Properties is the ordered list of property values of the node.
	Properties []Value

	// Children contains the nested nodes of the node.
	Children []*Node
}

// NewNode returns a node with the given name and properties.
func NewNode(name string, props ...Value) *Node {
	return &Node{Name: name, Properties: props}
}

// AddChild appends child to the children of the node, and returns child.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// Find returns the first child of the node with the given name, or nil.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// FindAll returns every child of the node with the given name.
func (n *Node) FindAll(name string) []*Node {
	if n == nil {
		return nil
	}
	var list []*Node
	for _, child := range n.Children {
		if child.Name == name {
			list = append(list, child)
		}
	}
	return list
}

// Prop returns the property at index i, or nil if it does not exist.
func (n *Node) Prop(i int) Value {
	if n == nil {
		return nil
	}
	if i < 0 || i >= len(n.Properties) {
		return nil
	}
	return n.Properties[i]
}

// Copy returns a deep copy of the node.
func (n *Node) Copy() *Node {
	c := &Node{Name: n.Name}
	if n.Properties != nil {
		c.Properties = make([]Value, len(n.Properties))
		for i, v := range n.Properties {
			c.Properties[i] = v.Copy()
		}
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Copy()
		}
	}
	return c
}

// String implements the fmt.Stringer interface by returning the name of the
// node.
func (n *Node) String() string {
	return n.Name
}

// Find returns the first top-level node with the given name, or nil.
func (s *Scene) Find(name string) *Node {
	if s == nil {
		return nil
	}
	for _, n := range s.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Copy returns a deep copy of the scene.
func (s *Scene) Copy() *Scene {
	c := &Scene{Name: s.Name, Version: s.Version}
	if s.Nodes != nil {
		c.Nodes = make([]*Node, len(s.Nodes))
		for i, n := range s.Nodes {
			c.Nodes[i] = n.Copy()
		}
	}
	return c
}

// Walk calls fn for every node in the scene in depth-first order, along with
// the parent of the node, which is nil for top-level nodes. If fn returns
// false, then the children of the node are skipped.
func (s *Scene) Walk(fn func(parent, node *Node) bool) {
	var walk func(parent *Node, nodes []*Node)
	walk = func(parent *Node, nodes []*Node) {
		for _, n := range nodes {
			if fn(parent, n) {
				walk(n, n.Children)
			}
		}
	}
	walk(nil, s.Nodes)
}

// Digest returns a BLAKE2b-256 digest of the content of the scene. Two scenes
// with the same node tree, property types and property values have the same
// digest. The Name and Version of the scene are not included.
func (s *Scene) Digest() [32]byte {
	h, _ := blake2b.New256(nil)
	var buf [8]byte
	putUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	var digest func(nodes []*Node)
	digest = func(nodes []*Node) {
		putUint(uint64(len(nodes)))
		for _, n := range nodes {
			putUint(uint64(len(n.Name)))
			h.Write([]byte(n.Name))
			putUint(uint64(len(n.Properties)))
			for _, v := range n.Properties {
				h.Write([]byte{v.Type().Code()})
				digestValue(h.Write, putUint, v)
			}
			digest(n.Children)
		}
	}
	digest(s.Nodes)
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

func digestValue(write func([]byte) (int, error), putUint func(uint64), v Value) {
	switch v := v.(type) {
	case ValueInt16:
		putUint(uint64(v))
	case ValueBool:
		if v {
			putUint(1)
		} else {
			putUint(0)
		}
	case ValueInt32:
		putUint(uint64(v))
	case ValueFloat32:
		putUint(uint64(math.Float32bits(float32(v))))
	case ValueFloat64:
		putUint(math.Float64bits(float64(v)))
	case ValueInt64:
		putUint(uint64(v))
	case ValueString:
		putUint(uint64(len(v)))
		write([]byte(v))
	case ValueRaw:
		putUint(uint64(len(v)))
		write(v)
	case ValueFloat32Array:
		putUint(uint64(len(v)))
		for _, e := range v {
			putUint(uint64(math.Float32bits(e)))
		}
	case ValueFloat64Array:
		putUint(uint64(len(v)))
		for _, e := range v {
			putUint(math.Float64bits(e))
		}
	case ValueInt64Array:
		putUint(uint64(len(v)))
		for _, e := range v {
			putUint(uint64(e))
		}
	case ValueInt32Array:
		putUint(uint64(len(v)))
		for _, e := range v {
			putUint(uint64(e))
		}
	case ValueBoolArray:
		putUint(uint64(len(v)))
		for _, e := range v {
			if e {
				write([]byte{1})
			} else {
				write([]byte{0})
			}
		}
	}
}

////////////////////////////////////////////////////////////////

// ObjectNameSep separates the class and name of an object name in the
// "Class::Name" form.
const ObjectNameSep = "::"

// BinaryNameSep separates the name and class of an object name in the binary
// "Name\x00\x01Class" form.
const BinaryNameSep = "\x00\x01"

// JoinObjectName returns an object name in the "Class::Name" form.
func JoinObjectName(class, name string) string {
	return class + ObjectNameSep + name
}

// SplitObjectName splits an object name in the "Class::Name" form. If the
// name has no class, then class is empty and name is s.
func SplitObjectName(s string) (class, name string) {
	i := strings.Index(s, ObjectNameSep)
	if i < 0 {
		return "", s
	}
	return s[:i], s[i+len(ObjectNameSep):]
}

// ObjectNameFromBinary converts a name in the binary "Name\x00\x01Class" form
// to the "Class::Name" form. Strings without the binary separator are
// returned unchanged.
func ObjectNameFromBinary(s string) string {
	i := strings.Index(s, BinaryNameSep)
	if i < 0 {
		return s
	}
	return JoinObjectName(s[i+len(BinaryNameSep):], s[:i])
}

// ObjectNameToBinary converts a name in the "Class::Name" form to the binary
// "Name\x00\x01Class" form. Strings without a class are returned unchanged.
func ObjectNameToBinary(s string) string {
	i := strings.Index(s, ObjectNameSep)
	if i < 0 {
		return s
	}
	return s[i+len(ObjectNameSep):] + BinaryNameSep + s[:i]
}
