// The declare package is used to generate fbxfile structures in a declarative
// style.
//
// Most items have a Declare method, which returns a new fbxfile structure
// corresponding to the declared item.
//
// The easiest way to use this package is to import it directly into the
// current package:
//
//     import . "github.com/fbxtools/fbxfile/declare"
//
// This allows the package's identifiers to be used directly without a
// qualifier.
package declare

import (
	"github.com/fbxtools/fbxfile"
)

// primary is implemented by declarations that can be directly within a Scene
// declaration.
type primary interface {
	primary()
}

// Scene declares an fbxfile.Scene. It is a list that contains Node and
// Version declarations.
type Scene []primary

// Declare evaluates the Scene declaration, generating nodes and property
// values. If multiple Version declarations are given, the last one takes
// precedence.
func (dscene Scene) Declare() *fbxfile.Scene {
	scene := &fbxfile.Scene{}
	for _, p := range dscene {
		switch p := p.(type) {
		case Version:
			scene.Version = uint32(p)
		case node:
			scene.Nodes = append(scene.Nodes, p.Declare())
		}
	}
	return scene
}

// Version declares the Version field of a scene.
type Version uint32

func (Version) primary() {}

// element is implemented by declarations that can be within a Node
// declaration.
type element interface {
	element()
}

// node represents the declaration of an fbxfile.Node.
type node struct {
	name     string
	props    []property
	children []node
}

func (node) primary() {}
func (node) element() {}

// Declare evaluates the Node declaration, generating the node, descendants,
// and property values.
func (dnode node) Declare() *fbxfile.Node {
	n := &fbxfile.Node{Name: dnode.name}
	if len(dnode.props) > 0 {
		n.Properties = make([]fbxfile.Value, len(dnode.props))
		for i, p := range dnode.props {
			n.Properties[i] = p.typ.value(p.value)
		}
	}
	for _, child := range dnode.children {
		n.Children = append(n.Children, child.Declare())
	}
	return n
}

// Node declares an fbxfile.Node. It defines a node with a name, and a series
// of elements. An element can be a Property declaration, which appends a
// property value to the node. An element can also be another Node
// declaration, which becomes a child of the node.
//
// Properties keep the order in which they are declared, as do children.
func Node(name string, elements ...element) node {
	n := node{name: name}
	for _, e := range elements {
		switch e := e.(type) {
		case property:
			n.props = append(n.props, e)
		case node:
			n.children = append(n.children, e)
		}
	}
	return n
}

type property struct {
	typ   Type
	value []interface{}
}

func (property) element() {}

// Property declares a property value of an fbxfile.Node, with a type
// corresponding to an fbxfile.Value.
//
// The value argument may be one or more values of any type, which are
// asserted to an fbxfile.Value corresponding to the given type. If the
// value(s) cannot be asserted, then the zero value for the given type is
// returned instead.
//
// For number types, any number type may be given. For array types, either a
// single slice or a sequence of numbers may be given.
func Property(typ Type, value ...interface{}) property {
	return property{typ: typ, value: value}
}
