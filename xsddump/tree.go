// Package xsddump converts parsed XML Schema documents into a tagged
// tree that can be encoded as JSON or YAML.
//
// The tree is a stable, flat rendition of the xsd model, meant for
// inspecting what the parser produced and for feeding tools written in
// other languages. Every node carries a kind field naming the model
// variant it came from.
package xsddump // import "github.com/CognitoIQ/go-xsd/xsddump"

import (
	"fmt"

	"github.com/CognitoIQ/go-xsd/internal/ordered"
	"github.com/CognitoIQ/go-xsd/xsd"
)

// A Document is the tree form of an xsd.Document.
type Document struct {
	Version    string  `json:"version,omitempty" yaml:"version,omitempty"`
	Encoding   string  `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	Standalone string  `json:"standalone,omitempty" yaml:"standalone,omitempty"`
	Schema     *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// A Schema is the tree form of an xsd.Schema. Types and groups are
// sorted by name.
type Schema struct {
	TargetNS   string            `json:"targetNamespace,omitempty" yaml:"targetNamespace,omitempty"`
	Namespaces map[string]string `json:"namespaces,omitempty" yaml:"namespaces,omitempty"`
	Doc        string            `json:"doc,omitempty" yaml:"doc,omitempty"`
	Imports    []Import          `json:"imports,omitempty" yaml:"imports,omitempty"`
	Elements   []*Node           `json:"elements,omitempty" yaml:"elements,omitempty"`
	Types      []*Node           `json:"types,omitempty" yaml:"types,omitempty"`
	Groups     []*Node           `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// An Import names an imported schema.
type Import struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Location  string `json:"schemaLocation,omitempty" yaml:"schemaLocation,omitempty"`
}

// A Node is an element, attribute, type or definition.
type Node struct {
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// The QName the node refers to: the target of a reference, the
	// base of a derivation, the item type of a list, or the type of
	// an attribute.
	Ref         string   `json:"ref,omitempty" yaml:"ref,omitempty"`
	Default     string   `json:"default,omitempty" yaml:"default,omitempty"`
	MemberTypes []string `json:"memberTypes,omitempty" yaml:"memberTypes,omitempty"`
	Attrs       []*Node  `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Members     []*Node  `json:"members,omitempty" yaml:"members,omitempty"`
	Type        *Node    `json:"type,omitempty" yaml:"type,omitempty"`
}

// Convert builds the tree form of doc.
func Convert(doc *xsd.Document) *Document {
	tree := &Document{
		Version:    doc.Version,
		Encoding:   doc.Encoding,
		Standalone: doc.Standalone,
	}
	if s := doc.Schema; s != nil {
		tree.Schema = &Schema{
			TargetNS:   s.TargetNS,
			Namespaces: s.Namespaces,
			Doc:        s.Doc,
			Elements:   elementNodes(s.Elements),
		}
		for _, ref := range s.Imports {
			tree.Schema.Imports = append(tree.Schema.Imports, Import(ref))
		}
		ordered.RangeStrings(s.Types, func(name string) {
			def := s.Types[name]
			tree.Schema.Types = append(tree.Schema.Types, definition("typedef", name, def.Attrs, def.Type))
		})
		ordered.RangeStrings(s.Groups, func(name string) {
			def := s.Groups[name]
			kind := "group"
			if def.Type == nil {
				kind = "attributeGroup"
			}
			tree.Schema.Groups = append(tree.Schema.Groups, definition(kind, name, def.Attrs, def.Type))
		})
	}
	return tree
}

func definition(kind, name string, attrs []xsd.Attribute, t xsd.Type) *Node {
	return &Node{
		Kind:  kind,
		Name:  name,
		Attrs: attributeNodes(attrs),
		Type:  typeNode(t),
	}
}

func elementNode(el xsd.Element) *Node {
	return definition("element", el.Name, el.Attrs, el.Type)
}

func elementNodes(elems []xsd.Element) []*Node {
	if len(elems) == 0 {
		return nil
	}
	nodes := make([]*Node, 0, len(elems))
	for _, el := range elems {
		nodes = append(nodes, elementNode(el))
	}
	return nodes
}

func attributeNodes(attrs []xsd.Attribute) []*Node {
	if len(attrs) == 0 {
		return nil
	}
	nodes := make([]*Node, 0, len(attrs))
	for _, attr := range attrs {
		var n *Node
		switch attr := attr.(type) {
		case xsd.AttributeDef:
			n = &Node{Kind: "attribute", Name: attr.Name, Ref: attr.Type, Default: attr.Default}
		case xsd.AttributeInline:
			n = &Node{Kind: "attribute", Name: attr.Name, Default: attr.Default, Type: elementNode(attr.Inner)}
		case xsd.AttributeRef:
			n = &Node{Kind: "attributeRef", Ref: string(attr)}
		case xsd.AttributeGroupRef:
			n = &Node{Kind: "attributeGroupRef", Ref: string(attr)}
		default:
			panic(fmt.Sprintf("xsddump: unexpected attribute %T", attr))
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func typeNode(t xsd.Type) *Node {
	if t == nil {
		return nil
	}
	n := &Node{Kind: xsd.TypeName(t)}
	switch t := t.(type) {
	case xsd.Sequence:
		n.Members = elementNodes(t)
	case xsd.Choice:
		n.Members = elementNodes(t)
	case xsd.ElementRef:
		n.Ref = string(t)
	case xsd.GroupRef:
		n.Ref = string(t)
	case xsd.Custom:
		n.Ref = xsd.QName(t).String()
	case xsd.List:
		n.Ref = xsd.QName(t).String()
	case *xsd.Extension:
		n.Ref = t.Base.String()
		n.Attrs = attributeNodes(t.Attrs)
		n.Type = typeNode(t.Inner)
	case *xsd.Union:
		for _, q := range t.MemberTypes {
			n.MemberTypes = append(n.MemberTypes, q.String())
		}
		n.Members = elementNodes(t.Members)
	}
	return n
}
