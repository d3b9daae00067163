// Package xsd parses XML Schema documents into a typed schema model.
//
// The xsd package implements a recursive-descent parser for a pragmatic
// subset of the XML Schema standard. It is intended to feed code
// generators, and as such it does not validate instance documents, nor
// does it record occurrence constraints or facets. The model mirrors
// the grammar: elements contain types, types contain elements, and
// groups and derivations nest content models.
//
// Parsing is fail-fast. A document either parses into a complete
// Document, or the parse stops at the first structural violation with
// an *Error describing where it happened.
package xsd // import "github.com/CognitoIQ/go-xsd/xsd"

import "fmt"

const (
	schemaNS = "http://www.w3.org/2001/XMLSchema"
	xmlNS    = "http://www.w3.org/XML/1998/namespace"
	xmlnsNS  = "http://www.w3.org/2000/xmlns/"
)

// A Document is the result of parsing an XML Schema file. Fields of the
// XML declaration are empty if the document has no declaration.
type Document struct {
	Version    string
	Encoding   string
	Standalone string
	// Schema is nil if the document contains no <schema> element.
	Schema *Schema
}

// A Ref names a schema imported by another, and possibly a URI to
// retrieve it from.
type Ref struct {
	Namespace, Location string
}

// A Schema is the decoded form of an XSD <schema> element.
type Schema struct {
	// The namespace that unprefixed names in this schema belong to.
	TargetNS string
	// Namespace prefixes declared anywhere in the schema. The
	// default namespace, if declared, has the empty prefix.
	Namespaces map[string]string
	// Top-level element declarations, in document order.
	Elements []Element
	// Named simple and complex types.
	Types map[string]TypeDef
	// Named model groups and attribute groups. Attribute groups
	// have a nil Type.
	Groups map[string]GroupDef
	// Documentation from top-level annotations, separated by
	// blank lines.
	Doc string
	// Schemas imported with <import>.
	Imports []Ref

	ns *Namespaces
}

// Resolver returns the namespace table built while parsing the schema.
func (s *Schema) Resolver() *Namespaces {
	return s.ns
}

// A TypeDef is a named <complexType> or <simpleType>.
type TypeDef struct {
	Attrs []Attribute
	Type  Type
}

// A GroupDef is a named <group> or <attributeGroup>.
type GroupDef struct {
	Attrs []Attribute
	Type  Type
}

// An Element describes an XML element. Name is empty for anonymous
// members of a group, sequence or choice.
type Element struct {
	Name  string
	Attrs []Attribute
	Type  Type
}

// A QName is a possibly-prefixed name exactly as written in the
// schema. Prefix is empty if the name had no prefix.
type QName struct {
	Prefix, Local string
}

func (q QName) String() string {
	if q.Prefix == "" {
		return q.Local
	}
	return q.Prefix + ":" + q.Local
}

// The Type of an element is one of StringType, DateType, Sequence,
// ElementRef, Custom, Extension, GroupRef, Choice, Union or List.
type Type interface {
	// just for compile-time type checking
	isType()
}

// StringType is the xs:string built-in.
type StringType struct{}

// DateType is the xs:date built-in.
type DateType struct{}

// A Sequence of elements, in order.
type Sequence []Element

// An ElementRef is a reference to a top-level element, as written in
// the ref= attribute.
type ElementRef string

// A Custom type is any other named type.
type Custom QName

// An Extension derives a complex type from Base, adding attributes
// and, optionally, content.
type Extension struct {
	Base  QName
	Attrs []Attribute
	// Inner is nil if the extension adds no content model.
	Inner Type
}

// A GroupRef refers to a named model group.
type GroupRef string

// A Choice of one of its elements.
type Choice []Element

// A Union of simple types. MemberTypes is nil if the memberTypes=
// attribute is absent; Members is nil if the <union> element was
// self-closing.
type Union struct {
	MemberTypes []QName
	Members     []Element
}

// A List is a whitespace-separated list of ItemType values.
type List QName

func (StringType) isType() {}
func (DateType) isType() {}
func (Sequence) isType() {}
func (ElementRef) isType() {}
func (Custom) isType() {}
func (*Extension) isType() {}
func (GroupRef) isType() {}
func (Choice) isType() {}
func (*Union) isType() {}
func (List) isType() {}

// An Attribute is one of AttributeDef, AttributeInline, AttributeRef
// or AttributeGroupRef.
type Attribute interface {
	isAttribute()
}

// An AttributeDef declares an attribute with a named type.
type AttributeDef struct {
	Name    string
	Type    string
	Default string
}

// An AttributeInline declares an attribute whose type is defined
// inline, as the type of Inner.
type AttributeInline struct {
	Name    string
	Default string
	Inner   Element
}

// An AttributeRef refers to a top-level attribute.
type AttributeRef string

// An AttributeGroupRef refers to a named attribute group.
type AttributeGroupRef string

func (AttributeDef) isAttribute() {}
func (AttributeInline) isAttribute() {}
func (AttributeRef) isAttribute() {}
func (AttributeGroupRef) isAttribute() {}

// TypeName returns the short name of the variant of t, such as
// "sequence" or "extension". It is meant for diagnostics.
func TypeName(t Type) string {
	switch t.(type) {
	case StringType:
		return "string"
	case DateType:
		return "date"
	case Sequence:
		return "sequence"
	case ElementRef:
		return "ref"
	case Custom:
		return "custom"
	case *Extension:
		return "extension"
	case GroupRef:
		return "groupRef"
	case Choice:
		return "choice"
	case *Union:
		return "union"
	case List:
		return "list"
	case nil:
		return "none"
	}
	panic(fmt.Sprintf("xsd: unexpected xsd.Type %[1]T %[1]v passed to TypeName", t))
}
