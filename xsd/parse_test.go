package xsd

import (
	"encoding/xml"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/CognitoIQ/go-xsd/xmltoken"
)

const header = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:tns="urn:t" targetNamespace="urn:t">`

func mustParse(t *testing.T, body string) *Schema {
	doc, err := Parse([]byte(header + body + `</xs:schema>`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Schema == nil {
		t.Fatal("no schema")
	}
	return doc.Schema
}

func schemaError(t *testing.T, body string) *Error {
	_, err := Parse([]byte(header + body + `</xs:schema>`))
	var xerr *Error
	if !errors.As(err, &xerr) {
		t.Fatalf("got %v, wanted an *Error", err)
	}
	return xerr
}

func TestSchemaNamespaces(t *testing.T) {
	s := mustParse(t, `<xs:element name="a" type="xs:string"/>`)
	if s.TargetNS != "urn:t" {
		t.Errorf("got target namespace %q, wanted urn:t", s.TargetNS)
	}
	want := map[string]string{"xs": schemaNS, "tns": "urn:t"}
	if !reflect.DeepEqual(s.Namespaces, want) {
		t.Errorf("got %v, wanted %v", s.Namespaces, want)
	}
	got, err := s.Resolver().ExpandQName(QName{"tns", "Foo"})
	if err != nil {
		t.Fatal(err)
	}
	if got != (xml.Name{Space: "urn:t", Local: "Foo"}) {
		t.Errorf("got %v, wanted {urn:t Foo}", got)
	}
	elems := []Element{{Name: "a", Type: StringType{}}}
	if !reflect.DeepEqual(s.Elements, elems) {
		t.Errorf("got %#v, wanted %#v", s.Elements, elems)
	}
}

func TestNestedNamespaces(t *testing.T) {
	s := mustParse(t, `<xs:complexType name="T" xmlns:foo="urn:foo">
	  <xs:sequence><xs:element name="y" type="foo:Y"/></xs:sequence>
	</xs:complexType>`)
	if got := s.Namespaces["foo"]; got != "urn:foo" {
		t.Errorf("got foo bound to %q in %v, wanted urn:foo", got, s.Namespaces)
	}
	want := Sequence{{Name: "y", Type: Custom{"foo", "Y"}}}
	if !reflect.DeepEqual(s.Types["T"].Type, want) {
		t.Errorf("got %#v, wanted %#v", s.Types["T"].Type, want)
	}
}

func TestTargetNamespaceOption(t *testing.T) {
	var cfg Config
	cfg.Option(TargetNamespace("urn:override"))
	doc, err := cfg.Parse([]byte(header + `</xs:schema>`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Schema.TargetNS != "urn:override" {
		t.Errorf("got %q, wanted urn:override", doc.Schema.TargetNS)
	}
}

var elementTests = []struct {
	xsd  string
	want Element
}{
	{
		`<xs:element name="d" type="xs:date"/>`,
		Element{Name: "d", Type: DateType{}},
	},
	{
		`<xs:element name="c" type="tns:Foo"/>`,
		Element{Name: "c", Type: Custom{"tns", "Foo"}},
	},
	{
		`<xs:element ref="tns:b"/>`,
		Element{Name: "tns:b", Type: ElementRef("tns:b")},
	},
	{
		`<xs:element name="e" id="e1" minOccurs="0" maxOccurs="unbounded">
		  <xs:annotation><xs:documentation>ignored</xs:documentation></xs:annotation>
		  <xs:complexType>
		    <xs:sequence>
		      <xs:element name="when" type="xs:date"/>
		      <xs:group ref="tns:Common"/>
		      <xs:choice>
		        <xs:element name="x" type="xs:string"/>
		      </xs:choice>
		    </xs:sequence>
		    <xs:attribute name="lang" type="xs:string" default="en" use="optional"/>
		    <xs:attribute ref="tns:id"/>
		    <xs:attributeGroup ref="tns:Audit"/>
		  </xs:complexType>
		</xs:element>`,
		Element{
			Name: "e",
			Attrs: []Attribute{
				AttributeDef{Name: "lang", Type: "xs:string", Default: "en"},
				AttributeRef("tns:id"),
				AttributeGroupRef("tns:Audit"),
			},
			Type: Sequence{
				{Name: "when", Type: DateType{}},
				{Type: GroupRef("tns:Common")},
				{Type: Choice{{Name: "x", Type: StringType{}}}},
			},
		},
	},
	{
		`<xs:element name="ext">
		  <xs:complexType>
		    <xs:complexContent>
		      <xs:extension base="tns:Base">
		        <xs:attribute name="color">
		          <xs:simpleType><xs:restriction base="xs:string"/></xs:simpleType>
		        </xs:attribute>
		      </xs:extension>
		    </xs:complexContent>
		  </xs:complexType>
		</xs:element>`,
		Element{
			Name: "ext",
			Type: &Extension{
				Base: QName{"tns", "Base"},
				Attrs: []Attribute{
					AttributeInline{
						Name:  "color",
						Inner: Element{Type: Custom{"xs", "string"}},
					},
				},
			},
		},
	},
}

func TestElements(t *testing.T) {
	for _, tt := range elementTests {
		s := mustParse(t, tt.xsd)
		if len(s.Elements) != 1 {
			t.Errorf("got %d elements, wanted 1", len(s.Elements))
			continue
		}
		if !reflect.DeepEqual(s.Elements[0], tt.want) {
			t.Errorf("got %#v, wanted %#v", s.Elements[0], tt.want)
		}
	}
}

func TestSimpleTypes(t *testing.T) {
	s := mustParse(t, `
	  <xs:simpleType name="U"><xs:union memberTypes="xs:string xs:int"/></xs:simpleType>
	  <xs:simpleType name="Mixed">
	    <xs:union>
	      <xs:simpleType><xs:restriction base="xs:int"/></xs:simpleType>
	    </xs:union>
	  </xs:simpleType>
	  <xs:simpleType name="Empty"><xs:union></xs:union></xs:simpleType>
	  <xs:simpleType name="Sizes"><xs:list itemType="xs:int"/></xs:simpleType>`)

	want := map[string]TypeDef{
		"U": {Type: &Union{
			MemberTypes: []QName{{"xs", "string"}, {"xs", "int"}},
		}},
		"Mixed": {Type: &Union{
			Members: []Element{{Type: Custom{"xs", "int"}}},
		}},
		"Empty": {Type: &Union{Members: []Element{}}},
		"Sizes": {Type: List{"xs", "int"}},
	}
	if !reflect.DeepEqual(s.Types, want) {
		t.Errorf("got %#v, wanted %#v", s.Types, want)
	}
}

func TestGroups(t *testing.T) {
	s := mustParse(t, `
	  <xs:group name="Common">
	    <xs:sequence><xs:element name="note" type="xs:string"/></xs:sequence>
	  </xs:group>
	  <xs:attributeGroup name="Audit">
	    <xs:attribute name="by" type="xs:string"/>
	  </xs:attributeGroup>`)

	want := map[string]GroupDef{
		"Common": {Type: Sequence{{Name: "note", Type: StringType{}}}},
		"Audit":  {Attrs: []Attribute{AttributeDef{Name: "by", Type: "xs:string"}}},
	}
	if !reflect.DeepEqual(s.Groups, want) {
		t.Errorf("got %#v, wanted %#v", s.Groups, want)
	}
}

func TestImports(t *testing.T) {
	refs, err := Imports([]byte(header + `
	  <xs:import namespace="urn:a" schemaLocation="a.xsd"/>
	  <xs:import namespace="urn:b"><xs:annotation/></xs:import>
	</xs:schema>`))
	if err != nil {
		t.Fatal(err)
	}
	want := []Ref{{"urn:a", "a.xsd"}, {"urn:b", ""}}
	if !reflect.DeepEqual(refs, want) {
		t.Errorf("got %v, wanted %v", refs, want)
	}
}

var errorTests = []struct {
	xsd  string
	kind ErrorKind
	name string
}{
	{`<xs:element name="a" type="xs:string" name="b"/>`, DuplicateAttribute, "name"},
	{`<xs:element name="a" type="foo:T"/>`, UnknownPrefix, "foo"},
	{`<xs:element name="a" type="xs:a:b"/>`, MalformedName, "xs:a:b"},
	{`<xs:element name="a" ref="tns:b"/>`, ConflictingDefinition, "ref"},
	{`<xs:element name="a"/>`, MissingRequiredField, "type"},
	{`<xs:any/>`, UnknownElement, "xs:any"},
	{`<xs:complexType/>`, MissingRequiredField, "sequence"},
	{`<xs:complexType><xs:sequence/></xs:complexType>`, MissingRequiredField, "name"},
	{`<xs:complexType name="T"><xs:sequence><xs:group ref="tns:G"><xs:annotation/></xs:group></xs:sequence></xs:complexType>`, UnexpectedToken, "tns:G"},
	{`<xs:element name="a"><xs:complexType name="Inner"><xs:sequence/></xs:complexType></xs:element>`, ConflictingDefinition, "name"},
	{`<xs:simpleType name="S"><xs:restriction/></xs:simpleType>`, MissingRequiredField, "base"},
	{`<xs:attributeGroup name="A"><xs:sequence/></xs:attributeGroup>`, UnknownElement, "xs:sequence"},
	{`<xs:group name="G"/><xs:group name="G"><xs:sequence/></xs:group>`, MissingRequiredField, "sequence"},
	{`<xs:element name="a" xmlns:xml="urn:other" type="xs:string"/>`, DuplicateNamespacePrefix, "xml"},
	{`<xs:group name="G"><xs:sequence/></xs:group><xs:group name="G"><xs:sequence/></xs:group>`, DuplicateTypeOrGroupName, "G"},
	{`<xs:group name="G"><xs:sequence/></xs:group><xs:attributeGroup name="G"/>`, DuplicateTypeOrGroupName, "G"},
	{`<xs:element ref="tns:a"><xs:complexType><xs:sequence/></xs:complexType></xs:element>`, ConflictingDefinition, "ref"},
	{`<xs:element name="a" type="tns:T"><xs:complexType><xs:sequence/></xs:complexType></xs:element>`, ConflictingDefinition, "type"},
}

func TestErrors(t *testing.T) {
	for _, tt := range errorTests {
		err := schemaError(t, tt.xsd)
		if err.Kind != tt.kind || err.Name != tt.name {
			t.Errorf("%s: got %v (name %q), wanted %v (name %q)",
				tt.xsd, err.Kind, err.Name, tt.kind, tt.name)
		}
		if !errors.Is(err, tt.kind) {
			t.Errorf("%s: errors.Is(%v, %v) = false", tt.xsd, err, tt.kind)
		}
	}
}

func TestErrorPath(t *testing.T) {
	err := schemaError(t, `<xs:complexType name="Order"><xs:sequence><xs:element name="id" type="xs:string" bogus="1"/></xs:sequence></xs:complexType>`)
	want := []string{"schema", "complexType(Order)", "sequence", "element(id)"}
	if !reflect.DeepEqual(err.Path, want) {
		t.Errorf("got path %q, wanted %q", err.Path, want)
	}
	if err.Tag != (xml.Name{Space: schemaNS, Local: "element"}) {
		t.Errorf("got tag %v, wanted the xs:element tag", err.Tag)
	}
}

func TestDocument(t *testing.T) {
	doc, err := Parse([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<!DOCTYPE schema>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"/>`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != "1.0" || doc.Encoding != "UTF-8" || doc.Standalone != "yes" {
		t.Errorf("got declaration %q %q %q", doc.Version, doc.Encoding, doc.Standalone)
	}
	if doc.Schema == nil || len(doc.Schema.Types) != 0 {
		t.Errorf("got %#v, wanted an empty schema", doc.Schema)
	}
}

func TestEmptyDocument(t *testing.T) {
	doc, err := Parse([]byte("<!-- nothing -->\n"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Schema != nil {
		t.Errorf("got schema %#v, wanted none", doc.Schema)
	}
}

var documentErrorTests = []struct {
	xsd  string
	kind ErrorKind
}{
	{`<schema/>`, WrongNamespace},
	{`<xs:element xmlns:xs="http://www.w3.org/2001/XMLSchema"/>`, UnknownElement},
	{`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"/><xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"/>`, UnexpectedToken},
	{`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"/>stray`, UnexpectedToken},
}

func TestDocumentErrors(t *testing.T) {
	for _, tt := range documentErrorTests {
		_, err := Parse([]byte(tt.xsd))
		if !errors.Is(err, tt.kind) {
			t.Errorf("%s: got %v, wanted %v", tt.xsd, err, tt.kind)
		}
	}
}

func TestUnsupportedVersion(t *testing.T) {
	var cfg Config
	stream := xmltoken.NewStream([]xmltoken.Token{
		{Kind: xmltoken.Declaration, Version: "1.1"},
	})
	_, err := cfg.ParseStream(stream)
	if !errors.Is(err, UnexpectedToken) {
		t.Errorf("got %v, wanted %v", err, UnexpectedToken)
	}
}

func startTag(prefix, local string) xmltoken.Token {
	return xmltoken.Token{Kind: xmltoken.ElementStart, Prefix: prefix, Local: local}
}

func endTag(kind xmltoken.EndKind, prefix, local string) xmltoken.Token {
	return xmltoken.Token{Kind: xmltoken.ElementEnd, End: kind, Prefix: prefix, Local: local}
}

// The opening of a schema document, up to the end of the <xs:schema>
// start tag.
func schemaStart() []xmltoken.Token {
	return []xmltoken.Token{
		startTag("xs", "schema"),
		{Kind: xmltoken.Attribute, Prefix: "xmlns", Local: "xs", Value: schemaNS},
		endTag(xmltoken.Open, "", ""),
	}
}

var streamErrorTests = []struct {
	name   string
	tokens []xmltoken.Token
	kind   ErrorKind
}{
	{
		"mismatched tags in skipped import",
		[]xmltoken.Token{
			startTag("xs", "import"), endTag(xmltoken.Open, "", ""),
			startTag("", "a"), endTag(xmltoken.Open, "", ""),
			endTag(xmltoken.Close, "", "b"),
		},
		IntegrityViolation,
	},
	{
		"mismatched tags in documentation",
		[]xmltoken.Token{
			startTag("xs", "annotation"), endTag(xmltoken.Open, "", ""),
			startTag("xs", "documentation"), endTag(xmltoken.Open, "", ""),
			startTag("", "a"), endTag(xmltoken.Open, "", ""),
			endTag(xmltoken.Close, "", "b"),
		},
		IntegrityViolation,
	},
	{
		"truncated import",
		[]xmltoken.Token{
			startTag("xs", "import"), endTag(xmltoken.Open, "", ""),
		},
		UnexpectedToken,
	},
}

func TestStreamErrors(t *testing.T) {
	for _, tt := range streamErrorTests {
		var cfg Config
		tokens := append(schemaStart(), tt.tokens...)
		_, err := cfg.ParseStream(xmltoken.NewStream(tokens))
		if !errors.Is(err, tt.kind) {
			t.Errorf("%s: got %v, wanted %v", tt.name, err, tt.kind)
		}
	}
}

type recorder []string

func (r *recorder) Printf(format string, v ...interface{}) {
	*r = append(*r, fmt.Sprintf(format, v...))
}

func TestDebugTrace(t *testing.T) {
	data := []byte(header + `<xs:element name="a" type="xs:string"/></xs:schema>`)
	for _, level := range []int{1, 5} {
		var log recorder
		var cfg Config
		cfg.Option(LogOutput(&log), LogLevel(level))
		if _, err := cfg.Parse(data); err != nil {
			t.Fatal(err)
		}
		traced := false
		for _, msg := range log {
			if strings.HasPrefix(msg, "xsd: enter schema>element") {
				traced = true
			}
		}
		if traced != (level > 3) {
			t.Errorf("level %d: got trace %q", level, log)
		}
	}
}
