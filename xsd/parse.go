package xsd

import (
	"strings"

	"github.com/CognitoIQ/go-xsd/xmltoken"
)

// Parse parses an XML Schema document with the default configuration.
func Parse(data []byte) (*Document, error) {
	var cfg Config
	return cfg.Parse(data)
}

// Parse tokenizes and parses an XML Schema document.
func (cfg *Config) Parse(data []byte) (*Document, error) {
	tokens, err := xmltoken.Tokenize(data)
	if err != nil {
		return nil, err
	}
	return cfg.ParseStream(xmltoken.NewStream(tokens))
}

// ParseStream parses an XML Schema document from a token stream. The
// stream is consumed up to the first error, or entirely.
func (cfg *Config) ParseStream(s *xmltoken.Stream) (doc *Document, err error) {
	p := parser{cfg: cfg, stream: s}
	defer catchParseError(&err)
	return p.parseDocument(), nil
}

// Imports returns the schemas imported by an XML Schema document.
func Imports(data []byte) ([]Ref, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if doc.Schema == nil {
		return nil, nil
	}
	return doc.Schema.Imports, nil
}

func (p *parser) parseDocument() *Document {
	doc := new(Document)
	declared := false
	for {
		tok, ok := p.stream.Next()
		if !ok {
			return doc
		}
		switch tok.Kind {
		case xmltoken.Whitespace, xmltoken.Comment, xmltoken.DtdStart, xmltoken.DtdEnd:
		case xmltoken.Declaration:
			if declared || doc.Schema != nil {
				p.unexpected(tok)
			}
			if tok.Version != "1.0" {
				p.stop(UnexpectedToken, "version", "unsupported XML version %q", tok.Version)
			}
			declared = true
			doc.Version, doc.Encoding, doc.Standalone = tok.Version, tok.Encoding, tok.Standalone
		case xmltoken.ElementStart:
			if doc.Schema != nil {
				p.stop(UnexpectedToken, tok.Name(), "<%s> after the root element", tok.Name())
			}
			p.push(tok)
			if tok.Local != "schema" {
				p.stop(UnknownElement, tok.Name(), "root element is <%s>, not <schema>", tok.Name())
			}
			doc.Schema = p.parseSchema()
			p.pop()
		default:
			p.unexpected(tok)
		}
	}
}

func (p *parser) parseSchema() *Schema {
	tag := p.top()
	ns, err := NewNamespaces(nil, p.cfg.targetNS)
	p.check(err)
	p.ns = ns

	attrs, end := p.attributes("schema")
	if p.cfg.targetNS == "" {
		ns.targetNS = attrs["targetNamespace"]
	}
	s := &Schema{
		TargetNS: ns.targetNS,
		Types:    make(map[string]TypeDef),
		Groups:   make(map[string]GroupDef),
		ns:       ns,
	}
	// Prefixes may be declared on any element of the schema.
	defer func() { s.Namespaces = ns.declared() }()
	space, err := ns.expandTag(tag.Prefix)
	p.check(err)
	if space != schemaNS {
		p.stop(WrongNamespace, tag.Name(), "<%s> is in namespace %q, not %q", tag.Name(), space, schemaNS)
	}
	if end == xmltoken.Empty {
		return s
	}

	p.children(func(local string) bool {
		switch local {
		case "element":
			el := p.parseElement()
			s.Elements = append(s.Elements, el)
		case "complexType":
			name, def := p.parseComplexType()
			p.addType(s, name, def)
		case "simpleType":
			name, def := p.parseSimpleType()
			p.addType(s, name, def)
		case "group":
			name, def := p.parseGroupDef()
			p.addGroup(s, name, def)
		case "attributeGroup":
			name, def := p.parseAttributeGroupDef()
			p.addGroup(s, name, def)
		case "import":
			s.Imports = append(s.Imports, p.parseImport())
		case "annotation":
			s.Doc = string(annotation(s.Doc).append(p.parseAnnotation()))
		default:
			return false
		}
		return true
	})
	return s
}

func (p *parser) addType(s *Schema, name string, def TypeDef) {
	if name == "" {
		p.stop(MissingRequiredField, "name", "top-level <%s> has no name", p.top().Name())
	}
	if _, ok := s.Types[name]; ok {
		p.stop(DuplicateTypeOrGroupName, name, "type %q defined more than once", name)
	}
	s.Types[name] = def
}

func (p *parser) addGroup(s *Schema, name string, def GroupDef) {
	if _, ok := s.Groups[name]; ok {
		p.stop(DuplicateTypeOrGroupName, name, "group %q defined more than once", name)
	}
	s.Groups[name] = def
}

func (p *parser) parseImport() Ref {
	var ref Ref
	end := p.skipAttributes(func(local, value string) {
		switch local {
		case "namespace":
			ref.Namespace = value
		case "schemaLocation":
			ref.Location = value
		}
	})
	p.cfg.logf("xsd: not following import of %q from %q", ref.Namespace, ref.Location)
	if end == xmltoken.Open {
		p.eatBlock()
	}
	return ref
}

// typeOf maps the value of a type= attribute to a Type.
func (p *parser) typeOf(s string) Type {
	q := p.qname(s)
	switch q.Local {
	case "string":
		return StringType{}
	case "date":
		return DateType{}
	}
	return Custom(q)
}

func (p *parser) parseElement() Element {
	var (
		el  Element
		typ Type
	)
	attrs, end := p.attributes("element")
	name, hasName := attrs["name"]
	if hasName {
		el.Name = name
	}
	if v, ok := attrs["type"]; ok {
		typ = p.typeOf(v)
	}
	if ref, ok := attrs["ref"]; ok {
		if hasName || typ != nil {
			p.stop(ConflictingDefinition, "ref", "element refers to %s and defines its own name or type", ref)
		}
		p.qname(ref)
		el.Name, typ = ref, ElementRef(ref)
	}
	if end == xmltoken.Open {
		inner, innerAttrs, found := p.parseSubElement()
		if found {
			if ref, ok := attrs["ref"]; ok {
				p.stop(ConflictingDefinition, "ref", "element refers to %s and has an inline type", ref)
			}
			if typ != nil {
				p.stop(ConflictingDefinition, "type", "element %q has a type= attribute and an inline type", el.Name)
			}
			typ, el.Attrs = inner, innerAttrs
		}
	}
	if el.Name == "" {
		p.stop(MissingRequiredField, "name", "element has no name")
	}
	if typ == nil {
		p.stop(MissingRequiredField, "type", "element %q has no type", el.Name)
	}
	el.Type = typ
	return el
}

// parseSubElement reads the body of an <element> or <attribute>: an
// optional anonymous type, annotations and identity constraints.
func (p *parser) parseSubElement() (typ Type, attrs []Attribute, found bool) {
	p.children(func(local string) bool {
		var (
			name string
			def  TypeDef
		)
		switch local {
		case "complexType":
			name, def = p.parseComplexType()
		case "simpleType":
			name, def = p.parseSimpleType()
		case "annotation":
			p.parseAnnotation()
			return true
		case "key":
			p.skip()
			return true
		default:
			return false
		}
		if found {
			p.stop(ConflictingDefinition, local, "more than one inline type")
		}
		if name != "" {
			p.stop(ConflictingDefinition, "name", "inline <%s> is named %q", local, name)
		}
		typ, attrs, found = def.Type, def.Attrs, true
		return true
	})
	return typ, attrs, found
}

func (p *parser) parseComplexType() (string, TypeDef) {
	attrs, end := p.attributes("complexType")
	name := attrs["name"]
	if end == xmltoken.Empty {
		p.stop(MissingRequiredField, "sequence", "complexType has no content")
	}
	def := p.parseSubType(true)
	if def.Type == nil {
		p.stop(MissingRequiredField, "sequence", "complexType has no content model")
	}
	return name, def
}

// parseSubType reads the body of a type or group definition: attribute
// declarations and, if model is true, at most one model group.
func (p *parser) parseSubType(model bool) TypeDef {
	var def TypeDef
	p.children(func(local string) bool {
		var t Type
		switch local {
		case "annotation":
			p.parseAnnotation()
			return true
		case "attribute":
			def.Attrs = append(def.Attrs, p.parseAttribute())
			return true
		case "attributeGroup":
			def.Attrs = append(def.Attrs, AttributeGroupRef(p.parseGroupRef("attributeGroupRef")))
			return true
		}
		if !model {
			return false
		}
		switch local {
		case "sequence":
			t = p.parseSequence()
		case "choice":
			t = p.parseChoice()
		case "group":
			t = GroupRef(p.parseGroupRef("groupRef"))
		case "complexContent":
			t = p.parseComplexContent()
		default:
			return false
		}
		if def.Type != nil {
			p.stop(ConflictingDefinition, local, "<%s> after a %s", local, TypeName(def.Type))
		}
		def.Type = t
		return true
	})
	return def
}

// parseGroupRef reads a reference to a group or attribute group.
func (p *parser) parseGroupRef(production string) string {
	attrs, end := p.attributes(production)
	ref, ok := attrs["ref"]
	if !ok {
		p.stop(MissingRequiredField, "ref", "group reference has no ref= attribute")
	}
	p.qname(ref)
	if end != xmltoken.Empty {
		p.stop(UnexpectedToken, ref, "reference to %s has content", ref)
	}
	return ref
}

func (p *parser) parseGroupDef() (string, GroupDef) {
	attrs, end := p.attributes("group")
	name, ok := attrs["name"]
	if !ok {
		p.stop(MissingRequiredField, "name", "group has no name")
	}
	if end == xmltoken.Empty {
		p.stop(MissingRequiredField, "sequence", "group %q has no content", name)
	}
	def := p.parseSubType(true)
	if def.Type == nil {
		p.stop(MissingRequiredField, "sequence", "group %q has no model group", name)
	}
	return name, GroupDef(def)
}

func (p *parser) parseAttributeGroupDef() (string, GroupDef) {
	attrs, end := p.attributes("attributeGroup")
	name, ok := attrs["name"]
	if !ok {
		p.stop(MissingRequiredField, "name", "attributeGroup has no name")
	}
	if end == xmltoken.Empty {
		return name, GroupDef{}
	}
	return name, GroupDef(p.parseSubType(false))
}

func (p *parser) parseSequence() Type {
	if _, end := p.attributes("sequence"); end == xmltoken.Empty {
		return Sequence(nil)
	}
	return Sequence(p.parseElements())
}

func (p *parser) parseChoice() Type {
	if _, end := p.attributes("choice"); end == xmltoken.Empty {
		return Choice(nil)
	}
	return Choice(p.parseElements())
}

// parseElements reads the members of a sequence, choice or union.
// Nested model groups, group references and derivations become
// anonymous elements.
func (p *parser) parseElements() []Element {
	var items []Element
	p.children(func(local string) bool {
		switch local {
		case "element":
			items = append(items, p.parseElement())
		case "group":
			items = append(items, Element{Type: GroupRef(p.parseGroupRef("groupRef"))})
		case "simpleType":
			name, def := p.parseSimpleType()
			items = append(items, Element{Name: name, Attrs: def.Attrs, Type: def.Type})
		case "sequence":
			items = append(items, Element{Type: p.parseSequence()})
		case "choice":
			items = append(items, Element{Type: p.parseChoice()})
		case "extension":
			items = append(items, Element{Type: p.parseExtension()})
		case "annotation":
			p.parseAnnotation()
		default:
			return false
		}
		return true
	})
	return items
}

func (p *parser) base(production string) (QName, xmltoken.EndKind) {
	attrs, end := p.attributes(production)
	base, ok := attrs["base"]
	if !ok {
		p.stop(MissingRequiredField, "base", "%s has no base type", production)
	}
	p.label(base)
	return p.qname(base), end
}

func (p *parser) parseExtension() Type {
	base, end := p.base("extension")
	ext := &Extension{Base: base}
	if end == xmltoken.Open {
		def := p.parseSubType(true)
		ext.Attrs, ext.Inner = def.Attrs, def.Type
	}
	return ext
}

// Facets are not part of the model; a restriction is recorded as its
// base type.
func (p *parser) parseRestriction() Type {
	base, end := p.base("restriction")
	if end == xmltoken.Open {
		p.skip()
	}
	return Custom(base)
}

func (p *parser) parseComplexContent() Type {
	if _, end := p.attributes("complexContent"); end == xmltoken.Empty {
		p.stop(MissingRequiredField, "extension", "complexContent has no derivation")
	}
	var t Type
	p.children(func(local string) bool {
		var derived Type
		switch local {
		case "extension":
			derived = p.parseExtension()
		case "restriction":
			derived = p.parseRestriction()
		case "annotation":
			p.parseAnnotation()
			return true
		default:
			return false
		}
		if t != nil {
			p.stop(ConflictingDefinition, local, "complexContent has more than one derivation")
		}
		t = derived
		return true
	})
	if t == nil {
		p.stop(MissingRequiredField, "extension", "complexContent has no derivation")
	}
	return t
}

func (p *parser) parseSimpleType() (string, TypeDef) {
	attrs, end := p.attributes("simpleType")
	name := attrs["name"]
	if end == xmltoken.Empty {
		p.stop(MissingRequiredField, "restriction", "simpleType has no content")
	}
	var def TypeDef
	p.children(func(local string) bool {
		var t Type
		switch local {
		case "restriction":
			t = p.parseRestriction()
		case "union":
			t = p.parseUnion()
		case "list":
			t = p.parseList()
		case "attribute":
			def.Attrs = append(def.Attrs, p.parseAttribute())
			return true
		case "annotation":
			p.parseAnnotation()
			return true
		default:
			return false
		}
		if def.Type != nil {
			p.stop(ConflictingDefinition, local, "<%s> after a %s", local, TypeName(def.Type))
		}
		def.Type = t
		return true
	})
	if def.Type == nil {
		p.stop(MissingRequiredField, "restriction", "simpleType has no restriction, union or list")
	}
	return name, def
}

func (p *parser) parseUnion() Type {
	attrs, end := p.attributes("union")
	u := new(Union)
	if v, ok := attrs["memberTypes"]; ok {
		u.MemberTypes = []QName{}
		for _, member := range strings.Fields(v) {
			u.MemberTypes = append(u.MemberTypes, p.qname(member))
		}
	}
	if end == xmltoken.Open {
		u.Members = p.parseElements()
		if u.Members == nil {
			u.Members = []Element{}
		}
	}
	return u
}

func (p *parser) parseList() Type {
	attrs, end := p.attributes("list")
	item, ok := attrs["itemType"]
	if !ok {
		p.stop(MissingRequiredField, "itemType", "list has no itemType")
	}
	if end != xmltoken.Empty {
		p.stop(UnexpectedToken, item, "list of %s has content", item)
	}
	return List(p.qname(item))
}

func (p *parser) parseAttribute() Attribute {
	attrs, end := p.attributes("attribute")
	name, hasName := attrs["name"]
	typ, hasType := attrs["type"]
	ref, hasRef := attrs["ref"]
	if hasType {
		p.qname(typ)
	}
	if hasRef {
		p.qname(ref)
	}

	var (
		inner      Type
		innerAttrs []Attribute
		found      bool
	)
	if end == xmltoken.Open {
		inner, innerAttrs, found = p.parseSubElement()
	}
	switch {
	case hasRef:
		if hasName || hasType || found {
			p.stop(ConflictingDefinition, "ref", "attribute refers to %s and defines its own name or type", ref)
		}
		return AttributeRef(ref)
	case found:
		if hasType {
			p.stop(ConflictingDefinition, "type", "attribute %q has a type= attribute and an inline type", name)
		}
		if !hasName {
			p.stop(MissingRequiredField, "name", "attribute has no name")
		}
		return AttributeInline{
			Name:    name,
			Default: attrs["default"],
			Inner:   Element{Attrs: innerAttrs, Type: inner},
		}
	}
	if !hasName {
		p.stop(MissingRequiredField, "name", "attribute has no name")
	}
	if !hasType {
		p.stop(MissingRequiredField, "type", "attribute %q has no type", name)
	}
	return AttributeDef{Name: name, Type: typ, Default: attrs["default"]}
}
