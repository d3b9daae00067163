package xsd

import (
	"encoding/xml"
	"fmt"
	"html"
	"strings"

	"github.com/CognitoIQ/go-xsd/xmltoken"
)

// The grammar is a set of mutually recursive functions, with pretty
// deep call stacks. To save some typing, we use panic/recover to
// bubble errors up. These panics are not exposed to the user.
type parseError struct {
	err *Error
}

// defer catchParseError(&err)
func catchParseError(err *error) {
	if r := recover(); r != nil {
		pe, ok := r.(parseError)
		if !ok {
			panic(r)
		}
		*err = pe.err
	}
}

// Attributes recognized by each production. Attributes that a
// production does not use are accepted and ignored. xmlns declarations
// and xml:lang are recognized everywhere.
var vocabulary = map[string][]string{
	"schema":            {"targetNamespace", "elementFormDefault", "attributeFormDefault", "version"},
	"element":           {"name", "type", "ref", "minOccurs", "maxOccurs", "id"},
	"complexType":       {"name"},
	"simpleType":        {"name"},
	"group":             {"name"},
	"groupRef":          {"ref", "minOccurs", "maxOccurs"},
	"attributeGroup":    {"name"},
	"attributeGroupRef": {"ref", "minOccurs", "maxOccurs"},
	"sequence":          {"minOccurs", "maxOccurs"},
	"choice":            {"minOccurs", "maxOccurs"},
	"complexContent":    {},
	"extension":         {"base"},
	"restriction":       {"base"},
	"union":             {"memberTypes"},
	"list":              {"itemType"},
	"attribute":         {"name", "type", "ref", "default", "fixed", "use"},
}

func recognized(production, local string) bool {
	names, ok := vocabulary[production]
	if !ok {
		panic("xsd: no vocabulary for production " + production)
	}
	for _, name := range names {
		if name == local {
			return true
		}
	}
	return false
}

type frame struct {
	tag xmltoken.Token
	// name= or ref= of the element, for breadcrumbs
	name string
}

type parser struct {
	cfg    *Config
	stream *xmltoken.Stream
	ns     *Namespaces
	// the elements being parsed, outermost first
	frames []frame
}

func (p *parser) push(tag xmltoken.Token) {
	p.frames = append(p.frames, frame{tag: tag})
	if p.cfg.debugging() {
		p.cfg.debugf("xsd: enter %s", strings.Join(p.breadcrumbs(), ">"))
	}
}

func (p *parser) pop() {
	p.frames = p.frames[:len(p.frames)-1]
}

// top returns the start tag of the element being parsed.
func (p *parser) top() xmltoken.Token {
	return p.frames[len(p.frames)-1].tag
}

// label sets the name shown for the current element in error messages.
func (p *parser) label(name string) {
	p.frames[len(p.frames)-1].name = name
}

func (p *parser) breadcrumbs() []string {
	crumbs := make([]string, 0, len(p.frames))
	for _, f := range p.frames {
		piece := f.tag.Local
		if f.name != "" {
			piece = fmt.Sprintf("%s(%s)", piece, f.name)
		}
		crumbs = append(crumbs, piece)
	}
	return crumbs
}

// fail fills in the location of err and aborts the parse.
func (p *parser) fail(err *Error) {
	if len(p.frames) > 0 {
		tag := p.top()
		err.Tag = xml.Name{Space: tag.Prefix, Local: tag.Local}
		if p.ns != nil {
			if space, e := p.ns.expandTag(tag.Prefix); e == nil {
				err.Tag.Space = space
			}
		}
	}
	err.Path = p.breadcrumbs()
	panic(parseError{err})
}

func (p *parser) stop(kind ErrorKind, name string, format string, v ...interface{}) {
	p.fail(&Error{Kind: kind, Name: name, Msg: fmt.Sprintf(format, v...)})
}

// check aborts the parse if err is not nil.
func (p *parser) check(err error) {
	if err == nil {
		return
	}
	if e, ok := err.(*Error); ok {
		p.fail(e)
	}
	p.fail(&Error{Kind: UnexpectedToken, Msg: err.Error()})
}

func (p *parser) unexpected(tok xmltoken.Token) {
	p.fail(&Error{
		Kind:  UnexpectedToken,
		Token: tok.String(),
		Msg:   fmt.Sprintf("did not expect %s", tok),
	})
}

func (p *parser) next() xmltoken.Token {
	tok, ok := p.stream.Next()
	if !ok {
		p.stop(UnexpectedToken, "", "unexpected end of input")
	}
	return tok
}

// qname checks that s is a well-formed QName with a declared prefix.
func (p *parser) qname(s string) QName {
	q, err := SplitQName(s)
	p.check(err)
	_, err = p.ns.ExpandQName(q)
	p.check(err)
	return q
}

func (p *parser) isSchemaTag(tok xmltoken.Token) bool {
	space, err := p.ns.expandTag(tok.Prefix)
	return err == nil && space == schemaNS
}

// attributes reads the attributes of the element being parsed, up to
// the end of its start tag. Namespace declarations go to the namespace
// table; the values of the attributes in the vocabulary of production
// are returned. Any other attribute aborts the parse.
func (p *parser) attributes(production string) (map[string]string, xmltoken.EndKind) {
	values := make(map[string]string)
	seen := make(map[string]bool)
	for {
		tok := p.next()
		switch tok.Kind {
		case xmltoken.Whitespace, xmltoken.Comment:
		case xmltoken.Attribute:
			if seen[tok.Name()] {
				p.stop(DuplicateAttribute, tok.Name(), "%s given more than once", tok.Name())
			}
			seen[tok.Name()] = true
			switch {
			case tok.Prefix == "xmlns":
				p.check(p.ns.Declare(tok.Local, tok.Value))
			case tok.Prefix == "" && tok.Local == "xmlns":
				p.check(p.ns.Declare("", tok.Value))
			case tok.Prefix == "xml" && tok.Local == "lang":
			case tok.Prefix == "" && recognized(production, tok.Local):
				values[tok.Local] = tok.Value
				if tok.Local == "name" || (tok.Local == "ref" && values["name"] == "") {
					p.label(tok.Value)
				}
			default:
				if tok.Prefix != "" {
					_, err := p.ns.ExpandPrefix(tok.Prefix)
					p.check(err)
				}
				p.stop(UnknownAttribute, tok.Name(), "<%s> does not take a %s attribute",
					p.top().Name(), tok.Name())
			}
		case xmltoken.ElementEnd:
			if tok.End == xmltoken.Close {
				p.unexpected(tok)
			}
			return values, tok.End
		default:
			p.unexpected(tok)
		}
	}
}

// skipAttributes reads the rest of a start tag without interpreting
// it. fn, if not nil, is called for each unprefixed attribute.
func (p *parser) skipAttributes(fn func(local, value string)) xmltoken.EndKind {
	for {
		tok := p.next()
		switch tok.Kind {
		case xmltoken.Whitespace, xmltoken.Comment:
		case xmltoken.Attribute:
			if fn != nil && tok.Prefix == "" {
				fn(tok.Local, tok.Value)
			}
		case xmltoken.ElementEnd:
			if tok.End == xmltoken.Close {
				p.unexpected(tok)
			}
			return tok.End
		default:
			p.unexpected(tok)
		}
	}
}

// children calls fn for each child element of the element being
// parsed, up to and including its end tag. When fn is called, the
// start tag of the child has been read and is on top of the frame
// stack; fn must consume the rest of the child. fn returns false
// if the child is not part of the vocabulary of the parent.
func (p *parser) children(fn func(local string) bool) {
	open := p.top()
	for {
		tok := p.next()
		switch tok.Kind {
		case xmltoken.Whitespace, xmltoken.Comment:
		case xmltoken.ElementStart:
			p.push(tok)
			if !p.isSchemaTag(tok) || !fn(tok.Local) {
				p.stop(UnknownElement, tok.Name(), "<%s> is not allowed in <%s>", tok.Name(), open.Name())
			}
			p.pop()
		case xmltoken.ElementEnd:
			if tok.End == xmltoken.Close && tok.Prefix == open.Prefix && tok.Local == open.Local {
				return
			}
			p.unexpected(tok)
		default:
			p.unexpected(tok)
		}
	}
}

// eatBlock consumes the element being parsed, whatever it contains,
// up to and including its end tag. It may be called right after the
// element's start tag, or after its attributes.
func (p *parser) eatBlock() {
	stack := []xmltoken.Token{p.top()}
	for len(stack) > 0 {
		tok := p.next()
		if tok.Kind == xmltoken.ElementStart {
			stack = append(stack, tok)
			continue
		}
		if tok.Kind != xmltoken.ElementEnd {
			continue
		}
		switch tok.End {
		case xmltoken.Empty:
			stack = stack[:len(stack)-1]
		case xmltoken.Close:
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if open.Prefix != tok.Prefix || open.Local != tok.Local {
				p.stop(IntegrityViolation, tok.Name(), "<%s> closed by </%s>", open.Name(), tok.Name())
			}
		}
	}
}

func (p *parser) skip() {
	p.cfg.logf("xsd: skipping %s", strings.Join(p.breadcrumbs(), ">"))
	p.eatBlock()
}

type annotation string

func (a annotation) append(extra annotation) annotation {
	if extra == "" {
		return a
	}
	if a != "" {
		a += "\n\n"
	}
	return a + extra
}

// parseAnnotation reads an <annotation> element and returns the text
// of its <documentation> children. Nothing in an annotation can make
// the parse fail, as long as its tags are balanced.
func (p *parser) parseAnnotation() annotation {
	var doc annotation
	if p.skipAttributes(nil) == xmltoken.Empty {
		return doc
	}
	open := p.top()
	for {
		tok := p.next()
		switch tok.Kind {
		case xmltoken.ElementStart:
			p.push(tok)
			if tok.Local == "documentation" && p.isSchemaTag(tok) {
				doc = doc.append(p.parseDocumentation())
			} else {
				p.skip()
			}
			p.pop()
		case xmltoken.ElementEnd:
			if tok.End != xmltoken.Close || tok.Prefix != open.Prefix || tok.Local != open.Local {
				p.stop(IntegrityViolation, tok.Name(), "%s inside <%s>", tok, open.Name())
			}
			return doc
		}
	}
}

// The content of <documentation> is a wildcard: arbitrary text and
// elements from any namespace.
func (p *parser) parseDocumentation() annotation {
	if p.skipAttributes(nil) == xmltoken.Empty {
		return ""
	}
	var buf strings.Builder
	for {
		tokens, err := p.stream.Any()
		if _, ok := err.(*xmltoken.MismatchError); ok {
			p.stop(IntegrityViolation, "", "%v", err)
		}
		p.check(err)
		if len(tokens) == 0 {
			break
		}
		for _, tok := range tokens {
			if tok.Kind == xmltoken.Text || tok.Kind == xmltoken.Whitespace {
				buf.WriteString(unescapeText(tok.Value))
			}
		}
	}
	open := p.top()
	if tok := p.next(); tok.Kind != xmltoken.ElementEnd || tok.End != xmltoken.Close ||
		tok.Prefix != open.Prefix || tok.Local != open.Local {
		p.stop(IntegrityViolation, tok.Name(), "%s inside <%s>", tok, open.Name())
	}
	return annotation(strings.TrimSpace(buf.String()))
}

func unescapeText(raw string) string {
	const cdataStart, cdataEnd = "<![CDATA[", "]]>"
	if strings.HasPrefix(raw, cdataStart) {
		return strings.TrimSuffix(strings.TrimPrefix(raw, cdataStart), cdataEnd)
	}
	return html.UnescapeString(raw)
}
