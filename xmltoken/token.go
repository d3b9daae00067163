// Package xmltoken turns XML documents into a flat sequence of lexical
// tokens, and provides a replayable cursor over such a sequence.
//
// Prefixes are never resolved by this package; a token carries the prefix
// exactly as written in the document. Text, whitespace and comment values
// are substrings of the input document.
package xmltoken // import "github.com/CognitoIQ/go-xsd/xmltoken"

import "fmt"

// Kind identifies the lexical class of a Token.
type Kind uint8

const (
	Declaration Kind = iota + 1
	ElementStart
	Attribute
	ElementEnd
	Text
	Whitespace
	Comment
	DtdStart
	DtdEnd
)

var kindNames = [...]string{
	Declaration:  "Declaration",
	ElementStart: "ElementStart",
	Attribute:    "Attribute",
	ElementEnd:   "ElementEnd",
	Text:         "Text",
	Whitespace:   "Whitespace",
	Comment:      "Comment",
	DtdStart:     "DtdStart",
	DtdEnd:       "DtdEnd",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// EndKind distinguishes the three ways an ElementEnd token can close a tag.
type EndKind uint8

const (
	// Open is the '>' ending a start tag whose content follows.
	Open EndKind = iota + 1
	// Close is an end tag, </prefix:local>.
	Close
	// Empty is the '/>' ending a self-closing tag.
	Empty
)

func (e EndKind) String() string {
	switch e {
	case Open:
		return "Open"
	case Close:
		return "Close"
	case Empty:
		return "Empty"
	}
	return fmt.Sprintf("EndKind(%d)", e)
}

// A Token is a single lexical XML token. Tokens are small values and are
// copied on every read; holding on to one never pins the stream.
type Token struct {
	Kind Kind
	// Prefix and Local name the tag of an ElementStart or
	// ElementEnd(Close) token, or the key of an Attribute token.
	Prefix, Local string
	// Value is the attribute value of an Attribute token, the raw
	// text of Text, Whitespace and Comment tokens, and the root
	// element name of a DtdStart token.
	Value string
	// End is only set on ElementEnd tokens.
	End EndKind
	// Parameters of the <?xml ?> declaration. Absent parameters
	// are empty.
	Version, Encoding, Standalone string
	// Byte offset of the token in the (UTF-8) input.
	Offset int
}

// Name returns the tag or attribute name in prefix:local form.
func (t Token) Name() string {
	if t.Prefix == "" {
		return t.Local
	}
	return t.Prefix + ":" + t.Local
}

func (t Token) String() string {
	switch t.Kind {
	case Declaration:
		return fmt.Sprintf("<?xml version=%q?>", t.Version)
	case ElementStart:
		return "<" + t.Name()
	case Attribute:
		return fmt.Sprintf("%s=%q", t.Name(), t.Value)
	case ElementEnd:
		switch t.End {
		case Close:
			return "</" + t.Name() + ">"
		case Empty:
			return "/>"
		}
		return ">"
	case Text, Whitespace:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Value)
	case Comment:
		return "<!--" + t.Value + "-->"
	case DtdStart:
		return "<!DOCTYPE " + t.Value
	case DtdEnd:
		return "]>"
	}
	return t.Kind.String()
}
