package xsd

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// An ErrorKind classifies a parse failure. ErrorKind values are
// errors themselves, so that callers can test for a kind with
// errors.Is:
//
//	if errors.Is(err, xsd.UnknownAttribute) { ... }
type ErrorKind int

const (
	// A qualified name has no local part, or more than one colon.
	MalformedName ErrorKind = iota + 1
	// A namespace prefix was used without being declared.
	UnknownPrefix
	// The xml or xmlns prefix was declared, or a prefix was
	// declared twice with different namespaces.
	DuplicateNamespacePrefix
	// An attribute is not part of the vocabulary of its element.
	UnknownAttribute
	// An element is not part of the vocabulary of its parent.
	UnknownElement
	// An attribute was given twice on one tag.
	DuplicateAttribute
	// A required attribute or child is absent.
	MissingRequiredField
	// More than one construct was given where at most one is allowed.
	ConflictingDefinition
	// Two top-level types, or two top-level groups, share a name.
	DuplicateTypeOrGroupName
	// The token stream does not have the expected structure.
	UnexpectedToken
	// The <schema> element is not in the XML Schema namespace.
	WrongNamespace
	// A skipped region was not balanced. This indicates a bug in
	// the tokenizer or in the parser; it cannot happen with the
	// output of xmltoken.Tokenize.
	IntegrityViolation
)

var kindText = map[ErrorKind]string{
	MalformedName:            "malformed name",
	UnknownPrefix:            "unknown namespace prefix",
	DuplicateNamespacePrefix: "duplicate namespace prefix",
	UnknownAttribute:         "unknown attribute",
	UnknownElement:           "unknown element",
	DuplicateAttribute:       "duplicate attribute",
	MissingRequiredField:     "missing required field",
	ConflictingDefinition:    "conflicting definition",
	DuplicateTypeOrGroupName: "duplicate type or group name",
	UnexpectedToken:          "unexpected token",
	WrongNamespace:           "wrong namespace",
	IntegrityViolation:       "integrity violation",
}

func (k ErrorKind) Error() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return fmt.Sprintf("xsd error %d", int(k))
}

// An Error describes why a parse failed, and where.
type Error struct {
	Kind ErrorKind
	// The element being parsed when the error occurred.
	Tag xml.Name
	// The attribute or child element involved, if any.
	Name string
	// The offending token, if any.
	Token string
	// Human-readable description.
	Msg string
	// Breadcrumbs from the root element to Tag.
	Path []string
}

func (err *Error) Error() string {
	msg := err.Kind.Error()
	if err.Msg != "" {
		msg += ": " + err.Msg
	}
	if len(err.Path) == 0 {
		return "xsd: " + msg
	}
	return "xsd: error at " + strings.Join(err.Path, ">") + ": " + msg
}

// Unwrap returns the Kind of the error.
func (err *Error) Unwrap() error {
	return err.Kind
}
