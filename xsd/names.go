package xsd

import (
	"encoding/xml"
	"strings"
)

// A NameHint collects the name tokens of the declarations enclosing an
// anonymous construct, so that code generators can derive a readable
// name for it.
type NameHint struct {
	tokens []string
}

// NewNameHint returns a hint made of the given tokens.
func NewNameHint(tokens ...string) NameHint {
	return NameHint{tokens: append([]string(nil), tokens...)}
}

// HintFromName returns a hint made of the local part of name.
func HintFromName(name xml.Name) NameHint {
	return NewNameHint(name.Local)
}

// Push appends a token to the hint.
func (h *NameHint) Push(token string) {
	h.tokens = append(h.tokens, token)
}

// Extend appends all tokens of other to the hint.
func (h *NameHint) Extend(other NameHint) {
	h.tokens = append(h.tokens, other.tokens...)
}

// Len returns the number of tokens in the hint.
func (h NameHint) Len() int {
	return len(h.tokens)
}

// NameFromHint joins the tokens of a hint with underscores. Tokens that
// are Go keywords get a trailing underscore. The second return value
// is false if the hint is empty.
func (ns *Namespaces) NameFromHint(h NameHint) (string, bool) {
	if len(h.tokens) == 0 {
		return "", false
	}
	parts := make([]string, len(h.tokens))
	for i, tok := range h.tokens {
		parts[i] = sanitize(tok)
	}
	return strings.Join(parts, "_"), true
}

// sanitize modifies any names that are reserved in Go, so that they
// may be used as identifiers without causing a syntax error.
func sanitize(name string) string {
	switch name {
	case "break", "default", "func", "interface", "select",
		"case", "defer", "go", "map", "struct",
		"chan", "else", "goto", "package", "switch",
		"const", "fallthrough", "if", "range", "type",
		"continue", "for", "import", "return", "var":
		return name + "_"
	}
	return name
}
