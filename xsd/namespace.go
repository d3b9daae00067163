package xsd

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/CognitoIQ/go-xsd/internal/ordered"
)

// unqualified is the module name of namespaces that have no prefix
// in a schema.
const unqualified = "UNQUAL"

// Namespaces maps the namespace prefixes declared in a schema to
// namespace URIs, and expands the QNames used in attribute values.
// The xml and xmlns prefixes are always bound and cannot be declared.
type Namespaces struct {
	targetNS string
	// prefix -> URI. The default namespace has the empty prefix.
	prefixes map[string]string
}

func nsError(kind ErrorKind, name string, format string, v ...interface{}) *Error {
	return &Error{Kind: kind, Name: name, Msg: fmt.Sprintf(format, v...)}
}

// NewNamespaces builds a namespace table from prefix declarations and
// the target namespace of a schema.
func NewNamespaces(decls map[string]string, targetNS string) (*Namespaces, error) {
	ns := &Namespaces{
		targetNS: targetNS,
		prefixes: map[string]string{
			"xml":   xmlNS,
			"xmlns": xmlnsNS,
		},
	}
	var err error
	ordered.RangeStrings(decls, func(prefix string) {
		if err == nil {
			err = ns.Declare(prefix, decls[prefix])
		}
	})
	if err != nil {
		return nil, err
	}
	return ns, nil
}

// Declare binds prefix to uri. The empty prefix declares the default
// namespace. Declaring the same binding twice is allowed.
func (ns *Namespaces) Declare(prefix, uri string) error {
	if prefix == "xml" || prefix == "xmlns" {
		return nsError(DuplicateNamespacePrefix, prefix, "the %s prefix is reserved", prefix)
	}
	if prev, ok := ns.prefixes[prefix]; ok && prev != uri {
		return nsError(DuplicateNamespacePrefix, prefix, "prefix %q bound to %q and %q", prefix, prev, uri)
	}
	ns.prefixes[prefix] = uri
	return nil
}

// TargetNS returns the target namespace of the schema.
func (ns *Namespaces) TargetNS() string {
	return ns.targetNS
}

// DefaultNS returns the namespace of unprefixed QNames: the declared
// default namespace, or else the target namespace.
func (ns *Namespaces) DefaultNS() string {
	if uri, ok := ns.prefixes[""]; ok {
		return uri
	}
	return ns.targetNS
}

// ExpandPrefix returns the namespace bound to prefix. The empty prefix
// expands to DefaultNS.
func (ns *Namespaces) ExpandPrefix(prefix string) (string, error) {
	if prefix == "" {
		return ns.DefaultNS(), nil
	}
	if uri, ok := ns.prefixes[prefix]; ok {
		return uri, nil
	}
	return "", nsError(UnknownPrefix, prefix, "prefix %q is not declared", prefix)
}

// expandTag is like ExpandPrefix, but follows the rules for element
// and attribute names: without a prefix, a tag is in the declared
// default namespace, or in no namespace at all.
func (ns *Namespaces) expandTag(prefix string) (string, error) {
	if prefix == "" {
		return ns.prefixes[""], nil
	}
	return ns.ExpandPrefix(prefix)
}

// SplitQName splits a name of the form prefix:local or local.
func SplitQName(s string) (QName, error) {
	var q QName
	switch strings.Count(s, ":") {
	case 0:
		q.Local = s
	case 1:
		i := strings.IndexByte(s, ':')
		q.Prefix, q.Local = s[:i], s[i+1:]
		if q.Prefix == "" {
			return q, nsError(MalformedName, s, "empty prefix in %q", s)
		}
	default:
		return q, nsError(MalformedName, s, "too many colons in %q", s)
	}
	if q.Local == "" {
		return q, nsError(MalformedName, s, "empty local name in %q", s)
	}
	return q, nil
}

// ExpandQName returns the canonical name of q.
func (ns *Namespaces) ExpandQName(q QName) (xml.Name, error) {
	space, err := ns.ExpandPrefix(q.Prefix)
	if err != nil {
		return xml.Name{}, err
	}
	return xml.Name{Space: space, Local: q.Local}, nil
}

// ParseQName splits s and expands its prefix.
func (ns *Namespaces) ParseQName(s string) (xml.Name, error) {
	q, err := SplitQName(s)
	if err != nil {
		return xml.Name{}, err
	}
	return ns.ExpandQName(q)
}

// QNameEqual reports whether a and b name the same thing once their
// prefixes are expanded. Names with undeclared prefixes are not equal
// to anything.
func (ns *Namespaces) QNameEqual(a, b QName) bool {
	x, err := ns.ExpandQName(a)
	if err != nil {
		return false
	}
	y, err := ns.ExpandQName(b)
	if err != nil {
		return false
	}
	return x == y
}

// ModuleName returns a prefix declared for the namespace of name,
// for use as a module or package name by code generators. If several
// prefixes are bound to the namespace, the lowest one is used. If none
// is, ModuleName returns "UNQUAL".
func (ns *Namespaces) ModuleName(name xml.Name) string {
	module := unqualified
	ordered.RangeStrings(ns.prefixes, func(prefix string) {
		if module == unqualified && prefix != "" && ns.prefixes[prefix] == name.Space {
			module = prefix
		}
	})
	return module
}

// declared returns the prefixes declared so far, without the reserved
// ones.
func (ns *Namespaces) declared() map[string]string {
	result := make(map[string]string, len(ns.prefixes))
	for prefix, uri := range ns.prefixes {
		if prefix != "xml" && prefix != "xmlns" {
			result[prefix] = uri
		}
	}
	return result
}
