package xsd

import (
	"github.com/CognitoIQ/go-xsd/internal/dependency"
	"github.com/CognitoIQ/go-xsd/internal/ordered"
)

// TypeOrder returns the names of the types defined in the schema, in
// an order where every type comes after the types it is derived from
// or refers to. Reference cycles are broken arbitrarily, but the order
// is the same for every parse of the same schema.
func (s *Schema) TypeOrder() []string {
	return s.TypeOrderFunc(nil)
}

// TypeOrderFunc is like TypeOrder, but calls broken, if not nil, for
// every reference from typ to dep that is ignored to break a cycle.
func (s *Schema) TypeOrderFunc(broken func(typ, dep string)) []string {
	graph := dependency.Graph{Broken: broken}
	ordered.RangeStrings(s.Types, func(name string) {
		graph.AddTarget(name)
		def := s.Types[name]
		walkRefs(def.Type, def.Attrs, func(q QName) {
			if dep, ok := s.localType(q); ok && dep != name {
				graph.Add(name, dep)
			}
		})
	})
	result := make([]string, 0, len(s.Types))
	graph.Flatten(func(name string) {
		result = append(result, name)
	})
	return result
}

// localType returns the name of the type q refers to, if it is
// defined in s.
func (s *Schema) localType(q QName) (string, bool) {
	if _, ok := s.Types[q.Local]; !ok {
		return "", false
	}
	if s.ns == nil {
		return q.Local, true
	}
	name, err := s.ns.ExpandQName(q)
	if err != nil || name.Space != s.TargetNS {
		return "", false
	}
	return q.Local, true
}

// walkRefs calls fn for every type name used by t and attrs.
func walkRefs(t Type, attrs []Attribute, fn func(QName)) {
	for _, attr := range attrs {
		switch attr := attr.(type) {
		case AttributeDef:
			if q, err := SplitQName(attr.Type); err == nil {
				fn(q)
			}
		case AttributeInline:
			walkRefs(attr.Inner.Type, attr.Inner.Attrs, fn)
		}
	}
	switch t := t.(type) {
	case Custom:
		fn(QName(t))
	case List:
		fn(QName(t))
	case *Extension:
		fn(t.Base)
		walkRefs(t.Inner, t.Attrs, fn)
	case *Union:
		for _, q := range t.MemberTypes {
			fn(q)
		}
		for _, el := range t.Members {
			walkRefs(el.Type, el.Attrs, fn)
		}
	case Sequence:
		for _, el := range t {
			walkRefs(el.Type, el.Attrs, fn)
		}
	case Choice:
		for _, el := range t {
			walkRefs(el.Type, el.Attrs, fn)
		}
	}
}
