package xmltoken

import (
	"encoding/xml"
	"reflect"
	"testing"
)

// strip offsets so expectations stay readable
func kinds(tokens []Token) []Token {
	result := make([]Token, len(tokens))
	for i, tok := range tokens {
		tok.Offset = 0
		result[i] = tok
	}
	return result
}

func TestTokenizeSchema(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"><!--c--><xs:element name="a" type="xs:string"/></xs:schema>`
	want := []Token{
		{Kind: Declaration, Version: "1.0", Encoding: "UTF-8"},
		{Kind: Whitespace, Value: "\n"},
		{Kind: ElementStart, Prefix: "xs", Local: "schema"},
		{Kind: Attribute, Prefix: "xmlns", Local: "xs", Value: "http://www.w3.org/2001/XMLSchema"},
		{Kind: ElementEnd, End: Open},
		{Kind: Comment, Value: "c"},
		{Kind: ElementStart, Prefix: "xs", Local: "element"},
		{Kind: Attribute, Local: "name", Value: "a"},
		{Kind: Attribute, Local: "type", Value: "xs:string"},
		{Kind: ElementEnd, End: Empty},
		{Kind: ElementEnd, End: Close, Prefix: "xs", Local: "schema"},
	}
	got := kinds(mustTokenize(t, doc))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got\n%v\nwanted\n%v", got, want)
	}
}

func TestTokenizeText(t *testing.T) {
	doc := `<a>x &amp; y<![CDATA[<z>]]></a>`
	tokens := mustTokenize(t, doc)
	var text []string
	for _, tok := range tokens {
		if tok.Kind == Text {
			text = append(text, tok.Value)
		}
	}
	want := []string{"x &amp; y", "<![CDATA[<z>]]>"}
	if !reflect.DeepEqual(text, want) {
		t.Errorf("got %q, wanted %q", text, want)
	}
	for _, tok := range tokens {
		if tok.Kind == Text && doc[tok.Offset:tok.Offset+len(tok.Value)] != tok.Value {
			t.Errorf("text token %q does not point into the input", tok.Value)
		}
	}
}

func TestTokenizeDoctype(t *testing.T) {
	tokens := kinds(mustTokenize(t, `<!DOCTYPE schema><schema/>`))
	want := []Token{
		{Kind: DtdStart, Value: "schema"},
		{Kind: DtdEnd},
		{Kind: ElementStart, Local: "schema"},
		{Kind: ElementEnd, End: Empty},
	}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("got %v, wanted %v", tokens, want)
	}
}

func TestTokenizeLatin1(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><a>caf\xe9</a>")
	tokens, err := Tokenize(doc)
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, tok := range tokens {
		if tok.Kind == Text {
			found = true
			if tok.Value != "café" {
				t.Errorf("got %q, wanted %q", tok.Value, "café")
			}
		}
		if tok.Kind == Declaration && tok.Encoding != "ISO-8859-1" {
			t.Errorf("got encoding %q, wanted ISO-8859-1", tok.Encoding)
		}
	}
	if !found {
		t.Error("no text token")
	}
}

var badDocs = []string{
	`<a><b></a>`,
	`<a>`,
	`</a>`,
	`<a x="1></a>`,
}

func TestTokenizeMalformed(t *testing.T) {
	for _, doc := range badDocs {
		_, err := Tokenize([]byte(doc))
		if err == nil {
			t.Errorf("%s: expected an error", doc)
			continue
		}
		if _, ok := err.(*xml.SyntaxError); !ok {
			t.Errorf("%s: got %T %v, wanted *xml.SyntaxError", doc, err, err)
		}
	}
}

func TestProcInstParam(t *testing.T) {
	tests := []struct {
		param, inst, want string
	}{
		{"version", ` version="1.0"`, "1.0"},
		{"encoding", ` version='1.0' encoding='utf-8'`, "utf-8"},
		{"standalone", ` version="1.0" standalone = "yes"`, "yes"},
		{"encoding", ` version="1.0"`, ""},
		{"version", ` xversion="2" version="1.0"`, "1.0"},
	}
	for _, tt := range tests {
		if got := procInstParam(tt.param, tt.inst); got != tt.want {
			t.Errorf("procInstParam(%q, %q) = %q, wanted %q", tt.param, tt.inst, got, tt.want)
		}
	}
}
