package xmltoken

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Save some typing when scanning xml
type scanner struct {
	*xml.Decoder
	tok xml.Token
	err error
}

func (s *scanner) scan() bool {
	if s.err != nil {
		return false
	}
	s.tok, s.err = s.RawToken()
	return s.err == nil
}

// Tokenize splits an XML document into lexical tokens. Tokenize
// checks that the document is well-formed, so a consumer of the
// returned tokens may rely on start and end tags being balanced.
//
// Documents that declare an encoding other than UTF-8 are transcoded
// before they are split; token offsets refer to the transcoded text.
func Tokenize(data []byte) ([]Token, error) {
	src, err := decodeInput(data)
	if err != nil {
		return nil, err
	}
	d := xml.NewDecoder(strings.NewReader(src))
	// Input has already been converted to UTF-8 by decodeInput.
	d.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	l := lexer{scanner: scanner{Decoder: d}, src: src}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

type lexer struct {
	scanner
	src    string
	tokens []Token
	// open elements, to check balance. RawToken does not.
	stack []xml.Name
	// set after a self-closing tag; the decoder reports a synthetic
	// EndElement for it which we have already accounted for.
	skipEnd bool
}

func (l *lexer) emit(t Token) {
	l.tokens = append(l.tokens, t)
}

func (l *lexer) syntaxError(format string, v ...interface{}) error {
	line, _ := l.InputPos()
	return &xml.SyntaxError{Msg: fmt.Sprintf(format, v...), Line: line}
}

func (l *lexer) run() error {
	begin := int(l.InputOffset())
	for l.scan() {
		end := int(l.InputOffset())
		raw := l.src[begin:end]

		switch tok := l.tok.(type) {
		case xml.ProcInst:
			if tok.Target == "xml" {
				l.emit(declaration(raw, begin))
			}
		case xml.StartElement:
			l.emit(Token{Kind: ElementStart, Prefix: tok.Name.Space, Local: tok.Name.Local, Offset: begin})
			for _, a := range tok.Attr {
				l.emit(Token{Kind: Attribute, Prefix: a.Name.Space, Local: a.Name.Local, Value: a.Value, Offset: begin})
			}
			if strings.HasSuffix(raw, "/>") {
				l.emit(Token{Kind: ElementEnd, End: Empty, Offset: end - 2})
				l.skipEnd = true
			} else {
				l.emit(Token{Kind: ElementEnd, End: Open, Offset: end - 1})
				l.stack = append(l.stack, tok.Name)
			}
		case xml.EndElement:
			if l.skipEnd {
				l.skipEnd = false
				break
			}
			if len(l.stack) == 0 {
				return l.syntaxError("unexpected end element </%s>", qualified(tok.Name))
			}
			open := l.stack[len(l.stack)-1]
			l.stack = l.stack[:len(l.stack)-1]
			if open != tok.Name {
				return l.syntaxError("element <%s> closed by </%s>", qualified(open), qualified(tok.Name))
			}
			l.emit(Token{Kind: ElementEnd, End: Close, Prefix: tok.Name.Space, Local: tok.Name.Local, Offset: begin})
		case xml.CharData:
			kind := Text
			if len(bytes.TrimSpace(tok)) == 0 {
				kind = Whitespace
			}
			l.emit(Token{Kind: kind, Value: raw, Offset: begin})
		case xml.Comment:
			l.emit(Token{Kind: Comment, Value: raw[len("<!--") : len(raw)-len("-->")], Offset: begin})
		case xml.Directive:
			fields := strings.Fields(string(tok))
			if len(fields) > 1 && fields[0] == "DOCTYPE" {
				name := strings.TrimRight(fields[1], "[>")
				l.emit(Token{Kind: DtdStart, Value: name, Offset: begin})
				l.emit(Token{Kind: DtdEnd, Offset: end})
			}
		}
		begin = end
	}
	if l.err != io.EOF {
		return l.err
	}
	if len(l.stack) > 0 {
		return l.syntaxError("unexpected EOF: <%s> is not closed", qualified(l.stack[len(l.stack)-1]))
	}
	return nil
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

// declaration builds a Declaration token out of the raw text of
// an <?xml ... ?> processing instruction. The parameter values are
// substrings of raw.
func declaration(raw string, offset int) Token {
	inst := strings.TrimSuffix(strings.TrimPrefix(raw, "<?xml"), "?>")
	return Token{
		Kind:       Declaration,
		Version:    procInstParam("version", inst),
		Encoding:   procInstParam("encoding", inst),
		Standalone: procInstParam("standalone", inst),
		Offset:     offset,
	}
}

// procInstParam returns the value of a pseudo-attribute in the body
// of a processing instruction, or "" if it is not present.
func procInstParam(param, s string) string {
	for {
		i := strings.Index(s, param)
		if i < 0 {
			return ""
		}
		rest := strings.TrimLeft(s[i+len(param):], " \t\r\n")
		if i > 0 && !isSpace(s[i-1]) || !strings.HasPrefix(rest, "=") {
			s = s[i+len(param):]
			continue
		}
		rest = strings.TrimLeft(rest[1:], " \t\r\n")
		if rest == "" || (rest[0] != '"' && rest[0] != '\'') {
			return ""
		}
		end := strings.IndexByte(rest[1:], rest[0])
		if end < 0 {
			return ""
		}
		return rest[1 : end+1]
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// decodeInput returns the document as UTF-8 text. Documents declaring
// another encoding are converted with the x/net charset tables.
func decodeInput(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	label := declaredEncoding(data)
	switch strings.ToLower(label) {
	case "", "utf-8", "utf8":
		return string(data), nil
	}
	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("xmltoken: %v", err)
	}
	utf8, err := ioutil.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("xmltoken: decode %s input: %v", label, err)
	}
	return string(utf8), nil
}

func declaredEncoding(data []byte) string {
	if !bytes.HasPrefix(data, []byte("<?xml")) {
		return ""
	}
	end := bytes.Index(data, []byte("?>"))
	if end < 0 {
		return ""
	}
	return procInstParam("encoding", string(data[len("<?xml"):end]))
}
