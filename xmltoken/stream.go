package xmltoken

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEOF is returned by Any when the token sequence ends
// inside an element.
var ErrUnexpectedEOF = errors.New("xmltoken: unexpected end of tokens")

// A MismatchError is returned by Any when a close tag does not match
// the innermost open tag. Sequences produced by Tokenize never cause
// it.
type MismatchError struct {
	Want, Got Token
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("xmltoken: %s closed by %s", e.Want, e.Got)
}

// A Stream is a cursor over a token sequence that has already been
// materialized. A Stream must not be shared between goroutines.
type Stream struct {
	index  int
	tokens []Token
}

// NewStream returns a Stream positioned at the first token.
func NewStream(tokens []Token) *Stream {
	return &Stream{tokens: tokens}
}

// Next returns the token under the cursor and advances the cursor by
// one. At the end of the sequence, Next returns false and does not
// move.
func (s *Stream) Next() (Token, bool) {
	if s.index >= len(s.tokens) {
		return Token{}, false
	}
	tok := s.tokens[s.index]
	s.index++
	return tok, true
}

// Pos returns the index of the token that the next call to Next
// will return.
func (s *Stream) Pos() int { return s.index }

// Len returns the number of tokens in the stream.
func (s *Stream) Len() int { return len(s.tokens) }

// A Transaction records a position in a Stream so that a speculative
// read can be abandoned. The zero Transaction is positioned at the
// start of the stream.
type Transaction struct {
	initial int
}

// Transaction opens a checkpoint at the current position.
func (s *Stream) Transaction() Transaction {
	return Transaction{initial: s.index}
}

// Commit keeps everything read since the checkpoint was opened.
func (tx Transaction) Commit() {}

// Rollback moves the cursor of s back to the checkpoint, as if
// nothing had been read since.
func (tx Transaction) Rollback(s *Stream) {
	s.index = tx.initial
}

// Any consumes wildcard content: any text, whitespace and comments
// under the cursor, followed by at most one complete element. The
// boundary of the wildcard is found by reading one token ahead and
// rolling it back when it cannot start wildcard content. Any returns
// an empty slice if the cursor is not positioned on wildcard content.
func (s *Stream) Any() ([]Token, error) {
	var (
		tokens []Token
		stack  []Token
	)
	for len(stack) == 0 {
		tx := s.Transaction()
		tok, ok := s.Next()
		if !ok {
			return tokens, nil
		}
		switch tok.Kind {
		case Whitespace, Comment, Text:
		case ElementStart:
			stack = append(stack, tok)
		default:
			tx.Rollback(s)
			return tokens, nil
		}
		tx.Commit()
		tokens = append(tokens, tok)
	}
	for len(stack) > 0 {
		tok, ok := s.Next()
		if !ok {
			return tokens, ErrUnexpectedEOF
		}
		tokens = append(tokens, tok)
		switch tok.Kind {
		case ElementStart:
			stack = append(stack, tok)
		case ElementEnd:
			switch tok.End {
			case Empty:
				stack = stack[:len(stack)-1]
			case Close:
				open := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if open.Prefix != tok.Prefix || open.Local != tok.Local {
					return tokens, &MismatchError{Want: open, Got: tok}
				}
			}
		}
	}
	return tokens, nil
}
