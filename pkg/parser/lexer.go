package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const eof = -1

// Lexer converts a CEL expression into a sequence of Tokens. The
// implementation is based on Rob Pike's "Lexical Scanning in Go" technique,
// tracking a read head over the rune slice with start/current position
// bookkeeping and next/backup/peekRune helpers.
type Lexer struct {
	input  string
	src    []rune
	start  int
	pos    int
	peeked *Token
}

// NewLexer creates a new lexer from the provided input string.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, src: []rune(input)}
}

// srcText returns the original source text, unmodified.
func (l *Lexer) srcText() string { return l.input }

func (l *Lexer) next() rune {
	if l.pos >= len(l.src) {
		l.pos++
		return eof
	}
	r := l.src[l.pos]
	l.pos++
	return r
}

func (l *Lexer) backup() {
	if l.pos > 0 {
		l.pos--
	}
}

func (l *Lexer) peekRune() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *Lexer) errorf(format string, args ...interface{}) Token {
	return Token{Type: TokenError, Value: fmt.Sprintf(format, args...), Position: l.start}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() Token {
	if l.peeked == nil {
		t := l.scan()
		l.peeked = &t
	}
	return *l.peeked
}

// Next returns the next token from the input, consuming it. When the end
// of the input is reached, Next returns TokenEOF for all subsequent calls.
func (l *Lexer) Next() Token {
	if l.peeked != nil {
		t := *l.peeked
		l.peeked = nil
		return t
	}
	return l.scan()
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		r := l.next()
		switch {
		case r == eof:
			l.backup()
			return
		case r == '/' && l.peekRune() == '/':
			for {
				r2 := l.next()
				if r2 == eof || r2 == '\n' {
					break
				}
			}
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			// consume
		default:
			l.backup()
			return
		}
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= utf8.RuneSelf
}

func isIdentPart(r rune) bool { return isIdentStart(r) || isDigit(r) }

func (l *Lexer) scan() Token {
	l.skipWhitespaceAndComments()
	l.start = l.pos
	r := l.next()

	switch {
	case r == eof:
		return Token{Type: TokenEOF, Position: l.start}
	case r == '"' || r == '\'':
		return l.scanString(r, false)
	case r == 'b' && (l.peekRune() == '"' || l.peekRune() == '\''):
		quote := l.next()
		return l.scanString(quote, true)
	case isDigit(r):
		return l.scanNumber()
	case isIdentStart(r):
		return l.scanIdentOrKeyword()
	default:
		l.backup()
		return l.scanSymbol()
	}
}

func (l *Lexer) scanSymbol() Token {
	r := l.next()
	if completions := lookupSymbol2(r); completions != nil {
		second := l.peekRune()
		for _, c := range completions {
			if c.r == second {
				l.next()
				return Token{Type: c.tt, Value: string(r) + string(second), Position: l.start}
			}
		}
		if tt, ok := lookupSymbol1(r); ok {
			return Token{Type: tt, Value: string(r), Position: l.start}
		}
		return l.errorf("unexpected character %q", r)
	}
	if tt, ok := lookupSymbol1(r); ok {
		return Token{Type: tt, Value: string(r), Position: l.start}
	}
	return l.errorf("unexpected character %q", r)
}

func (l *Lexer) scanIdentOrKeyword() Token {
	for isIdentPart(l.peekRune()) {
		l.next()
	}
	text := string(l.src[l.start:l.pos])
	if tt := lookupKeyword(text); tt != 0 {
		return Token{Type: tt, Value: text, Position: l.start}
	}
	return Token{Type: TokenIdent, Value: text, Position: l.start}
}

func (l *Lexer) scanNumber() Token {
	for isDigit(l.peekRune()) {
		l.next()
	}
	isDouble := false
	if l.peekRune() == '.' {
		save := l.pos
		l.next()
		if isDigit(l.peekRune()) {
			isDouble = true
			for isDigit(l.peekRune()) {
				l.next()
			}
		} else {
			l.pos = save
		}
	}
	if r := l.peekRune(); r == 'e' || r == 'E' {
		save := l.pos
		l.next()
		if r2 := l.peekRune(); r2 == '+' || r2 == '-' {
			l.next()
		}
		if isDigit(l.peekRune()) {
			isDouble = true
			for isDigit(l.peekRune()) {
				l.next()
			}
		} else {
			l.pos = save
		}
	}
	text := string(l.src[l.start:l.pos])
	if isDouble {
		return Token{Type: TokenDouble, Value: text, Position: l.start}
	}
	if r := l.peekRune(); r == 'u' || r == 'U' {
		l.next()
		return Token{Type: TokenUint, Value: text, Position: l.start}
	}
	return Token{Type: TokenInt, Value: text, Position: l.start}
}

func (l *Lexer) scanString(quote rune, isBytes bool) Token {
	var sb strings.Builder
	for {
		r := l.next()
		if r == eof {
			return l.errorf("unterminated string literal")
		}
		if r == quote {
			break
		}
		if r == '\\' {
			esc := l.next()
			if esc == eof {
				return l.errorf("unterminated escape sequence")
			}
			decoded, err := l.decodeEscape(esc)
			if err != nil {
				return l.errorf("%s", err)
			}
			sb.WriteRune(decoded)
			continue
		}
		sb.WriteRune(r)
	}
	tt := TokenString
	if isBytes {
		tt = TokenBytes
	}
	return Token{Type: tt, Value: sb.String(), Position: l.start}
}

func (l *Lexer) decodeEscape(esc rune) (rune, error) {
	switch esc {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '"':
		return '"', nil
	case '\'':
		return '\'', nil
	case '\\':
		return '\\', nil
	case '`':
		return '`', nil
	case '?':
		return '?', nil
	case 'a':
		return '\a', nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'v':
		return '\v', nil
	case 'u':
		return l.scanHexEscape(4)
	case 'U':
		return l.scanHexEscape(8)
	case 'x', 'X':
		return l.scanHexEscape(2)
	default:
		if isDigit(esc) {
			return l.scanOctalEscape(esc)
		}
		return 0, fmt.Errorf("unknown escape sequence \\%c", esc)
	}
}

func (l *Lexer) scanOctalEscape(first rune) (rune, error) {
	digits := string(first)
	for i := 0; i < 2 && isOctalDigit(l.peekRune()); i++ {
		digits += string(l.next())
	}
	v, err := strconv.ParseInt(digits, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal escape: %w", err)
	}
	return rune(v), nil
}

func isOctalDigit(r rune) bool { return r >= '0' && r <= '7' }

func (l *Lexer) scanHexEscape(digits int) (rune, error) {
	start := l.pos
	for i := 0; i < digits; i++ {
		if !isHexDigit(l.peekRune()) {
			return 0, fmt.Errorf("invalid hex escape")
		}
		l.next()
	}
	text := string(l.src[start:l.pos])
	v, err := strconv.ParseInt(text, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex escape: %w", err)
	}
	return rune(v), nil
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
