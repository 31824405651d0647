package graphml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/persistorai/degrees/internal/graph"
	"github.com/persistorai/degrees/internal/models"
)

// MaxAttributes bounds the number of attributes on a single tag.
const MaxAttributes = 256

type tokenKind int

const (
	tokenOpen tokenKind = iota
	tokenSelfClosing
	tokenClose
)

type token struct {
	kind   tokenKind
	name   string
	attrs  []graph.Attr
	offset int
	raw    string
}

func (t token) attr(key string) (string, bool) {
	for _, a := range t.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return "", false
}

// lexer scans the restricted dialect into tag tokens. Prolog and comments
// are consumed silently; any other markup declaration is an error.
type lexer struct {
	src     []byte
	pos     int
	started bool
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src}
}

// next returns the next tag token, or io.EOF once the input is exhausted.
func (l *lexer) next() (token, error) {
	for {
		l.skipSpace()

		if l.pos >= len(l.src) {
			return token{}, io.EOF
		}

		if l.src[l.pos] != '<' {
			return token{}, l.errorf(l.pos, l.pos+1, models.ErrMalformedToken, "unexpected character data")
		}

		start := l.pos
		rest := l.src[l.pos:]

		switch {
		case bytes.HasPrefix(rest, []byte("<?")):
			if err := l.skipProlog(start); err != nil {
				return token{}, err
			}

			continue
		case bytes.HasPrefix(rest, []byte("<!--")):
			if err := l.skipComment(start); err != nil {
				return token{}, err
			}

			continue
		case bytes.HasPrefix(rest, []byte("<!")):
			return token{}, l.errorf(start, l.tagEnd(start), models.ErrEntityDeclaration, "markup declarations are not accepted")
		}

		l.started = true

		if bytes.HasPrefix(rest, []byte("</")) {
			return l.closeTag(start)
		}

		return l.openTag(start)
	}
}

func (l *lexer) skipProlog(start int) error {
	if l.started || !bytes.HasPrefix(l.src[start:], []byte("<?xml")) {
		return l.errorf(start, l.tagEnd(start), models.ErrUnsupportedElement, "processing instructions are only accepted as the xml declaration")
	}

	end := bytes.Index(l.src[start:], []byte("?>"))
	if end < 0 {
		return l.errorf(start, len(l.src), models.ErrMalformedToken, "unterminated xml declaration")
	}

	l.started = true
	l.pos = start + end + 2

	return nil
}

func (l *lexer) skipComment(start int) error {
	end := bytes.Index(l.src[start+4:], []byte("-->"))
	if end < 0 {
		return l.errorf(start, len(l.src), models.ErrMalformedToken, "unterminated comment")
	}

	l.pos = start + 4 + end + 3

	return nil
}

func (l *lexer) closeTag(start int) (token, error) {
	l.pos = start + 2

	name, ok := l.name()
	if !ok {
		return token{}, l.errorf(start, l.tagEnd(start), models.ErrMalformedToken, "closing tag without a name")
	}

	l.skipSpace()

	if l.pos >= len(l.src) || l.src[l.pos] != '>' {
		return token{}, l.errorf(start, l.tagEnd(start), models.ErrMalformedToken, "malformed closing tag")
	}

	l.pos++

	return token{kind: tokenClose, name: name, offset: start, raw: string(l.src[start:l.pos])}, nil
}

func (l *lexer) openTag(start int) (token, error) {
	l.pos = start + 1

	name, ok := l.name()
	if !ok {
		return token{}, l.errorf(start, l.tagEnd(start), models.ErrMalformedToken, "tag without a name")
	}

	tok := token{kind: tokenOpen, name: name, offset: start}
	seen := make(map[string]struct{})

	for {
		hadSpace := l.skipSpace()

		if l.pos >= len(l.src) {
			return token{}, l.errorf(start, len(l.src), models.ErrMalformedToken, "unterminated tag")
		}

		switch c := l.src[l.pos]; {
		case c == '>':
			l.pos++
			tok.raw = string(l.src[start:l.pos])

			return tok, nil
		case c == '/':
			if l.pos+1 >= len(l.src) || l.src[l.pos+1] != '>' {
				return token{}, l.errorf(start, l.tagEnd(start), models.ErrMalformedToken, "stray '/' in tag")
			}

			l.pos += 2
			tok.kind = tokenSelfClosing
			tok.raw = string(l.src[start:l.pos])

			return tok, nil
		case !hadSpace:
			return token{}, l.errorf(start, l.tagEnd(start), models.ErrMalformedToken, "attributes must be separated by whitespace")
		}

		attr, err := l.attribute(start)
		if err != nil {
			return token{}, err
		}

		if _, dup := seen[attr.Key]; dup {
			return token{}, l.errorf(start, l.tagEnd(start), models.ErrDuplicate, fmt.Sprintf("duplicate attribute %q", attr.Key))
		}

		seen[attr.Key] = struct{}{}
		tok.attrs = append(tok.attrs, attr)

		if len(tok.attrs) > MaxAttributes {
			return token{}, l.errorf(start, l.tagEnd(start), models.ErrMalformedToken, fmt.Sprintf("more than %d attributes", MaxAttributes))
		}
	}
}

func (l *lexer) attribute(tagStart int) (graph.Attr, error) {
	key, ok := l.name()
	if !ok {
		return graph.Attr{}, l.errorf(tagStart, l.tagEnd(tagStart), models.ErrMalformedToken, "invalid attribute name")
	}

	l.skipSpace()

	if l.pos >= len(l.src) || l.src[l.pos] != '=' {
		return graph.Attr{}, l.errorf(tagStart, l.tagEnd(tagStart), models.ErrMalformedToken, fmt.Sprintf("attribute %q has no value", key))
	}

	l.pos++
	l.skipSpace()

	if l.pos >= len(l.src) || (l.src[l.pos] != '"' && l.src[l.pos] != '\'') {
		return graph.Attr{}, l.errorf(tagStart, l.tagEnd(tagStart), models.ErrMalformedToken, fmt.Sprintf("attribute %q value is not quoted", key))
	}

	quote := l.src[l.pos]
	l.pos++

	end := bytes.IndexByte(l.src[l.pos:], quote)
	if end < 0 {
		return graph.Attr{}, l.errorf(tagStart, len(l.src), models.ErrMalformedToken, fmt.Sprintf("attribute %q value is unterminated", key))
	}

	raw := l.src[l.pos : l.pos+end]
	l.pos += end + 1

	if bytes.IndexByte(raw, '<') >= 0 {
		return graph.Attr{}, l.errorf(tagStart, l.tagEnd(tagStart), models.ErrMalformedToken, fmt.Sprintf("attribute %q value contains '<'", key))
	}

	value, err := unescape(raw)
	if err != nil {
		var ferr *models.FormatError
		if errors.As(err, &ferr) {
			ferr.Offset = tagStart
			ferr.Token = string(l.src[tagStart:l.tagEnd(tagStart)])
			ferr.Reason = fmt.Sprintf("attribute %q: %s", key, ferr.Reason)
		}

		return graph.Attr{}, err
	}

	return graph.Attr{Key: key, Value: value}, nil
}

// name consumes an xml name at the current position.
func (l *lexer) name() (string, bool) {
	start := l.pos
	for l.pos < len(l.src) && isNameByte(l.src[l.pos], l.pos == start) {
		l.pos++
	}

	if l.pos == start {
		return "", false
	}

	return string(l.src[start:l.pos]), true
}

func (l *lexer) skipSpace() bool {
	start := l.pos
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}

	return l.pos > start
}

// tagEnd finds the end of the tag starting at start for error reporting.
func (l *lexer) tagEnd(start int) int {
	end := bytes.IndexByte(l.src[start:], '>')
	if end < 0 {
		return len(l.src)
	}

	return start + end + 1
}

func (l *lexer) errorf(start, end int, sentinel error, reason string) error {
	if end > len(l.src) {
		end = len(l.src)
	}

	return &models.FormatError{Offset: start, Token: string(l.src[start:end]), Reason: reason, Err: sentinel}
}

var predefined = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// unescape decodes the five predefined entities and numeric character
// references. Any other reference is refused.
func unescape(raw []byte) (string, error) {
	if bytes.IndexByte(raw, '&') < 0 {
		return string(raw), nil
	}

	var sb strings.Builder

	for i := 0; i < len(raw); {
		c := raw[i]
		if c != '&' {
			sb.WriteByte(c)
			i++

			continue
		}

		end := bytes.IndexByte(raw[i:], ';')
		if end < 0 {
			return "", &models.FormatError{Reason: "unterminated character reference", Err: models.ErrMalformedToken}
		}

		ref := string(raw[i+1 : i+end])
		i += end + 1

		if strings.HasPrefix(ref, "#") {
			r, err := charRef(ref[1:])
			if err != nil {
				return "", err
			}

			sb.WriteRune(r)

			continue
		}

		v, ok := predefined[ref]
		if !ok {
			return "", &models.FormatError{Reason: fmt.Sprintf("entity reference &%s; is not accepted", ref), Err: models.ErrEntityDeclaration}
		}

		sb.WriteString(v)
	}

	return sb.String(), nil
}

func charRef(s string) (rune, error) {
	base := 10
	if strings.HasPrefix(s, "x") {
		base = 16
		s = s[1:]
	}

	n, err := strconv.ParseUint(s, base, 32)
	if err != nil || n == 0 || !utf8.ValidRune(rune(n)) {
		return 0, &models.FormatError{Reason: fmt.Sprintf("invalid character reference &#%s;", s), Err: models.ErrMalformedToken}
	}

	return rune(n), nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameByte(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == ':', c >= 0x80:
		return true
	case c >= '0' && c <= '9', c == '-', c == '.':
		return !first
	default:
		return false
	}
}

// isName reports whether s is usable as an attribute name.
func isName(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i], i == 0) {
			return false
		}
	}

	return true
}
