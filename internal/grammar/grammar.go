// Package grammar parses the small value grammars embedded in setting
// strings: flat comma-separated lists, segmented keyed lists
// ("key: v1, v2, key2: v3"), and import lists ("path as alias, ...").
//
// All parsers are single pass and linear in the input length. Items may be
// bare words drawn from letters, digits and the punctuation set
// / \ _ . - ! * ? or quoted strings (single or double quotes) whose bodies
// go through DecodeEscapes.
package grammar

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseError reports malformed setting-value syntax. Offset is the byte
// position in the input where the problem was detected.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("settings: parse error at offset %d: %s", e.Offset, e.Msg)
}

func parseErrorf(offset int, format string, args ...any) error {
	return &ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// KeyValues is one segment of a segmented list: a key followed by the items
// collected under it, in input order.
type KeyValues struct {
	Key    string
	Values []string
}

// ParseList parses a flat comma-separated list of items.
func ParseList(text string) ([]string, error) {
	s := &scanner{text: text}
	var seq []string
	for {
		if _, eof := s.skipSpace(); eof {
			return seq, nil
		}
		item, err := s.stringValue()
		if err != nil {
			return nil, err
		}
		seq = append(seq, item)
		c, eof := s.skipSpace()
		if eof {
			return seq, nil
		}
		if c != ',' {
			return nil, parseErrorf(s.pos, "expected %q or the end of text, found %q", ",", c)
		}
		s.pos++
	}
}

// ParseSegmentedList parses a list whose items are grouped under keys, each
// key introduced by a trailing colon. A comma directly after "key:" yields
// one empty item under that key rather than an empty segment.
func ParseSegmentedList(text string) ([]KeyValues, error) {
	s := &scanner{text: text}
	var segments []KeyValues
	current := -1
	afterKey := false
	for {
		c, eof := s.skipSpace()
		if eof {
			return segments, nil
		}
		if afterKey && c == ',' {
			// "key:," counts as one empty item under the fresh key.
			segments[current].Values = append(segments[current].Values, "")
			afterKey = false
			s.pos++
			continue
		}
		item, err := s.stringValue()
		if err != nil {
			return nil, err
		}
		c, eof = s.skipSpace()
		if c == ':' {
			segments = append(segments, KeyValues{Key: item})
			current = len(segments) - 1
			afterKey = true
		} else {
			if current < 0 {
				return nil, parseErrorf(s.pos,
					"the very first item must be followed by %q so it becomes the key of the following sub-list", ":")
			}
			segments[current].Values = append(segments[current].Values, item)
			afterKey = false
		}
		if eof {
			return segments, nil
		}
		if c != ',' && c != ':' {
			return nil, parseErrorf(s.pos, "expected %q, %q or the end of text, found %q", ",", ":", c)
		}
		s.pos++
	}
}

// ParseImportList parses "path as alias" pairs separated by commas into an
// alias-to-path mapping. A later duplicate alias overwrites the earlier one.
func ParseImportList(text string) (map[string]string, error) {
	s := &scanner{text: text}
	imports := map[string]string{}
	for {
		if _, eof := s.skipSpace(); eof {
			return imports, nil
		}
		path, err := s.stringValue()
		if err != nil {
			return nil, err
		}

		if _, eof := s.skipSpace(); eof {
			return nil, parseErrorf(s.pos, "unexpected end of text: expected %q", "as")
		}
		kw, err := s.keyword()
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(kw, "as") {
			return nil, parseErrorf(s.pos, "expected %q, found %q", "as", kw)
		}

		if _, eof := s.skipSpace(); eof {
			return nil, parseErrorf(s.pos, "unexpected end of text: expected the alias name")
		}
		alias, err := s.stringValue()
		if err != nil {
			return nil, err
		}
		imports[alias] = path

		c, eof := s.skipSpace()
		if eof {
			return imports, nil
		}
		if c != ',' {
			return nil, parseErrorf(s.pos, "expected %q or the end of text, found %q", ",", c)
		}
		s.pos++
	}
}

// DecodeEscapes resolves backslash escape sequences inside a quoted token
// body, following the host expression language's string-literal rules.
func DecodeEscapes(body string) (string, error) {
	backslash := strings.IndexByte(body, '\\')
	if backslash < 0 {
		return body, nil
	}
	var b strings.Builder
	b.Grow(len(body))
	b.WriteString(body[:backslash])
	for i := backslash; i < len(body); {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(body) {
			return "", parseErrorf(i, "dangling backslash at the end of the string")
		}
		switch body[i] {
		case '\\', '\'', '"', '$', '#':
			b.WriteByte(body[i])
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'x':
			i++
			start := i
			for i < len(body) && i-start < 4 && isHexDigit(body[i]) {
				i++
			}
			if i == start {
				return "", parseErrorf(start, "invalid escape sequence: \\x must be followed by hex digits")
			}
			var code rune
			for _, d := range body[start:i] {
				code = code<<4 | rune(hexValue(byte(d)))
			}
			b.WriteRune(code)
		default:
			return "", parseErrorf(i, "invalid escape sequence \\%c", body[i])
		}
	}
	return b.String(), nil
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

// scanner walks the input with exactly one token of lookahead. Separators
// are consumed by the parse loops, never by the token fetchers.
type scanner struct {
	text string
	pos  int
}

// skipSpace advances past whitespace and returns the next rune without
// consuming it. The second result is true when the input is exhausted.
func (s *scanner) skipSpace() (rune, bool) {
	for s.pos < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[s.pos:])
		if !unicode.IsSpace(r) {
			return r, false
		}
		s.pos += size
	}
	return 0, true
}

// stringValue reads one token and, when quoted, strips the quotes and
// decodes escapes.
func (s *scanner) stringValue() (string, error) {
	word, quoted, err := s.word()
	if err != nil {
		return "", err
	}
	if !quoted {
		return word, nil
	}
	decoded, err := DecodeEscapes(word[1 : len(word)-1])
	if err != nil {
		return "", err
	}
	return decoded, nil
}

// keyword reads one token that must not be quoted.
func (s *scanner) keyword() (string, error) {
	word, quoted, err := s.word()
	if err != nil {
		return "", err
	}
	if quoted {
		return "", parseErrorf(s.pos, "keyword expected, found the quoted string %s", word)
	}
	return word, nil
}

func (s *scanner) word() (string, bool, error) {
	if s.pos == len(s.text) {
		return "", false, parseErrorf(s.pos, "unexpected end of text")
	}
	start := s.pos
	r, size := utf8.DecodeRuneInString(s.text[s.pos:])
	if r == '\'' || r == '"' {
		quote := r
		s.pos += size
		escaped := false
		for s.pos < len(s.text) {
			c, n := utf8.DecodeRuneInString(s.text[s.pos:])
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == quote {
				s.pos += n
				return s.text[start:s.pos], true, nil
			}
			s.pos += n
		}
		return "", false, parseErrorf(start, "missing closing %q", quote)
	}
	for s.pos < len(s.text) {
		c, n := utf8.DecodeRuneInString(s.text[s.pos:])
		if !isWordRune(c) {
			break
		}
		s.pos += n
	}
	if s.pos == start {
		return "", false, parseErrorf(s.pos, "unexpected character %q", r)
	}
	return s.text[start:s.pos], false, nil
}

func isWordRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '/', '\\', '_', '.', '-', '!', '*', '?':
		return true
	}
	return false
}
