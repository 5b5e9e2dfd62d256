package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxLineBytes bounds how much of one response line the lexer examines.
	// Longer lines are truncated at a rune boundary before matching.
	MaxLineBytes = 8 << 10
	// maxDigits bounds a single line number; longer digit runs are rejected.
	maxDigits = 9
)

// findingLine is a response line that has the shape of a finding.
type findingLine struct {
	Numbers []int
	Type    string
	// Rest is everything from the separator dash onwards.
	Rest string
}

// lexer is a single-pass scanner over one response line. Every method
// advances pos monotonically, so matching is linear in the line length.
type lexer struct {
	s   string
	pos int
}

func (l *lexer) eof() bool { return l.pos >= len(l.s) }

func (l *lexer) peek() rune {
	if l.eof() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(l.s[l.pos:])
	return r
}

func (l *lexer) next() rune {
	if l.eof() {
		return utf8.RuneError
	}
	r, size := utf8.DecodeRuneInString(l.s[l.pos:])
	l.pos += size
	return r
}

func (l *lexer) skipSpace() {
	for !l.eof() && unicode.IsSpace(l.peek()) {
		l.next()
	}
}

// keyword consumes "Line" or "Lines" followed by a non-letter. Case is
// ignored on purpose: models write "line 4:" and "LINE 4:" as often as the
// requested form.
func (l *lexer) keyword() bool {
	rest := l.s[l.pos:]
	for _, kw := range []string{"lines", "line"} {
		if len(rest) < len(kw) || !strings.EqualFold(rest[:len(kw)], kw) {
			continue
		}
		after := rest[len(kw):]
		if after != "" {
			r, _ := utf8.DecodeRuneInString(after)
			if unicode.IsLetter(r) {
				continue
			}
		}
		l.pos += len(kw)
		return true
	}
	return false
}

// number consumes one digit group.
func (l *lexer) number() (int, bool) {
	start := l.pos
	n := 0
	for !l.eof() {
		c := l.s[l.pos]
		if c < '0' || c > '9' {
			break
		}
		if l.pos-start >= maxDigits {
			return 0, false
		}
		n = n*10 + int(c-'0')
		l.pos++
	}
	return n, l.pos > start
}

// numbers consumes a single number or a list/range of numbers.
func (l *lexer) numbers() ([]int, bool) {
	l.skipSpace()
	first, ok := l.number()
	if !ok {
		return nil, false
	}
	nums := []int{first}
	for {
		save := l.pos
		l.skipSpace()
		if !isListSeparator(l.peek()) {
			l.pos = save
			return nums, true
		}
		l.next()
		l.skipSpace()
		n, ok := l.number()
		if !ok {
			return nil, false
		}
		nums = append(nums, n)
	}
}

// typeText consumes the vulnerability type up to the separator dash and
// leaves pos on the dash. When the line has no spaced or wide dash, the
// first bare hyphen after a letter separates instead.
func (l *lexer) typeText() (string, bool) {
	start := l.pos
	hasLetter := false
	bare := -1
	prev := ':'
	for !l.eof() {
		at := l.pos
		r := l.next()
		if isSeparatorDash(prev, r, l.peek()) {
			if !hasLetter {
				return "", false
			}
			l.pos = at
			return strings.TrimSpace(l.s[start:at]), true
		}
		if r == '-' && hasLetter && bare < 0 {
			bare = at
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		prev = r
	}
	if bare < 0 {
		return "", false
	}
	l.pos = bare
	return strings.TrimSpace(l.s[start:bare]), true
}

// matchFindingLine reports whether line has the shape
//
//	Line[s] <n>[(sep <n>)...]: <type> <dash> <rest>
//
// where sep is one of - – — , / & and dash is one of - – —. The caller is
// expected to have trimmed leading whitespace.
func matchFindingLine(line string) (findingLine, bool) {
	l := &lexer{s: truncateLine(line)}

	if !l.keyword() {
		return findingLine{}, false
	}
	nums, ok := l.numbers()
	if !ok {
		return findingLine{}, false
	}
	l.skipSpace()
	if l.next() != ':' {
		return findingLine{}, false
	}
	typ, ok := l.typeText()
	if !ok {
		return findingLine{}, false
	}

	return findingLine{
		Numbers: nums,
		Type:    typ,
		Rest:    l.s[l.pos:],
	}, true
}

func isListSeparator(r rune) bool {
	switch r {
	case '-', '–', '—', ',', '/', '&':
		return true
	}
	return false
}

// isSeparatorDash treats en and em dashes as separators anywhere. An ASCII
// hyphen only separates when it touches whitespace, so hyphenated types such
// as "Use-After-Free" stay intact.
func isSeparatorDash(prev, r, next rune) bool {
	switch r {
	case '–', '—':
		return true
	case '-':
		return unicode.IsSpace(prev) || unicode.IsSpace(next) || prev == ':'
	}
	return false
}

func truncateLine(s string) string {
	if len(s) <= MaxLineBytes {
		return s
	}
	cut := MaxLineBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
