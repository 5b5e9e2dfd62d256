package analysis

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// fixMarker separates the cause from the suggested fix.
const fixMarker = "FIX:"

// AnchorPolicy decides which line numbers a finding line produces when it
// lists more than one.
type AnchorPolicy int

const (
	// AnchorFirst uses only the first listed number.
	AnchorFirst AnchorPolicy = iota
	// AnchorEach emits one finding per listed number.
	AnchorEach
)

// ParseAnchorPolicy converts a config value to an AnchorPolicy.
func ParseAnchorPolicy(s string) (AnchorPolicy, error) {
	switch s {
	case "", "first":
		return AnchorFirst, nil
	case "each":
		return AnchorEach, nil
	default:
		return AnchorFirst, fmt.Errorf("unknown anchor policy: %s", s)
	}
}

func (p AnchorPolicy) String() string {
	if p == AnchorEach {
		return "each"
	}
	return "first"
}

// Parser extracts findings from raw model text.
type Parser struct {
	Anchor AnchorPolicy
}

// ParseFindings parses raw model text with the default anchor policy.
func ParseFindings(raw string) []Finding {
	return Parser{}.Parse(raw)
}

// Parse returns findings in order of appearance. Lines that do not have the
// shape of a finding are skipped, as is the sentinel.
func (p Parser) Parse(raw string) []Finding {
	var findings []Finding

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimLeftFunc(line, unicode.IsSpace)
		if line == "" || IsSentinel(line) {
			continue
		}
		m, ok := matchFindingLine(line)
		if !ok {
			continue
		}
		cause, fix := splitCause(m.Rest)

		anchors := m.Numbers[:1]
		if p.Anchor == AnchorEach {
			anchors = m.Numbers
		}
		for _, n := range anchors {
			findings = append(findings, Finding{
				Line:              n,
				VulnerabilityType: m.Type,
				Cause:             cause,
				Fix:               fix,
			})
		}
	}
	return findings
}

// IsSentinel reports whether line is the no-findings phrase.
func IsSentinel(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), Sentinel)
}

func splitCause(rest string) (cause, fix string) {
	before, after, found := strings.Cut(rest, fixMarker)
	cause = trimSeparators(before)
	if found {
		fix = strings.TrimSpace(after)
	}
	return cause, fix
}

// trimSeparators strips the one dash that opens the cause and the one that
// precedes the fix marker. Content dashes survive, so "-1", "--count" and
// "i--" are kept.
func trimSeparators(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "-- "):
		s = s[2:]
	case s != "" && isDashRune(firstRune(s)):
		s = s[utf8.RuneLen(firstRune(s)):]
	}
	s = strings.TrimSpace(s)
	for {
		switch {
		case strings.HasSuffix(s, "—"), strings.HasSuffix(s, "–"):
			_, size := utf8.DecodeLastRuneInString(s)
			s = strings.TrimRightFunc(s[:len(s)-size], unicode.IsSpace)
		case s == "--" || strings.HasSuffix(s, " --"):
			s = strings.TrimRightFunc(s[:len(s)-2], unicode.IsSpace)
		case s == "-" || strings.HasSuffix(s, " -") || strings.HasSuffix(s, "\t-"):
			s = strings.TrimRightFunc(s[:len(s)-1], unicode.IsSpace)
		default:
			return s
		}
	}
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func isDashRune(r rune) bool {
	return r == '-' || r == '–' || r == '—'
}
