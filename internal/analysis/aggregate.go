package analysis

import (
	"sort"
	"strings"
)

// findingKey identifies duplicate findings. Text fields are compared
// case-insensitively.
type findingKey struct {
	line  int
	typ   string
	cause string
	fix   string
}

func keyOf(f Finding) findingKey {
	return findingKey{
		line:  f.Line,
		typ:   strings.ToLower(f.VulnerabilityType),
		cause: strings.ToLower(f.Cause),
		fix:   strings.ToLower(f.Fix),
	}
}

// Aggregate merges findings from every chunk of a file: duplicates are
// dropped (first occurrence wins) and the rest are stable-sorted by line.
func Aggregate(findings []Finding) []Finding {
	result := DeduplicateFindings(findings)
	SortFindings(result)
	return result
}

// DeduplicateFindings removes duplicate findings, keeping the first occurrence.
func DeduplicateFindings(findings []Finding) []Finding {
	seen := make(map[findingKey]bool, len(findings))
	result := make([]Finding, 0, len(findings))
	for _, f := range findings {
		k := keyOf(f)
		if !seen[k] {
			seen[k] = true
			result = append(result, f)
		}
	}
	return result
}

// SortFindings sorts findings by line. Findings on the same line keep their
// discovery order.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Line < findings[j].Line
	})
}
