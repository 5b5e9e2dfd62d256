package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Estimator approximates how many model tokens a line of source will cost.
type Estimator interface {
	Estimate(line string) int
	Name() string
}

// WordEstimator counts whitespace-separated words.
type WordEstimator struct{}

func (WordEstimator) Estimate(line string) int { return len(strings.Fields(line)) }

func (WordEstimator) Name() string { return "words" }

// CharEstimator assumes roughly four characters per token.
type CharEstimator struct{}

func (CharEstimator) Estimate(line string) int {
	n := utf8.RuneCountInString(strings.TrimSpace(line))
	return (n + 3) / 4
}

func (CharEstimator) Name() string { return "chars" }

// NewEstimator returns an estimator by name. An empty name selects words.
func NewEstimator(name string) (Estimator, error) {
	switch name {
	case "", "words":
		return WordEstimator{}, nil
	case "chars":
		return CharEstimator{}, nil
	default:
		return nil, fmt.Errorf("unknown estimator: %s", name)
	}
}
