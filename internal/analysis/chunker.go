package analysis

import "strings"

// DefaultWordBudget is the chunk size used when none is configured.
const DefaultWordBudget = 1000

// Chunker splits a file's lines into model-sized chunks.
type Chunker struct {
	Estimator Estimator
	Budget    int
	NoSplit   bool
}

// SplitIntoChunks splits lines using the word estimator. See Chunker.Split.
func SplitIntoChunks(lines []string, wordBudget int, noSplit bool) []Chunk {
	c := Chunker{Estimator: WordEstimator{}, Budget: wordBudget, NoSplit: noSplit}
	return c.Split(lines)
}

// Split walks lines in order and closes the current chunk whenever the next
// line would push it over the budget. A line that exceeds the budget on its
// own becomes a one-line chunk. The returned ranges are contiguous and cover
// every line.
func (c Chunker) Split(lines []string) []Chunk {
	if len(lines) == 0 {
		return nil
	}
	if c.NoSplit {
		return []Chunk{buildChunk(lines, 1, len(lines), 0)}
	}

	est := c.Estimator
	if est == nil {
		est = WordEstimator{}
	}
	budget := c.Budget
	if budget <= 0 {
		budget = DefaultWordBudget
	}

	var chunks []Chunk
	start := 1
	size := 0

	for i, line := range lines {
		n := i + 1
		cost := est.Estimate(line)

		// Flush before overflowing, but never emit an empty chunk.
		if n > start && size+cost > budget {
			chunks = append(chunks, buildChunk(lines, start, n-1, len(chunks)))
			start = n
			size = 0
		}
		size += cost
	}

	// Flush remaining
	chunks = append(chunks, buildChunk(lines, start, len(lines), len(chunks)))
	return chunks
}

func buildChunk(lines []string, start, end, idx int) Chunk {
	return Chunk{
		Index:     idx,
		StartLine: start,
		EndLine:   end,
		Text:      strings.Join(lines[start-1:end], "\n"),
	}
}
