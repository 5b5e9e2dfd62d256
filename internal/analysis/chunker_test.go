package analysis

import (
	"fmt"
	"strings"
	"testing"
)

func makeLines(n, wordsPerLine int) []string {
	lines := make([]string, n)
	for i := range lines {
		words := make([]string, wordsPerLine)
		for j := range words {
			words[j] = fmt.Sprintf("w%d", j)
		}
		lines[i] = strings.Join(words, " ")
	}
	return lines
}

// checkCoverage asserts that chunks are sorted, contiguous and cover [1, n].
func checkCoverage(t *testing.T, chunks []Chunk, n int) {
	t.Helper()
	if len(chunks) == 0 {
		t.Fatal("no chunks")
	}
	next := 1
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has Index %d", i, c.Index)
		}
		if c.StartLine != next {
			t.Fatalf("chunk %d starts at %d, want %d", i, c.StartLine, next)
		}
		if c.EndLine < c.StartLine {
			t.Fatalf("chunk %d is empty: %d-%d", i, c.StartLine, c.EndLine)
		}
		next = c.EndLine + 1
	}
	if next != n+1 {
		t.Errorf("chunks end at %d, want %d", next-1, n)
	}
}

func TestSplitIntoChunks_Empty(t *testing.T) {
	if chunks := SplitIntoChunks(nil, 10, false); chunks != nil {
		t.Errorf("got %d chunks for empty input, want none", len(chunks))
	}
	if chunks := SplitIntoChunks(nil, 10, true); chunks != nil {
		t.Errorf("got %d chunks for empty input with noSplit, want none", len(chunks))
	}
}

// A 10-line file fits one chunk with a large budget and splits per line
// with a budget of one word.
func TestSplitIntoChunks_TenLineFile(t *testing.T) {
	lines := makeLines(10, 1)

	chunks := SplitIntoChunks(lines, 1000, false)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].StartLine != 1 || chunks[0].EndLine != 10 {
		t.Errorf("range = %d-%d, want 1-10", chunks[0].StartLine, chunks[0].EndLine)
	}

	chunks = SplitIntoChunks(lines, 1, false)
	if len(chunks) != 10 {
		t.Fatalf("got %d chunks, want 10", len(chunks))
	}
	for i, c := range chunks {
		if c.StartLine != i+1 || c.EndLine != i+1 {
			t.Errorf("chunk %d = %d-%d, want single line %d", i, c.StartLine, c.EndLine, i+1)
		}
	}
}

func TestSplitIntoChunks_NoSplit(t *testing.T) {
	for _, n := range []int{1, 7, 5000} {
		lines := makeLines(n, 20)
		chunks := SplitIntoChunks(lines, 1, true)
		if len(chunks) != 1 {
			t.Fatalf("n=%d: got %d chunks, want 1", n, len(chunks))
		}
		if chunks[0].StartLine != 1 || chunks[0].EndLine != n {
			t.Errorf("n=%d: range = %d-%d", n, chunks[0].StartLine, chunks[0].EndLine)
		}
	}
}

func TestSplitIntoChunks_Coverage(t *testing.T) {
	for _, n := range []int{1, 2, 13, 250} {
		for _, budget := range []int{1, 3, 7, 50, 100000} {
			lines := make([]string, n)
			for i := range lines {
				// Vary the cost per line, including blank lines.
				lines[i] = strings.TrimSpace(strings.Repeat("x ", i%5))
			}
			chunks := SplitIntoChunks(lines, budget, false)
			checkCoverage(t, chunks, n)
		}
	}
}

func TestSplitIntoChunks_OversizedLineKept(t *testing.T) {
	lines := []string{"a b", strings.Repeat("word ", 50), "c d"}
	chunks := SplitIntoChunks(lines, 5, false)
	checkCoverage(t, chunks, 3)

	found := false
	for _, c := range chunks {
		if c.StartLine <= 2 && 2 <= c.EndLine {
			found = true
			if !strings.Contains(c.Text, "word word") {
				t.Errorf("chunk %d does not carry the oversized line", c.Index)
			}
		}
	}
	if !found {
		t.Error("oversized line dropped")
	}
}

func TestSplitIntoChunks_BudgetRespected(t *testing.T) {
	lines := makeLines(30, 3)
	chunks := SplitIntoChunks(lines, 10, false)
	checkCoverage(t, chunks, 30)
	for _, c := range chunks {
		if words := len(strings.Fields(c.Text)); words > 10 {
			t.Errorf("chunk %d has %d words, budget 10", c.Index, words)
		}
	}
	// 3 lines of 3 words fit in 10; the fourth would not.
	if chunks[0].EndLine != 3 {
		t.Errorf("first chunk ends at %d, want 3", chunks[0].EndLine)
	}
}

func TestChunk_TextMatchesLines(t *testing.T) {
	lines := []string{"int main() {", "  char buf[8];", "  gets(buf);", "}"}
	chunks := SplitIntoChunks(lines, 4, false)
	var rebuilt []string
	for _, c := range chunks {
		rebuilt = append(rebuilt, strings.Split(c.Text, "\n")...)
		if got := c.Range().Len(); got != c.EndLine-c.StartLine+1 {
			t.Errorf("Range().Len() = %d", got)
		}
	}
	if strings.Join(rebuilt, "\n") != strings.Join(lines, "\n") {
		t.Errorf("chunk texts do not reassemble the file:\n%q", rebuilt)
	}
}

func TestChunker_DefaultsAndEstimator(t *testing.T) {
	lines := makeLines(5, 300)

	// Zero budget falls back to DefaultWordBudget: 3 lines of 300 words fit.
	chunks := Chunker{}.Split(lines)
	checkCoverage(t, chunks, 5)
	if chunks[0].EndLine != 3 {
		t.Errorf("default budget: first chunk ends at %d, want 3", chunks[0].EndLine)
	}

	chunks = Chunker{Estimator: CharEstimator{}, Budget: 1000}.Split(lines)
	checkCoverage(t, chunks, 5)
}

func TestEstimators(t *testing.T) {
	tests := []struct {
		est  Estimator
		line string
		want int
	}{
		{WordEstimator{}, "", 0},
		{WordEstimator{}, "  char buf[8];  ", 2},
		{CharEstimator{}, "", 0},
		{CharEstimator{}, "abcd", 1},
		{CharEstimator{}, "abcde", 2},
		{CharEstimator{}, "  héllo  ", 2},
	}
	for _, tt := range tests {
		if got := tt.est.Estimate(tt.line); got != tt.want {
			t.Errorf("%s.Estimate(%q) = %d, want %d", tt.est.Name(), tt.line, got, tt.want)
		}
	}
}

func TestNewEstimator(t *testing.T) {
	for name, want := range map[string]string{"": "words", "words": "words", "chars": "chars"} {
		est, err := NewEstimator(name)
		if err != nil {
			t.Fatalf("NewEstimator(%q) error: %v", name, err)
		}
		if est.Name() != want {
			t.Errorf("NewEstimator(%q).Name() = %q, want %q", name, est.Name(), want)
		}
	}
	if _, err := NewEstimator("tokens"); err == nil {
		t.Error("expected error for unknown estimator")
	}
}
