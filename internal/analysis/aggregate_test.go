package analysis

import (
	"testing"
)

func TestAggregate_DedupAcrossChunks(t *testing.T) {
	npd := Finding{10, "Null Pointer Dereference", "ptr not checked", "add null check"}
	chunkA := ParseFindings("Line 10: Null Pointer Dereference — ptr not checked — FIX: add null check")
	chunkB := ParseFindings("Line 10: Null Pointer Dereference — ptr not checked — FIX: add null check")

	got := Aggregate(append(chunkA, chunkB...))
	if len(got) != 1 {
		t.Fatalf("got %d findings, want 1", len(got))
	}
	if got[0] != npd {
		t.Errorf("got %+v, want %+v", got[0], npd)
	}
}

func TestAggregate_DedupIdempotence(t *testing.T) {
	f := Finding{3, "Format String", "printf(buf)", "use %s"}
	got := Aggregate([]Finding{f, f, f})
	if len(got) != 1 {
		t.Errorf("got %d findings, want 1", len(got))
	}
	if again := Aggregate(got); len(again) != 1 || again[0] != f {
		t.Errorf("aggregating twice changed the result: %+v", again)
	}
}

func TestDeduplicateFindings_CaseInsensitiveFirstWins(t *testing.T) {
	first := Finding{5, "Buffer Overflow", "strcpy", "use strlcpy"}
	second := Finding{5, "BUFFER OVERFLOW", "STRCPY", "Use strlcpy"}
	got := DeduplicateFindings([]Finding{first, second})
	if len(got) != 1 {
		t.Fatalf("got %d findings, want 1", len(got))
	}
	if got[0] != first {
		t.Errorf("kept %+v, want first occurrence", got[0])
	}
}

func TestDeduplicateFindings_DifferentFieldsKept(t *testing.T) {
	base := Finding{5, "Buffer Overflow", "strcpy", "use strlcpy"}
	variants := []Finding{
		base,
		{6, "Buffer Overflow", "strcpy", "use strlcpy"},
		{5, "Stack Overflow", "strcpy", "use strlcpy"},
		{5, "Buffer Overflow", "memcpy", "use strlcpy"},
		{5, "Buffer Overflow", "strcpy", "check length"},
	}
	if got := DeduplicateFindings(variants); len(got) != len(variants) {
		t.Errorf("got %d findings, want %d", len(got), len(variants))
	}
}

func TestSortFindings_StableByLine(t *testing.T) {
	in := []Finding{
		{30, "C", "", ""},
		{10, "A1", "", ""},
		{20, "B", "", ""},
		{10, "A2", "", ""},
		{10, "A3", "", ""},
	}
	got := Aggregate(in)
	wantTypes := []string{"A1", "A2", "A3", "B", "C"}
	for i, f := range got {
		if f.VulnerabilityType != wantTypes[i] {
			t.Errorf("position %d = %s, want %s", i, f.VulnerabilityType, wantTypes[i])
		}
		if i > 0 && got[i-1].Line > f.Line {
			t.Errorf("line numbers decrease at %d", i)
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Errorf("got %d findings, want 0", len(got))
	}
}
