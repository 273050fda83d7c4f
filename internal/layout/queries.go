package layout

// FieldPair is an unordered pair of distinct fields sharing a line.
type FieldPair struct {
	A, B *FieldLineEntry
	Line int
}

// StraddlingFields returns every field whose StartLine != EndLine.
func (m *CacheLineMap) StraddlingFields() []*FieldLineEntry {
	var out []*FieldLineEntry
	for _, e := range m.Entries {
		if e.Straddles {
			out = append(out, e)
		}
	}
	return out
}

// MutablePairsOnSameLine returns every unordered pair of distinct
// mutable fields that share at least one bucket, one entry per
// (pair, line) occurrence.
func (m *CacheLineMap) MutablePairsOnSameLine() []FieldPair {
	return pairsOnSameLine(m, func(e *FieldLineEntry) bool { return e.IsMutable })
}

// AtomicPairsOnSameLine returns every unordered pair of distinct
// atomic fields that share at least one bucket.
func (m *CacheLineMap) AtomicPairsOnSameLine() []FieldPair {
	return pairsOnSameLine(m, func(e *FieldLineEntry) bool { return e.IsAtomic })
}

func pairsOnSameLine(m *CacheLineMap, keep func(*FieldLineEntry) bool) []FieldPair {
	var out []FieldPair
	for _, b := range m.Buckets() {
		var matching []*FieldLineEntry
		for _, f := range b.Fields {
			if keep(f) {
				matching = append(matching, f)
			}
		}
		for i := 0; i < len(matching); i++ {
			for j := i + 1; j < len(matching); j++ {
				if matching[i] == matching[j] {
					continue
				}
				out = append(out, FieldPair{A: matching[i], B: matching[j], Line: b.Line})
			}
		}
	}
	return out
}

// FalseSharingCandidateLines returns line indices with atomicCount > 0
// and mutableCount > atomicCount: a mixed atomic + non-atomic mutable
// surface on the same line.
func (m *CacheLineMap) FalseSharingCandidateLines() []int {
	var out []int
	for _, b := range m.Buckets() {
		if b.AtomicCount > 0 && b.MutableCount > b.AtomicCount {
			out = append(out, b.Line)
		}
	}
	return out
}
