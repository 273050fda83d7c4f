package layout

import (
	"testing"

	"github.com/faultline-dev/faultline/internal/astmodel"
)

func scalarType(name string, size int64, atomic bool) *astmodel.FixtureType {
	return &astmodel.FixtureType{TypeKind: astmodel.KindScalar, Name: name, Size: size, AtomicQual: atomic, ConstQual: false}
}

// buildOrderBookRecord builds scenario S1's 192-byte, 3-line record:
// u64 id; u64 price; u32 qty; u32 flags; char metadata[160];
func buildOrderBookRecord() (*astmodel.FixtureRecord, *astmodel.FixtureLayoutOracle) {
	rec := &astmodel.FixtureRecord{Name: "OrderBook", Complete: true}
	rec.FieldList = []astmodel.FieldDecl{
		{Name: "id", Type: scalarType("u64", 8, false)},
		{Name: "price", Type: scalarType("u64", 8, false)},
		{Name: "qty", Type: scalarType("u32", 4, false)},
		{Name: "flags", Type: scalarType("u32", 4, false)},
		{Name: "metadata", Type: scalarType("char[160]", 160, false)},
	}
	oracle := astmodel.NewFixtureLayoutOracle()
	oracle.SetSize(rec, 192)
	oracle.SetField(rec, "id", 0)
	oracle.SetField(rec, "price", 8)
	oracle.SetField(rec, "qty", 16)
	oracle.SetField(rec, "flags", 20)
	oracle.SetField(rec, "metadata", 24)
	return rec, oracle
}

func TestBuild_LinesSpannedInvariant(t *testing.T) {
	rec, oracle := buildOrderBookRecord()
	m := Build(rec, oracle, DefaultCacheLineBytes)

	if m.LinesSpanned != 3 {
		t.Fatalf("LinesSpanned = %d, want 3 (ceil(192/64))", m.LinesSpanned)
	}
	for _, e := range m.Entries {
		if e.OffsetBytes+e.SizeBytes > int64(e.EndLine+1)*m.LineBytes {
			t.Errorf("field %s: offset+size exceeds its end line bound", e.Name)
		}
		if e.OffsetBytes < int64(e.StartLine)*m.LineBytes {
			t.Errorf("field %s: offset below its start line bound", e.Name)
		}
	}
}

func TestBuild_BucketMembershipInvariant(t *testing.T) {
	rec, oracle := buildOrderBookRecord()
	m := Build(rec, oracle, DefaultCacheLineBytes)

	for _, b := range m.Buckets() {
		for _, f := range b.Fields {
			if f.StartLine > b.Line || b.Line > f.EndLine {
				t.Errorf("bucket %d contains field %s with range [%d,%d]", b.Line, f.Name, f.StartLine, f.EndLine)
			}
		}
	}
}

func TestBuild_StraddlingFieldIsExactlyTheMismatchedSet(t *testing.T) {
	rec, oracle := buildOrderBookRecord()
	m := Build(rec, oracle, DefaultCacheLineBytes)

	straddling := make(map[string]bool)
	for _, e := range m.StraddlingFields() {
		straddling[e.Name] = true
	}
	for _, e := range m.Entries {
		want := e.StartLine != e.EndLine
		if straddling[e.Name] != want {
			t.Errorf("field %s straddling=%v, want %v", e.Name, straddling[e.Name], want)
		}
	}
}

func TestBuild_MetadataFieldStraddles(t *testing.T) {
	// metadata spans bytes [24, 184) -> lines [0, 2], straddling.
	rec, oracle := buildOrderBookRecord()
	m := Build(rec, oracle, DefaultCacheLineBytes)

	found := false
	for _, e := range m.StraddlingFields() {
		if e.Name == "metadata" {
			found = true
			if e.StartLine != 0 || e.EndLine != 2 {
				t.Errorf("metadata lines = [%d,%d], want [0,2]", e.StartLine, e.EndLine)
			}
		}
	}
	if !found {
		t.Fatal("expected metadata field to straddle lines")
	}
}

func TestBuild_AllFieldsMutableByDefault(t *testing.T) {
	rec, oracle := buildOrderBookRecord()
	m := Build(rec, oracle, DefaultCacheLineBytes)

	mutableCount := 0
	for _, e := range m.Entries {
		if e.IsMutable {
			mutableCount++
		}
	}
	if mutableCount != 5 {
		t.Errorf("mutable field count = %d, want 5", mutableCount)
	}
}

func TestBuild_AtomicFieldIsLeafNotRecursed(t *testing.T) {
	inner := &astmodel.FixtureRecord{Name: "Inner", Complete: true}
	inner.FieldList = []astmodel.FieldDecl{{Name: "x", Type: scalarType("u64", 8, false)}}

	atomicType := &astmodel.FixtureType{TypeKind: astmodel.KindRecord, Name: "atomic<Inner>", RecordDecl: inner, AtomicQual: true, Size: 8}

	outer := &astmodel.FixtureRecord{Name: "Outer", Complete: true}
	outer.FieldList = []astmodel.FieldDecl{{Name: "a", Type: atomicType}}

	oracle := astmodel.NewFixtureLayoutOracle()
	oracle.SetSize(outer, 8)
	oracle.SetField(outer, "a", 0)

	m := Build(outer, oracle, DefaultCacheLineBytes)
	for _, e := range m.Entries {
		if e.Name == "x" {
			t.Fatal("atomic field must not be recursed into")
		}
	}
}

func TestMutablePairsSupersetOfAtomicPairs(t *testing.T) {
	rec := &astmodel.FixtureRecord{Name: "Counters", Complete: true}
	rec.FieldList = []astmodel.FieldDecl{
		{Name: "r", Type: scalarType("atomic<u64>", 8, true)},
		{Name: "w", Type: scalarType("atomic<u64>", 8, true)},
	}
	oracle := astmodel.NewFixtureLayoutOracle()
	oracle.SetSize(rec, 16)
	oracle.SetField(rec, "r", 0)
	oracle.SetField(rec, "w", 8)

	m := Build(rec, oracle, DefaultCacheLineBytes)

	atomicPairs := m.AtomicPairsOnSameLine()
	mutablePairs := m.MutablePairsOnSameLine()

	if len(atomicPairs) == 0 {
		t.Fatal("expected r and w to share line 0")
	}
	if len(mutablePairs) < len(atomicPairs) {
		t.Fatalf("mutable pairs (%d) must be a superset of atomic pairs (%d)", len(mutablePairs), len(atomicPairs))
	}
}

func TestFalseSharingCandidateLines(t *testing.T) {
	rec := &astmodel.FixtureRecord{Name: "Mixed", Complete: true}
	rec.FieldList = []astmodel.FieldDecl{
		{Name: "seq", Type: scalarType("atomic<u32>", 4, true)},
		{Name: "cache", Type: scalarType("u32", 4, false)},
	}
	oracle := astmodel.NewFixtureLayoutOracle()
	oracle.SetSize(rec, 8)
	oracle.SetField(rec, "seq", 0)
	oracle.SetField(rec, "cache", 4)

	m := Build(rec, oracle, DefaultCacheLineBytes)
	lines := m.FalseSharingCandidateLines()
	if len(lines) != 1 || lines[0] != 0 {
		t.Errorf("FalseSharingCandidateLines = %v, want [0]", lines)
	}
}
