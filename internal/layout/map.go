// Package layout computes exact per-record cache-line occupancy from
// compiler-reported field layout.
//
// The structure is fixed-geometry: one bucket per cache line, each
// bucket listing every field that overlaps it.
package layout

import (
	"github.com/faultline-dev/faultline/internal/astmodel"
)

// DefaultCacheLineBytes is the cache-line width used when a config
// does not override it.
const DefaultCacheLineBytes = 64

// FieldLineEntry describes one field's placement within a record's
// cache-line geometry.
type FieldLineEntry struct {
	Field       astmodel.FieldDecl
	Name        string
	OffsetBytes int64
	SizeBytes   int64
	StartLine   int
	EndLine     int
	Straddles   bool
	IsAtomic    bool
	IsMutable   bool
}

// CacheLineBucket is every field occupying one cache line.
type CacheLineBucket struct {
	Line          int
	Fields        []*FieldLineEntry
	AtomicCount   int
	MutableCount  int
}

// CacheLineMap is the per-record field-to-line mapping.
type CacheLineMap struct {
	Record       astmodel.RecordDecl
	SizeBytes    int64
	LineBytes    int64
	LinesSpanned int
	Entries      []*FieldLineEntry
	buckets      map[int]*CacheLineBucket
}

// Build walks rec's bases (non-virtual, then virtual), then direct
// fields in declaration order, computing absolute offsets and line
// ranges. Nested complete non-atomic record fields recurse at the
// field's absolute offset; atomic fields are leaves. Incomplete
// base/field types are skipped, never faulted on.
func Build(rec astmodel.RecordDecl, oracle astmodel.LayoutOracle, lineBytes int64) *CacheLineMap {
	if lineBytes <= 0 {
		lineBytes = DefaultCacheLineBytes
	}
	size := oracle.SizeOf(rec)
	m := &CacheLineMap{
		Record:       rec,
		SizeBytes:    size,
		LineBytes:    lineBytes,
		LinesSpanned: linesSpanned(size, lineBytes),
		buckets:      make(map[int]*CacheLineBucket),
	}
	for i := 0; i < m.LinesSpanned; i++ {
		m.buckets[i] = &CacheLineBucket{Line: i}
	}

	var nonVirtual, virtual []astmodel.BaseSpecifier
	for _, b := range rec.Bases() {
		if b.Virtual {
			virtual = append(virtual, b)
		} else {
			nonVirtual = append(nonVirtual, b)
		}
	}
	for _, b := range append(nonVirtual, virtual...) {
		baseRec, ok := b.Type.Record()
		if !ok || !baseRec.IsComplete() {
			continue
		}
		baseOffset := oracle.BaseOffsetOf(rec, b)
		m.addRecordAt(baseRec, oracle, baseOffset, lineBytes)
	}

	for _, f := range rec.Fields() {
		offset := oracle.OffsetOf(rec, f)
		m.addField(f, offset, lineBytes)

		if f.Type.IsAtomicQualified() {
			continue // atomic fields are leaves, never recursed into
		}
		nested, ok := f.Type.Record()
		if !ok || !nested.IsComplete() {
			continue
		}
		m.addRecordAt(nested, oracle, offset, lineBytes)
	}

	return m
}

func (m *CacheLineMap) addRecordAt(rec astmodel.RecordDecl, oracle astmodel.LayoutOracle, base int64, lineBytes int64) {
	for _, f := range rec.Fields() {
		offset := base + oracle.OffsetOf(rec, f)
		m.addField(f, offset, lineBytes)

		if f.Type.IsAtomicQualified() {
			continue
		}
		nested, ok := f.Type.Record()
		if !ok || !nested.IsComplete() {
			continue
		}
		m.addRecordAt(nested, oracle, offset, lineBytes)
	}
}

func (m *CacheLineMap) addField(f astmodel.FieldDecl, offset int64, lineBytes int64) {
	size := f.Type.SizeBytes()
	start := int(offset / lineBytes)
	end := int((offset + size - 1) / lineBytes)
	entry := &FieldLineEntry{
		Field:       f,
		Name:        f.Name,
		OffsetBytes: offset,
		SizeBytes:   size,
		StartLine:   start,
		EndLine:     end,
		Straddles:   start != end,
		IsAtomic:    isAtomic(f.Type),
		IsMutable:   isMutable(f),
	}
	m.Entries = append(m.Entries, entry)

	for line := start; line <= end; line++ {
		b, ok := m.buckets[line]
		if !ok {
			b = &CacheLineBucket{Line: line}
			m.buckets[line] = b
		}
		b.Fields = append(b.Fields, entry)
		if entry.IsAtomic {
			b.AtomicCount++
		}
		if entry.IsMutable {
			b.MutableCount++
		}
	}
}

func linesSpanned(sizeBytes, lineBytes int64) int {
	if sizeBytes <= 0 {
		return 0
	}
	return int((sizeBytes + lineBytes - 1) / lineBytes)
}

// isAtomic reports whether t's canonical type carries the language's
// atomic qualifier, or is a template instantiation of atomic/atomic_ref
// — detected structurally via the field's own IsAtomicQualified, which
// a real frontend derives from the qualifier or from
// template-specialization identity, never from a stringified type name.
func isAtomic(t astmodel.Type) bool {
	return t.IsAtomicQualified()
}

// isMutable reports whether a field is mutable: explicitly marked
// mutable, or its type is not const-qualified.
func isMutable(f astmodel.FieldDecl) bool {
	return f.Mutable || !f.Type.IsConstQualified()
}

// Bucket returns the bucket at line, or nil if line is out of range.
func (m *CacheLineMap) Bucket(line int) *CacheLineBucket {
	return m.buckets[line]
}

// Buckets returns every bucket in line order.
func (m *CacheLineMap) Buckets() []*CacheLineBucket {
	out := make([]*CacheLineBucket, 0, m.LinesSpanned)
	for i := 0; i < m.LinesSpanned; i++ {
		if b, ok := m.buckets[i]; ok {
			out = append(out, b)
		}
	}
	return out
}
