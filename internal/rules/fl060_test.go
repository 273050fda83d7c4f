package rules

import (
	"testing"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/escape"
	"github.com/faultline-dev/faultline/internal/severity"
)

func largeEscapingRecord(size int64) (*astmodel.FixtureRecord, *astmodel.FixtureLayoutOracle) {
	rec := &astmodel.FixtureRecord{Name: "Shared", Complete: true}
	rec.FieldList = []astmodel.FieldDecl{
		{Name: "flag", Type: scalar("atomic<bool>", 1, true)},
		{Name: "pad", Type: scalar("char[pad]", size-1, false)},
	}
	oracle := astmodel.NewFixtureLayoutOracle()
	oracle.SetSize(rec, size)
	oracle.SetField(rec, "flag", 0)
	oracle.SetField(rec, "pad", 1)
	return rec, oracle
}

func TestFL060_LargeEscapingRecordWithAtomicIsHigh(t *testing.T) {
	rec, oracle := largeEscapingRecord(512)
	ctx := newContext()
	ctx.Layout = oracle
	ctx.Escape = escape.NewOracle(oracle)

	var out []*diagnostic.Diagnostic
	(fl060{}).Analyze(astmodel.Decl{Record: rec}, ctx, &out)
	if len(out) != 1 || out[0].Severity != severity.High {
		t.Fatalf("expected 1 High diagnostic, got %d", len(out))
	}
	if out[0].Confidence != 0.55 {
		t.Errorf("confidence = %v, want 0.55 with atomics", out[0].Confidence)
	}
}

func TestFL060_VeryLargeRecordIsCritical(t *testing.T) {
	rec, oracle := largeEscapingRecord(4096)
	ctx := newContext()
	ctx.Layout = oracle
	ctx.Escape = escape.NewOracle(oracle)

	var out []*diagnostic.Diagnostic
	(fl060{}).Analyze(astmodel.Decl{Record: rec}, ctx, &out)
	if len(out) != 1 || out[0].Severity != severity.Critical {
		t.Fatalf("expected 1 Critical diagnostic for >=4096B, got %d", len(out))
	}
}

func TestFL060_SmallRecordDrops(t *testing.T) {
	rec, oracle := largeEscapingRecord(64)
	ctx := newContext()
	ctx.Layout = oracle
	ctx.Escape = escape.NewOracle(oracle)

	var out []*diagnostic.Diagnostic
	(fl060{}).Analyze(astmodel.Decl{Record: rec}, ctx, &out)
	if len(out) != 0 {
		t.Fatalf("expected small record to be dropped, got %d diagnostics", len(out))
	}
}
