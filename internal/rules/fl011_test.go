package rules

import (
	"testing"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

func atomicWriteStmt() *astmodel.FixtureStmt {
	return &astmodel.FixtureStmt{
		StmtKind:   astmodel.StmtMemberCall,
		CalleeInfo: &astmodel.CalleeInfo{IsAtomicMethod: true, AtomicMethod: "store"},
	}
}

func TestFL011_SingleWriteOutsideLoopDrops(t *testing.T) {
	body := astmodel.Block(atomicWriteStmt())
	fn := &astmodel.FixtureFunction{Name: "f", Mangled: "f", BodyStmt: body}
	ctx := newContext()

	var out []*diagnostic.Diagnostic
	(fl011{}).Analyze(astmodel.Decl{Function: fn}, ctx, &out)
	if len(out) != 0 {
		t.Fatalf("expected single write outside loop to be dropped, got %d", len(out))
	}
}

func TestFL011_TwoWritesFlags(t *testing.T) {
	body := astmodel.Block(atomicWriteStmt(), atomicWriteStmt())
	fn := &astmodel.FixtureFunction{Name: "f", Mangled: "f", BodyStmt: body}
	ctx := newContext()

	var out []*diagnostic.Diagnostic
	(fl011{}).Analyze(astmodel.Decl{Function: fn}, ctx, &out)
	if len(out) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(out))
	}
	if out[0].Confidence != 0.65 {
		t.Errorf("confidence = %v, want 0.65 (no loop write)", out[0].Confidence)
	}
}

func TestFL011_SingleLoopWriteFlagsWithHigherConfidence(t *testing.T) {
	loop := &astmodel.FixtureStmt{StmtKind: astmodel.StmtFor, Kids: []astmodel.Statement{atomicWriteStmt()}}
	body := astmodel.Block(loop)
	fn := &astmodel.FixtureFunction{Name: "f", Mangled: "f", BodyStmt: body}
	ctx := newContext()

	var out []*diagnostic.Diagnostic
	(fl011{}).Analyze(astmodel.Decl{Function: fn}, ctx, &out)
	if len(out) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(out))
	}
	if out[0].Confidence != 0.80 || out[0].Severity != severity.Critical {
		t.Errorf("got severity=%v confidence=%v, want Critical/0.80", out[0].Severity, out[0].Confidence)
	}
}
