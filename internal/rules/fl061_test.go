package rules

import (
	"testing"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

func plainCallStmt() *astmodel.FixtureStmt {
	return &astmodel.FixtureStmt{StmtKind: astmodel.StmtCall, CalleeInfo: &astmodel.CalleeInfo{QualifiedName: "f"}}
}

func TestFL061_ManyCallsFlags(t *testing.T) {
	var kids []astmodel.Statement
	for i := 0; i < 8; i++ {
		kids = append(kids, plainCallStmt())
	}
	body := astmodel.Block(kids...)
	fn := &astmodel.FixtureFunction{Name: "f", Mangled: "f", BodyStmt: body}
	ctx := newContext()

	var out []*diagnostic.Diagnostic
	(fl061{}).Analyze(astmodel.Decl{Function: fn}, ctx, &out)
	if len(out) != 1 || out[0].Severity != severity.High {
		t.Fatalf("expected 1 High diagnostic for 8 calls, got %d", len(out))
	}
}

func TestFL061_ThreeVirtualCallsFlags(t *testing.T) {
	var kids []astmodel.Statement
	for i := 0; i < 3; i++ {
		kids = append(kids, virtualCallStmt())
	}
	body := astmodel.Block(kids...)
	fn := &astmodel.FixtureFunction{Name: "f", Mangled: "f", BodyStmt: body}
	ctx := newContext()

	var out []*diagnostic.Diagnostic
	(fl061{}).Analyze(astmodel.Decl{Function: fn}, ctx, &out)
	if len(out) != 1 {
		t.Fatalf("expected 1 diagnostic for 3 virtual calls, got %d", len(out))
	}
}

func TestFL061_LoopEnclosedEscalatesToCritical(t *testing.T) {
	var kids []astmodel.Statement
	for i := 0; i < 8; i++ {
		kids = append(kids, plainCallStmt())
	}
	loop := &astmodel.FixtureStmt{StmtKind: astmodel.StmtFor, Kids: kids}
	body := astmodel.Block(loop)
	fn := &astmodel.FixtureFunction{Name: "f", Mangled: "f", BodyStmt: body}
	ctx := newContext()

	var out []*diagnostic.Diagnostic
	(fl061{}).Analyze(astmodel.Decl{Function: fn}, ctx, &out)
	if len(out) != 1 || out[0].Severity != severity.Critical {
		t.Fatalf("expected 1 Critical diagnostic, got %d", len(out))
	}
}

func TestFL061_FewCallsNoSwitchDrops(t *testing.T) {
	body := astmodel.Block(plainCallStmt(), plainCallStmt())
	fn := &astmodel.FixtureFunction{Name: "f", Mangled: "f", BodyStmt: body}
	ctx := newContext()

	var out []*diagnostic.Diagnostic
	(fl061{}).Analyze(astmodel.Decl{Function: fn}, ctx, &out)
	if len(out) != 0 {
		t.Fatalf("expected 0 diagnostics for 2 plain calls, got %d", len(out))
	}
}
