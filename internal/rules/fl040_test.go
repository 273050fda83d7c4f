package rules

import (
	"testing"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

func TestFL040_GlobalAtomicIsCritical(t *testing.T) {
	v := &astmodel.VarDecl{Name: "g_counter", GlobalStorage: true, Type: scalar("atomic<int>", 4, true)}
	ctx := newContext()

	var out []*diagnostic.Diagnostic
	(fl040{}).Analyze(astmodel.Decl{Var: v}, ctx, &out)
	if len(out) != 1 || out[0].Severity != severity.Critical {
		t.Fatalf("expected 1 Critical diagnostic, got %d", len(out))
	}
}

func TestFL040_GlobalNonAtomicIsHigh(t *testing.T) {
	v := &astmodel.VarDecl{Name: "g_config", GlobalStorage: true, Type: scalar("Config", 32, false)}
	ctx := newContext()

	var out []*diagnostic.Diagnostic
	(fl040{}).Analyze(astmodel.Decl{Var: v}, ctx, &out)
	if len(out) != 1 || out[0].Severity != severity.High {
		t.Fatalf("expected 1 High diagnostic, got %d", len(out))
	}
}

func TestFL040_ConstGlobalDropped(t *testing.T) {
	v := &astmodel.VarDecl{Name: "g_const", GlobalStorage: true, ConstQualified: true, Type: scalar("int", 4, false)}
	ctx := newContext()

	var out []*diagnostic.Diagnostic
	(fl040{}).Analyze(astmodel.Decl{Var: v}, ctx, &out)
	if len(out) != 0 {
		t.Fatalf("expected const global to be dropped, got %d diagnostics", len(out))
	}
}

func TestFL040_ThreadLocalDropped(t *testing.T) {
	v := &astmodel.VarDecl{Name: "tls", GlobalStorage: true, ThreadLocal: true, Type: scalar("int", 4, false)}
	ctx := newContext()

	var out []*diagnostic.Diagnostic
	(fl040{}).Analyze(astmodel.Decl{Var: v}, ctx, &out)
	if len(out) != 0 {
		t.Fatalf("expected thread-local global to be dropped, got %d diagnostics", len(out))
	}
}
