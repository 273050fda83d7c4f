package hotpath

import (
	"testing"

	"github.com/faultline-dev/faultline/internal/astmodel"
)

func fn(name, file string, payloads ...string) *astmodel.FixtureFunction {
	return &astmodel.FixtureFunction{
		Name:        name,
		Mangled:     name,
		Loc:         astmodel.SourceLocation{File: file},
		Annotations: payloads,
	}
}

func TestIsHot_Annotation(t *testing.T) {
	o := New(nil, nil)
	f := fn("orderbook::match", "match.cpp", hotAnnotationPayload)
	if !o.IsHot(f) {
		t.Fatal("annotated function should be hot")
	}
}

func TestIsHot_FunctionGlob(t *testing.T) {
	o := New([]string{"orderbook::*"}, nil)
	f := fn("orderbook::match", "match.cpp")
	if !o.IsHot(f) {
		t.Fatal("function matching configured glob should be hot")
	}
}

func TestIsHot_FileGlob(t *testing.T) {
	o := New(nil, []string{"*/hotpath/*.cpp"})
	f := fn("other::fn", "src/hotpath/match.cpp")
	if !o.IsHot(f) {
		t.Fatal("function in file matching configured glob should be hot")
	}
}

func TestIsHot_NoMatchIsCold(t *testing.T) {
	o := New([]string{"orderbook::*"}, nil)
	f := fn("coldpath::log", "log.cpp")
	if o.IsHot(f) {
		t.Fatal("unmatched function should be cold")
	}
}

func TestIsHot_MemoizedAcrossCalls(t *testing.T) {
	o := New([]string{"orderbook::*"}, nil)
	f := fn("orderbook::match", "match.cpp")

	first := o.IsHot(f)
	// Mutate the glob set after the first call; a memoized oracle must
	// not re-classify.
	o.functionGlobs = nil
	second := o.IsHot(f)
	if first != second {
		t.Fatalf("IsHot not memoized: first=%v second=%v", first, second)
	}
}

func TestMarkHot_SeedsMemoWithoutQuery(t *testing.T) {
	o := New([]string{"orderbook::*"}, nil)
	f := fn("orderbook::match", "match.cpp")
	o.MarkHot(f)

	if _, ok := o.memo[f.MangledName()]; !ok {
		t.Fatal("MarkHot should populate the memo set")
	}
	if !o.IsHot(f) {
		t.Fatal("MarkHot should have recorded a hot classification")
	}
}
