// Package hotpath implements the hot-path oracle: hot/cold
// classification via explicit annotation and glob patterns on
// qualified name or source file.
//
// The memoization is one small per-instance map owned by the oracle,
// never a process-global, so two analyzer runs in the same process
// with different configs never share or corrupt each other's memo
// state.
package hotpath

import (
	"path/filepath"

	"github.com/faultline-dev/faultline/internal/astmodel"
)

// hotAnnotationPayload is the attribute payload the oracle recognizes
// as an explicit hot-path marker.
const hotAnnotationPayload = "faultline_hot"

// Oracle classifies functions as hot or cold.
type Oracle struct {
	functionGlobs []string
	fileGlobs     []string
	memo          map[string]bool
}

// New builds an Oracle from configured glob lists.
func New(functionGlobs, fileGlobs []string) *Oracle {
	return &Oracle{
		functionGlobs: functionGlobs,
		fileGlobs:     fileGlobs,
		memo:          make(map[string]bool),
	}
}

// IsHot reports whether fn is hot: annotated faultline_hot, or its
// qualified name/source file matches a configured glob. Non-function
// declarations are never hot — callers should not call IsHot for
// records. Decisions are memoized by mangled name.
func (o *Oracle) IsHot(fn astmodel.FunctionDecl) bool {
	key := fn.MangledName()
	if v, ok := o.memo[key]; ok {
		return v
	}
	hot := o.classify(fn)
	o.memo[key] = hot
	return hot
}

func (o *Oracle) classify(fn astmodel.FunctionDecl) bool {
	for _, payload := range fn.AnnotationPayloads() {
		if payload == hotAnnotationPayload {
			return true
		}
	}
	name := fn.QualifiedName()
	for _, g := range o.functionGlobs {
		if matchGlob(g, name) {
			return true
		}
	}
	file := fn.Location().File
	for _, g := range o.fileGlobs {
		if matchGlob(g, file) {
			return true
		}
	}
	return false
}

// MarkHot seeds the memo set, used by the AST driver's first pass to
// pre-populate annotation-derived hot marks before the second
// rule-dispatch pass runs.
func (o *Oracle) MarkHot(fn astmodel.FunctionDecl) {
	o.memo[fn.MangledName()] = o.classify(fn)
}

// matchGlob implements fnmatch-style single-segment globbing over
// qualified names and file paths. filepath.Match already implements
// '*', '?', and '[...]' classes with the same semantics fnmatch uses;
// no third-party glob library in the retrieval pack offers anything
// filepath.Match doesn't already cover for this single-segment case.
func matchGlob(pattern, name string) bool {
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}
