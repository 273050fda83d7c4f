// Package escape implements the conservative thread-escape predicate.
//
// The catalog of sync primitives below is a *recognition* list: a
// type is thread-escaping if it recursively contains one of these, an
// atomic, a shared-ownership smart pointer, or a volatile member.
// Recognition is always structural (qualified name +
// template-specialization identity from the LayoutOracle), never a
// substring match on a stringified type, except for the documented
// POSIX-struct fallback below.
package escape

import "github.com/faultline-dev/faultline/internal/astmodel"

// syncPrimitiveNames is the fixed set of synchronization primitive
// qualified names that make a containing type thread-escaping.
var syncPrimitiveNames = map[string]bool{
	"std::mutex":              true,
	"std::recursive_mutex":    true,
	"std::shared_mutex":       true,
	"std::timed_mutex":        true,
	"std::recursive_timed_mutex": true,
	"std::condition_variable":     true,
	"std::condition_variable_any": true,
	"std::counting_semaphore":     true,
	"std::binary_semaphore":       true,
	"std::latch":                  true,
	"std::barrier":                true,
}

// posixStructNames is the POSIX C struct fallback: these have no
// record declaration in the frontend's model (they are opaque system
// typedefs), so structural template-specialization matching cannot
// apply and a qualified-name string comparison is the only available
// option — the documented exception.
var posixStructNames = map[string]bool{
	"pthread_mutex_t":   true,
	"pthread_spinlock_t": true,
	"pthread_rwlock_t":  true,
	"pthread_cond_t":    true,
	"sem_t":             true,
}

// sharedOwnershipNames is the smart-pointer catalog.
var sharedOwnershipNames = map[string]bool{
	"std::shared_ptr": true,
	"std::weak_ptr":   true,
}

// callbackNames is the function-pointer-shaped catalog used only
// where a rule explicitly requires callback evidence.
var callbackNames = map[string]bool{
	"std::function": true,
}

// Oracle decides thread-escape and callback predicates for a type,
// given a LayoutOracle to resolve template-specialization identity.
type Oracle struct {
	layout astmodel.LayoutOracle
}

func NewOracle(layout astmodel.LayoutOracle) *Oracle {
	return &Oracle{layout: layout}
}

// IsSyncPrimitive reports whether t is one of the recognized
// synchronization primitive types (directly, not recursively).
func (o *Oracle) IsSyncPrimitive(t astmodel.Type) bool {
	if posixStructNames[t.QualifiedName()] {
		return true
	}
	rec, ok := t.Record()
	if !ok {
		return false
	}
	return syncPrimitiveNames[o.layout.TemplateQualifiedName(rec)] || syncPrimitiveNames[rec.QualifiedName()]
}

// IsSharedOwnership reports whether t is shared_ptr or weak_ptr.
func (o *Oracle) IsSharedOwnership(t astmodel.Type) bool {
	rec, ok := t.Record()
	if !ok {
		return false
	}
	tmpl := o.layout.TemplateQualifiedName(rec)
	return sharedOwnershipNames[tmpl] || sharedOwnershipNames[rec.QualifiedName()]
}

// IsCallback reports whether t is a function-pointer-shaped type
// (std::function, or any KindFunction type).
func (o *Oracle) IsCallback(t astmodel.Type) bool {
	if t.Kind() == astmodel.KindFunction {
		return true
	}
	rec, ok := t.Record()
	if !ok {
		return false
	}
	tmpl := o.layout.TemplateQualifiedName(rec)
	return callbackNames[tmpl] || callbackNames[rec.QualifiedName()]
}

// IsAtomicType reports whether t itself is atomic-qualified.
func (o *Oracle) IsAtomicType(t astmodel.Type) bool {
	return t.IsAtomicQualified()
}

// TypeEscapes reports whether t recursively contains an atomic
// member, a sync primitive, a shared-ownership smart pointer, or a
// volatile-qualified member. Base classes are traversed. visited
// guards against recursive/self-referential record shapes.
func (o *Oracle) TypeEscapes(t astmodel.Type) bool {
	return o.typeEscapes(t, make(map[string]bool))
}

func (o *Oracle) typeEscapes(t astmodel.Type, visited map[string]bool) bool {
	if t.IsAtomicQualified() || t.IsVolatileQualified() {
		return true
	}
	if o.IsSyncPrimitive(t) || o.IsSharedOwnership(t) {
		return true
	}
	rec, ok := t.Record()
	if !ok {
		return false
	}
	qn := rec.QualifiedName()
	if visited[qn] {
		return false
	}
	visited[qn] = true

	for _, b := range rec.Bases() {
		if o.typeEscapes(b.Type, visited) {
			return true
		}
	}
	for _, f := range rec.Fields() {
		if o.typeEscapes(f.Type, visited) {
			return true
		}
	}
	return false
}

// RecordEscapes is a convenience wrapper for RecordDecl-shaped types.
func (o *Oracle) RecordEscapes(rec astmodel.RecordDecl) bool {
	for _, b := range rec.Bases() {
		if o.typeEscapes(b.Type, make(map[string]bool)) {
			return true
		}
	}
	for _, f := range rec.Fields() {
		if o.typeEscapes(f.Type, make(map[string]bool)) {
			return true
		}
	}
	return false
}

// IsGlobalSharedMutable implements the variable-level predicate:
// global storage, not const-qualified, not thread-local.
func (o *Oracle) IsGlobalSharedMutable(v astmodel.VarDecl) bool {
	return v.GlobalStorage && !v.ConstQualified && !v.ThreadLocal
}

// RecordContainsAtomicRecursively reports whether rec has an atomic
// member anywhere in its (base+field) closure, used by FL040 to pick
// between the atomic-backed and plain-mutable severity bands.
func (o *Oracle) RecordContainsAtomicRecursively(rec astmodel.RecordDecl) bool {
	return o.recordContainsAtomic(rec, make(map[string]bool))
}

func (o *Oracle) recordContainsAtomic(rec astmodel.RecordDecl, visited map[string]bool) bool {
	qn := rec.QualifiedName()
	if visited[qn] {
		return false
	}
	visited[qn] = true
	for _, b := range rec.Bases() {
		if b.Type.IsAtomicQualified() {
			return true
		}
		if br, ok := b.Type.Record(); ok && o.recordContainsAtomic(br, visited) {
			return true
		}
	}
	for _, f := range rec.Fields() {
		if f.Type.IsAtomicQualified() {
			return true
		}
		if fr, ok := f.Type.Record(); ok && o.recordContainsAtomic(fr, visited) {
			return true
		}
	}
	return false
}
