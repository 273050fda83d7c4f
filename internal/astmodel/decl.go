// Package astmodel defines the abstract declaration, statement, and
// collaborator interfaces the rule engine and AST driver consume.
//
// The analyzer never parses the target systems language itself; the
// real compiler frontend is an external collaborator. This package is
// the seam: a frontend adapter (Clang libTooling, a custom parser, or
// — in tests — a literal fixture) implements these interfaces;
// nothing under internal/rules knows or cares which.
package astmodel

// TypeKind distinguishes the handful of type shapes rules need to
// reason about. It is deliberately coarse: the LayoutOracle answers
// finer questions (is-atomic, is-constant, ...).
type TypeKind int

const (
	KindScalar TypeKind = iota
	KindRecord
	KindPointer
	KindReference
	KindFunction
)

// Type is the frontend's handle on a resolved type. Implementations
// are opaque to the rule engine; every predicate needed is exposed
// through LayoutOracle or EscapeOracle, never by inspecting Type
// directly — structural shape, never a substring search on a
// stringified type name.
type Type interface {
	Kind() TypeKind
	// QualifiedName is the fully qualified type name, used only for
	// fixed-set structural comparisons (sync primitive catalogs,
	// atomic/shared_ptr template names) — never for pattern matching.
	QualifiedName() string
	// Record returns the underlying RecordDecl when Kind() == KindRecord
	// and the record is complete; ok is false for incomplete or
	// dependent record types, which rules must skip silently.
	Record() (RecordDecl, bool)
	// IsIncomplete, IsDependent, IsAtomicQualified, IsVolatileQualified,
	// IsConstQualified mirror the layout-oracle predicates that apply
	// to any type, not just records.
	IsIncomplete() bool
	IsDependent() bool
	IsAtomicQualified() bool
	IsVolatileQualified() bool
	IsConstQualified() bool
	// SizeBytes is the type's size; meaningless (0) for incomplete or
	// dependent types.
	SizeBytes() int64
}

// FieldDecl is one member of a RecordDecl.
type FieldDecl struct {
	Name     string
	Type     Type
	Mutable  bool // explicit `mutable` keyword
	Location SourceLocation
}

// BaseSpecifier is one base-class subobject of a RecordDecl.
type BaseSpecifier struct {
	Type     Type
	Virtual  bool
	Location SourceLocation
}

// RecordDecl is a struct/class/union declaration.
type RecordDecl interface {
	QualifiedName() string
	Fields() []FieldDecl
	Bases() []BaseSpecifier
	IsImplicit() bool
	IsLambda() bool
	IsComplete() bool
	Location() SourceLocation
}

// ParamDecl is one function parameter.
type ParamDecl struct {
	Name       string
	Type       Type
	ByValue    bool // true unless the parameter type is a reference or pointer
	SizeBytes  int64
}

// LocalVarDecl is one local variable declared directly in a function body.
type LocalVarDecl struct {
	Name      string
	Type      Type
	SizeBytes int64
}

// FunctionDecl is a function or method declaration, the unit the
// HotPathOracle classifies and most rules walk the body of.
type FunctionDecl interface {
	QualifiedName() string
	MangledName() string
	HasBody() bool
	Body() Statement
	Params() []ParamDecl
	Locals() []LocalVarDecl
	IsVirtual() bool
	// AnnotationPayloads returns the payload strings of every
	// attribute/annotation attached to the declaration, for
	// HotPathOracle's faultline_hot check.
	AnnotationPayloads() []string
	Location() SourceLocation
}

// Decl is the union type the AST driver iterates: a RecordDecl, a
// FunctionDecl, or a VarDecl. Exactly one of AsRecord/AsFunction/AsVar
// returns ok=true.
type Decl struct {
	Record   RecordDecl
	Function FunctionDecl
	Var      *VarDecl
}

func (d Decl) AsRecord() (RecordDecl, bool) {
	if d.Record != nil {
		return d.Record, true
	}
	return nil, false
}

func (d Decl) AsFunction() (FunctionDecl, bool) {
	if d.Function != nil {
		return d.Function, true
	}
	return nil, false
}

func (d Decl) AsVar() (*VarDecl, bool) {
	if d.Var != nil {
		return d.Var, true
	}
	return nil, false
}

// Location returns the declaration's source location regardless of
// which union arm is populated.
func (d Decl) Location() SourceLocation {
	switch {
	case d.Record != nil:
		return d.Record.Location()
	case d.Function != nil:
		return d.Function.Location()
	case d.Var != nil:
		return d.Var.Location
	default:
		return SourceLocation{}
	}
}

// VarDecl is a variable declaration at any storage duration, used by
// EscapeAnalysis's global-shared-mutable classification.
type VarDecl struct {
	Name           string
	Type           Type
	GlobalStorage  bool
	ThreadLocal    bool
	ConstQualified bool
	Location       SourceLocation
}
