package astmodel

// SourceLocation identifies a point in the analyzed source, as reported
// by the frontend's source manager collaborator.
type SourceLocation struct {
	File            string
	Line            int
	Column          int
	IsInSystemHeader bool
}

// TranslationUnit is the root the AST driver walks: every non-system
// declaration in one compiled source file.
type TranslationUnit struct {
	Path  string
	Decls []Decl
}

// LayoutOracle answers the per-record and per-type layout questions
// the compiler frontend is responsible for: total size, field and
// base-subobject byte offsets, and the template-specialization name
// needed for structural (not string-based) atomic/shared_ptr
// detection.
type LayoutOracle interface {
	// SizeOf returns a record's total size in bytes including
	// padding and virtual-base subobjects.
	SizeOf(rec RecordDecl) int64
	// OffsetOf returns a direct field's absolute byte offset within
	// rec, including any enclosing base-class offset already folded
	// in by the caller.
	OffsetOf(rec RecordDecl, field FieldDecl) int64
	// BaseOffsetOf returns a base subobject's byte offset within rec.
	BaseOffsetOf(rec RecordDecl, base BaseSpecifier) int64
	// TemplateQualifiedName returns the qualified name of the class
	// template a record instantiates ("std::atomic", "std::shared_ptr",
	// ...), or "" if rec is not a template specialization.
	TemplateQualifiedName(rec RecordDecl) string
}
