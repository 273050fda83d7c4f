package astmodel

// The types below are minimal, literal implementations of this
// package's interfaces for use in tests: both this package's and
// every consumer's. Production frontends supply their own
// implementations backed by a real compiler; these exist so that
// rule/refiner/layout tests can build declarative fixtures without a
// parser.

// FixtureType is a literal Type.
type FixtureType struct {
	TypeKind       TypeKind
	Name           string
	RecordDecl     *FixtureRecord
	Incomplete     bool
	Dependent      bool
	AtomicQual     bool
	VolatileQual   bool
	ConstQual      bool
	Size           int64
}

func (t *FixtureType) Kind() TypeKind         { return t.TypeKind }
func (t *FixtureType) QualifiedName() string  { return t.Name }
func (t *FixtureType) IsIncomplete() bool     { return t.Incomplete }
func (t *FixtureType) IsDependent() bool      { return t.Dependent }
func (t *FixtureType) IsAtomicQualified() bool   { return t.AtomicQual }
func (t *FixtureType) IsVolatileQualified() bool { return t.VolatileQual }
func (t *FixtureType) IsConstQualified() bool    { return t.ConstQual }
func (t *FixtureType) SizeBytes() int64       { return t.Size }
func (t *FixtureType) Record() (RecordDecl, bool) {
	if t.RecordDecl == nil {
		return nil, false
	}
	return t.RecordDecl, true
}

// FixtureRecord is a literal RecordDecl.
type FixtureRecord struct {
	Name       string
	FieldList  []FieldDecl
	BaseList   []BaseSpecifier
	Implicit   bool
	Lambda     bool
	Complete   bool
	Loc        SourceLocation
}

func (r *FixtureRecord) QualifiedName() string   { return r.Name }
func (r *FixtureRecord) Fields() []FieldDecl     { return r.FieldList }
func (r *FixtureRecord) Bases() []BaseSpecifier  { return r.BaseList }
func (r *FixtureRecord) IsImplicit() bool        { return r.Implicit }
func (r *FixtureRecord) IsLambda() bool          { return r.Lambda }
func (r *FixtureRecord) IsComplete() bool        { return r.Complete }
func (r *FixtureRecord) Location() SourceLocation { return r.Loc }

// FixtureFunction is a literal FunctionDecl.
type FixtureFunction struct {
	Name        string
	Mangled     string
	BodyStmt    Statement
	ParamList   []ParamDecl
	LocalList   []LocalVarDecl
	Virtual     bool
	Annotations []string
	Loc         SourceLocation
}

func (f *FixtureFunction) QualifiedName() string       { return f.Name }
func (f *FixtureFunction) MangledName() string         { return f.Mangled }
func (f *FixtureFunction) HasBody() bool               { return f.BodyStmt != nil }
func (f *FixtureFunction) Body() Statement              { return f.BodyStmt }
func (f *FixtureFunction) Params() []ParamDecl          { return f.ParamList }
func (f *FixtureFunction) Locals() []LocalVarDecl       { return f.LocalList }
func (f *FixtureFunction) IsVirtual() bool              { return f.Virtual }
func (f *FixtureFunction) AnnotationPayloads() []string { return f.Annotations }
func (f *FixtureFunction) Location() SourceLocation     { return f.Loc }

// FixtureStmt is a literal Statement.
type FixtureStmt struct {
	StmtKind    StmtKind
	Loc         SourceLocation
	Kids        []Statement
	CalleeInfo  *CalleeInfo
	CaseCount   int
	RefName     string
	RefType     Type
}

func (s *FixtureStmt) Kind() StmtKind          { return s.StmtKind }
func (s *FixtureStmt) Location() SourceLocation { return s.Loc }
func (s *FixtureStmt) Children() []Statement    { return s.Kids }
func (s *FixtureStmt) Callee() *CalleeInfo      { return s.CalleeInfo }
func (s *FixtureStmt) SwitchCaseCount() int     { return s.CaseCount }
func (s *FixtureStmt) DeclRefName() string      { return s.RefName }
func (s *FixtureStmt) DeclRefType() Type        { return s.RefType }

// Block is a convenience constructor for a StmtBlock wrapping children.
func Block(children ...Statement) *FixtureStmt {
	return &FixtureStmt{StmtKind: StmtBlock, Kids: children}
}

// FixtureLayoutOracle is a literal LayoutOracle driven by explicit
// per-record/per-field offset maps, so tests can state exact byte
// layouts without recomputing compiler padding rules.
type FixtureLayoutOracle struct {
	Sizes      map[*FixtureRecord]int64
	Offsets    map[*FixtureRecord]map[string]int64
	BaseOffsets map[*FixtureRecord]map[*FixtureRecord]int64
	Templates  map[*FixtureRecord]string
}

func NewFixtureLayoutOracle() *FixtureLayoutOracle {
	return &FixtureLayoutOracle{
		Sizes:       make(map[*FixtureRecord]int64),
		Offsets:     make(map[*FixtureRecord]map[string]int64),
		BaseOffsets: make(map[*FixtureRecord]map[*FixtureRecord]int64),
		Templates:   make(map[*FixtureRecord]string),
	}
}

func (o *FixtureLayoutOracle) SizeOf(rec RecordDecl) int64 {
	if fr, ok := rec.(*FixtureRecord); ok {
		return o.Sizes[fr]
	}
	return 0
}

func (o *FixtureLayoutOracle) OffsetOf(rec RecordDecl, field FieldDecl) int64 {
	fr, ok := rec.(*FixtureRecord)
	if !ok {
		return 0
	}
	m, ok := o.Offsets[fr]
	if !ok {
		return 0
	}
	return m[field.Name]
}

func (o *FixtureLayoutOracle) BaseOffsetOf(rec RecordDecl, base BaseSpecifier) int64 {
	fr, ok := rec.(*FixtureRecord)
	if !ok {
		return 0
	}
	baseRec, ok := base.Type.Record()
	if !ok {
		return 0
	}
	baseFr, ok := baseRec.(*FixtureRecord)
	if !ok {
		return 0
	}
	m, ok := o.BaseOffsets[fr]
	if !ok {
		return 0
	}
	return m[baseFr]
}

func (o *FixtureLayoutOracle) TemplateQualifiedName(rec RecordDecl) string {
	if fr, ok := rec.(*FixtureRecord); ok {
		return o.Templates[fr]
	}
	return ""
}

// SetField registers a field's absolute byte offset for SizeOf/OffsetOf.
func (o *FixtureLayoutOracle) SetField(rec *FixtureRecord, fieldName string, offset int64) {
	if o.Offsets[rec] == nil {
		o.Offsets[rec] = make(map[string]int64)
	}
	o.Offsets[rec][fieldName] = offset
}

// SetSize registers a record's total size in bytes.
func (o *FixtureLayoutOracle) SetSize(rec *FixtureRecord, size int64) {
	o.Sizes[rec] = size
}

// SetTemplate registers the class template a record instantiates.
func (o *FixtureLayoutOracle) SetTemplate(rec *FixtureRecord, qualifiedName string) {
	o.Templates[rec] = qualifiedName
}
