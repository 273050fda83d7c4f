package astmodel

import "encoding/json"

// Bundle is the JSON wire format a frontend adapter emits in place of a
// live compiler session: a pre-digested declaration tree plus the
// layout-oracle answers the real compiler would otherwise be asked for
// on demand. Decoding a Bundle is not parsing the analyzed language —
// it is deserializing a format the frontend already reduced everything
// to declarations, types, and byte offsets.
type Bundle struct {
	Path      string           `json:"path"`
	Records   []bundleRecord   `json:"records"`
	Functions []bundleFunction `json:"functions"`
	Vars      []bundleVar      `json:"vars"`
	Layout    bundleLayout     `json:"layout"`
}

type bundleLocation struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	Column       int    `json:"column"`
	SystemHeader bool   `json:"systemHeader"`
}

func (l bundleLocation) toSourceLocation() SourceLocation {
	return SourceLocation{File: l.File, Line: l.Line, Column: l.Column, IsInSystemHeader: l.SystemHeader}
}

type bundleType struct {
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	RecordRef  string `json:"recordRef"`
	Incomplete bool   `json:"incomplete"`
	Dependent  bool   `json:"dependent"`
	Atomic     bool   `json:"atomic"`
	Volatile   bool   `json:"volatile"`
	Const      bool   `json:"const"`
	Size       int64  `json:"size"`
}

var typeKindNames = map[string]TypeKind{
	"scalar":    KindScalar,
	"record":    KindRecord,
	"pointer":   KindPointer,
	"reference": KindReference,
	"function":  KindFunction,
}

type bundleField struct {
	Name     string         `json:"name"`
	Type     bundleType     `json:"type"`
	Mutable  bool           `json:"mutable"`
	Location bundleLocation `json:"location"`
}

type bundleBase struct {
	Type     bundleType     `json:"type"`
	Virtual  bool           `json:"virtual"`
	Location bundleLocation `json:"location"`
}

type bundleRecord struct {
	Name     string         `json:"name"`
	Fields   []bundleField  `json:"fields"`
	Bases    []bundleBase   `json:"bases"`
	Implicit bool           `json:"implicit"`
	Lambda   bool           `json:"lambda"`
	Complete bool           `json:"complete"`
	Location bundleLocation `json:"location"`
}

type bundleParam struct {
	Name      string     `json:"name"`
	Type      bundleType `json:"type"`
	ByValue   bool       `json:"byValue"`
	SizeBytes int64      `json:"sizeBytes"`
}

type bundleLocal struct {
	Name      string     `json:"name"`
	Type      bundleType `json:"type"`
	SizeBytes int64      `json:"sizeBytes"`
}

type bundleCallee struct {
	QualifiedName          string      `json:"qualifiedName"`
	IsVirtual              bool        `json:"isVirtual"`
	IsIndirect             bool        `json:"isIndirect"`
	ReceiverType           *bundleType `json:"receiverType"`
	IsAtomicMethod         bool        `json:"isAtomicMethod"`
	AtomicMethod           string      `json:"atomicMethod"`
	MemoryOrderName        string      `json:"memoryOrderName"`
	OperatorAtomicOp       string      `json:"operatorAtomicOp"`
	LockCallKind           string      `json:"lockCallKind"`
	IsHeapAlloc            bool        `json:"isHeapAlloc"`
	IsHeapFree             bool        `json:"isHeapFree"`
	IsFunctionCallOperator bool        `json:"isFunctionCallOperator"`
	IsFunctionConstruct    bool        `json:"isFunctionConstruct"`
}

var stmtKindNames = map[string]StmtKind{
	"if":           StmtIf,
	"for":          StmtFor,
	"while":        StmtWhile,
	"do":           StmtDo,
	"rangefor":     StmtRangeFor,
	"switch":       StmtSwitch,
	"switchcase":   StmtSwitchCase,
	"membercall":   StmtMemberCall,
	"call":         StmtCall,
	"operatorcall": StmtOperatorCall,
	"construct":    StmtConstruct,
	"newexpr":      StmtNewExpr,
	"deleteexpr":   StmtDeleteExpr,
	"declstmt":     StmtDeclStmt,
	"memberexpr":   StmtMemberExpr,
	"declrefexpr":  StmtDeclRefExpr,
	"block":        StmtBlock,
	"other":        StmtOther,
}

type bundleStmt struct {
	Kind            string         `json:"kind"`
	Location        bundleLocation `json:"location"`
	Children        []bundleStmt   `json:"children"`
	Callee          *bundleCallee  `json:"callee"`
	SwitchCaseCount int            `json:"switchCaseCount"`
	DeclRefName     string         `json:"declRefName"`
	DeclRefType     *bundleType    `json:"declRefType"`
}

type bundleFunction struct {
	Name        string         `json:"name"`
	Mangled     string         `json:"mangled"`
	Virtual     bool           `json:"virtual"`
	Annotations []string       `json:"annotations"`
	Params      []bundleParam  `json:"params"`
	Locals      []bundleLocal  `json:"locals"`
	Body        *bundleStmt    `json:"body"`
	Location    bundleLocation `json:"location"`
}

type bundleVar struct {
	Name           string         `json:"name"`
	Type           bundleType     `json:"type"`
	GlobalStorage  bool           `json:"globalStorage"`
	ThreadLocal    bool           `json:"threadLocal"`
	ConstQualified bool           `json:"constQualified"`
	Location       bundleLocation `json:"location"`
}

type bundleLayout struct {
	Sizes       map[string]int64            `json:"sizes"`
	Offsets     map[string]map[string]int64 `json:"offsets"`
	BaseOffsets map[string]map[string]int64 `json:"baseOffsets"`
	Templates   map[string]string           `json:"templates"`
}

// decoder carries the record-name registry used to resolve forward and
// self references while a Bundle is being materialized into Fixture*
// values.
type decoder struct {
	records map[string]*FixtureRecord
}

// DecodeBundle parses a JSON-encoded Bundle and materializes it into a
// TranslationUnit plus the LayoutOracle the bundle's layout section
// describes.
func DecodeBundle(data []byte) (TranslationUnit, LayoutOracle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return TranslationUnit{}, nil, err
	}
	return decodeBundle(b)
}

func decodeBundle(b Bundle) (TranslationUnit, LayoutOracle, error) {
	d := &decoder{records: make(map[string]*FixtureRecord, len(b.Records))}

	for _, br := range b.Records {
		d.records[br.Name] = &FixtureRecord{
			Name:     br.Name,
			Implicit: br.Implicit,
			Lambda:   br.Lambda,
			Complete: br.Complete,
			Loc:      br.Location.toSourceLocation(),
		}
	}

	for _, br := range b.Records {
		rec := d.records[br.Name]
		for _, bf := range br.Fields {
			rec.FieldList = append(rec.FieldList, FieldDecl{
				Name:     bf.Name,
				Type:     d.resolveType(bf.Type),
				Mutable:  bf.Mutable,
				Location: bf.Location.toSourceLocation(),
			})
		}
		for _, bb := range br.Bases {
			rec.BaseList = append(rec.BaseList, BaseSpecifier{
				Type:     d.resolveType(bb.Type),
				Virtual:  bb.Virtual,
				Location: bb.Location.toSourceLocation(),
			})
		}
	}

	oracle := d.buildLayoutOracle(b.Layout)

	var decls []Decl
	for _, br := range b.Records {
		decls = append(decls, Decl{Record: d.records[br.Name]})
	}
	for _, bf := range b.Functions {
		decls = append(decls, Decl{Function: d.decodeFunction(bf)})
	}
	for _, bv := range b.Vars {
		v := d.decodeVar(bv)
		decls = append(decls, Decl{Var: &v})
	}

	return TranslationUnit{Path: b.Path, Decls: decls}, oracle, nil
}

func (d *decoder) resolveType(bt bundleType) Type {
	ft := &FixtureType{
		TypeKind:     typeKindNames[bt.Kind],
		Name:         bt.Name,
		Incomplete:   bt.Incomplete,
		Dependent:    bt.Dependent,
		AtomicQual:   bt.Atomic,
		VolatileQual: bt.Volatile,
		ConstQual:    bt.Const,
		Size:         bt.Size,
	}
	if bt.RecordRef != "" {
		ft.RecordDecl = d.records[bt.RecordRef]
	}
	return ft
}

func (d *decoder) decodeFunction(bf bundleFunction) *FixtureFunction {
	fn := &FixtureFunction{
		Name:        bf.Name,
		Mangled:     bf.Mangled,
		Virtual:     bf.Virtual,
		Annotations: bf.Annotations,
		Loc:         bf.Location.toSourceLocation(),
	}
	for _, bp := range bf.Params {
		fn.ParamList = append(fn.ParamList, ParamDecl{
			Name:      bp.Name,
			Type:      d.resolveType(bp.Type),
			ByValue:   bp.ByValue,
			SizeBytes: bp.SizeBytes,
		})
	}
	for _, bl := range bf.Locals {
		fn.LocalList = append(fn.LocalList, LocalVarDecl{
			Name:      bl.Name,
			Type:      d.resolveType(bl.Type),
			SizeBytes: bl.SizeBytes,
		})
	}
	if bf.Body != nil {
		fn.BodyStmt = d.decodeStmt(*bf.Body)
	}
	return fn
}

func (d *decoder) decodeStmt(bs bundleStmt) *FixtureStmt {
	st := &FixtureStmt{
		StmtKind:  stmtKindNames[bs.Kind],
		Loc:       bs.Location.toSourceLocation(),
		CaseCount: bs.SwitchCaseCount,
		RefName:   bs.DeclRefName,
	}
	if bs.DeclRefType != nil {
		st.RefType = d.resolveType(*bs.DeclRefType)
	}
	if bs.Callee != nil {
		st.CalleeInfo = d.decodeCallee(*bs.Callee)
	}
	for _, child := range bs.Children {
		st.Kids = append(st.Kids, d.decodeStmt(child))
	}
	return st
}

func (d *decoder) decodeCallee(bc bundleCallee) *CalleeInfo {
	ci := &CalleeInfo{
		QualifiedName:          bc.QualifiedName,
		IsVirtual:              bc.IsVirtual,
		IsIndirect:             bc.IsIndirect,
		IsAtomicMethod:         bc.IsAtomicMethod,
		AtomicMethod:           bc.AtomicMethod,
		MemoryOrderName:        bc.MemoryOrderName,
		OperatorAtomicOp:       bc.OperatorAtomicOp,
		LockCallKind:           bc.LockCallKind,
		IsHeapAlloc:            bc.IsHeapAlloc,
		IsHeapFree:             bc.IsHeapFree,
		IsFunctionCallOperator: bc.IsFunctionCallOperator,
		IsFunctionConstruct:    bc.IsFunctionConstruct,
	}
	if bc.ReceiverType != nil {
		ci.ReceiverType = d.resolveType(*bc.ReceiverType)
	}
	return ci
}

func (d *decoder) decodeVar(bv bundleVar) VarDecl {
	return VarDecl{
		Name:           bv.Name,
		Type:           d.resolveType(bv.Type),
		GlobalStorage:  bv.GlobalStorage,
		ThreadLocal:    bv.ThreadLocal,
		ConstQualified: bv.ConstQualified,
		Location:       bv.Location.toSourceLocation(),
	}
}

func (d *decoder) buildLayoutOracle(bl bundleLayout) *FixtureLayoutOracle {
	oracle := NewFixtureLayoutOracle()
	for name, size := range bl.Sizes {
		if rec, ok := d.records[name]; ok {
			oracle.SetSize(rec, size)
		}
	}
	for name, fields := range bl.Offsets {
		rec, ok := d.records[name]
		if !ok {
			continue
		}
		for field, offset := range fields {
			oracle.SetField(rec, field, offset)
		}
	}
	for name, tmpl := range bl.Templates {
		if rec, ok := d.records[name]; ok {
			oracle.SetTemplate(rec, tmpl)
		}
	}
	for name, bases := range bl.BaseOffsets {
		rec, ok := d.records[name]
		if !ok {
			continue
		}
		for baseName, offset := range bases {
			baseRec, ok := d.records[baseName]
			if !ok {
				continue
			}
			if oracle.BaseOffsets[rec] == nil {
				oracle.BaseOffsets[rec] = make(map[*FixtureRecord]int64)
			}
			oracle.BaseOffsets[rec][baseRec] = offset
		}
	}
	return oracle
}
