package astmodel

import "testing"

const testBundleJSON = `{
  "path": "queue.cc",
  "records": [
    {
      "name": "ring_buffer",
      "complete": true,
      "location": {"file": "queue.cc", "line": 10, "column": 1},
      "fields": [
        {"name": "head", "mutable": false, "location": {"file": "queue.cc", "line": 11},
         "type": {"kind": "record", "name": "std::atomic<int>", "atomic": true, "size": 4, "recordRef": "atomic_int"}},
        {"name": "payload", "mutable": false, "location": {"file": "queue.cc", "line": 12},
         "type": {"kind": "scalar", "name": "int", "size": 4}}
      ]
    },
    {"name": "atomic_int", "complete": true, "location": {"file": "queue.cc", "line": 1}}
  ],
  "functions": [
    {
      "name": "ring_buffer::push",
      "mangled": "_ZN11ring_buffer4pushEi",
      "location": {"file": "queue.cc", "line": 20},
      "body": {
        "kind": "block",
        "children": [
          {"kind": "membercall", "location": {"file": "queue.cc", "line": 21},
           "callee": {"qualifiedName": "std::atomic<int>::store", "isAtomicMethod": true, "atomicMethod": "store"}}
        ]
      }
    }
  ],
  "layout": {
    "sizes": {"ring_buffer": 128, "atomic_int": 4},
    "offsets": {"ring_buffer": {"head": 0, "payload": 64}},
    "templates": {"atomic_int": "std::atomic"}
  }
}`

func TestDecodeBundle_MaterializesRecordsFunctionsAndLayout(t *testing.T) {
	tu, oracle, err := DecodeBundle([]byte(testBundleJSON))
	if err != nil {
		t.Fatalf("DecodeBundle: %v", err)
	}
	if tu.Path != "queue.cc" {
		t.Errorf("Path = %q", tu.Path)
	}
	if len(tu.Decls) != 3 {
		t.Fatalf("expected 3 decls (2 records + 1 function), got %d", len(tu.Decls))
	}

	var ringBuffer RecordDecl
	for _, d := range tu.Decls {
		if rec, ok := d.AsRecord(); ok && rec.QualifiedName() == "ring_buffer" {
			ringBuffer = rec
		}
	}
	if ringBuffer == nil {
		t.Fatal("ring_buffer record not found")
	}
	if oracle.SizeOf(ringBuffer) != 128 {
		t.Errorf("SizeOf(ring_buffer) = %d, want 128", oracle.SizeOf(ringBuffer))
	}

	fields := ringBuffer.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if !fields[0].Type.IsAtomicQualified() {
		t.Error("head field should resolve to an atomic-qualified type")
	}
	headOffset := oracle.OffsetOf(ringBuffer, fields[0])
	if headOffset != 0 {
		t.Errorf("OffsetOf(head) = %d, want 0", headOffset)
	}

	recDecl, ok := fields[0].Type.Record()
	if !ok || recDecl.QualifiedName() != "atomic_int" {
		t.Errorf("head field type should resolve recordRef to atomic_int, got %v ok=%v", recDecl, ok)
	}

	var fn FunctionDecl
	for _, d := range tu.Decls {
		if f, ok := d.AsFunction(); ok {
			fn = f
		}
	}
	if fn == nil {
		t.Fatal("function not found")
	}
	if fn.QualifiedName() != "ring_buffer::push" {
		t.Errorf("QualifiedName = %q", fn.QualifiedName())
	}
	body := fn.Body()
	if body == nil || len(body.Children()) != 1 {
		t.Fatalf("expected 1 statement in body, got %v", body)
	}
	call := body.Children()[0]
	if call.Callee() == nil || !call.Callee().IsAtomicMethod {
		t.Errorf("expected atomic method callee, got %+v", call.Callee())
	}
}

func TestDecodeBundle_InvalidJSONReturnsError(t *testing.T) {
	if _, _, err := DecodeBundle([]byte("{not json")); err == nil {
		t.Fatal("expected decode error for malformed JSON")
	}
}
