package ir

import "testing"

func block(name string, preds, succs []int, instrs ...*IRInstruction) *IRBasicBlock {
	return &IRBasicBlock{Name: name, Predecessors: preds, Successors: succs, Instructions: instrs}
}

func TestAnalyze_AllocaBytesWithArray(t *testing.T) {
	fn := &IRFunction{
		MangledName:   "_Z3fooi",
		DemangledName: "foo(int)",
		BasicBlocks: []*IRBasicBlock{
			block("entry", nil, nil,
				&IRInstruction{Kind: InstrAlloca, Name: "buf", ElementSize: 8, ArrayCount: 320},
				&IRInstruction{Kind: InstrAlloca, Name: "scalar", ElementSize: 4},
			),
		},
	}
	pm := Analyze(&IRModule{Functions: []*IRFunction{fn}})
	p, ok := pm.ExactMangled("_Z3fooi")
	if !ok {
		t.Fatal("expected profile for _Z3fooi")
	}
	if p.TotalAllocaBytes != 320*8+4 {
		t.Errorf("TotalAllocaBytes = %d, want %d", p.TotalAllocaBytes, 320*8+4)
	}
	if len(p.Allocas) != 2 || !p.Allocas[0].IsArray || p.Allocas[1].IsArray {
		t.Errorf("unexpected alloca records: %+v", p.Allocas)
	}
}

func TestAnalyze_SeqCstAndFenceCounts(t *testing.T) {
	fn := &IRFunction{
		MangledName: "_Z3bar",
		BasicBlocks: []*IRBasicBlock{
			block("entry", nil, nil,
				&IRInstruction{Kind: InstrAtomicStore, OrderingName: "seq_cst"},
				&IRInstruction{Kind: InstrAtomicLoad, OrderingName: "relaxed"},
				&IRInstruction{Kind: InstrFence, OrderingName: "seq_cst"},
			),
		},
	}
	pm := Analyze(&IRModule{Functions: []*IRFunction{fn}})
	p, _ := pm.ExactMangled("_Z3bar")
	if p.SeqCstCount != 2 {
		t.Errorf("SeqCstCount = %d, want 2", p.SeqCstCount)
	}
	if p.FenceCount != 1 {
		t.Errorf("FenceCount = %d, want 1", p.FenceCount)
	}
	if len(p.Atomics) != 3 {
		t.Errorf("len(Atomics) = %d, want 3", len(p.Atomics))
	}
}

func TestAnalyze_BackEdgeHeuristicFlagsLoop(t *testing.T) {
	// entry -> loop -> exit, loop -> loop (self) and loop's successor
	// "loop" is also its own predecessor via the self-loop edge.
	fn := &IRFunction{
		MangledName: "_Z4loopv",
		BasicBlocks: []*IRBasicBlock{
			block("entry", nil, []int{1}),
			block("loop", []int{0, 1}, []int{1, 2},
				&IRInstruction{Kind: InstrAlloca, Name: "tmp", ElementSize: 4},
			),
			block("exit", []int{1}, nil),
		},
	}
	pm := Analyze(&IRModule{Functions: []*IRFunction{fn}})
	p, _ := pm.ExactMangled("_Z4loopv")
	if p.LoopCount != 1 {
		t.Errorf("LoopCount = %d, want 1", p.LoopCount)
	}
}

func TestAnalyze_DirectHeapCallRecorded(t *testing.T) {
	fn := &IRFunction{
		MangledName: "_Z3fooi",
		BasicBlocks: []*IRBasicBlock{
			block("entry", nil, nil,
				&IRInstruction{Kind: InstrCall, Callee: "malloc"},
				&IRInstruction{Kind: InstrCall, Callee: "someFunc"},
			),
		},
	}
	pm := Analyze(&IRModule{Functions: []*IRFunction{fn}})
	p, _ := pm.ExactMangled("_Z3fooi")
	if p.DirectCallCount != 2 {
		t.Errorf("DirectCallCount = %d, want 2", p.DirectCallCount)
	}
	if len(p.HeapCallSites) != 1 || p.HeapCallSites[0].Name != "malloc" {
		t.Errorf("HeapCallSites = %+v, want one malloc entry", p.HeapCallSites)
	}
}

func TestAnalyze_IndirectCallRecordsSyntheticSite(t *testing.T) {
	fn := &IRFunction{
		MangledName: "_Z3fooi",
		BasicBlocks: []*IRBasicBlock{
			block("entry", nil, nil, &IRInstruction{Kind: InstrCall, Indirect: true}),
		},
	}
	pm := Analyze(&IRModule{Functions: []*IRFunction{fn}})
	p, _ := pm.ExactMangled("_Z3fooi")
	if p.IndirectCallCount != 1 {
		t.Errorf("IndirectCallCount = %d, want 1", p.IndirectCallCount)
	}
	if len(p.HeapCallSites) != 1 || !p.HeapCallSites[0].Indirect {
		t.Errorf("expected a synthetic indirect call site, got %+v", p.HeapCallSites)
	}
}

func TestAnalyze_IntrinsicsSkipped(t *testing.T) {
	fn := &IRFunction{
		MangledName: "_Z3fooi",
		BasicBlocks: []*IRBasicBlock{
			block("entry", nil, nil, &IRInstruction{Kind: InstrIntrinsic}),
		},
	}
	pm := Analyze(&IRModule{Functions: []*IRFunction{fn}})
	p, _ := pm.ExactMangled("_Z3fooi")
	if p.DirectCallCount != 0 || len(p.Atomics) != 0 || p.TotalAllocaBytes != 0 {
		t.Errorf("expected intrinsic to contribute nothing, got %+v", p)
	}
}
