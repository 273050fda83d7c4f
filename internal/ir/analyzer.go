package ir

// Analyze walks every defined function in mod and returns a ProfileMap
// keyed by mangled name.
func Analyze(mod *IRModule) *ProfileMap {
	pm := NewProfileMap()
	for _, fn := range mod.Functions {
		pm.Add(analyzeFunction(fn))
	}
	return pm
}

func analyzeFunction(fn *IRFunction) *IRFunctionProfile {
	p := &IRFunctionProfile{
		MangledName:     fn.MangledName,
		DemangledName:   fn.DemangledName,
		BasicBlockCount: len(fn.BasicBlocks),
	}

	for idx, bb := range fn.BasicBlocks {
		inLoop := bb.inLoop(idx)
		if inLoop {
			p.LoopCount++
		}
		for _, instr := range bb.Instructions {
			analyzeInstruction(p, instr, inLoop)
		}
	}
	return p
}

func analyzeInstruction(p *IRFunctionProfile, instr *IRInstruction, inLoop bool) {
	switch instr.Kind {
	case InstrAlloca:
		size := instr.AllocaBytes()
		p.TotalAllocaBytes += size
		p.Allocas = append(p.Allocas, AllocaRecord{
			Name:    instr.Name,
			Size:    size,
			IsArray: instr.IsArray(),
		})

	case InstrAtomicLoad, InstrAtomicStore, InstrAtomicRMW, InstrAtomicCmpXchg, InstrFence:
		op := atomicOpName(instr.Kind)
		ordinal := OrderingOrdinal(instr.OrderingName)
		p.Atomics = append(p.Atomics, AtomicEvent{
			Op:              op,
			OrderingName:    instr.OrderingName,
			OrderingOrdinal: ordinal,
			InLoop:          inLoop,
			File:            instr.DebugFile,
			Line:            instr.DebugLine,
		})
		if IsSeqCst(instr.OrderingName) {
			p.SeqCstCount++
		}
		if instr.Kind == InstrFence {
			p.FenceCount++
		}

	case InstrCall:
		if instr.Indirect {
			p.IndirectCallCount++
			p.HeapCallSites = append(p.HeapCallSites, HeapCallSite{
				Name:     "<indirect>",
				Indirect: true,
				InLoop:   inLoop,
			})
			return
		}
		p.DirectCallCount++
		if isHeapSymbol(instr.Callee) {
			p.HeapCallSites = append(p.HeapCallSites, HeapCallSite{
				Name:   instr.Callee,
				InLoop: inLoop,
			})
		}

	case InstrIntrinsic, InstrOther:
		// skipped
	}
}

func atomicOpName(k InstrKind) string {
	switch k {
	case InstrAtomicLoad:
		return "Load"
	case InstrAtomicStore:
		return "Store"
	case InstrAtomicRMW:
		return "RMW"
	case InstrAtomicCmpXchg:
		return "CmpXchg"
	case InstrFence:
		return "Fence"
	default:
		return ""
	}
}
