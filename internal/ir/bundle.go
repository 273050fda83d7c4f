package ir

import (
	"context"
	"encoding/json"
	"os"
)

// jsonInstruction mirrors IRInstruction for the JSON wire format a
// lowering adapter emits in place of a real LLVM-IR/bitcode parse.
type jsonInstruction struct {
	Kind         string `json:"kind"`
	Name         string `json:"name,omitempty"`
	ElementSize  int64  `json:"elementSize,omitempty"`
	ArrayCount   int64  `json:"arrayCount,omitempty"`
	OrderingName string `json:"orderingName,omitempty"`
	DebugFile    string `json:"debugFile,omitempty"`
	DebugLine    int    `json:"debugLine,omitempty"`
	Callee       string `json:"callee,omitempty"`
	Indirect     bool   `json:"indirect,omitempty"`
}

var instrKindNames = map[string]InstrKind{
	"alloca":        InstrAlloca,
	"atomicload":    InstrAtomicLoad,
	"atomicstore":   InstrAtomicStore,
	"atomicrmw":     InstrAtomicRMW,
	"atomiccmpxchg": InstrAtomicCmpXchg,
	"fence":         InstrFence,
	"call":          InstrCall,
	"intrinsic":     InstrIntrinsic,
	"other":         InstrOther,
}

type jsonBasicBlock struct {
	Name         string            `json:"name"`
	Predecessors []int             `json:"predecessors"`
	Successors   []int             `json:"successors"`
	Instructions []jsonInstruction `json:"instructions"`
}

type jsonFunction struct {
	MangledName   string           `json:"mangledName"`
	DemangledName string           `json:"demangledName"`
	BasicBlocks   []jsonBasicBlock `json:"basicBlocks"`
}

type jsonModule struct {
	Functions []jsonFunction `json:"functions"`
}

// DecodeModule parses the JSON IR wire format into an IRModule.
func DecodeModule(data []byte) (*IRModule, error) {
	var jm jsonModule
	if err := json.Unmarshal(data, &jm); err != nil {
		return nil, err
	}

	mod := &IRModule{}
	for _, jf := range jm.Functions {
		fn := &IRFunction{MangledName: jf.MangledName, DemangledName: jf.DemangledName}
		for _, jb := range jf.BasicBlocks {
			bb := &IRBasicBlock{Name: jb.Name, Predecessors: jb.Predecessors, Successors: jb.Successors}
			for _, ji := range jb.Instructions {
				bb.Instructions = append(bb.Instructions, &IRInstruction{
					Kind:         instrKindNames[ji.Kind],
					Name:         ji.Name,
					ElementSize:  ji.ElementSize,
					ArrayCount:   ji.ArrayCount,
					OrderingName: ji.OrderingName,
					DebugFile:    ji.DebugFile,
					DebugLine:    ji.DebugLine,
					Callee:       ji.Callee,
					Indirect:     ji.Indirect,
				})
			}
			fn.BasicBlocks = append(fn.BasicBlocks, bb)
		}
		mod.Functions = append(mod.Functions, fn)
	}
	return mod, nil
}

// JSONLowerer reads an IR file the compiler-invocation driver produced
// and decodes it as a JSON IRModule. It satisfies
// orchestrate.IRLowerer without this package importing orchestrate —
// a real embedding would instead lower whatever text/bitcode format
// the configured compiler actually emits.
type JSONLowerer struct{}

func (JSONLowerer) Lower(ctx context.Context, irPath string) (*IRModule, error) {
	data, err := os.ReadFile(irPath)
	if err != nil {
		return nil, err
	}
	return DecodeModule(data)
}
