package output

import (
	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/orchestrate"
	"github.com/faultline-dev/faultline/internal/severity"
)

func newTestDiagnostics() []*diagnostic.Diagnostic {
	d1 := diagnostic.New("FL002", "false sharing across cache line", severity.Critical, 0.92, severity.Proven,
		astmodel.SourceLocation{File: "queue.cc", Line: 42, Column: 5})
	d1.FunctionName = "ring_buffer::push"
	d1.HardwareReasoning = "producer and consumer fields share a cache line"
	d1.Mitigation = "pad the consumer field to its own cache line"
	d1.WithEvidence("sizeof", "200B")
	d1.Escalate("severity escalated Medium -> Critical: atomic pair confirmed")

	d2 := diagnostic.New("FL010", "non-seq-cst atomic ordering", severity.Medium, 0.55, severity.Likely,
		astmodel.SourceLocation{File: "queue.cc", Line: 88, Column: 1})

	return []*diagnostic.Diagnostic{d1, d2}
}

func newTestMetadata() orchestrate.ExecutionMetadata {
	return orchestrate.ExecutionMetadata{
		ToolVersion: "0.1.0",
		ConfigPath:  "faultline.yaml",
		IROptLevel:  "O2",
		IREnabled:   true,
		Timestamp:   1754400000,
		SourceFiles: []string{"queue.cc"},
		Compilers:   []orchestrate.CompilerInfo{{Path: "/usr/bin/clang++", Version: "17.0.0"}},
	}
}
