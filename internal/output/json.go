package output

import (
	"encoding/json"
	"strings"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/orchestrate"
	"github.com/faultline-dev/faultline/internal/severity"
)

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type jsonDiagnostic struct {
	RuleID             string       `json:"ruleID"`
	Title              string       `json:"title"`
	Severity           string       `json:"severity"`
	Confidence         float64      `json:"confidence"`
	EvidenceTier       string       `json:"evidenceTier"`
	Location           jsonLocation `json:"location"`
	FunctionName       string       `json:"functionName,omitempty"`
	HardwareReasoning  string       `json:"hardwareReasoning"`
	StructuralEvidence string       `json:"structuralEvidence"`
	Mitigation         string       `json:"mitigation"`
	Escalations        []string     `json:"escalations"`
}

type jsonCompilerInfo struct {
	Path    string `json:"path"`
	Version string `json:"version,omitempty"`
}

type jsonMetadata struct {
	Timestamp   int64              `json:"timestamp"`
	ConfigPath  string             `json:"configPath"`
	IROptLevel  string             `json:"irOptLevel"`
	IREnabled   bool               `json:"irEnabled"`
	SourceFiles []string           `json:"sourceFiles"`
	Compilers   []jsonCompilerInfo `json:"compilers"`
}

type jsonDocument struct {
	Version     string           `json:"version"`
	Metadata    jsonMetadata     `json:"metadata"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

func toJSONDiagnostic(d *diagnostic.Diagnostic) jsonDiagnostic {
	return jsonDiagnostic{
		RuleID:             d.RuleID,
		Title:              d.Title,
		Severity:           d.Severity.String(),
		Confidence:         d.Confidence,
		EvidenceTier:       d.Tier.String(),
		Location:           jsonLocation{File: d.Location.File, Line: d.Location.Line, Column: d.Location.Column},
		FunctionName:       d.FunctionName,
		HardwareReasoning:  d.HardwareReasoning,
		StructuralEvidence: d.StructuralEvidence(),
		Mitigation:         d.Mitigation,
		Escalations:        d.Escalations,
	}
}

// RenderJSON renders diagnostics and execution metadata as the
// analyzer's JSON document.
func RenderJSON(diags []*diagnostic.Diagnostic, meta orchestrate.ExecutionMetadata) (string, error) {
	doc := jsonDocument{
		Version: meta.ToolVersion,
		Metadata: jsonMetadata{
			Timestamp:   meta.Timestamp,
			ConfigPath:  meta.ConfigPath,
			IROptLevel:  meta.IROptLevel,
			IREnabled:   meta.IREnabled,
			SourceFiles: meta.SourceFiles,
		},
	}
	for _, c := range meta.Compilers {
		doc.Metadata.Compilers = append(doc.Metadata.Compilers, jsonCompilerInfo{Path: c.Path, Version: c.Version})
	}
	for _, d := range diags {
		doc.Diagnostics = append(doc.Diagnostics, toJSONDiagnostic(d))
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

// DecodeDocument parses an analyzer JSON document back into a
// diagnostic slice and its execution metadata, the inverse of
// RenderJSON. It is the entry point for pipelines that split analysis
// and refinement across separate invocations: one stage writes a
// document with RenderJSON, a later stage reads it back with
// DecodeDocument to refine it further.
func DecodeDocument(data []byte) ([]*diagnostic.Diagnostic, orchestrate.ExecutionMetadata, error) {
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, orchestrate.ExecutionMetadata{}, err
	}

	meta := orchestrate.ExecutionMetadata{
		ToolVersion: doc.Version,
		ConfigPath:  doc.Metadata.ConfigPath,
		IROptLevel:  doc.Metadata.IROptLevel,
		IREnabled:   doc.Metadata.IREnabled,
		Timestamp:   doc.Metadata.Timestamp,
		SourceFiles: doc.Metadata.SourceFiles,
	}
	for _, c := range doc.Metadata.Compilers {
		meta.Compilers = append(meta.Compilers, orchestrate.CompilerInfo{Path: c.Path, Version: c.Version})
	}

	diags := make([]*diagnostic.Diagnostic, 0, len(doc.Diagnostics))
	for _, jd := range doc.Diagnostics {
		loc := astmodel.SourceLocation{File: jd.Location.File, Line: jd.Location.Line, Column: jd.Location.Column}
		d := diagnostic.New(jd.RuleID, jd.Title, severity.ParseSeverity(jd.Severity), jd.Confidence, severity.ParseEvidenceTier(strings.ToLower(jd.EvidenceTier)), loc)
		d.FunctionName = jd.FunctionName
		d.HardwareReasoning = jd.HardwareReasoning
		d.Mitigation = jd.Mitigation
		d.Escalations = jd.Escalations
		for _, pair := range strings.Split(jd.StructuralEvidence, ";") {
			if pair == "" {
				continue
			}
			idx := strings.IndexByte(pair, '=')
			if idx < 0 {
				continue
			}
			d.WithEvidence(pair[:idx], pair[idx+1:])
		}
		diags = append(diags, d)
	}
	return diags, meta, nil
}
