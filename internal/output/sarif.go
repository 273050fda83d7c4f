package output

import (
	"encoding/json"

	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/orchestrate"
)

const sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"

type sarifDocument struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations"`
	Artifacts   []sarifArtifact   `json:"artifacts,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID                string            `json:"id"`
	ShortDescription  sarifText         `json:"shortDescription"`
	HelpURI           string            `json:"helpUri"`
	Properties        sarifRuleProperty `json:"properties"`
}

type sarifRuleProperty struct {
	Tags []string `json:"tags"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifInvocation struct {
	ExecutionSuccessful bool                 `json:"executionSuccessful"`
	Properties          sarifInvocationProps `json:"properties"`
}

type sarifInvocationProps struct {
	TimestampEpochSec int64              `json:"timestampEpochSec"`
	ConfigPath        string             `json:"configPath"`
	IROptLevel        string             `json:"irOptLevel"`
	IREnabled         bool               `json:"irEnabled"`
	Compilers         []jsonCompilerInfo `json:"compilers"`
}

type sarifArtifact struct {
	Location sarifArtifactLocation `json:"location"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifResult struct {
	RuleID     string              `json:"ruleId"`
	Level      string              `json:"level"`
	Message    sarifText           `json:"message"`
	Locations  []sarifLocation     `json:"locations"`
	Properties sarifResultProperty `json:"properties"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation  `json:"physicalLocation"`
	LogicalLocations []sarifLogicalLocation `json:"logicalLocations,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
}

type sarifLogicalLocation struct {
	FullyQualifiedName string `json:"fullyQualifiedName"`
	Kind               string `json:"kind"`
}

type sarifResultProperty struct {
	Confidence         float64  `json:"confidence"`
	EvidenceTier       string   `json:"evidenceTier"`
	StructuralEvidence string   `json:"structuralEvidence"`
	Mitigation         string   `json:"mitigation"`
	Escalations        []string `json:"escalations,omitempty"`
}

// sarifLevel maps severity to SARIF's three-level result scale.
func sarifLevel(sevName string) string {
	switch sevName {
	case "Critical":
		return "error"
	case "High":
		return "warning"
	default:
		return "note"
	}
}

func uniqueRuleIDs(diags []*diagnostic.Diagnostic) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, d := range diags {
		if seen[d.RuleID] {
			continue
		}
		seen[d.RuleID] = true
		ids = append(ids, d.RuleID)
	}
	return ids
}

func titleForRule(diags []*diagnostic.Diagnostic, ruleID string) string {
	for _, d := range diags {
		if d.RuleID == ruleID {
			return d.Title
		}
	}
	return ""
}

// RenderSARIF renders diagnostics and execution metadata as a SARIF
// 2.1.0 log.
func RenderSARIF(diags []*diagnostic.Diagnostic, meta orchestrate.ExecutionMetadata) (string, error) {
	var rules []sarifRule
	for _, ruleID := range uniqueRuleIDs(diags) {
		rules = append(rules, sarifRule{
			ID:               ruleID,
			ShortDescription: sarifText{Text: titleForRule(diags, ruleID)},
			HelpURI:          "https://github.com/faultline-dev/faultline#" + ruleID,
			Properties:       sarifRuleProperty{Tags: []string{"latency", "microarchitecture"}},
		})
	}

	var compilers []jsonCompilerInfo
	for _, c := range meta.Compilers {
		compilers = append(compilers, jsonCompilerInfo{Path: c.Path, Version: c.Version})
	}

	var artifacts []sarifArtifact
	for _, f := range meta.SourceFiles {
		artifacts = append(artifacts, sarifArtifact{Location: sarifArtifactLocation{URI: f}})
	}

	var results []sarifResult
	for _, d := range diags {
		line, col := d.Location.Line, d.Location.Column
		if line <= 0 {
			line = 1
		}
		if col <= 0 {
			col = 1
		}
		loc := sarifLocation{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: d.Location.File},
				Region:           sarifRegion{StartLine: line, StartColumn: col},
			},
		}
		if d.FunctionName != "" {
			loc.LogicalLocations = []sarifLogicalLocation{{FullyQualifiedName: d.FunctionName, Kind: "function"}}
		}
		results = append(results, sarifResult{
			RuleID:    d.RuleID,
			Level:     sarifLevel(d.Severity.String()),
			Message:   sarifText{Text: d.HardwareReasoning},
			Locations: []sarifLocation{loc},
			Properties: sarifResultProperty{
				Confidence:         d.Confidence,
				EvidenceTier:       d.Tier.String(),
				StructuralEvidence: d.StructuralEvidence(),
				Mitigation:         d.Mitigation,
				Escalations:        d.Escalations,
			},
		})
	}

	doc := sarifDocument{
		Schema:  sarifSchemaURI,
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           "faultline",
				Version:        meta.ToolVersion,
				InformationURI: "https://github.com/faultline-dev/faultline",
				Rules:          rules,
			}},
			Invocations: []sarifInvocation{{
				ExecutionSuccessful: true,
				Properties: sarifInvocationProps{
					TimestampEpochSec: meta.Timestamp,
					ConfigPath:        meta.ConfigPath,
					IROptLevel:        meta.IROptLevel,
					IREnabled:         meta.IREnabled,
					Compilers:         compilers,
				},
			}},
			Artifacts: artifacts,
			Results:   results,
		}},
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}
