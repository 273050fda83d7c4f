package output

import (
	"encoding/json"
	"testing"
)

func TestRenderSARIF_SchemaAndRuleDeduplication(t *testing.T) {
	diags := newTestDiagnostics()
	out, err := RenderSARIF(diags, newTestMetadata())
	if err != nil {
		t.Fatalf("RenderSARIF error: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc["version"] != "2.1.0" {
		t.Errorf("version = %v, want 2.1.0", doc["version"])
	}

	runs := doc["runs"].([]any)
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0].(map[string]any)

	driver := run["tool"].(map[string]any)["driver"].(map[string]any)
	rules := driver["rules"].([]any)
	if len(rules) != 2 {
		t.Fatalf("expected 2 distinct rules, got %d", len(rules))
	}

	results := run["results"].([]any)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestRenderSARIF_SeverityLevelMapping(t *testing.T) {
	diags := newTestDiagnostics()
	out, err := RenderSARIF(diags, newTestMetadata())
	if err != nil {
		t.Fatalf("RenderSARIF error: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	results := doc["runs"].([]any)[0].(map[string]any)["results"].([]any)

	crit := results[0].(map[string]any)
	if crit["level"] != "error" {
		t.Errorf("Critical severity should map to level=error, got %v", crit["level"])
	}
	med := results[1].(map[string]any)
	if med["level"] != "note" {
		t.Errorf("Medium severity should map to level=note, got %v", med["level"])
	}
}

func TestRenderSARIF_LogicalLocationOnlyWhenFunctionKnown(t *testing.T) {
	diags := newTestDiagnostics()
	out, err := RenderSARIF(diags, newTestMetadata())
	if err != nil {
		t.Fatalf("RenderSARIF error: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	results := doc["runs"].([]any)[0].(map[string]any)["results"].([]any)

	withFn := results[0].(map[string]any)["locations"].([]any)[0].(map[string]any)
	if _, present := withFn["logicalLocations"]; !present {
		t.Errorf("expected logicalLocations present for finding with FunctionName")
	}

	withoutFn := results[1].(map[string]any)["locations"].([]any)[0].(map[string]any)
	if _, present := withoutFn["logicalLocations"]; present {
		t.Errorf("expected logicalLocations omitted for finding without FunctionName")
	}
}

func TestRenderSARIF_ArtifactsFromSourceFiles(t *testing.T) {
	out, err := RenderSARIF(newTestDiagnostics(), newTestMetadata())
	if err != nil {
		t.Fatalf("RenderSARIF error: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	artifacts := doc["runs"].([]any)[0].(map[string]any)["artifacts"].([]any)
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}
}
