package experiment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/faultline-dev/faultline/internal/hypothesis"
)

// renderTemplate parses an inline text/template string and executes it
// against data, the way dpopsuev-asterisk's FillTemplateString does for
// its own generated-file templates.
func renderTemplate(name, tmplStr string, data any) (string, error) {
	funcMap := template.FuncMap{
		"cEscape": func(s string) string {
			s = strings.ReplaceAll(s, `\`, `\\`)
			return strings.ReplaceAll(s, `"`, `\"`)
		},
	}
	tmpl, err := template.New(name).Funcs(funcMap).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("experiment: parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("experiment: execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

const commonHeaderTemplate = `#pragma once

// Generated for finding {{.FindingID}} ({{.HypothesisID}}).
// Hazard class: {{.HazardClass}}
//
// H0: {{.H0}}
// H1: {{.H1}}

#include <cstdint>
#include <string>

namespace faultline_experiment {

constexpr const char *kHypothesisID = "{{cEscape .HypothesisID}}";
constexpr const char *kPrimaryMetric = "{{cEscape .PrimaryMetric.Name}}";
constexpr const char *kPrimaryMetricUnit = "{{cEscape .PrimaryMetric.Unit}}";

} // namespace faultline_experiment
`

func generateCommonHeader(h hypothesis.LatencyHypothesis, _ hypothesis.MeasurementPlan) (ExperimentFile, error) {
	content, err := renderTemplate("common-header", commonHeaderTemplate, h)
	return ExperimentFile{RelativePath: "src/common.h", Content: content}, err
}

const harnessTemplate = `#include "common.h"

#include <cstring>
#include <iostream>

// Hypothesis {{.HypothesisID}}: {{.H1}}
// Null:                         {{.H0}}
//
// Control path:   {{.Control}}
// Treatment path: {{.Treatment}}
//
// This binary does not loop or time itself — the collection scripts in
// run_all.sh drive it under perf stat/record, so the measurement window
// is owned by the scripts, not the harness.
int main(int argc, char **argv) {
    bool treatment = argc > 1 && std::strcmp(argv[1], "treatment") == 0;
    if (treatment) {
        // treatment: {{.Treatment}}
    } else {
        // control: {{.Control}}
    }
    std::cerr << faultline_experiment::kHypothesisID << " ran as "
              << (treatment ? "treatment" : "control") << "\n";
    return 0;
}
`

func generateHarness(h hypothesis.LatencyHypothesis, _ hypothesis.MeasurementPlan) (ExperimentFile, error) {
	content, err := renderTemplate("harness", harnessTemplate, h)
	return ExperimentFile{RelativePath: "src/harness.cpp", Content: content}, err
}

const buildScriptTemplate = `#!/usr/bin/env bash
set -euo pipefail

# Builds the {{.HypothesisID}} experiment harness.
CXX="${CXX:-c++}"
"$CXX" -O2 -std=c++20 -o harness src/harness.cpp
`

func generateBuildScript(h hypothesis.LatencyHypothesis, _ hypothesis.MeasurementPlan) (ExperimentFile, error) {
	content, err := renderTemplate("build-script", buildScriptTemplate, h)
	return ExperimentFile{RelativePath: "build.sh", Content: content}, err
}

const runAllTemplate = `#!/usr/bin/env bash
set -euo pipefail

# Orchestrates every collection script for bundle {{.BundleID}}
# (hypothesis {{.HypothesisID}}, SKU family {{.SKUFamily}}).
#
# Each entry below names the script a human still has to author and
# run; this file only fixes the order and records what each step does.
{{range .Scripts}}
# {{.}}
{{end}}
`

func generateRunAll(_ hypothesis.LatencyHypothesis, plan hypothesis.MeasurementPlan) (ExperimentFile, error) {
	content, err := renderTemplate("run-all", runAllTemplate, plan)
	return ExperimentFile{RelativePath: "run_all.sh", Content: content}, err
}

const makefileTemplate = `CXX ?= c++
CXXFLAGS ?= -O2 -std=c++20

all: harness

harness: src/harness.cpp src/common.h
	$(CXX) $(CXXFLAGS) -o harness src/harness.cpp

clean:
	rm -f harness

.PHONY: all clean
`

func generateMakefile(_ hypothesis.LatencyHypothesis, _ hypothesis.MeasurementPlan) (ExperimentFile, error) {
	content, err := renderTemplate("makefile", makefileTemplate, nil)
	return ExperimentFile{RelativePath: "Makefile", Content: content}, err
}

const readmeTemplate = `# Experiment {{.HypothesisID}}

Finding: {{.FindingID}}
Hazard class: {{.HazardClass}}

## Hypothesis

- H0 (null): {{.H0}}
- H1 (alternative): {{.H1}}

## Design

- Control: {{.Control}}
- Treatment: {{.Treatment}}
- Primary metric: {{.PrimaryMetric.Name}} ({{.PrimaryMetric.Unit}}, p{{.PrimaryMetric.Percentile}})
- Minimum detectable effect: {{.MinimumDetectableEffect}}
- Alpha: {{.Alpha}}, Power: {{.Power}}
{{if .RequiredRuns}}- Required runs: {{.RequiredRuns}}
{{else}}- Required runs: pilot-determined
{{end}}
## Confounds to pin down

{{range .Confounds}}- {{.Variable}}: `+"`{{.EnforcementCommand}}`"+`
{{end}}
## Running

1. ` + "`./build.sh`" + `
2. ` + "`./run_all.sh`" + ` (each script it lists still needs to be written —
   it fixes the order, not the implementation)
3. Feed the measured outcome to ` + "`faultline calibrate ingest`" + `
   against hypothesis.json's featureVector.
`

func generateReadme(h hypothesis.LatencyHypothesis, _ hypothesis.MeasurementPlan) (ExperimentFile, error) {
	content, err := renderTemplate("readme", readmeTemplate, h)
	return ExperimentFile{RelativePath: "README.md", Content: content}, err
}

// jsonHypothesisFile is the experiment bundle's own copy of the
// hypothesis, kept minimal and local to this package rather than
// reused from cmd/faultline's CLI-facing wire types.
type jsonHypothesisFile struct {
	FindingID    string `json:"findingID"`
	HypothesisID string `json:"hypothesisID"`
	HazardClass  string `json:"hazardClass"`

	H0 string `json:"h0"`
	H1 string `json:"h1"`

	MetricName       string `json:"metricName"`
	MetricUnit       string `json:"metricUnit"`
	MetricPercentile string `json:"metricPercentile"`

	MinimumDetectableEffect float64 `json:"minimumDetectableEffect"`
	Alpha                   float64 `json:"alpha"`
	Power                   float64 `json:"power"`
	RequiredRuns            int     `json:"requiredRuns"`

	Control   string `json:"control"`
	Treatment string `json:"treatment"`

	FeatureVector []float64 `json:"featureVector"`
}

func generateHypothesisJSON(h hypothesis.LatencyHypothesis, _ hypothesis.MeasurementPlan) (ExperimentFile, error) {
	doc := jsonHypothesisFile{
		FindingID:               h.FindingID,
		HypothesisID:            h.HypothesisID,
		HazardClass:             h.HazardClass.String(),
		H0:                      h.H0,
		H1:                      h.H1,
		MetricName:              h.PrimaryMetric.Name,
		MetricUnit:              h.PrimaryMetric.Unit,
		MetricPercentile:        h.PrimaryMetric.Percentile,
		MinimumDetectableEffect: h.MinimumDetectableEffect,
		Alpha:                   h.Alpha,
		Power:                   h.Power,
		RequiredRuns:            h.RequiredRuns,
		Control:                 h.Control,
		Treatment:               h.Treatment,
		FeatureVector:           h.FeatureVector,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ExperimentFile{}, fmt.Errorf("experiment: marshal hypothesis JSON: %w", err)
	}
	return ExperimentFile{RelativePath: "hypothesis.json", Content: string(data) + "\n"}, nil
}
