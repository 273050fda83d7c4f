// Package config defines the analyzer's option set and
// its YAML-backed loader.
package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/faultline-dev/faultline/internal/severity"
)

// Config is the full recognized option set. Unknown YAML keys are
// ignored rather than rejected, so older analyzer binaries keep
// working against newer config files.
type Config struct {
	CacheLineBytes      int64  `yaml:"cache_line_bytes"`
	CacheLineSpanWarn   int64  `yaml:"cache_line_span_warn"`
	CacheLineSpanCrit   int64  `yaml:"cache_line_span_crit"`
	StackFrameWarnBytes int64  `yaml:"stack_frame_warn_bytes"`
	AllocSizeEscalation int64  `yaml:"alloc_size_escalation"`
	BranchDepthWarn     int    `yaml:"branch_depth_warn"`
	MinSeverity         string `yaml:"min_severity"`
	JSONOutput          bool   `yaml:"json_output"`
	OutputFile          string `yaml:"output_file"`
	HotFunctionPatterns []string `yaml:"hot_function_patterns"`
	HotFilePatterns     []string `yaml:"hot_file_patterns"`
	DisabledRules       []string `yaml:"disabled_rules"`
	PageSize            int64    `yaml:"page_size"`

	// MaxCountersPerGroup bounds the measurement-plan generator's
	// per-group counter count; exposed here so it is configurable like
	// its siblings rather than hardcoded in the hypothesis package.
	MaxCountersPerGroup int `yaml:"max_counters_per_group"`
}

// Defaults returns the analyzer's baked-in option values.
func Defaults() Config {
	return Config{
		CacheLineBytes:      64,
		CacheLineSpanWarn:   64,
		CacheLineSpanCrit:   128,
		StackFrameWarnBytes: 2048,
		AllocSizeEscalation: 256,
		BranchDepthWarn:     4,
		MinSeverity:         severity.Informational.String(),
		JSONOutput:          false,
		OutputFile:          "",
		HotFunctionPatterns: nil,
		HotFilePatterns:     nil,
		DisabledRules:       nil,
		PageSize:            4096,
		MaxCountersPerGroup: 4,
	}
}

// LoadFile reads and parses a YAML config file, starting from
// Defaults so any key the file omits keeps its default value. On a
// read or parse failure it returns Defaults alongside the error — the
// caller decides whether to fall back, since a malformed config file
// is a recoverable condition rather than a fatal one.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, eris.Wrapf(err, "reading config file %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), eris.Wrapf(err, "parsing config file %q", path)
	}
	return cfg, nil
}

// IsRuleDisabled reports whether ruleID appears in DisabledRules.
func (c Config) IsRuleDisabled(ruleID string) bool {
	for _, id := range c.DisabledRules {
		if id == ruleID {
			return true
		}
	}
	return false
}

// MinSeverityLevel parses MinSeverity, defaulting to Informational on
// an unrecognized value.
func (c Config) MinSeverityLevel() severity.Severity {
	return severity.ParseSeverity(c.MinSeverity)
}
