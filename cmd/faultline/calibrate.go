package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faultline-dev/faultline/internal/calibration"
	"github.com/faultline-dev/faultline/internal/severity"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Ingest and query the persistent calibration feedback store",
	Long: `calibrate manages the sqlite-backed store that turns measured
experiment outcomes into labeled training records and a per-hazard-class
false-positive registry. A hazard class only becomes a known false
positive once three independent experiments have refuted it.`,
}

func init() {
	calibrateCmd.AddCommand(calibrateIngestCmd)
	calibrateCmd.AddCommand(calibrateQueryCmd)
	calibrateCmd.AddCommand(calibrateByHazardCmd)
	calibrateCmd.AddCommand(calibrateBySKUCmd)
}

// experimentFile is the JSON shape a caller submits for ingestion: an
// calibration.ExperimentResult with a string verdict and a rule ID in
// place of a hazard class, plus the structural feature vector the
// original hypothesis carried.
type experimentFile struct {
	RuleID       string `json:"ruleID"`
	FindingID    string `json:"findingID"`
	HypothesisID string `json:"hypothesisID"`
	SchemaID     string `json:"schemaID"`

	Verdict string `json:"verdict"`

	WarmupIterations      int `json:"warmupIterations"`
	MeasurementIterations int `json:"measurementIterations"`

	CPUModel      string `json:"cpuModel"`
	KernelVersion string `json:"kernelVersion"`
	SKUFamily     string `json:"skuFamily"`

	TurboDisabled bool   `json:"turboDisabled"`
	Governor      string `json:"governor"`
	CoresRecorded int    `json:"coresRecorded"`

	ConfoundRisk float64 `json:"confoundRisk"`
	Power        float64 `json:"power"`
	EffectSize   float64 `json:"effectSize"`
	PValue       float64 `json:"pValue"`

	FeatureVector []float64 `json:"featureVector"`
}

func parseVerdict(s string) calibration.Verdict {
	switch s {
	case "Confirmed":
		return calibration.Confirmed
	case "Refuted":
		return calibration.Refuted
	case "Inconclusive":
		return calibration.Inconclusive
	case "Confounded":
		return calibration.Confounded
	default:
		return calibration.Pending
	}
}

var calibrateIngestFlags struct {
	store      string
	experiment string
}

var calibrateIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest one measured experiment outcome into the calibration store",
	RunE:  runCalibrateIngest,
}

func init() {
	f := calibrateIngestCmd.Flags()
	f.StringVar(&calibrateIngestFlags.store, "store", "", "Path to the calibration store (created if absent)")
	f.StringVar(&calibrateIngestFlags.experiment, "experiment", "", "Path to an experiment result JSON file")
	_ = calibrateIngestCmd.MarkFlagRequired("store")
	_ = calibrateIngestCmd.MarkFlagRequired("experiment")
}

func runCalibrateIngest(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(calibrateIngestFlags.experiment)
	if err != nil {
		return err
	}
	var ef experimentFile
	if err := json.Unmarshal(data, &ef); err != nil {
		return fmt.Errorf("parsing experiment file: %w", err)
	}

	hazardClass, ok := severity.RuleHazard[ef.RuleID]
	if !ok {
		return fmt.Errorf("no hazard class mapping for rule ID %q", ef.RuleID)
	}

	store, err := calibration.Open(calibrateIngestFlags.store)
	if err != nil {
		return fmt.Errorf("opening calibration store: %w", err)
	}
	defer store.Close()

	result := calibration.ExperimentResult{
		FindingID:             ef.FindingID,
		HypothesisID:          ef.HypothesisID,
		SchemaID:              ef.SchemaID,
		Verdict:               parseVerdict(ef.Verdict),
		WarmupIterations:      ef.WarmupIterations,
		MeasurementIterations: ef.MeasurementIterations,
		CPUModel:              ef.CPUModel,
		KernelVersion:         ef.KernelVersion,
		SKUFamily:             ef.SKUFamily,
		TurboDisabled:         ef.TurboDisabled,
		Governor:              ef.Governor,
		CoresRecorded:         ef.CoresRecorded,
		ConfoundRisk:          ef.ConfoundRisk,
		Power:                 ef.Power,
		EffectSize:            ef.EffectSize,
		PValue:                ef.PValue,
	}

	record, err := store.Ingest(result, ef.FeatureVector, hazardClass)
	if err != nil {
		return fmt.Errorf("ingesting experiment: %w", err)
	}

	return printJSON(record)
}

var calibrateQueryFlags struct {
	store    string
	ruleID   string
	features string
}

var calibrateQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Check whether a hazard class is a known false positive for a given feature vector",
	RunE:  runCalibrateQuery,
}

func init() {
	f := calibrateQueryCmd.Flags()
	f.StringVar(&calibrateQueryFlags.store, "store", "", "Path to the calibration store")
	f.StringVar(&calibrateQueryFlags.ruleID, "rule-id", "", "Rule ID identifying the hazard class to query (e.g. FL002)")
	f.StringVar(&calibrateQueryFlags.features, "features", "", "Comma-separated structural feature vector")
	_ = calibrateQueryCmd.MarkFlagRequired("store")
	_ = calibrateQueryCmd.MarkFlagRequired("rule-id")
}

func runCalibrateQuery(cmd *cobra.Command, args []string) error {
	hazardClass, ok := severity.RuleHazard[calibrateQueryFlags.ruleID]
	if !ok {
		return fmt.Errorf("no hazard class mapping for rule ID %q", calibrateQueryFlags.ruleID)
	}

	features, err := parseFeatureVector(calibrateQueryFlags.features)
	if err != nil {
		return err
	}

	store, err := calibration.Open(calibrateQueryFlags.store)
	if err != nil {
		return fmt.Errorf("opening calibration store: %w", err)
	}
	defer store.Close()

	known, err := store.IsKnownFalsePositive(features, hazardClass)
	if err != nil {
		return err
	}
	fmt.Println(known)
	return nil
}

func parseFeatureVector(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing feature vector entry %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

var calibrateByHazardFlags struct {
	store  string
	ruleID string
}

var calibrateByHazardCmd = &cobra.Command{
	Use:   "by-hazard",
	Short: "List labeled records for a hazard class",
	RunE:  runCalibrateByHazard,
}

func init() {
	f := calibrateByHazardCmd.Flags()
	f.StringVar(&calibrateByHazardFlags.store, "store", "", "Path to the calibration store")
	f.StringVar(&calibrateByHazardFlags.ruleID, "rule-id", "", "Rule ID identifying the hazard class")
	_ = calibrateByHazardCmd.MarkFlagRequired("store")
	_ = calibrateByHazardCmd.MarkFlagRequired("rule-id")
}

func runCalibrateByHazard(cmd *cobra.Command, args []string) error {
	hazardClass, ok := severity.RuleHazard[calibrateByHazardFlags.ruleID]
	if !ok {
		return fmt.Errorf("no hazard class mapping for rule ID %q", calibrateByHazardFlags.ruleID)
	}

	store, err := calibration.Open(calibrateByHazardFlags.store)
	if err != nil {
		return fmt.Errorf("opening calibration store: %w", err)
	}
	defer store.Close()

	records, err := store.ByHazardClass(hazardClass)
	if err != nil {
		return err
	}
	return printJSON(records)
}

var calibrateBySKUFlags struct {
	store     string
	skuFamily string
}

var calibrateBySKUCmd = &cobra.Command{
	Use:   "by-sku",
	Short: "List labeled records for a SKU family",
	RunE:  runCalibrateBySKU,
}

func init() {
	f := calibrateBySKUCmd.Flags()
	f.StringVar(&calibrateBySKUFlags.store, "store", "", "Path to the calibration store")
	f.StringVar(&calibrateBySKUFlags.skuFamily, "sku-family", "", "SKU family to filter by")
	_ = calibrateBySKUCmd.MarkFlagRequired("store")
	_ = calibrateBySKUCmd.MarkFlagRequired("sku-family")
}

func runCalibrateBySKU(cmd *cobra.Command, args []string) error {
	store, err := calibration.Open(calibrateBySKUFlags.store)
	if err != nil {
		return fmt.Errorf("opening calibration store: %w", err)
	}
	defer store.Close()

	records, err := store.BySKUFamily(calibrateBySKUFlags.skuFamily)
	if err != nil {
		return err
	}
	return printJSON(records)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
