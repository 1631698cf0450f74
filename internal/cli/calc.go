package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/CableSizer/internal/config"
	"github.com/piwi3910/CableSizer/internal/importer"
	"github.com/piwi3910/CableSizer/internal/model"
	"github.com/piwi3910/CableSizer/internal/panel"
	"github.com/piwi3910/CableSizer/internal/project"
)

// FallbackPanelModel is substituted when --fallback-panel is set and the
// requested model is not in the catalog.
const FallbackPanelModel = "Custom Panel"

var (
	calcInput        string
	calcSheet        string
	calcClass        string
	calcNormative    string
	calcProject      string
	calcStage        string
	calcPanel        string
	calcAmbient      float64
	calcFallback     bool
	calcParamsFile   string
	calcStringsInput string
	calcOutput       string
	calcPretty       bool
)

// calcResponse is the JSON boundary shape of a sizing run.
type calcResponse struct {
	Results  []model.CircuitResult `json:"results"`
	Summary  calcSummary           `json:"summary"`
	Metadata model.ConfigMetadata  `json:"metadata"`
}

type calcSummary struct {
	TotalCircuits int `json:"total_circuits"`
	SuccessCount  int `json:"success_count"`
	ErrorCount    int `json:"error_count"`
}

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Size conductor sections for a circuit table",
	Long: `Size conductor cross-sections for every circuit in a CSV or Excel
table and print the results as JSON.

Each circuit is sized from the ampacity-corrected current and the
voltage-drop budget of the selected normative, then rounded up to the
next commercial section. Rows that cannot be sized produce ERROR or
FATAL_ERROR entries; the batch always completes.

Examples:
  # Size string circuits under IEC with a known panel
  cablesizer calc -i strings.csv --panel "Generic 550W"

  # CN1 trunks, parallel counts derived from the string table
  cablesizer calc -i cn1.xlsx --sheet dc_cn1_circuits --class cn1_inverter \
    --strings-input strings.csv

  # Project-specific overrides plus an ad-hoc parameter file
  cablesizer calc -i strings.csv --project solar-park-a --stage dc_strings \
    --params tweaks.yaml`,
	RunE: runCalc,
}

func init() {
	rootCmd.AddCommand(calcCmd)
	registerSizingFlags(calcCmd)

	calcCmd.Flags().StringVarP(&calcOutput, "output", "o", "", "Write JSON response to file instead of stdout")
	calcCmd.Flags().BoolVar(&calcPretty, "pretty", false, "Indent the JSON output")
}

// registerSizingFlags wires the flags shared by calc, report and labels.
func registerSizingFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&calcInput, "input", "i", "", "Circuit table (.csv or .xlsx) [required]")
	cmd.Flags().StringVar(&calcSheet, "sheet", "", "Excel sheet name (default: first sheet)")
	cmd.Flags().StringVar(&calcClass, "class", string(model.ClassDCStrings), "Circuit class (dc_strings, cn1_inverter, ac_circuits, mv_circuits)")
	cmd.Flags().StringVarP(&calcNormative, "normative", "n", "IEC", "Normative profile code")
	cmd.Flags().StringVar(&calcProject, "project", "", "Project id for persisted overrides")
	cmd.Flags().StringVar(&calcStage, "stage", "", "Project stage for persisted overrides")
	cmd.Flags().StringVarP(&calcPanel, "panel", "p", FallbackPanelModel, "PV panel model")
	cmd.Flags().Float64Var(&calcAmbient, "ambient", 0, "Ambient temperature override (°C)")
	cmd.Flags().BoolVar(&calcFallback, "fallback-panel", false, "Fall back to the default panel when the model is unknown")
	cmd.Flags().StringVar(&calcParamsFile, "params", "", "YAML file with ad-hoc parameter override sections")
	cmd.Flags().StringVar(&calcStringsInput, "strings-input", "", "String circuit table for CN1 parallel counts")
	cmd.MarkFlagRequired("input")
}

func runCalc(cmd *cobra.Command, args []string) error {
	batch, cfg, _, err := runSizing(cmd)
	if err != nil {
		return err
	}

	resp := calcResponse{
		Results: batch.Results,
		Summary: calcSummary{
			TotalCircuits: batch.Total(),
			SuccessCount:  batch.SuccessCount,
			ErrorCount:    batch.ErrorCount,
		},
		Metadata: cfg.Metadata,
	}

	enc := json.NewEncoder(os.Stdout)
	if calcOutput != "" {
		f, err := os.Create(calcOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		enc = json.NewEncoder(f)
	}
	if calcPretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}

// runSizing performs the full import-resolve-calculate pipeline shared by
// calc, report and labels.
func runSizing(cmd *cobra.Command) (model.BatchResult, model.CalculationConfig, model.CircuitClass, error) {
	class, err := parseClass(calcClass)
	if err != nil {
		return model.BatchResult{}, model.CalculationConfig{}, "", err
	}

	rows, err := loadRows(calcInput, calcSheet)
	if err != nil {
		return model.BatchResult{}, model.CalculationConfig{}, "", err
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return model.BatchResult{}, model.CalculationConfig{}, "", err
	}

	calc := model.NewCalculator(cfg, class)
	fn := calc.CalculateRow

	if class == model.ClassCN1Inverter {
		if calcStringsInput != "" {
			stringRows, err := loadRows(calcStringsInput, importer.SheetStringCircuits)
			if err != nil {
				return model.BatchResult{}, model.CalculationConfig{}, "", fmt.Errorf("failed to load string table: %w", err)
			}
			cfg.ParallelMap = model.BuildParallelMap(stringRows)
			calc = model.NewCalculator(cfg, class)
		}
		fn = calc.CalculateCN1Row
	}

	batch := model.RunAll(rows, cfg.Metadata.Normative, fn)
	if calcProject != "" {
		recordRecentProject(calcProject)
	}
	return batch, cfg, class, nil
}

// recordRecentProject updates the recent project history, best effort.
func recordRecentProject(projectID string) {
	path := project.DefaultConfigPath()
	appCfg, err := project.LoadAppConfig(path)
	if err != nil {
		return
	}
	appCfg.AddRecentProject(projectID)
	if err := project.SaveAppConfig(path, appCfg); err != nil {
		slog.Debug("could not record recent project", "error", err)
	}
}

// resolveConfig builds the effective configuration, applying the
// fallback-panel policy on unknown models.
func resolveConfig(cmd *cobra.Command) (model.CalculationConfig, error) {
	catalog, err := normativeCatalog()
	if err != nil {
		return model.CalculationConfig{}, err
	}
	panels, err := panelCatalog()
	if err != nil {
		return model.CalculationConfig{}, err
	}

	req := config.Request{
		ProjectID:  calcProject,
		Normative:  calcNormative,
		Stage:      calcStage,
		PanelModel: calcPanel,
	}
	if cmd.Flags().Changed("ambient") {
		ambient := calcAmbient
		req.AmbientTempC = &ambient
	}
	if calcParamsFile != "" {
		adHoc, err := loadParamsFile(calcParamsFile)
		if err != nil {
			return model.CalculationConfig{}, err
		}
		req.AdHoc = adHoc
	}

	resolver := &config.Resolver{
		Catalog:   catalog,
		Overrides: overrideStore(),
		Panels:    panels,
	}

	cfg, err := resolver.Resolve(req)
	var notFound *panel.NotFoundError
	if err != nil && calcFallback && errors.As(err, &notFound) {
		slog.Warn("panel model not found, using fallback", "model", req.PanelModel, "fallback", FallbackPanelModel)
		req.PanelModel = FallbackPanelModel
		cfg, err = resolver.Resolve(req)
		if err == nil {
			cfg.Metadata.PanelFallbackUsed = true
		}
	}
	return cfg, err
}

// loadRows imports a circuit table, choosing the importer by extension.
// Import warnings go to stderr; row errors are fatal only when no row
// survived.
func loadRows(path, sheet string) ([]model.CircuitRow, error) {
	var result importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		result = importer.ImportExcel(path, sheet)
	default:
		result = importer.ImportCSV(path)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
	if len(result.Rows) == 0 {
		return nil, fmt.Errorf("no usable circuit rows in %s", path)
	}
	return result.Rows, nil
}

// loadParamsFile reads an ad-hoc override section mapping from YAML.
func loadParamsFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse params file: %w", err)
	}
	return out, nil
}

func parseClass(s string) (model.CircuitClass, error) {
	for _, c := range model.CircuitClasses {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown circuit class %q (want one of: dc_strings, cn1_inverter, ac_circuits, mv_circuits)", s)
}
