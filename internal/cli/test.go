package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/pharmstock/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run stock scenarios",
		Long: `Run YAML stock scenarios, each against a fresh in-memory database.

A scenario passes when every step ends as expected and the final
products, inventory and remaining figures match. When a golden file
exists in <scenarios-dir>/golden/<file>.golden, the snapshot of the
run must also match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  pharmstock test ./scenarios
  pharmstock test ./scenarios --filter "out_*"
  pharmstock test ./scenarios --update
  pharmstock test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if err := opts.resolve(cmd); err != nil {
		return err
	}

	if info, err := os.Stat(scenariosDir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarioFiles, err := harness.FindScenarios(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{
				Scenarios: []ScenarioResult{},
				Total:     0,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, opts, cmd)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	opts.Log.Info().Int("passed", result.Passed).Int("failed", result.Failed).Msg("scenarios finished")

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}

	return outputTestText(cmd, result)
}

// runScenario executes a single scenario and returns the result.
func runScenario(scenarioFile string, opts *TestOptions, cmd *cobra.Command) ScenarioResult {
	name := filepath.Base(scenarioFile)

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return reportScenario(cmd, opts, name, []string{fmt.Sprintf("failed to load scenario: %v", err)}, "")
	}
	name = scenario.Name

	result, err := harness.Run(scenario, harness.WithLogger(opts.Log))
	if err != nil {
		return reportScenario(cmd, opts, name, []string{fmt.Sprintf("execution failed: %v", err)}, "")
	}

	snapshot, err := harness.MarshalSnapshot(scenario.Name, result)
	if err != nil {
		return reportScenario(cmd, opts, name, []string{err.Error()}, "")
	}
	goldenPath := harness.GoldenPath(scenarioFile)

	if opts.Update {
		if err := harness.WriteGolden(goldenPath, snapshot); err != nil {
			return reportScenario(cmd, opts, name, []string{fmt.Sprintf("failed to update golden file: %v", err)}, "")
		}
		return reportScenario(cmd, opts, name, result.Errors, "golden updated")
	}

	match, err := harness.CompareGolden(goldenPath, snapshot)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No golden file: assertions only.
	case err != nil:
		return reportScenario(cmd, opts, name, []string{fmt.Sprintf("golden comparison failed: %v", err)}, "")
	case !match:
		errs := append([]string{"snapshot does not match golden file (run with --update to regenerate)"}, result.Errors...)
		return reportScenario(cmd, opts, name, errs, "")
	}

	return reportScenario(cmd, opts, name, result.Errors, "")
}

// reportScenario prints one scenario line in text mode and builds its result.
func reportScenario(cmd *cobra.Command, opts *TestOptions, name string, errs []string, note string) ScenarioResult {
	pass := len(errs) == 0

	if opts.Format != "json" {
		w := cmd.OutOrStdout()
		switch {
		case !pass:
			fmt.Fprintf(w, "%s %s\n", color.RedString("✗"), name)
			for _, e := range errs {
				fmt.Fprintf(w, "  %s\n", e)
			}
		case note != "":
			fmt.Fprintf(w, "%s %s (%s)\n", color.GreenString("✓"), name, note)
		default:
			fmt.Fprintf(w, "%s %s\n", color.GreenString("✓"), name)
		}
	}

	if !pass {
		opts.Log.Warn().Str("scenario", name).Strs("errors", errs).Msg("scenario failed")
		return ScenarioResult{Name: name, Pass: false, Errors: errs}
	}
	return ScenarioResult{Name: name, Pass: true}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    ErrCodeScenario,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintf(w, "%s All scenarios passed\n", color.GreenString("✓"))
	return nil
}
