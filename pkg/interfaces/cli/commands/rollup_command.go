package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/interfaces/cli/output"
)

func newRollupCmd() *cobra.Command {
	var (
		scenarioDir string
		itemsFile   string
		bomFile     string
		target      string
		format      string
		outputDir   string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "rollup",
		Short: "Run a standard cost rollup for a target item",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := resolveScenario(scenarioDir, scenarioFiles{
				Items: itemsFile, BOM: bomFile,
			})
			if err != nil {
				return err
			}
			repos, err := loadRepos(files)
			if err != nil {
				return err
			}

			o := buildOrchestrator(repos)
			began := time.Now()
			runID, err := o.StartCostRollup(cmd.Context(), entities.ItemID(target))
			if err != nil {
				return err
			}
			run, err := o.WaitForRun(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if run.Status == entities.Failed {
				return fmt.Errorf("rollup run %s failed: %w", runID, run.Err)
			}

			result, err := o.RollupSummary(runID)
			if err != nil {
				return err
			}
			return output.WriteRollup(result, output.Config{
				Format:    format,
				OutputDir: outputDir,
				Verbose:   verbose,
				Elapsed:   time.Since(began),
			})
		},
	}

	cmd.Flags().StringVar(&scenarioDir, "scenario", "", "Scenario directory containing CSV files")
	cmd.Flags().StringVar(&itemsFile, "items", "", "Items CSV file")
	cmd.Flags().StringVar(&bomFile, "bom", "", "BOM CSV file")
	cmd.Flags().StringVar(&target, "target", "", "Target item to roll up (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, csv")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default stdout)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose output")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
