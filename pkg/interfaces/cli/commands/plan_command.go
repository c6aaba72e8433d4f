package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/interfaces/cli/output"
)

func newPlanCmd() *cobra.Command {
	var (
		scenarioDir  string
		itemsFile    string
		bomFile      string
		supplyFile   string
		demandsFile  string
		scopeItems   []string
		horizonStart string
		horizonEnd   string
		format       string
		outputDir    string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run a time-phased requirements planning pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := resolveScenario(scenarioDir, scenarioFiles{
				Items: itemsFile, BOM: bomFile, Supply: supplyFile, Demands: demandsFile,
			})
			if err != nil {
				return err
			}
			repos, err := loadRepos(files)
			if err != nil {
				return err
			}

			start, end, err := parseHorizon(horizonStart, horizonEnd)
			if err != nil {
				return err
			}
			scope := entities.PlanScope{}
			for _, raw := range scopeItems {
				scope.Items = append(scope.Items, entities.ItemID(raw))
			}

			o := buildOrchestrator(repos)
			began := time.Now()
			runID, err := o.StartPlanningRun(cmd.Context(), scope, start, end)
			if err != nil {
				return err
			}
			run, err := o.WaitForRun(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if run.Status == entities.Failed {
				return fmt.Errorf("planning run %s failed: %w", runID, run.Err)
			}

			result, err := o.PlanningSummary(runID)
			if err != nil {
				return err
			}
			return output.WritePlanning(result, output.Config{
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
	cmd.Flags().StringVar(&supplyFile, "supply", "", "Supply positions CSV file")
	cmd.Flags().StringVar(&demandsFile, "demands", "", "Independent demands CSV file")
	cmd.Flags().StringSliceVar(&scopeItems, "scope", nil, "Restrict planning to these top-level items")
	cmd.Flags().StringVar(&horizonStart, "horizon-start", "", "Horizon start date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&horizonEnd, "horizon-end", "", "Horizon end date (YYYY-MM-DD, default +180 days)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, csv")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default stdout)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose output")
	return cmd
}

func parseHorizon(startRaw, endRaw string) (time.Time, time.Time, error) {
	start := time.Now().UTC().Truncate(24 * time.Hour)
	if startRaw != "" {
		parsed, err := time.Parse(time.DateOnly, startRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --horizon-start: %w", err)
		}
		start = parsed
	}
	end := start.AddDate(0, 0, 180)
	if endRaw != "" {
		parsed, err := time.Parse(time.DateOnly, endRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --horizon-end: %w", err)
		}
		end = parsed
	}
	return start, end, nil
}
