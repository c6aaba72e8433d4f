package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openfactory/planning/pkg/application/dto"
	"github.com/openfactory/planning/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Elapsed   time.Duration
}

// WritePlanning renders a planning run's recommendations in the configured
// format
func WritePlanning(result *dto.PlanningResult, config Config) error {
	switch config.Format {
	case "text":
		return planningText(result, config)
	case "json":
		return writeJSON(result, config, "planning_result.json")
	case "csv":
		return planningCSV(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// WriteRollup renders a cost rollup run's records in the configured format
func WriteRollup(result *dto.RollupResult, config Config) error {
	switch config.Format {
	case "text":
		return rollupText(result, config)
	case "json":
		return writeJSON(result, config, "rollup_result.json")
	case "csv":
		return rollupCSV(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func planningText(result *dto.PlanningResult, config Config) error {
	fmt.Printf("📊 Planning Run Summary\n")
	fmt.Printf("=======================\n\n")
	fmt.Printf("Run ID: %s\n", result.RunID)
	fmt.Printf("Items Planned: %d across %d levels\n", result.ItemsPlanned, result.LevelsProcessed)
	fmt.Printf("Recommendations: %d\n", len(result.Recommendations))
	fmt.Printf("Warnings: %d\n", len(result.Warnings))
	if config.Elapsed > 0 {
		fmt.Printf("Elapsed: %v\n", config.Elapsed)
	}
	fmt.Println()

	if len(result.Recommendations) > 0 {
		fmt.Printf("📋 Recommendations:\n")
		fmt.Printf("%-15s %-22s %-10s %-12s %-12s\n",
			"Item", "Type", "Quantity", "Date", "Open Order")
		fmt.Printf("%s\n", strings.Repeat("-", 76))
		for _, rec := range result.Recommendations {
			fmt.Printf("%-15s %-22s %-10d %-12s %-12s\n",
				rec.ItemID, rec.Type, rec.Quantity,
				rec.SuggestedDate.Format(time.DateOnly), rec.OpenOrderID)
		}
		fmt.Println()
	}

	for _, warning := range result.Warnings {
		fmt.Printf("⚠️  %v\n", warning)
	}
	return nil
}

func rollupText(result *dto.RollupResult, config Config) error {
	fmt.Printf("💰 Cost Rollup Summary\n")
	fmt.Printf("======================\n\n")
	fmt.Printf("Run ID: %s\n", result.RunID)
	fmt.Printf("Target: %s\n", result.TargetItem)
	fmt.Printf("Items Costed: %d\n", len(result.Records))
	if config.Elapsed > 0 {
		fmt.Printf("Elapsed: %v\n", config.Elapsed)
	}
	fmt.Println()

	fmt.Printf("%-15s %-12s %-12s %-12s %-12s\n",
		"Item", "Material", "Labor", "Overhead", "Total")
	fmt.Printf("%s\n", strings.Repeat("-", 68))
	for _, record := range result.Records {
		breakdown := record.Breakdown
		fmt.Printf("%-15s %-12s %-12s %-12s %-12s\n",
			record.ItemID,
			breakdown[entities.Material].StringFixed(2),
			breakdown[entities.Labor].StringFixed(2),
			breakdown[entities.Overhead].StringFixed(2),
			breakdown.Total().StringFixed(2))
	}
	fmt.Println()

	if result.CriticalPath != nil && len(result.CriticalPath.Path) > 0 {
		path := make([]string, len(result.CriticalPath.Path))
		for i, itemID := range result.CriticalPath.Path {
			path[i] = string(itemID)
		}
		fmt.Printf("🕑 Critical Path: %s (%d days)\n",
			strings.Join(path, " -> "), result.CriticalPath.TotalLeadTime)
	}
	return nil
}

func writeJSON(v interface{}, config Config, filename string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if config.OutputDir == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(filepath.Join(config.OutputDir, filename), data, 0o644)
}

func planningCSV(result *dto.PlanningResult, config Config) error {
	writer, closeFn, err := csvWriter(config, "recommendations.csv")
	if err != nil {
		return err
	}
	defer closeFn()

	if err := writer.Write([]string{
		"item_id", "type", "quantity", "suggested_date", "open_order_id", "status", "pegging",
	}); err != nil {
		return err
	}
	for _, rec := range result.Recommendations {
		if err := writer.Write([]string{
			string(rec.ItemID),
			rec.Type.String(),
			fmt.Sprintf("%d", rec.Quantity),
			rec.SuggestedDate.Format(time.DateOnly),
			rec.OpenOrderID,
			rec.Status.String(),
			rec.Pegging,
		}); err != nil {
			return err
		}
	}
	return nil
}

func rollupCSV(result *dto.RollupResult, config Config) error {
	writer, closeFn, err := csvWriter(config, "standard_costs.csv")
	if err != nil {
		return err
	}
	defer closeFn()

	if err := writer.Write([]string{
		"item_id", "material", "labor", "overhead", "total", "effective_date",
	}); err != nil {
		return err
	}
	for _, record := range result.Records {
		breakdown := record.Breakdown
		if err := writer.Write([]string{
			string(record.ItemID),
			breakdown[entities.Material].StringFixed(2),
			breakdown[entities.Labor].StringFixed(2),
			breakdown[entities.Overhead].StringFixed(2),
			breakdown.Total().StringFixed(2),
			record.EffectiveDate.Format(time.DateOnly),
		}); err != nil {
			return err
		}
	}
	return nil
}

func csvWriter(config Config, filename string) (*csv.Writer, func(), error) {
	if config.OutputDir == "" {
		writer := csv.NewWriter(os.Stdout)
		return writer, writer.Flush, nil
	}
	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(filepath.Join(config.OutputDir, filename))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	writer := csv.NewWriter(file)
	return writer, func() {
		writer.Flush()
		file.Close()
	}, nil
}
