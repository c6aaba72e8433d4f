package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/openfactory/planning/pkg/application/services/orchestration"
	"github.com/openfactory/planning/pkg/configuration"
	"github.com/openfactory/planning/pkg/domain/services"
	csvrepo "github.com/openfactory/planning/pkg/infrastructure/repositories/csv"
	"github.com/openfactory/planning/pkg/infrastructure/repositories/memory"
)

// scenarioFiles names the CSV inputs of one planning scenario
type scenarioFiles struct {
	Items   string
	BOM     string
	Supply  string
	Demands string
}

// resolveScenario fills unset file paths from the scenario directory's
// conventional names
func resolveScenario(dir string, files scenarioFiles) (scenarioFiles, error) {
	if dir != "" {
		if files.Items == "" {
			files.Items = filepath.Join(dir, "items.csv")
		}
		if files.BOM == "" {
			files.BOM = filepath.Join(dir, "bom.csv")
		}
		if files.Supply == "" {
			files.Supply = filepath.Join(dir, "supply.csv")
		}
		if files.Demands == "" {
			files.Demands = filepath.Join(dir, "demands.csv")
		}
	}
	if files.Items == "" || files.BOM == "" {
		return files, fmt.Errorf("items and BOM files are required; pass --scenario or --items/--bom")
	}
	// supply and demands are optional; a plan over an empty book is valid
	if files.Supply != "" {
		if _, err := os.Stat(files.Supply); err != nil {
			files.Supply = ""
		}
	}
	if files.Demands != "" {
		if _, err := os.Stat(files.Demands); err != nil {
			files.Demands = ""
		}
	}
	return files, nil
}

type repoSet struct {
	Items   *memory.ItemRepository
	BOM     *memory.BOMRepository
	Supply  *memory.SupplyRepository
	Demands *memory.DemandRepository
	Recs    *memory.RecommendationRepository
	Costs   *memory.StandardCostRepository
}

// loadRepos loads the scenario CSVs into fresh in-memory repositories
func loadRepos(files scenarioFiles) (*repoSet, error) {
	loader := csvrepo.NewLoader()

	items, err := loader.LoadItems(files.Items)
	if err != nil {
		return nil, err
	}
	lines, err := loader.LoadBOMLines(files.BOM)
	if err != nil {
		return nil, err
	}

	validator := services.NewMasterDataValidator()
	if result := validator.ValidateItems(items); !result.Valid() {
		return nil, fmt.Errorf("invalid item master: %s", strings.Join(result.Errors, "; "))
	}
	if result := validator.ValidateBOMLines(lines); !result.Valid() {
		return nil, fmt.Errorf("invalid BOM: %s", strings.Join(result.Errors, "; "))
	}

	repos := &repoSet{
		Items:   memory.NewItemRepository(len(items)),
		BOM:     memory.NewBOMRepository(len(lines)),
		Supply:  memory.NewSupplyRepository(),
		Demands: memory.NewDemandRepository(),
		Recs:    memory.NewRecommendationRepository(),
		Costs:   memory.NewStandardCostRepository(),
	}
	if err := repos.Items.LoadItems(items); err != nil {
		return nil, err
	}
	if err := repos.BOM.LoadBOMLines(lines); err != nil {
		return nil, err
	}

	if files.Supply != "" {
		positions, err := loader.LoadSupplyPositions(files.Supply)
		if err != nil {
			return nil, err
		}
		if err := repos.Supply.LoadSupplyPositions(positions); err != nil {
			return nil, err
		}
	}
	if files.Demands != "" {
		demands, err := loader.LoadDemands(files.Demands)
		if err != nil {
			return nil, err
		}
		if err := repos.Demands.LoadDemands(demands); err != nil {
			return nil, err
		}
	}
	return repos, nil
}

// buildOrchestrator wires an orchestrator over the loaded repositories using
// the environment configuration
func buildOrchestrator(repos *repoSet) *orchestration.Orchestrator {
	cfg := configuration.Use()
	return orchestration.NewOrchestrator(
		orchestration.Config{
			Workers:                   cfg.Planner.Workers,
			ExpediteToleranceDays:     cfg.Planner.ExpediteToleranceDays,
			ContinueOnMasterDataError: cfg.Planner.ContinueOnMasterDataError,
			RunTimeout:                cfg.Planner.RunTimeout,
		},
		logrus.NewEntry(cfg.Logger()),
		repos.Items, repos.BOM, repos.Supply, repos.Demands, repos.Recs, repos.Costs,
		nil,
	)
}
