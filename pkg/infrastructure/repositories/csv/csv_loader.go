package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openfactory/planning/pkg/domain/entities"
)

// Loader handles loading planning scenario data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

const dateLayout = "2006-01-02"

// LoadItems loads item master records from a CSV file
func (l *Loader) LoadItems(filename string) ([]*entities.Item, error) {
	records, err := readFile(filename, []string{
		"item_id", "description", "procurement", "lead_time_days", "lot_size_policy",
		"fixed_order_qty", "period_days", "safety_stock", "unit_of_measure",
		"material_cost", "resource_rate",
	})
	if err != nil {
		return nil, fmt.Errorf("items file %s: %w", filename, err)
	}

	var items []*entities.Item
	for i, record := range records {
		procurement, err := parseProcurement(record[2])
		if err != nil {
			return nil, fmt.Errorf("items row %d: %w", i+2, err)
		}
		policy, err := parseLotSizePolicy(record[4])
		if err != nil {
			return nil, fmt.Errorf("items row %d: %w", i+2, err)
		}
		leadTime, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, fmt.Errorf("items row %d: invalid lead time %q", i+2, record[3])
		}
		fixedQty, err := parseQuantity(record[5])
		if err != nil {
			return nil, fmt.Errorf("items row %d: invalid fixed order qty %q", i+2, record[5])
		}
		periodDays := 0
		if record[6] != "" {
			if periodDays, err = strconv.Atoi(record[6]); err != nil {
				return nil, fmt.Errorf("items row %d: invalid period days %q", i+2, record[6])
			}
		}
		safetyStock, err := parseQuantity(record[7])
		if err != nil {
			return nil, fmt.Errorf("items row %d: invalid safety stock %q", i+2, record[7])
		}

		item := &entities.Item{
			ID:            entities.ItemID(record[0]),
			Description:   record[1],
			Procurement:   procurement,
			LeadTimeDays:  leadTime,
			LotSizePolicy: policy,
			FixedOrderQty: fixedQty,
			PeriodDays:    periodDays,
			SafetyStock:   safetyStock,
			UnitOfMeasure: record[8],
		}
		if record[9] != "" {
			amount, err := decimal.NewFromString(record[9])
			if err != nil {
				return nil, fmt.Errorf("items row %d: invalid material cost %q", i+2, record[9])
			}
			item.DirectCosts = append(item.DirectCosts, entities.CostElement{
				Class:  entities.Material,
				Amount: amount,
			})
		}
		if record[10] != "" {
			rate, err := decimal.NewFromString(record[10])
			if err != nil {
				return nil, fmt.Errorf("items row %d: invalid resource rate %q", i+2, record[10])
			}
			item.ResourceRate = rate
		}
		items = append(items, item)
	}
	return items, nil
}

// LoadBOMLines loads BOM lines from a CSV file
func (l *Loader) LoadBOMLines(filename string) ([]*entities.BOMLine, error) {
	records, err := readFile(filename, []string{
		"parent_id", "child_id", "qty_per", "effective_from", "effective_to",
	})
	if err != nil {
		return nil, fmt.Errorf("bom file %s: %w", filename, err)
	}

	var lines []*entities.BOMLine
	for i, record := range records {
		qtyPer, err := parseQuantity(record[2])
		if err != nil {
			return nil, fmt.Errorf("bom row %d: invalid qty per %q", i+2, record[2])
		}
		from, err := time.Parse(dateLayout, record[3])
		if err != nil {
			return nil, fmt.Errorf("bom row %d: invalid effective-from %q", i+2, record[3])
		}
		var to time.Time
		if record[4] != "" {
			if to, err = time.Parse(dateLayout, record[4]); err != nil {
				return nil, fmt.Errorf("bom row %d: invalid effective-to %q", i+2, record[4])
			}
		}
		line, err := entities.NewBOMLine(
			entities.ItemID(record[0]),
			entities.ItemID(record[1]),
			qtyPer,
			entities.DateEffectivity{From: from, To: to},
		)
		if err != nil {
			return nil, fmt.Errorf("bom row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// LoadSupplyPositions loads supply positions from a CSV file. A row with an
// empty order id sets the item's on-hand; other rows append open orders.
func (l *Loader) LoadSupplyPositions(filename string) ([]*entities.SupplyPosition, error) {
	records, err := readFile(filename, []string{
		"item_id", "on_hand", "order_id", "order_qty", "order_due",
	})
	if err != nil {
		return nil, fmt.Errorf("supply file %s: %w", filename, err)
	}

	positions := make(map[entities.ItemID]*entities.SupplyPosition)
	var order []entities.ItemID
	for i, record := range records {
		itemID := entities.ItemID(record[0])
		position, exists := positions[itemID]
		if !exists {
			position = &entities.SupplyPosition{ItemID: itemID}
			positions[itemID] = position
			order = append(order, itemID)
		}

		if record[2] == "" {
			onHand, err := parseQuantity(record[1])
			if err != nil {
				return nil, fmt.Errorf("supply row %d: invalid on hand %q", i+2, record[1])
			}
			position.OnHand += onHand
			continue
		}

		qty, err := parseQuantity(record[3])
		if err != nil {
			return nil, fmt.Errorf("supply row %d: invalid order qty %q", i+2, record[3])
		}
		due, err := time.Parse(dateLayout, record[4])
		if err != nil {
			return nil, fmt.Errorf("supply row %d: invalid order due %q", i+2, record[4])
		}
		supplyOrder, err := entities.NewSupplyOrder(record[2], itemID, qty, due)
		if err != nil {
			return nil, fmt.Errorf("supply row %d: %w", i+2, err)
		}
		position.OpenOrders = append(position.OpenOrders, *supplyOrder)
	}

	out := make([]*entities.SupplyPosition, 0, len(order))
	for _, itemID := range order {
		out = append(out, positions[itemID])
	}
	return out, nil
}

// LoadDemands loads independent demand from a CSV file
func (l *Loader) LoadDemands(filename string) ([]*entities.IndependentDemand, error) {
	records, err := readFile(filename, []string{"item_id", "quantity", "need_date", "source"})
	if err != nil {
		return nil, fmt.Errorf("demands file %s: %w", filename, err)
	}

	var demands []*entities.IndependentDemand
	for i, record := range records {
		qty, err := parseQuantity(record[1])
		if err != nil {
			return nil, fmt.Errorf("demands row %d: invalid quantity %q", i+2, record[1])
		}
		needDate, err := time.Parse(dateLayout, record[2])
		if err != nil {
			return nil, fmt.Errorf("demands row %d: invalid need date %q", i+2, record[2])
		}
		demands = append(demands, &entities.IndependentDemand{
			ItemID:   entities.ItemID(record[0]),
			Quantity: qty,
			NeedDate: needDate,
			Source:   record[3],
		})
	}
	return demands, nil
}

func readFile(filename string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("missing header row")
	}
	if !headerMatches(records[0], expectedHeader) {
		return nil, fmt.Errorf("header mismatch, expected: %v, got: %v", expectedHeader, records[0])
	}
	return records[1:], nil
}

func headerMatches(header, expected []string) bool {
	if len(header) != len(expected) {
		return false
	}
	for i := range header {
		if strings.TrimSpace(strings.ToLower(header[i])) != expected[i] {
			return false
		}
	}
	return true
}

func parseQuantity(s string) (entities.Quantity, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return entities.Quantity(n), nil
}

func parseProcurement(s string) (entities.ProcurementType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "make":
		return entities.Make, nil
	case "buy":
		return entities.Buy, nil
	case "resource":
		return entities.Resource, nil
	default:
		return 0, fmt.Errorf("unknown procurement type %q", s)
	}
}

func parseLotSizePolicy(s string) (entities.LotSizePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "discrete":
		return entities.Discrete, nil
	case "fixed", "fixed_order_quantity":
		return entities.FixedOrderQuantity, nil
	case "period", "period_order_quantity":
		return entities.PeriodOrderQuantity, nil
	default:
		return 0, fmt.Errorf("unknown lot size policy %q", s)
	}
}
