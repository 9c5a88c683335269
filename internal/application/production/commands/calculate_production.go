package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andrescamacho/factorio-calculator/internal/adapters/metrics"
	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/internal/domain/shared"
	"github.com/andrescamacho/factorio-calculator/pkg/utils"
)

// CalculateProductionCommand builds one production tree per target and
// aggregates them. A non-empty Name saves the result.
type CalculateProductionCommand struct {
	Targets []services.Target
	Name    string
}

// CalculateProductionResponse holds the forest, its totals and per-target failures
type CalculateProductionResponse struct {
	Roots         []*production.Node
	Totals        *production.Totals
	Failures      []services.TargetFailure
	CalculationID string
	Duration      time.Duration
}

// CalculateProductionHandler handles the CalculateProduction command
type CalculateProductionHandler struct {
	calculator      *services.Calculator
	calculationRepo production.CalculationRepository
	clock           shared.Clock
}

// NewCalculateProductionHandler creates a new CalculateProductionHandler.
// calculationRepo may be nil when calculations are never saved.
func NewCalculateProductionHandler(
	calculator *services.Calculator,
	calculationRepo production.CalculationRepository,
	clock shared.Clock,
) *CalculateProductionHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &CalculateProductionHandler{
		calculator:      calculator,
		calculationRepo: calculationRepo,
		clock:           clock,
	}
}

// Handle executes the CalculateProduction command
func (h *CalculateProductionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CalculateProductionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CalculateProductionCommand")
	}
	if len(cmd.Targets) == 0 {
		return nil, shared.NewValidationError("targets", "at least one target is required")
	}

	result := h.calculator.Calculate(ctx, cmd.Targets)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	response := &CalculateProductionResponse{
		Roots:    result.Roots,
		Totals:   production.Aggregate(result.Roots),
		Failures: result.Failures,
		Duration: result.Duration,
	}

	h.recordMetrics(result)

	if name := strings.TrimSpace(cmd.Name); name != "" {
		id, err := h.save(ctx, name, cmd.Targets, response.Totals)
		if err != nil {
			return nil, err
		}
		response.CalculationID = id
	}

	return response, nil
}

func (h *CalculateProductionHandler) recordMetrics(result *services.CalculationResult) {
	nodes := 0
	for _, root := range result.Roots {
		nodes += root.CountNodes()
		for _, loop := range services.FuelLoops(root) {
			status := "solved"
			if loop.Err() != nil {
				status = "unsatisfiable"
			}
			metrics.RecordFuelLoop(loop.Product(), status)
		}
	}

	status := metrics.StatusSuccess
	switch {
	case len(result.Failures) > 0 && len(result.Roots) == 0:
		status = metrics.StatusFailed
	case len(result.Failures) > 0:
		status = metrics.StatusPartial
	}
	metrics.RecordCalculation(status, result.Duration.Seconds(), nodes)
}

func (h *CalculateProductionHandler) save(ctx context.Context, name string, targets []services.Target, totals *production.Totals) (string, error) {
	if h.calculationRepo == nil {
		return "", fmt.Errorf("saving calculations requires a database")
	}

	record := &production.CalculationRecord{
		ID:         utils.GenerateCalculationID(),
		Name:       name,
		Items:      production.SummarizeTotals(totals),
		EnergyDraw: totals.TotalEnergyDraw(),
		CreatedAt:  h.clock.Now(),
	}
	for _, t := range targets {
		record.Targets = append(record.Targets, production.RecordedTarget{Kind: string(t.Kind), ID: t.ID, Rate: t.Rate})
	}

	if err := h.calculationRepo.Save(ctx, record); err != nil {
		return "", fmt.Errorf("failed to save calculation %q: %w", name, err)
	}

	common.LoggerFromContext(ctx).Log("INFO", "Saved calculation", map[string]interface{}{
		"id":   record.ID,
		"name": name,
	})
	return record.ID, nil
}
