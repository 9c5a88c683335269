package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/internal/domain/shared"
)

// TargetKind says how a target id is interpreted
type TargetKind string

const (
	// TargetAuto treats the id as an item if one exists, otherwise as a recipe
	TargetAuto TargetKind = "auto"

	// TargetItem requests items per second
	TargetItem TargetKind = "item"

	// TargetRecipe requests recipe cycles per second
	TargetRecipe TargetKind = "recipe"
)

// Target is one requested output
type Target struct {
	Kind TargetKind `json:"kind" yaml:"kind"`
	ID   string     `json:"id" yaml:"id"`
	Rate float64    `json:"rate" yaml:"rate"`
}

func (t Target) String() string {
	return fmt.Sprintf("%s %s@%g", t.Kind, t.ID, t.Rate)
}

// TargetFailure records why one target could not be solved (fully)
type TargetFailure struct {
	Target Target
	Err    error
}

// CalculationResult is the forest built for a set of targets
type CalculationResult struct {
	Roots    []*production.Node
	Failures []TargetFailure
	Duration time.Duration
}

// Err joins every failure, nil when all targets were solved
func (r *CalculationResult) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = fmt.Errorf("%s: %w", f.Target.ID, f.Err)
	}
	return errors.Join(errs...)
}

// Calculator builds one production tree per target. Targets are solved
// independently; a failing target never prevents the others.
type Calculator struct {
	planner *production.Planner
}

// NewCalculator creates a calculator over a planner
func NewCalculator(planner *production.Planner) *Calculator {
	return &Calculator{planner: planner}
}

// Planner returns the planner the calculator builds with
func (c *Calculator) Planner() *production.Planner {
	return c.planner
}

// Calculate builds a tree per target. Targets whose tree has branch failures
// are returned as roots and also listed in Failures; unknown or invalid
// targets produce no root.
func (c *Calculator) Calculate(ctx context.Context, targets []Target) *CalculationResult {
	logger := common.LoggerFromContext(ctx)
	start := time.Now()
	result := &CalculationResult{}

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			result.Failures = append(result.Failures, TargetFailure{Target: target, Err: err})
			continue
		}

		root, err := c.build(target)
		if root != nil {
			result.Roots = append(result.Roots, root)
			logger.Log("DEBUG", "Built production tree", map[string]interface{}{
				"target":   target.ID,
				"rate":     target.Rate,
				"nodes":    root.CountNodes(),
				"depth":    root.TotalDepth(),
				"machines": root.MachineCount(),
			})
			logFuelLoops(logger, root)
		}
		if err != nil {
			result.Failures = append(result.Failures, TargetFailure{Target: target, Err: err})
			logger.Log("WARNING", "Target could not be fully solved", map[string]interface{}{
				"target": target.ID,
				"error":  err.Error(),
			})
		}
	}

	result.Duration = time.Since(start)
	return result
}

// FuelLoops returns the fuel roots of a tree whose production burns part of
// their own output, solved or not
func FuelLoops(root *production.Node) []*production.Node {
	var loops []*production.Node
	root.Walk(func(n *production.Node) {
		if !n.IsFuelRoot() {
			return
		}
		var unsatisfiable *production.UnsatisfiableFuelLoopError
		if n.SelfConsumption() > 0 || errors.As(n.Err(), &unsatisfiable) {
			loops = append(loops, n)
		}
	})
	return loops
}

func logFuelLoops(logger common.Logger, root *production.Node) {
	for _, n := range FuelLoops(root) {
		level := "DEBUG"
		message := "Solved fuel loop"
		if n.Err() != nil {
			level = "WARNING"
			message = "Fuel loop cannot be satisfied"
		}
		logger.Log(level, message, map[string]interface{}{
			"fuel":             n.Product(),
			"base":             n.FuelBase(),
			"self_consumption": n.SelfConsumption(),
			"rate":             n.Rate(),
		})
	}
}

func (c *Calculator) build(target Target) (*production.Node, error) {
	if math.IsInf(target.Rate, 0) || target.Rate < 0 {
		return nil, shared.NewValidationError("rate", fmt.Sprintf("must be a finite non-negative number, got %v", target.Rate))
	}

	switch target.Kind {
	case TargetItem:
		return c.planner.FromItem(target.ID, target.Rate)
	case TargetRecipe:
		return c.planner.FromRecipe(target.ID, target.Rate)
	case TargetAuto, "":
		if c.planner.Catalog().HasItem(target.ID) {
			return c.planner.FromItem(target.ID, target.Rate)
		}
		return c.planner.FromRecipe(target.ID, target.Rate)
	default:
		return nil, shared.NewValidationError("kind", fmt.Sprintf("unknown target kind %q", target.Kind))
	}
}
