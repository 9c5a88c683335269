package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/internal/domain/shared"
	"github.com/andrescamacho/factorio-calculator/test/helpers"
)

type recordedLog struct {
	level   string
	message string
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []recordedLog
}

func (l *recordingLogger) Log(level, message string, metadata map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, recordedLog{level: level, message: message})
}

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

func newCalculator() *services.Calculator {
	planner, _ := helpers.NewTestPlanner(helpers.VanillaCatalog())
	return services.NewCalculator(planner)
}

func TestCalculator_SolvesTargetsIndependently(t *testing.T) {
	// Arrange
	calculator := newCalculator()
	logger := &recordingLogger{}
	ctx := common.WithLogger(context.Background(), logger)

	// Act
	result := calculator.Calculate(ctx, []services.Target{
		{Kind: services.TargetItem, ID: "electronic-circuit", Rate: 1},
		{Kind: services.TargetItem, ID: "unobtainium", Rate: 1},
		{Kind: services.TargetRecipe, ID: "copper-cable", Rate: 1},
		{Kind: services.TargetAuto, ID: "iron-gear-wheel", Rate: 2},
		{Kind: services.TargetItem, ID: "iron-plate", Rate: -1},
	})

	// Assert
	require.Len(t, result.Roots, 3)
	assert.Equal(t, "electronic-circuit", result.Roots[0].Product())
	assert.InDelta(t, 2.0, result.Roots[1].Rate(), 1e-9)
	assert.Equal(t, "iron-gear-wheel", result.Roots[2].Product())

	require.Len(t, result.Failures, 2)
	var unknown *production.UnknownRecipeOrItemError
	assert.ErrorAs(t, result.Failures[0].Err, &unknown)
	var invalid *shared.ValidationError
	assert.ErrorAs(t, result.Failures[1].Err, &invalid)
	assert.Equal(t, "rate", invalid.Field)

	require.Error(t, result.Err())
	assert.Contains(t, result.Err().Error(), "unobtainium")
	assert.Equal(t, 3, logger.count("DEBUG"))
	assert.Equal(t, 2, logger.count("WARNING"))
}

func TestCalculator_AutoFallsBackToRecipe(t *testing.T) {
	planner, _ := helpers.NewTestPlanner(helpers.OilCatalog())
	calculator := services.NewCalculator(planner)

	result := calculator.Calculate(context.Background(), []services.Target{
		{ID: "basic-oil-processing", Rate: 1},
	})

	require.NoError(t, result.Err())
	require.Len(t, result.Roots, 1)
	assert.False(t, result.Roots[0].HasProduct())
}

func TestCalculator_BranchFailuresKeepTheTree(t *testing.T) {
	planner, _ := helpers.NewTestPlanner(helpers.FuelLoopCatalog(1e6))
	calculator := services.NewCalculator(planner)

	result := calculator.Calculate(context.Background(), []services.Target{
		{Kind: services.TargetItem, ID: "widget", Rate: 10},
	})

	require.Len(t, result.Roots, 1)
	require.Len(t, result.Failures, 1)
	var loop *production.UnsatisfiableFuelLoopError
	assert.ErrorAs(t, result.Failures[0].Err, &loop)
}

func TestCalculator_UnknownKind(t *testing.T) {
	result := newCalculator().Calculate(context.Background(), []services.Target{
		{Kind: "fluid", ID: "water", Rate: 1},
	})

	assert.Empty(t, result.Roots)
	assert.Error(t, result.Err())
}

func TestCalculator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newCalculator().Calculate(ctx, []services.Target{
		{Kind: services.TargetItem, ID: "electronic-circuit", Rate: 1},
	})

	assert.Empty(t, result.Roots)
	require.Len(t, result.Failures, 1)
	assert.ErrorIs(t, result.Failures[0].Err, context.Canceled)
}

func TestCalculator_EmptyTargets(t *testing.T) {
	result := newCalculator().Calculate(context.Background(), nil)

	assert.Empty(t, result.Roots)
	assert.NoError(t, result.Err())
}

func TestCalculator_LogsFuelLoops(t *testing.T) {
	// Arrange
	planner, _ := helpers.NewTestPlanner(helpers.FuelLoopCatalog(4e6))
	calculator := services.NewCalculator(planner)
	logger := &recordingLogger{}
	ctx := common.WithLogger(context.Background(), logger)

	// Act
	result := calculator.Calculate(ctx, []services.Target{
		{Kind: services.TargetItem, ID: "widget", Rate: 40},
	})

	// Assert
	require.NoError(t, result.Err())
	loops := services.FuelLoops(result.Roots[0])
	require.Len(t, loops, 1)
	assert.Equal(t, "coal", loops[0].Product())
	assert.InDelta(t, 0.25, loops[0].SelfConsumption(), 1e-9)
	assert.InDelta(t, 10.0, loops[0].FuelBase(), 1e-9)
	assert.Equal(t, 2, logger.count("DEBUG"))
}
