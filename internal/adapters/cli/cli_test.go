package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/factorio-calculator/internal/adapters/cli"
	grpcadapter "github.com/andrescamacho/factorio-calculator/internal/adapters/grpc"
	"github.com/andrescamacho/factorio-calculator/internal/application/mediator"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/views"
	"github.com/andrescamacho/factorio-calculator/internal/application/setup"
	"github.com/andrescamacho/factorio-calculator/test/helpers"
)

// localOpener serves every command from one in-process engine so changes carry over
func localOpener(t *testing.T) cli.ClientOpener {
	t.Helper()
	cat := helpers.VanillaCatalog()
	planner, resolver := helpers.NewTestPlanner(cat)
	engine := &setup.Engine{
		Catalog:    cat,
		Resolver:   resolver,
		Planner:    planner,
		Calculator: services.NewCalculator(planner),
	}
	registry := setup.NewHandlerRegistry(engine, helpers.NewMockConfigurationStore(nil),
		helpers.NewMockExclusionRepository(), helpers.NewMockCalculationRepository(), nil)
	m := mediator.NewMediator()
	require.NoError(t, registry.RegisterProductionHandlers(m))

	client := grpcadapter.NewCalculatorClientLocal(grpcadapter.NewCalculatorService(m, views.NewPresenter(cat)))
	return func(ctx context.Context, opts *cli.Options) (cli.Client, error) {
		return client, nil
	}
}

func run(t *testing.T, open cli.ClientOpener, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := cli.NewRootCommandWith(open)
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCalculate_PrintsTree(t *testing.T) {
	// Act
	out, err := run(t, localOpener(t), "calculate", "iron-gear-wheel=8/2")

	// Assert
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Iron gear wheel at 4 items/s requires 2.6667 Assembling machine 2", lines[0])
	assert.Equal(t, "└── Iron plate at 8 items/s requires 12.8 Electric furnace", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "    └── Iron ore at 8 items/s requires "), lines[2])
}

func TestCalculate_TotalsAndFailures(t *testing.T) {
	out, err := run(t, localOpener(t), "calculate", "electronic-circuit=1", "unobtainium=1", "--totals")

	require.NoError(t, err)
	assert.Contains(t, out, "Electronic circuit at 1 item/s")
	assert.Contains(t, out, "├── Copper cable at 3 items/s")
	assert.Contains(t, out, "✗ unobtainium: ")
	assert.Contains(t, out, "Items:\n")
	assert.Contains(t, out, "Machines:\n")
	assert.Contains(t, out, "Total: ")
	assert.Contains(t, out, "electricity")
}

func TestCalculate_StructuredOutput(t *testing.T) {
	open := localOpener(t)

	t.Run("json", func(t *testing.T) {
		out, err := run(t, open, "calculate", "--recipe", "copper-cable=2", "-o", "json")
		require.NoError(t, err)

		var view views.CalculationView
		require.NoError(t, json.Unmarshal([]byte(out), &view))
		require.Len(t, view.Roots, 1)
		assert.Equal(t, "copper-cable", view.Roots[0].Key)
		assert.InDelta(t, 2.0, view.Roots[0].RecipeRate, 1e-9)
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := run(t, open, "calculate", "iron-plate=2", "-o", "yaml")
		require.NoError(t, err)

		var view views.CalculationView
		require.NoError(t, yaml.Unmarshal([]byte(out), &view))
		require.Len(t, view.Roots, 1)
		require.NotNil(t, view.Roots[0].Rate)
		assert.InDelta(t, 2.0, *view.Roots[0].Rate, 1e-9)
	})
}

func TestCalculate_RejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing rate", []string{"calculate", "iron-plate"}, "expected item=rate"},
		{"bad expression", []string{"calculate", "iron-plate=2*"}, "invalid rate for iron-plate"},
		{"negative rate", []string{"calculate", "iron-plate=1-3"}, "is negative"},
		{"no targets", []string{"calculate"}, "at least one"},
		{"unknown format", []string{"calculate", "iron-plate=1", "-o", "xml"}, "unknown output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, localOpener(t), tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRecipes_ListsProducers(t *testing.T) {
	out, err := run(t, localOpener(t), "recipes", "copper-cable")

	require.NoError(t, err)
	assert.Contains(t, out, "Recipe")
	assert.Contains(t, out, "copper-cable")
	assert.Contains(t, out, "1 copper-plate")
	assert.Contains(t, out, "2 copper-cable")
	assert.NotContains(t, out, "several recipes")
}

func TestDefaultsAndExclusions_ChangeLaterCalculations(t *testing.T) {
	// Arrange
	open := localOpener(t)

	// Act
	setOut, err := run(t, open, "defaults", "set", "smelting", "stone-furnace|")
	require.NoError(t, err)
	listOut, err := run(t, open, "defaults", "list")
	require.NoError(t, err)
	calcOut, err := run(t, open, "calculate", "iron-plate=1")
	require.NoError(t, err)
	excludeOut, err := run(t, open, "exclude", "iron-ore")
	require.NoError(t, err)
	includeOut, err := run(t, open, "include", "iron-ore")
	require.NoError(t, err)
	_, badErr := run(t, open, "defaults", "set", "smelting", "assembling-machine-2|")

	// Assert
	assert.Equal(t, "✓ smelting now uses stone-furnace&coal|\n", setOut)
	assert.Contains(t, listOut, "Default fuel: coal")
	assert.Contains(t, listOut, "stone-furnace&coal|")
	assert.Contains(t, calcOut, "Iron plate at 1 item/s requires 3.2 Stone furnace burning Coal")
	assert.Contains(t, excludeOut, "✓ iron-ore excluded")
	assert.Contains(t, excludeOut, "Excluded recipes: iron-ore")
	assert.Equal(t, "✓ iron-ore included\n", includeOut)
	require.Error(t, badErr)
	assert.Contains(t, badErr.Error(), "failed to set default for smelting")
}

func TestHistory_ShowsSavedCalculations(t *testing.T) {
	open := localOpener(t)

	calcOut, err := run(t, open, "calculate", "iron-gear-wheel=1", "--save", "gears")
	require.NoError(t, err)
	listOut, err := run(t, open, "history")
	require.NoError(t, err)
	jsonOut, err := run(t, open, "history", "-o", "json")
	require.NoError(t, err)

	assert.Contains(t, calcOut, "✓ Saved calculation ")
	assert.Contains(t, listOut, "gears")
	assert.Contains(t, listOut, "iron-gear-wheel=1")

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(jsonOut), &records))
	require.Len(t, records, 1)
	id := records[0]["id"].(string)

	showOut, err := run(t, open, "history", id)
	require.NoError(t, err)
	assert.Contains(t, showOut, "Calculation "+id)
	assert.Contains(t, showOut, "iron-plate")

	_, err = run(t, open, "history", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}
