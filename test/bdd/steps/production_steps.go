package steps

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/factorio-calculator/internal/adapters/dataset"
	"github.com/andrescamacho/factorio-calculator/internal/adapters/persistence"
	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/application/mediator"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/commands"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/queries"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/views"
	"github.com/andrescamacho/factorio-calculator/internal/application/setup"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/test/helpers"
)

const tolerance = 1e-4

type productionContext struct {
	ctx       context.Context
	provider  catalog.DataProvider
	engine    *setup.Engine
	med       mediator.Mediator
	presenter *views.Presenter

	response *commands.CalculateProductionResponse
	history  []*production.CalculationRecord
	err      error
}

func (pc *productionContext) reset() {
	pc.ctx = common.WithLogger(context.Background(), helpers.NewMockLogger())
	pc.provider = nil
	pc.engine = nil
	pc.med = nil
	pc.presenter = nil
	pc.response = nil
	pc.history = nil
	pc.err = nil
}

// mediator builds the engine on first use so Given steps can change the data first
func (pc *productionContext) mediator() (mediator.Mediator, error) {
	if pc.med != nil {
		return pc.med, nil
	}
	if pc.provider == nil {
		return nil, fmt.Errorf("no game data loaded")
	}

	db := helpers.SharedTestDB
	configStore := persistence.NewGormDefaultConfigurationRepository(db)
	exclusionRepo := persistence.NewGormExcludedRecipeRepository(db)
	calcRepo := persistence.NewGormCalculationRepository(db)

	engine, err := setup.NewEngine(pc.ctx, setup.EngineOptions{
		Provider:      pc.provider,
		DefaultFuel:   "coal",
		ConfigStore:   configStore,
		ExclusionRepo: exclusionRepo,
	})
	if err != nil {
		return nil, err
	}

	m := mediator.NewMediator()
	if err := setup.NewHandlerRegistry(engine, configStore, exclusionRepo, calcRepo, nil).RegisterProductionHandlers(m); err != nil {
		return nil, err
	}

	pc.engine = engine
	pc.med = m
	pc.presenter = views.NewPresenter(engine.Catalog)
	return m, nil
}

// restart drops the engine so the next step reloads saved preferences
func (pc *productionContext) restart() error {
	pc.engine = nil
	pc.med = nil
	_, err := pc.mediator()
	return err
}

// Given steps

func (pc *productionContext) theBuiltInGameData() error {
	pc.provider = dataset.NewVanillaProvider()
	return nil
}

func (pc *productionContext) theGameData(doc *godog.DocString) error {
	provider, err := dataset.NewYAMLProviderFromReader(strings.NewReader(doc.Content))
	if err != nil {
		return err
	}
	pc.provider = provider
	return nil
}

func (pc *productionContext) recipeIsExcluded(recipeID string) error {
	if err := pc.exclude(recipeID, true); err != nil {
		return err
	}
	return pc.err
}

func (pc *productionContext) categoryDefaultsTo(category, serialized string) error {
	m, err := pc.mediator()
	if err != nil {
		return err
	}
	_, err = m.Send(pc.ctx, &commands.SetDefaultConfigurationCommand{Category: category, Serialized: serialized})
	return err
}

// When steps

func (pc *productionContext) iRequest(table *messages.PickleTable) error {
	targets, err := parseTargets(table)
	if err != nil {
		return err
	}
	return pc.calculate(targets, "")
}

func (pc *productionContext) iRequestItemsPerSecondOf(rate float64, item string) error {
	return pc.calculate([]services.Target{{Kind: services.TargetItem, ID: item, Rate: rate}}, "")
}

func (pc *productionContext) iSaveItemsPerSecondOfAs(rate float64, item, name string) error {
	return pc.calculate([]services.Target{{Kind: services.TargetItem, ID: item, Rate: rate}}, name)
}

func (pc *productionContext) calculate(targets []services.Target, name string) error {
	m, err := pc.mediator()
	if err != nil {
		return err
	}
	resp, err := m.Send(pc.ctx, &commands.CalculateProductionCommand{Targets: targets, Name: name})
	pc.err = err
	if err == nil {
		pc.response = resp.(*commands.CalculateProductionResponse)
	}
	return nil
}

func (pc *productionContext) iExclude(recipeID string) error {
	return pc.exclude(recipeID, true)
}

func (pc *productionContext) iInclude(recipeID string) error {
	return pc.exclude(recipeID, false)
}

func (pc *productionContext) exclude(recipeID string, excluded bool) error {
	m, err := pc.mediator()
	if err != nil {
		return err
	}
	_, pc.err = m.Send(pc.ctx, &commands.ExcludeRecipeCommand{RecipeID: recipeID, Excluded: excluded})
	return nil
}

func (pc *productionContext) iSetTheDefaultForTo(category, serialized string) error {
	m, err := pc.mediator()
	if err != nil {
		return err
	}
	_, pc.err = m.Send(pc.ctx, &commands.SetDefaultConfigurationCommand{Category: category, Serialized: serialized})
	return nil
}

func (pc *productionContext) iChangeTheRateOfTo(item string, rate float64) error {
	root, err := pc.root(item)
	if err != nil {
		return err
	}
	root.SetRate(rate)
	return nil
}

func (pc *productionContext) iChangeTheMachineOfTo(item, serialized string) error {
	root, err := pc.root(item)
	if err != nil {
		return err
	}
	config, err := production.ParseConfiguration(serialized, pc.engine.Catalog, "coal")
	if err != nil {
		return err
	}
	pc.err = root.SetConfiguration(config)
	return nil
}

func (pc *productionContext) theCalculatorRestarts() error {
	return pc.restart()
}

func (pc *productionContext) iListSavedCalculations() error {
	m, err := pc.mediator()
	if err != nil {
		return err
	}
	resp, err := m.Send(pc.ctx, &queries.ListCalculationsQuery{Limit: 10})
	if err != nil {
		return err
	}
	pc.history = resp.(*queries.ListCalculationsResponse).Calculations
	return nil
}

// Then steps

func (pc *productionContext) theRootShouldRead(item, expected string) error {
	root, err := pc.root(item)
	if err != nil {
		return err
	}
	if got := pc.presenter.NodeText(root); got != expected {
		return fmt.Errorf("expected %q, got %q", expected, got)
	}
	return nil
}

func (pc *productionContext) theTreeShouldNeed(item string, table *messages.PickleTable) error {
	root, err := pc.root(item)
	if err != nil {
		return err
	}
	return forEachRow(table, func(row map[string]string) error {
		node, ok := root.Find(strings.Split(row["path"], "/"))
		if !ok {
			return fmt.Errorf("no node at %s", row["path"])
		}
		return pc.checkNode(row, node)
	})
}

func (pc *productionContext) checkNode(row map[string]string, node *production.Node) error {
	if err := expectNumber(row, "rate", node.Rate()); err != nil {
		return fmt.Errorf("%s: %w", row["path"], err)
	}
	if err := expectNumber(row, "machines", node.MachineCount()); err != nil {
		return fmt.Errorf("%s: %w", row["path"], err)
	}
	if machine, ok := row["machine"]; ok {
		got := "raw"
		if config := node.Configuration(); config != nil {
			got = config.Machine().ID
		}
		if got != machine {
			return fmt.Errorf("%s: expected machine %s, got %s", row["path"], machine, got)
		}
	}
	return nil
}

func (pc *productionContext) theTotalsShouldList(table *messages.PickleTable) error {
	if pc.response == nil {
		return fmt.Errorf("no calculation: %v", pc.err)
	}
	return forEachRow(table, func(row map[string]string) error {
		rollup, ok := pc.response.Totals.Item(row["item"])
		if !ok {
			return fmt.Errorf("no total for %s", row["item"])
		}
		if err := expectNumber(row, "rate", rollup.Rate()); err != nil {
			return fmt.Errorf("%s: %w", row["item"], err)
		}
		if err := expectNumber(row, "machines", rollup.MachineCount()); err != nil {
			return fmt.Errorf("%s: %w", row["item"], err)
		}
		return nil
	})
}

func (pc *productionContext) theTotalEnergyDrawShouldBeKW(kw float64) error {
	if pc.response == nil {
		return fmt.Errorf("no calculation: %v", pc.err)
	}
	got := pc.response.Totals.TotalEnergyDraw() / 1000
	if math.Abs(got-kw) > tolerance {
		return fmt.Errorf("expected %g kW, got %g kW", kw, got)
	}
	return nil
}

func (pc *productionContext) isRawMaterialIn(item, rootItem string) error {
	root, err := pc.root(rootItem)
	if err != nil {
		return err
	}
	node, ok := root.Child(item)
	if !ok {
		return fmt.Errorf("%s has no %s child", rootItem, item)
	}
	if !node.IsRaw() {
		return fmt.Errorf("expected %s to be raw, made by %s", item, node.Recipe().ID())
	}
	return nil
}

func (pc *productionContext) theFuelOfShouldBeAtItemsPerSecond(item, fuel string, rate float64) error {
	root, err := pc.root(item)
	if err != nil {
		return err
	}
	node, ok := pc.fuelNode(root)
	if !ok {
		return fmt.Errorf("no fuel under %s", item)
	}
	if node.Product() != fuel {
		return fmt.Errorf("expected fuel %s, got %s", fuel, node.Product())
	}
	if math.Abs(node.Rate()-rate) > tolerance {
		return fmt.Errorf("expected %s at %g/s, got %g/s", fuel, rate, node.Rate())
	}
	return nil
}

// fuelNode finds the first fuel child in the tree
func (pc *productionContext) fuelNode(root *production.Node) (*production.Node, bool) {
	var found *production.Node
	root.Walk(func(n *production.Node) {
		if found == nil && n.IsFuel() {
			found = n
		}
	})
	return found, found != nil
}

func (pc *productionContext) theTargetShouldFailWith(item, fragment string) error {
	if pc.response == nil {
		return fmt.Errorf("no calculation: %v", pc.err)
	}
	for _, failure := range pc.response.Failures {
		if failure.Target.ID == item {
			if !strings.Contains(failure.Err.Error(), fragment) {
				return fmt.Errorf("expected %q in %q", fragment, failure.Err.Error())
			}
			return nil
		}
	}
	return fmt.Errorf("%s did not fail", item)
}

func (pc *productionContext) theRequestShouldBeRejectedWith(fragment string) error {
	if pc.err == nil {
		return fmt.Errorf("expected an error containing %q", fragment)
	}
	if !strings.Contains(pc.err.Error(), fragment) {
		return fmt.Errorf("expected %q in %q", fragment, pc.err.Error())
	}
	return nil
}

func (pc *productionContext) theSavedCalculationsShouldBe(table *messages.PickleTable) error {
	var names []string
	for _, record := range pc.history {
		names = append(names, record.Name)
	}
	var expected []string
	if err := forEachRow(table, func(row map[string]string) error {
		expected = append(expected, row["name"])
		return nil
	}); err != nil {
		return err
	}
	sort.Strings(names)
	sort.Strings(expected)
	if strings.Join(names, ",") != strings.Join(expected, ",") {
		return fmt.Errorf("expected %v, got %v", expected, names)
	}
	return nil
}

func (pc *productionContext) root(item string) (*production.Node, error) {
	if pc.response == nil {
		return nil, fmt.Errorf("no calculation: %v", pc.err)
	}
	for _, root := range pc.response.Roots {
		if root.Product() == item || (root.Recipe() != nil && root.Recipe().ID() == item) {
			return root, nil
		}
	}
	return nil, fmt.Errorf("no tree for %s", item)
}

// Table helpers

func forEachRow(table *messages.PickleTable, fn func(row map[string]string) error) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("table needs a header and at least one row")
	}
	header := table.Rows[0].Cells
	for _, r := range table.Rows[1:] {
		row := make(map[string]string, len(header))
		for i, cell := range r.Cells {
			row[header[i].Value] = cell.Value
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func expectNumber(row map[string]string, column string, got float64) error {
	raw, ok := row[column]
	if !ok || raw == "" {
		return nil
	}
	want, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q", column, raw)
	}
	if math.Abs(got-want) > tolerance {
		return fmt.Errorf("expected %s %g, got %g", column, want, got)
	}
	return nil
}

func parseTargets(table *messages.PickleTable) ([]services.Target, error) {
	var targets []services.Target
	err := forEachRow(table, func(row map[string]string) error {
		rate, err := strconv.ParseFloat(row["rate"], 64)
		if err != nil {
			return fmt.Errorf("invalid rate %q", row["rate"])
		}
		kind := services.TargetItem
		if k := row["kind"]; k != "" {
			kind = services.TargetKind(k)
		}
		targets = append(targets, services.Target{Kind: kind, ID: row["id"], Rate: rate})
		return nil
	})
	return targets, err
}

// InitializeProductionScenario registers the calculator steps
func InitializeProductionScenario(sc *godog.ScenarioContext) {
	pc := &productionContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		pc.reset()
		return ctx, helpers.TruncateAllTables()
	})

	sc.Step(`^the built-in game data$`, pc.theBuiltInGameData)
	sc.Step(`^the game data:$`, pc.theGameData)
	sc.Step(`^recipe "([^"]*)" is excluded$`, pc.recipeIsExcluded)
	sc.Step(`^the "([^"]*)" category defaults to "([^"]*)"$`, pc.categoryDefaultsTo)

	sc.Step(`^I request:$`, pc.iRequest)
	sc.Step(`^I request ([\d.]+) items per second of "([^"]*)"$`, pc.iRequestItemsPerSecondOf)
	sc.Step(`^I save ([\d.]+) items per second of "([^"]*)" as "([^"]*)"$`, pc.iSaveItemsPerSecondOfAs)
	sc.Step(`^I exclude "([^"]*)"$`, pc.iExclude)
	sc.Step(`^I include "([^"]*)"$`, pc.iInclude)
	sc.Step(`^I set the default for "([^"]*)" to "([^"]*)"$`, pc.iSetTheDefaultForTo)
	sc.Step(`^I change the rate of "([^"]*)" to ([\d.]+)$`, pc.iChangeTheRateOfTo)
	sc.Step(`^I change the machine of "([^"]*)" to "([^"]*)"$`, pc.iChangeTheMachineOfTo)
	sc.Step(`^the calculator restarts$`, pc.theCalculatorRestarts)
	sc.Step(`^I list saved calculations$`, pc.iListSavedCalculations)

	sc.Step(`^the "([^"]*)" tree should read "([^"]*)"$`, pc.theRootShouldRead)
	sc.Step(`^the "([^"]*)" tree should need:$`, pc.theTreeShouldNeed)
	sc.Step(`^the totals should list:$`, pc.theTotalsShouldList)
	sc.Step(`^the total energy draw should be ([\d.]+) kW$`, pc.theTotalEnergyDrawShouldBeKW)
	sc.Step(`^"([^"]*)" should be a raw material in the "([^"]*)" tree$`, pc.isRawMaterialIn)
	sc.Step(`^the "([^"]*)" tree should burn "([^"]*)" at ([\d.]+) items per second$`, pc.theFuelOfShouldBeAtItemsPerSecond)
	sc.Step(`^the "([^"]*)" target should fail with "([^"]*)"$`, pc.theTargetShouldFailWith)
	sc.Step(`^the request should be rejected with "([^"]*)"$`, pc.theRequestShouldBeRejectedWith)
	sc.Step(`^the saved calculations should be:$`, pc.theSavedCalculationsShouldBe)
}
