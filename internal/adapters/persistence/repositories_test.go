package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorio-calculator/internal/adapters/persistence"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/test/helpers"
)

var (
	_ production.ConfigurationStore    = (*persistence.GormDefaultConfigurationRepository)(nil)
	_ catalog.ExclusionRepository      = (*persistence.GormExcludedRecipeRepository)(nil)
	_ production.CalculationRepository = (*persistence.GormCalculationRepository)(nil)
)

func TestDefaultConfigurationRepository_SaveAndLoad(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDefaultConfigurationRepository(db)
	ctx := context.Background()

	// Act
	err := repo.SaveAll(ctx, map[string]string{
		"crafting": "assembling-machine-2|speed-module+speed-module",
		"smelting": "stone-furnace&coal|",
	})
	require.NoError(t, err)
	err = repo.SaveAll(ctx, map[string]string{"smelting": "electric-furnace|"})
	require.NoError(t, err)

	// Assert
	defaults, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"crafting": "assembling-machine-2|speed-module+speed-module",
		"smelting": "electric-furnace|",
	}, defaults)
}

func TestDefaultConfigurationRepository_Delete(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDefaultConfigurationRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.SaveAll(ctx, map[string]string{"crafting": "assembling-machine-1|"}))

	require.NoError(t, repo.Delete(ctx, "crafting"))

	defaults, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, defaults)
}

func TestExcludedRecipeRepository_AddListRemove(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormExcludedRecipeRepository(db)
	ctx := context.Background()

	// Act
	require.NoError(t, repo.Add(ctx, "light-oil-cracking"))
	require.NoError(t, repo.Add(ctx, "heavy-oil-cracking"))
	require.NoError(t, repo.Add(ctx, "light-oil-cracking"))

	// Assert
	ids, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"heavy-oil-cracking", "light-oil-cracking"}, ids)

	require.NoError(t, repo.Remove(ctx, "heavy-oil-cracking"))
	require.NoError(t, repo.Remove(ctx, "not-there"))
	ids, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"light-oil-cracking"}, ids)
}

func TestCalculationRepository_SaveAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormCalculationRepository(db)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	record := &production.CalculationRecord{
		ID:      "0b6c5a8e-1d1f-4a3c-9f55-1f2d3c4b5a69",
		Name:    "red science",
		Targets: []production.RecordedTarget{{Kind: "item", ID: "automation-science-pack", Rate: 1}},
		Items: []production.RecordedItem{
			{Item: "automation-science-pack", Rate: 1, Machines: 5},
			{Item: "iron-ore", Rate: 3, Machines: 2, Raw: false},
		},
		EnergyDraw: 750000,
		CreatedAt:  created,
	}

	// Act
	err := repo.Save(ctx, record)
	require.NoError(t, err)
	found, err := repo.FindByID(ctx, record.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, record.Name, found.Name)
	assert.Equal(t, record.Targets, found.Targets)
	assert.Equal(t, record.Items, found.Items)
	assert.Equal(t, 750000.0, found.EnergyDraw)
	assert.True(t, created.Equal(found.CreatedAt))
}

func TestCalculationRepository_NotFound(t *testing.T) {
	repo := persistence.NewGormCalculationRepository(helpers.NewTestDB(t))

	_, err := repo.FindByID(context.Background(), "missing")

	var notFound *production.CalculationNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ID)
}

func TestCalculationRepository_ListNewestFirst(t *testing.T) {
	// Arrange
	repo := persistence.NewGormCalculationRepository(helpers.NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Save(ctx, &production.CalculationRecord{
			ID:        name,
			Name:      name,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	// Act
	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	latest, err := repo.List(ctx, 2)
	require.NoError(t, err)

	// Assert
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Name)
	assert.Equal(t, "first", all[2].Name)
	require.Len(t, latest, 2)
	assert.Equal(t, "second", latest[1].Name)
	assert.Empty(t, latest[0].Items)
}
