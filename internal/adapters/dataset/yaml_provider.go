package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
)

// Document is the YAML catalog format
type Document struct {
	Items    []ItemDocument    `yaml:"items" validate:"omitempty,dive"`
	Recipes  []RecipeDocument  `yaml:"recipes" validate:"required,min=1,dive"`
	Machines []MachineDocument `yaml:"machines" validate:"required,min=1,dive"`
	Modules  []ModuleDocument  `yaml:"modules" validate:"omitempty,dive"`
	Names    map[string]string `yaml:"names"`
	Excluded []string          `yaml:"excluded"`
}

// ItemDocument declares an item, its display name and, for fuels, its energy
type ItemDocument struct {
	ID        string `yaml:"id" validate:"required"`
	Name      string `yaml:"name"`
	FuelValue string `yaml:"fuel_value"`
}

// RecipeDocument declares a recipe. Mining recipes set hardness.
type RecipeDocument struct {
	ID          string             `yaml:"id" validate:"required"`
	Name        string             `yaml:"name"`
	Category    string             `yaml:"category" validate:"required"`
	Time        float64            `yaml:"time" validate:"gt=0"`
	Ingredients map[string]float64 `yaml:"ingredients" validate:"omitempty,dive,keys,required,endkeys,gt=0"`
	Results     map[string]float64 `yaml:"results" validate:"required,min=1,dive,keys,required,endkeys,gt=0"`
	Mining      bool               `yaml:"mining"`
	Hardness    float64            `yaml:"hardness" validate:"gte=0"`
}

// MachineDocument declares an assembler, furnace, drill or pump
type MachineDocument struct {
	ID              string   `yaml:"id" validate:"required"`
	Name            string   `yaml:"name"`
	Categories      []string `yaml:"categories" validate:"required,min=1,dive,required"`
	IngredientSlots int      `yaml:"ingredient_slots" validate:"gte=0"`
	ModuleSlots     int      `yaml:"module_slots" validate:"gte=0"`
	AllowedEffects  []string `yaml:"allowed_effects" validate:"omitempty,dive,oneof=all speed productivity consumption pollution"`
	Speed           float64  `yaml:"speed" validate:"gt=0"`
	Energy          string   `yaml:"energy"`
	Burner          bool     `yaml:"burner"`
	Effectivity     float64  `yaml:"effectivity" validate:"gte=0,lte=1"`
	MiningPower     float64  `yaml:"mining_power" validate:"gte=0"`
}

// ModuleDocument declares a module and the recipes it is limited to
type ModuleDocument struct {
	ID         string             `yaml:"id" validate:"required"`
	Name       string             `yaml:"name"`
	Effects    map[string]float64 `yaml:"effects" validate:"required"`
	Limitation []string           `yaml:"limitation"`
}

// YAMLProvider loads a catalog from a YAML document
type YAMLProvider struct {
	path string
	data []byte
}

// NewYAMLProvider reads the document at path on every Load
func NewYAMLProvider(path string) *YAMLProvider {
	return &YAMLProvider{path: path}
}

// NewYAMLProviderFromReader reads the whole document up front
func NewYAMLProviderFromReader(r io.Reader) (*YAMLProvider, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML dataset: %w", err)
	}
	return &YAMLProvider{data: data}, nil
}

// Load decodes, validates and converts the document
func (p *YAMLProvider) Load(ctx context.Context) (*catalog.Snapshot, error) {
	data := p.data
	if data == nil {
		var err error
		data, err = os.ReadFile(p.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset %s: %w", p.path, err)
		}
	}

	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML dataset: %w", err)
	}

	if err := validateDocument(&doc); err != nil {
		return nil, err
	}

	snapshot, err := doc.Snapshot()
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("DEBUG", "Loaded YAML dataset", map[string]interface{}{
		"path":     p.path,
		"recipes":  len(snapshot.Recipes),
		"machines": len(snapshot.Machines),
		"modules":  len(snapshot.Modules),
		"fuels":    len(snapshot.Fuels),
	})
	return snapshot, nil
}

func validateDocument(doc *Document) error {
	if err := validator.New().Struct(doc); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			var messages []string
			for _, e := range validationErrs {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
			}
			return fmt.Errorf("invalid dataset:\n  %s", strings.Join(messages, "\n  "))
		}
		return fmt.Errorf("invalid dataset: %w", err)
	}
	return nil
}

// Snapshot converts the document into catalog data
func (doc *Document) Snapshot() (*catalog.Snapshot, error) {
	snapshot := &catalog.Snapshot{
		Fuels:    make(map[string]float64),
		Names:    make(map[string]string),
		Excluded: append([]string(nil), doc.Excluded...),
	}

	for id, name := range doc.Names {
		snapshot.Names[id] = name
	}

	for _, item := range doc.Items {
		snapshot.Items = append(snapshot.Items, item.ID)
		if item.Name != "" {
			snapshot.Names[item.ID] = item.Name
		}
		if item.FuelValue != "" {
			value, err := ParseEnergy(item.FuelValue)
			if err != nil {
				return nil, fmt.Errorf("item %s: %w", item.ID, err)
			}
			snapshot.Fuels[item.ID] = value
		}
	}

	for _, r := range doc.Recipes {
		var recipe *catalog.Recipe
		var err error
		if r.Mining {
			recipe, err = catalog.NewMiningRecipe(r.ID, r.Category, r.Time, r.Hardness, r.Results)
		} else {
			recipe, err = catalog.NewRecipe(r.ID, r.Category, r.Time, r.Ingredients, r.Results)
		}
		if err != nil {
			return nil, err
		}
		snapshot.Recipes = append(snapshot.Recipes, recipe)
		if r.Name != "" {
			snapshot.Names[r.ID] = r.Name
		}
	}

	for _, m := range doc.Machines {
		energy := 0.0
		if m.Energy != "" {
			var err error
			if energy, err = ParseEnergy(m.Energy); err != nil {
				return nil, fmt.Errorf("machine %s: %w", m.ID, err)
			}
		}
		snapshot.Machines = append(snapshot.Machines, &catalog.Machine{
			ID:             m.ID,
			Categories:     m.Categories,
			MaxIngredients: m.IngredientSlots,
			ModuleSlots:    m.ModuleSlots,
			AllowedEffects: m.AllowedEffects,
			RequiresFuel:   m.Burner,
			FuelEfficiency: m.Effectivity,
			Energy:         energy,
			Speed:          m.Speed,
			MiningPower:    m.MiningPower,
		})
		if m.Name != "" {
			snapshot.Names[m.ID] = m.Name
		}
	}

	for _, m := range doc.Modules {
		snapshot.Modules = append(snapshot.Modules, &catalog.Module{
			ID:         m.ID,
			Effects:    m.Effects,
			Limitation: m.Limitation,
		})
		if m.Name != "" {
			snapshot.Names[m.ID] = m.Name
		}
	}

	return snapshot, nil
}
