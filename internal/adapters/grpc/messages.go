package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/factorio-calculator/internal/application/production/queries"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
)

// CalculateRequest asks for a production forest; a non-empty Name saves it
type CalculateRequest struct {
	Targets []services.Target `json:"targets"`
	Name    string            `json:"name,omitempty"`
}

// RecipesRequest lists the recipes for Item, or all recipes
type RecipesRequest struct {
	Item string `json:"item,omitempty"`
}

// RecipesResult is the recipe listing
type RecipesResult struct {
	Item        string                  `json:"item,omitempty" yaml:"item,omitempty"`
	Recipes     []queries.RecipeSummary `json:"recipes" yaml:"recipes"`
	HasMultiple bool                    `json:"has_multiple,omitempty" yaml:"has_multiple,omitempty"`
}

// DefaultsResult lists the default configuration of every category seen so far
type DefaultsResult struct {
	DefaultFuel string                                `json:"default_fuel" yaml:"default_fuel"`
	Defaults    []queries.DefaultConfigurationSummary `json:"defaults" yaml:"defaults"`
}

// SetDefaultRequest replaces a category's default configuration
type SetDefaultRequest struct {
	Category      string `json:"category"`
	Configuration string `json:"configuration"`
}

// ExcludeRequest adds a recipe to or removes it from the excluded set
type ExcludeRequest struct {
	RecipeID string `json:"recipe_id"`
	Excluded bool   `json:"excluded"`
}

// ExcludeResult carries the excluded set after the change
type ExcludeResult struct {
	RecipeID string   `json:"recipe_id" yaml:"recipe_id"`
	Excluded []string `json:"excluded" yaml:"excluded"`
}

// HistoryRequest selects saved calculations: one by ID, or the newest Limit
type HistoryRequest struct {
	ID    string `json:"id,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// HistoryResult carries saved calculations, newest first
type HistoryResult struct {
	Calculations []*production.CalculationRecord `json:"calculations" yaml:"calculations"`
}

type empty struct{}

// toStruct converts a JSON-tagged value into a protobuf Struct
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return structpb.NewStruct(fields)
}

// fromStruct fills a JSON-tagged value from a protobuf Struct
func fromStruct(s *structpb.Struct, v interface{}) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}
