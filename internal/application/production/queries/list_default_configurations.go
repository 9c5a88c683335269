package queries

import (
	"context"
	"fmt"
	"sort"

	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
)

// ListDefaultConfigurationsQuery lists the cached default configuration per category
type ListDefaultConfigurationsQuery struct{}

// DefaultConfigurationSummary is one category's default
type DefaultConfigurationSummary struct {
	Category      string `json:"category" yaml:"category"`
	Configuration string `json:"configuration" yaml:"configuration"`
}

// ListDefaultConfigurationsResponse is sorted by category
type ListDefaultConfigurationsResponse struct {
	DefaultFuel string
	Defaults    []DefaultConfigurationSummary
}

// ListDefaultConfigurationsHandler handles the ListDefaultConfigurations query
type ListDefaultConfigurationsHandler struct {
	resolver *services.DefaultConfigurationResolver
}

// NewListDefaultConfigurationsHandler creates a new ListDefaultConfigurationsHandler
func NewListDefaultConfigurationsHandler(resolver *services.DefaultConfigurationResolver) *ListDefaultConfigurationsHandler {
	return &ListDefaultConfigurationsHandler{resolver: resolver}
}

// Handle executes the ListDefaultConfigurations query
func (h *ListDefaultConfigurationsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*ListDefaultConfigurationsQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListDefaultConfigurationsQuery")
	}

	snapshot := h.resolver.Snapshot()
	response := &ListDefaultConfigurationsResponse{DefaultFuel: h.resolver.DefaultFuel()}
	for category, serialized := range snapshot {
		response.Defaults = append(response.Defaults, DefaultConfigurationSummary{
			Category:      category,
			Configuration: serialized,
		})
	}
	sort.Slice(response.Defaults, func(i, j int) bool {
		return response.Defaults[i].Category < response.Defaults[j].Category
	})
	return response, nil
}
