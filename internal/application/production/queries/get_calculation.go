package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
)

// GetCalculationQuery fetches one saved calculation
type GetCalculationQuery struct {
	ID string
}

// GetCalculationResponse wraps the saved record
type GetCalculationResponse struct {
	Calculation *production.CalculationRecord
}

// GetCalculationHandler handles the GetCalculation query
type GetCalculationHandler struct {
	repo production.CalculationRepository
}

// NewGetCalculationHandler creates a new GetCalculationHandler
func NewGetCalculationHandler(repo production.CalculationRepository) *GetCalculationHandler {
	return &GetCalculationHandler{repo: repo}
}

// Handle executes the GetCalculation query
func (h *GetCalculationHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetCalculationQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetCalculationQuery")
	}

	record, err := h.repo.FindByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	return &GetCalculationResponse{Calculation: record}, nil
}

// ListCalculationsQuery lists saved calculations, newest first
type ListCalculationsQuery struct {
	Limit int
}

// ListCalculationsResponse contains the saved records
type ListCalculationsResponse struct {
	Calculations []*production.CalculationRecord
}

// ListCalculationsHandler handles the ListCalculations query
type ListCalculationsHandler struct {
	repo production.CalculationRepository
}

// NewListCalculationsHandler creates a new ListCalculationsHandler
func NewListCalculationsHandler(repo production.CalculationRepository) *ListCalculationsHandler {
	return &ListCalculationsHandler{repo: repo}
}

// Handle executes the ListCalculations query
func (h *ListCalculationsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListCalculationsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListCalculationsQuery")
	}

	records, err := h.repo.List(ctx, query.Limit)
	if err != nil {
		return nil, err
	}
	return &ListCalculationsResponse{Calculations: records}, nil
}
