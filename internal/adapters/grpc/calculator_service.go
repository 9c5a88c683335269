package grpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/factorio-calculator/internal/application/mediator"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/commands"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/queries"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/views"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/internal/domain/shared"
)

// CalculatorService answers calculator requests through the mediator.
// The typed methods back the in-process client; the Struct methods
// implement CalculatorServiceServer.
type CalculatorService struct {
	mediator  mediator.Mediator
	presenter *views.Presenter
}

// NewCalculatorService creates a service dispatching to m
func NewCalculatorService(m mediator.Mediator, presenter *views.Presenter) *CalculatorService {
	return &CalculatorService{mediator: m, presenter: presenter}
}

// RunCalculation builds, and optionally saves, a production forest
func (s *CalculatorService) RunCalculation(ctx context.Context, req *CalculateRequest) (*views.CalculationView, error) {
	response, err := s.mediator.Send(ctx, &commands.CalculateProductionCommand{
		Targets: req.Targets,
		Name:    req.Name,
	})
	if err != nil {
		return nil, err
	}
	resp, ok := response.(*commands.CalculateProductionResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T", response)
	}
	view := s.presenter.Calculation(resp)
	return &view, nil
}

// Recipes lists recipes for an item, or all recipes
func (s *CalculatorService) Recipes(ctx context.Context, req *RecipesRequest) (*RecipesResult, error) {
	response, err := s.mediator.Send(ctx, &queries.ListRecipesQuery{Item: req.Item})
	if err != nil {
		return nil, err
	}
	resp, ok := response.(*queries.ListRecipesResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T", response)
	}
	return &RecipesResult{Item: resp.Item, Recipes: resp.Recipes, HasMultiple: resp.HasMultiple}, nil
}

// Defaults lists the default configuration per category
func (s *CalculatorService) Defaults(ctx context.Context) (*DefaultsResult, error) {
	response, err := s.mediator.Send(ctx, &queries.ListDefaultConfigurationsQuery{})
	if err != nil {
		return nil, err
	}
	resp, ok := response.(*queries.ListDefaultConfigurationsResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T", response)
	}
	return &DefaultsResult{DefaultFuel: resp.DefaultFuel, Defaults: resp.Defaults}, nil
}

// ChangeDefault replaces a category's default configuration
func (s *CalculatorService) ChangeDefault(ctx context.Context, req *SetDefaultRequest) (*queries.DefaultConfigurationSummary, error) {
	response, err := s.mediator.Send(ctx, &commands.SetDefaultConfigurationCommand{
		Category:   req.Category,
		Serialized: req.Configuration,
	})
	if err != nil {
		return nil, err
	}
	resp, ok := response.(*commands.SetDefaultConfigurationResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T", response)
	}
	return &queries.DefaultConfigurationSummary{Category: resp.Category, Configuration: resp.Configuration.String()}, nil
}

// ChangeExclusion adds a recipe to or removes it from the excluded set
func (s *CalculatorService) ChangeExclusion(ctx context.Context, req *ExcludeRequest) (*ExcludeResult, error) {
	response, err := s.mediator.Send(ctx, &commands.ExcludeRecipeCommand{
		RecipeID: req.RecipeID,
		Excluded: req.Excluded,
	})
	if err != nil {
		return nil, err
	}
	resp, ok := response.(*commands.ExcludeRecipeResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T", response)
	}
	return &ExcludeResult{RecipeID: resp.RecipeID, Excluded: resp.Excluded}, nil
}

// History returns one saved calculation when req.ID is set, otherwise the newest req.Limit
func (s *CalculatorService) History(ctx context.Context, req *HistoryRequest) (*HistoryResult, error) {
	if req.ID != "" {
		response, err := s.mediator.Send(ctx, &queries.GetCalculationQuery{ID: req.ID})
		if err != nil {
			return nil, err
		}
		resp, ok := response.(*queries.GetCalculationResponse)
		if !ok {
			return nil, fmt.Errorf("unexpected response type %T", response)
		}
		return &HistoryResult{Calculations: []*production.CalculationRecord{resp.Calculation}}, nil
	}

	response, err := s.mediator.Send(ctx, &queries.ListCalculationsQuery{Limit: req.Limit})
	if err != nil {
		return nil, err
	}
	resp, ok := response.(*queries.ListCalculationsResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T", response)
	}
	return &HistoryResult{Calculations: resp.Calculations}, nil
}

// Calculate implements CalculatorServiceServer
func (s *CalculatorService) Calculate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req CalculateRequest
	return serve(ctx, in, &req, func() (interface{}, error) { return s.RunCalculation(ctx, &req) })
}

// ListRecipes implements CalculatorServiceServer
func (s *CalculatorService) ListRecipes(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req RecipesRequest
	return serve(ctx, in, &req, func() (interface{}, error) { return s.Recipes(ctx, &req) })
}

// ListDefaults implements CalculatorServiceServer
func (s *CalculatorService) ListDefaults(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, &empty{}, func() (interface{}, error) { return s.Defaults(ctx) })
}

// SetDefault implements CalculatorServiceServer
func (s *CalculatorService) SetDefault(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req SetDefaultRequest
	return serve(ctx, in, &req, func() (interface{}, error) { return s.ChangeDefault(ctx, &req) })
}

// Exclude implements CalculatorServiceServer
func (s *CalculatorService) Exclude(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ExcludeRequest
	return serve(ctx, in, &req, func() (interface{}, error) { return s.ChangeExclusion(ctx, &req) })
}

// ListCalculations implements CalculatorServiceServer
func (s *CalculatorService) ListCalculations(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req HistoryRequest
	return serve(ctx, in, &req, func() (interface{}, error) {
		req.ID = ""
		return s.History(ctx, &req)
	})
}

// GetCalculation implements CalculatorServiceServer
func (s *CalculatorService) GetCalculation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req HistoryRequest
	return serve(ctx, in, &req, func() (interface{}, error) {
		if req.ID == "" {
			return nil, shared.NewValidationError("id", "a calculation id is required")
		}
		return s.History(ctx, &req)
	})
}

func serve(ctx context.Context, in *structpb.Struct, req interface{}, call func() (interface{}, error)) (*structpb.Struct, error) {
	if err := fromStruct(in, req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	result, err := call()
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := toStruct(result)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// toStatus maps application errors onto gRPC status codes
func toStatus(err error) error {
	var (
		validation  *shared.ValidationError
		invalidCfg  *shared.InvalidConfigurationError
		unknownItem *production.UnknownRecipeOrItemError
		unknownRec  *catalog.ErrUnknownRecipe
		notFound    *production.CalculationNotFoundError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.As(err, &notFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &validation), errors.As(err, &invalidCfg),
		errors.As(err, &unknownItem), errors.As(err, &unknownRec):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
