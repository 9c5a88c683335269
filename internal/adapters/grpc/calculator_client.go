package grpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/factorio-calculator/internal/application/production/queries"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/views"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
)

// CalculatorClient is what the CLI needs from a calculator, local or remote
type CalculatorClient interface {
	Calculate(ctx context.Context, targets []services.Target, name string) (*views.CalculationView, error)
	ListRecipes(ctx context.Context, item string) (*RecipesResult, error)
	ListDefaults(ctx context.Context) (*DefaultsResult, error)
	SetDefault(ctx context.Context, category, configuration string) (*queries.DefaultConfigurationSummary, error)
	Exclude(ctx context.Context, recipeID string, excluded bool) (*ExcludeResult, error)
	ListCalculations(ctx context.Context, limit int) ([]*production.CalculationRecord, error)
	GetCalculation(ctx context.Context, id string) (*production.CalculationRecord, error)
	Close() error
}

// CalculatorClientGRPC talks to a running daemon over its Unix socket
type CalculatorClientGRPC struct {
	conn *grpc.ClientConn
}

// NewCalculatorClientGRPC creates a client for the daemon at socketPath.
// The connection is established lazily on the first call.
func NewCalculatorClientGRPC(socketPath string) (*CalculatorClientGRPC, error) {
	conn, err := grpc.NewClient(
		"unix:"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket: %w", err)
	}
	return NewCalculatorClientFromConn(conn), nil
}

// NewCalculatorClientFromConn wraps an existing connection; Close closes it
func NewCalculatorClientFromConn(conn *grpc.ClientConn) *CalculatorClientGRPC {
	return &CalculatorClientGRPC{conn: conn}
}

// Close closes the gRPC connection
func (c *CalculatorClientGRPC) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *CalculatorClientGRPC) invoke(ctx context.Context, method string, req, resp interface{}) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(method), in, out); err != nil {
		if st, ok := status.FromError(err); ok {
			return errors.New(st.Message())
		}
		return err
	}
	return fromStruct(out, resp)
}

// Calculate builds a forest on the daemon
func (c *CalculatorClientGRPC) Calculate(ctx context.Context, targets []services.Target, name string) (*views.CalculationView, error) {
	var view views.CalculationView
	if err := c.invoke(ctx, MethodCalculate, &CalculateRequest{Targets: targets, Name: name}, &view); err != nil {
		return nil, fmt.Errorf("calculation failed: %w", err)
	}
	return &view, nil
}

// ListRecipes lists recipes for item, or all recipes when item is empty
func (c *CalculatorClientGRPC) ListRecipes(ctx context.Context, item string) (*RecipesResult, error) {
	var result RecipesResult
	if err := c.invoke(ctx, MethodListRecipes, &RecipesRequest{Item: item}, &result); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return &result, nil
}

// ListDefaults lists default configurations
func (c *CalculatorClientGRPC) ListDefaults(ctx context.Context) (*DefaultsResult, error) {
	var result DefaultsResult
	if err := c.invoke(ctx, MethodListDefaults, &empty{}, &result); err != nil {
		return nil, fmt.Errorf("failed to list defaults: %w", err)
	}
	return &result, nil
}

// SetDefault replaces a category's default configuration
func (c *CalculatorClientGRPC) SetDefault(ctx context.Context, category, configuration string) (*queries.DefaultConfigurationSummary, error) {
	var result queries.DefaultConfigurationSummary
	req := &SetDefaultRequest{Category: category, Configuration: configuration}
	if err := c.invoke(ctx, MethodSetDefault, req, &result); err != nil {
		return nil, fmt.Errorf("failed to set default: %w", err)
	}
	return &result, nil
}

// Exclude changes a recipe's exclusion
func (c *CalculatorClientGRPC) Exclude(ctx context.Context, recipeID string, excluded bool) (*ExcludeResult, error) {
	var result ExcludeResult
	if err := c.invoke(ctx, MethodExclude, &ExcludeRequest{RecipeID: recipeID, Excluded: excluded}, &result); err != nil {
		return nil, fmt.Errorf("failed to update exclusion: %w", err)
	}
	return &result, nil
}

// ListCalculations returns the newest saved calculations
func (c *CalculatorClientGRPC) ListCalculations(ctx context.Context, limit int) ([]*production.CalculationRecord, error) {
	var result HistoryResult
	if err := c.invoke(ctx, MethodListCalculations, &HistoryRequest{Limit: limit}, &result); err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	return result.Calculations, nil
}

// GetCalculation fetches one saved calculation
func (c *CalculatorClientGRPC) GetCalculation(ctx context.Context, id string) (*production.CalculationRecord, error) {
	var result HistoryResult
	if err := c.invoke(ctx, MethodGetCalculation, &HistoryRequest{ID: id}, &result); err != nil {
		return nil, fmt.Errorf("failed to get calculation: %w", err)
	}
	if len(result.Calculations) == 0 {
		return nil, &production.CalculationNotFoundError{ID: id}
	}
	return result.Calculations[0], nil
}

// CalculatorClientLocal calls a CalculatorService in-process.
// The CLI uses it when no daemon is running.
type CalculatorClientLocal struct {
	service *CalculatorService
}

// NewCalculatorClientLocal creates a local client for service
func NewCalculatorClientLocal(service *CalculatorService) *CalculatorClientLocal {
	return &CalculatorClientLocal{service: service}
}

// Close is a no-op
func (c *CalculatorClientLocal) Close() error { return nil }

func (c *CalculatorClientLocal) Calculate(ctx context.Context, targets []services.Target, name string) (*views.CalculationView, error) {
	return c.service.RunCalculation(ctx, &CalculateRequest{Targets: targets, Name: name})
}

func (c *CalculatorClientLocal) ListRecipes(ctx context.Context, item string) (*RecipesResult, error) {
	return c.service.Recipes(ctx, &RecipesRequest{Item: item})
}

func (c *CalculatorClientLocal) ListDefaults(ctx context.Context) (*DefaultsResult, error) {
	return c.service.Defaults(ctx)
}

func (c *CalculatorClientLocal) SetDefault(ctx context.Context, category, configuration string) (*queries.DefaultConfigurationSummary, error) {
	return c.service.ChangeDefault(ctx, &SetDefaultRequest{Category: category, Configuration: configuration})
}

func (c *CalculatorClientLocal) Exclude(ctx context.Context, recipeID string, excluded bool) (*ExcludeResult, error) {
	return c.service.ChangeExclusion(ctx, &ExcludeRequest{RecipeID: recipeID, Excluded: excluded})
}

func (c *CalculatorClientLocal) ListCalculations(ctx context.Context, limit int) ([]*production.CalculationRecord, error) {
	result, err := c.service.History(ctx, &HistoryRequest{Limit: limit})
	if err != nil {
		return nil, err
	}
	return result.Calculations, nil
}

func (c *CalculatorClientLocal) GetCalculation(ctx context.Context, id string) (*production.CalculationRecord, error) {
	result, err := c.service.History(ctx, &HistoryRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return result.Calculations[0], nil
}

var (
	_ CalculatorClient        = (*CalculatorClientGRPC)(nil)
	_ CalculatorClient        = (*CalculatorClientLocal)(nil)
	_ CalculatorServiceServer = (*CalculatorService)(nil)
)
