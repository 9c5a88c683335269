package api

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorio-calculator/internal/application/mediator"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/commands"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/views"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/pkg/utils"
)

// Session message types
const (
	MessageCalculate        = "calculate"
	MessageSetRate          = "set_rate"
	MessageSetConfiguration = "set_configuration"
	MessageTotals           = "totals"
	MessageCalculation      = "calculation"
	MessageError            = "error"
)

// SessionRequest is a message sent by a websocket client.
// Root indexes the session's forest; Path lists child keys below that root.
type SessionRequest struct {
	Type          string            `json:"type"`
	Targets       []services.Target `json:"targets,omitempty"`
	Root          int               `json:"root,omitempty"`
	Path          []string          `json:"path,omitempty"`
	Rate          *float64          `json:"rate,omitempty"`
	Configuration string            `json:"configuration,omitempty"`
}

// SessionReply is sent back for every request
type SessionReply struct {
	Type        string                 `json:"type"`
	Session     string                 `json:"session"`
	Calculation *views.CalculationView `json:"calculation,omitempty"`
	Totals      *views.TotalsView      `json:"totals,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// SessionFactory creates live editing sessions over one catalog
type SessionFactory struct {
	mediator  mediator.Mediator
	catalog   *catalog.Catalog
	resolver  *services.DefaultConfigurationResolver
	presenter *views.Presenter
}

// NewSessionFactory creates a SessionFactory
func NewSessionFactory(m mediator.Mediator, cat *catalog.Catalog, resolver *services.DefaultConfigurationResolver) *SessionFactory {
	return &SessionFactory{
		mediator:  m,
		catalog:   cat,
		resolver:  resolver,
		presenter: views.NewPresenter(cat),
	}
}

// NewSession starts an empty session
func (f *SessionFactory) NewSession() *Session {
	return &Session{
		id:      utils.GenerateSessionID("ws"),
		factory: f,
	}
}

// Session holds the forest a websocket client is editing.
// It is driven by a single connection and is not safe for concurrent use.
type Session struct {
	id      string
	factory *SessionFactory
	roots   []*production.Node
	errors  []string
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Handle applies one request and returns the reply to send
func (s *Session) Handle(ctx context.Context, req *SessionRequest) *SessionReply {
	var err error
	switch req.Type {
	case MessageCalculate:
		err = s.calculate(ctx, req.Targets)
	case MessageSetRate:
		err = s.setRate(req)
	case MessageSetConfiguration:
		err = s.setConfiguration(req)
	case MessageTotals:
		totals := s.factory.presenter.Totals(production.Aggregate(s.roots))
		return &SessionReply{Type: MessageTotals, Session: s.id, Totals: &totals}
	default:
		err = fmt.Errorf("unknown message type %q", req.Type)
	}
	if err != nil {
		return &SessionReply{Type: MessageError, Session: s.id, Error: err.Error()}
	}

	view := s.factory.presenter.Forest(s.roots)
	view.Errors = s.errors
	return &SessionReply{Type: MessageCalculation, Session: s.id, Calculation: &view}
}

func (s *Session) calculate(ctx context.Context, targets []services.Target) error {
	response, err := s.factory.mediator.Send(ctx, &commands.CalculateProductionCommand{Targets: targets})
	if err != nil {
		return err
	}
	resp, ok := response.(*commands.CalculateProductionResponse)
	if !ok {
		return fmt.Errorf("unexpected response type %T", response)
	}

	s.roots = resp.Roots
	s.errors = nil
	for _, f := range resp.Failures {
		s.errors = append(s.errors, fmt.Sprintf("%s: %v", f.Target.ID, f.Err))
	}
	return nil
}

func (s *Session) node(req *SessionRequest) (*production.Node, error) {
	if req.Root < 0 || req.Root >= len(s.roots) {
		return nil, fmt.Errorf("no root %d; the session has %d", req.Root, len(s.roots))
	}
	n, ok := s.roots[req.Root].Find(req.Path)
	if !ok {
		return nil, fmt.Errorf("no node at path %v below root %d", req.Path, req.Root)
	}
	return n, nil
}

func (s *Session) setRate(req *SessionRequest) error {
	if req.Rate == nil {
		return fmt.Errorf("rate is required")
	}
	n, err := s.node(req)
	if err != nil {
		return err
	}
	if *req.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}
	n.SetRate(*req.Rate)
	return nil
}

func (s *Session) setConfiguration(req *SessionRequest) error {
	n, err := s.node(req)
	if err != nil {
		return err
	}
	config, err := production.ParseConfiguration(req.Configuration, s.factory.catalog, s.factory.resolver.DefaultFuel())
	if err != nil {
		return err
	}
	if req.Rate != nil {
		if *req.Rate < 0 {
			return fmt.Errorf("rate cannot be negative")
		}
		return n.SetRateAndConfiguration(*req.Rate, config)
	}
	return n.SetConfiguration(config)
}
