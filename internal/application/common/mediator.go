package common

import "github.com/andrescamacho/factorio-calculator/internal/application/mediator"

// Mediator types re-exported for handlers
type (
	Request        = mediator.Request
	Response       = mediator.Response
	RequestHandler = mediator.RequestHandler
)
