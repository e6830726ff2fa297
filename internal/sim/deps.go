package sim

import (
	"log"

	"corsairs/server/logging"
)

// Deps carries shared infrastructure dependencies required by the engine.
// The world owns its own RNG; it is injected at world construction.
type Deps struct {
	Logger  *log.Logger
	Metrics *logging.Metrics
	Clock   logging.Clock
	Events  logging.Publisher
}
