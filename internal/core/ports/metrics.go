package ports

import "time"

//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks

// Hook outcomes recorded by Metrics.
const (
	OutcomeHandled = "handled"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// Metrics records how plugin hooks perform.
type Metrics interface {
	ObserveHook(hook, outcome string, elapsed time.Duration)
}
