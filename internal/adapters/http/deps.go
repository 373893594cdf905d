package http

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/openroute/internal/core/usecases"
)

// HealthChecker reports whether a downstream dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sessions *usecases.SessionManager
	Ranking  HealthChecker // optional, checked by /v1/ready
	NATS     *nats.Conn    // optional, enables /ws/events

	// RequestTimeout bounds suggestion requests. Zero means 30s.
	RequestTimeout time.Duration
	Version        string
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return d.RequestTimeout
}
