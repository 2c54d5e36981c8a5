package db

import (
	"context"
	"sync"
	"time"

	"github.com/vvka-141/hellodb/pkg/hellodb"
)

// Guard releases a resource at most once. Release never fails from the
// caller's point of view: errors and panics from the release step are logged.
type Guard struct {
	name    string
	release func(context.Context) error
	logger  hellodb.Logger
	timeout time.Duration
	once    sync.Once
}

// NewGuard wraps release. timeout bounds the release step; zero means no bound.
func NewGuard(name string, release func(context.Context) error, logger hellodb.Logger, timeout time.Duration) *Guard {
	return &Guard{
		name:    name,
		release: release,
		logger:  logger,
		timeout: timeout,
	}
}

// Release runs the release step on the first call and does nothing afterwards.
// The step runs even if ctx is already cancelled so sockets are not leaked.
func (g *Guard) Release(ctx context.Context) {
	g.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				g.logger.Error("Panic while closing %s: %v", g.name, r)
			}
		}()

		releaseCtx := context.WithoutCancel(ctx)
		if g.timeout > 0 {
			var cancel context.CancelFunc
			releaseCtx, cancel = context.WithTimeout(releaseCtx, g.timeout)
			defer cancel()
		}

		if err := g.release(releaseCtx); err != nil {
			g.logger.Error("Error closing %s: %v", g.name, err)
			return
		}
		g.logger.Info("Closed %s", g.name)
	})
}
