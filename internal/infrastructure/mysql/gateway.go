package mysql

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "inventario/internal/errors"
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

// Gateway owns the lifecycle of the database pool. Only the startup path
// retries; a connection lost later is left to database/sql.
type Gateway struct {
	db          *sql.DB
	logger      *zap.Logger
	maxAttempts int
	retryDelay  time.Duration

	mu        sync.Mutex
	state     State
	closeOnce sync.Once
	closeErr  error
}

func NewGateway(db *sql.DB, maxAttempts int, retryDelay time.Duration, logger *zap.Logger) *Gateway {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Gateway{
		db:          db,
		logger:      logger,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

func (g *Gateway) DB() *sql.DB {
	return g.db
}

func (g *Gateway) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gateway) setState(s State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}

// Connect pings the database until it answers or maxAttempts is reached,
// sleeping retryDelay between attempts. It returns *errors.ConnectionError
// once every attempt has failed or ctx is done.
func (g *Gateway) Connect(ctx context.Context) error {
	g.setState(StateConnecting)

	var lastErr error
	attempts := 0
	for attempts < g.maxAttempts {
		attempts++

		lastErr = g.db.PingContext(ctx)
		if lastErr == nil {
			g.setState(StateConnected)
			g.logger.Info("database connected", zap.Int("attempt", attempts))
			return nil
		}

		g.logger.Warn("waiting for database",
			zap.Int("attempt", attempts),
			zap.Int("maxAttempts", g.maxAttempts),
			zap.Error(lastErr),
		)

		if attempts == g.maxAttempts {
			break
		}
		if err := sleep(ctx, g.retryDelay); err != nil {
			lastErr = err
			break
		}
	}

	g.setState(StateFailed)
	return apperrors.NewConnectionError(attempts, lastErr)
}

// Disconnect closes the pool. Safe to call more than once.
func (g *Gateway) Disconnect() error {
	g.closeOnce.Do(func() {
		g.closeErr = g.db.Close()
		if g.closeErr != nil {
			g.logger.Error("closing database", zap.Error(g.closeErr))
		} else {
			g.logger.Info("database disconnected")
		}
		g.setState(StateDisconnected)
	})
	return g.closeErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
