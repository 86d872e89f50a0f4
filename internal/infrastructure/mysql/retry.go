package mysql

import (
	"context"
	"errors"
	"math/rand"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

const (
	errDuplicateEntry   = 1062
	errLockWaitTimeout  = 1205
	errDeadlockDetected = 1213
)

// Backoff before attempt 1, 2, 3... Later attempts reuse the last entry.
var lockBackoffs = []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

// IsLockError reports a deadlock or lock wait timeout, both safe to retry.
func IsLockError(err error) bool {
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errDeadlockDetected || mysqlErr.Number == errLockWaitTimeout
	}
	return false
}

func IsDuplicateKey(err error) bool {
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errDuplicateEntry
	}
	return false
}

// WithLockRetry runs fn up to maxAttempts times while it keeps failing with a
// lock error. Any other error is returned at once.
func WithLockRetry(ctx context.Context, maxAttempts int, logger *zap.Logger, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if wait := backoff(attempt); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err = fn()
		if err == nil || !IsLockError(err) {
			return err
		}

		logger.Warn("lock conflict, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", maxAttempts),
			zap.Error(err),
		)
	}

	return err
}

// backoff adds +-20% jitter to the base delay of the attempt.
func backoff(attempt int) time.Duration {
	idx := attempt - 1
	if idx >= len(lockBackoffs) {
		idx = len(lockBackoffs) - 1
	}
	base := lockBackoffs[idx]
	if base == 0 {
		return 0
	}
	factor := 0.8 + rand.Float64()*0.4
	return time.Duration(float64(base) * factor)
}
