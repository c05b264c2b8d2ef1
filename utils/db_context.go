package utils

import (
	"context"
	"time"
)

// SlowQueryTimeout caps queries that touch several tables in one request,
// like the dashboard rollup.
const SlowQueryTimeout = 60 * time.Second

// GetSlowQueryContext derives a context with the slow query cap from the
// request context, falling back to Background for callers outside a request.
func GetSlowQueryContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	return context.WithTimeout(parentCtx, SlowQueryTimeout)
}
