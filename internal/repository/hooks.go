package repository

import (
	"context"
	"time"

	"github.com/lukeswitz/wardragon-analytics/pkg/log"
)

type queryTimingKey struct{}

// Hooks satisfies the sqlhooks.Hooks interface, logging every query issued
// through the instrumented driver along with its wall-clock duration.
type Hooks struct{}

// Before logs the query and args, and stashes the start time for After.
func (h *Hooks) Before(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	log.Debugf("SQL query %s %q", query, args)
	return context.WithValue(ctx, queryTimingKey{}, time.Now()), nil
}

// After logs the elapsed time recorded by Before.
func (h *Hooks) After(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	if begin, ok := ctx.Value(queryTimingKey{}).(time.Time); ok {
		log.Debugf("SQL query took %s", time.Since(begin))
	}
	return ctx, nil
}
