package sqlstore

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// queryLogger traces every statement at debug level.
type queryLogger struct {
	log *zap.Logger
}

var _ bun.QueryHook = queryLogger{}

func (h queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if ce := h.log.Check(zap.DebugLevel, "sql query"); ce != nil {
		ce.Write(
			zap.String("operation", event.Operation()),
			zap.String("query", event.Query),
			zap.Duration("duration", time.Since(event.StartTime)),
			zap.Error(event.Err),
		)
	}
}
