// The sweeper runs the daily due-date sweep and consumes the expire tasks it
// enqueues. It shares the lifecycle service with the API binary but exposes
// no HTTP surface beyond what the queue needs.
package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	queue "questflow/pkg/asynq"
	"questflow/pkg/config"
	"questflow/pkg/db"
	"questflow/pkg/gen"
	"questflow/pkg/logger"
	"questflow/pkg/otelcol"
	"questflow/pkg/redis"
	"questflow/services/expiry"
	"questflow/services/lifecycle"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		db.Module,
		gen.Module,
		redis.Module,
		otelcol.Module,
		queue.Client,
		queue.Server,
		lifecycle.Module,
		expiry.Module,
		expiry.Worker,
		fxLogger,
	)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
