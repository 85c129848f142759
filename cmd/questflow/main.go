package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"questflow/internal/httpapi"
	"questflow/internal/server"
	"questflow/pkg/config"
	"questflow/pkg/db"
	"questflow/pkg/gen"
	"questflow/pkg/logger"
	"questflow/pkg/otelcol"
	"questflow/pkg/redis"
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
		lifecycle.Module,
		httpapi.Module,
		server.Module,
		fxLogger,
	)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
