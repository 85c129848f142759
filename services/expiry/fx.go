package expiry

import (
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

// Module wires the sweep service and its daily schedule.
var Module = fx.Module("expiry",
	fx.Provide(NewService, NewScheduler),
	fx.Invoke(registerScheduler),
)

// Worker wires the task handler into the queue consumer.
var Worker = fx.Module("expiry:worker",
	fx.Provide(NewHandler),
	fx.Invoke(func(mux *asynq.ServeMux, h *Handler) {
		h.Register(mux)
	}),
)
