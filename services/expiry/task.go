package expiry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	queue "questflow/pkg/asynq"
	"questflow/pkg/errutil"
	"questflow/services/lifecycle"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Handler consumes expire tasks and drives the actual quest transition.
type Handler struct {
	lifecycle *lifecycle.Service
}

func NewHandler(svc *lifecycle.Service) *Handler {
	return &Handler{lifecycle: svc}
}

func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.QuestExpireTask, h.HandleQuestExpire)
}

// HandleQuestExpire expires a single quest. A quest that meanwhile finished,
// was terminated, or had its due date pushed out is a benign outcome, not a
// retryable failure.
func (h *Handler) HandleQuestExpire(ctx context.Context, t *asynq.Task) error {
	var payload queue.QuestExpirePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	err := h.lifecycle.ExpireDue(ctx, payload.QuestID, time.Now())
	switch {
	case err == nil:
		zap.L().Info("quest expired", zap.String("quest_id", payload.QuestID))
		return nil
	case errutil.Is(err, errutil.StatusPreconditionFailed),
		errutil.Is(err, errutil.StatusNotFound):
		return nil
	default:
		return err
	}
}
