// Package expiry sweeps for quests whose due date elapsed while they were
// still open and terminates them through the queue. The sweep only selects
// and enqueues; the actual transition runs in the task handler so a crashed
// sweep never half-expires anything.
package expiry

import (
	"context"
	"encoding/json"
	"time"

	queue "questflow/pkg/asynq"
	"questflow/pkg/db/option"
	"questflow/pkg/repository"
	"questflow/services/quest"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	quests   repository.Repository[quest.Quest]
	enqueuer queue.Enqueuer
}

type ServiceParams struct {
	fx.In
	DB       *gorm.DB
	Enqueuer queue.Enqueuer
}

func NewService(p ServiceParams) *Service {
	return &Service{
		quests:   repository.ProvideStore[quest.Quest](p.DB),
		enqueuer: p.Enqueuer,
	}
}

// EnqueueDueQuests selects every open quest whose due date is at or before
// now and enqueues one expire task per quest. Task ids are derived from the
// quest id so a sweep that overlaps a previous one deduplicates in the queue,
// and the handler itself is idempotent on top of that.
func (s *Service) EnqueueDueQuests(ctx context.Context, now time.Time) (int, error) {
	log := zap.L()

	var due []*quest.Quest
	for _, status := range []quest.Status{quest.Draft, quest.Active} {
		batch, err := s.quests.Find(ctx, &quest.Quest{Status: status},
			option.ApplyOperator(option.Condition{
				Field:    "due_date",
				Operator: option.LTE,
				Value:    now,
			}),
		)
		if err != nil {
			return 0, err
		}
		due = append(due, batch...)
	}

	enqueued := 0
	for _, q := range due {
		payload, err := json.Marshal(queue.QuestExpirePayload{QuestID: q.ID})
		if err != nil {
			return enqueued, err
		}

		_, err = s.enqueuer.Enqueue(ctx,
			asynq.NewTask(queue.QuestExpireTask, payload),
			asynq.TaskID("expire:"+q.ID),
			asynq.Queue("low"),
			asynq.MaxRetry(5),
		)
		if err != nil {
			log.Error("failed to enqueue quest expiry",
				zap.String("quest_id", q.ID), zap.Error(err))
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		log.Info("expiry sweep enqueued quests", zap.Int("count", enqueued))
	}

	return enqueued, nil
}
