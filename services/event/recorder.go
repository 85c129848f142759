package event

import (
	"context"
	"time"

	"questflow/pkg/db/option"
	"questflow/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Recorder appends events to the quest history. It is the only writer; nothing
// in the codebase updates or deletes a history row.
type Recorder struct {
	node   *snowflake.Node
	events repository.Repository[Event]
}

func NewRecorder(db *gorm.DB, node *snowflake.Node) *Recorder {
	return &Recorder{
		node:   node,
		events: repository.ProvideStore[Event](db),
	}
}

func (r *Recorder) WithTrx(tx *gorm.DB) *Recorder {
	return &Recorder{node: r.node, events: r.events.WithTrx(tx)}
}

// Append inserts one event, filling id and created_at.
func (r *Recorder) Append(ctx context.Context, e *Event) error {
	e.ID = r.node.Generate().String()
	e.CreatedAt = time.Now()
	return r.events.Create(ctx, e)
}

// AppendAll inserts the given events as one batch, preserving order through
// monotonically generated ids.
func (r *Recorder) AppendAll(ctx context.Context, events []*Event) error {
	now := time.Now()
	for _, e := range events {
		e.ID = r.node.Generate().String()
		e.CreatedAt = now
	}
	return r.events.BatchCreate(ctx, events)
}

// HasAny reports whether the quest already has an event of any of the given
// types. Used as the idempotence guard for expire/terminate sweeps.
func (r *Recorder) HasAny(ctx context.Context, questID string, types ...Type) (bool, error) {
	for _, t := range types {
		count, err := r.events.Count(ctx, &Event{QuestID: questID, Type: t})
		if err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// History returns the quest's events in insertion order.
func (r *Recorder) History(ctx context.Context, questID string) ([]*Event, error) {
	return r.events.Find(ctx, &Event{QuestID: questID}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "id",
		OrderBy: "asc",
		Allow:   map[string]bool{"id": true},
	}))
}
