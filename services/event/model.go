package event

import (
	"time"

	"gorm.io/datatypes"
)

type Type string

const (
	NodeJoined      Type = "nodeJoined"
	Reflow          Type = "reflow"
	AnswerProposed  Type = "answerProposed"
	AnswerAccepted  Type = "answerAccepted"
	AnswerRejected  Type = "answerRejected"
	QuestTerminated Type = "terminated"
	QuestExpired    Type = "expired"
	QuestEdited     Type = "questEdited"
	CommentAdded    Type = "commentAdded"
)

// Event is one row of the append-only quest history. Rows are inserted as a
// side effect of every other mutation and never updated or deleted; snowflake
// ids keep them externally sortable so derived views can be rebuilt by replay.
type Event struct {
	ID               string         `gorm:"column:id;primaryKey"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
	QuestID          string         `gorm:"column:quest_id;index:idx_events_quest_type,priority:1"`
	ActorUserID      string         `gorm:"column:actor_user_id"`
	Type             Type           `gorm:"column:type;index:idx_events_quest_type,priority:2"`
	LinkID           string         `gorm:"column:link_id"`
	NodeID           string         `gorm:"column:node_id"`
	ProposedAnswerID string         `gorm:"column:proposed_answer_id"`
	CommentID        string         `gorm:"column:comment_id"`
	Metadata         datatypes.JSON `gorm:"column:metadata"`
}

func (Event) TableName() string { return "quest_history" }
