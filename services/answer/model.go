package answer

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

var (
	Pending  Status = "pending"
	Accepted Status = "accepted"
	Rejected Status = "rejected"
)

func (s Status) String() string {
	switch s {
	case Pending, Accepted, Rejected:
		return string(s)
	default:
		return ""
	}
}

// ProposedAnswer is a candidate resolution submitted by a participant.
//
// AcceptedQuestID is set to the quest id only when the answer is accepted and
// is null otherwise; its unique index is what makes "at most one accepted
// answer per quest" hold at write time, even under concurrent accepts.
type ProposedAnswer struct {
	ID               string         `gorm:"column:id;primaryKey"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
	QuestID          string         `gorm:"column:quest_id;index"`
	NodeID           string         `gorm:"column:node_id;index"`
	UserID           string         `gorm:"column:user_id"`
	Content          string         `gorm:"column:content"`
	ScreeningAnswers datatypes.JSON `gorm:"column:screening_answers"`
	Status           Status         `gorm:"column:status"`
	DecidedAt        *time.Time     `gorm:"column:decided_at"`
	AcceptedQuestID  *string        `gorm:"column:accepted_quest_id;uniqueIndex"`
}

func (ProposedAnswer) TableName() string { return "proposed_answers" }
