package reward

import (
	"time"
)

// Share is the persisted record of one participant's intended cut of a
// quest's reward. Payment execution happens outside this system; these rows
// are the durable statement of what the split should be.
type Share struct {
	ID               string    `gorm:"column:id;primaryKey"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	QuestID          string    `gorm:"column:quest_id;index"`
	ProposedAnswerID string    `gorm:"column:proposed_answer_id;index"`
	NodeID           string    `gorm:"column:node_id"`
	UserID           string    `gorm:"column:user_id"`
	// Position counts from the winner: 1 is the winner, 2 the referrer who
	// invited them, and so on toward the root.
	Position int   `gorm:"column:position"`
	Amount   int64 `gorm:"column:amount"`
}

func (Share) TableName() string { return "reward_shares" }
