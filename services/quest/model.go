package quest

import (
	"time"
)

type Status string

var (
	Draft      Status = "draft"
	Active     Status = "active"
	Finished   Status = "finished"
	Terminated Status = "terminated"
)

func (s Status) String() string {
	switch s {
	case Draft, Active, Finished, Terminated:
		return string(s)
	default:
		return ""
	}
}

// Quest is a published help request, the root of a referral tree.
// RewardAmount is held in integer minor units so the split never drifts.
type Quest struct {
	ID                string     `gorm:"column:id;primaryKey"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
	Type              string     `gorm:"column:type"`
	Title             string     `gorm:"column:title"`
	ShareTitle        string     `gorm:"column:share_title"`
	Description       string     `gorm:"column:description"`
	RewardAmount      int64      `gorm:"column:reward_amount"`
	CreatorID         string     `gorm:"column:creator_id"`
	SeekerID          string     `gorm:"column:seeker_id;index"`
	Status            Status     `gorm:"column:status;index"`
	TerminationReason string     `gorm:"column:termination_reason"`
	RootNodeID        string     `gorm:"column:root_node_id"`
	DueDate           *time.Time `gorm:"column:due_date"`
	CoverMedia        string     `gorm:"column:cover_media"`
}

func (Quest) TableName() string { return "quests" }
