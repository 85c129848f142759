package graph

import (
	"time"
)

type NodeStatus string

var (
	Contributed NodeStatus = "contributed"
	Accepted    NodeStatus = "accepted"
	Rejected    NodeStatus = "rejected"
)

func (s NodeStatus) String() string {
	switch s {
	case Contributed, Accepted, Rejected:
		return string(s)
	default:
		return ""
	}
}

type LinkType string

var (
	Targeted  LinkType = "targeted"
	Broadcast LinkType = "broadcast"
)

func (t LinkType) String() string {
	switch t {
	case Targeted, Broadcast:
		return string(t)
	default:
		return ""
	}
}

// Node is one participant's position in a quest's referral tree. ParentID is
// null only for the root; ViewLinkID carries a unique index so a Link can
// produce at most one consuming Node, and (quest_id, user_id) carries one so
// a user holds at most one position per quest. The store arbitrates both races.
type Node struct {
	ID         string     `gorm:"column:id;primaryKey"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	QuestID    string     `gorm:"column:quest_id;index:idx_nodes_quest_parent,priority:1;uniqueIndex:idx_nodes_quest_user,priority:1"`
	UserID     string     `gorm:"column:user_id;uniqueIndex:idx_nodes_quest_user,priority:2"`
	ParentID   *string    `gorm:"column:parent_id;index:idx_nodes_quest_parent,priority:2"`
	ViewLinkID *string    `gorm:"column:view_link_id;uniqueIndex"`
	Status     NodeStatus `gorm:"column:status"`
}

func (Node) TableName() string { return "nodes" }

// Link is an invitation a Node's owner extends outward. LinkCode is the
// URL-safe handle shared with the invitee; the unique index implements the
// regenerate-on-collision policy.
type Link struct {
	ID                   string    `gorm:"column:id;primaryKey"`
	CreatedAt            time.Time `gorm:"column:created_at"`
	QuestID              string    `gorm:"column:quest_id;index"`
	OwnerNodeID          string    `gorm:"column:owner_node_id;index"`
	Type                 LinkType  `gorm:"column:type"`
	Name                 string    `gorm:"column:name"`
	LinkCode             string    `gorm:"column:link_code;uniqueIndex"`
	RelationshipStrength *int      `gorm:"column:relationship_strength"`
}

func (Link) TableName() string { return "links" }
