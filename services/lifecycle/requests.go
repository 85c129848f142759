package lifecycle

import (
	"time"

	"gorm.io/datatypes"

	"questflow/services/graph"
)

type CreateQuestRequest struct {
	Type         string
	Title        string
	Description  string
	RewardAmount int64
	CreatorID    string
	SeekerID     string
	DueDate      *time.Time
	CoverMedia   string
}

type IssueLinkRequest struct {
	QuestID              string
	UserID               string
	Type                 graph.LinkType
	Name                 string
	RelationshipStrength *int
}

type ReflowRequest struct {
	LinkCode string
	UserID   string
}

type ProposeAnswerRequest struct {
	QuestID          string
	UserID           string
	Content          string
	ScreeningAnswers datatypes.JSON
}

type AcceptAnswerRequest struct {
	ProposedAnswerID string
	ActorUserID      string
}

type RejectAnswerRequest struct {
	ProposedAnswerID string
	ActorUserID      string
}

type TerminateRequest struct {
	QuestID     string
	ActorUserID string
	Reason      string
}

type EditQuestRequest struct {
	QuestID     string
	ActorUserID string
	Title       *string
	Description *string
	DueDate     *time.Time
	CoverMedia  *string
}

type ListQuestsRequest struct {
	SeekerID string
	Status   string
	Cursor   string
	Limit    int
}

type AddCommentRequest struct {
	QuestID   string
	UserID    string
	CommentID string
}
