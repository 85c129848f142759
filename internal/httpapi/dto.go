package httpapi

import (
	"time"

	"questflow/services/answer"
	"questflow/services/event"
	"questflow/services/graph"
	"questflow/services/lifecycle"
	"questflow/services/quest"
	"questflow/services/reward"

	"gorm.io/datatypes"
)

type createQuestRequest struct {
	Type         string     `json:"type"`
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	RewardAmount int64      `json:"reward_amount"`
	DueDate      *time.Time `json:"due_date"`
	CoverMedia   string     `json:"cover_media"`
}

type editQuestRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	CoverMedia  *string    `json:"cover_media"`
}

type terminateRequest struct {
	Reason string `json:"reason"`
}

type issueLinkRequest struct {
	Type                 string `json:"type"`
	Name                 string `json:"name"`
	RelationshipStrength *int   `json:"relationship_strength"`
}

type proposeAnswerRequest struct {
	Content          string         `json:"content"`
	ScreeningAnswers datatypes.JSON `json:"screening_answers"`
}

type addCommentRequest struct {
	CommentID string `json:"comment_id" binding:"required"`
}

type questResponse struct {
	ID                string     `json:"id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Type              string     `json:"type,omitempty"`
	Title             string     `json:"title"`
	ShareTitle        string     `json:"share_title"`
	Description       string     `json:"description,omitempty"`
	RewardAmount      int64      `json:"reward_amount"`
	CreatorID         string     `json:"creator_id"`
	SeekerID          string     `json:"seeker_id"`
	Status            string     `json:"status"`
	TerminationReason string     `json:"termination_reason,omitempty"`
	RootNodeID        string     `json:"root_node_id,omitempty"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	CoverMedia        string     `json:"cover_media,omitempty"`
}

func toQuestResponse(q *quest.Quest) questResponse {
	return questResponse{
		ID:                q.ID,
		CreatedAt:         q.CreatedAt,
		UpdatedAt:         q.UpdatedAt,
		Type:              q.Type,
		Title:             q.Title,
		ShareTitle:        q.ShareTitle,
		Description:       q.Description,
		RewardAmount:      q.RewardAmount,
		CreatorID:         q.CreatorID,
		SeekerID:          q.SeekerID,
		Status:            string(q.Status),
		TerminationReason: q.TerminationReason,
		RootNodeID:        q.RootNodeID,
		DueDate:           q.DueDate,
		CoverMedia:        q.CoverMedia,
	}
}

type nodeResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	QuestID   string    `json:"quest_id"`
	UserID    string    `json:"user_id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Depth     int       `json:"depth,omitempty"`
}

func toNodeResponse(n *graph.Node) nodeResponse {
	return nodeResponse{
		ID:        n.ID,
		CreatedAt: n.CreatedAt,
		QuestID:   n.QuestID,
		UserID:    n.UserID,
		ParentID:  n.ParentID,
		Status:    string(n.Status),
	}
}

type linkResponse struct {
	ID                   string    `json:"id"`
	CreatedAt            time.Time `json:"created_at"`
	QuestID              string    `json:"quest_id"`
	OwnerNodeID          string    `json:"owner_node_id"`
	Type                 string    `json:"type"`
	Name                 string    `json:"name,omitempty"`
	LinkCode             string    `json:"link_code"`
	RelationshipStrength *int      `json:"relationship_strength,omitempty"`
}

func toLinkResponse(l *graph.Link) linkResponse {
	return linkResponse{
		ID:                   l.ID,
		CreatedAt:            l.CreatedAt,
		QuestID:              l.QuestID,
		OwnerNodeID:          l.OwnerNodeID,
		Type:                 string(l.Type),
		Name:                 l.Name,
		LinkCode:             l.LinkCode,
		RelationshipStrength: l.RelationshipStrength,
	}
}

type answerResponse struct {
	ID               string         `json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	QuestID          string         `json:"quest_id"`
	NodeID           string         `json:"node_id"`
	UserID           string         `json:"user_id"`
	Content          string         `json:"content,omitempty"`
	ScreeningAnswers datatypes.JSON `json:"screening_answers,omitempty"`
	Status           string         `json:"status"`
	DecidedAt        *time.Time     `json:"decided_at,omitempty"`
}

func toAnswerResponse(a *answer.ProposedAnswer) answerResponse {
	return answerResponse{
		ID:               a.ID,
		CreatedAt:        a.CreatedAt,
		QuestID:          a.QuestID,
		NodeID:           a.NodeID,
		UserID:           a.UserID,
		Content:          a.Content,
		ScreeningAnswers: a.ScreeningAnswers,
		Status:           string(a.Status),
		DecidedAt:        a.DecidedAt,
	}
}

type allocationResponse struct {
	NodeID   string `json:"node_id"`
	UserID   string `json:"user_id"`
	Position int    `json:"position"`
	Amount   int64  `json:"amount"`
}

type acceptAnswerResponse struct {
	Answer      answerResponse       `json:"answer"`
	Allocations []allocationResponse `json:"allocations"`
}

func toAcceptAnswerResponse(a *answer.ProposedAnswer, allocations []reward.Allocation) acceptAnswerResponse {
	out := acceptAnswerResponse{Answer: toAnswerResponse(a)}
	for _, alloc := range allocations {
		out.Allocations = append(out.Allocations, allocationResponse{
			NodeID:   alloc.Node.ID,
			UserID:   alloc.Node.UserID,
			Position: alloc.Position,
			Amount:   alloc.Amount,
		})
	}
	return out
}

type shareResponse struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	QuestID          string    `json:"quest_id"`
	ProposedAnswerID string    `json:"proposed_answer_id"`
	NodeID           string    `json:"node_id"`
	UserID           string    `json:"user_id"`
	Position         int       `json:"position"`
	Amount           int64     `json:"amount"`
}

func toShareResponses(shares []*reward.Share) []shareResponse {
	out := make([]shareResponse, 0, len(shares))
	for _, s := range shares {
		out = append(out, shareResponse{
			ID:               s.ID,
			CreatedAt:        s.CreatedAt,
			QuestID:          s.QuestID,
			ProposedAnswerID: s.ProposedAnswerID,
			NodeID:           s.NodeID,
			UserID:           s.UserID,
			Position:         s.Position,
			Amount:           s.Amount,
		})
	}
	return out
}

type eventResponse struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	QuestID          string    `json:"quest_id"`
	ActorUserID      string    `json:"actor_user_id,omitempty"`
	Type             string    `json:"type"`
	LinkID           string    `json:"link_id,omitempty"`
	NodeID           string    `json:"node_id,omitempty"`
	ProposedAnswerID string    `json:"proposed_answer_id,omitempty"`
	CommentID        string    `json:"comment_id,omitempty"`
}

func toEventResponses(events []*event.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:               e.ID,
			CreatedAt:        e.CreatedAt,
			QuestID:          e.QuestID,
			ActorUserID:      e.ActorUserID,
			Type:             string(e.Type),
			LinkID:           e.LinkID,
			NodeID:           e.NodeID,
			ProposedAnswerID: e.ProposedAnswerID,
			CommentID:        e.CommentID,
		})
	}
	return out
}

type branchResponse struct {
	Ancestors   []nodeResponse `json:"ancestors"`
	Descendants []nodeResponse `json:"descendants"`
}

func toBranchResponse(view *lifecycle.BranchView) branchResponse {
	out := branchResponse{
		Ancestors:   make([]nodeResponse, 0, len(view.Ancestors)),
		Descendants: make([]nodeResponse, 0, len(view.Descendants)),
	}
	for _, n := range view.Ancestors {
		out.Ancestors = append(out.Ancestors, toNodeResponse(n))
	}
	for _, d := range view.Descendants {
		node := toNodeResponse(d.Node)
		node.Depth = d.Depth
		out.Descendants = append(out.Descendants, node)
	}
	return out
}

type questForLinkResponse struct {
	Quest questResponse `json:"quest"`
	Link  linkResponse  `json:"link"`
}
