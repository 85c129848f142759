package httpapi

import (
	"net/http"

	"questflow/pkg/db/pagination"
	"questflow/pkg/errutil"
	"questflow/pkg/middleware"
	"questflow/services/graph"
	"questflow/services/lifecycle"

	"github.com/gin-gonic/gin"
)

// Handler exposes the quest lifecycle over REST. Identity arrives as a
// trusted header from the edge; handlers translate transport shapes and leave
// every rule to the lifecycle service.
type Handler struct {
	svc *lifecycle.Service
}

func NewHandler(svc *lifecycle.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CreateQuest(c *gin.Context) {
	var body createQuestRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(errutil.BadRequest(err.Error()))
		return
	}

	q, err := h.svc.CreateQuest(c.Request.Context(), lifecycle.CreateQuestRequest{
		Type:         body.Type,
		Title:        body.Title,
		Description:  body.Description,
		RewardAmount: body.RewardAmount,
		SeekerID:     middleware.UserID(c),
		DueDate:      body.DueDate,
		CoverMedia:   body.CoverMedia,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, toQuestResponse(q))
}

func (h *Handler) ListQuests(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		c.Error(errutil.BadRequest(err.Error()))
		return
	}

	quests, pageInfo, err := h.svc.ListQuests(c.Request.Context(), lifecycle.ListQuestsRequest{
		SeekerID: c.Query("seeker_id"),
		Status:   c.Query("status"),
		Cursor:   page.Cursor,
		Limit:    page.Limit,
	})
	if err != nil {
		c.Error(err)
		return
	}

	out := make([]questResponse, 0, len(quests))
	for _, q := range quests {
		out = append(out, toQuestResponse(q))
	}

	c.JSON(http.StatusOK, gin.H{
		"quests":    out,
		"page_info": pageInfo,
	})
}

func (h *Handler) GetQuest(c *gin.Context) {
	q, err := h.svc.GetQuest(c.Request.Context(), c.Param("quest_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toQuestResponse(q))
}

func (h *Handler) EditQuest(c *gin.Context) {
	var body editQuestRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(errutil.BadRequest(err.Error()))
		return
	}

	q, err := h.svc.EditQuest(c.Request.Context(), lifecycle.EditQuestRequest{
		QuestID:     c.Param("quest_id"),
		ActorUserID: middleware.UserID(c),
		Title:       body.Title,
		Description: body.Description,
		DueDate:     body.DueDate,
		CoverMedia:  body.CoverMedia,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toQuestResponse(q))
}

func (h *Handler) TerminateQuest(c *gin.Context) {
	var body terminateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(errutil.BadRequest(err.Error()))
		return
	}

	err := h.svc.Terminate(c.Request.Context(), lifecycle.TerminateRequest{
		QuestID:     c.Param("quest_id"),
		ActorUserID: middleware.UserID(c),
		Reason:      body.Reason,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) IssueLink(c *gin.Context) {
	var body issueLinkRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(errutil.BadRequest(err.Error()))
		return
	}

	link, err := h.svc.IssueLink(c.Request.Context(), lifecycle.IssueLinkRequest{
		QuestID:              c.Param("quest_id"),
		UserID:               middleware.UserID(c),
		Type:                 graph.LinkType(body.Type),
		Name:                 body.Name,
		RelationshipStrength: body.RelationshipStrength,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, toLinkResponse(link))
}

func (h *Handler) GetQuestForLink(c *gin.Context) {
	q, link, err := h.svc.GetQuestForLink(c.Request.Context(), c.Param("link_code"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, questForLinkResponse{
		Quest: toQuestResponse(q),
		Link:  toLinkResponse(link),
	})
}

func (h *Handler) Reflow(c *gin.Context) {
	node, err := h.svc.Reflow(c.Request.Context(), lifecycle.ReflowRequest{
		LinkCode: c.Param("link_code"),
		UserID:   middleware.UserID(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, toNodeResponse(node))
}

func (h *Handler) ProposeAnswer(c *gin.Context) {
	var body proposeAnswerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(errutil.BadRequest(err.Error()))
		return
	}

	pa, err := h.svc.ProposeAnswer(c.Request.Context(), lifecycle.ProposeAnswerRequest{
		QuestID:          c.Param("quest_id"),
		UserID:           middleware.UserID(c),
		Content:          body.Content,
		ScreeningAnswers: body.ScreeningAnswers,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, toAnswerResponse(pa))
}

func (h *Handler) AcceptAnswer(c *gin.Context) {
	pa, allocations, err := h.svc.AcceptAnswer(c.Request.Context(), lifecycle.AcceptAnswerRequest{
		ProposedAnswerID: c.Param("answer_id"),
		ActorUserID:      middleware.UserID(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toAcceptAnswerResponse(pa, allocations))
}

func (h *Handler) RejectAnswer(c *gin.Context) {
	pa, err := h.svc.RejectAnswer(c.Request.Context(), lifecycle.RejectAnswerRequest{
		ProposedAnswerID: c.Param("answer_id"),
		ActorUserID:      middleware.UserID(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toAnswerResponse(pa))
}

func (h *Handler) Branch(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = middleware.UserID(c)
	}

	view, err := h.svc.Branch(c.Request.Context(), c.Param("quest_id"), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toBranchResponse(view))
}

func (h *Handler) History(c *gin.Context) {
	events, err := h.svc.History(c.Request.Context(), c.Param("quest_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": toEventResponses(events)})
}

func (h *Handler) Shares(c *gin.Context) {
	shares, err := h.svc.Shares(c.Request.Context(), c.Param("quest_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shares": toShareResponses(shares)})
}

func (h *Handler) AddComment(c *gin.Context) {
	var body addCommentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(errutil.BadRequest(err.Error()))
		return
	}

	err := h.svc.AddComment(c.Request.Context(), lifecycle.AddCommentRequest{
		QuestID:   c.Param("quest_id"),
		UserID:    middleware.UserID(c),
		CommentID: body.CommentID,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
