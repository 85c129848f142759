package httpapi

import (
	"net/http"

	"questflow/pkg/health"
	"questflow/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// ProvideRouter assembles the gin engine serving the public API.
func ProvideRouter(h *Handler, hc health.HealthService) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Identity(), middleware.Error())

	router.GET("/healthz", hc.Liveness)
	router.GET("/readyz", hc.Readiness)

	v1 := router.Group("/v1")
	{
		quests := v1.Group("/quests")
		{
			quests.POST("", h.CreateQuest)
			quests.GET("", h.ListQuests)
			quests.GET("/:quest_id", h.GetQuest)
			quests.PATCH("/:quest_id", h.EditQuest)
			quests.POST("/:quest_id/terminate", h.TerminateQuest)
			quests.POST("/:quest_id/links", h.IssueLink)
			quests.POST("/:quest_id/answers", h.ProposeAnswer)
			quests.POST("/:quest_id/comments", h.AddComment)
			quests.GET("/:quest_id/branch", h.Branch)
			quests.GET("/:quest_id/history", h.History)
			quests.GET("/:quest_id/shares", h.Shares)
		}

		links := v1.Group("/links")
		{
			links.GET("/:link_code", h.GetQuestForLink)
			links.POST("/:link_code/reflow", h.Reflow)
		}

		answers := v1.Group("/answers")
		{
			answers.POST("/:answer_id/accept", h.AcceptAnswer)
			answers.POST("/:answer_id/reject", h.RejectAnswer)
		}
	}

	return router
}

var Module = fx.Module("httpapi",
	health.Module,
	fx.Provide(NewHandler, ProvideRouter),
)
