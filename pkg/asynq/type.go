package asynq

const (
	// Quest tasks
	QuestExpireTask = "quest:expire"
)

type QuestExpirePayload struct {
	QuestID string `json:"quest_id"`
}
