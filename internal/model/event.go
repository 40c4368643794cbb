package model

import "time"

// Route records which branch of the turn pipeline produced the reply.
type Route string

const (
	RouteQuickQuestion Route = "quick_question"
	RoutePersonal      Route = "personal"
	RouteLLM           Route = "llm"
	RouteFallback      Route = "fallback"
)

// TurnEvent 是每轮对话完成后发布到消息队列的事件。
type TurnEvent struct {
	SessionID          string    `json:"session_id"`
	UserMessageID      string    `json:"user_message_id"`
	AssistantMessageID string    `json:"assistant_message_id"`
	Route              Route     `json:"route"`
	ReplyKind          ReplyKind `json:"reply_kind"`
	LatencyMs          int64     `json:"latency_ms"`
	OccurredAt         time.Time `json:"occurred_at"`
}
