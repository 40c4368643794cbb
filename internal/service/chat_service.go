// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/arrahchii/portfolio-sub000/internal/model"
	"github.com/arrahchii/portfolio-sub000/internal/repository"
	"github.com/arrahchii/portfolio-sub000/pkg/log"

	"github.com/go-playground/validator/v10"
)

// DefaultApologyReply replaces the assistant reply when the language model fails.
const DefaultApologyReply = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."

const conversationTitleLimit = 50

// TurnRequest is one inbound chat message.
type TurnRequest struct {
	SessionID       string `json:"sessionId" validate:"required"`
	Message         string `json:"message" validate:"required,min=1,max=1000"`
	IsQuickQuestion bool   `json:"isQuickQuestion"`
}

// TurnResult is the outcome of a completed turn.
type TurnResult struct {
	Reply         model.Reply
	MessageID     string
	UserMessageID string
	Route         model.Route
}

// TurnPublisher receives an event after every completed turn.
type TurnPublisher interface {
	Publish(ctx context.Context, event model.TurnEvent) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, model.TurnEvent) error { return nil }

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	SendMessage(ctx context.Context, req TurnRequest) (TurnResult, error)
	History(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
}

// ChatDeps groups the collaborators of the chat service.
type ChatDeps struct {
	Messages      repository.MessageRepository
	Conversations repository.ConversationRepository
	QuickAnswers  *QuickQuestionResolver
	Personal      *PersonalQueryDetector
	Dispatcher    Dispatcher
	Publisher     TurnPublisher
	ApologyReply  string
}

type chatService struct {
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
	quickAnswers  *QuickQuestionResolver
	personal      *PersonalQueryDetector
	dispatcher    Dispatcher
	publisher     TurnPublisher
	apology       string
	validate      *validator.Validate
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(deps ChatDeps) ChatService {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	s := &chatService{
		messages:      deps.Messages,
		conversations: deps.Conversations,
		quickAnswers:  deps.QuickAnswers,
		personal:      deps.Personal,
		dispatcher:    deps.Dispatcher,
		publisher:     deps.Publisher,
		apology:       deps.ApologyReply,
		validate:      v,
	}
	if s.publisher == nil {
		s.publisher = NoopPublisher{}
	}
	if s.apology == "" {
		s.apology = DefaultApologyReply
	}
	return s
}

// SendMessage 执行一轮对话：校验、保存用户消息、路由、保存助手回复。
func (s *chatService) SendMessage(ctx context.Context, req TurnRequest) (TurnResult, error) {
	started := time.Now()
	if err := s.validate.Struct(req); err != nil {
		return TurnResult{}, newValidationError(err)
	}

	var userMeta map[string]interface{}
	if req.IsQuickQuestion {
		userMeta = map[string]interface{}{"quickQuestion": true}
	}
	userMsg, err := s.messages.Append(ctx, model.NewChatMessage{
		SessionID: req.SessionID,
		Message:   req.Message,
		Role:      model.RoleUser,
		Metadata:  userMeta,
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to persist user message: %w", err)
	}
	s.touchConversation(ctx, req.SessionID, req.Message, userMsg.Timestamp)

	reply, route, err := s.route(ctx, req, userMsg.ID)
	if err != nil {
		return TurnResult{}, err
	}

	assistantMsg, err := s.messages.Append(ctx, model.NewChatMessage{
		SessionID: req.SessionID,
		Message:   reply.Text,
		Role:      model.RoleAssistant,
		Metadata:  reply.Metadata(),
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to persist assistant message: %w", err)
	}
	s.touchConversation(ctx, req.SessionID, req.Message, assistantMsg.Timestamp)

	event := model.TurnEvent{
		SessionID:          req.SessionID,
		UserMessageID:      userMsg.ID,
		AssistantMessageID: assistantMsg.ID,
		Route:              route,
		ReplyKind:          reply.Kind,
		LatencyMs:          time.Since(started).Milliseconds(),
		OccurredAt:         assistantMsg.Timestamp,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Errorf("failed to publish turn event for session %s: %v", req.SessionID, err)
	}

	return TurnResult{
		Reply:         reply,
		MessageID:     assistantMsg.ID,
		UserMessageID: userMsg.ID,
		Route:         route,
	}, nil
}

// route 按快捷问题、个人问题、LLM 的优先级选择回复来源。
func (s *chatService) route(ctx context.Context, req TurnRequest, userMessageID string) (model.Reply, model.Route, error) {
	if req.IsQuickQuestion {
		return model.TextReply(s.quickAnswers.Resolve(req.Message)), model.RouteQuickQuestion, nil
	}
	if s.personal.IsPersonalQuery(req.Message) {
		return s.personal.Response(ctx), model.RoutePersonal, nil
	}

	history, err := s.priorHistory(ctx, req.SessionID, userMessageID)
	if err != nil {
		log.Errorf("failed to load history for session %s: %v", req.SessionID, err)
		history = []model.ChatMessage{}
	}

	text, err := s.dispatcher.Dispatch(ctx, req.Message, history)
	if err != nil {
		var extErr *ExternalServiceError
		if !errors.As(err, &extErr) {
			return model.Reply{}, "", fmt.Errorf("failed to dispatch message: %w", err)
		}
		log.Warnw("llm call failed, replying with apology", "sessionId", req.SessionID, "error", extErr.Err)
		return model.TextReply(s.apology), model.RouteFallback, nil
	}
	return model.TextReply(text), model.RouteLLM, nil
}

// priorHistory 返回当前用户消息之前的历史，当前问题由 Dispatcher 自行追加。
func (s *chatService) priorHistory(ctx context.Context, sessionID, userMessageID string) ([]model.ChatMessage, error) {
	all, err := s.messages.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	prior := make([]model.ChatMessage, 0, len(all))
	for _, m := range all {
		if m.ID != userMessageID {
			prior = append(prior, m)
		}
	}
	return prior, nil
}

// touchConversation 更新会话摘要，失败只记录日志，不影响本轮对话。
func (s *chatService) touchConversation(ctx context.Context, sessionID, firstMessage string, at time.Time) {
	if s.conversations == nil {
		return
	}
	if _, err := s.conversations.Touch(ctx, sessionID, conversationTitle(firstMessage), 1, at); err != nil {
		log.Errorf("failed to update conversation for session %s: %v", sessionID, err)
	}
}

func conversationTitle(message string) string {
	title := strings.TrimSpace(message)
	runes := []rune(title)
	if len(runes) > conversationTitleLimit {
		return string(runes[:conversationTitleLimit])
	}
	return title
}

// History 返回会话的完整消息历史。
func (s *chatService) History(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	return s.messages.History(ctx, sessionID)
}
