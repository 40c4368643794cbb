package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arrahchii/portfolio-sub000/internal/model"
	"github.com/arrahchii/portfolio-sub000/internal/profile"
	"github.com/arrahchii/portfolio-sub000/internal/repository"
	"github.com/arrahchii/portfolio-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	reply string
	err   error
}

func (s stubDispatcher) Dispatch(context.Context, string, []model.ChatMessage) (string, error) {
	return s.reply, s.err
}

func newTestRouter(dispatcher service.Dispatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	p := profile.Default()
	conversations := repository.NewMemoryConversationRepository()
	quick := service.NewQuickQuestionResolver(p, "")
	personal := service.NewPersonalQueryDetector(p, nil)
	chat := service.NewChatService(service.ChatDeps{
		Messages:      repository.NewMemoryMessageRepository(),
		Conversations: conversations,
		QuickAnswers:  quick,
		Personal:      personal,
		Dispatcher:    dispatcher,
	})

	r := gin.New()
	RegisterRoutes(r, Handlers{
		Chat:         NewChatHandler(chat),
		Conversation: NewConversationHandler(service.NewConversationService(conversations)),
		Profile:      NewProfileHandler(p, personal, quick),
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestPostChatQuickQuestion(t *testing.T) {
	r := newTestRouter(stubDispatcher{reply: "unused"})

	w, resp := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"message": "What are your skills?", "sessionId": "s1", "isQuickQuestion": true,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, profile.DefaultQuickQuestions[1].Answer, resp["message"])
	assert.Equal(t, "text", resp["kind"])
	assert.NotEmpty(t, resp["messageId"])
	assert.NotContains(t, resp, "profile")
}

func TestPostChatPersonalQueryReturnsProfileCard(t *testing.T) {
	r := newTestRouter(stubDispatcher{reply: "unused"})

	w, resp := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{"message": "Who is Lance?", "sessionId": "s1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "profile", resp["kind"])
	assert.Equal(t, profile.Default().Bio, resp["message"])

	card, ok := resp["profile"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/images/profile.jpg", card["imageUrl"])
	assert.Equal(t, "profile", card["formatting"])
}

func TestPostChatLLMFailureStillSucceeds(t *testing.T) {
	r := newTestRouter(stubDispatcher{err: &service.ExternalServiceError{Err: context.DeadlineExceeded}})

	w, resp := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{"message": "What's the weather like?", "sessionId": "s1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, service.DefaultApologyReply, resp["message"])
}

func TestPostChatValidationError(t *testing.T) {
	r := newTestRouter(stubDispatcher{reply: "x"})

	w, resp := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{"message": strings.Repeat("a", 1001), "sessionId": "s1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
	details, ok := resp["details"].([]interface{})
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, "message", details[0].(map[string]interface{})["field"])

	_, history := doJSON(t, r, http.MethodGet, "/api/chat/history/s1", nil)
	assert.Empty(t, history["messages"])
}

func TestPostChatMalformedBody(t *testing.T) {
	r := newTestRouter(stubDispatcher{reply: "x"})

	w, resp := doJSON(t, r, http.MethodPost, "/api/chat", `{"message": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.NotEmpty(t, resp["details"])
}

func TestPostChatUnexpectedErrorIs500(t *testing.T) {
	r := newTestRouter(stubDispatcher{err: assert.AnError})

	w, resp := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{"message": "What's the weather like?", "sessionId": "s1"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], assert.AnError.Error())
}

func TestChatHistoryRoundTrip(t *testing.T) {
	r := newTestRouter(stubDispatcher{reply: "Sunny!"})

	_, sent := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{"message": "What's the weather like?", "sessionId": "s1"})

	w, resp := doJSON(t, r, http.MethodGet, "/api/chat/history/s1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	messages, ok := resp["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)

	first := messages[0].(map[string]interface{})
	second := messages[1].(map[string]interface{})
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "What's the weather like?", first["message"])
	assert.Equal(t, "assistant", second["role"])
	assert.Equal(t, "Sunny!", second["message"])
	assert.Equal(t, sent["messageId"], second["id"])
	assert.Equal(t, "s1", second["sessionId"])
}

func TestConversationsEndpoints(t *testing.T) {
	r := newTestRouter(stubDispatcher{reply: "ok"})
	doJSON(t, r, http.MethodPost, "/api/chat", gin.H{"message": "hello there", "sessionId": "s1"})

	w, resp := doJSON(t, r, http.MethodGet, "/api/conversations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	list, ok := resp["conversations"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "hello there", list[0].(map[string]interface{})["title"])

	w, resp = doJSON(t, r, http.MethodGet, "/api/conversations/s1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	conv := resp["conversation"].(map[string]interface{})
	assert.Equal(t, float64(2), conv["messageCount"])

	w, _ = doJSON(t, r, http.MethodGet, "/api/conversations/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/conversations?start_date=05/01/2024", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = doJSON(t, r, http.MethodGet, "/api/conversations?end_date=2000-01-01", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp["conversations"])
}

func TestProfileEndpoints(t *testing.T) {
	r := newTestRouter(stubDispatcher{})

	w, resp := doJSON(t, r, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	p := resp["profile"].(map[string]interface{})
	assert.Equal(t, "Lance", p["name"])
	assert.Equal(t, "/images/profile.jpg", p["imageUrl"])
	assert.NotContains(t, p, "SystemPrompt")

	w, resp = doJSON(t, r, http.MethodGet, "/api/quick-questions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["questions"], 4)

	w, resp = doJSON(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp["status"])
}
