package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genbot-api/internal/domain/conversation"
	"genbot-api/internal/domain/messenger"
)

type stubConversations struct {
	list []*conversation.Conversation
}

func (s *stubConversations) GetOrCreate(_ context.Context, userID, _ string) (*conversation.Conversation, error) {
	return &conversation.Conversation{ID: 7, PublicID: "conv_x", UserID: userID}, nil
}

func (s *stubConversations) List(_ context.Context, _ *conversation.Pagination) ([]*conversation.Conversation, int64, error) {
	return s.list, int64(len(s.list)), nil
}

type stubMessages struct {
	saved   []conversation.Message
	history []conversation.Message
}

func (s *stubMessages) Save(_ context.Context, msg *conversation.Message) (bool, error) {
	s.saved = append(s.saved, *msg)
	return true, nil
}

func (s *stubMessages) History(_ context.Context, _ string, limit int) ([]conversation.Message, error) {
	if limit < len(s.history) {
		return s.history[:limit], nil
	}
	return s.history, nil
}

type stubSender struct {
	texts []string
	media []string
}

func (s *stubSender) SendText(_ context.Context, _, body string) (string, error) {
	s.texts = append(s.texts, body)
	return "wamid.OUT1", nil
}

func (s *stubSender) SendMedia(_ context.Context, _ string, _ messenger.MediaKind, link, _ string) (string, error) {
	s.media = append(s.media, link)
	return "wamid.OUT2", nil
}

func (s *stubSender) SendInteractive(context.Context, string, string, string, []string) (string, error) {
	return "wamid.OUT3", nil
}

func newMessageRouter(convs *stubConversations, msgs *stubMessages, sender *stubSender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewMessageHandler(convs, msgs, sender, zerolog.Nop())
	engine := gin.New()
	engine.POST("/v1/messages/send", handler.Send)
	engine.GET("/v1/conversations", handler.List)
	engine.GET("/v1/conversations/:user_id/history", handler.History)
	return engine
}

func TestSendText(t *testing.T) {
	msgs := &stubMessages{}
	sender := &stubSender{}
	engine := newMessageRouter(&stubConversations{}, msgs, sender)

	body := `{"user_id":"15551234567","type":"text","body":"hello from ops"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/messages/send", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "wamid.OUT1", result["message_id"])
	assert.Equal(t, "sent", result["status"])

	assert.Equal(t, []string{"hello from ops"}, sender.texts)
	require.Len(t, msgs.saved, 1)
	assert.Equal(t, conversation.DirectionOutbound, msgs.saved[0].Direction)
	assert.Equal(t, uint(7), msgs.saved[0].ConversationID)
}

func TestSendMedia(t *testing.T) {
	msgs := &stubMessages{}
	sender := &stubSender{}
	engine := newMessageRouter(&stubConversations{}, msgs, sender)

	body := `{"user_id":"15551234567","type":"image","link":"https://cdn.example.com/x.png","caption":"look"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/messages/send", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"https://cdn.example.com/x.png"}, sender.media)
	require.Len(t, msgs.saved, 1)
	assert.Equal(t, conversation.MessageTypeImage, msgs.saved[0].Type)
}

func TestSendValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing user id", `{"type":"text","body":"x"}`},
		{"bad type", `{"user_id":"1","type":"audio","body":"x"}`},
		{"text without body", `{"user_id":"1","type":"text"}`},
		{"media without link", `{"user_id":"1","type":"image"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newMessageRouter(&stubConversations{}, &stubMessages{}, &stubSender{})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/messages/send", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			engine.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListConversations(t *testing.T) {
	name := "Ada"
	convs := &stubConversations{list: []*conversation.Conversation{
		{PublicID: "conv_1", UserID: "15551234567", DisplayName: &name, CreatedAt: time.Now(), UpdatedAt: time.Now()},
	}}
	engine := newMessageRouter(convs, &stubMessages{}, &stubSender{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/conversations?page=1&page_size=10", nil)
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Data  []map[string]any `json:"data"`
		Total int64            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Data, 1)
	assert.Equal(t, "conv_1", result.Data[0]["id"])
	assert.Equal(t, "Ada", result.Data[0]["display_name"])
	assert.Equal(t, int64(1), result.Total)
}

func TestHistory(t *testing.T) {
	msgs := &stubMessages{history: []conversation.Message{
		{PlatformMessageID: "wamid.1", Direction: conversation.DirectionInbound, Status: conversation.StatusReceived, Type: conversation.MessageTypeText, Body: "hi"},
		{PlatformMessageID: "wamid.2", Direction: conversation.DirectionOutbound, Status: conversation.StatusSent, Type: conversation.MessageTypeInteractive, Body: "menu"},
	}}
	engine := newMessageRouter(&stubConversations{}, msgs, &stubSender{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/conversations/15551234567/history?limit=10", nil)
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Data, 2)
	assert.Equal(t, "wamid.1", result.Data[0]["id"])
	assert.Equal(t, "inbound", result.Data[0]["direction"])
	assert.Equal(t, "wamid.2", result.Data[1]["id"])
}
