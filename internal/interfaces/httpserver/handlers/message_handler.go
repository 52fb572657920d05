package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"genbot-api/internal/domain/conversation"
	"genbot-api/internal/domain/messenger"
	"genbot-api/internal/interfaces/httpserver/requests"
	"genbot-api/internal/interfaces/httpserver/responses"
	"genbot-api/internal/utils/platformerrors"
)

const defaultHistoryLimit = 50

// MessageHandler serves the management API: operator-initiated sends,
// conversation listing, and per-user history.
type MessageHandler struct {
	conversations conversation.Repository
	messages      conversation.MessageRepository
	sender        messenger.Sender
	log           zerolog.Logger
}

// NewMessageHandler builds the management handler.
func NewMessageHandler(
	conversations conversation.Repository,
	messages conversation.MessageRepository,
	sender messenger.Sender,
	log zerolog.Logger,
) *MessageHandler {
	return &MessageHandler{
		conversations: conversations,
		messages:      messages,
		sender:        sender,
		log:           log.With().Str("component", "message-handler").Logger(),
	}
}

// Send delivers an operator-initiated message to a user and records it in
// the conversation.
func (h *MessageHandler) Send(c *gin.Context) {
	var req requests.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "message.send", "invalid send request: "+err.Error())
		return
	}

	ctx := c.Request.Context()

	conv, err := h.conversations.GetOrCreate(ctx, req.UserID, "")
	if err != nil {
		responses.HandleError(c, err, "failed to resolve conversation")
		return
	}

	outbound := &conversation.Message{
		ConversationID: conv.ID,
		UserID:         req.UserID,
		Direction:      conversation.DirectionOutbound,
		Status:         conversation.StatusSent,
	}

	var ack string
	switch req.Type {
	case "text":
		if req.Body == "" {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "message.send", "body is required for text messages")
			return
		}
		ack, err = h.sender.SendText(ctx, req.UserID, req.Body)
		outbound.Type = conversation.MessageTypeText
		outbound.Body = req.Body
	default:
		if req.Link == "" {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "message.send", "link is required for media messages")
			return
		}
		ack, err = h.sender.SendMedia(ctx, req.UserID, messenger.MediaKind(req.Type), req.Link, req.Caption)
		outbound.Type = conversation.MessageType(req.Type)
		link := req.Link
		outbound.MediaURL = &link
		if req.Caption != "" {
			caption := req.Caption
			outbound.Caption = &caption
		}
	}
	if err != nil {
		responses.HandleError(c, err, "failed to deliver message")
		return
	}

	outbound.PlatformMessageID = ack
	if outbound.PlatformMessageID == "" {
		outbound.PlatformMessageID = "out_" + uuid.NewString()
	}
	if _, err := h.messages.Save(ctx, outbound); err != nil {
		responses.HandleError(c, err, "message delivered but not recorded")
		return
	}

	c.JSON(http.StatusOK, responses.SendResult{
		MessageID: outbound.PlatformMessageID,
		Status:    string(conversation.StatusSent),
	})
}

// List returns conversations, newest activity first.
func (h *MessageHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	convs, total, err := h.conversations.List(c.Request.Context(), &conversation.Pagination{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to list conversations")
		return
	}

	data := make([]responses.ConversationPayload, len(convs))
	for i, conv := range convs {
		data[i] = responses.ConversationFromDomain(conv)
	}

	c.JSON(http.StatusOK, responses.ConversationListResponse{
		Data:     data,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// History returns a user's messages in chronological order.
func (h *MessageHandler) History(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "message.history", "user_id is required")
		return
	}

	limit := queryInt(c, "limit", defaultHistoryLimit)
	if limit < 1 || limit > 500 {
		limit = defaultHistoryLimit
	}

	history, err := h.messages.History(c.Request.Context(), userID, limit)
	if err != nil {
		responses.HandleError(c, err, "failed to load history")
		return
	}

	data := make([]responses.MessagePayload, len(history))
	for i := range history {
		data[i] = responses.MessageFromDomain(&history[i])
	}

	c.JSON(http.StatusOK, responses.HistoryResponse{Data: data})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
