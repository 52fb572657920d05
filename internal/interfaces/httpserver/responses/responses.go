package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"genbot-api/internal/domain/conversation"
	"genbot-api/internal/utils/platformerrors"
)

// ErrorResponse represents an error response with platform error details.
type ErrorResponse struct {
	Op            string `json:"op,omitempty"`
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	ErrorInstance error  `json:"-"`
	RequestID     string `json:"request_id,omitempty"`
}

// HandleError handles domain errors and returns appropriate HTTP responses.
func HandleError(reqCtx *gin.Context, err error, message string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())

		errResp := ErrorResponse{
			Op:            domainErr.GetOp(),
			Error:         message,
			Message:       message,
			ErrorInstance: domainErr,
			RequestID:     domainErr.GetRequestID(),
		}

		reqCtx.AbortWithStatusJSON(statusCode, errResp)
		return
	}

	errResp := ErrorResponse{
		Error:         message,
		Message:       message,
		ErrorInstance: err,
	}
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
}

// HandleNewError creates a new typed error at the route layer and handles it.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, op, message string) {
	ctx := reqCtx.Request.Context()
	err := platformerrors.NewError(ctx, platformerrors.LayerRoute, errorType, op, message, nil)

	statusCode := platformerrors.ErrorTypeToHTTPStatus(err.GetErrorType())

	errResp := ErrorResponse{
		Op:            err.GetOp(),
		Error:         message,
		Message:       message,
		ErrorInstance: err,
		RequestID:     err.GetRequestID(),
	}

	reqCtx.AbortWithStatusJSON(statusCode, errResp)
}

// ConversationPayload is returned to management API clients.
type ConversationPayload struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	DisplayName *string        `json:"display_name,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   int64          `json:"created_at"`
	UpdatedAt   int64          `json:"updated_at"`
}

// ConversationFromDomain maps the domain conversation to DTO.
func ConversationFromDomain(c *conversation.Conversation) ConversationPayload {
	return ConversationPayload{
		ID:          c.PublicID,
		UserID:      c.UserID,
		DisplayName: c.DisplayName,
		Metadata:    c.Metadata,
		CreatedAt:   c.CreatedAt.Unix(),
		UpdatedAt:   c.UpdatedAt.Unix(),
	}
}

// ConversationListResponse wraps a paginated conversation listing.
type ConversationListResponse struct {
	Data     []ConversationPayload `json:"data"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

// MessagePayload is one stored message in a history response.
type MessagePayload struct {
	ID        string  `json:"id"`
	Direction string  `json:"direction"`
	Status    string  `json:"status"`
	Type      string  `json:"type"`
	Body      string  `json:"body,omitempty"`
	MediaURL  *string `json:"media_url,omitempty"`
	Caption   *string `json:"caption,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

// MessageFromDomain maps the domain message to DTO.
func MessageFromDomain(m *conversation.Message) MessagePayload {
	return MessagePayload{
		ID:        m.PlatformMessageID,
		Direction: string(m.Direction),
		Status:    string(m.Status),
		Type:      string(m.Type),
		Body:      m.Body,
		MediaURL:  m.MediaURL,
		Caption:   m.Caption,
		CreatedAt: m.CreatedAt.Unix(),
	}
}

// HistoryResponse wraps a user's chronological message history.
type HistoryResponse struct {
	Data []MessagePayload `json:"data"`
}

// SendResult acknowledges a management-initiated send.
type SendResult struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}
