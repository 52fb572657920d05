package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"genbot-api/internal/infrastructure/queue"
	"genbot-api/internal/interfaces/httpserver/requests"
	"genbot-api/internal/interfaces/httpserver/responses"
	"genbot-api/internal/utils/platformerrors"
)

// WebhookHandler terminates the platform's webhook: the GET verification
// handshake and POST message deliveries.
type WebhookHandler struct {
	verifyToken string
	queue       queue.TaskQueue
	log         zerolog.Logger
}

// NewWebhookHandler builds the webhook handler.
func NewWebhookHandler(verifyToken string, q queue.TaskQueue, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: verifyToken,
		queue:       q,
		log:         log.With().Str("component", "webhook-handler").Logger(),
	}
}

// Verify answers the platform's subscription handshake: echo the challenge
// when the mode and token match, 403 otherwise.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) == 1 {
		h.log.Info().Msg("webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}

	h.log.Warn().Str("mode", mode).Msg("webhook verification rejected")
	responses.HandleNewError(c, platformerrors.ErrorTypeVerification, "webhook.verify", "verification token mismatch")
}

// Receive accepts a delivery, enqueues every extracted message, and
// acknowledges immediately. Processing happens asynchronously; once a payload
// parses, per-message problems never turn into a non-200 response, which
// would only make the platform redeliver. A body that does not parse at all
// is rejected with 404.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload requests.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.log.Warn().Err(err).Msg("unparseable webhook payload")
		c.Status(http.StatusNotFound)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			h.handleChange(change.Value)
		}
	}

	c.String(http.StatusOK, "EVENT_RECEIVED")
}

func (h *WebhookHandler) handleChange(value requests.WebhookValue) {
	names := map[string]string{}
	for _, contact := range value.Contacts {
		names[contact.WaID] = contact.Profile.Name
	}

	for _, status := range value.Statuses {
		h.log.Debug().
			Str("message_id", status.ID).
			Str("status", status.Status).
			Msg("delivery status ignored")
	}

	for _, msg := range value.Messages {
		text := msg.TextContent()
		if msg.From == "" || msg.ID == "" || text == "" {
			h.log.Debug().Str("type", msg.Type).Msg("skipping message without text content")
			continue
		}

		task := queue.Task{
			UserID:            msg.From,
			Text:              text,
			PlatformMessageID: msg.ID,
			DisplayName:       names[msg.From],
			QueuedAt:          time.Now(),
		}
		if err := h.queue.Enqueue(task); err != nil {
			h.log.Warn().
				Str("platform_message_id", msg.ID).
				Msg("queue full, dropping inbound message")
		}
	}
}
