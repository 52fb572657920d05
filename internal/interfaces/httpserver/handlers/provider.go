package handlers

import (
	"github.com/rs/zerolog"

	"genbot-api/internal/config"
	"genbot-api/internal/domain/conversation"
	"genbot-api/internal/domain/messenger"
	"genbot-api/internal/infrastructure/queue"
)

// Provider groups the HTTP handlers and their shared dependencies.
type Provider struct {
	Webhook *WebhookHandler
	Message *MessageHandler
}

// NewProvider wires the handlers.
func NewProvider(
	cfg *config.Config,
	q queue.TaskQueue,
	conversations conversation.Repository,
	messages conversation.MessageRepository,
	sender messenger.Sender,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Webhook: NewWebhookHandler(cfg.WebhookVerifyToken, q, log),
		Message: NewMessageHandler(conversations, messages, sender, log),
	}
}
