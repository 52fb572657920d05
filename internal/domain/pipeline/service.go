package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"genbot-api/internal/domain/conversation"
	"genbot-api/internal/domain/dialog"
	"genbot-api/internal/domain/messenger"
	"genbot-api/internal/domain/session"
	"genbot-api/internal/infrastructure/metrics"
	"genbot-api/internal/infrastructure/observability"
	"genbot-api/internal/utils/platformerrors"
)

const apologyText = "Sorry, something went wrong on our side. Please try again in a moment."

// InboundMessage is one user message extracted from a webhook delivery.
type InboundMessage struct {
	UserID            string
	Text              string
	PlatformMessageID string
	DisplayName       string
}

// Service orchestrates the per-message pipeline: persist, advance the dialog,
// reply, persist the reply, refresh the session. Failures are contained here;
// a single user's failure never crosses into sibling message processing.
type Service struct {
	conversations conversation.Repository
	messages      conversation.MessageRepository
	sessions      session.Store
	locker        session.Locker
	engine        *dialog.Engine
	sender        messenger.Sender
	sessionTTL    time.Duration
	logger        zerolog.Logger
}

// NewService builds the pipeline service.
func NewService(
	conversations conversation.Repository,
	messages conversation.MessageRepository,
	sessions session.Store,
	locker session.Locker,
	engine *dialog.Engine,
	sender messenger.Sender,
	sessionTTL time.Duration,
	logger zerolog.Logger,
) *Service {
	return &Service{
		conversations: conversations,
		messages:      messages,
		sessions:      sessions,
		locker:        locker,
		engine:        engine,
		sender:        sender,
		sessionTTL:    sessionTTL,
		logger:        logger.With().Str("component", "pipeline").Logger(),
	}
}

// ProcessInbound runs the full pipeline for one inbound message. Errors are
// logged and answered with a best-effort apology, never returned.
func (s *Service) ProcessInbound(ctx context.Context, in InboundMessage) {
	start := time.Now()
	ctx, span := observability.StartPipelineSpan(ctx, in.UserID, in.PlatformMessageID)
	defer span.End()
	defer func() {
		metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}()

	var duplicate bool
	err := s.locker.WithUserLock(ctx, in.UserID, func() error {
		var runErr error
		duplicate, runErr = s.run(ctx, in)
		return runErr
	})

	switch {
	case err != nil:
		perr := platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "inbound message processing failed")
		platformerrors.LogError(s.logger, perr)
		observability.RecordError(span, err)
		metrics.MessagesProcessed.WithLabelValues(metrics.OutcomeError).Inc()
		s.sendApology(ctx, in.UserID)
	case duplicate:
		s.logger.Info().
			Str("user_id", in.UserID).
			Str("platform_message_id", in.PlatformMessageID).
			Msg("duplicate delivery, skipping")
		metrics.MessagesProcessed.WithLabelValues(metrics.OutcomeDuplicate).Inc()
	default:
		metrics.MessagesProcessed.WithLabelValues(metrics.OutcomeOK).Inc()
	}
}

// run executes the pipeline under the per-user lock. It reports duplicate
// deliveries so the caller can skip reprocessing without treating them as
// failures.
func (s *Service) run(ctx context.Context, in InboundMessage) (duplicate bool, err error) {
	conv, err := s.conversations.GetOrCreate(ctx, in.UserID, in.DisplayName)
	if err != nil {
		return false, err
	}

	created, err := s.messages.Save(ctx, &conversation.Message{
		ConversationID:    conv.ID,
		PlatformMessageID: in.PlatformMessageID,
		UserID:            in.UserID,
		Direction:         conversation.DirectionInbound,
		Status:            conversation.StatusReceived,
		Type:              conversation.MessageTypeText,
		Body:              in.Text,
	})
	if err != nil {
		return false, err
	}
	if !created {
		return true, nil
	}

	sess, err := s.sessions.Get(ctx, in.UserID)
	if err != nil {
		return false, err
	}
	if sess == nil {
		sess = session.New(in.UserID, s.sessionTTL)
	}

	fromStep := sess.Step
	reply := s.engine.Handle(ctx, sess, in.Text)
	observability.AddStepTransition(trace.SpanFromContext(ctx), string(fromStep), string(sess.Step))

	ack, outbound, err := s.deliver(ctx, in.UserID, reply)
	if err != nil {
		return false, err
	}

	outbound.ConversationID = conv.ID
	outbound.PlatformMessageID = ack
	if outbound.PlatformMessageID == "" {
		outbound.PlatformMessageID = "out_" + uuid.NewString()
	}
	if _, err := s.messages.Save(ctx, outbound); err != nil {
		return false, err
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return false, err
	}

	s.logger.Debug().
		Str("user_id", in.UserID).
		Str("from_step", string(fromStep)).
		Str("to_step", string(sess.Step)).
		Msg("dialog advanced")
	return false, nil
}

// deliver sends the reply and builds the outbound message record for it.
func (s *Service) deliver(ctx context.Context, userID string, reply dialog.Reply) (string, *conversation.Message, error) {
	outbound := &conversation.Message{
		UserID:    userID,
		Direction: conversation.DirectionOutbound,
		Status:    conversation.StatusSent,
	}

	switch reply.Kind {
	case dialog.ReplyMedia:
		ack, err := s.sender.SendMedia(ctx, userID, reply.MediaKind, reply.MediaURL, reply.Caption)
		if err != nil {
			return "", nil, err
		}
		outbound.Type = conversation.MessageType(reply.MediaKind)
		mediaURL := reply.MediaURL
		outbound.MediaURL = &mediaURL
		if reply.Caption != "" {
			caption := reply.Caption
			outbound.Caption = &caption
		}
		return ack, outbound, nil
	case dialog.ReplyInteractive:
		ack, err := s.sender.SendInteractive(ctx, userID, reply.Header, reply.Body, reply.Buttons)
		if err != nil {
			return "", nil, err
		}
		outbound.Type = conversation.MessageTypeInteractive
		outbound.Body = reply.Body
		return ack, outbound, nil
	default:
		ack, err := s.sender.SendText(ctx, userID, reply.Body)
		if err != nil {
			return "", nil, err
		}
		outbound.Type = conversation.MessageTypeText
		outbound.Body = reply.Body
		return ack, outbound, nil
	}
}

// sendApology makes one best-effort attempt to tell the user something went
// wrong. Its own failure is logged and swallowed.
func (s *Service) sendApology(ctx context.Context, userID string) {
	if _, err := s.sender.SendText(ctx, userID, apologyText); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("apology send failed")
	}
}
