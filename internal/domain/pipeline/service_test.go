package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"genbot-api/internal/domain/conversation"
	"genbot-api/internal/domain/dialog"
	"genbot-api/internal/domain/generation"
	"genbot-api/internal/domain/messenger"
	"genbot-api/internal/domain/session"
)

type fakeConversations struct {
	conv *conversation.Conversation
	err  error
}

func (f *fakeConversations) GetOrCreate(_ context.Context, userID, displayName string) (*conversation.Conversation, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.conv == nil {
		name := displayName
		f.conv = &conversation.Conversation{ID: 1, PublicID: "conv_test", UserID: userID, DisplayName: &name}
	}
	return f.conv, nil
}

func (f *fakeConversations) List(context.Context, *conversation.Pagination) ([]*conversation.Conversation, int64, error) {
	return nil, 0, nil
}

type fakeMessages struct {
	saved     []conversation.Message
	duplicate bool
	saveErr   error
}

func (f *fakeMessages) Save(_ context.Context, msg *conversation.Message) (bool, error) {
	if f.saveErr != nil {
		return false, f.saveErr
	}
	if f.duplicate && msg.Direction == conversation.DirectionInbound {
		return false, nil
	}
	f.saved = append(f.saved, *msg)
	return true, nil
}

func (f *fakeMessages) History(context.Context, string, int) ([]conversation.Message, error) {
	return nil, nil
}

type fakeSessions struct {
	stored  map[string]*session.Session
	getErr  error
	saveErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{stored: map[string]*session.Session{}}
}

func (f *fakeSessions) Get(_ context.Context, userID string) (*session.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.stored[userID], nil
}

func (f *fakeSessions) Save(_ context.Context, sess *session.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.stored[sess.UserID] = sess
	return nil
}

type fakeLocker struct {
	locks int
}

func (f *fakeLocker) WithUserLock(_ context.Context, _ string, fn func() error) error {
	f.locks++
	return fn()
}

type sentCall struct {
	kind    string
	to      string
	header  string
	body    string
	link    string
	caption string
	buttons []string
}

type fakeSender struct {
	calls   []sentCall
	textErr error
}

func (f *fakeSender) SendText(_ context.Context, to, body string) (string, error) {
	if f.textErr != nil {
		return "", f.textErr
	}
	f.calls = append(f.calls, sentCall{kind: "text", to: to, body: body})
	return "wamid.TEXT", nil
}

func (f *fakeSender) SendMedia(_ context.Context, to string, kind messenger.MediaKind, link, caption string) (string, error) {
	f.calls = append(f.calls, sentCall{kind: string(kind), to: to, link: link, caption: caption})
	return "wamid.MEDIA", nil
}

func (f *fakeSender) SendInteractive(_ context.Context, to, header, body string, buttons []string) (string, error) {
	f.calls = append(f.calls, sentCall{kind: "interactive", to: to, header: header, body: body, buttons: buttons})
	return "wamid.MENU", nil
}

type fixedInvoker struct {
	result generation.Result
}

func (f *fixedInvoker) Invoke(context.Context, generation.Kind, string, string) generation.Result {
	return f.result
}

type fixture struct {
	svc      *Service
	convs    *fakeConversations
	messages *fakeMessages
	sessions *fakeSessions
	locker   *fakeLocker
	sender   *fakeSender
}

func newFixture(invoker generation.Invoker) *fixture {
	f := &fixture{
		convs:    &fakeConversations{},
		messages: &fakeMessages{},
		sessions: newFakeSessions(),
		locker:   &fakeLocker{},
		sender:   &fakeSender{},
	}
	f.svc = NewService(
		f.convs,
		f.messages,
		f.sessions,
		f.locker,
		dialog.NewEngine(invoker),
		f.sender,
		30*time.Minute,
		zerolog.Nop(),
	)
	return f
}

func TestProcessInboundFirstContact(t *testing.T) {
	f := newFixture(&fixedInvoker{})

	f.svc.ProcessInbound(context.Background(), InboundMessage{
		UserID:            "15551234567",
		Text:              "hi",
		PlatformMessageID: "wamid.IN1",
		DisplayName:       "Ada",
	})

	// inbound + outbound rows
	require.Len(t, f.messages.saved, 2)
	inbound := f.messages.saved[0]
	assert.Equal(t, conversation.DirectionInbound, inbound.Direction)
	assert.Equal(t, conversation.StatusReceived, inbound.Status)
	assert.Equal(t, "wamid.IN1", inbound.PlatformMessageID)
	assert.Equal(t, uint(1), inbound.ConversationID)

	outbound := f.messages.saved[1]
	assert.Equal(t, conversation.DirectionOutbound, outbound.Direction)
	assert.Equal(t, conversation.StatusSent, outbound.Status)
	assert.Equal(t, conversation.MessageTypeInteractive, outbound.Type)
	assert.Equal(t, "wamid.MENU", outbound.PlatformMessageID)

	// menu reply with the three buttons, session advanced to menu_selection
	require.Len(t, f.sender.calls, 1)
	assert.Equal(t, "interactive", f.sender.calls[0].kind)
	assert.NotEmpty(t, f.sender.calls[0].header)
	assert.Equal(t, []string{"Generate Image", "Generate Video", "Get Information"}, f.sender.calls[0].buttons)

	sess := f.sessions.stored["15551234567"]
	require.NotNil(t, sess)
	assert.Equal(t, session.StepMenu, sess.Step)
	assert.Equal(t, 1, f.locker.locks)
}

func TestProcessInboundDuplicateSkipsEverything(t *testing.T) {
	f := newFixture(&fixedInvoker{})
	f.messages.duplicate = true

	f.svc.ProcessInbound(context.Background(), InboundMessage{
		UserID:            "15551234567",
		Text:              "hi again",
		PlatformMessageID: "wamid.IN1",
	})

	assert.Empty(t, f.sender.calls)
	assert.Empty(t, f.sessions.stored)
	assert.Empty(t, f.messages.saved)
}

func TestProcessInboundGenerationPath(t *testing.T) {
	f := newFixture(&fixedInvoker{result: generation.Result{Kind: generation.KindImage, MediaURL: "https://cdn.example.com/out.png"}})
	f.sessions.stored["15551234567"] = &session.Session{
		UserID:    "15551234567",
		Step:      session.StepImageInput,
		Payload:   map[string]string{"service": "image"},
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}

	f.svc.ProcessInbound(context.Background(), InboundMessage{
		UserID:            "15551234567",
		Text:              "a red bicycle",
		PlatformMessageID: "wamid.IN2",
	})

	require.Len(t, f.sender.calls, 1)
	call := f.sender.calls[0]
	assert.Equal(t, "image", call.kind)
	assert.Equal(t, "https://cdn.example.com/out.png", call.link)
	assert.Contains(t, call.caption, "a red bicycle")

	sess := f.sessions.stored["15551234567"]
	assert.Equal(t, session.StepWelcome, sess.Step)
	assert.Empty(t, sess.Payload)

	require.Len(t, f.messages.saved, 2)
	outbound := f.messages.saved[1]
	assert.Equal(t, conversation.MessageTypeImage, outbound.Type)
	require.NotNil(t, outbound.MediaURL)
	assert.Equal(t, "https://cdn.example.com/out.png", *outbound.MediaURL)
}

func TestProcessInboundStoreFailureTriggersApology(t *testing.T) {
	f := newFixture(&fixedInvoker{})
	f.convs.err = errors.New("db down")

	f.svc.ProcessInbound(context.Background(), InboundMessage{
		UserID:            "15551234567",
		Text:              "hi",
		PlatformMessageID: "wamid.IN3",
	})

	require.Len(t, f.sender.calls, 1)
	assert.Equal(t, "text", f.sender.calls[0].kind)
	assert.NotEmpty(t, f.sender.calls[0].body)
	assert.Empty(t, f.sessions.stored)
}

func TestProcessInboundApologyFailureIsSwallowed(t *testing.T) {
	f := newFixture(&fixedInvoker{})
	f.convs.err = errors.New("db down")
	f.sender.textErr = errors.New("platform down")

	assert.NotPanics(t, func() {
		f.svc.ProcessInbound(context.Background(), InboundMessage{
			UserID:            "15551234567",
			Text:              "hi",
			PlatformMessageID: "wamid.IN4",
		})
	})
}

func TestProcessInboundSessionSaveFailure(t *testing.T) {
	f := newFixture(&fixedInvoker{})
	f.sessions.saveErr = errors.New("redis down")

	f.svc.ProcessInbound(context.Background(), InboundMessage{
		UserID:            "15551234567",
		Text:              "hi",
		PlatformMessageID: "wamid.IN5",
	})

	// menu went out before the failure, then the apology
	require.Len(t, f.sender.calls, 2)
	assert.Equal(t, "interactive", f.sender.calls[0].kind)
	assert.Equal(t, "text", f.sender.calls[1].kind)
}

func TestProcessInboundRecordsDialogTransition(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(prev)

	f := newFixture(&fixedInvoker{})

	f.svc.ProcessInbound(context.Background(), InboundMessage{
		UserID:            "15551234567",
		Text:              "hi",
		PlatformMessageID: "wamid.IN7",
	})

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "dialog.transition", events[0].Name)

	attrs := map[string]string{}
	for _, attr := range events[0].Attributes {
		attrs[string(attr.Key)] = attr.Value.AsString()
	}
	assert.Equal(t, string(session.StepWelcome), attrs["step.from"])
	assert.Equal(t, string(session.StepMenu), attrs["step.to"])
}

func TestProcessInboundExpiredSessionDefaultsToWelcome(t *testing.T) {
	f := newFixture(&fixedInvoker{})
	// Store.Get contract returns nil for expired sessions; simulate absence.
	f.sessions.stored = map[string]*session.Session{}

	f.svc.ProcessInbound(context.Background(), InboundMessage{
		UserID:            "15551234567",
		Text:              "anything",
		PlatformMessageID: "wamid.IN6",
	})

	require.Len(t, f.sender.calls, 1)
	assert.Equal(t, "interactive", f.sender.calls[0].kind)
	assert.Equal(t, session.StepMenu, f.sessions.stored["15551234567"].Step)
}
