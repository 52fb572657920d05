package dialog

import (
	"context"
	"fmt"
	"strings"

	"genbot-api/internal/domain/generation"
	"genbot-api/internal/domain/messenger"
	"genbot-api/internal/domain/session"
)

// ReplyKind distinguishes the outbound message a transition produced.
type ReplyKind string

const (
	ReplyText        ReplyKind = "text"
	ReplyMedia       ReplyKind = "media"
	ReplyInteractive ReplyKind = "interactive"
)

// Reply describes one outbound message the pipeline must deliver.
type Reply struct {
	Kind      ReplyKind
	Header    string
	Body      string
	MediaKind messenger.MediaKind
	MediaURL  string
	Caption   string
	Buttons   []string
}

const (
	welcomeHeader = "Welcome!"
	welcomeBody   = "Hi! What would you like me to do?"
	imagePrompt   = "Great, describe the image you want me to generate."
	videoPrompt   = "Great, describe the video you want me to generate."
	infoPrompt    = "Sure, what would you like to know?"
	invalidOption = "Sorry, I didn't get that. Please pick one of the menu options."
)

// MenuButtons are the welcome-menu labels, in display order.
var MenuButtons = []string{"Generate Image", "Generate Video", "Get Information"}

// Engine advances a session's dialog step based on the inbound text.
// Transitions are pure except for the generation call the three input steps
// trigger.
type Engine struct {
	gen generation.Invoker
}

// NewEngine builds the dialog engine.
func NewEngine(gen generation.Invoker) *Engine {
	return &Engine{gen: gen}
}

// Handle applies the transition for the session's current step, mutating the
// session in place and returning the outbound reply. Unrecognized steps are
// treated as welcome.
func (e *Engine) Handle(ctx context.Context, sess *session.Session, text string) Reply {
	switch sess.Step {
	case session.StepMenu:
		return e.handleMenu(sess, text)
	case session.StepImageInput:
		return e.handleGeneration(ctx, sess, generation.KindImage, text)
	case session.StepVideoInput:
		return e.handleGeneration(ctx, sess, generation.KindVideo, text)
	case session.StepInfoInput:
		return e.handleGeneration(ctx, sess, generation.KindInfo, text)
	default:
		return e.handleWelcome(sess)
	}
}

func (e *Engine) handleWelcome(sess *session.Session) Reply {
	sess.Step = session.StepMenu
	return Reply{
		Kind:    ReplyInteractive,
		Header:  welcomeHeader,
		Body:    welcomeBody,
		Buttons: MenuButtons,
	}
}

// handleMenu matches the literal button title or the bare keyword
// (case-insensitive), checked in the fixed order image, video, information.
func (e *Engine) handleMenu(sess *session.Session, text string) Reply {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(text, "Generate Image") || strings.Contains(lower, "image"):
		sess.Step = session.StepImageInput
		sess.Payload["service"] = "image"
		return Reply{Kind: ReplyText, Body: imagePrompt}
	case strings.Contains(text, "Generate Video") || strings.Contains(lower, "video"):
		sess.Step = session.StepVideoInput
		sess.Payload["service"] = "video"
		return Reply{Kind: ReplyText, Body: videoPrompt}
	case strings.Contains(text, "Get Information") || strings.Contains(lower, "information"):
		sess.Step = session.StepInfoInput
		sess.Payload["service"] = "info"
		return Reply{Kind: ReplyText, Body: infoPrompt}
	default:
		return Reply{Kind: ReplyText, Body: invalidOption}
	}
}

func (e *Engine) handleGeneration(ctx context.Context, sess *session.Session, kind generation.Kind, text string) Reply {
	result := e.gen.Invoke(ctx, kind, text, sess.UserID)

	sess.Step = session.StepWelcome
	sess.Payload = map[string]string{}

	if kind == generation.KindInfo {
		return Reply{Kind: ReplyText, Body: result.Text}
	}

	mediaKind := messenger.MediaImage
	if kind == generation.KindVideo {
		mediaKind = messenger.MediaVideo
	}
	return Reply{
		Kind:      ReplyMedia,
		MediaKind: mediaKind,
		MediaURL:  result.MediaURL,
		Caption:   fmt.Sprintf("Here you go: %s", text),
	}
}
