package messenger

import "context"

// MediaKind distinguishes outbound media payloads.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Sender delivers messages to the messaging platform. Each call is a single
// attempt; the returned string is the platform's message id for the send.
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
	// SendMedia attaches the caption only when it is non-empty.
	SendMedia(ctx context.Context, to string, kind MediaKind, link, caption string) (string, error)
	// SendInteractive renders buttons in the given order, each with reply id
	// btn_<index> and the label as its visible title. The header is omitted
	// from the payload when empty.
	SendInteractive(ctx context.Context, to, header, body string, buttons []string) (string, error)
}
