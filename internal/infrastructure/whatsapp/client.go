package whatsapp

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"genbot-api/internal/domain/messenger"
	"genbot-api/internal/utils/platformerrors"
)

// Client sends messages through the platform's Cloud API. Every send is a
// single attempt; retry policy belongs to the caller.
type Client struct {
	http     *resty.Client
	numberID string
	logger   zerolog.Logger
}

// NewClient builds a platform send client.
func NewClient(baseURL, token, numberID string, logger zerolog.Logger) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:     http,
		numberID: numberID,
		logger:   logger.With().Str("component", "whatsapp-client").Logger(),
	}
}

// SendText delivers a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	req := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &textBody{Body: body},
	}
	return c.send(ctx, "whatsapp.send_text", req)
}

// SendMedia delivers an image or video by link. The caption is attached only
// when non-empty.
func (c *Client) SendMedia(ctx context.Context, to string, kind messenger.MediaKind, link, caption string) (string, error) {
	media := &mediaBody{Link: link}
	if caption != "" {
		media.Caption = caption
	}

	req := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             string(kind),
	}
	switch kind {
	case messenger.MediaVideo:
		req.Video = media
	default:
		req.Type = string(messenger.MediaImage)
		req.Image = media
	}
	return c.send(ctx, "whatsapp.send_media", req)
}

// SendInteractive delivers a button message. Labels keep their order; button
// i gets reply id btn_<i>. The header is attached only when non-empty.
func (c *Client) SendInteractive(ctx context.Context, to, header, body string, buttons []string) (string, error) {
	replies := make([]button, len(buttons))
	for i, label := range buttons {
		replies[i] = button{
			Type: "reply",
			Reply: buttonReply{
				ID:    fmt.Sprintf("btn_%d", i),
				Title: label,
			},
		}
	}

	payload := &interactive{
		Type:   "button",
		Body:   interactiveBody{Text: body},
		Action: interactiveAction{Buttons: replies},
	}
	if header != "" {
		payload.Header = &interactiveHeader{Type: "text", Text: header}
	}

	req := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive:      payload,
	}
	return c.send(ctx, "whatsapp.send_interactive", req)
}

func (c *Client) send(ctx context.Context, op string, req sendRequest) (string, error) {
	var out sendResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(fmt.Sprintf("/%s/messages", c.numberID))
	if err != nil {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeDelivery,
			op,
			fmt.Sprintf("platform send failed for user %s", req.To),
			err,
		)
	}
	if resp.IsError() {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeDelivery,
			op,
			fmt.Sprintf("platform send returned status %d for user %s", resp.StatusCode(), req.To),
			nil,
		)
	}

	if len(out.Messages) == 0 {
		c.logger.Warn().Str("to", req.To).Msg("platform ack carried no message id")
		return "", nil
	}
	return out.Messages[0].ID, nil
}
