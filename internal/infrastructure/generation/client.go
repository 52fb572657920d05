package generation

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	domain "genbot-api/internal/domain/generation"
)

// Fallback payloads returned when the upstream generation call fails. These
// are deliberately fixed so a degraded reply is still a complete reply.
const (
	FallbackImageURL = "https://placehold.co/1024x1024.png"
	FallbackVideoURL = "https://placehold.co/1024x576.mp4"
	FallbackInfoText = "Sorry, I couldn't look that up right now. Please try again in a moment."
)

type generateRequest struct {
	Prompt string `json:"prompt"`
	User   string `json:"user"`
}

// generateResponse covers the three per-kind services; each endpoint fills
// only its own field.
type generateResponse struct {
	ImageURL string `json:"imageUrl"`
	VideoURL string `json:"videoUrl"`
	Response string `json:"response"`
}

// Client calls the generation services with a bounded timeout. It never
// returns an error: any failure degrades to the fixed per-kind fallback.
type Client struct {
	http    *resty.Client
	logger  zerolog.Logger
	onFault func(kind domain.Kind)
}

// Option configures the client.
type Option func(*Client)

// WithFaultHook registers a callback invoked once per fallback substitution,
// used to feed the fallback counter.
func WithFaultHook(hook func(kind domain.Kind)) Option {
	return func(c *Client) {
		c.onFault = hook
	}
}

// NewClient builds a generation client.
func NewClient(baseURL, token string, timeout time.Duration, logger zerolog.Logger, opts ...Option) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if token != "" {
		http.SetAuthToken(token)
	}

	c := &Client{
		http:   http,
		logger: logger.With().Str("component", "generation-client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke calls the per-kind generation endpoint. On timeout, network failure,
// non-success status, or a response missing the kind-specific field, it
// returns the fixed fallback result instead of an error.
func (c *Client) Invoke(ctx context.Context, kind domain.Kind, prompt, userID string) domain.Result {
	var out generateResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(generateRequest{Prompt: prompt, User: userID}).
		SetResult(&out).
		Post("/v1/" + string(kind))

	switch {
	case err != nil:
		c.logger.Warn().Err(err).Str("kind", string(kind)).Msg("generation call failed, using fallback")
		return c.fallback(kind)
	case resp.IsError():
		c.logger.Warn().Int("status", resp.StatusCode()).Str("kind", string(kind)).Msg("generation returned error status, using fallback")
		return c.fallback(kind)
	}

	result := domain.Result{Kind: kind}
	switch kind {
	case domain.KindImage:
		if out.ImageURL == "" {
			return c.fallback(kind)
		}
		result.MediaURL = out.ImageURL
	case domain.KindVideo:
		if out.VideoURL == "" {
			return c.fallback(kind)
		}
		result.MediaURL = out.VideoURL
	default:
		if out.Response == "" {
			return c.fallback(kind)
		}
		result.Text = out.Response
	}
	return result
}

func (c *Client) fallback(kind domain.Kind) domain.Result {
	if c.onFault != nil {
		c.onFault(kind)
	}

	result := domain.Result{Kind: kind, Fallback: true}
	switch kind {
	case domain.KindImage:
		result.MediaURL = FallbackImageURL
	case domain.KindVideo:
		result.MediaURL = FallbackVideoURL
	default:
		result.Text = FallbackInfoText
	}
	return result
}
