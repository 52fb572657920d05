package generation

import "context"

// Kind selects which generation service to call.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindInfo  Kind = "info"
)

// Result is the outcome of a generation call. MediaURL is set for image and
// video kinds, Text for info. Fallback marks a degraded result substituted
// after an upstream failure.
type Result struct {
	Kind     Kind
	MediaURL string
	Text     string
	Fallback bool
}

// Invoker calls the generation services. Implementations never return an
// error: any upstream failure is converted into the fixed per-kind fallback
// result.
type Invoker interface {
	Invoke(ctx context.Context, kind Kind, prompt, userID string) Result
}
