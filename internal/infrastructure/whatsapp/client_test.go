package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genbot-api/internal/domain/messenger"
	"genbot-api/internal/utils/platformerrors"
)

func newTestServer(t *testing.T, capture *map[string]any, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/555000111/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*capture = body

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status < 300 {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"messaging_product": "whatsapp",
				"messages":          []map[string]string{{"id": "wamid.ACK123"}},
			})
		} else {
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "nope"}})
		}
	}))
}

func TestSendText(t *testing.T) {
	var body map[string]any
	srv := newTestServer(t, &body, http.StatusOK)
	defer srv.Close()

	client := NewClient(srv.URL, "test-token", "555000111", zerolog.Nop())

	id, err := client.SendText(context.Background(), "15551234567", "hello there")
	require.NoError(t, err)
	assert.Equal(t, "wamid.ACK123", id)

	assert.Equal(t, "whatsapp", body["messaging_product"])
	assert.Equal(t, "individual", body["recipient_type"])
	assert.Equal(t, "15551234567", body["to"])
	assert.Equal(t, "text", body["type"])
	text := body["text"].(map[string]any)
	assert.Equal(t, "hello there", text["body"])
}

func TestSendMediaWithCaption(t *testing.T) {
	var body map[string]any
	srv := newTestServer(t, &body, http.StatusOK)
	defer srv.Close()

	client := NewClient(srv.URL, "test-token", "555000111", zerolog.Nop())

	_, err := client.SendMedia(context.Background(), "15551234567", messenger.MediaImage, "https://cdn.example.com/a.png", "a red bicycle")
	require.NoError(t, err)

	assert.Equal(t, "image", body["type"])
	image := body["image"].(map[string]any)
	assert.Equal(t, "https://cdn.example.com/a.png", image["link"])
	assert.Equal(t, "a red bicycle", image["caption"])
}

func TestSendMediaWithoutCaptionOmitsField(t *testing.T) {
	var body map[string]any
	srv := newTestServer(t, &body, http.StatusOK)
	defer srv.Close()

	client := NewClient(srv.URL, "test-token", "555000111", zerolog.Nop())

	_, err := client.SendMedia(context.Background(), "15551234567", messenger.MediaVideo, "https://cdn.example.com/a.mp4", "")
	require.NoError(t, err)

	assert.Equal(t, "video", body["type"])
	video := body["video"].(map[string]any)
	assert.Equal(t, "https://cdn.example.com/a.mp4", video["link"])
	_, hasCaption := video["caption"]
	assert.False(t, hasCaption)
}

func TestSendInteractiveMapsButtonIDs(t *testing.T) {
	var body map[string]any
	srv := newTestServer(t, &body, http.StatusOK)
	defer srv.Close()

	client := NewClient(srv.URL, "test-token", "555000111", zerolog.Nop())

	_, err := client.SendInteractive(context.Background(), "15551234567", "Welcome!", "pick one", []string{"Generate Image", "Generate Video", "Get Information"})
	require.NoError(t, err)

	assert.Equal(t, "interactive", body["type"])
	inter := body["interactive"].(map[string]any)
	assert.Equal(t, "button", inter["type"])
	assert.Equal(t, map[string]any{"type": "text", "text": "Welcome!"}, inter["header"])
	assert.Equal(t, "pick one", inter["body"].(map[string]any)["text"])

	buttons := inter["action"].(map[string]any)["buttons"].([]any)
	require.Len(t, buttons, 3)
	for i, label := range []string{"Generate Image", "Generate Video", "Get Information"} {
		reply := buttons[i].(map[string]any)["reply"].(map[string]any)
		assert.Equal(t, map[string]any{"id": fmt.Sprintf("btn_%d", i), "title": label}, reply)
	}
}

func TestSendInteractiveWithoutHeaderOmitsField(t *testing.T) {
	var body map[string]any
	srv := newTestServer(t, &body, http.StatusOK)
	defer srv.Close()

	client := NewClient(srv.URL, "test-token", "555000111", zerolog.Nop())

	_, err := client.SendInteractive(context.Background(), "15551234567", "", "pick one", []string{"Yes", "No"})
	require.NoError(t, err)

	inter := body["interactive"].(map[string]any)
	_, hasHeader := inter["header"]
	assert.False(t, hasHeader)
}

func TestSendTextPlatformError(t *testing.T) {
	var body map[string]any
	srv := newTestServer(t, &body, http.StatusUnauthorized)
	defer srv.Close()

	client := NewClient(srv.URL, "test-token", "555000111", zerolog.Nop())

	_, err := client.SendText(context.Background(), "15551234567", "hello")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeDelivery))
}
