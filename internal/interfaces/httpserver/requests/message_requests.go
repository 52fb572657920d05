package requests

// SendMessageRequest initiates an outbound send through the management API.
// Type selects the payload: "text" uses Body, "image"/"video" use Link with
// an optional Caption.
type SendMessageRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Type    string `json:"type" binding:"required,oneof=text image video"`
	Body    string `json:"body"`
	Link    string `json:"link"`
	Caption string `json:"caption"`
}

// WebhookPayload is the platform's delivery envelope. Only the fields the
// pipeline reads are modeled.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one account-level entry in a delivery.
type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange is one change notification inside an entry.
type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

// WebhookValue carries the messages, contacts, and statuses of a change.
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Contacts         []WebhookContact `json:"contacts"`
	Messages         []WebhookMessage `json:"messages"`
	Statuses         []WebhookStatus  `json:"statuses"`
}

// WebhookContact resolves a sender id to a profile name.
type WebhookContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// WebhookMessage is one inbound user message.
type WebhookMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text"`
	Interactive *struct {
		Type        string `json:"type"`
		ButtonReply *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"button_reply"`
	} `json:"interactive"`
}

// WebhookStatus is a delivery status update; acknowledged and ignored.
type WebhookStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
}

// TextContent returns the user-visible text of the message: the text body
// for text messages, the tapped button's title for interactive replies.
func (m *WebhookMessage) TextContent() string {
	if m.Text != nil {
		return m.Text.Body
	}
	if m.Interactive != nil && m.Interactive.ButtonReply != nil {
		return m.Interactive.ButtonReply.Title
	}
	return ""
}
