package webhook

import (
	"encoding/json"
	"strings"
)

// Outcome classifies what the normalizer made of a sub-event.
type Outcome int

const (
	// Accepted means the sub-event resolved to an actionable text message.
	Accepted Outcome = iota
	// Rejected means no sender id could be resolved; the event is
	// unprocessable input, not an error.
	Rejected
	// Ignored means the envelope was valid but carried no text content,
	// e.g. stickers, reactions or read receipts.
	Ignored
)

// Message is the canonical form every platform-specific sub-event shape
// normalizes to.
type Message struct {
	SenderID string
	Text     string
	Platform string
}

type idRef struct {
	ID string `json:"id"`
}

type messageBody struct {
	From *idRef `json:"from,omitempty"`
	Text string `json:"text,omitempty"`
	Body string `json:"body,omitempty"`
}

// subEvent is the union of the known inbound shapes. Which fields are set
// varies by platform and event type; resolution below is strictly ordered.
type subEvent struct {
	Sender  *idRef       `json:"sender,omitempty"`
	From    *idRef       `json:"from,omitempty"`
	Message *messageBody `json:"message,omitempty"`
	Text    string       `json:"text,omitempty"`
	Body    string       `json:"body,omitempty"`
}

// Normalize maps one raw sub-event to a canonical Message. The platform
// argument is used when the caller knows which stream the event came from;
// pass "" to infer it from whichever sender shape matched.
func Normalize(raw json.RawMessage, platform string) (Message, Outcome) {
	var ev subEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Message{}, Rejected
	}

	senderID, inferred, ok := resolveSender(ev)
	if !ok {
		return Message{}, Rejected
	}
	if platform == "" {
		platform = inferred
	}

	text := strings.TrimSpace(resolveText(ev))
	if text == "" {
		return Message{SenderID: senderID, Platform: platform}, Ignored
	}

	return Message{SenderID: senderID, Text: text, Platform: platform}, Accepted
}

// resolveSender tries the known sender shapes in order: Messenger events
// nest the sender under sender.id; Instagram change events carry it under
// message.from.id or from.id.
func resolveSender(ev subEvent) (id, platform string, ok bool) {
	if ev.Sender != nil && ev.Sender.ID != "" {
		return ev.Sender.ID, PlatformMessenger, true
	}
	if ev.Message != nil && ev.Message.From != nil && ev.Message.From.ID != "" {
		return ev.Message.From.ID, PlatformInstagram, true
	}
	if ev.From != nil && ev.From.ID != "" {
		return ev.From.ID, PlatformInstagram, true
	}
	return "", "", false
}

// resolveText checks message.text, message.body, then the top-level text
// and body fields; first non-empty wins.
func resolveText(ev subEvent) string {
	if ev.Message != nil {
		if ev.Message.Text != "" {
			return ev.Message.Text
		}
		if ev.Message.Body != "" {
			return ev.Message.Body
		}
	}
	if ev.Text != "" {
		return ev.Text
	}
	return ev.Body
}
