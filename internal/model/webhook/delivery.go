package webhook

import "encoding/json"

// Platform tags for routing outbound replies.
const (
	PlatformInstagram = "instagram"
	PlatformMessenger = "messenger"
)

// Delivery is one inbound webhook POST. A single delivery may batch
// multiple entries, each carrying Messenger-style messaging events and
// Instagram-style change events side by side.
type Delivery struct {
	Object string  `json:"object,omitempty"`
	Entry  []Entry `json:"entry"`
}

// Entry groups the sub-events of one account within a delivery. Both
// arrays may be present, absent or empty in the same entry.
type Entry struct {
	ID        string            `json:"id,omitempty"`
	Time      int64             `json:"time,omitempty"`
	Messaging []json.RawMessage `json:"messaging,omitempty"`
	Changes   []Change          `json:"changes,omitempty"`
}

// Change wraps an Instagram change event; the message payload lives under
// Value.
type Change struct {
	Field string          `json:"field,omitempty"`
	Value json.RawMessage `json:"value"`
}
