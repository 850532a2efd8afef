package conversation

import "time"

// State marks where a user is in the registration flow. The absence of a
// session is itself a state: the next message starts the flow from scratch.
type State string

const (
	StateAwaitingName  State = "awaiting_name"
	StateAwaitingEmail State = "awaiting_email"
)

// Session captures the transient per-user registration progress.
type Session struct {
	UserID      string    `json:"userId"`
	State       State     `json:"state"`
	Name        string    `json:"name,omitempty"`
	Platform    string    `json:"platform"`
	LastTouched time.Time `json:"lastTouched"`
}
