package conversation

import (
	"context"

	"github.com/bashoori/leadbot/internal/model/conversation"
)

// QuickReply is one tappable option attached to an outbound message.
type QuickReply struct {
	Title   string
	Payload string
}

// Notifier delivers replies back to the user on their messaging platform.
type Notifier interface {
	SendText(ctx context.Context, userID, platform, text string) error
	SendMenu(ctx context.Context, userID, platform, text string, replies []QuickReply) error
}

// LeadSink persists a completed lead.
type LeadSink interface {
	SaveLead(ctx context.Context, lead conversation.Lead) error
}
