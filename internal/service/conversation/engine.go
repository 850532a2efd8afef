package conversation

import (
	"context"
	"log"

	"github.com/bashoori/leadbot/internal/analysis/contact"
	"github.com/bashoori/leadbot/internal/model/conversation"
	"github.com/bashoori/leadbot/internal/model/webhook"
	"github.com/bashoori/leadbot/internal/service/session"
)

// Engine advances the per-user registration flow: greeting, collect name,
// collect email, hand the lead off. It owns no I/O of its own; replies go
// through the Notifier and completed leads through the LeadSink.
type Engine struct {
	sessions *session.Store
	notifier Notifier
	leads    LeadSink
	users    *userLocks
}

// NewEngine wires the conversation engine to its collaborators.
func NewEngine(sessions *session.Store, notifier Notifier, leads LeadSink) *Engine {
	return &Engine{
		sessions: sessions,
		notifier: notifier,
		leads:    leads,
		users:    newUserLocks(),
	}
}

// HandleMessage runs one normalized inbound message through the state
// machine. Handling is serialized per user id; the session store's own
// lock is never held across an outbound call.
func (e *Engine) HandleMessage(ctx context.Context, msg webhook.Message) error {
	release := e.users.acquire(msg.SenderID)
	defer release()

	sess, ok := e.sessions.Get(msg.SenderID)

	switch {
	case !ok:
		e.sessions.Set(msg.SenderID, conversation.Session{
			State:    conversation.StateAwaitingName,
			Platform: msg.Platform,
		})
		e.send(ctx, msg.SenderID, msg.Platform, replyGreeting)

	case sess.State == conversation.StateAwaitingName:
		// Any non-empty trimmed text is a valid name; taken verbatim.
		sess.Name = msg.Text
		sess.State = conversation.StateAwaitingEmail
		e.sessions.Set(msg.SenderID, sess)
		e.send(ctx, msg.SenderID, sess.Platform, replyAskEmail)

	case sess.State == conversation.StateAwaitingEmail:
		e.captureEmail(ctx, sess, msg.Text)

	default:
		// Unrecognized state; restart the flow rather than loop on the
		// fallback until the TTL clears the session.
		log.Printf("[conversation] user %s in unknown state %q, restarting flow", msg.SenderID, sess.State)
		e.sessions.Set(msg.SenderID, conversation.Session{
			State:    conversation.StateAwaitingName,
			Platform: sess.Platform,
		})
		e.send(ctx, msg.SenderID, sess.Platform, replyFallback)
	}

	return nil
}

// captureEmail finishes the flow: validate, persist the lead, confirm.
// A restart keyword arriving here is deliberately treated as an email
// attempt and rejected like any other invalid address.
func (e *Engine) captureEmail(ctx context.Context, sess conversation.Session, text string) {
	if !contact.IsValidEmail(text) {
		e.sessions.Set(sess.UserID, sess)
		e.send(ctx, sess.UserID, sess.Platform, replyInvalidEmail)
		return
	}

	lead := conversation.Lead{
		UserID: sess.UserID,
		Name:   sess.Name,
		Email:  text,
	}
	err := e.leads.SaveLead(ctx, lead)

	// Terminal either way: on failure the user restarts from scratch
	// instead of the session dangling in a half-captured state.
	e.sessions.Delete(sess.UserID)

	if err != nil {
		log.Printf("[conversation] saving lead for user %s failed: %v", sess.UserID, err)
		e.send(ctx, sess.UserID, sess.Platform, replySinkFailed)
		return
	}

	log.Printf("[conversation] lead captured for user %s", sess.UserID)
	e.send(ctx, sess.UserID, sess.Platform, replyConfirmed)
	if err := e.notifier.SendMenu(ctx, sess.UserID, sess.Platform, menuText, mainMenu); err != nil {
		log.Printf("[conversation] sending menu to user %s failed: %v", sess.UserID, err)
	}
}

// send pushes one text reply; failures are logged and never retried.
func (e *Engine) send(ctx context.Context, userID, platform, text string) {
	if err := e.notifier.SendText(ctx, userID, platform, text); err != nil {
		log.Printf("[conversation] sending reply to user %s failed: %v", userID, err)
	}
}
