package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"

	model "github.com/bashoori/leadbot/internal/model/conversation"
	"github.com/bashoori/leadbot/internal/model/webhook"
	"github.com/bashoori/leadbot/internal/service/session"
)

type sentMessage struct {
	UserID   string
	Platform string
	Text     string
	Menu     bool
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) SendText(_ context.Context, userID, platform, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{UserID: userID, Platform: platform, Text: text})
	return f.err
}

func (f *fakeNotifier) SendMenu(_ context.Context, userID, platform, text string, _ []QuickReply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{UserID: userID, Platform: platform, Text: text, Menu: true})
	return f.err
}

func (f *fakeNotifier) sentTo(userID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out
}

type fakeSink struct {
	mu    sync.Mutex
	leads []model.Lead
	err   error
}

func (f *fakeSink) SaveLead(_ context.Context, lead model.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads = append(f.leads, lead)
	return f.err
}

func newTestEngine() (*Engine, *session.Store, *fakeNotifier, *fakeSink) {
	store := session.NewStore()
	notifier := &fakeNotifier{}
	sink := &fakeSink{}
	return NewEngine(store, notifier, sink), store, notifier, sink
}

func message(userID, text string) webhook.Message {
	return webhook.Message{SenderID: userID, Text: text, Platform: webhook.PlatformInstagram}
}

func TestNewUserGetsGreetingAndAwaitsName(t *testing.T) {
	engine, store, notifier, _ := newTestEngine()
	ctx := context.Background()

	if err := engine.HandleMessage(ctx, message("u1", "سلام")); err != nil {
		t.Fatalf("HandleMessage err: %v", err)
	}

	sess, ok := store.Get("u1")
	if !ok {
		t.Fatal("expected a session after first contact")
	}
	if sess.State != model.StateAwaitingName {
		t.Fatalf("unexpected state: %s", sess.State)
	}
	if sess.Platform != webhook.PlatformInstagram {
		t.Fatalf("session must record the inbound platform, got %s", sess.Platform)
	}
	if sent := notifier.sentTo("u1"); len(sent) != 1 {
		t.Fatalf("expected exactly one send for a new user, got %d", len(sent))
	}
}

func TestNameIsStoredVerbatim(t *testing.T) {
	engine, store, notifier, _ := newTestEngine()
	ctx := context.Background()

	engine.HandleMessage(ctx, message("u1", "شروع"))
	notifier.sent = nil
	engine.HandleMessage(ctx, message("u1", "Alice O'Brien  جان"))

	sess, ok := store.Get("u1")
	if !ok {
		t.Fatal("expected session to survive the name step")
	}
	if sess.State != model.StateAwaitingEmail {
		t.Fatalf("unexpected state: %s", sess.State)
	}
	if sess.Name != "Alice O'Brien  جان" {
		t.Fatalf("name must be stored verbatim, got %q", sess.Name)
	}
	if len(notifier.sentTo("u1")) != 1 {
		t.Fatal("expected exactly one send for the name step")
	}
}

func TestInvalidEmailRepromptsInPlace(t *testing.T) {
	engine, store, notifier, sink := newTestEngine()
	ctx := context.Background()

	engine.HandleMessage(ctx, message("u1", "سلام"))
	engine.HandleMessage(ctx, message("u1", "Alice"))
	notifier.sent = nil
	engine.HandleMessage(ctx, message("u1", "not-an-email"))

	sess, ok := store.Get("u1")
	if !ok {
		t.Fatal("session must survive an invalid email")
	}
	if sess.State != model.StateAwaitingEmail || sess.Name != "Alice" {
		t.Fatalf("state/name changed on invalid email: %+v", sess)
	}
	if len(sink.leads) != 0 {
		t.Fatal("lead sink must not be called for an invalid email")
	}
	sent := notifier.sentTo("u1")
	if len(sent) != 1 {
		t.Fatalf("expected exactly one retry prompt, got %d sends", len(sent))
	}
	if sent[0].Text != replyInvalidEmail {
		t.Fatalf("unexpected retry text: %q", sent[0].Text)
	}
}

func TestRestartKeywordInEmailStateIsAnEmailAttempt(t *testing.T) {
	engine, store, _, sink := newTestEngine()
	ctx := context.Background()

	engine.HandleMessage(ctx, message("u1", "سلام"))
	engine.HandleMessage(ctx, message("u1", "Alice"))
	engine.HandleMessage(ctx, message("u1", "شروع"))

	sess, ok := store.Get("u1")
	if !ok || sess.State != model.StateAwaitingEmail || sess.Name != "Alice" {
		t.Fatalf("restart keyword must be treated as a bad email attempt, got %+v (ok=%v)", sess, ok)
	}
	if len(sink.leads) != 0 {
		t.Fatal("no lead should be captured")
	}
}

func TestValidEmailCapturesLead(t *testing.T) {
	engine, store, notifier, sink := newTestEngine()
	ctx := context.Background()

	engine.HandleMessage(ctx, message("u1", "شروع"))
	engine.HandleMessage(ctx, message("u1", "Alice"))
	notifier.sent = nil
	engine.HandleMessage(ctx, message("u1", "alice@example.com"))

	if _, ok := store.Get("u1"); ok {
		t.Fatal("session must be removed after a captured lead")
	}
	if len(sink.leads) != 1 {
		t.Fatalf("expected exactly one lead, got %d", len(sink.leads))
	}
	lead := sink.leads[0]
	if lead.UserID != "u1" || lead.Name != "Alice" || lead.Email != "alice@example.com" {
		t.Fatalf("unexpected lead: %+v", lead)
	}

	sent := notifier.sentTo("u1")
	if len(sent) < 1 || sent[0].Text != replyConfirmed {
		t.Fatalf("expected a confirmation send first, got %+v", sent)
	}
	if sent[len(sent)-1].Menu != true {
		t.Fatalf("expected the quick-reply menu after confirmation, got %+v", sent)
	}
}

func TestLeadSinkFailureClearsSessionAndTellsUser(t *testing.T) {
	engine, store, notifier, sink := newTestEngine()
	sink.err = errors.New("sheet webhook returned 500")
	ctx := context.Background()

	engine.HandleMessage(ctx, message("u1", "سلام"))
	engine.HandleMessage(ctx, message("u1", "Alice"))
	notifier.sent = nil
	engine.HandleMessage(ctx, message("u1", "alice@example.com"))

	if _, ok := store.Get("u1"); ok {
		t.Fatal("session must be cleared even when the sink fails")
	}
	sent := notifier.sentTo("u1")
	if len(sent) != 1 || sent[0].Text != replySinkFailed {
		t.Fatalf("expected exactly the failure text, got %+v", sent)
	}
}

func TestFullRoundTrip(t *testing.T) {
	engine, store, _, sink := newTestEngine()
	ctx := context.Background()

	for _, text := range []string{"شروع", "Alice", "alice@example.com"} {
		if err := engine.HandleMessage(ctx, message("u1", text)); err != nil {
			t.Fatalf("HandleMessage(%q) err: %v", text, err)
		}
	}

	if store.Len() != 0 {
		t.Fatalf("expected no residual sessions, got %d", store.Len())
	}
	if len(sink.leads) != 1 {
		t.Fatalf("expected exactly one lead, got %d", len(sink.leads))
	}
	lead := sink.leads[0]
	if lead.UserID != "u1" || lead.Name != "Alice" || lead.Email != "alice@example.com" {
		t.Fatalf("unexpected lead: %+v", lead)
	}
}

func TestSendFailureDoesNotAbortTransition(t *testing.T) {
	engine, store, notifier, _ := newTestEngine()
	notifier.err = errors.New("graph api unreachable")
	ctx := context.Background()

	if err := engine.HandleMessage(ctx, message("u1", "سلام")); err != nil {
		t.Fatalf("send failure must not surface as a handling error: %v", err)
	}
	if sess, ok := store.Get("u1"); !ok || sess.State != model.StateAwaitingName {
		t.Fatalf("state must advance despite the failed send, got %+v (ok=%v)", sess, ok)
	}
}

func TestConcurrentUsersDoNotBleed(t *testing.T) {
	engine, store, _, sink := newTestEngine()
	ctx := context.Background()

	users := []struct{ id, name, email string }{
		{"alpha", "Alice", "alice@example.com"},
		{"beta", "Bob", "bob@example.com"},
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(id, name, email string) {
			defer wg.Done()
			engine.HandleMessage(ctx, message(id, "سلام"))
			engine.HandleMessage(ctx, message(id, name))
			engine.HandleMessage(ctx, message(id, email))
		}(u.id, u.name, u.email)
	}
	wg.Wait()

	if store.Len() != 0 {
		t.Fatalf("expected both flows complete, %d sessions remain", store.Len())
	}
	if len(sink.leads) != 2 {
		t.Fatalf("expected two leads, got %d", len(sink.leads))
	}
	for _, lead := range sink.leads {
		switch lead.UserID {
		case "alpha":
			if lead.Name != "Alice" || lead.Email != "alice@example.com" {
				t.Fatalf("alpha lead corrupted: %+v", lead)
			}
		case "beta":
			if lead.Name != "Bob" || lead.Email != "bob@example.com" {
				t.Fatalf("beta lead corrupted: %+v", lead)
			}
		default:
			t.Fatalf("unexpected lead user: %s", lead.UserID)
		}
	}
}

func TestRepliesRouteToTheSessionPlatform(t *testing.T) {
	engine, _, notifier, _ := newTestEngine()
	ctx := context.Background()

	first := webhook.Message{SenderID: "u1", Text: "hi", Platform: webhook.PlatformMessenger}
	engine.HandleMessage(ctx, first)
	// Later replies follow the platform recorded on the session.
	engine.HandleMessage(ctx, webhook.Message{SenderID: "u1", Text: "Bob", Platform: webhook.PlatformMessenger})

	for _, m := range notifier.sentTo("u1") {
		if m.Platform != webhook.PlatformMessenger {
			t.Fatalf("reply routed to wrong platform: %+v", m)
		}
	}
}
