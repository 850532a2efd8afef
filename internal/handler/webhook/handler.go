package webhook

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	webhookModel "github.com/bashoori/leadbot/internal/model/webhook"
	"github.com/bashoori/leadbot/internal/service/conversation"
	"github.com/bashoori/leadbot/pkg/utils"
)

// Result classifies the handling of one sub-event within a delivery.
type Result int

const (
	ResultAccepted Result = iota
	ResultRejected
	ResultIgnored
	ResultFaulted
)

// Summary aggregates sub-event results for one delivery.
type Summary struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Ignored  int `json:"ignored"`
	Faulted  int `json:"faulted"`
}

func (s *Summary) count(r Result) {
	switch r {
	case ResultAccepted:
		s.Accepted++
	case ResultRejected:
		s.Rejected++
	case ResultIgnored:
		s.Ignored++
	case ResultFaulted:
		s.Faulted++
	}
}

// Handler serves the Meta webhook: GET for subscription verification,
// POST for message deliveries.
type Handler struct {
	verifyToken string
	engine      *conversation.Engine
}

// New creates the webhook handler.
func New(verifyToken string, engine *conversation.Engine) *Handler {
	return &Handler{verifyToken: verifyToken, engine: engine}
}

// RegisterRoutes mounts the webhook endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/webhook", h.handleVerify)
	r.Post("/webhook", h.handleDelivery)
}

// handleVerify echoes the challenge when the verification token matches.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.verifyToken {
		log.Printf("[webhook] subscription verified")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(q.Get("hub.challenge")))
		return
	}

	log.Printf("[webhook] verification failed")
	http.Error(w, "Verification failed", http.StatusForbidden)
}

// handleDelivery unbatches one webhook delivery and runs every sub-event
// through the normalizer and the conversation engine. The delivery is
// acknowledged with 200 no matter what happened to individual sub-events;
// a non-2xx here would trigger the platform's redelivery storm.
func (h *Handler) handleDelivery(w http.ResponseWriter, r *http.Request) {
	deliveryID := uuid.NewString()

	var delivery webhookModel.Delivery
	if err := json.NewDecoder(r.Body).Decode(&delivery); err != nil {
		log.Printf("[webhook] delivery %s: malformed payload: %v", deliveryID, err)
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	var summary Summary
	for _, entry := range delivery.Entry {
		for _, raw := range entry.Messaging {
			summary.count(h.processSubEvent(r.Context(), deliveryID, raw, webhookModel.PlatformMessenger))
		}
		for _, change := range entry.Changes {
			summary.count(h.processSubEvent(r.Context(), deliveryID, change.Value, webhookModel.PlatformInstagram))
		}
	}

	if summary.Rejected+summary.Faulted > 0 {
		log.Printf("[webhook] delivery %s: %d accepted, %d rejected, %d ignored, %d faulted",
			deliveryID, summary.Accepted, summary.Rejected, summary.Ignored, summary.Faulted)
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"status": "ok", "results": summary})
}

// processSubEvent normalizes and handles one sub-event. A panic while
// handling is contained here so the rest of the delivery still processes
// and the delivery is still acknowledged.
func (h *Handler) processSubEvent(ctx context.Context, deliveryID string, raw json.RawMessage, platform string) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[webhook] delivery %s: sub-event panicked: %v", deliveryID, rec)
			result = ResultFaulted
		}
	}()

	msg, outcome := webhookModel.Normalize(raw, platform)
	switch outcome {
	case webhookModel.Rejected:
		log.Printf("[webhook] delivery %s: sub-event without resolvable sender, skipping", deliveryID)
		return ResultRejected
	case webhookModel.Ignored:
		return ResultIgnored
	}

	if err := h.engine.HandleMessage(ctx, msg); err != nil {
		log.Printf("[webhook] delivery %s: handling message from %s failed: %v", deliveryID, msg.SenderID, err)
		return ResultFaulted
	}
	return ResultAccepted
}
