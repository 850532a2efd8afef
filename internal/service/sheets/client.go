package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/bashoori/leadbot/internal/config"
	"github.com/bashoori/leadbot/internal/model/conversation"
)

// Client posts completed leads to a spreadsheet webhook (an Apps Script
// endpoint appending a row per lead).
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient builds the lead sink with a bounded request timeout.
func NewClient(cfg config.SheetsConfig) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{Timeout: cfg.SendTimeout},
	}
}

// leadRow is the wire format the sheet webhook expects.
type leadRow struct {
	IGID  string `json:"ig_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SaveLead appends one lead row. Non-2xx responses and transport errors
// both surface as errors so the caller can tell the user the capture
// failed; there is no retry.
func (c *Client) SaveLead(ctx context.Context, lead conversation.Lead) error {
	body, err := json.Marshal(leadRow{IGID: lead.UserID, Name: lead.Name, Email: lead.Email})
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build lead request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheet webhook request: %w", err)
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sheet webhook status %d: %s", resp.StatusCode, snippet)
	}

	log.Printf("[sheets] stored lead for user %s", lead.UserID)
	return nil
}
