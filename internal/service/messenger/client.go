package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/bashoori/leadbot/internal/config"
	"github.com/bashoori/leadbot/internal/model/webhook"
	"github.com/bashoori/leadbot/internal/service/conversation"
)

// Client pushes replies to users through the Graph API messages endpoint.
// Instagram and Messenger accept slightly different envelopes; the caller
// only supplies a platform tag and the client picks the shape.
type Client struct {
	baseURL     string
	accountID   string
	accessToken string
	httpClient  *http.Client
}

// NewClient builds a Graph API client with a bounded request timeout.
// A hanging endpoint is treated as a failed send, never retried.
func NewClient(cfg config.MetaConfig) *Client {
	return &Client{
		baseURL:     cfg.GraphAPIURL,
		accountID:   cfg.AccountID,
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: cfg.SendTimeout},
	}
}

type recipientRef struct {
	ID string `json:"id"`
}

type quickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

type messagePayload struct {
	Text         string       `json:"text"`
	QuickReplies []quickReply `json:"quick_replies,omitempty"`
}

// instagramEnvelope is the Instagram messaging shape.
type instagramEnvelope struct {
	MessagingProduct string         `json:"messaging_product"`
	Recipient        recipientRef   `json:"recipient"`
	Message          messagePayload `json:"message"`
}

// messengerEnvelope is the Messenger Send API shape.
type messengerEnvelope struct {
	Recipient     recipientRef   `json:"recipient"`
	Message       messagePayload `json:"message"`
	MessagingType string         `json:"messaging_type"`
}

// SendText delivers a plain text reply to userID on the given platform.
func (c *Client) SendText(ctx context.Context, userID, platform, text string) error {
	return c.send(ctx, userID, platform, messagePayload{Text: text})
}

// SendMenu delivers a text reply with tappable quick-reply options.
func (c *Client) SendMenu(ctx context.Context, userID, platform, text string, replies []conversation.QuickReply) error {
	msg := messagePayload{Text: text}
	for _, r := range replies {
		msg.QuickReplies = append(msg.QuickReplies, quickReply{
			ContentType: "text",
			Title:       r.Title,
			Payload:     r.Payload,
		})
	}
	return c.send(ctx, userID, platform, msg)
}

func (c *Client) send(ctx context.Context, userID, platform string, msg messagePayload) error {
	var envelope any
	switch platform {
	case webhook.PlatformMessenger:
		envelope = messengerEnvelope{
			Recipient:     recipientRef{ID: userID},
			Message:       msg,
			MessagingType: "RESPONSE",
		}
	default:
		envelope = instagramEnvelope{
			MessagingProduct: webhook.PlatformInstagram,
			Recipient:        recipientRef{ID: userID},
			Message:          msg,
		}
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal send payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/messages?access_token=%s", c.baseURL, c.accountID, url.QueryEscape(c.accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("graph api status %d: %s", resp.StatusCode, snippet)
	}

	log.Printf("[messenger] sent %s reply to user %s in %s", platform, userID, time.Since(start).Round(time.Millisecond))
	return nil
}
