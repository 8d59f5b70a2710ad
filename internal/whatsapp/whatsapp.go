package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultURL is the AiSensy campaign API endpoint.
const DefaultURL = "https://backend.aisensy.com/campaign/t1/api/v2"

var ErrEmptyDestination = errors.New("whatsapp: empty destination")

// Config holds the AiSensy credentials. The campaign must be a live API campaign whose
// template takes the reminder parameters in the order built by SendReminder.
type Config struct {
	APIKey   string
	Campaign string
	URL      string
}

// Client sends WhatsApp template messages through AiSensy.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient returns a client. If APIKey or Campaign is empty, SendReminder is a no-op.
func NewClient(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	return &Client{cfg: cfg, client: &http.Client{Timeout: 15 * time.Second}}
}

// Reminder is the content of a day-before appointment reminder.
type Reminder struct {
	Phone        string // E.164
	ClientName   string
	Organization string
	Professional string
	Date         string // dd/mm/yyyy
	Time         string // HH:MM
}

type campaignRequest struct {
	APIKey         string   `json:"apiKey"`
	CampaignName   string   `json:"campaignName"`
	Destination    string   `json:"destination"`
	UserName       string   `json:"userName"`
	TemplateParams []string `json:"templateParams"`
	Source         string   `json:"source,omitempty"`
}

func (c *Client) configured() bool {
	return c.cfg.APIKey != "" && c.cfg.Campaign != ""
}

// SendReminder sends the reminder template to r.Phone.
func (c *Client) SendReminder(ctx context.Context, r Reminder) error {
	if !c.configured() {
		return nil
	}
	to := strings.TrimSpace(r.Phone)
	if to == "" {
		return ErrEmptyDestination
	}
	body, err := json.Marshal(campaignRequest{
		APIKey:         c.cfg.APIKey,
		CampaignName:   c.cfg.Campaign,
		Destination:    to,
		UserName:       r.ClientName,
		TemplateParams: []string{r.ClientName, r.Organization, r.Date, r.Time, r.Professional},
		Source:         "reminder",
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	slurp, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("whatsapp: %s: read body: %w", resp.Status, err)
	}
	return fmt.Errorf("whatsapp: %s: %s", resp.Status, string(slurp))
}
