package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charleschow/playoff-odds/internal/telemetry"
)

var ErrRateLimited = errors.New("discord rate limited")

// Notifier posts to a Discord webhook. With no URL configured every send
// is a no-op.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Enabled() bool { return n.webhookURL != "" }

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

func (n *Notifier) SendEmbed(ctx context.Context, embed Embed) error {
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return n.send(ctx, webhookPayload{Embeds: []Embed{embed}})
}

func (n *Notifier) send(ctx context.Context, payload webhookPayload) error {
	if !n.Enabled() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		telemetry.Warnf("discord: rate limited")
		return ErrRateLimited
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook: status=%d", resp.StatusCode)
	}
	return nil
}

const (
	ColorGreen = 0x2ECC71
	ColorRed   = 0xE74C3C
)

func (n *Notifier) Clinched(ctx context.Context, leagueName, team, record string, divisionWin float64) error {
	return n.SendEmbed(ctx, Embed{
		Title:       fmt.Sprintf("Clinched: %s", team),
		Description: fmt.Sprintf("%s has locked up a playoff spot in %s.", team, leagueName),
		Color:       ColorGreen,
		Fields: []Field{
			{Name: "Record", Value: record, Inline: true},
			{Name: "Division", Value: fmt.Sprintf("%.1f%%", divisionWin), Inline: true},
		},
	})
}

func (n *Notifier) Eliminated(ctx context.Context, leagueName, team, record string) error {
	return n.SendEmbed(ctx, Embed{
		Title:       fmt.Sprintf("Eliminated: %s", team),
		Description: fmt.Sprintf("%s is out of the %s playoff race.", team, leagueName),
		Color:       ColorRed,
		Fields: []Field{
			{Name: "Record", Value: record, Inline: true},
		},
	})
}
