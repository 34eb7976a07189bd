// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DiscordProvider posts a rich embed directly to a Discord webhook,
// grounded on the teacher's internal/detection.DiscordNotifier. Direct
// webhook delivery is used (rather than the generic multi-service
// provider) so the alert image can be embedded (spec §4.10).
type DiscordProvider struct {
	WebhookURL string
	client     *http.Client
}

func NewDiscordProvider(webhookURL string) *DiscordProvider {
	return &DiscordProvider{WebhookURL: webhookURL, client: &http.Client{Timeout: 10 * time.Second}}
}

func (d *DiscordProvider) Name() string         { return "Discord" }
func (d *DiscordProvider) IsConfigured() bool   { return d.WebhookURL != "" }

type discordEmbed struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Timestamp   string           `json:"timestamp"`
	Image       *discordImage    `json:"image,omitempty"`
	Footer      discordFooter    `json:"footer"`
}

type discordImage struct {
	URL string `json:"url"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

func (d *DiscordProvider) Send(ctx context.Context, msg Message) error {
	if !d.IsConfigured() {
		return fmt.Errorf("discord: not configured")
	}

	embed := discordEmbed{
		Title:       msg.Title,
		Description: msg.Body,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      discordFooter{Text: "ChannelWatch"},
	}
	if msg.ImageURL != "" {
		embed.Image = &discordImage{URL: msg.ImageURL}
	}

	body, err := json.Marshal(discordPayload{Embeds: []discordEmbed{embed}})
	if err != nil {
		return fmt.Errorf("discord: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
