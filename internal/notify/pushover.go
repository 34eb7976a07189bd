// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

const pushoverAPIURL = "https://api.pushover.net/1/messages.json"

// PushoverProvider delivers notifications via the Pushover API (spec
// §4.10), grounded on
// original_source/core/notifications/providers/pushover.py.
type PushoverProvider struct {
	UserKey  string
	APIToken string
	client   *http.Client
}

func NewPushoverProvider(userKey, apiToken string) *PushoverProvider {
	return &PushoverProvider{
		UserKey:  userKey,
		APIToken: apiToken,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *PushoverProvider) Name() string { return "Pushover" }

func (p *PushoverProvider) IsConfigured() bool {
	return p.UserKey != "" && p.APIToken != ""
}

func (p *PushoverProvider) Send(ctx context.Context, msg Message) error {
	if !p.IsConfigured() {
		return fmt.Errorf("pushover: not configured")
	}

	var attachment []byte
	if msg.ImageURL != "" {
		attachment = p.downloadImage(ctx, msg.ImageURL)
	}

	var body bytes.Buffer
	var contentType string
	if attachment != nil {
		w := multipart.NewWriter(&body)
		_ = w.WriteField("token", p.APIToken)
		_ = w.WriteField("user", p.UserKey)
		_ = w.WriteField("title", msg.Title)
		_ = w.WriteField("message", msg.Body)
		if msg.Priority != 0 {
			_ = w.WriteField("priority", fmt.Sprintf("%d", msg.Priority))
		}
		part, err := w.CreateFormFile("attachment", "image.jpg")
		if err == nil {
			_, _ = part.Write(attachment)
		}
		_ = w.Close()
		contentType = w.FormDataContentType()
	} else {
		form := url.Values{
			"token":   {p.APIToken},
			"user":    {p.UserKey},
			"title":   {msg.Title},
			"message": {msg.Body},
		}
		if msg.Priority != 0 {
			form.Set("priority", fmt.Sprintf("%d", msg.Priority))
		}
		body.WriteString(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pushoverAPIURL, &body)
	if err != nil {
		return fmt.Errorf("pushover: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pushover: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("pushover: status %d: %s", resp.StatusCode, b)
	}
	return nil
}

// downloadImage fetches msg's image for attachment, with a 5s budget
// (spec §4.10). Failure here is non-fatal: Send proceeds without the
// attachment.
func (p *PushoverProvider) downloadImage(ctx context.Context, imageURL string) []byte {
	dlCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(dlCtx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil
	}
	return data
}
