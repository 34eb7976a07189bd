// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"net/url"
	"strings"
	"time"
)

// ServiceURL is one Apprise-style service endpoint (spec §4.10:
// "accepts a set of service URLs"), grounded on
// original_source/core/notifications/providers/apprise.py's SERVICE_MAP
// (scheme prefix -> delivery mechanism). Go has no Apprise binding in
// the example pack, so each scheme is handled directly: webhook/Slack/
// Telegram/Gotify/Matrix as a bulk JSON POST, mailto as SMTP.
type ServiceURL struct {
	Scheme string // webhook, slack, tgram, gotify, matrix, mailto
	Raw    string // the full URL/endpoint as configured
}

// MultiServiceProvider fans a message out to a set of non-Discord
// Apprise-style services (spec §4.10). Discord is handled separately by
// DiscordProvider so the alert image can be embedded.
type MultiServiceProvider struct {
	Services []ServiceURL
	EmailTo  string
	client   *http.Client
}

func NewMultiServiceProvider(services []ServiceURL, emailTo string) *MultiServiceProvider {
	return &MultiServiceProvider{
		Services: services,
		EmailTo:  emailTo,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *MultiServiceProvider) Name() string       { return "Apprise" }
func (m *MultiServiceProvider) IsConfigured() bool { return len(m.Services) > 0 }

// Send delivers msg to every configured service, isolating per-service
// failures and returning the first error encountered (if any) while
// still attempting the rest — matching the Notification Manager's own
// isolation policy one layer down (spec §4.10).
func (m *MultiServiceProvider) Send(ctx context.Context, msg Message) error {
	if !m.IsConfigured() {
		return fmt.Errorf("apprise: not configured")
	}

	htmlBody := strings.ReplaceAll(msg.Body, "\n", "<br />")

	var firstErr error
	for _, svc := range m.Services {
		var err error
		switch svc.Scheme {
		case "mailto":
			err = m.sendEmail(svc.Raw, msg.Title, htmlBody)
		default:
			err = m.sendBulkNotify(ctx, svc, msg.Title, htmlBody)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// bulkPayload is the generic JSON body posted to webhook/Slack/
// Telegram/Gotify/Matrix-style endpoints.
type bulkPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	From  string `json:"from,omitempty"`
}

func (m *MultiServiceProvider) sendBulkNotify(ctx context.Context, svc ServiceURL, title, htmlBody string) error {
	body, err := json.Marshal(bulkPayload{Title: title, Body: htmlBody, From: "ChannelWatch"})
	if err != nil {
		return fmt.Errorf("apprise: marshal payload for %s: %w", svc.Scheme, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.Raw, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("apprise: build request for %s: %w", svc.Scheme, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("apprise: %s request: %w", svc.Scheme, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("apprise: %s returned status %d", svc.Scheme, resp.StatusCode)
	}
	return nil
}

// sendEmail delivers via SMTP using the host parsed from the mailto URL
// (user:pass@host:port), routing `to=` from EmailTo (spec §4.10: "Email
// appends from=ChannelWatch and routes to= from a separate config
// field"). No third-party SMTP client exists in the example pack, so
// this is the one place this package falls back to the standard
// library (recorded in DESIGN.md).
func (m *MultiServiceProvider) sendEmail(mailtoURL, subject, htmlBody string) error {
	if m.EmailTo == "" {
		return fmt.Errorf("apprise: mailto configured but no email_to set")
	}
	u, err := url.Parse(mailtoURL)
	if err != nil {
		return fmt.Errorf("apprise: parse mailto url: %w", err)
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "587"
	}
	user := u.User.Username()
	pass, _ := u.User.Password()

	from := "ChannelWatch"
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html\r\n\r\n%s",
		from, m.EmailTo, subject, htmlBody)

	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return smtp.SendMail(host+":"+port, auth, from, []string{m.EmailTo}, []byte(msg))
}
