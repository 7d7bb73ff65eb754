package pitwall

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const mailgunAPIBase = "https://api.mailgun.net/v3"

// MailgunNotifier delivers confirmation emails through the Mailgun
// messages API. Send reports delivery as a boolean and never returns an
// error: email is advisory and must not fail the calling operation.
type MailgunNotifier struct {
	apiKey    string
	domain    string
	from      string
	subject   string
	recipient string
	baseURL   string
	client    *http.Client
	logger    Logger
}

var _ Notifier = (*MailgunNotifier)(nil)

// NewMailgunNotifier returns a notifier for the given Mailgun domain.
// The key is the private API key; it is used for basic auth only and
// never logged.
func NewMailgunNotifier(apiKey, domain, from string) *MailgunNotifier {
	return &MailgunNotifier{
		apiKey:  apiKey,
		domain:  domain,
		from:    from,
		subject: "Email Verification",
		baseURL: mailgunAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  defLogger{},
	}
}

func (m *MailgunNotifier) WithLogger(l Logger) *MailgunNotifier {
	if l != nil {
		m.logger = l
	}
	return m
}

func (m *MailgunNotifier) WithSubject(subject string) *MailgunNotifier {
	if subject != "" {
		m.subject = subject
	}
	return m
}

// WithRecipient routes every message to a fixed address instead of the
// one the caller passes in. Meant for sandbox domains where Mailgun only
// accepts authorized recipients.
func (m *MailgunNotifier) WithRecipient(addr string) *MailgunNotifier {
	m.recipient = addr
	return m
}

// WithBaseURL overrides the API endpoint, used by tests
func (m *MailgunNotifier) WithBaseURL(base string) *MailgunNotifier {
	if base != "" {
		m.baseURL = strings.TrimRight(base, "/")
	}
	return m
}

func (m *MailgunNotifier) WithHTTPClient(client *http.Client) *MailgunNotifier {
	if client != nil {
		m.client = client
	}
	return m
}

func (m *MailgunNotifier) Send(ctx context.Context, body, toAddress string) bool {
	if m.apiKey == "" || m.domain == "" {
		m.logger.Warn("mailgun notifier not configured, skipping send")
		return false
	}

	to := toAddress
	if m.recipient != "" {
		to = m.recipient
	}

	form := url.Values{}
	form.Set("from", m.from)
	form.Set("to", to)
	form.Set("subject", m.subject)
	form.Set("html", body)

	endpoint := m.baseURL + "/" + m.domain + "/messages"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		m.logger.Error("mailgun request build failed: %s", err)
		return false
	}

	req.SetBasicAuth("api", m.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := m.client.Do(req)
	if err != nil {
		m.logger.Error("mailgun send failed: %s", err)
		return false
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		m.logger.Error("mailgun send rejected with status %d: %s", res.StatusCode, string(payload))
		return false
	}

	m.logger.Debug("mailgun message accepted for %s", to)
	return true
}
