// Package notification builds WhatsApp pickup notifications and dispatches
// them fire-and-forget to the external messaging surface. Delivery is never
// awaited and no receipt is modeled.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrMissingContact is returned when a notification is composed for a patient
// without a phone number. Checked before anything reaches the messaging
// surface.
var ErrMissingContact = errors.New("phone number is not available")

// Link is a composed deep link into the external messaging surface.
type Link struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	URL       string `json:"url"`
}

// Composer builds wa.me-style deep links: <base>/<phone>?text=<encoded>.
type Composer struct {
	baseURL        string
	defaultMessage string
}

// NewComposer creates a Composer. baseURL is the messaging deep-link base
// (e.g. "https://wa.me"); defaultMessage is used when a message is empty.
func NewComposer(baseURL, defaultMessage string) *Composer {
	return &Composer{
		baseURL:        strings.TrimRight(baseURL, "/"),
		defaultMessage: defaultMessage,
	}
}

// Compose validates the recipient, applies the default message, and
// percent-encodes the text so reserved characters cannot corrupt the link.
func (c *Composer) Compose(phone, message string) (*Link, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrMissingContact
	}
	if message == "" {
		message = c.defaultMessage
	}

	q := url.Values{}
	q.Set("text", message)

	return &Link{
		Recipient: phone,
		Message:   message,
		URL:       c.baseURL + "/" + url.PathEscape(phone) + "?" + q.Encode(),
	}, nil
}

// Sender hands a composed link to the external messaging surface.
type Sender interface {
	Send(ctx context.Context, link *Link) error
}

// LogSender writes the link to the structured log. The back office opens the
// link on the operator's device; the server side only has to surface it.
type LogSender struct {
	Logger zerolog.Logger
}

func (s *LogSender) Send(_ context.Context, link *Link) error {
	s.Logger.Info().
		Str("recipient", link.Recipient).
		Str("url", link.URL).
		Msg("whatsapp notification dispatched")
	return nil
}

// SendCall records a single call to MockSender.Send.
type SendCall struct {
	Recipient string
	Message   string
	URL       string
}

// MockSender is a test double for Sender.
type MockSender struct {
	mu         sync.Mutex
	calls      []SendCall
	ShouldFail bool
	FailError  string
}

// Send records the call and optionally returns an error.
func (m *MockSender) Send(_ context.Context, link *Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SendCall{Recipient: link.Recipient, Message: link.Message, URL: link.URL})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded calls.
func (m *MockSender) Calls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Record is the stored outcome of one dispatch attempt.
type Record struct {
	ID        string     `json:"id"`
	Recipient string     `json:"recipient"`
	Message   string     `json:"message"`
	URL       string     `json:"url"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Dispatcher composes and sends notifications and keeps an in-memory history
// of dispatch attempts.
type Dispatcher struct {
	composer *Composer
	sender   Sender

	mu      sync.RWMutex
	records map[string]*Record
}

func NewDispatcher(composer *Composer, sender Sender) *Dispatcher {
	return &Dispatcher{
		composer: composer,
		sender:   sender,
		records:  make(map[string]*Record),
	}
}

// Dispatch composes a link for the phone/message pair and hands it to the
// sender. The attempt is recorded either way. Composition failures
// (ErrMissingContact) are returned before any send is attempted and nothing
// is recorded for them.
func (d *Dispatcher) Dispatch(ctx context.Context, phone, message string) (*Record, error) {
	link, err := d.composer.Compose(phone, message)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:        uuid.New().String(),
		Recipient: link.Recipient,
		Message:   link.Message,
		URL:       link.URL,
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	}

	sendErr := d.sender.Send(ctx, link)
	if sendErr != nil {
		rec.Status = "failed"
		rec.Error = sendErr.Error()
	} else {
		rec.Status = "sent"
		sentAt := time.Now().UTC()
		rec.SentAt = &sentAt
	}

	d.mu.Lock()
	d.records[rec.ID] = rec
	d.mu.Unlock()

	if sendErr != nil {
		return rec, fmt.Errorf("send notification: %w", sendErr)
	}
	return rec, nil
}

// ListByRecipient returns recorded dispatches for a recipient, up to limit.
func (d *Dispatcher) ListByRecipient(recipient string, limit int) []*Record {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var result []*Record
	for _, r := range d.records {
		if r.Recipient == recipient {
			result = append(result, r)
			if len(result) >= limit {
				break
			}
		}
	}
	return result
}

// Stats returns counts of recorded dispatches grouped by status.
func (d *Dispatcher) Stats() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := make(map[string]int)
	for _, r := range d.records {
		stats[r.Status]++
	}
	return stats
}
