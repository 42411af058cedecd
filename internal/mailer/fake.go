package mailer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// LogMailer logs mail instead of sending it. Used in development when no
// SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLog creates a LogMailer.
func NewLog(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message and reports success.
func (m *LogMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.logger.Info("email suppressed (no SMTP configured)",
		slog.String("to", to),
		slog.String("subject", subject),
	)
	return nil
}

// SentMail is one message captured by a Recorder.
type SentMail struct {
	To       string
	Subject  string
	HTMLBody string
}

// Recorder captures sent mail for tests. It can be told to fail to
// exercise the send-failure compensation path.
type Recorder struct {
	mu   sync.Mutex
	sent []SentMail
	fail bool
}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailNext makes every subsequent Send return an error until reset.
func (m *Recorder) FailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// Send records the message, or fails if FailNext was set.
func (m *Recorder) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return errors.New("smtp relay unavailable")
	}

	m.sent = append(m.sent, SentMail{To: to, Subject: subject, HTMLBody: htmlBody})
	return nil
}

// Sent returns a copy of the captured messages.
func (m *Recorder) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}
