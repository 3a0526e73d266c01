// Package mail delivers transactional email: password reset links.
package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/log"
	"github.com/tazhibayda/bootcamp-service/internal/queue"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct{ Log *zap.Logger }

func (s LogSender) Send(_ context.Context, m Message) error {
	s.Log.Info("mail",
		log.Email("to_hash", m.To),
		zap.String("subject", m.Subject),
		zap.Int("bytes", len(m.Text)),
	)
	return nil
}

type SMTPSender struct {
	Host, Port     string
	User, Password string
	FromEmail      string
	FromName       string

	// send defaults to smtp.SendMail
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (s *SMTPSender) Send(_ context.Context, m Message) error {
	if s.Host == "" || s.Port == "" {
		return fmt.Errorf("smtp not configured")
	}
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Password, s.Host)
	}
	send := s.send
	if send == nil {
		send = smtp.SendMail
	}
	return send(s.Host+":"+s.Port, auth, s.FromEmail, []string{m.To}, s.compose(m))
}

func (s *SMTPSender) compose(m Message) []byte {
	from := s.FromEmail
	if s.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.FromName, s.FromEmail)
	}
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + m.To + "\r\n")
	b.WriteString("Subject: " + m.Subject + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(m.Text + "\r\n")
	return []byte(b.String())
}

// QueueSender hands messages to the notifier over the events exchange.
type QueueSender struct {
	Pub   queue.Publisher
	ReqID func(ctx context.Context) string
}

func (s QueueSender) Send(ctx context.Context, m Message) error {
	reqID := ""
	if s.ReqID != nil {
		reqID = s.ReqID(ctx)
	}
	return s.Pub.Publish(ctx, queue.KeyMailSend, queue.MailRequested{To: m.To, Subject: m.Subject, Text: m.Text}, reqID)
}

// Deliver returns a queue handler that sends each mail.send message with s.
// Bodies that do not decode are logged and dropped so they are not redelivered.
func Deliver(ctx context.Context, s Sender, l *zap.Logger) func([]byte) error {
	return func(body []byte) error {
		var ev queue.MailRequested
		if err := json.Unmarshal(body, &ev); err != nil || ev.To == "" {
			l.Warn("dropping malformed mail request", zap.Int("bytes", len(body)), zap.Error(err))
			return nil
		}
		return s.Send(ctx, Message{To: ev.To, Subject: ev.Subject, Text: ev.Text})
	}
}
