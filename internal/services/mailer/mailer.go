// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

// Package mailer delivers the flows' emails. Sending is decoupled from the
// request lifecycle: flows enqueue a message and return, a background worker
// delivers it with backoff. A lost email never reverses a committed state
// transition.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edumesh/schoolhub/internal/config"
	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// Message is one email to deliver.
type Message struct {
	ID      string
	To      string
	Subject string
	HTML    string
}

// NewMessage builds a Message with a fresh id.
func NewMessage(to, subject, html string) Message {
	return Message{ID: uuid.NewString(), To: to, Subject: subject, HTML: html}
}

// Enqueuer is what the auth flows depend on. The queue implements it; tests
// substitute a recorder.
type Enqueuer interface {
	Enqueue(msg Message)
}

// Sender performs one delivery attempt.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender logs messages instead of delivering them. Used in development
// when no SMTP host is configured.
type LogSender struct{}

// Send logs the message and discards it.
func (LogSender) Send(_ context.Context, m Message) error {
	slog.Info("email (not sent, no SMTP host configured)",
		"id", m.ID, "to", m.To, "subject", m.Subject)
	return nil
}

// SMTPSender sends mail via SMTP using go-mail.
type SMTPSender struct {
	cfg *config.SMTPConfig
}

// NewSMTPSender validates the SMTP configuration and returns a sender.
func NewSMTPSender(cfg *config.SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &SMTPSender{cfg: cfg}, nil
}

// Send delivers one message.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS for port 465, STARTTLS otherwise
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
