// Package mailer dispatches signing notifications. Dispatch is
// fire-and-forget from the core's perspective: failures are reported to the
// caller and retried only by the background queue, never inline.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
)

// Dispatcher sends signing notifications to recipients.
type Dispatcher interface {
	// SendSigningLink mails one recipient their unique signing link.
	SendSigningLink(ctx context.Context, to, name, link, documentName, sender string) error

	// SendCompleted mails the final signed PDF to every party.
	SendCompleted(ctx context.Context, to []string, documentName string, pdf []byte, sender string) error
}

// SMTPConfig carries the settings for the SMTP dispatcher.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP delivers mail over a plain SMTP connection.
type SMTP struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewSMTP creates an SMTP dispatcher.
func NewSMTP(cfg SMTPConfig, logger *slog.Logger) *SMTP {
	return &SMTP{
		cfg:    cfg,
		logger: logger.With("system", "mailer"),
	}
}

func (s *SMTP) SendSigningLink(ctx context.Context, to, name, link, documentName, sender string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n%s has requested your signature on the document: %s\r\n\r\n"+
			"Please click the link below to review and sign:\r\n%s\r\n\r\n"+
			"This link will expire in 30 days.\r\n\r\nThank you!\r\n",
		name, sender, documentName, link,
	)

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Signature requested: %s\r\n"+
			"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		s.cfg.From, to, documentName, body,
	)

	if err := s.send(ctx, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send signing link: %w", err)
	}

	s.logger.Info("signing link sent", "to", to, "document", documentName)
	return nil
}

func (s *SMTP) SendCompleted(ctx context.Context, to []string, documentName string, pdf []byte, sender string) error {
	msg, err := buildCompletedMessage(s.cfg.From, to, documentName, pdf, sender)
	if err != nil {
		return fmt.Errorf("build completed mail: %w", err)
	}

	if err := s.send(ctx, to, msg); err != nil {
		return fmt.Errorf("send completed mail: %w", err)
	}

	s.logger.Info("completed document sent", "recipients", len(to), "document", documentName)
	return nil
}

func (s *SMTP) send(ctx context.Context, to []string, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return smtp.SendMail(addr, auth, s.cfg.From, to, msg)
}

func buildCompletedMessage(from string, to []string, documentName string, pdf []byte, sender string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: Signed document: %s\r\n", documentName)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", writer.Boundary())

	text, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(text,
		"All parties have signed %s. The final document is attached.\r\n\r\nSent by %s\r\n",
		documentName, sender,
	)

	attachment, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/pdf"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", documentName+"_signed.pdf")},
	})
	if err != nil {
		return nil, err
	}
	encoder := base64.NewEncoder(base64.StdEncoding, attachment)
	if _, err := encoder.Write(pdf); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Console logs notifications instead of delivering them, for environments
// without an SMTP host configured.
type Console struct {
	logger *slog.Logger
}

// NewConsole creates a console dispatcher.
func NewConsole(logger *slog.Logger) *Console {
	return &Console{logger: logger.With("system", "mailer")}
}

func (c *Console) SendSigningLink(_ context.Context, to, name, link, documentName, sender string) error {
	c.logger.Info("signing link (console)",
		"to", to, "name", name, "link", link, "document", documentName, "sender", sender)
	return nil
}

func (c *Console) SendCompleted(_ context.Context, to []string, documentName string, pdf []byte, sender string) error {
	c.logger.Info("completed document (console)",
		"recipients", len(to), "document", documentName, "pdf_bytes", len(pdf), "sender", sender)
	return nil
}
