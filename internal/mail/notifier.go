// Package mail sends the athlete status e-mails over plain SMTP.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/dareleague/registration/internal/config"
	"github.com/dareleague/registration/internal/registration"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Notifier struct {
	logger    *zap.Logger
	addr      string
	sender    string
	auth      smtp.Auth
	templates *template.Template

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewNotifier(logger *zap.Logger, cfg config.Mail) (*Notifier, error) {
	t, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("NewNotifier failed: %w", err)
	}

	return &Notifier{
		logger:    logger,
		addr:      fmt.Sprintf("%s:%s", cfg.Hostname, cfg.Port),
		sender:    cfg.Sender,
		auth:      smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Hostname),
		templates: t,
		send:      smtp.SendMail,
	}, nil
}

type letterData struct {
	Name           string
	RegistrationID string
	Category       string
	Note           string
}

func (n *Notifier) RegistrationApproved(ctx context.Context, reg registration.Registration) error {
	return n.deliver(ctx, reg.Email, "¡Tu cupo en DARE LEAGUE está confirmado!", "approved.html", letterData{
		Name:           reg.FullName,
		RegistrationID: reg.RegistrationID,
		Category:       string(reg.Category),
	})
}

func (n *Notifier) RegistrationRejected(ctx context.Context, reg registration.Registration, note string) error {
	return n.deliver(ctx, reg.Email, "Problema con tu pago - DARE LEAGUE", "rejected.html", letterData{
		Name:           reg.FullName,
		RegistrationID: reg.RegistrationID,
		Category:       string(reg.Category),
		Note:           note,
	})
}

func (n *Notifier) deliver(ctx context.Context, to, subject, templateName string, data letterData) error {
	body, err := n.buildLetter(subject, templateName, data)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- n.send(n.addr, n.auth, n.sender, []string{to}, body)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		return fmt.Errorf("deliver failed: %w", ctx.Err())
	}
	if err != nil {
		return fmt.Errorf("deliver failed: %w", err)
	}

	n.logger.Info("notification sent", zap.String("template", templateName))
	return nil
}

func (n *Notifier) buildLetter(subject, templateName string, data letterData) ([]byte, error) {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "Subject: %s\nMIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n", subject)

	if err := n.templates.ExecuteTemplate(buf, templateName, data); err != nil {
		return nil, fmt.Errorf("buildLetter failed: %w", err)
	}
	return buf.Bytes(), nil
}
