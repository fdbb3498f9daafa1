// Package email envía las alertas críticas y el resumen diario por SMTP (gomail).
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/almoxarifado-api/internal/application/alerts"
	"github.com/jhoicas/almoxarifado-api/internal/domain/alert"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/pkg/config"
)

var _ alerts.Notifier = (*Mailer)(nil)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Dialer abstrae gomail.Dialer (tests usan un fake).
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer implementa alerts.Notifier.
type Mailer struct {
	dialer Dialer
	from   string
}

// NewMailer construye el mailer a partir de la configuración SMTP.
// Sin SMTP_HOST los mensajes solo se registran en el log.
func NewMailer(cfg config.MailConfig, log zerolog.Logger) *Mailer {
	if cfg.Host == "" {
		return NewMailerWithDialer(logDialer{log: log}, cfg.From)
	}
	return NewMailerWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From)
}

type logDialer struct {
	log zerolog.Logger
}

func (d logDialer) DialAndSend(msgs ...*gomail.Message) error {
	for _, m := range msgs {
		d.log.Info().
			Strs("to", m.GetHeader("To")).
			Strs("subject", m.GetHeader("Subject")).
			Msg("SMTP no configurado, email no enviado")
	}
	return nil
}

// NewMailerWithDialer permite inyectar el transporte.
func NewMailerWithDialer(d Dialer, from string) *Mailer {
	return &Mailer{dialer: d, from: from}
}

func typeLabel(alertType string) string {
	switch alertType {
	case entity.AlertTypeMinStock:
		return "Estoque mínimo"
	case entity.AlertTypeUnusualConsumption:
		return "Consumo atípico"
	default:
		return alertType
	}
}

type criticalView struct {
	CompanyName string
	TypeLabel   string
	IsUnusual   bool
	Impact      string
	Event       alert.Event
}

// RenderCriticalAlert devuelve asunto y cuerpo HTML de una alerta crítica.
func RenderCriticalAlert(company *entity.Company, ev alert.Event) (subject, body string, err error) {
	view := criticalView{
		TypeLabel: typeLabel(ev.Type),
		IsUnusual: ev.Type == entity.AlertTypeUnusualConsumption,
		Impact:    ev.Metrics.FinancialImpact.StringFixed(2),
		Event:     ev,
	}
	if company != nil {
		view.CompanyName = company.Name
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "critical_alert.html", view); err != nil {
		return "", "", fmt.Errorf("render critical alert: %w", err)
	}
	subject = fmt.Sprintf("[CRÍTICO] %s: %s %s", view.TypeLabel, ev.ProductCode, ev.ProductName)
	return subject, buf.String(), nil
}

type digestItemView struct {
	TypeLabel   string
	ProductName string
	Suggestion  string
}

type digestView struct {
	CompanyName string
	Date        string
	Items       []digestItemView
	AtRisk      []entity.AtRiskProduct
}

// RenderDigest devuelve asunto y cuerpo HTML del resumen diario.
func RenderDigest(d alerts.Digest) (subject, body string, err error) {
	view := digestView{Date: d.Date, AtRisk: d.AtRisk}
	if d.Company != nil {
		view.CompanyName = d.Company.Name
	}
	for _, it := range d.Items {
		view.Items = append(view.Items, digestItemView{
			TypeLabel:   typeLabel(it.AlertType),
			ProductName: it.ProductName,
			Suggestion:  it.Suggestion,
		})
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "daily_digest.html", view); err != nil {
		return "", "", fmt.Errorf("render digest: %w", err)
	}
	subject = fmt.Sprintf("Resumo diário do almoxarifado %s (%d advertências, %d em estoque mínimo)",
		d.Date, len(d.Items), len(d.AtRisk))
	return subject, buf.String(), nil
}

// SendCriticalAlert envía una alerta crítica a todos los destinatarios en un único mensaje.
func (m *Mailer) SendCriticalAlert(ctx context.Context, recipients []string, company *entity.Company, ev alert.Event) error {
	subject, body, err := RenderCriticalAlert(company, ev)
	if err != nil {
		return err
	}
	return m.send(ctx, recipients, subject, body)
}

// SendDigest envía el resumen diario.
func (m *Mailer) SendDigest(ctx context.Context, recipients []string, d alerts.Digest) error {
	subject, body, err := RenderDigest(d)
	if err != nil {
		return err
	}
	return m.send(ctx, recipients, subject, body)
}

func (m *Mailer) send(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("email: sin destinatarios")
	}
	// gomail no acepta contexto: al menos no abrir la conexión si ya se canceló.
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
