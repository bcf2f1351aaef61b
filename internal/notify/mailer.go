package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/wneessen/go-mail"
)

// MailerConfig holds SMTP settings. To is the fixed operator address.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// SMTPMailer emails contact notifications to the operator. The submitter's
// address goes into Reply-To so the operator can answer directly.
type SMTPMailer struct {
	cfg MailerConfig
}

func NewSMTPMailer(cfg MailerConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail host is required")
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("mail from and to addresses are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Username == "" {
		cfg.Username = cfg.From
	}
	return &SMTPMailer{cfg: cfg}, nil
}

// Notify builds the message and sends it over a fresh SMTP connection.
func (m *SMTPMailer) Notify(ctx context.Context, msg Message) error {
	mm, err := m.Build(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	return nil
}

// Build renders the notification into a mail message.
func (m *SMTPMailer) Build(msg Message) (*mail.Msg, error) {
	html, err := RenderHTML(msg)
	if err != nil {
		return nil, err
	}

	mm := mail.NewMsg()
	if err := mm.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := mm.To(m.cfg.To); err != nil {
		return nil, fmt.Errorf("set to: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := mm.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("set reply-to: %w", err)
		}
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextHTML, html)
	mm.AddAlternativeString(mail.TypeTextPlain, RenderText(msg))
	return mm, nil
}

var htmlTemplate = template.Must(template.New("contact").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px;">
  <h2 style="color: #333; border-bottom: 2px solid #000; padding-bottom: 10px;">New Contact Form Submission</h2>
  <div style="margin: 20px 0;">
    <h3 style="color: #333; margin-bottom: 5px;">Contact Details:</h3>
    <p style="margin: 5px 0;"><strong>Name:</strong> {{.SenderName}}</p>
    <p style="margin: 5px 0;"><strong>Email:</strong> <a href="mailto:{{.SenderEmail}}" style="color: #0066cc;">{{.SenderEmail}}</a></p>
  </div>
  <div style="margin: 20px 0;">
    <h3 style="color: #333; margin-bottom: 5px;">Message:</h3>
    <div style="background-color: #f5f5f5; padding: 15px; border-left: 4px solid #000; border-radius: 4px;">
      <p style="line-height: 1.6; margin: 0;">{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
    </div>
  </div>
  <div style="margin-top: 30px; padding-top: 15px; border-top: 1px solid #ddd; color: #666; font-size: 12px;">
    <p>This email was sent from your portfolio contact form by <strong>{{.SenderName}}</strong> ({{.SenderEmail}}).</p>
    <p><strong>Reply directly to this email to respond to {{.SenderName}}.</strong></p>
  </div>
</div>
`))

// RenderHTML renders the HTML body. Submitter input is escaped.
func RenderHTML(msg Message) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Message
		Lines []string
	}{
		Message: msg,
		Lines:   strings.Split(msg.Body, "\n"),
	}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render contact email: %w", err)
	}
	return buf.String(), nil
}

// RenderText renders the plain-text alternative body.
func RenderText(msg Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New contact form submission\n\n")
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\n\n", msg.SenderName, msg.SenderEmail)
	b.WriteString(msg.Body)
	b.WriteString("\n")
	return b.String()
}
