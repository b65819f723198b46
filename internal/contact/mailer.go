package contact

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	texttemplate "text/template"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/devfolio/portfolio-api/config"
)

// Message is a rendered contact submission ready for delivery.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// SMTPMailer delivers messages through an SMTP relay with STARTTLS when
// the server offers it.
type SMTPMailer struct {
	host     string
	port     int
	user     string
	password string
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{host: cfg.Host, port: cfg.Port, user: cfg.User, password: cfg.Password}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm, err := buildMsg(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
	}
	if m.user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.user),
			mail.WithPassword(m.password),
		)
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat("Portfolio Contact Form", msg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	if err := m.ReplyTo(msg.ReplyTo); err != nil {
		return nil, fmt.Errorf("reply-to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}

var htmlBody = template.Must(template.New("html").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 8px;">
  <h2 style="color: #333; border-bottom: 2px solid #4CAF50; padding-bottom: 10px;">New Contact Form Submission</h2>
  <div style="margin: 20px 0;">
    <p><strong>From:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
    {{if .Subject}}<p><strong>Subject:</strong> {{.Subject}}</p>{{end}}
  </div>
  <div style="margin: 20px 0; padding: 15px; background-color: #f9f9f9; border-left: 4px solid #4CAF50;">
    <h3 style="margin-top: 0;">Message:</h3>
    <p style="white-space: pre-wrap; line-height: 1.6;">{{.Message}}</p>
  </div>
  <p style="color: #888; font-size: 12px;">reCAPTCHA score: {{printf "%.2f" .Score}}<br>Time: {{.Time}}</p>
</div>
`))

var textBody = texttemplate.Must(texttemplate.New("text").Parse(`New Contact Form Submission

From: {{.Name}}
Email: {{.Email}}
{{if .Subject}}Subject: {{.Subject}}
{{end}}
Message:
{{.Message}}

---
reCAPTCHA score: {{printf "%.2f" .Score}}
Time: {{.Time}}
`))

type bodyData struct {
	Submission
	Score float64
	Time  string
}

func render(s Submission, score float64, at time.Time) (text, html string, err error) {
	data := bodyData{Submission: s, Score: score, Time: at.Format(time.RFC1123)}

	var tb, hb bytes.Buffer
	if err := textBody.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("render text body: %w", err)
	}
	if err := htmlBody.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("render html body: %w", err)
	}
	return tb.String(), hb.String(), nil
}
