package mailer

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"text/template"

	"github.com/nimbusworks/opsdesk/internal/config"
	mail "github.com/wneessen/go-mail"
)

// Message is a template-parameterized notification. PlainText is the
// fallback body used when the template is unknown or fails to render.
type Message struct {
	To        string
	Subject   string
	Template  string
	Params    map[string]string
	PlainText string
}

// Mailer is the external mail transport collaborator.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Plain-text bodies per template. Deliberately small; formal documents go
// out as PDFs, mail is advisory only.
var bodyTemplates = template.Must(template.New("mail").Parse(`
{{- define "project_assigned" -}}
Hello {{.engineerName}},

You have been assigned to project {{.projectNumber}} ({{.projectName}}).
Site: {{.siteAddress}}

Please review the project details in OpsDesk.
{{- end -}}

{{- define "estimation_checked" -}}
Hello,

Estimation {{.estimationNumber}} for project {{.projectNumber}} has been
checked by {{.checkedBy}} and is ready for approval.

Estimated amount: {{.estimatedAmount}}
{{- end -}}
`))

// Render produces the message body: the named template when known, the
// plain-text fallback otherwise.
func Render(msg Message) string {
	if msg.Template != "" {
		var buf bytes.Buffer
		if err := bodyTemplates.ExecuteTemplate(&buf, msg.Template, msg.Params); err == nil {
			return buf.String()
		}
	}
	if msg.PlainText != "" {
		return msg.PlainText
	}
	// Last resort: dump params deterministically.
	keys := make([]string, 0, len(msg.Params))
	for k := range msg.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var buf bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s: %s\n", k, msg.Params[k])
	}
	return buf.String()
}

// SMTPMailer sends mail over SMTP using go-mail.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer builds a mailer from config.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
	}
}

// Send delivers a single message. A new client per send keeps the mailer
// stateless; send volume here is a handful of notifications per workflow.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	message := mail.NewMsg()
	if err := message.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := message.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextPlain, Render(msg))

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}
