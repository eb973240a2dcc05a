package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
)

// quoteLimit caps how much of the original body is quoted in a reply.
const quoteLimit = 500

// Outgoing is a composed reply ready for SMTP submission.
type Outgoing struct {
	From       string
	To         string
	Subject    string
	MessageID  string
	InReplyTo  string
	References string
	Date       time.Time
	Body       string
}

// Receipt reports where a reply went, for user-facing confirmation.
type Receipt struct {
	To      string
	Subject string
}

// BuildReply composes a reply to the original message: the user's text,
// a separator, and the leading part of the original body quoted line by
// line. The subject gains a "Re: " prefix unless one is already there.
func BuildReply(from string, original *Message, text string) *Outgoing {
	subject := original.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	sender := original.Sender.Address
	if sender == "" {
		sender = "Unknown"
	}
	date := ""
	if !original.Received.IsZero() {
		date = original.Received.Format("2006-01-02 15:04")
	}

	quoted := truncate(original.Body(), quoteLimit)
	quoted = "> " + strings.ReplaceAll(quoted, "\n", "\n> ")

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\n---\n")
	b.WriteString(fmt.Sprintf("%s, %s wrote:\n", date, sender))
	b.WriteString(quoted)
	b.WriteString("\n")

	out := &Outgoing{
		From:      from,
		To:        original.Sender.Address,
		Subject:   subject,
		MessageID: newMessageID(from),
		Date:      time.Now(),
		Body:      b.String(),
	}
	if original.MessageID != "" {
		ref := bracket(original.MessageID)
		out.InReplyTo = ref
		out.References = ref
	}

	return out
}

// Bytes renders the outgoing message as an RFC 5322 byte stream.
func (o *Outgoing) Bytes() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", o.From)
	fmt.Fprintf(&b, "To: %s\r\n", o.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", o.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", o.Date.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: %s\r\n", o.MessageID)
	if o.InReplyTo != "" {
		fmt.Fprintf(&b, "In-Reply-To: %s\r\n", o.InReplyTo)
	}
	if o.References != "" {
		fmt.Fprintf(&b, "References: %s\r\n", o.References)
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(o.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// SMTPOptions configures the submission connection for outgoing replies.
type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string

	// ImplicitTLS dials TLS directly instead of upgrading via STARTTLS.
	ImplicitTLS bool

	// Insecure skips TLS certificate verification.
	Insecure bool
}

// SMTPSender submits composed replies over an SMTP submission service.
// Each Send opens, authenticates, and closes one connection.
type SMTPSender struct {
	opts SMTPOptions
}

// NewSMTPSender returns a sender for the given submission service.
func NewSMTPSender(opts SMTPOptions) *SMTPSender {
	return &SMTPSender{opts: opts}
}

// Send submits the outgoing message to its recipient.
func (s *SMTPSender) Send(_ context.Context, out *Outgoing) error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	tlsConfig := &tls.Config{
		ServerName:         s.opts.Host,
		InsecureSkipVerify: s.opts.Insecure,
	}

	var client *smtp.Client
	var err error
	if s.opts.ImplicitTLS {
		client, err = smtp.DialTLS(addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("connecting to SMTP %s: %w", addr, err)
		}
	} else {
		client, err = smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("connecting to SMTP %s: %w", addr, err)
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			_ = client.Close()
			return fmt.Errorf("SMTP STARTTLS: %w", err)
		}
	}
	defer client.Close()

	auth := sasl.NewPlainClient("", s.opts.Username, s.opts.Password)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	reader := strings.NewReader(string(out.Bytes()))
	if err := client.SendMail(out.From, []string{out.To}, reader); err != nil {
		return fmt.Errorf("submitting reply to %s: %w", out.To, err)
	}

	return client.Quit()
}

// newMessageID generates a unique Message-ID in the sender's domain.
func newMessageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = from[i+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

// bracket wraps a Message-ID value in angle brackets when missing.
func bracket(id string) string {
	if strings.HasPrefix(id, "<") {
		return id
	}
	return "<" + id + ">"
}
