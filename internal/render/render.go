// Package render formats listings, messages, and operation outcomes for
// the terminal. Everything here writes user-facing product output;
// diagnostics go through the logger instead.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/nhle/mailtriage/internal/mail"
	"github.com/nhle/mailtriage/internal/model"
	"github.com/nhle/mailtriage/internal/session"
)

const (
	// bodyDisplayLimit truncates very long bodies in the read view.
	bodyDisplayLimit = 3000

	// externalDisplayCap bounds how many external messages the grouped
	// listing shows in full.
	externalDisplayCap = 10

	// headerRecipientCap bounds the To/Cc lines in the read view.
	headerRecipientCap = 5
)

// Listing writes the grouped human-readable listing: internal messages
// first, then external ones capped at externalDisplayCap, followed by a
// command-hint line.
func Listing(w io.Writer, summaries []model.Summary, days int) {
	if len(summaries) == 0 {
		NoUnread(w, days)
		return
	}

	var internal, external []model.Summary
	for _, s := range summaries {
		if s.IsInternal {
			internal = append(internal, s)
		} else {
			external = append(external, s)
		}
	}

	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf(
		"%d unread messages %s:", len(summaries), period(days),
	)))
	fmt.Fprintln(w)

	if len(internal) > 0 {
		fmt.Fprintln(w, SectionStyle.Render(fmt.Sprintf(
			"--- Internal (%d) ---", len(internal),
		)))
		for _, s := range internal {
			listingEntry(w, s, true)
		}
	}

	if len(external) > 0 {
		fmt.Fprintln(w, SectionStyle.Render(fmt.Sprintf(
			"--- External (%d) ---", len(external),
		)))
		shown := external
		if len(shown) > externalDisplayCap {
			shown = shown[:externalDisplayCap]
		}
		for _, s := range shown {
			listingEntry(w, s, false)
		}
		if rest := len(external) - len(shown); rest > 0 {
			fmt.Fprintf(w, "        ... and %d more\n", rest)
		}
	}

	fmt.Fprintln(w, RuleStyle.Render(strings.Repeat("-", 50)))
	fmt.Fprintln(w, HintStyle.Render(
		`Commands: read <id>, reply <id> "text", mark-read <id>, archive <id>`,
	))
}

func listingEntry(w io.Writer, s model.Summary, withPreview bool) {
	sender := s.SenderName
	if !s.IsInternal {
		sender = s.Sender
	}
	fmt.Fprintf(w, "%s [%s] %s\n",
		IDStyle.Render("["+s.ID+"]"), s.Time, SenderStyle.Render(sender),
	)
	fmt.Fprintf(w, "        %s\n", s.Subject)
	if withPreview && s.Preview != "" {
		preview := s.Preview
		if len(preview) > 60 {
			preview = preview[:60] + "..."
		}
		fmt.Fprintf(w, "        %s\n", PreviewStyle.Render(preview))
	}
	fmt.Fprintln(w)
}

// NoUnread reports an empty listing.
func NoUnread(w io.Writer, days int) {
	fmt.Fprintf(w, "No unread messages %s\n", period(days))
}

// Message writes the full read view: headers, rule, body truncated at
// bodyDisplayLimit, and the follow-up command hints for the short ID.
func Message(w io.Writer, id string, msg *mail.Message) {
	rule := RuleStyle.Render(strings.Repeat("=", 60))

	subject := msg.Subject
	if subject == "" {
		subject = "(No subject)"
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, TitleStyle.Render(subject))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "From:  %s\n", msg.Sender.String())
	if !msg.Received.IsZero() {
		fmt.Fprintf(w, "Date:  %s\n", msg.Received.Format("2006-01-02 15:04"))
	}
	if len(msg.To) > 0 {
		fmt.Fprintf(w, "To:    %s\n", joinCapped(msg.To, headerRecipientCap))
	}
	if len(msg.Cc) > 0 {
		fmt.Fprintf(w, "CC:    %s\n", joinCapped(msg.Cc, headerRecipientCap))
	}
	if len(msg.Attachments) > 0 {
		fmt.Fprintf(w, "Attachments: %s\n", attachmentLine(msg.Attachments))
	}
	fmt.Fprintln(w, RuleStyle.Render(strings.Repeat("-", 60)))

	body := strings.TrimSpace(msg.Body())
	if len(body) > bodyDisplayLimit {
		body = body[:bodyDisplayLimit] + "\n\n... [truncated, message too long]"
	}
	if body == "" {
		body = "(Empty message)"
	}
	fmt.Fprintln(w, body)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "ID for reply: %s\n", IDStyle.Render(id))
	fmt.Fprintln(w, HintStyle.Render(fmt.Sprintf(
		`Commands: reply %s "text", mark-read %s, archive %s`, id, id, id,
	)))
}

// NotFound reports a lookup miss: a normal outcome, not an error.
func NotFound(w io.Writer, id string) {
	fmt.Fprintln(w, ErrorStyle.Render(
		fmt.Sprintf("Message with ID %s not found", id),
	))
}

// ReplySent confirms a submitted reply.
func ReplySent(w io.Writer, receipt *mail.Receipt) {
	fmt.Fprintln(w, SuccessStyle.Render("Reply sent to "+receipt.To))
	fmt.Fprintf(w, "   Subject: %s\n", receipt.Subject)
}

// Done confirms a single-message operation.
func Done(w io.Writer, verb, id string) {
	fmt.Fprintln(w, SuccessStyle.Render(
		fmt.Sprintf("Message %s %s", id, verb),
	))
}

// BatchDone reports a batch tally, including the failure count when any
// item failed.
func BatchDone(w io.Writer, verb string, scope session.Scope, res session.BatchResult) {
	line := fmt.Sprintf("%s: %d %s messages", verb, res.Done, scope)
	if res.Failed > 0 {
		line += fmt.Sprintf(" (errors: %d)", res.Failed)
	}
	fmt.Fprintln(w, SuccessStyle.Render(line))
}

// BatchEmpty reports that a batch matched nothing.
func BatchEmpty(w io.Writer, scope session.Scope) {
	fmt.Fprintf(w, "No %s messages to process\n", scope)
}

func period(days int) string {
	if days > 0 {
		return fmt.Sprintf("from last %d days", days)
	}
	return "today"
}

func joinCapped(list []string, n int) string {
	if len(list) > n {
		list = list[:n]
	}
	return strings.Join(list, ", ")
}

func attachmentLine(atts []mail.Attachment) string {
	parts := make([]string, 0, len(atts))
	for _, att := range atts {
		parts = append(parts, fmt.Sprintf(
			"%s (%s, %s)", att.Filename, att.MIMEType, formatSize(att.Size),
		))
	}
	return strings.Join(parts, "; ")
}

// formatSize formats a byte size into a human-readable string.
func formatSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
