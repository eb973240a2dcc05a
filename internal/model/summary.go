// Package model holds the view structs shared between the session layer
// and the command surface.
package model

import (
	"github.com/nhle/mailtriage/internal/identity"
	"github.com/nhle/mailtriage/internal/mail"
)

// recipientCap bounds the To/Cc lists carried on a summary.
const recipientCap = 5

// Summary is the listing view of one unread message: the short ID, the
// classification, and just enough header data to triage it. The JSON
// shape backs the machine-readable listing mode.
type Summary struct {
	// ID is the stable 8-character short identifier.
	ID string `json:"id"`

	// Time and Date are the received timestamp split for display,
	// "??:??" and "" when the server reported no date.
	Time string `json:"time"`
	Date string `json:"date"`

	// Sender is the bare sender address; SenderName falls back to the
	// address when the message carries no display name.
	Sender     string `json:"sender"`
	SenderName string `json:"sender_name"`

	Subject string `json:"subject"`

	// Preview is the leading body text, at most 150 characters.
	Preview string `json:"preview"`

	IsInternal bool `json:"is_internal"`
	IsDirect   bool `json:"is_direct"`

	// To and Cc are capped at five entries each.
	To []string `json:"to"`
	Cc []string `json:"cc"`
}

// NewSummary builds the listing view for an envelope under its short ID
// and classification.
func NewSummary(id string, env mail.Envelope, cls identity.Class) Summary {
	s := Summary{
		ID:         id,
		Time:       "??:??",
		Sender:     env.Sender.Address,
		SenderName: env.Sender.Name,
		Subject:    env.Subject,
		Preview:    env.Snippet,
		IsInternal: cls.Internal,
		IsDirect:   cls.Direct,
		To:         capList(env.To, recipientCap),
		Cc:         capList(env.Cc, recipientCap),
	}

	if !env.Received.IsZero() {
		s.Time = env.Received.Format("15:04")
		s.Date = env.Received.Format("2006-01-02")
	}
	if s.Sender == "" {
		s.Sender = "Unknown"
	}
	if s.SenderName == "" {
		s.SenderName = s.Sender
	}
	if s.Subject == "" {
		s.Subject = "(No subject)"
	}

	return s
}

func capList(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
