package mail

import "time"

// Address is a mail address with an optional display name.
type Address struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// String formats the address as "Name <addr>" or just the bare address.
func (a Address) String() string {
	if a.Name != "" {
		return a.Name + " <" + a.Address + ">"
	}
	return a.Address
}

// Envelope is the narrow view of a mailbox message built immediately
// after each protocol fetch. Downstream code depends only on this
// structure, never on the protocol library's own types.
type Envelope struct {
	// UID is the protocol-assigned identifier of the message within
	// the selected mailbox.
	UID uint32

	// MessageID is the Message-ID header value, empty when absent.
	MessageID string

	// Sender is the originating address; zero value when the server
	// reported no sender.
	Sender Address

	// To and Cc hold the recipient addresses, lowercased.
	To []string
	Cc []string

	// Subject is the subject line, possibly empty.
	Subject string

	// Received is the time the message arrived at the mailbox.
	Received time.Time

	// Snippet is the leading plain text of the body, newlines
	// collapsed, at most SnippetLen characters.
	Snippet string

	// Seen and Answered mirror the corresponding server-side flags.
	Seen     bool
	Answered bool
}

// Message is a fully fetched message: the envelope plus body content
// extracted from the MIME structure.
type Message struct {
	Envelope

	// TextBody is the plain-text body, preferred for display.
	TextBody string

	// HTMLBody is the raw HTML body when no plain text part exists.
	HTMLBody string

	// Attachments holds metadata only; content is never downloaded.
	Attachments []Attachment
}

// Attachment holds metadata about a message attachment.
type Attachment struct {
	Filename string
	Size     int64
	MIMEType string
}

// Body returns the best available body text: the plain part when
// present, otherwise the HTML part reduced to plain text.
func (m *Message) Body() string {
	if m.TextBody != "" {
		return m.TextBody
	}
	if m.HTMLBody != "" {
		return stripHTML(m.HTMLBody)
	}
	return ""
}

// SnippetLen caps the extracted body snippet carried on an Envelope.
const SnippetLen = 150
