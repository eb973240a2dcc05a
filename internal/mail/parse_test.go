package mail_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailtriage/internal/mail"
)

func crlf(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n"))
}

func TestParseBodyMultipart(t *testing.T) {
	raw := crlf(
		"From: Peer <peer@corp.com>",
		"To: user@corp.com",
		"Subject: report",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="XB"`,
		"",
		"--XB",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"hello plain body",
		"--XB",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>hello <b>html</b> body</p>",
		"--XB",
		"Content-Type: application/pdf",
		`Content-Disposition: attachment; filename="doc.pdf"`,
		"",
		"%PDF-fake-content",
		"--XB--",
		"",
	)

	text, html, attachments := mail.ParseBody(raw)

	assert.Equal(t, "hello plain body", strings.TrimSpace(text))
	assert.Contains(t, html, "<b>html</b>")

	require.Len(t, attachments, 1)
	assert.Equal(t, "doc.pdf", attachments[0].Filename)
	assert.Equal(t, "application/pdf", attachments[0].MIMEType)
	assert.Greater(t, attachments[0].Size, int64(0))
}

func TestParseBodyPlain(t *testing.T) {
	raw := crlf(
		"From: peer@corp.com",
		"To: user@corp.com",
		"Subject: note",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"just a plain note",
		"",
	)

	text, html, attachments := mail.ParseBody(raw)
	assert.Equal(t, "just a plain note", strings.TrimSpace(text))
	assert.Empty(t, html)
	assert.Empty(t, attachments)
}

func TestParseBodyUnparseableFallsBackToRaw(t *testing.T) {
	raw := []byte("not a mime message at all")

	text, html, attachments := mail.ParseBody(raw)
	assert.Equal(t, "not a mime message at all", text)
	assert.Empty(t, html)
	assert.Empty(t, attachments)
}

func TestSnippet(t *testing.T) {
	cases := []struct {
		name     string
		raw      []byte
		expected string
	}{
		{
			name:     "empty",
			raw:      nil,
			expected: "",
		},
		{
			name:     "collapses whitespace",
			raw:      []byte("first line\r\nsecond   line\r\n\r\nthird"),
			expected: "first line second line third",
		},
		{
			name: "drops boundaries and part headers",
			raw: crlf(
				"--XB",
				"Content-Type: text/plain; charset=utf-8",
				"",
				"actual preview text",
			),
			expected: "actual preview text",
		},
		{
			name:     "strips html",
			raw:      []byte("<div>hello</div><br>world</p>"),
			expected: "hello world",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, mail.Snippet(tc.raw))
		})
	}
}

func TestSnippetBounded(t *testing.T) {
	long := strings.Repeat("x", 5*mail.SnippetLen)
	got := mail.Snippet([]byte(long))
	assert.Len(t, got, mail.SnippetLen)
}

func TestMessageBodyPreference(t *testing.T) {
	msg := &mail.Message{TextBody: "plain", HTMLBody: "<p>html</p>"}
	assert.Equal(t, "plain", msg.Body())

	msg = &mail.Message{HTMLBody: "<p>html only</p>"}
	assert.Equal(t, "html only", msg.Body())

	msg = &mail.Message{}
	assert.Equal(t, "", msg.Body())
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "Peer <peer@corp.com>",
		mail.Address{Name: "Peer", Address: "peer@corp.com"}.String())
	assert.Equal(t, "peer@corp.com",
		mail.Address{Address: "peer@corp.com"}.String())
}
