package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// snippetFetchSize bounds the partial body fetch used to build listing
// previews; only the first SnippetLen characters survive anyway.
const snippetFetchSize = 2048

// Query describes a server-side mailbox listing filter.
type Query struct {
	// Since is the received-date lower bound.
	Since time.Time

	// UnseenOnly restricts the listing to messages without the Seen flag.
	UnseenOnly bool
}

// Options configures the IMAP connection for one invocation.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string

	// StartTLS upgrades a plaintext connection instead of dialing
	// implicit TLS on the configured port.
	StartTLS bool

	// Insecure skips TLS certificate verification. Opt-in for servers
	// with self-signed corporate certificates.
	Insecure bool
}

// Client holds one authenticated IMAP connection with INBOX selected.
// All methods operate on that single connection; the caller owns its
// lifetime and must Close it when the invocation ends.
type Client struct {
	imap *imapclient.Client

	// archive caches the resolved archive mailbox name for the
	// connection's lifetime.
	archive string
}

// Dial connects to the IMAP server, authenticates, and selects INBOX
// read-write. A failure at any step is fatal to the invocation.
func Dial(opts Options) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)

	var tlsConfig *tls.Config
	if opts.Insecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}
	imapOpts := &imapclient.Options{TLSConfig: tlsConfig}

	var client *imapclient.Client
	var err error
	if opts.StartTLS {
		client, err = imapclient.DialStartTLS(addr, imapOpts)
	} else {
		client, err = imapclient.DialTLS(addr, imapOpts)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(opts.Username, opts.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf(
			"authenticating %s: %w", opts.Username, err,
		)
	}

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	return &Client{imap: client}, nil
}

// Close logs out and releases the connection.
func (c *Client) Close() error {
	return c.imap.Logout().Wait()
}

// Search runs a server-side UID search with the given filter, fetches
// envelope data plus a bounded body fragment for the most recent limit
// matches, and returns them newest first.
func (c *Client) Search(
	_ context.Context, q Query, limit int,
) ([]Envelope, error) {
	criteria := &imap.SearchCriteria{
		Since: q.Since,
	}
	if q.UnseenOnly {
		criteria.NotFlag = []imap.Flag{imap.FlagSeen}
	}

	searchData, err := c.imap.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching mailbox: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	// UIDs come back ascending; keep the most recent ones.
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	uidSet := imap.UIDSetNum(uids...)

	snippetSection := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierText,
		Peek:      true,
		Partial:   &imap.SectionPartial{Offset: 0, Size: snippetFetchSize},
	}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		Flags:       true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{snippetSection},
	}

	fetchCmd := c.imap.Fetch(uidSet, fetchOpts)
	defer fetchCmd.Close()

	var envelopes []Envelope
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}

		env := envelopeFromBuffer(buf)
		env.Snippet = Snippet(buf.FindBodySection(snippetSection))
		envelopes = append(envelopes, env)
	}

	if err := fetchCmd.Close(); err != nil {
		return envelopes, fmt.Errorf("fetching envelopes: %w", err)
	}

	sort.Slice(envelopes, func(i, j int) bool {
		return envelopes[i].Received.After(envelopes[j].Received)
	})

	return envelopes, nil
}

// Fetch retrieves the full message for the given UID, parsing the MIME
// structure into body text and attachment metadata. The body section is
// peeked so reading never sets the Seen flag server-side.
func (c *Client) Fetch(
	_ context.Context, uid uint32,
) (*Message, error) {
	uidSet := imap.UIDSetNum(imap.UID(uid))

	bodySection := &imap.FetchItemBodySection{
		Peek: true,
	}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		Flags:       true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := c.imap.Fetch(uidSet, fetchOpts)
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return nil, fmt.Errorf("message UID %d not found", uid)
	}

	buf, err := msg.Collect()
	if err != nil {
		return nil, fmt.Errorf("collecting message data: %w", err)
	}

	parsed := &Message{
		Envelope: envelopeFromBuffer(buf),
	}

	if raw := buf.FindBodySection(bodySection); raw != nil {
		parsed.TextBody, parsed.HTMLBody, parsed.Attachments = ParseBody(raw)
	}
	parsed.Snippet = truncate(
		strings.Join(strings.Fields(parsed.Body()), " "), SnippetLen,
	)

	if err := fetchCmd.Close(); err != nil {
		return parsed, fmt.Errorf("closing fetch: %w", err)
	}

	return parsed, nil
}

// MarkSeen adds the Seen flag to the message with the given UID.
func (c *Client) MarkSeen(ctx context.Context, uid uint32) error {
	return c.addFlags(ctx, uid, imap.FlagSeen)
}

// MarkAnswered adds the Answered flag to the message with the given UID.
func (c *Client) MarkAnswered(ctx context.Context, uid uint32) error {
	return c.addFlags(ctx, uid, imap.FlagAnswered)
}

func (c *Client) addFlags(
	_ context.Context, uid uint32, flags ...imap.Flag,
) error {
	uidSet := imap.UIDSetNum(imap.UID(uid))

	storeCmd := c.imap.Store(uidSet, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  flags,
	}, nil)

	if err := storeCmd.Close(); err != nil {
		return fmt.Errorf("storing flags for UID %d: %w", uid, err)
	}
	return nil
}

// Archive moves the message with the given UID to the archive mailbox,
// resolving that mailbox once per connection.
func (c *Client) Archive(ctx context.Context, uid uint32) error {
	mailbox, err := c.archiveMailbox(ctx)
	if err != nil {
		return err
	}

	uidSet := imap.UIDSetNum(imap.UID(uid))
	if _, err := c.imap.Move(uidSet, mailbox).Wait(); err != nil {
		return fmt.Errorf("moving UID %d to %s: %w", uid, mailbox, err)
	}
	return nil
}

// archiveFolderNames are tried, in order, when the server advertises no
// special-use archive mailbox.
var archiveFolderNames = []string{"Archive", "Archives", "INBOX.Archive"}

// archiveMailbox resolves the destination for archived messages: the
// special-use Archive mailbox, else a common archive folder name, else
// the special-use Trash mailbox, else a freshly created "Archive".
func (c *Client) archiveMailbox(_ context.Context) (string, error) {
	if c.archive != "" {
		return c.archive, nil
	}

	mailboxes, err := c.imap.List("", "*", nil).Collect()
	if err != nil {
		return "", fmt.Errorf("listing mailboxes: %w", err)
	}

	byName := make(map[string]string, len(mailboxes))
	trash := ""
	for _, mbox := range mailboxes {
		byName[strings.ToLower(mbox.Mailbox)] = mbox.Mailbox
		for _, attr := range mbox.Attrs {
			switch attr {
			case imap.MailboxAttrArchive:
				c.archive = mbox.Mailbox
				return c.archive, nil
			case imap.MailboxAttrTrash:
				trash = mbox.Mailbox
			}
		}
	}

	for _, name := range archiveFolderNames {
		if found, ok := byName[strings.ToLower(name)]; ok {
			c.archive = found
			return c.archive, nil
		}
	}

	if trash != "" {
		c.archive = trash
		return c.archive, nil
	}

	if err := c.imap.Create("Archive", nil).Wait(); err != nil {
		return "", fmt.Errorf("creating Archive mailbox: %w", err)
	}
	c.archive = "Archive"
	return c.archive, nil
}

// envelopeFromBuffer builds the narrow Envelope view from a fetch
// response buffer. Recipient addresses are lowercased here so all
// downstream comparisons are uniform.
func envelopeFromBuffer(buf *imapclient.FetchMessageBuffer) Envelope {
	env := Envelope{
		UID: uint32(buf.UID),
	}

	if buf.Envelope != nil {
		env.MessageID = buf.Envelope.MessageID
		env.Subject = buf.Envelope.Subject
		env.Received = buf.Envelope.Date

		if len(buf.Envelope.From) > 0 {
			from := buf.Envelope.From[0]
			env.Sender = Address{
				Name:    from.Name,
				Address: from.Addr(),
			}
		}

		for _, to := range buf.Envelope.To {
			env.To = append(env.To, strings.ToLower(to.Addr()))
		}
		for _, cc := range buf.Envelope.Cc {
			env.Cc = append(env.Cc, strings.ToLower(cc.Addr()))
		}
	}

	for _, flag := range buf.Flags {
		switch flag {
		case imap.FlagSeen:
			env.Seen = true
		case imap.FlagAnswered:
			env.Answered = true
		}
	}

	return env
}
