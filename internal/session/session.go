// Package session owns the per-invocation state: the connected mailbox
// client, the reply sender, and the short-ID cache that resolves later
// commands without re-querying the server.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/mailtriage/internal/identity"
	"github.com/nhle/mailtriage/internal/mail"
	"github.com/nhle/mailtriage/internal/model"
)

const (
	// listLimit bounds every listing query.
	listLimit = 50

	// rescanLimit and rescanWindow bound the re-scan issued on a cache
	// miss: the most recent 100 messages from the last 7 days.
	rescanLimit  = 100
	rescanWindow = 7 * 24 * time.Hour
)

// Mailbox is the narrow surface of the mail store a session consumes.
type Mailbox interface {
	Search(ctx context.Context, q mail.Query, limit int) ([]mail.Envelope, error)
	Fetch(ctx context.Context, uid uint32) (*mail.Message, error)
	MarkSeen(ctx context.Context, uid uint32) error
	MarkAnswered(ctx context.Context, uid uint32) error
	Archive(ctx context.Context, uid uint32) error
}

// Sender submits composed replies.
type Sender interface {
	Send(ctx context.Context, out *mail.Outgoing) error
}

// NotFoundError reports a short ID that matched nothing, in the cache
// or in the bounded re-scan. It is an expected, user-facing outcome,
// never a transport failure.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no message with ID %s", e.ID)
}

// IsNotFound reports whether err (or any error in its chain) is a
// NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Session holds everything one invocation needs: the mailbox client,
// the reply sender, the owner identity the classification runs against,
// and the short-ID cache. Not safe for concurrent use; every command
// runs on a single goroutine.
type Session struct {
	box    Mailbox
	sender Sender

	// owner is the lowercased account address; domain is its "@domain"
	// suffix used for the internal/external split.
	owner  string
	domain string

	// cache maps short IDs to the last-seen envelope. Unbounded for
	// the process lifetime; everything dies with the process.
	cache map[string]mail.Envelope

	log zerolog.Logger
}

// New creates a session for the given account address.
func New(box Mailbox, sender Sender, address string, log zerolog.Logger) *Session {
	return &Session{
		box:    box,
		sender: sender,
		owner:  strings.ToLower(address),
		domain: identity.DomainSuffix(address),
		cache:  make(map[string]mail.Envelope),
		log:    log,
	}
}

// Record caches the envelope under its short ID, overwriting any prior
// entry, and returns the ID. When the overwritten entry was derived
// from a different source the collision is logged rather than silently
// shadowed.
func (s *Session) Record(env mail.Envelope) string {
	id := identity.ShortID(env)

	if old, ok := s.cache[id]; ok {
		if oldSrc, newSrc := identity.IDSource(old), identity.IDSource(env); oldSrc != newSrc {
			s.log.Warn().
				Str("short_id", id).
				Str("cached", oldSrc).
				Str("incoming", newSrc).
				Msg("short ID collision, newer message shadows cached one")
		}
	}

	s.cache[id] = env
	return id
}

// Lookup resolves a short ID to its envelope. A cache hit answers
// without any network traffic. A miss issues exactly one bounded
// re-scan of recent messages, caching everything it sees, and returns
// NotFoundError when the ID is absent from the results.
func (s *Session) Lookup(ctx context.Context, id string) (mail.Envelope, error) {
	if env, ok := s.cache[id]; ok {
		return env, nil
	}

	envs, err := s.box.Search(ctx, mail.Query{
		Since: time.Now().Add(-rescanWindow),
	}, rescanLimit)
	if err != nil {
		return mail.Envelope{}, fmt.Errorf("re-scanning mailbox: %w", err)
	}

	for _, env := range envs {
		if s.Record(env) == id {
			return env, nil
		}
	}

	return mail.Envelope{}, &NotFoundError{ID: id}
}

// ListUnread queries unread messages received since the look-back
// window, caches them, and returns their summaries newest first. Unless
// showAll is set, messages where the owner is not a direct To/Cc
// recipient are dropped.
func (s *Session) ListUnread(
	ctx context.Context, days int, showAll bool,
) ([]model.Summary, error) {
	envs, err := s.box.Search(ctx, mail.Query{
		Since:      sinceFor(days),
		UnseenOnly: true,
	}, listLimit)
	if err != nil {
		return nil, fmt.Errorf("listing unread messages: %w", err)
	}

	summaries := make([]model.Summary, 0, len(envs))
	for _, env := range envs {
		id := s.Record(env)
		cls := identity.Classify(env, s.owner, s.domain)
		if !showAll && !cls.Direct {
			continue
		}
		summaries = append(summaries, model.NewSummary(id, env, cls))
	}

	return summaries, nil
}

// sinceFor converts the --days argument to the received-date lower
// bound: start of today when zero, N days back otherwise.
func sinceFor(days int) time.Time {
	now := time.Now()
	if days > 0 {
		return now.AddDate(0, 0, -days)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
