package session

import (
	"context"
	"fmt"

	"github.com/nhle/mailtriage/internal/identity"
	"github.com/nhle/mailtriage/internal/mail"
)

// Scope selects which classification a batch operation applies to.
type Scope string

const (
	ScopeInternal Scope = "internal"
	ScopeExternal Scope = "external"
	ScopeAll      Scope = "all"
)

// BatchResult tallies a batch operation. Per-item failures never abort
// the batch; they are counted and reported alongside the successes.
type BatchResult struct {
	Done   int
	Failed int
}

// Read resolves the short ID and fetches the full message.
func (s *Session) Read(ctx context.Context, id string) (*mail.Message, error) {
	env, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	msg, err := s.box.Fetch(ctx, env.UID)
	if err != nil {
		return nil, fmt.Errorf("fetching message %s: %w", id, err)
	}
	return msg, nil
}

// Reply fetches the original message, composes a quoted reply to its
// sender, submits it, and sets the Answered flag best-effort.
func (s *Session) Reply(
	ctx context.Context, id, text string,
) (*mail.Receipt, error) {
	env, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	msg, err := s.box.Fetch(ctx, env.UID)
	if err != nil {
		return nil, fmt.Errorf("fetching message %s for reply: %w", id, err)
	}

	out := mail.BuildReply(s.owner, msg, text)
	if err := s.sender.Send(ctx, out); err != nil {
		return nil, fmt.Errorf("sending reply: %w", err)
	}

	if err := s.box.MarkAnswered(ctx, env.UID); err != nil {
		s.log.Warn().Err(err).Uint32("uid", env.UID).
			Msg("setting answered flag failed")
	}

	return &mail.Receipt{To: out.To, Subject: out.Subject}, nil
}

// MarkRead resolves the short ID and sets the Seen flag.
func (s *Session) MarkRead(ctx context.Context, id string) error {
	env, err := s.Lookup(ctx, id)
	if err != nil {
		return err
	}

	if err := s.box.MarkSeen(ctx, env.UID); err != nil {
		return fmt.Errorf("marking %s read: %w", id, err)
	}
	return nil
}

// Archive resolves the short ID and moves the message to the archive
// mailbox.
func (s *Session) Archive(ctx context.Context, id string) error {
	env, err := s.Lookup(ctx, id)
	if err != nil {
		return err
	}

	if err := s.box.Archive(ctx, env.UID); err != nil {
		return fmt.Errorf("archiving %s: %w", id, err)
	}
	return nil
}

// MarkReadBatch sets the Seen flag on every unread message in scope.
func (s *Session) MarkReadBatch(
	ctx context.Context, scope Scope, days int,
) (BatchResult, error) {
	return s.applyBatch(ctx, scope, days, "marking read", s.box.MarkSeen)
}

// ArchiveBatch moves every unread message in scope to the archive
// mailbox.
func (s *Session) ArchiveBatch(
	ctx context.Context, scope Scope, days int,
) (BatchResult, error) {
	return s.applyBatch(ctx, scope, days, "archiving", s.box.Archive)
}

func (s *Session) applyBatch(
	ctx context.Context,
	scope Scope,
	days int,
	verb string,
	apply func(context.Context, uint32) error,
) (BatchResult, error) {
	envs, err := s.scopeEnvelopes(ctx, scope, days)
	if err != nil {
		return BatchResult{}, err
	}

	var res BatchResult
	for _, env := range envs {
		if err := apply(ctx, env.UID); err != nil {
			s.log.Warn().Err(err).Uint32("uid", env.UID).
				Str("op", verb).Msg("batch item failed")
			res.Failed++
			continue
		}
		res.Done++
	}

	return res, nil
}

// scopeEnvelopes lists unread messages in the look-back window and
// keeps those matching the scope's classification.
func (s *Session) scopeEnvelopes(
	ctx context.Context, scope Scope, days int,
) ([]mail.Envelope, error) {
	envs, err := s.box.Search(ctx, mail.Query{
		Since:      sinceFor(days),
		UnseenOnly: true,
	}, listLimit)
	if err != nil {
		return nil, fmt.Errorf("listing unread messages: %w", err)
	}

	matched := make([]mail.Envelope, 0, len(envs))
	for _, env := range envs {
		s.Record(env)
		cls := identity.Classify(env, s.owner, s.domain)
		switch scope {
		case ScopeInternal:
			if !cls.Internal {
				continue
			}
		case ScopeExternal:
			if cls.Internal {
				continue
			}
		}
		matched = append(matched, env)
	}

	return matched, nil
}
