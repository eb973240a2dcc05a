package session_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailtriage/internal/identity"
	"github.com/nhle/mailtriage/internal/mail"
	"github.com/nhle/mailtriage/internal/session"
)

func TestReadFetchesCachedEnvelope(t *testing.T) {
	env := internalEnvelope(7, "<read-me@corp.com>")
	box := &mailboxMock{
		FetchFunc: func(_ context.Context, uid uint32) (*mail.Message, error) {
			require.Equal(t, uint32(7), uid)
			return &mail.Message{Envelope: env, TextBody: "full body"}, nil
		},
	}
	sess := newTestSession(box, &senderMock{})
	id := sess.Record(env)

	msg, err := sess.Read(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "full body", msg.TextBody)
	assert.Equal(t, 0, box.searchCalls)
}

func TestReplyComposesAndMarksAnswered(t *testing.T) {
	env := internalEnvelope(7, "<orig@corp.com>")
	box := &mailboxMock{
		FetchFunc: func(_ context.Context, _ uint32) (*mail.Message, error) {
			return &mail.Message{
				Envelope: env,
				TextBody: "original body text",
			}, nil
		},
	}
	sender := &senderMock{}
	sess := newTestSession(box, sender)
	id := sess.Record(env)

	receipt, err := sess.Reply(context.Background(), id, "Thanks, will do.")
	require.NoError(t, err)
	require.Equal(t, 1, sender.sendCalls)

	assert.Equal(t, "peer@corp.com", receipt.To)
	assert.Equal(t, "Re: status update", receipt.Subject)

	out := sender.last
	assert.Equal(t, "user@corp.com", out.From)
	assert.Equal(t, "<orig@corp.com>", out.InReplyTo)
	assert.True(t, strings.HasPrefix(out.Body, "Thanks, will do."))
	assert.Contains(t, out.Body, "> original body text")

	assert.Equal(t, []uint32{7}, box.answeredUIDs)
}

func TestReplySendFailureSkipsAnsweredFlag(t *testing.T) {
	env := internalEnvelope(7, "<orig@corp.com>")
	box := &mailboxMock{
		FetchFunc: func(_ context.Context, _ uint32) (*mail.Message, error) {
			return &mail.Message{Envelope: env}, nil
		},
	}
	sender := &senderMock{
		SendFunc: func(_ context.Context, _ *mail.Outgoing) error {
			return errors.New("submission refused")
		},
	}
	sess := newTestSession(box, sender)
	id := sess.Record(env)

	_, err := sess.Reply(context.Background(), id, "hi")
	require.Error(t, err)
	assert.Empty(t, box.answeredUIDs)
}

func TestMarkReadAndArchiveSingle(t *testing.T) {
	env := internalEnvelope(11, "<single@corp.com>")
	box := &mailboxMock{}
	sess := newTestSession(box, &senderMock{})
	id := sess.Record(env)

	require.NoError(t, sess.MarkRead(context.Background(), id))
	assert.Equal(t, []uint32{11}, box.markSeenUIDs)

	require.NoError(t, sess.Archive(context.Background(), id))
	assert.Equal(t, []uint32{11}, box.archivedUIDs)
}

func TestMarkReadNotFound(t *testing.T) {
	box := &mailboxMock{
		SearchFunc: func(_ context.Context, _ mail.Query, _ int) ([]mail.Envelope, error) {
			return nil, nil
		},
	}
	sess := newTestSession(box, &senderMock{})

	err := sess.MarkRead(context.Background(), "deadbeef")
	assert.True(t, session.IsNotFound(err))
	assert.Empty(t, box.markSeenUIDs)
}

func batchEnvelopes() []mail.Envelope {
	return []mail.Envelope{
		internalEnvelope(1, "<i1@corp.com>"),
		internalEnvelope(2, "<i2@corp.com>"),
		internalEnvelope(3, "<i3@corp.com>"),
		externalEnvelope(4, "<e1@other.com>"),
		externalEnvelope(5, "<e2@else.org>"),
	}
}

func TestMarkReadBatchScopes(t *testing.T) {
	cases := []struct {
		scope    session.Scope
		expected []uint32
	}{
		{session.ScopeInternal, []uint32{1, 2, 3}},
		{session.ScopeExternal, []uint32{4, 5}},
		{session.ScopeAll, []uint32{1, 2, 3, 4, 5}},
	}

	for _, tc := range cases {
		t.Run(string(tc.scope), func(t *testing.T) {
			box := &mailboxMock{
				SearchFunc: func(_ context.Context, q mail.Query, _ int) ([]mail.Envelope, error) {
					require.True(t, q.UnseenOnly)
					return batchEnvelopes(), nil
				},
			}
			sess := newTestSession(box, &senderMock{})

			res, err := sess.MarkReadBatch(context.Background(), tc.scope, 0)
			require.NoError(t, err)
			assert.Equal(t, session.BatchResult{Done: len(tc.expected)}, res)
			assert.Equal(t, tc.expected, box.markSeenUIDs)
		})
	}
}

func TestArchiveBatchCountsFailures(t *testing.T) {
	box := &mailboxMock{
		SearchFunc: func(_ context.Context, _ mail.Query, _ int) ([]mail.Envelope, error) {
			return batchEnvelopes(), nil
		},
		ArchiveFunc: func(_ context.Context, uid uint32) error {
			if uid == 2 {
				return errors.New("move failed")
			}
			return nil
		},
	}
	sess := newTestSession(box, &senderMock{})

	res, err := sess.ArchiveBatch(context.Background(), session.ScopeAll, 0)
	require.NoError(t, err, "per-item failures must not abort the batch")
	assert.Equal(t, session.BatchResult{Done: 4, Failed: 1}, res)
	assert.Len(t, box.archivedUIDs, 5)
}

func TestBatchPrimesCache(t *testing.T) {
	envs := batchEnvelopes()
	box := &mailboxMock{
		SearchFunc: func(_ context.Context, _ mail.Query, _ int) ([]mail.Envelope, error) {
			return envs, nil
		},
	}
	sess := newTestSession(box, &senderMock{})

	_, err := sess.MarkReadBatch(context.Background(), session.ScopeInternal, 0)
	require.NoError(t, err)

	// Even envelopes outside the scope were recorded during the scan.
	id := identity.ShortID(envs[4])
	_, err = sess.Lookup(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, box.searchCalls)
}
