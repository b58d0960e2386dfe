package mail_test

import (
	"context"
	"testing"

	"esports-sim/internal/domain"
	"esports-sim/internal/logger"
	"esports-sim/internal/mail"
	"esports-sim/internal/repository"
	"esports-sim/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	m := mail.New(nil, logger.Nop())

	subject, body, err := m.Render(mail.Message{
		Template: mail.TemplateKicked,
		Data:     map[string]any{"Team": "Ninjas", "Player": "flusha"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Released by Ninjas", subject)
	assert.Contains(t, body, "flusha")

	_, _, err = m.Render(mail.Message{Template: mail.TemplateKicked, Data: map[string]any{"Team": "Ninjas"}})
	assert.Error(t, err, "missing fields must not render silently")

	_, _, err = m.Render(mail.Message{Template: "nope"})
	assert.Error(t, err)
}

func TestScheduleAndDeliver(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	m := mail.New(s, logger.Nop())

	when := domain.AddDays(testkit.Today, 2)
	e, err := m.Schedule(ctx, when, mail.Message{
		Template: mail.TemplateWelcome,
		From:     "League Office",
		Data:     map[string]any{"Season": 1, "Date": "2026-01-12"},
	})
	require.NoError(t, err)
	assert.Len(t, e.ID, 21)

	inbox, err := s.ListEmails(ctx)
	require.NoError(t, err)
	assert.Empty(t, inbox, "scheduled mail is not delivered yet")

	no := false
	types := []domain.CalendarType{domain.CalendarEmailSend}
	entries, err := s.ListEntries(ctx, repository.CalendarFilter{Types: types, Completed: &no})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e.ID, entries[0].Payload)
	assert.True(t, entries[0].Date.Equal(when))

	require.NoError(t, m.Deliver(ctx, e.ID))
	require.NoError(t, m.Deliver(ctx, e.ID))
	inbox, err = s.ListEmails(ctx)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)

	assert.ErrorIs(t, m.Deliver(ctx, "missing"), repository.ErrNotFound)
}

func TestSendMany(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	m := mail.New(s, logger.Nop())

	var msgs []mail.Message
	for _, team := range []string{"A", "B", "C", "D", "E", "F"} {
		msgs = append(msgs, mail.Message{
			Template: mail.TemplateContractExpired,
			Data:     map[string]any{"Team": team, "Player": "p"},
		})
	}
	require.NoError(t, m.SendMany(ctx, testkit.Today, msgs))

	inbox, err := s.ListEmails(ctx)
	require.NoError(t, err)
	assert.Len(t, inbox, 6)
}
