package scheduler_test

import (
	"context"
	"testing"

	"esports-sim/internal/autofill"
	"esports-sim/internal/career"
	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/economy"
	"esports-sim/internal/mail"
	"esports-sim/internal/repository"
	"esports-sim/internal/scheduler"
	"esports-sim/internal/testkit"
	"esports-sim/internal/tournament"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduler(t *testing.T, s *repository.Store) *scheduler.Scheduler {
	t.Helper()
	sess := testkit.Session(t, s)
	econ := economy.New(sess)
	orch := tournament.New(sess, autofill.New(s, sess.Logger), econ)
	return scheduler.New(sess, orch, career.New(sess, orch), econ)
}

func schedule(t *testing.T, s *repository.Store, e domain.CalendarEntry) domain.CalendarEntry {
	t.Helper()
	require.NoError(t, s.Schedule(context.Background(), &e))
	return e
}

func entry(t *testing.T, s *repository.Store, id int64) *domain.CalendarEntry {
	t.Helper()
	e, err := s.GetEntry(context.Background(), id)
	require.NoError(t, err)
	return e
}

func today(t *testing.T, s *repository.Store) *domain.Profile {
	t.Helper()
	p, err := s.GetProfile(context.Background())
	require.NoError(t, err)
	return p
}

func TestAdvanceMovesDate(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	testkit.Profile(t, s, nil, nil)

	out, err := newScheduler(t, s).Advance(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, scheduler.Outcome{Days: 5}, out)
	assert.True(t, today(t, s).Date.Equal(domain.AddDays(testkit.Today, 5)))
}

func TestAdvanceDeliversEmail(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	testkit.Profile(t, s, nil, nil)
	sess := testkit.Session(t, s)

	e, err := sess.Mail.Schedule(ctx, domain.AddDays(testkit.Today, 2), mail.Message{
		Template: mail.TemplateWelcome,
		From:     "League Office",
		Data:     map[string]any{"Season": 1, "Date": "2026-01-07"},
	})
	require.NoError(t, err)

	sched := newScheduler(t, s)
	_, err = sched.Advance(ctx, 2)
	require.NoError(t, err)
	emails, err := s.ListEmails(ctx)
	require.NoError(t, err)
	assert.Empty(t, emails)

	_, err = sched.Advance(ctx, 1)
	require.NoError(t, err)
	emails, err = s.ListEmails(ctx)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, e.ID, emails[0].ID)
}

func TestAdvanceSkipsStaleEntries(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	testkit.Profile(t, s, nil, nil)

	stale := []domain.CalendarEntry{
		schedule(t, s, domain.NewEntry(testkit.Today, domain.CalendarCompetitionStart, domain.IDPayload{ID: 999})),
		schedule(t, s, domain.NewEntry(testkit.Today, domain.CalendarMatchdayNPC, domain.IDPayload{ID: 999})),
		schedule(t, s, domain.NewEntry(testkit.Today, domain.CalendarTransferOfferExpiry, domain.IDPayload{ID: 999})),
		schedule(t, s, domain.NewEntry(testkit.Today, domain.CalendarSponsorshipPayment, domain.IDPayload{ID: 999})),
		schedule(t, s, domain.NewEntry(testkit.Today, domain.CalendarContractReview, domain.ContractPayload{PlayerID: 999, TeamID: 1})),
		schedule(t, s, domain.CalendarEntry{Date: testkit.Today, Type: domain.CalendarContractExpire, Payload: "not json"}),
	}

	out, err := newScheduler(t, s).Advance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Days)
	for _, e := range stale {
		assert.True(t, entry(t, s, e.ID).Completed, "%s entry", e.Type)
	}
}

func TestAdvanceStartsSeason(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	testkit.Profile(t, s, nil, nil)
	e := schedule(t, s, domain.NewEntry(testkit.Today, domain.CalendarSeasonStart, domain.NoPayload{}))

	_, err := newScheduler(t, s).Advance(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, today(t, s).Season)
	assert.True(t, entry(t, s, e.ID).Completed)

	next, err := s.ListEntries(ctx, repository.CalendarFilter{Types: []domain.CalendarType{domain.CalendarSeasonStart}})
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.True(t, next[1].Date.Equal(domain.AddDays(testkit.Today, constants.SeasonLength)))
}

func TestAdvanceHaltsOnUserMatchday(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	fed := testkit.Federation(t, s, "europe")
	teams := testkit.Teams(t, s, fed, 0, 2)
	tier := testkit.League(t, s, "knockout", domain.Tier{Slug: "knockout:main", Size: 2}, fed)
	testkit.Profile(t, s, &teams[0].ID, nil)

	comp := &domain.Competition{TierID: tier.ID, FederationID: fed.ID, Season: 1, Status: domain.CompetitionScheduled}
	for i, team := range teams {
		comp.Competitors = append(comp.Competitors, domain.Competitor{TeamID: team.ID, Seed: i + 1})
	}
	require.NoError(t, s.CreateCompetition(ctx, comp))
	schedule(t, s, domain.NewEntry(testkit.Today, domain.CalendarCompetitionStart, domain.IDPayload{ID: comp.ID}))

	sched := newScheduler(t, s)
	out, err := sched.Advance(ctx, 30)
	require.NoError(t, err)
	require.True(t, out.Halted)
	assert.Equal(t, domain.CalendarMatchdayUser, out.Reason)

	halted := entry(t, s, out.EntryID)
	assert.False(t, halted.Completed)
	assert.True(t, today(t, s).Date.Equal(halted.Date), "the date does not move past the matchday")

	// advancing again without playing halts on the same entry
	again, err := sched.Advance(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, out.EntryID, again.EntryID)
	assert.Zero(t, again.Days)

	require.NoError(t, sched.PlayUserMatch(ctx, out.EntryID))
	assert.True(t, entry(t, s, out.EntryID).Completed)

	out, err = sched.Advance(ctx, 30)
	require.NoError(t, err)
	assert.False(t, out.Halted)
	assert.Equal(t, 30, out.Days)

	done, err := s.GetCompetition(ctx, comp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CompetitionCompleted, done.Status)
}

func TestAdvancePausesOnExpiringOffer(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	fed := testkit.Federation(t, s, "europe")
	teams := testkit.Teams(t, s, fed, 1, 2)
	user := testkit.Player(t, s, nil, domain.RoleRifler, false, 40)
	testkit.Profile(t, s, nil, &user.ID)

	tr := &domain.Transfer{
		PlayerID:   user.ID,
		FromTeamID: teams[1].ID,
		Status:     domain.TransferPlayerPending,
		CreatedAt:  testkit.Today,
		Offers: []domain.Offer{{
			Wages:         1500,
			Cost:          3000,
			ContractYears: 1,
			ExpiresAt:     domain.AddDays(testkit.Today, 2),
			Status:        domain.TransferPlayerPending,
			CreatedAt:     testkit.Today,
		}},
	}
	require.NoError(t, s.CreateTransfer(ctx, tr))
	warn := schedule(t, s, domain.NewEntry(domain.AddDays(testkit.Today, 1), domain.CalendarTransferOfferWarning, domain.IDPayload{ID: tr.ID}))
	schedule(t, s, domain.NewEntry(domain.AddDays(testkit.Today, 2), domain.CalendarTransferOfferExpiry, domain.IDPayload{ID: tr.ID}))

	sched := newScheduler(t, s)
	out, err := sched.Advance(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, scheduler.Outcome{Days: 1, Halted: true, Reason: domain.CalendarTransferOfferWarning, EntryID: warn.ID}, out)
	assert.True(t, entry(t, s, warn.ID).Completed)

	// the warning fired once; the offer lapses on its expiry date
	out, err = sched.Advance(ctx, 7)
	require.NoError(t, err)
	assert.False(t, out.Halted)

	got, err := s.GetTransfer(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferExpired, got.Status)
}

func TestAdvanceSendsSummaryAfterUserFinal(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	fed := testkit.Federation(t, s, "europe")
	teams := testkit.Teams(t, s, fed, 0, 4)
	require.NoError(t, s.UpdateTeamElo(ctx, teams[0].ID, 5000))
	tier := testkit.League(t, s, "knockout", domain.Tier{Slug: "knockout:main", Size: 4}, fed)
	testkit.Profile(t, s, &teams[0].ID, nil)

	comp := &domain.Competition{TierID: tier.ID, FederationID: fed.ID, Season: 1, Status: domain.CompetitionScheduled}
	for i, team := range teams {
		comp.Competitors = append(comp.Competitors, domain.Competitor{TeamID: team.ID, Seed: i + 1})
	}
	require.NoError(t, s.CreateCompetition(ctx, comp))
	schedule(t, s, domain.NewEntry(testkit.Today, domain.CalendarCompetitionStart, domain.IDPayload{ID: comp.ID}))

	// the final only learns it holds the user team once the semifinal is
	// recorded, after the competition end was scheduled
	sched := newScheduler(t, s)
	left := 40
	for left > 0 {
		out, err := sched.Advance(ctx, left)
		require.NoError(t, err)
		left -= out.Days
		if !out.Halted {
			break
		}
		require.Equal(t, domain.CalendarMatchdayUser, out.Reason)
		require.NoError(t, sched.PlayUserMatch(ctx, out.EntryID))
	}

	done, err := s.GetCompetition(ctx, comp.ID)
	require.NoError(t, err)
	require.Equal(t, domain.CompetitionCompleted, done.Status)

	emails, err := s.ListEmails(ctx)
	require.NoError(t, err)
	var summaries []domain.Email
	for _, e := range emails {
		if e.Subject == tier.Name+" finished" {
			summaries = append(summaries, e)
		}
	}
	require.Len(t, summaries, 1)
	assert.Contains(t, summaries[0].Body, teams[0].Name)
}
