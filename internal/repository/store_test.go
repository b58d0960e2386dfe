package repository_test

import (
	"context"
	"errors"
	"testing"

	"esports-sim/internal/domain"
	"esports-sim/internal/repository"
	"esports-sim/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	fed := testkit.Federation(t, s, "europe")
	team := testkit.Teams(t, s, fed, 0, 1)[0]

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.IncrementEarnings(ctx, team.ID, 500))
		require.NoError(t, s.UpdateTeamTier(ctx, team.ID, 3))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Earnings)
	assert.Equal(t, 0, got.Tier)

	require.NoError(t, s.InTx(ctx, func(ctx context.Context) error {
		return s.InTx(ctx, func(ctx context.Context) error {
			return s.IncrementEarnings(ctx, team.ID, 250)
		})
	}))
	got, err = s.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), got.Earnings)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)

	_, err := s.GetProfile(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.GetTeam(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.FindCompetition(ctx, "circuit:open", 1, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	p := testkit.Profile(t, s, nil, nil)

	p.Season = 2
	p.Date = domain.AddDays(p.Date, 3)
	p.Settings.SimFidelity = "detailed"
	require.NoError(t, s.UpdateProfile(ctx, p))

	got, err := s.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Season)
	assert.True(t, got.Date.Equal(domain.AddDays(testkit.Today, 3)))
	assert.Equal(t, "detailed", got.Settings.SimFidelity)
	assert.True(t, got.CareerMode())
}

func TestScheduleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)

	a := domain.NewEntry(testkit.Today, domain.CalendarCompetitionStart, domain.IDPayload{ID: 7})
	require.NoError(t, s.Schedule(ctx, &a))
	b := domain.NewEntry(testkit.Today, domain.CalendarCompetitionStart, domain.IDPayload{ID: 7})
	require.NoError(t, s.Schedule(ctx, &b))
	assert.Equal(t, a.ID, b.ID)

	require.NoError(t, s.CompleteEntry(ctx, a.ID))
	due, err := s.ListDue(ctx, testkit.Today)
	require.NoError(t, err)
	assert.Empty(t, due)

	// rescheduling re-arms a completed entry
	require.NoError(t, s.Schedule(ctx, &b))
	due, err = s.ListDue(ctx, testkit.Today)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "7", due[0].Payload)
}

func TestListDueOrder(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)

	entries := []domain.CalendarEntry{
		domain.NewEntry(testkit.Today, domain.CalendarMatchdayNPC, domain.IDPayload{ID: 2}),
		domain.NewEntry(domain.AddDays(testkit.Today, -1), domain.CalendarEmailSend, domain.EmailPayload{EmailID: "x"}),
		domain.NewEntry(testkit.Today, domain.CalendarMatchdayNPC, domain.IDPayload{ID: 1}),
		domain.NewEntry(domain.AddDays(testkit.Today, 1), domain.CalendarSeasonStart, domain.NoPayload{}),
	}
	for i := range entries {
		require.NoError(t, s.Schedule(ctx, &entries[i]))
	}

	due, err := s.ListDue(ctx, testkit.Today)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, domain.CalendarEmailSend, due[0].Type)
	assert.Equal(t, "2", due[1].Payload, "same day entries fire in creation order")
	assert.Equal(t, "1", due[2].Payload)

	contract := domain.ContractPayload{PlayerID: 1, TeamID: 2}.Encode()
	e := domain.NewEntry(testkit.Today, domain.CalendarContractReview, domain.ContractPayload{PlayerID: 1, TeamID: 2})
	require.NoError(t, s.Schedule(ctx, &e))
	n, err := s.CompleteEntries(ctx, repository.CalendarFilter{Types: domain.ContractTypes, Payload: &contract})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOpenStintClosesPrevious(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	fed := testkit.Federation(t, s, "europe")
	teams := testkit.Teams(t, s, fed, 1, 2)

	players, err := s.ListPlayersByTeam(ctx, teams[0].ID)
	require.NoError(t, err)
	p := players[0]

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.OpenStint(ctx, &domain.CareerStint{
			PlayerID: p.ID, TeamID: teams[i%2].ID, Tier: 1, StartedAt: domain.AddDays(testkit.Today, i),
		}))
	}

	stints, err := s.ListStints(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stints, 4)
	open := 0
	for _, st := range stints {
		if st.EndedAt == nil {
			open++
		}
	}
	assert.Equal(t, 1, open)

	cur, err := s.GetOpenStint(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, teams[1].ID, cur.TeamID)
}

func TestTransferStatusIsMonotonic(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	fed := testkit.Federation(t, s, "europe")
	teams := testkit.Teams(t, s, fed, 1, 2)
	players, err := s.ListPlayersByTeam(ctx, teams[0].ID)
	require.NoError(t, err)

	tr := &domain.Transfer{
		PlayerID:   players[0].ID,
		FromTeamID: teams[1].ID,
		ToTeamID:   &teams[0].ID,
		Status:     domain.TransferPlayerPending,
		CreatedAt:  testkit.Today,
		Offers: []domain.Offer{{
			Wages: 100, Cost: 300, ContractYears: 1, ExpiresAt: domain.AddDays(testkit.Today, 7),
			Status: domain.TransferPlayerPending, CreatedAt: testkit.Today,
		}},
	}
	require.NoError(t, s.CreateTransfer(ctx, tr))

	changed, err := s.SetTransferStatus(ctx, tr, domain.TransferExpired)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.SetTransferStatus(ctx, tr, domain.TransferPlayerAccepted)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := s.GetTransfer(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferExpired, got.Status)
	assert.Equal(t, domain.TransferExpired, got.Latest().Status)
}

func TestCompetitionQueries(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	fed := testkit.Federation(t, s, "europe")
	prestige := 2
	tier := testkit.League(t, s, "circuit", domain.Tier{Slug: "circuit:main", Size: 4, Prestige: &prestige}, fed)
	teams := testkit.Teams(t, s, fed, 2, 4)

	c := &domain.Competition{TierID: tier.ID, FederationID: fed.ID, Season: 1, Status: domain.CompetitionScheduled}
	for i, team := range teams[:3] {
		c.Competitors = append(c.Competitors, domain.Competitor{TeamID: team.ID, Position: i + 1})
	}
	require.NoError(t, s.CreateCompetition(ctx, c))
	require.NoError(t, s.AddCompetitors(ctx, c.ID, []int64{teams[2].ID, teams[3].ID}))

	got, err := s.FindCompetition(ctx, "circuit:main", 1, &fed.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Len(t, got.Competitors, 4)
	assert.Equal(t, "circuit", got.Tier.League.Slug)

	st, err := s.GetDivisionStanding(ctx, teams[1].ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Prestige)
	assert.Equal(t, 2, st.Competitor.Position)

	_, err = s.GetDivisionStanding(ctx, teams[1].ID, 2)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRetypeEntryKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)

	match := domain.NewEntry(testkit.Today, domain.CalendarMatchdayNPC, domain.IDPayload{ID: 3})
	require.NoError(t, s.Schedule(ctx, &match))
	end := domain.NewEntry(testkit.Today, domain.CalendarCompetitionEnd, domain.IDPayload{ID: 1})
	require.NoError(t, s.Schedule(ctx, &end))

	id := match.ID
	require.NoError(t, s.RetypeEntry(ctx, &match, domain.CalendarMatchdayUser))
	assert.Equal(t, id, match.ID)
	assert.Equal(t, domain.CalendarMatchdayUser, match.Type)

	due, err := s.ListDue(ctx, testkit.Today)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, domain.CalendarMatchdayUser, due[0].Type, "a retyped matchday still fires before the competition end")
	assert.Equal(t, domain.CalendarCompetitionEnd, due[1].Type)

	// and back again
	require.NoError(t, s.RetypeEntry(ctx, &match, domain.CalendarMatchdayNPC))
	got, err := s.GetEntry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.CalendarMatchdayNPC, got.Type)
	assert.False(t, got.Completed)

	missing := domain.CalendarEntry{ID: 999, Type: domain.CalendarMatchdayNPC}
	assert.ErrorIs(t, s.RetypeEntry(ctx, &missing, domain.CalendarMatchdayUser), repository.ErrNotFound)
}
