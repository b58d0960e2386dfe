package economy_test

import (
	"context"
	"testing"

	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/economy"
	"esports-sim/internal/repository"
	"esports-sim/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayouts(t *testing.T) {
	pool := constants.PrizePool{Total: 1000, Distribution: []float64{50, 30, 20}}
	competitors := []domain.Competitor{
		{TeamID: 1, Position: 1},
		{TeamID: 2, Position: 2},
		{TeamID: 3, Position: 3},
		{TeamID: 4, Position: 4},
		{TeamID: 5, Position: 0},
	}

	got := economy.Payouts(pool, competitors)
	assert.Equal(t, map[int64]int64{1: 500, 2: 300, 3: 200}, got)
}

func TestDistributePrizes(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	svc := economy.New(testkit.Session(t, s))
	fed := testkit.Federation(t, s, "europe")
	teams := testkit.Teams(t, s, fed, 0, 4)

	var competitors []domain.Competitor
	for i, team := range teams {
		competitors = append(competitors, domain.Competitor{TeamID: team.ID, Position: i + 1})
	}
	slug := constants.DivisionSlug(0)

	paid, err := svc.DistributePrizes(ctx, slug, false, competitors)
	require.NoError(t, err)
	assert.Nil(t, paid, "nothing is paid before the competition is decided")

	paid, err = svc.DistributePrizes(ctx, slug, true, competitors)
	require.NoError(t, err)
	assert.Len(t, paid, 3)

	want := []int64{2500, 1500, 1000, 0}
	for i, team := range teams {
		got, err := s.GetTeam(ctx, team.ID)
		require.NoError(t, err)
		assert.Equal(t, want[i], got.Earnings, "position %d", i+1)
	}

	paid, err = svc.DistributePrizes(ctx, "no-such-tier", true, competitors)
	require.NoError(t, err)
	assert.Nil(t, paid)
}

func TestRatings(t *testing.T) {
	assert.InDelta(t, 0.5, economy.Expected(1000, 1000), 1e-9)
	assert.Greater(t, economy.Expected(1200, 1000), 0.75)

	tests := []struct {
		name   string
		result domain.MatchResult
		up     bool
	}{
		{"win", domain.ResultWin, true},
		{"loss", domain.ResultLoss, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := economy.Ratings(1000, 1000, economy.Score(tt.result))
			assert.InDelta(t, 2000, a+b, 1e-9, "elo is zero-sum")
			assert.Equal(t, tt.up, a > 1000)
			assert.InDelta(t, constants.EloK/2, abs(a-1000), 1e-9)
		})
	}

	a, b := economy.Ratings(1100, 1000, economy.Score(domain.ResultDraw))
	assert.Less(t, a, 1100.0, "a favourite drawing loses rating")
	assert.Greater(t, b, 1000.0)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestUpdateElo(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	svc := economy.New(testkit.Session(t, s))
	fed := testkit.Federation(t, s, "europe")
	teams := testkit.Teams(t, s, fed, 0, 2)

	require.NoError(t, svc.UpdateElo(ctx, &teams[0], &teams[1], domain.ResultWin))
	home, err := s.GetTeam(ctx, teams[0].ID)
	require.NoError(t, err)
	away, err := s.GetTeam(ctx, teams[1].ID)
	require.NoError(t, err)
	assert.InDelta(t, constants.EloStart+constants.EloK/2, home.Elo, 1e-9)
	assert.InDelta(t, constants.EloStart-constants.EloK/2, away.Elo, 1e-9)
}

func TestSyncTiers(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	svc := economy.New(testkit.Session(t, s))
	fed := testkit.Federation(t, s, "europe")
	teams := testkit.Teams(t, s, fed, 0, 3)

	prestige := 2
	div := testkit.League(t, s, "circuit", domain.Tier{Slug: constants.DivisionSlug(2), Size: 10, Prestige: &prestige}, fed)
	cup := testkit.League(t, s, "cup", domain.Tier{Slug: constants.TierCup, Size: 16}, fed)

	require.NoError(t, s.CreateCompetition(ctx, &domain.Competition{
		TierID: div.ID, FederationID: fed.ID, Season: 1, Status: domain.CompetitionScheduled,
		Competitors: []domain.Competitor{{TeamID: teams[0].ID}, {TeamID: teams[1].ID}},
	}))
	require.NoError(t, s.CreateCompetition(ctx, &domain.Competition{
		TierID: cup.ID, FederationID: fed.ID, Season: 1, Status: domain.CompetitionScheduled,
		Competitors: []domain.Competitor{{TeamID: teams[2].ID}},
	}))

	require.NoError(t, svc.SyncTiers(ctx, 1))

	got, err := s.ListTeams(ctx, repository.TeamFilter{IDs: testkit.IDs(teams)})
	require.NoError(t, err)
	assert.Equal(t, 2, got[0].Tier)
	assert.Equal(t, 2, got[1].Tier)
	assert.Equal(t, 0, got[2].Tier, "cups do not set prestige")
}

func TestSyncWages(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	svc := economy.New(testkit.Session(t, s))
	fed := testkit.Federation(t, s, "europe")
	team := testkit.Teams(t, s, fed, 4, 1)[0]

	require.NoError(t, svc.SyncWages(ctx, team.ID))

	players, err := s.ListPlayersByTeam(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, players, constants.RosterSize)
	for _, p := range players {
		assert.GreaterOrEqual(t, p.Wages, int64(10_000))
		assert.LessOrEqual(t, p.Wages, int64(100_000))
		assert.GreaterOrEqual(t, p.Cost, p.Wages*5)
	}
}

func TestSponsorshipLifecycle(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	sess := testkit.Session(t, s)
	svc := economy.New(sess)
	fed := testkit.Federation(t, s, "europe")
	team := testkit.Teams(t, s, fed, 0, 1)[0]
	p := testkit.Profile(t, s, &team.ID, nil)

	sp, err := svc.ApplySponsorship(ctx, team.ID, "byteforge")
	require.NoError(t, err)
	_, err = svc.ApplySponsorship(ctx, team.ID, "byteforge")
	assert.ErrorIs(t, err, economy.ErrSponsorshipExists)
	_, err = svc.ApplySponsorship(ctx, team.ID, "nope")
	assert.ErrorIs(t, err, economy.ErrUnknownSponsor)

	require.NoError(t, svc.RespondSponsorship(ctx, sp.ID))
	got, err := s.GetSponsorship(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SponsorshipActive, got.Status)

	// answering twice is a no-op
	require.NoError(t, svc.RespondSponsorship(ctx, sp.ID))

	no := false
	payments, err := s.ListEntries(ctx, repository.CalendarFilter{
		Types: []domain.CalendarType{domain.CalendarSponsorshipPayment}, Completed: &no,
	})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Date.Equal(domain.AddDays(p.Date, 7)))

	p.Date = payments[0].Date
	require.NoError(t, s.UpdateProfile(ctx, p))
	require.NoError(t, svc.PaySponsorship(ctx, sp.ID))

	paid, err := s.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(400), paid.Earnings)

	next := domain.AddDays(p.Date, 7)
	payload := domain.IDPayload{ID: sp.ID}.Encode()
	entries, err := s.ListEntries(ctx, repository.CalendarFilter{
		Types: []domain.CalendarType{domain.CalendarSponsorshipPayment}, Payload: &payload, From: &next, To: &next,
	})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRespondSponsorshipRejectsLowTier(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	svc := economy.New(testkit.Session(t, s))
	fed := testkit.Federation(t, s, "europe")
	team := testkit.Teams(t, s, fed, 0, 1)[0]
	testkit.Profile(t, s, &team.ID, nil)

	sp, err := svc.ApplySponsorship(ctx, team.ID, "northwind")
	require.NoError(t, err)
	require.NoError(t, svc.RespondSponsorship(ctx, sp.ID))

	got, err := s.GetSponsorship(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SponsorshipRejected, got.Status)

	inbox, err := s.ListEmails(ctx)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Northwind Motors passed", inbox[0].Subject)
}

func TestCheckSponsorshipsTerminatesOnFailedRequirement(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	svc := economy.New(testkit.Session(t, s))
	fed := testkit.Federation(t, s, "europe")
	teams := testkit.Teams(t, s, fed, 2, 10)
	team := teams[9]
	testkit.Profile(t, s, &team.ID, nil)

	prestige := 2
	div := testkit.League(t, s, "circuit", domain.Tier{Slug: constants.DivisionSlug(2), Size: 10, Prestige: &prestige}, fed)
	c := &domain.Competition{TierID: div.ID, FederationID: fed.ID, Season: 1, Status: domain.CompetitionCompleted}
	for i, tm := range teams {
		c.Competitors = append(c.Competitors, domain.Competitor{TeamID: tm.ID, Seed: i + 1, Position: i + 1})
	}
	require.NoError(t, s.CreateCompetition(ctx, c))

	sp := &domain.Sponsorship{
		TeamID:  team.ID,
		Sponsor: "voltcola",
		Status:  domain.SponsorshipActive,
		Offers: []domain.SponsorshipOffer{{
			Amount: 6000, Frequency: domain.FrequencyMonthly, Start: testkit.Today,
			End: domain.AddDays(testkit.Today, 700), Status: domain.SponsorshipActive,
		}},
	}
	require.NoError(t, s.CreateSponsorship(ctx, sp))

	// tenth place misses the top-eight requirement
	require.NoError(t, svc.CheckSponsorships(ctx, team.ID, 1))

	got, err := s.GetSponsorship(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SponsorshipTerminated, got.Status)

	earned, err := s.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Zero(t, earned.Earnings)
}

func TestCheckSponsorshipsPaysBestPlacementBonus(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	svc := economy.New(testkit.Session(t, s))
	fed := testkit.Federation(t, s, "europe")
	teams := testkit.Teams(t, s, fed, 2, 4)
	team := teams[0]
	testkit.Profile(t, s, &team.ID, nil)

	prestige := 2
	div := testkit.League(t, s, "circuit", domain.Tier{Slug: constants.DivisionSlug(2), Size: 10, Prestige: &prestige}, fed)
	c := &domain.Competition{TierID: div.ID, FederationID: fed.ID, Season: 1, Status: domain.CompetitionCompleted}
	for i, tm := range teams {
		c.Competitors = append(c.Competitors, domain.Competitor{TeamID: tm.ID, Seed: i + 1, Position: i + 1})
	}
	require.NoError(t, s.CreateCompetition(ctx, c))
	require.NoError(t, s.CreateSponsorship(ctx, &domain.Sponsorship{
		TeamID:  team.ID,
		Sponsor: "voltcola",
		Status:  domain.SponsorshipActive,
		Offers: []domain.SponsorshipOffer{{
			Amount: 6000, Frequency: domain.FrequencyMonthly, Start: testkit.Today,
			End: domain.AddDays(testkit.Today, 700), Status: domain.SponsorshipActive,
		}},
	}))

	require.NoError(t, svc.CheckSponsorships(ctx, team.ID, 1))

	earned, err := s.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20_000), earned.Earnings, "first place pays the winner bonus only")
}
