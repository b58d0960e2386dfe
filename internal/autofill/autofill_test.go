package autofill_test

import (
	"context"
	"testing"

	"esports-sim/internal/autofill"
	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/logger"
	"esports-sim/internal/repository"
	"esports-sim/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// standings stores a completed competition where teams finished in the given
// order.
func standings(t *testing.T, s *repository.Store, tier *domain.Tier, fed *domain.Federation, season int, teams []domain.Team) {
	t.Helper()

	c := &domain.Competition{
		TierID:       tier.ID,
		FederationID: fed.ID,
		Season:       season,
		Status:       domain.CompetitionCompleted,
	}
	for i, team := range teams {
		c.Competitors = append(c.Competitors, domain.Competitor{TeamID: team.ID, Seed: i + 1, Position: i + 1})
	}
	require.NoError(t, s.CreateCompetition(context.Background(), c))
}

func division(t *testing.T, s *repository.Store, prestige int, fed *domain.Federation) *domain.Tier {
	t.Helper()
	single := 1
	return testkit.League(t, s, constants.DivisionSlug(prestige), domain.Tier{
		Slug:      constants.DivisionSlug(prestige),
		Size:      constants.DivisionSize,
		GroupSize: &single,
		Prestige:  &prestige,
	}, fed)
}

func reversed(teams []domain.Team) []domain.Team {
	out := make([]domain.Team, len(teams))
	for i, t := range teams {
		out[len(teams)-1-i] = t
	}
	return out
}

func TestResolveDivisionQuota(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	fed := testkit.Federation(t, s, "europe")

	lower := testkit.Teams(t, s, fed, 1, 10)
	middle := testkit.Teams(t, s, fed, 2, 10)
	upper := testkit.Teams(t, s, fed, 3, 10)

	standings(t, s, division(t, s, 1, fed), fed, 0, lower)
	tier := division(t, s, 2, fed)
	standings(t, s, tier, fed, 0, reversed(middle))
	standings(t, s, division(t, s, 3, fed), fed, 0, upper)

	items := constants.AutofillFor(tier.Slug, domain.OnSeasonStart)
	require.Len(t, items, 1)

	got, err := autofill.New(s, logger.Nop()).Resolve(ctx, items[0], tier, fed, 1)
	require.NoError(t, err)
	require.Len(t, got, tier.Size)

	ids := testkit.IDs(got)
	want := append(testkit.IDs(reversed(middle)[2:8]), lower[0].ID, lower[1].ID, upper[8].ID, upper[9].ID)
	assert.Equal(t, want, ids)

	seen := map[int64]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "team %d selected twice", id)
		seen[id] = true
	}
}

func TestResolveFallsBackWithoutStandings(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	fed := testkit.Federation(t, s, "europe")
	other := testkit.Federation(t, s, "asia")

	teams := testkit.Teams(t, s, fed, 2, 12)
	testkit.Teams(t, s, other, 2, 5)
	tier := division(t, s, 2, fed)

	item := constants.AutofillFor(tier.Slug, domain.OnSeasonStart)[0]
	got, err := autofill.New(s, logger.Nop()).Resolve(ctx, item, tier, fed, 1)
	require.NoError(t, err)
	assert.Equal(t, testkit.IDs(teams[:10]), testkit.IDs(got))
}

func TestResolveBackfillSkipsSelectedTeams(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	fed := testkit.Federation(t, s, "europe")

	teams := testkit.Teams(t, s, fed, 2, 10)
	tier := division(t, s, 2, fed)
	// only the middle division played last season, in reverse id order
	standings(t, s, tier, fed, 0, reversed(teams))

	item := constants.AutofillFor(tier.Slug, domain.OnSeasonStart)[0]
	got, err := autofill.New(s, logger.Nop()).Resolve(ctx, item, tier, fed, 1)
	require.NoError(t, err)

	stay := testkit.IDs(reversed(teams)[2:8])
	assert.Equal(t, stay, testkit.IDs(got[:6]))
	// backfill adds the remaining teams in id order without repeating any
	assert.Equal(t, []int64{teams[0].ID, teams[1].ID, teams[8].ID, teams[9].ID}, testkit.IDs(got[6:]))
}

func TestResolveIncludeExcludeIsSymmetric(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	fed := testkit.Federation(t, s, "europe")

	teams := testkit.Teams(t, s, fed, 0, 8)
	tier := division(t, s, 0, fed)
	standings(t, s, tier, fed, 0, teams)

	last := domain.IntPtr(-1)
	item := domain.AutofillItem{
		TierSlug: tier.Slug,
		On:       domain.OnSeasonStart,
		Entries: []domain.AutofillEntry{
			{Action: domain.AutofillInclude, From: tier.Slug, Season: last, Start: 1, End: domain.IntPtr(4)},
			{Action: domain.AutofillExclude, From: tier.Slug, Season: last, Start: 3, End: domain.IntPtr(6)},
		},
	}

	got, err := autofill.New(s, logger.Nop()).Resolve(ctx, item, tier, fed, 1)
	require.NoError(t, err)

	ids := testkit.IDs(got)
	assert.NotContains(t, ids, teams[2].ID)
	assert.NotContains(t, ids, teams[3].ID)
	// teams only in the exclude slice survive the merge
	assert.Equal(t, []int64{teams[0].ID, teams[1].ID, teams[4].ID, teams[5].ID}, ids)
}

func TestResolveCupFromPrestige(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	eu := testkit.Federation(t, s, "europe")
	as := testkit.Federation(t, s, "asia")
	world := testkit.Federation(t, s, constants.FederationWorld)

	top := len(constants.PrestigeOrder) - 1
	premier := append(testkit.Teams(t, s, eu, top, 5), testkit.Teams(t, s, as, top, 5)...)
	advanced := append(testkit.Teams(t, s, eu, top-1, 5), testkit.Teams(t, s, as, top-1, 5)...)
	testkit.Teams(t, s, eu, 0, 4)

	tier := testkit.League(t, s, constants.LeagueCup, domain.Tier{Slug: constants.TierCup, Size: constants.CupSize}, world)
	items := constants.AutofillFor(constants.TierCup, domain.OnSeasonStart)
	require.Len(t, items, 1)

	got, err := autofill.New(s, logger.Nop()).Resolve(ctx, items[0], tier, world, 1)
	require.NoError(t, err)
	require.Len(t, got, constants.CupSize)

	want := append(testkit.IDs(premier[:8]), testkit.IDs(advanced[:8])...)
	assert.Equal(t, want, testkit.IDs(got))
}

func TestResolveEmptyPlayoffAtSeasonStart(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	fed := testkit.Federation(t, s, "europe")
	tier := testkit.League(t, s, constants.PlayoffSlug(0), domain.Tier{Slug: constants.PlayoffSlug(0), Size: constants.PlayoffSize}, fed)

	items := constants.AutofillFor(tier.Slug, domain.OnSeasonStart)
	require.Len(t, items, 1)
	got, err := autofill.New(s, logger.Nop()).Resolve(ctx, items[0], tier, fed, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}
