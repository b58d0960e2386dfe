package worldgen_test

import (
	"context"
	"testing"

	"esports-sim/internal/autofill"
	"esports-sim/internal/career"
	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/economy"
	"esports-sim/internal/repository"
	"esports-sim/internal/scheduler"
	"esports-sim/internal/testkit"
	"esports-sim/internal/tournament"
	"esports-sim/internal/worldgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapCareer(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	gen := worldgen.New(testkit.Session(t, s))

	p, err := gen.Bootstrap(ctx)
	require.NoError(t, err)
	assert.True(t, p.CareerMode())
	require.NotNil(t, p.PlayerID)
	assert.Zero(t, p.Season)
	assert.True(t, p.Date.Equal(constants.WorldStartDate))

	teams, err := s.ListTeams(ctx, repository.TeamFilter{})
	require.NoError(t, err)
	assert.Len(t, teams, 3*len(constants.PrestigeOrder)*constants.DivisionSize)

	slugs := map[string]bool{}
	for _, team := range teams {
		assert.False(t, slugs[team.Slug], "slug %s repeated", team.Slug)
		slugs[team.Slug] = true

		players, err := s.ListPlayersByTeam(ctx, team.ID)
		require.NoError(t, err)
		require.Len(t, players, constants.RosterSize)
		starters, snipers := 0, 0
		for _, pl := range players {
			if pl.Starter {
				starters++
			}
			if pl.Role == domain.RoleSniper {
				snipers++
			}
			assert.Positive(t, pl.Wages)
			require.NotNil(t, pl.ContractEnd)
		}
		assert.Equal(t, constants.StartersPerTeam, starters)
		assert.Equal(t, 1, snipers)
	}

	user, err := s.GetPlayer(ctx, *p.PlayerID)
	require.NoError(t, err)
	assert.Nil(t, user.TeamID)
	_, err = s.GetOpenStint(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	no := false
	due, err := s.ListEntries(ctx, repository.CalendarFilter{Completed: &no})
	require.NoError(t, err)
	types := map[domain.CalendarType]bool{}
	for _, e := range due {
		types[e.Type] = true
	}
	assert.Equal(t, map[domain.CalendarType]bool{
		domain.CalendarSeasonStart:   true,
		domain.CalendarScoutingCheck: true,
	}, types)

	again, err := gen.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.SaveID, again.SaveID)
}

func TestBootstrapTeamMode(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	sess := testkit.Session(t, s)
	sess.Config.UserTeam = "night-owls"

	p, err := worldgen.New(sess).Bootstrap(ctx)
	require.NoError(t, err)
	require.NotNil(t, p.TeamID)
	assert.Nil(t, p.PlayerID)

	team, err := s.GetTeam(ctx, *p.TeamID)
	require.NoError(t, err)
	assert.Equal(t, "night-owls", team.Slug)
	assert.Equal(t, "Night Owls", team.Name)
	assert.Zero(t, team.Tier)
}

func TestFirstMonth(t *testing.T) {
	ctx := context.Background()
	s := testkit.NewStore(t)
	sess := testkit.Session(t, s)
	sess.Config.UserTeam = "night-owls"

	_, err := worldgen.New(sess).Bootstrap(ctx)
	require.NoError(t, err)

	econ := economy.New(sess)
	orch := tournament.New(sess, autofill.New(s, sess.Logger), econ)
	sched := scheduler.New(sess, orch, career.New(sess, orch), econ)

	left := 30
	for left > 0 {
		out, err := sched.Advance(ctx, left)
		require.NoError(t, err)
		left -= out.Days
		if out.Halted && out.Reason == domain.CalendarMatchdayUser {
			require.NoError(t, sched.PlayUserMatch(ctx, out.EntryID))
		}
	}

	p, err := s.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Season)
	assert.True(t, p.Date.Equal(domain.AddDays(constants.WorldStartDate, 30)))

	season := 1
	comps, err := s.ListCompetitions(ctx, repository.CompetitionFilter{Season: &season})
	require.NoError(t, err)
	// a division and its playoffs per prestige and federation, plus the cup
	assert.Len(t, comps, 3*len(constants.PrestigeOrder)*2+1)

	played, err := s.ListMatches(ctx, repository.MatchFilter{Statuses: []domain.MatchStatus{domain.MatchCompleted}})
	require.NoError(t, err)
	assert.NotEmpty(t, played)
}
