// Package testkit builds throwaway saves for tests.
package testkit

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"esports-sim/internal/chance"
	"esports-sim/internal/config"
	"esports-sim/internal/constants"
	"esports-sim/internal/database"
	"esports-sim/internal/domain"
	"esports-sim/internal/logger"
	"esports-sim/internal/mail"
	"esports-sim/internal/repository"
	"esports-sim/internal/session"
	"esports-sim/internal/simulator"

	"github.com/stretchr/testify/require"
)

// Today is the start date used by fixtures.
var Today = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

// NewStore opens a migrated save in a temp directory.
func NewStore(t testing.TB) *repository.Store {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "save.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return repository.NewStore(db, logger.Nop())
}

// Session wires a deterministic session around s.
func Session(t testing.TB, s *repository.Store) *session.Session {
	t.Helper()

	cfg := &config.Config{
		MapPool:     constants.DefaultMapPool,
		SimFidelity: config.FidelityFast,
		AdvanceDays: 7,
		Workers:     2,
	}
	rand := chance.New(1)
	log := logger.Nop()
	return session.New(s, rand, cfg, mail.New(s, log), simulator.New(rand, log), log)
}

// Profile creates the save's profile on Today in season 1.
func Profile(t testing.TB, s *repository.Store, teamID, playerID *int64) *domain.Profile {
	t.Helper()

	p := &domain.Profile{
		SaveID:   "test",
		Date:     Today,
		Season:   1,
		TeamID:   teamID,
		PlayerID: playerID,
		Settings: domain.Settings{SimFidelity: "fast", MapPool: constants.DefaultMapPool},
	}
	require.NoError(t, s.CreateProfile(context.Background(), p))
	return p
}

func Federation(t testing.TB, s *repository.Store, slug string) *domain.Federation {
	t.Helper()

	f := &domain.Federation{Slug: slug, Name: slug}
	require.NoError(t, s.CreateFederation(context.Background(), f))
	return f
}

// League creates a league over feds with a single tier.
func League(t testing.TB, s *repository.Store, slug string, tier domain.Tier, feds ...*domain.Federation) *domain.Tier {
	t.Helper()
	ctx := context.Background()

	l := &domain.League{Slug: slug, Name: slug, StartOffsetDays: 7}
	for _, f := range feds {
		l.FederationIDs = append(l.FederationIDs, f.ID)
	}
	require.NoError(t, s.CreateLeague(ctx, l))

	tier.LeagueID = l.ID
	if tier.Name == "" {
		tier.Name = tier.Slug
	}
	require.NoError(t, s.CreateTier(ctx, &tier))

	out, err := s.GetTier(ctx, tier.ID)
	require.NoError(t, err)
	return out
}

// Teams creates n teams in the federation at the given prestige, each with a
// full roster of contracted starters and one benched player.
func Teams(t testing.TB, s *repository.Store, fed *domain.Federation, tier, n int) []domain.Team {
	t.Helper()
	ctx := context.Background()

	out := make([]domain.Team, 0, n)
	for i := 0; i < n; i++ {
		team := domain.Team{
			Name:         fmt.Sprintf("%s %d-%d", fed.Slug, tier, i+1),
			Slug:         fmt.Sprintf("%s-%d-%d", fed.Slug, tier, i+1),
			FederationID: fed.ID,
			Tier:         tier,
			Elo:          constants.EloStart,
		}
		require.NoError(t, s.CreateTeam(ctx, &team))
		for j := 0; j < constants.RosterSize; j++ {
			role := domain.RoleRifler
			if j == 0 {
				role = domain.RoleSniper
			}
			Player(t, s, &team, role, j < constants.StartersPerTeam, 50+j)
		}
		out = append(out, team)
	}
	return out
}

// Player signs a new player to team (or leaves them a free agent when team is
// nil) with a one-year contract and an open career stint.
func Player(t testing.TB, s *repository.Store, team *domain.Team, role domain.Role, starter bool, xp int) *domain.Player {
	t.Helper()
	ctx := context.Background()

	p := &domain.Player{
		Name:    fmt.Sprintf("%s-%d", role, xp),
		Country: "SE",
		Role:    role,
		Starter: starter,
		XP:      xp,
		Wages:   1000,
		Cost:    3000,
	}
	if team != nil {
		end := domain.AddDays(Today, constants.SeasonLength)
		p.FederationID = team.FederationID
		p.TeamID = &team.ID
		p.ContractEnd = &end
	} else {
		fed, err := s.ListFederations(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, fed)
		p.FederationID = fed[0].ID
	}
	require.NoError(t, s.CreatePlayer(ctx, p))

	if team != nil {
		require.NoError(t, s.OpenStint(ctx, &domain.CareerStint{
			PlayerID: p.ID, TeamID: team.ID, Tier: team.Tier, StartedAt: Today,
		}))
	}
	return p
}

// IDs returns the ids of teams in order.
func IDs(teams []domain.Team) []int64 {
	out := make([]int64, len(teams))
	for i, t := range teams {
		out[i] = t.ID
	}
	return out
}
