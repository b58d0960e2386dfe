// Package session holds what every operation on a loaded save needs.
package session

import (
	"context"
	"fmt"

	"esports-sim/internal/chance"
	"esports-sim/internal/config"
	"esports-sim/internal/domain"
	"esports-sim/internal/mail"
	"esports-sim/internal/repository"
	"esports-sim/internal/simulator"

	"github.com/rs/zerolog"
)

type Session struct {
	Store  *repository.Store
	Rand   *chance.Source
	Config *config.Config
	Mail   *mail.Mailer
	Sim    *simulator.Simulator
	Logger zerolog.Logger
}

func New(store *repository.Store, rand *chance.Source, cfg *config.Config, mailer *mail.Mailer, sim *simulator.Simulator, logger zerolog.Logger) *Session {
	return &Session{
		Store:  store,
		Rand:   rand,
		Config: cfg,
		Mail:   mailer,
		Sim:    sim,
		Logger: logger,
	}
}

// Profile reloads the save's profile.
func (s *Session) Profile(ctx context.Context) (*domain.Profile, error) {
	p, err := s.Store.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

// UserTeamID returns the team the user plays matches for: the managed team,
// or in career mode the user's team while they are a starter. Zero means the
// user has no matches to play.
func (s *Session) UserTeamID(ctx context.Context) (int64, error) {
	p, err := s.Profile(ctx)
	if err != nil {
		return 0, err
	}
	return s.userTeamID(ctx, p)
}

func (s *Session) userTeamID(ctx context.Context, p *domain.Profile) (int64, error) {
	if p.TeamID != nil {
		return *p.TeamID, nil
	}
	if p.PlayerID == nil {
		return 0, nil
	}
	player, err := s.Store.GetPlayer(ctx, *p.PlayerID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user player: %w", err)
	}
	if player.TeamID == nil || !player.Starter {
		return 0, nil
	}
	return *player.TeamID, nil
}

// IsUserPlayer reports whether playerID is the user's player in career mode.
func IsUserPlayer(p *domain.Profile, playerID int64) bool {
	return p.PlayerID != nil && *p.PlayerID == playerID
}

// IsUserTeam reports whether teamID is the team the user manages.
func IsUserTeam(p *domain.Profile, teamID int64) bool {
	return p.TeamID != nil && *p.TeamID == teamID
}

// MatchdayType picks the calendar kind for a match given the user's team.
func MatchdayType(userTeamID int64, m *domain.Match) domain.CalendarType {
	if userTeamID != 0 && m.Has(userTeamID) {
		return domain.CalendarMatchdayUser
	}
	return domain.CalendarMatchdayNPC
}

// MapPool is the configured pool, overridden by the save's settings.
func (s *Session) MapPool(p *domain.Profile) []string {
	if len(p.Settings.MapPool) > 0 {
		return p.Settings.MapPool
	}
	return s.Config.MapPool
}

func (s *Session) Fidelity(p *domain.Profile) string {
	if p.Settings.SimFidelity != "" {
		return p.Settings.SimFidelity
	}
	return s.Config.SimFidelity
}
