package economy

import (
	"context"
	"fmt"

	"esports-sim/internal/chance"
	"esports-sim/internal/constants"
	"esports-sim/internal/repository"
)

// RollWage draws wages and the matching transfer cost from the bands of a
// prestige.
func RollWage(rand *chance.Source, prestige int) (int64, int64, error) {
	bands := constants.WageBands[max(0, min(prestige, len(constants.WageBands)-1))]
	weights := make(map[int]float64, len(bands))
	for i, b := range bands {
		weights[i] = b.Percent
	}
	idx, err := chance.Weighted(rand, weights)
	if err != nil {
		return 0, 0, err
	}
	band := bands[idx]
	wages := rand.Int64Between(band.Low, band.High)
	return wages, wages * band.Multiplier, nil
}

// SyncWages re-rolls the wages and cost of every player on teamID from the
// bands of its prestige.
func (s *Service) SyncWages(ctx context.Context, teamID int64) error {
	team, err := s.sess.Store.GetTeamWithPlayers(ctx, teamID)
	if err != nil {
		return err
	}
	err = s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		for i := range team.Players {
			p := &team.Players[i]
			wages, cost, err := RollWage(s.sess.Rand, team.Tier)
			if err != nil {
				return err
			}
			p.Wages, p.Cost = wages, cost
			if err := s.sess.Store.UpdatePlayer(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sync wages of team %d: %w", teamID, err)
	}
	s.logger.Info().Int64("team_id", teamID).Int("players", len(team.Players)).Msg("wages synced")
	return nil
}

// SyncTiers sets every team's prestige to the domestic division it was placed
// into for season.
func (s *Service) SyncTiers(ctx context.Context, season int) error {
	comps, err := s.sess.Store.ListCompetitions(ctx, repository.CompetitionFilter{Season: &season})
	if err != nil {
		return err
	}

	updated := 0
	err = s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		for _, c := range comps {
			if c.Tier.Prestige == nil {
				continue
			}
			competitors, err := s.sess.Store.ListCompetitors(ctx, c.ID)
			if err != nil {
				return err
			}
			for _, cp := range competitors {
				if err := s.sess.Store.UpdateTeamTier(ctx, cp.TeamID, *c.Tier.Prestige); err != nil {
					return err
				}
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sync tiers for season %d: %w", season, err)
	}
	s.logger.Info().Int("season", season).Int("teams", updated).Msg("tiers synced")
	return nil
}
