package economy

import (
	"context"
	"fmt"
	"math"

	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
)

// Expected is the probability a team rated a beats one rated b.
func Expected(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/constants.EloScale))
}

// Ratings applies one result to both ratings. score is a's actual score: 1, 0
// or the draw value.
func Ratings(a, b, score float64) (float64, float64) {
	ea := Expected(a, b)
	eb := 1 - ea
	return a + constants.EloK*(score-ea), b + constants.EloK*((1-score)-eb)
}

// Score maps a match result to an Elo actual score.
func Score(r domain.MatchResult) float64 {
	switch r {
	case domain.ResultWin:
		return 1
	case domain.ResultLoss:
		return 0
	}
	return constants.EloDrawed
}

// UpdateElo rates home and away after a match that ended with result for home.
func (s *Service) UpdateElo(ctx context.Context, home, away *domain.Team, result domain.MatchResult) error {
	h, a := Ratings(home.Elo, away.Elo, Score(result))
	err := s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		if err := s.sess.Store.UpdateTeamElo(ctx, home.ID, h); err != nil {
			return err
		}
		return s.sess.Store.UpdateTeamElo(ctx, away.ID, a)
	})
	if err != nil {
		return fmt.Errorf("failed to update elo of %d and %d: %w", home.ID, away.ID, err)
	}
	home.Elo, away.Elo = h, a
	return nil
}
