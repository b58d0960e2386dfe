package economy

import (
	"context"
	"fmt"

	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
)

// Payouts maps team id to prize money for competitors placed by final
// position. Positions outside the table earn nothing.
func Payouts(pool constants.PrizePool, competitors []domain.Competitor) map[int64]int64 {
	out := map[int64]int64{}
	for _, c := range competitors {
		idx := c.Position - 1
		if idx < 0 || idx >= len(pool.Distribution) {
			continue
		}
		amount := int64(float64(pool.Total) * pool.Distribution[idx] / 100)
		if amount <= 0 {
			continue
		}
		out[c.TeamID] += amount
	}
	return out
}

// DistributePrizes pays out the tier's prize pool once the competition is
// decided. All increments land together or not at all.
func (s *Service) DistributePrizes(ctx context.Context, tierSlug string, done bool, competitors []domain.Competitor) (map[int64]int64, error) {
	pool, ok := constants.PrizePools[tierSlug]
	if !done || !ok || len(pool.Distribution) == 0 {
		return nil, nil
	}

	payouts := Payouts(pool, competitors)
	err := s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		for teamID, amount := range payouts {
			if err := s.sess.Store.IncrementEarnings(ctx, teamID, amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to distribute %s prizes: %w", tierSlug, err)
	}

	s.logger.Info().Str("tier", tierSlug).Int("payouts", len(payouts)).Msg("prizes distributed")
	return payouts, nil
}
