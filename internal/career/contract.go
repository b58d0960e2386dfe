package career

import (
	"context"
	"errors"
	"math"

	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/mail"
	"esports-sim/internal/repository"
	"esports-sim/internal/session"
)

// ExpireContract releases a player whose contract ran out. Contracts extended
// since the entry was scheduled are left alone.
func (s *Service) ExpireContract(ctx context.Context, payload domain.ContractPayload) error {
	return s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		player, err := s.contractPlayer(ctx, payload)
		if err != nil || player == nil {
			return err
		}
		p, err := s.sess.Profile(ctx)
		if err != nil {
			return err
		}
		if player.ContractEnd != nil && player.ContractEnd.After(p.Date) {
			return nil
		}
		if err := s.release(ctx, p, player); err != nil {
			return err
		}
		s.logger.Info().Int64("player_id", player.ID).Int64("team_id", payload.TeamID).Msg("contract expired")
		return s.notifyPlayer(ctx, p, player, payload.TeamID, mail.TemplateContractExpired)
	})
}

// FormMultiplier scales punitive rolls by recent team results: good form
// halves them, bad form makes them likelier. rate is -1 without results.
func FormMultiplier(rate float64) float64 {
	switch {
	case rate < 0:
		return 1
	case rate >= constants.FormGoodWinRate:
		return constants.FormGoodMultiplier
	case rate <= constants.FormBadWinRate:
		return constants.FormBadMultiplier
	}
	return 1
}

// ReviewContract is the weekly look at the user's player. Early in a
// contract a poor K/D can get them released; later it can get them benched.
func (s *Service) ReviewContract(ctx context.Context, payload domain.ContractPayload) error {
	player, err := s.contractPlayer(ctx, payload)
	if err != nil || player == nil {
		return err
	}
	p, err := s.sess.Profile(ctx)
	if err != nil {
		return err
	}
	next := domain.NewEntry(domain.AddDays(p.Date, constants.ReviewIntervalDays), domain.CalendarContractReview, payload)
	if err := s.sess.Store.Schedule(ctx, &next); err != nil {
		return err
	}
	log := s.logger.With().Int64("player_id", player.ID).Int64("team_id", payload.TeamID).Logger()

	kd, err := s.sess.Store.PlayerKDSince(ctx, player.ID, domain.AddDays(p.Date, -constants.ReviewWindowDays))
	if err != nil {
		return err
	}
	if kd.Matches < constants.ReviewMinMatches {
		log.Debug().Int("matches", kd.Matches).Msg("too few matches to review")
		return nil
	}
	rate, err := s.winRate(ctx, payload.TeamID)
	if err != nil {
		return err
	}
	mult := FormMultiplier(rate)

	stint, err := s.sess.Store.GetOpenStint(ctx, player.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	early := stint != nil && domain.DaysBetween(stint.StartedAt, p.Date) <= constants.KickWindowDays

	ratio := kd.Ratio()
	if early && ratio < constants.KickKDThreshold && s.sess.Rand.Roll(constants.KickChance*mult) {
		log.Info().Float64("kd", ratio).Msg("review: released")
		return s.Kick(ctx, player.ID)
	}
	if player.Starter && ratio < constants.BenchKDThreshold && s.sess.Rand.Roll(constants.BenchChance*mult) {
		log.Info().Float64("kd", ratio).Msg("review: benched")
		return s.Bench(ctx, player.ID)
	}
	log.Debug().Float64("kd", ratio).Float64("form", mult).Msg("review passed")
	return nil
}

// ExtensionChance is the probability a team offers an extension given its
// form and the player's K/D. Players below the K/D floor get nothing.
func ExtensionChance(goodForm bool, kd float64) float64 {
	if kd < constants.ExtensionKDOk {
		return 0
	}
	return constants.ExtensionChance[goodForm][kd >= constants.ExtensionKDGood]
}

// EvaluateExtension decides once, ahead of the contract end, whether the
// player's team offers them an extension.
func (s *Service) EvaluateExtension(ctx context.Context, payload domain.ContractPayload) error {
	return s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		player, err := s.contractPlayer(ctx, payload)
		if err != nil || player == nil {
			return err
		}
		log := s.logger.With().Int64("player_id", player.ID).Int64("team_id", payload.TeamID).Logger()
		if player.TransferListed {
			log.Debug().Msg("listed player, no extension")
			return nil
		}
		pending, err := s.sess.Store.ListTransfers(ctx, repository.TransferFilter{
			PlayerID:   &player.ID,
			FromTeamID: &payload.TeamID,
			Statuses:   pendingTransfer,
		})
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			return nil
		}

		p, err := s.sess.Profile(ctx)
		if err != nil {
			return err
		}
		kd, err := s.sess.Store.PlayerKD(ctx, player.ID, constants.ScoutRecentMatches)
		if err != nil {
			return err
		}
		ratio := 1.0
		if kd.Matches > 0 {
			ratio = kd.Ratio()
		}
		rate, err := s.winRate(ctx, payload.TeamID)
		if err != nil {
			return err
		}

		chance := ExtensionChance(rate >= constants.FormGoodWinRate, ratio)
		if !s.sess.Rand.Roll(chance) || s.sess.Rand.Roll(constants.ExtensionDeclineRoll) {
			log.Info().Float64("kd", ratio).Float64("chance", chance).Msg("no extension offered")
			return nil
		}

		team, err := s.sess.Store.GetTeam(ctx, payload.TeamID)
		if err != nil {
			return err
		}
		raise := s.sess.Rand.FloatBetween(constants.ExtensionWageRaiseMin, constants.ExtensionWageRaiseMax)
		terms := Terms{
			Wages: int64(math.Round(float64(player.Wages) * raise)),
			Years: s.sess.Rand.IntBetween(constants.MinContractYears, constants.MaxContractYears),
		}
		t, err := s.createOffer(ctx, p, player, team, terms, domain.TransferPlayerPending)
		if err != nil {
			return err
		}
		if !session.IsUserPlayer(p, player.ID) {
			return nil
		}
		_, err = s.sess.Mail.Send(ctx, p.Date, mail.Message{
			Template: mail.TemplateExtensionOffered,
			From:     team.Name,
			Data: map[string]any{
				"Team":   team.Name,
				"Player": player.Name,
				"Years":  t.Latest().ContractYears,
				"Wages":  t.Latest().Wages,
			},
		})
		return err
	})
}
