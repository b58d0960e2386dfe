package career

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"esports-sim/internal/chance"
	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/economy"
	"esports-sim/internal/mail"
	"esports-sim/internal/repository"
	"esports-sim/internal/session"

	"github.com/rs/zerolog"
)

// Signal folds a K/D ratio, the team's standing (0 last, 1 first) and its
// form (win rate) into a 0-1 rating of how attractive the player looks.
func Signal(kd, standing, form float64) float64 {
	k := (kd - constants.ScoutKDFloor) / (constants.ScoutKDCeiling - constants.ScoutKDFloor)
	k = max(0, min(1, k))
	return constants.ScoutKDWeight*k +
		constants.ScoutStandingWeight*max(0, min(1, standing)) +
		constants.ScoutFormWeight*max(0, min(1, form))
}

// TargetWeights lists the divisions an offer may come from for a player at
// prestige current. Lateral moves are the norm, jumps up need a strong signal
// and a weak one opens the way down.
func TargetWeights(current int, signal float64) map[int]float64 {
	top := len(constants.PrestigeOrder) - 1
	current = max(0, min(top, current))

	out := map[int]float64{current: constants.ScoutLateralWeight}
	for i, threshold := range constants.ScoutUpThresholds {
		jump := i + 1
		if current+jump > top || signal < threshold {
			break
		}
		out[current+jump] = constants.ScoutUpWeight / float64(jump)
	}
	for i, threshold := range constants.ScoutDownThresholds {
		drop := i + 1
		if current-drop < 0 || signal >= threshold {
			break
		}
		out[current-drop] = constants.ScoutDownWeight
	}
	return out
}

// OfferChance is the probability a scouting check turns into an offer.
func OfferChance(signal float64, player *domain.Player, daysLeft int) float64 {
	p := constants.ScoutBaseChance * (0.5 + signal)
	switch {
	case player.TeamID == nil:
		p *= constants.ScoutFreeAgentBoost
	case daysLeft <= constants.ScoutExpiringDays:
		p *= constants.ScoutExpiringBoost
	}
	if player.TransferListed {
		p *= constants.ScoutListedBoost
	}
	if player.Starter {
		p *= constants.ScoutStarterDamp
	}
	return min(p, 1)
}

// Scout runs the weekly check that may bring the user's player an offer.
func (s *Service) Scout(ctx context.Context, playerID int64) error {
	return s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		player, err := s.sess.Store.GetPlayer(ctx, playerID)
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn().Int64("player_id", playerID).Msg("scouting check for missing player")
			return nil
		}
		if err != nil {
			return err
		}
		p, err := s.sess.Profile(ctx)
		if err != nil {
			return err
		}
		next := domain.NewEntry(domain.AddDays(p.Date, constants.ScoutingIntervalDays),
			domain.CalendarScoutingCheck, domain.IDPayload{ID: playerID})
		if err := s.sess.Store.Schedule(ctx, &next); err != nil {
			return err
		}
		log := s.logger.With().Int64("player_id", playerID).Logger()

		if player.LastOfferAt != nil && domain.DaysBetween(*player.LastOfferAt, p.Date) < constants.OfferCooldownDays {
			log.Debug().Msg("offer cooldown")
			return nil
		}
		pending, err := s.sess.Store.ListTransfers(ctx, repository.TransferFilter{PlayerID: &playerID, Statuses: pendingTransfer})
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			return nil
		}

		signal, err := s.signal(ctx, p, player)
		if err != nil {
			return err
		}
		current, err := s.currentTier(ctx, p, player)
		if err != nil {
			return err
		}
		if !s.sess.Rand.Roll(OfferChance(signal, player, player.DaysLeft(p.Date))) {
			log.Debug().Float64("signal", signal).Msg("no interest this week")
			return nil
		}
		target, err := chance.Weighted(s.sess.Rand, TargetWeights(current, signal))
		if err != nil {
			return err
		}

		team, err := s.pickTeam(ctx, player, current, target, log)
		if err != nil || team == nil {
			return err
		}
		wages, cost, err := economy.RollWage(s.sess.Rand, target)
		if err != nil {
			return err
		}
		terms := Terms{
			Wages: wages,
			Cost:  max(cost, player.Cost),
			Years: s.sess.Rand.IntBetween(constants.MinContractYears, constants.MaxContractYears),
		}
		t, err := s.createOffer(ctx, p, player, team, terms, domain.TransferPlayerPending)
		if err != nil {
			return err
		}
		log.Info().
			Float64("signal", signal).
			Int("current", current).
			Int("target", target).
			Int64("team_id", team.ID).
			Msg("scouting offer")

		if !session.IsUserPlayer(p, player.ID) {
			return nil
		}
		o := t.Latest()
		_, err = s.sess.Mail.Send(ctx, p.Date, mail.Message{
			Template: mail.TemplateOfferReceived,
			From:     team.Name,
			Data: map[string]any{
				"Team":    team.Name,
				"Player":  player.Name,
				"Years":   o.ContractYears,
				"Wages":   o.Wages,
				"Expires": o.ExpiresAt.Format(time.DateOnly),
			},
		})
		return err
	})
}

// signal blends recent and lifetime K/D with the team's standing and form.
func (s *Service) signal(ctx context.Context, p *domain.Profile, player *domain.Player) (float64, error) {
	recent, err := s.sess.Store.PlayerKD(ctx, player.ID, constants.ScoutRecentMatches)
	if err != nil {
		return 0, err
	}
	lifetime, err := s.sess.Store.PlayerKD(ctx, player.ID, 0)
	if err != nil {
		return 0, err
	}
	kd := 1.0
	if lifetime.Matches > 0 {
		kd = constants.ScoutRecentWeight*recent.Ratio() + constants.ScoutLifetimeWeight*lifetime.Ratio()
	}

	standing, form := 0.5, 0.5
	if player.TeamID != nil {
		st, err := s.sess.Store.GetDivisionStanding(ctx, *player.TeamID, p.Season)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return 0, err
		}
		if st != nil && st.Competitor.Position > 0 {
			standing = 1 - float64(st.Competitor.Position-1)/float64(constants.DivisionSize-1)
		}
		rate, err := s.winRate(ctx, *player.TeamID)
		if err != nil {
			return 0, err
		}
		if rate >= 0 {
			form = rate
		}
	}
	return Signal(kd, standing, form), nil
}

// currentTier is the prestige of the player's team, or for free agents the
// best division they played in over the last couple of seasons.
func (s *Service) currentTier(ctx context.Context, p *domain.Profile, player *domain.Player) (int, error) {
	if player.TeamID != nil {
		team, err := s.sess.Store.GetTeam(ctx, *player.TeamID)
		if err != nil {
			return 0, err
		}
		return team.Tier, nil
	}
	stints, err := s.sess.Store.ListStints(ctx, player.ID)
	if err != nil {
		return 0, err
	}
	since := domain.AddDays(p.Date, -constants.ScoutPeakSeasons*constants.SeasonLength)
	peak := 0
	for _, st := range stints {
		if st.EndedAt == nil || !st.EndedAt.Before(since) {
			peak = max(peak, st.Tier)
		}
	}
	return peak, nil
}

// pickTeam draws the offering team from the target division, at home or
// rarely abroad. Moves up into the top division only come from its weakest
// third.
func (s *Service) pickTeam(ctx context.Context, player *domain.Player, current, target int, log zerolog.Logger) (*domain.Team, error) {
	filter := repository.TeamFilter{Tier: &target}
	if !s.sess.Rand.Roll(constants.CrossFederationChance[target]) {
		filter.FederationID = &player.FederationID
	}
	teams, err := s.sess.Store.ListTeams(ctx, filter)
	if err != nil {
		return nil, err
	}
	teams = slices.DeleteFunc(teams, func(t domain.Team) bool {
		return player.TeamID != nil && t.ID == *player.TeamID
	})

	top := len(constants.PrestigeOrder) - 1
	if target == top && current < top && len(teams) > 0 {
		slices.SortStableFunc(teams, func(a, b domain.Team) int { return cmp.Compare(a.Elo, b.Elo) })
		teams = teams[:max(1, len(teams)/constants.ScoutPremierPoolFrac)]
	}
	if len(teams) == 0 {
		log.Info().Int("tier", target).Msg("no team to make an offer")
		return nil, nil
	}
	team := chance.Pick(s.sess.Rand, teams)
	return &team, nil
}
