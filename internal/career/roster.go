package career

import (
	"cmp"
	"context"
	"slices"
	"time"

	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/mail"
	"esports-sim/internal/session"
)

// BenchVictim picks the starter who loses their slot to an incoming player of
// role: the weakest starters of that role (any starter when none play it),
// shortest contract first, then lowest XP.
func BenchVictim(players []domain.Player, role domain.Role, today time.Time) *domain.Player {
	var starters, sameRole []*domain.Player
	for i := range players {
		p := &players[i]
		if !p.Starter {
			continue
		}
		starters = append(starters, p)
		if p.Role == role {
			sameRole = append(sameRole, p)
		}
	}
	pool := sameRole
	if len(pool) == 0 {
		pool = starters
	}
	if len(pool) == 0 {
		return nil
	}

	minXP := pool[0].XP
	for _, p := range pool {
		minXP = min(minXP, p.XP)
	}
	var weakest []*domain.Player
	for _, p := range pool {
		if p.XP <= minXP+constants.BenchXPTolerance {
			weakest = append(weakest, p)
		}
	}
	slices.SortStableFunc(weakest, func(a, b *domain.Player) int {
		return cmp.Or(cmp.Compare(a.DaysLeft(today), b.DaysLeft(today)), cmp.Compare(a.XP, b.XP))
	})
	return weakest[0]
}

// PromotionCandidate picks the bench player who fills a vacancy of role:
// listed players of the role first, then unlisted ones, then any listed
// player. Highest XP wins, then the longest contract.
func PromotionCandidate(players []domain.Player, role domain.Role, today time.Time) *domain.Player {
	var listed, unlisted, anyListed []*domain.Player
	for i := range players {
		p := &players[i]
		if p.Starter {
			continue
		}
		switch {
		case p.Role == role && p.TransferListed:
			listed = append(listed, p)
		case p.Role == role:
			unlisted = append(unlisted, p)
		}
		if p.TransferListed {
			anyListed = append(anyListed, p)
		}
	}
	for _, pool := range [][]*domain.Player{listed, unlisted, anyListed} {
		if len(pool) == 0 {
			continue
		}
		slices.SortStableFunc(pool, func(a, b *domain.Player) int {
			return cmp.Or(cmp.Compare(b.XP, a.XP), cmp.Compare(b.DaysLeft(today), a.DaysLeft(today)))
		})
		return pool[0]
	}
	return nil
}

// promote fills the starting slot vacated by a player of role on teamID.
func (s *Service) promote(ctx context.Context, teamID int64, role domain.Role, today time.Time) error {
	players, err := s.sess.Store.ListPlayersByTeam(ctx, teamID)
	if err != nil {
		return err
	}
	starters := 0
	for _, p := range players {
		if p.Starter {
			starters++
		}
	}
	if starters >= constants.StartersPerTeam {
		return nil
	}

	c := PromotionCandidate(players, role.Replacement(), today)
	if c == nil {
		s.logger.Info().Int64("team_id", teamID).Str("role", string(role)).Msg("no bench player to promote")
		return nil
	}
	c.Starter = true
	c.TransferListed = false
	if err := s.sess.Store.UpdatePlayer(ctx, c); err != nil {
		return err
	}
	s.logger.Info().Int64("team_id", teamID).Int64("player_id", c.ID).Msg("player promoted")
	return nil
}

// makeRoom benches a starter of teamID when the starting lineup is full, to
// let an incoming player of role start.
func (s *Service) makeRoom(ctx context.Context, teamID int64, role domain.Role, today time.Time) error {
	players, err := s.sess.Store.ListPlayersByTeam(ctx, teamID)
	if err != nil {
		return err
	}
	starters := 0
	for _, p := range players {
		if p.Starter {
			starters++
		}
	}
	if starters < constants.StartersPerTeam {
		return nil
	}
	v := BenchVictim(players, role.Replacement(), today)
	if v == nil {
		return nil
	}
	v.Starter = false
	v.TransferListed = true
	if err := s.sess.Store.UpdatePlayer(ctx, v); err != nil {
		return err
	}
	s.logger.Info().Int64("team_id", teamID).Int64("player_id", v.ID).Msg("player benched for a signing")
	return nil
}

// Bench drops a starter to the bench and lists them for transfer.
func (s *Service) Bench(ctx context.Context, playerID int64) error {
	return s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		player, err := s.sess.Store.GetPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		if player.TeamID == nil || !player.Starter {
			return nil
		}
		p, err := s.sess.Profile(ctx)
		if err != nil {
			return err
		}
		teamID := *player.TeamID

		player.Starter = false
		player.TransferListed = true
		if err := s.sess.Store.UpdatePlayer(ctx, player); err != nil {
			return err
		}
		if err := s.promote(ctx, teamID, player.Role, p.Date); err != nil {
			return err
		}
		if err := s.matchdays.ResyncMatchdays(ctx, teamID); err != nil {
			return err
		}

		s.logger.Info().Int64("player_id", playerID).Int64("team_id", teamID).Msg("player benched")
		return s.notifyPlayer(ctx, p, player, teamID, mail.TemplateBenched)
	})
}

// Kick releases a player from their team.
func (s *Service) Kick(ctx context.Context, playerID int64) error {
	return s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		player, err := s.sess.Store.GetPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		if player.TeamID == nil {
			return nil
		}
		p, err := s.sess.Profile(ctx)
		if err != nil {
			return err
		}
		teamID := *player.TeamID
		if err := s.release(ctx, p, player); err != nil {
			return err
		}
		s.logger.Info().Int64("player_id", playerID).Int64("team_id", teamID).Msg("player released")
		return s.notifyPlayer(ctx, p, player, teamID, mail.TemplateKicked)
	})
}

// release detaches player from their team: the stint closes, pending
// contract entries are dropped and the lineup is patched up.
func (s *Service) release(ctx context.Context, p *domain.Profile, player *domain.Player) error {
	teamID := *player.TeamID
	wasStarter := player.Starter

	player.TeamID = nil
	player.ContractEnd = nil
	player.Starter = false
	player.TransferListed = false
	if err := s.sess.Store.UpdatePlayer(ctx, player); err != nil {
		return err
	}
	if err := s.sess.Store.CloseStint(ctx, player.ID, p.Date); err != nil {
		return err
	}
	if err := s.completeContractEntries(ctx, player.ID, teamID); err != nil {
		return err
	}
	if err := s.closeTransfers(ctx, player.ID, &teamID, domain.TransferExpired); err != nil {
		return err
	}
	if wasStarter {
		if err := s.promote(ctx, teamID, player.Role, p.Date); err != nil {
			return err
		}
	}
	return s.matchdays.ResyncMatchdays(ctx, teamID)
}

// notifyPlayer mails the user about their own player or a player of their
// team.
func (s *Service) notifyPlayer(ctx context.Context, p *domain.Profile, player *domain.Player, teamID int64, tmpl string) error {
	if !session.IsUserPlayer(p, player.ID) && !session.IsUserTeam(p, teamID) {
		return nil
	}
	team, err := s.sess.Store.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	_, err = s.sess.Mail.Send(ctx, p.Date, mail.Message{
		Template: tmpl,
		From:     team.Name,
		Data:     map[string]any{"Player": player.Name, "Team": team.Name},
	})
	return err
}
