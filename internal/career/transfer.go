package career

import (
	"context"
	"errors"
	"fmt"
	"time"

	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/mail"
	"esports-sim/internal/repository"
	"esports-sim/internal/session"
)

// Terms of a contract offer.
type Terms struct {
	Wages int64
	Cost  int64
	Years int
}

// createOffer opens a transfer from team to player and schedules its expiry
// and the reminder the day before.
func (s *Service) createOffer(ctx context.Context, p *domain.Profile, player *domain.Player, team *domain.Team, terms Terms, status domain.TransferStatus) (*domain.Transfer, error) {
	t := &domain.Transfer{
		PlayerID:   player.ID,
		FromTeamID: team.ID,
		ToTeamID:   player.TeamID,
		Status:     status,
		CreatedAt:  p.Date,
		Offers: []domain.Offer{{
			Wages:         terms.Wages,
			Cost:          terms.Cost,
			ContractYears: max(terms.Years, constants.MinContractYears),
			ExpiresAt:     domain.AddDays(p.Date, constants.OfferExpiryDays),
			Status:        status,
			CreatedAt:     p.Date,
		}},
	}
	if err := s.sess.Store.CreateTransfer(ctx, t); err != nil {
		return nil, err
	}

	o := t.Latest()
	payload := domain.IDPayload{ID: t.ID}
	entries := []domain.CalendarEntry{
		domain.NewEntry(o.ExpiresAt, domain.CalendarTransferOfferExpiry, payload),
		domain.NewEntry(domain.AddDays(o.ExpiresAt, -constants.OfferWarningDays), domain.CalendarTransferOfferWarning, payload),
	}
	for i := range entries {
		if err := s.sess.Store.Schedule(ctx, &entries[i]); err != nil {
			return nil, err
		}
	}

	player.LastOfferAt = &p.Date
	if err := s.sess.Store.UpdatePlayer(ctx, player); err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("transfer_id", t.ID).
		Int64("player_id", player.ID).
		Int64("team_id", team.ID).
		Bool("extension", t.Extension()).
		Msg("offer created")
	return t, nil
}

// openTransfer loads a transfer a response is aimed at. Closed and expired
// offers are rejected; an offer past its expiry is expired on the way.
func (s *Service) openTransfer(ctx context.Context, p *domain.Profile, id int64) (*domain.Transfer, error) {
	t, err := s.sess.Store.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	o := t.Latest()
	if t.Status.Terminal() || o == nil {
		return nil, ErrOfferClosed
	}
	if p.Date.After(o.ExpiresAt) {
		if _, err := s.sess.Store.SetTransferStatus(ctx, t, domain.TransferExpired); err != nil {
			return nil, err
		}
		return nil, ErrOfferExpired
	}
	return t, nil
}

// AcceptOffer signs the player to the offering team, or extends their
// contract when the offer comes from their own team.
func (s *Service) AcceptOffer(ctx context.Context, transferID int64) error {
	var outcome error
	err := s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		p, err := s.sess.Profile(ctx)
		if err != nil {
			return err
		}
		t, err := s.openTransfer(ctx, p, transferID)
		if err == nil {
			err = s.accept(ctx, p, t)
		}
		if errors.Is(err, ErrOfferExpired) || errors.Is(err, ErrOfferClosed) {
			// status changes made on the way have to stick
			outcome = err
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	return outcome
}

func (s *Service) accept(ctx context.Context, p *domain.Profile, t *domain.Transfer) error {
	player, err := s.sess.Store.GetPlayer(ctx, t.PlayerID)
	if err != nil {
		return err
	}
	if !sameTeam(player.TeamID, t.ToTeamID) {
		s.logger.Warn().Int64("transfer_id", t.ID).Int64("player_id", player.ID).Msg("player moved since the offer was made")
		if _, err := s.sess.Store.SetTransferStatus(ctx, t, domain.TransferExpired); err != nil {
			return err
		}
		return ErrOfferClosed
	}
	if changed, err := s.sess.Store.SetTransferStatus(ctx, t, domain.TransferPlayerAccepted); err != nil || !changed {
		return err
	}
	team, err := s.sess.Store.GetTeam(ctx, t.FromTeamID)
	if err != nil {
		return err
	}
	o := t.Latest()

	if t.Extension() {
		from := p.Date
		if player.ContractEnd != nil && player.ContractEnd.After(from) {
			from = *player.ContractEnd
		}
		end := contractEnd(from, o.ContractYears)
		player.ContractEnd = &end
		player.Wages = o.Wages
		if err := s.sess.Store.UpdatePlayer(ctx, player); err != nil {
			return err
		}
		if err := s.scheduleContract(ctx, p, player); err != nil {
			return err
		}
		s.logger.Info().Int64("player_id", player.ID).Time("contract_end", end).Msg("contract extended")
	} else if err := s.sign(ctx, p, player, team, o); err != nil {
		return err
	}

	if err := s.closeTransfers(ctx, player.ID, nil, domain.TransferPlayerRejected); err != nil {
		return err
	}
	return s.notify(ctx, p, player, team, mail.TemplateOfferAccepted, map[string]any{
		"ContractEnd": player.ContractEnd.Format(time.DateOnly),
	})
}

// sign moves player onto team: the old stint closes and a new one opens, both
// lineups are patched up and matchday ownership follows the player.
func (s *Service) sign(ctx context.Context, p *domain.Profile, player *domain.Player, team *domain.Team, o *domain.Offer) error {
	oldTeamID := player.TeamID
	wasStarter := player.Starter

	if err := s.makeRoom(ctx, team.ID, player.Role, p.Date); err != nil {
		return err
	}

	end := contractEnd(p.Date, o.ContractYears)
	player.TeamID = &team.ID
	player.ContractEnd = &end
	player.Wages = o.Wages
	player.Starter = true
	player.TransferListed = false
	if err := s.sess.Store.UpdatePlayer(ctx, player); err != nil {
		return err
	}
	if err := s.sess.Store.OpenStint(ctx, &domain.CareerStint{
		PlayerID:  player.ID,
		TeamID:    team.ID,
		Tier:      team.Tier,
		StartedAt: p.Date,
	}); err != nil {
		return err
	}
	if err := s.sess.Store.IncrementEarnings(ctx, team.ID, -o.Cost); err != nil {
		return err
	}

	if oldTeamID != nil {
		if err := s.sess.Store.IncrementEarnings(ctx, *oldTeamID, o.Cost); err != nil {
			return err
		}
		if err := s.completeContractEntries(ctx, player.ID, *oldTeamID); err != nil {
			return err
		}
		if wasStarter {
			if err := s.promote(ctx, *oldTeamID, player.Role, p.Date); err != nil {
				return err
			}
		}
		if err := s.matchdays.ResyncMatchdays(ctx, *oldTeamID); err != nil {
			return err
		}
	}
	if err := s.matchdays.ResyncMatchdays(ctx, team.ID); err != nil {
		return err
	}
	if err := s.scheduleContract(ctx, p, player); err != nil {
		return err
	}

	s.logger.Info().
		Int64("player_id", player.ID).
		Int64("team_id", team.ID).
		Int64("fee", o.Cost).
		Msg("player signed")
	return nil
}

func sameTeam(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// closeTransfers moves the player's pending transfers to status, limited to
// those from fromTeamID when set.
func (s *Service) closeTransfers(ctx context.Context, playerID int64, fromTeamID *int64, status domain.TransferStatus) error {
	pending, err := s.sess.Store.ListTransfers(ctx, repository.TransferFilter{
		PlayerID:   &playerID,
		FromTeamID: fromTeamID,
		Statuses:   pendingTransfer,
	})
	if err != nil {
		return err
	}
	for i := range pending {
		if _, err := s.sess.Store.SetTransferStatus(ctx, &pending[i], status); err != nil {
			return err
		}
	}
	return nil
}

// RejectOffer turns an offer down on the player's behalf.
func (s *Service) RejectOffer(ctx context.Context, transferID int64) error {
	var outcome error
	err := s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		p, err := s.sess.Profile(ctx)
		if err != nil {
			return err
		}
		t, err := s.openTransfer(ctx, p, transferID)
		if err == nil {
			err = s.reject(ctx, p, t, domain.TransferPlayerRejected)
		}
		if errors.Is(err, ErrOfferExpired) || errors.Is(err, ErrOfferClosed) {
			outcome = err
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	return outcome
}

func (s *Service) reject(ctx context.Context, p *domain.Profile, t *domain.Transfer, status domain.TransferStatus) error {
	if changed, err := s.sess.Store.SetTransferStatus(ctx, t, status); err != nil || !changed {
		return err
	}
	player, err := s.sess.Store.GetPlayer(ctx, t.PlayerID)
	if err != nil {
		return err
	}
	team, err := s.sess.Store.GetTeam(ctx, t.FromTeamID)
	if err != nil {
		return err
	}
	tmpl := mail.TemplateOfferRejected
	if t.Extension() {
		tmpl = mail.TemplateExtensionRejected
	}
	s.logger.Info().Int64("transfer_id", t.ID).Str("status", string(status)).Msg("offer rejected")
	return s.notify(ctx, p, player, team, tmpl, nil)
}

// ExpireOffer closes an offer nobody answered in time. Offers already closed,
// or whose expiry moved, are left alone.
func (s *Service) ExpireOffer(ctx context.Context, transferID int64) error {
	return s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		t, err := s.sess.Store.GetTransfer(ctx, transferID)
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn().Int64("transfer_id", transferID).Msg("expiry for missing transfer")
			return nil
		}
		if err != nil {
			return err
		}
		p, err := s.sess.Profile(ctx)
		if err != nil {
			return err
		}
		o := t.Latest()
		if t.Status.Terminal() || o == nil || p.Date.Before(o.ExpiresAt) {
			return nil
		}
		if changed, err := s.sess.Store.SetTransferStatus(ctx, t, domain.TransferExpired); err != nil || !changed {
			return err
		}

		player, err := s.sess.Store.GetPlayer(ctx, t.PlayerID)
		if err != nil {
			return err
		}
		team, err := s.sess.Store.GetTeam(ctx, t.FromTeamID)
		if err != nil {
			return err
		}
		s.logger.Info().Int64("transfer_id", t.ID).Msg("offer expired")
		return s.notify(ctx, p, player, team, mail.TemplateOfferExpired, nil)
	})
}

// WarnOffer reminds the user of an offer to their player that expires
// tomorrow. It reports whether the day advance should stop for an answer.
func (s *Service) WarnOffer(ctx context.Context, transferID int64) (bool, error) {
	t, err := s.sess.Store.GetTransfer(ctx, transferID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if t.Status != domain.TransferPlayerPending {
		return false, nil
	}
	p, err := s.sess.Profile(ctx)
	if err != nil {
		return false, err
	}
	if !session.IsUserPlayer(p, t.PlayerID) {
		return false, nil
	}

	player, err := s.sess.Store.GetPlayer(ctx, t.PlayerID)
	if err != nil {
		return false, err
	}
	team, err := s.sess.Store.GetTeam(ctx, t.FromTeamID)
	if err != nil {
		return false, err
	}
	if err := s.notify(ctx, p, player, team, mail.TemplateOfferExpiring, nil); err != nil {
		return false, err
	}
	return true, nil
}

// SendOffer makes an offer from the user's team. The player's team and then
// the player answer after a couple of days.
func (s *Service) SendOffer(ctx context.Context, playerID int64, terms Terms) (*domain.Transfer, error) {
	var out *domain.Transfer
	err := s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		p, err := s.sess.Profile(ctx)
		if err != nil {
			return err
		}
		if p.TeamID == nil {
			return ErrNoUserTeam
		}
		player, err := s.sess.Store.GetPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		pending, err := s.sess.Store.ListTransfers(ctx, repository.TransferFilter{
			PlayerID:   &playerID,
			FromTeamID: p.TeamID,
			Statuses:   pendingTransfer,
		})
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			return ErrOfferPending
		}
		team, err := s.sess.Store.GetTeam(ctx, *p.TeamID)
		if err != nil {
			return err
		}

		// free agents and our own players have no team to ask first
		status := domain.TransferTeamPending
		if player.TeamID == nil || *player.TeamID == team.ID {
			status = domain.TransferPlayerPending
		}
		if out, err = s.createOffer(ctx, p, player, team, terms, status); err != nil {
			return err
		}
		e := domain.NewEntry(domain.AddDays(p.Date, constants.OfferResponseDays),
			domain.CalendarTransferOfferResponse, domain.IDPayload{ID: out.ID})
		return s.sess.Store.Schedule(ctx, &e)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send offer for player %d: %w", playerID, err)
	}
	return out, nil
}

// RespondTransfer answers an offer made by the user's team: the player's team
// weighs the fee, then the player weighs wages and the step in prestige.
func (s *Service) RespondTransfer(ctx context.Context, transferID int64) error {
	return s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		p, err := s.sess.Profile(ctx)
		if err != nil {
			return err
		}
		t, err := s.openTransfer(ctx, p, transferID)
		switch {
		case errors.Is(err, repository.ErrNotFound), errors.Is(err, ErrOfferClosed), errors.Is(err, ErrOfferExpired):
			s.logger.Info().Err(err).Int64("transfer_id", transferID).Msg("no offer to respond to")
			return nil
		case err != nil:
			return err
		}
		player, err := s.sess.Store.GetPlayer(ctx, t.PlayerID)
		if err != nil {
			return err
		}
		if session.IsUserPlayer(p, player.ID) {
			return nil
		}
		if !sameTeam(player.TeamID, t.ToTeamID) {
			s.logger.Warn().Int64("transfer_id", t.ID).Msg("player moved since the offer was made")
			_, err := s.sess.Store.SetTransferStatus(ctx, t, domain.TransferExpired)
			return err
		}
		team, err := s.sess.Store.GetTeam(ctx, t.FromTeamID)
		if err != nil {
			return err
		}
		o := t.Latest()

		if t.Status == domain.TransferTeamPending {
			owner, err := s.sess.Store.GetTeam(ctx, *player.TeamID)
			if err != nil {
				return err
			}
			if !TeamAccepts(player, o) {
				if _, err := s.sess.Store.SetTransferStatus(ctx, t, domain.TransferTeamRejected); err != nil {
					return err
				}
				return s.respond(ctx, p, player, owner.Name, "rejected")
			}
			if _, err := s.sess.Store.SetTransferStatus(ctx, t, domain.TransferPlayerPending); err != nil {
				return err
			}
		}

		current := team.Tier
		if player.TeamID != nil && !t.Extension() {
			owner, err := s.sess.Store.GetTeam(ctx, *player.TeamID)
			if err != nil {
				return err
			}
			current = owner.Tier
		}
		if !PlayerAccepts(player, o, current, team.Tier, player.TeamID == nil) {
			if _, err := s.sess.Store.SetTransferStatus(ctx, t, domain.TransferPlayerRejected); err != nil {
				return err
			}
			return s.respond(ctx, p, player, player.Name, "rejected")
		}
		return s.accept(ctx, p, t)
	})
}

// TeamAccepts reports whether a player's team lets them go for the offered
// fee. Listed players go at a discount.
func TeamAccepts(player *domain.Player, o *domain.Offer) bool {
	price := float64(player.Cost)
	if player.TransferListed {
		price *= constants.ListedFeeDiscount
	}
	return float64(o.Cost) >= price
}

// PlayerAccepts reports whether a player takes an offer: no pay cut, and no
// drop of more than the allowed slack in prestige. Free agents take any
// paying offer.
func PlayerAccepts(player *domain.Player, o *domain.Offer, currentTier, offerTier int, free bool) bool {
	if free {
		return o.Wages > 0
	}
	if o.Wages < player.Wages {
		return false
	}
	return offerTier >= currentTier-constants.PlayerPrestigeSlack
}

func (s *Service) respond(ctx context.Context, p *domain.Profile, player *domain.Player, decider, outcome string) error {
	_, err := s.sess.Mail.Send(ctx, p.Date, mail.Message{
		Template: mail.TemplateTransferResponse,
		From:     decider,
		Data:     map[string]any{"Player": player.Name, "Outcome": outcome, "Decider": decider},
	})
	return err
}

// notify mails the user about an offer concerning their player, or one made
// by their team.
func (s *Service) notify(ctx context.Context, p *domain.Profile, player *domain.Player, team *domain.Team, tmpl string, extra map[string]any) error {
	if !session.IsUserPlayer(p, player.ID) && !session.IsUserTeam(p, team.ID) {
		return nil
	}
	data := map[string]any{"Player": player.Name, "Team": team.Name}
	for k, v := range extra {
		data[k] = v
	}
	_, err := s.sess.Mail.Send(ctx, p.Date, mail.Message{Template: tmpl, From: team.Name, Data: data})
	return err
}
