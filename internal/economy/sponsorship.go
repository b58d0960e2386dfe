package economy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/mail"
	"esports-sim/internal/repository"
)

var (
	ErrUnknownSponsor    = errors.New("unknown sponsor")
	ErrSponsorshipExists = errors.New("team already has a deal with this sponsor")
)

var openSponsorship = []domain.SponsorshipStatus{
	domain.SponsorshipPending,
	domain.SponsorshipInvited,
	domain.SponsorshipActive,
}

func (s *Service) offer(def constants.SponsorDef, start time.Time, status domain.SponsorshipStatus) domain.SponsorshipOffer {
	return domain.SponsorshipOffer{
		Amount:    def.Amount,
		Frequency: def.Frequency,
		Start:     start,
		End:       domain.AddDays(start, def.Years*constants.SeasonLength),
		Status:    status,
	}
}

func sponsorMail(tmpl string, def constants.SponsorDef, team *domain.Team, o *domain.SponsorshipOffer) mail.Message {
	data := map[string]any{"Sponsor": def.Name, "Team": team.Name}
	if o != nil {
		data["Amount"] = o.Amount
		data["Frequency"] = string(o.Frequency)
		data["End"] = o.End.Format(time.DateOnly)
	}
	return mail.Message{Template: tmpl, From: def.Name, Data: data}
}

// ApplySponsorship sends the sponsor a proposal from teamID. The sponsor
// answers with a SPONSORSHIP_OFFER_RESPONSE entry a few days later.
func (s *Service) ApplySponsorship(ctx context.Context, teamID int64, slug string) (*domain.Sponsorship, error) {
	def, ok := constants.SponsorBySlug(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSponsor, slug)
	}
	p, err := s.sess.Profile(ctx)
	if err != nil {
		return nil, err
	}
	open, err := s.sess.Store.ListSponsorships(ctx, teamID, openSponsorship...)
	if err != nil {
		return nil, err
	}
	for _, sp := range open {
		if sp.Sponsor == slug {
			return nil, ErrSponsorshipExists
		}
	}

	sp := &domain.Sponsorship{
		TeamID:  teamID,
		Sponsor: slug,
		Status:  domain.SponsorshipPending,
		Offers:  []domain.SponsorshipOffer{s.offer(def, p.Date, domain.SponsorshipPending)},
	}
	err = s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		if err := s.sess.Store.CreateSponsorship(ctx, sp); err != nil {
			return err
		}
		e := domain.NewEntry(domain.AddDays(p.Date, constants.SponsorshipResponseDays),
			domain.CalendarSponsorshipResponse, domain.IDPayload{ID: sp.ID})
		return s.sess.Store.Schedule(ctx, &e)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply for %s sponsorship: %w", slug, err)
	}
	s.logger.Info().Int64("team_id", teamID).Str("sponsor", slug).Msg("sponsorship applied")
	return sp, nil
}

// RespondSponsorship is the sponsor's answer to a pending application. The
// sponsor signs when the team plays at or above its minimum tier and met its
// requirements last season.
func (s *Service) RespondSponsorship(ctx context.Context, id int64) error {
	sp, err := s.sess.Store.GetSponsorship(ctx, id)
	if err != nil {
		return err
	}
	if sp.Status != domain.SponsorshipPending {
		s.logger.Info().Int64("sponsorship_id", id).Str("status", string(sp.Status)).Msg("sponsorship already answered")
		return nil
	}
	def, ok := constants.SponsorBySlug(sp.Sponsor)
	if !ok {
		s.logger.Warn().Int64("sponsorship_id", id).Str("sponsor", sp.Sponsor).Msg("unknown sponsor")
		return nil
	}
	p, err := s.sess.Profile(ctx)
	if err != nil {
		return err
	}
	team, err := s.sess.Store.GetTeam(ctx, sp.TeamID)
	if err != nil {
		return err
	}

	accept := team.Tier >= def.MinTier
	if accept {
		standing, err := s.lastStanding(ctx, team.ID, p.Season)
		if err != nil {
			return err
		}
		accept = standing == nil || len(failed(def.Requirements, standing)) == 0
	}

	if !accept {
		if err := s.sess.Store.SetSponsorshipStatus(ctx, sp, domain.SponsorshipRejected); err != nil {
			return err
		}
		_, err = s.sess.Mail.Send(ctx, p.Date, sponsorMail(mail.TemplateSponsorshipRejected, def, team, nil))
		return err
	}

	if err := s.activate(ctx, sp, p.Date); err != nil {
		return err
	}
	_, err = s.sess.Mail.Send(ctx, p.Date, sponsorMail(mail.TemplateSponsorshipAccepted, def, team, sp.Latest()))
	return err
}

// activate starts paying the latest offer from today.
func (s *Service) activate(ctx context.Context, sp *domain.Sponsorship, today time.Time) error {
	o := sp.Latest()
	if o == nil {
		return fmt.Errorf("sponsorship %d has no offer", sp.ID)
	}
	return s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		if err := s.sess.Store.SetSponsorshipStatus(ctx, sp, domain.SponsorshipActive); err != nil {
			return err
		}
		start := today
		if o.Start.After(today) {
			start = o.Start
		}
		first := domain.AddDays(start, o.Frequency.Days())
		e := domain.NewEntry(first, domain.CalendarSponsorshipPayment, domain.IDPayload{ID: sp.ID})
		return s.sess.Store.Schedule(ctx, &e)
	})
}

// PaySponsorship credits one installment and schedules the next while the
// contract runs. The deal expires after its last payment.
func (s *Service) PaySponsorship(ctx context.Context, id int64) error {
	sp, err := s.sess.Store.GetSponsorship(ctx, id)
	if err != nil {
		return err
	}
	o := running(sp)
	if sp.Status != domain.SponsorshipActive || o == nil {
		s.logger.Info().Int64("sponsorship_id", id).Str("status", string(sp.Status)).Msg("sponsorship not active, skipping payment")
		return nil
	}
	p, err := s.sess.Profile(ctx)
	if err != nil {
		return err
	}

	return s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		if p.Date.After(o.End) {
			return s.sess.Store.SetSponsorshipStatus(ctx, sp, domain.SponsorshipExpired)
		}
		if err := s.sess.Store.IncrementEarnings(ctx, sp.TeamID, o.Amount); err != nil {
			return err
		}
		next := domain.AddDays(p.Date, o.Frequency.Days())
		if next.After(o.End) {
			return s.sess.Store.SetSponsorshipStatus(ctx, sp, domain.SponsorshipExpired)
		}
		e := domain.NewEntry(next, domain.CalendarSponsorshipPayment, domain.IDPayload{ID: sp.ID})
		return s.sess.Store.Schedule(ctx, &e)
	})
}

// CheckSponsorships settles the user team's deals at the end of season:
// terminate on a failed requirement, otherwise pay bonuses, then roll renewal
// and new invites.
func (s *Service) CheckSponsorships(ctx context.Context, teamID int64, season int) error {
	p, err := s.sess.Profile(ctx)
	if err != nil {
		return err
	}
	team, err := s.sess.Store.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	standing, err := s.sess.Store.GetDivisionStanding(ctx, teamID, season)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Info().Int64("team_id", teamID).Int("season", season).Msg("no standing to check sponsorships against")
		return nil
	}
	if err != nil {
		return err
	}

	active, err := s.sess.Store.ListSponsorships(ctx, teamID, domain.SponsorshipActive)
	if err != nil {
		return err
	}

	var msgs []mail.Message
	signed := map[string]bool{}
	for i := range active {
		sp := &active[i]
		def, ok := constants.SponsorBySlug(sp.Sponsor)
		if !ok {
			continue
		}
		signed[sp.Sponsor] = true

		if bad := failed(def.Requirements, standing); len(bad) > 0 {
			if err := s.sess.Store.SetSponsorshipStatus(ctx, sp, domain.SponsorshipTerminated); err != nil {
				return err
			}
			s.logger.Info().Int64("sponsorship_id", sp.ID).Int("failed", len(bad)).Msg("sponsorship terminated")
			msgs = append(msgs, sponsorMail(mail.TemplateSponsorshipTerminated, def, team, nil))
			continue
		}

		if bonus := bonuses(def.Bonuses, standing); bonus > 0 {
			if err := s.sess.Store.IncrementEarnings(ctx, teamID, bonus); err != nil {
				return err
			}
			msg := sponsorMail(mail.TemplateSponsorshipBonus, def, team, nil)
			msg.Data["Amount"] = bonus
			msgs = append(msgs, msg)
		}

		// renewal is decided on its own, bonus or not
		o := running(sp)
		if o != nil && sp.Latest().Status == domain.SponsorshipActive && !o.End.After(domain.AddDays(p.Date, constants.SeasonLength)) && s.sess.Rand.Roll(def.RenewChance) {
			renewal := s.offer(def, o.End, domain.SponsorshipInvited)
			renewal.SponsorshipID = sp.ID
			if err := s.sess.Store.AddSponsorshipOffer(ctx, &renewal); err != nil {
				return err
			}
			msgs = append(msgs, sponsorMail(mail.TemplateSponsorshipInvite, def, team, &renewal))
		}
	}

	pending, err := s.sess.Store.ListSponsorships(ctx, teamID, domain.SponsorshipPending, domain.SponsorshipInvited)
	if err != nil {
		return err
	}
	for _, sp := range pending {
		signed[sp.Sponsor] = true
	}
	for _, def := range constants.Sponsors {
		if signed[def.Slug] || team.Tier < def.MinTier || !s.sess.Rand.Roll(constants.SponsorInviteChance) {
			continue
		}
		sp := &domain.Sponsorship{
			TeamID:  teamID,
			Sponsor: def.Slug,
			Status:  domain.SponsorshipInvited,
			Offers:  []domain.SponsorshipOffer{s.offer(def, p.Date, domain.SponsorshipInvited)},
		}
		if err := s.sess.Store.CreateSponsorship(ctx, sp); err != nil {
			return err
		}
		msgs = append(msgs, sponsorMail(mail.TemplateSponsorshipInvite, def, team, sp.Latest()))
	}

	return s.sess.Mail.SendMany(ctx, p.Date, msgs)
}

// AnswerInvite is the user's reply to a sponsor's invite or renewal offer.
func (s *Service) AnswerInvite(ctx context.Context, id int64, accept bool) error {
	sp, err := s.sess.Store.GetSponsorship(ctx, id)
	if err != nil {
		return err
	}
	o := sp.Latest()
	if o == nil || o.Status != domain.SponsorshipInvited {
		s.logger.Warn().Int64("sponsorship_id", id).Msg("no open invite on sponsorship")
		return nil
	}
	p, err := s.sess.Profile(ctx)
	if err != nil {
		return err
	}
	if !accept {
		if sp.Status == domain.SponsorshipActive {
			// declining a renewal leaves the running deal alone
			return s.sess.Store.SetSponsorshipOfferStatus(ctx, o, domain.SponsorshipRejected)
		}
		return s.sess.Store.SetSponsorshipStatus(ctx, sp, domain.SponsorshipRejected)
	}
	if sp.Status == domain.SponsorshipActive {
		// the renewal picks up payments where the current deal ends
		return s.sess.Store.SetSponsorshipOfferStatus(ctx, o, domain.SponsorshipActive)
	}
	return s.activate(ctx, sp, p.Date)
}

// running returns the offer currently paying out.
func running(sp *domain.Sponsorship) *domain.SponsorshipOffer {
	for i := len(sp.Offers) - 1; i >= 0; i-- {
		if sp.Offers[i].Status == domain.SponsorshipActive {
			return &sp.Offers[i]
		}
	}
	return nil
}

func (s *Service) lastStanding(ctx context.Context, teamID int64, season int) (*repository.Standing, error) {
	st, err := s.sess.Store.GetDivisionStanding(ctx, teamID, season-1)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return st, err
}

func met(c constants.Clause, st *repository.Standing) bool {
	switch c.Kind {
	case constants.ClausePlacement:
		return st.Competitor.Position > 0 && st.Competitor.Position <= c.Position
	case constants.ClauseDivision:
		return st.Prestige >= c.Position
	}
	return false
}

func failed(clauses []constants.Clause, st *repository.Standing) []constants.Clause {
	var out []constants.Clause
	for _, c := range clauses {
		if !met(c, st) {
			out = append(out, c)
		}
	}
	return out
}

// bonuses pays the best placement bonus met plus any division bonuses.
func bonuses(clauses []constants.Clause, st *repository.Standing) int64 {
	var placement, total int64
	for _, c := range clauses {
		if !met(c, st) {
			continue
		}
		if c.Kind == constants.ClausePlacement {
			placement = max(placement, c.Amount)
			continue
		}
		total += c.Amount
	}
	return total + placement
}
