package tournament

import (
	"context"
	"fmt"
	"time"

	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/mail"
)

// StartSeason closes the previous season for the user's team, moves the
// profile to the next season and creates every competition seeded at season
// start.
func (o *Orchestrator) StartSeason(ctx context.Context) error {
	return o.sess.Store.InTx(ctx, func(ctx context.Context) error {
		p, err := o.sess.Profile(ctx)
		if err != nil {
			return err
		}

		if p.Season > 0 && p.TeamID != nil {
			if err := o.economy.CheckSponsorships(ctx, *p.TeamID, p.Season); err != nil {
				return fmt.Errorf("failed to settle sponsorships: %w", err)
			}
		}

		p.Season++
		if err := o.sess.Store.UpdateProfile(ctx, p); err != nil {
			return err
		}
		log := o.logger.With().Int("season", p.Season).Logger()

		created, err := o.createCompetitions(ctx, p.Season, p.Date)
		if err != nil {
			return err
		}
		if err := o.economy.SyncTiers(ctx, p.Season); err != nil {
			return err
		}
		if p.TeamID != nil {
			if err := o.economy.SyncWages(ctx, *p.TeamID); err != nil {
				return err
			}
		}

		next := domain.NewEntry(domain.AddDays(p.Date, constants.SeasonLength), domain.CalendarSeasonStart, domain.NoPayload{})
		if err := o.sess.Store.Schedule(ctx, &next); err != nil {
			return err
		}

		if _, err := o.sess.Mail.Send(ctx, p.Date, mail.Message{
			Template: mail.TemplateWelcome,
			From:     "League Office",
			Data:     map[string]any{"Season": p.Season, "Date": p.Date.Format(time.DateOnly)},
		}); err != nil {
			return err
		}

		log.Info().Int("competitions", created).Msg("season started")
		return nil
	})
}

// createCompetitions creates one competition per season-start rule set, tier
// and federation of the tier's league.
func (o *Orchestrator) createCompetitions(ctx context.Context, season int, today time.Time) (int, error) {
	tiers, err := o.sess.Store.ListTiers(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range tiers {
		items := o.rulesFor(tiers[i].Slug, domain.OnSeasonStart)
		if len(items) == 0 {
			continue
		}
		tier, err := o.sess.Store.GetTier(ctx, tiers[i].ID)
		if err != nil {
			return 0, err
		}

		for _, fedID := range tier.League.FederationIDs {
			fed, err := o.sess.Store.GetFederation(ctx, fedID)
			if err != nil {
				return 0, err
			}
			for _, item := range items {
				teams, err := o.autofill.Resolve(ctx, item, tier, fed, season)
				if err != nil {
					return 0, err
				}

				c := &domain.Competition{
					TierID:       tier.ID,
					FederationID: fed.ID,
					Season:       season,
					Status:       domain.CompetitionScheduled,
				}
				for n, t := range teams {
					c.Competitors = append(c.Competitors, domain.Competitor{TeamID: t.ID, Seed: n + 1})
				}
				if err := o.sess.Store.CreateCompetition(ctx, c); err != nil {
					return 0, err
				}
				created++

				// triggered tiers wait for the competition they follow
				if tier.TriggerTierSlug != nil {
					continue
				}
				e := domain.NewEntry(domain.AddDays(today, tier.League.StartOffsetDays),
					domain.CalendarCompetitionStart, domain.IDPayload{ID: c.ID})
				if err := o.sess.Store.Schedule(ctx, &e); err != nil {
					return 0, err
				}
			}
		}
	}
	return created, nil
}
