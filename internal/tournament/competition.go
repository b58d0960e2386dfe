package tournament

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"esports-sim/internal/bracket"
	"esports-sim/internal/chance"
	"esports-sim/internal/domain"
	"esports-sim/internal/mail"
	"esports-sim/internal/repository"
)

// StartCompetition seeds the bracket of a scheduled competition, generates
// every round's matchdays and schedules its end.
func (o *Orchestrator) StartCompetition(ctx context.Context, id int64) error {
	return o.sess.Store.InTx(ctx, func(ctx context.Context) error {
		comp, err := o.sess.Store.GetCompetition(ctx, id)
		if err != nil {
			return err
		}
		log := o.logger.With().Int64("competition_id", id).Str("tier", comp.Tier.Slug).Logger()
		if comp.Status != domain.CompetitionScheduled {
			log.Info().Str("status", string(comp.Status)).Msg("competition already started")
			return nil
		}
		p, err := o.sess.Profile(ctx)
		if err != nil {
			return err
		}

		if err := o.addLateCompetitors(ctx, comp); err != nil {
			return err
		}

		ids := make([]int64, len(comp.Competitors))
		for i, c := range comp.Competitors {
			ids[i] = c.TeamID
		}
		t := bracket.New(bracket.Config{Size: comp.Tier.Size, GroupSize: comp.Tier.GroupSize})
		if err := t.AddCompetitors(chance.Shuffle(o.sess.Rand, ids)...); err != nil {
			return err
		}
		if err := t.Start(); errors.Is(err, bracket.ErrTooFew) {
			log.Warn().Int("competitors", len(ids)).Msg("too few competitors, closing competition")
			comp.Status = domain.CompetitionCompleted
			return o.sess.Store.UpdateCompetition(ctx, comp)
		} else if err != nil {
			return err
		}

		if err := o.saveStandings(ctx, comp, t); err != nil {
			return err
		}

		userTeamID, err := o.sess.UserTeamID(ctx)
		if err != nil {
			return err
		}
		gen := matchdays{
			comp:       comp,
			t:          t,
			today:      p.Date,
			mapPool:    o.sess.MapPool(p),
			userTeamID: userTeamID,
			rand:       o.sess.Rand,
		}
		gen.mapName = chance.Pick(gen.rand, gen.mapPool)

		var last time.Time
		for _, section := range t.Sections() {
			rounds := t.Rounds(section)
			for r, round := range rounds {
				matches, err := o.createMatchdays(ctx, gen, round, r+1, len(rounds))
				if err != nil {
					return err
				}
				for _, m := range matches {
					if m.Date.After(last) {
						last = m.Date
					}
				}
			}
		}

		if comp.Tournament, err = json.Marshal(t); err != nil {
			return fmt.Errorf("failed to serialize tournament: %w", err)
		}
		comp.Status = domain.CompetitionStarted
		if err := o.sess.Store.UpdateCompetition(ctx, comp); err != nil {
			return err
		}

		end := domain.NewEntry(last, domain.CalendarCompetitionEnd, domain.IDPayload{ID: comp.ID})
		if err := o.sess.Store.Schedule(ctx, &end); err != nil {
			return err
		}

		log.Info().
			Int("competitors", len(ids)).
			Str("map", gen.mapName).
			Time("ends", last).
			Msg("competition started")
		return nil
	})
}

// addLateCompetitors appends teams from competition-start rule sets, up to the
// tier's size.
func (o *Orchestrator) addLateCompetitors(ctx context.Context, comp *domain.Competition) error {
	items := o.rulesFor(comp.Tier.Slug, domain.OnCompetitionStart)
	if len(items) == 0 {
		return nil
	}
	fed, err := o.sess.Store.GetFederation(ctx, comp.FederationID)
	if err != nil {
		return err
	}

	for _, item := range items {
		room := comp.Tier.Size - len(comp.Competitors)
		if room <= 0 {
			break
		}
		teams, err := o.autofill.Resolve(ctx, item, comp.Tier, fed, comp.Season)
		if err != nil {
			return err
		}
		var ids []int64
		for _, t := range teams {
			if len(ids) == room {
				break
			}
			if !hasTeam(comp.Competitors, t.ID) {
				ids = append(ids, t.ID)
			}
		}
		if err := o.sess.Store.AddCompetitors(ctx, comp.ID, ids); err != nil {
			return err
		}
		if comp.Competitors, err = o.sess.Store.ListCompetitors(ctx, comp.ID); err != nil {
			return err
		}
	}
	return nil
}

func hasTeam(competitors []domain.Competitor, teamID int64) bool {
	for _, c := range competitors {
		if c.TeamID == teamID {
			return true
		}
	}
	return false
}

// EndCompetition closes out a competition on its last matchday and sends the
// user their final standing when their team took part.
func (o *Orchestrator) EndCompetition(ctx context.Context, id int64) error {
	p, err := o.sess.Profile(ctx)
	if err != nil {
		return err
	}
	// the last matchday's results are usually not recorded yet
	if err := o.recordDay(ctx, id, p.Date); err != nil {
		return err
	}

	comp, err := o.sess.Store.GetCompetition(ctx, id)
	if err != nil {
		return err
	}
	log := o.logger.With().Int64("competition_id", id).Logger()
	if comp.Status != domain.CompetitionCompleted {
		log.Warn().Str("status", string(comp.Status)).Msg("competition not decided at its end date")
		return nil
	}

	userTeamID, err := o.userTeam(ctx, p)
	if err != nil || userTeamID == 0 {
		return err
	}
	for _, c := range comp.Competitors {
		if c.TeamID != userTeamID {
			continue
		}
		team, err := o.sess.Store.GetTeam(ctx, c.TeamID)
		if err != nil {
			return err
		}
		_, err = o.sess.Mail.Send(ctx, p.Date, mail.Message{
			Template: mail.TemplateCompetitionSummary,
			From:     comp.Tier.League.Name,
			Data: map[string]any{
				"Competition": comp.Tier.Name,
				"Team":        team.Name,
				"Position":    c.Position,
				"Size":        len(comp.Competitors),
				"Win":         c.Win,
				"Loss":        c.Loss,
				"Draw":        c.Draw,
			},
		})
		return err
	}
	return nil
}

// userTeam is the team whose results the user follows: the managed team or
// the career player's current team, starter or not.
func (o *Orchestrator) userTeam(ctx context.Context, p *domain.Profile) (int64, error) {
	if p.TeamID != nil {
		return *p.TeamID, nil
	}
	if p.PlayerID == nil {
		return 0, nil
	}
	player, err := o.sess.Store.GetPlayer(ctx, *p.PlayerID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && player.TeamID == nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return *player.TeamID, nil
}
