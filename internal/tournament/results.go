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

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RecordMatchResults feeds the day's completed matches back into their
// competitions' brackets. Competitions are recorded concurrently.
func (o *Orchestrator) RecordMatchResults(ctx context.Context, today time.Time) error {
	matches, err := o.sess.Store.ListMatches(ctx, repository.MatchFilter{
		Date:     &today,
		Statuses: []domain.MatchStatus{domain.MatchCompleted},
	})
	if err != nil {
		return fmt.Errorf("failed to list today's results: %w", err)
	}

	var order []int64
	byComp := map[int64][]domain.Match{}
	for _, m := range matches {
		if _, ok := byComp[m.CompetitionID]; !ok {
			order = append(order, m.CompetitionID)
		}
		byComp[m.CompetitionID] = append(byComp[m.CompetitionID], m)
	}

	// each competition draws from its own fork so the outcome does not
	// depend on which goroutine runs first
	forks := make(map[int64]*chance.Source, len(order))
	for _, id := range order {
		forks[id] = o.sess.Rand.Fork()
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.sess.Config.Workers)
	for _, id := range order {
		g.Go(func() error {
			return o.recordCompetition(gCtx, id, byComp[id], today, forks[id])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	o.logger.Debug().Int("matches", len(matches)).Int("competitions", len(order)).Msg("results recorded")
	return nil
}

// recordDay records today's results of a single competition.
func (o *Orchestrator) recordDay(ctx context.Context, competitionID int64, today time.Time) error {
	matches, err := o.sess.Store.ListMatches(ctx, repository.MatchFilter{
		CompetitionID: &competitionID,
		Date:          &today,
		Statuses:      []domain.MatchStatus{domain.MatchCompleted},
	})
	if err != nil {
		return err
	}
	return o.recordCompetition(ctx, competitionID, matches, today, o.sess.Rand)
}

func (o *Orchestrator) recordCompetition(ctx context.Context, id int64, matches []domain.Match, today time.Time, src *chance.Source) error {
	return o.sess.Store.InTx(ctx, func(ctx context.Context) error {
		comp, err := o.sess.Store.GetCompetition(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			o.logger.Warn().Int64("competition_id", id).Msg("results for missing competition")
			return nil
		}
		if err != nil {
			return err
		}
		log := o.logger.With().Int64("competition_id", id).Str("tier", comp.Tier.Slug).Logger()
		if comp.Status != domain.CompetitionStarted || comp.Tournament == nil {
			log.Debug().Str("status", string(comp.Status)).Msg("competition not in play, skipping results")
			return nil
		}

		t, err := bracket.Restore(comp.Tournament)
		if err != nil {
			return err
		}
		sections := t.Sections()
		prev := make(map[int]int, len(sections))
		for _, s := range sections {
			prev[s] = t.CurrentRound(s)
		}

		for _, m := range matches {
			o.feed(t, &m, log)
		}

		p, err := o.sess.Profile(ctx)
		if err != nil {
			return err
		}
		userTeamID, err := o.sess.UserTeamID(ctx)
		if err != nil {
			return err
		}
		gen := matchdays{comp: comp, t: t, today: today, mapPool: o.sess.MapPool(p), userTeamID: userTeamID, rand: src}
		gen.mapName = chance.Pick(gen.rand, gen.mapPool)

		for _, s := range sections {
			cur := t.CurrentRound(s)
			if cur == prev[s] || cur == 0 {
				continue
			}
			rounds := t.Rounds(s)
			if _, err := o.createMatchdays(ctx, gen, rounds[cur-1], cur, len(rounds)); err != nil {
				return err
			}
			log.Info().Int("section", s).Int("round", cur).Msg("round ready")
		}

		done := t.IsDone()
		if done {
			if err := o.triggerDependents(ctx, comp, today); err != nil {
				return err
			}
		}

		if err := o.saveStandings(ctx, comp, t); err != nil {
			return err
		}
		payouts, err := o.economy.DistributePrizes(ctx, comp.Tier.Slug, done, comp.Competitors)
		if err != nil {
			return err
		}
		if done {
			if err := o.award(ctx, p, comp, payouts); err != nil {
				return err
			}
		}

		if comp.Tournament, err = json.Marshal(t); err != nil {
			return fmt.Errorf("failed to serialize tournament: %w", err)
		}
		comp.Status = domain.CompetitionStarted
		if done {
			comp.Status = domain.CompetitionCompleted
			log.Info().Msg("competition completed")
		}
		return o.sess.Store.UpdateCompetition(ctx, comp)
	})
}

// feed records one stored result in the bracket. Byes and stale results are
// skipped.
func (o *Orchestrator) feed(t *bracket.Tournament, m *domain.Match, log zerolog.Logger) {
	id, err := bracket.ParseMatchID(m.Payload)
	if err != nil {
		log.Warn().Err(err).Int64("match_id", m.ID).Msg("match has no bracket position")
		return
	}
	bm, ok := t.FindMatch(id)
	if !ok {
		log.Warn().Int64("match_id", m.ID).Str("payload", m.Payload).Msg("match not in bracket")
		return
	}
	if bm.HasBye() {
		return
	}

	var score [2]int
	for side, seed := range bm.P {
		teamID, _ := t.CompetitorOf(seed)
		found := false
		for _, c := range m.Competitors {
			if c.TeamID == teamID && c.Score != nil {
				score[side] = *c.Score
				found = true
			}
		}
		if !found {
			log.Warn().Int64("match_id", m.ID).Int("seed", seed).Msg("match result has no score for a side")
			return
		}
	}

	if err := t.Score(id, score); err != nil {
		log.Warn().Err(err).Int64("match_id", m.ID).Msg("bracket rejected result")
	}
}

// saveStandings copies per-seed results into the competitor rows. The global
// position wins over the in-group one when the library has it.
func (o *Orchestrator) saveStandings(ctx context.Context, comp *domain.Competition, t *bracket.Tournament) error {
	results := t.Results()
	byTeam := make(map[int64]bracket.Result, len(results))
	for _, r := range results {
		if teamID, ok := t.CompetitorOf(r.Seed); ok {
			byTeam[teamID] = r
		}
	}

	for i := range comp.Competitors {
		c := &comp.Competitors[i]
		r, ok := byTeam[c.TeamID]
		if !ok {
			continue
		}
		c.Seed = r.Seed
		c.Group = r.Group
		c.Position = r.Pos
		if r.Gpos != nil {
			c.Position = *r.Gpos
		}
		c.Win, c.Loss, c.Draw = r.Wins, r.Losses, r.Draws
		if err := o.sess.Store.UpdateCompetitor(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// triggerDependents schedules the start of competitions whose tier follows
// comp's tier, in the same federation or globally.
func (o *Orchestrator) triggerDependents(ctx context.Context, comp *domain.Competition, today time.Time) error {
	tiers, err := o.sess.Store.ListTiers(ctx)
	if err != nil {
		return err
	}
	for _, tier := range tiers {
		if tier.TriggerTierSlug == nil || *tier.TriggerTierSlug != comp.Tier.Slug {
			continue
		}
		offset := 0
		if tier.TriggerOffsetDays != nil {
			offset = *tier.TriggerOffsetDays
		}

		next, err := o.sess.Store.FindCompetition(ctx, tier.Slug, comp.Season, &comp.FederationID)
		if errors.Is(err, repository.ErrNotFound) {
			next, err = o.sess.Store.FindCompetition(ctx, tier.Slug, comp.Season, nil)
		}
		if errors.Is(err, repository.ErrNotFound) {
			o.logger.Info().Str("tier", tier.Slug).Int("season", comp.Season).Msg("no competition to trigger")
			continue
		}
		if err != nil {
			return err
		}
		if next.Status != domain.CompetitionScheduled {
			continue
		}

		payload := domain.IDPayload{ID: next.ID}.Encode()
		from, to := domain.AddDays(today, 1), domain.AddDays(today, offset)
		existing, err := o.sess.Store.ListEntries(ctx, repository.CalendarFilter{
			Types:   []domain.CalendarType{domain.CalendarCompetitionStart},
			Payload: &payload,
			From:    &from,
			To:      &to,
		})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}

		e := domain.NewEntry(domain.AddDays(today, offset), domain.CalendarCompetitionStart, domain.IDPayload{ID: next.ID})
		if err := o.sess.Store.Schedule(ctx, &e); err != nil {
			return err
		}
		o.logger.Info().
			Int64("competition_id", next.ID).
			Str("tier", tier.Slug).
			Time("date", e.Date).
			Msg("triggered competition scheduled")
	}
	return nil
}

// award congratulates the user when their team won a competition.
func (o *Orchestrator) award(ctx context.Context, p *domain.Profile, comp *domain.Competition, payouts map[int64]int64) error {
	userTeamID, err := o.userTeam(ctx, p)
	if err != nil || userTeamID == 0 {
		return err
	}
	for _, c := range comp.Competitors {
		if c.TeamID != userTeamID || c.Position != 1 {
			continue
		}
		team, err := o.sess.Store.GetTeam(ctx, c.TeamID)
		if err != nil {
			return err
		}
		_, err = o.sess.Mail.Send(ctx, p.Date, mail.Message{
			Template: mail.TemplateAward,
			From:     comp.Tier.League.Name,
			Data:     map[string]any{"Competition": comp.Tier.Name, "Team": team.Name, "Prize": payouts[c.TeamID]},
		})
		return err
	}
	return nil
}
