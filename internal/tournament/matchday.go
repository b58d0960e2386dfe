package tournament

import (
	"context"
	"errors"
	"time"

	"esports-sim/internal/bracket"
	"esports-sim/internal/chance"
	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/repository"
	"esports-sim/internal/session"
	"esports-sim/internal/simulator"
)

var matchdayTypes = []domain.CalendarType{domain.CalendarMatchdayUser, domain.CalendarMatchdayNPC}

// matchdays carries what generating one competition's fixtures needs.
type matchdays struct {
	comp       *domain.Competition
	t          *bracket.Tournament
	today      time.Time
	mapPool    []string
	mapName    string
	userTeamID int64
	rand       *chance.Source
}

// MatchStatus derives a fixture's status from its bracket slots: byes never
// get played, otherwise it depends on how many sides are known.
func MatchStatus(m bracket.Match) domain.MatchStatus {
	if m.HasBye() {
		return domain.MatchCompleted
	}
	known := 0
	for _, seed := range m.P {
		if seed > 0 {
			known++
		}
	}
	switch known {
	case 0:
		return domain.MatchLocked
	case 1:
		return domain.MatchWaiting
	}
	return domain.MatchReady
}

// BestOf is the number of games played in a round with remaining rounds after
// it.
func BestOf(tierSlug string, remaining int) int {
	table := constants.BestOf[tierSlug]
	if remaining >= 0 && remaining < len(table) {
		return table[remaining]
	}
	return constants.DefaultBestOf
}

// createMatchdays creates or refreshes the fixtures of one bracket round.
// Existing fixtures are updated in place.
func (o *Orchestrator) createMatchdays(ctx context.Context, gen matchdays, round []bracket.Match, num, total int) ([]domain.Match, error) {
	out := make([]domain.Match, 0, len(round))
	for _, bm := range round {
		var competitors []domain.MatchCompetitor
		for _, seed := range bm.P {
			if teamID, ok := gen.t.CompetitorOf(seed); ok {
				competitors = append(competitors, domain.MatchCompetitor{TeamID: teamID, Seed: seed})
			}
		}
		status := MatchStatus(bm)
		payload := bm.ID.Encode()

		existing, err := o.sess.Store.GetMatchByPayload(ctx, gen.comp.ID, payload)
		switch {
		case err == nil:
			if err := o.refreshMatch(ctx, gen, existing, competitors, status); err != nil {
				return nil, err
			}
			out = append(out, *existing)
			continue
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}

		m, err := o.newMatch(ctx, gen, bm, competitors, status, num, total)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

func (o *Orchestrator) newMatch(ctx context.Context, gen matchdays, bm bracket.Match, competitors []domain.MatchCompetitor, status domain.MatchStatus, num, total int) (*domain.Match, error) {
	weekday, err := chance.Weighted(gen.rand, constants.MatchdayWeights[gen.comp.Tier.League.Slug])
	if errors.Is(err, chance.ErrNoWeight) {
		weekday = gen.today.Weekday()
	} else if err != nil {
		return nil, err
	}

	m := &domain.Match{
		CompetitionID: gen.comp.ID,
		Round:         num,
		TotalRounds:   total,
		Status:        status,
		Date:          domain.SnapToWeekday(domain.AddDays(gen.today, num*constants.DaysPerWeek), weekday),
		Payload:       bm.ID.Encode(),
		Competitors:   competitors,
	}
	for g := range BestOf(gen.comp.Tier.Slug, total-num) {
		name := gen.mapName
		if g > 0 {
			name = chance.Pick(gen.rand, gen.mapPool)
		}
		m.Games = append(m.Games, domain.Game{Num: g + 1, Map: name, Status: status})
	}
	if err := o.sess.Store.CreateMatch(ctx, m); err != nil {
		return nil, err
	}

	if status == domain.MatchCompleted {
		return m, nil
	}
	e := domain.NewEntry(m.Date, session.MatchdayType(gen.userTeamID, m), domain.IDPayload{ID: m.ID})
	if err := o.sess.Store.Schedule(ctx, &e); err != nil {
		return nil, err
	}
	return m, nil
}

func (o *Orchestrator) refreshMatch(ctx context.Context, gen matchdays, m *domain.Match, competitors []domain.MatchCompetitor, status domain.MatchStatus) error {
	if m.Status == domain.MatchCompleted || m.Status == domain.MatchPlaying {
		return nil
	}
	for _, c := range competitors {
		if m.Has(c.TeamID) {
			continue
		}
		c.MatchID = m.ID
		if err := o.sess.Store.AddMatchCompetitor(ctx, &c); err != nil {
			return err
		}
		m.Competitors = append(m.Competitors, c)
	}
	if status != m.Status {
		if err := o.sess.Store.UpdateMatchStatus(ctx, m.ID, status); err != nil {
			return err
		}
		m.Status = status
	}
	return o.retypeMatchday(ctx, gen.userTeamID, m)
}

// retypeMatchday moves the match's pending calendar entry between user and
// NPC matchdays.
func (o *Orchestrator) retypeMatchday(ctx context.Context, userTeamID int64, m *domain.Match) error {
	no := false
	payload := domain.IDPayload{ID: m.ID}.Encode()
	entries, err := o.sess.Store.ListEntries(ctx, repository.CalendarFilter{
		Types:     matchdayTypes,
		Payload:   &payload,
		Completed: &no,
	})
	if err != nil {
		return err
	}
	want := session.MatchdayType(userTeamID, m)
	for i := range entries {
		if err := o.sess.Store.RetypeEntry(ctx, &entries[i], want); err != nil {
			return err
		}
	}
	return nil
}

// ResyncMatchdays re-derives user/NPC ownership of teamID's upcoming
// matchdays, after the user's player joins, leaves or is benched.
func (o *Orchestrator) ResyncMatchdays(ctx context.Context, teamID int64) error {
	p, err := o.sess.Profile(ctx)
	if err != nil {
		return err
	}
	userTeamID, err := o.sess.UserTeamID(ctx)
	if err != nil {
		return err
	}
	matches, err := o.sess.Store.ListMatches(ctx, repository.MatchFilter{
		TeamID:   &teamID,
		From:     &p.Date,
		Statuses: []domain.MatchStatus{domain.MatchLocked, domain.MatchWaiting, domain.MatchReady},
	})
	if err != nil {
		return err
	}
	for i := range matches {
		if err := o.retypeMatchday(ctx, userTeamID, &matches[i]); err != nil {
			return err
		}
	}
	o.logger.Debug().Int64("team_id", teamID).Int("matches", len(matches)).Msg("matchdays resynced")
	return nil
}

// PlayMatchday fires a matchday entry. User matches halt the day so the user
// can play them; everything else is simulated.
func (o *Orchestrator) PlayMatchday(ctx context.Context, matchID int64, user bool) (bool, error) {
	m, err := o.sess.Store.GetMatch(ctx, matchID)
	if errors.Is(err, repository.ErrNotFound) {
		o.logger.Warn().Int64("match_id", matchID).Msg("matchday for missing match")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if m.Status == domain.MatchCompleted {
		return false, nil
	}
	if m.Status != domain.MatchReady {
		o.logger.Warn().Int64("match_id", matchID).Str("status", string(m.Status)).Msg("matchday is not ready")
		return false, nil
	}

	if user {
		userTeamID, err := o.sess.UserTeamID(ctx)
		if err != nil {
			return false, err
		}
		if userTeamID != 0 && m.Has(userTeamID) {
			return true, nil
		}
	}
	return false, o.PlayMatch(ctx, matchID)
}

// PlayMatch simulates a ready match and stores its result, per-player stats
// and the Elo change.
func (o *Orchestrator) PlayMatch(ctx context.Context, matchID int64) error {
	return o.sess.Store.InTx(ctx, func(ctx context.Context) error {
		m, err := o.sess.Store.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m.Status != domain.MatchReady || len(m.Competitors) != 2 {
			o.logger.Warn().Int64("match_id", matchID).Str("status", string(m.Status)).Msg("match cannot be played")
			return nil
		}
		comp, err := o.sess.Store.GetCompetition(ctx, m.CompetitionID)
		if err != nil {
			return err
		}
		p, err := o.sess.Profile(ctx)
		if err != nil {
			return err
		}

		home, err := o.sess.Store.GetTeamWithPlayers(ctx, m.Competitors[0].TeamID)
		if err != nil {
			return err
		}
		away, err := o.sess.Store.GetTeamWithPlayers(ctx, m.Competitors[1].TeamID)
		if err != nil {
			return err
		}

		res := o.sess.Sim.Play(side(home), side(away), simOptions(comp, m, o.sess.Fidelity(p)))

		for i := range m.Competitors {
			c := &m.Competitors[i]
			score := res.Scores[c.TeamID]
			result := res.ResultFor(c.TeamID)
			c.Score, c.Result = &score, &result
		}
		for i := range m.Games {
			m.Games[i].Status = domain.MatchCompleted
		}
		m.Status = domain.MatchCompleted
		if err := o.sess.Store.SaveMatchResult(ctx, m); err != nil {
			return err
		}

		for i := range res.Stats {
			res.Stats[i].MatchID = m.ID
			res.Stats[i].Date = m.Date
		}
		if err := o.sess.Store.CreatePlayerStats(ctx, res.Stats); err != nil {
			return err
		}
		if err := o.economy.UpdateElo(ctx, home, away, res.ResultFor(home.ID)); err != nil {
			return err
		}

		o.logger.Info().
			Int64("match_id", m.ID).
			Int64("home", home.ID).
			Int64("away", away.ID).
			Int("home_score", res.Scores[home.ID]).
			Int("away_score", res.Scores[away.ID]).
			Msg("match played")
		return nil
	})
}

func side(t *domain.Team) simulator.Side {
	s := simulator.Side{TeamID: t.ID, Elo: t.Elo}
	for _, p := range t.Players {
		if p.Starter {
			s.Players = append(s.Players, p)
		}
	}
	return s
}

func simOptions(comp *domain.Competition, m *domain.Match, fidelity string) simulator.Options {
	return simulator.Options{
		Games:     len(m.Games),
		AllowDraw: comp.Tier.GroupSize != nil,
		Fidelity:  fidelity,
	}
}
