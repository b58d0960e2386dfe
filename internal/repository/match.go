package repository

import (
	"context"
	"fmt"
	"time"

	"esports-sim/internal/domain"
)

type MatchFilter struct {
	CompetitionID *int64
	TeamID        *int64
	Date          *time.Time
	From          *time.Time // inclusive
	Statuses      []domain.MatchStatus
	Limit         int
	Newest        bool
}

func (s *Store) CreateMatch(ctx context.Context, m *domain.Match) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		m.Date = domain.Day(m.Date)
		res, err := s.conn(ctx).ExecContext(ctx, `
			INSERT INTO matches (competition_id, round, total_rounds, status, date, payload)
			VALUES (?, ?, ?, ?, ?, ?)`,
			m.CompetitionID, m.Round, m.TotalRounds, m.Status, m.Date, m.Payload,
		)
		if err != nil {
			return fmt.Errorf("failed to create match %s: %w", m.Payload, err)
		}
		if m.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		for i := range m.Competitors {
			m.Competitors[i].MatchID = m.ID
			if err := s.addMatchCompetitor(ctx, &m.Competitors[i]); err != nil {
				return err
			}
		}
		for i := range m.Games {
			g := &m.Games[i]
			g.MatchID = m.ID
			res, err := s.conn(ctx).ExecContext(ctx,
				`INSERT INTO games (match_id, num, map, status) VALUES (?, ?, ?, ?)`,
				g.MatchID, g.Num, g.Map, g.Status)
			if err != nil {
				return fmt.Errorf("failed to create game %d of match %d: %w", g.Num, m.ID, err)
			}
			if g.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddMatchCompetitor adds a team to a match; adding a team twice is a no-op.
func (s *Store) AddMatchCompetitor(ctx context.Context, mc *domain.MatchCompetitor) error {
	return s.addMatchCompetitor(ctx, mc)
}

func (s *Store) addMatchCompetitor(ctx context.Context, mc *domain.MatchCompetitor) error {
	err := s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO match_competitors (match_id, team_id, seed, score, result) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (match_id, team_id) DO UPDATE SET seed = excluded.seed
		RETURNING id`,
		mc.MatchID, mc.TeamID, mc.Seed, mc.Score, mc.Result,
	).Scan(&mc.ID)
	if err != nil {
		return fmt.Errorf("failed to add team %d to match %d: %w", mc.TeamID, mc.MatchID, err)
	}
	return nil
}

const matchColumns = `m.id, m.competition_id, m.round, m.total_rounds, m.status, m.date, m.payload`

func scanMatch(row interface{ Scan(...any) error }) (domain.Match, error) {
	var m domain.Match
	err := row.Scan(&m.ID, &m.CompetitionID, &m.Round, &m.TotalRounds, &m.Status, &m.Date, &m.Payload)
	return m, err
}

func (s *Store) GetMatch(ctx context.Context, id int64) (*domain.Match, error) {
	m, err := scanMatch(s.conn(ctx).QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches m WHERE m.id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.loadMatch(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMatchByPayload finds a match by its bracket position.
func (s *Store) GetMatchByPayload(ctx context.Context, competitionID int64, payload string) (*domain.Match, error) {
	m, err := scanMatch(s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches m WHERE m.competition_id = ? AND m.payload = ?`,
		competitionID, payload))
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.loadMatch(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) loadMatch(ctx context.Context, m *domain.Match) error {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, match_id, team_id, seed, score, result
		FROM match_competitors WHERE match_id = ? ORDER BY seed, id`, m.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	m.Competitors = nil
	for rows.Next() {
		var mc domain.MatchCompetitor
		if err := rows.Scan(&mc.ID, &mc.MatchID, &mc.TeamID, &mc.Seed, &mc.Score, &mc.Result); err != nil {
			return err
		}
		m.Competitors = append(m.Competitors, mc)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	games, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, match_id, num, map, status FROM games WHERE match_id = ? ORDER BY num`, m.ID)
	if err != nil {
		return err
	}
	defer games.Close()

	m.Games = nil
	for games.Next() {
		var g domain.Game
		if err := games.Scan(&g.ID, &g.MatchID, &g.Num, &g.Map, &g.Status); err != nil {
			return err
		}
		m.Games = append(m.Games, g)
	}
	return games.Err()
}

// ListMatches returns matches ordered by date then id, with competitors and
// games loaded.
func (s *Store) ListMatches(ctx context.Context, f MatchFilter) ([]domain.Match, error) {
	var w where
	if f.CompetitionID != nil {
		w.add("m.competition_id = ?", *f.CompetitionID)
	}
	if f.TeamID != nil {
		w.add("m.id IN (SELECT match_id FROM match_competitors WHERE team_id = ?)", *f.TeamID)
	}
	if f.Date != nil {
		w.add("m.date = ?", domain.Day(*f.Date))
	}
	if f.From != nil {
		w.add("m.date >= ?", domain.Day(*f.From))
	}
	w.in("m.status", anySlice(f.Statuses))

	query := `SELECT ` + matchColumns + ` FROM matches m` + w.String()
	if f.Newest {
		query += ` ORDER BY m.date DESC, m.id DESC`
	} else {
		query += ` ORDER BY m.date, m.id`
	}
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.conn(ctx).QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range out {
		if err := s.loadMatch(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) UpdateMatchStatus(ctx context.Context, id int64, status domain.MatchStatus) error {
	_, err := s.conn(ctx).ExecContext(ctx, `UPDATE matches SET status = ? WHERE id = ?`, status, id)
	return err
}

// SaveMatchResult stores scores, results and statuses for the match and its
// games.
func (s *Store) SaveMatchResult(ctx context.Context, m *domain.Match) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		for _, mc := range m.Competitors {
			if _, err := s.conn(ctx).ExecContext(ctx,
				`UPDATE match_competitors SET score = ?, result = ? WHERE id = ?`, mc.Score, mc.Result, mc.ID,
			); err != nil {
				return fmt.Errorf("failed to save result of match %d: %w", m.ID, err)
			}
		}
		for _, g := range m.Games {
			if _, err := s.conn(ctx).ExecContext(ctx, `UPDATE games SET status = ? WHERE id = ?`, g.Status, g.ID); err != nil {
				return fmt.Errorf("failed to save game %d: %w", g.ID, err)
			}
		}
		return s.UpdateMatchStatus(ctx, m.ID, m.Status)
	})
}

// RecentResults returns the team's latest completed results, newest first.
func (s *Store) RecentResults(ctx context.Context, teamID int64, limit int) ([]domain.MatchResult, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT mc.result FROM match_competitors mc
		JOIN matches m ON m.id = mc.match_id
		WHERE mc.team_id = ? AND m.status = ? AND mc.result IS NOT NULL
		ORDER BY m.date DESC, m.id DESC LIMIT ?`, teamID, domain.MatchCompleted, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MatchResult
	for rows.Next() {
		var r domain.MatchResult
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
