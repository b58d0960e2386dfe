package repository

import (
	"context"
	"fmt"

	"esports-sim/internal/domain"
)

type CompetitionFilter struct {
	Season       *int
	TierID       *int64
	FederationID *int64
	Statuses     []domain.CompetitionStatus
	TeamID       *int64
}

// Standing is a team's row in a domestic division.
type Standing struct {
	Competitor domain.Competitor
	Prestige   int
	Season     int
}

func (s *Store) CreateCompetition(ctx context.Context, c *domain.Competition) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		res, err := s.conn(ctx).ExecContext(ctx, `
			INSERT INTO competitions (tier_id, federation_id, season, status, tournament) VALUES (?, ?, ?, ?, ?)`,
			c.TierID, c.FederationID, c.Season, c.Status, nullableBlob(c.Tournament),
		)
		if err != nil {
			return fmt.Errorf("failed to create competition: %w", err)
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		for i := range c.Competitors {
			c.Competitors[i].CompetitionID = c.ID
			if err := s.createCompetitor(ctx, &c.Competitors[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) createCompetitor(ctx context.Context, cp *domain.Competitor) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO competitors (competition_id, team_id, seed, grp, position, win, loss, draw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cp.CompetitionID, cp.TeamID, cp.Seed, cp.Group, cp.Position, cp.Win, cp.Loss, cp.Draw,
	)
	if err != nil {
		return fmt.Errorf("failed to add team %d to competition %d: %w", cp.TeamID, cp.CompetitionID, err)
	}
	cp.ID, err = res.LastInsertId()
	return err
}

// AddCompetitors appends teams to a competition, skipping ones already in it.
func (s *Store) AddCompetitors(ctx context.Context, competitionID int64, teamIDs []int64) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		for _, id := range teamIDs {
			if _, err := s.conn(ctx).ExecContext(ctx, `
				INSERT INTO competitors (competition_id, team_id) VALUES (?, ?)
				ON CONFLICT (competition_id, team_id) DO NOTHING`, competitionID, id,
			); err != nil {
				return fmt.Errorf("failed to add team %d to competition %d: %w", id, competitionID, err)
			}
		}
		return nil
	})
}

const competitionColumns = `c.id, c.tier_id, c.federation_id, c.season, c.status, c.tournament`

func scanCompetition(row interface{ Scan(...any) error }) (domain.Competition, error) {
	var c domain.Competition
	var blob *string
	err := row.Scan(&c.ID, &c.TierID, &c.FederationID, &c.Season, &c.Status, &blob)
	if blob != nil {
		c.Tournament = []byte(*blob)
	}
	return c, err
}

// GetCompetition loads the competition with its tier, league and competitors.
func (s *Store) GetCompetition(ctx context.Context, id int64) (*domain.Competition, error) {
	c, err := scanCompetition(s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+competitionColumns+` FROM competitions c WHERE c.id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.loadCompetition(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) loadCompetition(ctx context.Context, c *domain.Competition) error {
	var err error
	if c.Tier, err = s.GetTier(ctx, c.TierID); err != nil {
		return fmt.Errorf("failed to load tier of competition %d: %w", c.ID, err)
	}
	if c.Competitors, err = s.ListCompetitors(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to load competitors of competition %d: %w", c.ID, err)
	}
	return nil
}

// FindCompetition returns the most recent competition of a tier in a season.
// A nil federation matches any federation.
func (s *Store) FindCompetition(ctx context.Context, tierSlug string, season int, federationID *int64) (*domain.Competition, error) {
	var w where
	w.add("t.slug = ?", tierSlug)
	w.add("c.season = ?", season)
	if federationID != nil {
		w.add("c.federation_id = ?", *federationID)
	}

	c, err := scanCompetition(s.conn(ctx).QueryRowContext(ctx, `
		SELECT `+competitionColumns+` FROM competitions c JOIN tiers t ON t.id = c.tier_id`+
		w.String()+` ORDER BY c.id DESC LIMIT 1`, w.args...))
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.loadCompetition(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCompetitions returns matching competitions with their tiers loaded but
// not their competitors.
func (s *Store) ListCompetitions(ctx context.Context, f CompetitionFilter) ([]domain.Competition, error) {
	var w where
	if f.Season != nil {
		w.add("c.season = ?", *f.Season)
	}
	if f.TierID != nil {
		w.add("c.tier_id = ?", *f.TierID)
	}
	if f.FederationID != nil {
		w.add("c.federation_id = ?", *f.FederationID)
	}
	if f.TeamID != nil {
		w.add("c.id IN (SELECT competition_id FROM competitors WHERE team_id = ?)", *f.TeamID)
	}
	w.in("c.status", anySlice(f.Statuses))

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT `+competitionColumns+` FROM competitions c`+w.String()+` ORDER BY c.id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Competition
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range out {
		if out[i].Tier, err = s.GetTier(ctx, out[i].TierID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) UpdateCompetition(ctx context.Context, c *domain.Competition) error {
	_, err := s.conn(ctx).ExecContext(ctx, `UPDATE competitions SET status = ?, tournament = ? WHERE id = ?`,
		c.Status, nullableBlob(c.Tournament), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update competition %d: %w", c.ID, err)
	}
	return nil
}

func (s *Store) ListCompetitors(ctx context.Context, competitionID int64) ([]domain.Competitor, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, competition_id, team_id, seed, grp, position, win, loss, draw
		FROM competitors WHERE competition_id = ? ORDER BY id`, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Competitor
	for rows.Next() {
		var cp domain.Competitor
		if err := rows.Scan(&cp.ID, &cp.CompetitionID, &cp.TeamID, &cp.Seed, &cp.Group,
			&cp.Position, &cp.Win, &cp.Loss, &cp.Draw); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCompetitor(ctx context.Context, cp *domain.Competitor) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE competitors SET seed = ?, grp = ?, position = ?, win = ?, loss = ?, draw = ? WHERE id = ?`,
		cp.Seed, cp.Group, cp.Position, cp.Win, cp.Loss, cp.Draw, cp.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update competitor %d: %w", cp.ID, err)
	}
	return nil
}

// GetDivisionStanding returns the team's row in the domestic division it
// played in that season, or ErrNotFound.
func (s *Store) GetDivisionStanding(ctx context.Context, teamID int64, season int) (*Standing, error) {
	var st Standing
	cp := &st.Competitor
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT cp.id, cp.competition_id, cp.team_id, cp.seed, cp.grp, cp.position, cp.win, cp.loss, cp.draw,
			t.prestige, c.season
		FROM competitors cp
		JOIN competitions c ON c.id = cp.competition_id
		JOIN tiers t ON t.id = c.tier_id
		WHERE cp.team_id = ? AND c.season = ? AND t.prestige IS NOT NULL
		ORDER BY c.id DESC LIMIT 1`, teamID, season,
	).Scan(&cp.ID, &cp.CompetitionID, &cp.TeamID, &cp.Seed, &cp.Group, &cp.Position,
		&cp.Win, &cp.Loss, &cp.Draw, &st.Prestige, &st.Season)
	if err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

func nullableBlob(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
