package repository

import (
	"context"
	"fmt"

	"esports-sim/internal/domain"
)

type TeamFilter struct {
	Tier         *int
	FederationID *int64
	IDs          []int64
}

const teamColumns = `id, name, slug, federation_id, tier, elo, earnings`

func scanTeam(row interface{ Scan(...any) error }) (domain.Team, error) {
	var t domain.Team
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.FederationID, &t.Tier, &t.Elo, &t.Earnings)
	return t, err
}

func (s *Store) CreateTeam(ctx context.Context, t *domain.Team) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO teams (name, slug, federation_id, tier, elo, earnings) VALUES (?, ?, ?, ?, ?, ?)`,
		t.Name, t.Slug, t.FederationID, t.Tier, t.Elo, t.Earnings,
	)
	if err != nil {
		return fmt.Errorf("failed to create team %s: %w", t.Slug, err)
	}
	t.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetTeam(ctx context.Context, id int64) (*domain.Team, error) {
	t, err := scanTeam(s.conn(ctx).QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *Store) GetTeamBySlug(ctx context.Context, slug string) (*domain.Team, error) {
	t, err := scanTeam(s.conn(ctx).QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE slug = ?`, slug))
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// GetTeamWithPlayers loads the team and its roster ordered by id.
func (s *Store) GetTeamWithPlayers(ctx context.Context, id int64) (*domain.Team, error) {
	t, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Players, err = s.ListPlayersByTeam(ctx, id); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTeams returns teams in insertion order.
func (s *Store) ListTeams(ctx context.Context, f TeamFilter) ([]domain.Team, error) {
	var w where
	if f.Tier != nil {
		w.add("tier = ?", *f.Tier)
	}
	if f.FederationID != nil {
		w.add("federation_id = ?", *f.FederationID)
	}
	w.in("id", anySlice(f.IDs))

	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT `+teamColumns+` FROM teams`+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) UpdateTeamElo(ctx context.Context, id int64, elo float64) error {
	_, err := s.conn(ctx).ExecContext(ctx, `UPDATE teams SET elo = ? WHERE id = ?`, elo, id)
	return err
}

func (s *Store) UpdateTeamTier(ctx context.Context, id int64, tier int) error {
	_, err := s.conn(ctx).ExecContext(ctx, `UPDATE teams SET tier = ? WHERE id = ?`, tier, id)
	return err
}

func (s *Store) RenameTeam(ctx context.Context, id int64, name, slug string) error {
	_, err := s.conn(ctx).ExecContext(ctx, `UPDATE teams SET name = ?, slug = ? WHERE id = ?`, name, slug, id)
	if err != nil {
		return fmt.Errorf("failed to rename team %d: %w", id, err)
	}
	return nil
}

func (s *Store) IncrementEarnings(ctx context.Context, id int64, amount int64) error {
	_, err := s.conn(ctx).ExecContext(ctx, `UPDATE teams SET earnings = earnings + ? WHERE id = ?`, amount, id)
	return err
}
