package repository

import (
	"context"
	"database/sql"
	"fmt"

	"esports-sim/internal/domain"
)

func (s *Store) CreateFederation(ctx context.Context, f *domain.Federation) error {
	res, err := s.conn(ctx).ExecContext(ctx, `INSERT INTO federations (slug, name) VALUES (?, ?)`, f.Slug, f.Name)
	if err != nil {
		return fmt.Errorf("failed to create federation %s: %w", f.Slug, err)
	}
	f.ID, err = res.LastInsertId()
	return err
}

func (s *Store) ListFederations(ctx context.Context) ([]domain.Federation, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT id, slug, name FROM federations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Federation
	for rows.Next() {
		var f domain.Federation
		if err := rows.Scan(&f.ID, &f.Slug, &f.Name); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) GetFederationBySlug(ctx context.Context, slug string) (*domain.Federation, error) {
	var f domain.Federation
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT id, slug, name FROM federations WHERE slug = ?`, slug).
		Scan(&f.ID, &f.Slug, &f.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (s *Store) GetFederation(ctx context.Context, id int64) (*domain.Federation, error) {
	var f domain.Federation
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT id, slug, name FROM federations WHERE id = ?`, id).
		Scan(&f.ID, &f.Slug, &f.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (s *Store) CreateLeague(ctx context.Context, l *domain.League) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		res, err := s.conn(ctx).ExecContext(ctx,
			`INSERT INTO leagues (slug, name, start_offset_days) VALUES (?, ?, ?)`,
			l.Slug, l.Name, l.StartOffsetDays,
		)
		if err != nil {
			return fmt.Errorf("failed to create league %s: %w", l.Slug, err)
		}
		if l.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		for _, fedID := range l.FederationIDs {
			if _, err := s.conn(ctx).ExecContext(ctx,
				`INSERT INTO league_federations (league_id, federation_id) VALUES (?, ?)`, l.ID, fedID,
			); err != nil {
				return fmt.Errorf("failed to link league %s: %w", l.Slug, err)
			}
		}
		return nil
	})
}

func (s *Store) ListLeagues(ctx context.Context) ([]domain.League, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT id, slug, name, start_offset_days FROM leagues ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.League
	for rows.Next() {
		var l domain.League
		if err := rows.Scan(&l.ID, &l.Slug, &l.Name, &l.StartOffsetDays); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range out {
		if out[i].FederationIDs, err = s.leagueFederations(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) GetLeague(ctx context.Context, id int64) (*domain.League, error) {
	var l domain.League
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT id, slug, name, start_offset_days FROM leagues WHERE id = ?`, id).
		Scan(&l.ID, &l.Slug, &l.Name, &l.StartOffsetDays)
	if err != nil {
		return nil, notFound(err)
	}
	if l.FederationIDs, err = s.leagueFederations(ctx, l.ID); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) leagueFederations(ctx context.Context, leagueID int64) ([]int64, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT federation_id FROM league_federations WHERE league_id = ? ORDER BY federation_id`, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) CreateTier(ctx context.Context, t *domain.Tier) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO tiers (league_id, slug, name, size, group_size, trigger_tier_slug, trigger_offset_days, prestige)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.LeagueID, t.Slug, t.Name, t.Size, t.GroupSize, t.TriggerTierSlug, t.TriggerOffsetDays, t.Prestige,
	)
	if err != nil {
		return fmt.Errorf("failed to create tier %s: %w", t.Slug, err)
	}
	t.ID, err = res.LastInsertId()
	return err
}

const tierColumns = `id, league_id, slug, name, size, group_size, trigger_tier_slug, trigger_offset_days, prestige`

func scanTier(row interface{ Scan(...any) error }) (domain.Tier, error) {
	var t domain.Tier
	err := row.Scan(&t.ID, &t.LeagueID, &t.Slug, &t.Name, &t.Size, &t.GroupSize,
		&t.TriggerTierSlug, &t.TriggerOffsetDays, &t.Prestige)
	return t, err
}

func (s *Store) ListTiers(ctx context.Context) ([]domain.Tier, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT `+tierColumns+` FROM tiers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Tier
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTier loads the tier together with its league.
func (s *Store) GetTier(ctx context.Context, id int64) (*domain.Tier, error) {
	return s.getTier(ctx, s.conn(ctx).QueryRowContext(ctx, `SELECT `+tierColumns+` FROM tiers WHERE id = ?`, id))
}

func (s *Store) GetTierBySlug(ctx context.Context, slug string) (*domain.Tier, error) {
	return s.getTier(ctx, s.conn(ctx).QueryRowContext(ctx, `SELECT `+tierColumns+` FROM tiers WHERE slug = ?`, slug))
}

func (s *Store) getTier(ctx context.Context, row *sql.Row) (*domain.Tier, error) {
	t, err := scanTier(row)
	if err != nil {
		return nil, notFound(err)
	}
	if t.League, err = s.GetLeague(ctx, t.LeagueID); err != nil {
		return nil, fmt.Errorf("failed to load league of tier %s: %w", t.Slug, err)
	}
	return &t, nil
}
