package repository

import (
	"context"
	"fmt"
	"time"

	"esports-sim/internal/domain"
)

const playerColumns = `id, name, country, federation_id, team_id, starter, transfer_listed, role,
	wages, cost, contract_end, xp, last_offer_at`

func scanPlayer(row interface{ Scan(...any) error }) (domain.Player, error) {
	var p domain.Player
	err := row.Scan(&p.ID, &p.Name, &p.Country, &p.FederationID, &p.TeamID, &p.Starter,
		&p.TransferListed, &p.Role, &p.Wages, &p.Cost, &p.ContractEnd, &p.XP, &p.LastOfferAt)
	return p, err
}

func (s *Store) CreatePlayer(ctx context.Context, p *domain.Player) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO players (name, country, federation_id, team_id, starter, transfer_listed, role,
			wages, cost, contract_end, xp, last_offer_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Country, p.FederationID, p.TeamID, p.Starter, p.TransferListed, p.Role,
		p.Wages, p.Cost, p.ContractEnd, p.XP, p.LastOfferAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create player %s: %w", p.Name, err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetPlayer(ctx context.Context, id int64) (*domain.Player, error) {
	p, err := scanPlayer(s.conn(ctx).QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) ListPlayersByTeam(ctx context.Context, teamID int64) ([]domain.Player, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT `+playerColumns+` FROM players WHERE team_id = ? ORDER BY id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePlayer writes every mutable column of p.
func (s *Store) UpdatePlayer(ctx context.Context, p *domain.Player) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE players SET team_id = ?, starter = ?, transfer_listed = ?, role = ?, wages = ?, cost = ?,
			contract_end = ?, xp = ?, last_offer_at = ?
		WHERE id = ?`,
		p.TeamID, p.Starter, p.TransferListed, p.Role, p.Wages, p.Cost, p.ContractEnd, p.XP, p.LastOfferAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update player %d: %w", p.ID, err)
	}
	return nil
}

// OpenStint starts a career stint, closing any open one for the player first.
func (s *Store) OpenStint(ctx context.Context, st *domain.CareerStint) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		if err := s.CloseStint(ctx, st.PlayerID, st.StartedAt); err != nil {
			return err
		}
		st.StartedAt = domain.Day(st.StartedAt)
		st.EndedAt = nil
		res, err := s.conn(ctx).ExecContext(ctx, `
			INSERT INTO career_stints (player_id, team_id, tier, started_at) VALUES (?, ?, ?, ?)`,
			st.PlayerID, st.TeamID, st.Tier, st.StartedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to open stint for player %d: %w", st.PlayerID, err)
		}
		st.ID, err = res.LastInsertId()
		return err
	})
}

func (s *Store) CloseStint(ctx context.Context, playerID int64, at time.Time) error {
	_, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE career_stints SET ended_at = ? WHERE player_id = ? AND ended_at IS NULL`,
		domain.Day(at), playerID,
	)
	if err != nil {
		return fmt.Errorf("failed to close stint for player %d: %w", playerID, err)
	}
	return nil
}

func (s *Store) ListStints(ctx context.Context, playerID int64) ([]domain.CareerStint, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, player_id, team_id, tier, started_at, ended_at
		FROM career_stints WHERE player_id = ? ORDER BY id`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CareerStint
	for rows.Next() {
		var st domain.CareerStint
		if err := rows.Scan(&st.ID, &st.PlayerID, &st.TeamID, &st.Tier, &st.StartedAt, &st.EndedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// GetOpenStint returns the player's current stint or ErrNotFound.
func (s *Store) GetOpenStint(ctx context.Context, playerID int64) (*domain.CareerStint, error) {
	var st domain.CareerStint
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, player_id, team_id, tier, started_at, ended_at
		FROM career_stints WHERE player_id = ? AND ended_at IS NULL`, playerID,
	).Scan(&st.ID, &st.PlayerID, &st.TeamID, &st.Tier, &st.StartedAt, &st.EndedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}
