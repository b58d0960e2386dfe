package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"esports-sim/internal/domain"
)

func (s *Store) GetProfile(ctx context.Context) (*domain.Profile, error) {
	var p domain.Profile
	var settings string
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, save_id, date, season, team_id, player_id, settings
		FROM profiles ORDER BY id LIMIT 1`,
	).Scan(&p.ID, &p.SaveID, &p.Date, &p.Season, &p.TeamID, &p.PlayerID, &settings)
	if err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal([]byte(settings), &p.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode profile settings: %w", err)
	}
	return &p, nil
}

func (s *Store) CreateProfile(ctx context.Context, p *domain.Profile) error {
	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode profile settings: %w", err)
	}
	p.Date = domain.Day(p.Date)
	res, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO profiles (save_id, date, season, team_id, player_id, settings)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.SaveID, p.Date, p.Season, p.TeamID, p.PlayerID, string(settings),
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (s *Store) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode profile settings: %w", err)
	}
	_, err = s.conn(ctx).ExecContext(ctx, `
		UPDATE profiles SET date = ?, season = ?, team_id = ?, player_id = ?, settings = ?
		WHERE id = ?`,
		domain.Day(p.Date), p.Season, p.TeamID, p.PlayerID, string(settings), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}
