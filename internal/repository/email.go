package repository

import (
	"context"
	"fmt"

	"esports-sim/internal/domain"
)

func (s *Store) CreateEmail(ctx context.Context, e *domain.Email) error {
	e.Date = domain.Day(e.Date)
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO emails (id, sender, subject, body, date, delivered, read) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Sender, e.Subject, e.Body, e.Date, e.Delivered, e.Read,
	)
	if err != nil {
		return fmt.Errorf("failed to create email %s: %w", e.ID, err)
	}
	return nil
}

func (s *Store) GetEmail(ctx context.Context, id string) (*domain.Email, error) {
	var e domain.Email
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, sender, subject, body, date, delivered, read FROM emails WHERE id = ?`, id,
	).Scan(&e.ID, &e.Sender, &e.Subject, &e.Body, &e.Date, &e.Delivered, &e.Read)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (s *Store) MarkDelivered(ctx context.Context, id string) error {
	_, err := s.conn(ctx).ExecContext(ctx, `UPDATE emails SET delivered = 1 WHERE id = ?`, id)
	return err
}

// ListEmails returns delivered emails, newest first.
func (s *Store) ListEmails(ctx context.Context) ([]domain.Email, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, sender, subject, body, date, delivered, read
		FROM emails WHERE delivered = 1 ORDER BY date DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Email
	for rows.Next() {
		var e domain.Email
		if err := rows.Scan(&e.ID, &e.Sender, &e.Subject, &e.Body, &e.Date, &e.Delivered, &e.Read); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
