package repository

import (
	"context"
	"fmt"
	"time"

	"esports-sim/internal/domain"
)

type CalendarFilter struct {
	Types     []domain.CalendarType
	Payload   *string
	From      *time.Time // inclusive
	To        *time.Time // inclusive
	Completed *bool
}

func (f CalendarFilter) where() *where {
	w := &where{}
	w.in("type", anySlice(f.Types))
	if f.Payload != nil {
		w.add("payload = ?", *f.Payload)
	}
	if f.From != nil {
		w.add("date >= ?", domain.Day(*f.From))
	}
	if f.To != nil {
		w.add("date <= ?", domain.Day(*f.To))
	}
	if f.Completed != nil {
		w.add("completed = ?", *f.Completed)
	}
	return w
}

// Schedule upserts an entry keyed by (date, type, payload). Scheduling an
// entry that already exists returns its id and re-arms it if it had been
// completed.
func (s *Store) Schedule(ctx context.Context, e *domain.CalendarEntry) error {
	e.Date = domain.Day(e.Date)
	err := s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO calendar (date, type, payload, completed) VALUES (?, ?, ?, 0)
		ON CONFLICT (date, type, payload) DO UPDATE SET completed = 0
		RETURNING id`,
		e.Date, e.Type, e.Payload,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to schedule %s on %s: %w", e.Type, e.Date.Format(time.DateOnly), err)
	}
	e.Completed = false
	return nil
}

// ListDue returns uncompleted entries dated on or before today in firing order.
func (s *Store) ListDue(ctx context.Context, today time.Time) ([]domain.CalendarEntry, error) {
	no := false
	return s.ListEntries(ctx, CalendarFilter{To: &today, Completed: &no})
}

func (s *Store) ListEntries(ctx context.Context, f CalendarFilter) ([]domain.CalendarEntry, error) {
	w := f.where()
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, date, type, payload, completed FROM calendar`+w.String()+` ORDER BY date, id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CalendarEntry
	for rows.Next() {
		var e domain.CalendarEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Type, &e.Payload, &e.Completed); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) GetEntry(ctx context.Context, id int64) (*domain.CalendarEntry, error) {
	var e domain.CalendarEntry
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT id, date, type, payload, completed FROM calendar WHERE id = ?`, id).
		Scan(&e.ID, &e.Date, &e.Type, &e.Payload, &e.Completed)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (s *Store) CompleteEntry(ctx context.Context, id int64) error {
	_, err := s.conn(ctx).ExecContext(ctx, `UPDATE calendar SET completed = 1 WHERE id = ?`, id)
	return err
}

// CompleteEntries soft-deletes every entry matching f and returns how many
// were affected.
func (s *Store) CompleteEntries(ctx context.Context, f CalendarFilter) (int64, error) {
	w := f.where()
	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE calendar SET completed = 1`+w.String(), w.args...)
	if err != nil {
		return 0, fmt.Errorf("failed to complete calendar entries: %w", err)
	}
	return res.RowsAffected()
}

// RetypeEntry moves an entry between kinds of the same payload, e.g. a
// matchday between user and NPC. The entry keeps its id, so it keeps its
// place among same-day entries.
func (s *Store) RetypeEntry(ctx context.Context, e *domain.CalendarEntry, t domain.CalendarType) error {
	if e.Type == t {
		return nil
	}
	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE calendar SET type = ? WHERE id = ?`, t, e.ID)
	if err != nil {
		return fmt.Errorf("failed to retype calendar entry %d: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	e.Type = t
	return nil
}
