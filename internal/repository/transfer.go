package repository

import (
	"context"
	"fmt"

	"esports-sim/internal/domain"
)

type TransferFilter struct {
	PlayerID   *int64
	FromTeamID *int64
	Statuses   []domain.TransferStatus
}

func (s *Store) CreateTransfer(ctx context.Context, t *domain.Transfer) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		t.CreatedAt = domain.Day(t.CreatedAt)
		res, err := s.conn(ctx).ExecContext(ctx, `
			INSERT INTO transfers (player_id, from_team_id, to_team_id, status, created_at) VALUES (?, ?, ?, ?, ?)`,
			t.PlayerID, t.FromTeamID, t.ToTeamID, t.Status, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create transfer for player %d: %w", t.PlayerID, err)
		}
		if t.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		for i := range t.Offers {
			t.Offers[i].TransferID = t.ID
			if err := s.AddOffer(ctx, &t.Offers[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) AddOffer(ctx context.Context, o *domain.Offer) error {
	o.ExpiresAt = domain.Day(o.ExpiresAt)
	o.CreatedAt = domain.Day(o.CreatedAt)
	res, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO offers (transfer_id, wages, cost, contract_years, expires_at, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.TransferID, o.Wages, o.Cost, o.ContractYears, o.ExpiresAt, o.Status, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create offer for transfer %d: %w", o.TransferID, err)
	}
	o.ID, err = res.LastInsertId()
	return err
}

const transferColumns = `id, player_id, from_team_id, to_team_id, status, created_at`

func scanTransfer(row interface{ Scan(...any) error }) (domain.Transfer, error) {
	var t domain.Transfer
	err := row.Scan(&t.ID, &t.PlayerID, &t.FromTeamID, &t.ToTeamID, &t.Status, &t.CreatedAt)
	return t, err
}

func (s *Store) GetTransfer(ctx context.Context, id int64) (*domain.Transfer, error) {
	t, err := scanTransfer(s.conn(ctx).QueryRowContext(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	if t.Offers, err = s.listOffers(ctx, t.ID); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) ListTransfers(ctx context.Context, f TransferFilter) ([]domain.Transfer, error) {
	var w where
	if f.PlayerID != nil {
		w.add("player_id = ?", *f.PlayerID)
	}
	if f.FromTeamID != nil {
		w.add("from_team_id = ?", *f.FromTeamID)
	}
	w.in("status", anySlice(f.Statuses))

	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT `+transferColumns+` FROM transfers`+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range out {
		if out[i].Offers, err = s.listOffers(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) listOffers(ctx context.Context, transferID int64) ([]domain.Offer, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, transfer_id, wages, cost, contract_years, expires_at, status, created_at
		FROM offers WHERE transfer_id = ? ORDER BY id`, transferID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Offer
	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(&o.ID, &o.TransferID, &o.Wages, &o.Cost, &o.ContractYears,
			&o.ExpiresAt, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SetTransferStatus moves a transfer and its latest offer to status. Rows
// already in a terminal state are left untouched; the returned flag reports
// whether the transfer changed.
func (s *Store) SetTransferStatus(ctx context.Context, t *domain.Transfer, status domain.TransferStatus) (bool, error) {
	var changed bool
	terminal := anySlice(domain.TerminalTransferStatuses)
	err := s.InTx(ctx, func(ctx context.Context) error {
		res, err := s.conn(ctx).ExecContext(ctx,
			`UPDATE transfers SET status = ? WHERE id = ? AND status NOT IN (`+placeholders(len(terminal))+`)`,
			append([]any{status, t.ID}, terminal...)...)
		if err != nil {
			return fmt.Errorf("failed to update transfer %d: %w", t.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if changed = n > 0; !changed {
			return nil
		}
		if o := t.Latest(); o != nil {
			if _, err := s.conn(ctx).ExecContext(ctx,
				`UPDATE offers SET status = ? WHERE id = ? AND status NOT IN (`+placeholders(len(terminal))+`)`,
				append([]any{status, o.ID}, terminal...)...,
			); err != nil {
				return fmt.Errorf("failed to update offer %d: %w", o.ID, err)
			}
			o.Status = status
		}
		t.Status = status
		return nil
	})
	return changed, err
}
