package repository

import (
	"context"
	"fmt"

	"esports-sim/internal/domain"
)

func (s *Store) CreateSponsorship(ctx context.Context, sp *domain.Sponsorship) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		res, err := s.conn(ctx).ExecContext(ctx,
			`INSERT INTO sponsorships (team_id, sponsor, status) VALUES (?, ?, ?)`, sp.TeamID, sp.Sponsor, sp.Status)
		if err != nil {
			return fmt.Errorf("failed to create sponsorship %s for team %d: %w", sp.Sponsor, sp.TeamID, err)
		}
		if sp.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		for i := range sp.Offers {
			sp.Offers[i].SponsorshipID = sp.ID
			if err := s.AddSponsorshipOffer(ctx, &sp.Offers[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) AddSponsorshipOffer(ctx context.Context, o *domain.SponsorshipOffer) error {
	o.Start, o.End = domain.Day(o.Start), domain.Day(o.End)
	res, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO sponsorship_offers (sponsorship_id, amount, frequency, start_date, end_date, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.SponsorshipID, o.Amount, o.Frequency, o.Start, o.End, o.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create offer for sponsorship %d: %w", o.SponsorshipID, err)
	}
	o.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetSponsorship(ctx context.Context, id int64) (*domain.Sponsorship, error) {
	var sp domain.Sponsorship
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT id, team_id, sponsor, status FROM sponsorships WHERE id = ?`, id).
		Scan(&sp.ID, &sp.TeamID, &sp.Sponsor, &sp.Status)
	if err != nil {
		return nil, notFound(err)
	}
	if sp.Offers, err = s.listSponsorshipOffers(ctx, sp.ID); err != nil {
		return nil, err
	}
	return &sp, nil
}

func (s *Store) ListSponsorships(ctx context.Context, teamID int64, statuses ...domain.SponsorshipStatus) ([]domain.Sponsorship, error) {
	var w where
	w.add("team_id = ?", teamID)
	w.in("status", anySlice(statuses))

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, team_id, sponsor, status FROM sponsorships`+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Sponsorship
	for rows.Next() {
		var sp domain.Sponsorship
		if err := rows.Scan(&sp.ID, &sp.TeamID, &sp.Sponsor, &sp.Status); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range out {
		if out[i].Offers, err = s.listSponsorshipOffers(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) listSponsorshipOffers(ctx context.Context, sponsorshipID int64) ([]domain.SponsorshipOffer, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, sponsorship_id, amount, frequency, start_date, end_date, status
		FROM sponsorship_offers WHERE sponsorship_id = ? ORDER BY id`, sponsorshipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SponsorshipOffer
	for rows.Next() {
		var o domain.SponsorshipOffer
		if err := rows.Scan(&o.ID, &o.SponsorshipID, &o.Amount, &o.Frequency, &o.Start, &o.End, &o.Status); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SetSponsorshipStatus updates the sponsorship and its latest offer.
func (s *Store) SetSponsorshipStatus(ctx context.Context, sp *domain.Sponsorship, status domain.SponsorshipStatus) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.conn(ctx).ExecContext(ctx, `UPDATE sponsorships SET status = ? WHERE id = ?`, status, sp.ID); err != nil {
			return fmt.Errorf("failed to update sponsorship %d: %w", sp.ID, err)
		}
		if o := sp.Latest(); o != nil {
			if _, err := s.conn(ctx).ExecContext(ctx, `UPDATE sponsorship_offers SET status = ? WHERE id = ?`, status, o.ID); err != nil {
				return fmt.Errorf("failed to update sponsorship offer %d: %w", o.ID, err)
			}
			o.Status = status
		}
		sp.Status = status
		return nil
	})
}

func (s *Store) SetSponsorshipOfferStatus(ctx context.Context, o *domain.SponsorshipOffer, status domain.SponsorshipStatus) error {
	if _, err := s.conn(ctx).ExecContext(ctx, `UPDATE sponsorship_offers SET status = ? WHERE id = ?`, status, o.ID); err != nil {
		return fmt.Errorf("failed to update sponsorship offer %d: %w", o.ID, err)
	}
	o.Status = status
	return nil
}
