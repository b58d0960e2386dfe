// Package scheduler advances a save day by day, firing the calendar entries
// that fall due.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"esports-sim/internal/career"
	"esports-sim/internal/domain"
	"esports-sim/internal/economy"
	"esports-sim/internal/repository"
	"esports-sim/internal/session"
	"esports-sim/internal/tournament"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Action tells the driver what to do with an entry once its handler ran.
type Action int

const (
	// Done completes the entry and moves on.
	Done Action = iota
	// Retain halts the day and leaves the entry open, to fire again once the
	// user dealt with it.
	Retain
	// Pause completes the entry and halts the day.
	Pause
)

// Handler runs one calendar entry with its decoded payload.
type Handler func(ctx context.Context, e domain.CalendarEntry, payload domain.Payload) (Action, error)

// Outcome reports how far an advance got.
type Outcome struct {
	Days    int
	Halted  bool
	Reason  domain.CalendarType
	EntryID int64
}

type Scheduler struct {
	sess       *session.Session
	tournament *tournament.Orchestrator
	career     *career.Service
	economy    *economy.Service
	handlers   map[domain.CalendarType]Handler
	logger     zerolog.Logger
}

func New(sess *session.Session, orch *tournament.Orchestrator, careers *career.Service, econ *economy.Service) *Scheduler {
	s := &Scheduler{
		sess:       sess,
		tournament: orch,
		career:     careers,
		economy:    econ,
		logger:     sess.Logger.With().Str("component", "scheduler").Logger(),
	}
	s.handlers = s.dispatch()
	return s
}

// Advance moves the save forward by at most days days. It stops early when a
// handler halts, before the date moves.
func (s *Scheduler) Advance(ctx context.Context, days int) (Outcome, error) {
	log := s.logger.With().Str("run_id", uuid.NewString()).Logger()
	ctx = log.WithContext(ctx)
	start := time.Now()
	log.Info().Int("days", days).Msg("advance started")

	var out Outcome
	for out.Days < days {
		p, err := s.sess.Profile(ctx)
		if err != nil {
			return out, err
		}
		halt, err := s.runDay(ctx, p)
		if err != nil {
			return out, fmt.Errorf("failed to advance %s: %w", p.Date.Format(time.DateOnly), err)
		}
		if halt != nil {
			out.Halted = true
			out.Reason = halt.Type
			out.EntryID = halt.ID
			log.Info().
				Time("date", p.Date).
				Str("reason", string(halt.Type)).
				Int64("entry_id", halt.ID).
				Msg("advance halted")
			return out, nil
		}

		if err := s.tournament.RecordMatchResults(ctx, p.Date); err != nil {
			return out, err
		}
		p.Date = domain.AddDays(p.Date, 1)
		if err := s.sess.Store.UpdateProfile(ctx, p); err != nil {
			return out, fmt.Errorf("failed to move the date: %w", err)
		}
		out.Days++
	}

	log.Info().
		Int("days", out.Days).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("advance completed")
	return out, nil
}

// runDay fires every due entry, including those scheduled for today by the
// handlers themselves. It returns the entry that halted the day, if any.
func (s *Scheduler) runDay(ctx context.Context, p *domain.Profile) (*domain.CalendarEntry, error) {
	fired := map[int64]bool{}
	for {
		due, err := s.sess.Store.ListDue(ctx, p.Date)
		if err != nil {
			return nil, err
		}
		n := 0
		for _, e := range due {
			if fired[e.ID] {
				continue
			}
			fired[e.ID] = true
			n++

			action, err := s.fire(ctx, e)
			if err != nil {
				return nil, err
			}
			if action != Done {
				return &e, nil
			}
		}
		if n == 0 {
			return nil, nil
		}
	}
}

// fire runs one entry and completes it in the same transaction, so a failed
// handler leaves the entry open for the next run.
func (s *Scheduler) fire(ctx context.Context, e domain.CalendarEntry) (Action, error) {
	log := zerolog.Ctx(ctx).With().
		Int64("entry_id", e.ID).
		Str("type", string(e.Type)).
		Str("payload", e.Payload).
		Logger()

	h, ok := s.handlers[e.Type]
	if !ok {
		log.Warn().Msg("no handler for entry, completing")
		return Done, s.sess.Store.CompleteEntry(ctx, e.ID)
	}
	payload, err := domain.DecodePayload(e.Type, e.Payload)
	if err != nil {
		log.Warn().Err(err).Msg("malformed payload, completing")
		return Done, s.sess.Store.CompleteEntry(ctx, e.ID)
	}

	var action Action
	err = s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		action, err = h(ctx, e, payload)
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn().Err(err).Msg("entry refers to a missing row")
			action, err = Done, nil
		}
		if err != nil {
			return err
		}
		if action == Retain {
			return nil
		}
		return s.sess.Store.CompleteEntry(ctx, e.ID)
	})
	if err != nil {
		log.Error().Err(err).Msg("entry failed")
		return Done, fmt.Errorf("failed to fire %s entry %d: %w", e.Type, e.ID, err)
	}
	log.Debug().Int("action", int(action)).Msg("entry fired")
	return action, nil
}

// PlayUserMatch settles the user matchday a previous advance halted on.
func (s *Scheduler) PlayUserMatch(ctx context.Context, entryID int64) error {
	return s.sess.Store.InTx(ctx, func(ctx context.Context) error {
		e, err := s.sess.Store.GetEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if e.Completed {
			return nil
		}
		if e.Type != domain.CalendarMatchdayUser {
			return fmt.Errorf("entry %d is a %s entry, not a user matchday", entryID, e.Type)
		}
		payload, err := domain.DecodePayload(e.Type, e.Payload)
		if err != nil {
			return err
		}
		if err := s.tournament.PlayMatch(ctx, payload.(domain.IDPayload).ID); err != nil {
			return err
		}
		return s.sess.Store.CompleteEntry(ctx, entryID)
	})
}
