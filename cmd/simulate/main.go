package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"esports-sim/internal/config"
	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	fxmodules "esports-sim/internal/fx"
	"esports-sim/internal/repository"
	"esports-sim/internal/scheduler"
	"esports-sim/internal/worldgen"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runSimulation),
	).Run()
}

type simulation struct {
	gen    *worldgen.Generator
	sched  *scheduler.Scheduler
	store  *repository.Store
	cfg    *config.Config
	logger zerolog.Logger
}

func runSimulation(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	gen *worldgen.Generator,
	sched *scheduler.Scheduler,
	store *repository.Store,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	sim := &simulation{gen: gen, sched: sched, store: store, cfg: cfg, logger: logger}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), constants.AdvanceTimeout)
				defer cancel()

				code := 0
				if err := sim.run(ctx); err != nil {
					logger.Error().Err(err).Msg("simulation failed")
					code = 1
				}
				if err := shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
					logger.Error().Err(err).Msg("shutdown failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("save closed")
			return nil
		},
	})
}

// run advances the save by ADVANCE_DAYS, playing the user's matches as they
// come up, and logs where the save ended.
func (s *simulation) run(ctx context.Context) error {
	p, err := s.gen.Bootstrap(ctx)
	if err != nil {
		return err
	}
	startDate := p.Date

	left := s.cfg.AdvanceDays
	for attempts := 0; left > 0; attempts++ {
		if attempts > s.cfg.AdvanceDays*4+16 {
			return fmt.Errorf("advance stopped making progress with %d days left", left)
		}
		out, err := s.sched.Advance(ctx, left)
		if err != nil {
			return err
		}
		left -= out.Days
		if !out.Halted {
			continue
		}

		switch out.Reason {
		case domain.CalendarMatchdayUser:
			if err := s.sched.PlayUserMatch(ctx, out.EntryID); err != nil {
				return err
			}
			s.logger.Info().Int64("entry_id", out.EntryID).Msg("user match auto-played")
		default:
			s.logger.Info().Str("reason", string(out.Reason)).Msg("needs attention, carrying on")
		}
	}

	return s.summary(ctx, startDate)
}

func (s *simulation) summary(ctx context.Context, since time.Time) error {
	p, err := s.store.GetProfile(ctx)
	if err != nil {
		return err
	}
	emails, err := s.store.ListEmails(ctx)
	if err != nil {
		return err
	}

	log := s.logger.With().Str("save_id", p.SaveID).Logger()
	for _, e := range emails {
		if e.Date.Before(since) {
			break
		}
		log.Info().
			Str("date", e.Date.Format(time.DateOnly)).
			Str("from", e.Sender).
			Str("subject", e.Subject).
			Msg("inbox")
	}

	event := log.Info().
		Str("date", p.Date.Format(time.DateOnly)).
		Int("season", p.Season)
	if p.TeamID != nil {
		team, err := s.store.GetTeam(ctx, *p.TeamID)
		if err != nil {
			return err
		}
		event = event.Str("team", team.Name).Int("tier", team.Tier).Float64("elo", team.Elo).Int64("earnings", team.Earnings)
	}
	if p.PlayerID != nil {
		player, err := s.store.GetPlayer(ctx, *p.PlayerID)
		if err != nil {
			return err
		}
		event = event.Str("player", player.Name).Bool("signed", player.TeamID != nil).Bool("starter", player.Starter)
	}
	event.Msg("simulation finished")
	return nil
}
