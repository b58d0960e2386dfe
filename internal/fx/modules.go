package fx

import (
	"esports-sim/internal/autofill"
	"esports-sim/internal/career"
	"esports-sim/internal/chance"
	"esports-sim/internal/config"
	"esports-sim/internal/database"
	"esports-sim/internal/economy"
	"esports-sim/internal/logger"
	"esports-sim/internal/mail"
	"esports-sim/internal/repository"
	"esports-sim/internal/scheduler"
	"esports-sim/internal/session"
	"esports-sim/internal/simulator"
	"esports-sim/internal/tournament"
	"esports-sim/internal/worldgen"

	"go.uber.org/fx"
)

func ProvideRand(cfg *config.Config) *chance.Source {
	return chance.New(cfg.RandomSeed)
}

func ProvideOrchestrator(sess *session.Session, resolver *autofill.Resolver, econ *economy.Service) *tournament.Orchestrator {
	return tournament.New(sess, resolver, econ)
}

// ProvideCareer hands the orchestrator to the career service as its matchday
// resync.
func ProvideCareer(sess *session.Session, orch *tournament.Orchestrator) *career.Service {
	return career.New(sess, orch)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Invoke(logger.ApplyLevel),
	fx.Provide(database.New),
	fx.Provide(repository.NewStore),
	fx.Provide(ProvideRand),
	// session
	fx.Provide(mail.New),
	fx.Provide(simulator.New),
	fx.Provide(session.New),
	// svc
	fx.Provide(economy.New),
	fx.Provide(autofill.New),
	fx.Provide(ProvideOrchestrator),
	fx.Provide(ProvideCareer),
	fx.Provide(worldgen.New),
	fx.Provide(scheduler.New),
)
