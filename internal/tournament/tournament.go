// Package tournament runs competitions through their lifecycle: created at
// season start, started with a bracket and matchdays, fed results each day
// and closed out with standings and prizes.
package tournament

import (
	"esports-sim/internal/autofill"
	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/economy"
	"esports-sim/internal/session"

	"github.com/rs/zerolog"
)

type Orchestrator struct {
	sess     *session.Session
	autofill *autofill.Resolver
	economy  *economy.Service
	rules    []domain.AutofillItem
	logger   zerolog.Logger
}

type Option func(*Orchestrator)

// WithRules replaces the seeding rule sets of the built-in catalogue.
func WithRules(items []domain.AutofillItem) Option {
	return func(o *Orchestrator) { o.rules = items }
}

func New(sess *session.Session, resolver *autofill.Resolver, econ *economy.Service, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sess:     sess,
		autofill: resolver,
		economy:  econ,
		rules:    constants.Autofill,
		logger:   sess.Logger.With().Str("component", "tournament").Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) rulesFor(tierSlug string, trigger domain.SeedingTrigger) []domain.AutofillItem {
	var out []domain.AutofillItem
	for _, item := range o.rules {
		if item.TierSlug == tierSlug && item.On == trigger {
			out = append(out, item)
		}
	}
	return out
}
