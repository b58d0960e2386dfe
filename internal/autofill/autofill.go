// Package autofill decides which teams populate a competition from last
// season's standings, falling back to prestige when standings are missing.
package autofill

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/repository"

	"github.com/rs/zerolog"
)

type Resolver struct {
	store  *repository.Store
	logger zerolog.Logger
}

func New(store *repository.Store, logger zerolog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// Resolve returns the teams item seeds into a competition of tier for fed in
// season, at most tier.Size of them.
func (r *Resolver) Resolve(ctx context.Context, item domain.AutofillItem, tier *domain.Tier, fed *domain.Federation, season int) ([]domain.Team, error) {
	var includes, excludes []domain.Team
	quota := 0
	for _, e := range item.Entries {
		switch e.Action {
		case domain.AutofillInclude:
			teams, err := r.fromStandings(ctx, e, tier, fed, season)
			if err != nil {
				return nil, err
			}
			includes = union(includes, teams)
			quota += e.Width(tier.Size)
		case domain.AutofillExclude:
			teams, err := r.fromStandings(ctx, e, tier, fed, season)
			if err != nil {
				return nil, err
			}
			excludes = union(excludes, teams)
		}
	}

	teams := symmetricDifference(includes, excludes)

	target := quota
	if target == 0 {
		target = tier.Size
	}
	if quota == 0 || len(teams) < quota {
		var err error
		if teams, err = r.fallback(ctx, item, tier, fed, season, teams, target); err != nil {
			return nil, err
		}
	}

	if len(teams) > tier.Size {
		teams = teams[:tier.Size]
	}

	r.logger.Debug().
		Str("tier", tier.Slug).
		Str("federation", fed.Slug).
		Int("season", season).
		Int("quota", quota).
		Int("teams", len(teams)).
		Msg("autofill resolved")
	return teams, nil
}

func (r *Resolver) fallback(ctx context.Context, item domain.AutofillItem, tier *domain.Tier, fed *domain.Federation, season int, teams []domain.Team, target int) ([]domain.Team, error) {
	for _, e := range item.Entries {
		if e.Action != domain.AutofillFallback || e.Season == nil {
			continue
		}
		seasoned, err := r.fromStandings(ctx, e, tier, fed, season)
		if err != nil {
			return nil, err
		}
		teams = union(teams, seasoned)
	}

	for _, e := range item.Entries {
		if len(teams) >= target {
			break
		}
		if e.Action != domain.AutofillFallback || e.Season != nil {
			continue
		}
		pool, err := r.fromPrestige(ctx, e, fed)
		if err != nil {
			return nil, err
		}
		fresh := difference(slice(pool, e), teams)
		teams = append(teams, fresh[:min(len(fresh), target-len(teams))]...)
	}
	return teams, nil
}

// fromStandings slices the final standings of the source competition. A
// missing competition contributes nothing.
func (r *Resolver) fromStandings(ctx context.Context, e domain.AutofillEntry, tier *domain.Tier, fed *domain.Federation, season int) ([]domain.Team, error) {
	from := e.From
	if from == "" {
		from = tier.Slug
	}
	fedID, err := r.federationID(ctx, e.FederationSlug, fed)
	if err != nil {
		return nil, err
	}
	src := season
	if e.Season != nil {
		src += *e.Season
	}

	comp, err := r.store.FindCompetition(ctx, from, src, &fedID)
	if errors.Is(err, repository.ErrNotFound) {
		r.logger.Info().Str("tier", from).Int("season", src).Int64("federation_id", fedID).Msg("no source competition")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find source competition %s: %w", from, err)
	}

	competitors := slices.Clone(comp.Competitors)
	slices.SortStableFunc(competitors, func(a, b domain.Competitor) int {
		return cmp.Compare(a.Position, b.Position)
	})

	ids := make([]int64, len(competitors))
	for i, c := range competitors {
		ids[i] = c.TeamID
	}
	ids = slice(ids, e)
	if len(ids) == 0 {
		return nil, nil
	}

	teams, err := r.store.ListTeams(ctx, repository.TeamFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	// keep standings order rather than id order
	byID := make(map[int64]domain.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	out := make([]domain.Team, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *Resolver) fromPrestige(ctx context.Context, e domain.AutofillEntry, fed *domain.Federation) ([]domain.Team, error) {
	prestige := e.Prestige
	filter := repository.TeamFilter{Tier: &prestige}
	if e.FederationSlug != constants.FederationWorld {
		fedID, err := r.federationID(ctx, e.FederationSlug, fed)
		if err != nil {
			return nil, err
		}
		filter.FederationID = &fedID
	}
	return r.store.ListTeams(ctx, filter)
}

func (r *Resolver) federationID(ctx context.Context, slug string, fallback *domain.Federation) (int64, error) {
	if slug == "" || slug == fallback.Slug {
		return fallback.ID, nil
	}
	f, err := r.store.GetFederationBySlug(ctx, slug)
	if err != nil {
		return 0, fmt.Errorf("failed to find federation %s: %w", slug, err)
	}
	return f.ID, nil
}

// slice applies an entry's [start, end] window. A negative start takes the
// last |start| items and ignores end.
func slice[T any](vs []T, e domain.AutofillEntry) []T {
	if e.Start < 0 {
		n := min(-e.Start, len(vs))
		return vs[len(vs)-n:]
	}
	from := max(0, e.Start-1)
	to := len(vs)
	if e.End != nil {
		to = min(*e.End, len(vs))
	}
	if from >= to {
		return nil
	}
	return vs[from:to]
}

func contains(teams []domain.Team, id int64) bool {
	return slices.ContainsFunc(teams, func(t domain.Team) bool { return t.ID == id })
}

// union appends the teams of b not already in a.
func union(a, b []domain.Team) []domain.Team {
	out := slices.Clone(a)
	for _, t := range b {
		if !contains(out, t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// difference returns the teams of a not in b.
func difference(a, b []domain.Team) []domain.Team {
	var out []domain.Team
	for _, t := range a {
		if !contains(b, t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// symmetricDifference keeps teams found in exactly one of a and b, a's first.
func symmetricDifference(a, b []domain.Team) []domain.Team {
	return append(difference(a, b), difference(b, a)...)
}
