// Package worldgen creates a new save: the league catalogue, teams with full
// rosters, the user's profile and the first season start.
package worldgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"esports-sim/internal/chance"
	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/economy"
	"esports-sim/internal/repository"
	"esports-sim/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Generator struct {
	sess   *session.Session
	logger zerolog.Logger
	names  map[string]bool
}

func New(sess *session.Session) *Generator {
	return &Generator{
		sess:   sess,
		logger: sess.Logger.With().Str("component", "worldgen").Logger(),
		names:  map[string]bool{},
	}
}

// Bootstrap generates the world unless the save already has a profile, which
// it returns as is.
func (g *Generator) Bootstrap(ctx context.Context) (*domain.Profile, error) {
	p, err := g.sess.Store.GetProfile(ctx)
	if err == nil {
		g.logger.Info().Str("save_id", p.SaveID).Msg("save already exists")
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	err = g.sess.Store.InTx(ctx, func(ctx context.Context) error {
		feds, err := g.federations(ctx)
		if err != nil {
			return err
		}
		if err := g.leagues(ctx, feds); err != nil {
			return err
		}

		var teams []domain.Team
		for _, def := range constants.Federations {
			if len(def.Countries) == 0 {
				continue
			}
			for prestige := range constants.PrestigeOrder {
				for range constants.DivisionSize {
					t, err := g.team(ctx, feds[def.Slug], def, prestige)
					if err != nil {
						return err
					}
					teams = append(teams, *t)
				}
			}
		}

		p, err = g.profile(ctx, feds, teams)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap world: %w", err)
	}
	g.logger.Info().Str("save_id", p.SaveID).Bool("career", p.CareerMode()).Msg("world generated")
	return p, nil
}

func (g *Generator) federations(ctx context.Context) (map[string]*domain.Federation, error) {
	out := map[string]*domain.Federation{}
	for _, def := range constants.Federations {
		f := &domain.Federation{Slug: def.Slug, Name: def.Name}
		if err := g.sess.Store.CreateFederation(ctx, f); err != nil {
			return nil, err
		}
		out[def.Slug] = f
	}
	return out, nil
}

func (g *Generator) leagues(ctx context.Context, feds map[string]*domain.Federation) error {
	for _, def := range constants.Leagues {
		l := &domain.League{Slug: def.Slug, Name: def.Name, StartOffsetDays: def.StartOffsetDays}
		for _, slug := range def.Federations {
			l.FederationIDs = append(l.FederationIDs, feds[slug].ID)
		}
		if err := g.sess.Store.CreateLeague(ctx, l); err != nil {
			return err
		}

		for _, td := range def.Tiers {
			t := &domain.Tier{
				LeagueID:  l.ID,
				Slug:      td.Slug,
				Name:      td.Name,
				Size:      td.Size,
				GroupSize: td.GroupSize,
				Prestige:  td.Prestige,
			}
			if td.TriggerTierSlug != "" {
				slug, offset := td.TriggerTierSlug, td.TriggerOffsetDays
				t.TriggerTierSlug = &slug
				t.TriggerOffsetDays = &offset
			}
			if err := g.sess.Store.CreateTier(ctx, t); err != nil {
				return err
			}
		}
	}
	return nil
}

// team creates a team at prestige with five starters, one of them a sniper,
// and a rifler on the bench.
func (g *Generator) team(ctx context.Context, fed *domain.Federation, def constants.FederationDef, prestige int) (*domain.Team, error) {
	name := g.teamName()
	t := &domain.Team{
		Name:         name,
		Slug:         slug(name),
		FederationID: fed.ID,
		Tier:         prestige,
		Elo:          constants.EloStart + float64(prestige)*constants.EloTierStep,
	}
	if err := g.sess.Store.CreateTeam(ctx, t); err != nil {
		return nil, err
	}

	for i := range constants.RosterSize {
		role := domain.RoleRifler
		if i == 0 {
			role = domain.RoleSniper
		}
		if _, err := g.player(ctx, t, def, role, i < constants.StartersPerTeam); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (g *Generator) player(ctx context.Context, t *domain.Team, def constants.FederationDef, role domain.Role, starter bool) (*domain.Player, error) {
	wages, cost, err := economy.RollWage(g.sess.Rand, t.Tier)
	if err != nil {
		return nil, err
	}
	xp := constants.XPBase + t.Tier*constants.XPTierStep
	years := g.sess.Rand.IntBetween(constants.MinContractYears, constants.MaxContractYears)
	end := domain.AddDays(constants.WorldStartDate, years*constants.SeasonLength)

	p := &domain.Player{
		Name:         g.handle(),
		Country:      chance.Pick(g.sess.Rand, def.Countries),
		FederationID: t.FederationID,
		TeamID:       &t.ID,
		Starter:      starter,
		Role:         role,
		Wages:        wages,
		Cost:         cost,
		ContractEnd:  &end,
		XP:           g.sess.Rand.IntBetween(xp-constants.XPSpread, xp+constants.XPSpread),
	}
	if err := g.sess.Store.CreatePlayer(ctx, p); err != nil {
		return nil, err
	}
	err = g.sess.Store.OpenStint(ctx, &domain.CareerStint{
		PlayerID:  p.ID,
		TeamID:    t.ID,
		Tier:      t.Tier,
		StartedAt: constants.WorldStartDate,
	})
	return p, err
}

// profile creates the save's profile. With USER_TEAM set the user manages that
// team, renaming a team of the lowest division of the first federation when
// none has the slug; otherwise they start a career as a free agent.
func (g *Generator) profile(ctx context.Context, feds map[string]*domain.Federation, teams []domain.Team) (*domain.Profile, error) {
	p := &domain.Profile{
		SaveID: uuid.NewString(),
		Date:   constants.WorldStartDate,
		Settings: domain.Settings{
			SimFidelity: g.sess.Config.SimFidelity,
			MapPool:     g.sess.Config.MapPool,
		},
	}

	var entries []domain.CalendarEntry
	if user := g.sess.Config.UserTeam; user != "" {
		team, err := g.userTeam(ctx, user, teams)
		if err != nil {
			return nil, err
		}
		p.TeamID = &team.ID
	} else {
		home := constants.Federations[0]
		player := &domain.Player{
			Name:         constants.UserPlayerName,
			Country:      home.Countries[0],
			FederationID: feds[home.Slug].ID,
			Role:         domain.RoleRifler,
			XP:           constants.UserPlayerXP,
		}
		if err := g.sess.Store.CreatePlayer(ctx, player); err != nil {
			return nil, err
		}
		p.PlayerID = &player.ID
		entries = append(entries, domain.NewEntry(domain.AddDays(p.Date, constants.ScoutingIntervalDays),
			domain.CalendarScoutingCheck, domain.IDPayload{ID: player.ID}))
	}

	if err := g.sess.Store.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	entries = append(entries, domain.NewEntry(p.Date, domain.CalendarSeasonStart, domain.NoPayload{}))
	for i := range entries {
		if err := g.sess.Store.Schedule(ctx, &entries[i]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (g *Generator) userTeam(ctx context.Context, slug string, teams []domain.Team) (*domain.Team, error) {
	t, err := g.sess.Store.GetTeamBySlug(ctx, slug)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("no team to hand to %q", slug)
	}
	t = &teams[0]
	t.Slug = slug
	t.Name = title(slug)
	if err := g.sess.Store.RenameTeam(ctx, t.ID, t.Name, t.Slug); err != nil {
		return nil, err
	}
	return t, nil
}

// teamName draws an unused prefix-suffix pair, numbering it once the pairs
// run out.
func (g *Generator) teamName() string {
	for range 20 {
		name := chance.Pick(g.sess.Rand, constants.TeamPrefixes) + " " + chance.Pick(g.sess.Rand, constants.TeamSuffixes)
		if !g.names[name] {
			g.names[name] = true
			return name
		}
	}
	base := chance.Pick(g.sess.Rand, constants.TeamPrefixes) + " " + chance.Pick(g.sess.Rand, constants.TeamSuffixes)
	for n := 2; ; n++ {
		name := fmt.Sprintf("%s %d", base, n)
		if !g.names[name] {
			g.names[name] = true
			return name
		}
	}
}

func (g *Generator) handle() string {
	return fmt.Sprintf("%s%d", chance.Pick(g.sess.Rand, constants.PlayerHandles), g.sess.Rand.IntBetween(1, 99))
}

func slug(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

func title(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
