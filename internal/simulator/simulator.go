// Package simulator turns two rosters into a match score. It is a black box
// to the rest of the engine: callers only rely on Result.
package simulator

import (
	"math"

	"esports-sim/internal/chance"
	"esports-sim/internal/config"
	"esports-sim/internal/constants"
	"esports-sim/internal/domain"

	"github.com/rs/zerolog"
)

// Side is one team as the simulator sees it.
type Side struct {
	TeamID  int64
	Elo     float64
	Players []domain.Player // starters only
}

type Options struct {
	Games     int
	AllowDraw bool
	Fidelity  string
}

type Result struct {
	Scores map[int64]int
	Maps   [][2]int
	Stats  []domain.PlayerStat
}

// ResultFor derives the outcome for teamID from the scores.
func (r Result) ResultFor(teamID int64) domain.MatchResult {
	ours := r.Scores[teamID]
	for id, theirs := range r.Scores {
		if id == teamID {
			continue
		}
		switch {
		case ours > theirs:
			return domain.ResultWin
		case ours < theirs:
			return domain.ResultLoss
		}
	}
	return domain.ResultDraw
}

type Simulator struct {
	rand   *chance.Source
	logger zerolog.Logger
}

func New(rand *chance.Source, logger zerolog.Logger) *Simulator {
	return &Simulator{rand: rand, logger: logger}
}

// Play simulates a series. A single game reports round scores; longer series
// report maps won.
func (s *Simulator) Play(home, away Side, opts Options) Result {
	games := max(opts.Games, 1)
	noise := constants.FastSimNoise
	if opts.Fidelity == config.FidelityDetailed {
		noise = constants.DetailedSimNoise
	}
	p := s.roundChance(home, away, noise)

	res := Result{Scores: map[int64]int{home.TeamID: 0, away.TeamID: 0}}
	need := games/2 + 1
	var won [2]int
	for len(res.Maps) < games && won[0] < need && won[1] < need {
		score := s.playMap(p, opts.AllowDraw && games == 1)
		res.Maps = append(res.Maps, score)
		switch {
		case score[0] > score[1]:
			won[0]++
		case score[1] > score[0]:
			won[1]++
		}
		res.Stats = append(res.Stats, s.stats(home, score[0], score[1])...)
		res.Stats = append(res.Stats, s.stats(away, score[1], score[0])...)
	}

	if games == 1 {
		res.Scores[home.TeamID] = res.Maps[0][0]
		res.Scores[away.TeamID] = res.Maps[0][1]
	} else {
		res.Scores[home.TeamID] = won[0]
		res.Scores[away.TeamID] = won[1]
	}
	res.Stats = mergeStats(res.Stats)

	s.logger.Debug().
		Int64("home", home.TeamID).
		Int64("away", away.TeamID).
		Int("home_score", res.Scores[home.TeamID]).
		Int("away_score", res.Scores[away.TeamID]).
		Msg("match simulated")
	return res
}

func strength(side Side) float64 {
	if len(side.Players) == 0 {
		return side.Elo
	}
	xp := 0
	for _, p := range side.Players {
		xp += p.XP
	}
	return side.Elo + 4*float64(xp)/float64(len(side.Players))
}

// roundChance is the probability the home side wins a single round.
func (s *Simulator) roundChance(home, away Side, noise float64) float64 {
	diff := strength(away) - strength(home)
	p := 1 / (1 + math.Pow(10, diff/constants.EloScale))
	// a round is much closer to a coin flip than a whole match
	p = 0.5 + (p-0.5)*0.35 + s.rand.Norm(0, noise/3)
	return math.Min(0.9, math.Max(0.1, p))
}

func (s *Simulator) playMap(p float64, allowDraw bool) [2]int {
	var score [2]int
	half := constants.RoundsToWin - 1
	for score[0] < constants.RoundsToWin && score[1] < constants.RoundsToWin {
		if score[0] == half && score[1] == half {
			if allowDraw {
				return score
			}
			return s.overtime(p, score)
		}
		if s.rand.Roll(p) {
			score[0]++
		} else {
			score[1]++
		}
	}
	return score
}

// overtime plays rounds until one side leads by two.
func (s *Simulator) overtime(p float64, score [2]int) [2]int {
	for score[0]-score[1] < 2 && score[1]-score[0] < 2 {
		if s.rand.Roll(p) {
			score[0]++
		} else {
			score[1]++
		}
	}
	return score
}

func (s *Simulator) stats(side Side, won, lost int) []domain.PlayerStat {
	if len(side.Players) == 0 {
		return nil
	}
	kills := int(math.Round(float64(won)*3.2 + float64(lost)*1.6))
	deaths := int(math.Round(float64(lost)*3.2 + float64(won)*1.6))

	weights := make([]float64, len(side.Players))
	total := 0.0
	for i, p := range side.Players {
		weights[i] = math.Max(0.2, (float64(p.XP)+50)/100*s.rand.FloatBetween(0.6, 1.4))
		total += weights[i]
	}

	out := make([]domain.PlayerStat, len(side.Players))
	for i, p := range side.Players {
		share := weights[i] / total
		k := int(math.Round(float64(kills) * share))
		out[i] = domain.PlayerStat{
			PlayerID: p.ID,
			TeamID:   side.TeamID,
			Kills:    k,
			Deaths:   int(math.Round(float64(deaths) * (2.0/float64(len(side.Players)) - share))),
			Assists:  int(math.Round(float64(k) * s.rand.FloatBetween(0.2, 0.5))),
		}
		if out[i].Deaths < 0 {
			out[i].Deaths = 0
		}
	}
	return out
}

// mergeStats sums per-map lines into one line per player.
func mergeStats(lines []domain.PlayerStat) []domain.PlayerStat {
	idx := map[int64]int{}
	var out []domain.PlayerStat
	for _, l := range lines {
		i, ok := idx[l.PlayerID]
		if !ok {
			idx[l.PlayerID] = len(out)
			out = append(out, l)
			continue
		}
		out[i].Kills += l.Kills
		out[i].Deaths += l.Deaths
		out[i].Assists += l.Assists
	}
	return out
}
