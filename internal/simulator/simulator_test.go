package simulator

import (
	"testing"

	"esports-sim/internal/chance"
	"esports-sim/internal/domain"
	"esports-sim/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func side(teamID int64, elo float64, xp int) Side {
	s := Side{TeamID: teamID, Elo: elo}
	for i := 0; i < 5; i++ {
		s.Players = append(s.Players, domain.Player{ID: teamID*10 + int64(i), XP: xp})
	}
	return s
}

func TestPlaySingleMap(t *testing.T) {
	sim := New(chance.New(11), logger.Nop())
	for i := 0; i < 200; i++ {
		res := sim.Play(side(1, 1000, 50), side(2, 1000, 50), Options{Games: 1})
		require.Len(t, res.Maps, 1)
		a, b := res.Scores[1], res.Scores[2]
		assert.NotEqual(t, a, b, "draws are not allowed")
		assert.GreaterOrEqual(t, max(a, b), 13)
		assert.Len(t, res.Stats, 10)
		assert.NotEqual(t, res.ResultFor(1), res.ResultFor(2))
	}
}

func TestPlayAllowsDraws(t *testing.T) {
	sim := New(chance.New(5), logger.Nop())
	draws := 0
	for i := 0; i < 2000; i++ {
		res := sim.Play(side(1, 1000, 50), side(2, 1000, 50), Options{Games: 1, AllowDraw: true})
		if res.Scores[1] == res.Scores[2] {
			draws++
			assert.Equal(t, 12, res.Scores[1])
			assert.Equal(t, domain.ResultDraw, res.ResultFor(1))
		}
	}
	assert.Positive(t, draws)
}

func TestPlaySeries(t *testing.T) {
	sim := New(chance.New(8), logger.Nop())
	res := sim.Play(side(1, 1000, 50), side(2, 1000, 50), Options{Games: 3})

	a, b := res.Scores[1], res.Scores[2]
	assert.Equal(t, 2, max(a, b))
	assert.Less(t, min(a, b), 2)
	assert.Len(t, res.Maps, a+b)
	assert.Len(t, res.Stats, 10, "one line per player across maps")
}

func TestStrongerTeamWinsMore(t *testing.T) {
	sim := New(chance.New(21), logger.Nop())
	wins := 0
	for i := 0; i < 300; i++ {
		res := sim.Play(side(1, 1400, 90), side(2, 900, 20), Options{Games: 1})
		if res.ResultFor(1) == domain.ResultWin {
			wins++
		}
	}
	assert.Greater(t, wins, 200)
}
