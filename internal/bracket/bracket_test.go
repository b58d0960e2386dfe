package bracket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(100 + i)
	}
	return out
}

func intPtr(v int) *int { return &v }

func playAll(t *testing.T, tr *Tournament) {
	t.Helper()
	for !tr.IsDone() {
		played := false
		for _, m := range tr.Matches() {
			if m.Ready() {
				// lower seed always wins
				score := [2]int{2, 1}
				if m.P[1] < m.P[0] {
					score = [2]int{1, 2}
				}
				require.NoError(t, tr.Score(m.ID, score))
				played = true
			}
		}
		require.True(t, played, "tournament stalled")
	}
}

func TestRoundRobinSingleTable(t *testing.T) {
	tr := New(Config{Size: 20, GroupSize: intPtr(1)})
	require.NoError(t, tr.AddCompetitors(ids(20)...))
	require.NoError(t, tr.Start())

	assert.Equal(t, []int{1}, tr.Sections())
	rounds := tr.Rounds(1)
	require.Len(t, rounds, 19)

	pairs := map[[2]int]bool{}
	for _, round := range rounds {
		assert.Len(t, round, 10)
		seen := map[int]bool{}
		for _, m := range round {
			assert.True(t, m.Ready())
			assert.False(t, seen[m.P[0]] || seen[m.P[1]], "seed plays twice in round %d", m.ID.R)
			seen[m.P[0]], seen[m.P[1]] = true, true
			key := [2]int{min(m.P[0], m.P[1]), max(m.P[0], m.P[1])}
			assert.False(t, pairs[key], "pair %v repeated", key)
			pairs[key] = true
		}
	}
	assert.Len(t, pairs, 190)

	playAll(t, tr)
	for _, r := range tr.Results() {
		assert.Equal(t, 19, r.Wins+r.Losses+r.Draws)
		assert.Nil(t, r.Gpos)
		assert.Equal(t, r.Seed, r.Pos, "lower seeds always win")
	}
}

func TestRoundRobinOddGroupSkipsByes(t *testing.T) {
	tr := New(Config{Size: 5, GroupSize: intPtr(1)})
	require.NoError(t, tr.AddCompetitors(ids(5)...))
	require.NoError(t, tr.Start())

	rounds := tr.Rounds(1)
	require.Len(t, rounds, 5)
	total := 0
	for _, round := range rounds {
		assert.Len(t, round, 2)
		for _, m := range round {
			assert.False(t, m.HasBye())
		}
		total += len(round)
	}
	assert.Equal(t, 10, total)
}

func TestRoundRobinGroups(t *testing.T) {
	tr := New(Config{Size: 8, GroupSize: intPtr(4)})
	require.NoError(t, tr.AddCompetitors(ids(8)...))
	require.NoError(t, tr.Start())

	assert.Equal(t, []int{1, 2}, tr.Sections())
	playAll(t, tr)

	gpos := map[int]bool{}
	for _, r := range tr.Results() {
		require.NotNil(t, r.Gpos)
		gpos[*r.Gpos] = true
		assert.Equal(t, 3, r.Wins+r.Losses+r.Draws)
	}
	assert.Len(t, gpos, 8)
}

func TestRoundRobinDraws(t *testing.T) {
	tr := New(Config{Size: 2, GroupSize: intPtr(1)})
	require.NoError(t, tr.AddCompetitors(1, 2))
	require.NoError(t, tr.Start())

	m := tr.Matches()[0]
	require.NoError(t, tr.Score(m.ID, [2]int{12, 12}))
	assert.True(t, tr.IsDone())
	for _, r := range tr.Results() {
		assert.Equal(t, 1, r.Draws)
	}
}

func TestEliminationWithBye(t *testing.T) {
	tr := New(Config{Size: 8})
	require.NoError(t, tr.AddCompetitors(ids(7)...))
	require.NoError(t, tr.Start())

	rounds := tr.Rounds(1)
	require.Len(t, rounds, 3)
	require.Len(t, rounds[0], 4)

	var byes, ready int
	for _, m := range rounds[0] {
		if m.HasBye() {
			byes++
			assert.True(t, m.Done())
			assert.Equal(t, [2]int{1, Bye}, m.P)
		} else if m.Ready() {
			ready++
		}
	}
	assert.Equal(t, 1, byes)
	assert.Equal(t, 3, ready)

	// the top seed is already waiting in the semi final
	assert.Equal(t, [2]int{1, TBD}, rounds[1][0].P)
	assert.Equal(t, [2]int{TBD, TBD}, rounds[1][1].P)
	assert.Equal(t, 1, tr.CurrentRound(1))

	playAll(t, tr)
	assert.Equal(t, 0, tr.CurrentRound(1))

	positions := map[int]int{}
	for _, r := range tr.Results() {
		assert.GreaterOrEqual(t, r.Pos, 1)
		assert.LessOrEqual(t, r.Pos, 8)
		positions[r.Pos]++
	}
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 2, 5: 3}, positions)
}

func TestEliminationRejectsDraws(t *testing.T) {
	tr := New(Config{Size: 4})
	require.NoError(t, tr.AddCompetitors(ids(4)...))
	require.NoError(t, tr.Start())

	m := tr.Rounds(1)[0][0]
	assert.ErrorIs(t, tr.Score(m.ID, [2]int{1, 1}), ErrDrawNotAllowed)
	assert.ErrorIs(t, tr.Score(MatchID{S: 1, R: 9, M: 1}, [2]int{1, 0}), ErrUnknownMatch)
	assert.ErrorIs(t, tr.Score(tr.Rounds(1)[1][0].ID, [2]int{1, 0}), ErrNotReady)

	require.NoError(t, tr.Score(m.ID, [2]int{2, 0}))
	require.NoError(t, tr.Score(m.ID, [2]int{2, 0}), "same score twice is a no-op")
	assert.ErrorIs(t, tr.Score(m.ID, [2]int{0, 2}), ErrAlreadyScored)
}

func TestEliminationNewRoundDetection(t *testing.T) {
	tr := New(Config{Size: 4})
	require.NoError(t, tr.AddCompetitors(ids(4)...))
	require.NoError(t, tr.Start())

	semis := tr.Rounds(1)[0]
	require.NoError(t, tr.Score(semis[0].ID, [2]int{2, 1}))
	assert.Equal(t, 1, tr.CurrentRound(1), "round stays current until every match is scored")
	require.NoError(t, tr.Score(semis[1].ID, [2]int{0, 2}))
	assert.Equal(t, 2, tr.CurrentRound(1))

	final := tr.Rounds(1)[1][0]
	assert.True(t, final.Ready())
	assert.Equal(t, [2]int{semis[0].P[0], semis[1].P[1]}, final.P)
}

func TestSerialization(t *testing.T) {
	tr := New(Config{Size: 8})
	require.NoError(t, tr.AddCompetitors(ids(6)...))
	require.NoError(t, tr.Start())
	m := tr.Rounds(1)[0]
	for _, match := range m {
		if match.Ready() {
			require.NoError(t, tr.Score(match.ID, [2]int{2, 0}))
			break
		}
	}

	data, err := json.Marshal(tr)
	require.NoError(t, err)
	restored, err := Restore(data)
	require.NoError(t, err)

	assert.Equal(t, tr.Matches(), restored.Matches())
	assert.Equal(t, tr.Results(), restored.Results())
	assert.Equal(t, 3, restored.SeedOf(102))
	id, ok := restored.CompetitorOf(3)
	assert.True(t, ok)
	assert.Equal(t, int64(102), id)
	_, ok = restored.CompetitorOf(Bye)
	assert.False(t, ok)
}

func TestMatchIDEncoding(t *testing.T) {
	id := MatchID{S: 1, R: 2, M: 3}
	assert.Equal(t, `{"s":1,"r":2,"m":3}`, id.Encode())

	parsed, err := ParseMatchID(id.Encode())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseMatchID("nope")
	assert.Error(t, err)
}
