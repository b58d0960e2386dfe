package bracket

import (
	"cmp"
	"slices"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

func (t *Tournament) startRoundRobin() {
	n := len(t.st.Competitors)
	size := *t.st.GroupSize
	if size <= 1 || size >= n {
		size = n
	}

	groups := make([][]int, (n+size-1)/size)
	// snake seeding keeps the groups balanced: 1 4 5 | 2 3 6 for two groups
	for i := 0; i < n; i++ {
		lap, pos := i/len(groups), i%len(groups)
		if lap%2 == 1 {
			pos = len(groups) - 1 - pos
		}
		groups[pos] = append(groups[pos], i+1)
	}
	t.st.Groups = groups

	for g, seeds := range groups {
		for r, pairs := range circle(seeds) {
			m := 0
			for _, p := range pairs {
				if p[0] == Bye || p[1] == Bye {
					continue
				}
				m++
				t.st.Matches = append(t.st.Matches, Match{ID: MatchID{S: g + 1, R: r + 1, M: m}, P: p})
			}
		}
	}
}

// circle pairs every seed with every other using the circle method. Odd
// groups get a bye slot, whose pairings the caller skips.
func circle(seeds []int) [][][2]int {
	ring := slices.Clone(seeds)
	if len(ring)%2 == 1 {
		ring = append(ring, Bye)
	}
	n := len(ring)

	rounds := make([][][2]int, 0, n-1)
	for r := 0; r < n-1; r++ {
		pairs := make([][2]int, 0, n/2)
		for i := 0; i < n/2; i++ {
			pairs = append(pairs, [2]int{ring[i], ring[n-1-i]})
		}
		rounds = append(rounds, pairs)
		// keep the first seed fixed and rotate the rest clockwise
		last := ring[n-1]
		copy(ring[2:], ring[1:n-1])
		ring[1] = last
	}
	return rounds
}

type tally struct {
	Result
	points int
}

func (t *Tournament) roundRobinResults() []Result {
	n := len(t.st.Competitors)
	rows := make([]tally, n)
	for i := range rows {
		rows[i].Seed = i + 1
	}
	for g, seeds := range t.st.Groups {
		for _, s := range seeds {
			rows[s-1].Group = g + 1
		}
	}

	for _, m := range t.st.Matches {
		if m.M == nil {
			continue
		}
		for side, seed := range m.P {
			r := &rows[seed-1]
			us, them := m.M[side], m.M[1-side]
			r.For += us
			r.Against += them
			switch {
			case us > them:
				r.Wins++
				r.points += pointsWin
			case us < them:
				r.Losses++
			default:
				r.Draws++
				r.points += pointsDraw
			}
		}
	}

	for _, seeds := range t.st.Groups {
		group := make([]*tally, 0, len(seeds))
		for _, s := range seeds {
			group = append(group, &rows[s-1])
		}
		slices.SortFunc(group, compareTally)
		for i, r := range group {
			r.Pos = i + 1
		}
	}

	if len(t.st.Groups) > 1 {
		// across groups, place group winners first, then runners-up, and so on
		all := make([]*tally, n)
		for i := range rows {
			all[i] = &rows[i]
		}
		slices.SortFunc(all, func(a, b *tally) int {
			return cmp.Or(cmp.Compare(a.Pos, b.Pos), compareTally(a, b))
		})
		for i, r := range all {
			gpos := i + 1
			r.Gpos = &gpos
		}
	}

	out := make([]Result, n)
	for i, r := range rows {
		out[i] = r.Result
	}
	return out
}

func compareTally(a, b *tally) int {
	return cmp.Or(
		cmp.Compare(b.points, a.points),
		cmp.Compare(b.For-b.Against, a.For-a.Against),
		cmp.Compare(a.Seed, b.Seed),
	)
}
