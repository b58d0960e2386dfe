package bracket

func (t *Tournament) startElimination() {
	n := len(t.st.Competitors)
	slots := 2
	for slots < max(n, t.st.Size) {
		slots *= 2
	}
	t.st.Slots = slots

	order := seedOrder(slots)
	rounds := 0
	for s := slots; s > 1; s /= 2 {
		rounds++
	}

	for r := 1; r <= rounds; r++ {
		count := slots >> r
		for m := 1; m <= count; m++ {
			match := Match{ID: MatchID{S: 1, R: r, M: m}}
			if r == 1 {
				for side := 0; side < 2; side++ {
					seed := order[(m-1)*2+side]
					if seed > n {
						seed = Bye
					}
					match.P[side] = seed
				}
			}
			t.st.Matches = append(t.st.Matches, match)
		}
	}
	t.advance()
}

// seedOrder lists seeds in bracket order so that 1 and 2 can only meet in
// the final, e.g. 1 8 4 5 2 7 3 6 for eight slots.
func seedOrder(slots int) []int {
	order := []int{1}
	for len(order) < slots {
		size := len(order) * 2
		next := make([]int, 0, size)
		for _, s := range order {
			next = append(next, s, size+1-s)
		}
		order = next
	}
	return order
}

// advance fills every later-round slot whose feeder match is decided.
func (t *Tournament) advance() {
	for i := range t.st.Matches {
		m := t.st.Matches[i]
		w := m.winner()
		if w == TBD {
			continue
		}
		next := t.index(MatchID{S: m.ID.S, R: m.ID.R + 1, M: (m.ID.M + 1) / 2})
		if next < 0 {
			continue
		}
		t.st.Matches[next].P[(m.ID.M-1)%2] = w
	}
}

func (t *Tournament) eliminationResults() []Result {
	n := len(t.st.Competitors)
	out := make([]Result, n)
	for i := range out {
		out[i] = Result{Seed: i + 1, Group: 1, Pos: 1}
	}

	for _, m := range t.st.Matches {
		if m.M == nil {
			continue
		}
		w := m.winner()
		for side, seed := range m.P {
			if seed < 1 {
				continue
			}
			r := &out[seed-1]
			r.For += m.M[side]
			r.Against += m.M[1-side]
			if seed == w {
				r.Wins++
				continue
			}
			r.Losses++
			// losers of round r share the places below the slots still alive
			r.Pos = t.st.Slots>>m.ID.R + 1
		}
	}

	return out
}
