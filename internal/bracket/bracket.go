// Package bracket implements the tournament structures competitions are played
// in: single elimination brackets and round robin groups. Competitors are
// identified by seed (1-based, in the order they were added); the package maps
// seeds back to competitor ids.
package bracket

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Seed slot sentinels.
const (
	TBD = 0
	Bye = -1
)

var (
	ErrUnknownMatch   = errors.New("unknown match")
	ErrDrawNotAllowed = errors.New("draws are not allowed in elimination matches")
	ErrNotReady       = errors.New("match is not ready to be scored")
	ErrAlreadyScored  = errors.New("match already has a different score")
	ErrStarted        = errors.New("tournament already started")
	ErrTooFew         = errors.New("at least two competitors are required")
)

type Kind string

const (
	Elimination Kind = "elimination"
	RoundRobin  Kind = "roundrobin"
)

// MatchID locates a match: section (bracket side or group), round and index
// within the round, all 1-based.
type MatchID struct {
	S int `json:"s"`
	R int `json:"r"`
	M int `json:"m"`
}

// Encode is the stable string form stored as a match payload.
func (id MatchID) Encode() string {
	b, _ := json.Marshal(id)
	return string(b)
}

func ParseMatchID(raw string) (MatchID, error) {
	var id MatchID
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return MatchID{}, fmt.Errorf("invalid match id %q: %w", raw, err)
	}
	return id, nil
}

type Match struct {
	ID MatchID `json:"id"`
	P  [2]int  `json:"p"`
	M  *[2]int `json:"m,omitempty"`
}

// HasBye reports whether either slot is a bye.
func (m Match) HasBye() bool {
	return m.P[0] == Bye || m.P[1] == Bye
}

// Ready reports whether both sides are known competitors and no score exists.
func (m Match) Ready() bool {
	return m.P[0] > 0 && m.P[1] > 0 && m.M == nil
}

// winner returns the advancing seed, Bye when both slots are byes, or TBD.
func (m Match) winner() int {
	if m.M != nil {
		switch {
		case m.M[0] > m.M[1]:
			return m.P[0]
		case m.M[1] > m.M[0]:
			return m.P[1]
		}
		return TBD
	}
	switch {
	case m.P[0] == Bye && m.P[1] == Bye:
		return Bye
	case m.P[0] == Bye && m.P[1] > 0:
		return m.P[1]
	case m.P[1] == Bye && m.P[0] > 0:
		return m.P[0]
	}
	return TBD
}

// Done reports whether the match is decided, by score or by bye.
func (m Match) Done() bool {
	if m.M != nil {
		return true
	}
	return m.HasBye() && m.winner() != TBD
}

type Config struct {
	Size      int
	GroupSize *int // nil for single elimination
}

type state struct {
	Kind        Kind    `json:"kind"`
	Size        int     `json:"size"`
	GroupSize   *int    `json:"groupSize,omitempty"`
	Competitors []int64 `json:"competitors"`
	Slots       int     `json:"slots,omitempty"`
	Groups      [][]int `json:"groups,omitempty"`
	Started     bool    `json:"started"`
	Matches     []Match `json:"matches"`
}

// Tournament is a bracket or set of groups. The zero value is not usable; use
// New or Restore.
type Tournament struct {
	st state
}

func New(cfg Config) *Tournament {
	kind := Elimination
	if cfg.GroupSize != nil {
		kind = RoundRobin
	}
	return &Tournament{st: state{Kind: kind, Size: cfg.Size, GroupSize: cfg.GroupSize}}
}

// Restore rebuilds a tournament from its JSON form.
func Restore(data []byte) (*Tournament, error) {
	t := &Tournament{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tournament) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.st)
}

func (t *Tournament) UnmarshalJSON(data []byte) error {
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("failed to restore tournament: %w", err)
	}
	t.st = st
	return nil
}

func (t *Tournament) Kind() Kind { return t.st.Kind }

func (t *Tournament) Started() bool { return t.st.Started }

// AddCompetitors appends competitors; their seeds follow insertion order.
func (t *Tournament) AddCompetitors(ids ...int64) error {
	if t.st.Started {
		return ErrStarted
	}
	t.st.Competitors = append(t.st.Competitors, ids...)
	return nil
}

func (t *Tournament) Start() error {
	if t.st.Started {
		return ErrStarted
	}
	if len(t.st.Competitors) < 2 {
		return ErrTooFew
	}
	if t.st.Kind == Elimination {
		t.startElimination()
	} else {
		t.startRoundRobin()
	}
	t.st.Started = true
	return nil
}

// SeedOf returns the competitor's seed, or 0 when absent.
func (t *Tournament) SeedOf(id int64) int {
	if i := slices.Index(t.st.Competitors, id); i >= 0 {
		return i + 1
	}
	return 0
}

func (t *Tournament) CompetitorOf(seed int) (int64, bool) {
	if seed < 1 || seed > len(t.st.Competitors) {
		return 0, false
	}
	return t.st.Competitors[seed-1], true
}

// Sections lists the bracket sides or groups in order.
func (t *Tournament) Sections() []int {
	var out []int
	for _, m := range t.st.Matches {
		if !slices.Contains(out, m.ID.S) {
			out = append(out, m.ID.S)
		}
	}
	slices.Sort(out)
	return out
}

// Rounds returns the matches of a section grouped by round.
func (t *Tournament) Rounds(section int) [][]Match {
	var out [][]Match
	for _, m := range t.st.Matches {
		if m.ID.S != section {
			continue
		}
		for len(out) < m.ID.R {
			out = append(out, nil)
		}
		out[m.ID.R-1] = append(out[m.ID.R-1], m)
	}
	return out
}

// Matches returns every match in section, round, index order.
func (t *Tournament) Matches() []Match {
	return slices.Clone(t.st.Matches)
}

func (t *Tournament) FindMatch(id MatchID) (Match, bool) {
	i := t.index(id)
	if i < 0 {
		return Match{}, false
	}
	return t.st.Matches[i], true
}

func (t *Tournament) index(id MatchID) int {
	return slices.IndexFunc(t.st.Matches, func(m Match) bool { return m.ID == id })
}

// CurrentRound is the earliest round of section with an undecided match, or
// 0 when the section is finished.
func (t *Tournament) CurrentRound(section int) int {
	for _, m := range t.st.Matches {
		if m.ID.S == section && !m.Done() {
			return m.ID.R
		}
	}
	return 0
}

func (t *Tournament) IsDone() bool {
	if !t.st.Started {
		return false
	}
	for _, m := range t.st.Matches {
		if !m.Done() {
			return false
		}
	}
	return true
}

// Score records the result of a ready match. Re-recording the same score is
// a no-op.
func (t *Tournament) Score(id MatchID, score [2]int) error {
	i := t.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownMatch, id.Encode())
	}
	m := &t.st.Matches[i]
	if m.M != nil {
		if *m.M == score {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrAlreadyScored, id.Encode())
	}
	if !m.Ready() {
		return fmt.Errorf("%w: %s", ErrNotReady, id.Encode())
	}
	if t.st.Kind == Elimination && score[0] == score[1] {
		return ErrDrawNotAllowed
	}

	m.M = &score
	if t.st.Kind == Elimination {
		t.advance()
	}
	return nil
}

type Result struct {
	Seed    int
	Group   int
	Pos     int
	Gpos    *int // set when standings span several groups
	Wins    int
	Losses  int
	Draws   int
	For     int
	Against int
}

// Results returns per-seed standings in seed order.
func (t *Tournament) Results() []Result {
	if t.st.Kind == Elimination {
		return t.eliminationResults()
	}
	return t.roundRobinResults()
}
