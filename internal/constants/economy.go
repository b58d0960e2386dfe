package constants

import (
	"time"

	"esports-sim/internal/domain"
)

type PrizePool struct {
	Total        int64
	Distribution []float64 // percentages by final position
}

var PrizePools = map[string]PrizePool{
	DivisionSlug(0): {Total: 5_000, Distribution: []float64{50, 30, 20}},
	DivisionSlug(1): {Total: 10_000, Distribution: []float64{50, 30, 20}},
	DivisionSlug(2): {Total: 25_000, Distribution: []float64{45, 30, 15, 10}},
	DivisionSlug(3): {Total: 50_000, Distribution: []float64{40, 25, 15, 10, 10}},
	DivisionSlug(4): {Total: 150_000, Distribution: []float64{35, 20, 15, 10, 10, 5, 5}},
	PlayoffSlug(2):  {Total: 10_000, Distribution: []float64{60, 40}},
	PlayoffSlug(3):  {Total: 30_000, Distribution: []float64{60, 40}},
	PlayoffSlug(4):  {Total: 100_000, Distribution: []float64{50, 30, 20}},
	TierCup:         {Total: 250_000, Distribution: []float64{40, 20, 10, 10, 5, 5, 5, 5}},
}

// BestOf is indexed by rounds remaining after the match's round: index 0 is
// the final round. Rounds past the end of a slice play DefaultBestOf.
var BestOf = map[string][]int{
	PlayoffSlug(0): {3},
	PlayoffSlug(1): {3},
	PlayoffSlug(2): {3},
	PlayoffSlug(3): {3, 3},
	PlayoffSlug(4): {5, 3},
	TierCup:        {5, 3, 3},
}

// MatchdayWeights decide which weekday a league plays on.
var MatchdayWeights = map[string]map[time.Weekday]float64{
	LeagueCircuit: {time.Tuesday: 30, time.Wednesday: 40, time.Thursday: 30},
	LeagueCup:     {time.Saturday: 50, time.Sunday: 50},
}

type WageBand struct {
	Low        int64
	High       int64
	Multiplier int64
	Percent    float64
}

// WageBands by prestige index.
var WageBands = [][]WageBand{
	{{Low: 250, High: 750, Multiplier: 2, Percent: 85}, {Low: 750, High: 1_500, Multiplier: 3, Percent: 15}},
	{{Low: 750, High: 1_500, Multiplier: 2, Percent: 80}, {Low: 1_500, High: 3_000, Multiplier: 3, Percent: 20}},
	{{Low: 1_500, High: 4_000, Multiplier: 3, Percent: 75}, {Low: 4_000, High: 8_000, Multiplier: 4, Percent: 25}},
	{{Low: 4_000, High: 10_000, Multiplier: 4, Percent: 70}, {Low: 10_000, High: 20_000, Multiplier: 5, Percent: 30}},
	{{Low: 10_000, High: 25_000, Multiplier: 5, Percent: 65}, {Low: 25_000, High: 60_000, Multiplier: 8, Percent: 30}, {Low: 60_000, High: 100_000, Multiplier: 10, Percent: 5}},
}

type ClauseKind string

const (
	// ClausePlacement requires a final division position at or above Position.
	ClausePlacement ClauseKind = "placement"
	// ClauseDivision requires the team to play in prestige Position or higher.
	ClauseDivision ClauseKind = "division"
)

type Clause struct {
	Kind     ClauseKind
	Position int
	Amount   int64
}

type SponsorDef struct {
	Slug         string
	Name         string
	MinTier      int
	Amount       int64
	Frequency    domain.Frequency
	Years        int
	Requirements []Clause
	Bonuses      []Clause
	// chance the sponsor invites the team to renew at season end
	RenewChance float64
}

var Sponsors = []SponsorDef{
	{
		Slug: "byteforge", Name: "ByteForge Peripherals", MinTier: 0, Amount: 400,
		Frequency: domain.FrequencyWeekly, Years: 1, RenewChance: 0.8,
		Bonuses: []Clause{{Kind: ClausePlacement, Position: 3, Amount: 2_500}},
	},
	{
		Slug: "voltcola", Name: "VoltCola", MinTier: 2, Amount: 6_000,
		Frequency: domain.FrequencyMonthly, Years: 2, RenewChance: 0.6,
		Requirements: []Clause{{Kind: ClausePlacement, Position: 8}},
		Bonuses:      []Clause{{Kind: ClausePlacement, Position: 1, Amount: 20_000}, {Kind: ClausePlacement, Position: 4, Amount: 5_000}},
	},
	{
		Slug: "northwind", Name: "Northwind Motors", MinTier: 3, Amount: 20_000,
		Frequency: domain.FrequencyMonthly, Years: 2, RenewChance: 0.5,
		Requirements: []Clause{{Kind: ClauseDivision, Position: 3}, {Kind: ClausePlacement, Position: 6}},
		Bonuses:      []Clause{{Kind: ClausePlacement, Position: 1, Amount: 75_000}},
	},
}

func SponsorBySlug(slug string) (SponsorDef, bool) {
	for _, s := range Sponsors {
		if s.Slug == slug {
			return s, true
		}
	}
	return SponsorDef{}, false
}

const (
	SponsorshipResponseDays = 3
	SponsorInviteChance     = 0.35
)
