package domain

import (
	"time"
)

// Profile is the root of a save. Exactly one row exists per save file.
type Profile struct {
	ID       int64
	SaveID   string
	Date     time.Time
	Season   int
	TeamID   *int64 // nil in player-career mode
	PlayerID *int64
	Settings Settings
}

type Settings struct {
	SimFidelity string   `json:"simFidelity"`
	MapPool     []string `json:"mapPool"`
}

// CareerMode reports whether the user controls a player rather than a team.
func (p *Profile) CareerMode() bool {
	return p.TeamID == nil
}

type Federation struct {
	ID   int64
	Slug string
	Name string
}

type League struct {
	ID              int64
	Slug            string
	Name            string
	StartOffsetDays int
	FederationIDs   []int64
}

type Tier struct {
	ID                int64
	LeagueID          int64
	Slug              string
	Name              string
	Size              int
	GroupSize         *int // nil for elimination brackets
	TriggerTierSlug   *string
	TriggerOffsetDays *int
	Prestige          *int // set on domestic league divisions only
	League            *League
}

type Competition struct {
	ID           int64
	TierID       int64
	FederationID int64
	Season       int
	Status       CompetitionStatus
	Tournament   []byte
	Tier         *Tier
	Competitors  []Competitor
}

type Competitor struct {
	ID            int64
	CompetitionID int64
	TeamID        int64
	Seed          int
	Group         int
	Position      int
	Win           int
	Loss          int
	Draw          int
}

type Match struct {
	ID            int64
	CompetitionID int64
	Round         int
	TotalRounds   int
	Status        MatchStatus
	Date          time.Time
	Payload       string
	Competitors   []MatchCompetitor
	Games         []Game
}

// Has reports whether teamID takes part in the match.
func (m *Match) Has(teamID int64) bool {
	for _, c := range m.Competitors {
		if c.TeamID == teamID {
			return true
		}
	}
	return false
}

type MatchCompetitor struct {
	ID      int64
	MatchID int64
	TeamID  int64
	Seed    int
	Score   *int
	Result  *MatchResult
}

type Game struct {
	ID      int64
	MatchID int64
	Num     int
	Map     string
	Status  MatchStatus
}

type Team struct {
	ID           int64
	Name         string
	Slug         string
	FederationID int64
	Tier         int
	Elo          float64
	Earnings     int64
	Players      []Player
}

type Player struct {
	ID             int64
	Name           string
	Country        string
	FederationID   int64
	TeamID         *int64
	Starter        bool
	TransferListed bool
	Role           Role
	Wages          int64
	Cost           int64
	ContractEnd    *time.Time
	XP             int
	LastOfferAt    *time.Time
}

// DaysLeft is the number of days until the contract ends, zero for free agents.
func (p *Player) DaysLeft(today time.Time) int {
	if p.ContractEnd == nil {
		return 0
	}
	return DaysBetween(today, *p.ContractEnd)
}

type CareerStint struct {
	ID        int64
	PlayerID  int64
	TeamID    int64
	Tier      int
	StartedAt time.Time
	EndedAt   *time.Time
}

type Transfer struct {
	ID         int64
	PlayerID   int64
	FromTeamID int64  // the team making the offer
	ToTeamID   *int64 // the player's team when the offer was made
	Status     TransferStatus
	CreatedAt  time.Time
	Offers     []Offer
}

// Extension reports whether the offer comes from the player's own team.
func (t *Transfer) Extension() bool {
	return t.ToTeamID != nil && *t.ToTeamID == t.FromTeamID
}

// Latest returns the most recent offer, or nil.
func (t *Transfer) Latest() *Offer {
	if len(t.Offers) == 0 {
		return nil
	}
	return &t.Offers[len(t.Offers)-1]
}

type Offer struct {
	ID            int64
	TransferID    int64
	Wages         int64
	Cost          int64
	ContractYears int
	ExpiresAt     time.Time
	Status        TransferStatus
	CreatedAt     time.Time
}

type Sponsorship struct {
	ID      int64
	TeamID  int64
	Sponsor string
	Status  SponsorshipStatus
	Offers  []SponsorshipOffer
}

func (s *Sponsorship) Latest() *SponsorshipOffer {
	if len(s.Offers) == 0 {
		return nil
	}
	return &s.Offers[len(s.Offers)-1]
}

type SponsorshipOffer struct {
	ID            int64
	SponsorshipID int64
	Amount        int64
	Frequency     Frequency
	Start         time.Time
	End           time.Time
	Status        SponsorshipStatus
}

type PlayerStat struct {
	ID       int64
	MatchID  int64
	PlayerID int64
	TeamID   int64
	Kills    int
	Deaths   int
	Assists  int
	Date     time.Time
}

type Email struct {
	ID        string // nanoid
	Sender    string
	Subject   string
	Body      string
	Date      time.Time
	Delivered bool
	Read      bool
}
