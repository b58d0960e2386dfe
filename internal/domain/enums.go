package domain

type CompetitionStatus string

const (
	CompetitionScheduled CompetitionStatus = "scheduled"
	CompetitionStarted   CompetitionStatus = "started"
	CompetitionCompleted CompetitionStatus = "completed"
)

type MatchStatus string

const (
	MatchLocked    MatchStatus = "locked"
	MatchWaiting   MatchStatus = "waiting"
	MatchReady     MatchStatus = "ready"
	MatchPlaying   MatchStatus = "playing"
	MatchCompleted MatchStatus = "completed"
)

type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultLoss MatchResult = "loss"
	ResultDraw MatchResult = "draw"
)

type Role string

const (
	RoleRifler Role = "rifler"
	RoleSniper Role = "sniper"
)

// Replacement is the role a vacancy left by r has to be filled with.
func (r Role) Replacement() Role {
	if r == RoleSniper {
		return RoleSniper
	}
	return RoleRifler
}

// TransferStatus is shared by transfers and their offers. Team statuses are
// decided by the player's current team, player statuses by the player.
type TransferStatus string

const (
	TransferTeamPending    TransferStatus = "team_pending"
	TransferTeamAccepted   TransferStatus = "team_accepted"
	TransferTeamRejected   TransferStatus = "team_rejected"
	TransferPlayerPending  TransferStatus = "player_pending"
	TransferPlayerAccepted TransferStatus = "player_accepted"
	TransferPlayerRejected TransferStatus = "player_rejected"
	TransferExpired        TransferStatus = "expired"
)

func (s TransferStatus) Terminal() bool {
	switch s {
	case TransferTeamRejected, TransferPlayerAccepted, TransferPlayerRejected, TransferExpired:
		return true
	}
	return false
}

func (s TransferStatus) Pending() bool {
	return !s.Terminal()
}

// TerminalTransferStatuses is used by guarded updates in the store.
var TerminalTransferStatuses = []TransferStatus{
	TransferTeamRejected,
	TransferPlayerAccepted,
	TransferPlayerRejected,
	TransferExpired,
}

type SponsorshipStatus string

const (
	SponsorshipPending    SponsorshipStatus = "sponsor_pending"
	SponsorshipInvited    SponsorshipStatus = "team_pending"
	SponsorshipActive     SponsorshipStatus = "active"
	SponsorshipRejected   SponsorshipStatus = "rejected"
	SponsorshipTerminated SponsorshipStatus = "terminated"
	SponsorshipExpired    SponsorshipStatus = "expired"
)

type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Days between two payments.
func (f Frequency) Days() int {
	if f == FrequencyWeekly {
		return 7
	}
	return 30
}

type SeedingTrigger string

const (
	OnSeasonStart      SeedingTrigger = "season_start"
	OnCompetitionStart SeedingTrigger = "competition_start"
)

type AutofillAction string

const (
	AutofillInclude  AutofillAction = "include"
	AutofillExclude  AutofillAction = "exclude"
	AutofillFallback AutofillAction = "fallback"
)
