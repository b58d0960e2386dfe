package constants

import "time"

const (
	DBMaxOpenConns    = 8
	DBMaxIdleConns    = 4
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBusyTimeoutMS   = 5000
)

const AdvanceTimeout = 5 * time.Minute

// Calendar
const (
	DaysPerWeek   = 7
	SeasonLength  = 365
	DefaultBestOf = 1
)

// Elo
const (
	EloStart  = 1000.0
	EloK      = 32.0
	EloScale  = 400.0
	EloDrawed = 0.5
)

// Simulation
const (
	RoundsToWin      = 13
	RosterSize       = 6
	StartersPerTeam  = 5
	SimBaseKills     = 16
	DetailedSimNoise = 0.08
	FastSimNoise     = 0.15
)
