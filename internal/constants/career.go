package constants

// Transfers
const (
	OfferExpiryDays       = 7
	OfferWarningDays      = 1
	OfferResponseDays     = 2
	ScoutingIntervalDays  = 7
	OfferCooldownDays     = 21
	ListedFeeDiscount     = 0.75
	MinContractYears      = 1
	MaxContractYears      = 3
	PlayerPrestigeSlack   = 1
	ExtensionWageRaiseMin = 1.05
	ExtensionWageRaiseMax = 1.25
)

// Contract review
const (
	ReviewIntervalDays   = 7
	ReviewWindowDays     = 30
	ReviewMinMatches     = 3
	KickWindowDays       = 60
	KickKDThreshold      = 0.55
	KickChance           = 0.35
	BenchKDThreshold     = 0.8
	BenchChance          = 0.25
	FormWindowMatches    = 5
	FormGoodWinRate      = 0.6
	FormBadWinRate       = 0.3
	FormGoodMultiplier   = 0.5
	FormBadMultiplier    = 1.5
	BenchXPTolerance     = 5
	ExtensionWindowDays  = 60
	ExtensionDeclineRoll = 0.15
	ExtensionKDGood      = 1.05
	ExtensionKDOk        = 0.85
)

// ExtensionChance is keyed by team form good/bad and player K/D good/ok.
var ExtensionChance = map[bool]map[bool]float64{
	true:  {true: 0.85, false: 0.6},
	false: {true: 0.65, false: 0.35},
}

// Scouting
const (
	ScoutRecentMatches   = 20
	ScoutRecentWeight    = 0.8
	ScoutLifetimeWeight  = 0.2
	ScoutKDFloor         = 0.6
	ScoutKDCeiling       = 1.4
	ScoutKDWeight        = 0.6
	ScoutStandingWeight  = 0.25
	ScoutFormWeight      = 0.15
	ScoutBaseChance      = 0.3
	ScoutPeakSeasons     = 2
	ScoutPremierPoolFrac = 3 // bottom third of the top division by elo
	ScoutExpiringDays    = 90
	ScoutFreeAgentBoost  = 2.0
	ScoutExpiringBoost   = 1.5
	ScoutListedBoost     = 1.5
	ScoutStarterDamp     = 0.7
)

// ScoutTierWeights weight the candidate divisions once they pass the
// thresholds below.
const (
	ScoutLateralWeight = 3.0
	ScoutUpWeight      = 2.0 // divided by the size of the jump
	ScoutDownWeight    = 2.0
)

// ScoutUpThresholds gates jumps of 1, 2 and 3 divisions by signal.
var ScoutUpThresholds = []float64{0.6, 0.8, 0.93}

// ScoutDownThresholds gates drops of 1 and 2 divisions: the signal must be
// below the value.
var ScoutDownThresholds = []float64{0.45, 0.25}

// CrossFederationChance by prestige index; rarer the higher the division.
var CrossFederationChance = []float64{0.01, 0.02, 0.04, 0.08, 0.12}
