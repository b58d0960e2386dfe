package constants

import "time"

// World generation
var WorldStartDate = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

const (
	EloTierStep    = 75.0
	XPBase         = 30
	XPTierStep     = 12
	XPSpread       = 8
	UserPlayerXP   = 30
	UserPlayerName = "rookie"
)

var TeamPrefixes = []string{
	"Iron", "Crimson", "Silent", "Northern", "Neon", "Golden", "Rapid", "Shadow",
	"Savage", "Lucky", "Frozen", "Royal", "Wild", "Electric", "Black", "Solar",
}

var TeamSuffixes = []string{
	"Wolves", "Ravens", "Titans", "Vipers", "Knights", "Falcons", "Rhinos", "Sharks",
	"Foxes", "Legion", "Dragons", "Bulls", "Owls", "Squad", "Hornets", "Giants",
}

var PlayerHandles = []string{
	"ace", "blitz", "cobra", "dex", "echo", "flick", "ghost", "hawk", "ion", "jinx",
	"kilo", "lynx", "mako", "nova", "onyx", "pike", "quill", "rex", "sly", "tank",
	"ultra", "volt", "wisp", "xeno", "yeti", "zed",
}
