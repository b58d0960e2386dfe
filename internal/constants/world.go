package constants

const (
	FederationWorld = "world"
	LeagueCircuit   = "circuit"
	LeagueCup       = "cup"
	TierCup         = "cup:global"
)

type FederationDef struct {
	Slug      string
	Name      string
	Countries []string
}

var Federations = []FederationDef{
	{Slug: "americas", Name: "Americas", Countries: []string{"US", "CA", "BR", "AR", "MX", "CL"}},
	{Slug: "europe", Name: "Europe", Countries: []string{"DE", "FR", "SE", "DK", "PL", "UA", "FI", "ES"}},
	{Slug: "asia", Name: "Asia-Pacific", Countries: []string{"CN", "KR", "JP", "AU", "MN", "ID"}},
	{Slug: FederationWorld, Name: "World"},
}

// PrestigeOrder ranks the domestic divisions from lowest to highest. A team's
// tier field is an index into this slice.
var PrestigeOrder = []string{"open", "intermediate", "main", "advanced", "premier"}

const (
	DivisionSize       = 10
	DivisionPromotions = 2
	PlayoffSize        = 4
	PlayoffOffsetDays  = 3
	CupSize            = 16
)

type TierDef struct {
	Slug              string
	Name              string
	Size              int
	GroupSize         *int
	TriggerTierSlug   string
	TriggerOffsetDays int
	Prestige          *int
}

type LeagueDef struct {
	Slug            string
	Name            string
	StartOffsetDays int
	Federations     []string
	Tiers           []TierDef
}

// DivisionSlug returns the domestic league tier slug for a prestige index.
func DivisionSlug(prestige int) string {
	return LeagueCircuit + ":" + PrestigeOrder[prestige]
}

func PlayoffSlug(prestige int) string {
	return DivisionSlug(prestige) + ":playoffs"
}

// Leagues is the static catalogue seeded into every new save.
var Leagues = buildLeagues()

func buildLeagues() []LeagueDef {
	single := 1
	circuit := LeagueDef{
		Slug:            LeagueCircuit,
		Name:            "Pro Circuit",
		StartOffsetDays: 7,
		Federations:     []string{"americas", "europe", "asia"},
	}
	for i, name := range PrestigeOrder {
		prestige := i
		circuit.Tiers = append(circuit.Tiers,
			TierDef{
				Slug:      DivisionSlug(i),
				Name:      "Pro Circuit " + name,
				Size:      DivisionSize,
				GroupSize: &single,
				Prestige:  &prestige,
			},
			TierDef{
				Slug:              PlayoffSlug(i),
				Name:              "Pro Circuit " + name + " playoffs",
				Size:              PlayoffSize,
				TriggerTierSlug:   DivisionSlug(i),
				TriggerOffsetDays: PlayoffOffsetDays,
			},
		)
	}

	cup := LeagueDef{
		Slug:            LeagueCup,
		Name:            "Global Cup",
		StartOffsetDays: 21,
		Federations:     []string{FederationWorld},
		Tiers: []TierDef{
			{Slug: TierCup, Name: "Global Cup", Size: CupSize},
		},
	}

	return []LeagueDef{circuit, cup}
}

// Maps used when MAP_POOL is not configured.
var DefaultMapPool = []string{"de_ancient", "de_anubis", "de_dust2", "de_inferno", "de_mirage", "de_nuke", "de_train"}
