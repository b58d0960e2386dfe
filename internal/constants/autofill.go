package constants

import "esports-sim/internal/domain"

// Autofill is the seeding rule set for every tier, built from the division
// ladder: the middle of each table stays, the top of the division below is
// promoted and the bottom of the division above is relegated. Divisions fall
// back to prestige-based backfill when last season has no standings.
var Autofill = buildAutofill()

func buildAutofill() []domain.AutofillItem {
	var items []domain.AutofillItem
	lastSeason := domain.IntPtr(-1)
	top := len(PrestigeOrder) - 1

	for i := range PrestigeOrder {
		stayStart, stayEnd := 1, DivisionSize
		if i < top {
			stayStart = DivisionPromotions + 1
		}
		if i > 0 {
			stayEnd = DivisionSize - DivisionPromotions
		}

		entries := []domain.AutofillEntry{
			{Action: domain.AutofillInclude, From: DivisionSlug(i), Season: lastSeason, Start: stayStart, End: domain.IntPtr(stayEnd)},
		}
		if i > 0 {
			entries = append(entries, domain.AutofillEntry{
				Action: domain.AutofillInclude, From: DivisionSlug(i - 1), Season: lastSeason,
				Start: 1, End: domain.IntPtr(DivisionPromotions),
			})
		}
		if i < top {
			entries = append(entries, domain.AutofillEntry{
				Action: domain.AutofillInclude, From: DivisionSlug(i + 1), Season: lastSeason,
				Start: -DivisionPromotions,
			})
		}
		entries = append(entries, domain.AutofillEntry{
			Action: domain.AutofillFallback, Prestige: i, Start: 1,
		})

		items = append(items,
			domain.AutofillItem{TierSlug: DivisionSlug(i), On: domain.OnSeasonStart, Entries: entries},
			// playoff brackets exist from season start but only learn their
			// teams once the regular season table is final
			domain.AutofillItem{TierSlug: PlayoffSlug(i), On: domain.OnSeasonStart},
			domain.AutofillItem{TierSlug: PlayoffSlug(i), On: domain.OnCompetitionStart, Entries: []domain.AutofillEntry{
				{Action: domain.AutofillInclude, From: DivisionSlug(i), Season: domain.IntPtr(0), Start: 1, End: domain.IntPtr(PlayoffSize)},
			}},
		)
	}

	items = append(items, domain.AutofillItem{
		TierSlug: TierCup,
		On:       domain.OnSeasonStart,
		Entries: []domain.AutofillEntry{
			{Action: domain.AutofillFallback, Prestige: top, FederationSlug: FederationWorld, Start: 1, End: domain.IntPtr(CupSize / 2)},
			{Action: domain.AutofillFallback, Prestige: top - 1, FederationSlug: FederationWorld, Start: 1, End: domain.IntPtr(CupSize / 2)},
		},
	})

	return items
}

// AutofillFor returns the rule sets for tierSlug that fire on trigger.
func AutofillFor(tierSlug string, trigger domain.SeedingTrigger) []domain.AutofillItem {
	var out []domain.AutofillItem
	for _, item := range Autofill {
		if item.TierSlug == tierSlug && item.On == trigger {
			out = append(out, item)
		}
	}
	return out
}
