package domain

// AutofillEntry is one rule in a seeding rule set.
//
// For INCLUDE and seasoned FALLBACK entries From names the source tier and
// Season is an offset from the current season (0 = this season, -1 = last).
// FALLBACK entries without a Season select teams by Prestige directly.
type AutofillEntry struct {
	Action         AutofillAction
	From           string
	Season         *int
	Prestige       int
	FederationSlug string
	Start          int
	End            *int
}

// Width is the number of teams the entry is expected to contribute when the
// target tier has size teams.
func (e AutofillEntry) Width(size int) int {
	if e.Start < 0 {
		return -e.Start
	}
	end := size
	if e.End != nil {
		end = *e.End
	}
	w := end - max(0, e.Start-1)
	if w < 0 {
		return 0
	}
	return w
}

// AutofillItem is the rule set for one tier.
type AutofillItem struct {
	TierSlug string
	On       SeedingTrigger
	Entries  []AutofillEntry
}

// IntPtr is a small helper for optional rule fields.
func IntPtr(v int) *int { return &v }
