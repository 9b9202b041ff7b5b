package menu

import "github.com/dinnerd/dinnerd/internal/recipe"

// Catalog indexes recipes by id string for aggregation lookups.
type Catalog map[string]recipe.Recipe

// IndexCatalog builds a Catalog from a recipe list.
func IndexCatalog(recipes []recipe.Recipe) Catalog {
	idx := make(Catalog, len(recipes))
	for _, r := range recipes {
		idx[r.ID.String()] = r
	}
	return idx
}

// Summary describes one distinct scheduled recipe that resolved against the
// catalog: how often it appears this week and the calories it contributes.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Occurrences int    `json:"occurrences"`
	Calories    int    `json:"calories"` // occurrences x per-serving calories
}

// Stats is the full set of derived views over one weekly menu. It is computed
// by a pure fold over (menu, catalog); recomputing on the same inputs yields
// identical results.
type Stats struct {
	// Occurrences tallies every scheduled id, resolved or not, so display
	// counts never silently drop a dangling reference.
	Occurrences map[string]int

	TotalCalories int
	DailyCalories [NumDays]int

	// PeakDay is the first day index achieving the daily-calorie maximum.
	PeakDay int

	// UniqueIngredients contains each distinct resolved recipe's ingredients
	// once, in first-seen order, set-deduplicated.
	UniqueIngredients []string

	// ShoppingList repeats a recipe's ingredient list once per occurrence:
	// the multiset behind the purchasing checklist.
	ShoppingList []string

	// Summaries lists distinct resolved recipes in first-seen order.
	Summaries []Summary

	// UnknownIDs lists distinct scheduled ids missing from the catalog, in
	// first-seen order. They contribute nothing to calorie or ingredient sums.
	UnknownIDs []string
}

// Aggregate derives all statistics for a weekly menu against a catalog
// snapshot. Ids absent from the catalog are excluded from numeric aggregates
// but surfaced via Occurrences and UnknownIDs.
func Aggregate(m WeeklyMenu, catalog Catalog) Stats {
	stats := Stats{Occurrences: make(map[string]int)}

	var firstSeen []string
	for day := range m {
		for _, meal := range Meals {
			for _, id := range m[day].Slot(meal) {
				if id == "" {
					continue
				}
				if stats.Occurrences[id] == 0 {
					firstSeen = append(firstSeen, id)
				}
				stats.Occurrences[id]++

				r, ok := catalog[id]
				if !ok {
					continue
				}
				stats.DailyCalories[day] += r.Calories
				stats.ShoppingList = append(stats.ShoppingList, r.Ingredients...)
			}
		}
	}

	seenIngredients := make(map[string]struct{})
	for _, id := range firstSeen {
		r, ok := catalog[id]
		if !ok {
			stats.UnknownIDs = append(stats.UnknownIDs, id)
			continue
		}

		count := stats.Occurrences[id]
		stats.Summaries = append(stats.Summaries, Summary{
			ID:          id,
			Name:        r.Name,
			Occurrences: count,
			Calories:    count * r.Calories,
		})

		for _, ing := range r.Ingredients {
			if _, dup := seenIngredients[ing]; dup {
				continue
			}
			seenIngredients[ing] = struct{}{}
			stats.UniqueIngredients = append(stats.UniqueIngredients, ing)
		}
	}

	for day, cals := range stats.DailyCalories {
		stats.TotalCalories += cals
		if cals > stats.DailyCalories[stats.PeakDay] {
			stats.PeakDay = day
		}
	}

	return stats
}
