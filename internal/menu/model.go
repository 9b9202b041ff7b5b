package menu

import (
	"encoding/json"
	"fmt"
)

// Meal names a slot within a day plan.
type Meal string

// The three meals of a day plan, in serving order.
const (
	Breakfast Meal = "breakfast"
	Lunch     Meal = "lunch"
	Dinner    Meal = "dinner"
)

// Meals lists the meals in serving order. Aggregation iterates in this order
// so derived views are deterministic.
var Meals = [3]Meal{Breakfast, Lunch, Dinner}

// NumDays is the fixed length of a weekly menu: Monday (0) through Sunday (6).
const NumDays = 7

// DayNames maps a day index to its display name.
var DayNames = [NumDays]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// ValidMeal reports whether m is one of the three known meal names.
func ValidMeal(m Meal) bool {
	return m == Breakfast || m == Lunch || m == Dinner
}

// RecipeIDs is an ordered sequence of scheduled recipe ids. An id may appear
// more than once; each occurrence counts independently in aggregation.
//
// Historically a slot held a single id as a bare string. The array-of-ids
// shape is authoritative; scalars are migrated to one-element arrays on read
// and never written back.
type RecipeIDs []string

// UnmarshalJSON accepts an array of ids, a legacy bare string, or null.
func (ids *RecipeIDs) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		if arr == nil {
			arr = []string{}
		}
		*ids = arr
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*ids = []string{}
		} else {
			*ids = []string{single}
		}
		return nil
	}

	return fmt.Errorf("recipe ids must be an array of strings or a string")
}

// MarshalJSON emits an empty array instead of null for unset slots.
func (ids RecipeIDs) MarshalJSON() ([]byte, error) {
	if ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(ids))
}

// DayPlan maps the three meals of one day to their scheduled recipe ids.
type DayPlan struct {
	Breakfast RecipeIDs `json:"breakfast"`
	Lunch     RecipeIDs `json:"lunch"`
	Dinner    RecipeIDs `json:"dinner"`
}

// Slot returns the recipe ids scheduled for the given meal.
func (d *DayPlan) Slot(m Meal) RecipeIDs {
	switch m {
	case Breakfast:
		return d.Breakfast
	case Lunch:
		return d.Lunch
	case Dinner:
		return d.Dinner
	}
	return nil
}

// SetSlot replaces the recipe ids scheduled for the given meal.
func (d *DayPlan) SetSlot(m Meal, ids []string) {
	if ids == nil {
		ids = []string{}
	}
	switch m {
	case Breakfast:
		d.Breakfast = ids
	case Lunch:
		d.Lunch = ids
	case Dinner:
		d.Dinner = ids
	}
}

func (d *DayPlan) repair() {
	if d.Breakfast == nil {
		d.Breakfast = []string{}
	}
	if d.Lunch == nil {
		d.Lunch = []string{}
	}
	if d.Dinner == nil {
		d.Dinner = []string{}
	}
}

// WeeklyMenu is the shared seven-day meal plan of one team, indexed
// 0 (Monday) through 6 (Sunday). Exactly one instance exists per invite code.
type WeeklyMenu [NumDays]DayPlan

// Default returns an empty weekly menu with every slot initialized.
func Default() WeeklyMenu {
	var m WeeklyMenu
	m.Repair()
	return m
}

// Repair normalizes the menu in place: every nil slot becomes an empty
// sequence. Malformed stored shapes are repaired here rather than propagated.
func (m *WeeklyMenu) Repair() {
	for i := range m {
		m[i].repair()
	}
}

// UnmarshalJSON decodes a stored menu document, tolerating short or
// over-long day arrays and defaulting any missing day or meal.
func (m *WeeklyMenu) UnmarshalJSON(data []byte) error {
	var days []DayPlan
	if err := json.Unmarshal(data, &days); err != nil {
		return fmt.Errorf("weekly menu must be an array of day plans: %w", err)
	}

	var out WeeklyMenu
	for i := 0; i < NumDays && i < len(days); i++ {
		out[i] = days[i]
	}
	out.Repair()
	*m = out
	return nil
}
