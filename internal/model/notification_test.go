package model

import "testing"

func TestCategoryEnabled(t *testing.T) {
	tests := []struct {
		name       string
		categories JSONMap
		category   string
		want       bool
	}{
		{"nil map defaults to enabled", nil, "stock", true},
		{"absent entry defaults to enabled", JSONMap{"ml": false}, "stock", true},
		{"explicit opt-out", JSONMap{"ml": false}, "ml", false},
		{"explicit opt-in", JSONMap{"sales": true}, "sales", true},
		{"non-bool value defaults to enabled", JSONMap{"stock": "yes"}, "stock", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &NotificationPreference{Categories: tt.categories}
			if got := p.CategoryEnabled(tt.category); got != tt.want {
				t.Errorf("CategoryEnabled(%q) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestPriorityRankOrdering(t *testing.T) {
	if !(PriorityRank(PriorityLow) < PriorityRank(PriorityMedium) &&
		PriorityRank(PriorityMedium) < PriorityRank(PriorityHigh) &&
		PriorityRank(PriorityHigh) < PriorityRank(PriorityCritical)) {
		t.Error("priority ranks are not strictly increasing")
	}
	if PriorityRank("bogus") != PriorityRank(PriorityLow) {
		t.Error("unknown priority should rank lowest")
	}
}
