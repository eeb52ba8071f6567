package service

import (
	"testing"

	"anoa.com/apotekpos/internal/model"
)

func TestScore(t *testing.T) {
	const threshold = 1000

	tests := []struct {
		name               string
		priority           string
		context            model.JSONMap
		wantUrgency        int
		wantActionRequired bool
	}{
		{
			name:        "low priority base",
			priority:    model.PriorityLow,
			wantUrgency: 10,
		},
		{
			name:        "medium priority base",
			priority:    model.PriorityMedium,
			wantUrgency: 40,
		},
		{
			name:               "high priority base reaches action threshold",
			priority:           model.PriorityHigh,
			wantUrgency:        70,
			wantActionRequired: true,
		},
		{
			name:               "critical is always action required",
			priority:           model.PriorityCritical,
			wantUrgency:        90,
			wantActionRequired: true,
		},
		{
			name:        "confidence bonus",
			priority:    model.PriorityMedium,
			context:     model.JSONMap{"confidence": 0.8},
			wantUrgency: 48,
		},
		{
			name:        "profit bonus at threshold",
			priority:    model.PriorityMedium,
			context:     model.JSONMap{"additionalProfit": float64(threshold)},
			wantUrgency: 50,
		},
		{
			name:        "profit below threshold earns nothing",
			priority:    model.PriorityMedium,
			context:     model.JSONMap{"additionalProfit": float64(threshold - 1)},
			wantUrgency: 40,
		},
		{
			name:               "critical with both bonuses clamps at 100",
			priority:           model.PriorityCritical,
			context:            model.JSONMap{"confidence": 0.95, "additionalProfit": float64(2000)},
			wantUrgency:        100,
			wantActionRequired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &model.Notification{Priority: tt.priority, Context: tt.context}
			urgency, actionRequired := Score(n, threshold)
			if urgency != tt.wantUrgency {
				t.Errorf("urgency = %d, want %d", urgency, tt.wantUrgency)
			}
			if actionRequired != tt.wantActionRequired {
				t.Errorf("actionRequired = %v, want %v", actionRequired, tt.wantActionRequired)
			}
		})
	}
}

func TestScoreMonotonicInPriority(t *testing.T) {
	order := []string{model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical}
	prev := -1
	for _, priority := range order {
		urgency, _ := Score(&model.Notification{Priority: priority}, 1000)
		if urgency <= prev {
			t.Errorf("urgency for %s = %d, not above previous %d", priority, urgency, prev)
		}
		prev = urgency
	}
}
