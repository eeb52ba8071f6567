package service

import (
	"anoa.com/apotekpos/internal/model"
)

// Base urgency per priority. Must stay monotonic in priority order.
var baseUrgency = map[string]int{
	model.PriorityLow:      10,
	model.PriorityMedium:   40,
	model.PriorityHigh:     70,
	model.PriorityCritical: 90,
}

const actionRequiredUrgency = 60

// Score derives the urgency score (0-100) and the action-required flag from
// a notification's priority and context. Deterministic, no side effects.
//
// profitImpactThreshold is the monetary impact (context additionalProfit)
// above which a flat bonus applies.
func Score(n *model.Notification, profitImpactThreshold float64) (int, bool) {
	urgency := baseUrgency[n.Priority]

	if confidence, ok := numberField(n.Context, "confidence"); ok {
		urgency += int(confidence * 10)
	}
	if profit, ok := numberField(n.Context, "additionalProfit"); ok && profit >= profitImpactThreshold {
		urgency += 10
	}

	if urgency > 100 {
		urgency = 100
	}
	if urgency < 0 {
		urgency = 0
	}

	actionRequired := n.Priority == model.PriorityCritical ||
		(n.Priority == model.PriorityHigh && urgency >= actionRequiredUrgency)

	return urgency, actionRequired
}
