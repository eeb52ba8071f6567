package catalog

import (
	"fmt"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/pkg/apperror"
)

// Kind is the closed set of notification categories the pipeline can emit.
// Adding a kind means adding a constant here and a rule in rules below;
// Lookup rejects anything else.
type Kind string

const (
	KindLowStock            Kind = "low_stock"
	KindCriticalStock       Kind = "critical_stock"
	KindExpiryWarning       Kind = "expiry_warning"
	KindExpiryCritical      Kind = "expiry_critical"
	KindSalesTarget         Kind = "sales_target"
	KindSystemAlert         Kind = "system_alert"
	KindReorderSuggestion   Kind = "reorder_suggestion"
	KindDailyReport         Kind = "daily_report"
	KindMLDemandSpike       Kind = "ml_demand_spike"
	KindMLPriceOptimization Kind = "ml_price_optimization"
)

// Category families used for per-user opt-in toggles.
const (
	CategoryStock  = "stock"
	CategoryExpiry = "expiry"
	CategorySales  = "sales"
	CategorySystem = "system"
	CategoryML     = "ml"
)

// Rule describes how one kind renders and which defaults it carries.
// Templates substitute {field} placeholders from the context payload.
type Rule struct {
	TitleTemplate   string
	MessageTemplate string
	Icon            string
	Color           string
	BasePriority    string
	Category        string
	// Persistent=false kinds are push-only: the dispatcher skips the
	// database write and delivers over the live channel alone.
	Persistent bool
}

var rules = map[Kind]Rule{
	KindLowStock: {
		TitleTemplate:   "Low Stock: {productName}",
		MessageTemplate: "Stock for {productName} is down to {currentStock} (reorder at {reorderLevel}).",
		Icon:            "package",
		Color:           "amber",
		BasePriority:    model.PriorityMedium,
		Category:        CategoryStock,
		Persistent:      true,
	},
	KindCriticalStock: {
		TitleTemplate:   "Critical Stock: {productName}",
		MessageTemplate: "Only {currentStock} left of {productName}. Immediate reorder required.",
		Icon:            "alert-triangle",
		Color:           "red",
		BasePriority:    model.PriorityCritical,
		Category:        CategoryStock,
		Persistent:      true,
	},
	KindExpiryWarning: {
		TitleTemplate:   "Expiring Soon: {productName}",
		MessageTemplate: "Batch {batchNumber} of {productName} expires in {daysUntilExpiry} days.",
		Icon:            "clock",
		Color:           "amber",
		BasePriority:    model.PriorityMedium,
		Category:        CategoryExpiry,
		Persistent:      true,
	},
	KindExpiryCritical: {
		TitleTemplate:   "Expiry Critical: {productName}",
		MessageTemplate: "Batch {batchNumber} of {productName} expires in {daysUntilExpiry} days. Pull from shelf and arrange return.",
		Icon:            "alert-octagon",
		Color:           "red",
		BasePriority:    model.PriorityHigh,
		Category:        CategoryExpiry,
		Persistent:      true,
	},
	KindSalesTarget: {
		TitleTemplate:   "Sales Target Update",
		MessageTemplate: "Today's revenue reached {revenue} ({percentOfTarget}% of target).",
		Icon:            "trending-up",
		Color:           "green",
		BasePriority:    model.PriorityLow,
		Category:        CategorySales,
		Persistent:      true,
	},
	KindSystemAlert: {
		TitleTemplate:   "System Alert",
		MessageTemplate: "{message}",
		Icon:            "bell",
		Color:           "red",
		BasePriority:    model.PriorityHigh,
		Category:        CategorySystem,
		Persistent:      true,
	},
	KindReorderSuggestion: {
		TitleTemplate:   "Reorder Suggestion: {productName}",
		MessageTemplate: "Suggested reorder of {suggestedQuantity} units of {productName} from {supplierName}.",
		Icon:            "shopping-cart",
		Color:           "blue",
		BasePriority:    model.PriorityMedium,
		Category:        CategoryStock,
		Persistent:      true,
	},
	KindDailyReport: {
		TitleTemplate:   "Daily Report",
		MessageTemplate: "{transactionCount} transactions, {revenue} revenue on {date}.",
		Icon:            "file-text",
		Color:           "blue",
		BasePriority:    model.PriorityLow,
		Category:        CategorySales,
		Persistent:      false,
	},
	KindMLDemandSpike: {
		TitleTemplate:   "Demand Spike Predicted: {productName}",
		MessageTemplate: "Forecast predicts {predictedIncrease}% demand increase for {productName} (confidence {confidence}).",
		Icon:            "activity",
		Color:           "purple",
		BasePriority:    model.PriorityHigh,
		Category:        CategoryML,
		Persistent:      true,
	},
	KindMLPriceOptimization: {
		TitleTemplate:   "Price Optimization: {productName}",
		MessageTemplate: "Repricing {productName} to {suggestedPrice} projects {additionalProfit} additional profit.",
		Icon:            "dollar-sign",
		Color:           "purple",
		BasePriority:    model.PriorityMedium,
		Category:        CategoryML,
		Persistent:      true,
	},
}

// Lookup returns the rule for kind. Unregistered kinds yield
// apperror.ErrUnknownKind; callers log and drop the single notification.
func Lookup(kind Kind) (Rule, error) {
	rule, ok := rules[kind]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", apperror.ErrUnknownKind, kind)
	}
	return rule, nil
}

// Kinds returns every registered kind. Used by preference endpoints and tests.
func Kinds() []Kind {
	out := make([]Kind, 0, len(rules))
	for k := range rules {
		out = append(out, k)
	}
	return out
}
