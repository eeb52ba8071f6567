package agent

import "context"

// Agent is one scheduled back-office job. Implementations:
//   - StockScanAgent: low/critical stock sweep
//   - ExpiryScanAgent: batch expiry sweep
//   - DailyReportAgent: end-of-day sales digest
//   - RetentionAgent: notification retention cleanup
type Agent interface {
	// GetName returns the agent's unique name (for logging and on-demand runs).
	GetName() string

	// GetSchedule returns the cron schedule string (e.g. "0 7 * * *").
	// An empty string registers the agent as on-demand only.
	GetSchedule() string

	// Execute runs the agent's task. The context carries cancellation and
	// deadline; one failing subject must not abort the whole run.
	Execute(ctx context.Context) error
}
