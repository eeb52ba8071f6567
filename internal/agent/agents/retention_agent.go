package agents

import (
	"context"
	"log"
)

type RetentionCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// RetentionAgent deletes notifications past the retention window,
// read or not.
type RetentionAgent struct {
	cleaner  RetentionCleaner
	schedule string
}

func NewRetentionAgent(cleaner RetentionCleaner, schedule string) *RetentionAgent {
	return &RetentionAgent{
		cleaner:  cleaner,
		schedule: schedule,
	}
}

func (a *RetentionAgent) GetName() string {
	return "retention-cleanup"
}

func (a *RetentionAgent) GetSchedule() string {
	return a.schedule
}

func (a *RetentionAgent) Execute(ctx context.Context) error {
	deleted, err := a.cleaner.CleanupExpired(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("🧹 [retention-cleanup] Deleted %d expired notifications", deleted)
	}
	return nil
}
