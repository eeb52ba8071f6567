package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/internal/modules/notification/catalog"
	notifRepo "anoa.com/apotekpos/internal/modules/notification/repository"
	"anoa.com/apotekpos/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel names reported in DispatchResult.
const (
	ChannelLive    = "live"
	ChannelDesktop = "desktop"
)

// Suppression reasons. Deduplication is a normal outcome, not an error.
const (
	ReasonDeduplicated = "deduplicated"
)

// ChannelResult reports one channel's fate for a dispatched notification.
type ChannelResult struct {
	Channel   string `json:"channel"`
	Delivered bool   `json:"delivered"`
	Reason    string `json:"reason,omitempty"`
}

// DispatchResult is the outcome of one Generate call.
type DispatchResult struct {
	Persisted    bool                `json:"persisted"`
	Reason       string              `json:"reason,omitempty"`
	Notification *model.Notification `json:"notification,omitempty"`
	Channels     []ChannelResult     `json:"channels,omitempty"`
}

// Summary is the dashboard aggregation over a user's unread notifications.
type Summary struct {
	TotalActive         int64            `json:"total_active"`
	ByPriority          map[string]int64 `json:"by_priority"`
	ActionRequiredCount int64            `json:"action_required_count"`
	MLGeneratedCount    int64            `json:"ml_generated_count"`
}

// Config carries the tunables of the pipeline.
type Config struct {
	CooldownWindow        time.Duration
	RetentionDays         int
	ProfitImpactThreshold float64
}

// DefaultConfig mirrors the production defaults.
func DefaultConfig() Config {
	return Config{
		CooldownWindow:        5 * time.Minute,
		RetentionDays:         30,
		ProfitImpactThreshold: 1000,
	}
}

type NotificationService interface {
	// Generate runs the full pipeline for one candidate: build, cooldown
	// filter, score, persist, fan out. A deduplicated candidate returns a
	// result with Persisted=false and no error. Kinds the catalog marks
	// non-persistent skip the database write and go straight to fan-out,
	// also reported as Persisted=false. A failed persist returns an error
	// wrapping apperror.ErrPersistence.
	Generate(ctx context.Context, kind catalog.Kind, userID uuid.UUID, payload model.JSONMap) (*DispatchResult, error)

	GetNotifications(userID uuid.UUID, limit, offset int) ([]model.Notification, error)
	MarkAsRead(id uuid.UUID) error
	MarkAllAsRead(userID uuid.UUID) error
	UnreadCount(userID uuid.UUID) (int64, error)
	Delete(id uuid.UUID, userID uuid.UUID) error

	GetDashboardSummary(userID uuid.UUID) (*Summary, error)
	GetPreferences(userID uuid.UUID) (*model.NotificationPreference, error)
	UpdatePreferences(userID uuid.UUID, update PreferenceUpdate) (*model.NotificationPreference, error)

	// CleanupExpired deletes notifications past the retention window.
	CleanupExpired(ctx context.Context) (int64, error)
}

// PreferenceUpdate is a partial preference change; nil fields stay untouched.
type PreferenceUpdate struct {
	EmailEnabled    *bool
	PushEnabled     *bool
	DesktopEnabled  *bool
	Categories      map[string]bool
	Frequency       *string
	QuietHoursStart *string
	QuietHoursEnd   *string
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	cfg         Config
	now         func() time.Time
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, cfg Config) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *notificationService) Generate(ctx context.Context, kind catalog.Kind, userID uuid.UUID, payload model.JSONMap) (*DispatchResult, error) {
	rule, err := catalog.Lookup(kind)
	if err != nil {
		return nil, err
	}

	candidate, err := BuildNotification(kind, userID, payload)
	if err != nil {
		return nil, err
	}

	now := s.now()

	// Cooldown filter over freshly read history. A read failure is logged
	// and the candidate admitted: suppression is best-effort, losing a
	// notification to a transient read error is worse than a duplicate.
	history, err := s.repo.GetRecent(userID, now.Add(-s.cfg.CooldownWindow))
	if err != nil {
		log.Printf("[notification] failed to read recent history for %s: %v", userID, err)
		history = nil
	}
	if !ShouldAdmit(candidate, history, s.cfg.CooldownWindow, now) {
		return &DispatchResult{Persisted: false, Reason: ReasonDeduplicated}, nil
	}

	// Redis lock narrows the window in which two concurrent triggers for the
	// same subject can both pass the history check (same SetNX pattern as
	// the POS rate limiter). Best-effort: a Redis error admits the candidate.
	if s.redisClient != nil {
		key := fmt.Sprintf("notif_dedup:%s:%s", userID, candidate.DedupKey)
		wasSet, err := s.redisClient.SetNX(ctx, key, "locked", s.cfg.CooldownWindow).Result()
		if err != nil {
			log.Printf("[notification] dedup lock error for %s: %v", candidate.DedupKey, err)
		} else if !wasSet {
			return &DispatchResult{Persisted: false, Reason: ReasonDeduplicated}, nil
		}
	}

	candidate.UrgencyScore, candidate.ActionRequired = Score(candidate, s.cfg.ProfitImpactThreshold)

	// Non-persistent kinds (the daily report) are push-only: they carry
	// no database row, so they never show up in the unread list or the
	// dashboard summary.
	if rule.Persistent {
		if err := s.repo.Create(candidate); err != nil {
			return nil, fmt.Errorf("%w: %v", apperror.ErrPersistence, err)
		}
	}

	prefs, err := s.loadPreferences(userID)
	if err != nil {
		// The notification is durable already; fan-out degrades to defaults.
		log.Printf("[notification] failed to load preferences for %s: %v", userID, err)
		prefs = defaultPreferences(userID)
	}

	result := &DispatchResult{
		Persisted:    rule.Persistent,
		Notification: candidate,
	}
	result.Channels = s.fanOut(ctx, candidate, prefs, now)

	return result, nil
}

// fanOut attempts delivery on each channel. Channel failures never roll back
// persistence; the notification stays visible on the next poll or login.
func (s *notificationService) fanOut(ctx context.Context, n *model.Notification, prefs *model.NotificationPreference, now time.Time) []ChannelResult {
	rule, err := catalog.Lookup(catalog.Kind(n.Kind))
	if err != nil {
		// Generate already validated the kind; keep the zero rule on the
		// off chance the catalog changed underneath us.
		rule = catalog.Rule{Category: catalog.CategorySystem}
	}

	quiet := n.Priority != model.PriorityCritical &&
		inQuietWindow(now, prefs.QuietHoursStart, prefs.QuietHoursEnd)

	var results []ChannelResult

	// Live in-app channel over Redis pub/sub; the websocket handler bridges
	// the subscription to connected clients.
	live := ChannelResult{Channel: ChannelLive}
	switch {
	case !prefs.PushEnabled:
		live.Reason = "push disabled"
	case !prefs.CategoryEnabled(rule.Category):
		live.Reason = "category disabled"
	case quiet:
		live.Reason = "quiet hours"
	case s.redisClient == nil:
		live.Reason = "realtime unavailable"
	default:
		channel := fmt.Sprintf("user_notifications:%s", n.UserID.String())
		payload, err := json.Marshal(n)
		if err == nil {
			err = s.redisClient.Publish(ctx, channel, payload).Err()
		}
		if err != nil {
			log.Printf("[notification] live publish failed for %s: %v", n.ID, err)
			live.Reason = "publish failed"
		} else {
			live.Delivered = true
		}
	}
	results = append(results, live)

	// Desktop notifications ride the same live event; the browser decides
	// whether it holds the platform permission. Skips are silent.
	desktop := ChannelResult{Channel: ChannelDesktop}
	switch {
	case !prefs.DesktopEnabled:
		desktop.Reason = "desktop disabled"
	case quiet:
		desktop.Reason = "quiet hours"
	case !live.Delivered:
		desktop.Reason = "no live delivery"
	default:
		desktop.Delivered = true
	}
	results = append(results, desktop)

	return results
}

func (s *notificationService) GetNotifications(userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	return s.repo.GetByUserID(userID, limit, offset)
}

func (s *notificationService) MarkAsRead(id uuid.UUID) error {
	return s.repo.MarkAsRead(id)
}

func (s *notificationService) MarkAllAsRead(userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(userID)
}

func (s *notificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(userID)
}

func (s *notificationService) Delete(id uuid.UUID, userID uuid.UUID) error {
	return s.repo.Delete(id, userID)
}

func (s *notificationService) GetDashboardSummary(userID uuid.UUID) (*Summary, error) {
	rows, err := s.repo.SummaryRows(userID)
	if err != nil {
		return nil, err
	}
	return ReduceSummary(rows), nil
}

// ReduceSummary folds grouped repository rows into the dashboard summary.
// An empty row set yields a zero-valued summary, never an error.
func ReduceSummary(rows []notifRepo.SummaryRow) *Summary {
	summary := &Summary{
		ByPriority: map[string]int64{
			model.PriorityLow:      0,
			model.PriorityMedium:   0,
			model.PriorityHigh:     0,
			model.PriorityCritical: 0,
		},
	}

	for _, row := range rows {
		summary.TotalActive += row.Count
		summary.ByPriority[row.Priority] += row.Count
		if row.ActionRequired {
			summary.ActionRequiredCount += row.Count
		}
		if rule, err := catalog.Lookup(catalog.Kind(row.Kind)); err == nil && rule.Category == catalog.CategoryML {
			summary.MLGeneratedCount += row.Count
		}
	}

	return summary
}

func (s *notificationService) GetPreferences(userID uuid.UUID) (*model.NotificationPreference, error) {
	return s.loadPreferences(userID)
}

// loadPreferences returns stored preferences, creating the default row on
// first access.
func (s *notificationService) loadPreferences(userID uuid.UUID) (*model.NotificationPreference, error) {
	prefs, err := s.repo.GetPreferences(userID)
	if err != nil {
		return nil, err
	}
	if prefs != nil {
		return prefs, nil
	}

	prefs = defaultPreferences(userID)
	if err := s.repo.SavePreferences(prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func defaultPreferences(userID uuid.UUID) *model.NotificationPreference {
	return &model.NotificationPreference{
		UserID:      userID,
		PushEnabled: true,
		Categories:  model.JSONMap{},
		Frequency:   model.FrequencyImmediate,
	}
}

func (s *notificationService) UpdatePreferences(userID uuid.UUID, update PreferenceUpdate) (*model.NotificationPreference, error) {
	prefs, err := s.loadPreferences(userID)
	if err != nil {
		return nil, err
	}

	if update.EmailEnabled != nil {
		prefs.EmailEnabled = *update.EmailEnabled
	}
	if update.PushEnabled != nil {
		prefs.PushEnabled = *update.PushEnabled
	}
	if update.DesktopEnabled != nil {
		prefs.DesktopEnabled = *update.DesktopEnabled
	}
	if update.Categories != nil {
		if prefs.Categories == nil {
			prefs.Categories = model.JSONMap{}
		}
		for category, enabled := range update.Categories {
			prefs.Categories[category] = enabled
		}
	}
	if update.Frequency != nil {
		prefs.Frequency = *update.Frequency
	}
	if update.QuietHoursStart != nil {
		prefs.QuietHoursStart = *update.QuietHoursStart
	}
	if update.QuietHoursEnd != nil {
		prefs.QuietHoursEnd = *update.QuietHoursEnd
	}

	if err := s.repo.SavePreferences(prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *notificationService) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -s.cfg.RetentionDays)
	return s.repo.DeleteOlderThan(cutoff)
}
