package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/internal/modules/notification/catalog"
	notifRepo "anoa.com/apotekpos/internal/modules/notification/repository"
	"anoa.com/apotekpos/pkg/apperror"
	"github.com/google/uuid"
)

// fakeNotificationRepo is an in-memory NotificationRepository for pipeline
// tests. Error fields force the corresponding call to fail.
type fakeNotificationRepo struct {
	notifications []model.Notification
	preferences   map[uuid.UUID]*model.NotificationPreference
	summaryRows   []notifRepo.SummaryRow

	createErr    error
	getRecentErr error
	prefsErr     error

	created       []*model.Notification
	deletedBefore *time.Time

	// clock stamps ReadAt, mirroring the repository's database-side
	// COALESCE(read_at, now) semantics.
	clock func() time.Time
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		preferences: map[uuid.UUID]*model.NotificationPreference{},
		clock:       time.Now,
	}
}

func (f *fakeNotificationRepo) Create(n *model.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	f.created = append(f.created, n)
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) GetByUserID(userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) GetRecent(userID uuid.UUID, since time.Time) ([]model.Notification, error) {
	if f.getRecentErr != nil {
		return nil, f.getRecentErr
	}
	var out []model.Notification
	for _, n := range f.notifications {
		if n.UserID == userID && !n.CreatedAt.Before(since) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkAsRead(id uuid.UUID) error {
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			f.notifications[i].IsRead = true
			if f.notifications[i].ReadAt == nil {
				at := f.clock()
				f.notifications[i].ReadAt = &at
			}
		}
	}
	return nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(userID uuid.UUID) error {
	for i := range f.notifications {
		if f.notifications[i].UserID == userID && !f.notifications[i].IsRead {
			f.notifications[i].IsRead = true
			if f.notifications[i].ReadAt == nil {
				at := f.clock()
				f.notifications[i].ReadAt = &at
			}
		}
	}
	return nil
}
func (f *fakeNotificationRepo) CountUnread(uuid.UUID) (int64, error) {
	return int64(len(f.notifications)), nil
}
func (f *fakeNotificationRepo) Delete(id, userID uuid.UUID) error { return nil }

func (f *fakeNotificationRepo) DeleteOlderThan(cutoff time.Time) (int64, error) {
	f.deletedBefore = &cutoff
	return 3, nil
}

func (f *fakeNotificationRepo) SummaryRows(uuid.UUID) ([]notifRepo.SummaryRow, error) {
	return f.summaryRows, nil
}

func (f *fakeNotificationRepo) GetPreferences(userID uuid.UUID) (*model.NotificationPreference, error) {
	if f.prefsErr != nil {
		return nil, f.prefsErr
	}
	return f.preferences[userID], nil
}

func (f *fakeNotificationRepo) SavePreferences(pref *model.NotificationPreference) error {
	if f.prefsErr != nil {
		return f.prefsErr
	}
	f.preferences[pref.UserID] = pref
	return nil
}

func newTestService(repo *fakeNotificationRepo, now time.Time) *notificationService {
	return &notificationService{
		repo: repo,
		cfg:  DefaultConfig(),
		now:  func() time.Time { return now },
	}
}

func lowStockPayload() model.JSONMap {
	return model.JSONMap{
		"productId":     "prod-1",
		"productName":   "Paracetamol 500mg",
		"currentStock":  8,
		"reorderLevel":  10,
		"criticalLevel": 5,
	}
}

func TestGeneratePersistsAndReportsChannels(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeNotificationRepo()
	svc := newTestService(repo, now)
	userID := uuid.New()

	result, err := svc.Generate(context.Background(), catalog.KindLowStock, userID, lowStockPayload())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !result.Persisted {
		t.Fatal("result.Persisted = false, want true")
	}
	if len(repo.created) != 1 {
		t.Fatalf("repo received %d creates, want 1", len(repo.created))
	}
	if result.Notification.UrgencyScore != 40 {
		t.Errorf("urgency = %d, want 40 for medium priority", result.Notification.UrgencyScore)
	}

	// No Redis in tests: the live channel degrades, nothing errors.
	if len(result.Channels) != 2 {
		t.Fatalf("got %d channel results, want 2", len(result.Channels))
	}
	live := result.Channels[0]
	if live.Channel != ChannelLive || live.Delivered || live.Reason != "realtime unavailable" {
		t.Errorf("live channel = %+v, want undelivered with realtime unavailable", live)
	}
}

func TestGenerateSuppressesDuplicateInsideCooldown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeNotificationRepo()
	svc := newTestService(repo, now)
	userID := uuid.New()

	repo.notifications = append(repo.notifications, model.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      string(catalog.KindLowStock),
		DedupKey:  "low_stock:prod-1",
		CreatedAt: now.Add(-2 * time.Minute),
	})

	result, err := svc.Generate(context.Background(), catalog.KindLowStock, userID, lowStockPayload())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.Persisted {
		t.Error("result.Persisted = true, want suppression")
	}
	if result.Reason != ReasonDeduplicated {
		t.Errorf("reason = %q, want %q", result.Reason, ReasonDeduplicated)
	}
	if len(repo.created) != 0 {
		t.Errorf("repo received %d creates, want 0", len(repo.created))
	}
}

func TestGenerateAdmitsAfterCooldownAndWhenFirstIsRead(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	tests := []struct {
		name     string
		existing model.Notification
	}{
		{
			name: "cooldown elapsed",
			existing: model.Notification{
				DedupKey:  "low_stock:prod-1",
				CreatedAt: now.Add(-6 * time.Minute),
			},
		},
		{
			name: "duplicate already read",
			existing: model.Notification{
				DedupKey:  "low_stock:prod-1",
				CreatedAt: now.Add(-1 * time.Minute),
				IsRead:    true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeNotificationRepo()
			tt.existing.ID = uuid.New()
			tt.existing.UserID = userID
			repo.notifications = append(repo.notifications, tt.existing)

			svc := newTestService(repo, now)
			result, err := svc.Generate(context.Background(), catalog.KindLowStock, userID, lowStockPayload())
			if err != nil {
				t.Fatalf("Generate returned error: %v", err)
			}
			if !result.Persisted {
				t.Errorf("result.Persisted = false, want admission (%s)", tt.name)
			}
		})
	}
}

func TestGenerateHistoryReadFailureAdmits(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.getRecentErr = errors.New("connection reset")
	svc := newTestService(repo, time.Now())

	result, err := svc.Generate(context.Background(), catalog.KindLowStock, uuid.New(), lowStockPayload())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !result.Persisted {
		t.Error("history read failure should admit the candidate, not drop it")
	}
}

func TestGeneratePersistFailure(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.createErr = errors.New("disk full")
	svc := newTestService(repo, time.Now())

	_, err := svc.Generate(context.Background(), catalog.KindLowStock, uuid.New(), lowStockPayload())
	if err == nil {
		t.Fatal("expected error when persistence fails")
	}
	if !errors.Is(err, apperror.ErrPersistence) {
		t.Errorf("error = %v, want it to wrap ErrPersistence", err)
	}
}

func TestGenerateDailyReportIsPushOnly(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo, time.Now())

	result, err := svc.Generate(context.Background(), catalog.KindDailyReport, uuid.New(), model.JSONMap{
		"transactionCount": 42,
		"revenue":          1500000.0,
		"date":             "2025-06-01",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.Persisted {
		t.Error("result.Persisted = true, want push-only delivery")
	}
	if len(repo.created) != 0 {
		t.Errorf("repository received %d rows, want none for a non-persistent kind", len(repo.created))
	}
	if result.Notification == nil {
		t.Fatal("result.Notification = nil, want the rendered report")
	}
	if len(result.Channels) == 0 {
		t.Error("no channel results, want fan-out to still run")
	}
}

func TestGenerateUnknownKind(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo, time.Now())

	_, err := svc.Generate(context.Background(), catalog.Kind("bogus"), uuid.New(), model.JSONMap{})
	if !errors.Is(err, apperror.ErrUnknownKind) {
		t.Errorf("error = %v, want ErrUnknownKind", err)
	}
	if len(repo.created) != 0 {
		t.Error("unknown kind must not persist anything")
	}
}

func TestFanOutQuietHours(t *testing.T) {
	// 23:00, inside a 22:00-06:00 overnight quiet window.
	now := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	repo := newFakeNotificationRepo()
	svc := newTestService(repo, now)
	userID := uuid.New()

	repo.preferences[userID] = &model.NotificationPreference{
		UserID:          userID,
		PushEnabled:     true,
		DesktopEnabled:  true,
		QuietHoursStart: "22:00",
		QuietHoursEnd:   "06:00",
	}

	result, err := svc.Generate(context.Background(), catalog.KindLowStock, userID, lowStockPayload())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !result.Persisted {
		t.Fatal("quiet hours must not block persistence")
	}
	for _, ch := range result.Channels {
		if ch.Delivered || ch.Reason != "quiet hours" {
			t.Errorf("channel %s = %+v, want skipped with quiet hours", ch.Channel, ch)
		}
	}

	// Critical alerts punch through the quiet window; with no Redis the
	// live channel then fails on availability, not on quiet hours.
	result, err = svc.Generate(context.Background(), catalog.KindCriticalStock, userID, model.JSONMap{
		"productId":    "prod-2",
		"productName":  "Insulin",
		"currentStock": 1,
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.Channels[0].Reason == "quiet hours" {
		t.Error("critical notification was blocked by quiet hours")
	}
}

func TestFanOutPreferenceGates(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		prefs      *model.NotificationPreference
		wantReason string
	}{
		{
			name:       "push disabled",
			prefs:      &model.NotificationPreference{PushEnabled: false},
			wantReason: "push disabled",
		},
		{
			name: "stock category opted out",
			prefs: &model.NotificationPreference{
				PushEnabled: true,
				Categories:  model.JSONMap{"stock": false},
			},
			wantReason: "category disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeNotificationRepo()
			svc := newTestService(repo, now)
			userID := uuid.New()
			tt.prefs.UserID = userID
			repo.preferences[userID] = tt.prefs

			result, err := svc.Generate(context.Background(), catalog.KindLowStock, userID, lowStockPayload())
			if err != nil {
				t.Fatalf("Generate returned error: %v", err)
			}
			if !result.Persisted {
				t.Fatal("preference gates must not block persistence")
			}
			if result.Channels[0].Reason != tt.wantReason {
				t.Errorf("live reason = %q, want %q", result.Channels[0].Reason, tt.wantReason)
			}
		})
	}
}

func TestReduceSummary(t *testing.T) {
	rows := []notifRepo.SummaryRow{
		{Priority: model.PriorityCritical, ActionRequired: true, Kind: string(catalog.KindCriticalStock), Count: 2},
		{Priority: model.PriorityHigh, ActionRequired: true, Kind: string(catalog.KindMLDemandSpike), Count: 1},
		{Priority: model.PriorityMedium, Kind: string(catalog.KindLowStock), Count: 4},
	}

	summary := ReduceSummary(rows)
	if summary.TotalActive != 7 {
		t.Errorf("TotalActive = %d, want 7", summary.TotalActive)
	}
	if summary.ByPriority[model.PriorityCritical] != 2 {
		t.Errorf("critical count = %d, want 2", summary.ByPriority[model.PriorityCritical])
	}
	if summary.ActionRequiredCount != 3 {
		t.Errorf("ActionRequiredCount = %d, want 3", summary.ActionRequiredCount)
	}
	if summary.MLGeneratedCount != 1 {
		t.Errorf("MLGeneratedCount = %d, want 1", summary.MLGeneratedCount)
	}
}

func TestReduceSummaryEmpty(t *testing.T) {
	summary := ReduceSummary(nil)
	if summary.TotalActive != 0 || summary.ActionRequiredCount != 0 || summary.MLGeneratedCount != 0 {
		t.Errorf("empty rows should reduce to zero counts, got %+v", summary)
	}
	// Every priority bucket is present even when empty so the dashboard
	// renders all four rows.
	for _, priority := range []string{model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical} {
		if _, ok := summary.ByPriority[priority]; !ok {
			t.Errorf("ByPriority missing bucket %q", priority)
		}
	}
}

func TestGetPreferencesCreatesDefaults(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo, time.Now())
	userID := uuid.New()

	prefs, err := svc.GetPreferences(userID)
	if err != nil {
		t.Fatalf("GetPreferences returned error: %v", err)
	}
	if !prefs.PushEnabled {
		t.Error("default PushEnabled = false, want true")
	}
	if prefs.Frequency != model.FrequencyImmediate {
		t.Errorf("default frequency = %q, want immediate", prefs.Frequency)
	}
	if repo.preferences[userID] == nil {
		t.Error("defaults were not persisted on first access")
	}
}

func TestUpdatePreferencesPartial(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo, time.Now())
	userID := uuid.New()

	push := false
	start, end := "22:00", "06:00"
	prefs, err := svc.UpdatePreferences(userID, PreferenceUpdate{
		PushEnabled:     &push,
		Categories:      map[string]bool{"ml": false},
		QuietHoursStart: &start,
		QuietHoursEnd:   &end,
	})
	if err != nil {
		t.Fatalf("UpdatePreferences returned error: %v", err)
	}

	if prefs.PushEnabled {
		t.Error("PushEnabled was not updated")
	}
	if prefs.CategoryEnabled("ml") {
		t.Error("ml category was not disabled")
	}
	if !prefs.CategoryEnabled("stock") {
		t.Error("untouched category should stay enabled")
	}
	if prefs.QuietHoursStart != "22:00" || prefs.QuietHoursEnd != "06:00" {
		t.Errorf("quiet hours = %q-%q, want 22:00-06:00", prefs.QuietHoursStart, prefs.QuietHoursEnd)
	}
	// Fields left nil keep their defaults.
	if prefs.Frequency != model.FrequencyImmediate {
		t.Errorf("frequency = %q, want untouched immediate", prefs.Frequency)
	}
}

func TestMarkAsReadSetsReadAtOnce(t *testing.T) {
	first := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeNotificationRepo()
	repo.clock = func() time.Time { return first }
	svc := newTestService(repo, first)

	n := &model.Notification{UserID: uuid.New(), Kind: string(catalog.KindLowStock)}
	if err := repo.Create(n); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.MarkAsRead(n.ID); err != nil {
		t.Fatalf("MarkAsRead returned error: %v", err)
	}
	got := repo.notifications[0]
	if !got.IsRead {
		t.Fatal("notification not marked read")
	}
	if got.ReadAt == nil || !got.ReadAt.Equal(first) {
		t.Fatalf("ReadAt = %v, want %v", got.ReadAt, first)
	}

	// A repeated mark-read an hour later must not move the timestamp.
	repo.clock = func() time.Time { return first.Add(time.Hour) }
	if err := svc.MarkAsRead(n.ID); err != nil {
		t.Fatalf("repeat MarkAsRead returned error: %v", err)
	}
	if got := repo.notifications[0]; got.ReadAt == nil || !got.ReadAt.Equal(first) {
		t.Errorf("ReadAt = %v after repeat mark, want original %v", got.ReadAt, first)
	}
}

func TestMarkAllAsReadKeepsEarlierReadAt(t *testing.T) {
	first := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	later := first.Add(2 * time.Hour)
	userID := uuid.New()
	repo := newFakeNotificationRepo()
	repo.clock = func() time.Time { return first }
	svc := newTestService(repo, first)

	seen := &model.Notification{UserID: userID, Kind: string(catalog.KindLowStock)}
	fresh := &model.Notification{UserID: userID, Kind: string(catalog.KindExpiryWarning)}
	for _, n := range []*model.Notification{seen, fresh} {
		if err := repo.Create(n); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}
	if err := svc.MarkAsRead(seen.ID); err != nil {
		t.Fatalf("MarkAsRead returned error: %v", err)
	}

	repo.clock = func() time.Time { return later }
	if err := svc.MarkAllAsRead(userID); err != nil {
		t.Fatalf("MarkAllAsRead returned error: %v", err)
	}

	for _, n := range repo.notifications {
		switch n.ID {
		case seen.ID:
			if n.ReadAt == nil || !n.ReadAt.Equal(first) {
				t.Errorf("already-read ReadAt = %v, want original %v", n.ReadAt, first)
			}
		case fresh.ID:
			if !n.IsRead || n.ReadAt == nil || !n.ReadAt.Equal(later) {
				t.Errorf("fresh notification ReadAt = %v, want %v", n.ReadAt, later)
			}
		}
	}
}

func TestCleanupExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeNotificationRepo()
	svc := newTestService(repo, now)

	deleted, err := svc.CleanupExpired(context.Background())
	if err != nil {
		t.Fatalf("CleanupExpired returned error: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}
	want := now.AddDate(0, 0, -30)
	if repo.deletedBefore == nil || !repo.deletedBefore.Equal(want) {
		t.Errorf("cutoff = %v, want %v", repo.deletedBefore, want)
	}
}
