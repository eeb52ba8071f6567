package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONMap is a Postgres JSONB column holding the free-form context payload
// that triggered a notification (productId, currentStock, confidence, ...).
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("unsupported type for JSONMap")
	}
	return json.Unmarshal(b, m)
}

// Notification priorities, ordered. Keep the numeric ranks in sync with
// PriorityRank below.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// PriorityRank maps a priority to its sort rank. Unknown values rank lowest.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

type Notification struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind           string     `gorm:"size:50;not null" json:"kind"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Message        string     `gorm:"type:text" json:"message"`
	Priority       string     `gorm:"size:20;not null;default:'medium'" json:"priority"`
	UrgencyScore   int        `gorm:"default:0" json:"urgency_score"`
	ActionRequired bool       `gorm:"default:false" json:"action_required"`
	Icon           string     `gorm:"size:50" json:"icon"`
	Color          string     `gorm:"size:20" json:"color"`
	Context        JSONMap    `gorm:"type:jsonb" json:"context"`
	DedupKey       string     `gorm:"size:255;index" json:"-"`
	IsRead         bool       `gorm:"default:false" json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Delivery frequency modes for NotificationPreference.
const (
	FrequencyImmediate    = "immediate"
	FrequencyHourlyDigest = "hourly"
	FrequencyDailyDigest  = "daily"
)

// NotificationPreference holds one row per user. Rows are created with
// defaults on first access and reset to defaults instead of deleted.
type NotificationPreference struct {
	UserID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	EmailEnabled    bool      `gorm:"default:false" json:"email_enabled"`
	PushEnabled     bool      `gorm:"default:true" json:"push_enabled"`
	DesktopEnabled  bool      `gorm:"default:false" json:"desktop_enabled"`
	Categories      JSONMap   `gorm:"type:jsonb" json:"categories"`
	Frequency       string    `gorm:"size:20;default:'immediate'" json:"frequency"`
	QuietHoursStart string    `gorm:"size:5" json:"quiet_hours_start"`
	QuietHoursEnd   string    `gorm:"size:5" json:"quiet_hours_end"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CategoryEnabled reports whether the user opted in to a category family.
// Absent entries default to enabled.
func (p *NotificationPreference) CategoryEnabled(category string) bool {
	if p.Categories == nil {
		return true
	}
	v, ok := p.Categories[category]
	if !ok {
		return true
	}
	enabled, ok := v.(bool)
	if !ok {
		return true
	}
	return enabled
}
