package service

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/internal/modules/notification/catalog"
	"github.com/google/uuid"
)

// missingFieldPlaceholder is rendered for template fields absent from the
// context payload. Rendering never fails the pipeline.
const missingFieldPlaceholder = "Unknown"

// subjectFields are tried in order when deriving the dedup subject from a
// context payload. Payloads without any of them fall back to a content hash.
var subjectFields = []string{"batchId", "productId", "saleId", "date"}

// BuildNotification constructs an unsaved notification from a kind and its
// context payload. Pure construction: no IDs from the store, no persistence.
func BuildNotification(kind catalog.Kind, userID uuid.UUID, payload model.JSONMap) (*model.Notification, error) {
	rule, err := catalog.Lookup(kind)
	if err != nil {
		return nil, err
	}

	priority := rule.BasePriority
	if kind == catalog.KindLowStock && belowCriticalLevel(payload) {
		// A stock level at or under the critical sub-threshold raises
		// low_stock above its base priority.
		priority = model.PriorityHigh
	}

	return &model.Notification{
		UserID:   userID,
		Kind:     string(kind),
		Title:    renderTemplate(rule.TitleTemplate, payload),
		Message:  renderTemplate(rule.MessageTemplate, payload),
		Priority: priority,
		Icon:     rule.Icon,
		Color:    rule.Color,
		Context:  payload,
		DedupKey: dedupKey(kind, payload),
	}, nil
}

// renderTemplate substitutes {field} placeholders with payload values.
// Missing fields render as missingFieldPlaceholder.
func renderTemplate(template string, payload model.JSONMap) string {
	var b strings.Builder
	rest := template
	for {
		open := strings.Index(rest, "{")
		if open == -1 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[open:], "}")
		if end == -1 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])
		field := rest[open+1 : open+end]
		if v, ok := payload[field]; ok {
			b.WriteString(formatValue(v))
		} else {
			b.WriteString(missingFieldPlaceholder)
		}
		rest = rest[open+end+1:]
	}
	return b.String()
}

func formatValue(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return missingFieldPlaceholder
	case string:
		return n
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		// JSON numbers decode to float64; print integers without decimals.
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprintf("%v", n)
	}
}

// dedupKey derives the near-duplicate detection key: kind plus a stable
// subject identifier, falling back to a hash of the whole payload when no
// subject field is present.
func dedupKey(kind catalog.Kind, payload model.JSONMap) string {
	for _, field := range subjectFields {
		if v, ok := payload[field]; ok {
			return string(kind) + ":" + formatValue(v)
		}
	}
	return string(kind) + ":" + hashPayload(payload)
}

func hashPayload(payload model.JSONMap) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s;", k, formatValue(payload[k]))
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func belowCriticalLevel(payload model.JSONMap) bool {
	current, okCurrent := numberField(payload, "currentStock")
	critical, okCritical := numberField(payload, "criticalLevel")
	return okCurrent && okCritical && current <= critical
}

func numberField(payload model.JSONMap, field string) (float64, bool) {
	v, ok := payload[field]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
