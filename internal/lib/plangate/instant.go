package plangate

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

// Timestamp метка времени в формате документного хранилища (секунды и наносекунды).
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos"`
}

// Time переводит метку в time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanos)).UTC()
}

var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ToInstant приводит значение срока действия плана к time.Time.
// Второе значение false означает, что срок не задан или не распознан.
func ToInstant(value any) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case sql.NullTime:
		if !v.Valid {
			return time.Time{}, false
		}
		return v.Time, !v.Time.IsZero()
	case Timestamp:
		if v.Seconds == 0 && v.Nanos == 0 {
			return time.Time{}, false
		}
		return v.Time(), true
	case *Timestamp:
		if v == nil {
			return time.Time{}, false
		}
		return ToInstant(*v)
	case map[string]any:
		return fromRawTimestamp(v)
	case string:
		return parseString(v)
	case int64:
		if v <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(v).UTC(), true
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return ToInstant(ms)
	default:
		return time.Time{}, false
	}
}

func parseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range stringLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// fromRawTimestamp разбирает метку, пришедшую как JSON-объект
// ({"seconds": ..., "nanoseconds": ...} или {"_seconds": ...}).
func fromRawTimestamp(m map[string]any) (time.Time, bool) {
	var ts Timestamp
	found := false
	for _, key := range []string{"seconds", "_seconds"} {
		if n, ok := number(m[key]); ok {
			ts.Seconds = n
			found = true
			break
		}
	}
	if !found {
		return time.Time{}, false
	}
	for _, key := range []string{"nanos", "nanoseconds", "_nanoseconds"} {
		if n, ok := number(m[key]); ok {
			ts.Nanos = int32(n)
			break
		}
	}
	return ToInstant(ts)
}

func number(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}
