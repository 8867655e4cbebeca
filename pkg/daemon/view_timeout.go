package daemon

import (
	"time"

	dynamic "github.com/goliatone/go-dynamic"
)

// ViewTimeout resolves the idle timeout through a dynamic view property on
// every check. Values may be a time.Duration, a duration string, or a
// number of milliseconds; anything else falls back to fallback.
func ViewTimeout(view dynamic.View, property string, fallback time.Duration) TimeoutSupplier {
	return func() time.Duration {
		if view == nil || !view.HasProperty(property) {
			return fallback
		}
		value, err := view.Property(property)
		if err != nil {
			return fallback
		}
		if timeout, ok := coerceDuration(value); ok {
			return timeout
		}
		return fallback
	}
}

func coerceDuration(value any) (time.Duration, bool) {
	switch v := value.(type) {
	case time.Duration:
		return v, true
	case string:
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return 0, false
		}
		return timeout, true
	case int:
		return time.Duration(v) * time.Millisecond, true
	case int32:
		return time.Duration(v) * time.Millisecond, true
	case int64:
		return time.Duration(v) * time.Millisecond, true
	case uint:
		return time.Duration(v) * time.Millisecond, true
	case float64:
		return time.Duration(v * float64(time.Millisecond)), true
	default:
		return 0, false
	}
}
