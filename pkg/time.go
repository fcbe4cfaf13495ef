package pkg

import (
	"strconv"
	"strings"
	"time"
)

var durationUnits = []struct {
	short string
	value time.Duration
}{
	{"d", 24 * time.Hour},
	{"h", time.Hour},
	{"m", time.Minute},
	{"s", time.Second},
}

// SmartDurationFormat renders a duration in the most readable unit:
// sub-second values get a single unit (ms, μs, ns), anything longer is
// built from at most two units ("1m30s", "2d4h").
func SmartDurationFormat(d time.Duration) string {
	if d == 0 {
		return "0"
	}
	if d < time.Second {
		switch {
		case d >= time.Millisecond:
			return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
		case d >= time.Microsecond:
			return strconv.FormatInt(d.Microseconds(), 10) + "μs"
		default:
			return strconv.FormatInt(d.Nanoseconds(), 10) + "ns"
		}
	}

	var b strings.Builder
	remaining := d
	parts := 0
	for _, u := range durationUnits {
		if remaining < u.value {
			continue
		}
		b.WriteString(strconv.FormatInt(int64(remaining/u.value), 10))
		b.WriteString(u.short)
		remaining %= u.value
		parts++
		if parts == 2 || remaining == 0 {
			break
		}
	}
	return b.String()
}
