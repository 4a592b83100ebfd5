package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// EditWindowDays is how long after registration an applicant may amend their record.
const EditWindowDays = 3

// TimestampKind tags which representation a Timestamp holds.
type TimestampKind uint8

const (
	TimestampAbsent TimestampKind = iota
	TimestampNative
	TimestampEpochMillis
	TimestampBackend
)

// BackendTimestamp is the seconds/nanoseconds wrapper used by document stores.
type BackendTimestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int32 `json:"nanoseconds"`
}

// Timestamp is a registration timestamp in any of the accepted shapes.
// The zero value is absent.
type Timestamp struct {
	kind    TimestampKind
	native  time.Time
	millis  int64
	backend BackendTimestamp
}

func NativeTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{kind: TimestampNative, native: t}
}

func EpochMillisTimestamp(ms int64) Timestamp {
	return Timestamp{kind: TimestampEpochMillis, millis: ms}
}

func BackendTimestampOf(b BackendTimestamp) Timestamp {
	if b.Nanoseconds < 0 || b.Nanoseconds >= 1e9 {
		return Timestamp{}
	}
	return Timestamp{kind: TimestampBackend, backend: b}
}

// RegistrationTimestamp wraps a candidate's optional registration date.
func RegistrationTimestamp(c Candidate) Timestamp {
	if c.RegistrationDate == nil {
		return Timestamp{}
	}
	return NativeTimestamp(*c.RegistrationDate)
}

func (t Timestamp) Kind() TimestampKind {
	return t.kind
}

// EpochMillis normalizes any representation to milliseconds since the Unix epoch.
func (t Timestamp) EpochMillis() (int64, bool) {
	switch t.kind {
	case TimestampNative:
		return t.native.UnixMilli(), true
	case TimestampEpochMillis:
		return t.millis, true
	case TimestampBackend:
		return t.backend.Seconds*1000 + int64(t.backend.Nanoseconds)/1e6, true
	}
	return 0, false
}

// ParseTimestamp accepts native times, epoch milliseconds, backend wrappers
// (struct or decoded JSON map) and ISO-8601 strings. Anything else is absent.
func ParseTimestamp(v any) Timestamp {
	switch x := v.(type) {
	case Timestamp:
		return x
	case time.Time:
		return NativeTimestamp(x)
	case *time.Time:
		if x == nil {
			return Timestamp{}
		}
		return NativeTimestamp(*x)
	case BackendTimestamp:
		return BackendTimestampOf(x)
	case *BackendTimestamp:
		if x == nil {
			return Timestamp{}
		}
		return BackendTimestampOf(*x)
	case int64:
		return EpochMillisTimestamp(x)
	case int:
		return EpochMillisTimestamp(int64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Timestamp{}
		}
		return EpochMillisTimestamp(int64(x))
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return EpochMillisTimestamp(n)
		}
		if f, err := x.Float64(); err == nil {
			return ParseTimestamp(f)
		}
	case string:
		if t, err := time.Parse(time.RFC3339Nano, x); err == nil {
			return NativeTimestamp(t)
		}
	case map[string]any:
		return parseBackendMap(x)
	}
	return Timestamp{}
}

// parseBackendMap reads {"seconds","nanoseconds"} or the "_seconds"/"_nanoseconds" admin-SDK form.
func parseBackendMap(m map[string]any) Timestamp {
	secs, ok := mapInt(m, "seconds", "_seconds")
	if !ok {
		return Timestamp{}
	}
	nanos, _ := mapInt(m, "nanoseconds", "_nanoseconds")
	if nanos > math.MaxInt32 {
		return Timestamp{}
	}
	return BackendTimestampOf(BackendTimestamp{Seconds: secs, Nanoseconds: int32(nanos)})
}

func mapInt(m map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case int64:
			return v, true
		case int:
			return int64(v), true
		case float64:
			if v == math.Trunc(v) {
				return int64(v), true
			}
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return n, true
			}
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// EditWindow is the policy deciding whether a record may still be mutated.
// The deadline is computed with calendar-day arithmetic in Location.
type EditWindow struct {
	Days     int
	Location *time.Location
}

func DefaultEditWindow() EditWindow {
	return EditWindow{Days: EditWindowDays, Location: time.Local}
}

// Deadline returns registration + Days calendar days; false when the timestamp is absent.
func (w EditWindow) Deadline(reg Timestamp) (time.Time, bool) {
	ms, ok := reg.EpochMillis()
	if !ok {
		return time.Time{}, false
	}
	loc := w.Location
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).AddDate(0, 0, w.Days), true
}

// IsEditable reports now <= deadline, inclusive of the boundary. A missing
// timestamp is editable so a first submission is never blocked.
func (w EditWindow) IsEditable(reg Timestamp, now time.Time) bool {
	deadline, ok := w.Deadline(reg)
	if !ok {
		return true
	}
	return now.UnixMilli() <= deadline.UnixMilli()
}

func EditDeadline(reg Timestamp) (time.Time, bool) {
	return DefaultEditWindow().Deadline(reg)
}

func IsEditable(reg Timestamp, now time.Time) bool {
	return DefaultEditWindow().IsEditable(reg, now)
}

// Clock abstracts time.Now() to allow deterministic testing.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
