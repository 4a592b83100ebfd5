package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"iisa-recruitment-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	reg := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	want := reg.UnixMilli()

	t.Run("Should normalize every accepted shape to the same epoch millis", func(t *testing.T) {
		inputs := map[string]any{
			"native":        reg,
			"native ptr":    &reg,
			"epoch int64":   want,
			"epoch float":   float64(want),
			"json number":   json.Number("1741599000000"),
			"iso string":    "2025-03-10T09:30:00Z",
			"backend":       domain.BackendTimestamp{Seconds: reg.Unix()},
			"backend map":   map[string]any{"seconds": float64(reg.Unix()), "nanoseconds": float64(0)},
			"admin-sdk map": map[string]any{"_seconds": float64(reg.Unix()), "_nanoseconds": float64(0)},
		}
		for name, in := range inputs {
			ms, ok := domain.ParseTimestamp(in).EpochMillis()
			require.True(t, ok, name)
			assert.Equal(t, want, ms, name)
		}
	})

	t.Run("Should keep the representation tag", func(t *testing.T) {
		assert.Equal(t, domain.TimestampNative, domain.ParseTimestamp(reg).Kind())
		assert.Equal(t, domain.TimestampEpochMillis, domain.ParseTimestamp(want).Kind())
		assert.Equal(t, domain.TimestampBackend, domain.ParseTimestamp(domain.BackendTimestamp{Seconds: 1}).Kind())
	})

	t.Run("Should include backend nanoseconds at millisecond precision", func(t *testing.T) {
		ms, ok := domain.ParseTimestamp(domain.BackendTimestamp{Seconds: 10, Nanoseconds: 250_000_000}).EpochMillis()
		require.True(t, ok)
		assert.Equal(t, int64(10_250), ms)
	})

	t.Run("Should treat unparseable input as absent", func(t *testing.T) {
		var nilTime *time.Time
		inputs := []any{nil, "", "yesterday", time.Time{}, nilTime, true, map[string]any{"nanoseconds": 5},
			domain.BackendTimestamp{Seconds: 1, Nanoseconds: -1}}
		for _, in := range inputs {
			assert.Equal(t, domain.TimestampAbsent, domain.ParseTimestamp(in).Kind(), "%#v", in)
		}
	})
}

func TestEditWindow(t *testing.T) {
	w := domain.EditWindow{Days: domain.EditWindowDays, Location: time.UTC}
	reg := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	ts := domain.NativeTimestamp(reg)

	t.Run("Should put the deadline three calendar days after registration", func(t *testing.T) {
		deadline, ok := w.Deadline(ts)
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, 5, 4, 12, 0, 0, 0, time.UTC), deadline)
	})

	t.Run("Should be editable at registration and exactly at the deadline", func(t *testing.T) {
		assert.True(t, w.IsEditable(ts, reg))
		assert.True(t, w.IsEditable(ts, reg.AddDate(0, 0, 3)))
	})

	t.Run("Should close one millisecond after the deadline", func(t *testing.T) {
		assert.False(t, w.IsEditable(ts, reg.AddDate(0, 0, 3).Add(time.Millisecond)))
	})

	t.Run("Should fail open when no timestamp is available", func(t *testing.T) {
		assert.True(t, w.IsEditable(domain.Timestamp{}, reg.AddDate(10, 0, 0)))
		assert.True(t, w.IsEditable(domain.ParseTimestamp("garbage"), time.Now()))
		_, ok := w.Deadline(domain.Timestamp{})
		assert.False(t, ok)
	})

	t.Run("Should use calendar days across a DST change", func(t *testing.T) {
		jerusalem, err := time.LoadLocation("Asia/Jerusalem")
		if err != nil {
			t.Skip("tzdata not available")
		}
		local := domain.EditWindow{Days: 3, Location: jerusalem}
		// Israel moved to summer time on 2025-03-28.
		start := time.Date(2025, 3, 27, 10, 0, 0, 0, jerusalem)
		deadline, ok := local.Deadline(domain.NativeTimestamp(start))
		require.True(t, ok)
		assert.Equal(t, 10, deadline.Hour())
		assert.Equal(t, 71*time.Hour, deadline.Sub(start))
	})

	t.Run("Should compare mixed representations consistently", func(t *testing.T) {
		assert.True(t, w.IsEditable(domain.EpochMillisTimestamp(reg.UnixMilli()), reg.AddDate(0, 0, 3)))
		assert.False(t, w.IsEditable(domain.BackendTimestampOf(domain.BackendTimestamp{Seconds: reg.Unix()}),
			reg.AddDate(0, 0, 3).Add(time.Millisecond)))
	})

	t.Run("Should read the candidate registration date", func(t *testing.T) {
		assert.Equal(t, domain.TimestampAbsent, domain.RegistrationTimestamp(domain.Candidate{}).Kind())
		assert.Equal(t, domain.TimestampNative, domain.RegistrationTimestamp(domain.Candidate{RegistrationDate: &reg}).Kind())
	})
}

func TestPackageLevelEditWindow(t *testing.T) {
	reg := time.Now().Add(-time.Hour)
	ts := domain.NativeTimestamp(reg)
	deadline, ok := domain.EditDeadline(ts)
	require.True(t, ok)
	assert.True(t, domain.IsEditable(ts, reg))
	assert.True(t, domain.IsEditable(ts, deadline))
	assert.False(t, domain.IsEditable(ts, deadline.Add(time.Millisecond)))
}
