package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "d***@iisa.org.il", MaskEmail("dana@iisa.org.il"))
	assert.Equal(t, "***@x.io", MaskEmail("d@x.io"))
	assert.Equal(t, "***", MaskEmail("no-at-sign"))
	assert.Equal(t, "***", MaskEmail("a"))
}

func TestAuditLogger(t *testing.T) {
	t.Run("Should write masked structured events", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		audit := NewAuditLogger(core, "iisa-api", "test")

		audit.Log(Event{
			Type:  EventLoginFailed,
			Email: "dana@iisa.org.il",
			Meta:  RequestMeta{IP: "10.0.0.1", RequestID: "req-1"},
		})

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Equal(t, "login_failed", entry.Message)

		fields := entry.ContextMap()
		assert.Equal(t, "d***@iisa.org.il", fields["subject_value"])
		assert.Equal(t, "10.0.0.1", fields["ip"])
		assert.Equal(t, "iisa-api", fields["service"])
	})

	t.Run("Should tolerate a nil logger", func(t *testing.T) {
		var audit *AuditLogger
		assert.NotPanics(t, func() { audit.Log(Event{Type: EventLoginSuccess}) })
		assert.NoError(t, audit.Sync())
	})
}

func TestLoginGuard(t *testing.T) {
	ctx := context.Background()
	meta := RequestMeta{IP: "10.0.0.1"}
	cfg := GuardConfig{MaxAttempts: 3, AttemptWindow: time.Minute, BlockDuration: 10 * time.Minute}

	newGuard := func(now *time.Time) (*LoginGuard, *observer.ObservedLogs) {
		core, logs := observer.New(zapcore.DebugLevel)
		g := NewLoginGuard(cfg, nil, NewAuditLogger(core, "iisa-api", "test"))
		g.store = newMemoryAttemptStore(func() time.Time { return *now })
		return g, logs
	}

	t.Run("Should block after the configured number of failures", func(t *testing.T) {
		now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
		g, logs := newGuard(&now)

		for i := 0; i < 2; i++ {
			blocked, err := g.RecordFailure(ctx, "ops@iisa.example", meta)
			require.NoError(t, err)
			assert.False(t, blocked)
		}
		blocked, err := g.RecordFailure(ctx, "OPS@iisa.example ", meta)
		require.NoError(t, err)
		assert.True(t, blocked)

		ttl, isBlocked, err := g.Blocked(ctx, "ops@iisa.example", meta)
		require.NoError(t, err)
		assert.True(t, isBlocked)
		assert.Equal(t, 10*time.Minute, ttl)
		assert.Equal(t, 1, logs.FilterMessage(string(EventBlockCreated)).Len())

		now = now.Add(11 * time.Minute)
		_, isBlocked, err = g.Blocked(ctx, "ops@iisa.example", meta)
		require.NoError(t, err)
		assert.False(t, isBlocked)
	})

	t.Run("Should reset the counter on success", func(t *testing.T) {
		now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
		g, _ := newGuard(&now)

		_, _ = g.RecordFailure(ctx, "ops@iisa.example", meta)
		_, _ = g.RecordFailure(ctx, "ops@iisa.example", meta)
		require.NoError(t, g.RecordSuccess(ctx, "ops@iisa.example", meta))

		blocked, err := g.RecordFailure(ctx, "ops@iisa.example", meta)
		require.NoError(t, err)
		assert.False(t, blocked)
	})

	t.Run("Should forget failures outside the window", func(t *testing.T) {
		now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
		g, _ := newGuard(&now)

		_, _ = g.RecordFailure(ctx, "ops@iisa.example", meta)
		_, _ = g.RecordFailure(ctx, "ops@iisa.example", meta)
		now = now.Add(2 * time.Minute)

		blocked, err := g.RecordFailure(ctx, "ops@iisa.example", meta)
		require.NoError(t, err)
		assert.False(t, blocked)
	})
}
