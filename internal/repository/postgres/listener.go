package postgres

import (
	"context"
	"fmt"
	"time"

	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// ChangeChannel is raised by the candidates trigger on every write.
const ChangeChannel = "candidates_changed"

const (
	minReconnectDelay = time.Second
	maxReconnectDelay = 30 * time.Second
)

type candidateListener struct {
	db *pgxpool.Pool
}

// NewCandidateListener delivers LISTEN/NOTIFY change events for the candidates table.
func NewCandidateListener(db *pgxpool.Pool) domain.CandidateWatcher {
	return &candidateListener{db: db}
}

// Watch holds one pooled connection in LISTEN mode and calls onChange per
// notification. Lost connections are re-established with backoff; a change is
// reported after every reconnect since notifications may have been missed.
func (l *candidateListener) Watch(ctx context.Context, onChange func()) error {
	backoff := reconnectBackoff()
	for {
		err := l.listen(ctx, onChange, func() { backoff = reconnectBackoff() })
		if ctx.Err() != nil {
			return nil
		}
		delay, _ := backoff.Next()
		logger.Log.Warn("Candidate listener disconnected", "error", err, "retry_in", delay.String())

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		onChange()
	}
}

// reconnectBackoff doubles from minReconnectDelay and never gives up.
func reconnectBackoff() retry.Backoff {
	return retry.WithCappedDuration(maxReconnectDelay, retry.NewExponential(minReconnectDelay))
}

func (l *candidateListener) listen(ctx context.Context, onChange func(), connected func()) error {
	conn, err := l.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ChangeChannel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	connected()
	logger.Log.Info("Listening for candidate changes", "channel", ChangeChannel)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait: %w", err)
		}
		logger.Log.Debug("Candidate change", "operation", n.Payload)
		onChange()
	}
}
