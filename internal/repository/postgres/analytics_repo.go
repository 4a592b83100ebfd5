package postgres

import (
	"context"
	"errors"
	"fmt"

	"iisa-recruitment-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type analyticsRepo struct {
	db *pgxpool.Pool
}

func NewAnalyticsRepository(db *pgxpool.Pool) domain.AnalyticsRepository {
	return &analyticsRepo{db: db}
}

func (r *analyticsRepo) IncrementVisits(ctx context.Context) error {
	return r.increment(ctx, "total_visits")
}

func (r *analyticsRepo) IncrementRegistrations(ctx context.Context) error {
	return r.increment(ctx, "total_registrations")
}

// increment bumps one counter of the single site_stats row, creating it on first use.
func (r *analyticsRepo) increment(ctx context.Context, column string) error {
	query := fmt.Sprintf(`
		INSERT INTO site_stats (id, %[1]s) VALUES (1, 1)
		ON CONFLICT (id) DO UPDATE SET %[1]s = site_stats.%[1]s + 1`, column)
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("increment %s: %w", column, err)
	}
	return nil
}

func (r *analyticsRepo) GetSiteStats(ctx context.Context) (*domain.SiteStats, error) {
	var s domain.SiteStats
	err := r.db.QueryRow(ctx, `SELECT total_visits, total_registrations FROM site_stats WHERE id = 1`).
		Scan(&s.TotalVisits, &s.TotalRegistrations)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.SiteStats{}, nil
		}
		return nil, err
	}
	return &s, nil
}
