package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/pkg/apperror"
	"iisa-recruitment-backend/pkg/export"
	"iisa-recruitment-backend/pkg/logger"
)

const topCities = 7

type dashboardUsecase struct {
	candidates domain.CandidateRepository
	analytics  domain.AnalyticsRepository
	geocoder   domain.Geocoder
	location   *time.Location
	clock      domain.Clock
}

func NewDashboardUsecase(
	candidates domain.CandidateRepository,
	analytics domain.AnalyticsRepository,
	geocoder domain.Geocoder,
	location *time.Location,
	clock domain.Clock,
) domain.DashboardUsecase {
	if location == nil {
		location = time.UTC
	}
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &dashboardUsecase{
		candidates: candidates,
		analytics:  analytics,
		geocoder:   geocoder,
		location:   location,
		clock:      clock,
	}
}

func (u *dashboardUsecase) TrackVisit(ctx context.Context) error {
	if err := u.analytics.IncrementVisits(ctx); err != nil {
		return apperror.Internal(fmt.Errorf("failed to count visit: %w", err))
	}
	return nil
}

func (u *dashboardUsecase) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	all, err := u.candidates.ListAll(ctx)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list candidates: %w", err))
	}

	site, err := u.analytics.GetSiteStats(ctx)
	if err != nil {
		logger.Log.Warn("Failed to read site stats", "error", err)
		site = nil
	}
	if site == nil {
		site = &domain.SiteStats{}
	}

	return &domain.DashboardStats{
		TotalCandidates:  len(all),
		AgeBreakdown:     AgeBreakdown(all),
		CityDistribution: CityDistribution(all, topCities),
		Conversion: []domain.ChartPoint{
			{Name: "Visits", Value: site.TotalVisits},
			{Name: "Registrations", Value: site.TotalRegistrations},
		},
	}, nil
}

// MapMarkers geocodes every distinct city; unresolved cities are dropped.
func (u *dashboardUsecase) MapMarkers(ctx context.Context) ([]domain.MapMarker, error) {
	all, err := u.candidates.ListAll(ctx)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list candidates: %w", err))
	}

	markers := []domain.MapMarker{}
	for _, point := range CityDistribution(all, 0) {
		pos, err := u.geocoder.Coordinates(ctx, point.Name)
		if err != nil {
			logger.Log.Warn("Geocoding failed", "city", point.Name, "error", err)
			continue
		}
		if pos == nil {
			continue
		}
		markers = append(markers, domain.MapMarker{City: point.Name, Count: int(point.Value), Position: *pos})
	}
	return markers, nil
}

func (u *dashboardUsecase) Geocode(ctx context.Context, address string) (*domain.LatLng, error) {
	if strings.TrimSpace(address) == "" {
		return nil, apperror.BadRequest("address is required")
	}
	pos, err := u.geocoder.Coordinates(ctx, address)
	if err != nil {
		return nil, apperror.BadGateway("Geocoding failed", err)
	}
	return pos, nil
}

func (u *dashboardUsecase) ExportCandidates(ctx context.Context) ([]byte, string, error) {
	all, err := u.candidates.ListAll(ctx)
	if err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to list candidates: %w", err))
	}
	data, filename, err := export.CandidatesXLSX(all, u.location, u.clock.Now())
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	return data, filename, nil
}

// AgeBreakdown buckets candidates into 18-25, 26-35, 36-45 and 46+.
func AgeBreakdown(candidates []domain.Candidate) []domain.ChartPoint {
	points := []domain.ChartPoint{
		{Name: "18-25"},
		{Name: "26-35"},
		{Name: "36-45"},
		{Name: "46+"},
	}
	for _, c := range candidates {
		switch {
		case c.Age <= 25:
			points[0].Value++
		case c.Age <= 35:
			points[1].Value++
		case c.Age <= 45:
			points[2].Value++
		default:
			points[3].Value++
		}
	}
	return points
}

// CityDistribution counts trimmed, non-empty cities, highest first. Ties keep
// first-seen order. limit <= 0 returns every city.
func CityDistribution(candidates []domain.Candidate, limit int) []domain.ChartPoint {
	counts := map[string]int64{}
	var order []string
	for _, c := range candidates {
		city := strings.TrimSpace(c.City)
		if city == "" {
			continue
		}
		if _, seen := counts[city]; !seen {
			order = append(order, city)
		}
		counts[city]++
	}

	points := make([]domain.ChartPoint, 0, len(order))
	for _, city := range order {
		points = append(points, domain.ChartPoint{Name: city, Value: counts[city]})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Value > points[j].Value
	})

	if limit > 0 && len(points) > limit {
		points = points[:limit]
	}
	return points
}
