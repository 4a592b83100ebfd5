package domain

import "context"

// SiteStats holds the landing page counters.
type SiteStats struct {
	TotalVisits        int64 `json:"totalVisits"`
	TotalRegistrations int64 `json:"totalRegistrations"`
}

// ChartPoint is one bar/slice of a dashboard chart.
type ChartPoint struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// DashboardStats contains the dashboard chart series.
type DashboardStats struct {
	TotalCandidates  int          `json:"totalCandidates"`
	AgeBreakdown     []ChartPoint `json:"ageBreakdown"`
	CityDistribution []ChartPoint `json:"cityDistribution"`
	Conversion       []ChartPoint `json:"conversion"`
}

// LatLng is a geographic coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MapMarker places a city with registered candidates on the map.
type MapMarker struct {
	City     string `json:"city"`
	Count    int    `json:"count"`
	Position LatLng `json:"position"`
}

type AnalyticsRepository interface {
	IncrementVisits(ctx context.Context) error
	IncrementRegistrations(ctx context.Context) error
	GetSiteStats(ctx context.Context) (*SiteStats, error)
}

// Geocoder resolves a free-text address. A nil result means "no coordinates".
type Geocoder interface {
	Coordinates(ctx context.Context, address string) (*LatLng, error)
}

type DashboardUsecase interface {
	TrackVisit(ctx context.Context) error
	Stats(ctx context.Context) (*DashboardStats, error)
	MapMarkers(ctx context.Context) ([]MapMarker, error)
	Geocode(ctx context.Context, address string) (*LatLng, error)
	ExportCandidates(ctx context.Context) ([]byte, string, error)
}
