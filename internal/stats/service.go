// internal/stats/service.go
package stats

import (
	"context"

	"github.com/google/uuid"
)

// UsageStats summarizes system-wide utilization for the dashboard.
type UsageStats struct {
	TotalVenues          int     `json:"total_venues"`
	TotalMaterials       int     `json:"total_materials"`
	PendingApplications  int     `json:"pending_applications"`
	ApprovedApplications int     `json:"approved_applications"`
	TodayApplications    int     `json:"today_applications"`
	VenueUtilization     float64 `json:"venue_utilization"`
	MaterialUtilization  float64 `json:"material_utilization"`
	TotalMaterialStock   int     `json:"total_material_stock"`
	CommittedStock       int     `json:"committed_stock"`
}

// UserSummary breaks down one requester's applications by status.
type UserSummary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Cancelled int `json:"cancelled"`
}

// Service defines the interface for dashboard aggregation.
type Service interface {
	Usage(ctx context.Context) (*UsageStats, error)
	UserSummary(ctx context.Context, userID uuid.UUID) (*UserSummary, error)
}
