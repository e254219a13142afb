package ports

import (
	"context"

	"github.com/kubescape/vulnintel/core/domain"
)

// DashboardService is the port implemented by the business component DashboardService
type DashboardService interface {
	Dashboard(ctx context.Context) domain.Dashboard
	GetCVE(ctx context.Context, cveID string) (domain.Vulnerability, error)
	Load(ctx context.Context, cmd domain.LoadCommand) error
	LoadMore(ctx context.Context) error
	Ready(ctx context.Context) bool
	Refresh(ctx context.Context) error
	Vulnerabilities(ctx context.Context, filter domain.VulnerabilityFilter) []domain.Vulnerability
}
