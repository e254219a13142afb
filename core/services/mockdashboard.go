package services

import (
	"context"
	"time"

	"github.com/kubescape/vulnintel/core/domain"
	"github.com/kubescape/vulnintel/core/ports"
)

type MockDashboardService struct {
	happy bool
}

var _ ports.DashboardService = (*MockDashboardService)(nil)

func NewMockDashboardService(happy bool) *MockDashboardService {
	return &MockDashboardService{happy: happy}
}

func (m MockDashboardService) Dashboard(context.Context) domain.Dashboard {
	d := Aggregate(nil, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), domain.ScoreRule{Threshold: domain.DefaultHighRiskThreshold})
	d.Loader = domain.LoaderStatus{State: domain.StateAllLoaded, TotalCount: 0}
	return d
}

func (m MockDashboardService) GetCVE(_ context.Context, cveID string) (domain.Vulnerability, error) {
	if m.happy {
		return mockVulnerability(cveID), nil
	}
	return domain.Vulnerability{}, domain.ErrMockError
}

func (m MockDashboardService) Load(context.Context, domain.LoadCommand) error {
	if m.happy {
		return nil
	}
	return domain.ErrMockError
}

func (m MockDashboardService) LoadMore(context.Context) error {
	if m.happy {
		return nil
	}
	return domain.ErrMockError
}

func (m MockDashboardService) Ready(context.Context) bool {
	return m.happy
}

func (m MockDashboardService) Refresh(context.Context) error {
	if m.happy {
		return nil
	}
	return domain.ErrMockError
}

func (m MockDashboardService) Vulnerabilities(context.Context, domain.VulnerabilityFilter) []domain.Vulnerability {
	if !m.happy {
		return []domain.Vulnerability{}
	}
	return []domain.Vulnerability{mockVulnerability("CVE-2025-0001")}
}

func mockVulnerability(cveID string) domain.Vulnerability {
	published := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	return domain.Vulnerability{
		CVEID:                cveID,
		Title:                "Mock vulnerability",
		Severity:             domain.SeverityCritical,
		CVSSScore:            domain.Float64(9.8),
		PublishedDate:        published,
		LastUpdatedAt:        published,
		TaranisCollectedDate: published,
		Status:               domain.StatusOpen,
		Vendor:               domain.UnknownValue,
		Product:              domain.UnknownValue,
		Family:               domain.UnknownValue,
		Source:               domain.UnknownValue,
		Tags:                 []string{},
		RiskScore:            9.8,
	}
}
