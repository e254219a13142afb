package ports

import (
	"context"

	"github.com/kubescape/vulnintel/core/domain"
)

// FeedProvider is the port implemented by adapters to be used in DashboardService to fetch vulnerabilities
type FeedProvider interface {
	FetchPage(ctx context.Context, key domain.PageKey) (domain.FeedPage, error)
	GetCVE(ctx context.Context, cveID string) (domain.Vulnerability, error)
}
