package ports

import (
	"context"

	"github.com/kubescape/vulnintel/core/domain"
)

// PageCache is the port implemented by adapters to be used in DashboardService to keep recently fetched pages
type PageCache interface {
	GetPage(ctx context.Context, key domain.PageKey) (domain.FeedPage, bool)
	StorePage(ctx context.Context, key domain.PageKey, page domain.FeedPage)
	GetCVE(ctx context.Context, cveID string) (domain.Vulnerability, bool)
	StoreCVE(ctx context.Context, cve domain.Vulnerability)
	Invalidate(ctx context.Context)
}
