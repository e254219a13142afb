package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/akyoto/cache"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/kubescape/vulnintel/core/domain"
	"github.com/kubescape/vulnintel/core/ports"
	"go.opentelemetry.io/otel"
)

// TTLCache implements PageCache with expiring in-memory entries, one instance is owned by one DashboardService
type TTLCache struct {
	pages *cache.Cache
	cves  *cache.Cache
	ttl   time.Duration
}

var _ ports.PageCache = (*TTLCache)(nil)

// NewTTLCache initializes the TTLCache, entries expire after ttl
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{
		pages: cache.New(ttl),
		cves:  cache.New(ttl),
		ttl:   ttl,
	}
}

// GetPage returns a cached page if it has not expired
func (c *TTLCache) GetPage(ctx context.Context, key domain.PageKey) (domain.FeedPage, bool) {
	_, span := otel.Tracer("").Start(ctx, "TTLCache.GetPage")
	defer span.End()

	value, ok := c.pages.Get(key)
	if !ok {
		return domain.FeedPage{}, false
	}
	page, ok := value.(domain.FeedPage)
	return page, ok
}

// StorePage caches a page for the configured ttl
func (c *TTLCache) StorePage(ctx context.Context, key domain.PageKey, page domain.FeedPage) {
	_, span := otel.Tracer("").Start(ctx, "TTLCache.StorePage")
	defer span.End()

	c.pages.Set(key, page, c.ttl)
}

// GetCVE returns cached CVE details, ids are case insensitive
func (c *TTLCache) GetCVE(ctx context.Context, cveID string) (domain.Vulnerability, bool) {
	_, span := otel.Tracer("").Start(ctx, "TTLCache.GetCVE")
	defer span.End()

	value, ok := c.cves.Get(strings.ToUpper(cveID))
	if !ok {
		return domain.Vulnerability{}, false
	}
	cve, ok := value.(domain.Vulnerability)
	return cve, ok
}

// StoreCVE caches CVE details for the configured ttl
func (c *TTLCache) StoreCVE(ctx context.Context, cve domain.Vulnerability) {
	_, span := otel.Tracer("").Start(ctx, "TTLCache.StoreCVE")
	defer span.End()

	if cve.CVEID == "" {
		return
	}
	c.cves.Set(strings.ToUpper(cve.CVEID), cve, c.ttl)
}

// Invalidate drops every cached page and CVE
func (c *TTLCache) Invalidate(ctx context.Context) {
	_, span := otel.Tracer("").Start(ctx, "TTLCache.Invalidate")
	defer span.End()

	dropped := 0
	for _, store := range []*cache.Cache{c.pages, c.cves} {
		store.Range(func(key, _ interface{}) bool {
			store.Delete(key)
			dropped++
			return true
		})
	}
	logger.L().Debug("cache invalidated", helpers.Int("entries", dropped))
}

// Close stops the expiry goroutines
func (c *TTLCache) Close() {
	c.pages.Close()
	c.cves.Close()
}

// NoCache implements PageCache without storing anything, used when caching is disabled
type NoCache struct{}

var _ ports.PageCache = (*NoCache)(nil)

func NewNoCache() *NoCache {
	return &NoCache{}
}

func (NoCache) GetPage(context.Context, domain.PageKey) (domain.FeedPage, bool) {
	return domain.FeedPage{}, false
}

func (NoCache) StorePage(context.Context, domain.PageKey, domain.FeedPage) {}

func (NoCache) GetCVE(context.Context, string) (domain.Vulnerability, bool) {
	return domain.Vulnerability{}, false
}

func (NoCache) StoreCVE(context.Context, domain.Vulnerability) {}

func (NoCache) Invalidate(context.Context) {}
