package services

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/DmitriyVTitov/size"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/kubescape/vulnintel/core/domain"
	"github.com/kubescape/vulnintel/core/ports"
	"go.opentelemetry.io/otel"
)

// DashboardService implements DashboardService from ports, this is the business component
// it accumulates feed pages in memory and rebuilds every aggregate after each page
type DashboardService struct {
	feed     ports.FeedProvider
	cache    ports.PageCache
	rule     domain.HighRiskRule
	pageSize int
	maxPages int
	now      func() time.Time

	mu         sync.RWMutex
	state      domain.LoaderState
	search     string
	page       int
	fetched    int
	totalCount int
	generation uint64
	loadedOnce bool
	lastErr    error
	vulns      []domain.Vulnerability
	seen       mapset.Set[string]
	dashboard  domain.Dashboard
	failed     *failedFetch
}

// failedFetch is the last fetch that failed, LoadMore re-issues it as is
type failedFetch struct {
	key          domain.PageKey
	appendPage   bool
	forceRefresh bool
}

var _ ports.DashboardService = (*DashboardService)(nil)

// NewDashboardService initializes the DashboardService with all injected dependencies
func NewDashboardService(feed ports.FeedProvider, cache ports.PageCache, rule domain.HighRiskRule, pageSize, maxPages int) *DashboardService {
	s := &DashboardService{
		feed:       feed,
		cache:      cache,
		rule:       rule,
		pageSize:   pageSize,
		maxPages:   maxPages,
		now:        time.Now,
		state:      domain.StateIdle,
		totalCount: -1,
		seen:       mapset.NewThreadUnsafeSet[string](),
	}
	s.dashboard = Aggregate(nil, s.now(), rule)
	return s
}

// Dashboard returns the aggregates of the current set together with the loader status
func (s *DashboardService) Dashboard(_ context.Context) domain.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.dashboard
	d.Loader = s.loaderStatus()
	return d
}

func (s *DashboardService) loaderStatus() domain.LoaderStatus {
	status := domain.LoaderStatus{
		State:      s.state,
		Search:     s.search,
		Page:       s.page,
		Loaded:     len(s.vulns),
		TotalCount: s.totalCount,
	}
	if s.lastErr != nil && s.state == domain.StateFailed {
		status.Error = s.lastErr.Error()
	}
	return status
}

// GetCVE returns the details of a single CVE, from cache when possible
func (s *DashboardService) GetCVE(ctx context.Context, cveID string) (domain.Vulnerability, error) {
	ctx, span := otel.Tracer("").Start(ctx, "DashboardService.GetCVE")
	defer span.End()

	if cve, ok := s.cache.GetCVE(ctx, cveID); ok {
		return cve, nil
	}
	cve, err := s.feed.GetCVE(ctx, cveID)
	if err != nil {
		return domain.Vulnerability{}, err
	}
	s.cache.StoreCVE(ctx, cve)
	return cve, nil
}

// Load replaces the accumulated set with page 1 of the given search.
// The search becomes current only once the page arrived.
func (s *DashboardService) Load(ctx context.Context, cmd domain.LoadCommand) error {
	ctx, span := otel.Tracer("").Start(ctx, "DashboardService.Load")
	defer span.End()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = domain.StateLoading
	s.mu.Unlock()

	return s.fetchData(ctx, gen, domain.PageKey{Search: cmd.Search, Page: 1, PageSize: s.pageSize}, false, cmd.ForceRefresh)
}

// LoadMore appends the next page to the accumulated set, it does nothing once everything is loaded.
// After a failure it retries the fetch that failed, a failed Load is retried as a Load.
func (s *DashboardService) LoadMore(ctx context.Context) error {
	ctx, span := otel.Tracer("").Start(ctx, "DashboardService.LoadMore")
	defer span.End()

	s.mu.Lock()
	switch s.state {
	case domain.StateAllLoaded:
		s.mu.Unlock()
		return nil
	case domain.StateLoading, domain.StateLoadingMore:
		s.mu.Unlock()
		return domain.ErrLoadInProgress
	}
	gen := s.generation
	if s.state == domain.StateFailed && s.failed != nil {
		retry := *s.failed
		if retry.appendPage {
			s.state = domain.StateLoadingMore
		} else {
			s.state = domain.StateLoading
		}
		s.mu.Unlock()
		return s.fetchData(ctx, gen, retry.key, retry.appendPage, retry.forceRefresh)
	}
	s.state = domain.StateLoadingMore
	key := domain.PageKey{Search: s.search, Page: s.page + 1, PageSize: s.pageSize}
	s.mu.Unlock()

	return s.fetchData(ctx, gen, key, true, false)
}

// Ready is true once a first load succeeded
func (s *DashboardService) Ready(_ context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedOnce
}

// Refresh drops cached pages and reloads page 1 of the current search
func (s *DashboardService) Refresh(ctx context.Context) error {
	ctx, span := otel.Tracer("").Start(ctx, "DashboardService.Refresh")
	defer span.End()

	s.cache.Invalidate(ctx)
	s.mu.RLock()
	search := s.search
	s.mu.RUnlock()
	return s.Load(ctx, domain.LoadCommand{Search: search, ForceRefresh: true})
}

// Vulnerabilities returns a sorted copy of the accumulated set
func (s *DashboardService) Vulnerabilities(_ context.Context, filter domain.VulnerabilityFilter) []domain.Vulnerability {
	s.mu.RLock()
	vulns := make([]domain.Vulnerability, 0, len(s.vulns))
	for _, v := range s.vulns {
		if filter.HighRiskOnly && !s.rule.IsHighRisk(v) {
			continue
		}
		vulns = append(vulns, v)
	}
	s.mu.RUnlock()

	SortVulnerabilities(vulns)
	if filter.Limit > 0 && len(vulns) > filter.Limit {
		vulns = vulns[:filter.Limit]
	}
	return vulns
}

func (s *DashboardService) fetchData(ctx context.Context, gen uint64, key domain.PageKey, appendPage, forceRefresh bool) error {
	page, err := s.fetchPage(ctx, key, forceRefresh)

	s.mu.Lock()
	defer s.mu.Unlock()
	// a newer Load started while this page was in flight
	if gen != s.generation {
		logger.L().Debug("discarding stale page",
			helpers.Int("page", key.Page),
			helpers.String("search", key.Search))
		return domain.ErrStaleResponse
	}
	if err != nil {
		logger.L().Ctx(ctx).Error("failed to fetch feed page", helpers.Error(err),
			helpers.Int("page", key.Page),
			helpers.String("search", key.Search))
		s.state = domain.StateFailed
		s.lastErr = err
		s.failed = &failedFetch{key: key, appendPage: appendPage, forceRefresh: forceRefresh}
		return err
	}

	if !appendPage {
		s.search = key.Search
		s.vulns = nil
		s.fetched = 0
		s.seen.Clear()
	}
	s.vulns = slices.Grow(s.vulns, len(page.Items))
	for _, v := range page.Items {
		if v.CVEID != "" {
			if s.seen.Contains(v.CVEID) {
				continue
			}
			s.seen.Add(v.CVEID)
		}
		s.vulns = append(s.vulns, v)
	}
	s.page = key.Page
	s.fetched += len(page.Items)
	s.totalCount = page.TotalCount
	s.loadedOnce = true
	s.lastErr = nil
	s.failed = nil
	if s.allLoaded(key, page) {
		s.state = domain.StateAllLoaded
	} else {
		s.state = domain.StateLoaded
	}
	s.dashboard = Aggregate(s.vulns, s.now(), s.rule)

	logger.L().Debug("feed page loaded",
		helpers.Int("page", key.Page),
		helpers.Int("items", len(page.Items)),
		helpers.Int("loaded", len(s.vulns)),
		helpers.Int("bytes", size.Of(s.vulns)),
		helpers.String("state", string(s.state)))
	return nil
}

func (s *DashboardService) allLoaded(key domain.PageKey, page domain.FeedPage) bool {
	if len(page.Items) < key.PageSize {
		return true
	}
	if page.TotalCount >= 0 && s.fetched >= page.TotalCount {
		return true
	}
	return s.maxPages > 0 && key.Page >= s.maxPages
}

func (s *DashboardService) fetchPage(ctx context.Context, key domain.PageKey, forceRefresh bool) (domain.FeedPage, error) {
	if !forceRefresh {
		if page, ok := s.cache.GetPage(ctx, key); ok {
			return page, nil
		}
	}
	page, err := s.feed.FetchPage(ctx, key)
	if err != nil {
		return domain.FeedPage{}, err
	}
	s.cache.StorePage(ctx, key, page)
	return page, nil
}
