package adapters

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/kubescape/vulnintel/core/domain"
	"github.com/kubescape/vulnintel/core/ports"
)

// MockFeedAdapter implements a mocked FeedProvider serving an in-memory set, to be used for tests and local runs
type MockFeedAdapter struct {
	mu    sync.Mutex
	vulns []domain.Vulnerability
	fail  bool
	calls int
	hook  func(ctx context.Context, key domain.PageKey)
}

var _ ports.FeedProvider = (*MockFeedAdapter)(nil)

// NewMockFeedAdapter initializes the MockFeedAdapter struct
func NewMockFeedAdapter(fail bool, vulns ...domain.Vulnerability) *MockFeedAdapter {
	logger.L().Info("NewMockFeedAdapter", helpers.Int("vulnerabilities", len(vulns)))
	return &MockFeedAdapter{vulns: vulns, fail: fail}
}

// SetFail switches between failing and serving
func (m *MockFeedAdapter) SetFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// SetHook registers a function called at the start of every FetchPage, outside the adapter lock
func (m *MockFeedAdapter) SetHook(hook func(ctx context.Context, key domain.PageKey)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = hook
}

// Calls returns the number of FetchPage calls
func (m *MockFeedAdapter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// FetchPage returns a page of the records matching the search
func (m *MockFeedAdapter) FetchPage(ctx context.Context, key domain.PageKey) (domain.FeedPage, error) {
	m.mu.Lock()
	m.calls++
	hook := m.hook
	m.mu.Unlock()
	if hook != nil {
		hook(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return domain.FeedPage{}, &domain.APIError{Status: http.StatusInternalServerError, Message: "mock feed failure"}
	}
	var matching []domain.Vulnerability
	for _, v := range m.vulns {
		if matches(v, key.Search) {
			matching = append(matching, v)
		}
	}
	start := (key.Page - 1) * key.PageSize
	if start < 0 || start >= len(matching) {
		return domain.FeedPage{Items: []domain.Vulnerability{}, TotalCount: len(matching)}, nil
	}
	end := min(start+key.PageSize, len(matching))
	items := make([]domain.Vulnerability, end-start)
	copy(items, matching[start:end])
	return domain.FeedPage{Items: items, TotalCount: len(matching)}, nil
}

func matches(v domain.Vulnerability, search string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(v.CVEID), search) ||
		strings.Contains(strings.ToLower(v.Title), search) ||
		strings.Contains(strings.ToLower(v.Description), search)
}

// GetCVE returns the record with the given id or a 404 API error
func (m *MockFeedAdapter) GetCVE(_ context.Context, cveID string) (domain.Vulnerability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return domain.Vulnerability{}, &domain.APIError{Status: http.StatusInternalServerError, Message: "mock feed failure"}
	}
	for _, v := range m.vulns {
		if strings.EqualFold(v.CVEID, cveID) {
			return v, nil
		}
	}
	return domain.Vulnerability{}, &domain.APIError{Status: http.StatusNotFound, Message: "CVE not found"}
}
