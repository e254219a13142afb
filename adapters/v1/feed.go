package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aquilax/truncate"
	"github.com/eapache/go-resiliency/retrier"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/kubescape/vulnintel/core/domain"
	"github.com/kubescape/vulnintel/core/ports"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
)

const (
	feedPath         = "/api/cvefeed"
	cvePath          = "/api/cve/"
	maxBodySize      = 64 << 20
	maxMessageLength = 200
	initialBackoff   = time.Second
	maxBackoff       = 10 * time.Second
)

// FeedAdapter implements FeedProvider over the CVE feed REST API
type FeedAdapter struct {
	baseURL      string
	feedClient   *http.Client
	detailClient *http.Client
	backoff      []time.Duration
	maxBodySize  int64
	now          func() time.Time
}

var _ ports.FeedProvider = (*FeedAdapter)(nil)

// NewFeedAdapter initializes the FeedAdapter, network failures are retried up to maxAttempts in total
func NewFeedAdapter(baseURL string, feedTimeout, detailTimeout time.Duration, maxAttempts int) *FeedAdapter {
	return &FeedAdapter{
		baseURL:      strings.TrimRight(baseURL, "/"),
		feedClient:   &http.Client{Timeout: feedTimeout},
		detailClient: &http.Client{Timeout: detailTimeout},
		backoff:      retryBackoff(maxAttempts, initialBackoff, maxBackoff),
		maxBodySize:  maxBodySize,
		now:          time.Now,
	}
}

// retryBackoff returns the waits between attempts, min(initial*2^n, max)
func retryBackoff(maxAttempts int, initial, max time.Duration) []time.Duration {
	var backoff []time.Duration
	for n := 0; n < maxAttempts-1; n++ {
		d := initial << n
		if d > max || d <= 0 {
			d = max
		}
		backoff = append(backoff, d)
	}
	return backoff
}

// FetchPage calls GET /api/cvefeed and normalizes every record of the page
func (a *FeedAdapter) FetchPage(ctx context.Context, key domain.PageKey) (domain.FeedPage, error) {
	ctx, span := otel.Tracer("").Start(ctx, "FeedAdapter.FetchPage")
	defer span.End()

	query := url.Values{}
	query.Set("page", strconv.Itoa(key.Page))
	query.Set("page_size", strconv.Itoa(key.PageSize))
	if key.Search != "" {
		query.Set("search", key.Search)
	}
	body, err := a.getJSON(ctx, a.feedClient, a.baseURL+feedPath+"?"+query.Encode())
	if err != nil {
		return domain.FeedPage{}, fmt.Errorf("fetch feed page %d: %w", key.Page, err)
	}
	return parseFeedPage(body, a.now()), nil
}

// GetCVE calls GET /api/cve/{cveId}
func (a *FeedAdapter) GetCVE(ctx context.Context, cveID string) (domain.Vulnerability, error) {
	ctx, span := otel.Tracer("").Start(ctx, "FeedAdapter.GetCVE")
	defer span.End()

	body, err := a.getJSON(ctx, a.detailClient, a.baseURL+cvePath+url.PathEscape(cveID))
	if err != nil {
		return domain.Vulnerability{}, fmt.Errorf("fetch %s: %w", cveID, err)
	}
	raw := gjson.ParseBytes(body)
	if wrapped := raw.Get("cve"); wrapped.IsObject() {
		raw = wrapped
	}
	cve := feedToDomain(raw, a.now())
	if cve.CVEID == "" {
		cve.CVEID = cveID
	}
	return cve, nil
}

// parseFeedPage handles both response shapes: {items, total_count} and the legacy {all_cves}
func parseFeedPage(body []byte, now time.Time) domain.FeedPage {
	root := gjson.ParseBytes(body)
	var items gjson.Result
	total := -1
	switch {
	case root.Get("items").IsArray():
		items = root.Get("items")
		if tc := root.Get("total_count"); tc.Type == gjson.Number {
			total = int(tc.Int())
		}
	case root.Get("all_cves").IsArray():
		items = root.Get("all_cves")
		total = len(items.Array())
	case root.IsArray():
		items = root
		total = len(items.Array())
	default:
		logger.L().Warning("unexpected feed response shape", helpers.String("body", truncate.Truncate(string(body), maxMessageLength, "...", truncate.PositionEnd)))
		return domain.FeedPage{Items: []domain.Vulnerability{}, TotalCount: 0}
	}
	page := domain.FeedPage{Items: []domain.Vulnerability{}, TotalCount: total}
	items.ForEach(func(_, raw gjson.Result) bool {
		if raw.IsObject() {
			page.Items = append(page.Items, feedToDomain(raw, now))
		}
		return true
	})
	return page
}

func (a *FeedAdapter) getJSON(ctx context.Context, client *http.Client, fullURL string) ([]byte, error) {
	var body []byte
	attempt := 0
	r := retrier.New(a.backoff, transportClassifier{ctx: ctx})
	err := r.RunCtx(ctx, func(ctx context.Context) error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.L().Ctx(ctx).Warning("feed request failed", helpers.Error(err),
				helpers.Int("attempt", attempt),
				helpers.String("url", fullURL))
			return err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBodySize+1))
		if err != nil {
			return err
		}
		if int64(len(b)) > a.maxBodySize {
			return fmt.Errorf("response body exceeds %d bytes", a.maxBodySize)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return &domain.APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, b)}
		}
		body = b
		return nil
	})
	if err != nil && isTransportError(ctx, err) {
		return nil, fmt.Errorf("%w after %d attempts: %v", domain.ErrConnectionExpired, attempt, err)
	}
	return body, err
}

// errorMessage extracts a readable message from an error response
func errorMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		root := gjson.ParseBytes(body)
		for _, key := range []string{"detail", "message", "error"} {
			if r := root.Get(key); r.Type == gjson.String && r.Str != "" {
				return r.Str
			}
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return truncate.Truncate(s, maxMessageLength, "...", truncate.PositionEnd)
	}
	return http.StatusText(status)
}

// transportClassifier retries network level failures only, HTTP error statuses
// and the caller's own cancellation or deadline are final
type transportClassifier struct {
	ctx context.Context
}

func (c transportClassifier) Classify(err error) retrier.Action {
	switch {
	case err == nil:
		return retrier.Succeed
	case isTransportError(c.ctx, err):
		return retrier.Retry
	}
	return retrier.Fail
}

func isTransportError(ctx context.Context, err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	// context.DeadlineExceeded is a net.Error too, client timeouts stay retryable
	if ctx.Err() != nil && errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
