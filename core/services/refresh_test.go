package services

import (
	"context"
	"testing"
	"time"

	"github.com/eapache/go-resiliency/deadline"
	"github.com/kubescape/vulnintel/adapters"
	"github.com/kubescape/vulnintel/core/domain"
	"github.com/kubescape/vulnintel/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_StartAutoRefresh(t *testing.T) {
	feed := adapters.NewMockFeedAdapter(false, generated(3)...)
	s := newTestService(feed, repositories.NewNoCache(), 10, 0)
	ctx, cancel := context.WithCancel(context.Background())

	s.StartAutoRefresh(ctx, 10*time.Millisecond, time.Second)
	assert.Eventually(t, func() bool { return feed.Calls() >= 2 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.Ready(ctx))

	cancel()
	time.Sleep(30 * time.Millisecond)
	calls := feed.Calls()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, feed.Calls(), "no refresh after cancel")
}

func TestDashboardService_refreshWithDeadline(t *testing.T) {
	feed := adapters.NewMockFeedAdapter(false, generated(3)...)
	s := newTestService(feed, repositories.NewNoCache(), 10, 0)

	released := make(chan struct{})
	feed.SetHook(func(ctx context.Context, _ domain.PageKey) {
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
		close(released)
	})

	err := s.refreshWithDeadline(context.Background(), 20*time.Millisecond)
	assert.ErrorIs(t, err, deadline.ErrTimedOut)
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("timed out refresh was not cancelled")
	}
}

func TestDashboardService_refreshWithDeadline_error(t *testing.T) {
	feed := adapters.NewMockFeedAdapter(true)
	s := newTestService(feed, repositories.NewNoCache(), 10, 0)

	err := s.refreshWithDeadline(context.Background(), time.Second)
	require.Error(t, err)
	assert.NotErrorIs(t, err, deadline.ErrTimedOut)
	assert.Equal(t, domain.StateFailed, s.Dashboard(context.TODO()).Loader.State)
}
