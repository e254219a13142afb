package services

import (
	"context"
	"errors"
	"time"

	"github.com/eapache/go-resiliency/deadline"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
)

// StartAutoRefresh reloads page 1 every interval until ctx is cancelled.
// Each cycle is abandoned after timeout so a hanging upstream cannot pile up refreshes.
func (s *DashboardService) StartAutoRefresh(ctx context.Context, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.L().Info("auto refresh stopped")
				return
			case <-ticker.C:
				_ = s.refreshWithDeadline(ctx, timeout)
			}
		}
	}()
}

func (s *DashboardService) refreshWithDeadline(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dl := deadline.New(timeout)
	err := dl.Run(func(stopper <-chan struct{}) error {
		go func() {
			select {
			case <-stopper:
				cancel()
			case <-ctx.Done():
			}
		}()
		return s.Refresh(ctx)
	})
	switch {
	case errors.Is(err, deadline.ErrTimedOut):
		logger.L().Ctx(ctx).Warning("auto refresh timed out", helpers.String("timeout", timeout.String()))
	case err != nil:
		logger.L().Ctx(ctx).Error("auto refresh failed", helpers.Error(err))
	default:
		logger.L().Debug("auto refresh done")
	}
	return err
}
