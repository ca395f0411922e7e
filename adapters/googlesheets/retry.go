package googlesheets

import (
	"context"
	"errors"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
)

// retry runs fn until it succeeds, fails with a non-retryable error or the
// retry budget is spent. Backoff doubles from RetryInterval up to MaxBackoff.
func (a *Adapter) retry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i <= a.config.MaxRetries; i++ {
		err = fn()
		if err == nil || !isRetryable(err) {
			return err
		}

		if i < a.config.MaxRetries {
			backoff := a.config.RetryInterval << uint(i)
			if backoff > a.config.MaxBackoff || backoff <= 0 {
				backoff = a.config.MaxBackoff
			}
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return errors.Join(err, ctx.Err())
			case <-timer.C:
			}
		}
	}
	return err
}

// isRetryable reports whether err is a quota or server-side failure
func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}
