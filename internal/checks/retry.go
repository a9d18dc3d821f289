package checks

import (
	"context"
	"errors"
	"time"

	"checkcontrat-backend/internal/compliance"
	"checkcontrat-backend/internal/llm"
	"checkcontrat-backend/internal/shared/telemetry"
)

const defaultRetryDelay = 300 * time.Millisecond

type pipelineCall func(ctx context.Context) (compliance.Envelope, error)

// runWithRetry bounds the whole pipeline by Timeout and repeats it on
// transient model failures, at most Retries more times.
func (s *Service) runWithRetry(ctx context.Context, module string, call pipelineCall) (compliance.Envelope, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	delay := s.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	for attempt := 0; ; attempt++ {
		env, err := call(ctx)
		if err == nil || attempt >= s.Retries || ctx.Err() != nil || !shouldRetry(err) {
			return env, err
		}
		telemetry.Warn("checks.retry", map[string]any{
			"module":  module,
			"attempt": attempt + 1,
			"err":     err.Error(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return compliance.Envelope{}, ctx.Err()
		}
		delay *= 2
	}
}

func shouldRetry(err error) bool {
	var svcErr *llm.ServiceError
	return errors.As(err, &svcErr) && svcErr.Temporary()
}
