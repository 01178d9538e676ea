package shipments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultMaxAttempts bounds the PATCH attempts of a single assignment.
	DefaultMaxAttempts = 3
	// DefaultBackoff is the linear backoff step between rate-limited attempts.
	DefaultBackoff = time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// AssignResult is the outcome of one assignment update.
type AssignResult struct {
	ID        string `json:"id"`
	AWBNumber string `json:"awb_number"`
	Person    string `json:"person"`
	Attempts  int    `json:"attempts"`
	OK        bool   `json:"ok"`
	Err       error  `json:"-"`
}

// Message returns the failure text, or "" on success.
func (r AssignResult) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// UpdaterOptions configures the assignment updater.
type UpdaterOptions struct {
	Writer      AssignmentWriter
	MaxAttempts int
	Backoff     time.Duration
	Sleep       SleepFunc
	Logger      *zap.Logger
	Telemetry   Telemetry
}

// Updater applies single-field assignment patches with a bounded retry on
// rate limiting.
type Updater struct {
	opts UpdaterOptions
}

// NewUpdater builds an Updater with safe defaults.
func NewUpdater(opts UpdaterOptions) *Updater {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	opts.Logger = normalizeLogger(opts.Logger)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Updater{opts: opts}
}

// Assign patches the pickup person of awb. A 429 response is retried after
// Backoff × attempt while fewer than MaxAttempts attempts were made; attempts
// run strictly one after another. Failures are logged and returned in the result.
func (u *Updater) Assign(ctx context.Context, awb, person string) AssignResult {
	result := AssignResult{
		ID:        uuid.NewString(),
		AWBNumber: awb,
		Person:    person,
	}
	if u.opts.Writer == nil {
		result.Err = errMissingWriter
		return result
	}
	if awb == "" {
		result.Err = errMissingAWB
		return result
	}
	logger := u.opts.Logger.With(
		zap.String("awb", awb),
		zap.String("person", person),
		zap.String("attempt_id", result.ID),
	)
	for attempt := 1; attempt <= u.opts.MaxAttempts; attempt++ {
		result.Attempts = attempt
		err := u.opts.Writer.UpdateAssignment(ctx, awb, person)
		if err == nil {
			result.OK = true
			result.Err = nil
			logger.Info("pickup person updated", zap.Int("attempts", attempt))
			u.opts.Telemetry.Record(ctx, "shipments.assignment.update", map[string]any{
				"awb":      awb,
				"person":   person,
				"attempts": attempt,
			})
			return result
		}
		result.Err = err
		if !IsRateLimited(err) || attempt == u.opts.MaxAttempts {
			break
		}
		wait := u.opts.Backoff * time.Duration(attempt)
		logger.Warn("rate limit exceeded, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
		)
		if err := u.opts.Sleep(ctx, wait); err != nil {
			result.Err = err
			break
		}
	}
	logger.Error("updating pickup person failed",
		zap.Int("attempts", result.Attempts),
		zap.Error(result.Err),
	)
	u.opts.Telemetry.Record(ctx, "shipments.assignment.failed", map[string]any{
		"awb":      awb,
		"person":   person,
		"attempts": result.Attempts,
		"error":    result.Err.Error(),
	})
	return result
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
