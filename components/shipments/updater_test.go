package shipments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdaterSucceedsFirstAttempt(t *testing.T) {
	sheet := &fakeSheet{}
	sleep := &recordingSleep{}
	telemetry := &recordingTelemetry{}
	updater := NewUpdater(UpdaterOptions{Writer: sheet, Sleep: sleep.Sleep, Telemetry: telemetry})

	result := updater.Assign(context.Background(), "A1", "anish")

	assert.True(t, result.OK)
	assert.Equal(t, 1, result.Attempts)
	assert.NotEmpty(t, result.ID)
	assert.Empty(t, result.Message())
	assert.Empty(t, sleep.waits)
	assert.Equal(t, []patchCall{{AWB: "A1", Person: "anish"}}, sheet.patches)
	assert.True(t, telemetry.has("shipments.assignment.update"))
}

func TestUpdaterRetriesRateLimitWithLinearBackoff(t *testing.T) {
	limited := &RemoteError{StatusCode: 429, Message: "Too many requests"}
	sheet := &fakeSheet{patchErrs: []error{limited, limited, limited}}
	sleep := &recordingSleep{}
	telemetry := &recordingTelemetry{}
	updater := NewUpdater(UpdaterOptions{Writer: sheet, Sleep: sleep.Sleep, Telemetry: telemetry})

	result := updater.Assign(context.Background(), "A1", "anish")

	assert.False(t, result.OK)
	assert.Equal(t, 3, result.Attempts)
	assert.Len(t, sheet.patches, 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleep.waits)
	assert.ErrorIs(t, result.Err, limited)
	assert.True(t, telemetry.has("shipments.assignment.failed"))
}

func TestUpdaterRecoversAfterRateLimit(t *testing.T) {
	sheet := &fakeSheet{patchErrs: []error{&RemoteError{StatusCode: 429}, nil}}
	sleep := &recordingSleep{}
	updater := NewUpdater(UpdaterOptions{Writer: sheet, Sleep: sleep.Sleep, Backoff: 10 * time.Millisecond})

	result := updater.Assign(context.Background(), "A1", "sathish")

	assert.True(t, result.OK)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, sleep.waits)
}

func TestUpdaterDoesNotRetryOtherFailures(t *testing.T) {
	cases := []error{
		&RemoteError{StatusCode: 500, Message: "boom"},
		&RemoteError{StatusCode: 204},
		&TransportError{Err: errors.New("reset")},
	}
	for _, failure := range cases {
		sheet := &fakeSheet{patchErrs: []error{failure}}
		sleep := &recordingSleep{}
		updater := NewUpdater(UpdaterOptions{Writer: sheet, Sleep: sleep.Sleep})

		result := updater.Assign(context.Background(), "A1", "anish")

		assert.False(t, result.OK)
		assert.Equal(t, 1, result.Attempts)
		assert.Empty(t, sleep.waits)
		assert.Equal(t, failure.Error(), result.Message())
	}
}

func TestUpdaterStopsWhenSleepCancelled(t *testing.T) {
	sheet := &fakeSheet{patchErrs: []error{&RemoteError{StatusCode: 429}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	updater := NewUpdater(UpdaterOptions{Writer: sheet})

	result := updater.Assign(ctx, "A1", "anish")

	assert.False(t, result.OK)
	assert.Equal(t, 1, result.Attempts)
	assert.ErrorIs(t, result.Err, context.Canceled)
}

func TestUpdaterRequiresWriterAndAWB(t *testing.T) {
	result := NewUpdater(UpdaterOptions{}).Assign(context.Background(), "A1", "anish")
	require.False(t, result.OK)
	assert.ErrorIs(t, result.Err, errMissingWriter)

	result = NewUpdater(UpdaterOptions{Writer: &fakeSheet{}}).Assign(context.Background(), "", "anish")
	assert.ErrorIs(t, result.Err, errMissingAWB)
	assert.Zero(t, result.Attempts)
}
