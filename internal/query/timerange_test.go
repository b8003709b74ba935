package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
)

func TestParseTimeRangeEmptyDefaultsToOneHour(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr, err := ParseTimeRange("", now)
	require.NoError(t, err)
	require.Equal(t, now.Add(-time.Hour), tr.Start)
	require.Equal(t, now, tr.End)
}

func TestParseTimeRangeHours(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr, err := ParseTimeRange("24h", now)
	require.NoError(t, err)
	require.Equal(t, now.Add(-24*time.Hour), tr.Start)
}

func TestParseTimeRangeDays(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr, err := ParseTimeRange("7d", now)
	require.NoError(t, err)
	require.Equal(t, now.Add(-7*24*time.Hour), tr.Start)
}

func TestParseTimeRangeClampsToMaxWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr, err := ParseTimeRange("custom:2025-12-01T12:00:00Z,2026-01-01T12:00:00Z", now)
	require.NoError(t, err)
	require.Equal(t, now.Add(-MaxWindow), tr.Start)
}

func TestParseTimeRangeCustom(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr, err := ParseTimeRange("custom:2026-01-01T00:00:00Z,2026-01-01T06:00:00Z", now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), tr.Start)
	require.Equal(t, time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC), tr.End)
}

func TestParseTimeRangeCustomEndBeforeStartFails(t *testing.T) {
	now := time.Now()
	_, err := ParseTimeRange("custom:2026-01-01T06:00:00Z,2026-01-01T00:00:00Z", now)
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.As(err).Kind)
}

func TestParseTimeRangeUnknownFormFails(t *testing.T) {
	_, err := ParseTimeRange("banana", time.Now())
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.As(err).Kind)
}
