package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"revenuecast/pkg/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"milliseconds", 500 * time.Millisecond, "500ms"},
		{"seconds", 2500 * time.Millisecond, "2.5s"},
		{"minutes", 90 * time.Second, "1m30s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "auth failure",
			message: "pq: password authentication failed for user \"analytics\"",
			want:    "Check DB_USER and DB_PASS",
		},
		{
			name:    "connection refused",
			message: "dial tcp 127.0.0.1:5432: connect: connection refused",
			want:    "Verify DB_HOST and DB_PORT and that PostgreSQL is running",
		},
		{
			name:    "missing mart",
			message: `pq: relation "fact_monthly_revenue" does not exist`,
			want:    "Run the transform stage first so fact_monthly_revenue exists",
		},
		{
			name:    "unknown",
			message: "something else entirely",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getSuggestion(tt.message))
		})
	}
}

func TestRenderForecastPreview(t *testing.T) {
	points := []models.ForecastPoint{
		{SubscriptionMonth: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ForecastedMRR: 1200.5, YhatLower: 1100, YhatUpper: 1300},
		{SubscriptionMonth: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), ForecastedMRR: 1250, YhatLower: 1120, YhatUpper: 1380},
		{SubscriptionMonth: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ForecastedMRR: 1275, YhatLower: 1130, YhatUpper: 1420},
	}

	var buf bytes.Buffer
	RenderForecastPreview(&buf, points, 2)

	out := buf.String()
	assert.NotContains(t, out, "2024-01", "only the last rows are previewed")
	assert.Contains(t, out, "2024-02")
	assert.Contains(t, out, "2024-03")
	assert.Contains(t, out, "1250.00")
}

func TestRenderForecastPreviewEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	RenderForecastPreview(&buf, nil, 12)
	assert.Empty(t, buf.String())
}

func TestSpinnerStartStop(t *testing.T) {
	s := NewSpinner("working")
	s.Start()
	s.UpdateMessage("still working")
	time.Sleep(150 * time.Millisecond)
	assert.NotPanics(t, func() { s.Stop(true, "done") })
}
