package helpers

import (
	"testing"
	"time"
)

func TestFormatExpiryAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry int64
		want   string
	}{
		{"unlimited", -1, "∞"},
		{"expired", now.Add(-time.Hour).UnixMilli(), "expired"},
		{"minutes only", now.Add(30 * time.Minute).UnixMilli(), "30m"},
		{"hours and minutes", now.Add(2*time.Hour + 15*time.Minute).UnixMilli(), "2h 15m"},
		{"days hours minutes", now.Add(72*time.Hour + 3*time.Hour + 5*time.Minute).UnixMilli(), "3d 3h 5m"},
		{"exact days", now.Add(48 * time.Hour).UnixMilli(), "2d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatExpiryAt(tt.expiry, now); got != tt.want {
				t.Errorf("formatExpiryAt(%d) = %q, want %q", tt.expiry, got, tt.want)
			}
		})
	}
}

func TestHasExpired(t *testing.T) {
	if HasExpired(-1) {
		t.Error("unlimited expiry reported as expired")
	}
	if HasExpired(time.Now().UTC().Add(time.Hour).UnixMilli()) {
		t.Error("future expiry reported as expired")
	}
	if !HasExpired(1) {
		t.Error("past expiry not reported as expired")
	}
}
