package helpers

import (
	"testing"
)

func TestFormatTraffic(t *testing.T) {
	const gb = int64(1024 * 1024 * 1024)

	tests := []struct {
		bytes int64
		want  string
	}{
		{-1, "∞"},
		{0, "0 MB"},
		{100, "1 MB"},
		{512 * 1024 * 1024, "512 MB"},
		{gb, "1 GB"},
		{gb + gb/2, "1.50 GB"},
		{10 * gb, "10 GB"},
		{2048 * gb, "2 TB"},
	}

	for _, tt := range tests {
		if got := FormatTraffic(tt.bytes); got != tt.want {
			t.Errorf("FormatTraffic(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
