package utils

import (
	"testing"
	"time"
)

func TestFormatAge(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{-45 * time.Second, "45s"},
		{time.Minute, "1m"},
		{59*time.Minute + 59*time.Second, "59m"},
		{time.Hour, "1h"},
		{25 * time.Hour, "1d"},
	}

	for _, tt := range tests {
		if got := FormatAge(tt.in); got != tt.want {
			t.Errorf("FormatAge(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMillis(t *testing.T) {
	if got := FormatMillis(850); got != "850ms" {
		t.Errorf("FormatMillis(850) = %q", got)
	}
	if got := FormatMillis(2100); got != "2.1s" {
		t.Errorf("FormatMillis(2100) = %q", got)
	}
}
