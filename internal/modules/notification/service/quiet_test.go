package service

import (
	"testing"
	"time"
)

func TestInQuietWindow(t *testing.T) {
	at := func(hour, minute int) time.Time {
		return time.Date(2025, 6, 1, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		now        time.Time
		start, end string
		want       bool
	}{
		{"inside same-day window", at(13, 0), "12:00", "14:00", true},
		{"before same-day window", at(11, 59), "12:00", "14:00", false},
		{"at window start", at(12, 0), "12:00", "14:00", true},
		{"at window end is outside", at(14, 0), "12:00", "14:00", false},
		{"overnight window late evening", at(23, 30), "22:00", "06:00", true},
		{"overnight window early morning", at(5, 59), "22:00", "06:00", true},
		{"overnight window daytime", at(12, 0), "22:00", "06:00", false},
		{"empty bounds disable window", at(12, 0), "", "", false},
		{"malformed bound disables window", at(12, 0), "25:99", "06:00", false},
		{"equal bounds disable window", at(12, 0), "08:00", "08:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inQuietWindow(tt.now, tt.start, tt.end)
			if got != tt.want {
				t.Errorf("inQuietWindow(%s, %q, %q) = %v, want %v",
					tt.now.Format("15:04"), tt.start, tt.end, got, tt.want)
			}
		})
	}
}
