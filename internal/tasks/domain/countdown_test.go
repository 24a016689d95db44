package domain

import (
	"testing"
	"time"
)

func TestCountdownRemaining(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	scheduled := time.Date(2025, 6, 10, 12, 30, 15, 0, time.UTC)

	got := Countdown(scheduled, now)
	if got.Elapsed {
		t.Fatal("future schedule must not be elapsed")
	}
	if got.Hours != 2 || got.Minutes != 30 || got.Seconds != 15 {
		t.Fatalf("expected 2h30m15s, got %dh%dm%ds", got.Hours, got.Minutes, got.Seconds)
	}
	if got.TotalSeconds != 2*3600+30*60+15 {
		t.Fatalf("unexpected total seconds %d", got.TotalSeconds)
	}
	if got.Urgent {
		t.Fatal("2.5 hours out must not be urgent")
	}
}

func TestCountdownUrgentUnderFifteenMinutes(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	scheduled := time.Date(2025, 6, 10, 10, 14, 59, 0, time.UTC)

	got := Countdown(scheduled, now)
	if got.Elapsed {
		t.Fatal("future schedule must not be elapsed")
	}
	if !got.Urgent {
		t.Fatal("under fifteen minutes remaining must be urgent")
	}
}

func TestCountdownExactlyFifteenMinutesNotUrgent(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	scheduled := time.Date(2025, 6, 10, 10, 15, 0, 0, time.UTC)

	got := Countdown(scheduled, now)
	if got.Urgent {
		t.Fatal("exactly fifteen minutes remaining must not be urgent")
	}
}

func TestCountdownElapsed(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

	for _, scheduled := range []time.Time{
		time.Date(2025, 6, 10, 9, 59, 59, 0, time.UTC),
		time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC),
	} {
		got := Countdown(scheduled, now)
		if !got.Elapsed {
			t.Fatalf("schedule %v must be elapsed", scheduled)
		}
		if got.Hours != 0 || got.Minutes != 0 || got.Seconds != 0 || got.TotalSeconds != 0 {
			t.Fatal("elapsed result must carry zero duration")
		}
		if got.Urgent {
			t.Fatal("elapsed result must not be urgent")
		}
	}
}

func TestCountdownUsesNowsCalendarDate(t *testing.T) {
	// Scheduled timestamps keep the calendar date of whatever upload produced
	// them; only the clock time matters for today's countdown.
	scheduled := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	got := Countdown(scheduled, now)
	if got.Elapsed {
		t.Fatal("9:00 today is still ahead of 8:00")
	}
	if got.Hours != 1 || got.Minutes != 0 || got.Seconds != 0 {
		t.Fatalf("expected exactly one hour, got %dh%dm%ds", got.Hours, got.Minutes, got.Seconds)
	}
}
