package domain

import "time"

// urgentThreshold marks the remaining duration below which a countdown is
// flagged urgent.
const urgentThreshold = 15 * time.Minute

// CountdownResult describes the remaining time until a scheduled arrival or
// departure.
type CountdownResult struct {
	Hours        int  `json:"hours"`
	Minutes      int  `json:"minutes"`
	Seconds      int  `json:"seconds"`
	TotalSeconds int  `json:"totalSeconds"`
	Elapsed      bool `json:"elapsed"`
	Urgent       bool `json:"urgent"`
}

// Countdown computes the remaining time until the scheduled clock time,
// combined with now's calendar date. A schedule at or before now yields an
// elapsed result with zero duration; a remaining duration under fifteen
// minutes is flagged urgent.
func Countdown(scheduled, now time.Time) CountdownResult {
	target := time.Date(
		now.Year(), now.Month(), now.Day(),
		scheduled.Hour(), scheduled.Minute(), scheduled.Second(), 0,
		now.Location(),
	)

	remaining := target.Sub(now)
	if remaining <= 0 {
		return CountdownResult{Elapsed: true}
	}

	total := int(remaining.Seconds())
	return CountdownResult{
		Hours:        total / 3600,
		Minutes:      (total % 3600) / 60,
		Seconds:      total % 60,
		TotalSeconds: total,
		Urgent:       remaining < urgentThreshold,
	}
}
