// Package services holds the ledger engines: recurrence, streaks,
// reporting and achievements.
//
// This file implements the strategy registry that advances a recurring
// rule's next due date. Each frequency has its own advancer.
package services

import (
	"fmt"

	"finledger/internal/core"
)

// MonthlyMaxDay caps the day of month for monthly rules so that every
// month has the target day.
const MonthlyMaxDay = 28

// ScheduleAdvancer computes the due date that follows due.
type ScheduleAdvancer interface {
	Next(due core.Date) core.Date
}

// DailyAdvancer moves a rule forward one day.
type DailyAdvancer struct{}

func (DailyAdvancer) Next(due core.Date) core.Date { return due.AddDays(1) }

// WeeklyAdvancer moves a rule forward seven days.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Next(due core.Date) core.Date { return due.AddDays(7) }

// MonthlyAdvancer moves a rule to the same day of the next month, with
// the day clamped to MaxDay. The clamp applies on every advance, so a
// rule started on the 31st settles on the 28th for good.
type MonthlyAdvancer struct {
	MaxDay int
}

func (a MonthlyAdvancer) Next(due core.Date) core.Date {
	maxDay := a.MaxDay
	if maxDay <= 0 {
		maxDay = MonthlyMaxDay
	}
	return due.NextMonthClamped(maxDay)
}

var scheduleStrategies = map[core.Frequency]ScheduleAdvancer{
	core.Daily:   DailyAdvancer{},
	core.Weekly:  WeeklyAdvancer{},
	core.Monthly: MonthlyAdvancer{MaxDay: MonthlyMaxDay},
}

// GetScheduleAdvancer returns the advancer registered for frequency.
func GetScheduleAdvancer(frequency core.Frequency) (ScheduleAdvancer, error) {
	a, ok := scheduleStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return a, nil
}
