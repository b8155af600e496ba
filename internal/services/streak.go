package services

import (
	"context"
	"fmt"
	"iter"

	"finledger/internal/core"
)

// CurrentStreak counts consecutive days ending today on which a goal was
// set. dates must be ascending. Returns 0 when today has no entry.
func CurrentStreak(dates []core.Date, today core.Date) int {
	streak := 0
	for i := len(dates) - 1; i >= 0; i-- {
		if !dates[i].Equal(today.AddDays(-streak)) {
			break
		}
		streak++
	}
	return streak
}

// BestStreak returns the longest run of consecutive days in ascending dates.
func BestStreak(dates []core.Date) int {
	best, current := 0, 0
	for i, d := range dates {
		if i == 0 || d.Equal(dates[i-1].AddDays(1)) {
			current++
		} else {
			best = max(best, current)
			current = 1
		}
	}
	return max(best, current)
}

// StreakGrowth yields each date with the length of the run it closes.
// The sequence is lazy and can be ranged over more than once.
func StreakGrowth(dates []core.Date) iter.Seq2[core.Date, int] {
	return func(yield func(core.Date, int) bool) {
		current := 0
		for i, d := range dates {
			if i > 0 && d.Equal(dates[i-1].AddDays(1)) {
				current++
			} else {
				current = 1
			}
			if !yield(d, current) {
				return
			}
		}
	}
}

// StreakPoint is one step of a streak growth series.
type StreakPoint struct {
	Date   core.Date
	Streak int
}

// StreakSummary is the streak state of a namespace on a given day.
type StreakSummary struct {
	Current int
	Best    int
	Growth  []StreakPoint
}

// StreakTracker reads goal dates from the store and derives streaks.
type StreakTracker struct {
	store GoalDateStore
}

func NewStreakTracker(store GoalDateStore) *StreakTracker {
	return &StreakTracker{store: store}
}

// Summary computes current streak, best streak and growth for username.
func (t *StreakTracker) Summary(ctx context.Context, username string, today core.Date) (StreakSummary, error) {
	dates, err := t.store.ListGoalDates(ctx, username)
	if err != nil {
		return StreakSummary{}, fmt.Errorf("list goal dates: %w", err)
	}

	summary := StreakSummary{
		Current: CurrentStreak(dates, today),
		Best:    BestStreak(dates),
	}
	for d, n := range StreakGrowth(dates) {
		summary.Growth = append(summary.Growth, StreakPoint{Date: d, Streak: n})
	}
	return summary, nil
}
