// Package ledger is the entry point callers use: every operation takes an
// explicit Session naming the user namespace and the calendar day.
package ledger

import (
	"finledger/internal/core"

	"github.com/shopspring/decimal"
)

// Session identifies who is acting and on which day.
type Session struct {
	Username string
	Today    core.Date
}

// NewSession starts a session for username on today. A zero today means
// the current local day.
func NewSession(username string, today core.Date) Session {
	if today.IsZero() {
		today = core.Today()
	}
	return Session{Username: username, Today: today}
}

func (s Session) today() core.Date {
	if s.Today.IsZero() {
		return core.Today()
	}
	return s.Today
}

// Milestones names the badges the service awards and their thresholds.
type Milestones struct {
	FirstGoal string

	Streak     string
	StreakDays int

	Savings         string
	IncomeThreshold decimal.Decimal
}

func DefaultMilestones() Milestones {
	return Milestones{
		FirstGoal:       "First Goal Set",
		Streak:          "7-Day Streak",
		StreakDays:      7,
		Savings:         "Saved ₹10,000",
		IncomeThreshold: decimal.NewFromInt(10000),
	}
}

// StreakReached reports whether a current streak earns the streak badge.
func (m Milestones) StreakReached(current int) bool {
	return m.StreakDays > 0 && current >= m.StreakDays
}

// IncomeReached reports whether total income earns the savings badge.
func (m Milestones) IncomeReached(income decimal.Decimal) bool {
	return income.GreaterThanOrEqual(m.IncomeThreshold)
}
