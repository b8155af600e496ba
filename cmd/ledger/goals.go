package main

import (
	"fmt"
	"strconv"

	"finledger/internal/core"
	"finledger/internal/currency"
	"finledger/internal/ledger"

	"github.com/spf13/cobra"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Set and review the savings goal",
}

var goalSetCmd = &cobra.Command{
	Use:   "set AMOUNT",
	Short: "Replace the current goal and log it in the history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := core.ParseAmount(args[0])
		if err != nil {
			return err
		}
		if err := current.svc.SetGoal(cmd.Context(), current.sess, amount); err != nil {
			return err
		}
		base, err := current.svc.BaseCurrency(cmd.Context(), current.sess)
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "%s goal %s\n", goodStyle.Render("set"), currency.Format(amount, base))
		return nil
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current goal, history and streaks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		goals, err := current.svc.Goals(cmd.Context(), current.sess)
		if err != nil {
			return err
		}
		base, err := current.svc.BaseCurrency(cmd.Context(), current.sess)
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "%s", renderGoals(goals, base))
		return nil
	},
}

func renderGoals(g ledger.Goals, base string) string {
	goal := labelStyle.Render("not set")
	if g.HasCurrent {
		goal = fmt.Sprintf("%s (since %s)", currency.Format(g.Current.Amount, base), g.Current.Date)
	}
	out := renderPairs([][2]string{
		{"Current goal", goal},
		{"Current streak", strconv.Itoa(g.Streaks.Current) + " day(s)"},
		{"Best streak", strconv.Itoa(g.Streaks.Best) + " day(s)"},
	})

	history := view{
		Title:   "Goal history",
		Headers: []string{"Date", "Amount"},
		Numeric: map[int]bool{1: true},
		Empty:   "no goals logged",
	}
	for _, e := range g.History {
		history.Rows = append(history.Rows, []string{e.Date.String(), currency.Format(e.Amount, base)})
	}

	growth := view{
		Title:   "Streak growth",
		Headers: []string{"Date", "Streak"},
		Numeric: map[int]bool{1: true},
		Empty:   "no streak yet",
	}
	for _, p := range g.Streaks.Growth {
		growth.Rows = append(growth.Rows, []string{p.Date.String(), strconv.Itoa(p.Streak)})
	}
	return out + renderView(history) + renderView(growth)
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List unlocked badges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		list, err := current.svc.Achievements(cmd.Context(), current.sess)
		if err != nil {
			return err
		}
		v := view{
			Title:   "Achievements",
			Headers: []string{"Badge", "Unlocked"},
			Empty:   "no badges yet",
		}
		for _, a := range list {
			v.Rows = append(v.Rows, []string{a.Name, a.Date.String()})
		}
		printf(cmd.OutOrStdout(), "%s", renderView(v))
		return nil
	},
}

func init() {
	goalCmd.AddCommand(goalSetCmd, goalShowCmd)
	rootCmd.AddCommand(goalCmd, achievementsCmd)
}
