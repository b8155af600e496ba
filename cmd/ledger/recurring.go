package main

import (
	"fmt"
	"strconv"

	"finledger/internal/core"
	"finledger/internal/currency"

	"github.com/spf13/cobra"
)

var (
	ruleFlags     entryFlags
	ruleFrequency string
)

var recurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Manage recurring income and expense rules",
}

var recurringAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a recurring rule; the first record is due on the start date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		kind, start, err := ruleFlags.parse()
		if err != nil {
			return err
		}
		freq, err := core.ParseFrequency(ruleFrequency)
		if err != nil {
			return err
		}
		amount, err := core.ParseAmount(ruleFlags.amount)
		if err != nil {
			return err
		}
		id, err := current.svc.AddRecurringRule(cmd.Context(), current.sess, core.RecurringRule{
			Category:    ruleFlags.category,
			Amount:      amount,
			Kind:        kind,
			Description: ruleFlags.description,
			Frequency:   freq,
			StartDate:   start,
			Currency:    ruleFlags.currency,
		})
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "%s rule #%d (%s)\n", goodStyle.Render("saved"), id, freq)
		return nil
	},
}

var recurringListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recurring rules by next due date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rules, err := current.svc.RecurringRules(cmd.Context(), current.sess)
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "%s", renderView(rulesView(rules)))
		return nil
	},
}

func rulesView(rules []core.RecurringRule) view {
	v := view{
		Title:   fmt.Sprintf("Recurring rules (%d)", len(rules)),
		Headers: []string{"ID", "Frequency", "Next due", "Kind", "Category", "Amount", "Description"},
		Numeric: map[int]bool{0: true, 5: true},
		Empty:   "no recurring rules",
	}
	for _, r := range rules {
		v.Rows = append(v.Rows, []string{
			strconv.FormatInt(r.ID, 10),
			string(r.Frequency),
			r.NextDue.String(),
			string(r.Kind),
			r.Category,
			currency.Format(r.Amount, r.Currency),
			r.Description,
		})
	}
	return v
}

var recurringProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Materialize every rule due today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := current.svc.ProcessRecurring(cmd.Context(), current.sess)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printf(out, "checked %d rule(s), added %d record(s)\n", res.Checked, res.Materialized())
		printf(out, "%s", renderRecurring(res))
		return res.Err()
	},
}

func init() {
	ruleFlags.register(recurringAddCmd, "start", "first due date YYYY-MM-DD (default: today)")
	recurringAddCmd.Flags().StringVarP(&ruleFrequency, "frequency", "f", "monthly", "daily, weekly or monthly")
	recurringCmd.AddCommand(recurringAddCmd, recurringListCmd, recurringProcessCmd)
	rootCmd.AddCommand(recurringCmd)
}
