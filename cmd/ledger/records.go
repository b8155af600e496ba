package main

import (
	"fmt"
	"strconv"

	"finledger/internal/core"
	"finledger/internal/currency"
	"finledger/internal/services"

	"github.com/spf13/cobra"
)

// entryFlags are the fields shared by "add" and "recurring add".
type entryFlags struct {
	kind        string
	amount      string
	category    string
	description string
	currency    string
	date        string
}

func (f *entryFlags) register(cmd *cobra.Command, dateFlag, dateUsage string) {
	cmd.Flags().StringVarP(&f.kind, "kind", "k", "expense", "income or expense")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "amount, non-negative with at most 2 decimal places")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "category label")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "free text, up to 200 characters")
	cmd.Flags().StringVar(&f.currency, "currency", "", "currency code (default: ledger base currency)")
	cmd.Flags().StringVar(&f.date, dateFlag, "", dateUsage)
	_ = cmd.MarkFlagRequired("amount")
}

func (f *entryFlags) parse() (core.Kind, core.Date, error) {
	kind, err := core.ParseKind(f.kind)
	if err != nil {
		return "", core.Date{}, err
	}
	var date core.Date
	if f.date != "" {
		if date, err = core.ParseDate(f.date); err != nil {
			return "", core.Date{}, err
		}
	}
	return kind, date, nil
}

var addFlags entryFlags

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a one-off income or expense",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		kind, date, err := addFlags.parse()
		if err != nil {
			return err
		}
		amount, err := core.ParseAmount(addFlags.amount)
		if err != nil {
			return err
		}
		id, err := current.svc.AddRecord(cmd.Context(), current.sess, core.Record{
			Date:        date,
			Category:    addFlags.category,
			Amount:      amount,
			Kind:        kind,
			Description: addFlags.description,
			Currency:    addFlags.currency,
		})
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "%s record #%d\n", goodStyle.Render("saved"), id)
		return nil
	},
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List records, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		records, err := current.svc.Records(cmd.Context(), current.sess)
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "%s", renderView(recordsView(records)))
		return nil
	},
}

func recordsView(records []core.Record) view {
	v := view{
		Title:   fmt.Sprintf("Records (%d)", len(records)),
		Headers: []string{"ID", "Date", "Kind", "Category", "Amount", "Description"},
		Numeric: map[int]bool{0: true, 4: true},
		Empty:   "no records yet",
	}
	for _, r := range records {
		v.Rows = append(v.Rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Date.String(),
			string(r.Kind),
			r.Category,
			currency.Format(r.Amount, r.Currency),
			r.Description,
		})
	}
	return v
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Materialize due recurring entries and show totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dash, err := current.svc.Dashboard(cmd.Context(), current.sess)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printf(out, "%s\n", renderTitle(fmt.Sprintf("%s · %s", current.sess.Username, current.sess.Today)))
		printf(out, "%s", renderRecurring(dash.Recurring))
		printf(out, "%s", renderTotals(dash.Totals))
		printf(out, "%s", current.fallbackNotice())
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show totals without processing recurring entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		totals, err := current.svc.Profile(cmd.Context(), current.sess)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printf(out, "%s\n", renderTitle("Profile: "+current.sess.Username))
		printf(out, "%s", renderTotals(totals))
		printf(out, "%s", current.fallbackNotice())
		return nil
	},
}

func renderTotals(t core.Totals) string {
	savings := currency.Format(t.Savings(), t.Currency)
	if t.Savings().IsNegative() {
		savings = badStyle.Render(savings)
	} else {
		savings = goodStyle.Render(savings)
	}
	return renderPairs([][2]string{
		{"Income", currency.Format(t.Income, t.Currency)},
		{"Expenses", currency.Format(t.Expenses, t.Currency)},
		{"Savings", savings},
	})
}

func renderRecurring(res services.ProcessResult) string {
	out := ""
	if n := res.Materialized(); n > 0 {
		out += goodStyle.Render(fmt.Sprintf("  %d recurring record(s) added", n)) + "\n"
	}
	for _, f := range res.Failures {
		out += warnStyle.Render("  recurring: "+f.Error()) + "\n"
	}
	return out
}

func init() {
	addFlags.register(addCmd, "date", "record date YYYY-MM-DD (default: today)")
	rootCmd.AddCommand(addCmd, recordsCmd, dashboardCmd, profileCmd)
}
