package main

import (
	"strings"

	"finledger/internal/core"
	"finledger/internal/currency"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var pivotCmd = &cobra.Command{
	Use:     "pivot",
	Aliases: []string{"prediction"},
	Short:   "Monthly expenses by category for the last six months",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := current.svc.Prediction(cmd.Context(), current.sess)
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "%s%s", renderView(pivotView(p)), current.fallbackNotice())
		return nil
	},
}

func pivotView(p core.Pivot) view {
	v := view{
		Title:   "Monthly expenses (" + p.Currency + ")",
		Headers: append([]string{"Month"}, p.Categories...),
		Numeric: map[int]bool{},
		Empty:   "no expense data",
	}
	for j := range p.Categories {
		v.Numeric[j+1] = true
	}
	for i, month := range p.Months {
		row := []string{month}
		for _, cell := range p.Cells[i] {
			row = append(row, cell.StringFixed(2))
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

var currencyCmd = &cobra.Command{
	Use:   "currency",
	Short: "Show or change the ledger's base currency",
}

var currencyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the base currency",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		base, err := current.svc.BaseCurrency(cmd.Context(), current.sess)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printf(out, "%s", renderPairs([][2]string{
			{"Base currency", base},
			{"Example", currency.Format(decimal.RequireFromString("1234.50"), base)},
		}))
		printf(out, "%s", renderView(ratesView(current.currencies, base)))
		return nil
	},
}

func ratesView(n *currency.Normalizer, base string) view {
	v := view{
		Title:   "Rates in " + base,
		Headers: []string{"Code", "1 unit"},
		Numeric: map[int]bool{1: true},
	}
	one := decimal.NewFromInt(1)
	for _, code := range n.Codes() {
		v.Rows = append(v.Rows, []string{code, currency.Format(n.Convert(one, code, base), base)})
	}
	return v
}

var currencySetCmd = &cobra.Command{
	Use:   "set CODE",
	Short: "Change the base currency used for totals and reports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.svc.SetBaseCurrency(cmd.Context(), current.sess, args[0]); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "%s base currency %s\n", goodStyle.Render("set"), strings.ToUpper(strings.TrimSpace(args[0])))
		return nil
	},
}

func init() {
	currencyCmd.AddCommand(currencyShowCmd, currencySetCmd)
	rootCmd.AddCommand(pivotCmd, currencyCmd)
}
