package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"finledger/internal/amqp"
	"finledger/internal/cli"
	"finledger/internal/config"
	"finledger/internal/core"
	"finledger/internal/currency"
	"finledger/internal/ledger"
	applog "finledger/internal/log"
	"finledger/internal/services"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagUser    string
	flagDataDir string
	flagToday   string
	flagVerbose bool
)

// app is the state shared by every subcommand, built once per invocation.
type app struct {
	svc        *ledger.Service
	sess       ledger.Session
	events     *amqp.Client
	currencies *currency.Normalizer
	unrated    map[string]struct{}
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Personal finance ledger with recurring entries, goals and badges",
	Long: `ledger keeps one SQLite ledger per user. Records are append-only,
recurring rules are materialized on demand, and goals, streaks and
achievements are tracked alongside.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupApp,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if current != nil && current.events != nil {
			_ = current.events.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "ledger namespace (default $LEDGER_USER)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding per-user databases (default $DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "treat this date (YYYY-MM-DD) as today")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log at the configured LOG_LEVEL instead of warn")
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()
	cfg := config.Load()
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := "warn"
	if flagVerbose {
		level = cfg.LogLevel
	}
	logger := cli.SetupLogger(level, applog.ComponentCLI)

	user := flagUser
	if user == "" {
		user = os.Getenv("LEDGER_USER")
	}
	if user == "" {
		return fmt.Errorf("no user given: pass --user or set LEDGER_USER")
	}

	today := core.Today()
	if flagToday != "" {
		d, err := core.ParseDate(flagToday)
		if err != nil {
			return fmt.Errorf("--today: %w", err)
		}
		today = d
	}

	store, err := cli.OpenStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a := &app{sess: ledger.NewSession(user, today), unrated: map[string]struct{}{}}
	normalizer, err := cli.NewNormalizer(cfg, currency.WithFallbackHook(a.noteUnrated))
	if err != nil {
		return fmt.Errorf("load rates: %w", err)
	}
	a.currencies = normalizer
	logger.Debug("Ledger session ready", applog.FieldUser, user, "today", today.String(), "rates", len(normalizer.Codes()))
	var publisher services.EventPublisher
	if client := cli.InitAMQP(logger, cfg); client != nil {
		a.events = client
		publisher = client
	}
	a.svc = ledger.NewService(store, normalizer, publisher)

	if err := store.EnsureNamespace(cmd.Context(), user); err != nil {
		return err
	}
	current = a
	return nil
}

func (a *app) noteUnrated(_ context.Context, _ decimal.Decimal, from, to string) {
	a.unrated[from] = struct{}{}
	a.unrated[to] = struct{}{}
}

// fallbackNotice warns when totals include amounts counted 1:1 because
// their currency has no rate.
func (a *app) fallbackNotice() string {
	n := a.currencies.Fallbacks()
	if n == 0 {
		return ""
	}
	var codes []string
	for code := range a.unrated {
		if !a.currencies.Known(code) {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)
	return warnStyle.Render(fmt.Sprintf("  %d amount(s) counted unconverted, no rate for %s",
		n, strings.Join(codes, ", "))) + "\n"
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
