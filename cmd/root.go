package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bessopt/app"
	"github.com/kilianp07/bessopt/config"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "bessopt",
	Short:        "Battery dispatch optimizer",
	Long:         "Computes the revenue-optimal charge/discharge schedule for a battery against an energy price series.",
	RunE:         runOptimize,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	printSummary(res)
	return nil
}

func printSummary(res *model.Result) {
	s := res.Summary
	fmt.Printf("run %s: %d intervals on a %d-step lattice\n", res.RunID, len(res.Intervals), res.Settings.SocSteps)
	fmt.Printf("revenue %.2f $ (optimum %.2f)\n", s.Revenue, s.Optimum)
	fmt.Printf("cycles %.3f, throughput %.2f MWh\n", s.Cycles, s.ThroughputMWh)
	if s.ChargedMWh > 0 && s.DischargedMWh > 0 {
		fmt.Printf("bought %.2f MWh @ %.2f, sold %.2f MWh @ %.2f (spread %.2f $/MWh)\n",
			s.ChargedMWh, s.AvgChargePrice, s.DischargedMWh, s.AvgDischargePrice, s.Spread)
	}
	if res.Adjusted != nil {
		fmt.Printf("min-run pass (%d intervals): revenue %.2f $\n",
			res.Adjusted.MinRunIntervals, res.Adjusted.Revenue)
	}
}
