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
	"github.com/kilianp07/bessopt/infra/logger"
)

var calibrateTarget float64

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Search the throughput cost that meets the cycle budget",
	RunE:  runCalibrate,
}

func init() {
	calibrateCmd.Flags().Float64Var(&calibrateTarget, "target-cycles", 0, "cycle budget, overrides the configuration")
	rootCmd.AddCommand(calibrateCmd)
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("target-cycles") {
		cfg.Calibration.TargetCycles = calibrateTarget
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

	cost, err := svc.Calibrate(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("throughput cost %.4f $/MWh for %.3f cycles\n", cost, cfg.Calibration.TargetCycles)
	return nil
}
