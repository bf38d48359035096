package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bessopt/simulator"
)

var (
	genShape     string
	genIntervals int
	genSeed      int64
	genOut       string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic price series as CSV",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genShape, "shape", "sawtooth", "series shape: flat, sawtooth, duck or spiky")
	generateCmd.Flags().IntVar(&genIntervals, "intervals", 288, "number of intervals")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 1, "random seed for the spiky shape")
	generateCmd.Flags().StringVar(&genOut, "out", "", "output file, stdout when empty")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	series, err := simulator.Generate(genShape, genIntervals, genSeed)
	if err != nil {
		return err
	}
	if genOut == "" {
		return writeSeries(cmd.OutOrStdout(), series)
	}
	f, err := os.Create(genOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", genOut, err)
	}
	err = writeSeries(f, series)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func writeSeries(w io.Writer, series []float64) error {
	for _, p := range series {
		if _, err := fmt.Fprintln(w, strconv.FormatFloat(p, 'f', -1, 64)); err != nil {
			return err
		}
	}
	return nil
}
