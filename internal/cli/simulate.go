package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"carewatch/internal/app"
)

var (
	simulateScenario string
	simulateSeed     int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted pose scenario through the detection pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateScenario == "" {
			return fmt.Errorf("--scenario is required (available: %s)", strings.Join(app.Scenarios(), ", "))
		}

		opts := app.SimulateOptions{
			Scenario: simulateScenario,
			Seed:     simulateSeed,
		}
		return getApp().Simulate(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateScenario, "scenario", "", "Scenario name to replay")
	simulateCmd.Flags().Int64Var(&simulateSeed, "seed", 0, "Vitals random seed (0 uses the clock)")
}
