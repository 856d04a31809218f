package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	ackAlertID     string
	resolveAlertID string
)

var ackCmd = &cobra.Command{
	Use:   "ack",
	Short: "Acknowledge an active alert",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ackAlertID == "" {
			return fmt.Errorf("--id is required")
		}
		return getApp().Acknowledge(cmd.Context(), ackAlertID)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve an alert",
	RunE: func(cmd *cobra.Command, args []string) error {
		if resolveAlertID == "" {
			return fmt.Errorf("--id is required")
		}
		return getApp().Resolve(cmd.Context(), resolveAlertID)
	},
}

func init() {
	ackCmd.Flags().StringVar(&ackAlertID, "id", "", "Alert id")
	resolveCmd.Flags().StringVar(&resolveAlertID, "id", "", "Alert id")
}
