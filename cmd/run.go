package cmd

import (
	"context"
	"fmt"

	"postrelay/internal/model"

	"github.com/spf13/cobra"
)

// runCmd executes one polling cycle and prints the outcome.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one fetch-diff-deliver cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		r, closeStore, err := buildRunner(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		out, runErr := r.Run(context.Background())
		fmt.Fprintf(cmd.OutOrStdout(), "status=%s items=%d newest=%s message=%q\n",
			out.Status, out.ItemsProcessed, out.NewestItemID, out.Message)
		// rate_limited is an expected outcome, not a failure exit.
		if out.Status == model.RunError {
			return runErr
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
