package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Deliver queued operations now",
		Long: `Run one drain pass against the record service: every queued operation
is attempted once, in the order it was enqueued. Operations that keep
failing are retried on later passes until the attempt cap drops them.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			before := a.engine.Status()
			if !before.Online {
				return NewExitError(ExitFailure,
					fmt.Sprintf("record service unreachable; %d operation(s) pending", before.PendingCount))
			}

			a.engine.Drain(ctx)
			after := a.engine.Status()
			dropped := int(a.dropped.Load())
			delivered := before.PendingCount - after.PendingCount - dropped

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if done, err := f.JSON(map[string]any{
				"delivered": delivered,
				"dropped":   dropped,
				"pending":   after.PendingCount,
			}); done {
				return err
			}

			out := cmd.OutOrStdout()
			if before.PendingCount == 0 {
				fmt.Fprintln(out, "nothing to sync")
				return nil
			}
			fmt.Fprintf(out, "synced %d operation(s), %d still pending\n", delivered, after.PendingCount)
			if dropped > 0 {
				fmt.Fprintf(out, "dropped %d operation(s) after repeated failures; see logs\n", dropped)
			}
			return nil
		},
	}

	return cmd
}
