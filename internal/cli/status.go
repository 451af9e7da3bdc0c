package cli

import (
	"github.com/spf13/cobra"

	"github.com/croplog/croplog/internal/status"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show connectivity and queued work",
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

			reporter := status.NewReporter(a.engine)
			snap := reporter.Read()
			pending := a.engine.Pending()

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if done, err := f.JSON(map[string]any{
				"online":         snap.Online,
				"pendingCount":   snap.PendingCount,
				"syncInProgress": snap.SyncInProgress,
				"pending":        pending,
			}); done {
				return err
			}

			renderStatus(cmd.OutOrStdout(), snap, pending)
			return nil
		},
	}

	return cmd
}
