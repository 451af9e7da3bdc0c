package cli

import (
	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <record-id>",
		Short: "Delete a record",
		Long: `Delete a record from the remote service. Like add and update, the
deletion is queued when offline and delivered on the next sync.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			opID, err := a.engine.EnqueueDelete(ctx, args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to enqueue delete", err)
			}

			a.engine.Drain(ctx)
			return reportOutcome(cmd, rootOpts, a, opID, "delete")
		},
	}

	return cmd
}
