package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/croplog/croplog/internal/record"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List records from the service",
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

			if !a.monitor.Online() {
				return NewExitError(ExitFailure, "record service unreachable; try 'croplog status' for queued work")
			}

			recs, err := a.client.GetAll(ctx)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to list records", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if done, err := f.JSON(recs); done {
				return err
			}
			renderRecords(cmd.OutOrStdout(), recs)
			return nil
		},
	}

	return cmd
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "get <record-id>",
		Short:         "Show a single record",
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

			if !a.monitor.Online() {
				return NewExitError(ExitFailure, "record service unreachable")
			}

			rec, err := a.client.GetByID(ctx, args[0])
			if errors.Is(err, record.ErrNotFound) {
				return NewExitError(ExitFailure, "record not found: "+args[0])
			}
			if err != nil {
				return WrapExitError(ExitFailure, "failed to fetch record", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if done, err := f.JSON(rec); done {
				return err
			}
			renderRecords(cmd.OutOrStdout(), []record.Record{rec})
			return nil
		},
	}

	return cmd
}
