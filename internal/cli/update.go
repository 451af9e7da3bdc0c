package cli

import (
	"github.com/spf13/cobra"

	"github.com/croplog/croplog/internal/record"
)

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	Crop     string
	Quantity float64
	Unit     string
	Notes    string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <record-id>",
		Short: "Update fields of an existing record",
		Long: `Update fields of an existing record. Only the flags you pass are
changed; everything else is left as the service has it.

Example:
  croplog update rec-42 --quantity 14
  croplog update rec-42 --crop Maize --notes "re-weighed"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Crop, "crop", "", "new crop name")
	cmd.Flags().Float64Var(&opts.Quantity, "quantity", 0, "new quantity")
	cmd.Flags().StringVar(&opts.Unit, "unit", "", "new quantity unit")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "new notes")

	return cmd
}

func runUpdate(cmd *cobra.Command, opts *UpdateOptions, recordID string) error {
	partial := partialFromFlags(cmd, opts)
	if partial.IsZero() {
		return NewExitError(ExitCommandError, "nothing to update: pass at least one of --crop, --quantity, --unit, --notes")
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	opID, err := a.engine.EnqueueUpdate(ctx, recordID, partial)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to enqueue update", err)
	}

	a.engine.Drain(ctx)
	return reportOutcome(cmd, opts.RootOptions, a, opID, "update")
}

// partialFromFlags builds the partial update from the flags that were
// actually set, so an explicit zero value (--notes "" clears notes) is
// distinguishable from an omitted flag.
func partialFromFlags(cmd *cobra.Command, opts *UpdateOptions) record.Partial {
	var partial record.Partial
	if cmd.Flags().Changed("crop") {
		partial.CropName = &opts.Crop
	}
	if cmd.Flags().Changed("quantity") {
		partial.Quantity = &opts.Quantity
	}
	if cmd.Flags().Changed("unit") {
		partial.Unit = &opts.Unit
	}
	if cmd.Flags().Changed("notes") {
		partial.Notes = &opts.Notes
	}
	return partial
}
