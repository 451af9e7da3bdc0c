package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/croplog/croplog/internal/record"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Crop     string
	Quantity float64
	Unit     string
	Notes    string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a crop entry",
		Long: `Record a crop entry against the remote service.

When the service is reachable the entry is delivered immediately;
otherwise it is queued locally and delivered on the next sync.

Example:
  croplog add --crop Corn --quantity 12 --unit kg
  croplog add --crop Wheat --quantity 3.5 --unit t --notes "east field"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Crop, "crop", "", "crop name (required)")
	cmd.Flags().Float64Var(&opts.Quantity, "quantity", 0, "quantity (required)")
	cmd.Flags().StringVar(&opts.Unit, "unit", "", "quantity unit, e.g. kg (required)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("crop")
	_ = cmd.MarkFlagRequired("quantity")
	_ = cmd.MarkFlagRequired("unit")

	return cmd
}

func runAdd(cmd *cobra.Command, opts *AddOptions) error {
	if opts.Quantity <= 0 {
		return NewExitError(ExitCommandError, "quantity must be positive")
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	opID, err := a.engine.EnqueueCreate(ctx, record.Fields{
		CropName: opts.Crop,
		Quantity: opts.Quantity,
		Unit:     opts.Unit,
		Notes:    opts.Notes,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to enqueue record", err)
	}

	a.engine.Drain(ctx)
	return reportOutcome(cmd, opts.RootOptions, a, opID, "record")
}

// reportOutcome prints the post-enqueue state shared by add/update/remove.
func reportOutcome(cmd *cobra.Command, rootOpts *RootOptions, a *app, opID, noun string) error {
	snap := a.engine.Status()

	f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	if done, err := f.JSON(map[string]any{
		"operationId": opID,
		"online":      snap.Online,
		"pending":     snap.PendingCount,
	}); done {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case snap.PendingCount == 0:
		fmt.Fprintf(out, "%s synced (operation %s)\n", noun, opID)
	case snap.Online:
		fmt.Fprintf(out, "%s accepted; %d operation(s) still pending\n", noun, snap.PendingCount)
	default:
		fmt.Fprintf(out, "%s queued while offline; %d operation(s) pending\n", noun, snap.PendingCount)
	}
	return nil
}
