package cli

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/pharmstock/internal/inventory"
)

// MovementOptions holds flags for the movement add command.
type MovementOptions struct {
	*RootOptions
	Type string // IN or OUT, any case
}

// NewMovementCommand creates the movement command group.
func NewMovementCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movement",
		Short: "Record and list stock movements",
	}

	cmd.AddCommand(newMovementAddCommand(rootOpts))
	cmd.AddCommand(newMovementListCommand(rootOpts))

	return cmd
}

func newMovementAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MovementOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <product-id> <quantity>",
		Short: "Record a stock movement",
		Long: `Record stock entering (IN) or leaving (OUT) for a product.

An OUT movement rewrites the product's quantity to the declared
quantity minus every OUT recorded so far.

Examples:
  pharmstock movement add 3 2
  pharmstock movement add 3 10 --type IN
  pharmstock movement add 3 0,5`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMovementAdd(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", string(inventory.MovementOut), "movement type (IN|OUT)")

	return cmd
}

func runMovementAdd(opts *MovementOptions, idArg, qtyArg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	productID, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		_ = formatter.Error(ErrCodeBadArgument, fmt.Sprintf("product id must be an integer, got %q", idArg), nil)
		return WrapExitError(ExitFailure, ErrCodeBadArgument, err)
	}

	typ, err := inventory.ParseMovementType(opts.Type)
	if err != nil {
		return formatter.ReportError(err)
	}

	qty, err := inventory.ParseQuantity(qtyArg)
	if err != nil {
		return formatter.ReportError(err)
	}

	st, err := opts.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	m, err := st.AddMovement(cmd.Context(), productID, typ, qty)
	if err != nil {
		opts.Log.Warn().Err(err).Int64("product_id", productID).Msg("add movement rejected")
		return formatter.ReportError(err)
	}

	return formatter.Done(m, "movement %d recorded: %s %s for product %d",
		m.ID, m.Type, inventory.FormatQuantity(m.Quantity), m.ProductID)
}

func newMovementListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List movements, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMovementList(rootOpts, cmd)
		},
	}
}

func runMovementList(opts *RootOptions, cmd *cobra.Command) error {
	st, err := opts.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter := opts.formatter(cmd)

	lines, err := st.ListMovements(cmd.Context())
	if err != nil {
		return formatter.ReportError(err)
	}

	if opts.Format == "json" {
		return formatter.Success(lines)
	}

	rows := lo.Map(lines, func(l inventory.MovementLine, _ int) []string {
		return []string{
			strconv.FormatInt(l.ID, 10),
			l.CreatedAt,
			l.ProductName,
			string(l.Type),
			inventory.FormatQuantity(l.Quantity),
			l.ProductQuantity,
		}
	})
	return formatter.Table([]string{"ID", "DATE", "PRODUCT", "TYPE", "QUANTITY", "STOCK"}, rows)
}
