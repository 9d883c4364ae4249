package cli

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/pharmstock/internal/inventory"
)

// RemainingResult is the json payload of the remaining command.
type RemainingResult struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Remaining string `json:"remaining"`
}

// NewInventoryCommand creates the inventory command.
func NewInventoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Show stock per product",
		Long: `Show every product with its stored quantity, the total of its OUT
movements and what remains of the declared quantity.

Products declared with non-numeric text show "-" as remaining.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInventory(rootOpts, cmd)
		},
	}
}

func runInventory(opts *RootOptions, cmd *cobra.Command) error {
	st, err := opts.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter := opts.formatter(cmd)

	lines, err := st.GetInventory(cmd.Context())
	if err != nil {
		return formatter.ReportError(err)
	}

	if opts.Format == "json" {
		return formatter.Success(lines)
	}

	rows := lo.Map(lines, func(l inventory.InventoryLine, _ int) []string {
		remaining := "-"
		if l.Remaining.Valid {
			remaining = inventory.FormatQuantity(l.Remaining.Decimal)
		}
		return []string{
			strconv.FormatInt(l.ProductID, 10),
			l.Name,
			l.Quantity,
			inventory.FormatQuantity(l.TotalOut),
			remaining,
		}
	})
	return formatter.Table([]string{"ID", "NAME", "QUANTITY", "OUT", "REMAINING"}, rows)
}

// NewRemainingCommand creates the remaining command.
func NewRemainingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remaining <product-id>",
		Short: "Show IN minus OUT for one product",
		Long: `Show the sum of IN movements minus the sum of OUT movements for a
product. The declared quantity is not part of this figure.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemaining(rootOpts, args[0], cmd)
		},
	}
}

func runRemaining(opts *RootOptions, idArg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	productID, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		_ = formatter.Error(ErrCodeBadArgument, fmt.Sprintf("product id must be an integer, got %q", idArg), nil)
		return WrapExitError(ExitFailure, ErrCodeBadArgument, err)
	}

	st, err := opts.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := st.GetProduct(cmd.Context(), productID)
	if err != nil {
		return formatter.ReportError(err)
	}

	remaining, err := st.RemainingForProduct(cmd.Context(), productID)
	if err != nil {
		return formatter.ReportError(err)
	}

	if opts.Format == "json" {
		return formatter.Success(RemainingResult{
			ProductID: p.ID,
			Name:      p.Name,
			Remaining: inventory.FormatQuantity(remaining),
		})
	}

	fmt.Fprintf(formatter.Writer, "%s: %s\n", p.Name, inventory.FormatQuantity(remaining))
	return nil
}
