package cli

import (
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/pharmstock/internal/inventory"
)

// NewProductCommand creates the product command group.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Declare and list products",
	}

	cmd.AddCommand(newProductAddCommand(rootOpts))
	cmd.AddCommand(newProductListCommand(rootOpts))

	return cmd
}

func newProductAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <quantity>",
		Short: "Declare a new product",
		Long: `Declare a new product with its initial quantity.

The quantity is free text ("10", "2,5", "2 boites"). Only numeric
quantities can later take OUT movements.

Examples:
  pharmstock product add "Doliprane 1000" 12
  pharmstock product add "Sérum physiologique" "2 boites"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductAdd(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runProductAdd(opts *RootOptions, name, quantity string, cmd *cobra.Command) error {
	st, err := opts.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter := opts.formatter(cmd)

	p, err := st.AddProduct(cmd.Context(), name, quantity)
	if err != nil {
		opts.Log.Warn().Err(err).Str("name", name).Msg("add product rejected")
		return formatter.ReportError(err)
	}

	return formatter.Done(p, "product %d added: %s (%s)", p.ID, p.Name, p.Quantity)
}

func newProductListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List products by name",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductList(rootOpts, cmd)
		},
	}
}

func runProductList(opts *RootOptions, cmd *cobra.Command) error {
	st, err := opts.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter := opts.formatter(cmd)

	products, err := st.ListProducts(cmd.Context())
	if err != nil {
		return formatter.ReportError(err)
	}

	if opts.Format == "json" {
		return formatter.Success(products)
	}

	rows := lo.Map(products, func(p inventory.Product, _ int) []string {
		return []string{strconv.FormatInt(p.ID, 10), p.Name, p.Quantity}
	})
	return formatter.Table([]string{"ID", "NAME", "QUANTITY"}, rows)
}
