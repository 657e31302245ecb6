package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdv-commerce/storefront/internal/cart"
	"github.com/pdv-commerce/storefront/pkg/money"
)

var (
	cartAddQty   int
	cartAddNote  string
	cartAddGuard bool
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartAdd,
}

var cartRemoveCmd = &cobra.Command{
	Use:   "rm <line-id>",
	Short: "Remove a cart line",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartRemove,
}

var cartQtyCmd = &cobra.Command{
	Use:   "qty <line-id> <quantity>",
	Short: "Set the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartQty,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart",
	Args:  cobra.NoArgs,
	RunE:  runCartShow,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE:  runCartClear,
}

func init() {
	cartAddCmd.Flags().IntVar(&cartAddQty, "qty", 1, "Quantity to add")
	cartAddCmd.Flags().StringVar(&cartAddNote, "note", "", "Customization note for this line")
	cartAddCmd.Flags().BoolVar(&cartAddGuard, "guard", false, "Refuse to exceed the advertised stock")
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartQtyCmd)
	cartCmd.AddCommand(cartShowCmd)
	cartCmd.AddCommand(cartClearCmd)
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}
	if cartAddQty < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}

	product, err := a.products.Get(ctx, productID)
	if err != nil {
		return err
	}

	snapshot := product.Snapshot()
	var line cart.Line
	if cartAddGuard {
		guard := cart.NewStockGuard(a.cartStore)
		for i := 0; i < cartAddQty; i++ {
			line, err = guard.AddItem(snapshot, cartAddNote)
			if err != nil {
				return err
			}
		}
	} else {
		for i := 0; i < cartAddQty; i++ {
			line, err = a.cartStore.AddItem(snapshot, cartAddNote)
			if err != nil {
				return err
			}
		}
	}

	if err := a.saveCart(ctx); err != nil {
		return err
	}
	fmt.Printf("Added %d x %s (line %s)\n", cartAddQty, product.Name, line.LineID)
	return nil
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	a.cartStore.RemoveItem(args[0])
	if err := a.saveCart(ctx); err != nil {
		return err
	}
	fmt.Println("Line removed.")
	return nil
}

func runCartQty(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}

	a.cartStore.SetQuantity(args[0], qty)
	if err := a.saveCart(ctx); err != nil {
		return err
	}
	fmt.Println("Quantity updated.")
	return nil
}

func runCartShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	lines := a.cartStore.Lines()
	if len(lines) == 0 {
		fmt.Println("The cart is empty.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LINE\tPRODUCT\tQTY\tUNIT\tSUBTOTAL\tNOTE")
	for _, line := range lines {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			line.LineID, line.ProductName, line.Quantity,
			money.FormatBRL(line.UnitPrice), money.FormatBRL(line.Subtotal()),
			line.CustomizationNote)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d items, total %s\n", a.cartStore.ItemCount(), money.FormatBRL(a.cartStore.Total()))
	return nil
}

func runCartClear(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	a.cartStore.Clear()
	if err := a.clearCartSnapshot(ctx); err != nil {
		return err
	}
	fmt.Println("Cart cleared.")
	return nil
}
