package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdv-commerce/storefront/internal/orders"
	"github.com/pdv-commerce/storefront/pkg/enums"
	"github.com/pdv-commerce/storefront/pkg/money"
)

var (
	ordersStatus  string
	ordersProduct int64
	ordersSeller  int64
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Track placed orders",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your orders",
	Args:  cobra.NoArgs,
	RunE:  runOrdersList,
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersShow,
}

func init() {
	ordersListCmd.Flags().StringVar(&ordersStatus, "status", "", "Only orders in this status")
	ordersListCmd.Flags().Int64Var(&ordersProduct, "product", 0, "Only orders for this product id")
	ordersListCmd.Flags().Int64Var(&ordersSeller, "seller", 0, "Only orders from this seller id")
	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersShowCmd)
}

func runOrdersList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	filter := orders.ListFilter{ProductID: ordersProduct, SellerID: ordersSeller}
	if ordersStatus != "" {
		status, err := enums.ParseOrderStatus(ordersStatus)
		if err != nil {
			return err
		}
		filter.Status = status
	}

	list, err := a.orders.List(ctx, filter)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No orders yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRODUCT\tQTY\tTOTAL\tSTATUS\tPLACED")
	for _, o := range list {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
			o.ID, o.ProductName, o.Quantity,
			money.FormatBRL(o.Total), o.Status.Label(), money.FormatDate(o.PlacedAt))
	}
	return w.Flush()
}

func runOrdersShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	orderID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid order id %q", args[0])
	}

	order, err := a.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}

	fmt.Printf("Order #%d [%s]\n", order.ID, order.Status.Label())
	fmt.Printf("Product: %s x%d\n", order.ProductName, order.Quantity)
	fmt.Printf("Total: %s\n", money.FormatBRL(order.Total))
	fmt.Printf("Placed: %s\n", money.FormatDateTime(order.PlacedAt))
	if order.Note != "" {
		fmt.Printf("Note: %s\n", order.Note)
	}
	return nil
}
