package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdv-commerce/storefront/internal/products"
	"github.com/pdv-commerce/storefront/pkg/money"
)

var (
	productsSellerID int64
	productsAll      bool
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List storefront products",
	Args:  cobra.NoArgs,
	RunE:  runProductsList,
}

var productsShowCmd = &cobra.Command{
	Use:   "show <product-id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductsShow,
}

func init() {
	productsListCmd.Flags().Int64Var(&productsSellerID, "seller", 0, "Filter by seller id")
	productsListCmd.Flags().BoolVar(&productsAll, "all", false, "Include products not sold online")
	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsShowCmd)
}

func runProductsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	list, err := a.products.List(ctx, products.ListFilter{
		SellerID:       productsSellerID,
		StorefrontOnly: !productsAll,
	})
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Println("No products found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK\tSELLER")
	for _, p := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			p.ID, p.Name, money.FormatBRL(p.Price), p.Quantity, p.SellerName)
	}
	return w.Flush()
}

func runProductsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}

	product, err := a.products.Get(ctx, productID)
	if err != nil {
		return err
	}

	fmt.Printf("%s (#%d)\n", product.Name, product.ID)
	if product.Description != "" {
		fmt.Println(product.Description)
	}
	fmt.Printf("Price: %s\n", money.FormatBRL(product.Price))
	fmt.Printf("Stock: %d\n", product.Quantity)
	fmt.Printf("Seller: %s (#%d)\n", product.SellerName, product.SellerID)
	if product.ImageURL != "" {
		fmt.Printf("Image: %s\n", product.ImageURL)
	}
	return nil
}
