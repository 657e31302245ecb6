package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdv-commerce/storefront/internal/checkout"
	"github.com/pdv-commerce/storefront/pkg/money"
)

var (
	checkoutNote       string
	checkoutDeliverAt  string
	checkoutCardHolder string
	checkoutCardNumber string
	checkoutExpiry     string
	checkoutCVV        string
	checkoutDocument   string
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Turn the cart into orders",
	Long: `Walk the cart through checkout: delivery details, a simulated
card payment and one order per cart line. Lines the marketplace rejects
are reported; the rest become orders.`,
	Args: cobra.NoArgs,
	RunE: runCheckout,
}

func init() {
	checkoutCmd.Flags().StringVar(&checkoutNote, "note", "", "Delivery note for the whole purchase")
	checkoutCmd.Flags().StringVar(&checkoutDeliverAt, "deliver-at", "", "Requested delivery time (RFC3339)")
	checkoutCmd.Flags().StringVar(&checkoutCardHolder, "card-holder", "", "Name on the card")
	checkoutCmd.Flags().StringVar(&checkoutCardNumber, "card-number", "", "Card number")
	checkoutCmd.Flags().StringVar(&checkoutExpiry, "expiry", "", "Card expiry (MM/YY)")
	checkoutCmd.Flags().StringVar(&checkoutCVV, "cvv", "", "Card verification code")
	checkoutCmd.Flags().StringVar(&checkoutDocument, "document", "", "Payer document id (CPF/CNPJ)")
}

func runCheckout(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	var deliveryAt time.Time
	if checkoutDeliverAt != "" {
		deliveryAt, err = time.Parse(time.RFC3339, checkoutDeliverAt)
		if err != nil {
			return fmt.Errorf("invalid --deliver-at value %q", checkoutDeliverAt)
		}
	}

	session, err := checkout.NewSession(a.cartStore, a.auth, a.gateway, a.cfg.Checkout, a.logg)
	if err != nil {
		return err
	}

	if err := session.Begin(); err != nil {
		if session.Step() == checkout.StepLoginRequired {
			return fmt.Errorf("sign in first: storefront login <email>")
		}
		return err
	}

	fmt.Printf("Checking out %d items, total %s\n", a.cartStore.ItemCount(), money.FormatBRL(a.cartStore.Total()))

	if err := session.SubmitDelivery(checkoutNote, deliveryAt); err != nil {
		return err
	}
	if err := session.SubmitPayment(checkout.PaymentDetails{
		CardHolder: checkoutCardHolder,
		CardNumber: checkoutCardNumber,
		Expiry:     checkoutExpiry,
		CVV:        checkoutCVV,
		DocumentID: checkoutDocument,
	}); err != nil {
		return err
	}

	fmt.Println("Processing payment...")
	lines := a.cartStore.Lines()
	outcome, err := session.Dispatch(ctx)

	for _, order := range outcome.Succeeded {
		fmt.Printf("  order #%d placed (product %d x%d)\n", order.OrderID, order.ProductID, order.Quantity)
	}
	for _, failure := range outcome.Failed {
		fmt.Printf("  %s failed: %v\n", failure.ProductName, failure.Reason)
	}
	if err != nil {
		return err
	}

	confirmed, err := a.orders.ConfirmPayment(ctx, outcome.Succeeded, lines)
	if err != nil {
		return err
	}
	for _, failure := range confirmed.Failed {
		fmt.Printf("  order for %s could not be confirmed: %v\n", failure.ProductName, failure.Reason)
	}

	if err := a.saveCart(ctx); err != nil {
		return err
	}
	fmt.Printf("Purchase confirmed: %d order(s).\n", len(confirmed.Succeeded))
	return nil
}
