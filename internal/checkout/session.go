package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pdv-commerce/storefront/internal/cart"
	"github.com/pdv-commerce/storefront/internal/orders"
	"github.com/pdv-commerce/storefront/pkg/config"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
	"github.com/pdv-commerce/storefront/pkg/logger"
)

// Step is the checkout state. Transitions are strictly sequential;
// Cancelled and LoginRequired are terminal exits.
type Step string

const (
	StepReviewingCart           Step = "reviewing_cart"
	StepEnteringDeliveryDetails Step = "entering_delivery_details"
	StepEnteringPayment         Step = "entering_payment"
	StepAwaitingDispatch        Step = "awaiting_dispatch"
	StepConfirmed               Step = "confirmed"
	StepCancelled               Step = "cancelled"
	StepLoginRequired           Step = "login_required"
)

// PaymentDetails is the simulated card entry. Every field must be
// filled; nothing beyond presence is checked and nothing is persisted.
type PaymentDetails struct {
	CardHolder string `validate:"required"`
	CardNumber string `validate:"required"`
	Expiry     string `validate:"required"`
	CVV        string `validate:"required"`
	DocumentID string `validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// authChecker is the slice of the auth service the checkout needs.
type authChecker interface {
	IsAuthenticated() bool
	UserID() int64
}

// dispatcher matches the order dispatch gateway.
type dispatcher interface {
	Dispatch(ctx context.Context, req orders.DispatchRequest) (orders.Outcome, error)
}

// cartAccess is the slice of the cart store the checkout needs.
type cartAccess interface {
	Len() int
	Lines() []cart.Line
	Clear()
}

// Session drives one checkout from cart review to dispatch. It is safe
// for concurrent use, though a checkout is naturally single-threaded.
type Session struct {
	mu sync.Mutex

	cart    cartAccess
	auth    authChecker
	gateway dispatcher
	cfg     config.CheckoutConfig
	logg    *logger.Logger

	step         Step
	deliveryNote string
	deliveryAt   time.Time
	payment      PaymentDetails
	outcome      orders.Outcome
}

func NewSession(cartStore cartAccess, auth authChecker, gateway dispatcher, cfg config.CheckoutConfig, logg *logger.Logger) (*Session, error) {
	if cartStore == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store is required")
	}
	if auth == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth checker is required")
	}
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "dispatch gateway is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &Session{
		cart:    cartStore,
		auth:    auth,
		gateway: gateway,
		cfg:     cfg,
		logg:    logg,
		step:    StepReviewingCart,
	}, nil
}

// Step returns the current checkout state.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Outcome returns the dispatch result once the session is confirmed.
func (s *Session) Outcome() orders.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Begin moves the session from cart review into the delivery step. An
// unauthenticated buyer lands in LoginRequired with the cart untouched.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepReviewingCart {
		return s.transitionError("begin")
	}
	if s.cart.Len() == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if !s.auth.IsAuthenticated() {
		s.step = StepLoginRequired
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to check out")
	}

	s.step = StepEnteringDeliveryDetails
	return nil
}

// SubmitDelivery records the optional delivery note and timestamp and
// advances to payment entry.
func (s *Session) SubmitDelivery(note string, deliveryAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepEnteringDeliveryDetails {
		return s.transitionError("submit delivery")
	}

	s.deliveryNote = note
	s.deliveryAt = deliveryAt
	s.step = StepEnteringPayment
	return nil
}

// SubmitPayment validates the card entry and arms the dispatch. No
// transition happens when validation fails.
func (s *Session) SubmitPayment(details PaymentDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepEnteringPayment {
		return s.transitionError("submit payment")
	}
	if err := validate.Struct(details); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "all payment fields are required")
	}

	s.payment = details
	s.step = StepAwaitingDispatch
	return nil
}

// Back returns from payment entry to the delivery step.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepEnteringPayment {
		return s.transitionError("go back")
	}
	s.step = StepEnteringDeliveryDetails
	return nil
}

// Cancel abandons the checkout. The cart is left as it was.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.step {
	case StepReviewingCart, StepEnteringDeliveryDetails, StepEnteringPayment:
		s.step = StepCancelled
		return nil
	default:
		return s.transitionError("cancel")
	}
}

// Dispatch runs the simulated payment delay and then places one order
// per cart line. The cart is cleared only after the gateway has seen
// every line and at least one of them succeeded; when all lines fail
// the cart stays intact and the session returns to payment entry.
func (s *Session) Dispatch(ctx context.Context) (orders.Outcome, error) {
	s.mu.Lock()
	if s.step != StepAwaitingDispatch {
		defer s.mu.Unlock()
		return orders.Outcome{}, s.transitionError("dispatch")
	}
	lines := s.cart.Lines()
	req := orders.DispatchRequest{
		Lines:           lines,
		BuyerID:         s.auth.UserID(),
		DeliveryNote:    s.deliveryNote,
		DeliveryAt:      s.deliveryAt,
		DefaultSellerID: s.cfg.DefaultSellerID,
	}
	delay := s.cfg.PaymentDelay
	s.payment = PaymentDetails{}
	s.mu.Unlock()

	if err := s.simulatePayment(ctx, delay); err != nil {
		s.revertToPayment()
		return orders.Outcome{}, err
	}

	outcome, err := s.gateway.Dispatch(ctx, req)
	if err != nil {
		s.revertToPayment()
		return orders.Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.outcome = outcome
	if !outcome.AnySuccess() {
		s.step = StepEnteringPayment
		return outcome, pkgerrors.New(pkgerrors.CodeDependency, "no order line was accepted")
	}

	s.cart.Clear()
	s.step = StepConfirmed
	return outcome, nil
}

func (s *Session) simulatePayment(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return pkgerrors.Wrap(pkgerrors.CodeInternal, ctx.Err(), "payment simulation interrupted")
	case <-timer.C:
		return nil
	}
}

func (s *Session) revertToPayment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step == StepAwaitingDispatch {
		s.step = StepEnteringPayment
	}
}

func (s *Session) transitionError(action string) error {
	err := pkgerrors.New(pkgerrors.CodeStateConflict, "cannot "+action+" in the current checkout step")
	return err.WithDetails(map[string]any{"step": string(s.step)})
}
