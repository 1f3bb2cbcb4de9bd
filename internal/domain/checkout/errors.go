package checkout

import (
	"fmt"
	"strings"

	"github.com/gastroshop/storefront/internal/domain/shared"
)

// Error codes
const (
	CodeReconciliationFailed   = "RECONCILIATION_FAILED"
	CodeOrderCreationFailed    = "ORDER_CREATION_FAILED"
	CodeCheckoutInProgress     = "CHECKOUT_IN_PROGRESS"
	CodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	CodePaymentFailed          = "PAYMENT_FAILED"
)

// Messages shown to the shopper
const (
	MsgReconciliationFailed = "Some products in your cart are no longer available. Please refresh the cart and try again."
	MsgOrderCreationFailed  = "We could not place your order. Please try again."
	MsgDeferredPayment      = "Your order is confirmed. Payment can be completed later."
	MsgStatusUnknown        = "We could not check the payment status right now."
	MsgPaymentFailed        = "The payment did not go through. You can try again."
	MsgPaymentCanceled      = "The payment was canceled. You can try again."
)

var (
	ErrCheckoutInProgress     = shared.NewDomainError(CodeCheckoutInProgress, "A checkout is already in progress")
	ErrAuthenticationRequired = shared.NewDomainError(CodeAuthenticationRequired, "Please sign in to place an order")
	ErrEmptyCart              = shared.NewValidationError("Your cart is empty",
		shared.FieldError{Field: "cart", Message: "must contain at least one item"})
)

// ReconciliationError lists every cart line that could not be matched to a catalog product
type ReconciliationError struct {
	*shared.DomainError
	Unresolved []string
}

// NewReconciliationError creates a reconciliation error for the unresolved composite ids
func NewReconciliationError(unresolved []string) *ReconciliationError {
	return &ReconciliationError{
		DomainError: shared.NewDomainError(CodeReconciliationFailed, MsgReconciliationFailed),
		Unresolved:  unresolved,
	}
}

// Error includes the unresolved ids
func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s: unresolved %s", e.Message, strings.Join(e.Unresolved, ", "))
}

// Unwrap exposes the embedded domain error to errors.As
func (e *ReconciliationError) Unwrap() error {
	return e.DomainError
}

// NewOrderCreationError wraps a failed order submission
func NewOrderCreationError(cause error) *shared.DomainError {
	return shared.WrapDomainError(CodeOrderCreationFailed, MsgOrderCreationFailed, cause)
}

// NewInvalidTransitionError reports an operation attempted from the wrong state
func NewInvalidTransitionError(from, to State) *shared.DomainError {
	return shared.NewDomainError(shared.ErrInvalidState.Code,
		fmt.Sprintf("cannot move checkout from %s to %s", from, to))
}
