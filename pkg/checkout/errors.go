package checkout

import (
	"fmt"
	"net/http"

	"github.com/example/foodshop/pkg/repository"
)

type Kind int

const (
	// KindInput errors are caused by the client's request and are safe to
	// show to the customer.
	KindInput Kind = iota
	KindConfiguration
	KindPersistence
	KindProvider
)

const (
	CodeInvalidEmail         = "invalid_email"
	CodeEmptyCart            = "empty_cart"
	CodeInvalidQuantity      = "invalid_quantity"
	CodeInvalidShipping      = "invalid_shipping"
	CodeProductNotFound      = "product_not_found"
	CodeInsufficientStock    = "insufficient_stock"
	CodePaymentNotConfigured = "payment_not_configured"
	CodeOrderCreateFailed    = "order_create_failed"
	CodePaymentFailed        = "payment_failed"
)

// Error is returned by Service.Checkout. Params carry the values a client
// needs to render a localized message; DebugInfo carries driver detail for
// persistence failures.
type Error struct {
	Kind      Kind
	Code      string
	Message   string
	Params    map[string]interface{}
	DebugInfo map[string]interface{}
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) HTTPStatus() int {
	if e.Kind == KindInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func inputError(code, message string, params map[string]interface{}) *Error {
	return &Error{Kind: KindInput, Code: code, Message: message, Params: params}
}

func persistenceError(err error) *Error {
	debug := map[string]interface{}{"message": err.Error()}
	if code, msg, ok := repository.ErrorDetail(err); ok {
		debug["code"] = code
		debug["details"] = msg
		debug["hint"] = hintFor(code)
	}
	return &Error{
		Kind:      KindPersistence,
		Code:      CodeOrderCreateFailed,
		Message:   "failed to create order",
		DebugInfo: debug,
		Err:       err,
	}
}

func hintFor(code uint16) string {
	switch code {
	case 1062:
		return "duplicate key: the order id already exists"
	case 1406:
		return "a value is longer than its column allows"
	case 1452:
		return "a referenced row does not exist"
	case 1146:
		return "table missing: run the schema migration"
	default:
		return ""
	}
}
