package domain

import "errors"

// ErrStoreUnavailable marks key-value store failures
// (connectivity loss, timeouts), as opposed to business failures.
var ErrStoreUnavailable = errors.New("store unavailable")

type Failure int

const (
	FailureNone Failure = iota
	FailureInvalidQuantity
	FailureProductNotFound
	FailureItemNotFound
	FailureInsufficientStock
	FailureEmptyCart
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureInvalidQuantity:
		return "invalid_quantity"
	case FailureProductNotFound:
		return "product_not_found"
	case FailureItemNotFound:
		return "item_not_found"
	case FailureInsufficientStock:
		return "insufficient_stock"
	case FailureEmptyCart:
		return "empty_cart"
	default:
		return "unknown"
	}
}

// A Result is the outcome of a cart operation.
//
// OrderID is set only by a succeeded confirmation.
type Result struct {
	Failure Failure
	Message string
	OrderID string
}

func (r Result) Succeeded() bool {
	return r.Failure == FailureNone
}

func Success(msg string) Result {
	return Result{Failure: FailureNone, Message: msg}
}

func Fail(f Failure, msg string) Result {
	return Result{Failure: f, Message: msg}
}
