package service

// Category classifies service failures for transport mapping.
type Category string

// Failure categories.
const (
	CategoryValidation Category = "validation"
	CategoryNotFound   Category = "not_found"
	CategoryConflict   Category = "conflict"
	CategoryInternal   Category = "internal"
)

// Error is a categorized service failure. AmountPaid carries the frozen
// charge when an operation hits an already-closed session, so callers can
// proceed without a second request.
type Error struct {
	Category   Category
	Message    string
	AmountPaid *float64
}

func (e *Error) Error() string {
	return e.Message
}

func validationError(msg string) *Error {
	return &Error{Category: CategoryValidation, Message: msg}
}

func notFoundError(msg string) *Error {
	return &Error{Category: CategoryNotFound, Message: msg}
}

func conflictError(msg string) *Error {
	return &Error{Category: CategoryConflict, Message: msg}
}

func internalError(msg string) *Error {
	return &Error{Category: CategoryInternal, Message: msg}
}

func closedSessionError(msg string, amountPaid *float64) *Error {
	return &Error{Category: CategoryConflict, Message: msg, AmountPaid: amountPaid}
}
