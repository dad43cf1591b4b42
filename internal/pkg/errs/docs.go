// Package errs provides standardized error types for the fulfillment
// application. It implements a consistent pattern for error creation,
// formatting, and unwrapping that is used throughout the application.
//
// Each error type follows the same shape:
//   - A sentinel error variable (e.g. ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() for formatting and Unwrap() for errors.Is classification
//
// HTTP adapters map these sentinels onto response statuses: ObjectNotFound
// becomes 404, ValueIsInvalid/ValueIsRequired/ValueIsOutOfRange become 400,
// and anything unclassified is logged and returned as a generic 500.
package errs
