// Package cart implements the customer's in-progress selection. A cart
// belongs to exactly one customer and holds lines from exactly one
// restaurant; adding from a different restaurant replaces the cart contents.
// The bill (subtotal, tax, delivery fee, total) is never stored; it is
// derived from the current lines on every call.
package cart
