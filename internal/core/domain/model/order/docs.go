// Package order implements the order aggregate and its two state machines:
// the fulfillment lifecycle (pending through delivered/cancelled) and the
// payment state (pending/paid/failed/refunded). An order is created at
// checkout from an immutable snapshot of the customer's cart and is never
// deleted, only transitioned.
package order
