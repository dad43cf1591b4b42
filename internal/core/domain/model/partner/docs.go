// Package partner implements the delivery-partner profile aggregate. A
// partner toggles availability, reports positions, and is claimed by the
// dispatch engine for at most one active delivery at a time. The claim that
// flips availability must be executed as an atomic conditional write by the
// persistence layer; the aggregate methods here express the state rules that
// write enforces.
package partner
