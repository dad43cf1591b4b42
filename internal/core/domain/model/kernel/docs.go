// Package kernel contains shared value objects used across all aggregates:
// identifiers, geographic points, delivery addresses, and participant roles.
// All value objects are immutable and must be created through their
// constructor functions; zero values fail Validate.
package kernel
