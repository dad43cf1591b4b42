// Package services provides domain services that span multiple aggregates.
//
// The package includes:
//   - Dispatcher: ranks available delivery partners by proximity to a pickup
//     point so the dispatch workflow can try the closest candidates first.
package services
