package services

import (
	"errors"
	"sort"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/partner"
)

const (
	// maxDispatchRadiusKm bounds how far from the restaurant a partner may be
	// and still be considered a candidate.
	maxDispatchRadiusKm = 10.0

	// maxCandidates caps how many ranked partners a dispatch attempt walks
	// through before giving up.
	maxCandidates = 10
)

// ErrNoPartnerAvailable is returned when no available partner is within
// dispatch range of the pickup point.
var ErrNoPartnerAvailable = errors.New("no delivery partner available")

// Candidate is a partner paired with their distance to the pickup point.
type Candidate struct {
	Partner    *partner.Partner
	DistanceKm float64
}

// Dispatcher ranks delivery partners for an order's pickup point.
//
// Ranking is pure: the dispatcher never claims a partner itself. The
// application layer walks the ranked list and claims the first partner
// whose availability survives a conditional update, which keeps two
// concurrent dispatch attempts from assigning the same partner.
type Dispatcher struct{}

// NewDispatcher creates a Dispatcher.
func NewDispatcher() Dispatcher {
	return Dispatcher{}
}

// Rank returns up to maxCandidates available partners within
// maxDispatchRadiusKm of pickup, nearest first. Partners with no reported
// location are skipped. ErrNoPartnerAvailable is returned when the ranked
// list would be empty.
func (d Dispatcher) Rank(pickup kernel.GeoPoint, partners []*partner.Partner) ([]Candidate, error) {
	if err := pickup.Validate(); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(partners))
	for _, p := range partners {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if !p.IsAvailable() || p.Location() == nil {
			continue
		}

		distance := pickup.DistanceKm(*p.Location())
		if distance > maxDispatchRadiusKm {
			continue
		}

		candidates = append(candidates, Candidate{Partner: p, DistanceKm: distance})
	}

	if len(candidates) == 0 {
		return nil, ErrNoPartnerAvailable
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].DistanceKm < candidates[j].DistanceKm
	})

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	return candidates, nil
}
